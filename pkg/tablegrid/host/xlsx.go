package host

import (
	"fmt"
	"strings"

	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/models"
	"github.com/xuri/excelize/v2"
)

// TableDetectionParams holds parameters for locating a table in a sheet.
type TableDetectionParams struct {
	DensityMin       float64
	MinNonemptyCells int
}

// DefaultTableParams returns default table detection parameters.
func DefaultTableParams() TableDetectionParams {
	return TableDetectionParams{
		DensityMin:       0.04,
		MinNonemptyCells: 3,
	}
}

// LoadXLSX opens a workbook and returns the tables of one sheet. When ref
// is empty the sheet's print areas are used, then the detected data region.
// An empty sheet name selects the first sheet.
func LoadXLSX(path, sheet, ref string) ([]*LayoutTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	areas, err := XLSXAreas(f, sheet, ref, DefaultTableParams())
	if err != nil {
		return nil, err
	}
	tables := make([]*LayoutTable, 0, len(areas))
	for _, area := range areas {
		l, err := XLSXLayout(f, sheet, area)
		if err != nil {
			return nil, fmt.Errorf("sheet %q %s: %w", sheet, area, err)
		}
		tables = append(tables, NewLayoutTable(l))
	}
	return tables, nil
}

// XLSXAreas resolves the table areas of a sheet.
func XLSXAreas(f *excelize.File, sheet, ref string, params TableDetectionParams) ([]models.Area, error) {
	if ref != "" {
		area, err := ParseArea(ref)
		if err != nil {
			return nil, err
		}
		return []models.Area{area}, nil
	}
	if areas := PrintAreas(f)[sheet]; len(areas) > 0 {
		return areas, nil
	}
	area, ok, err := DetectTableArea(f, sheet, params)
	if err != nil || !ok {
		return nil, err
	}
	return []models.Area{area}, nil
}

// DetectTableArea finds the bounding box of a sheet's data when it is
// dense enough to be a table.
func DetectTableArea(f *excelize.File, sheet string, params TableDetectionParams) (models.Area, bool, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return models.Area{}, false, err
	}
	area, filled := dataArea(rows)
	if filled == 0 || filled < params.MinNonemptyCells {
		return models.Area{}, false, nil
	}
	size := (area.R2 - area.R1 + 1) * (area.C2 - area.C1 + 1)
	if float64(filled)/float64(size) < params.DensityMin {
		return models.Area{}, false, nil
	}
	return area, true, nil
}

// dataArea returns the 1-based bounding box of the non-empty values and
// how many there are.
func dataArea(rows [][]string) (models.Area, int) {
	var area models.Area
	filled := 0
	for r, row := range rows {
		for c, v := range row {
			if v == "" {
				continue
			}
			y, x := r+1, c+1
			if filled == 0 {
				area = models.Area{R1: y, C1: x, R2: y, C2: x}
			}
			area.R1, area.R2 = min(area.R1, y), max(area.R2, y)
			area.C1, area.C2 = min(area.C1, x), max(area.C2, x)
			filled++
		}
	}
	return area, filled
}

// PrintAreas returns the print areas of every sheet, keyed by sheet name.
func PrintAreas(f *excelize.File) map[string][]models.Area {
	result := make(map[string][]models.Area)
	for _, dn := range f.GetDefinedName() {
		if !strings.EqualFold(dn.Name, "_xlnm.Print_Area") {
			continue
		}
		for _, part := range strings.Split(dn.RefersTo, ",") {
			part = strings.TrimSpace(part)
			idx := strings.LastIndex(part, "!")
			if idx < 0 {
				continue
			}
			sheet := strings.Trim(part[:idx], "'")
			if area, err := ParseArea(part[idx+1:]); err == nil {
				result[sheet] = append(result[sheet], area)
			}
		}
	}
	return result
}

// ParseArea parses a range like $A$1:$D$10.
func ParseArea(ref string) (models.Area, error) {
	ref = strings.ReplaceAll(ref, "$", "")
	parts := strings.Split(ref, ":")
	if len(parts) != 2 {
		return models.Area{}, fmt.Errorf("invalid range %q", ref)
	}
	c1, r1, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return models.Area{}, err
	}
	c2, r2, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return models.Area{}, err
	}
	return models.Area{R1: min(r1, r2), C1: min(c1, c2), R2: max(r1, r2), C2: max(c1, c2)}, nil
}

// XLSXLayout converts a worksheet area into a physical table layout.
// Merged ranges become spanning cells and vertical continuations.
func XLSXLayout(f *excelize.File, sheet string, area models.Area) (Layout, error) {
	merges, err := sheetMerges(f, sheet, area)
	if err != nil {
		return Layout{}, err
	}
	widths := make([]float64, area.C2-area.C1+1)
	for c := area.C1; c <= area.C2; c++ {
		name, err := excelize.ColumnNumberToName(c)
		if err != nil {
			return Layout{}, err
		}
		if widths[c-area.C1], err = f.GetColWidth(sheet, name); err != nil {
			return Layout{}, err
		}
	}

	var l Layout
	for r := area.R1; r <= area.R2; r++ {
		var row []LayoutCell
		for c := area.C1; c <= area.C2; {
			m, merged := merges[[2]int{r, c}]
			if !merged {
				cell, err := xlsxCell(f, sheet, r, c)
				if err != nil {
					return Layout{}, err
				}
				cell.GridSpan = 1
				cell.Width = widths[c-area.C1]
				row = append(row, cell)
				c++
				continue
			}
			span := m.C2 - m.C1 + 1
			if c != m.C1 {
				c++
				continue
			}
			cell := LayoutCell{GridSpan: span, Continue: r != m.R1}
			if !cell.Continue {
				if cell, err = xlsxCell(f, sheet, r, c); err != nil {
					return Layout{}, err
				}
				cell.GridSpan = span
			}
			for i := c; i < c+span; i++ {
				cell.Width += widths[i-area.C1]
			}
			row = append(row, cell)
			c += span
		}
		l.Rows = append(l.Rows, row)
	}
	return l, nil
}

// sheetMerges maps every position inside a merged range (clipped to area)
// to that range.
func sheetMerges(f *excelize.File, sheet string, area models.Area) (map[[2]int]models.Area, error) {
	mergeCells, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, err
	}
	out := make(map[[2]int]models.Area)
	for _, mc := range mergeCells {
		m, err := ParseArea(mc.GetStartAxis() + ":" + mc.GetEndAxis())
		if err != nil {
			continue
		}
		m, ok := m.Clip(area)
		if !ok || (m.R1 == m.R2 && m.C1 == m.C2) {
			continue
		}
		for r := m.R1; r <= m.R2; r++ {
			for c := m.C1; c <= m.C2; c++ {
				out[[2]int{r, c}] = m
			}
		}
	}
	return out, nil
}

func xlsxCell(f *excelize.File, sheet string, row, col int) (LayoutCell, error) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return LayoutCell{}, err
	}
	text, err := f.GetCellValue(sheet, name)
	if err != nil {
		return LayoutCell{}, err
	}
	cell := LayoutCell{Text: text}
	styleID, err := f.GetCellStyle(sheet, name)
	if err != nil {
		return cell, nil
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return cell, nil
	}
	if style.Font != nil {
		cell.Format.FontName = style.Font.Family
		cell.Format.FontSize = style.Font.Size
	}
	if style.Alignment != nil {
		cell.Format.Alignment = style.Alignment.Horizontal
	}
	return cell, nil
}
