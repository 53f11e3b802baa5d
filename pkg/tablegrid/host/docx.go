package host

import (
	"archive/zip"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/models"
)

const documentPart = "word/document.xml"

// LoadDOCX opens a .docx file and returns one table per top-level w:tbl.
func LoadDOCX(path string) ([]*LayoutTable, error) {
	layouts, err := ReadDOCXLayouts(path)
	if err != nil {
		return nil, err
	}
	tables := make([]*LayoutTable, len(layouts))
	for i, l := range layouts {
		tables[i] = NewLayoutTable(l)
	}
	return tables, nil
}

// ReadDOCXLayouts reads the physical layout of every top-level table.
func ReadDOCXLayouts(path string) ([]Layout, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := readZipFile(&r.Reader, documentPart)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%s: missing %s", path, documentPart)
	}
	return ParseDocumentXML(data)
}

// ParseDocumentXML converts the tables of a WordprocessingML body.
func ParseDocumentXML(data []byte) ([]Layout, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", documentPart, err)
	}
	body := doc.FindElement("//w:body")
	if body == nil {
		return nil, nil
	}
	var layouts []Layout
	for _, tbl := range body.SelectElements("w:tbl") {
		layouts = append(layouts, parseTable(tbl))
	}
	return layouts, nil
}

func parseTable(tbl *etree.Element) Layout {
	var gridCols []float64
	for _, gc := range tbl.FindElements("./w:tblGrid/w:gridCol") {
		gridCols = append(gridCols, TwipsToPoints(intAttr(gc, "w:w", 0)))
	}

	var l Layout
	for _, tr := range tbl.SelectElements("w:tr") {
		var row []LayoutCell
		gridCol := 0
		for _, tc := range tr.SelectElements("w:tc") {
			cell := parseCell(tc)
			if cell.Width == 0 {
				cell.Width = sumWidths(gridCols, gridCol, cell.span())
			}
			gridCol += cell.span()
			row = append(row, cell)
		}
		l.Rows = append(l.Rows, row)
	}
	return l
}

func parseCell(tc *etree.Element) LayoutCell {
	cell := LayoutCell{GridSpan: 1}
	if pr := tc.SelectElement("w:tcPr"); pr != nil {
		if gs := pr.SelectElement("w:gridSpan"); gs != nil {
			cell.GridSpan = int(intAttr(gs, "w:val", 1))
		}
		if vm := pr.SelectElement("w:vMerge"); vm != nil {
			cell.Continue = vm.SelectAttrValue("w:val", "continue") != "restart"
		}
		if w := pr.SelectElement("w:tcW"); w != nil && w.SelectAttrValue("w:type", "dxa") == "dxa" {
			cell.Width = TwipsToPoints(intAttr(w, "w:w", 0))
		}
	}

	var paras []string
	for _, p := range tc.SelectElements("w:p") {
		var b strings.Builder
		for _, t := range p.FindElements(".//w:t") {
			b.WriteString(t.Text())
		}
		paras = append(paras, b.String())
	}
	cell.Text = strings.Join(paras, "\r")
	cell.Format = parseFormat(tc)
	return cell
}

func parseFormat(tc *etree.Element) models.CellFormat {
	var f models.CellFormat
	if fonts := tc.FindElement(".//w:r/w:rPr/w:rFonts"); fonts != nil {
		f.FontName = fonts.SelectAttrValue("w:ascii", "")
	}
	if sz := tc.FindElement(".//w:r/w:rPr/w:sz"); sz != nil {
		f.FontSize = HalfPointsToPoints(intAttr(sz, "w:val", 0))
	}
	if jc := tc.FindElement(".//w:pPr/w:jc"); jc != nil {
		f.Alignment = jc.SelectAttrValue("w:val", "")
	}
	f.NestedTables = len(tc.FindElements(".//w:tbl"))
	f.Fields = len(tc.FindElements(".//w:fldSimple")) +
		len(tc.FindElements(".//w:fldChar[@w:fldCharType='begin']"))
	return f
}

func sumWidths(cols []float64, from, span int) float64 {
	total := 0.0
	for i := from; i < from+span && i < len(cols); i++ {
		total += cols[i]
	}
	return total
}

func intAttr(e *etree.Element, key string, dflt int64) int64 {
	v := e.SelectAttrValue(key, "")
	if v == "" {
		return dflt
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return dflt
	}
	return n
}

func readZipFile(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, nil
}
