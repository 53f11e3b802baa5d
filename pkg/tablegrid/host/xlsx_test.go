package host

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/models"
	"github.com/xuri/excelize/v2"
)

// writeXLSX saves a 4x3 sheet with a horizontal merge on row 1 and a
// vertical merge in column A on rows 3-4.
func writeXLSX(t *testing.T, printArea string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	values := map[string]string{
		"A1": "Head", "C1": "c",
		"A2": "a", "B2": "b", "C2": "x",
		"A3": "v", "B3": "e", "C3": "f",
		"B4": "g", "C4": "h",
	}
	for cell, v := range values {
		require.NoError(t, f.SetCellValue(sheet, cell, v))
	}
	require.NoError(t, f.MergeCell(sheet, "A1", "B1"))
	require.NoError(t, f.MergeCell(sheet, "A3", "A4"))
	require.NoError(t, f.SetColWidth(sheet, "A", "C", 10))

	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Size: 12},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "C1", "C1", style))

	if printArea != "" {
		require.NoError(t, f.SetDefinedName(&excelize.DefinedName{
			Name:     "_xlnm.Print_Area",
			RefersTo: printArea,
			Scope:    sheet,
		}))
	}

	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadXLSXDetectsTable(t *testing.T) {
	tables, err := LoadXLSX(writeXLSX(t, ""), "", "")
	require.NoError(t, err)
	require.Len(t, tables, 1)

	l := tables[0].Layout()
	require.Len(t, l.Rows, 4)
	assert.Equal(t, 3, l.Columns())

	head := l.Rows[0][0]
	assert.Equal(t, "Head", head.Text)
	assert.Equal(t, 2, head.GridSpan)
	assert.Equal(t, 20.0, head.Width)

	c := l.Rows[0][1]
	assert.Equal(t, "Arial", c.Format.FontName)
	assert.Equal(t, 12.0, c.Format.FontSize)
	assert.Equal(t, "center", c.Format.Alignment)

	assert.Equal(t, "v", l.Rows[2][0].Text)
	assert.False(t, l.Rows[2][0].Continue)
	assert.True(t, l.Rows[3][0].Continue)
	assert.Equal(t, "g", l.Rows[3][1].Text)
}

func TestLoadXLSXExplicitRange(t *testing.T) {
	tables, err := LoadXLSX(writeXLSX(t, ""), "Sheet1", "B2:C4")
	require.NoError(t, err)
	require.Len(t, tables, 1)

	l := tables[0].Layout()
	require.Len(t, l.Rows, 3)
	assert.Equal(t, "b", l.Rows[0][0].Text)
	assert.NoError(t, tables[0].ProbeStructure())
}

func TestLoadXLSXPrintArea(t *testing.T) {
	path := writeXLSX(t, "Sheet1!$A$1:$C$2")
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	areas := PrintAreas(f)
	assert.Equal(t, []models.Area{{R1: 1, C1: 1, R2: 2, C2: 3}}, areas["Sheet1"])

	tables, err := LoadXLSX(path, "Sheet1", "")
	require.NoError(t, err)
	require.Len(t, tables, 1)
	rows, _ := tables[0].RowCount()
	assert.Equal(t, 2, rows)
}

func TestParseArea(t *testing.T) {
	tests := []struct {
		ref     string
		want    models.Area
		wantErr bool
	}{
		{"A1:D10", models.Area{R1: 1, C1: 1, R2: 10, C2: 4}, false},
		{"$B$3:$A$1", models.Area{R1: 1, C1: 1, R2: 3, C2: 2}, false},
		{"A1", models.Area{}, true},
		{"A1:??", models.Area{}, true},
	}
	for _, tt := range tests {
		got, err := ParseArea(tt.ref)
		if tt.wantErr {
			assert.Error(t, err, tt.ref)
			continue
		}
		require.NoError(t, err, tt.ref)
		assert.Equal(t, tt.want, got, tt.ref)
	}
}

func TestDetectTableAreaSparse(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "x"))
	require.NoError(t, f.SetCellValue("Sheet1", "Z100", "y"))

	_, ok, err := DetectTableArea(f, "Sheet1", DefaultTableParams())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDataArea(t *testing.T) {
	tests := []struct {
		name       string
		rows       [][]string
		wantArea   models.Area
		wantFilled int
	}{
		{"empty", [][]string{{}, {"", ""}}, models.Area{}, 0},
		{"single", [][]string{{}, {"", "x"}}, models.Area{R1: 2, C1: 2, R2: 2, C2: 2}, 1},
		{"ragged", [][]string{{"", "", "a"}, {"b"}, {"", "c"}}, models.Area{R1: 1, C1: 1, R2: 3, C2: 3}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			area, filled := dataArea(tt.rows)
			assert.Equal(t, tt.wantArea, area)
			assert.Equal(t, tt.wantFilled, filled)
		})
	}
}
