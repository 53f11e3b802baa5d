package models

// CellFormat holds the formatting facts that feed a cell fingerprint.
type CellFormat struct {
	// FontName is the font of the first run.
	FontName string `json:"font_name,omitempty"`
	// FontSize is the font size in points.
	FontSize float64 `json:"font_size,omitempty"`
	// Alignment is the paragraph alignment (left, center, right, both).
	Alignment string `json:"alignment,omitempty"`
	// NestedTables counts tables nested in the cell.
	NestedTables int `json:"nested_tables,omitempty"`
	// Fields counts fields in the cell.
	Fields int `json:"fields,omitempty"`
}

// RawCellObservation is one addressable cell as reported by the host.
type RawCellObservation struct {
	// Row is the row index reported by the host (1-based).
	Row int `json:"row"`
	// Col is the column index reported by the host (1-based, physical).
	Col int `json:"col"`
	// Text is the rendered cell text without its end-of-cell marker.
	Text string `json:"text"`
	// Width is the measured cell width.
	Width float64 `json:"width"`
	// Format carries the fingerprint inputs.
	Format CellFormat `json:"format"`
}

// Identity fingerprints the observed cell.
func (o RawCellObservation) Identity() Fingerprint {
	return NewFingerprint(o.Text, o.Format)
}
