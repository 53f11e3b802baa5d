package models

import "fmt"

// ChangeKind classifies a GridChange.
type ChangeKind int

const (
	RowInserted ChangeKind = iota
	RowDeleted
	ColumnInserted
	ColumnDeleted
	CellModified
)

var changeNames = [...]string{"row_inserted", "row_deleted", "column_inserted", "column_deleted", "cell_modified"}

func (k ChangeKind) String() string {
	if k < 0 || int(k) >= len(changeNames) {
		return fmt.Sprintf("change(%d)", int(k))
	}
	return changeNames[k]
}

// MarshalText renders the kind by name.
func (k ChangeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name.
func (k *ChangeKind) UnmarshalText(text []byte) error {
	for i, name := range changeNames {
		if name == string(text) {
			*k = ChangeKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown kind %q", text)
}

// GridChange is one structural difference between two grid snapshots.
type GridChange struct {
	// Kind classifies the change.
	Kind ChangeKind `json:"kind"`
	// Row is the affected row (1-based), 0 for column changes.
	Row int `json:"row,omitempty"`
	// Col is the affected column (1-based), 0 for row changes.
	Col int `json:"col,omitempty"`
	// Before is the old descriptor for cell changes.
	Before *CellDescriptor `json:"-"`
	// After is the new descriptor for cell changes.
	After *CellDescriptor `json:"-"`
}

func (c GridChange) String() string {
	switch c.Kind {
	case RowInserted, RowDeleted:
		return fmt.Sprintf("%s row=%d", c.Kind, c.Row)
	case ColumnInserted, ColumnDeleted:
		return fmt.Sprintf("%s col=%d", c.Kind, c.Col)
	}
	return fmt.Sprintf("%s [%d,%d] %s -> %s", c.Kind, c.Row, c.Col, c.Before.Label(), c.After.Label())
}
