// Package models defines the data structures shared by every grid analysis stage.
package models

import "fmt"

// Kind tags a CellDescriptor. The tags are mutually exclusive.
type Kind int

const (
	// KindAnchor is the top-left cell of a (possibly 1x1) merged region.
	KindAnchor Kind = iota
	// KindMerged is a position covered by an anchor's span.
	KindMerged
	// KindGhost is a placeholder whose real tag is not resolved yet.
	KindGhost
	// KindRowEnd closes a logical row during intermediate stages.
	KindRowEnd
)

var kindNames = [...]string{"anchor", "merged", "ghost", "row_end"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText renders the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown kind %q", text)
}

// Coordinate is a 1-based logical grid position.
type Coordinate struct {
	// Row is the logical row (1-based).
	Row int `json:"row"`
	// Col is the logical column (1-based).
	Col int `json:"col"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("[%d,%d]", c.Row, c.Col)
}

// CellDescriptor is one logical grid position.
type CellDescriptor struct {
	// Coord is the logical position. Final once the owning row is finalized.
	Coord Coordinate `json:"coord"`
	// Kind tags the descriptor.
	Kind Kind `json:"kind"`
	// Anchor points at the owning anchor. Anchors point at themselves;
	// ghosts and row ends have no anchor.
	Anchor *CellDescriptor `json:"-"`
	// RowSpan is the vertical span, only meaningful on anchors.
	RowSpan int `json:"row_span,omitempty"`
	// ColSpan is the horizontal span, only meaningful on anchors.
	ColSpan int `json:"col_span,omitempty"`
	// Identity fingerprints the observed source cell.
	Identity Fingerprint `json:"-"`
	// Text is the observed cell text (anchors only).
	Text string `json:"text,omitempty"`
}

// NewAnchor creates a 1x1 anchor at row, col.
func NewAnchor(row, col int, text string, id Fingerprint) *CellDescriptor {
	c := &CellDescriptor{
		Coord:    Coordinate{Row: row, Col: col},
		Kind:     KindAnchor,
		RowSpan:  1,
		ColSpan:  1,
		Identity: id,
		Text:     text,
	}
	c.Anchor = c
	return c
}

// NewMerged creates a descriptor covered by owner's span.
func NewMerged(owner *CellDescriptor) *CellDescriptor {
	return &CellDescriptor{
		Coord:  Coordinate{Row: owner.Coord.Row},
		Kind:   KindMerged,
		Anchor: owner,
	}
}

// NewGhost creates an unresolved placeholder.
func NewGhost() *CellDescriptor {
	return &CellDescriptor{Kind: KindGhost}
}

// NewRowEnd creates a row terminator.
func NewRowEnd() *CellDescriptor {
	return &CellDescriptor{Kind: KindRowEnd}
}

func (c *CellDescriptor) IsAnchor() bool { return c != nil && c.Kind == KindAnchor }
func (c *CellDescriptor) IsMerged() bool { return c != nil && c.Kind == KindMerged }
func (c *CellDescriptor) IsGhost() bool  { return c != nil && c.Kind == KindGhost }
func (c *CellDescriptor) IsRowEnd() bool { return c != nil && c.Kind == KindRowEnd }

// Owner returns the anchor that is authoritative for c, or nil for ghosts
// and row ends.
func (c *CellDescriptor) Owner() *CellDescriptor {
	if c == nil {
		return nil
	}
	switch c.Kind {
	case KindAnchor:
		return c
	case KindMerged:
		return c.Anchor
	}
	return nil
}

// Covers reports whether the anchor's span includes the position.
func (c *CellDescriptor) Covers(row, col int) bool {
	if !c.IsAnchor() {
		return false
	}
	return row >= c.Coord.Row && row < c.Coord.Row+c.RowSpan &&
		col >= c.Coord.Col && col < c.Coord.Col+c.ColSpan
}

// Label renders the descriptor the way grid dumps print it.
func (c *CellDescriptor) Label() string {
	if c == nil {
		return "[nil]"
	}
	switch c.Kind {
	case KindAnchor:
		return fmt.Sprintf("M[%d,%d]", c.Coord.Row, c.Coord.Col)
	case KindMerged:
		if c.Anchor == nil {
			return "*[???]"
		}
		return fmt.Sprintf("*[%d,%d]", c.Anchor.Coord.Row, c.Anchor.Coord.Col)
	case KindGhost:
		return "G[???]"
	case KindRowEnd:
		return "[END]"
	}
	return c.Kind.String()
}

// Equal reports whether two descriptors describe the same logical cell:
// same tag, position, spans, owner position and source identity.
func (c *CellDescriptor) Equal(o *CellDescriptor) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.Kind != o.Kind || c.Coord != o.Coord {
		return false
	}
	switch c.Kind {
	case KindAnchor:
		return c.RowSpan == o.RowSpan && c.ColSpan == o.ColSpan && c.Identity.Equal(o.Identity)
	case KindMerged:
		if c.Anchor == nil || o.Anchor == nil {
			return c.Anchor == o.Anchor
		}
		return c.Anchor.Coord == o.Anchor.Coord
	}
	return true
}
