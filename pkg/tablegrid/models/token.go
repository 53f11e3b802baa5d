package models

import "strconv"

// Token is one slot of the text-marker grid.
type Token struct {
	// Text is the literal substring between two delimiters.
	Text string `json:"text"`
	// End marks the end of a logical row.
	End bool `json:"end,omitempty"`
}

// MergeToken is the marker of a position merged into a neighbour: a slot
// that holds nothing but its delimiter.
func MergeToken() Token { return Token{} }

// EndToken closes a logical row.
func EndToken() Token { return Token{End: true} }

// IsMerge reports whether the slot is a merge marker.
func (t Token) IsMerge() bool { return !t.End && t.Text == "" }

// Label renders the token for dumps.
func (t Token) Label() string {
	switch {
	case t.End:
		return "[END]"
	case t.IsMerge():
		return "~"
	}
	return strconv.Quote(t.Text)
}
