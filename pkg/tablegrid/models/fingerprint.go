package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint is a content-derived identity for an observed cell or table.
// Hash alone may collide; Equal falls back to comparing the content.
type Fingerprint struct {
	// Hash is the fast 64-bit content hash.
	Hash    uint64
	content string
}

// NewFingerprint hashes a cell's text together with its format.
func NewFingerprint(text string, f CellFormat) Fingerprint {
	content := strings.Join([]string{
		text,
		f.FontName,
		strconv.FormatFloat(f.FontSize, 'f', -1, 64),
		f.Alignment,
		strconv.Itoa(f.NestedTables),
		strconv.Itoa(f.Fields),
	}, "\x1f")
	return FingerprintText(content)
}

// FingerprintText hashes raw content.
func FingerprintText(content string) Fingerprint {
	return Fingerprint{Hash: xxhash.Sum64String(content), content: content}
}

// IsZero reports whether the fingerprint was never set.
func (f Fingerprint) IsZero() bool {
	return f.Hash == 0 && f.content == ""
}

// Matches compares hashes only.
func (f Fingerprint) Matches(o Fingerprint) bool {
	return f.Hash == o.Hash
}

// Equal compares hashes and confirms a hash match with the full content.
func (f Fingerprint) Equal(o Fingerprint) bool {
	if f.Hash != o.Hash {
		return false
	}
	return f.content == o.content
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", f.Hash)
}
