package tablegrid

import (
	"fmt"
	"strings"
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/host"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/models"
)

// TableKey identifies an analyzed table by content.
type TableKey struct {
	Identity  models.Fingerprint
	Rows      int
	RowOffset int
}

type cacheKey struct {
	hash            uint64
	rows, rowOffset int
}

type cacheEntry struct {
	identity models.Fingerprint
	grid     *models.CellGrid
}

// GridCache is an LRU of finished grids. It is safe for concurrent use;
// grids are copied on the way in and out.
type GridCache struct {
	mu     sync.Mutex
	lru    *lru.Cache
	hits   int
	misses int
}

// NewGridCache creates a cache holding up to size grids. A size of 0 means
// no limit.
func NewGridCache(size int) *GridCache {
	return &GridCache{lru: lru.New(size)}
}

// KeyOf fingerprints a table from its raw text, row count and the
// position, width and grid span of every addressable cell. The cell list
// separates an empty cell from a vertical continuation, which render the
// same text, and tables that differ only in which cell spans a column.
func KeyOf(t host.Table, rowOffset int) (TableKey, error) {
	text, err := t.RangeText()
	if err != nil {
		return TableKey{}, err
	}
	rows, err := t.RowCount()
	if err != nil {
		return TableKey{}, err
	}
	n, err := t.CellCount()
	if err != nil {
		return TableKey{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\x1f%d\x1f%d", text, rows, n)
	for i := 1; i <= n; i++ {
		cell, err := t.CellAt(i)
		if err != nil {
			b.WriteString("\x1e!")
			continue
		}
		width, err := cell.Width()
		if err != nil {
			width = -1
		}
		span := 1
		if s, ok := cell.(host.Spanner); ok {
			span = s.GridSpan()
		}
		fmt.Fprintf(&b, "\x1e%d,%d,%g,%d", cell.RowIndex(), cell.ColumnIndex(), width, span)
	}
	return TableKey{
		Identity:  models.FingerprintText(b.String()),
		Rows:      rows,
		RowOffset: rowOffset,
	}, nil
}

func (k TableKey) lruKey() cacheKey {
	return cacheKey{hash: k.Identity.Hash, rows: k.Rows, rowOffset: k.RowOffset}
}

// Get returns a copy of the grid stored under key.
func (c *GridCache) Get(key TableKey) (*models.CellGrid, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.lru.Get(key.lruKey())
	if ok {
		entry := v.(cacheEntry)
		// Same hash, different table.
		if entry.identity.Equal(key.Identity) {
			c.hits++
			return models.CloneCells(entry.grid), true
		}
	}
	c.misses++
	return nil, false
}

// Add stores a copy of g under key.
func (c *GridCache) Add(key TableKey, g *models.CellGrid) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key.lruKey(), cacheEntry{identity: key.Identity, grid: models.CloneCells(g)})
}

// Len returns the number of cached grids.
func (c *GridCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns the hit and miss counts.
func (c *GridCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
