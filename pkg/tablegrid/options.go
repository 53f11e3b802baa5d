// Package tablegrid reconstructs the logical grid of a table whose host
// cannot answer structural queries once cells are merged.
package tablegrid

import (
	"time"

	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/host"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/parser"
	"go.uber.org/zap"
)

// Options configures analysis behavior.
type Options struct {
	// SplitThreshold is the cell count above which a table is split in
	// two before the slow path runs.
	SplitThreshold int
	// MaxDepth bounds the number of nested splits.
	MaxDepth int
	// SpanTolerance is subtracted from width ratios before rounding.
	SpanTolerance float64
	// FallbackReferenceRow is the reference row used when no row's cells
	// match its text slots.
	FallbackReferenceRow int
	// Delimiter ends every cell in the raw text.
	Delimiter string
	// Prepare specifies whether to prepare tables before measuring widths.
	// If nil, defaults to true.
	Prepare *bool
	// Retrier runs host calls that may fail transiently.
	Retrier host.Retrier
	// Logger receives analysis logs. If nil, logging is disabled.
	Logger *zap.Logger
	// Cache holds finished grids. If nil, nothing is cached.
	Cache *GridCache
}

// DefaultOptions returns default analysis options.
func DefaultOptions() Options {
	return Options{
		SplitThreshold:       400,
		MaxDepth:             3,
		SpanTolerance:        parser.DefaultSpanTolerance,
		FallbackReferenceRow: 1,
		Delimiter:            host.CellDelimiter,
		Retrier:              host.Retrier{Attempts: 3, Delay: 100 * time.Millisecond},
	}
}

// ShouldPrepare returns whether tables are prepared before measurement.
func (o Options) ShouldPrepare() bool {
	if o.Prepare != nil {
		return *o.Prepare
	}
	return true
}

func (o Options) delimiter() string {
	if o.Delimiter == "" {
		return host.CellDelimiter
	}
	return o.Delimiter
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
