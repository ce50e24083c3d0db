// Package xlmap extracts named fields from spreadsheets using a declarative
// field-to-cell mapping.
package xlmap

import (
	"time"

	"github.com/ukaji3/xlmap-go/pkg/xlmap/parser"
	"go.uber.org/zap"
)

// Options configures extraction behavior.
type Options struct {
	// BlankMarkers are text values treated as an empty cell.
	// If nil, parser.BlankMarkers is used.
	BlankMarkers []string
	// SimilarityThreshold is the minimum score for a sheet-name suggestion.
	// If zero, parser.DefaultSimilarityThreshold is used.
	SimilarityThreshold float64
	// TopN bounds the most-common-errors list of each report.
	TopN int
	// Now returns the timestamp stamped on failures. Defaults to time.Now.
	Now func() time.Time
	// Logger receives per-field diagnostics at debug level.
	Logger *zap.SugaredLogger
}

// DefaultOptions returns default extraction options.
func DefaultOptions() Options {
	return Options{
		BlankMarkers:        parser.BlankMarkers,
		SimilarityThreshold: parser.DefaultSimilarityThreshold,
		TopN:                10,
		Now:                 time.Now,
	}
}

func (o Options) blankMarkers() []string {
	if o.BlankMarkers == nil {
		return parser.BlankMarkers
	}
	return o.BlankMarkers
}

func (o Options) threshold() float64 {
	if o.SimilarityThreshold <= 0 {
		return parser.DefaultSimilarityThreshold
	}
	return o.SimilarityThreshold
}

// Clock returns the configured clock.
func (o Options) Clock() func() time.Time {
	if o.Now == nil {
		return time.Now
	}
	return o.Now
}

// Log returns the configured logger or a no-op one.
func (o Options) Log() *zap.SugaredLogger {
	if o.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return o.Logger
}
