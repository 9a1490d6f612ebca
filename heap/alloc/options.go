package alloc

import (
	"log/slog"

	"github.com/joshuapare/heapkit/internal/format"
)

// Options configures an Allocator.
type Options struct {
	// Mode is the initial search strategy.
	Mode SearchMode

	// MinSplit is the smallest surplus that gets carved into a free
	// remainder. Values below a header plus one word are raised to that
	// floor, since a smaller remainder could never be reused.
	MinSplit uint64

	// Logger receives debug records for growth, splits and coalescing.
	// Nil selects the package default (see HEAP_LOG_ALLOC).
	Logger *slog.Logger
}

// DefaultOptions is used when New is given no options.
var DefaultOptions = Options{
	Mode:     FirstFit,
	MinSplit: format.MinSplit,
}

// Option mutates Options.
type Option func(*Options)

// WithMode selects the initial search strategy.
func WithMode(m SearchMode) Option {
	return func(o *Options) { o.Mode = m }
}

// WithMinSplit sets the split threshold.
func WithMinSplit(n uint64) Option {
	return func(o *Options) { o.MinSplit = n }
}

// WithLogger routes allocator debug records to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func buildOptions(opts []Option) Options {
	o := DefaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.MinSplit < format.MinSplit {
		o.MinSplit = format.MinSplit
	}
	if o.Logger == nil {
		o.Logger = defaultLogger()
	}
	return o
}
