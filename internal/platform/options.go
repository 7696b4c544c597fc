package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/drumconv/pkg/core"
)

// options holds the internal configuration for a drumconv service.
type options struct {
	repository   core.Repository
	logger       *slog.Logger
	table        *core.MappingTable
	mapRef       string
	workers      int
	overwrite    bool
	mustExist    bool
	debounce     time.Duration
	errorHandler func(error)
}

// Option defines a functional option for configuring drumconv.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		overwrite: true,
	}
}

func apply(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// WithLogger sets the logger for the service and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository allows injecting a custom storage adapter (e.g. a mock).
// If provided, the default filesystem adapter will be skipped.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithTable sets the mapping table directly, bypassing map loading.
func WithTable(table *core.MappingTable) Option {
	return func(o *options) {
		o.table = table
	}
}

// WithMap selects the drum map: a built-in map name or a YAML file path.
// Empty selects the default map.
func WithMap(ref string) Option {
	return func(o *options) {
		o.mapRef = ref
	}
}

// WithWorkers bounds concurrent conversions in batch mode.
// Zero means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithOverwrite controls whether existing output files are replaced.
// Defaults to true.
func WithOverwrite(enabled bool) Option {
	return func(o *options) {
		o.overwrite = enabled
	}
}

// WithMustExist requires the root directory to exist instead of creating it.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithDebounce sets how long a watched file must be quiet before it is
// converted.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

// WithWatcherErrorHandler registers a callback to handle errors occurring
// during the Watch loop, which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
