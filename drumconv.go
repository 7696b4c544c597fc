package drumconv

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/drumconv/internal/platform"
	"github.com/aretw0/drumconv/pkg/core"
)

// Version exposes the version of the library.
// See version.go for the implementation using go:embed.

// --- Types ---

// Report is a public alias for the per-conversion summary.
type Report = core.Report

// BatchReport is a public alias for the outcome of ConvertBatch.
type BatchReport = core.BatchReport

// WatchResult is a public alias for one conversion done by Watch.
type WatchResult = platform.WatchResult

// Config is a public alias for the content of a drumconv.yaml file.
type Config = platform.Config

// DefaultPattern selects Standard MIDI Files in every subdirectory.
const DefaultPattern = platform.DefaultPattern

// --- Configuration ---

// Option defines a functional option for configuring drumconv.
type Option = platform.Option

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithTable sets the mapping table directly.
func WithTable(table *core.MappingTable) Option {
	return platform.WithTable(table)
}

// WithMap selects a built-in drum map by name or a YAML drum map file.
func WithMap(ref string) Option {
	return platform.WithMap(ref)
}

// WithWorkers bounds concurrent conversions in batch mode.
func WithWorkers(n int) Option {
	return platform.WithWorkers(n)
}

// WithOverwrite controls whether existing output files are replaced.
func WithOverwrite(enabled bool) Option {
	return platform.WithOverwrite(enabled)
}

// WithMustExist ensures the root directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithDebounce sets the quiet period before a watched file is converted.
func WithDebounce(d time.Duration) Option {
	return platform.WithDebounce(d)
}

// WithWatcherErrorHandler registers a callback for watcher errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New creates a new conversion service rooted at dir.
func New(dir string, opts ...Option) (*core.Service, error) {
	return platform.New(dir, opts...)
}

// Init initializes a repository explicitly.
func Init(dir string, opts ...Option) (core.Repository, error) {
	return platform.Init(dir, opts...)
}

// LoadTable returns the mapping table selected by opts.
func LoadTable(opts ...Option) (*core.MappingTable, error) {
	return platform.LoadTable(opts...)
}

// --- Operations ---

// ConvertFile translates the drum notes of one file and writes the result.
func ConvertFile(ctx context.Context, in, out string, opts ...Option) (Report, error) {
	return platform.ConvertFile(ctx, in, out, opts...)
}

// ConvertBatch converts every file under root matching pattern into outDir.
func ConvertBatch(ctx context.Context, root, pattern, outDir string, opts ...Option) (BatchReport, error) {
	return platform.ConvertBatch(ctx, root, pattern, outDir, opts...)
}

// Watch converts matching files under root into outDir as they change,
// until ctx is cancelled.
func Watch(ctx context.Context, root, pattern, outDir string, onResult func(WatchResult), opts ...Option) error {
	return platform.Watch(ctx, root, pattern, outDir, onResult, opts...)
}

// Describe summarizes a report on one line.
func Describe(rep Report) string {
	return platform.Describe(rep)
}

// --- Configuration Files ---

// ErrConfigNotFound is returned by FindConfig when no drumconv.yaml exists.
var ErrConfigNotFound = platform.ErrConfigNotFound

// FindConfig recursively looks upwards for a drumconv.yaml file.
func FindConfig(startDir string) (string, error) {
	return platform.FindConfig(startDir)
}

// LoadConfig reads a drumconv.yaml file.
func LoadConfig(path string) (*Config, error) {
	return platform.LoadConfig(path)
}
