package fs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/drumconv/pkg/core"
)

// selfWriteWindow is how long events for a file this repository just wrote
// are ignored by its watchers.
const selfWriteWindow = 500 * time.Millisecond

// Repository implements core.Repository, core.Listable and core.Watchable
// on a directory tree. Relative paths are resolved against Path; absolute
// paths are used as given.
type Repository struct {
	Path   string
	config Config

	mu            sync.RWMutex
	watcherActive bool
	reads         int
	writes        int
	lastWrite     *time.Time
	selfWrites    map[string]time.Time
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path      string
	MustExist bool
	// Overwrite allows Store to replace existing files. Without it Store
	// returns core.ErrOutputExists.
	Overwrite    bool
	FileMode     os.FileMode // defaults to 0644
	Debounce     time.Duration
	Logger       *slog.Logger
	ErrorHandler func(error)
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.Path == "" {
		config.Path = "."
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.FileMode == 0 {
		config.FileMode = 0644
	}
	if config.Debounce <= 0 {
		config.Debounce = 50 * time.Millisecond
	}
	return &Repository{
		Path:       config.Path,
		config:     config,
		selfWrites: make(map[string]time.Time),
	}
}

// Initialize ensures the root directory exists, creating it unless
// MustExist is set.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist {
		info, err := os.Stat(r.Path)
		if err != nil {
			return fmt.Errorf("directory does not exist: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("path is not a directory: %s", r.Path)
		}
		return nil
	}
	if err := os.MkdirAll(r.Path, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

func (r *Repository) resolve(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(r.Path, p)
}

// Load reads the whole file at p.
func (r *Repository) Load(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.resolve(p))
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.reads++
	r.mu.Unlock()
	return data, nil
}

// Store writes data to p atomically, creating parent directories.
func (r *Repository) Store(ctx context.Context, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := r.resolve(p)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if abs, err := filepath.Abs(target); err == nil {
		r.markSelfWrite(abs)
	}
	err := writeFileAtomic(target, data, r.config.FileMode, !r.config.Overwrite)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%s: %w", p, core.ErrOutputExists)
	}
	if err != nil {
		return err
	}

	now := time.Now()
	r.mu.Lock()
	r.writes++
	r.lastWrite = &now
	r.mu.Unlock()

	r.config.Logger.Debug("file written", "path", target, "bytes", len(data))
	return nil
}

// List returns the regular files under Path matching a doublestar pattern,
// as slash separated paths relative to Path.
func (r *Repository) List(ctx context.Context, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	matches, err := doublestar.Glob(os.DirFS(r.Path), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}

	out := matches[:0]
	for _, m := range matches {
		if isTempFile(m) {
			continue
		}
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

// Watch reports changes to files matching pattern until ctx is cancelled.
// The returned channel is closed once the watcher has stopped.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	if _, err := os.Stat(r.Path); err != nil {
		return nil, err
	}

	events := make(chan core.Event)
	if err := r.superviseWatcher(ctx, pattern, events); err != nil {
		return nil, err
	}
	return events, nil
}

// relative maps an absolute event path to a slash separated path under Path.
func (r *Repository) relative(name string) (string, error) {
	root, err := filepath.Abs(r.Path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// recursiveAdd registers dir and every directory below it with add, skipping
// hidden directories.
func recursiveAdd(dir string, add func(string) error) error {
	return filepath.WalkDir(dir, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && len(d.Name()) > 1 && d.Name()[0] == '.' {
			return filepath.SkipDir
		}
		return add(path)
	})
}

func (r *Repository) markSelfWrite(abs string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.selfWrites[abs] = now
	for p, at := range r.selfWrites {
		if now.Sub(at) > selfWriteWindow {
			delete(r.selfWrites, p)
		}
	}
}

func (r *Repository) isSelfWrite(abs string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	at, ok := r.selfWrites[abs]
	return ok && time.Since(at) <= selfWriteWindow
}

var (
	_ core.Repository = (*Repository)(nil)
	_ core.Listable   = (*Repository)(nil)
	_ core.Watchable  = (*Repository)(nil)
)
