package core

import "context"

// Repository is where the service reads input files from and writes
// converted files to. Paths are relative to the repository root and use
// forward slashes.
type Repository interface {
	// Load returns the whole content of the file at path.
	Load(ctx context.Context, path string) ([]byte, error)

	// Store replaces the file at path with data. Implementations must not
	// leave a partially written file behind on failure.
	Store(ctx context.Context, path string, data []byte) error
}

// Listable is implemented by repositories that can enumerate files.
type Listable interface {
	// List returns the paths matching a doublestar glob pattern, sorted.
	List(ctx context.Context, pattern string) ([]string, error)
}

// Watchable is implemented by repositories that can report changes.
type Watchable interface {
	// Watch emits an Event for every change to a path matching pattern until
	// ctx is cancelled.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}
