package offline

import (
	"context"
	"time"
)

// Entry is one file kept in offline storage.
type Entry struct {
	FileID   string
	Path     string
	Size     int64
	StoredAt time.Time
}

// Repository tracks offline files.
type Repository interface {
	// Add records the file, replacing any previous entry.
	Add(ctx context.Context, e Entry) error

	// Get returns the entry or common.ErrNotFound.
	Get(ctx context.Context, fileID string) (Entry, error)

	// Remove forgets the file; missing entries are not an error.
	Remove(ctx context.Context, fileID string) error

	// List returns all entries, most recently stored first.
	List(ctx context.Context) ([]Entry, error)
}
