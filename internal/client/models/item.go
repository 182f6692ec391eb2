// Package models defines the client-side data model of the drive: remote
// items as cached locally, decrypted metadata, transfer snapshots and the
// events exchanged over the notification bus.
package models

const (
	// RootContainerID is the well-known alias under which the root folder is
	// also stored, so callers can list it without knowing its real uuid.
	RootContainerID = "root"
	// RootDisplayName is the name both root rows carry.
	RootDisplayName = "Cloud Drive"
)

// Kind tells files and folders apart.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// Item is the canonical record of one remote entry in the sync cache.
//
// Name stays empty until metadata decryption succeeds; such items are still
// stored (so parent/child bookkeeping holds) but are never displayed.
type Item struct {
	ID       string
	ParentID string
	Name     string
	Kind     Kind
	Mime     string
	Size     int64

	// CreatedAt and ModifiedAt are Unix seconds.
	CreatedAt  int64
	ModifiedAt int64

	// Key is the per-file chunk key; empty for folders.
	Key        string
	ChunkCount int
	Region     string
	Bucket     string
	// Version is the chunk encryption scheme tag.
	Version int

	// Color is the folder color tag, if any.
	Color string
}

// Displayable reports whether the item may appear in a user-visible listing.
func (i Item) Displayable() bool {
	return i.Name != ""
}

// IsFolder reports whether the item is a folder.
func (i Item) IsFolder() bool {
	return i.Kind == KindFolder
}

// FileMetadata is the decrypted metadata of a file.
type FileMetadata struct {
	Name         string `json:"name"`
	Size         int64  `json:"size,omitempty"`
	Mime         string `json:"mime,omitempty"`
	Key          string `json:"key"`
	LastModified int64  `json:"lastModified,omitempty"`
}

// FolderMetadata is the decrypted metadata of a folder.
type FolderMetadata struct {
	Name string `json:"name"`
}

// millisThreshold separates second and millisecond timestamps: anything
// above it would be past year 5138 as seconds.
const millisThreshold = 100_000_000_000

// NormalizeTimestamp converts a provider timestamp to Unix seconds.
func NormalizeTimestamp(ts int64) int64 {
	if ts > millisThreshold {
		return ts / 1000
	}
	return ts
}
