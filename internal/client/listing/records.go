package listing

import (
	"errors"

	"github.com/goccy/go-json"
)

// FileRecord is one entry of the "uploads" array.
type FileRecord struct {
	UUID      string
	Metadata  string
	Bucket    string
	Region    string
	Chunks    int
	Size      int64
	Parent    string
	Version   int
	Timestamp int64
}

// FolderRecord is one entry of the "folders" array. Name is the encrypted
// folder name.
type FolderRecord struct {
	UUID      string
	Name      string
	Parent    string
	Color     string
	Timestamp int64
}

// Record holds exactly one of File or Folder.
type Record struct {
	File   *FileRecord
	Folder *FolderRecord
}

func (r Record) id() string {
	switch {
	case r.File != nil:
		return r.File.UUID
	case r.Folder != nil:
		return r.Folder.UUID
	}
	return ""
}

var errMissingField = errors.New("missing required field")

type rawFile struct {
	UUID      *string `json:"uuid"`
	Metadata  *string `json:"metadata"`
	Bucket    *string `json:"bucket"`
	Region    *string `json:"region"`
	Chunks    *int    `json:"chunks"`
	Size      int64   `json:"size"`
	Parent    *string `json:"parent"`
	Version   *int    `json:"version"`
	Timestamp *int64  `json:"timestamp"`
}

type rawFolder struct {
	UUID      *string `json:"uuid"`
	Name      *string `json:"name"`
	Parent    *string `json:"parent"`
	Color     *string `json:"color"`
	Timestamp *int64  `json:"timestamp"`
}

func decodeFile(data []byte) (*FileRecord, error) {
	var r rawFile
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if r.UUID == nil || r.Metadata == nil || r.Bucket == nil || r.Region == nil ||
		r.Chunks == nil || r.Parent == nil || r.Version == nil || r.Timestamp == nil {
		return nil, errMissingField
	}
	return &FileRecord{
		UUID:      *r.UUID,
		Metadata:  *r.Metadata,
		Bucket:    *r.Bucket,
		Region:    *r.Region,
		Chunks:    *r.Chunks,
		Size:      r.Size,
		Parent:    *r.Parent,
		Version:   *r.Version,
		Timestamp: *r.Timestamp,
	}, nil
}

func decodeFolder(data []byte) (*FolderRecord, error) {
	var r rawFolder
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if r.UUID == nil || r.Name == nil || r.Parent == nil || r.Timestamp == nil {
		return nil, errMissingField
	}
	f := &FolderRecord{
		UUID:      *r.UUID,
		Name:      *r.Name,
		Parent:    *r.Parent,
		Timestamp: *r.Timestamp,
	}
	if r.Color != nil {
		f.Color = *r.Color
	}
	return f, nil
}
