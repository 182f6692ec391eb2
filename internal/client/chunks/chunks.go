// Package chunks fetches encrypted file chunks from object storage,
// decrypts them and writes the plaintext to a caller-chosen path.
//
// Each call is one attempt: nothing here retries.
package chunks

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/dmitrijs2005/drivesync/internal/cryptox"
)

// Request identifies one chunk and where its plaintext goes.
type Request struct {
	FileID   string
	Region   string
	Bucket   string
	Index    int
	Key      string
	Version  int
	DestPath string
}

// Fetcher retrieves one chunk.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) error
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req Request) error

func (f FetcherFunc) Fetch(ctx context.Context, req Request) error { return f(ctx, req) }

// ObjectKey is the storage key of chunk index of file fileID.
func ObjectKey(fileID string, index int) string {
	return fileID + "/" + strconv.Itoa(index)
}

// writePlain decrypts blob and writes it to req.DestPath.
func writePlain(req Request, blob []byte) error {
	plain, err := cryptox.DecryptChunk(blob, req.Key, req.Version)
	if err != nil {
		return fmt.Errorf("chunk %d: %w", req.Index, err)
	}
	if err := os.WriteFile(req.DestPath, plain, 0o600); err != nil {
		return fmt.Errorf("chunk %d: %w", req.Index, err)
	}
	return nil
}

// Config selects and configures a storage backend.
type Config struct {
	// Provider is "s3" or "minio".
	Provider string
	// Endpoint overrides the provider endpoint. For s3 it is a URL, for
	// minio a host:port.
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// New builds the Fetcher for cfg.Provider.
func New(cfg Config) (Fetcher, error) {
	switch cfg.Provider {
	case "", "s3":
		return NewS3Fetcher(cfg), nil
	case "minio":
		return NewMinioFetcher(cfg)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
