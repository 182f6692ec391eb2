package chunks

import (
	"context"
	"fmt"
	"io"
	"sync"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioFetcher downloads chunks from a MinIO (or other S3-compatible)
// endpoint, one client per region.
type MinioFetcher struct {
	cfg Config

	mu      sync.Mutex
	clients map[string]*miniogo.Client
}

func NewMinioFetcher(cfg Config) (*MinioFetcher, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio: endpoint is required")
	}
	return &MinioFetcher{cfg: cfg, clients: make(map[string]*miniogo.Client)}, nil
}

func (f *MinioFetcher) client(region string) (*miniogo.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.clients[region]; ok {
		return c, nil
	}

	c, err := miniogo.New(f.cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(f.cfg.AccessKey, f.cfg.SecretKey, ""),
		Secure: f.cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	f.clients[region] = c
	return c, nil
}

func (f *MinioFetcher) Fetch(ctx context.Context, req Request) error {
	c, err := f.client(req.Region)
	if err != nil {
		return err
	}

	obj, err := c.GetObject(ctx, req.Bucket, ObjectKey(req.FileID, req.Index), miniogo.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("get chunk %d: %w", req.Index, err)
	}
	defer obj.Close()

	blob, err := io.ReadAll(obj)
	if err != nil {
		return fmt.Errorf("read chunk %d: %w", req.Index, err)
	}

	return writePlain(req, blob)
}
