package chunks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Fetcher downloads chunks over the S3 API. Chunks live in per-region
// buckets, so one client is kept per region.
type S3Fetcher struct {
	cfg Config

	mu      sync.Mutex
	clients map[string]*s3.Client
}

func NewS3Fetcher(cfg Config) *S3Fetcher {
	return &S3Fetcher{cfg: cfg, clients: make(map[string]*s3.Client)}
}

func (f *S3Fetcher) client(ctx context.Context, region string) (*s3.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.clients[region]; ok {
		return c, nil
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if f.cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(f.cfg.AccessKey, f.cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	c := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if f.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(f.cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	f.clients[region] = c
	return c, nil
}

func (f *S3Fetcher) Fetch(ctx context.Context, req Request) error {
	c, err := f.client(ctx, req.Region)
	if err != nil {
		return err
	}

	out, err := c.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(req.Bucket),
		Key:    aws.String(ObjectKey(req.FileID, req.Index)),
	})
	if err != nil {
		return fmt.Errorf("get chunk %d: %w", req.Index, err)
	}
	defer out.Body.Close()

	blob, err := io.ReadAll(out.Body)
	if err != nil {
		return fmt.Errorf("read chunk %d: %w", req.Index, err)
	}

	return writePlain(req, blob)
}
