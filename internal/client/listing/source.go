package listing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/dmitrijs2005/drivesync/internal/common"
	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
)

// ContentPath is the directory-content endpoint of the gateway.
const ContentPath = "/v3/dir/content"

// HTTPSource fetches listings from the gateway. Responses are spooled to a
// temporary file and parsed from there; the file is removed on Close.
type HTTPSource struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	// TempDir holds spooled responses; empty means os.TempDir().
	TempDir string
}

type contentRequest struct {
	UUID string `json:"uuid"`
}

func (s *HTTPSource) Open(ctx context.Context, folderID string) (io.ReadCloser, error) {
	if s.APIKey == "" {
		return nil, common.ErrNotAuthenticated
	}

	body, err := json.Marshal(contentRequest{UUID: folderID})
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(s.BaseURL, "/") + ContentPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", folderID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("list %s: %w", folderID, common.ErrNotAuthenticated)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("list %s: unexpected status %s", folderID, resp.Status)
	}

	var r io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", folderID, err)
		}
		defer zr.Close()
		r = zr
	}

	return spool(r, s.TempDir)
}

// spool copies r into a temporary file and returns it rewound.
func spool(r io.Reader, dir string) (io.ReadCloser, error) {
	f, err := os.CreateTemp(dir, "listing-*.json")
	if err != nil {
		return nil, err
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("spool listing: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, err
	}

	return &spooled{File: f}, nil
}

type spooled struct {
	*os.File
}

func (s *spooled) Close() error {
	err := s.File.Close()
	if rerr := os.Remove(s.Name()); err == nil {
		err = rerr
	}
	return err
}
