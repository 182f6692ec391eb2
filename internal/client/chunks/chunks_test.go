package chunks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/drivesync/internal/common"
	"github.com/dmitrijs2005/drivesync/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fileKey = "0123456789abcdef0123456789abcdef"

// objectServer serves path-style GETs of /<bucket>/<key>.
type objectServer struct {
	mu      sync.Mutex
	objects map[string][]byte
	paths   []string
}

func newObjectServer(t *testing.T) (*objectServer, *httptest.Server) {
	t.Helper()
	s := &objectServer{objects: make(map[string][]byte)}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.paths = append(s.paths, r.URL.Path)
		body, ok := s.objects[r.URL.Path]
		s.mu.Unlock()

		if r.Method != http.MethodGet || !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>not found</Message></Error>`))
			return
		}

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Header().Set("ETag", `"0123456789abcdef"`)
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		_, _ = w.Write(body)
	}))
	t.Cleanup(ts.Close)
	return s, ts
}

func (s *objectServer) put(t *testing.T, bucket, fileID string, index int, plain string) {
	t.Helper()
	blob, err := cryptox.EncryptChunk([]byte(plain), fileKey)
	require.NoError(t, err)
	s.mu.Lock()
	s.objects["/"+bucket+"/"+ObjectKey(fileID, index)] = blob
	s.mu.Unlock()
}

func request(t *testing.T, index int) Request {
	return Request{
		FileID: "f1", Region: "us-east-1", Bucket: "bkt1", Index: index,
		Key: fileKey, Version: cryptox.ChunkVersion,
		DestPath: filepath.Join(t.TempDir(), "chunk-"+strconv.Itoa(index)),
	}
}

func fetchers(t *testing.T, ts *httptest.Server) map[string]Fetcher {
	t.Helper()
	s3f, err := New(Config{Provider: "s3", Endpoint: ts.URL, AccessKey: "ak", SecretKey: "sk"})
	require.NoError(t, err)
	mf, err := New(Config{Provider: "minio", Endpoint: strings.TrimPrefix(ts.URL, "http://"), AccessKey: "ak", SecretKey: "sk"})
	require.NoError(t, err)
	return map[string]Fetcher{"s3": s3f, "minio": mf}
}

func TestFetchers_WritePlaintext(t *testing.T) {
	srv, ts := newObjectServer(t)
	srv.put(t, "bkt1", "f1", 0, "hello ")
	srv.put(t, "bkt1", "f1", 1, "world")

	for name, f := range fetchers(t, ts) {
		t.Run(name, func(t *testing.T) {
			for i, want := range []string{"hello ", "world"} {
				req := request(t, i)
				require.NoError(t, f.Fetch(context.Background(), req))

				got, err := os.ReadFile(req.DestPath)
				require.NoError(t, err)
				assert.Equal(t, want, string(got))

				fi, err := os.Stat(req.DestPath)
				require.NoError(t, err)
				assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
			}
		})
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Contains(t, srv.paths, "/bkt1/f1/0")
	assert.Contains(t, srv.paths, "/bkt1/f1/1")
}

func TestFetchers_MissingChunk(t *testing.T) {
	_, ts := newObjectServer(t)

	for name, f := range fetchers(t, ts) {
		t.Run(name, func(t *testing.T) {
			req := request(t, 7)
			require.Error(t, f.Fetch(context.Background(), req))
			_, err := os.Stat(req.DestPath)
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestFetchers_WrongKey(t *testing.T) {
	srv, ts := newObjectServer(t)
	srv.put(t, "bkt1", "f1", 0, "secret")

	for name, f := range fetchers(t, ts) {
		t.Run(name, func(t *testing.T) {
			req := request(t, 0)
			req.Key = "fedcba9876543210fedcba9876543210"
			require.ErrorIs(t, f.Fetch(context.Background(), req), common.ErrDecrypt)
		})
	}
}

func TestNew(t *testing.T) {
	f, err := New(Config{})
	require.NoError(t, err)
	assert.IsType(t, &S3Fetcher{}, f)

	_, err = New(Config{Provider: "minio"})
	require.Error(t, err)

	_, err = New(Config{Provider: "ftp"})
	require.Error(t, err)
}

func TestFetcherFunc(t *testing.T) {
	var got Request
	f := FetcherFunc(func(_ context.Context, r Request) error {
		got = r
		return nil
	})
	require.NoError(t, f.Fetch(context.Background(), Request{Index: 3}))
	assert.Equal(t, 3, got.Index)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "abc/12", ObjectKey("abc", 12))
}
