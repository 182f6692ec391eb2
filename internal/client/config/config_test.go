package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"drive"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestConfig_LoadDefaults(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults()

	want := Config{
		GatewayURL:          "https://gateway.filen.io",
		DatabasePath:        filepath.Join(".drive", "drive.db"),
		CacheDir:            filepath.Join(".drive", "cache"),
		DerivedCacheDirs:    []string{filepath.Join(".drive", "cache", "thumbnails")},
		DownloadDir:         filepath.Join(".drive", "downloads"),
		OfflineDir:          filepath.Join(".drive", "offline"),
		StorageProvider:     "s3",
		StorageUseSSL:       true,
		MaxDownloads:        3,
		MaxChunkFetches:     32,
		MaxWriteBuffers:     256,
		SafetyBufferMB:      256,
		SettleDelay:         5 * time.Second,
		OnlineCheckInterval: 3 * time.Second,
		LogLevel:            "info",
		LogFormat:           "text",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestConfig_SafetyBuffer(t *testing.T) {
	cfg := Config{SafetyBufferMB: 256}
	assert.Equal(t, uint64(256<<20), cfg.SafetyBuffer())

	cfg.SafetyBufferMB = -1
	assert.Equal(t, uint64(0), cfg.SafetyBuffer())
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drive.yaml")
	yml := `
gateway_url: https://file.example
download_dir: /from/file
max_downloads: 5
settle_delay: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	withArgs(t, "-c", path, "-o", "/from/flag", "-i", "7", "ls")

	cfg := LoadConfig()

	assert.Equal(t, "https://file.example", cfg.GatewayURL)
	assert.Equal(t, "/from/flag", cfg.DownloadDir)
	assert.Equal(t, 5, cfg.MaxDownloads)
	assert.Equal(t, 2*time.Second, cfg.SettleDelay)
	assert.Equal(t, 7*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, 32, cfg.MaxChunkFetches)
}

func TestLoadConfig_NoFile(t *testing.T) {
	withArgs(t)

	cfg := LoadConfig()

	var want Config
	want.LoadDefaults()
	if diff := cmp.Diff(&want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}
