package config

import (
	"path/filepath"
	"time"
)

// Config holds runtime settings of the drive client.
type Config struct {
	// GatewayURL is the base URL of the API gateway.
	GatewayURL string
	APIKey     string
	// RootFolderID is the real uuid of the account's root folder.
	RootFolderID string
	// MasterKeys are ordered oldest to newest.
	MasterKeys []string
	// Salt is used to derive a master key from the password when MasterKeys
	// is empty.
	Salt string

	DatabasePath     string
	CacheDir         string
	DerivedCacheDirs []string
	DownloadDir      string
	OfflineDir       string
	// GalleryDir is the media library gallery exports are imported into.
	// When set, plain downloads land there too.
	GalleryDir string
	WiFiOnly   bool

	StorageProvider  string
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageUseSSL    bool

	MaxDownloads    int
	MaxChunkFetches int
	MaxWriteBuffers int
	SafetyBufferMB  int

	SettleDelay         time.Duration
	OnlineCheckInterval time.Duration

	LogLevel  string
	LogFormat string
}

// LoadDefaults populates c with defaults rooted in the ".drive" directory.
func (c *Config) LoadDefaults() {
	base := ".drive"

	c.GatewayURL = "https://gateway.filen.io"
	c.DatabasePath = filepath.Join(base, "drive.db")
	c.CacheDir = filepath.Join(base, "cache")
	c.DerivedCacheDirs = []string{filepath.Join(base, "cache", "thumbnails")}
	c.DownloadDir = filepath.Join(base, "downloads")
	c.OfflineDir = filepath.Join(base, "offline")

	c.StorageProvider = "s3"
	c.StorageUseSSL = true

	c.MaxDownloads = 3
	c.MaxChunkFetches = 32
	c.MaxWriteBuffers = 256
	c.SafetyBufferMB = 256

	c.SettleDelay = 5 * time.Second
	c.OnlineCheckInterval = 3 * time.Second

	c.LogLevel = "info"
	c.LogFormat = "text"
}

// SafetyBuffer is SafetyBufferMB in bytes.
func (c *Config) SafetyBuffer() uint64 {
	if c.SafetyBufferMB <= 0 {
		return 0
	}
	return uint64(c.SafetyBufferMB) << 20
}

// LoadConfig builds a Config from defaults, the config file and flags.
// It panics on unreadable files and malformed flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
