package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/drivesync/internal/flagx"
	"github.com/dmitrijs2005/drivesync/internal/timex"
	"go.yaml.in/yaml/v3"
)

// FileConfig is the on-disk shape of the configuration. Absent fields leave
// the current value untouched.
type FileConfig struct {
	GatewayURL       string   `json:"gateway_url" yaml:"gateway_url"`
	APIKey           string   `json:"api_key" yaml:"api_key"`
	RootFolderID     string   `json:"root_folder_id" yaml:"root_folder_id"`
	MasterKeys       []string `json:"master_keys" yaml:"master_keys"`
	Salt             string   `json:"salt" yaml:"salt"`
	DatabasePath     string   `json:"database_path" yaml:"database_path"`
	CacheDir         string   `json:"cache_dir" yaml:"cache_dir"`
	DerivedCacheDirs []string `json:"derived_cache_dirs" yaml:"derived_cache_dirs"`
	DownloadDir      string   `json:"download_dir" yaml:"download_dir"`
	OfflineDir       string   `json:"offline_dir" yaml:"offline_dir"`
	GalleryDir       string   `json:"gallery_dir" yaml:"gallery_dir"`
	WiFiOnly         *bool    `json:"wifi_only" yaml:"wifi_only"`

	StorageProvider  string `json:"storage_provider" yaml:"storage_provider"`
	StorageEndpoint  string `json:"storage_endpoint" yaml:"storage_endpoint"`
	StorageAccessKey string `json:"storage_access_key" yaml:"storage_access_key"`
	StorageSecretKey string `json:"storage_secret_key" yaml:"storage_secret_key"`
	StorageUseSSL    *bool  `json:"storage_use_ssl" yaml:"storage_use_ssl"`

	MaxDownloads    int `json:"max_downloads" yaml:"max_downloads"`
	MaxChunkFetches int `json:"max_chunk_fetches" yaml:"max_chunk_fetches"`
	MaxWriteBuffers int `json:"max_write_buffers" yaml:"max_write_buffers"`
	SafetyBufferMB  int `json:"safety_buffer_mb" yaml:"safety_buffer_mb"`

	SettleDelay         timex.Duration `json:"settle_delay" yaml:"settle_delay"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`

	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"`
}

// parseFile overlays cfg with the file named by -c / -config, if any. It
// panics on read or decode errors.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.GatewayURL, fc.GatewayURL)
	setString(&cfg.APIKey, fc.APIKey)
	setString(&cfg.RootFolderID, fc.RootFolderID)
	setString(&cfg.Salt, fc.Salt)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.CacheDir, fc.CacheDir)
	setString(&cfg.DownloadDir, fc.DownloadDir)
	setString(&cfg.OfflineDir, fc.OfflineDir)
	setString(&cfg.GalleryDir, fc.GalleryDir)
	setString(&cfg.StorageProvider, fc.StorageProvider)
	setString(&cfg.StorageEndpoint, fc.StorageEndpoint)
	setString(&cfg.StorageAccessKey, fc.StorageAccessKey)
	setString(&cfg.StorageSecretKey, fc.StorageSecretKey)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)

	if len(fc.MasterKeys) > 0 {
		cfg.MasterKeys = fc.MasterKeys
	}
	if len(fc.DerivedCacheDirs) > 0 {
		cfg.DerivedCacheDirs = fc.DerivedCacheDirs
	}
	if fc.WiFiOnly != nil {
		cfg.WiFiOnly = *fc.WiFiOnly
	}
	if fc.StorageUseSSL != nil {
		cfg.StorageUseSSL = *fc.StorageUseSSL
	}

	setInt(&cfg.MaxDownloads, fc.MaxDownloads)
	setInt(&cfg.MaxChunkFetches, fc.MaxChunkFetches)
	setInt(&cfg.MaxWriteBuffers, fc.MaxWriteBuffers)
	setInt(&cfg.SafetyBufferMB, fc.SafetyBufferMB)

	if fc.SettleDelay.Duration != 0 {
		cfg.SettleDelay = fc.SettleDelay.Duration
	}
	if fc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
}
