package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/drivesync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags:
//
//	-a string   gateway URL
//	-k string   API key
//	-d string   database path
//	-o string   download directory
//	-g string   gallery directory
//	-w          download over Wi-Fi only
//	-l string   log level (debug, info, warn, error)
//	-i int      online check interval in seconds
//
// Only these flags are looked at; everything else in os.Args is ignored.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-d", "-o", "-g", "-w", "-l", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.GatewayURL, "a", cfg.GatewayURL, "gateway URL")
	fs.StringVar(&cfg.APIKey, "k", cfg.APIKey, "API key")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "database path")
	fs.StringVar(&cfg.DownloadDir, "o", cfg.DownloadDir, "download directory")
	fs.StringVar(&cfg.GalleryDir, "g", cfg.GalleryDir, "gallery directory")
	fs.BoolVar(&cfg.WiFiOnly, "w", cfg.WiFiOnly, "download over Wi-Fi only")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
	if *onlineCheckInterval <= 0 {
		panic(fmt.Errorf("invalid value %d for flag -i: must be positive", *onlineCheckInterval))
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
