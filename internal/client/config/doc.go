// Package config loads the drive client configuration.
//
// Values are applied in this order, later sources winning:
//
//  1. built-in defaults (Config.LoadDefaults)
//  2. a JSON or YAML file named by -c / -config
//  3. command-line flags
//
// The file format is picked by extension: .yaml and .yml are YAML, anything
// else is JSON. Durations accept "5s" style strings or integer nanoseconds.
//
// Example:
//
//	cfg := config.LoadConfig()
//	fmt.Println(cfg.GatewayURL, cfg.DownloadDir)
package config
