// Package config loads runtime configuration for the gophauth CLI.
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. GOPHAUTH_CLIENT_* environment variables.
//  4. Command-line flags: -a endpoint, -i check interval (seconds), -d data dir.
//
// The JSON loader uses timex.Duration, so intervals may be "3s" or integer
// nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "data_dir": ".gophauth"
//	}
package config

import (
	"errors"
	"time"
)

// Config holds runtime settings for the CLI.
//
// DataDir, relative to the working directory unless absolute, holds the local
// SQLite database with the persisted session token.
type Config struct {
	ServerEndpointAddr  string        `env:"SERVER_ADDR"`
	OnlineCheckInterval time.Duration `env:"ONLINE_CHECK_INTERVAL"`
	DataDir             string        `env:"DATA_DIR"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.DataDir = ".gophauth"
}

// LoadConfig constructs a Config from defaults, JSON, environment and flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

// Validate rejects settings the CLI cannot run with.
func (c *Config) Validate() error {
	if c.ServerEndpointAddr == "" {
		return errors.New("server address must not be empty")
	}
	if c.OnlineCheckInterval <= 0 {
		return errors.New("online check interval must be positive")
	}
	if c.DataDir == "" {
		return errors.New("data directory must not be empty")
	}
	return nil
}
