// Package config holds settings for the command-line client: defaults,
// overlaid by an optional JSON file. Command flags are applied by the
// cli package on top of the loaded values.
package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/entrelibros-auth/internal/timex"
)

// Config holds runtime settings for the CLI.
//
// Fields:
//   - ServerURL: base URL of the HTTP API.
//   - GRPCAddr: host:port of the gRPC endpoint; when set, gRPC is used
//     instead of HTTP.
//   - Timeout: per-command deadline.
type Config struct {
	ServerURL string
	GRPCAddr  string
	Timeout   time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.GRPCAddr = ""
	c.Timeout = 10 * time.Second
}

// JsonConfig is the on-disk shape of the client config file.
type JsonConfig struct {
	ServerURL string          `json:"server_url"`
	GRPCAddr  string          `json:"grpc_addr"`
	Timeout   *timex.Duration `json:"timeout"`
}

// LoadConfig returns defaults overlaid with the JSON file at path, if
// path is not empty.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var j JsonConfig
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}

	if j.ServerURL != "" {
		cfg.ServerURL = j.ServerURL
	}
	if j.GRPCAddr != "" {
		cfg.GRPCAddr = j.GRPCAddr
	}
	if j.Timeout != nil {
		cfg.Timeout = j.Timeout.Duration
	}

	return cfg, nil
}
