package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/entrelibros-auth/internal/flagx"
	"github.com/dmitrijs2005/entrelibros-auth/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer and zero
// values mean "not set" so a partial file only overrides what it names.
// Durations accept "15m" style strings or integer nanoseconds.
type JsonConfig struct {
	HTTPAddr       string          `json:"http_addr"`
	GRPCAddr       *string         `json:"grpc_addr"`
	LogLevel       string          `json:"log_level"`
	StorageBackend string          `json:"storage_backend"`
	DatabaseDSN    string          `json:"database_dsn"`
	RedisURL       string          `json:"redis_url"`
	SecretKey      string          `json:"secret_key"`
	TokenTTL       *timex.Duration `json:"token_ttl"`
	BcryptCost     int             `json:"bcrypt_cost"`
	HashWorkers    int             `json:"hash_workers"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	CookieSecure   *bool           `json:"cookie_secure"`
	LoginRateLimit *float64        `json:"login_rate_limit"`
	LoginRateBurst int             `json:"login_rate_burst"`
	SeedSource     string          `json:"seed_source"`
	S3AccessKey    string          `json:"s3_access_key"`
	S3SecretKey    string          `json:"s3_secret_key"`
	S3Region       string          `json:"s3_region"`
	S3BaseEndpoint string          `json:"s3_base_endpoint"`
}

// parseJson loads the file given by -c / -config, if any, over config.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	if c.GRPCAddr != nil {
		config.GRPCAddr = *c.GRPCAddr
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RedisURL, c.RedisURL)
	setString(&config.SecretKey, c.SecretKey)
	if c.TokenTTL != nil {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.HashWorkers != 0 {
		config.HashWorkers = c.HashWorkers
	}
	if c.RequestTimeout != nil {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.LoginRateLimit != nil {
		config.LoginRateLimit = *c.LoginRateLimit
	}
	if c.LoginRateBurst != 0 {
		config.LoginRateBurst = c.LoginRateBurst
	}
	setString(&config.SeedSource, c.SeedSource)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
