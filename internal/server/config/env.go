package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays environment variables. A .env file in the working
// directory is loaded first if present; variables already set in the
// process environment win over it.
func parseEnv(config *Config) error {
	_ = godotenv.Load()

	setString(&config.HTTPAddr, os.Getenv("HTTP_ADDR"))
	if v, ok := os.LookupEnv("GRPC_ADDR"); ok {
		config.GRPCAddr = v
	}
	setString(&config.LogLevel, os.Getenv("LOG_LEVEL"))
	setString(&config.StorageBackend, os.Getenv("STORAGE_BACKEND"))
	setString(&config.DatabaseDSN, os.Getenv("DATABASE_DSN"))
	setString(&config.RedisURL, os.Getenv("REDIS_URL"))
	setString(&config.SecretKey, os.Getenv("JWT_SECRET"))
	setString(&config.SeedSource, os.Getenv("SEED_SOURCE"))
	setString(&config.S3AccessKey, os.Getenv("S3_ACCESS_KEY"))
	setString(&config.S3SecretKey, os.Getenv("S3_SECRET_KEY"))
	setString(&config.S3Region, os.Getenv("S3_REGION"))
	setString(&config.S3BaseEndpoint, os.Getenv("S3_BASE_ENDPOINT"))

	if err := envDuration("TOKEN_TTL", &config.TokenTTL); err != nil {
		return err
	}
	if err := envDuration("REQUEST_TIMEOUT", &config.RequestTimeout); err != nil {
		return err
	}
	if err := envInt("BCRYPT_COST", &config.BcryptCost); err != nil {
		return err
	}
	if err := envInt("HASH_WORKERS", &config.HashWorkers); err != nil {
		return err
	}
	if err := envInt("LOGIN_RATE_BURST", &config.LoginRateBurst); err != nil {
		return err
	}
	if v := os.Getenv("LOGIN_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("LOGIN_RATE_LIMIT: %w", err)
		}
		config.LoginRateLimit = f
	}
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("COOKIE_SECURE: %w", err)
		}
		config.CookieSecure = b
	}

	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
