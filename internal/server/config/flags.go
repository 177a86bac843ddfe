package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/entrelibros-auth/internal/flagx"
)

// parseFlags overlays command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-g string   gRPC bind address; empty disables gRPC
//	-b string   storage backend: memory, postgres, redis
//	-d string   PostgreSQL DSN
//	-r string   Redis URL
//	-s string   token signing secret
//	-t int      token lifetime, minutes
//	-l string   log level
//	-seed string  users seed: path or s3://bucket/key
//
// Only these flags are read from args (see flagx.FilterArgs), so -c and
// anything meant for other components pass through untouched.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-b", "-d", "-r", "-s", "-t", "-l", "-seed"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC address and port")
	fs.StringVar(&config.StorageBackend, "b", config.StorageBackend, "storage backend")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "redis URL")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	ttl := fs.Int("t", int(config.TokenTTL.Minutes()), "token lifetime (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.SeedSource, "seed", config.SeedSource, "users seed source")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// -t only counts when given; the other layers may hold sub-minute values.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.TokenTTL = time.Duration(*ttl) * time.Minute
		}
	})
	return nil
}
