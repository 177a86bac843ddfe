package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, ":50051", c.GRPCAddr)
	assert.Equal(t, BackendMemory, c.StorageBackend)
	assert.Equal(t, "", c.SecretKey)
	assert.Equal(t, 24*time.Hour, c.TokenTTL)
	assert.Equal(t, 10, c.BcryptCost)
	assert.Equal(t, runtime.NumCPU(), c.HashWorkers)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.False(t, c.CookieSecure)
	assert.Equal(t, "us-east-1", c.S3Region)
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown backend", func(c *Config) { c.StorageBackend = "mongo" }},
		{"empty http addr", func(c *Config) { c.HTTPAddr = "" }},
		{"zero ttl", func(c *Config) { c.TokenTTL = 0 }},
		{"low bcrypt cost", func(c *Config) { c.BcryptCost = 1 }},
		{"high bcrypt cost", func(c *Config) { c.BcryptCost = 40 }},
		{"no hash workers", func(c *Config) { c.HashWorkers = 0 }},
		{"no request timeout", func(c *Config) { c.RequestTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadConfig_LayerOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"http_addr": ":9000",
		"storage_backend": "redis",
		"secret_key": "from-json",
		"token_ttl": "2h"
	}`), 0o600))

	chdir(t, dir)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("REQUEST_TIMEOUT", "3s")

	c, err := LoadConfig([]string{"-c", path, "-a", ":7000", "-t", "30"})
	require.NoError(t, err)

	assert.Equal(t, ":7000", c.HTTPAddr, "flag wins over json")
	assert.Equal(t, BackendRedis, c.StorageBackend, "json wins over defaults")
	assert.Equal(t, "from-env", c.SecretKey, "env wins over json")
	assert.Equal(t, 30*time.Minute, c.TokenTTL, "flag wins over json")
	assert.Equal(t, 3*time.Second, c.RequestTimeout)
}

func TestLoadConfig_SubMinuteTTLSurvivesFlags(t *testing.T) {
	chdir(t, t.TempDir())

	for env, want := range map[string]time.Duration{"90s": 90 * time.Second, "30s": 30 * time.Second} {
		t.Setenv("TOKEN_TTL", env)

		c, err := LoadConfig([]string{"-a", ":7000"})
		require.NoError(t, err, "TOKEN_TTL=%s", env)
		assert.Equal(t, want, c.TokenTTL, "TOKEN_TTL=%s", env)
	}
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HASH_WORKERS=3\nCOOKIE_SECURE=true\n"), 0o600))
	chdir(t, dir)
	// godotenv.Load never overrides variables already present, so clear
	// them for the duration of the test.
	t.Setenv("HASH_WORKERS", "")
	os.Unsetenv("HASH_WORKERS")
	t.Setenv("COOKIE_SECURE", "")
	os.Unsetenv("COOKIE_SECURE")

	c, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, 3, c.HashWorkers)
	assert.True(t, c.CookieSecure)
}

func TestLoadConfig_Errors(t *testing.T) {
	chdir(t, t.TempDir())

	t.Run("missing json file", func(t *testing.T) {
		_, err := LoadConfig([]string{"-c", "/nonexistent/config.json"})
		assert.Error(t, err)
	})

	t.Run("bad env duration", func(t *testing.T) {
		t.Setenv("TOKEN_TTL", "forever")
		_, err := LoadConfig(nil)
		assert.Error(t, err)
	})

	t.Run("bad flag value", func(t *testing.T) {
		_, err := LoadConfig([]string{"-t", "soon"})
		assert.Error(t, err)
	})

	t.Run("invalid backend", func(t *testing.T) {
		_, err := LoadConfig([]string{"-b", "mongo"})
		assert.Error(t, err)
	})
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
