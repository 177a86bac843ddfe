package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	var c Config
	c.LoadDefaults()

	args := []string{"-c", "ignored.json", "-a", ":8181", "-g", "", "-b", "postgres",
		"-d", "postgres://x", "-s", "k", "-t", "15", "-l", "debug", "-seed", "users.json", "-unknown", "v"}
	require.NoError(t, parseFlags(&c, args))

	assert.Equal(t, ":8181", c.HTTPAddr)
	assert.Equal(t, "", c.GRPCAddr)
	assert.Equal(t, BackendPostgres, c.StorageBackend)
	assert.Equal(t, "postgres://x", c.DatabaseDSN)
	assert.Equal(t, "k", c.SecretKey)
	assert.Equal(t, 15*time.Minute, c.TokenTTL)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "users.json", c.SeedSource)
}

func TestParseFlags_KeepsTTLWhenAbsent(t *testing.T) {
	var c Config
	c.LoadDefaults()
	require.NoError(t, parseFlags(&c, nil))
	assert.Equal(t, 24*time.Hour, c.TokenTTL)

	c.TokenTTL = 90 * time.Second
	require.NoError(t, parseFlags(&c, []string{"-l", "warn"}))
	assert.Equal(t, 90*time.Second, c.TokenTTL)
}
