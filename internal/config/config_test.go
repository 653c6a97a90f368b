package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Load(New())

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 500, cfg.RowPageLimit)
	assert.Equal(t, "Superstore.xls", cfg.DataFile)
	assert.False(t, cfg.StrictParse)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.NoError(t, cfg.Validate())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("SALESDASH_PORT", "9090")
	t.Setenv("SALESDASH_ROW_PAGE_LIMIT", "50")
	t.Setenv("SALESDASH_STRICT_PARSE", "true")
	t.Setenv("SALESDASH_SHUTDOWN_TIMEOUT", "5s")

	cfg := Load(New())
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 50, cfg.RowPageLimit)
	assert.True(t, cfg.StrictParse)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("SALESDASH_DATA_FILE", "from-env.csv")

	v := New()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String(KeyDataFile, "Superstore.xls", "")
	flags.String(KeyLogFormat, "text", "")
	require.NoError(t, flags.Parse([]string{"--data-file", "from-flag.csv"}))
	require.NoError(t, BindFlags(v, flags))

	cfg := Load(v)
	assert.Equal(t, "from-flag.csv", cfg.DataFile)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestValidate(t *testing.T) {
	valid := func() *Config { return Load(New()) }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"port not a number", func(c *Config) { c.Port = "http" }, "invalid port 'http'"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "between 1 and 65535"},
		{"short shutdown", func(c *Config) { c.ShutdownTimeout = time.Millisecond }, "shutdown timeout"},
		{"upload size", func(c *Config) { c.MaxUploadBytes = 0 }, "max upload size"},
		{"page limit", func(c *Config) { c.RowPageLimit = 0 }, "row page limit"},
		{"log level", func(c *Config) { c.LogLevel = "verbose" }, "invalid log level"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "invalid log format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("collects every problem", func(t *testing.T) {
		cfg := valid()
		cfg.Port = "0"
		cfg.LogFormat = "xml"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid port 0")
		assert.Contains(t, err.Error(), "invalid log format")
	})
}
