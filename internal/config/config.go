package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. SALESDASH_PORT.
const EnvPrefix = "SALESDASH"

type Config struct {
	// HTTP Server
	Port            string
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
	RowPageLimit    int

	// Dataset
	DataFile    string
	StrictParse bool

	// Logging
	LogLevel  string
	LogFormat string
}

// Keys shared by flags, environment variables and config files.
const (
	KeyPort            = "port"
	KeyShutdownTimeout = "shutdown-timeout"
	KeyMaxUploadBytes  = "max-upload-bytes"
	KeyRowPageLimit    = "row-page-limit"
	KeyDataFile        = "data-file"
	KeyStrictParse     = "strict-parse"
	KeyLogLevel        = "log-level"
	KeyLogFormat       = "log-format"
)

// New returns a viper instance with defaults and environment binding set up.
// A .env file in the working directory is loaded first when present.
func New() *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyShutdownTimeout, 30*time.Second)
	v.SetDefault(KeyMaxUploadBytes, int64(32<<20))
	v.SetDefault(KeyRowPageLimit, 500)
	v.SetDefault(KeyDataFile, "Superstore.xls")
	v.SetDefault(KeyStrictParse, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags lets command line flags override environment and defaults.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	return v.BindPFlags(flags)
}

// Load reads the effective configuration out of v.
func Load(v *viper.Viper) *Config {
	return &Config{
		Port:            v.GetString(KeyPort),
		ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
		MaxUploadBytes:  v.GetInt64(KeyMaxUploadBytes),
		RowPageLimit:    v.GetInt(KeyRowPageLimit),
		DataFile:        v.GetString(KeyDataFile),
		StrictParse:     v.GetBool(KeyStrictParse),
		LogLevel:        v.GetString(KeyLogLevel),
		LogFormat:       v.GetString(KeyLogFormat),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	if c.MaxUploadBytes < 1 {
		errors = append(errors, fmt.Sprintf("invalid max upload size %d: must be positive", c.MaxUploadBytes))
	}

	if c.RowPageLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid row page limit %d: must be at least 1", c.RowPageLimit))
	} else if c.RowPageLimit > 100000 {
		errors = append(errors, fmt.Sprintf("invalid row page limit %d: must be at most 100000", c.RowPageLimit))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}
