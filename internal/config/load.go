package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. TIENDA_DATABASE_URL for database.url.
const EnvPrefix = "TIENDA"

// Default values applied before any source is read.
const (
	DefaultDriver      = DriverPostgres
	DefaultPingTimeout = 10 * time.Second
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
)

// keys lists every setting so that viper resolves it from the environment
// even when no default or config file entry exists.
var keys = []string{
	"database.driver",
	"database.url",
	"database.ping_timeout",
	"log.level",
	"log.format",
}

// Options tune a single Load call.
type Options struct {
	// ConfigFile is an optional path to a YAML/TOML/JSON config file.
	ConfigFile string
	// DotEnvFiles are loaded into the process environment before reading it.
	// Missing files are ignored. Defaults to ".env".
	DotEnvFiles []string
	// Overrides take precedence over every other source (command line flags).
	Overrides map[string]any
}

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load(opts Options) (*Config, error) {
	if err := loadDotEnv(opts.DotEnvFiles); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("database.driver", DefaultDriver)
	v.SetDefault("database.ping_timeout", DefaultPingTimeout)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
	}

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks a Config against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func loadDotEnv(files []string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}
