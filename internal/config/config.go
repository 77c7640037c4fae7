package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "DATAUTIL_"

// FlagKeys maps command-line flag names to configuration keys.
// Flags not listed here never reach the configuration.
var FlagKeys = map[string]string{
	"log-level": "log_level",
	"max-depth": "max_depth",
	"out":       "output_dir",
	"addr":      "server.addr",
}

// Config holds application configuration
type Config struct {
	LogLevel          string       `koanf:"log_level"`
	FallbackSchema    string       `koanf:"fallback_schema"`
	StorePath         string       `koanf:"store_path"`
	KeyPath           string       `koanf:"key_path"`
	DatabricksCatalog string       `koanf:"databricks_catalog"`
	OutputDir         string       `koanf:"output_dir"`
	MaxDepth          int          `koanf:"max_depth"`
	Server            ServerConfig `koanf:"server"`
}

// ServerConfig holds settings for the JSON API
type ServerConfig struct {
	Addr           string   `koanf:"addr"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// Dir returns the configuration directory, typically ~/.config/data-utilities
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(base, "data-utilities"), nil
}

// Default returns a Config populated with defaults
func Default() *Config {
	cfg := &Config{
		LogLevel:          "info",
		FallbackSchema:    "dbc",
		StorePath:         "connections.yaml",
		KeyPath:           "secret.key",
		DatabricksCatalog: "main",
		OutputDir:         "output",
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
	}
	if dir, err := Dir(); err == nil {
		cfg.StorePath = filepath.Join(dir, "connections.yaml")
		cfg.KeyPath = filepath.Join(dir, "secret.key")
	}
	return cfg
}

func defaults() map[string]interface{} {
	d := Default()
	return map[string]interface{}{
		"log_level":              d.LogLevel,
		"fallback_schema":        d.FallbackSchema,
		"store_path":             d.StorePath,
		"key_path":               d.KeyPath,
		"databricks_catalog":     d.DatabricksCatalog,
		"output_dir":             d.OutputDir,
		"max_depth":              d.MaxDepth,
		"server.addr":            d.Server.Addr,
		"server.allowed_origins": d.Server.AllowedOrigins,
	}
}

// Load layers defaults, the YAML file at path, DATAUTIL_* environment
// variables and the changed flags in flags, in that order.
// A missing file is not an error and flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if flags != nil {
		err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := FlagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil)
		if err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// LoadDefault loads Dir()/config.yaml
func LoadDefault(flags *pflag.FlagSet) (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return Load("", flags)
	}
	return Load(filepath.Join(dir, "config.yaml"), flags)
}

// envKey maps DATAUTIL_SERVER_ALLOWED_ORIGINS to server.allowed_origins.
// Empty values are skipped so they never clear a default.
func envKey(name, value string) (string, interface{}) {
	if value == "" {
		return "", nil
	}
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "server_"); ok {
		key = "server." + rest
	}
	if key == "server.allowed_origins" {
		origins := strings.Split(value, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		return key, origins
	}
	return key, value
}

// Validate checks values that would break later stages
func (c *Config) Validate() error {
	if c.FallbackSchema == "" {
		return fmt.Errorf("fallback_schema must not be empty")
	}
	if c.StorePath == "" {
		return fmt.Errorf("store_path must not be empty")
	}
	if c.KeyPath == "" {
		return fmt.Errorf("key_path must not be empty")
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0, got %d", c.MaxDepth)
	}
	return nil
}
