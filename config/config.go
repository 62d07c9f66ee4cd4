package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables before they are mapped onto keys.
const EnvPrefix = "BRICKSQL_"

// DefaultFile is the configuration file Load reads when present.
const DefaultFile = "config.yaml"

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. The YAML file at path (DefaultFile when empty; optional)
// 3. Default values (lowest priority)
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}

	return load(func(k *koanf.Koanf) error {
		err := k.Load(file.Provider(path), yaml.Parser())
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		return nil
	})
}

// LoadBytes loads configuration from an in-memory YAML document layered
// between the defaults and the environment.
func LoadBytes(data []byte) (*Config, error) {
	return load(func(k *koanf.Koanf) error {
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return fmt.Errorf("failed to parse yaml: %w", err)
		}
		return nil
	})
}

func load(source func(*koanf.Koanf) error) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := source(k); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.k = k

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// envKey converts BRICKSQL_DATABASE_QUERY_SLOW_THRESHOLD to database.query.slow.threshold.
func envKey(k, v string) (string, any) {
	k = strings.TrimPrefix(k, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(k), "_", "."), v
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":    "bricksql",
		"app.version": "v1.0.0",
		"app.env":     "development",

		"log.level":  "info",
		"log.pretty": false,

		// Vendor and credentials have no defaults; a database is only
		// used when explicitly configured.
		"database.query.slow.threshold":  defaultSlowQueryThreshold.String(),
		"database.query.log.maxlength":   defaultMaxQueryLength,
		"database.query.log.parameters":  false,
		"database.pool.max.connections":  defaultMaxConnections,
		"database.pool.idle.connections": defaultIdleConnections,
		"database.quoteidentifiers":      false,
		"database.strictparentheses":     false,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}

// String returns the raw value at key, for settings not modelled on Config.
func (c *Config) String(key string) string {
	if c == nil || c.k == nil {
		return ""
	}
	return c.k.String(key)
}

// Exists reports whether key was set by any configuration source.
func (c *Config) Exists(key string) bool {
	if c == nil || c.k == nil {
		return false
	}
	return c.k.Exists(key)
}
