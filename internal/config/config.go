package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the service configuration. It is read from an optional YAML file and then
// overridden by environment variables (a .env file is loaded into the environment first).
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Marketstack MarketstackConfig `yaml:"marketstack"`
	Cache       CacheConfig       `yaml:"cache"`
	Limits      LimitsConfig      `yaml:"limits"`
	Log         LogConfig         `yaml:"log"`
}

type ServerConfig struct {
	Port        string   `yaml:"port" validate:"required,numeric"`
	Env         string   `yaml:"env" validate:"oneof=development production test"`
	StaticDir   string   `yaml:"static_dir"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type MarketstackConfig struct {
	// APIKey is normally supplied through MARKETSTACK_API_KEY, never committed to YAML.
	APIKey    string        `yaml:"api_key"`
	BaseURL   string        `yaml:"base_url" validate:"required,url"`
	Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
	RateLimit int           `yaml:"rate_limit" validate:"gt=0"`
	PageLimit int           `yaml:"page_limit" validate:"gt=0,lte=1000"`
	MaxPages  int           `yaml:"max_pages" validate:"gt=0"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl" validate:"gte=0"`
}

type LimitsConfig struct {
	MaxSymbols int `yaml:"max_symbols" validate:"gt=0"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			Env:         "development",
			StaticDir:   "./web/dist",
			CORSOrigins: []string{"*"},
		},
		Marketstack: MarketstackConfig{
			BaseURL:   "http://api.marketstack.com/v1",
			Timeout:   30 * time.Second,
			RateLimit: 5,
			PageLimit: 1000,
			MaxPages:  20,
		},
		Cache: CacheConfig{
			TTL: time.Hour,
		},
		Limits: LimitsConfig{
			MaxSymbols: 10,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped when
// path is empty), the .env file and the environment, then validates it.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "API_PORT")
	setString(&c.Server.Env, "API_ENV")
	setString(&c.Server.StaticDir, "STATIC_DIR")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}

	// MARKETSTACK_API_KEY_FREE is the older variable name and only used as a fallback.
	setString(&c.Marketstack.APIKey, "MARKETSTACK_API_KEY_FREE")
	setString(&c.Marketstack.APIKey, "MARKETSTACK_API_KEY")
	setString(&c.Marketstack.BaseURL, "MARKETSTACK_BASE_URL")
	if err := setInt(&c.Marketstack.RateLimit, "MARKETSTACK_RATE_LIMIT"); err != nil {
		return err
	}
	if err := setDuration(&c.Marketstack.Timeout, "MARKETSTACK_TIMEOUT"); err != nil {
		return err
	}

	if v := os.Getenv("ENABLE_MARKETSTACK_CACHE"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ENABLE_MARKETSTACK_CACHE: %w", err)
		}
		c.Cache.Enabled = enabled
	}
	if err := setDuration(&c.Cache.TTL, "MARKETSTACK_CACHE_TTL"); err != nil {
		return err
	}

	if err := setInt(&c.Limits.MaxSymbols, "MAX_SYMBOLS"); err != nil {
		return err
	}
	setString(&c.Log.Level, "LOG_LEVEL")
	return nil
}

var validate = validator.New()

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}
	return nil
}

// IsProduction reports whether the service runs with API_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// CacheEnabled reports whether the upstream response cache should be created.
// Caching is for local development and is always off in production.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled && !c.IsProduction()
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
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

func setDuration(dst *time.Duration, key string) error {
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

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
