package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Dictionary DictionaryConfig `mapstructure:"dictionary"`
	Store      StoreConfig      `mapstructure:"store"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Convert    ConvertConfig    `mapstructure:"convert"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DictionaryConfig selects where conversion profiles come from
type DictionaryConfig struct {
	ProfileDir     string        `mapstructure:"profile_dir"` // extra *.json profiles
	DefaultProfile string        `mapstructure:"default_profile"`
	Watch          bool          `mapstructure:"watch"`
	WatchDebounce  time.Duration `mapstructure:"watch_debounce"`
}

// StoreConfig holds the compiled dictionary store configuration
type StoreConfig struct {
	Path         string `mapstructure:"path"` // empty disables the store
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// ConvertConfig bounds conversion requests
type ConvertConfig struct {
	MaxTextBytes int `mapstructure:"max_text_bytes"`
	MaxBatch     int `mapstructure:"max_batch"`
	Workers      int `mapstructure:"workers"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	// A missing .env file is fine
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("dictionary.profile_dir", "")
	v.SetDefault("dictionary.default_profile", "s2t")
	v.SetDefault("dictionary.watch", false)
	v.SetDefault("dictionary.watch_debounce", 500*time.Millisecond)
	v.SetDefault("store.path", "")
	v.SetDefault("store.max_open_conns", 4)
	v.SetDefault("store.max_idle_conns", 2)
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20.0)
	v.SetDefault("rate_limit.burst", 40)
	v.SetDefault("convert.max_text_bytes", 1<<20)
	v.SetDefault("convert.max_batch", 1000)
	v.SetDefault("convert.workers", 0)
}

func bindEnvVars(v *viper.Viper) {
	// Server
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			v.Set("server.port", p)
		}
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		v.Set("server.mode", mode)
	}

	// Dictionaries
	if dir := os.Getenv("ZHCONV_PROFILE_DIR"); dir != "" {
		v.Set("dictionary.profile_dir", dir)
	}
	if profile := os.Getenv("ZHCONV_DEFAULT_PROFILE"); profile != "" {
		v.Set("dictionary.default_profile", profile)
	}
	if watch := os.Getenv("ZHCONV_WATCH"); watch != "" {
		v.Set("dictionary.watch", watch == "true")
	}

	// Store
	if store := os.Getenv("ZHCONV_STORE"); store != "" {
		v.Set("store.path", store)
	}

	// Rate Limit
	if enabled := os.Getenv("RATE_LIMIT_ENABLED"); enabled != "" {
		v.Set("rate_limit.enabled", enabled == "true")
	}
	if rps := os.Getenv("RATE_LIMIT_RPS"); rps != "" {
		if r, err := strconv.ParseFloat(rps, 64); err == nil {
			v.Set("rate_limit.requests_per_second", r)
		}
	}
	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		if b, err := strconv.Atoi(burst); err == nil {
			v.Set("rate_limit.burst", b)
		}
	}

	// Convert
	if maxBytes := os.Getenv("ZHCONV_MAX_TEXT_BYTES"); maxBytes != "" {
		if n, err := strconv.Atoi(maxBytes); err == nil {
			v.Set("convert.max_text_bytes", n)
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Server.Mode != "debug" && c.Server.Mode != "release" && c.Server.Mode != "test" {
		return fmt.Errorf("invalid server mode: %s (must be 'debug', 'release', or 'test')", c.Server.Mode)
	}

	if c.Dictionary.DefaultProfile == "" {
		return fmt.Errorf("default profile cannot be empty")
	}

	if c.Dictionary.Watch && c.Dictionary.ProfileDir == "" {
		return fmt.Errorf("dictionary watch requires a profile_dir")
	}

	if c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate limit requests_per_second must be positive")
	}

	if c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	if c.Convert.MaxTextBytes <= 0 {
		return fmt.Errorf("convert max_text_bytes must be positive")
	}

	if c.Convert.MaxBatch <= 0 {
		return fmt.Errorf("convert max_batch must be positive")
	}

	return nil
}
