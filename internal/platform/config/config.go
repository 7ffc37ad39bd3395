package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends accepted by Storage.Backend.
const (
	StorageFile   = "file"
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config is the full shell configuration.
type Config struct {
	Server  Server  `yaml:"server"`
	Backend Backend `yaml:"backend"`
	Storage Storage `yaml:"storage"`
	Redis   Redis   `yaml:"redis"`
	Log     Log     `yaml:"log"`
	Tracing Tracing `yaml:"tracing"`
}

// Server captures HTTP server level configuration for the client shell.
type Server struct {
	Addr           string `yaml:"addr"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

// Backend is the external REST API every gateway call is relative to.
type Backend struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Storage selects where the credential and role tag are persisted.
type Storage struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// Redis configures the shared storage backend.
type Redis struct {
	URL          string        `yaml:"url"`
	KeyPrefix    string        `yaml:"key_prefix"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Tracing turns on span export for gateway calls.
type Tracing struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// DefaultBaseURL matches the development backend.
const DefaultBaseURL = "http://localhost:4000/api/v1"

// DefaultTimeout is the request ceiling applied to every gateway call.
const DefaultTimeout = 15 * time.Second

// Defaults returns the development configuration.
func Defaults() Config {
	return Config{
		Server: Server{
			Addr:           ":3000",
			MetricsEnabled: true,
		},
		Backend: Backend{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
		},
		Storage: Storage{
			Backend: StorageFile,
			Path:    defaultStoragePath(),
		},
		Redis: Redis{
			KeyPrefix:    "foodreel:",
			PoolSize:     10,
			MinIdleConns: 1,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
		Tracing: Tracing{
			ServiceName: "foodreel-shell",
			SampleRatio: 1,
		},
	}
}

// FromEnv builds a Config from defaults and environment variables so main stays lean.
func FromEnv() Config {
	cfg := Defaults()
	applyEnv(&cfg)
	return cfg
}

// Load applies defaults, then the YAML file named by FOODREEL_CONFIG (if any),
// then environment variables.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("FOODREEL_CONFIG"); path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = merge(cfg, fileCfg)
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads and parses a YAML configuration file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the shell cannot start with.
func (c Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base url is required")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive, got %s", c.Backend.Timeout)
	}
	switch c.Storage.Backend {
	case StorageFile:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage path is required for the file backend")
		}
	case StorageMemory:
	case StorageRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("redis url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing sample ratio must be within [0, 1], got %v", c.Tracing.SampleRatio)
	}
	return nil
}

// merge returns base with every non-zero field of override applied.
func merge(base, override Config) Config {
	result := base
	if override.Server.Addr != "" {
		result.Server.Addr = override.Server.Addr
	}
	if override.Server.MetricsEnabled {
		result.Server.MetricsEnabled = true
	}
	if override.Backend.BaseURL != "" {
		result.Backend.BaseURL = override.Backend.BaseURL
	}
	if override.Backend.Timeout > 0 {
		result.Backend.Timeout = override.Backend.Timeout
	}
	if override.Storage.Backend != "" {
		result.Storage.Backend = override.Storage.Backend
	}
	if override.Storage.Path != "" {
		result.Storage.Path = override.Storage.Path
	}
	if override.Redis.URL != "" {
		result.Redis.URL = override.Redis.URL
	}
	if override.Redis.KeyPrefix != "" {
		result.Redis.KeyPrefix = override.Redis.KeyPrefix
	}
	if override.Redis.PoolSize > 0 {
		result.Redis.PoolSize = override.Redis.PoolSize
	}
	if override.Redis.MinIdleConns > 0 {
		result.Redis.MinIdleConns = override.Redis.MinIdleConns
	}
	if override.Redis.DialTimeout > 0 {
		result.Redis.DialTimeout = override.Redis.DialTimeout
	}
	if override.Redis.ReadTimeout > 0 {
		result.Redis.ReadTimeout = override.Redis.ReadTimeout
	}
	if override.Redis.WriteTimeout > 0 {
		result.Redis.WriteTimeout = override.Redis.WriteTimeout
	}
	if override.Log.Level != "" {
		result.Log.Level = override.Log.Level
	}
	if override.Log.Format != "" {
		result.Log.Format = override.Log.Format
	}
	if override.Tracing.Enabled {
		result.Tracing.Enabled = true
	}
	if override.Tracing.ServiceName != "" {
		result.Tracing.ServiceName = override.Tracing.ServiceName
	}
	if override.Tracing.SampleRatio > 0 {
		result.Tracing.SampleRatio = override.Tracing.SampleRatio
	}
	return result
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FOODREEL_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("FOODREEL_METRICS_ENABLED"); v != "" {
		cfg.Server.MetricsEnabled = v == "true"
	}
	if v := os.Getenv("FOODREEL_API_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("FOODREEL_API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Backend.Timeout = d
		}
	}
	if v := os.Getenv("FOODREEL_STORAGE"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("FOODREEL_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("REDIS_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.PoolSize = n
		}
	}
	if v := os.Getenv("FOODREEL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("FOODREEL_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("FOODREEL_TRACING_ENABLED"); v != "" {
		cfg.Tracing.Enabled = v == "true"
	}
	if v := os.Getenv("FOODREEL_TRACING_SAMPLE_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Tracing.SampleRatio = f
		}
	}
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".foodreel", "session.json")
	}
	return filepath.Join(dir, "foodreel", "session.json")
}
