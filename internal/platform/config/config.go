package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"

	EnvEndpointURL = "STUDYDASH_ENDPOINT_URL"

	DefaultRefreshInterval = 60 * time.Second
	DefaultRequestTimeout  = 15 * time.Second
)

type Config struct {
	EndpointURL     string        `yaml:"endpoint_url"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	DataDir         string        `yaml:"data_dir"`
	DurableStore    DurableStore  `yaml:"durable_store"`
	Log             Log           `yaml:"log"`
}

// DurableStore selects where tokens and preferences that outlive a run are kept.
type DurableStore struct {
	Backend     string `yaml:"backend"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix"`
}

type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func Default() Config {
	dataDir := ".studydash"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".studydash")
	}
	return Config{
		RefreshInterval: DefaultRefreshInterval,
		RequestTimeout:  DefaultRequestTimeout,
		DataDir:         dataDir,
		DurableStore:    DurableStore{Backend: BackendSQLite, RedisPrefix: "studydash:"},
		Log:             Log{Level: "info"},
	}
}

// Load reads the YAML file at path on top of the defaults. An empty path or a
// missing file yields the defaults. dataDir, when set, wins over the file.
func Load(path, dataDir string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("decode config %s: %w", path, err)
			}
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvEndpointURL)); v != "" {
		cfg.EndpointURL = v
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(cfg.DataDir, "studydash.log")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data dir is required")
	}
	if c.EndpointURL != "" {
		u, err := url.Parse(c.EndpointURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("endpoint url %q is not absolute", c.EndpointURL)
		}
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	switch c.DurableStore.Backend {
	case BackendSQLite:
	case BackendRedis:
		if c.DurableStore.RedisAddr == "" {
			return fmt.Errorf("redis backend requires redis_addr")
		}
	default:
		return fmt.Errorf("unknown durable store backend %q", c.DurableStore.Backend)
	}
	return nil
}

func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "studydash.db")
}

func (c Config) KeyPath() string {
	return filepath.Join(c.DataDir, "keys", "symmetric.key")
}
