package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration. LLM provider settings live in
// llm.Config and are read from the environment separately.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
	Hints    HintsConfig    `yaml:"hints"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig selects the SQL backend. Driver is "sqlite" or "postgres".
// An empty sqlite DSN resolves to the default data path.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// RedisConfig enables cross-process progress locking when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
	Password string        `yaml:"password"`
}

type LogConfig struct {
	Mode string `yaml:"mode"`
}

// HintsConfig holds hint workflow policy.
type HintsConfig struct {
	// GenerateOnSuccess keeps generating a hint when the attempt evaluation
	// reports success.
	GenerateOnSuccess bool `yaml:"generate_on_success"`

	// PriorHintLimit is how many previously delivered hints are fed to the
	// generation prompt.
	PriorHintLimit int `yaml:"prior_hint_limit"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Driver: "sqlite"},
		Redis:    RedisConfig{LockTTL: 2 * time.Minute},
		Log:      LogConfig{Mode: "development"},
		Hints: HintsConfig{
			GenerateOnSuccess: true,
			PriorHintLimit:    5,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then HINTLY_* environment variables. A .env file in
// the working directory is loaded into the environment first when present.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("HINTLY_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("HINTLY_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("HINTLY_DB"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("HINTLY_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("HINTLY_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("HINTLY_LOG_MODE"); v != "" {
		cfg.Log.Mode = v
	}
	if v := os.Getenv("HINTLY_GENERATE_ON_SUCCESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("HINTLY_GENERATE_ON_SUCCESS: %w", err)
		}
		cfg.Hints.GenerateOnSuccess = b
	}
	if v := os.Getenv("HINTLY_PRIOR_HINT_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HINTLY_PRIOR_HINT_LIMIT: %w", err)
		}
		cfg.Hints.PriorHintLimit = n
	}
	return nil
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite":
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver: %q", c.Database.Driver)
	}
	if c.Hints.PriorHintLimit < 1 {
		return fmt.Errorf("hints.prior_hint_limit must be at least 1, got %d", c.Hints.PriorHintLimit)
	}
	return nil
}
