package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	goAuthClient "github.com/MrEthical07/goAuthClient"
)

type Config struct {
	BaseURL     string        `yaml:"base_url" env:"BUSCTL_BASE_URL" env-default:"http://localhost:8080/api/v1"`
	RefreshMode string        `yaml:"refresh_mode" env:"BUSCTL_REFRESH_MODE" env-default:"body"`
	Timeout     time.Duration `yaml:"timeout" env:"BUSCTL_TIMEOUT" env-default:"30s"`
	Profile     string        `yaml:"profile" env:"BUSCTL_PROFILE" env-default:"default"`
	LogLevel    string        `yaml:"log_level" env:"BUSCTL_LOG_LEVEL" env-default:"warn"`
	AuditLog    string        `yaml:"audit_log" env:"BUSCTL_AUDIT_LOG"`
	Redis       Redis         `yaml:"redis"`

	// Credentials used to log in automatically when no session is stored.
	Email    string `yaml:"email" env:"BUSCTL_EMAIL"`
	Password string `yaml:"-" env:"BUSCTL_PASSWORD"`
}

type Redis struct {
	Addr     string        `yaml:"addr" env:"BUSCTL_REDIS_ADDR"`
	Password string        `yaml:"password" env:"BUSCTL_REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"BUSCTL_REDIS_DB" env-default:"0"`
	Prefix   string        `yaml:"prefix" env:"BUSCTL_REDIS_PREFIX" env-default:"busctl"`
	TTL      time.Duration `yaml:"ttl" env:"BUSCTL_REDIS_TTL" env-default:"168h"`
}

// LoadConfig reads .env (if present) into the environment, then the YAML file
// at path (if set), then environment variables, which win over the file.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	return &cfg, nil
}

// ClientConfig maps the CLI settings onto a goAuthClient.Config.
func (c *Config) ClientConfig() (goAuthClient.Config, error) {
	mode, ok := goAuthClient.ParseRefreshMode(c.RefreshMode)
	if !ok {
		return goAuthClient.Config{}, fmt.Errorf("unknown refresh mode %q", c.RefreshMode)
	}
	cfg := goAuthClient.DefaultConfig()
	cfg.BaseURL = c.BaseURL
	cfg.Timeout = c.Timeout
	cfg.UserAgent = "busctl"
	cfg.Paths.Logout = "/auth/logout"
	cfg.Refresh.Mode = mode
	cfg.Metrics.Enabled = true
	cfg.Audit.Enabled = c.AuditLog != ""
	return cfg, cfg.Validate()
}

func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelWarn
	}
	return lvl
}
