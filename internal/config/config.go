package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultFile is read when present; its absence is not an error.
const DefaultFile = "config.yaml"

// EnvPrefix prefixes every environment override. Nested keys use "__",
// e.g. ROLLCALL_UPSTREAM__BASE_URL.
const EnvPrefix = "ROLLCALL_"

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Upstream   UpstreamConfig   `koanf:"upstream"`
	Pagination PaginationConfig `koanf:"pagination"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
	Metrics    MetricsConfig    `koanf:"metrics"`
	Log        LogConfig        `koanf:"log"`
}

type ServerConfig struct {
	Port           int        `koanf:"port"`
	RequestTimeout string     `koanf:"request_timeout"` // Duration string like "30s"
	CORS           CORSConfig `koanf:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

type UpstreamConfig struct {
	BaseURL             string `koanf:"base_url"`
	Timeout             string `koanf:"timeout"`
	UserAgent           string `koanf:"user_agent"`
	DenyPrivateNetworks bool   `koanf:"deny_private_networks"`
}

type PaginationConfig struct {
	MaxPages int `koanf:"max_pages"`
}

type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

var defaults = map[string]any{
	"server.port":                    8080,
	"server.request_timeout":         "30s",
	"server.cors.allowed_origins":    []string{"*"},
	"upstream.base_url":              "https://dadosabertos.camara.leg.br/api/v2",
	"upstream.timeout":               "20s",
	"upstream.user_agent":            "rollcall-gateway/1.0",
	"upstream.deny_private_networks": false,
	"pagination.max_pages":           50,
	"telemetry.enabled":              false,
	"telemetry.service_name":         "rollcall-gateway",
	"metrics.enabled":                true,
	"log.level":                      "info",
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads DefaultFile (if present) and ROLLCALL_ environment overrides.
func Load() (*Config, error) {
	return LoadFile(DefaultFile)
}

// LoadFile is Load with an explicit config file path. A missing file is
// ignored.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			// File not found is OK, we'll use env vars
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to load %s: %w", path, err)
			}
		}
	}

	// Environment variables override file config
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	applyDefaults(k)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	cfg.Upstream.BaseURL = substituteEnvVars(cfg.Upstream.BaseURL)
	cfg.Upstream.UserAgent = substituteEnvVars(cfg.Upstream.UserAgent)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration, ignoring files and the
// environment.
func Default() *Config {
	k := koanf.New(".")
	applyDefaults(k)
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return &cfg
}

func applyDefaults(k *koanf.Koanf) {
	for key, v := range defaults {
		if !k.Exists(key) {
			_ = k.Set(key, v)
		}
	}
}

// Validate checks values koanf cannot type-check.
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return errors.New("upstream.base_url must not be empty")
	}
	if c.Pagination.MaxPages < 1 {
		return fmt.Errorf("pagination.max_pages must be positive, got %d", c.Pagination.MaxPages)
	}
	if _, err := c.Server.RequestTimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.Upstream.TimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// RequestTimeoutDuration parses server.request_timeout.
func (s ServerConfig) RequestTimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(s.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid server.request_timeout %q: %w", s.RequestTimeout, err)
	}
	return d, nil
}

// TimeoutDuration parses upstream.timeout.
func (u UpstreamConfig) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(u.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid upstream.timeout %q: %w", u.Timeout, err)
	}
	return d, nil
}

// ParseLevel maps log.level to a slog level. Unknown values mean info.
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
