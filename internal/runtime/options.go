package runtime

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tjfontaine/rollcall-gateway/internal/config"
)

// Option is a functional option for configuring a Gateway.
type Option func(*Gateway) error

// WithFileConfig loads configuration from path plus the environment.
func WithFileConfig(path string) Option {
	return func(g *Gateway) error {
		g.configPath = path
		return nil
	}
}

// WithConfig uses cfg as is; no file or environment is read.
func WithConfig(cfg *config.Config) Option {
	return func(g *Gateway) error {
		if cfg == nil {
			return errors.New("config cannot be nil")
		}
		g.cfg = cfg
		return nil
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		g.logger = logger
		return nil
	}
}

// WithHTTPClient replaces the upstream HTTP client, bypassing
// upstream.timeout and the transport guard.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) error {
		if c == nil {
			return errors.New("http client cannot be nil")
		}
		g.httpClient = c
		return nil
	}
}

// WithLevelVar lets configuration reloads change the log level. The caller
// builds its logger on lv.
func WithLevelVar(lv *slog.LevelVar) Option {
	return func(g *Gateway) error {
		g.level = lv
		return nil
	}
}
