package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("LoadFile() error = %v", err)
		}

		if cfg.Server.Port != 8080 {
			t.Errorf("port = %v, want 8080", cfg.Server.Port)
		}
		if cfg.Upstream.BaseURL != "https://dadosabertos.camara.leg.br/api/v2" {
			t.Errorf("base_url = %q", cfg.Upstream.BaseURL)
		}
		if cfg.Pagination.MaxPages != 50 {
			t.Errorf("max_pages = %d, want 50", cfg.Pagination.MaxPages)
		}
		if !cfg.Metrics.Enabled {
			t.Error("metrics.enabled = false, want true")
		}
		if len(cfg.Server.CORS.AllowedOrigins) != 1 || cfg.Server.CORS.AllowedOrigins[0] != "*" {
			t.Errorf("allowed_origins = %v, want [*]", cfg.Server.CORS.AllowedOrigins)
		}
		d, err := cfg.Server.RequestTimeoutDuration()
		if err != nil || d != 30*time.Second {
			t.Errorf("RequestTimeoutDuration() = %v, %v, want 30s", d, err)
		}
	})

	t.Run("env var override", func(t *testing.T) {
		t.Setenv("ROLLCALL_SERVER__PORT", "9000")
		t.Setenv("ROLLCALL_PAGINATION__MAX_PAGES", "5")
		t.Setenv("ROLLCALL_UPSTREAM__BASE_URL", "http://localhost:4010/api/v2")

		cfg, err := LoadFile("")
		if err != nil {
			t.Fatalf("LoadFile() error = %v", err)
		}

		if cfg.Server.Port != 9000 {
			t.Errorf("port = %v, want 9000", cfg.Server.Port)
		}
		if cfg.Pagination.MaxPages != 5 {
			t.Errorf("max_pages = %d, want 5", cfg.Pagination.MaxPages)
		}
		if cfg.Upstream.BaseURL != "http://localhost:4010/api/v2" {
			t.Errorf("base_url = %q", cfg.Upstream.BaseURL)
		}
	})

	t.Run("file then env", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := []byte(`
server:
  port: 7070
upstream:
  base_url: "${MOCK_CAMARA}/api/v2"
  timeout: 5s
pagination:
  max_pages: 10
`)
		if err := os.WriteFile(path, content, 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		t.Setenv("MOCK_CAMARA", "http://mock.test")
		t.Setenv("ROLLCALL_PAGINATION__MAX_PAGES", "3")

		cfg, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile() error = %v", err)
		}

		if cfg.Server.Port != 7070 {
			t.Errorf("port = %v, want 7070", cfg.Server.Port)
		}
		if cfg.Upstream.BaseURL != "http://mock.test/api/v2" {
			t.Errorf("base_url = %q, want substituted value", cfg.Upstream.BaseURL)
		}
		if cfg.Pagination.MaxPages != 3 {
			t.Errorf("max_pages = %d, want env override 3", cfg.Pagination.MaxPages)
		}
		d, _ := cfg.Upstream.TimeoutDuration()
		if d != 5*time.Second {
			t.Errorf("TimeoutDuration() = %v, want 5s", d)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Setenv("ROLLCALL_PAGINATION__MAX_PAGES", "0")
		if _, err := LoadFile(""); err == nil {
			t.Error("LoadFile() error = nil for max_pages 0")
		}
	})

	t.Run("invalid duration", func(t *testing.T) {
		t.Setenv("ROLLCALL_UPSTREAM__TIMEOUT", "soon")
		if _, err := LoadFile(""); err == nil {
			t.Error("LoadFile() error = nil for bad timeout")
		}
	})
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "test-value")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple substitution",
			input: "${TEST_VAR}",
			want:  "test-value",
		},
		{
			name:  "substitution in string",
			input: "prefix-${TEST_VAR}-suffix",
			want:  "prefix-test-value-suffix",
		},
		{
			name:  "no substitution",
			input: "plain-string",
			want:  "plain-string",
		},
		{
			name:  "undefined var",
			input: "${UNDEFINED_VAR}",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := substituteEnvVars(tt.input); got != tt.want {
				t.Errorf("substituteEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	t.Setenv("ROLLCALL_SERVER__PORT", "9999")

	cfg := Default()
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080 regardless of the environment", cfg.Server.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
