package runtime

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tjfontaine/rollcall-gateway/internal/config"
	"github.com/tjfontaine/rollcall-gateway/internal/domain"
	"github.com/tjfontaine/rollcall-gateway/internal/testutil"
)

var quiet = slog.New(slog.DiscardHandler)

func testConfig(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.Upstream.BaseURL = baseURL
	cfg.Server.Port = 0
	return cfg
}

func TestGateway_New_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Pagination.MaxPages = 0

	if _, err := New(WithConfig(cfg), WithLogger(quiet)); err == nil {
		t.Fatal("New() error = nil, want invalid config error")
	}
	if _, err := New(WithConfig(nil)); err == nil {
		t.Fatal("New(WithConfig(nil)) error = nil")
	}
}

func TestGateway_New_FileConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
upstream:
  base_url: http://camara.test/api/v2
pagination:
  max_pages: 7
metrics:
  enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	gw, err := New(WithFileConfig(path), WithLogger(quiet))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := gw.Config().Pagination.MaxPages; got != 7 {
		t.Errorf("max_pages = %d, want 7", got)
	}
	if gw.metrics != nil {
		t.Error("metrics enabled, want disabled")
	}
	if gw.client.BaseURL() != "http://camara.test/api/v2" {
		t.Errorf("client base URL = %q", gw.client.BaseURL())
	}
}

func TestGateway_Handler(t *testing.T) {
	up := testutil.NewFakeUpstream(t)
	up.Handle("/votacoes/v1", http.StatusOK, `{"dados":{"descricao":"PL 2/2025"}}`)
	up.Handle("/votacoes/v1/votos", http.StatusOK, `{"dados":[{"tipoVoto":"Sim","deputado_":{"nome":"Ana"}}]}`)

	gw, err := New(WithConfig(testConfig(up.BaseURL())), WithLogger(quiet), WithHTTPClient(up.Client()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	h := gw.Handler()

	body := `{"url":"https://x.test/?reuniao=1","votoIdOverride":"v1"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/votos", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/votos = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"nome":"Ana"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not set by middleware")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d", rec.Code)
	}
	out, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"rollcall_upstream_requests_total", "rollcall_list_outcomes_total", "go_goroutines"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}

func TestGateway_Pipeline(t *testing.T) {
	up := testutil.NewFakeUpstream(t)
	gw, err := New(WithConfig(testConfig(up.BaseURL())), WithLogger(quiet))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, err := gw.Pipeline().ResolveVote(context.Background(), "https://x.test/?reuniao=1", "42")
	if err != nil {
		t.Fatalf("ResolveVote() error = %v", err)
	}
	if r, ok := res.(domain.Resolved); !ok || r.VoteID != "42" {
		t.Errorf("ResolveVote() = %#v", res)
	}
}

func TestGateway_StartAndShutdown(t *testing.T) {
	gw, err := New(WithConfig(testConfig("http://camara.test/api/v2")), WithLogger(quiet))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	if err := gw.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := gw.Start(ctx); err == nil {
		t.Error("second Start() error = nil, want already started")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := gw.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := gw.Shutdown(shutdownCtx); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}

func TestGateway_RunStopsOnCancel(t *testing.T) {
	gw, err := New(WithConfig(testConfig("http://camara.test/api/v2")), WithLogger(quiet))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gw.Run(ctx, time.Second) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestGateway_ReloadsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	write := func(content string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("server:\n  port: 0\npagination:\n  max_pages: 4\nlog:\n  level: info\n")

	level := new(slog.LevelVar)
	gw, err := New(WithFileConfig(path), WithLogger(quiet), WithLevelVar(level))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := gw.maxPages.Load(); got != 4 {
		t.Fatalf("maxPages = %d, want 4", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := gw.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer gw.Shutdown(context.Background())

	write("server:\n  port: 0\npagination:\n  max_pages: 11\nlog:\n  level: debug\n")

	deadline := time.Now().Add(5 * time.Second)
	for gw.maxPages.Load() != 11 || level.Level() != slog.LevelDebug {
		if time.Now().After(deadline) {
			t.Fatalf("reload not applied: maxPages = %d, level = %v", gw.maxPages.Load(), level.Level())
		}
		time.Sleep(20 * time.Millisecond)
	}
	if got := gw.Config().Pagination.MaxPages; got != 11 {
		t.Errorf("Config().Pagination.MaxPages = %d, want 11", got)
	}

	if err := gw.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if gw.watcher != nil {
		t.Error("config watcher still set after Shutdown")
	}
}
