// Package runtime assembles the gateway from configuration and manages its
// lifecycle. The HTTP server, the CLI and the MCP server all build their
// pipelines through it.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tjfontaine/rollcall-gateway/internal/aggregate"
	"github.com/tjfontaine/rollcall-gateway/internal/api/camara"
	"github.com/tjfontaine/rollcall-gateway/internal/config"
	"github.com/tjfontaine/rollcall-gateway/internal/frontdoor"
	"github.com/tjfontaine/rollcall-gateway/internal/metrics"
	"github.com/tjfontaine/rollcall-gateway/internal/pkg/safehttp"
	"github.com/tjfontaine/rollcall-gateway/internal/server"
	"github.com/tjfontaine/rollcall-gateway/internal/telemetry"
)

// Gateway owns the long-lived pieces: configuration, the upstream client
// and the metrics registry. Pipelines themselves are built per request.
type Gateway struct {
	cfg        *config.Config
	configPath string
	fromFile   bool
	logger     *slog.Logger
	level      *slog.LevelVar
	httpClient *http.Client

	// maxPages is reloadable; see reload.
	maxPages atomic.Int64

	client   *camara.Client
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	server   *server.Server

	shutdownTracer telemetry.ShutdownFunc
	serveErr       chan error
	watcher        *config.Watcher

	mu      sync.Mutex
	started bool
}

// New builds a Gateway. Without WithConfig, configuration is loaded from
// the WithFileConfig path (default config.yaml) and the environment.
func New(opts ...Option) (*Gateway, error) {
	gw := &Gateway{
		configPath: config.DefaultFile,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(gw); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if gw.cfg == nil {
		cfg, err := config.LoadFile(gw.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		gw.cfg = cfg
		gw.fromFile = true
	} else if err := gw.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	gw.maxPages.Store(int64(gw.cfg.Pagination.MaxPages))
	if gw.level != nil {
		gw.level.Set(config.ParseLevel(gw.cfg.Log.Level))
	}

	if gw.cfg.Metrics.Enabled {
		gw.registry = prometheus.NewRegistry()
		gw.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		gw.metrics = metrics.New(gw.registry)
	}

	if gw.httpClient == nil {
		timeout, _ := gw.cfg.Upstream.TimeoutDuration()
		gw.httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(safehttp.NewTransport(gw.cfg.Upstream.DenyPrivateNetworks)),
		}
	}

	gw.client = camara.NewClient(
		camara.WithBaseURL(gw.cfg.Upstream.BaseURL),
		camara.WithUserAgent(gw.cfg.Upstream.UserAgent),
		camara.WithHTTPClient(gw.httpClient),
		camara.WithLogger(gw.logger),
		camara.WithMetrics(gw.metrics),
	)

	gw.server = gw.buildServer()
	return gw, nil
}

// Config returns the latest valid configuration. While the config file is
// watched this includes reloaded versions, of which only the reloadable
// keys are in effect.
func (g *Gateway) Config() *config.Config {
	g.mu.Lock()
	w := g.watcher
	g.mu.Unlock()
	if w != nil {
		return w.Current()
	}
	return g.cfg
}

// Logger returns the logger shared by every component.
func (g *Gateway) Logger() *slog.Logger {
	return g.logger
}

// Pipeline builds a fresh pipeline sharing the gateway's upstream client.
func (g *Gateway) Pipeline() frontdoor.Pipeline {
	return aggregate.New(g.client,
		aggregate.WithMaxPages(int(g.maxPages.Load())),
		aggregate.WithLogger(g.logger),
		aggregate.WithMetrics(g.metrics),
	)
}

// Handler is the fully wired HTTP handler, middleware included.
func (g *Gateway) Handler() http.Handler {
	return g.server.Router
}

func (g *Gateway) buildServer() *server.Server {
	timeout, _ := g.cfg.Server.RequestTimeoutDuration()
	srv := server.New(server.Options{
		Port:           g.cfg.Server.Port,
		RequestTimeout: timeout,
		AllowedOrigins: g.cfg.Server.CORS.AllowedOrigins,
		ServiceName:    g.cfg.Telemetry.ServiceName,
		Logger:         g.logger,
	})

	var metricsHandler http.Handler
	if g.metrics != nil {
		metricsHandler = g.metrics.Handler()
	}

	regs := frontdoor.Handlers("", g.Pipeline, g.logger)
	regs = append(regs, frontdoor.OperationalHandlers(metricsHandler)...)
	frontdoor.Mount(srv.Router, regs)
	for _, reg := range regs {
		g.logger.Debug("registered handler",
			slog.String("method", reg.Method),
			slog.String("path", reg.Path))
	}
	return srv
}

// Start initializes tracing and starts serving HTTP in the background.
func (g *Gateway) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.started {
		return errors.New("gateway already started")
	}

	shutdown, err := telemetry.InitTracer(g.cfg.Telemetry.ServiceName, g.cfg.Telemetry.Enabled, g.logger)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	g.shutdownTracer = shutdown

	if g.fromFile {
		if err := g.watchConfig(ctx); err != nil {
			return err
		}
	}

	g.serveErr = make(chan error, 1)
	go func() {
		g.serveErr <- g.server.Start()
	}()
	g.started = true

	g.logger.Info("gateway started",
		slog.Int("port", g.cfg.Server.Port),
		slog.String("upstream", g.client.BaseURL()),
		slog.Int("max_pages", g.cfg.Pagination.MaxPages),
		slog.Bool("metrics", g.metrics != nil),
		slog.Bool("tracing", g.cfg.Telemetry.Enabled))
	return nil
}

// Run starts the gateway and blocks until ctx is cancelled or the server
// fails, then shuts down within shutdownTimeout.
func (g *Gateway) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	if err := g.Start(ctx); err != nil {
		return err
	}

	var serveErr error
	select {
	case <-ctx.Done():
		g.logger.Info("shutdown signal received")
	case serveErr = <-g.serveErr:
		if serveErr != nil {
			g.logger.Error("server error", slog.String("error", serveErr.Error()))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := g.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return serveErr
}

// Shutdown drains the HTTP server and flushes traces.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.started {
		return nil
	}
	g.logger.Info("shutting down gateway")

	if err := g.server.Shutdown(ctx); err != nil {
		g.logger.Error("failed to shutdown server", slog.String("error", err.Error()))
		return err
	}
	if g.watcher != nil {
		if err := g.watcher.Close(); err != nil {
			g.logger.Warn("failed to stop config watch", slog.String("error", err.Error()))
		}
		g.watcher = nil
	}
	if g.shutdownTracer != nil {
		if err := g.shutdownTracer(ctx); err != nil {
			g.logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}
	g.started = false

	g.logger.Info("gateway shutdown complete")
	return nil
}

// watchConfig reloads the configuration file on change. A missing file is
// not watched.
func (g *Gateway) watchConfig(ctx context.Context) error {
	if _, err := os.Stat(g.configPath); err != nil {
		return nil
	}
	w, err := config.Watch(ctx, g.configPath, g.logger, g.reload)
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	g.watcher = w
	return nil
}

// reload applies the settings that can change without a restart:
// log.level (when a LevelVar was supplied) and pagination.max_pages.
func (g *Gateway) reload(cfg *config.Config) {
	g.maxPages.Store(int64(cfg.Pagination.MaxPages))
	if g.level != nil {
		g.level.Set(config.ParseLevel(cfg.Log.Level))
	}
	g.logger.Info("reload complete",
		slog.Int("max_pages", cfg.Pagination.MaxPages),
		slog.String("log_level", cfg.Log.Level))
}
