// Package frontdoor exposes the vote pipeline over HTTP as JSON.
//
// Each request gets a fresh pipeline from the PipelineFactory; nothing is
// shared between requests beyond configuration and the upstream client.
package frontdoor

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/rollcall-gateway/internal/domain"
)

// Pipeline is the pair of operations the frontdoor exposes.
type Pipeline interface {
	ResolveVote(ctx context.Context, rawURL, overrideID string) (domain.Resolution, error)
	ListVotes(ctx context.Context, rawURL, overrideID string) (domain.ListOutcome, error)
}

// PipelineFactory builds a Pipeline for one request.
type PipelineFactory func() Pipeline

// HandlerRegistration represents a registered HTTP handler.
type HandlerRegistration struct {
	Path    string
	Method  string
	Handler http.HandlerFunc
}

// Handlers returns the registrations for the vote API under basePath.
func Handlers(basePath string, factory PipelineFactory, logger *slog.Logger) []HandlerRegistration {
	h := NewHandler(factory, logger)
	return []HandlerRegistration{
		{Path: basePath + "/api/resolve", Method: http.MethodPost, Handler: h.HandleResolve},
		{Path: basePath + "/api/votos", Method: http.MethodPost, Handler: h.HandleListVotes},
	}
}

// Mount attaches registrations to r.
func Mount(r chi.Router, regs []HandlerRegistration) {
	for _, reg := range regs {
		r.Method(reg.Method, reg.Path, reg.Handler)
	}
}

// OperationalHandlers returns GET /health and, when metricsHandler is
// non-nil, GET /metrics.
func OperationalHandlers(metricsHandler http.Handler) []HandlerRegistration {
	regs := []HandlerRegistration{
		{Path: "/health", Method: http.MethodGet, Handler: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		}},
	}
	if metricsHandler != nil {
		regs = append(regs, HandlerRegistration{Path: "/metrics", Method: http.MethodGet, Handler: metricsHandler.ServeHTTP})
	}
	return regs
}
