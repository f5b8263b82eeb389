package frontdoor

import (
	"log/slog"
	"net/http"

	"github.com/tjfontaine/rollcall-gateway/internal/domain"
	"github.com/tjfontaine/rollcall-gateway/internal/server"
)

// Handler serves the vote operations over JSON, building a fresh pipeline
// for every request.
type Handler struct {
	newPipeline PipelineFactory
	logger      *slog.Logger
}

// NewHandler returns a Handler. A nil logger uses slog.Default().
func NewHandler(factory PipelineFactory, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{newPipeline: factory, logger: logger}
}

// HandleResolve answers {idVotacao, titulo} or {needChoice, options}.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	rawURL, overrideID, err := decodeRequest(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.AddLogField(r.Context(), "override", overrideID)

	res, err := h.newPipeline().ResolveVote(r.Context(), rawURL, overrideID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	switch v := res.(type) {
	case domain.Resolved:
		server.AddLogField(r.Context(), "vote_id", v.VoteID)
		server.AddLogField(r.Context(), "outcome", "resolved")
	case domain.NeedsChoice:
		server.AddLogField(r.Context(), "outcome", "need_choice")
	}

	body, err := ResolutionBody(res)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// HandleListVotes answers the vote table or {needChoice, options}.
func (h *Handler) HandleListVotes(w http.ResponseWriter, r *http.Request) {
	rawURL, overrideID, err := decodeRequest(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.AddLogField(r.Context(), "override", overrideID)

	out, err := h.newPipeline().ListVotes(r.Context(), rawURL, overrideID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	switch v := out.(type) {
	case *domain.VoteListResult:
		server.AddLogField(r.Context(), "vote_id", v.VoteID)
		server.AddLogField(r.Context(), "outcome", "rows")
		if v.Note != "" {
			server.AddLogField(r.Context(), "outcome", "empty")
		}
	case domain.NeedsChoice:
		server.AddLogField(r.Context(), "outcome", "need_choice")
	}

	body, err := ListOutcomeBody(out)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	server.AddError(r.Context(), err)
	derr := domain.AsError(err)
	if derr.Kind == domain.ErrorKindServer {
		h.logger.Error("request failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	}
	WriteError(w, derr)
}
