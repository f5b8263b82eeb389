// Package aggregate composes reference extraction, resolution, pagination
// and normalization into the two operations exposed to frontdoors.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tjfontaine/rollcall-gateway/internal/api/camara"
	"github.com/tjfontaine/rollcall-gateway/internal/domain"
	"github.com/tjfontaine/rollcall-gateway/internal/fetcher"
	"github.com/tjfontaine/rollcall-gateway/internal/metrics"
	"github.com/tjfontaine/rollcall-gateway/internal/normalize"
	"github.com/tjfontaine/rollcall-gateway/internal/reference"
	"github.com/tjfontaine/rollcall-gateway/internal/resolver"
)

const tracerName = "github.com/tjfontaine/rollcall-gateway/internal/aggregate"

// Notes explaining an empty vote table.
const (
	NoteSymbolicVote = "no nominal votes recorded (probably a symbolic vote)"
	NoteNoVotes      = "no nominal votes found"
)

// List outcomes recorded in metrics.
const (
	outcomeRows        = "rows"
	outcomeSymbolic    = "symbolic"
	outcomeEmpty       = "empty"
	outcomeNeedsChoice = "needs_choice"
	outcomeError       = "error"
)

// Upstream is everything the pipeline needs from the open-data API.
type Upstream interface {
	resolver.Upstream
	fetcher.Upstream
}

// Option configures a Service.
type Option func(*Service)

// WithMaxPages bounds pagination per listing.
func WithMaxPages(n int) Option {
	return func(s *Service) {
		s.maxPages = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records resolution tiers and listing outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Service is a per-request pipeline instance. It holds no state between
// calls beyond its configuration.
type Service struct {
	upstream Upstream
	maxPages int
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer

	resolver *resolver.Resolver
	fetcher  *fetcher.Fetcher
}

// New builds the pipeline over upstream.
func New(upstream Upstream, opts ...Option) *Service {
	s := &Service{
		upstream: upstream,
		maxPages: fetcher.DefaultMaxPages,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resolver = resolver.New(upstream, s.logger)
	s.fetcher = fetcher.New(upstream,
		fetcher.WithMaxPages(s.maxPages),
		fetcher.WithLogger(s.logger),
		fetcher.WithMetrics(s.metrics),
	)
	return s
}

// ResolveVote extracts the session reference from rawURL and resolves it to
// a vote. overrideID, when set, is accepted as the vote id without any
// upstream call; rawURL is still validated.
func (s *Service) ResolveVote(ctx context.Context, rawURL, overrideID string) (domain.Resolution, error) {
	ctx, span := s.tracer.Start(ctx, "aggregate.ResolveVote")
	defer span.End()

	res, err := s.resolveVote(ctx, rawURL, overrideID)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	return res, nil
}

func (s *Service) resolveVote(ctx context.Context, rawURL, overrideID string) (domain.Resolution, error) {
	ref, err := reference.Extract(rawURL)
	if err != nil {
		return nil, err
	}
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("rollcall.session_id", ref.SessionID),
		attribute.String("rollcall.item_index", ref.ItemIndex),
	)

	out, err := s.resolver.Resolve(ctx, ref, overrideID)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveResolution(string(out.Tier))
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("rollcall.resolution_tier", string(out.Tier)))

	switch r := out.Resolution.(type) {
	case domain.Resolved:
		s.logger.Info("vote resolved",
			slog.String("session_id", ref.SessionID),
			slog.String("item_index", ref.ItemIndex),
			slog.String("tier", string(out.Tier)),
			slog.String("vote_id", r.VoteID),
		)
	case domain.NeedsChoice:
		s.logger.Info("vote resolution needs a choice",
			slog.String("session_id", ref.SessionID),
			slog.String("item_index", ref.ItemIndex),
			slog.Int("options", len(r.Options)),
		)
	}
	return out.Resolution, nil
}

// ListVotes resolves rawURL and returns every nominal vote of the resolved
// vote as canonical rows. When resolution needs a choice, the NeedsChoice is
// returned unchanged and nothing is fetched.
func (s *Service) ListVotes(ctx context.Context, rawURL, overrideID string) (domain.ListOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "aggregate.ListVotes")
	defer span.End()

	out, err := s.listVotes(ctx, rawURL, overrideID)
	if err != nil {
		s.metrics.ObserveList(outcomeError)
		recordError(span, err)
		return nil, err
	}
	return out, nil
}

func (s *Service) listVotes(ctx context.Context, rawURL, overrideID string) (domain.ListOutcome, error) {
	res, err := s.resolveVote(ctx, rawURL, overrideID)
	if err != nil {
		return nil, err
	}

	var voteID string
	switch r := res.(type) {
	case domain.NeedsChoice:
		s.metrics.ObserveList(outcomeNeedsChoice)
		return r, nil
	case domain.Resolved:
		voteID = r.VoteID
	default:
		return nil, domain.ErrServer(fmt.Sprintf("unhandled resolution %T", res))
	}
	if voteID == "" {
		return nil, domain.ErrValidation("could not identify the vote")
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("rollcall.vote_id", voteID))

	title := s.LookupTitle(ctx, voteID)

	fetched, err := s.fetcher.FetchAll(ctx, voteID)
	if err != nil {
		return nil, err
	}

	result := &domain.VoteListResult{
		VoteID:    voteID,
		Title:     title.Title,
		Rows:      normalize.Rows(fetched.Rows),
		Truncated: fetched.Truncated,
	}

	switch {
	case fetched.Reason == domain.ExhaustionUpstreamAbsent:
		result.Note = NoteSymbolicVote
		s.metrics.ObserveList(outcomeSymbolic)
	case len(result.Rows) == 0:
		result.Note = NoteNoVotes
		s.metrics.ObserveList(outcomeEmpty)
	default:
		s.metrics.ObserveList(outcomeRows)
	}

	s.logger.Info("votes listed",
		slog.String("vote_id", voteID),
		slog.Int("rows", len(result.Rows)),
		slog.Int("pages", fetched.Pages),
		slog.String("exhaustion", fetched.Reason.String()),
		slog.Bool("truncated", fetched.Truncated),
	)
	return result, nil
}

// TitleLookup is the result of the best-effort title fetch. Degraded is set
// when the lookup failed; Title is then nil.
type TitleLookup struct {
	Title    *string
	Degraded bool
}

// LookupTitle fetches the descriptive title of voteID. It never fails:
// upstream problems only mark the lookup as degraded.
func (s *Service) LookupTitle(ctx context.Context, voteID string) TitleLookup {
	env, err := s.upstream.GetVote(ctx, voteID)
	if err != nil {
		s.logger.Warn("vote title lookup degraded",
			slog.String("vote_id", voteID),
			slog.String("error", err.Error()),
		)
		return TitleLookup{Degraded: true}
	}
	return TitleLookup{Title: describe(env)}
}

// describe reads "descricao" from a single object or the first element of
// a sequence; blank descriptions count as absent.
func describe(env *camara.Envelope) *string {
	first := env.First()
	if first == nil {
		return nil
	}
	d, ok := first["descricao"]
	if !ok || d == nil {
		return nil
	}
	if s := fmt.Sprint(d); s != "" {
		return &s
	}
	return nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
