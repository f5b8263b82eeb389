// Package fetcher harvests every page of a vote's nominal entries.
package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/tjfontaine/rollcall-gateway/internal/api/camara"
	"github.com/tjfontaine/rollcall-gateway/internal/domain"
	"github.com/tjfontaine/rollcall-gateway/internal/metrics"
	"github.com/tjfontaine/rollcall-gateway/internal/pkg/safehttp"
)

// DefaultMaxPages bounds how many pages a single listing may request.
const DefaultMaxPages = 50

// Upstream is the subset of the open-data client the fetcher needs.
type Upstream interface {
	VotesURL(id string) string
	GetPage(ctx context.Context, pageURL string) (*camara.Envelope, error)
}

// Result is the outcome of a full pagination run.
type Result struct {
	Rows   []domain.RawVoteEntry
	Reason domain.ExhaustionReason
	Pages  int
	// Truncated is set when the page cap stopped collection while a
	// continuation link was still present.
	Truncated bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxPages overrides DefaultMaxPages. Values below 1 are ignored.
func WithMaxPages(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxPages = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMetrics records the page count of every run.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// Fetcher follows "next" links sequentially; the next address is only known
// once the current page has arrived.
type Fetcher struct {
	upstream Upstream
	maxPages int
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// New creates a Fetcher.
func New(upstream Upstream, opts ...Option) *Fetcher {
	f := &Fetcher{
		upstream: upstream,
		maxPages: DefaultMaxPages,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchAll collects the entries of every page of voteID in arrival order.
// A not-found answer on any page means the vote has no individually recorded
// votes and yields an empty, UpstreamAbsent result instead of an error.
func (f *Fetcher) FetchAll(ctx context.Context, voteID string) (*Result, error) {
	first := f.upstream.VotesURL(voteID)
	origin, err := url.Parse(first)
	if err != nil {
		return nil, domain.ErrServer("invalid votes address").WithCause(err)
	}

	res := &Result{Rows: []domain.RawVoteEntry{}, Reason: domain.ExhaustionComplete}
	current := origin

	for res.Pages < f.maxPages {
		if err := ctx.Err(); err != nil {
			return nil, camara.ToDomainError("vote listing interrupted", err)
		}

		env, err := f.upstream.GetPage(ctx, current.String())
		if err != nil {
			if camara.IsNotFound(err) {
				f.metrics.ObservePages(res.Pages)
				return &Result{Rows: []domain.RawVoteEntry{}, Reason: domain.ExhaustionUpstreamAbsent, Pages: res.Pages}, nil
			}
			return nil, camara.ToDomainError("failed to fetch vote entries", err)
		}
		res.Pages++

		for _, obj := range env.Objects() {
			res.Rows = append(res.Rows, domain.RawVoteEntry(obj))
		}

		next := env.Next()
		if next == "" {
			f.metrics.ObservePages(res.Pages)
			return res, nil
		}

		nextURL, err := nextPage(origin, current, next)
		if err != nil {
			return nil, err
		}
		current = nextURL
	}

	res.Truncated = true
	f.logger.Warn("vote pagination truncated at page cap",
		slog.String("vote_id", voteID),
		slog.Int("max_pages", f.maxPages),
		slog.Int("rows", len(res.Rows)),
	)
	f.metrics.ObservePages(res.Pages)
	return res, nil
}

// nextPage resolves a continuation link against the current page and keeps
// pagination on the upstream origin.
func nextPage(origin, current *url.URL, href string) (*url.URL, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return nil, domain.ErrUpstream(fmt.Sprintf("malformed continuation link %q", href)).WithCause(err)
	}
	next := current.ResolveReference(ref)
	if !safehttp.SameOrigin(origin, next) {
		return nil, domain.ErrUpstream(fmt.Sprintf("continuation link leaves upstream origin: %s", next))
	}
	return next, nil
}
