// Package resolver turns a session reference into a single upstream vote
// identifier.
//
// The upstream identifier space is not canonical: the item shown on the
// portal may be a vote id, may appear under one of several field names in
// the event's vote listing, or may not map to a votable record at all.
// Resolution therefore runs in tiers and stops at the first confident
// answer:
//
//  1. probe: the item index is fetched directly as a vote id.
//  2. match: the event's votes are listed and the item index is compared
//     against a fixed, ordered set of candidate fields.
//  3. nominal: a single candidate whose description mentions "nominal" is
//     accepted; otherwise the caller is asked to choose.
package resolver

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tjfontaine/rollcall-gateway/internal/api/camara"
	"github.com/tjfontaine/rollcall-gateway/internal/domain"
	"github.com/tjfontaine/rollcall-gateway/internal/pkg/loose"
)

// Tier names the step that settled a resolution.
type Tier string

const (
	TierOverride Tier = "override"
	TierProbe    Tier = "probe"
	TierMatch    Tier = "match"
	TierNominal  Tier = "nominal"
	TierChoice   Tier = "choice"
)

// Upstream is the subset of the open-data client the resolver needs.
type Upstream interface {
	GetVote(ctx context.Context, id string) (*camara.Envelope, error)
	ListEventVotes(ctx context.Context, eventID string) (*camara.Envelope, error)
}

// Outcome pairs a resolution with the tier that produced it.
type Outcome struct {
	Resolution domain.Resolution
	Tier       Tier
}

// Resolver implements the tiered resolution strategy.
type Resolver struct {
	upstream Upstream
	logger   *slog.Logger
}

// New creates a Resolver. A nil logger uses slog.Default().
func New(upstream Upstream, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{upstream: upstream, logger: logger}
}

// Resolve determines the vote id for ref. A non-empty overrideID
// short-circuits every tier without touching upstream.
func (r *Resolver) Resolve(ctx context.Context, ref domain.SessionReference, overrideID string) (Outcome, error) {
	if overrideID != "" {
		return Outcome{Resolution: domain.Resolved{VoteID: overrideID}, Tier: TierOverride}, nil
	}

	if ref.HasItem() {
		if res, ok := r.probe(ctx, ref.ItemIndex); ok {
			return Outcome{Resolution: res, Tier: TierProbe}, nil
		}
	}

	env, err := r.upstream.ListEventVotes(ctx, ref.SessionID)
	if err != nil {
		if camara.IsNotFound(err) {
			return Outcome{}, domain.ErrNotFound("no votes found for this event").WithCause(err)
		}
		return Outcome{}, camara.ToDomainError("failed to list event votes", err)
	}

	items := env.Objects()
	if len(items) == 0 {
		return Outcome{}, domain.ErrNotFound("no votes found for this event")
	}

	candidates := make([]candidate, len(items))
	for i, it := range items {
		candidates[i] = decodeCandidate(it)
	}

	if ref.HasItem() {
		if c, key, ok := matchItem(candidates, ref.ItemIndex); ok {
			r.logger.Debug("item matched event vote",
				slog.String("item", ref.ItemIndex),
				slog.String("field", key),
				slog.String("vote_id", c.voteID()),
			)
			return Outcome{Resolution: c.resolved(), Tier: TierMatch}, nil
		}
	}

	if c, ok := singleNominal(candidates); ok {
		return Outcome{Resolution: c.resolved(), Tier: TierNominal}, nil
	}

	return Outcome{Resolution: needsChoice(candidates), Tier: TierChoice}, nil
}

// probe treats the item index as a vote id. Any failure just means the
// probe was inconclusive.
func (r *Resolver) probe(ctx context.Context, itemIndex string) (domain.Resolved, bool) {
	env, err := r.upstream.GetVote(ctx, itemIndex)
	if err != nil {
		r.logger.Debug("direct probe inconclusive",
			slog.String("item", itemIndex),
			slog.String("error", err.Error()),
		)
		return domain.Resolved{}, false
	}
	if env.IsEmpty() {
		return domain.Resolved{}, false
	}

	res := domain.Resolved{VoteID: itemIndex}
	if first := env.First(); first != nil {
		if d := loose.String(decodeCandidate(first).Descricao); d != "" {
			res.Title = domain.StringPtr(d)
		}
	}
	return res, true
}

// matchItem returns the first candidate, in listing order, whose value under
// any of the match fields equals itemIndex.
func matchItem(candidates []candidate, itemIndex string) (candidate, string, bool) {
	for _, c := range candidates {
		if c.voteID() == "" {
			continue
		}
		for _, f := range matchFields {
			if v := f.get(c); v != nil && *v == itemIndex {
				return c, f.name, true
			}
		}
	}
	return candidate{}, "", false
}

// singleNominal counts every candidate described as nominal, identified or
// not. Exactly one is accepted, and only if it carries an id.
func singleNominal(candidates []candidate) (candidate, bool) {
	var found []candidate
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(loose.String(c.Descricao)), "nominal") {
			found = append(found, c)
		}
	}
	if len(found) != 1 || found[0].voteID() == "" {
		return candidate{}, false
	}
	return found[0], true
}

func needsChoice(candidates []candidate) domain.NeedsChoice {
	options := make([]domain.VoteOption, 0, len(candidates))
	for _, c := range candidates {
		id := c.voteID()
		if id == "" {
			continue
		}
		options = append(options, domain.VoteOption{ID: id, Description: c.Descricao})
	}
	return domain.NeedsChoice{Options: options}
}
