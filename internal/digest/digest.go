package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pricepulse/glitchradar/internal/ranker"
	"github.com/pricepulse/glitchradar/models"
)

// DefaultOverfetch controls how many extra candidates the builder pulls from
// the store before re-ranking. Fetching more than the digest needs improves
// rank quality without scanning the whole table; the factor is a tunable
// knob, not a derived constant.
const DefaultOverfetch = 2

// CandidateSource serves windowed candidate queries; GlitchStore implements it.
type CandidateSource interface {
	ListValidatedBetween(ctx context.Context, since, until time.Time, limit int) ([]models.ValidatedGlitch, error)
}

// Builder assembles the ranked, tier-filtered glitch list a digest renders.
type Builder struct {
	source    CandidateSource
	ranker    *ranker.Ranker
	overfetch int
	logger    zerolog.Logger
}

// NewBuilder creates a digest builder. overfetch < 1 uses DefaultOverfetch;
// a nil ranker uses the default tier delays.
func NewBuilder(source CandidateSource, r *ranker.Ranker, overfetch int) *Builder {
	if r == nil {
		r = ranker.New(nil)
	}
	if overfetch < 1 {
		overfetch = DefaultOverfetch
	}
	return &Builder{
		source:    source,
		ranker:    r,
		overfetch: overfetch,
		logger:    log.With().Str("component", "digest_builder").Logger(),
	}
}

// Build returns up to limit glitches the given tier may see at now, ordered
// by descending rank with 1-based positions.
func (b *Builder) Build(ctx context.Context, tier models.SubscriptionTier, limit int, now time.Time) ([]models.DigestGlitch, error) {
	since, until := b.ranker.TierWindow(tier, now)

	candidates, err := b.source.ListValidatedBetween(ctx, since, until, limit*b.overfetch)
	if err != nil {
		return nil, fmt.Errorf("fetching digest candidates: %w", err)
	}

	ranked := ranker.Rank(candidates, limit)

	b.logger.Debug().
		Str("tier", string(tier)).
		Time("since", since).
		Time("until", until).
		Int("candidates", len(candidates)).
		Int("returned", len(ranked)).
		Msg("digest built")
	return ranked, nil
}
