package ranker

import (
	"sort"
	"time"

	"github.com/pricepulse/glitchradar/models"
)

// Rank score weights. The secondary relevance score lives on a 0-1 scale, so
// its contribution is bounded at 10 points: a bonus, never a dominant factor.
const (
	profitWeight     = 0.6
	confidenceWeight = 0.3
	relevanceWeight  = 10.0
)

// minLookback bounds how far back a delayed tier's window reaches, so
// delayed tiers see a rolling history rather than an unbounded one.
const minLookback = 24 * time.Hour

// DefaultTierDelays is the minimum age a validated glitch must reach before
// each tier may see it.
var DefaultTierDelays = map[models.SubscriptionTier]time.Duration{
	models.TierFree:    60 * time.Minute,
	models.TierStarter: 30 * time.Minute,
	models.TierPro:     0,
}

// RankScore computes the composite rank for one confirmed glitch.
func RankScore(g models.ValidatedGlitch) float64 {
	return g.ProfitMargin*profitWeight +
		g.Confidence*confidenceWeight +
		g.SecondaryRelevanceScore*relevanceWeight
}

// Rank sorts glitches by descending rank score and truncates to limit.
// The sort is stable, so equal scores keep their arrival order. Positions
// are 1-based. A negative limit means no truncation.
func Rank(glitches []models.ValidatedGlitch, limit int) []models.DigestGlitch {
	ranked := make([]models.DigestGlitch, 0, len(glitches))
	for _, g := range glitches {
		ranked = append(ranked, models.DigestGlitch{ValidatedGlitch: g, Rank: RankScore(g)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Rank > ranked[j].Rank
	})
	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Position = i + 1
	}
	return ranked
}

// Ranker applies per-tier delay windows on top of the rank computation. Its
// delay table is fixed at construction.
type Ranker struct {
	delays map[models.SubscriptionTier]time.Duration
}

// New creates a ranker with the given delay table; nil uses DefaultTierDelays.
func New(delays map[models.SubscriptionTier]time.Duration) *Ranker {
	if delays == nil {
		delays = DefaultTierDelays
	}
	return &Ranker{delays: delays}
}

// DelayFor returns the delay for a tier. Unknown tiers get the free-tier
// delay, the most conservative choice.
func (r *Ranker) DelayFor(tier models.SubscriptionTier) time.Duration {
	if d, ok := r.delays[tier]; ok {
		return d
	}
	return r.delays[models.TierFree]
}

// TierWindow computes the [since, until] validation-time window a tier may
// see at the given moment: until enforces the delay, since bounds the
// lookback to at least a day.
func (r *Ranker) TierWindow(tier models.SubscriptionTier, now time.Time) (since, until time.Time) {
	delay := r.DelayFor(tier)
	lookback := delay
	if lookback < minLookback {
		lookback = minLookback
	}
	return now.Add(-lookback), now.Add(-delay)
}
