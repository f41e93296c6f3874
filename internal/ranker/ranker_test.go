package ranker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricepulse/glitchradar/models"
)

func glitch(id string, profit, confidence, relevance float64) models.ValidatedGlitch {
	return models.ValidatedGlitch{
		ID:                      id,
		ProfitMargin:            profit,
		Confidence:              confidence,
		SecondaryRelevanceScore: relevance,
	}
}

func TestRankScore(t *testing.T) {
	g := glitch("a", 100, 90, 0.5)
	assert.InDelta(t, 100*0.6+90*0.3+0.5*10, RankScore(g), 1e-9)
}

func TestRankScoreAbsentRelevance(t *testing.T) {
	g := glitch("a", 100, 90, 0)
	assert.InDelta(t, 87, RankScore(g), 1e-9)
}

func TestRankOrdersDescending(t *testing.T) {
	in := []models.ValidatedGlitch{
		glitch("low", 10, 50, 0),
		glitch("high", 500, 95, 1),
		glitch("mid", 100, 80, 0.2),
	}

	out := Rank(in, 10)

	require.Len(t, out, 3)
	assert.Equal(t, "high", out[0].ID)
	assert.Equal(t, "mid", out[1].ID)
	assert.Equal(t, "low", out[2].ID)
	for i, g := range out {
		assert.Equal(t, i+1, g.Position)
	}
}

func TestRankTruncates(t *testing.T) {
	in := []models.ValidatedGlitch{
		glitch("a", 1, 0, 0),
		glitch("b", 2, 0, 0),
		glitch("c", 3, 0, 0),
	}

	out := Rank(in, 2)

	require.Len(t, out, 2)
	assert.Equal(t, "c", out[0].ID)
	assert.Equal(t, "b", out[1].ID)
}

func TestRankTiesKeepArrivalOrder(t *testing.T) {
	in := []models.ValidatedGlitch{
		glitch("first", 100, 50, 0),
		glitch("second", 100, 50, 0),
		glitch("third", 100, 50, 0),
	}

	out := Rank(in, 10)

	require.Len(t, out, 3)
	assert.Equal(t, "first", out[0].ID)
	assert.Equal(t, "second", out[1].ID)
	assert.Equal(t, "third", out[2].ID)
}

func TestRankIdempotent(t *testing.T) {
	in := []models.ValidatedGlitch{
		glitch("a", 12, 80, 0.3),
		glitch("b", 200, 60, 0),
		glitch("c", 12, 80, 0.3),
		glitch("d", 5, 99, 1),
	}

	first := Rank(in, 3)
	second := Rank(in, 3)

	assert.Equal(t, first, second)
}

func TestRankMonotonicInProfitMargin(t *testing.T) {
	in := []models.ValidatedGlitch{
		glitch("a", 50, 80, 0),
		glitch("b", 60, 80, 0),
		glitch("c", 70, 80, 0),
	}

	positionOf := func(out []models.DigestGlitch, id string) int {
		for _, g := range out {
			if g.ID == id {
				return g.Position
			}
		}
		return -1
	}

	before := positionOf(Rank(in, 10), "a")

	in[0].ProfitMargin = 65
	after := positionOf(Rank(in, 10), "a")

	assert.LessOrEqual(t, after, before)
}

func TestRankEmptyInput(t *testing.T) {
	assert.Empty(t, Rank(nil, 10))
}

func TestDelayFor(t *testing.T) {
	r := New(nil)

	assert.Equal(t, 60*time.Minute, r.DelayFor(models.TierFree))
	assert.Equal(t, 30*time.Minute, r.DelayFor(models.TierStarter))
	assert.Equal(t, time.Duration(0), r.DelayFor(models.TierPro))

	// Unknown tiers fall back to the most conservative delay.
	assert.Equal(t, 60*time.Minute, r.DelayFor(models.SubscriptionTier("platinum")))
}

func TestTierWindow(t *testing.T) {
	r := New(nil)
	now := time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		tier  models.SubscriptionTier
		since time.Time
		until time.Time
	}{
		{"pro sees a rolling day up to now", models.TierPro, now.Add(-24 * time.Hour), now},
		{"starter is delayed half an hour", models.TierStarter, now.Add(-24 * time.Hour), now.Add(-30 * time.Minute)},
		{"free is delayed an hour", models.TierFree, now.Add(-24 * time.Hour), now.Add(-60 * time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			since, until := r.TierWindow(tt.tier, now)
			assert.Equal(t, tt.since, since)
			assert.Equal(t, tt.until, until)
		})
	}
}

func TestTierWindowLongDelayExtendsLookback(t *testing.T) {
	r := New(map[models.SubscriptionTier]time.Duration{
		models.TierFree: 48 * time.Hour,
	})
	now := time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)

	since, until := r.TierWindow(models.TierFree, now)
	assert.Equal(t, now.Add(-48*time.Hour), since)
	assert.Equal(t, now.Add(-48*time.Hour), until)
}
