package detector

import (
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pricepulse/glitchradar/internal/stats"
	"github.com/pricepulse/glitchradar/internal/temporal"
	"github.com/pricepulse/glitchradar/internal/thresholds"
	"github.com/pricepulse/glitchradar/models"
)

// zScoreTrigger is deliberately not category-tunable; it predates the
// per-category threshold table and is kept fixed for compatibility with the
// signal it replaced.
const zScoreTrigger = 3.0

// decimalErrorRatio flags prices below 1% of the reference, the classic
// decimal-shift error ($19.99 instead of $1999.00).
const decimalErrorRatio = 0.01

// Options carries the optional inputs to Detect.
type Options struct {
	Category  string
	Timestamp *time.Time
}

// Detector combines four independent outlier signals into a single verdict
// with one confidence number. It holds no mutable state and is safe for
// concurrent use.
type Detector struct {
	registry *thresholds.Registry
	logger   zerolog.Logger
}

// New creates a detector backed by the given threshold registry; nil uses
// the built-in table.
func New(registry *thresholds.Registry) *Detector {
	if registry == nil {
		registry = thresholds.NewRegistry()
	}
	return &Detector{
		registry: registry,
		logger:   log.With().Str("component", "anomaly_detector").Logger(),
	}
}

// signals holds the per-call signal values and trigger booleans the rule
// ladders evaluate against.
type signals struct {
	discount     float64
	madScore     float64
	zScore       float64
	iqrFlag      bool
	decimalError bool
	percentDrop  bool
	madAnomaly   bool
	zAnomaly     bool
}

// typeRules classifies a flagged anomaly; first match wins. The order
// encodes confidence in signal reliability: a near-certain structural error
// outranks any statistical signal.
var typeRules = []struct {
	match func(s signals) bool
	kind  string
}{
	{func(s signals) bool { return s.decimalError }, models.AnomalyDecimalError},
	{func(s signals) bool { return s.madAnomaly }, models.AnomalyMADScore},
	{func(s signals) bool { return s.iqrFlag }, models.AnomalyIQROutlier},
	{func(s signals) bool { return s.zAnomaly }, models.AnomalyZScore},
	{func(s signals) bool { return s.percentDrop }, models.AnomalyPercentageDrop},
}

// confidenceRules assigns the base confidence with the same priority as
// typeRules; first match wins.
var confidenceRules = []struct {
	match func(s signals) bool
	base  func(s signals) float64
}{
	{func(s signals) bool { return s.decimalError },
		func(signals) float64 { return 95 }},
	{func(s signals) bool { return s.madAnomaly && s.percentDrop },
		func(signals) float64 { return 90 }},
	{func(s signals) bool { return s.madAnomaly && s.iqrFlag },
		func(signals) float64 { return 85 }},
	{func(s signals) bool { return s.madAnomaly },
		func(s signals) float64 { return 70 + math.Min(s.madScore*5, 20) }},
	{func(s signals) bool { return s.iqrFlag && s.percentDrop },
		func(signals) float64 { return 75 }},
	{func(s signals) bool { return s.percentDrop },
		func(s signals) float64 { return 50 + math.Min(s.discount/2, 30) }},
	{func(s signals) bool { return s.zAnomaly },
		func(s signals) float64 { return 70 + math.Min(s.zScore*5, 20) }},
}

// Detect decides whether currentPrice looks like a pricing error given an
// optional reference ("was") price and the product's price history. It never
// fails: degenerate input (short or constant histories, absent reference)
// resolves to neutral signal values, so new products degrade gracefully
// instead of erroring.
func (d *Detector) Detect(currentPrice, referencePrice float64, history []float64, opts Options) models.DetectResult {
	var discount float64
	if referencePrice > 0 {
		discount = (referencePrice - currentPrice) / referencePrice * 100
	}

	th, applied := d.registry.Lookup(opts.Category)
	ctx := temporal.Analyze(opts.Timestamp)

	s := signals{
		discount:     discount,
		madScore:     stats.DoubleMAD(currentPrice, history),
		zScore:       stats.ZScore(currentPrice, history),
		iqrFlag:      stats.AdjustedIQROutlier(currentPrice, history, th.IQRMultiplier),
		decimalError: referencePrice > 0 && currentPrice/referencePrice < decimalErrorRatio,
	}
	s.percentDrop = s.discount > th.DropThreshold
	s.madAnomaly = s.madScore > th.MADThreshold
	s.zAnomaly = s.zScore > zScoreTrigger

	result := models.DetectResult{
		IsAnomaly:          s.percentDrop || s.madAnomaly || s.zAnomaly || s.decimalError,
		ZScore:             s.zScore,
		DiscountPercentage: s.discount,
		MADScore:           s.madScore,
		IQRFlag:            s.iqrFlag,
		CategoryApplied:    applied,
		TemporalContext:    ctx,
		ThresholdsUsed:     th,
	}

	if result.IsAnomaly {
		for _, rule := range typeRules {
			if rule.match(s) {
				result.AnomalyType = rule.kind
				break
			}
		}
	}

	base := 0.0
	for _, rule := range confidenceRules {
		if rule.match(s) {
			base = rule.base(s)
			break
		}
	}
	result.Confidence = math.Min(base+th.MinConfidenceBoost+ctx.ConfidenceModifier, 100)

	if result.IsAnomaly {
		d.logger.Debug().
			Str("type", result.AnomalyType).
			Str("category", applied).
			Float64("price", currentPrice).
			Float64("discount_pct", s.discount).
			Float64("mad_score", s.madScore).
			Float64("z_score", s.zScore).
			Bool("iqr_flag", s.iqrFlag).
			Float64("confidence", result.Confidence).
			Msg("price anomaly flagged")
	}
	return result
}
