package models

import (
	"time"
)

// Anomaly types, in descending order of signal reliability. A structural
// decimal-shift error always outranks a statistical signal.
const (
	AnomalyDecimalError   = "decimal_error"
	AnomalyMADScore       = "mad_score"
	AnomalyIQROutlier     = "iqr_outlier"
	AnomalyZScore         = "z_score"
	AnomalyPercentageDrop = "percentage_drop"
)

// PriceObservation is a single scraped price point handed over by the
// scraping layer. ReferencePrice is the "was" price and may be absent (0).
// History holds prior observed prices for the same product, typically the
// most recent 30 or fewer; order is irrelevant.
type PriceObservation struct {
	ProductID      string     `json:"product_id"`
	Title          string     `json:"title,omitempty"`
	Retailer       string     `json:"retailer,omitempty"`
	URL            string     `json:"url,omitempty"`
	CurrentPrice   float64    `json:"current_price"`
	ReferencePrice float64    `json:"reference_price,omitempty"`
	History        []float64  `json:"history,omitempty"`
	Category       string     `json:"category,omitempty"`
	ObservedAt     *time.Time `json:"observed_at,omitempty"`
}

// CategoryThresholds tunes the detector for one product category.
// DropThreshold is a percentage in [0,100].
type CategoryThresholds struct {
	MADThreshold       float64 `json:"mad_threshold" yaml:"mad_threshold"`
	DropThreshold      float64 `json:"drop_threshold" yaml:"drop_threshold"`
	IQRMultiplier      float64 `json:"iqr_multiplier" yaml:"iqr_multiplier"`
	MinConfidenceBoost float64 `json:"min_confidence_boost" yaml:"min_confidence_boost"`
}

// TemporalContext describes when an observation was made. DayOfWeek uses
// 0=Sunday through 6=Saturday.
type TemporalContext struct {
	IsMaintenanceWindow bool    `json:"is_maintenance_window"`
	IsWeekend           bool    `json:"is_weekend"`
	HourOfDay           int     `json:"hour_of_day"`
	DayOfWeek           int     `json:"day_of_week"`
	ConfidenceModifier  float64 `json:"confidence_modifier"`
}

// DetectResult carries the verdict plus every intermediate value so
// downstream consumers can audit why a price was flagged.
type DetectResult struct {
	IsAnomaly          bool               `json:"is_anomaly"`
	AnomalyType        string             `json:"anomaly_type,omitempty"`
	ZScore             float64            `json:"z_score"`
	DiscountPercentage float64            `json:"discount_percentage"`
	Confidence         float64            `json:"confidence"`
	MADScore           float64            `json:"mad_score"`
	IQRFlag            bool               `json:"iqr_flag"`
	CategoryApplied    string             `json:"category_applied"`
	TemporalContext    TemporalContext    `json:"temporal_context"`
	ThresholdsUsed     CategoryThresholds `json:"thresholds_used"`
}

// ValidationRequest is the contract the AI validator consumes: a summary of
// the detection plus product metadata.
type ValidationRequest struct {
	Title          string       `json:"title,omitempty"`
	Retailer       string       `json:"retailer,omitempty"`
	URL            string       `json:"url,omitempty"`
	CurrentPrice   float64      `json:"current_price"`
	ReferencePrice float64      `json:"reference_price,omitempty"`
	Detection      DetectResult `json:"detection"`
}

// ValidationResult is the validator's accept/reject verdict.
type ValidationResult struct {
	Accepted   bool    `json:"accepted"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

// ValidatedGlitch is a price anomaly the validator confirmed as a genuine
// pricing error. SecondaryRelevanceScore is an independent relevance signal
// on a 0-1 scale, 0 when absent.
type ValidatedGlitch struct {
	ID                      string    `json:"id"`
	Title                   string    `json:"title"`
	Retailer                string    `json:"retailer"`
	URL                     string    `json:"url"`
	CurrentPrice            float64   `json:"current_price"`
	OriginalPrice           float64   `json:"original_price"`
	ProfitMargin            float64   `json:"profit_margin"`
	Confidence              float64   `json:"confidence"`
	SecondaryRelevanceScore float64   `json:"secondary_relevance_score,omitempty"`
	Reasoning               string    `json:"reasoning,omitempty"`
	ValidatedAt             time.Time `json:"validated_at"`
}

// DigestGlitch is a ranked glitch as it appears in a tier digest.
// Position is 1-based.
type DigestGlitch struct {
	ValidatedGlitch
	Rank     float64 `json:"rank"`
	Position int     `json:"position"`
}

// SubscriptionTier identifies how quickly a subscriber may see new glitches.
type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierStarter SubscriptionTier = "starter"
	TierPro     SubscriptionTier = "pro"
)
