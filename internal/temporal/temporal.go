package temporal

import (
	"time"

	"github.com/pricepulse/glitchradar/models"
)

// Neutral placeholders for observations without a timestamp.
const (
	neutralHour = 12
	neutralDay  = 3
)

const (
	maintenanceModifier = 10
	peakHoursModifier   = 5
)

// Analyze derives a temporal context from an observation timestamp. Retail
// pricing errors cluster in overnight maintenance windows, so detections
// made there earn a confidence boost. A nil timestamp yields a neutral
// context rather than an error.
func Analyze(ts *time.Time) models.TemporalContext {
	if ts == nil {
		return models.TemporalContext{HourOfDay: neutralHour, DayOfWeek: neutralDay}
	}

	hour := ts.Hour()
	day := int(ts.Weekday())

	// The Sunday-night band wraps past midnight into Monday morning.
	maintenance := (hour >= 2 && hour <= 5) ||
		(day == 0 && hour >= 22) ||
		(day == 1 && hour <= 2)

	modifier := 0.0
	if maintenance {
		modifier = maintenanceModifier
		if hour >= 2 && hour <= 4 {
			modifier += peakHoursModifier
		}
	}

	return models.TemporalContext{
		IsMaintenanceWindow: maintenance,
		IsWeekend:           day == 0 || day == 6,
		HourOfDay:           hour,
		DayOfWeek:           day,
		ConfidenceModifier:  modifier,
	}
}
