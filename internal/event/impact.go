package event

import "strings"

// Normalized impact labels
const (
	ImpactHigh    = "high"
	ImpactMedium  = "medium"
	ImpactLow     = "low"
	ImpactHoliday = "holiday"
)

// NormalizeImpact maps a source impact label onto high, medium, low or holiday.
// Unrecognized labels are lower-cased and returned as-is.
func NormalizeImpact(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case ImpactHigh, ImpactMedium, ImpactLow, ImpactHoliday:
		return s
	}

	switch {
	case strings.Contains(s, "non-economic"), strings.Contains(s, "holiday"), strings.Contains(s, "bank"):
		return ImpactHoliday
	case strings.Contains(s, "high"), strings.Contains(s, "red"):
		return ImpactHigh
	case strings.Contains(s, "medium"), strings.Contains(s, "orange"):
		return ImpactMedium
	case strings.Contains(s, "low"), strings.Contains(s, "yellow"):
		return ImpactLow
	}
	return s
}
