// Package granularity picks the tick/label resolution for a visible time
// span. The classification is deterministic; the Selector wraps it with
// hysteresis so continuous zooming does not flicker labels.
package granularity

// Granularity is the tick resolution of the rail. Order matters: Month is
// the finest, Year the coarsest.
type Granularity int

const (
	Month Granularity = iota
	Quarter
	Year
)

// String returns the display name of the granularity
func (g Granularity) String() string {
	switch g {
	case Month:
		return "month"
	case Quarter:
		return "quarter"
	case Year:
		return "year"
	default:
		return "unknown"
	}
}

// Span thresholds in days. Within two years and a light event load every
// month gets a tick; up to roughly seven years quarters; beyond that years.
const (
	monthMaxSpanDays   = 730
	quarterMaxSpanDays = 2557
	monthMaxEvents     = 24
	quarterMaxEvents   = 120
)

// Classify picks the granularity for a visible span and event count.
// Shorter or sparser views always get finer-or-equal granularity than
// longer or denser ones.
func Classify(spanDays float64, eventCount int) Granularity {
	switch {
	case spanDays <= monthMaxSpanDays && eventCount <= monthMaxEvents:
		return Month
	case spanDays <= quarterMaxSpanDays && eventCount <= quarterMaxEvents:
		return Quarter
	default:
		return Year
	}
}
