// Package rail holds the axis primitives both render surfaces share: tick
// generation and tick label formatting.
package rail

import (
	"fmt"
	"time"

	"github.com/keepsake-labs/chronoline/internal/core/granularity"
	"github.com/keepsake-labs/chronoline/internal/core/timescale"
)

// Tick is one labeled anchor on the rail. Year boundaries are Major and
// render emphasized on both surfaces.
type Tick struct {
	Time  time.Time
	X     float64
	Label string
	Major bool
}

// Ticks generates the ticks inside the scale's domain at the given
// granularity: every month start, quarter starts (Jan/Apr/Jul/Oct), or
// year starts.
func Ticks(sc timescale.Scale, g granularity.Granularity) []Tick {
	start, end := sc.Start(), sc.End()

	t := firstAnchor(start, g)
	var ticks []Tick
	for !t.After(end) {
		ticks = append(ticks, Tick{
			Time:  t,
			X:     sc.Pos(t),
			Label: Label(t, g),
			Major: t.Month() == time.January,
		})
		t = next(t, g)
	}
	return ticks
}

// Label formats a tick time at the given granularity
func Label(t time.Time, g granularity.Granularity) string {
	switch g {
	case granularity.Month:
		return t.Format("Jan 2006")
	case granularity.Quarter:
		return fmt.Sprintf("Q%d %d", (int(t.Month())-1)/3+1, t.Year())
	default:
		return t.Format("2006")
	}
}

// firstAnchor returns the earliest tick time at or after start
func firstAnchor(start time.Time, g granularity.Granularity) time.Time {
	loc := start.Location()
	switch g {
	case granularity.Month:
		anchor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, loc)
		if anchor.Before(start) {
			anchor = anchor.AddDate(0, 1, 0)
		}
		return anchor
	case granularity.Quarter:
		qm := time.Month(((int(start.Month())-1)/3)*3 + 1)
		anchor := time.Date(start.Year(), qm, 1, 0, 0, 0, 0, loc)
		if anchor.Before(start) {
			anchor = anchor.AddDate(0, 3, 0)
		}
		return anchor
	default:
		anchor := time.Date(start.Year(), time.January, 1, 0, 0, 0, 0, loc)
		if anchor.Before(start) {
			anchor = anchor.AddDate(1, 0, 0)
		}
		return anchor
	}
}

func next(t time.Time, g granularity.Granularity) time.Time {
	switch g {
	case granularity.Month:
		return t.AddDate(0, 1, 0)
	case granularity.Quarter:
		return t.AddDate(0, 3, 0)
	default:
		return t.AddDate(1, 0, 0)
	}
}
