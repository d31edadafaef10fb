// Package timescale maps a date/time domain onto a linear spatial range.
// Both render surfaces share it: the interactive screen composes the base
// scale with a zoom/pan transform, the export paginator uses it frozen.
package timescale

import (
	"fmt"
	"time"

	"github.com/keepsake-labs/chronoline/internal/core/model"
)

// MinSpan is the narrowest domain a scale will accept. Degenerate domains
// (start == end) are widened to this span instead of dividing by zero.
const MinSpan = 24 * time.Hour

// Scale is an invertible linear mapping from [start, end] in time to
// [r0, r1] in space. The zero value is not usable; construct with New.
type Scale struct {
	start time.Time
	end   time.Time
	r0    float64
	r1    float64
}

// New builds a scale mapping [start, end] onto [0, width]. A zero-span
// domain is widened symmetrically to MinSpan; an inverted domain or a
// non-positive width is rejected.
func New(start, end time.Time, width float64) (Scale, error) {
	if width <= 0 {
		return Scale{}, fmt.Errorf("timescale: non-positive range width %v", width)
	}
	if end.Before(start) {
		return Scale{}, fmt.Errorf("timescale: inverted domain [%v, %v]", start, end)
	}
	if !end.After(start) {
		half := MinSpan / 2
		start, end = start.Add(-half), end.Add(half)
	}
	return Scale{start: start, end: end, r0: 0, r1: width}, nil
}

// Start returns the domain start
func (s Scale) Start() time.Time { return s.start }

// End returns the domain end
func (s Scale) End() time.Time { return s.end }

// Width returns the spatial extent of the range
func (s Scale) Width() float64 { return s.r1 - s.r0 }

// SpanDays returns the domain span in fractional days
func (s Scale) SpanDays() float64 {
	return s.end.Sub(s.start).Hours() / 24
}

// Pos maps a time to its position. The mapping is monotonic: a later time
// never maps to a smaller position.
func (s Scale) Pos(t time.Time) float64 {
	span := float64(s.end.Sub(s.start))
	frac := float64(t.Sub(s.start)) / span
	return s.r0 + frac*(s.r1-s.r0)
}

// TimeAt is the exact inverse of Pos
func (s Scale) TimeAt(x float64) time.Time {
	frac := (x - s.r0) / (s.r1 - s.r0)
	span := float64(s.end.Sub(s.start))
	return s.start.Add(time.Duration(frac * span))
}

// Rescaled composes the scale with a zoom/pan transform. The domain is
// untouched; every position x becomes k*x + translate.
func (s Scale) Rescaled(t Transform) Scale {
	t = t.Clamped()
	return Scale{
		start: s.start,
		end:   s.end,
		r0:    t.K*s.r0 + t.TranslateX,
		r1:    t.K*s.r1 + t.TranslateX,
	}
}

// DomainFor derives the padded time domain for a set of events. With zero
// events it substitutes a default one-year domain centered on the current
// year, so downstream layout never sees an empty domain.
func DomainFor(events []model.Event, padding time.Duration) (time.Time, time.Time) {
	if len(events) == 0 {
		year := time.Now().Year()
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0)
	}

	min, max := events[0].Timestamp, events[0].Timestamp
	for _, ev := range events[1:] {
		if ev.Timestamp.Before(min) {
			min = ev.Timestamp
		}
		if ev.Timestamp.After(max) {
			max = ev.Timestamp
		}
	}
	return min.Add(-padding), max.Add(padding)
}
