// Package placement converts event timestamps into collision-free
// horizontal positions along the rail.
package placement

import (
	"sort"

	"github.com/keepsake-labs/chronoline/internal/core/model"
	"github.com/keepsake-labs/chronoline/internal/core/timescale"
)

// Side is the vertical side of the rail an event card hangs on
type Side int

const (
	SideAbove Side = iota
	SideBelow
)

// Placement is the computed position of one event for the current frame.
// Derived state: recomputed every render pass, never persisted.
type Placement struct {
	Event     model.Event
	X         float64 // raw scale position
	AdjustedX float64 // after the minimum-gap pass
	Side      Side
	CardW     float64
	CardH     float64
}

// Engine places events on a scale under a minimum-separation constraint
type Engine struct {
	MinGap float64
	CardW  float64
	CardH  float64
}

// NewEngine creates a placement engine
func NewEngine(minGap, cardW, cardH float64) *Engine {
	return &Engine{MinGap: minGap, CardW: cardW, CardH: cardH}
}

// Place produces one Placement per event, ordered by adjusted position
// ascending. Sides alternate by index parity so re-rendering the same data
// never flips a card. Collision handling only pushes events forward, so
// chronological order is preserved and the pass is idempotent.
func (e *Engine) Place(sc timescale.Scale, events []model.Event) []Placement {
	sorted := make([]model.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	xs := make([]float64, len(sorted))
	for i, ev := range sorted {
		xs[i] = sc.Pos(ev.Timestamp)
	}
	adjusted := EnforceMinGap(xs, e.MinGap)

	placements := make([]Placement, len(sorted))
	for i, ev := range sorted {
		side := SideAbove
		if i%2 == 1 {
			side = SideBelow
		}
		placements[i] = Placement{
			Event:     ev,
			X:         xs[i],
			AdjustedX: adjusted[i],
			Side:      side,
			CardW:     e.CardW,
			CardH:     e.CardH,
		}
	}
	return placements
}

// EnforceMinGap nudges positions forward until adjacent values are at
// least minGap apart. Input must be ascending; output stays ascending.
// Running it on already-valid positions is a no-op.
func EnforceMinGap(xs []float64, minGap float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	for i := 1; i < len(out); i++ {
		if floor := out[i-1] + minGap; out[i] < floor {
			out[i] = floor
		}
	}
	return out
}

// VisibleWithin culls placements whose raw position falls outside
// [x0-bleed, x1+bleed]. Cards inside the bleed margin are kept so
// connectors do not pop in at the window edge.
func VisibleWithin(placements []Placement, x0, x1, bleed float64) []Placement {
	visible := make([]Placement, 0, len(placements))
	for _, p := range placements {
		if p.X < x0-bleed || p.X > x1+bleed {
			continue
		}
		visible = append(visible, p)
	}
	return visible
}

// VisibleAdjusted culls placements whose adjusted position falls outside
// [x0-bleed, x1+bleed]. The export pages select cards with this variant:
// a card nudged onto a later page must be drawn there, not at its raw
// position's page.
func VisibleAdjusted(placements []Placement, x0, x1, bleed float64) []Placement {
	visible := make([]Placement, 0, len(placements))
	for _, p := range placements {
		if p.AdjustedX < x0-bleed || p.AdjustedX > x1+bleed {
			continue
		}
		visible = append(visible, p)
	}
	return visible
}

// ContentWidth computes the spatial extent both surfaces lay events onto:
// never narrower than the viewport, wide enough for the baseline density,
// and wide enough that the minimum-gap constraint is satisfiable.
func ContentWidth(viewport, spanDays, pxPerDay float64, eventCount int, minGap float64) float64 {
	w := viewport
	if byDensity := spanDays * pxPerDay; byDensity > w {
		w = byDensity
	}
	if eventCount > 1 {
		if byGap := float64(eventCount-1) * minGap; byGap > w {
			w = byGap
		}
	}
	return w
}
