package placement

import (
	"reflect"
	"testing"
	"time"

	"github.com/keepsake-labs/chronoline/internal/core/model"
	"github.com/keepsake-labs/chronoline/internal/core/timescale"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustScale(t *testing.T, start, end time.Time, width float64) timescale.Scale {
	t.Helper()
	sc, err := timescale.New(start, end, width)
	if err != nil {
		t.Fatalf("scale: %v", err)
	}
	return sc
}

func eventsAt(times ...time.Time) []model.Event {
	events := make([]model.Event, len(times))
	for i, ts := range times {
		events[i] = model.Event{ID: string(rune('a' + i)), Title: "event", Timestamp: ts}
	}
	return events
}

func TestPlaceMonotonicAndGapped(t *testing.T) {
	sc := mustScale(t, date(2020, 1, 1), date(2021, 1, 1), 1000)
	engine := NewEngine(40, 100, 80)

	events := eventsAt(
		date(2020, 2, 1),
		date(2020, 2, 2), // nearly the same position
		date(2020, 2, 3),
		date(2020, 9, 1),
	)

	placements := engine.Place(sc, events)
	if len(placements) != len(events) {
		t.Fatalf("expected %d placements, got %d", len(events), len(placements))
	}

	for i := 1; i < len(placements); i++ {
		gap := placements[i].AdjustedX - placements[i-1].AdjustedX
		if gap < 40 {
			t.Errorf("gap between %d and %d is %v, want >= 40", i-1, i, gap)
		}
	}

	// adjustment never moves an event before its raw position
	for i, p := range placements {
		if p.AdjustedX < p.X {
			t.Errorf("placement %d moved backward: adjusted %v < raw %v", i, p.AdjustedX, p.X)
		}
	}
}

func TestPlaceSameDayEvents(t *testing.T) {
	sc := mustScale(t, date(2020, 12, 1), date(2021, 2, 1), 600)
	engine := NewEngine(50, 100, 80)

	events := eventsAt(date(2021, 1, 1), date(2021, 1, 1))
	placements := engine.Place(sc, events)

	gap := placements[1].AdjustedX - placements[0].AdjustedX
	if gap < 50 {
		t.Errorf("same-day events separated by %v, want >= 50", gap)
	}
}

func TestPlaceSidesAlternateAndStay(t *testing.T) {
	sc := mustScale(t, date(2020, 1, 1), date(2021, 1, 1), 1000)
	engine := NewEngine(40, 100, 80)
	events := eventsAt(date(2020, 2, 1), date(2020, 4, 1), date(2020, 6, 1), date(2020, 8, 1))

	first := engine.Place(sc, events)
	for i, p := range first {
		want := SideAbove
		if i%2 == 1 {
			want = SideBelow
		}
		if p.Side != want {
			t.Errorf("placement %d: expected side %v, got %v", i, want, p.Side)
		}
	}

	second := engine.Place(sc, events)
	if !reflect.DeepEqual(first, second) {
		t.Error("re-placing identical input changed the result")
	}
}

func TestEnforceMinGapIdempotent(t *testing.T) {
	tests := []struct {
		name   string
		xs     []float64
		minGap float64
	}{
		{name: "already_valid", xs: []float64{0, 100, 250, 400}, minGap: 50},
		{name: "clustered", xs: []float64{0, 5, 10, 15}, minGap: 30},
		{name: "identical_positions", xs: []float64{100, 100, 100}, minGap: 20},
		{name: "empty", xs: nil, minGap: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := EnforceMinGap(tt.xs, tt.minGap)
			twice := EnforceMinGap(once, tt.minGap)
			if !reflect.DeepEqual(once, twice) {
				t.Errorf("second pass changed output: %v -> %v", once, twice)
			}
			for i := 1; i < len(once); i++ {
				if once[i]-once[i-1] < tt.minGap {
					t.Errorf("gap at %d is %v, want >= %v", i, once[i]-once[i-1], tt.minGap)
				}
			}
		})
	}
}

func TestVisibleWithin(t *testing.T) {
	sc := mustScale(t, date(2020, 1, 1), date(2021, 1, 1), 1000)
	engine := NewEngine(1, 100, 80)
	events := eventsAt(
		date(2020, 1, 15), // ~38
		date(2020, 6, 1),  // ~415
		date(2020, 12, 15), // ~958
	)
	placements := engine.Place(sc, events)

	tests := []struct {
		name  string
		x0    float64
		x1    float64
		bleed float64
		want  int
	}{
		{name: "full_window", x0: 0, x1: 1000, bleed: 0, want: 3},
		{name: "middle_only", x0: 300, x1: 500, bleed: 0, want: 1},
		{name: "bleed_pulls_in_edges", x0: 100, x1: 900, bleed: 100, want: 3},
		{name: "nothing_visible", x0: 1200, x1: 1400, bleed: 10, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VisibleWithin(placements, tt.x0, tt.x1, tt.bleed)
			if len(got) != tt.want {
				t.Errorf("expected %d visible, got %d", tt.want, len(got))
			}
		})
	}
}

func TestVisibleAdjustedSelectsNudgedPositions(t *testing.T) {
	sc := mustScale(t, date(2020, 1, 1), date(2020, 1, 3), 1000)
	engine := NewEngine(400, 100, 80)

	// three same-window raw positions fan out to 0, 400, 800 after the
	// minimum-gap pass
	events := eventsAt(
		date(2020, 1, 1),
		date(2020, 1, 1),
		date(2020, 1, 1),
	)
	placements := engine.Place(sc, events)

	tests := []struct {
		name  string
		x0    float64
		x1    float64
		bleed float64
		want  int
	}{
		{name: "first_window_holds_one", x0: 0, x1: 300, bleed: 0, want: 1},
		{name: "middle_window_holds_one", x0: 300, x1: 600, bleed: 0, want: 1},
		{name: "last_window_holds_one", x0: 600, x1: 1000, bleed: 0, want: 1},
		{name: "bleed_pulls_in_neighbor", x0: 300, x1: 600, bleed: 250, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VisibleAdjusted(placements, tt.x0, tt.x1, tt.bleed)
			if len(got) != tt.want {
				t.Errorf("expected %d visible, got %d", tt.want, len(got))
			}
		})
	}

	// the raw-position variant piles all three onto the first window
	if got := VisibleWithin(placements, 0, 300, 0); len(got) != 3 {
		t.Errorf("expected 3 by raw position, got %d", len(got))
	}
}

func TestContentWidth(t *testing.T) {
	tests := []struct {
		name       string
		viewport   float64
		spanDays   float64
		pxPerDay   float64
		eventCount int
		minGap     float64
		want       float64
	}{
		{
			name:     "viewport_floor",
			viewport: 800, spanDays: 10, pxPerDay: 2, eventCount: 1, minGap: 100,
			want: 800,
		},
		{
			name:     "density_term_wins",
			viewport: 800, spanDays: 1000, pxPerDay: 2, eventCount: 3, minGap: 100,
			want: 2000,
		},
		{
			name:     "gap_term_wins_for_dense_cluster",
			viewport: 800, spanDays: 30, pxPerDay: 2, eventCount: 50, minGap: 100,
			want: 4900,
		},
		{
			name:     "zero_events",
			viewport: 800, spanDays: 365, pxPerDay: 1, eventCount: 0, minGap: 100,
			want: 800,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContentWidth(tt.viewport, tt.spanDays, tt.pxPerDay, tt.eventCount, tt.minGap)
			if got != tt.want {
				t.Errorf("ContentWidth = %v, want %v", got, tt.want)
			}
		})
	}
}
