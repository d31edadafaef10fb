package timescale

import (
	"math"
	"testing"
	"time"

	"github.com/keepsake-labs/chronoline/internal/core/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		width   float64
		wantErr bool
	}{
		{
			name:  "normal_domain",
			start: date(2020, 1, 1),
			end:   date(2021, 1, 1),
			width: 1000,
		},
		{
			name:  "degenerate_domain_widened",
			start: date(2020, 6, 15),
			end:   date(2020, 6, 15),
			width: 500,
		},
		{
			name:    "inverted_domain",
			start:   date(2021, 1, 1),
			end:     date(2020, 1, 1),
			width:   1000,
			wantErr: true,
		},
		{
			name:    "zero_width",
			start:   date(2020, 1, 1),
			end:     date(2021, 1, 1),
			width:   0,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := New(tt.start, tt.end, tt.width)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !sc.End().After(sc.Start()) {
				t.Errorf("domain not widened: [%v, %v]", sc.Start(), sc.End())
			}
			if sc.Width() != tt.width {
				t.Errorf("expected width %v, got %v", tt.width, sc.Width())
			}
		})
	}
}

func TestDegenerateDomainWidenedToMinSpan(t *testing.T) {
	at := date(2020, 6, 15)
	sc, err := New(at, at, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sc.End().Sub(sc.Start()); got != MinSpan {
		t.Errorf("expected span %v, got %v", MinSpan, got)
	}
	// the original instant maps to the middle of the range
	if got := sc.Pos(at); math.Abs(got-50) > 1e-9 {
		t.Errorf("expected position 50, got %v", got)
	}
}

func TestPosMonotonic(t *testing.T) {
	sc, err := New(date(2015, 1, 1), date(2025, 1, 1), 2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prev := math.Inf(-1)
	for ts := date(2015, 1, 1); ts.Before(date(2025, 1, 1)); ts = ts.AddDate(0, 1, 0) {
		pos := sc.Pos(ts)
		if pos < prev {
			t.Fatalf("position decreased at %v: %v < %v", ts, pos, prev)
		}
		prev = pos
	}

	if sc.Pos(sc.Start()) != 0 {
		t.Errorf("domain start should map to 0, got %v", sc.Pos(sc.Start()))
	}
	if sc.Pos(sc.End()) != 2000 {
		t.Errorf("domain end should map to width, got %v", sc.Pos(sc.End()))
	}
}

func TestTimeAtInvertsPos(t *testing.T) {
	sc, err := New(date(2018, 3, 1), date(2022, 11, 30), 1440)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, ts := range []time.Time{
		date(2018, 3, 1),
		date(2019, 7, 4),
		date(2021, 12, 25),
		date(2022, 11, 30),
	} {
		back := sc.TimeAt(sc.Pos(ts))
		if diff := back.Sub(ts); diff < -time.Second || diff > time.Second {
			t.Errorf("round trip of %v drifted by %v", ts, diff)
		}
	}
}

func TestRescaled(t *testing.T) {
	sc, err := New(date(2020, 1, 1), date(2021, 1, 1), 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	zoomed := sc.Rescaled(Transform{TranslateX: -500, K: 2})

	if got := zoomed.Width(); got != 2000 {
		t.Errorf("expected rescaled width 2000, got %v", got)
	}
	// position composes as k*x + translate
	mid := date(2020, 7, 2)
	want := 2*sc.Pos(mid) - 500
	if got := zoomed.Pos(mid); math.Abs(got-want) > 1e-6 {
		t.Errorf("expected position %v, got %v", want, got)
	}
	// order is preserved under any transform
	if zoomed.Pos(date(2020, 3, 1)) >= zoomed.Pos(date(2020, 9, 1)) {
		t.Error("rescaled mapping lost ordering")
	}
}

func TestTransformClamped(t *testing.T) {
	tests := []struct {
		name string
		k    float64
		want float64
	}{
		{name: "below_min", k: 0.1, want: MinZoom},
		{name: "above_max", k: 20, want: MaxZoom},
		{name: "in_range", k: 2.5, want: 2.5},
		{name: "zero_value", k: 0, want: MinZoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Transform{K: tt.k}.Clamped().K
			if got != tt.want {
				t.Errorf("expected K %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDomainFor(t *testing.T) {
	t.Run("zero_events_default_year", func(t *testing.T) {
		start, end := DomainFor(nil, 30*24*time.Hour)
		year := time.Now().Year()
		if start.Year() != year || start.Month() != time.January || start.Day() != 1 {
			t.Errorf("expected Jan 1 of current year, got %v", start)
		}
		if got := end.Sub(start); got < 365*24*time.Hour {
			t.Errorf("expected at least one year span, got %v", got)
		}
	})

	t.Run("padded_min_max", func(t *testing.T) {
		events := []model.Event{
			{ID: "b", Timestamp: date(2021, 5, 1)},
			{ID: "a", Timestamp: date(2019, 2, 10)},
			{ID: "c", Timestamp: date(2020, 8, 20)},
		}
		padding := 10 * 24 * time.Hour
		start, end := DomainFor(events, padding)
		if !start.Equal(date(2019, 2, 10).Add(-padding)) {
			t.Errorf("unexpected start %v", start)
		}
		if !end.Equal(date(2021, 5, 1).Add(padding)) {
			t.Errorf("unexpected end %v", end)
		}
	})

	t.Run("single_event_symmetric", func(t *testing.T) {
		events := []model.Event{{ID: "a", Timestamp: date(2020, 6, 15)}}
		padding := 30 * 24 * time.Hour
		start, end := DomainFor(events, padding)
		if got := date(2020, 6, 15).Sub(start); got != padding {
			t.Errorf("expected %v before the event, got %v", padding, got)
		}
		if got := end.Sub(date(2020, 6, 15)); got != padding {
			t.Errorf("expected %v after the event, got %v", padding, got)
		}
	})
}
