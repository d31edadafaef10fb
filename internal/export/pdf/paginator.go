// Package pdf renders a timeline into a paginated, fixed-page-size PDF
// document. The export runs to completion in one pass: all data and
// thumbnails are fetched before the first page is drawn, so the output is
// deterministic and complete at serialization time.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/keepsake-labs/chronoline/internal/config"
	"github.com/keepsake-labs/chronoline/internal/core/granularity"
	"github.com/keepsake-labs/chronoline/internal/core/model"
	"github.com/keepsake-labs/chronoline/internal/core/placement"
	"github.com/keepsake-labs/chronoline/internal/core/thumbnail"
	"github.com/keepsake-labs/chronoline/internal/core/timescale"
	"github.com/keepsake-labs/chronoline/internal/presentation/rail"
	"github.com/keepsake-labs/chronoline/internal/util"
)

// A4 landscape in points
const (
	pageW = 841.89
	pageH = 595.28
)

// ThumbnailSource serves pre-resolved thumbnails. Resolution must have
// completed before Export is called; the paginator never waits.
type ThumbnailSource interface {
	Get(eventID string) ([]thumbnail.Thumbnail, bool)
}

// Paginator turns a timeline into a finished PDF document. Each Export
// call builds an independent document and payload cache; concurrent
// exports share nothing.
type Paginator struct {
	look  *config.Config
	fetch thumbnail.Fetcher
}

// NewPaginator creates a paginator
func NewPaginator(look *config.Config, fetch thumbnail.Fetcher) *Paginator {
	return &Paginator{look: look, fetch: fetch}
}

// layout is the frozen spatial arrangement of one export: the scale,
// every event's placement and the page windows covering them.
type layout struct {
	scale      timescale.Scale
	spanDays   float64
	placements []placement.Placement
	windows    []PageWindow
}

// layoutFor computes the export layout for a set of events. Events are
// expected sorted. The windows cover every adjusted position, not just the
// nominal content width: collision nudging can push the tail of a dense
// cluster past it, and those cards still need a page.
func layoutFor(look *config.Config, events []model.Event) (layout, error) {
	padding := time.Duration(look.Layout.DomainPaddingDays) * 24 * time.Hour
	start, end := timescale.DomainFor(events, padding)
	spanDays := end.Sub(start).Hours() / 24

	innerW := pageW - 2*look.Export.Margin
	contentW := placement.ContentWidth(innerW, spanDays, look.Layout.PxPerDay,
		len(events), look.Layout.MinGap)

	sc, err := timescale.New(start, end, contentW)
	if err != nil {
		return layout{}, err
	}

	engine := placement.NewEngine(look.Layout.MinGap, look.Export.CardWidth, look.Export.CardHeight)
	placements := engine.Place(sc, events)
	if n := len(placements); n > 0 {
		if tail := placements[n-1].AdjustedX + look.Export.CardWidth/2; tail > contentW {
			contentW = tail
		}
	}

	return layout{
		scale:      sc,
		spanDays:   spanDays,
		placements: placements,
		windows:    PageWindows(contentW, innerW),
	}, nil
}

// PageCountFor reports how many pages an export of these events produces,
// without rendering anything.
func PageCountFor(look *config.Config, events []model.Event) (int, error) {
	l, err := layoutFor(look, events)
	if err != nil {
		return 0, err
	}
	return len(l.windows), nil
}

// Export renders the timeline into PDF bytes. Event data problems are
// fatal; a single missing or unembeddable thumbnail only costs that card
// its image.
func (p *Paginator) Export(ctx context.Context, tl *model.Timeline, thumbs ThumbnailSource) ([]byte, error) {
	events := make([]model.Event, len(tl.Events))
	copy(events, tl.Events)
	model.SortEvents(events)

	l, err := layoutFor(p.look, events)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	sc, windows := l.scale, l.windows
	margin := p.look.Export.Margin

	gran := granularity.Classify(l.spanDays, len(events))
	ticks := rail.Ticks(sc, gran)

	payloads, byEvent := p.loadPayloads(ctx, events, thumbs)

	util.LogInfof("Exporting %q: %d events, %d pages, %d distinct thumbnails",
		tl.Title, len(events), len(windows), payloads.Distinct())

	doc := fpdf.New("L", "pt", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	d := &drawer{
		doc:     doc,
		tr:      tr,
		look:    p.look,
		margin:  margin,
		scale:   sc,
		byEvent: byEvent,
		thumbs:  thumbs,
	}

	for _, win := range windows {
		doc.AddPage()
		d.drawHeader(tl)
		d.drawWatermark()
		d.drawRail(win)
		d.drawTicks(win, ticks)
		d.drawYearLabel(win)
		d.drawFooter(win.Index+1, len(windows))
		d.drawVisibleEvents(win, l.placements, p.look.Layout.Bleed)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("serialize document: %w", err)
	}
	return buf.Bytes(), nil
}

// loadPayloads fetches every photo thumbnail payload up front, one entry
// per distinct content hash. Fetch or format failures drop that thumbnail
// and nothing else.
func (p *Paginator) loadPayloads(ctx context.Context, events []model.Event, thumbs ThumbnailSource) (*thumbnail.PayloadCache, map[string]*thumbnail.Payload) {
	cache := thumbnail.NewPayloadCache(p.fetch)
	byEvent := make(map[string]*thumbnail.Payload)

	for _, ev := range events {
		ts, ok := thumbs.Get(ev.ID)
		if !ok {
			continue
		}
		for _, t := range ts {
			if t.Kind != model.MediaPhoto {
				continue
			}
			payload, err := cache.Load(ctx, t.URL)
			if err != nil {
				util.LogWarnf("Skipping thumbnail for event %s (%s): %v", ev.ID, t.URL, err)
				continue
			}
			byEvent[ev.ID] = payload
			break
		}
	}
	return cache, byEvent
}
