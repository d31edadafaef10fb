// Package view coordinates the interactive timeline surface: data loading,
// placement, rendering, keyboard pan/zoom and background thumbnail work.
package view

import (
	"context"
	"fmt"
	"time"

	"github.com/keepsake-labs/chronoline/internal/config"
	"github.com/keepsake-labs/chronoline/internal/core/granularity"
	"github.com/keepsake-labs/chronoline/internal/core/model"
	"github.com/keepsake-labs/chronoline/internal/core/placement"
	"github.com/keepsake-labs/chronoline/internal/core/thumbnail"
	"github.com/keepsake-labs/chronoline/internal/core/timescale"
	"github.com/keepsake-labs/chronoline/internal/data/store"
	"github.com/keepsake-labs/chronoline/internal/data/watcher"
	"github.com/keepsake-labs/chronoline/internal/presentation/interaction"
	"github.com/keepsake-labs/chronoline/internal/presentation/rail"
	"github.com/keepsake-labs/chronoline/internal/presentation/screen"
	"github.com/keepsake-labs/chronoline/internal/util"
)

// yearHintIdle is how long the current-year indicator stays visible after
// the last pan
const yearHintIdle = 1500 * time.Millisecond

const (
	zoomInStep  = 1.25
	zoomOutStep = 0.8
)

// Config wires the orchestrator to its collaborators. The two callbacks
// are the only outward signals the surface emits.
type Config struct {
	TimelinePath string
	Appearance   *config.Config

	OnEventActivated     func(model.Event)
	OnRequestCreateEvent func()
}

// Orchestrator runs the interactive surface main loop
type Orchestrator struct {
	cfg      *Config
	look     *config.Config
	store    *store.FileStore
	resolver *thumbnail.Resolver
	display  *screen.Display
	keyboard *interaction.KeyboardReader
	watcher  *watcher.FileWatcher
	selector *granularity.Selector
	engine   *placement.Engine

	timeline  *model.Timeline
	transform timescale.Transform
	viewX     float64
	focused   int
	lastPan   time.Time
	status    string
	redraw    chan struct{}
}

// NewOrchestrator creates an orchestrator for one timeline file
func NewOrchestrator(cfg *Config, st *store.FileStore) *Orchestrator {
	look := cfg.Appearance
	o := &Orchestrator{
		cfg:       cfg,
		look:      look,
		store:     st,
		display:   screen.NewDisplay(look.Screen.CardWidth),
		selector:  granularity.NewSelector(),
		engine:    placement.NewEngine(look.Screen.MinGapCells, float64(look.Screen.CardWidth), 3),
		transform: timescale.Identity(),
		redraw:    make(chan struct{}, 1),
	}
	o.resolver = thumbnail.NewResolver(st, func(string) {
		select {
		case o.redraw <- struct{}{}:
		default:
		}
	})
	return o
}

// Run starts the main loop and blocks until quit or context cancellation
func (o *Orchestrator) Run(ctx context.Context) error {
	util.LogInfo("Starting interactive timeline view")

	tl, err := o.store.Timeline(ctx)
	if err != nil {
		return fmt.Errorf("load timeline: %w", err)
	}
	o.timeline = tl

	keyboard, err := interaction.NewKeyboardReader()
	if err != nil {
		return fmt.Errorf("initialize keyboard: %w", err)
	}
	o.keyboard = keyboard
	defer o.keyboard.Close()

	o.display.EnterAlternateScreen()
	defer o.display.ExitAlternateScreen()

	if fw, err := watcher.New(o.cfg.TimelinePath); err != nil {
		util.LogWarnf("Live reload disabled: %v", err)
	} else {
		o.watcher = fw
		defer o.watcher.Close()
	}

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		o.render(ctx)

		var watchEvents <-chan struct{}
		if o.watcher != nil {
			watchEvents = o.watcher.Events()
		}

		select {
		case <-ctx.Done():
			return nil
		case key := <-o.keyboard.Events():
			if o.handleKey(ctx, key) {
				return nil
			}
		case <-watchEvents:
			o.reload(ctx)
		case <-o.redraw:
		case <-ticker.C:
		}
	}
}

// handleKey reacts to one key event; a true return quits the loop
func (o *Orchestrator) handleKey(ctx context.Context, key interaction.KeyEvent) bool {
	switch key.Type {
	case interaction.KeyEscape:
		return true
	case interaction.KeyEnter:
		o.activateFocused()
		return false
	case interaction.KeyArrowLeft:
		o.moveFocus(-1)
		return false
	case interaction.KeyArrowRight:
		o.moveFocus(1)
		return false
	}

	switch key.Key {
	case 'q', 3: // q or Ctrl+C
		return true
	case 'h':
		o.pan(-o.look.Screen.PanStepCells)
	case 'l':
		o.pan(o.look.Screen.PanStepCells)
	case '+', '=':
		o.zoom(zoomInStep)
	case '-', '_':
		o.zoom(zoomOutStep)
	case '0':
		o.transform = timescale.Identity()
		o.viewX = 0
		o.lastPan = time.Now()
	case 'g':
		o.viewX = 0
		o.lastPan = time.Now()
	case 'G':
		o.viewX = o.maxViewX()
		o.lastPan = time.Now()
	case 'r':
		o.reload(ctx)
	case 'n':
		if len(o.timeline.Events) == 0 && o.cfg.OnRequestCreateEvent != nil {
			o.cfg.OnRequestCreateEvent()
		}
	}
	return false
}

func (o *Orchestrator) pan(delta float64) {
	o.viewX += delta
	o.clampView()
	o.lastPan = time.Now()
}

// zoom rescales around the viewport center so the date under the center
// column stays put
func (o *Orchestrator) zoom(factor float64) {
	width, _ := o.display.Size()
	oldK := o.transform.K
	o.transform = o.transform.Zoomed(factor)
	if o.transform.K == oldK {
		return
	}
	center := o.viewX + float64(width)/2
	o.viewX = center*o.transform.K/oldK - float64(width)/2
	o.clampView()
	o.lastPan = time.Now()
}

func (o *Orchestrator) clampView() {
	if max := o.maxViewX(); o.viewX > max {
		o.viewX = max
	}
	if o.viewX < 0 {
		o.viewX = 0
	}
}

func (o *Orchestrator) maxViewX() float64 {
	width, _ := o.display.Size()
	max := o.contentWidth()*o.transform.Clamped().K - float64(width)
	if max < 0 {
		max = 0
	}
	return max
}

func (o *Orchestrator) moveFocus(delta int) {
	n := len(o.timeline.Events)
	if n == 0 {
		return
	}
	o.focused += delta
	if o.focused < 0 {
		o.focused = 0
	}
	if o.focused >= n {
		o.focused = n - 1
	}
	o.scrollFocusedIntoView()
}

func (o *Orchestrator) activateFocused() {
	evs := o.sortedEvents()
	if len(evs) == 0 || o.cfg.OnEventActivated == nil {
		return
	}
	o.cfg.OnEventActivated(evs[o.focused])
}

// reload re-reads the timeline file. On failure the previous data stays on
// screen and the error lands in the status line; retrying is the user's
// call.
func (o *Orchestrator) reload(ctx context.Context) {
	o.store.Invalidate()
	tl, err := o.store.Timeline(ctx)
	if err != nil {
		util.LogErrorf("Reload failed: %v", err)
		o.status = fmt.Sprintf("reload failed: %v", err)
		return
	}
	o.timeline = tl
	o.status = fmt.Sprintf("reloaded %d events", len(tl.Events))
	if o.focused >= len(tl.Events) && len(tl.Events) > 0 {
		o.focused = len(tl.Events) - 1
	}
}

func (o *Orchestrator) sortedEvents() []model.Event {
	evs := make([]model.Event, len(o.timeline.Events))
	copy(evs, o.timeline.Events)
	model.SortEvents(evs)
	return evs
}

func (o *Orchestrator) contentWidth() float64 {
	width, _ := o.display.Size()
	start, end := timescale.DomainFor(o.timeline.Events, o.domainPadding())
	spanDays := end.Sub(start).Hours() / 24
	return placement.ContentWidth(
		float64(width), spanDays, o.look.Screen.CellsPerDay,
		len(o.timeline.Events), o.look.Screen.MinGapCells)
}

func (o *Orchestrator) domainPadding() time.Duration {
	return time.Duration(o.look.Layout.DomainPaddingDays) * 24 * time.Hour
}

func (o *Orchestrator) scrollFocusedIntoView() {
	sc, ok := o.effectiveScale()
	if !ok {
		return
	}
	evs := o.sortedEvents()
	placements := o.engine.Place(sc, evs)
	if o.focused >= len(placements) {
		return
	}
	width, _ := o.display.Size()
	x := placements[o.focused].AdjustedX
	if x < o.viewX {
		o.viewX = x - float64(o.look.Screen.CardWidth)
	} else if x > o.viewX+float64(width) {
		o.viewX = x - float64(width) + float64(o.look.Screen.CardWidth)
	}
	o.clampView()
}

func (o *Orchestrator) effectiveScale() (timescale.Scale, bool) {
	start, end := timescale.DomainFor(o.timeline.Events, o.domainPadding())
	base, err := timescale.New(start, end, o.contentWidth())
	if err != nil {
		util.LogErrorf("Scale construction failed: %v", err)
		return timescale.Scale{}, false
	}
	return base.Rescaled(o.transform), true
}

func (o *Orchestrator) render(ctx context.Context) {
	width, _ := o.display.Size()
	sc, ok := o.effectiveScale()
	if !ok {
		return
	}

	evs := o.sortedEvents()
	frame := screen.Frame{
		Title:       o.timeline.Title,
		Description: o.timeline.Description,
		ViewX:       o.viewX,
		Zoom:        o.transform.Clamped().K,
		ShowYear:    time.Since(o.lastPan) < yearHintIdle,
		Status:      o.status,
		Empty:       len(evs) == 0,
		Badges:      make(map[string]string),
	}

	viewEnd := o.viewX + float64(width)
	visibleDays := sc.TimeAt(viewEnd).Sub(sc.TimeAt(o.viewX)).Hours() / 24
	frame.Gran = o.selector.Update(visibleDays, len(evs))
	frame.Ticks = rail.Ticks(sc, frame.Gran)
	frame.Year = fmt.Sprintf("%d", sc.TimeAt(o.viewX+float64(width)/2).Year())

	if len(evs) > 0 {
		bleed := float64(o.look.Screen.CardWidth)
		placements := o.engine.Place(sc, evs)
		frame.Placements = placement.VisibleWithin(placements, o.viewX, viewEnd, bleed)
		if o.focused < len(placements) {
			frame.FocusedID = placements[o.focused].Event.ID
		}

		for _, p := range frame.Placements {
			if thumbs, ok := o.resolver.Get(p.Event.ID); ok {
				frame.Badges[p.Event.ID] = badgeFor(thumbs)
			} else {
				o.resolver.Request(ctx, p.Event)
			}
		}
	}

	o.display.Render(frame)
}

// badgeFor summarizes resolved thumbnails on a card
func badgeFor(thumbs []thumbnail.Thumbnail) string {
	var photos, videos int
	for _, t := range thumbs {
		switch t.Kind {
		case model.MediaPhoto:
			photos++
		case model.MediaVideo:
			videos++
		}
	}
	switch {
	case photos > 0 && videos > 0:
		return fmt.Sprintf("📷%d 🎬%d", photos, videos)
	case photos > 0:
		return fmt.Sprintf("📷%d", photos)
	case videos > 0:
		return fmt.Sprintf("🎬%d", videos)
	default:
		return ""
	}
}
