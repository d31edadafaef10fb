// Package thumbnail resolves preview media for events. The interactive
// surface requests thumbnails asynchronously and tolerates partial state;
// the export path prefetches everything before drawing begins.
package thumbnail

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/keepsake-labs/chronoline/internal/core/model"
	"github.com/keepsake-labs/chronoline/internal/util"
)

// MaxPerEvent caps how many preview items one event card shows
const MaxPerEvent = 4

// Thumbnail is one resolved preview item
type Thumbnail struct {
	URL  string
	Kind model.MediaKind
}

// Source is the external media store the resolver pulls from
type Source interface {
	// MediaFor returns the media records attached to an event
	MediaFor(ctx context.Context, eventID string) ([]model.MediaRef, error)
	// RetrievalURL exchanges a storage path for a fetchable URL
	RetrievalURL(ctx context.Context, path string) (string, error)
}

// Resolver caches resolved thumbnails by event id and deduplicates
// requests already in flight. Results survive pan-away: a request is never
// cancelled because the event scrolled out of view.
type Resolver struct {
	source   Source
	onUpdate func(eventID string)

	mu       sync.Mutex
	cache    map[string][]Thumbnail
	inflight map[string]struct{}
}

// NewResolver creates a resolver. onUpdate fires after an async resolve
// lands in the cache; the interactive surface uses it to schedule a
// re-render. It may be nil.
func NewResolver(source Source, onUpdate func(eventID string)) *Resolver {
	return &Resolver{
		source:   source,
		onUpdate: onUpdate,
		cache:    make(map[string][]Thumbnail),
		inflight: make(map[string]struct{}),
	}
}

// Get returns the cached thumbnails for an event. A false return means no
// result yet, which the renderer treats as "card without image", not an
// error.
func (r *Resolver) Get(eventID string) ([]Thumbnail, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	thumbs, ok := r.cache[eventID]
	return thumbs, ok
}

// Request starts an asynchronous resolve for an event. Already-resolved or
// in-flight events are not reissued. Per-event media failures degrade to an
// empty (cached) result rather than surfacing an error.
func (r *Resolver) Request(ctx context.Context, ev model.Event) {
	r.mu.Lock()
	if _, done := r.cache[ev.ID]; done {
		r.mu.Unlock()
		return
	}
	if _, busy := r.inflight[ev.ID]; busy {
		r.mu.Unlock()
		return
	}
	r.inflight[ev.ID] = struct{}{}
	r.mu.Unlock()

	go func() {
		thumbs, err := r.resolve(ctx, ev)
		if err != nil {
			util.LogWarnf("Thumbnail resolve failed for event %s: %v", ev.ID, err)
			thumbs = nil
		}

		r.mu.Lock()
		r.cache[ev.ID] = thumbs
		delete(r.inflight, ev.ID)
		r.mu.Unlock()

		if r.onUpdate != nil {
			r.onUpdate(ev.ID)
		}
	}()
}

// PrefetchAll resolves thumbnails for every event with bounded concurrency
// and blocks until all are done. Unlike Request, a media-list failure is
// fatal here: the export artifact must be complete before drawing starts.
func (r *Resolver) PrefetchAll(ctx context.Context, events []model.Event, concurrency int) error {
	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, ev := range events {
		g.Go(func() error {
			if _, done := r.Get(ev.ID); done {
				return nil
			}
			thumbs, err := r.resolve(gctx, ev)
			if err != nil {
				return fmt.Errorf("resolve thumbnails for event %s: %w", ev.ID, err)
			}
			r.mu.Lock()
			r.cache[ev.ID] = thumbs
			r.mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// resolve fetches up to MaxPerEvent thumbnails, ordered by media creation
// time ascending. A single unreachable item is skipped, not fatal.
func (r *Resolver) resolve(ctx context.Context, ev model.Event) ([]Thumbnail, error) {
	media, err := r.source.MediaFor(ctx, ev.ID)
	if err != nil {
		return nil, err
	}

	sorted := make([]model.MediaRef, len(media))
	copy(sorted, media)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	thumbs := make([]Thumbnail, 0, MaxPerEvent)
	for _, m := range sorted {
		if len(thumbs) == MaxPerEvent {
			break
		}
		url, err := r.source.RetrievalURL(ctx, m.Path)
		if err != nil {
			util.LogDebugf("Skip media %s for event %s: %v", m.Path, ev.ID, err)
			continue
		}
		thumbs = append(thumbs, Thumbnail{URL: url, Kind: m.Kind})
	}
	return thumbs, nil
}
