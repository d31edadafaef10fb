package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepsake-labs/chronoline/internal/core/model"
)

// fakeSource is an in-memory media store with call counting
type fakeSource struct {
	mu       sync.Mutex
	media    map[string][]model.MediaRef
	failFor  map[string]bool
	calls    int32
	urlDelay time.Duration
}

func (f *fakeSource) MediaFor(ctx context.Context, eventID string) ([]model.MediaRef, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.urlDelay > 0 {
		time.Sleep(f.urlDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[eventID] {
		return nil, errors.New("media store unavailable")
	}
	return f.media[eventID], nil
}

func (f *fakeSource) RetrievalURL(ctx context.Context, path string) (string, error) {
	if path == "broken" {
		return "", errors.New("no such object")
	}
	return "https://media.example.com/" + path, nil
}

func mediaRef(path string, kind model.MediaKind, age time.Duration) model.MediaRef {
	return model.MediaRef{Path: path, Kind: kind, CreatedAt: time.Now().Add(-age)}
}

func waitForCache(t *testing.T, r *Resolver, eventID string) []Thumbnail {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if thumbs, ok := r.Get(eventID); ok {
			return thumbs
		}
		select {
		case <-deadline:
			t.Fatalf("thumbnails for %s never resolved", eventID)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestResolveOrdersAndCaps(t *testing.T) {
	src := &fakeSource{media: map[string][]model.MediaRef{
		"ev1": {
			mediaRef("c.jpg", model.MediaPhoto, 1*time.Hour),
			mediaRef("a.jpg", model.MediaPhoto, 5*time.Hour),
			mediaRef("e.mp4", model.MediaVideo, 30*time.Minute),
			mediaRef("b.jpg", model.MediaPhoto, 3*time.Hour),
			mediaRef("d.jpg", model.MediaPhoto, 45*time.Minute),
			mediaRef("f.jpg", model.MediaPhoto, 10*time.Minute),
		},
	}}
	r := NewResolver(src, nil)

	r.Request(context.Background(), model.Event{ID: "ev1"})
	thumbs := waitForCache(t, r, "ev1")

	require.Len(t, thumbs, MaxPerEvent)
	// oldest creation time first
	assert.Equal(t, "https://media.example.com/a.jpg", thumbs[0].URL)
	assert.Equal(t, "https://media.example.com/b.jpg", thumbs[1].URL)
	assert.Equal(t, "https://media.example.com/c.jpg", thumbs[2].URL)
	assert.Equal(t, "https://media.example.com/d.jpg", thumbs[3].URL)
}

func TestRequestDeduplicates(t *testing.T) {
	src := &fakeSource{
		media:    map[string][]model.MediaRef{"ev1": {mediaRef("a.jpg", model.MediaPhoto, time.Hour)}},
		urlDelay: 20 * time.Millisecond,
	}
	r := NewResolver(src, nil)

	ev := model.Event{ID: "ev1"}
	for i := 0; i < 10; i++ {
		r.Request(context.Background(), ev)
	}
	waitForCache(t, r, "ev1")

	// rerequesting after resolution must not refetch either
	r.Request(context.Background(), ev)
	time.Sleep(20 * time.Millisecond)

	assert.EqualValues(t, 1, atomic.LoadInt32(&src.calls))
}

func TestRequestDegradesOnMediaFailure(t *testing.T) {
	src := &fakeSource{failFor: map[string]bool{"ev1": true}}
	r := NewResolver(src, nil)

	r.Request(context.Background(), model.Event{ID: "ev1"})
	thumbs := waitForCache(t, r, "ev1")
	assert.Empty(t, thumbs)
}

func TestResolveSkipsBrokenItems(t *testing.T) {
	src := &fakeSource{media: map[string][]model.MediaRef{
		"ev1": {
			mediaRef("broken", model.MediaPhoto, 2*time.Hour),
			mediaRef("ok.jpg", model.MediaPhoto, 1*time.Hour),
		},
	}}
	r := NewResolver(src, nil)

	r.Request(context.Background(), model.Event{ID: "ev1"})
	thumbs := waitForCache(t, r, "ev1")

	require.Len(t, thumbs, 1)
	assert.Equal(t, "https://media.example.com/ok.jpg", thumbs[0].URL)
}

func TestOnUpdateFires(t *testing.T) {
	src := &fakeSource{media: map[string][]model.MediaRef{"ev1": {mediaRef("a.jpg", model.MediaPhoto, time.Hour)}}}

	updated := make(chan string, 1)
	r := NewResolver(src, func(id string) { updated <- id })

	r.Request(context.Background(), model.Event{ID: "ev1"})
	select {
	case id := <-updated:
		assert.Equal(t, "ev1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("onUpdate never fired")
	}
}

func TestPrefetchAll(t *testing.T) {
	media := make(map[string][]model.MediaRef)
	var events []model.Event
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("ev%d", i)
		media[id] = []model.MediaRef{mediaRef(id+".jpg", model.MediaPhoto, time.Hour)}
		events = append(events, model.Event{ID: id})
	}
	src := &fakeSource{media: media}
	r := NewResolver(src, nil)

	require.NoError(t, r.PrefetchAll(context.Background(), events, 4))
	for _, ev := range events {
		thumbs, ok := r.Get(ev.ID)
		require.True(t, ok, "event %s not resolved", ev.ID)
		assert.Len(t, thumbs, 1)
	}
}

func TestPrefetchAllFailsOnMediaError(t *testing.T) {
	src := &fakeSource{
		media:   map[string][]model.MediaRef{"ok": {mediaRef("a.jpg", model.MediaPhoto, time.Hour)}},
		failFor: map[string]bool{"bad": true},
	}
	r := NewResolver(src, nil)

	err := r.PrefetchAll(context.Background(), []model.Event{{ID: "ok"}, {ID: "bad"}}, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}
