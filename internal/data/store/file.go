package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/keepsake-labs/chronoline/internal/core/model"
	"github.com/keepsake-labs/chronoline/internal/util"
)

// Wire format of a timeline document. Event dates are date-only; media
// creation times carry full timestamps.
type timelineDoc struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Events      []eventDoc `json:"events"`
}

type eventDoc struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Date        string     `json:"date"`
	Description string     `json:"description,omitempty"`
	Media       []mediaDoc `json:"media,omitempty"`
}

type mediaDoc struct {
	Path      string `json:"path"`
	Kind      string `json:"kind"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// FileStore reads a timeline document from a JSON file and serves media
// lookups from it. The parsed document is cached until Invalidate.
type FileStore struct {
	path      string
	mediaRoot string

	mu     sync.Mutex
	cached *model.Timeline
}

// NewFileStore creates a store backed by a timeline JSON file. mediaRoot
// anchors relative media paths; it may be empty when all media is remote.
func NewFileStore(path, mediaRoot string) *FileStore {
	return &FileStore{path: path, mediaRoot: mediaRoot}
}

// Timeline loads and parses the timeline document. Events come back sorted
// by timestamp ascending; events without an id get one assigned.
func (s *FileStore) Timeline(ctx context.Context) (*model.Timeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		return s.cached, nil
	}

	start := time.Now()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("timeline file %s: %w", s.path, ErrNotFound)
		}
		return nil, fmt.Errorf("read timeline file %s: %w", s.path, err)
	}

	var doc timelineDoc
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse timeline file %s: %w", s.path, err)
	}

	tl, err := docToModel(&doc)
	if err != nil {
		return nil, fmt.Errorf("timeline file %s: %w", s.path, err)
	}

	util.LogDebugf("Loaded timeline %q: %d events in %v", tl.Title, len(tl.Events), time.Since(start))
	s.cached = tl
	return tl, nil
}

// Invalidate drops the cached document so the next Timeline call re-reads
// the file. The interactive surface calls this on watcher events.
func (s *FileStore) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// MediaFor returns the media records attached to an event
func (s *FileStore) MediaFor(ctx context.Context, eventID string) ([]model.MediaRef, error) {
	tl, err := s.Timeline(ctx)
	if err != nil {
		return nil, err
	}
	ev, ok := tl.EventByID(eventID)
	if !ok {
		return nil, fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}
	return ev.Media, nil
}

// RetrievalURL exchanges a storage path for a fetchable location. Remote
// URLs pass through; everything else is anchored at the media root.
func (s *FileStore) RetrievalURL(ctx context.Context, path string) (string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, nil
	}
	if s.mediaRoot == "" {
		return path, nil
	}
	return filepath.Join(s.mediaRoot, path), nil
}

func docToModel(doc *timelineDoc) (*model.Timeline, error) {
	tl := &model.Timeline{
		ID:          doc.ID,
		Title:       doc.Title,
		Description: doc.Description,
		Events:      make([]model.Event, 0, len(doc.Events)),
	}
	if tl.ID == "" {
		tl.ID = uuid.NewString()
	}

	for i, ed := range doc.Events {
		ts, err := parseEventDate(ed.Date)
		if err != nil {
			return nil, fmt.Errorf("event %d (%q): %w", i, ed.Title, err)
		}

		ev := model.Event{
			ID:          ed.ID,
			Title:       ed.Title,
			Timestamp:   ts,
			Description: ed.Description,
		}
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}

		for _, md := range ed.Media {
			kind, err := model.ParseMediaKind(md.Kind)
			if err != nil {
				util.LogWarnf("Event %q: skipping media %s: %v", ed.Title, md.Path, err)
				continue
			}
			createdAt := ts
			if md.CreatedAt != "" {
				if t, err := time.Parse(time.RFC3339, md.CreatedAt); err == nil {
					createdAt = t
				}
			}
			ev.Media = append(ev.Media, model.MediaRef{
				Path:      md.Path,
				Kind:      kind,
				CreatedAt: createdAt,
			})
		}

		tl.Events = append(tl.Events, ev)
	}

	model.SortEvents(tl.Events)
	return tl, nil
}

// parseEventDate accepts the date-only wire form, falling back to RFC3339
func parseEventDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid event date %q", s)
	}
	return t, nil
}
