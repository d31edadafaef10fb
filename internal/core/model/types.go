package model

import (
	"fmt"
	"sort"
	"time"
)

// MediaKind discriminates the two media variants a timeline event can carry.
type MediaKind int

const (
	MediaPhoto MediaKind = iota
	MediaVideo
)

// String returns the wire name of the media kind
func (k MediaKind) String() string {
	switch k {
	case MediaPhoto:
		return "photo"
	case MediaVideo:
		return "video"
	default:
		return "unknown"
	}
}

// ParseMediaKind parses a wire media kind string
func ParseMediaKind(s string) (MediaKind, error) {
	switch s {
	case "photo", "image":
		return MediaPhoto, nil
	case "video":
		return MediaVideo, nil
	default:
		return MediaPhoto, fmt.Errorf("unknown media kind %q", s)
	}
}

// MediaRef points at one stored media item attached to an event
type MediaRef struct {
	Path      string
	Kind      MediaKind
	CreatedAt time.Time
}

// Event is one dated entry on a timeline. Events are immutable for the
// duration of a render pass.
type Event struct {
	ID          string
	Title       string
	Timestamp   time.Time
	Description string
	Media       []MediaRef
}

// Timeline is the document both render surfaces consume
type Timeline struct {
	ID          string
	Title       string
	Description string
	Events      []Event
}

// SortEvents orders events by timestamp ascending, in place. The sort is
// stable so same-day events keep their stored order.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}

// EventByID returns the event with the given id, if present
func (t *Timeline) EventByID(id string) (Event, bool) {
	for _, ev := range t.Events {
		if ev.ID == id {
			return ev, true
		}
	}
	return Event{}, false
}
