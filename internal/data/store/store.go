// Package store loads timeline documents and resolves media references.
// The engine treats both as external collaborators: the event store is
// authoritative and its failures are fatal, single-media failures are not.
package store

import (
	"context"
	"errors"

	"github.com/keepsake-labs/chronoline/internal/core/model"
)

// ErrNotFound is returned when a timeline or event does not exist
var ErrNotFound = errors.New("not found")

// EventStore returns the authoritative event list for a timeline
type EventStore interface {
	Timeline(ctx context.Context) (*model.Timeline, error)
}

// MediaStore resolves media attached to events. It matches the thumbnail
// resolver's Source contract.
type MediaStore interface {
	MediaFor(ctx context.Context, eventID string) ([]model.MediaRef, error)
	RetrievalURL(ctx context.Context, path string) (string, error)
}
