package source

import (
	"context"

	"analytica-hq/meridian/pkg/rules"
)

// EventType identifies a catalogue change event.
type EventType string

const (
	EventCreated  EventType = "created"
	EventModified EventType = "modified"
	EventDeleted  EventType = "deleted"
)

// Event is a catalogue change notification.
type Event struct {
	// Type is the kind of change observed.
	Type EventType

	// Path is the file that changed, when the source is file-backed.
	Path string

	// Err carries a watcher error, if any.
	Err error
}

// Source provides rule catalogues to the engine.
type Source interface {
	// Load loads and validates the catalogue.
	Load(ctx context.Context) (*rules.RuleSet, error)

	// Watch watches for catalogue changes and sends events on the
	// returned channel. The channel is closed when ctx is cancelled.
	Watch(ctx context.Context) (<-chan Event, error)
}
