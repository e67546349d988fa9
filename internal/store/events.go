package store

import "time"

// Change event types.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// Event tells subscribers that a record changed so they can re-fetch.
type Event struct {
	Type string    `json:"event"`
	Kind string    `json:"kind"`
	ID   string    `json:"id"`
	At   time.Time `json:"at"`
}

// Notifier fans change events out to subscribers. Publish must not block on slow readers.
type Notifier interface {
	Publish(Event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(Event) {}

// NopNotifier discards events.
var NopNotifier Notifier = nopNotifier{}
