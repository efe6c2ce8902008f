// Package webhook notifies external systems when the rule table changes.
package webhook

import (
	"time"

	"github.com/google/uuid"

	"github.com/TimurManjosov/gotiers/internal/snapshot"
)

// EventTableReloaded is sent whenever a new rule table becomes current.
const EventTableReloaded = "table.reloaded"

// Event is the JSON body posted to every webhook target.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Table     Table     `json:"table"`
}

// Table identifies the rule table that triggered the event.
type Table struct {
	ETag    string `json:"etag"`
	Version string `json:"version,omitempty"`
	Rules   int    `json:"rules"`
}

// NewTableEvent builds a table.reloaded event from a snapshot update.
func NewTableEvent(ev snapshot.Event, now time.Time) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      EventTableReloaded,
		Timestamp: now.UTC(),
		Table: Table{
			ETag:    ev.ETag,
			Version: ev.Version,
			Rules:   ev.Rules,
		},
	}
}
