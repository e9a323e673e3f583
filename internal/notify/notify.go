// Package notify publishes fleet events to external subscribers.
package notify

import (
	"context"
	"time"

	"github.com/ukydev/fleet-equipment/internal/models"
)

// EventRecordCreated is the event type published after an intake.
const EventRecordCreated = "record_created"

// Event is the JSON payload published for a fleet change.
type Event struct {
	Type      string             `json:"type"`
	Record    models.FleetRecord `json:"record"`
	Alert     bool               `json:"alert"`
	CreatedBy string             `json:"created_by"`
	Timestamp time.Time          `json:"timestamp"`
}

// Notifier delivers fleet events.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close()                               {}
