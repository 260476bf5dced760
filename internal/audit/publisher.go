// Package audit captures structured, append-only events for the registration
// flow. Sinks are pluggable behind the Store interface so tests can record
// in memory while production ships to Kafka.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is an append-only sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher stamps and forwards audit events to its sink.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

// Emit fills in the event identity and timestamp if unset and appends it.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return p.store.Append(ctx, event)
}
