package eventstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/event"
)

// Record is the durable mirror of an admitted event. It is written
// best-effort at admission with Processed=false and flipped to true once
// the event reaches a terminal state. The recovery sweep replays
// unprocessed records after a restart, which is what makes delivery
// at-least-once rather than at-most-once.
type Record struct {
	ID          uuid.UUID       `json:"id"`
	Kind        event.Kind      `json:"kind"`
	UserID      string          `json:"user_id"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Priority    event.Priority  `json:"priority"`
	CreatedAt   time.Time       `json:"created_at"`
	Processed   bool            `json:"processed"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
}

// FromEvent mirrors an event into a durable record.
func FromEvent(e event.Event) Record {
	return Record{
		ID:        e.ID,
		Kind:      e.Kind,
		UserID:    e.UserID,
		Payload:   e.Payload,
		Priority:  e.Priority,
		CreatedAt: e.CreatedAt,
	}
}

// Event reconstructs the in-memory event from the durable mirror.
// Retry bookkeeping starts fresh: a recovered event gets a full budget.
func (r Record) Event() event.Event {
	return event.Event{
		ID:        r.ID,
		Kind:      r.Kind,
		UserID:    r.UserID,
		Payload:   r.Payload,
		Priority:  r.Priority,
		CreatedAt: r.CreatedAt,
	}
}

// Store persists admitted events for crash recovery.
type Store interface {
	// Create writes the admission mirror. Implementations must treat a
	// duplicate id as a no-op so replays cannot fail admission.
	Create(ctx context.Context, rec Record) error

	// FindUnprocessed returns up to limit unprocessed records, oldest first.
	FindUnprocessed(ctx context.Context, limit int) ([]Record, error)

	// MarkProcessed flips the processed flag for a record.
	MarkProcessed(ctx context.Context, id uuid.UUID) error
}

// DeadLetter is the terminal record of an event that exhausted its retry
// budget. It requires manual intervention; nothing in this subsystem
// resurrects it.
type DeadLetter struct {
	EventID    uuid.UUID       `json:"event_id"`
	Kind       event.Kind      `json:"kind"`
	UserID     string          `json:"user_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Error      string          `json:"error"`
	RetryCount int8            `json:"retry_count"`
	FailedAt   time.Time       `json:"failed_at"`
}

// FromFailedEvent builds the dead-letter record for an exhausted event.
func FromFailedEvent(e event.Event, failure error) DeadLetter {
	msg := "unknown error"
	if failure != nil {
		msg = failure.Error()
	}
	return DeadLetter{
		EventID:    e.ID,
		Kind:       e.Kind,
		UserID:     e.UserID,
		Payload:    e.Payload,
		Error:      msg,
		RetryCount: e.RetryCount,
		FailedAt:   time.Now().UTC(),
	}
}

// DeadLetterStore persists permanently failed events.
type DeadLetterStore interface {
	Create(ctx context.Context, dl DeadLetter) error
	List(ctx context.Context, limit, offset int) ([]DeadLetter, error)
}
