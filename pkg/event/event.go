package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the domain occurrence an event carries.
// The set is closed; dispatching code switches exhaustively over it.
type Kind string

const (
	KindProfileUpdate        Kind = "profile_update"
	KindJobPosted            Kind = "job_posted"
	KindApplicationSubmitted Kind = "application_submitted"
	KindMatchCreated         Kind = "match_created"
	KindFeedbackReceived     Kind = "feedback_received"
)

// Kinds returns all known event kinds.
func Kinds() []Kind {
	return []Kind{
		KindProfileUpdate,
		KindJobPosted,
		KindApplicationSubmitted,
		KindMatchCreated,
		KindFeedbackReceived,
	}
}

// Valid reports whether the kind belongs to the closed set.
func (k Kind) Valid() bool {
	switch k {
	case KindProfileUpdate, KindJobPosted, KindApplicationSubmitted, KindMatchCreated, KindFeedbackReceived:
		return true
	}
	return false
}

// ParseKind validates a raw string as an event kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Priority determines service order during a drain-and-dispatch pass.
// It carries no urgency semantics beyond ordering.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"

	PriorityDefault = PriorityMedium
)

// Priorities returns the priority classes in strict service order,
// highest first.
func Priorities() []Priority {
	return []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
}

// Valid reports whether the priority is one of the four known classes.
func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank returns the numeric service rank of the priority, 0 being the
// highest. Unknown priorities rank below all known classes.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// ParsePriority validates a raw string as a priority class.
// An empty string maps to the default priority.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityDefault, nil
	}
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return p, nil
}

// Event is a discrete domain occurrence queued for asynchronous handling.
// Between admission and terminal state it lives in exactly one place:
// an in-memory queue, the in-flight batch, or a terminal store.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Kind       Kind            `json:"kind"`
	UserID     string          `json:"user_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Priority   Priority        `json:"priority"`
	RetryCount int8            `json:"retry_count"`
	MaxRetries int8            `json:"max_retries"`
	LastError  *string         `json:"last_error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// New builds an event from a payload value, assigning a fresh ID and
// creation timestamp. The payload is JSON encoded; nil is allowed.
func New(kind Kind, userID string, payload any, priority Priority) (Event, error) {
	if !kind.Valid() {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if userID == "" {
		return Event{}, ErrEmptyUserID
	}
	if priority == "" {
		priority = PriorityDefault
	}
	if !priority.Valid() {
		return Event{}, fmt.Errorf("%w: %q", ErrInvalidPriority, priority)
	}

	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Event{}, fmt.Errorf("%w: %v", ErrPayloadMarshal, err)
		}
		raw = data
	}

	return Event{
		ID:        uuid.New(),
		Kind:      kind,
		UserID:    userID,
		Payload:   raw,
		Priority:  priority,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// RetriesExhausted reports whether the event has used up its retry budget.
func (e Event) RetriesExhausted() bool {
	return e.RetryCount >= e.MaxRetries
}
