package dispatch

import (
	"github.com/google/uuid"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/event"
)

// SignalKind classifies processing signals.
type SignalKind string

const (
	SignalQueued       SignalKind = "queued"
	SignalProcessed    SignalKind = "processed"
	SignalFailed       SignalKind = "failed"
	SignalDeadLettered SignalKind = "dead_lettered"
)

// Signal is one observation of the processing pipeline, consumed by
// metrics collectors and tests over an explicit channel rather than a
// global listener registry.
type Signal struct {
	Kind     SignalKind
	EventID  uuid.UUID
	Event    event.Kind
	Priority event.Priority
	Err      error
}

// Monitor is a bounded signal channel with non-blocking emit: a slow or
// absent consumer drops signals instead of stalling the processing pass.
type Monitor struct {
	ch chan Signal
}

// NewMonitor creates a monitor with the given buffer size.
func NewMonitor(buffer int) *Monitor {
	if buffer <= 0 {
		buffer = 256
	}
	return &Monitor{ch: make(chan Signal, buffer)}
}

// Emit publishes a signal without blocking. Returns false if the buffer
// was full and the signal dropped.
func (m *Monitor) Emit(s Signal) bool {
	select {
	case m.ch <- s:
		return true
	default:
		return false
	}
}

// C returns the receive side of the signal channel.
func (m *Monitor) C() <-chan Signal {
	return m.ch
}
