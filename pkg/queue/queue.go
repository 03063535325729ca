package queue

import (
	"sync"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/event"
)

// PriorityQueue holds admitted events awaiting processing in four strict
// priority FIFO queues plus a general catch-all used when priority
// scheduling is disabled. All methods are safe for concurrent use.
type PriorityQueue struct {
	mu       sync.Mutex
	byClass  map[event.Priority][]event.Event
	general  []event.Event
	priority bool
}

// Option configures a PriorityQueue.
type Option func(*PriorityQueue)

// WithoutPriorityScheduling routes every event through the general queue,
// preserving pure admission order across all priority classes.
func WithoutPriorityScheduling() Option {
	return func(q *PriorityQueue) { q.priority = false }
}

// New creates an empty queue set with priority scheduling enabled.
func New(opts ...Option) *PriorityQueue {
	q := &PriorityQueue{
		byClass: map[event.Priority][]event.Event{
			event.PriorityCritical: nil,
			event.PriorityHigh:     nil,
			event.PriorityMedium:   nil,
			event.PriorityLow:      nil,
		},
		priority: true,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue appends the event to the tail of its priority class queue,
// or to the general queue when priority scheduling is disabled.
func (q *PriorityQueue) Enqueue(e event.Event) error {
	if !e.Priority.Valid() {
		return ErrInvalidPriority
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.priority {
		q.general = append(q.general, e)
		return nil
	}
	q.byClass[e.Priority] = append(q.byClass[e.Priority], e)
	return nil
}

// RequeueFront pushes the event back to the HEAD of its original queue so
// retried events are serviced before fresh work of equal priority.
func (q *PriorityQueue) RequeueFront(e event.Event) error {
	if !e.Priority.Valid() {
		return ErrInvalidPriority
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.priority {
		q.general = append([]event.Event{e}, q.general...)
		return nil
	}
	q.byClass[e.Priority] = append([]event.Event{e}, q.byClass[e.Priority]...)
	return nil
}

// DrainBatch pops up to batchSize events from each priority class in strict
// order: critical, then high, then medium, then low. The per-class cap keeps
// a continuously refilling critical stream from starving lower classes.
// With priority scheduling disabled it pops up to 4x batchSize from the
// general queue, matching the total per-pass throughput.
func (q *PriorityQueue) DrainBatch(batchSize int) []event.Event {
	if batchSize <= 0 {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.priority {
		return q.popLocked(&q.general, batchSize*len(event.Priorities()))
	}

	var batch []event.Event
	for _, p := range event.Priorities() {
		class := q.byClass[p]
		popped := q.popLocked(&class, batchSize)
		q.byClass[p] = class
		batch = append(batch, popped...)
	}
	return batch
}

func (q *PriorityQueue) popLocked(items *[]event.Event, n int) []event.Event {
	if n > len(*items) {
		n = len(*items)
	}
	if n == 0 {
		return nil
	}
	popped := make([]event.Event, n)
	copy(popped, (*items)[:n])
	*items = (*items)[n:]
	return popped
}

// Sizes returns the current depth of each priority class queue.
// With priority scheduling disabled the general depth is reported under
// the default priority.
func (q *PriorityQueue) Sizes() map[event.Priority]int {
	q.mu.Lock()
	defer q.mu.Unlock()

	sizes := make(map[event.Priority]int, len(event.Priorities()))
	for _, p := range event.Priorities() {
		sizes[p] = len(q.byClass[p])
	}
	if !q.priority {
		sizes[event.PriorityDefault] = len(q.general)
	}
	return sizes
}

// Len returns the total number of queued events across all queues.
func (q *PriorityQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	total := len(q.general)
	for _, items := range q.byClass {
		total += len(items)
	}
	return total
}
