package eventstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store implementation. Suitable for
// development and tests; it obviously provides no durability across
// process restarts.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
	order   []uuid.UUID
}

// NewMemoryStore creates an empty in-memory event store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[uuid.UUID]*Record)}
}

func (s *MemoryStore) Create(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		return nil // duplicate admission is a no-op
	}
	r := rec
	s.records[rec.ID] = &r
	s.order = append(s.order, rec.ID)
	return nil
}

func (s *MemoryStore) FindUnprocessed(_ context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, id := range s.order {
		if limit > 0 && len(out) >= limit {
			break
		}
		if r := s.records[id]; !r.Processed {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *MemoryStore) MarkProcessed(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return ErrRecordNotFound
	}
	now := time.Now().UTC()
	r.Processed = true
	r.ProcessedAt = &now
	return nil
}

// Get returns a copy of the record, primarily for tests.
func (s *MemoryStore) Get(id uuid.UUID) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// MemoryDeadLetterStore is an in-memory DeadLetterStore implementation.
type MemoryDeadLetterStore struct {
	mu      sync.RWMutex
	letters []DeadLetter
}

// NewMemoryDeadLetterStore creates an empty in-memory dead-letter store.
func NewMemoryDeadLetterStore() *MemoryDeadLetterStore {
	return &MemoryDeadLetterStore{}
}

func (s *MemoryDeadLetterStore) Create(_ context.Context, dl DeadLetter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.letters = append(s.letters, dl)
	return nil
}

func (s *MemoryDeadLetterStore) List(_ context.Context, limit, offset int) ([]DeadLetter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if offset >= len(s.letters) {
		return nil, nil
	}
	end := len(s.letters)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]DeadLetter, end-offset)
	copy(out, s.letters[offset:end])
	return out, nil
}
