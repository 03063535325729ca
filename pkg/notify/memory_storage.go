package notify

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStorage is an in-memory Storage implementation for development
// and tests.
type MemoryStorage struct {
	mu    sync.RWMutex
	byUsr map[string][]Notification // userID -> notifications, insertion order
}

// NewMemoryStorage creates an empty in-memory notification storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{byUsr: make(map[string][]Notification)}
}

func (s *MemoryStorage) Create(_ context.Context, n Notification) error {
	if n.ID == "" {
		return ErrMissingID
	}
	if n.UserID == "" {
		return ErrMissingUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Idempotent create: an existing ID wins, replays are dropped.
	for _, existing := range s.byUsr[n.UserID] {
		if existing.ID == n.ID {
			return nil
		}
	}

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	s.byUsr[n.UserID] = append(s.byUsr[n.UserID], n)
	return nil
}

func (s *MemoryStorage) Get(_ context.Context, userID, id string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.byUsr[userID] {
		if n.ID == id {
			out := n
			return &out, nil
		}
	}
	return nil, ErrNotificationNotFound
}

func (s *MemoryStorage) List(_ context.Context, userID string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []Notification
	for _, n := range s.byUsr[userID] {
		if n.IsExpired() {
			continue
		}
		if opts.OnlyUnread && n.Read {
			continue
		}
		if len(opts.Kinds) > 0 && !slices.Contains(opts.Kinds, n.Kind) {
			continue
		}
		if opts.Since != nil && !n.CreatedAt.After(*opts.Since) {
			continue
		}
		filtered = append(filtered, n)
	}

	// Newest first.
	slices.Reverse(filtered)

	if opts.Offset >= len(filtered) {
		return []Notification{}, nil
	}
	filtered = filtered[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(filtered) {
		filtered = filtered[:opts.Limit]
	}
	return filtered, nil
}

func (s *MemoryStorage) MarkRead(_ context.Context, userID string, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.byUsr[userID]
	for i := range list {
		if slices.Contains(ids, list[i].ID) {
			list[i].Read = true
		}
	}
	return nil
}

func (s *MemoryStorage) CountUnread(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.byUsr[userID] {
		if !n.Read && !n.IsExpired() {
			count++
		}
	}
	return count, nil
}
