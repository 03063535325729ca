package presence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tracker mirrors register/deregister transitions to Redis TTL keys so the
// wider platform can render online badges without talking to this process.
// The TTL bounds staleness: if the process dies without cleanup, keys
// expire on their own.
type Tracker struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewTracker creates a Redis-backed presence tracker.
func NewTracker(client *redis.Client, cfg Config) (*Tracker, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "presence:"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 60 * time.Second
	}
	return &Tracker{client: client, keyPrefix: cfg.KeyPrefix, ttl: cfg.TTL}, nil
}

func (t *Tracker) key(userID string) string {
	return t.keyPrefix + userID
}

// Online records the user as online with the last-seen timestamp.
func (t *Tracker) Online(ctx context.Context, userID string) error {
	ts := time.Now().UTC().Format(time.RFC3339)
	if err := t.client.Set(ctx, t.key(userID), ts, t.ttl).Err(); err != nil {
		return fmt.Errorf("set presence key: %w", err)
	}
	return nil
}

// Offline removes the user's presence key.
func (t *Tracker) Offline(ctx context.Context, userID string) error {
	if err := t.client.Del(ctx, t.key(userID)).Err(); err != nil {
		return fmt.Errorf("delete presence key: %w", err)
	}
	return nil
}

// Refresh re-arms the TTL for a user known to still be connected. Call it
// periodically for long-lived connections so the key outlives the TTL.
func (t *Tracker) Refresh(ctx context.Context, userID string) error {
	ok, err := t.client.Expire(ctx, t.key(userID), t.ttl).Result()
	if err != nil {
		return fmt.Errorf("refresh presence key: %w", err)
	}
	if !ok {
		// Key expired between connection checks; re-create it.
		return t.Online(ctx, userID)
	}
	return nil
}

// IsOnline reports whether a presence key exists for the user.
func (t *Tracker) IsOnline(ctx context.Context, userID string) (bool, error) {
	n, err := t.client.Exists(ctx, t.key(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("check presence key: %w", err)
	}
	return n > 0, nil
}

// LastSeen returns the stored last-seen timestamp, or zero time when the
// user is offline.
func (t *Tracker) LastSeen(ctx context.Context, userID string) (time.Time, error) {
	raw, err := t.client.Get(ctx, t.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get presence key: %w", err)
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse presence timestamp: %w", err)
	}
	return ts, nil
}
