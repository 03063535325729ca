package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/notify"
)

func stored(id, userID, kind string) notify.Notification {
	return notify.Notification{ID: id, UserID: userID, Kind: kind}
}

func TestMemoryStorageCreateAndGet(t *testing.T) {
	t.Parallel()

	s := notify.NewMemoryStorage()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, stored("n1", "u1", "new_match")))

	got, err := s.Get(ctx, "u1", "n1")
	require.NoError(t, err)
	assert.Equal(t, "new_match", got.Kind)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = s.Get(ctx, "u1", "missing")
	assert.ErrorIs(t, err, notify.ErrNotificationNotFound)

	assert.ErrorIs(t, s.Create(ctx, stored("", "u1", "x")), notify.ErrMissingID)
	assert.ErrorIs(t, s.Create(ctx, stored("n2", "", "x")), notify.ErrMissingUserID)
}

func TestMemoryStorageCreateIdempotentByID(t *testing.T) {
	t.Parallel()

	s := notify.NewMemoryStorage()
	ctx := context.Background()

	first := stored("n1", "u1", "new_match")
	first.Title = "original"
	require.NoError(t, s.Create(ctx, first))

	replay := stored("n1", "u1", "new_match")
	replay.Title = "replayed"
	require.NoError(t, s.Create(ctx, replay))

	got, err := s.Get(ctx, "u1", "n1")
	require.NoError(t, err)
	assert.Equal(t, "original", got.Title, "existing record wins over replay")

	list, err := s.List(ctx, "u1", notify.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMemoryStorageListFilters(t *testing.T) {
	t.Parallel()

	s := notify.NewMemoryStorage()
	ctx := context.Background()

	n1 := stored("n1", "u1", "new_match")
	n2 := stored("n2", "u1", "application_received")
	n3 := stored("n3", "u1", "new_match")
	require.NoError(t, s.Create(ctx, n1))
	require.NoError(t, s.Create(ctx, n2))
	require.NoError(t, s.Create(ctx, n3))
	require.NoError(t, s.MarkRead(ctx, "u1", "n1"))

	list, err := s.List(ctx, "u1", notify.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "n3", list[0].ID, "newest first")

	list, err = s.List(ctx, "u1", notify.ListOptions{OnlyUnread: true})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = s.List(ctx, "u1", notify.ListOptions{Kinds: []string{"new_match"}})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = s.List(ctx, "u1", notify.ListOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "n2", list[0].ID)
}

func TestMemoryStorageExpiredExcluded(t *testing.T) {
	t.Parallel()

	s := notify.NewMemoryStorage()
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	expired := stored("n1", "u1", "new_match")
	expired.ExpiresAt = &past
	require.NoError(t, s.Create(ctx, expired))
	require.NoError(t, s.Create(ctx, stored("n2", "u1", "new_match")))

	list, err := s.List(ctx, "u1", notify.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	count, err := s.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryStorageCountUnread(t *testing.T) {
	t.Parallel()

	s := notify.NewMemoryStorage()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, stored("n1", "u1", "a")))
	require.NoError(t, s.Create(ctx, stored("n2", "u1", "b")))
	require.NoError(t, s.MarkRead(ctx, "u1", "n1"))

	count, err := s.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
