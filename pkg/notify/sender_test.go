package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/notify"
)

type fakePusher struct {
	mu     sync.Mutex
	online map[string]bool
	sent   map[string][][]byte
	err    error
}

func newFakePusher(onlineUsers ...string) *fakePusher {
	online := make(map[string]bool, len(onlineUsers))
	for _, u := range onlineUsers {
		online[u] = true
	}
	return &fakePusher{online: online, sent: make(map[string][][]byte)}
}

func (f *fakePusher) SendToUser(_ context.Context, userID string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent[userID] = append(f.sent[userID], payload)
	return nil
}

func (f *fakePusher) IsOnline(userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online[userID]
}

type failingStorage struct {
	notify.Storage
}

func (failingStorage) Create(context.Context, notify.Notification) error {
	return errors.New("db down")
}

type fakeOffline struct {
	mu        sync.Mutex
	delivered []notify.Notification
}

func (f *fakeOffline) Deliver(_ context.Context, n notify.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delivered = append(f.delivered, n)
	return nil
}

func TestSenderPersistsAndPushes(t *testing.T) {
	t.Parallel()

	storage := notify.NewMemoryStorage()
	pusher := newFakePusher("u1")
	sender, err := notify.NewSender(storage, pusher)
	require.NoError(t, err)

	id, err := sender.Send(context.Background(), notify.Input{
		UserID:  "u1",
		Kind:    "new_match",
		Title:   "New match",
		Message: "You have a new match",
		Payload: map[string]any{"matchScore": 0.92},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	stored, err := storage.Get(context.Background(), "u1", id)
	require.NoError(t, err)
	assert.Equal(t, "new_match", stored.Kind)
	assert.False(t, stored.Read)

	require.Len(t, pusher.sent["u1"], 1)
	var msg struct {
		Type         string              `json:"type"`
		Notification notify.Notification `json:"notification"`
	}
	require.NoError(t, json.Unmarshal(pusher.sent["u1"][0], &msg))
	assert.Equal(t, "notification", msg.Type)
	assert.Equal(t, id, msg.Notification.ID)
}

func TestSenderPersistenceFailureDoesNotBlockPush(t *testing.T) {
	t.Parallel()

	pusher := newFakePusher("u1")
	sender, err := notify.NewSender(failingStorage{}, pusher)
	require.NoError(t, err)

	id, err := sender.Send(context.Background(), notify.Input{
		UserID: "u1", Kind: "new_match", Title: "t", Message: "m",
	})
	require.NoError(t, err, "persistence failure must be invisible to callers")
	assert.NotEmpty(t, id)
	assert.Len(t, pusher.sent["u1"], 1)
}

func TestSenderOfflineUserKeepsPersistedRecordOnly(t *testing.T) {
	t.Parallel()

	storage := notify.NewMemoryStorage()
	pusher := newFakePusher() // nobody online
	sender, err := notify.NewSender(storage, pusher)
	require.NoError(t, err)

	id, err := sender.Send(context.Background(), notify.Input{
		UserID: "ghost", Kind: "new_match", Title: "t", Message: "m",
	})
	require.NoError(t, err)

	_, err = storage.Get(context.Background(), "ghost", id)
	require.NoError(t, err)
	assert.Empty(t, pusher.sent["ghost"])
}

func TestSenderDedupKeyMakesReplayIdempotent(t *testing.T) {
	t.Parallel()

	storage := notify.NewMemoryStorage()
	sender, err := notify.NewSender(storage, newFakePusher())
	require.NoError(t, err)

	in := notify.Input{
		UserID:   "u1",
		Kind:     "new_match",
		Title:    "t",
		Message:  "m",
		DedupKey: "evt-42:u1",
	}

	id1, err := sender.Send(context.Background(), in)
	require.NoError(t, err)
	id2, err := sender.Send(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, id1, id2, "same dedup key must yield the same notification id")

	list, err := storage.List(context.Background(), "u1", notify.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, list, 1, "replay must not create a second user-visible notification")
}

func TestSenderUrgentOfflineFallback(t *testing.T) {
	t.Parallel()

	storage := notify.NewMemoryStorage()
	offline := &fakeOffline{}
	sender, err := notify.NewSender(storage, newFakePusher(), notify.WithOfflineDeliverer(offline))
	require.NoError(t, err)

	_, err = sender.Send(context.Background(), notify.Input{
		UserID: "u1", Kind: "new_match", Title: "t", Message: "m", Urgent: true,
	})
	require.NoError(t, err)
	assert.Len(t, offline.delivered, 1)

	// Non-urgent offline notifications stay persisted-only.
	_, err = sender.Send(context.Background(), notify.Input{
		UserID: "u1", Kind: "new_match", Title: "t", Message: "m",
	})
	require.NoError(t, err)
	assert.Len(t, offline.delivered, 1)
}

func TestSenderTemplateDefaults(t *testing.T) {
	t.Parallel()

	catalog, err := notify.ParseCatalog([]byte(`
notifications:
  new_match:
    title: "New match found"
    message: "Matched with score {{.matchScore}}"
`))
	require.NoError(t, err)

	storage := notify.NewMemoryStorage()
	sender, err := notify.NewSender(storage, newFakePusher(), notify.WithTemplateCatalog(catalog))
	require.NoError(t, err)

	id, err := sender.Send(context.Background(), notify.Input{
		UserID:  "u1",
		Kind:    "new_match",
		Payload: map[string]any{"matchScore": 0.92},
	})
	require.NoError(t, err)

	stored, err := storage.Get(context.Background(), "u1", id)
	require.NoError(t, err)
	assert.Equal(t, "New match found", stored.Title)
	assert.Equal(t, "Matched with score 0.92", stored.Message)
}

func TestSenderValidation(t *testing.T) {
	t.Parallel()

	sender, err := notify.NewSender(notify.NewMemoryStorage(), newFakePusher())
	require.NoError(t, err)

	_, err = sender.Send(context.Background(), notify.Input{Kind: "x"})
	assert.ErrorIs(t, err, notify.ErrMissingUserID)

	_, err = sender.Send(context.Background(), notify.Input{UserID: "u1"})
	assert.ErrorIs(t, err, notify.ErrMissingKind)

	_, err = notify.NewSender(nil, newFakePusher())
	assert.ErrorIs(t, err, notify.ErrNilStorage)

	_, err = notify.NewSender(notify.NewMemoryStorage(), nil)
	assert.ErrorIs(t, err, notify.ErrNilPusher)
}
