package eventstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/event"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/eventstore"
)

func newRecord(t *testing.T, userID string) eventstore.Record {
	t.Helper()
	e, err := event.New(event.KindApplicationSubmitted, userID, nil, event.PriorityMedium)
	require.NoError(t, err)
	return eventstore.FromEvent(e)
}

func TestMemoryStoreCreateIsIdempotent(t *testing.T) {
	t.Parallel()

	s := eventstore.NewMemoryStore()
	ctx := context.Background()
	rec := newRecord(t, "u1")

	require.NoError(t, s.Create(ctx, rec))
	require.NoError(t, s.Create(ctx, rec))

	unprocessed, err := s.FindUnprocessed(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, unprocessed, 1)
}

func TestMemoryStoreFindUnprocessedOrderAndLimit(t *testing.T) {
	t.Parallel()

	s := eventstore.NewMemoryStore()
	ctx := context.Background()

	first := newRecord(t, "u1")
	second := newRecord(t, "u2")
	third := newRecord(t, "u3")
	require.NoError(t, s.Create(ctx, first))
	require.NoError(t, s.Create(ctx, second))
	require.NoError(t, s.Create(ctx, third))

	require.NoError(t, s.MarkProcessed(ctx, second.ID))

	unprocessed, err := s.FindUnprocessed(ctx, 1)
	require.NoError(t, err)
	require.Len(t, unprocessed, 1)
	assert.Equal(t, first.ID, unprocessed[0].ID, "oldest first")

	unprocessed, err = s.FindUnprocessed(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, unprocessed, 2)
}

func TestMemoryStoreMarkProcessed(t *testing.T) {
	t.Parallel()

	s := eventstore.NewMemoryStore()
	ctx := context.Background()
	rec := newRecord(t, "u1")
	require.NoError(t, s.Create(ctx, rec))

	require.NoError(t, s.MarkProcessed(ctx, rec.ID))

	got, ok := s.Get(rec.ID)
	require.True(t, ok)
	assert.True(t, got.Processed)
	assert.NotNil(t, got.ProcessedAt)

	err := s.MarkProcessed(ctx, newRecord(t, "ghost").ID)
	assert.ErrorIs(t, err, eventstore.ErrRecordNotFound)
}

func TestRecordEventRoundTrip(t *testing.T) {
	t.Parallel()

	e, err := event.New(event.KindMatchCreated, "u1", event.MatchCreatedPayload{
		MatchID:     "M1",
		CandidateID: "C1",
		EmployerID:  "E1",
		MatchScore:  0.92,
	}, event.PriorityHigh)
	require.NoError(t, err)
	e.RetryCount = 2

	rec := eventstore.FromEvent(e)
	back := rec.Event()

	assert.Equal(t, e.ID, back.ID)
	assert.Equal(t, e.Kind, back.Kind)
	assert.Equal(t, e.Priority, back.Priority)
	assert.Equal(t, int8(0), back.RetryCount, "recovered events start with a fresh retry budget")
}

func TestMemoryDeadLetterStore(t *testing.T) {
	t.Parallel()

	s := eventstore.NewMemoryDeadLetterStore()
	ctx := context.Background()

	e, err := event.New(event.KindFeedbackReceived, "u1", nil, event.PriorityLow)
	require.NoError(t, err)
	e.RetryCount = 3

	dl := eventstore.FromFailedEvent(e, errors.New("handler exploded"))
	require.NoError(t, s.Create(ctx, dl))

	letters, err := s.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, e.ID, letters[0].EventID)
	assert.Equal(t, "handler exploded", letters[0].Error)
	assert.Equal(t, int8(3), letters[0].RetryCount)

	letters, err = s.List(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, letters)
}
