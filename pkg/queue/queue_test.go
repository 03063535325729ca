package queue_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/event"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/queue"
)

func newEvent(t *testing.T, userID string, p event.Priority) event.Event {
	t.Helper()
	e, err := event.New(event.KindProfileUpdate, userID, nil, p)
	require.NoError(t, err)
	return e
}

func TestEnqueueAndDrainPriorityOrder(t *testing.T) {
	t.Parallel()

	q := queue.New()

	low := newEvent(t, "u1", event.PriorityLow)
	critical := newEvent(t, "u2", event.PriorityCritical)
	medium := newEvent(t, "u3", event.PriorityMedium)
	high := newEvent(t, "u4", event.PriorityHigh)

	// Admission order deliberately scrambled.
	require.NoError(t, q.Enqueue(low))
	require.NoError(t, q.Enqueue(critical))
	require.NoError(t, q.Enqueue(medium))
	require.NoError(t, q.Enqueue(high))

	batch := q.DrainBatch(10)
	require.Len(t, batch, 4)
	assert.Equal(t, critical.ID, batch[0].ID)
	assert.Equal(t, high.ID, batch[1].ID)
	assert.Equal(t, medium.ID, batch[2].ID)
	assert.Equal(t, low.ID, batch[3].ID)
	assert.Equal(t, 0, q.Len())
}

func TestFIFOWithinClass(t *testing.T) {
	t.Parallel()

	q := queue.New()

	var ids []string
	for i := range 5 {
		e := newEvent(t, fmt.Sprintf("user-%d", i), event.PriorityHigh)
		require.NoError(t, q.Enqueue(e))
		ids = append(ids, e.ID.String())
	}

	batch := q.DrainBatch(5)
	require.Len(t, batch, 5)
	for i, e := range batch {
		assert.Equal(t, ids[i], e.ID.String())
	}
}

func TestBatchCapPerClass(t *testing.T) {
	t.Parallel()

	q := queue.New()

	for range 10 {
		require.NoError(t, q.Enqueue(newEvent(t, "crit", event.PriorityCritical)))
	}
	low := newEvent(t, "low", event.PriorityLow)
	require.NoError(t, q.Enqueue(low))

	// First pass drains batchSize critical events plus the low one: the cap
	// guarantees the low event is not starved behind the critical backlog.
	batch := q.DrainBatch(3)
	require.Len(t, batch, 4)
	for _, e := range batch[:3] {
		assert.Equal(t, event.PriorityCritical, e.Priority)
	}
	assert.Equal(t, low.ID, batch[3].ID)
}

func TestNoStarvationUnderCriticalStream(t *testing.T) {
	t.Parallel()

	q := queue.New()
	low := newEvent(t, "low", event.PriorityLow)
	require.NoError(t, q.Enqueue(low))

	const batchSize = 2
	seen := false
	for tick := 0; tick < 5 && !seen; tick++ {
		// Continuous critical refill between ticks.
		for range 4 {
			require.NoError(t, q.Enqueue(newEvent(t, "crit", event.PriorityCritical)))
		}
		for _, e := range q.DrainBatch(batchSize) {
			if e.ID == low.ID {
				seen = true
			}
		}
	}
	assert.True(t, seen, "low-priority event must be serviced within a bounded number of ticks")
}

func TestRequeueFrontRunsBeforeFreshWork(t *testing.T) {
	t.Parallel()

	q := queue.New()

	first := newEvent(t, "u1", event.PriorityMedium)
	second := newEvent(t, "u2", event.PriorityMedium)
	require.NoError(t, q.Enqueue(first))
	require.NoError(t, q.Enqueue(second))

	batch := q.DrainBatch(1)
	require.Len(t, batch, 1)
	require.Equal(t, first.ID, batch[0].ID)

	retried := batch[0]
	retried.RetryCount++
	require.NoError(t, q.RequeueFront(retried))

	batch = q.DrainBatch(1)
	require.Len(t, batch, 1)
	assert.Equal(t, first.ID, batch[0].ID, "retried event must be serviced ahead of equal-priority fresh work")
	assert.Equal(t, int8(1), batch[0].RetryCount)
}

func TestGeneralQueueWhenPriorityDisabled(t *testing.T) {
	t.Parallel()

	q := queue.New(queue.WithoutPriorityScheduling())

	low := newEvent(t, "u1", event.PriorityLow)
	critical := newEvent(t, "u2", event.PriorityCritical)
	require.NoError(t, q.Enqueue(low))
	require.NoError(t, q.Enqueue(critical))

	// Pure admission order, no reordering by class.
	batch := q.DrainBatch(1)
	require.Len(t, batch, 2, "general queue drains up to 4x batchSize per pass")
	assert.Equal(t, low.ID, batch[0].ID)
	assert.Equal(t, critical.ID, batch[1].ID)
}

func TestEnqueueRejectsInvalidPriority(t *testing.T) {
	t.Parallel()

	q := queue.New()
	e := event.Event{Priority: "urgent"}
	assert.ErrorIs(t, q.Enqueue(e), queue.ErrInvalidPriority)
	assert.ErrorIs(t, q.RequeueFront(e), queue.ErrInvalidPriority)
}

func TestSizes(t *testing.T) {
	t.Parallel()

	q := queue.New()
	require.NoError(t, q.Enqueue(newEvent(t, "u1", event.PriorityCritical)))
	require.NoError(t, q.Enqueue(newEvent(t, "u2", event.PriorityCritical)))
	require.NoError(t, q.Enqueue(newEvent(t, "u3", event.PriorityLow)))

	sizes := q.Sizes()
	assert.Equal(t, 2, sizes[event.PriorityCritical])
	assert.Equal(t, 0, sizes[event.PriorityHigh])
	assert.Equal(t, 0, sizes[event.PriorityMedium])
	assert.Equal(t, 1, sizes[event.PriorityLow])
	assert.Equal(t, 3, q.Len())
}
