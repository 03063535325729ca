package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/dispatch"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/event"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/metrics"
)

func scrape(t *testing.T, c *metrics.Collector) string {
	t.Helper()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestObserveSignals(t *testing.T) {
	t.Parallel()

	c := metrics.NewCollector()

	c.Observe(dispatch.Signal{Kind: dispatch.SignalQueued, Priority: event.PriorityHigh})
	c.Observe(dispatch.Signal{Kind: dispatch.SignalQueued, Priority: event.PriorityHigh})
	c.Observe(dispatch.Signal{Kind: dispatch.SignalProcessed, Event: event.KindJobPosted})
	c.Observe(dispatch.Signal{Kind: dispatch.SignalFailed, Event: event.KindJobPosted})
	c.Observe(dispatch.Signal{Kind: dispatch.SignalDeadLettered, Event: event.KindProfileUpdate})

	body := scrape(t, c)
	assert.Contains(t, body, `realtime_events_queued_total{priority="high"} 2`)
	assert.Contains(t, body, `realtime_events_processed_total{kind="job_posted"} 1`)
	assert.Contains(t, body, `realtime_events_failed_total{kind="job_posted"} 1`)
	assert.Contains(t, body, `realtime_events_dead_lettered_total{kind="profile_update"} 1`)
}

func TestSnapshotGauges(t *testing.T) {
	t.Parallel()

	c := metrics.NewCollector()
	c.Snapshot(dispatch.Stats{
		QueueSizes: map[event.Priority]int{
			event.PriorityCritical: 3,
			event.PriorityLow:      1,
		},
		ActiveConnections: 12,
		IsProcessing:      true,
	})

	body := scrape(t, c)
	assert.Contains(t, body, `realtime_queue_depth{priority="critical"} 3`)
	assert.Contains(t, body, `realtime_queue_depth{priority="low"} 1`)
	assert.Contains(t, body, `realtime_queue_depth{priority="medium"} 0`)
	assert.Contains(t, body, `realtime_active_connections 12`)
	assert.Contains(t, body, `realtime_pass_running 1`)
}
