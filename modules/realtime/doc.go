// Package realtime composes the event and notification pipeline into one
// deployable module: priority queues, the dispatcher over the platform's
// collaborator services, the cooperative tick-driven processor, the
// websocket connection registry and the notification sender, fronted by a
// chi router (event ingestion, stats, websocket endpoint, notification
// pull API) and an optional NATS ingest bridge.
package realtime
