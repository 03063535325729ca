// Package metrics exposes the processing pipeline to Prometheus: counters
// fed by the dispatch signal channel and gauges polled from the processor
// stats snapshot.
package metrics
