// Package event defines the domain events flowing through the realtime
// processing pipeline: the closed set of event kinds, the four priority
// classes that drive batch-fair scheduling, and the typed payloads
// handlers unmarshal.
package event
