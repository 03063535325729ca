// Package dispatch contains the event dispatcher and the cooperative
// processing driver. The dispatcher routes each event by kind to exactly
// one handler over the collaborator interfaces (matching, embeddings,
// recommendations); the processor drives non-overlapping drain-and-dispatch
// passes on a fixed tick, applies the retry and dead-letter policy, and
// sweeps the durable mirror for events lost to a restart. Delivery is
// at-least-once: handlers dedup user-visible effects by event id.
package dispatch
