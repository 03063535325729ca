// Package eventstore is the durability layer of the realtime processor.
// Admitted events are mirrored to a persistent store best-effort, swept
// back through the dispatcher after a restart, and recorded in a
// dead-letter store once their retry budget is exhausted. Postgres backs
// the production stores; in-memory implementations back tests; an
// optional decorator archives dead letters to S3.
package eventstore
