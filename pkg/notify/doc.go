// Package notify persists notifications and pushes them to live client
// connections. Persistence is unconditional and creation is idempotent
// by notification ID; the push is best effort and never retried here —
// offline users retrieve notifications through the pull API backed by
// the same storage. Urgent notifications can fall back to transactional
// email when the user has no live connection.
package notify
