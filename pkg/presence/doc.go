// Package presence tracks user online state in Redis. The connection
// registry flips keys on the first connection up and the last connection
// down; TTLs bound staleness when a process dies without cleanup.
package presence
