// Package queue implements the batch-fair priority queues backing the
// realtime event processor. Four strict-priority FIFO queues (critical >
// high > medium > low) are drained with a per-class batch cap each pass,
// so higher classes are always serviced first without indefinitely
// starving lower ones. Retried events re-enter at the head of their
// original queue.
package queue
