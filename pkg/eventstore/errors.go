package eventstore

import "errors"

var (
	// ErrNilPool is returned when a Postgres store is created without a pool.
	ErrNilPool = errors.New("connection pool cannot be nil")

	// ErrNilStore is returned when a decorator wraps a nil store.
	ErrNilStore = errors.New("inner store cannot be nil")

	// ErrRecordNotFound is returned when marking an unknown record processed.
	ErrRecordNotFound = errors.New("event record not found")

	// ErrPersistFailed wraps write failures against the durable store.
	ErrPersistFailed = errors.New("failed to persist event record")

	// ErrQueryFailed wraps read failures against the durable store.
	ErrQueryFailed = errors.New("failed to query event records")

	// ErrInvalidArchiveConfig is returned for unusable S3 archive configuration.
	ErrInvalidArchiveConfig = errors.New("invalid dead-letter archive config")
)
