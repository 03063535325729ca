package presence

import "errors"

var (
	// ErrNilClient is returned when a tracker is built without a Redis client.
	ErrNilClient = errors.New("redis client cannot be nil")
)
