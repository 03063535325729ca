package queue

import "errors"

var (
	// ErrInvalidPriority is returned when an event carries an unknown priority class.
	ErrInvalidPriority = errors.New("event priority is not a known class")
)
