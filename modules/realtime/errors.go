package realtime

import "errors"

var (
	// ErrNilService is returned when a bridge is built without a service.
	ErrNilService = errors.New("service cannot be nil")
)
