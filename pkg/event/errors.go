package event

import "errors"

var (
	// ErrUnknownKind is returned when an event kind is outside the closed set.
	ErrUnknownKind = errors.New("unknown event kind")

	// ErrInvalidPriority is returned when a priority is not one of the four classes.
	ErrInvalidPriority = errors.New("invalid event priority")

	// ErrEmptyUserID is returned when an event is created without a user identity.
	ErrEmptyUserID = errors.New("user id cannot be empty")

	// ErrPayloadMarshal is returned when the payload cannot be JSON encoded.
	ErrPayloadMarshal = errors.New("failed to marshal event payload")
)
