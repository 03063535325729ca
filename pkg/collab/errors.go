package collab

import "errors"

var (
	// ErrEmptyBaseURL is returned when a client is built without a base URL.
	ErrEmptyBaseURL = errors.New("base url cannot be empty")

	// ErrInvalidBaseURL is returned when a base URL does not parse.
	ErrInvalidBaseURL = errors.New("invalid base url")

	// ErrUnexpectedStatus is returned on non-2xx collaborator responses.
	ErrUnexpectedStatus = errors.New("unexpected response status")
)
