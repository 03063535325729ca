package registry

import "errors"

var (
	// ErrNilConn is returned when registering a nil connection handle.
	ErrNilConn = errors.New("connection cannot be nil")

	// ErrEmptyUserID is returned when registering a connection without a user identity.
	ErrEmptyUserID = errors.New("user id cannot be empty")

	// ErrConnAlreadyOwned is returned when a handle is registered under a second user.
	ErrConnAlreadyOwned = errors.New("connection already registered to another user")
)
