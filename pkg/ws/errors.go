package ws

import "errors"

var (
	// ErrNilResolver is returned when a handler is built without an identity resolver.
	ErrNilResolver = errors.New("identity resolver cannot be nil")

	// ErrNilRegistry is returned when a handler is built without a connection registry.
	ErrNilRegistry = errors.New("connection registry cannot be nil")

	// ErrConnClosed is returned on sends to a closed connection.
	ErrConnClosed = errors.New("connection closed")

	// ErrSendBufferFull is returned when the per-connection send buffer is
	// saturated by a slow reader.
	ErrSendBufferFull = errors.New("send buffer full")

	// ErrMissingToken is returned when the handshake carries no token.
	ErrMissingToken = errors.New("missing handshake token")

	// ErrTokenExpired is returned when the handshake token is past its expiry.
	ErrTokenExpired = errors.New("handshake token expired")

	// ErrMissingIdentity is returned when a verified token carries no user id.
	ErrMissingIdentity = errors.New("token carries no user identity")
)
