package tracking

import "errors"

var (
	// ErrNilClient is returned when a sink is built without an OpenSearch client.
	ErrNilClient = errors.New("opensearch client cannot be nil")

	// ErrIndexFailed is returned when OpenSearch rejects an index request.
	ErrIndexFailed = errors.New("failed to index interaction")
)
