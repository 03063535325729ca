package opensearch

import "errors"

var (
	// ErrConnectionFailed indicates the client could not be created from the
	// given configuration.
	ErrConnectionFailed = errors.New("opensearch connection failed")

	// ErrHealthcheckFailed indicates the cluster is unreachable or unhealthy.
	ErrHealthcheckFailed = errors.New("opensearch healthcheck failed")
)
