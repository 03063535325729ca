// Package opensearch wraps the official OpenSearch Go client with
// environment-driven configuration, a startup reachability check, and a
// readiness probe for /healthz. The interaction tracking sink indexes its
// documents through the client this package returns.
//
//	var cfg opensearch.Config
//	// populated from env via pkg/config
//	client, err := opensearch.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//
// ErrConnectionFailed and ErrHealthcheckFailed distinguish infrastructure
// problems from indexing errors; check them with errors.Is.
package opensearch
