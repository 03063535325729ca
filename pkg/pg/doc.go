// Package pg bootstraps the PostgreSQL layer for the realtime service on
// pgx/v5: a retrying connection pool, goose schema migrations, and a
// readiness probe for /healthz. The durable event mirror and the
// dead-letter store run on the pool this package returns.
//
//	var cfg pg.Config
//	// populated from env via pkg/config
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//	    return err
//	}
//
// Migrations live in internal/db/migrations by default; override with
// PG_MIGRATIONS_PATH.
package pg
