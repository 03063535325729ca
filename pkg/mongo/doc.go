// Package mongo provides MongoDB connection bootstrap for the realtime
// service. Configuration comes from the environment, New retries transient
// connect failures, and Healthcheck plugs into the /healthz readiness
// probe. The notification storage lives in a database obtained through
// NewWithDatabase.
//
//	var cfg mongo.Config
//	// populated from env via pkg/config
//	db, err := mongo.NewWithDatabase(ctx, cfg, "jobfinders")
//	if err != nil {
//	    return err
//	}
//	defer db.Client().Disconnect(context.Background())
package mongo
