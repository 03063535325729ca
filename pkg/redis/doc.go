// Package redis wraps the go-redis client with connection bootstrap for the
// realtime service: Connect retries with a bounded overall timeout, and
// Healthcheck plugs into the /healthz readiness probe. The presence tracker
// builds on the returned client.
//
//	cfg := redis.Config{}
//	// populated from env via pkg/config
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
package redis
