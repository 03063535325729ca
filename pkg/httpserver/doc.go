// Package httpserver wraps net/http with graceful shutdown, functional
// options, lifecycle hooks, and a health-check handler.
//
// Run blocks until the context is cancelled or an interrupt/TERM signal
// arrives, then drains in-flight requests within the configured shutdown
// timeout. Construction goes through New or NewFromConfig with Option
// helpers (WithAddr, WithReadTimeout, WithLogger, ...); WithStartHook and
// WithStopHook run side effects around the server lifecycle.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    return err
//	}
//
// Run wraps listen errors with ErrStart and Shutdown wraps shutdown errors
// with ErrShutdown; distinguish them with errors.Is.
package httpserver
