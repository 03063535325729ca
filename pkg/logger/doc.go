// Package logger builds structured slog loggers for the realtime service:
// a New factory with functional options, attribute helpers with consistent
// key names, and a handler decorator that injects values from
// context.Context into every record.
//
//	log := logger.New(logger.WithEnvironment(cfg.Env, "realtime"))
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "event processed",
//	    logger.EventID(id),
//	    logger.EventKind("job_posted"),
//	    logger.Duration(time.Since(start)),
//	)
//
// WithDevelopment, WithStaging and WithProduction pick per-environment
// defaults (format and level); WithFormat, WithLevel and WithAttr override
// them. WithContextValue and WithContextExtractors register callbacks that
// pull request-scoped values out of the context on each Handle call.
//
// The Error and Errors helpers produce an empty attribute for nil errors,
// so call sites never need a nil check.
package logger
