// Package config loads typed configuration structs from environment
// variables, backed by godotenv for .env files and caarlos0/env for struct
// parsing.
//
// Each configuration type is parsed at most once per process; subsequent
// Load calls for the same type return the cached copy, so independent
// components can each Load their own config struct without coordinating.
//
//	type ServerConfig struct {
//	    Addr    string        `env:"HTTP_ADDR" envDefault:":8080"`
//	    Timeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`
//	}
//
//	var cfg ServerConfig
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// LoadEnv loads explicit .env files (later files win), and tests can use
// ResetCache or ForceReloadConfig after changing the process environment.
//
// Sentinel errors (ErrParsingConfig, ErrConfigNotLoaded, ErrNilPointer)
// compare with errors.Is.
package config
