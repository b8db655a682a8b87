// Package logger provides structured logging utilities built on Go's standard
// slog package: a factory with environment presets and a set of pre-built
// attribute helpers for common logging patterns.
//
// Create loggers using the factory function:
//
//	import "github.com/orbitwars/backend/core/logger"
//
//	// Development: text format, debug level
//	log := logger.New(logger.WithDevelopment("gamebackend"))
//
//	// Production: JSON format, info level
//	log := logger.New(logger.WithProduction("gamebackend"))
//
//	// Custom configuration
//	log := logger.New(
//		logger.WithLevel(slog.LevelWarn),
//		logger.WithJSONFormatter(),
//		logger.WithAttr(slog.String("service", "sessions")),
//	)
//
// Attribute helpers are nil-safe: logger.Error(nil) and logger.UserID(uuid.Nil)
// produce empty attributes that slog drops, so call sites need no guards:
//
//	log.Info("session cleanup finished",
//		logger.Component("session"),
//		logger.Count(deleted),
//		logger.Elapsed(start),
//	)
package logger
