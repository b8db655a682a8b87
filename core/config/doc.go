// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/orbitwars/backend/core/config"
//
//	type DatabaseConfig struct {
//		URL         string        `env:"DATABASE_URL,required"`
//		MaxConns    int           `env:"DATABASE_MAX_CONNS" envDefault:"10"`
//		PingTimeout time.Duration `env:"DATABASE_PING_TIMEOUT" envDefault:"5s"`
//	}
//
//	func main() {
//		var db DatabaseConfig
//
//		// Load with error handling
//		if err := config.Load(&db); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&db)
//	}
//
// Each configuration type is loaded only once per application lifetime;
// different types are cached independently.
package config
