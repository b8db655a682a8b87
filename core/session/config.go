package session

import (
	"time"

	"github.com/orbitwars/backend/pkg/fingerprint"
)

// Config holds session manager configuration.
type Config struct {
	// MaxLifetime is the idle timeout: a session whose last activity is
	// older than this has aged out.
	MaxLifetime time.Duration `env:"SESSION_MAX_LIFETIME" envDefault:"24h"`

	// RegenerationInterval is how long an identifier may live before it is
	// rotated (session fixation defense).
	RegenerationInterval time.Duration `env:"SESSION_REGENERATION_INTERVAL" envDefault:"5m"`

	// IPBlocks is the address comparison granularity during validation:
	// the first N dotted-quad octets or colon-hex groups must match.
	// Zero pins the full address.
	IPBlocks int `env:"SESSION_IP_BLOCKS" envDefault:"2"`

	// ActiveWindow defines "recently active" for monitoring stats.
	ActiveWindow time.Duration `env:"SESSION_ACTIVE_WINDOW" envDefault:"15m"`

	// fingerprintOpts customizes the fingerprint recipe for creation and
	// validation alike. The default recipe pins the exact client IP; pass
	// fingerprint.WithoutIP to leave IP policy entirely to the block check.
	fingerprintOpts []fingerprint.Option
}

// defaultConfig returns default configuration.
func defaultConfig() *Config {
	return &Config{
		MaxLifetime:          24 * time.Hour,
		RegenerationInterval: 5 * time.Minute,
		IPBlocks:             2,
		ActiveWindow:         15 * time.Minute,
	}
}

// Option is a functional option for configuring the session manager.
type Option func(*Config)

// WithConfig replaces the whole configuration, typically one loaded from the
// environment via core/config.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}

// WithMaxLifetime sets the session idle timeout.
func WithMaxLifetime(d time.Duration) Option {
	return func(c *Config) {
		c.MaxLifetime = d
	}
}

// WithRegenerationInterval sets how often session identifiers rotate.
func WithRegenerationInterval(d time.Duration) Option {
	return func(c *Config) {
		c.RegenerationInterval = d
	}
}

// WithIPBlocks sets the IP comparison granularity. Two of four IPv4 octets
// tolerates ISP-level address rotation while still catching a session token
// replayed from a different network.
func WithIPBlocks(blocks int) Option {
	return func(c *Config) {
		c.IPBlocks = blocks
	}
}

// WithActiveWindow sets the recency window for Stats.
func WithActiveWindow(d time.Duration) Option {
	return func(c *Config) {
		c.ActiveWindow = d
	}
}

// WithFingerprintOptions customizes the fingerprint recipe. With the default
// recipe any IP change fails validation outright; excluding the IP component
// makes the block-granularity comparison the only IP policy, tolerating
// ISP-level rotation:
//
//	session.NewManager[Data](store,
//		session.WithIPBlocks(2),
//		session.WithFingerprintOptions(fingerprint.WithoutIP()),
//	)
func WithFingerprintOptions(opts ...fingerprint.Option) Option {
	return func(c *Config) {
		c.fingerprintOpts = opts
	}
}
