package fingerprint

import "errors"

// options configures fingerprint generation behavior.
type options struct {
	// includeIP includes the client IP address in the fingerprint.
	// WARNING: IP addresses change (mobile networks, VPNs, corporate proxies);
	// pair with a tolerant IP policy if you disable this.
	// Default: true
	includeIP bool

	// includeAcceptHeaders includes Accept-Language and Accept-Encoding.
	// These can change with browser extensions or language settings.
	// Default: true
	includeAcceptHeaders bool
}

// Option is a functional option for configuring fingerprint generation.
type Option func(*options)

// WithoutIP excludes the client IP address from the fingerprint.
// Use when clients legitimately roam across networks and the session layer
// enforces its own IP policy separately.
func WithoutIP() Option {
	return func(o *options) {
		o.includeIP = false
	}
}

// WithoutAcceptHeaders excludes Accept-Language and Accept-Encoding from the
// fingerprint. Useful when content negotiation is expected to vary.
func WithoutAcceptHeaders() Option {
	return func(o *options) {
		o.includeAcceptHeaders = false
	}
}

func defaultOptions() *options {
	return &options{
		includeIP:            true,
		includeAcceptHeaders: true,
	}
}

func applyOptions(opts ...Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Validation errors that can be checked with errors.Is()
var (
	// ErrInvalidFingerprint indicates the stored fingerprint has invalid format.
	ErrInvalidFingerprint = errors.New("invalid fingerprint format")

	// ErrMismatch indicates the fingerprint doesn't match the current request.
	// This could indicate a session hijacking attempt or legitimate changes to
	// the client's browser/network configuration.
	ErrMismatch = errors.New("fingerprint mismatch")
)
