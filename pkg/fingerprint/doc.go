// Package fingerprint binds sessions to client-observable request
// characteristics to detect session hijacking.
//
// A fingerprint is a versioned SHA-256 digest over the pipe-joined client
// attributes ip|userAgent|acceptLanguage|acceptEncoding. It is generated once
// when a session is created, from attributes captured at that moment, and
// stored with the session. On later requests a candidate digest is computed
// from the current request and compared against the stored value in constant
// time; a stolen session token presented from a different device fails the
// comparison.
//
// Capture and generate at session creation:
//
//	attrs := fingerprint.FromRequest(r)
//	fp := fingerprint.Generate(attrs)
//
// Validate on subsequent requests:
//
//	if err := fingerprint.Validate(fingerprint.FromRequest(r), storedFP); err != nil {
//		// fingerprint mismatch - force re-authentication
//	}
//
// The "v1:" prefix versions the digest recipe so the inputs can evolve
// without ambiguity about how an old stored value was produced.
package fingerprint
