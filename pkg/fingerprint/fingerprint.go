package fingerprint

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/orbitwars/backend/pkg/clientip"
)

const (
	fingerprintVersion = "v1:"
	// fingerprintTotalLen is the length of a fingerprint string:
	// 3 bytes ("v1:") + 64 bytes (hex encoding of the SHA-256 digest).
	fingerprintTotalLen = 3 + 2*sha256.Size
)

// Attributes are the client-observable request characteristics a session is
// bound to. They are captured once at session creation and stored alongside
// the session; the stored values are the source of truth, never recomputed
// from later requests.
type Attributes struct {
	IP             string
	UserAgent      string
	AcceptLanguage string
	AcceptEncoding string
}

// FromRequest captures fingerprint attributes from an HTTP request.
// The IP is resolved through proxy headers via clientip.GetIP.
func FromRequest(r *http.Request) Attributes {
	return Attributes{
		IP:             clientip.GetIP(r),
		UserAgent:      r.UserAgent(),
		AcceptLanguage: r.Header.Get("Accept-Language"),
		AcceptEncoding: r.Header.Get("Accept-Encoding"),
	}
}

// Generate creates a device fingerprint from client attributes.
// Returns a version-prefixed string in format "v1:hash" where hash is the
// hex-encoded SHA-256 digest of the pipe-joined components
// ip|userAgent|acceptLanguage|acceptEncoding.
//
// Components are joined with a pipe delimiter even when empty so that
// ["ab",""] and ["a","b"] cannot collide, and so a missing header changes
// the digest the same way on every request.
func Generate(attrs Attributes, opts ...Option) string {
	o := applyOptions(opts...)

	components := make([]string, 0, 4)
	if o.includeIP {
		components = append(components, attrs.IP)
	}
	components = append(components, attrs.UserAgent)
	if o.includeAcceptHeaders {
		components = append(components, attrs.AcceptLanguage, attrs.AcceptEncoding)
	}

	hash := sha256.Sum256([]byte(strings.Join(components, "|")))
	return fingerprintVersion + hex.EncodeToString(hash[:])
}

// Validate compares the fingerprint of the current request attributes against
// a stored fingerprint. Returns nil on match, ErrMismatch on difference, or
// ErrInvalidFingerprint when the stored value has an unexpected format.
//
// The comparison is constant time so a mismatch reveals nothing about which
// position differs.
//
// Use the same options that produced the stored fingerprint; a fingerprint
// generated with WithoutIP only ever matches when validated with WithoutIP.
func Validate(current Attributes, stored string, opts ...Option) error {
	if !strings.HasPrefix(stored, fingerprintVersion) || len(stored) != fingerprintTotalLen {
		return ErrInvalidFingerprint
	}

	candidate := Generate(current, opts...)
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(stored)) == 1 {
		return nil
	}

	return ErrMismatch
}
