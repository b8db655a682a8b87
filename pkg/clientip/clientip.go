package clientip

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Unknown is returned when no address at all can be determined for a request.
const Unknown = "unknown"

// proxyHeaders lists forwarding headers in priority order. The most reliable
// sources (CDN-set headers) come first; generic proxy headers after.
var proxyHeaders = []string{
	"CF-Connecting-IP",
	"DO-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// GetIP resolves the real client IP address for an HTTP request.
//
// Forwarding headers are checked in a fixed priority order before falling back
// to the direct remote address. A header value containing a comma is split and
// only the first entry is considered (the leftmost hop in X-Forwarded-For is
// the original client). A candidate is accepted only if it parses as an IP
// address and is not in a private or reserved range; the first valid candidate
// wins. When no header yields a usable address, the direct remote address is
// returned as-is, or Unknown if that too is absent.
func GetIP(r *http.Request) string {
	if r == nil {
		return Unknown
	}

	for _, header := range proxyHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}
		// "client, proxy1, proxy2" - only the first entry matters.
		if idx := strings.IndexByte(value, ','); idx >= 0 {
			value = value[:idx]
		}
		if ip, ok := parsePublic(strings.TrimSpace(value)); ok {
			return ip
		}
	}

	if r.RemoteAddr == "" {
		return Unknown
	}

	// RemoteAddr is usually host:port; fall back to the raw value when it isn't.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.Unmap().String()
	}
	return host
}

// parsePublic validates a candidate address and rejects private and reserved
// ranges. Returns the normalized form and whether the candidate is usable.
func parsePublic(candidate string) (string, bool) {
	addr, err := netip.ParseAddr(candidate)
	if err != nil {
		return "", false
	}
	addr = addr.Unmap()

	switch {
	case addr.IsUnspecified(),
		addr.IsLoopback(),
		addr.IsPrivate(), // RFC 1918 and IPv6 unique-local
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsMulticast():
		return "", false
	}

	return addr.String(), true
}
