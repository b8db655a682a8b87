// Package clientip extracts real client IP addresses from HTTP requests and
// compares addresses at a configurable block granularity.
//
// Proxy headers are checked in priority order to determine the actual client
// address behind load balancers and CDNs:
//  1. CF-Connecting-IP (Cloudflare)
//  2. DO-Connecting-IP (DigitalOcean)
//  3. X-Forwarded-For (most common proxy header)
//  4. X-Real-IP (nginx and other proxies)
//  5. RemoteAddr (direct connection)
//
// Header candidates are validated before use: malformed values are skipped,
// and addresses in private or reserved ranges (RFC 1918, unique-local,
// loopback, link-local, unspecified) are rejected since a forwarding header
// carrying one of those was set by an internal hop, not the client.
//
// Basic extraction:
//
//	ip := clientip.GetIP(r)
//
// Block comparison supports session hijack detection that tolerates ISP-level
// address churn. Comparing the first two IPv4 octets (or the first N IPv6
// groups after zero-expansion) keeps a session valid across a carrier NAT
// rotation while rejecting a token replayed from a different network:
//
//	clientip.Match("203.0.113.5", "203.0.113.9", 2) // true, 203.0 == 203.0
//	clientip.Match("203.0.113.5", "203.1.113.9", 2) // false
package clientip
