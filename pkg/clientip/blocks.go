package clientip

import (
	"net/netip"
	"strings"
)

// Match compares two IP addresses at the given block granularity: the first
// `blocks` dot-separated octets for IPv4, or the first `blocks` colon-separated
// groups for IPv6 after expanding any `::` shorthand to full-length groups.
//
// Partial matching trades strict IP pinning for tolerance of ISP-level address
// rotation while still catching gross relocation (different network/country).
// Addresses of different families never match. A non-positive or out-of-range
// block count compares the full address.
func Match(a, b string, blocks int) bool {
	addrA, errA := netip.ParseAddr(a)
	addrB, errB := netip.ParseAddr(b)
	if errA != nil || errB != nil {
		return false
	}
	addrA, addrB = addrA.Unmap(), addrB.Unmap()

	if addrA.Is4() != addrB.Is4() {
		return false
	}

	blocksA := splitBlocks(addrA)
	blocksB := splitBlocks(addrB)

	n := len(blocksA)
	if blocks > 0 && blocks < n {
		n = blocks
	}

	for i := 0; i < n; i++ {
		if blocksA[i] != blocksB[i] {
			return false
		}
	}
	return true
}

// ShortIPv6 truncates an IPv6 address to its first n groups. The address is
// zero-expanded first (`::` becomes explicit zero groups, every group padded
// to four hex digits) so group counts are comparable across notations:
//
//	ShortIPv6("2001:db8::1", 3) // "2001:0db8:0000"
//
// Returns the empty string when the input is not an IPv6 address.
func ShortIPv6(s string, n int) string {
	addr, err := netip.ParseAddr(s)
	if err != nil || !addr.Is6() || addr.Is4In6() {
		return ""
	}

	groups := strings.Split(addr.StringExpanded(), ":")
	if n <= 0 || n > len(groups) {
		n = len(groups)
	}
	return strings.Join(groups[:n], ":")
}

// splitBlocks returns the delimiter-split canonical representation: four
// decimal octets for IPv4, eight zero-padded hex groups for IPv6.
func splitBlocks(addr netip.Addr) []string {
	if addr.Is4() {
		return strings.Split(addr.String(), ".")
	}
	return strings.Split(addr.StringExpanded(), ":")
}
