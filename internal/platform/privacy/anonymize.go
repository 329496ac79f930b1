// Package privacy reduces identifiers to forms safe for logs and traces.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"net/netip"
)

const (
	ipv4Bits = 24
	ipv6Bits = 48
)

// AnonymizeIP masks addr to its /24 (IPv4) or /48 (IPv6) network so request
// logs never carry a full client address. IPv4-mapped IPv6 addresses are
// treated as IPv4. It returns "unknown" for an empty input and "invalid" when
// addr does not parse.
func AnonymizeIP(addr string) string {
	if addr == "" || addr == "unknown" {
		return "unknown"
	}
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return "invalid"
	}
	ip = ip.Unmap().WithZone("")

	bits := ipv6Bits
	if ip.Is4() {
		bits = ipv4Bits
	}
	prefix, err := ip.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}

// HashUserID returns a short SHA-256 prefix of userID so traces can be
// correlated per user without carrying the identifier itself.
func HashUserID(userID string) string {
	if userID == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:8])
}
