// Package privacy keeps personal data such as client addresses and identity
// card numbers out of logs and audit records.
package privacy

import "net/netip"

const (
	ipv4KeepBits = 24
	ipv6KeepBits = 48
)

// AnonymizeIP truncates a client address for request logs. IPv4 keeps its
// /24 ("192.168.1.47" -> "192.168.1.0") and IPv6 its /48. Empty input gives
// "unknown", anything unparseable gives "invalid".
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap().WithZone("")

	bits := ipv6KeepBits
	if addr.Is4() {
		bits = ipv4KeepBits
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}
