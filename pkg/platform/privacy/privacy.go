package privacy

import (
	"net"
	"strings"
)

// AnonymizeIP zeroes the host part of an address so logs and audit records
// keep network locality without the full address: the last octet for IPv4,
// the last 80 bits for IPv6. Unparseable input is returned redacted.
func AnonymizeIP(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(raw); err == nil {
		raw = host
	}
	ip := net.ParseIP(raw)
	if ip == nil {
		return "redacted"
	}
	if v4 := ip.To4(); v4 != nil {
		return v4.Mask(net.CIDRMask(24, 32)).String()
	}
	return ip.Mask(net.CIDRMask(48, 128)).String()
}
