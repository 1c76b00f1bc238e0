package signal

import (
	"net"
	"net/http"
	"strings"
)

// ClientAddress is the peer's IP with IPv4-mapped IPv6 addresses
// unwrapped. With trustForwarded the first X-Forwarded-For entry wins over
// the socket address; only enable it behind a proxy that overwrites the
// header, otherwise clients choose their own address.
func ClientAddress(r *http.Request, trustForwarded bool) string {
	addr := ""
	if fwd := r.Header.Get("X-Forwarded-For"); trustForwarded && fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		addr = strings.TrimSpace(first)
	}
	if addr == "" {
		addr = r.RemoteAddr
		if host, _, err := net.SplitHostPort(addr); err == nil {
			addr = host
		}
	}
	return strings.TrimPrefix(addr, "::ffff:")
}
