package requestutil

import (
	"net"
	"net/http"
	"strings"
)

// GetClientIP resolves the originating client IP for a request.
// Proxy headers take precedence over the socket peer address:
// the first entry of X-Forwarded-For, then X-Real-IP, then RemoteAddr.
func GetClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port, return it verbatim
		return r.RemoteAddr
	}
	return host
}
