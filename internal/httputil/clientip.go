// Package httputil holds request helpers shared by the HTTP handlers.
package httputil

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIP returns the address logged for a request. With trustProxy the
// leftmost X-Forwarded-For entry, then X-Real-IP, are preferred when they
// parse as IP addresses; malformed header values are ignored. Only enable
// trustProxy behind a reverse proxy that overwrites these headers.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		for _, candidate := range proxyCandidates(r.Header) {
			if addr, ok := parseAddr(candidate); ok {
				return addr
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func proxyCandidates(h http.Header) []string {
	var out []string
	if xff := h.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		out = append(out, first)
	}
	if xri := h.Get("X-Real-IP"); xri != "" {
		out = append(out, xri)
	}
	return out
}

// parseAddr accepts a bare IP or an ip:port pair.
func parseAddr(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().Unmap().String(), true
	}
	if a, err := netip.ParseAddr(s); err == nil {
		return a.Unmap().String(), true
	}
	return "", false
}
