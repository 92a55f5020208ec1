package middleware

import (
	"net"
	"net/http"
	"strings"
)

// RealIP rewrites RemoteAddr to the client address reported by the trusted
// proxies in front of the service. Each trusted hop appends one entry to
// X-Forwarded-For, so the client is the entry trustedHops positions from the
// right once the socket peer is counted. With no trusted hops the headers
// are ignored.
func RealIP(trustedHops int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if trustedHops <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := forwardedClient(r, trustedHops); ip != "" {
				r.RemoteAddr = ip
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forwardedClient(r *http.Request, trustedHops int) string {
	var chain []string
	for _, header := range r.Header.Values("X-Forwarded-For") {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				chain = append(chain, ip)
			}
		}
	}
	chain = append(chain, remoteHost(r.RemoteAddr))

	idx := len(chain) - 1 - trustedHops
	if idx < 0 {
		idx = 0
	}
	if net.ParseIP(chain[idx]) == nil {
		return ""
	}
	return chain[idx]
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err == nil && host != "" {
		return host
	}
	return addr
}
