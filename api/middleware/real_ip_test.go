package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func resolvedRemote(trustedHops int, remote string, forwarded ...string) string {
	var seen string
	handler := RealIP(trustedHops)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = r.RemoteAddr
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remote
	for _, value := range forwarded {
		req.Header.Add("X-Forwarded-For", value)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return seen
}

func TestRealIPWithoutTrustedProxiesKeepsSocketPeer(t *testing.T) {
	if got := resolvedRemote(0, "198.51.100.7:4000", "203.0.113.9"); got != "198.51.100.7:4000" {
		t.Fatalf("expected untouched remote addr, got %s", got)
	}
}

func TestRealIPTakesRightmostUntrustedHop(t *testing.T) {
	// client spoofs 1.1.1.1; the proxy appends the real peer 203.0.113.9
	if got := resolvedRemote(1, "10.0.0.2:4000", "1.1.1.1, 203.0.113.9"); got != "203.0.113.9" {
		t.Fatalf("expected proxy-reported client, got %s", got)
	}
	if got := resolvedRemote(2, "10.0.0.2:4000", "1.1.1.1, 203.0.113.9", "10.0.0.1"); got != "203.0.113.9" {
		t.Fatalf("expected client behind two proxies, got %s", got)
	}
}

func TestRealIPShortChainFallsBackToLeftmost(t *testing.T) {
	if got := resolvedRemote(3, "10.0.0.2:4000", "203.0.113.9"); got != "203.0.113.9" {
		t.Fatalf("expected leftmost entry, got %s", got)
	}
	if got := resolvedRemote(1, "10.0.0.2:4000"); got != "10.0.0.2" {
		t.Fatalf("expected socket peer without header, got %s", got)
	}
}

func TestRealIPIgnoresMalformedEntries(t *testing.T) {
	if got := resolvedRemote(1, "10.0.0.2:4000", "not-an-ip"); got != "10.0.0.2:4000" {
		t.Fatalf("expected untouched remote addr, got %s", got)
	}
}
