package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/harborline/shipline-backend/pkg/config"
)

// SessionCookie builds the HTTP-only cookie that carries the session token.
func SessionCookie(cfg config.CookieConfig, prod bool, token string, expiresAt, now time.Time) *http.Cookie {
	maxAge := int(expiresAt.Sub(now).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	return &http.Cookie{
		Name:     cfg.Name,
		Value:    token,
		Path:     "/",
		Domain:   cfg.Domain,
		Expires:  expiresAt.UTC(),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure(cfg, prod),
		SameSite: sameSite(cfg.SameSite),
	}
}

// ClearedSessionCookie expires the session cookie on the client.
func ClearedSessionCookie(cfg config.CookieConfig, prod bool) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     "/",
		Domain:   cfg.Domain,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure(cfg, prod),
		SameSite: sameSite(cfg.SameSite),
	}
}

// TokenFromRequest returns the session token, preferring the cookie and
// falling back to an Authorization bearer header.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil {
		if value := strings.TrimSpace(cookie.Value); value != "" {
			return value
		}
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func secure(cfg config.CookieConfig, prod bool) bool {
	if cfg.Secure != nil {
		return *cfg.Secure
	}
	return prod
}

func sameSite(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
