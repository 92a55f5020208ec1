package controllers

import (
	"net/http"
	"time"

	"github.com/harborline/shipline-backend/api/middleware"
	"github.com/harborline/shipline-backend/api/responses"
	"github.com/harborline/shipline-backend/api/validators"
	"github.com/harborline/shipline-backend/internal/auth"
	pkgAuth "github.com/harborline/shipline-backend/pkg/auth"
	"github.com/harborline/shipline-backend/pkg/config"
	pkgerrors "github.com/harborline/shipline-backend/pkg/errors"
	"github.com/harborline/shipline-backend/pkg/logger"
	"github.com/harborline/shipline-backend/pkg/types"
)

// SessionCookies carries what the auth handlers need to set or clear the
// session cookie.
type SessionCookies struct {
	Config config.CookieConfig
	Prod   bool
	Now    func() time.Time
}

func (c SessionCookies) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c SessionCookies) set(w http.ResponseWriter, session *auth.Session) {
	http.SetCookie(w, pkgAuth.SessionCookie(c.Config, c.Prod, session.Token, session.ExpiresAt, c.now()))
}

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, cookies SessionCookies, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cookies.set(w, session)
		responses.WriteSuccess(w, auth.SessionResponse{Message: "Login successful", User: session.User})
	}
}

// AuthLogout clears the session cookie. It always succeeds.
func AuthLogout(cookies SessionCookies, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, pkgAuth.ClearedSessionCookie(cookies.Config, cookies.Prod))
		if logg != nil {
			logg.Debug(r.Context(), "auth.logout")
		}
		responses.WriteSuccess(w, types.MessageResponse{Message: "Logout successful"})
	}
}

func AuthMe(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.CurrentUser(r.Context(), middleware.IdentityFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, auth.CurrentUserResponse{User: user})
	}
}

// AuthRefresh re-issues the session cookie for the authenticated caller.
func AuthRefresh(svc auth.Service, cookies SessionCookies, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.Refresh(r.Context(), middleware.IdentityFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cookies.set(w, session)
		responses.WriteSuccess(w, auth.SessionResponse{Message: "Token refreshed successfully", User: session.User})
	}
}

// AuthCheck reports whether the request carries a usable session.
func AuthCheck(svc auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Check(r.Context(), middleware.IdentityFromContext(r.Context())))
	}
}
