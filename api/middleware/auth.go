package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/harborline/shipline-backend/api/responses"
	pkgAuth "github.com/harborline/shipline-backend/pkg/auth"
	"github.com/harborline/shipline-backend/pkg/config"
	"github.com/harborline/shipline-backend/pkg/db/models"
	pkgerrors "github.com/harborline/shipline-backend/pkg/errors"
	"github.com/harborline/shipline-backend/pkg/logger"
)

// UserResolver loads the stored account behind a token identity.
type UserResolver interface {
	FindByIdentity(ctx context.Context, identity string) (*models.User, error)
}

// AuthOptions configures the token gate.
type AuthOptions struct {
	JWT        config.JWTConfig
	CookieName string
	Users      UserResolver
}

// Authenticate requires a valid session token (cookie first, then bearer
// header) and re-resolves the caller from the credential store so role
// changes apply immediately.
func Authenticate(opts AuthOptions, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := authenticate(r, opts, logg)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches the caller when a usable token is present and
// otherwise continues anonymously.
func OptionalAuth(opts AuthOptions, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if pkgAuth.TokenFromRequest(r, opts.CookieName) == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx, err := authenticate(r, opts, logg)
			if err != nil {
				if logg != nil {
					logg.Debug(logg.WithField(r.Context(), "reason", err.Error()), "auth.optional.ignored")
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, opts AuthOptions, logg *logger.Logger) (context.Context, error) {
	ctx := r.Context()

	token := pkgAuth.TokenFromRequest(r, opts.CookieName)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeAuthenticationRequired, "access denied. no token provided")
	}

	claims, err := pkgAuth.ParseAccessToken(opts.JWT, token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidToken, err, "token expired")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidToken, err, "invalid token")
	}

	if opts.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user resolver not configured")
	}
	user, err := opts.Users.FindByIdentity(ctx, claims.Identity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUserNotFound, err, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "resolve user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUserNotFound, "user not found")
	}

	ctx = WithPrincipal(ctx, Principal{
		ID:       user.ID,
		Identity: user.Identity,
		Role:     user.Role,
	})
	if logg != nil {
		ctx = logg.WithIdentity(ctx, user.Identity)
		ctx = logg.WithActorRole(ctx, user.Role.String())
	}
	return ctx, nil
}
