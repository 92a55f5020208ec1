package middleware

import (
	"net/http"
	"strings"

	"github.com/harborline/shipline-backend/api/responses"
	"github.com/harborline/shipline-backend/pkg/enums"
	pkgerrors "github.com/harborline/shipline-backend/pkg/errors"
	"github.com/harborline/shipline-backend/pkg/logger"
)

// RequireRole admits only callers whose role is in the allowed set. It must
// run after Authenticate.
func RequireRole(logg *logger.Logger, roles ...enums.Role) func(http.Handler) http.Handler {
	allowed := make(map[enums.Role]struct{}, len(roles))
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
		names = append(names, role.String())
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeAuthenticationRequired, "authentication required"))
				return
			}
			if _, ok := allowed[p.Role]; !ok {
				err := pkgerrors.New(pkgerrors.CodeInsufficientPermissions, "insufficient permissions. required role: "+strings.Join(names, " or ")).
					WithDetails(map[string]any{
						"required": names,
						"current":  p.Role.String(),
					})
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is shorthand for RequireRole(logg, enums.RoleAdmin).
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return RequireRole(logg, enums.RoleAdmin)
}
