package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/harborline/shipline-backend/pkg/enums"
)

type contextKey string

const ctxPrincipal contextKey = "principal"

// Principal is the authenticated caller attached to a request.
type Principal struct {
	ID       uuid.UUID
	Identity string
	Role     enums.Role
}

// WithPrincipal injects the authenticated caller into the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxPrincipal, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(ctxPrincipal).(Principal)
	return p, ok
}

func IdentityFromContext(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.Identity
}

func RoleFromContext(ctx context.Context) enums.Role {
	p, _ := PrincipalFromContext(ctx)
	return p.Role
}
