package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/harborline/shipline-backend/pkg/enums"
	pkgerrors "github.com/harborline/shipline-backend/pkg/errors"
)

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name      string
		principal *Principal
		status    int
		code      pkgerrors.Code
	}{
		{name: "anonymous", status: http.StatusUnauthorized, code: pkgerrors.CodeAuthenticationRequired},
		{name: "user", principal: &Principal{ID: uuid.New(), Identity: "op", Role: enums.RoleUser}, status: http.StatusForbidden, code: pkgerrors.CodeInsufficientPermissions},
		{name: "admin", principal: &Principal{ID: uuid.New(), Identity: "root", Role: enums.RoleAdmin}, status: http.StatusOK},
	}

	handler := RequireAdmin(nil)(okHandler())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/", nil)
			if tc.principal != nil {
				req = req.WithContext(WithPrincipal(req.Context(), *tc.principal))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d got %d", tc.status, rec.Code)
			}
			if tc.code != "" {
				if code := errorCode(t, rec); code != string(tc.code) {
					t.Fatalf("unexpected code %s", code)
				}
			}
		})
	}
}

func TestRequireRoleAcceptsAnyListedRole(t *testing.T) {
	handler := RequireRole(nil, enums.RoleAdmin, enums.RoleUser)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithPrincipal(req.Context(), Principal{Identity: "op", Role: enums.RoleUser}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}
