package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborline/shipline-backend/api/middleware"
	"github.com/harborline/shipline-backend/internal/auth"
	"github.com/harborline/shipline-backend/internal/users"
	"github.com/harborline/shipline-backend/pkg/config"
	"github.com/harborline/shipline-backend/pkg/enums"
	pkgerrors "github.com/harborline/shipline-backend/pkg/errors"
)

var testNow = time.Date(2030, time.January, 1, 12, 0, 0, 0, time.UTC)

type stubAuthService struct {
	session  *auth.Session
	user     *users.UserDTO
	err      error
	lastID   string
	lastBody auth.LoginRequest
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.Session, error) {
	s.lastBody = req
	return s.session, s.err
}

func (s *stubAuthService) CurrentUser(ctx context.Context, identity string) (*users.UserDTO, error) {
	s.lastID = identity
	return s.user, s.err
}

func (s *stubAuthService) Refresh(ctx context.Context, identity string) (*auth.Session, error) {
	s.lastID = identity
	return s.session, s.err
}

func (s *stubAuthService) Check(ctx context.Context, identity string) auth.CheckResponse {
	s.lastID = identity
	if identity == "" {
		return auth.CheckResponse{}
	}
	return auth.CheckResponse{Authenticated: true, User: s.user}
}

func testCookies() SessionCookies {
	return SessionCookies{
		Config: config.CookieConfig{Name: "token", SameSite: "lax"},
		Now:    func() time.Time { return testNow },
	}
}

func testUser() *users.UserDTO {
	return &users.UserDTO{ID: uuid.New(), Identity: "alice", Role: enums.RoleUser}
}

func withPrincipal(r *http.Request, identity string, role enums.Role) *http.Request {
	ctx := middleware.WithPrincipal(r.Context(), middleware.Principal{ID: uuid.New(), Identity: identity, Role: role})
	return r.WithContext(ctx)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Error.Code
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	t.Fatalf("session cookie not set")
	return nil
}

func TestAuthLoginSetsCookie(t *testing.T) {
	user := testUser()
	svc := &stubAuthService{session: &auth.Session{Token: "signed", ExpiresAt: testNow.Add(7 * 24 * time.Hour), User: user}}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"identity":" alice ","password":"Secret123!"}`))
	rec := httptest.NewRecorder()
	AuthLogin(svc, testCookies(), nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", svc.lastBody.Identity)

	cookie := sessionCookie(t, rec)
	assert.Equal(t, "signed", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 7*24*60*60, cookie.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	var body auth.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Login successful", body.Message)
	assert.Equal(t, "alice", body.User.Identity)
	assert.NotContains(t, rec.Body.String(), "signed")
}

func TestAuthLoginRejectsBadBody(t *testing.T) {
	svc := &stubAuthService{}
	for _, payload := range []string{``, `{"identity":"al"}`, `{"identity":"alice","password":"Secret123!","role":"admin"}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		AuthLogin(svc, testCookies(), nil).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, payload)
		assert.Equal(t, string(pkgerrors.CodeValidation), decodeError(t, rec), payload)
		assert.Empty(t, rec.Result().Cookies())
	}
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeInvalidCredentials, "invalid user ID or password")}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"identity":"alice","password":"wrong-pass"}`))
	rec := httptest.NewRecorder()
	AuthLogin(svc, testCookies(), nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeInvalidCredentials), decodeError(t, rec))
}

func TestAuthLogoutIsIdempotent(t *testing.T) {
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		AuthLogout(testCookies(), nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		cookie := sessionCookie(t, rec)
		assert.Empty(t, cookie.Value)
		assert.Equal(t, -1, cookie.MaxAge)
	}
}

func TestAuthMe(t *testing.T) {
	svc := &stubAuthService{user: testUser()}
	req := withPrincipal(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), "alice", enums.RoleUser)
	rec := httptest.NewRecorder()
	AuthMe(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", svc.lastID)

	var body auth.CurrentUserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice", body.User.Identity)
}

func TestAuthRefreshReissuesCookie(t *testing.T) {
	svc := &stubAuthService{session: &auth.Session{Token: "fresh", ExpiresAt: testNow.Add(time.Hour), User: testUser()}}
	req := withPrincipal(httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil), "alice", enums.RoleUser)
	rec := httptest.NewRecorder()
	AuthRefresh(svc, testCookies(), nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fresh", sessionCookie(t, rec).Value)
	assert.Contains(t, rec.Body.String(), "Token refreshed successfully")
}

func TestAuthCheckNeverFails(t *testing.T) {
	svc := &stubAuthService{user: testUser()}

	rec := httptest.NewRecorder()
	AuthCheck(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/check", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"authenticated":false,"user":null}`, rec.Body.String())

	rec = httptest.NewRecorder()
	req := withPrincipal(httptest.NewRequest(http.MethodGet, "/api/auth/check", nil), "alice", enums.RoleUser)
	AuthCheck(svc).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":true`)
}
