package auth

import (
	"time"

	"github.com/harborline/shipline-backend/internal/users"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Identity string `json:"identity" validate:"required,min=3,max=50,identity"`
	Password string `json:"password" validate:"required,min=6,max=128" sanitize:"-"`
}

// Session is a freshly minted token together with the account it belongs to.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *users.UserDTO
}

// SessionResponse is returned by login and refresh; the token itself only
// travels in the cookie.
type SessionResponse struct {
	Message string         `json:"message"`
	User    *users.UserDTO `json:"user"`
}

type CurrentUserResponse struct {
	User *users.UserDTO `json:"user"`
}

// CheckResponse reports the caller's session state without failing.
type CheckResponse struct {
	Authenticated bool           `json:"authenticated"`
	User          *users.UserDTO `json:"user"`
}
