package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/harborline/shipline-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	Identity string
	Role     enums.Role
	JTI      string
}

// AccessTokenClaims represents the typed session token issued to clients.
type AccessTokenClaims struct {
	Identity string     `json:"identity"`
	Role     enums.Role `json:"role"`
	jwt.RegisteredClaims
}
