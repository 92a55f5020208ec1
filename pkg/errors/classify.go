package errors

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// Classify maps an untyped failure onto the closed code set. Typed errors are
// returned unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	if typed := As(err); typed != nil {
		return typed
	}

	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return Wrap(CodeRequestTooLarge, err, "request body too large")
	case IsDuplicateKey(err):
		return Wrap(CodeDuplicateResource, err, "resource already exists")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Wrap(CodeResourceNotFound, err, "resource not found")
	case errors.Is(err, jwt.ErrTokenExpired):
		return Wrap(CodeTokenExpired, err, "authentication token has expired")
	case isTokenError(err):
		return Wrap(CodeInvalidToken, err, "invalid authentication token")
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(CodeServiceUnavailable, err, "request timed out")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return Wrap(CodeDatabase, err, "database operation failed")
	}
	return Wrap(CodeInternal, err, "internal server error")
}

// IsDuplicateKey reports unique-constraint violations from either the GORM
// translated sentinel or a raw Postgres error.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isTokenError(err error) bool {
	return errors.Is(err, jwt.ErrTokenMalformed) ||
		errors.Is(err, jwt.ErrTokenSignatureInvalid) ||
		errors.Is(err, jwt.ErrTokenUnverifiable) ||
		errors.Is(err, jwt.ErrTokenNotValidYet) ||
		errors.Is(err, jwt.ErrTokenInvalidClaims)
}
