package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	pkgerrors "github.com/harborline/shipline-backend/pkg/errors"
)

// IsUniqueViolation reports whether err is a unique-constraint failure. When
// constraintName is provided, the Postgres constraint (or the message, for
// drivers that do not expose it) must reference it.
func IsUniqueViolation(err error, constraintName string) bool {
	if !pkgerrors.IsDuplicateKey(err) {
		return false
	}
	if constraintName == "" {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName != "" {
		return pgErr.ConstraintName == constraintName
	}
	return strings.Contains(err.Error(), constraintName)
}

const pgCheckViolation = "23514"

// IsCheckViolation reports whether err is a Postgres CHECK failure, optionally
// for a specific constraint.
func IsCheckViolation(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgCheckViolation {
		return false
	}
	return constraintName == "" || pgErr.ConstraintName == constraintName
}
