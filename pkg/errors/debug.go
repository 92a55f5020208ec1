package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/harborline/shipline-backend/pkg/types"
)

// ErrorDump is the log-oriented view of an error chain.
type ErrorDump struct {
	TopMessage string             `json:"top_message"`
	Code       Code               `json:"code,omitempty"`
	Message    string             `json:"message,omitempty"`
	Fields     []types.FieldError `json:"fields,omitempty"`

	Chain []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
}

// fieldErrorer is implemented by storage hook failures that name the
// offending attributes.
type fieldErrorer interface {
	FieldErrors() []types.FieldError
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}

	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Message = te.Message()
		if fields, ok := te.Details().([]types.FieldError); ok {
			d.Fields = fields
		}
	}
	if len(d.Fields) == 0 {
		var fe fieldErrorer
		if errors.As(err, &fe) {
			d.Fields = fe.FieldErrors()
		}
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		d.PGCode = pgErr.Code
		d.PGConstraint = pgErr.ConstraintName
		d.PGTable = pgErr.TableName
		d.PGColumn = pgErr.ColumnName
		d.PGDetail = pgErr.Detail
	}
	return d
}
