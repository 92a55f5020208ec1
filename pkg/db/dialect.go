package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Dialect names the SQL dialect behind conn.
func Dialect(conn *gorm.DB) string {
	if conn == nil || conn.Dialector == nil {
		return ""
	}
	return conn.Dialector.Name()
}

// ContainsInsensitive renders a case-insensitive substring predicate for
// column and returns it with its bound argument. The needle is matched
// literally.
func ContainsInsensitive(conn *gorm.DB, column, needle string) (string, string) {
	op := "LIKE"
	if Dialect(conn) == DialectPostgres {
		op = "ILIKE"
	}
	return fmt.Sprintf(`%s %s ? ESCAPE '\'`, column, op), "%" + likeEscaper.Replace(needle) + "%"
}

// EpochSeconds renders an expression yielding column as Unix seconds.
func EpochSeconds(conn *gorm.DB, column string) string {
	if Dialect(conn) == DialectPostgres {
		return fmt.Sprintf("CAST(EXTRACT(EPOCH FROM %s) AS DOUBLE PRECISION)", column)
	}
	return fmt.Sprintf("CAST(strftime('%%s', %s) AS REAL)", column)
}
