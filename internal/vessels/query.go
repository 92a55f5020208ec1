package vessels

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"gorm.io/gorm"

	"github.com/harborline/shipline-backend/pkg/db"
	"github.com/harborline/shipline-backend/pkg/pagination"
	"github.com/harborline/shipline-backend/pkg/types"
)

const DefaultSort = "-ETA"

// sortColumns is the whitelist of sortable keys and their columns.
var sortColumns = map[string]string{
	"vesselName": "vessel_name",
	"voyageNo":   "voyage_no",
	"country":    "country",
	"portName":   "port_name",
	"ETA":        "eta",
	"ETD":        "etd",
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
}

// ListQuery is the strict query-string schema of the list endpoint.
type ListQuery struct {
	Q          *string `query:"q" validate:"omitempty,max=200"`
	Page       int     `query:"page" default:"1" validate:"min=1,max=1000000"`
	Limit      int     `query:"limit" default:"10" validate:"min=1,max=100"`
	Sort       string  `query:"sort" default:"-ETA" validate:"oneof=vesselName voyageNo country portName ETA ETD createdAt updatedAt -vesselName -voyageNo -country -portName -ETA -ETD -createdAt -updatedAt"`
	VesselName *string `query:"vesselName" validate:"omitempty,max=100"`
	Country    *string `query:"country" validate:"omitempty,max=60"`
	PortName   *string `query:"portName" validate:"omitempty,max=80"`
	FromETA    *string `query:"fromETA" validate:"omitempty,timestamp"`
	ToETA      *string `query:"toETA" validate:"omitempty,timestamp"`
	FromETD    *string `query:"fromETD" validate:"omitempty,timestamp"`
	ToETD      *string `query:"toETD" validate:"omitempty,timestamp"`
}

// ListOptions is the parsed form of ListQuery handed to the repository.
type ListOptions struct {
	Search     string
	VesselName string
	Country    string
	PortName   string
	FromETA    *time.Time
	ToETA      *time.Time
	FromETD    *time.Time
	ToETD      *time.Time
	Sort       string
	Page       pagination.Params
}

// Options parses timestamps and fills defaults.
func (q ListQuery) Options() (ListOptions, error) {
	opts := ListOptions{
		Search:     deref(q.Q),
		VesselName: deref(q.VesselName),
		Country:    deref(q.Country),
		PortName:   deref(q.PortName),
		Sort:       q.Sort,
		Page:       pagination.Params{Page: q.Page, Limit: q.Limit}.Normalize(),
	}
	if opts.Sort == "" {
		opts.Sort = DefaultSort
	}
	if _, _, err := sortClause(opts.Sort); err != nil {
		return ListOptions{}, err
	}

	for _, bound := range []struct {
		raw *string
		dst **time.Time
	}{
		{q.FromETA, &opts.FromETA},
		{q.ToETA, &opts.ToETA},
		{q.FromETD, &opts.FromETD},
		{q.ToETD, &opts.ToETD},
	} {
		if bound.raw == nil || *bound.raw == "" {
			continue
		}
		ts, err := types.ParseTimestamp(*bound.raw)
		if err != nil {
			return ListOptions{}, err
		}
		*bound.dst = &ts
	}
	return opts, nil
}

// Filters echoes the recognised filters back to the caller.
func (q ListQuery) Filters() Filters {
	return Filters{
		Q:          q.Q,
		VesselName: q.VesselName,
		Country:    q.Country,
		PortName:   q.PortName,
		FromETA:    q.FromETA,
		ToETA:      q.ToETA,
		FromETD:    q.FromETD,
		ToETD:      q.ToETD,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// sortClause maps a whitelisted key such as "-ETA" to "eta DESC".
func sortClause(key string) (string, string, error) {
	direction := "ASC"
	field := key
	if strings.HasPrefix(key, "-") {
		direction = "DESC"
		field = key[1:]
	}
	column, ok := sortColumns[field]
	if !ok {
		return "", "", fmt.Errorf("unsupported sort key %q", key)
	}
	return column, direction, nil
}

// applyFilters narrows conn to the rows matching opts. All filters combine
// with AND; the free-text terms combine with OR among themselves.
func applyFilters(conn *gorm.DB, opts ListOptions) *gorm.DB {
	if terms := searchTerms(opts.Search); len(terms) > 0 {
		conn = applySearch(conn, terms)
	}
	for _, f := range []struct{ column, needle string }{
		{"vessel_name", opts.VesselName},
		{"country", opts.Country},
		{"port_name", opts.PortName},
	} {
		if f.needle == "" {
			continue
		}
		clause, arg := db.ContainsInsensitive(conn, f.column, f.needle)
		conn = conn.Where(clause, arg)
	}
	if opts.FromETA != nil {
		conn = conn.Where("eta >= ?", *opts.FromETA)
	}
	if opts.ToETA != nil {
		conn = conn.Where("eta <= ?", *opts.ToETA)
	}
	if opts.FromETD != nil {
		conn = conn.Where("etd >= ?", *opts.FromETD)
	}
	if opts.ToETD != nil {
		conn = conn.Where("etd <= ?", *opts.ToETD)
	}
	return conn
}

var searchColumns = []string{"vessel_name", "voyage_no", "country", "port_name"}

func applySearch(conn *gorm.DB, terms []string) *gorm.DB {
	if db.Dialect(conn) == db.DialectPostgres {
		prefixed := make([]string, len(terms))
		for i, term := range terms {
			prefixed[i] = term + ":*"
		}
		return conn.Where("search_vector @@ to_tsquery('simple', ?)", strings.Join(prefixed, " | "))
	}

	var clauses []string
	var args []any
	for _, term := range terms {
		for _, column := range searchColumns {
			clause, arg := db.ContainsInsensitive(conn, column, term)
			clauses = append(clauses, clause)
			args = append(args, arg)
		}
	}
	return conn.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// searchTerms splits free text into lowercase alphanumeric words so they are
// safe to splice into a tsquery.
func searchTerms(raw string) []string {
	words := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(words))
	terms := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		terms = append(terms, w)
	}
	return terms
}
