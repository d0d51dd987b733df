// file: connector.go
package sitedb

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
)

const DefaultRowLimit = 100

// SiteConnector is a live handle to one external site database. Implementations
// exist per driver; all of them introspect the target schema at query time
// because site databases are operator-managed and carry no known layout.
type SiteConnector interface {
	Ping(ctx context.Context) error

	// ListAlertTables returns base tables whose names suggest alerting data.
	ListAlertTables(ctx context.Context) ([]string, error)

	// TableColumns returns the column names of a table in ordinal order.
	TableColumns(ctx context.Context, table string) ([]string, error)

	// QueryRecent runs a row-capped SELECT against the table, ordered by the
	// most recent temporal column the introspector can find.
	QueryRecent(ctx context.Context, table string, limit int) ([]map[string]any, error)

	Close() error
}

type ConnectionConfig struct {
	Type     string // mysql | postgres | mssql
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type baseConnector struct {
	cfg ConnectionConfig
	db  *sql.DB
}

func (b *baseConnector) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

func (b *baseConnector) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

var identPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidIdentifier reports whether a database or table name supplied by an
// operator is safe to splice into SQL. This is the only injection gate on the
// site-query path; every entry point must call it before building a statement.
func ValidIdentifier(name string) bool {
	return identPattern.MatchString(name)
}

func checkIdentifier(name string) error {
	if !ValidIdentifier(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

// Temporal columns checked in fixed priority order when choosing how to sort
// an unknown table.
var orderingCandidates = []string{"date_time", "datetime", "timestamp", "created_at", "updated_at", "date", "time"}

// orderClause picks the ORDER BY for an introspected column set: the first
// temporal candidate present sorts descending, otherwise the first column
// sorts ascending. A table with no columns gets no ordering at all.
func orderClause(columns []string, quote func(string) string) string {
	for _, cand := range orderingCandidates {
		for _, col := range columns {
			if strings.EqualFold(col, cand) {
				return " ORDER BY " + quote(col) + " DESC"
			}
		}
	}
	if len(columns) > 0 {
		return " ORDER BY " + quote(columns[0]) + " ASC"
	}
	return ""
}

func normalizeRowLimit(limit int) int {
	if limit <= 0 || limit > DefaultRowLimit {
		return DefaultRowLimit
	}
	return limit
}

func scanRowsToMaps(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	results := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		for i := range values {
			var v any
			values[i] = &v
		}
		if err := rows.Scan(values...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			v := *(values[i].(*any))
			row[col] = normalizeValue(v)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(t)
	default:
		return t
	}
}

var alertTablePatterns = []string{"%alert%", "%event%", "%alarm%"}
