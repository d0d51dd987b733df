// file: postgres.go
package sitedb

import (
	"context"
	"fmt"

	_ "github.com/lib/pq"
)

type PostgresConnector struct {
	baseConnector
}

func newPostgresConnector(cfg ConnectionConfig) (*PostgresConnector, error) {
	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database)
	db, err := openDatabase("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	return &PostgresConnector{baseConnector{cfg: cfg, db: db}}, nil
}

func quotePostgres(s string) string { return `"` + s + `"` }

func (c *PostgresConnector) ListAlertTables(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' AND table_type = 'BASE TABLE' AND (table_name LIKE $1 OR table_name LIKE $2 OR table_name LIKE $3) ORDER BY table_name",
		alertTablePatterns[0], alertTablePatterns[1], alertTablePatterns[2])
	if err != nil {
		return nil, fmt.Errorf("list postgres tables: %w", err)
	}
	defer rows.Close()
	results := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan postgres table name: %w", err)
		}
		results = append(results, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate postgres tables: %w", err)
	}
	return results, nil
}

func (c *PostgresConnector) TableColumns(ctx context.Context, table string) ([]string, error) {
	if err := checkIdentifier(table); err != nil {
		return nil, err
	}
	stmt, err := c.db.PrepareContext(ctx, "SELECT column_name FROM information_schema.columns WHERE table_schema = 'public' AND table_name = $1 ORDER BY ordinal_position")
	if err != nil {
		return nil, fmt.Errorf("prepare postgres columns query: %w", err)
	}
	defer stmt.Close()
	rows, err := stmt.QueryContext(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("query postgres columns: %w", err)
	}
	defer rows.Close()
	columns := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan postgres column: %w", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate postgres columns: %w", err)
	}
	return columns, nil
}

func (c *PostgresConnector) QueryRecent(ctx context.Context, table string, limit int) ([]map[string]any, error) {
	if err := checkIdentifier(table); err != nil {
		return nil, err
	}
	columns, err := c.TableColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT * FROM %s%s LIMIT $1", quotePostgres(table), orderClause(columns, quotePostgres))
	stmt, err := c.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("prepare postgres recent query: %w", err)
	}
	defer stmt.Close()
	rows, err := stmt.QueryContext(ctx, normalizeRowLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query postgres recent rows: %w", err)
	}
	defer rows.Close()
	result, err := scanRowsToMaps(rows)
	if err != nil {
		return nil, fmt.Errorf("scan postgres recent rows: %w", err)
	}
	return result, nil
}
