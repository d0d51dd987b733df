// file: mysql.go
package sitedb

import (
	"context"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLConnector struct {
	baseConnector
}

func newMySQLConnector(cfg ConnectionConfig) (*MySQLConnector, error) {
	if cfg.Port == 0 {
		cfg.Port = 3306
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&tls=false", cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
	db, err := openDatabase("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql connection: %w", err)
	}
	return &MySQLConnector{baseConnector{cfg: cfg, db: db}}, nil
}

func quoteMySQL(s string) string { return "`" + s + "`" }

func (c *MySQLConnector) ListAlertTables(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE' AND (table_name LIKE ? OR table_name LIKE ? OR table_name LIKE ?) ORDER BY table_name",
		alertTablePatterns[0], alertTablePatterns[1], alertTablePatterns[2])
	if err != nil {
		return nil, fmt.Errorf("list mysql tables: %w", err)
	}
	defer rows.Close()
	results := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan mysql table name: %w", err)
		}
		results = append(results, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mysql tables: %w", err)
	}
	return results, nil
}

func (c *MySQLConnector) TableColumns(ctx context.Context, table string) ([]string, error) {
	if err := checkIdentifier(table); err != nil {
		return nil, err
	}
	stmt, err := c.db.PrepareContext(ctx, "SELECT column_name FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ? ORDER BY ordinal_position")
	if err != nil {
		return nil, fmt.Errorf("prepare mysql columns query: %w", err)
	}
	defer stmt.Close()
	rows, err := stmt.QueryContext(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("query mysql columns: %w", err)
	}
	defer rows.Close()
	columns := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan mysql column: %w", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mysql columns: %w", err)
	}
	return columns, nil
}

func (c *MySQLConnector) QueryRecent(ctx context.Context, table string, limit int) ([]map[string]any, error) {
	if err := checkIdentifier(table); err != nil {
		return nil, err
	}
	columns, err := c.TableColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT * FROM %s%s LIMIT ?", quoteMySQL(table), orderClause(columns, quoteMySQL))
	stmt, err := c.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("prepare mysql recent query: %w", err)
	}
	defer stmt.Close()
	rows, err := stmt.QueryContext(ctx, normalizeRowLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query mysql recent rows: %w", err)
	}
	defer rows.Close()
	result, err := scanRowsToMaps(rows)
	if err != nil {
		return nil, fmt.Errorf("scan mysql recent rows: %w", err)
	}
	return result, nil
}
