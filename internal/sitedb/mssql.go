// file: mssql.go
package sitedb

import (
	"context"
	"fmt"
	"net/url"

	_ "github.com/microsoft/go-mssqldb"
)

type MSSQLConnector struct {
	baseConnector
}

func newMSSQLConnector(cfg ConnectionConfig) (*MSSQLConnector, error) {
	if cfg.Port == 0 {
		cfg.Port = 1433
	}
	user := url.QueryEscape(cfg.User)
	pass := url.QueryEscape(cfg.Password)
	// Site SQL Servers run on plant networks with self-signed certificates, so
	// the transport is pinned to no encryption with the server cert trusted.
	dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s&encrypt=disable&TrustServerCertificate=true", user, pass, cfg.Host, cfg.Port, cfg.Database)
	db, err := openDatabase("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mssql connection: %w", err)
	}
	return &MSSQLConnector{baseConnector{cfg: cfg, db: db}}, nil
}

func quoteMSSQL(s string) string { return "[" + s + "]" }

func (c *MSSQLConnector) ListAlertTables(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_TYPE = 'BASE TABLE' AND TABLE_CATALOG = DB_NAME() AND (TABLE_NAME LIKE @p1 OR TABLE_NAME LIKE @p2 OR TABLE_NAME LIKE @p3) ORDER BY TABLE_NAME",
		alertTablePatterns[0], alertTablePatterns[1], alertTablePatterns[2])
	if err != nil {
		return nil, fmt.Errorf("list mssql tables: %w", err)
	}
	defer rows.Close()
	results := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan mssql table name: %w", err)
		}
		results = append(results, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mssql tables: %w", err)
	}
	return results, nil
}

func (c *MSSQLConnector) TableColumns(ctx context.Context, table string) ([]string, error) {
	if err := checkIdentifier(table); err != nil {
		return nil, err
	}
	stmt, err := c.db.PrepareContext(ctx, "SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_CATALOG = DB_NAME() AND TABLE_NAME = @p1 ORDER BY ORDINAL_POSITION")
	if err != nil {
		return nil, fmt.Errorf("prepare mssql columns query: %w", err)
	}
	defer stmt.Close()
	rows, err := stmt.QueryContext(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("query mssql columns: %w", err)
	}
	defer rows.Close()
	columns := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan mssql column: %w", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mssql columns: %w", err)
	}
	return columns, nil
}

func (c *MSSQLConnector) QueryRecent(ctx context.Context, table string, limit int) ([]map[string]any, error) {
	if err := checkIdentifier(table); err != nil {
		return nil, err
	}
	columns, err := c.TableColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT TOP (@p1) * FROM %s%s", quoteMSSQL(table), orderClause(columns, quoteMSSQL))
	stmt, err := c.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("prepare mssql recent query: %w", err)
	}
	defer stmt.Close()
	rows, err := stmt.QueryContext(ctx, normalizeRowLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query mssql recent rows: %w", err)
	}
	defer rows.Close()
	result, err := scanRowsToMaps(rows)
	if err != nil {
		return nil, fmt.Errorf("scan mssql recent rows: %w", err)
	}
	return result, nil
}
