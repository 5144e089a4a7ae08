package mysql

import (
	"context"
	"fmt"

	"entgen/internal/core"
)

func (r *reader) enumerateTables(ctx context.Context) ([]*core.Table, error) {
	conn, err := r.pool.Acquire(ctx, r.dsn)
	if err != nil {
		return nil, err
	}
	defer r.pool.Release(conn)

	expr, args := r.schemaExpr()
	rows, err := conn.DB().QueryContext(ctx, `
		SELECT TABLE_SCHEMA, TABLE_NAME, TABLE_COMMENT
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = `+expr+` AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
	`, args...)
	if err != nil {
		return nil, &core.ConnectivityError{Err: fmt.Errorf("failed to enumerate tables: %w", err)}
	}
	defer rows.Close()

	var tables []*core.Table
	for rows.Next() {
		var schemaName, tableName, comment string
		if err := rows.Scan(&schemaName, &tableName, &comment); err != nil {
			return nil, &core.ConnectivityError{Err: err}
		}
		t, err := core.NewTable(schemaName, tableName)
		if err != nil {
			return nil, err
		}
		t.Comment = comment
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.ConnectivityError{Err: err}
	}
	return tables, nil
}
