package postgres

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

	rows, err := conn.DB().QueryContext(ctx, `
		SELECT n.nspname, c.relname, COALESCE(obj_description(c.oid, 'pg_class'), '')
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relkind = 'r'
		ORDER BY c.relname
	`, r.schema)
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
