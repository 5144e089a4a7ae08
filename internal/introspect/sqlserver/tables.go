package sqlserver

import (
	"context"
	"fmt"

	"entgen/internal/core"
)

// enumerateTables returns every user table of the target schema with
// its comment. Order follows the catalog query and stays stable per
// invocation.
func (r *reader) enumerateTables(ctx context.Context) ([]*core.Table, error) {
	conn, err := r.pool.Acquire(ctx, r.dsn)
	if err != nil {
		return nil, err
	}
	defer r.pool.Release(conn)

	rows, err := conn.DB().QueryContext(ctx, `
		SELECT
			s.name,
			t.name,
			CAST(ISNULL(ep.value, '') AS nvarchar(max))
		FROM sys.tables t
		JOIN sys.schemas s ON t.schema_id = s.schema_id
		LEFT JOIN sys.extended_properties ep
			ON ep.major_id = t.object_id
			AND ep.minor_id = 0
			AND ep.class = 1
			AND ep.name = 'MS_Description'
		WHERE s.name = @p1 AND t.is_ms_shipped = 0
		ORDER BY t.name
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
