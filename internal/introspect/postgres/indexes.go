package postgres

import (
	"context"
	"fmt"

	"entgen/internal/core"
	"entgen/internal/pool"
)

// indexRow is one scanned row of the index query: one key column,
// ordered by index then key position.
type indexRow struct {
	IndexName    string
	IsUnique     bool
	IsPrimary    bool
	Method       string
	ColumnName   string
	Position     int
	IsDescending bool
}

func (r *reader) readIndexes(ctx context.Context, conn *pool.Conn, t *core.Table) error {
	rows, err := conn.DB().QueryContext(ctx, `
		SELECT
			ci.relname,
			i.indisunique,
			i.indisprimary,
			am.amname,
			a.attname,
			k.ord,
			(i.indoption[k.ord - 1] & 1) = 1
		FROM pg_index i
		JOIN pg_class ci ON ci.oid = i.indexrelid
		JOIN pg_class ct ON ct.oid = i.indrelid
		JOIN pg_namespace n ON n.oid = ct.relnamespace
		JOIN pg_am am ON am.oid = ci.relam
		CROSS JOIN LATERAL unnest(i.indkey) WITH ORDINALITY AS k(attnum, ord)
		JOIN pg_attribute a ON a.attrelid = ct.oid AND a.attnum = k.attnum
		WHERE n.nspname = $1 AND ct.relname = $2
		ORDER BY ci.relname, k.ord
	`, t.SchemaName, t.TableName)
	if err != nil {
		return &core.ConnectivityError{Table: t.TableName, Err: fmt.Errorf("failed to read indexes: %w", err)}
	}
	defer rows.Close()

	var scanned []indexRow
	for rows.Next() {
		var ir indexRow
		if err := rows.Scan(&ir.IndexName, &ir.IsUnique, &ir.IsPrimary, &ir.Method, &ir.ColumnName, &ir.Position, &ir.IsDescending); err != nil {
			return &core.ConnectivityError{Table: t.TableName, Err: err}
		}
		scanned = append(scanned, ir)
	}
	if err := rows.Err(); err != nil {
		return &core.ConnectivityError{Table: t.TableName, Err: err}
	}

	for _, idx := range buildIndexes(scanned) {
		if err := t.AddIndex(idx); err != nil {
			return err
		}
	}
	return nil
}

// buildIndexes groups the flat row list by index name. PostgreSQL does
// not distinguish included columns here, so IsIncluded stays false.
func buildIndexes(rows []indexRow) []*core.Index {
	var indexes []*core.Index
	byName := make(map[string]*core.Index)
	for _, ir := range rows {
		idx, ok := byName[ir.IndexName]
		if !ok {
			idx = &core.Index{
				Name:         ir.IndexName,
				IsUnique:     ir.IsUnique,
				IsPrimaryKey: ir.IsPrimary,
				Type:         ir.Method,
			}
			byName[ir.IndexName] = idx
			indexes = append(indexes, idx)
		}
		idx.Columns = append(idx.Columns, core.IndexColumn{
			ColumnName:   ir.ColumnName,
			KeyOrdinal:   ir.Position,
			IsDescending: ir.IsDescending,
		})
	}
	return indexes
}
