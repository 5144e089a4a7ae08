package sqlserver

import (
	"context"
	"fmt"

	"entgen/internal/core"
	"entgen/internal/pool"
)

// indexRow is one scanned row of the index catalog query: one index
// column, ordered by index then key ordinal.
type indexRow struct {
	IndexName    string
	IsUnique     bool
	IsPrimary    bool
	IsDisabled   bool
	TypeDesc     string
	ColumnName   string
	KeyOrdinal   int
	IsDescending bool
	IsIncluded   bool
}

func (r *reader) readIndexes(ctx context.Context, conn *pool.Conn, t *core.Table) error {
	rows, err := conn.DB().QueryContext(ctx, `
		SELECT
			i.name,
			i.is_unique,
			i.is_primary_key,
			i.is_disabled,
			i.type_desc,
			c.name,
			ic.key_ordinal,
			ic.is_descending_key,
			ic.is_included_column
		FROM sys.indexes i
		JOIN sys.index_columns ic
			ON ic.object_id = i.object_id AND ic.index_id = i.index_id
		JOIN sys.columns c
			ON c.object_id = ic.object_id AND c.column_id = ic.column_id
		WHERE i.object_id = OBJECT_ID(@p1) AND i.name IS NOT NULL
		ORDER BY i.index_id, ic.is_included_column, ic.key_ordinal, ic.index_column_id
	`, t.QualifiedName())
	if err != nil {
		return &core.ConnectivityError{Table: t.TableName, Err: fmt.Errorf("failed to read indexes: %w", err)}
	}
	defer rows.Close()

	var scanned []indexRow
	for rows.Next() {
		var ir indexRow
		if err := rows.Scan(
			&ir.IndexName, &ir.IsUnique, &ir.IsPrimary, &ir.IsDisabled, &ir.TypeDesc,
			&ir.ColumnName, &ir.KeyOrdinal, &ir.IsDescending, &ir.IsIncluded,
		); err != nil {
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

// buildIndexes groups the flat row list by index name, preserving the
// declaration order the query returns.
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
				IsDisabled:   ir.IsDisabled,
				Type:         ir.TypeDesc,
			}
			byName[ir.IndexName] = idx
			indexes = append(indexes, idx)
		}
		idx.Columns = append(idx.Columns, core.IndexColumn{
			ColumnName:   ir.ColumnName,
			KeyOrdinal:   ir.KeyOrdinal,
			IsDescending: ir.IsDescending,
			IsIncluded:   ir.IsIncluded,
		})
	}
	return indexes
}
