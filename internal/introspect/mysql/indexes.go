package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"entgen/internal/core"
	"entgen/internal/pool"
)

// indexRow is one scanned row of the STATISTICS query: one index
// column, ordered by index then sequence.
type indexRow struct {
	IndexName  string
	NonUnique  int
	IndexType  string
	SeqInIndex int
	ColumnName string
	Collation  sql.NullString
}

func (r *reader) readIndexes(ctx context.Context, conn *pool.Conn, t *core.Table) error {
	expr, args := r.schemaExpr()
	rows, err := conn.DB().QueryContext(ctx, `
		SELECT INDEX_NAME, NON_UNIQUE, INDEX_TYPE, SEQ_IN_INDEX, COLUMN_NAME, COLLATION
		FROM information_schema.STATISTICS
		WHERE TABLE_SCHEMA = `+expr+` AND TABLE_NAME = ?
		ORDER BY INDEX_NAME, SEQ_IN_INDEX
	`, append(args, t.TableName)...)
	if err != nil {
		return &core.ConnectivityError{Table: t.TableName, Err: fmt.Errorf("failed to read indexes: %w", err)}
	}
	defer rows.Close()

	var scanned []indexRow
	for rows.Next() {
		var ir indexRow
		if err := rows.Scan(&ir.IndexName, &ir.NonUnique, &ir.IndexType, &ir.SeqInIndex, &ir.ColumnName, &ir.Collation); err != nil {
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

// buildIndexes groups the flat row list by index name. MySQL does not
// distinguish included columns, so IsIncluded stays false throughout;
// the PRIMARY index carries the primary-key flag.
func buildIndexes(rows []indexRow) []*core.Index {
	var indexes []*core.Index
	byName := make(map[string]*core.Index)
	for _, ir := range rows {
		idx, ok := byName[ir.IndexName]
		if !ok {
			idx = &core.Index{
				Name:         ir.IndexName,
				IsUnique:     ir.NonUnique == 0,
				IsPrimaryKey: ir.IndexName == "PRIMARY",
				Type:         ir.IndexType,
			}
			byName[ir.IndexName] = idx
			indexes = append(indexes, idx)
		}
		idx.Columns = append(idx.Columns, core.IndexColumn{
			ColumnName:   ir.ColumnName,
			KeyOrdinal:   ir.SeqInIndex,
			IsDescending: ir.Collation.String == "D",
		})
	}
	return indexes
}
