package mysql

import (
	"context"
	"fmt"

	"entgen/internal/core"
	"entgen/internal/pool"
)

// fkRow is one scanned row of the foreign-key query: one column pair,
// ordered by constraint then position.
type fkRow struct {
	ConstraintName string
	PrimaryTable   string
	FKColumn       string
	PKColumn       string
	DeleteRule     string
	UpdateRule     string
}

func (r *reader) readForeignKeys(ctx context.Context, conn *pool.Conn, t *core.Table) error {
	if cached, ok := r.fks.Get(r.dsn, t.SchemaName, t.TableName); ok {
		return addForeignKeys(t, cached)
	}

	expr, args := r.schemaExpr()
	rows, err := conn.DB().QueryContext(ctx, `
		SELECT
			kcu.CONSTRAINT_NAME,
			kcu.REFERENCED_TABLE_NAME,
			kcu.COLUMN_NAME,
			kcu.REFERENCED_COLUMN_NAME,
			rc.DELETE_RULE,
			rc.UPDATE_RULE
		FROM information_schema.KEY_COLUMN_USAGE kcu
		JOIN information_schema.REFERENTIAL_CONSTRAINTS rc
			ON rc.CONSTRAINT_SCHEMA = kcu.CONSTRAINT_SCHEMA
			AND rc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME
		WHERE kcu.TABLE_SCHEMA = `+expr+`
			AND kcu.TABLE_NAME = ?
			AND kcu.REFERENCED_TABLE_NAME IS NOT NULL
		ORDER BY kcu.CONSTRAINT_NAME, kcu.ORDINAL_POSITION
	`, append(args, t.TableName)...)
	if err != nil {
		return &core.ConnectivityError{Table: t.TableName, Err: fmt.Errorf("failed to read foreign keys: %w", err)}
	}
	defer rows.Close()

	var scanned []fkRow
	for rows.Next() {
		var fr fkRow
		if err := rows.Scan(&fr.ConstraintName, &fr.PrimaryTable, &fr.FKColumn, &fr.PKColumn, &fr.DeleteRule, &fr.UpdateRule); err != nil {
			return &core.ConnectivityError{Table: t.TableName, Err: err}
		}
		scanned = append(scanned, fr)
	}
	if err := rows.Err(); err != nil {
		return &core.ConnectivityError{Table: t.TableName, Err: err}
	}

	fks := buildForeignKeys(scanned)
	r.fks.Put(r.dsn, t.SchemaName, t.TableName, fks)
	return addForeignKeys(t, fks)
}

// buildForeignKeys groups the flat pair list by constraint name. MySQL
// cannot disable a foreign key, so IsEnabled is always true.
func buildForeignKeys(rows []fkRow) []*core.ForeignKey {
	var fks []*core.ForeignKey
	byName := make(map[string]*core.ForeignKey)
	for _, fr := range rows {
		fk, ok := byName[fr.ConstraintName]
		if !ok {
			fk = &core.ForeignKey{
				Name:         fr.ConstraintName,
				PrimaryTable: fr.PrimaryTable,
				DeleteRule:   core.NormalizeRule(fr.DeleteRule),
				UpdateRule:   core.NormalizeRule(fr.UpdateRule),
				IsEnabled:    true,
			}
			byName[fr.ConstraintName] = fk
			fks = append(fks, fk)
		}
		fk.ColumnPairs = append(fk.ColumnPairs, core.ColumnPair{
			ForeignKeyColumn: fr.FKColumn,
			PrimaryKeyColumn: fr.PKColumn,
		})
	}
	return fks
}

// addForeignKeys attaches clones so later annotation of the table's
// copies never leaks back into the shared cache.
func addForeignKeys(t *core.Table, fks []*core.ForeignKey) error {
	for _, fk := range fks {
		if err := t.AddForeignKey(fk.Clone()); err != nil {
			return err
		}
	}
	return nil
}
