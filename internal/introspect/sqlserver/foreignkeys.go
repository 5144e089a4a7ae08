package sqlserver

import (
	"context"
	"fmt"

	"entgen/internal/core"
	"entgen/internal/pool"
)

// fkRow is one scanned row of the foreign-key catalog query: one
// column pair, ordered by constraint then constraint-column position.
type fkRow struct {
	ConstraintName string
	PrimaryTable   string
	FKColumn       string
	PKColumn       string
	DeleteAction   string
	UpdateAction   string
	IsDisabled     bool
}

func (r *reader) readForeignKeys(ctx context.Context, conn *pool.Conn, t *core.Table) error {
	if cached, ok := r.fks.Get(r.dsn, t.SchemaName, t.TableName); ok {
		return addForeignKeys(t, cached)
	}

	rows, err := conn.DB().QueryContext(ctx, `
		SELECT
			fk.name,
			OBJECT_NAME(fk.referenced_object_id),
			COL_NAME(fkc.parent_object_id, fkc.parent_column_id),
			COL_NAME(fkc.referenced_object_id, fkc.referenced_column_id),
			fk.delete_referential_action_desc,
			fk.update_referential_action_desc,
			fk.is_disabled
		FROM sys.foreign_keys fk
		JOIN sys.foreign_key_columns fkc
			ON fkc.constraint_object_id = fk.object_id
		WHERE fk.parent_object_id = OBJECT_ID(@p1)
		ORDER BY fk.object_id, fkc.constraint_column_id
	`, t.QualifiedName())
	if err != nil {
		return &core.ConnectivityError{Table: t.TableName, Err: fmt.Errorf("failed to read foreign keys: %w", err)}
	}
	defer rows.Close()

	var scanned []fkRow
	for rows.Next() {
		var fr fkRow
		if err := rows.Scan(
			&fr.ConstraintName, &fr.PrimaryTable, &fr.FKColumn, &fr.PKColumn,
			&fr.DeleteAction, &fr.UpdateAction, &fr.IsDisabled,
		); err != nil {
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

// buildForeignKeys groups the flat pair list by constraint name,
// preserving constraint-column order. Action descriptors arrive
// verbatim (NO_ACTION, CASCADE, SET_NULL, SET_DEFAULT) and are
// normalized onto the closed rule set.
func buildForeignKeys(rows []fkRow) []*core.ForeignKey {
	var fks []*core.ForeignKey
	byName := make(map[string]*core.ForeignKey)
	for _, fr := range rows {
		fk, ok := byName[fr.ConstraintName]
		if !ok {
			fk = &core.ForeignKey{
				Name:         fr.ConstraintName,
				PrimaryTable: fr.PrimaryTable,
				DeleteRule:   core.NormalizeRule(fr.DeleteAction),
				UpdateRule:   core.NormalizeRule(fr.UpdateAction),
				IsEnabled:    !fr.IsDisabled,
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
