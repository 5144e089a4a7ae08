package postgres

import (
	"context"
	"fmt"

	"entgen/internal/core"
	"entgen/internal/pool"
)

// fkRow is one scanned row of the foreign-key query: one column pair,
// ordered by constraint then pair position. Delete and update rules
// arrive as the single-character pg_constraint codes.
type fkRow struct {
	ConstraintName string
	PrimaryTable   string
	FKColumn       string
	PKColumn       string
	DeleteCode     string
	UpdateCode     string
	IsValidated    bool
}

func (r *reader) readForeignKeys(ctx context.Context, conn *pool.Conn, t *core.Table) error {
	if cached, ok := r.fks.Get(r.dsn, t.SchemaName, t.TableName); ok {
		return addForeignKeys(t, cached)
	}

	rows, err := conn.DB().QueryContext(ctx, `
		SELECT
			con.conname,
			cf.relname,
			a.attname,
			af.attname,
			con.confdeltype::text,
			con.confupdtype::text,
			con.convalidated
		FROM pg_constraint con
		JOIN pg_class c ON c.oid = con.conrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_class cf ON cf.oid = con.confrelid
		CROSS JOIN LATERAL unnest(con.conkey, con.confkey) WITH ORDINALITY AS k(attnum, fattnum, ord)
		JOIN pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum
		JOIN pg_attribute af ON af.attrelid = con.confrelid AND af.attnum = k.fattnum
		WHERE con.contype = 'f' AND n.nspname = $1 AND c.relname = $2
		ORDER BY con.conname, k.ord
	`, t.SchemaName, t.TableName)
	if err != nil {
		return &core.ConnectivityError{Table: t.TableName, Err: fmt.Errorf("failed to read foreign keys: %w", err)}
	}
	defer rows.Close()

	var scanned []fkRow
	for rows.Next() {
		var fr fkRow
		if err := rows.Scan(&fr.ConstraintName, &fr.PrimaryTable, &fr.FKColumn, &fr.PKColumn, &fr.DeleteCode, &fr.UpdateCode, &fr.IsValidated); err != nil {
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

// buildForeignKeys groups the flat pair list by constraint name.
func buildForeignKeys(rows []fkRow) []*core.ForeignKey {
	var fks []*core.ForeignKey
	byName := make(map[string]*core.ForeignKey)
	for _, fr := range rows {
		fk, ok := byName[fr.ConstraintName]
		if !ok {
			fk = &core.ForeignKey{
				Name:         fr.ConstraintName,
				PrimaryTable: fr.PrimaryTable,
				DeleteRule:   core.NormalizeRule(fr.DeleteCode),
				UpdateRule:   core.NormalizeRule(fr.UpdateCode),
				IsEnabled:    fr.IsValidated,
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
