package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"entgen/internal/core"
	"entgen/internal/pool"
)

// columnRow is one scanned row of the column query. FormattedType is
// the full format_type output including size modifiers, e.g.
// "character varying(255)" or "numeric(10,2)".
type columnRow struct {
	Name          string
	FormattedType string
	NotNull       bool
	Identity      string
	Generated     string
	Expr          sql.NullString
	Comment       sql.NullString
	Collation     sql.NullString
	IsPrimary     bool
}

func (r *reader) readColumns(ctx context.Context, conn *pool.Conn, t *core.Table) error {
	rows, err := conn.DB().QueryContext(ctx, `
		SELECT
			a.attname,
			format_type(a.atttypid, a.atttypmod),
			a.attnotnull,
			a.attidentity::text,
			a.attgenerated::text,
			pg_get_expr(d.adbin, d.adrelid),
			col_description(c.oid, a.attnum),
			co.collname,
			EXISTS (
				SELECT 1 FROM pg_index i
				WHERE i.indrelid = c.oid AND i.indisprimary AND a.attnum = ANY(i.indkey)
			)
		FROM pg_attribute a
		JOIN pg_class c ON c.oid = a.attrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		LEFT JOIN pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
		LEFT JOIN pg_collation co ON co.oid = a.attcollation
		WHERE n.nspname = $1 AND c.relname = $2 AND a.attnum > 0 AND NOT a.attisdropped
		ORDER BY a.attnum
	`, t.SchemaName, t.TableName)
	if err != nil {
		return &core.ConnectivityError{Table: t.TableName, Err: fmt.Errorf("failed to read columns: %w", err)}
	}
	defer rows.Close()

	var scanned []columnRow
	for rows.Next() {
		var cr columnRow
		if err := rows.Scan(
			&cr.Name, &cr.FormattedType, &cr.NotNull, &cr.Identity, &cr.Generated,
			&cr.Expr, &cr.Comment, &cr.Collation, &cr.IsPrimary,
		); err != nil {
			return &core.ConnectivityError{Table: t.TableName, Err: err}
		}
		scanned = append(scanned, cr)
	}
	if err := rows.Err(); err != nil {
		return &core.ConnectivityError{Table: t.TableName, Err: err}
	}

	return t.SetColumns(buildColumns(scanned))
}

// buildColumns converts scanned rows into model columns. The formatted
// type is split into its base name and (n) / (p,s) modifiers; identity
// derives from attidentity and generated storage from attgenerated.
func buildColumns(rows []columnRow) []*core.Column {
	cols := make([]*core.Column, 0, len(rows))
	for i, cr := range rows {
		mods := core.ParseTypeModifiers(cr.FormattedType)
		if mods.MaxLength == nil && unboundedVarying(cr.FormattedType) {
			// Length-less varying types mirror the -1 "max" sentinel
			// the SQL Server catalog uses.
			unbounded := int64(-1)
			mods.MaxLength = &unbounded
		}
		col := &core.Column{
			Name:         cr.Name,
			RawType:      core.BaseType(cr.FormattedType),
			Type:         core.CanonicalType(core.DialectPostgreSQL, cr.FormattedType),
			Ordinal:      i + 1,
			Nullable:     !cr.NotNull,
			IsPrimaryKey: cr.IsPrimary,
			IsIdentity:   cr.Identity != "",
			MaxLength:    mods.MaxLength,
			Precision:    mods.Precision,
			Scale:        mods.Scale,
			Collation:    cr.Collation.String,
			Comment:      cr.Comment.String,
		}
		if cr.Generated != "" {
			col.IsComputed = true
			col.ComputedExpression = cr.Expr.String
			col.Generated = core.GeneratedStored
		} else if cr.Expr.Valid && cr.Expr.String != "" {
			v := cr.Expr.String
			col.DefaultValue = &v
		}
		if cr.Identity == "a" {
			col.Generated = core.GeneratedAlways
		}
		cols = append(cols, col)
	}
	return cols
}

func unboundedVarying(formattedType string) bool {
	switch core.BaseType(formattedType) {
	case "character varying", "varchar", "bit varying", "varbit":
		return true
	}
	return false
}
