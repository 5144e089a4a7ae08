package sqlserver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"entgen/internal/core"
	"entgen/internal/pool"
)

// columnRow is one scanned row of the column catalog query.
type columnRow struct {
	Name        string
	RawType     string
	Ordinal     int
	MaxLength   int64
	Precision   int
	Scale       int
	Nullable    bool
	IsPrimary   bool
	IsIdentity  bool
	IsComputed  bool
	Definition  sql.NullString
	DefaultExpr sql.NullString
	Collation   sql.NullString
	Comment     sql.NullString
}

// readColumns fills the ordered column list. Primary-key flags come
// from the same query via the key-index join.
func (r *reader) readColumns(ctx context.Context, conn *pool.Conn, t *core.Table) error {
	rows, err := conn.DB().QueryContext(ctx, `
		SELECT
			c.name,
			ty.name,
			c.column_id,
			c.max_length,
			c.precision,
			c.scale,
			c.is_nullable,
			CAST(CASE WHEN ic.column_id IS NOT NULL THEN 1 ELSE 0 END AS bit),
			c.is_identity,
			c.is_computed,
			cc.definition,
			dc.definition,
			c.collation_name,
			CAST(ISNULL(ep.value, '') AS nvarchar(max))
		FROM sys.columns c
		JOIN sys.types ty ON c.user_type_id = ty.user_type_id
		LEFT JOIN sys.computed_columns cc
			ON cc.object_id = c.object_id AND cc.column_id = c.column_id
		LEFT JOIN sys.default_constraints dc
			ON dc.parent_object_id = c.object_id AND dc.parent_column_id = c.column_id
		LEFT JOIN sys.indexes pk
			ON pk.object_id = c.object_id AND pk.is_primary_key = 1
		LEFT JOIN sys.index_columns ic
			ON ic.object_id = c.object_id AND ic.index_id = pk.index_id AND ic.column_id = c.column_id
		LEFT JOIN sys.extended_properties ep
			ON ep.major_id = c.object_id AND ep.minor_id = c.column_id
			AND ep.class = 1 AND ep.name = 'MS_Description'
		WHERE c.object_id = OBJECT_ID(@p1)
		ORDER BY c.column_id
	`, t.QualifiedName())
	if err != nil {
		return &core.ConnectivityError{Table: t.TableName, Err: fmt.Errorf("failed to read columns: %w", err)}
	}
	defer rows.Close()

	var scanned []columnRow
	for rows.Next() {
		var cr columnRow
		if err := rows.Scan(
			&cr.Name, &cr.RawType, &cr.Ordinal, &cr.MaxLength, &cr.Precision, &cr.Scale,
			&cr.Nullable, &cr.IsPrimary, &cr.IsIdentity, &cr.IsComputed,
			&cr.Definition, &cr.DefaultExpr, &cr.Collation, &cr.Comment,
		); err != nil {
			return &core.ConnectivityError{Table: t.TableName, Err: err}
		}
		scanned = append(scanned, cr)
	}
	if err := rows.Err(); err != nil {
		return &core.ConnectivityError{Table: t.TableName, Err: err}
	}

	cols := buildColumns(scanned)
	return t.SetColumns(cols)
}

// buildColumns converts scanned catalog rows into model columns,
// renumbering ordinals densely (dropped columns leave gaps in
// sys.columns.column_id).
func buildColumns(rows []columnRow) []*core.Column {
	cols := make([]*core.Column, 0, len(rows))
	for i, cr := range rows {
		raw := strings.ToLower(cr.RawType)
		col := &core.Column{
			Name:         cr.Name,
			RawType:      raw,
			Type:         core.CanonicalType(core.DialectSQLServer, raw),
			Ordinal:      i + 1,
			Nullable:     cr.Nullable,
			IsPrimaryKey: cr.IsPrimary,
			IsIdentity:   cr.IsIdentity,
			IsComputed:   cr.IsComputed,
			IsRowVersion: raw == "timestamp" || raw == "rowversion",
			Collation:    cr.Collation.String,
			Comment:      cr.Comment.String,
		}
		if cr.IsComputed {
			col.ComputedExpression = cr.Definition.String
			col.Generated = core.GeneratedComputed
		}
		if cr.DefaultExpr.Valid && cr.DefaultExpr.String != "" {
			v := cr.DefaultExpr.String
			col.DefaultValue = &v
		}
		if hasMaxLength(raw) {
			length := cr.MaxLength
			// nvarchar/nchar report byte counts; -1 means max.
			if length > 0 && (raw == "nvarchar" || raw == "nchar") {
				length /= 2
			}
			col.MaxLength = &length
		}
		if col.Type == core.TypeDecimal {
			p, s := cr.Precision, cr.Scale
			col.Precision = &p
			col.Scale = &s
		}
		cols = append(cols, col)
	}
	return cols
}

func hasMaxLength(rawType string) bool {
	switch rawType {
	case "char", "varchar", "nchar", "nvarchar", "binary", "varbinary":
		return true
	}
	return false
}
