package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"entgen/internal/core"
	"entgen/internal/pool"
)

// columnRow is one scanned row of the column query.
type columnRow struct {
	Name       string
	DataType   string
	ColumnType string
	Nullable   string
	MaxLength  sql.NullInt64
	Precision  sql.NullInt64
	Scale      sql.NullInt64
	Default    sql.NullString
	Extra      string
	Collation  sql.NullString
	GenExpr    sql.NullString
	Comment    string
}

// readColumns fills the ordered column list, then flags primary-key
// columns with a follow-up query against KEY_COLUMN_USAGE.
func (r *reader) readColumns(ctx context.Context, conn *pool.Conn, t *core.Table) error {
	expr, args := r.schemaExpr()
	rows, err := conn.DB().QueryContext(ctx, `
		SELECT
			COLUMN_NAME,
			DATA_TYPE,
			COLUMN_TYPE,
			IS_NULLABLE,
			CHARACTER_MAXIMUM_LENGTH,
			NUMERIC_PRECISION,
			NUMERIC_SCALE,
			COLUMN_DEFAULT,
			EXTRA,
			COLLATION_NAME,
			GENERATION_EXPRESSION,
			COLUMN_COMMENT
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = `+expr+` AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`, append(args, t.TableName)...)
	if err != nil {
		return &core.ConnectivityError{Table: t.TableName, Err: fmt.Errorf("failed to read columns: %w", err)}
	}
	defer rows.Close()

	var scanned []columnRow
	for rows.Next() {
		var cr columnRow
		if err := rows.Scan(
			&cr.Name, &cr.DataType, &cr.ColumnType, &cr.Nullable, &cr.MaxLength,
			&cr.Precision, &cr.Scale, &cr.Default, &cr.Extra, &cr.Collation,
			&cr.GenExpr, &cr.Comment,
		); err != nil {
			return &core.ConnectivityError{Table: t.TableName, Err: err}
		}
		scanned = append(scanned, cr)
	}
	if err := rows.Err(); err != nil {
		return &core.ConnectivityError{Table: t.TableName, Err: err}
	}

	if err := t.SetColumns(buildColumns(scanned)); err != nil {
		return err
	}
	return r.flagPrimaryKeys(ctx, conn, t)
}

// buildColumns converts scanned rows into model columns. Identity and
// generated kinds derive from the EXTRA descriptor.
func buildColumns(rows []columnRow) []*core.Column {
	cols := make([]*core.Column, 0, len(rows))
	for i, cr := range rows {
		raw := strings.ToLower(cr.DataType)
		extra := strings.ToUpper(cr.Extra)
		col := &core.Column{
			Name:       cr.Name,
			RawType:    raw,
			Type:       core.CanonicalType(core.DialectMySQL, cr.ColumnType),
			Ordinal:    i + 1,
			Nullable:   cr.Nullable == "YES",
			IsIdentity: strings.Contains(strings.ToLower(cr.Extra), "auto_increment"),
			Collation:  cr.Collation.String,
			Comment:    cr.Comment,
		}
		if cr.GenExpr.Valid && cr.GenExpr.String != "" {
			col.IsComputed = true
			col.ComputedExpression = cr.GenExpr.String
			switch {
			case strings.Contains(extra, "STORED"):
				col.Generated = core.GeneratedStored
			case strings.Contains(extra, "VIRTUAL"):
				col.Generated = core.GeneratedVirtual
			}
		}
		if cr.Default.Valid {
			v := cr.Default.String
			col.DefaultValue = &v
		}
		if cr.MaxLength.Valid {
			length := cr.MaxLength.Int64
			col.MaxLength = &length
		}
		if col.Type == core.TypeDecimal {
			if cr.Precision.Valid {
				p := int(cr.Precision.Int64)
				col.Precision = &p
			}
			if cr.Scale.Valid {
				s := int(cr.Scale.Int64)
				col.Scale = &s
			}
		}
		cols = append(cols, col)
	}
	return cols
}

// flagPrimaryKeys marks the columns named by the PRIMARY constraint.
func (r *reader) flagPrimaryKeys(ctx context.Context, conn *pool.Conn, t *core.Table) error {
	expr, args := r.schemaExpr()
	rows, err := conn.DB().QueryContext(ctx, `
		SELECT COLUMN_NAME
		FROM information_schema.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = `+expr+` AND TABLE_NAME = ? AND CONSTRAINT_NAME = 'PRIMARY'
		ORDER BY ORDINAL_POSITION
	`, append(args, t.TableName)...)
	if err != nil {
		return &core.ConnectivityError{Table: t.TableName, Err: fmt.Errorf("failed to read primary key: %w", err)}
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return &core.ConnectivityError{Table: t.TableName, Err: err}
		}
		if col := t.FindColumn(name); col != nil {
			col.IsPrimaryKey = true
		}
	}
	if err := rows.Err(); err != nil {
		return &core.ConnectivityError{Table: t.TableName, Err: err}
	}
	return nil
}
