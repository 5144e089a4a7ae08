// Package core contains the single source of truth for the introspected
// database schema. It provides a structured representation of tables,
// columns, indexes and foreign keys for all database engines that we
// support, plus the relationship model the analyzer produces from it.
package core

import "strings"

// Dialect identifies a supported database engine.
type Dialect string

const (
	DialectSQLServer  Dialect = "sqlserver"
	DialectMySQL      Dialect = "mysql"
	DialectPostgreSQL Dialect = "postgresql"
)

// SupportedDialects returns a slice of all supported dialect values.
func SupportedDialects() []Dialect {
	return []Dialect{DialectSQLServer, DialectMySQL, DialectPostgreSQL}
}

// Database represents the introspected database.
type Database struct {
	Name    string
	Dialect Dialect
	Tables  []*Table
}

// FindTable returns the table with the given name, or nil. Lookup is
// case-insensitive because SQL identifiers are.
func (db *Database) FindTable(name string) *Table {
	for _, t := range db.Tables {
		if strings.EqualFold(t.TableName, name) {
			return t
		}
	}
	return nil
}

// Table represents a single user table, identified by (SchemaName,
// TableName). Column order matches the catalog ordinal order.
type Table struct {
	SchemaName  string
	TableName   string
	Comment     string
	Columns     []*Column
	Indexes     []*Index
	ForeignKeys []*ForeignKey

	skipped bool
}

// QualifiedName returns "schema.table".
func (t *Table) QualifiedName() string {
	if t.SchemaName == "" {
		return t.TableName
	}
	return t.SchemaName + "." + t.TableName
}

// FindColumn returns the column with the given name, or nil.
func (t *Table) FindColumn(name string) *Column {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// PrimaryKeyColumns returns the primary-key columns in ordinal order.
func (t *Table) PrimaryKeyColumns() []*Column {
	var pk []*Column
	for _, c := range t.Columns {
		if c.IsPrimaryKey {
			pk = append(pk, c)
		}
	}
	return pk
}

// HasCompositePrimaryKey reports whether the primary key spans two or
// more columns.
func (t *Table) HasCompositePrimaryKey() bool {
	return len(t.PrimaryKeyColumns()) > 1
}

// PrimaryKeyIndex returns the index flagged as the primary key, or nil.
// At most one such index exists per table.
func (t *Table) PrimaryKeyIndex() *Index {
	for _, i := range t.Indexes {
		if i.IsPrimaryKey {
			return i
		}
	}
	return nil
}

// UniqueNonPrimaryIndexes returns all unique indexes that do not back
// the primary key.
func (t *Table) UniqueNonPrimaryIndexes() []*Index {
	var out []*Index
	for _, i := range t.Indexes {
		if i.IsUnique && !i.IsPrimaryKey {
			out = append(out, i)
		}
	}
	return out
}

// MarkSkipped flags the table as unusable after a table-local schema
// error. Skipped tables are filtered out before the schema graph is
// handed to consumers.
func (t *Table) MarkSkipped() { t.skipped = true }

// IsSkipped reports whether the table was flagged by MarkSkipped.
func (t *Table) IsSkipped() bool { return t.skipped }

// GeneratedKind describes how a column value is generated by the engine.
type GeneratedKind string

const (
	GeneratedNone     GeneratedKind = ""
	GeneratedAlways   GeneratedKind = "ALWAYS"
	GeneratedStored   GeneratedKind = "STORED"
	GeneratedVirtual  GeneratedKind = "VIRTUAL"
	GeneratedComputed GeneratedKind = "COMPUTED"
)

// Column represents a table column. Type holds the normalized data-type
// token; RawType preserves the vendor token the catalog reported.
type Column struct {
	Name               string
	Type               string
	RawType            string
	Ordinal            int
	Nullable           bool
	IsPrimaryKey       bool
	IsIdentity         bool
	IsComputed         bool
	ComputedExpression string
	IsRowVersion       bool
	MaxLength          *int64
	Precision          *int
	Scale              *int
	DefaultValue       *string
	Collation          string
	Generated          GeneratedKind
	Comment            string

	// ParticipatingIndexes is a back-reference to indexes that cover
	// this column. The Indexes list on Table remains authoritative.
	ParticipatingIndexes []*Index
}

// Index represents a table index with its ordered column list.
type Index struct {
	Name         string
	IsUnique     bool
	IsPrimaryKey bool
	IsDisabled   bool
	Type         string
	Columns      []IndexColumn
}

// IndexColumn is one column of an index. KeyOrdinal starts at 1 and is
// contiguous across non-included columns.
type IndexColumn struct {
	ColumnName   string
	KeyOrdinal   int
	IsDescending bool
	IsIncluded   bool
}

// KeyColumns returns the non-included columns in key-ordinal order.
func (i *Index) KeyColumns() []IndexColumn {
	var out []IndexColumn
	for _, c := range i.Columns {
		if !c.IsIncluded {
			out = append(out, c)
		}
	}
	return out
}

// CoversExactly reports whether the index's key column set is exactly
// the given column name set, ignoring order and case.
func (i *Index) CoversExactly(columns []string) bool {
	key := i.KeyColumns()
	if len(key) != len(columns) {
		return false
	}
	for _, want := range columns {
		found := false
		for _, kc := range key {
			if strings.EqualFold(kc.ColumnName, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ColumnPair maps one foreign-key column to the referenced primary-key
// column.
type ColumnPair struct {
	ForeignKeyColumn string
	PrimaryKeyColumn string
}

// ForeignKey represents a foreign-key constraint on a table.
type ForeignKey struct {
	Name         string
	PrimaryTable string
	ColumnPairs  []ColumnPair
	DeleteRule   Rule
	UpdateRule   Rule
	IsEnabled    bool
	Comment      string
}

// IsCompositeKey reports whether the constraint spans multiple column
// pairs.
func (fk *ForeignKey) IsCompositeKey() bool { return len(fk.ColumnPairs) > 1 }

// ForeignKeyColumn mirrors ColumnPairs[0].ForeignKeyColumn.
func (fk *ForeignKey) ForeignKeyColumn() string {
	if len(fk.ColumnPairs) == 0 {
		return ""
	}
	return fk.ColumnPairs[0].ForeignKeyColumn
}

// PrimaryKeyColumn mirrors ColumnPairs[0].PrimaryKeyColumn.
func (fk *ForeignKey) PrimaryKeyColumn() string {
	if len(fk.ColumnPairs) == 0 {
		return ""
	}
	return fk.ColumnPairs[0].PrimaryKeyColumn
}

// Clone returns a deep copy of the foreign key.
func (fk *ForeignKey) Clone() *ForeignKey {
	dup := *fk
	dup.ColumnPairs = append([]ColumnPair(nil), fk.ColumnPairs...)
	return &dup
}

// ForeignKeyColumns returns the FK-side column names in pair order.
func (fk *ForeignKey) ForeignKeyColumns() []string {
	cols := make([]string, 0, len(fk.ColumnPairs))
	for _, p := range fk.ColumnPairs {
		cols = append(cols, p.ForeignKeyColumn)
	}
	return cols
}
