package core

import (
	"errors"
	"fmt"
	"strings"
)

// Construction runs through NewTable plus the Set/Add methods below.
// Each one validates the invariants the rest of the system relies on
// and returns a SchemaError on violation, so a malformed catalog row
// can never produce a malformed in-memory table.

// NewTable creates an empty table and validates its identity.
func NewTable(schemaName, tableName string) (*Table, error) {
	if strings.TrimSpace(tableName) == "" {
		return nil, &SchemaError{Err: errors.New("table name is empty")}
	}
	return &Table{SchemaName: schemaName, TableName: tableName}, nil
}

// characterVaryingFamily lists the vendor tokens that must carry a max
// length.
var characterVaryingFamily = map[string]bool{
	"varchar":           true,
	"nvarchar":          true,
	"varbinary":         true,
	"character varying": true,
}

// SetColumns installs the ordered column list. Ordinals must be 1..n
// without gaps; decimal columns must carry a precision and
// character-varying columns a max length.
func (t *Table) SetColumns(cols []*Column) error {
	for i, c := range cols {
		if strings.TrimSpace(c.Name) == "" {
			return &SchemaError{Table: t.TableName, Err: fmt.Errorf("column %d has no name", i+1)}
		}
		if c.Ordinal != i+1 {
			return &SchemaError{
				Table: t.TableName,
				Err:   fmt.Errorf("column %s: ordinal %d out of sequence, want %d", c.Name, c.Ordinal, i+1),
			}
		}
		if c.Type == "decimal" && c.Precision == nil {
			return &SchemaError{
				Table: t.TableName,
				Err:   fmt.Errorf("column %s: decimal without precision", c.Name),
			}
		}
		if characterVaryingFamily[strings.ToLower(c.RawType)] && c.MaxLength == nil {
			return &SchemaError{
				Table: t.TableName,
				Err:   fmt.Errorf("column %s: %s without max length", c.Name, c.RawType),
			}
		}
	}
	t.Columns = cols
	return nil
}

// AddIndex appends an index after validating its column ordinals and
// the one-primary-key-index rule, then wires the ParticipatingIndexes
// back-references on the covered columns.
func (t *Table) AddIndex(idx *Index) error {
	if strings.TrimSpace(idx.Name) == "" {
		return &SchemaError{Table: t.TableName, Err: errors.New("index has no name")}
	}
	if idx.IsPrimaryKey && !idx.IsUnique {
		return &SchemaError{
			Table: t.TableName,
			Err:   fmt.Errorf("index %s: primary key index must be unique", idx.Name),
		}
	}
	if idx.IsPrimaryKey && t.PrimaryKeyIndex() != nil {
		return &SchemaError{
			Table: t.TableName,
			Err:   fmt.Errorf("index %s: table already has a primary key index", idx.Name),
		}
	}
	want := 1
	for _, c := range idx.Columns {
		if c.IsIncluded {
			continue
		}
		if c.KeyOrdinal != want {
			return &SchemaError{
				Table: t.TableName,
				Err:   fmt.Errorf("index %s: key ordinal %d out of sequence, want %d", idx.Name, c.KeyOrdinal, want),
			}
		}
		want++
	}
	if want == 1 {
		return &SchemaError{
			Table: t.TableName,
			Err:   fmt.Errorf("index %s has no key columns", idx.Name),
		}
	}

	t.Indexes = append(t.Indexes, idx)
	for _, ic := range idx.Columns {
		if col := t.FindColumn(ic.ColumnName); col != nil {
			col.ParticipatingIndexes = append(col.ParticipatingIndexes, idx)
		}
	}
	return nil
}

// AddForeignKey appends a foreign key after validating its column
// pairs. Composite keys must not repeat a column on either side.
func (t *Table) AddForeignKey(fk *ForeignKey) error {
	if strings.TrimSpace(fk.Name) == "" {
		return &SchemaError{Table: t.TableName, Err: errors.New("foreign key has no name")}
	}
	if strings.TrimSpace(fk.PrimaryTable) == "" {
		return &SchemaError{
			Table: t.TableName,
			Err:   fmt.Errorf("foreign key %s references no table", fk.Name),
		}
	}
	if len(fk.ColumnPairs) == 0 {
		return &SchemaError{
			Table: t.TableName,
			Err:   fmt.Errorf("foreign key %s has no column pairs", fk.Name),
		}
	}
	seenFK := make(map[string]bool, len(fk.ColumnPairs))
	seenPK := make(map[string]bool, len(fk.ColumnPairs))
	for _, p := range fk.ColumnPairs {
		if strings.TrimSpace(p.ForeignKeyColumn) == "" || strings.TrimSpace(p.PrimaryKeyColumn) == "" {
			return &SchemaError{
				Table: t.TableName,
				Err:   fmt.Errorf("foreign key %s has an unnamed column pair", fk.Name),
			}
		}
		fkc := strings.ToLower(p.ForeignKeyColumn)
		pkc := strings.ToLower(p.PrimaryKeyColumn)
		if seenFK[fkc] {
			return &SchemaError{
				Table: t.TableName,
				Err:   fmt.Errorf("foreign key %s repeats column %s", fk.Name, p.ForeignKeyColumn),
			}
		}
		if seenPK[pkc] {
			return &SchemaError{
				Table: t.TableName,
				Err:   fmt.Errorf("foreign key %s repeats referenced column %s", fk.Name, p.PrimaryKeyColumn),
			}
		}
		seenFK[fkc] = true
		seenPK[pkc] = true
	}
	t.ForeignKeys = append(t.ForeignKeys, fk)
	return nil
}
