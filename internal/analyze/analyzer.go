// Package analyze classifies ordered table pairs into relationships.
// Given the normalized schema graph it decides, per pair, between
// one-to-one, one-to-many and many-to-many, identifies junction
// tables, and maps the foreign-key column pairs with their cascade
// rules. The analyzer is stateless and safe to call concurrently.
package analyze

import (
	"errors"
	"fmt"
	"strings"

	"entgen/internal/core"
	"entgen/internal/logging"
)

// maxJunctionPayloadColumns is the number of non-key columns a table
// may carry and still count as a junction table.
const maxJunctionPayloadColumns = 3

// Analyzer classifies table pairs. It is a pure function of its
// inputs: repeated invocations return equal relationships.
type Analyzer struct {
	log *logging.Logger
}

// New creates an analyzer logging to the given sink. A nil sink
// discards diagnostics.
func New(log *logging.Logger) *Analyzer {
	if log == nil {
		log = logging.NewNop()
	}
	return &Analyzer{log: log}
}

// AnalyzeRelationship classifies the ordered pair (source, target).
// Nil inputs are invalid arguments. Any internal fault downgrades the
// result to Unknown and logs a warning; it never fails the run.
func (a *Analyzer) AnalyzeRelationship(source, target *core.Table) (rel *core.Relationship, err error) {
	if source == nil || target == nil {
		return nil, errors.New("analyze relationship: source and target tables must not be nil")
	}
	if source.TableName == "" || target.TableName == "" {
		return nil, errors.New("analyze relationship: source and target tables must be named")
	}
	if len(source.Columns) == 0 {
		a.log.Warnf("Table %s has no columns", source.QualifiedName())
	}

	defer func() {
		if r := recover(); r != nil {
			wrapped := &core.RelationshipAnalysisError{
				Source: source.TableName,
				Target: target.TableName,
				Err:    fmt.Errorf("internal fault: %v", r),
			}
			a.log.Warnf("Relationship analysis failed: %v", wrapped)
			rel = unknown(source, target)
			err = nil
		}
	}()

	fks := candidateForeignKeys(source, target)
	if len(fks) == 0 {
		return unknown(source, target), nil
	}
	fk := fks[0]

	switch {
	case isJunctionTable(source):
		return manyToMany(source, target, fk), nil
	case hasMatchingUniqueIndex(source, fk):
		return oneToOne(source, target, fk), nil
	default:
		return oneToMany(source, target, fk), nil
	}
}

func unknown(source, target *core.Table) *core.Relationship {
	return &core.Relationship{
		Kind:        core.Unknown,
		SourceTable: source.TableName,
		TargetTable: target.TableName,
	}
}

// candidateForeignKeys returns source's enabled, structurally valid
// foreign keys that reference the target table.
func candidateForeignKeys(source, target *core.Table) []*core.ForeignKey {
	var out []*core.ForeignKey
	for _, fk := range source.ForeignKeys {
		if !fk.IsEnabled || !strings.EqualFold(fk.PrimaryTable, target.TableName) {
			continue
		}
		if !structurallyValid(fk) {
			continue
		}
		out = append(out, fk)
	}
	return out
}

func structurallyValid(fk *core.ForeignKey) bool {
	if len(fk.ColumnPairs) == 0 {
		return false
	}
	for _, p := range fk.ColumnPairs {
		if p.ForeignKeyColumn == "" || p.PrimaryKeyColumn == "" {
			return false
		}
	}
	return true
}

// isJunctionTable reports whether the table solely encodes membership
// in a many-to-many relationship: it references at least two distinct
// tables, its composite primary key consists entirely of foreign-key
// columns, and it carries at most a small payload of other columns.
func isJunctionTable(t *core.Table) bool {
	referenced := make(map[string]bool)
	fkColumns := make(map[string]bool)
	for _, fk := range t.ForeignKeys {
		referenced[strings.ToLower(fk.PrimaryTable)] = true
		for _, p := range fk.ColumnPairs {
			fkColumns[strings.ToLower(p.ForeignKeyColumn)] = true
		}
	}
	if len(referenced) < 2 {
		return false
	}

	pk := t.PrimaryKeyColumns()
	if len(pk) < 2 {
		return false
	}
	for _, c := range pk {
		if !fkColumns[strings.ToLower(c.Name)] {
			return false
		}
	}

	nonPK := 0
	for _, c := range t.Columns {
		if !c.IsPrimaryKey {
			nonPK++
		}
	}
	return nonPK <= maxJunctionPayloadColumns
}

// hasMatchingUniqueIndex reports whether a non-primary unique index
// covers exactly the foreign key's column set.
func hasMatchingUniqueIndex(t *core.Table, fk *core.ForeignKey) bool {
	cols := fk.ForeignKeyColumns()
	for _, idx := range t.UniqueNonPrimaryIndexes() {
		if idx.CoversExactly(cols) {
			return true
		}
	}
	return false
}

func foreignKeyInfos(fk *core.ForeignKey) []core.ForeignKeyInfo {
	infos := make([]core.ForeignKeyInfo, 0, len(fk.ColumnPairs))
	for _, p := range fk.ColumnPairs {
		infos = append(infos, core.ForeignKeyInfo{
			ForeignKeyColumn: p.ForeignKeyColumn,
			PrimaryKeyColumn: p.PrimaryKeyColumn,
			DeleteRule:       fk.DeleteRule,
			UpdateRule:       fk.UpdateRule,
		})
	}
	return infos
}

// oneToOne orients the dependent (FK-bearing) table as the source and
// the principal as the target.
func oneToOne(source, target *core.Table, fk *core.ForeignKey) *core.Relationship {
	return &core.Relationship{
		Kind:              core.OneToOne,
		SourceTable:       source.TableName,
		TargetTable:       target.TableName,
		ForeignKeyColumns: foreignKeyInfos(fk),
	}
}

// oneToMany inverts the pair so consumers see the principal as the
// "one side" source and the dependent as the target.
func oneToMany(source, target *core.Table, fk *core.ForeignKey) *core.Relationship {
	return &core.Relationship{
		Kind:              core.OneToMany,
		SourceTable:       target.TableName,
		TargetTable:       source.TableName,
		ForeignKeyColumns: foreignKeyInfos(fk),
	}
}

// manyToMany orients the table referenced by the matched foreign key
// as the source and the junction as the target, attaching the junction
// description.
func manyToMany(source, target *core.Table, fk *core.ForeignKey) *core.Relationship {
	fkColumns := make(map[string]bool)
	var sourceKeys []string
	for _, jfk := range source.ForeignKeys {
		for _, p := range jfk.ColumnPairs {
			if !fkColumns[strings.ToLower(p.ForeignKeyColumn)] {
				fkColumns[strings.ToLower(p.ForeignKeyColumn)] = true
				sourceKeys = append(sourceKeys, p.ForeignKeyColumn)
			}
		}
	}
	var additional []string
	for _, c := range source.Columns {
		if !fkColumns[strings.ToLower(c.Name)] {
			additional = append(additional, c.Name)
		}
	}

	return &core.Relationship{
		Kind:              core.ManyToMany,
		SourceTable:       fk.PrimaryTable,
		TargetTable:       source.TableName,
		ForeignKeyColumns: foreignKeyInfos(fk),
		Junction: &core.JunctionTableInfo{
			TableName:         source.TableName,
			SourceKeyColumns:  sourceKeys,
			AdditionalColumns: additional,
		},
	}
}
