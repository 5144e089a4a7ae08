package introspect

import "entgen/internal/core"

// OneToOneHint is appended to the comment of a foreign key whose
// single column is covered by a width-1 non-primary unique index.
// Downstream consumers use it to prefer a one-to-one mapping.
const OneToOneHint = " [One-to-One Relationship]"

// MarkOneToOneHints annotates qualifying foreign keys on every table.
// Runs after all batches have completed, on the merged table list.
func MarkOneToOneHints(tables []*core.Table) {
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			if fk.IsCompositeKey() || len(fk.ColumnPairs) == 0 {
				continue
			}
			if coveredByUniqueIndex(t, fk.ForeignKeyColumn()) {
				fk.Comment += OneToOneHint
			}
		}
	}
}

// DropSkipped filters out tables flagged by MarkSkipped after a
// table-local schema error, preserving order.
func DropSkipped(tables []*core.Table) []*core.Table {
	out := tables[:0:0]
	for _, t := range tables {
		if !t.IsSkipped() {
			out = append(out, t)
		}
	}
	return out
}

func coveredByUniqueIndex(t *core.Table, column string) bool {
	for _, idx := range t.UniqueNonPrimaryIndexes() {
		if idx.CoversExactly([]string{column}) {
			return true
		}
	}
	return false
}
