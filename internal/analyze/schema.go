package analyze

import "entgen/internal/core"

// AnalyzeSchema classifies every ordered pair of distinct tables and
// returns the relationships that could be determined. Unknown pairs
// are filtered out; invalid-argument errors cannot occur here because
// the tables come from introspection.
func (a *Analyzer) AnalyzeSchema(tables []*core.Table) []*core.Relationship {
	var rels []*core.Relationship
	for _, source := range tables {
		for _, target := range tables {
			if source == target {
				continue
			}
			rel, err := a.AnalyzeRelationship(source, target)
			if err != nil {
				a.log.Exception("Skipping table pair", err)
				continue
			}
			if rel.Kind == core.Unknown {
				continue
			}
			rels = append(rels, rel)
		}
	}
	return rels
}
