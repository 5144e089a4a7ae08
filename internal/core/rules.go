package core

import "strings"

// Rule is a referential action on delete or update. Values are drawn
// from the closed set below; dialect readers normalize vendor tokens
// through NormalizeRule.
type Rule string

const (
	RuleNoAction   Rule = "NO ACTION"
	RuleRestrict   Rule = "RESTRICT"
	RuleCascade    Rule = "CASCADE"
	RuleSetNull    Rule = "SET NULL"
	RuleSetDefault Rule = "SET DEFAULT"
)

// Rules returns all valid rule values.
func Rules() []Rule {
	return []Rule{RuleNoAction, RuleRestrict, RuleCascade, RuleSetNull, RuleSetDefault}
}

// NormalizeRule maps a vendor referential-action token onto the closed
// rule set. It accepts SQL Server action descriptors (NO_ACTION,
// SET_NULL, ...), the information_schema spellings (NO ACTION, SET
// NULL, ...) and the single-character pg_constraint codes (a, r, c, n,
// d). Unrecognized or empty tokens fall back to NO ACTION.
func NormalizeRule(token string) Rule {
	t := strings.ToUpper(strings.TrimSpace(token))
	t = strings.ReplaceAll(t, "_", " ")

	switch t {
	case "A", "NO ACTION", "NONE", "":
		return RuleNoAction
	case "R", "RESTRICT":
		return RuleRestrict
	case "C", "CASCADE":
		return RuleCascade
	case "N", "SET NULL":
		return RuleSetNull
	case "D", "SET DEFAULT":
		return RuleSetDefault
	default:
		return RuleNoAction
	}
}
