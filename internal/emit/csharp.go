package emit

import (
	"entgen/internal/core"
)

// valueTypes are the canonical tokens that need a "?" suffix when the
// column is nullable.
var valueTypes = map[string]bool{
	core.TypeBool:           true,
	core.TypeByte:           true,
	core.TypeShort:          true,
	core.TypeInt:            true,
	core.TypeLong:           true,
	core.TypeFloat:          true,
	core.TypeDouble:         true,
	core.TypeDecimal:        true,
	core.TypeDateTime:       true,
	core.TypeDateTimeOffset: true,
	core.TypeTimeSpan:       true,
	core.TypeGuid:           true,
}

var canonicalTokens = map[string]bool{
	core.TypeString:         true,
	core.TypeByteArray:      true,
	core.TypeBool:           true,
	core.TypeByte:           true,
	core.TypeShort:          true,
	core.TypeInt:            true,
	core.TypeLong:           true,
	core.TypeFloat:          true,
	core.TypeDouble:         true,
	core.TypeDecimal:        true,
	core.TypeDateTime:       true,
	core.TypeDateTimeOffset: true,
	core.TypeTimeSpan:       true,
	core.TypeGuid:           true,
}

// propertyType maps a column onto the emitted property type. Canonical
// tokens translate directly; anything still vendor-specific falls back
// to string.
func propertyType(c *core.Column) string {
	t := c.Type
	if !canonicalTokens[t] {
		t = core.TypeString
	}
	if c.Nullable && valueTypes[t] {
		return t + "?"
	}
	return t
}

// deleteBehavior maps a referential action onto the emitted delete
// behavior name. Set-default has no direct equivalent and degrades to
// client-side null.
func deleteBehavior(rule core.Rule) string {
	switch rule {
	case core.RuleCascade:
		return "Cascade"
	case core.RuleRestrict:
		return "Restrict"
	case core.RuleSetNull:
		return "SetNull"
	case core.RuleSetDefault:
		return "ClientSetNull"
	default:
		return "NoAction"
	}
}
