package emit

import (
	"strings"
	"unicode"
)

// PascalCase converts a snake_case, kebab-case or lowercase table
// identifier into PascalCase. Existing interior capitals survive, so
// "OrderDetail" stays "OrderDetail" and "order_detail" becomes
// "OrderDetail".
func PascalCase(name string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range name {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			upperNext = true
		case upperNext:
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// irregularPlurals covers the common English irregulars that show up
// in table names. Keys and values are lower case.
var irregularPlurals = map[string]string{
	"person": "people",
	"child":  "children",
	"man":    "men",
	"woman":  "women",
	"foot":   "feet",
	"tooth":  "teeth",
	"mouse":  "mice",
	"goose":  "geese",
}

var irregularSingulars = invert(irregularPlurals)

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// uninflected words are the same in both numbers.
var uninflected = map[string]bool{
	"data": true, "info": true, "media": true, "series": true,
	"species": true, "equipment": true, "news": true, "status": true,
}

// Pluralize returns the English plural of a singular noun, preserving
// the casing of the first letter.
func Pluralize(word string) string {
	if word == "" {
		return word
	}
	lower := strings.ToLower(word)
	if uninflected[lower] {
		return word
	}
	if p, ok := irregularPlurals[lower]; ok {
		return matchCase(word, p)
	}

	switch {
	case strings.HasSuffix(lower, "s"), strings.HasSuffix(lower, "x"),
		strings.HasSuffix(lower, "z"), strings.HasSuffix(lower, "ch"),
		strings.HasSuffix(lower, "sh"):
		return word + "es"
	case strings.HasSuffix(lower, "y") && !endsInVowelY(lower):
		return word[:len(word)-1] + "ies"
	case strings.HasSuffix(lower, "f"):
		return word[:len(word)-1] + "ves"
	case strings.HasSuffix(lower, "fe"):
		return word[:len(word)-2] + "ves"
	default:
		return word + "s"
	}
}

// Singularize returns the English singular of a plural noun. Words
// already singular pass through unchanged for the common cases.
func Singularize(word string) string {
	if word == "" {
		return word
	}
	lower := strings.ToLower(word)
	if uninflected[lower] {
		return word
	}
	if s, ok := irregularSingulars[lower]; ok {
		return matchCase(word, s)
	}

	switch {
	case strings.HasSuffix(lower, "ies") && len(word) > 3:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(lower, "ves") && len(word) > 3:
		return word[:len(word)-3] + "f"
	case strings.HasSuffix(lower, "ses"), strings.HasSuffix(lower, "xes"),
		strings.HasSuffix(lower, "zes"), strings.HasSuffix(lower, "ches"),
		strings.HasSuffix(lower, "shes"):
		return word[:len(word)-2]
	case strings.HasSuffix(lower, "ss"):
		return word
	case strings.HasSuffix(lower, "s"):
		return word[:len(word)-1]
	default:
		return word
	}
}

func endsInVowelY(lower string) bool {
	if len(lower) < 2 {
		return false
	}
	return strings.ContainsRune("aeiou", rune(lower[len(lower)-2]))
}

func matchCase(original, replacement string) string {
	if original == "" || replacement == "" {
		return replacement
	}
	if unicode.IsUpper(rune(original[0])) {
		return strings.ToUpper(replacement[:1]) + replacement[1:]
	}
	return replacement
}

// EntityName derives the emitted class name for a table: PascalCase,
// singular.
func EntityName(tableName string) string {
	return Singularize(PascalCase(tableName))
}
