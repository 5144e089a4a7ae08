package core

import (
	"regexp"
	"strconv"
	"strings"
)

// Canonical data-type tokens. Every dialect reader stores one of these
// in Column.Type (falling back to the raw vendor token when nothing
// matches) and preserves the vendor spelling in Column.RawType.
const (
	TypeString         = "string"
	TypeBool           = "bool"
	TypeByte           = "byte"
	TypeShort          = "short"
	TypeInt            = "int"
	TypeLong           = "long"
	TypeFloat          = "float"
	TypeDouble         = "double"
	TypeDecimal        = "decimal"
	TypeDateTime       = "DateTime"
	TypeDateTimeOffset = "DateTimeOffset"
	TypeTimeSpan       = "TimeSpan"
	TypeGuid           = "Guid"
	TypeByteArray      = "byte[]"
)

// parenRe matches a parenthesized size modifier and its content so the
// base type name can be extracted. Example: "varchar(255)" -> "varchar".
var parenRe = regexp.MustCompile(`\([^)]*\)`)

// wsRe collapses runs of whitespace after the parenthesized parts have
// been removed.
var wsRe = regexp.MustCompile(`\s+`)

var sqlserverCanonical = map[string]string{
	"bigint":           TypeLong,
	"int":              TypeInt,
	"smallint":         TypeShort,
	"tinyint":          TypeByte,
	"bit":              TypeBool,
	"decimal":          TypeDecimal,
	"numeric":          TypeDecimal,
	"money":            TypeDecimal,
	"smallmoney":       TypeDecimal,
	"float":            TypeDouble,
	"real":             TypeFloat,
	"date":             TypeDateTime,
	"datetime":         TypeDateTime,
	"datetime2":        TypeDateTime,
	"smalldatetime":    TypeDateTime,
	"datetimeoffset":   TypeDateTimeOffset,
	"time":             TypeTimeSpan,
	"char":             TypeString,
	"varchar":          TypeString,
	"text":             TypeString,
	"nchar":            TypeString,
	"nvarchar":         TypeString,
	"ntext":            TypeString,
	"xml":              TypeString,
	"binary":           TypeByteArray,
	"varbinary":        TypeByteArray,
	"image":            TypeByteArray,
	"rowversion":       TypeByteArray,
	"timestamp":        TypeByteArray,
	"uniqueidentifier": TypeGuid,
}

var mysqlCanonical = map[string]string{
	"tinyint":    TypeByte,
	"bool":       TypeBool,
	"boolean":    TypeBool,
	"smallint":   TypeShort,
	"year":       TypeShort,
	"mediumint":  TypeInt,
	"int":        TypeInt,
	"integer":    TypeInt,
	"bigint":     TypeLong,
	"float":      TypeFloat,
	"double":     TypeDouble,
	"decimal":    TypeDecimal,
	"numeric":    TypeDecimal,
	"bit":        TypeBool,
	"date":       TypeDateTime,
	"datetime":   TypeDateTime,
	"timestamp":  TypeDateTime,
	"time":       TypeTimeSpan,
	"char":       TypeString,
	"varchar":    TypeString,
	"tinytext":   TypeString,
	"text":       TypeString,
	"mediumtext": TypeString,
	"longtext":   TypeString,
	"enum":       TypeString,
	"set":        TypeString,
	"json":       TypeString,
	"binary":     TypeByteArray,
	"varbinary":  TypeByteArray,
	"tinyblob":   TypeByteArray,
	"blob":       TypeByteArray,
	"mediumblob": TypeByteArray,
	"longblob":   TypeByteArray,
}

var postgresCanonical = map[string]string{
	"smallint":                    TypeShort,
	"int2":                        TypeShort,
	"smallserial":                 TypeShort,
	"integer":                     TypeInt,
	"int":                         TypeInt,
	"int4":                        TypeInt,
	"serial":                      TypeInt,
	"bigint":                      TypeLong,
	"int8":                        TypeLong,
	"bigserial":                   TypeLong,
	"real":                        TypeFloat,
	"float4":                      TypeFloat,
	"double precision":            TypeDouble,
	"float8":                      TypeDouble,
	"numeric":                     TypeDecimal,
	"decimal":                     TypeDecimal,
	"money":                       TypeDecimal,
	"boolean":                     TypeBool,
	"bool":                        TypeBool,
	"date":                        TypeDateTime,
	"timestamp":                   TypeDateTime,
	"timestamp without time zone": TypeDateTime,
	"timestamp with time zone":    TypeDateTimeOffset,
	"timestamptz":                 TypeDateTimeOffset,
	"time":                        TypeTimeSpan,
	"time without time zone":      TypeTimeSpan,
	"time with time zone":         TypeTimeSpan,
	"interval":                    TypeTimeSpan,
	"uuid":                        TypeGuid,
	"bytea":                       TypeByteArray,
	"character":                   TypeString,
	"char":                        TypeString,
	"character varying":           TypeString,
	"varchar":                     TypeString,
	"text":                        TypeString,
	"citext":                      TypeString,
	"json":                        TypeString,
	"jsonb":                       TypeString,
	"xml":                         TypeString,
}

var dialectCanonical = map[Dialect]map[string]string{
	DialectSQLServer:  sqlserverCanonical,
	DialectMySQL:      mysqlCanonical,
	DialectPostgreSQL: postgresCanonical,
}

// CanonicalType maps a vendor type token onto the canonical set. The
// raw token is returned unchanged when nothing matches, so exotic
// vendor types survive into the emitted model.
func CanonicalType(dialect Dialect, rawType string) string {
	types, ok := dialectCanonical[dialect]
	if !ok {
		return rawType
	}
	base := BaseType(rawType)
	if canonical, ok := types[base]; ok {
		return canonical
	}
	return rawType
}

// BaseType strips size modifiers and trailing attributes from a vendor
// type string. "varchar(255)" -> "varchar", "int unsigned" -> "int",
// "timestamp(6) with time zone" -> "timestamp with time zone".
func BaseType(rawType string) string {
	base := parenRe.ReplaceAllString(rawType, "")
	base = strings.ToLower(wsRe.ReplaceAllString(strings.TrimSpace(base), " "))
	for _, mod := range []string{" unsigned", " signed", " zerofill"} {
		base = strings.ReplaceAll(base, mod, "")
	}
	return strings.TrimSpace(base)
}

// TypeModifiers is the parsed (n) or (p,s) part of a vendor type.
type TypeModifiers struct {
	MaxLength *int64
	Precision *int
	Scale     *int
}

// ParseTypeModifiers extracts the parenthesized modifier of a vendor
// type string. A single number becomes MaxLength for character and
// binary families and Precision otherwise; a pair becomes
// Precision/Scale. Types without a modifier yield the zero value.
func ParseTypeModifiers(rawType string) TypeModifiers {
	var mods TypeModifiers

	open := strings.Index(rawType, "(")
	end := strings.Index(rawType, ")")
	if open < 0 || end < open {
		return mods
	}
	parts := strings.Split(rawType[open+1:end], ",")
	switch len(parts) {
	case 1:
		n, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			return mods
		}
		if isCharacterOrBinary(BaseType(rawType)) {
			mods.MaxLength = &n
		} else {
			p := int(n)
			mods.Precision = &p
		}
	case 2:
		p, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		s, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			return mods
		}
		mods.Precision = &p
		mods.Scale = &s
	}
	return mods
}

func isCharacterOrBinary(base string) bool {
	switch base {
	case "char", "character", "varchar", "character varying", "nchar", "nvarchar",
		"binary", "varbinary", "bit", "bit varying", "varbit":
		return true
	}
	return false
}
