package db

import "strings"

// Dialect selects the column type rules of a database
type Dialect int

const (
	DialectPostgres Dialect = iota + 1
	DialectMySQL
	DialectSQLite
)

func (d Dialect) String() string {
	switch d {
	case DialectPostgres:
		return "postgres"
	case DialectMySQL:
		return "mysql"
	case DialectSQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// sqlScalars maps base SQL type names to scalar type tags
var sqlScalars = map[string]string{
	"bool":    "bool",
	"boolean": "bool",

	"smallint":    "int",
	"integer":     "int",
	"int":         "int",
	"int2":        "int",
	"int4":        "int",
	"int8":        "int",
	"bigint":      "int",
	"mediumint":   "int",
	"tinyint":     "int",
	"serial":      "int",
	"smallserial": "int",
	"bigserial":   "int",
	"year":        "int",

	"real":             "float",
	"float":            "float",
	"float4":           "float",
	"double":           "double",
	"double precision": "double",
	"float8":           "double",

	"numeric": "decimal128",
	"decimal": "decimal128",
	"money":   "decimal128",

	"text":              "string",
	"varchar":           "string",
	"char":              "string",
	"character":         "string",
	"character varying": "string",
	"bpchar":            "string",
	"nchar":             "string",
	"nvarchar":          "string",
	"tinytext":          "string",
	"mediumtext":        "string",
	"longtext":          "string",
	"clob":              "string",
	"citext":            "string",
	"uuid":              "string",
	"json":              "string",
	"jsonb":             "string",
	"xml":               "string",
	"inet":              "string",
	"cidr":              "string",
	"macaddr":           "string",
	"time":              "string",
	"timetz":            "string",
	"interval":          "string",
	"enum":              "string",
	"set":               "string",

	"date":        "date",
	"datetime":    "date",
	"timestamp":   "date",
	"timestamptz": "date",

	"bytea":      "data",
	"blob":       "data",
	"tinyblob":   "data",
	"mediumblob": "data",
	"longblob":   "data",
	"binary":     "data",
	"varbinary":  "data",
}

// ScalarTag maps a column type to a scalar type tag. list reports a
// PostgreSQL array, whose tag is the element tag. Types without a mapping
// are returned unchanged.
func (d Dialect) ScalarTag(col Column) (tag string, list bool) {
	if len(col.EnumValues) > 0 {
		return "string", false
	}

	t := strings.ToLower(strings.TrimSpace(col.Type))

	switch d {
	case DialectPostgres:
		if elem, ok := strings.CutSuffix(t, "[]"); ok {
			tag, _ := d.ScalarTag(Column{Type: elem})
			return tag, true
		}
	case DialectMySQL:
		// MySQL has no boolean type; BOOLEAN columns are tinyint(1).
		if t == "tinyint(1)" || strings.HasPrefix(t, "tinyint(1) ") {
			return "bool", false
		}
	}

	base := baseType(t)

	if d == DialectSQLite {
		// SQLite stores every floating point value in 8 bytes.
		switch base {
		case "real", "float", "double", "double precision":
			return "double", false
		}
	}

	if tag, ok := sqlScalars[base]; ok {
		return tag, false
	}

	if d == DialectSQLite {
		return sqliteAffinity(base), false
	}

	return col.Type, false
}

// baseType drops length and precision arguments and MySQL sign modifiers:
// "varchar(255)" and "int(11) unsigned" become "varchar" and "int".
func baseType(t string) string {
	if i := strings.IndexByte(t, '('); i >= 0 {
		if j := strings.IndexByte(t[i:], ')'); j >= 0 {
			t = t[:i] + t[i+j+1:]
		} else {
			t = t[:i]
		}
	}
	for _, mod := range []string{" unsigned", " signed", " zerofill"} {
		t = strings.ReplaceAll(t, mod, "")
	}
	return strings.Join(strings.Fields(t), " ")
}

// sqliteAffinity applies the SQLite column affinity rules to a declared
// type that is not a known name.
func sqliteAffinity(t string) string {
	switch {
	case strings.Contains(t, "int"):
		return "int"
	case strings.Contains(t, "char"), strings.Contains(t, "clob"), strings.Contains(t, "text"):
		return "string"
	case t == "", strings.Contains(t, "blob"):
		return "data"
	case strings.Contains(t, "real"), strings.Contains(t, "floa"), strings.Contains(t, "doub"):
		return "double"
	default:
		return "decimal128"
	}
}
