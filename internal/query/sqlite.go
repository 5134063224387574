package query

import "strings"

// SQLite: json_object / json_group_array. Списки в SQLite хранятся как
// JSON-текст, их оборачиваем в json(), иначе они попадут в объект строкой.
var SQLite Dialect = jsonDialect{
	name: "sqlite",
	object: func(pairs []string) string {
		return "json_object(" + strings.Join(pairs, ", ") + ")"
	},
	agg: "json_group_array",
	emptyList: func(expr string) string {
		return "json(coalesce(" + expr + ", '[]'))"
	},
	listColumn: func(expr string) string {
		return "json(" + expr + ")"
	},
}

// DialectByName: "postgres" или "sqlite".
func DialectByName(name string) (Dialect, bool) {
	switch name {
	case "postgres", "pgx":
		return Postgres, true
	case "sqlite", "sqlite3":
		return SQLite, true
	}
	return nil, false
}
