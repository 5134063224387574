package query

import "strings"

// json_build_object принимает не больше 100 аргументов
const pgMaxPairs = 50

// Postgres: json_build_object / json_agg, пустой ростер -> '[]'::json.
var Postgres Dialect = jsonDialect{
	name:   "postgres",
	object: pgObject,
	agg:    "json_agg",
	emptyList: func(expr string) string {
		return "coalesce(" + expr + ", '[]'::json)"
	},
}

func pgObject(pairs []string) string {
	if len(pairs) <= pgMaxPairs {
		return "json_build_object(" + strings.Join(pairs, ", ") + ")"
	}
	// широкие выборки склеиваем через jsonb
	var parts []string
	for len(pairs) > 0 {
		n := min(len(pairs), pgMaxPairs)
		parts = append(parts, "jsonb_build_object("+strings.Join(pairs[:n], ", ")+")")
		pairs = pairs[n:]
	}
	return "(" + strings.Join(parts, " || ") + ")::json"
}
