package pg

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"surveygraph/internal/metadata"
	"surveygraph/internal/schema"
)

func sqlIdent(s string) string { return pq.QuoteIdentifier(s) }

func fqn(schemaName, table string) string {
	return sqlIdent(schemaName) + "." + sqlIdent(table)
}

// mapType: тип значения -> тип колонки таблицы экспорта
func mapType(vt metadata.ValueType) (string, error) {
	switch vt {
	case metadata.ValueInterviewID:
		return "uuid", nil
	case metadata.ValueText, metadata.ValueVarString:
		return "text", nil
	case metadata.ValueTextList:
		return "text[]", nil
	case metadata.ValueNumeric, metadata.ValueSingleChoice, metadata.ValueVarLong:
		return "bigint", nil
	case metadata.ValueMultiChoice, metadata.ValueRosterVector:
		return "integer[]", nil
	case metadata.ValueVarDouble:
		return "double precision", nil
	case metadata.ValueVarBool:
		return "boolean", nil
	case metadata.ValueDate, metadata.ValueVarDate:
		return "date", nil
	default:
		return "", fmt.Errorf("unknown type: %s", vt)
	}
}

// GenerateDDL возвращает карту ключ -> SQL DDL для таблиц экспорта всех
// сущностей реестра. Ключи упорядочены для ApplyDDL:
// 000_ схемы, 100_ таблицы сущностей, 200_ таблицы ростеров с индексами.
func GenerateDDL(reg *schema.Registry) (map[string]string, error) {
	out := make(map[string]string)

	var schemasSb strings.Builder
	seenSchemas := map[string]struct{}{}

	for _, e := range reg.Entities() {
		b, ok := reg.Binding(e.Key)
		if !ok {
			return nil, fmt.Errorf("%s: no table binding", e.Key)
		}
		if _, ok := seenSchemas[b.Schema]; !ok {
			fmt.Fprintf(&schemasSb, "create schema if not exists %s;\n", sqlIdent(b.Schema))
			seenSchemas[b.Schema] = struct{}{}
		}

		var cols []string
		for _, f := range e.Fields {
			if f.Kind == schema.FieldRoster {
				continue
			}
			col, err := columnDDL(f)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", e.Key, f.Name, err)
			}
			if f.Name == schema.InterviewIDField {
				col += " primary key"
			}
			cols = append(cols, col)
		}
		out["100_"+b.Schema+"."+b.Table] = fmt.Sprintf("create table if not exists %s (\n  %s\n);\n",
			fqn(b.Schema, b.Table), strings.Join(cols, ",\n  "))

		// ростеры: interview__id + поля ростера, индекс по interview__id для GROUP BY/JOIN
		for _, rf := range e.RosterFields() {
			rt, ok := reg.Type(rf.Roster)
			if !ok {
				return nil, fmt.Errorf("%s.%s: roster type %q is not registered", e.Key, rf.Name, rf.Roster)
			}
			table := b.RosterTable(rt.Name)
			rcols := []string{sqlIdent(schema.InterviewIDField) + " uuid not null"}
			for _, f := range rt.Fields {
				col, err := columnDDL(f)
				if err != nil {
					return nil, fmt.Errorf("%s.%s: %w", rt.Key, f.Name, err)
				}
				rcols = append(rcols, col)
			}
			var sb strings.Builder
			fmt.Fprintf(&sb, "create table if not exists %s (\n  %s\n);\n",
				fqn(b.Schema, table), strings.Join(rcols, ",\n  "))
			fmt.Fprintf(&sb, "create index if not exists %s on %s(%s);\n",
				sqlIdent(table+"_interview_idx"), fqn(b.Schema, table), sqlIdent(schema.InterviewIDField))
			out["200_"+b.Schema+"."+table] = sb.String()
		}
	}

	if schemasSb.Len() > 0 {
		out["000_schemas"] = schemasSb.String()
	}
	return out, nil
}

func columnDDL(f schema.Field) (string, error) {
	typ, err := mapType(f.ValueType)
	if err != nil {
		return "", err
	}
	return sqlIdent(f.Column()) + " " + typ, nil
}
