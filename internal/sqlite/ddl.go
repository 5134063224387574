package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"surveygraph/internal/metadata"
	"surveygraph/internal/schema"
)

// списки хранятся как JSON-текст
func mapType(vt metadata.ValueType) (string, error) {
	switch vt {
	case metadata.ValueInterviewID, metadata.ValueText, metadata.ValueVarString,
		metadata.ValueDate, metadata.ValueVarDate:
		return "TEXT", nil
	case metadata.ValueTextList, metadata.ValueMultiChoice, metadata.ValueRosterVector:
		return "TEXT", nil
	case metadata.ValueNumeric, metadata.ValueSingleChoice, metadata.ValueVarLong, metadata.ValueVarBool:
		return "INTEGER", nil
	case metadata.ValueVarDouble:
		return "REAL", nil
	default:
		return "", fmt.Errorf("unknown type: %s", vt)
	}
}

// GenerateDDL: CREATE TABLE для таблиц экспорта всех сущностей реестра,
// в порядке сущностей. Схемы создаются через Attach, а не DDL.
func GenerateDDL(reg *schema.Registry) ([]string, error) {
	var out []string
	for _, e := range reg.Entities() {
		b, ok := reg.Binding(e.Key)
		if !ok {
			return nil, fmt.Errorf("%s: no table binding", e.Key)
		}
		stmt, err := createTable(b.Schema, b.Table, nil, e.Fields)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Key, err)
		}
		out = append(out, stmt)

		for _, rf := range e.RosterFields() {
			rt, ok := reg.Type(rf.Roster)
			if !ok {
				return nil, fmt.Errorf("%s.%s: roster type %q is not registered", e.Key, rf.Name, rf.Roster)
			}
			table := b.RosterTable(rt.Name)
			stmt, err := createTable(b.Schema, table, []string{pq.QuoteIdentifier(schema.InterviewIDField) + " TEXT NOT NULL"}, rt.Fields)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", rt.Key, err)
			}
			out = append(out, stmt)
		}
	}
	return out, nil
}

func createTable(schemaName, table string, cols []string, fields []schema.Field) (string, error) {
	for _, f := range fields {
		if f.Kind == schema.FieldRoster {
			continue
		}
		typ, err := mapType(f.ValueType)
		if err != nil {
			return "", fmt.Errorf("%s: %w", f.Name, err)
		}
		col := pq.QuoteIdentifier(f.Column()) + " " + typ
		if f.Name == schema.InterviewIDField {
			col += " PRIMARY KEY"
		}
		cols = append(cols, col)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.%s (%s)",
		pq.QuoteIdentifier(schemaName), pq.QuoteIdentifier(table), strings.Join(cols, ", ")), nil
}

// CreateTables подключает схемы и создаёт таблицы экспорта для реестра.
func (s *Store) CreateTables(ctx context.Context, reg *schema.Registry) error {
	for _, e := range reg.Entities() {
		if b, ok := reg.Binding(e.Key); ok {
			if err := s.Attach(ctx, b.Schema); err != nil {
				return err
			}
		}
	}
	stmts, err := GenerateDDL(reg)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("DDL apply failed: %w", err)
		}
	}
	return nil
}
