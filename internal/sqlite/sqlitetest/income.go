// Package sqlitetest наполняет in-memory хранилище данными анкеты
// schematest.IncomeDocument.
package sqlitetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"surveygraph/internal/schema/schematest"
	"surveygraph/internal/sqlite"
)

// Идентификаторы интервью в наборе IncomeStore.
const (
	Ann  = "aaaaaaaa-0000-4000-8000-000000000001"
	Carl = "aaaaaaaa-0000-4000-8000-000000000002"
	Dana = "aaaaaaaa-0000-4000-8000-000000000003"
)

var incomeRows = []string{
	`INSERT INTO "default_k1"."income$1" ("interview__id", "age", "name", "visit_date", "is_urban") VALUES
		('` + Ann + `', 34, 'Ann', '2024-03-01', 1),
		('` + Carl + `', 51, 'Carl', '2024-03-02', 0),
		('` + Dana + `', NULL, 'Dana', NULL, NULL)`,
	`INSERT INTO "default_k1"."income$1_household" ("interview__id", "roster__vector", "member_name", "member_age") VALUES
		('` + Ann + `', '[0]', 'Ann', 34),
		('` + Ann + `', '[1]', 'Bob', 36),
		('` + Dana + `', '[0]', 'Dana', 29)`,
	`INSERT INTO "default_k1"."income$1_plots" ("interview__id", "roster__vector", "plot_area", "crops") VALUES
		('` + Ann + `', '[0]', 1.5, '[1,3]'),
		('` + Carl + `', '[0]', 0.25, '[2]')`,
}

// IncomeStore: три интервью. У Carl нет членов домохозяйства,
// у Dana нет участков и пустые age/visit_date/is_urban.
func IncomeStore(t testing.TB) *sqlite.Store {
	t.Helper()
	ctx := context.Background()
	s, err := sqlite.Open(ctx, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.CreateTables(ctx, schematest.IncomeRegistry()))
	for _, stmt := range incomeRows {
		_, err := s.DB.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}
	return s
}
