//go:build integration

package pg

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"

	"surveygraph/internal/engine"
	"surveygraph/internal/query"
	"surveygraph/internal/questionnaire"
	"surveygraph/internal/schema"
	"surveygraph/internal/store"
)

// go test -tags integration ./internal/pg/...

const (
	itKey    = "5c1f0b2e3f1a4c559a779a8f5c4c0d01$1"
	itEntity = "primary_income_1"
	itAnn    = "aaaaaaaa-0000-4000-8000-000000000001"
	itCarl   = "aaaaaaaa-0000-4000-8000-000000000002"
)

func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("hq"),
		postgres.WithUsername("hq"),
		postgres.WithPassword("hq"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(url, PoolConfig{MaxOpenConns: 4, MaxIdleConns: 2, ConnMaxLifetime: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// seedHQ: минимальная копия таблиц сервера анкет с одним пространством.
func seedHQ(t *testing.T, db *sql.DB) {
	t.Helper()
	doc, err := os.ReadFile("../questionnaire/testdata/income.json")
	require.NoError(t, err)

	stmts := []string{
		`create schema workspaces`,
		`create table workspaces.workspaces (name text primary key, disabled_at_utc timestamp)`,
		`insert into workspaces.workspaces (name) values ('primary')`,
		`insert into workspaces.workspaces (name, disabled_at_utc) values ('archive', now())`,
		`create schema ws_primary`,
		`create table ws_primary.appsettings (id text primary key, value jsonb not null)`,
		`insert into ws_primary.appsettings values ('ExportService.ApiKey', '{"Key": "k1"}')`,
		`create table ws_primary.questionnairedocuments (id text primary key, value jsonb not null)`,
	}
	ctx := context.Background()
	for _, s := range stmts {
		_, err := db.ExecContext(ctx, s)
		require.NoError(t, err, s)
	}
	_, err = db.ExecContext(ctx, `insert into ws_primary.questionnairedocuments values ($1, $2)`, itKey, string(doc))
	require.NoError(t, err)
}

type anyTable struct{}

func (anyTable) TableExists(context.Context, string, string) (bool, error) { return true, nil }

func bootstrap(t *testing.T, src *HQSource, tables schema.TableChecker) (*schema.Registry, *schema.Report) {
	t.Helper()
	bs := &schema.Bootstrapper{
		Source:   src,
		Tables:   tables,
		Parse:    questionnaire.Parse,
		ParseKey: questionnaire.ParseKey,
		Log:      zap.NewNop(),
	}
	reg, report, err := bs.Run(context.Background())
	require.NoError(t, err)
	return reg, report
}

func TestIntegration_BootstrapApplyQuery(t *testing.T) {
	db := startPostgres(t)
	seedHQ(t, db)
	ctx := context.Background()
	src := NewHQSource(db)

	// таблиц ещё нет
	reg, report := bootstrap(t, src, src)
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, 1, report.Count(schema.StatusTableMissing))

	all, _ := bootstrap(t, src, anyTable{})
	ddl, err := GenerateDDL(all)
	require.NoError(t, err)
	require.NoError(t, ApplyDDL(ctx, db, ddl, zap.NewNop()))
	// повторно не падает
	require.NoError(t, ApplyDDL(ctx, db, ddl, zap.NewNop()))

	reg, report = bootstrap(t, src, src)
	require.Equal(t, 1, reg.Len())
	assert.Equal(t, 1, report.Count(schema.StatusLoaded))

	for _, s := range []string{
		`insert into "default_k1"."income$1" ("interview__id", "age", "name") values ('` + itAnn + `', 34, 'Ann'), ('` + itCarl + `', 51, 'Carl')`,
		`insert into "default_k1"."income$1_household" ("interview__id", "member_name") values ('` + itAnn + `', 'Ann'), ('` + itAnn + `', 'Bob')`,
	} {
		_, err := db.ExecContext(ctx, s)
		require.NoError(t, err, s)
	}

	exec := store.NewExecutor(db, Classify, nil, 5*time.Second)
	eng := engine.New(query.NewCompiler(reg, 100), query.Postgres, exec, nil, nil)

	sel := query.Selection{}.Scalar("interview__id", "name", "age").Nested("household", "member_name")
	objs, err := eng.Query(ctx, itEntity, sel, 10)
	require.NoError(t, err)
	require.Len(t, objs, 2)

	byName := map[string][]string{}
	for _, o := range objs {
		name, _ := o.Get("name")
		var members []string
		for _, m := range o.Rows("household") {
			v, _ := m.Get("member_name")
			members = append(members, v.(string))
		}
		byName[name.(string)] = members

		if name == "Ann" {
			age, _ := o.Get("age")
			assert.EqualValues(t, 34, age)
		}
	}
	assert.ElementsMatch(t, []string{"Ann", "Bob"}, byName["Ann"])
	assert.Empty(t, byName["Carl"])

	// таблицу удалили после bootstrap
	_, err = db.ExecContext(ctx, `drop table "default_k1"."income$1_household"`)
	require.NoError(t, err)
	_, err = eng.Query(ctx, itEntity, sel, 10)
	var xerr *store.ExecutionError
	require.True(t, errors.As(err, &xerr))
	assert.Equal(t, store.KindUndefinedTable, xerr.Kind)
}
