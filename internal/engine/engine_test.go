package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveygraph/internal/cache"
	"surveygraph/internal/query"
	"surveygraph/internal/result"
	"surveygraph/internal/schema"
	"surveygraph/internal/schema/schematest"
	"surveygraph/internal/sqlite"
	"surveygraph/internal/sqlite/sqlitetest"
	"surveygraph/internal/store"
)

func newSQLiteEngine(t *testing.T, c cache.Cache) (*Engine, *countingQuerier) {
	t.Helper()
	s := sqlitetest.IncomeStore(t)
	q := &countingQuerier{next: store.NewExecutor(s.DB, sqlite.Classify, nil, 0)}
	compiler := query.NewCompiler(schematest.IncomeRegistry(), 0)
	return New(compiler, query.SQLite, q, c, nil), q
}

type countingQuerier struct {
	next  Querier
	calls int
}

func (q *countingQuerier) Query(ctx context.Context, statement string) ([][]byte, error) {
	q.calls++
	return q.next.Query(ctx, statement)
}

func byID(t *testing.T, objs []*result.Object) map[string]*result.Object {
	t.Helper()
	out := make(map[string]*result.Object, len(objs))
	for _, o := range objs {
		name, ok := o.Get("name")
		require.True(t, ok)
		out[name.(string)] = o
	}
	return out
}

func TestQuery_ScalarsOnly(t *testing.T) {
	e, _ := newSQLiteEngine(t, nil)
	objs, err := e.Query(context.Background(), schematest.IncomeEntity, query.Selection{}.Scalar("name", "age", "is_urban", "visit_date"), 10)
	require.NoError(t, err)
	require.Len(t, objs, 3)

	rows := byID(t, objs)
	assert.Equal(t, []string{"age", "name", "visit_date", "is_urban"}, rows["Ann"].Fields())
	age, _ := rows["Ann"].Get("age")
	assert.Equal(t, int64(34), age)
	urban, _ := rows["Carl"].Get("is_urban")
	assert.Equal(t, false, urban)

	age, ok := rows["Dana"].Get("age")
	assert.True(t, ok)
	assert.Nil(t, age)

	_, ok = rows["Ann"].Get("household")
	assert.False(t, ok)
}

func TestQuery_OneRoster(t *testing.T) {
	e, _ := newSQLiteEngine(t, nil)
	sel := query.Selection{}.Scalar("name", "age").Nested("household", "member_name")
	objs, err := e.Query(context.Background(), schematest.IncomeEntity, sel, 10)
	require.NoError(t, err)
	rows := byID(t, objs)

	var names []string
	for _, m := range rows["Ann"].Rows("household") {
		v, _ := m.Get("member_name")
		names = append(names, v.(string))
		_, ok := m.Get("member_age")
		assert.False(t, ok)
	}
	assert.ElementsMatch(t, []string{"Ann", "Bob"}, names)

	// без строк ростера -> пустой список
	carl, ok := rows["Carl"].Get("household")
	require.True(t, ok)
	assert.NotNil(t, carl)
	assert.Empty(t, rows["Carl"].Rows("household"))
	assert.Len(t, rows["Dana"].Rows("household"), 1)
}

func TestQuery_TwoRostersAndLists(t *testing.T) {
	e, _ := newSQLiteEngine(t, nil)
	sel := query.Selection{}.Scalar("name").
		Nested("household", "member_age").
		Nested("plots", "roster__vector", "plot_area", "crops")
	objs, err := e.Query(context.Background(), schematest.IncomeEntity, sel, 10)
	require.NoError(t, err)
	rows := byID(t, objs)

	plots := rows["Ann"].Rows("plots")
	require.Len(t, plots, 1)
	crops, _ := plots[0].Get("crops")
	assert.Equal(t, []int64{1, 3}, crops)
	vec, _ := plots[0].Get("roster__vector")
	assert.Equal(t, []int64{0}, vec)
	area, _ := plots[0].Get("plot_area")
	assert.Equal(t, 1.5, area)

	assert.Empty(t, rows["Dana"].Rows("plots"))
	assert.Empty(t, rows["Carl"].Rows("household"))
}

func TestQuery_Limit(t *testing.T) {
	e, _ := newSQLiteEngine(t, nil)
	objs, err := e.Query(context.Background(), schematest.IncomeEntity, query.Selection{}.Scalar("name"), 2)
	require.NoError(t, err)
	assert.Len(t, objs, 2)
}

func TestQuery_UnknownFieldNeverReachesStore(t *testing.T) {
	e, q := newSQLiteEngine(t, nil)
	_, err := e.Query(context.Background(), schematest.IncomeEntity, query.Selection{}.Scalar("age", "salary"), 10)

	var ufe *query.UnknownFieldError
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, "salary", ufe.Field)
	assert.Equal(t, 0, q.calls)

	_, err = e.Query(context.Background(), "nobody_v1", query.Selection{}.Scalar("age"), 10)
	assert.ErrorIs(t, err, query.ErrUnknownEntity)
	assert.Equal(t, 0, q.calls)
}

func TestQuery_StatementCache(t *testing.T) {
	mem := cache.NewMemory(0)
	e, q := newSQLiteEngine(t, mem)
	sel := query.Selection{}.Scalar("age").Nested("household", "member_name")

	first, err := e.Query(context.Background(), schematest.IncomeEntity, sel, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, mem.Len())

	second, err := e.Query(context.Background(), schematest.IncomeEntity, sel, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, mem.Len())
	assert.Equal(t, 2, q.calls)
	assert.Len(t, second, len(first))
}

// та же сущность в другой схеме экспорта (новый ключ экспорта, другой HQ)
func rotatedRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	syn, err := schema.Synthesize(schematest.IncomeEntity, schematest.IncomeDocument())
	require.NoError(t, err)
	binding := schematest.IncomeBinding()
	binding.Schema = "default_k2"
	b := schema.NewBuilder()
	require.NoError(t, b.Add(syn, binding))
	return b.Freeze()
}

func TestStatement_CacheIsScopedToBinding(t *testing.T) {
	mem := cache.NewMemory(0)
	ctx := context.Background()
	sel := query.Selection{}.Scalar("age").Nested("household", "member_name")

	first := New(query.NewCompiler(schematest.IncomeRegistry(), 0), query.SQLite, nil, mem, nil)
	second := New(query.NewCompiler(rotatedRegistry(t), 0), query.SQLite, nil, mem, nil)

	sql1, _, err := first.Statement(ctx, schematest.IncomeEntity, sel, 10)
	require.NoError(t, err)
	sql2, _, err := second.Statement(ctx, schematest.IncomeEntity, sel, 10)
	require.NoError(t, err)

	assert.Contains(t, sql1, `"default_k1"."income$1"`)
	assert.Contains(t, sql2, `"default_k2"."income$1"`)
	assert.Contains(t, sql2, `"default_k2"."income$1_household"`)
	assert.NotContains(t, sql2, "default_k1")
	assert.Equal(t, 2, mem.Len())
}

type brokenCache struct{ cache.Memory }

func (*brokenCache) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("cache down")
}
func (*brokenCache) Set(context.Context, string, []byte) error { return errors.New("cache down") }

func TestQuery_CacheFailureFallsBackToRender(t *testing.T) {
	e, _ := newSQLiteEngine(t, &brokenCache{})
	objs, err := e.Query(context.Background(), schematest.IncomeEntity, query.Selection{}.Scalar("age"), 10)
	require.NoError(t, err)
	assert.Len(t, objs, 3)
}

type fixedQuerier struct {
	rows [][]byte
	err  error
}

func (q fixedQuerier) Query(context.Context, string) ([][]byte, error) { return q.rows, q.err }

func TestQuery_ErrorsPassThrough(t *testing.T) {
	compiler := query.NewCompiler(schematest.IncomeRegistry(), 0)
	sel := query.Selection{}.Scalar("age")

	xerr := &store.ExecutionError{Kind: store.KindUndefinedTable, Err: errors.New("no such table")}
	e := New(compiler, query.Postgres, fixedQuerier{err: xerr}, nil, nil)
	_, err := e.Query(context.Background(), schematest.IncomeEntity, sel, 10)
	assert.Same(t, xerr, err)

	e = New(compiler, query.Postgres, fixedQuerier{rows: [][]byte{[]byte(`{"age": "old"}`)}}, nil, nil)
	_, err = e.Query(context.Background(), schematest.IncomeEntity, sel, 10)
	var merr *result.MaterializationError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, "age", merr.Field)
}

func TestStatement(t *testing.T) {
	compiler := query.NewCompiler(schematest.IncomeRegistry(), 0)
	e := New(compiler, query.Postgres, fixedQuerier{}, nil, nil)
	sql, plan, err := e.Statement(context.Background(), schematest.IncomeEntity, query.Selection{}.Scalar("age"), 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), plan.Limit)
	assert.Equal(t,
		`SELECT json_build_object('age', "entity"."age") AS "data" FROM "default_k1"."income$1" AS "entity" LIMIT 3`,
		sql)
}
