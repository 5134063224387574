// Package engine выполняет запрос целиком: компиляция, рендер SQL
// (с кэшем), выполнение в хранилище, материализация результата.
package engine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"surveygraph/internal/cache"
	"surveygraph/internal/logging"
	"surveygraph/internal/query"
	"surveygraph/internal/result"
	"surveygraph/internal/schema"
)

// Querier выполняет готовый SQL и возвращает JSON строк.
type Querier interface {
	Query(ctx context.Context, statement string) ([][]byte, error)
}

type Engine struct {
	compiler *query.Compiler
	dialect  query.Dialect
	store    Querier
	cache    cache.Cache
	mat      *result.Materializer
	log      *zap.Logger
}

// New: c может быть nil, тогда запросы рендерятся каждый раз.
func New(compiler *query.Compiler, dialect query.Dialect, store Querier, c cache.Cache, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		compiler: compiler,
		dialect:  dialect,
		store:    store,
		cache:    c,
		mat:      result.New(compiler.Registry()),
		log:      log,
	}
}

func (e *Engine) Registry() *schema.Registry { return e.compiler.Registry() }

func (e *Engine) Dialect() query.Dialect { return e.dialect }

// Statement компилирует выборку и возвращает SQL, не обращаясь к хранилищу.
func (e *Engine) Statement(ctx context.Context, entity string, sel query.Selection, limit int) (string, *query.Plan, error) {
	plan, err := e.compiler.Compile(entity, sel, limit)
	if err != nil {
		return "", nil, err
	}
	sql, _, err := e.render(ctx, plan, sel)
	return sql, plan, err
}

// Query выполняет выборку и возвращает объекты сущности в порядке строк
// хранилища.
func (e *Engine) Query(ctx context.Context, entity string, sel query.Selection, limit int) ([]*result.Object, error) {
	start := time.Now()
	plan, err := e.compiler.Compile(entity, sel, limit)
	if err != nil {
		return nil, err
	}
	sql, cached, err := e.render(ctx, plan, sel)
	if err != nil {
		return nil, err
	}
	rows, err := e.store.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	objs, err := e.mat.Materialize(plan.Entity, rows)
	if err != nil {
		logging.For(ctx, e.log).Error("materialization failed", zap.String("entity", plan.Entity), zap.Error(err))
		return nil, err
	}
	logging.For(ctx, e.log).Debug("query executed",
		zap.String("entity", plan.Entity),
		zap.Int("rows", len(objs)),
		zap.Bool("cached", cached),
		zap.Duration("elapsed", time.Since(start)))
	return objs, nil
}

// render: сбой кэша только логируется
func (e *Engine) render(ctx context.Context, plan *query.Plan, sel query.Selection) (string, bool, error) {
	if e.cache == nil {
		sql, err := e.dialect.Render(plan)
		return sql, false, err
	}
	key := cache.Key(e.dialect.Name(), plan.Entity, plan.Relations(), sel.Normalize().String(), plan.Limit)
	if v, err := e.cache.Get(ctx, key); err == nil {
		return string(v), true, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		logging.For(ctx, e.log).Warn("statement cache read failed", zap.Error(err))
	}

	sql, err := e.dialect.Render(plan)
	if err != nil {
		return "", false, err
	}
	if err := e.cache.Set(ctx, key, []byte(sql)); err != nil {
		logging.For(ctx, e.log).Warn("statement cache write failed", zap.Error(err))
	}
	return sql, false, nil
}
