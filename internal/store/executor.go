package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"surveygraph/internal/logging"
)

// Classifier относит ошибку драйвера к одному из Kind.
type Classifier func(err error) Kind

// Executor выполняет скомпилированные запросы. На каждый запрос берётся
// отдельное соединение из пула и возвращается на любом пути выхода.
type Executor struct {
	db       *sql.DB
	classify Classifier
	log      *zap.Logger
	timeout  time.Duration
}

func NewExecutor(db *sql.DB, classify Classifier, log *zap.Logger, timeout time.Duration) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	if classify == nil {
		classify = func(error) Kind { return KindOther }
	}
	return &Executor{db: db, classify: classify, log: log, timeout: timeout}
}

// Query выполняет statement и возвращает первую колонку каждой строки
// (JSON-объект строки). При ошибке или отмене частичный результат
// отбрасывается.
func (e *Executor) Query(ctx context.Context, statement string) ([][]byte, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, e.fail(ctx, statement, err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, statement)
	if err != nil {
		return nil, e.fail(ctx, statement, err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, e.fail(ctx, statement, err)
		}
		out = append(out, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, e.fail(ctx, statement, err)
	}
	return out, nil
}

func (e *Executor) fail(ctx context.Context, statement string, err error) error {
	kind := KindOther
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		kind = KindCanceled
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		kind = KindTimeout
	default:
		kind = e.classify(err)
	}

	xerr := &ExecutionError{Kind: kind, Statement: statement, Err: err}
	log := logging.For(ctx, e.log)
	if kind == KindCanceled {
		// клиент ушёл, это не ошибка сервера
		log.Debug("statement canceled", zap.String("statement", statement))
	} else {
		log.Error("statement failed", zap.String("kind", string(kind)), zap.String("statement", statement), zap.Error(err))
	}
	return xerr
}

// Ping проверяет доступность хранилища.
func (e *Executor) Ping(ctx context.Context) error {
	return e.db.PingContext(ctx)
}
