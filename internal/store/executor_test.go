package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"surveygraph/internal/logging"
)

const stmt = `SELECT json_build_object('age', "entity"."age") AS "data" FROM "s"."t" AS "entity" LIMIT 10`

func TestExecutor_Query(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(stmt).WillReturnRows(
		sqlmock.NewRows([]string{"data"}).
			AddRow([]byte(`{"age": 34}`)).
			AddRow([]byte(`{"age": 40}`)))

	rows, err := NewExecutor(db, nil, nil, time.Second).Query(context.Background(), stmt)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.JSONEq(t, `{"age": 40}`, string(rows[1]))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_ErrorIsClassifiedAndLogged(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	driverErr := errors.New("relation does not exist")
	mock.ExpectQuery(stmt).WillReturnError(driverErr)

	core, logs := observer.New(zapcore.InfoLevel)
	classify := func(err error) Kind {
		if errors.Is(err, driverErr) {
			return KindUndefinedTable
		}
		return KindOther
	}
	ctx := logging.WithRequestID(context.Background(), "req-1")
	_, err = NewExecutor(db, classify, zap.New(core), 0).Query(ctx, stmt)

	var xerr *ExecutionError
	require.True(t, errors.As(err, &xerr))
	assert.Equal(t, KindUndefinedTable, xerr.Kind)
	assert.Equal(t, stmt, xerr.Statement)
	assert.ErrorIs(t, err, driverErr)

	entries := logs.FilterMessage("statement failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, stmt, entries[0].ContextMap()["statement"])
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
}

func TestExecutor_ScanErrorDiscardsRows(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(stmt).WillReturnRows(
		sqlmock.NewRows([]string{"data"}).
			AddRow([]byte(`{"age": 34}`)).
			AddRow([]byte(`{"age": 40}`)).
			RowError(1, errors.New("connection reset")))

	rows, err := NewExecutor(db, nil, nil, 0).Query(context.Background(), stmt)
	assert.Nil(t, rows)
	var xerr *ExecutionError
	require.True(t, errors.As(err, &xerr))
	assert.Equal(t, KindOther, xerr.Kind)
}

func TestExecutor_Canceled(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(stmt).WillDelayFor(time.Second).WillReturnRows(sqlmock.NewRows([]string{"data"}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err = NewExecutor(db, nil, nil, 0).Query(ctx, stmt)
	var xerr *ExecutionError
	require.True(t, errors.As(err, &xerr))
	assert.Equal(t, KindCanceled, xerr.Kind)
}

func TestExecutor_Timeout(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(stmt).WillDelayFor(time.Second).WillReturnRows(sqlmock.NewRows([]string{"data"}))

	_, err = NewExecutor(db, nil, nil, 20*time.Millisecond).Query(context.Background(), stmt)
	var xerr *ExecutionError
	require.True(t, errors.As(err, &xerr))
	assert.Equal(t, KindTimeout, xerr.Kind)
}
