package pg

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"surveygraph/internal/store"
)

// Classify: ошибка pgx -> store.Kind
func Classify(err error) store.Kind {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "42P01" || pgErr.Code == "3F000": // undefined_table, invalid_schema_name
			return store.KindUndefinedTable
		case pgErr.Code == "42703": // undefined_column
			return store.KindUndefinedColumn
		case pgErr.Code == "57014": // query_canceled, в т.ч. statement_timeout
			if strings.Contains(pgErr.Message, "timeout") {
				return store.KindTimeout
			}
			return store.KindCanceled
		case strings.HasPrefix(pgErr.Code, "08"): // connection_exception
			return store.KindConnection
		}
		return store.KindOther
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return store.KindConnection
	}
	if pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return store.KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return store.KindCanceled
	}
	return store.KindOther
}
