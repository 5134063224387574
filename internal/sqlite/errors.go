package sqlite

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"

	"surveygraph/internal/store"
)

// Classify: ошибка sqlite3 -> store.Kind
func Classify(err error) store.Kind {
	var sqErr sqlite3.Error
	if !errors.As(err, &sqErr) {
		return store.KindOther
	}
	msg := sqErr.Error()
	switch {
	case strings.Contains(msg, "no such table"):
		return store.KindUndefinedTable
	case strings.Contains(msg, "no such column"):
		return store.KindUndefinedColumn
	case sqErr.Code == sqlite3.ErrInterrupt:
		return store.KindCanceled
	case sqErr.Code == sqlite3.ErrBusy || sqErr.Code == sqlite3.ErrLocked || sqErr.Code == sqlite3.ErrCantOpen:
		return store.KindConnection
	}
	return store.KindOther
}
