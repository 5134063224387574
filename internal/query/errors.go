package query

import (
	"errors"
	"fmt"
)

var (
	ErrEmptySelection = errors.New("empty selection")
	ErrUnknownEntity  = errors.New("unknown entity")
	ErrNegativeLimit  = errors.New("limit must not be negative")
)

// UnknownFieldError: в типе нет запрошенного поля. Возвращается до
// построения SQL.
type UnknownFieldError struct {
	Type  string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("type %q has no field %q", e.Type, e.Field)
}

// SelectionShapeError: форма выборки не совпадает с видом поля
// (подвыборка у скаляра, ростер без подвыборки и т.п.).
type SelectionShapeError struct {
	Type   string
	Field  string
	Reason string
}

func (e *SelectionShapeError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("type %q, field %q: %s", e.Type, e.Field, e.Reason)
}
