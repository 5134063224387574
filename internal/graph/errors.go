package graph

import (
	"context"
	"errors"
	"strings"

	"github.com/graphql-go/graphql/gqlerrors"

	"surveygraph/internal/query"
	"surveygraph/internal/result"
	"surveygraph/internal/store"
)

// Коды в extensions.code ответа GraphQL.
const (
	CodeUnknownField    = "UNKNOWN_FIELD"
	CodeBadRequest      = "BAD_REQUEST"
	CodeQueryExecution  = "QUERY_EXECUTION"
	CodeMaterialization = "MATERIALIZATION"
	CodeValidation      = "GRAPHQL_VALIDATION"
	CodeInternal        = "INTERNAL"
)

// Error: ошибка резолвера с кодом. graphql-go переносит Extensions
// в отформатированную ошибку ответа.
type Error struct {
	Code string
	Kind string
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.Code}
	if e.Kind != "" {
		ext["kind"] = e.Kind
	}
	return ext
}

var _ gqlerrors.ExtendedError = (*Error)(nil)

// Classify: код ошибки пайплайна запроса.
func Classify(err error) *Error {
	var (
		ufe   *query.UnknownFieldError
		shape *query.SelectionShapeError
		xerr  *store.ExecutionError
		merr  *result.MaterializationError
	)
	switch {
	case errors.As(err, &ufe), errors.As(err, &shape), errors.Is(err, query.ErrEmptySelection):
		return &Error{Code: CodeUnknownField, Err: err}
	case errors.Is(err, query.ErrNegativeLimit), errors.Is(err, query.ErrUnknownEntity):
		return &Error{Code: CodeBadRequest, Err: err}
	case errors.As(err, &xerr):
		return &Error{Code: CodeQueryExecution, Kind: string(xerr.Kind), Err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &Error{Code: CodeQueryExecution, Err: err}
	case errors.As(err, &merr):
		return &Error{Code: CodeMaterialization, Err: err}
	}
	return &Error{Code: CodeInternal, Err: err}
}

// ошибки валидации документа приходят без кода
func annotate(errs []gqlerrors.FormattedError) {
	for i := range errs {
		if errs[i].Extensions != nil {
			continue
		}
		code := CodeValidation
		if strings.HasPrefix(errs[i].Message, "Cannot query field") {
			code = CodeUnknownField
		}
		errs[i].Extensions = map[string]interface{}{"code": code}
	}
}
