package store

import "fmt"

// Kind: класс ошибки выполнения запроса.
type Kind string

const (
	KindCanceled        Kind = "canceled"
	KindTimeout         Kind = "timeout"
	KindUndefinedTable  Kind = "undefined_table"
	KindUndefinedColumn Kind = "undefined_column"
	KindConnection      Kind = "connection"
	KindOther           Kind = "other"
)

// ExecutionError: хранилище не смогло выполнить скомпилированный запрос.
type ExecutionError struct {
	Kind      Kind
	Statement string
	Err       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute statement (%s): %v", e.Kind, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
