package result

import "fmt"

// MaterializationError: строка из хранилища не совпадает с типом.
// Возможна только при расхождении схемы и таблиц после bootstrap.
type MaterializationError struct {
	Type   string
	Field  string
	Reason string
	Err    error
}

func (e *MaterializationError) Error() string {
	msg := fmt.Sprintf("materialize %s", e.Type)
	if e.Field != "" {
		msg += "." + e.Field
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MaterializationError) Unwrap() error { return e.Err }
