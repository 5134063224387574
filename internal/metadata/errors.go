package metadata

import "fmt"

// UnknownValueTypeError: вида вопроса (или подтипа переменной) нет в наборе тегов.
type UnknownValueTypeError struct {
	Question string
	Kind     string
}

func (e *UnknownValueTypeError) Error() string {
	return fmt.Sprintf("question %q: unknown value type %q", e.Question, e.Kind)
}

// UnknownGroupError: узел ссылается на группу, которой нет в документе.
type UnknownGroupError struct {
	GroupID string
	Reason  string
}

func (e *UnknownGroupError) Error() string {
	return fmt.Sprintf("group %q: %s", e.GroupID, e.Reason)
}
