package schema

import (
	"errors"
	"fmt"
)

// ErrTableNotFound: таблица экспорта ещё не создана. Ожидаемое состояние
// для новой анкеты, а не дефект метаданных.
var ErrTableNotFound = errors.New("backing table not found")

// DuplicateFieldError: два поля одного типа дают одно и то же имя колонки.
type DuplicateFieldError struct {
	Type  string
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("type %q: duplicate field %q", e.Type, e.Field)
}

// InvalidIdentifierError: имя из метаданных нельзя использовать
// ни как идентификатор SQL, ни как имя в графе.
type InvalidIdentifierError struct {
	What string
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid %s identifier %q", e.What, e.Name)
}

// DuplicateEntityError: сущность с таким именем уже зарегистрирована.
type DuplicateEntityError struct {
	Name string
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("entity %q already registered", e.Name)
}

// ErrFrozen: реестр уже опубликован.
var ErrFrozen = errors.New("registry is frozen")
