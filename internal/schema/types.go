package schema

import (
	"strings"

	"surveygraph/internal/metadata"
)

// системные поля
const (
	InterviewIDField  = "interview__id"
	RosterVectorField = "roster__vector"
)

// FieldKind: скалярное поле или поле-ростер (список записей).
type FieldKind int

const (
	FieldScalar FieldKind = iota
	FieldRoster
)

func (k FieldKind) String() string {
	if k == FieldRoster {
		return "roster"
	}
	return "scalar"
}

// Field описывает одно поле типа. Все поля опциональны:
// отсутствие данных никогда не считается ошибкой формы.
type Field struct {
	Name        string
	Kind        FieldKind
	ValueType   metadata.ValueType // для FieldScalar
	Roster      string             // ключ типа ростера в реестре, для FieldRoster
	Description string
	System      bool
}

// Column: имя колонки в таблице экспорта (всегда lower case).
func (f Field) Column() string {
	return strings.ToLower(f.Name)
}

// TypeDef: описание синтезированного типа сущности или ростера.
// После публикации в Registry не изменяется.
type TypeDef struct {
	Key    string // ключ в реестре
	Name   string // имя сущности или имя переменной ростера
	Roster bool
	Owner  string // ключ сущности-владельца, только у ростеров
	Title  string
	Fields []Field

	index map[string]int
}

func newTypeDef(key, name string) *TypeDef {
	return &TypeDef{Key: key, Name: name, index: make(map[string]int)}
}

// Field возвращает поле по имени.
func (t *TypeDef) Field(name string) (Field, bool) {
	i, ok := t.index[name]
	if !ok {
		return Field{}, false
	}
	return t.Fields[i], true
}

// RosterFields: поля-ростеры в порядке объявления.
func (t *TypeDef) RosterFields() []Field {
	var out []Field
	for _, f := range t.Fields {
		if f.Kind == FieldRoster {
			out = append(out, f)
		}
	}
	return out
}

func (t *TypeDef) add(f Field) error {
	// имена колонок сравниваем без регистра: в таблице они lower case
	col := f.Column()
	for _, existing := range t.Fields {
		if existing.Column() == col {
			return &DuplicateFieldError{Type: t.Key, Field: f.Name}
		}
	}
	t.index[f.Name] = len(t.Fields)
	t.Fields = append(t.Fields, f)
	return nil
}

// Binding: сущность -> физическая таблица экспорта.
type Binding struct {
	Entity          string `json:"entity"`
	Workspace       string `json:"workspace"`
	QuestionnaireID string `json:"questionnaireId"`
	Version         string `json:"version"`
	Schema          string `json:"schema"`
	Table           string `json:"table"`
}

// RosterTable: таблица ростера лежит рядом с таблицей сущности.
func (b Binding) RosterTable(roster string) string {
	return b.Table + "_" + roster
}
