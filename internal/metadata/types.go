package metadata

import "strings"

// ValueType задаёт тег из закрытого набора типов значений.
type ValueType string

const (
	ValueText         ValueType = "text"
	ValueTextList     ValueType = "text_list"
	ValueSingleChoice ValueType = "single_choice"
	ValueNumeric      ValueType = "numeric"
	ValueMultiChoice  ValueType = "multi_choice"
	ValueDate         ValueType = "date"

	ValueVarLong   ValueType = "variable_long"
	ValueVarString ValueType = "variable_string"
	ValueVarDouble ValueType = "variable_double"
	ValueVarDate   ValueType = "variable_date"
	ValueVarBool   ValueType = "variable_boolean"

	// системные поля (не из вопросов)
	ValueInterviewID  ValueType = "interview_id"
	ValueRosterVector ValueType = "roster_vector"
)

// ==== Виды вопросов, как в документе анкеты ====
const (
	KindText         = "TextQuestion"
	KindTextList     = "TextListQuestion"
	KindSingleChoice = "SingleQuestion"
	KindNumeric      = "NumericQuestion"
	KindMultiChoice  = "MultyOptionsQuestion"
	KindDateTime     = "DateTimeQuestion"
	KindVariable     = "Variable"
	KindStaticText   = "StaticText"
)

// подтипы переменных (нормализованные)
const (
	VariableLong   = "LONG"
	VariableString = "STRING"
	VariableDouble = "DOUBLE"
	VariableDate   = "DATE"
	VariableBool   = "BOOLEAN"
)

var valueTypes = map[string]ValueType{
	KindText:         ValueText,
	KindTextList:     ValueTextList,
	KindSingleChoice: ValueSingleChoice,
	KindNumeric:      ValueNumeric,
	KindMultiChoice:  ValueMultiChoice,
	KindDateTime:     ValueDate,

	KindVariable + "_" + VariableLong:   ValueVarLong,
	KindVariable + "_" + VariableString: ValueVarString,
	KindVariable + "_" + VariableDouble: ValueVarDouble,
	KindVariable + "_" + VariableDate:   ValueVarDate,
	KindVariable + "_" + VariableBool:   ValueVarBool,
}

var systemTypes = map[ValueType]struct{}{
	ValueInterviewID:  {},
	ValueRosterVector: {},
}

// IsPresentational: узел без данных (static text и т.п.)
func IsPresentational(kind string) bool {
	return kind == KindStaticText
}

// ResolveValueType: вид вопроса -> тип значения.
// Для переменных ключ = Variable_<подтип>.
func ResolveValueType(q Question) (ValueType, error) {
	key := q.Kind
	if q.Kind == KindVariable {
		key = q.Kind + "_" + strings.ToUpper(q.VariableType)
	}
	vt, ok := valueTypes[key]
	if !ok {
		return "", &UnknownValueTypeError{Question: q.Name, Kind: key}
	}
	return vt, nil
}

// Known: vt входит в набор тегов (включая системные)
func Known(vt ValueType) bool {
	if _, ok := systemTypes[vt]; ok {
		return true
	}
	for _, v := range valueTypes {
		if v == vt {
			return true
		}
	}
	return false
}

// IsList: значения этого типа являются списками
func (vt ValueType) IsList() bool {
	switch vt {
	case ValueTextList, ValueMultiChoice, ValueRosterVector:
		return true
	}
	return false
}
