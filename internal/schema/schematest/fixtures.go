// Package schematest собирает реестры из синтетических метаданных для тестов
// без обращения к хранилищу.
package schematest

import (
	"fmt"

	"surveygraph/internal/metadata"
	"surveygraph/internal/schema"
)

const (
	IncomeEntity = "primary_income_v1"
	IncomeSchema = "default_k1"
	IncomeTable  = "income$1"
)

// IncomeDocument: анкета с двумя ростерами.
//
//	entity:    interview__id, age, name, visit_date, is_urban, household, plots
//	household: roster__vector, member_name, member_age
//	plots:     roster__vector, plot_area, crops
func IncomeDocument() *metadata.Document {
	return &metadata.Document{
		ID:           "income",
		VariableName: "income",
		Title:        "Household income survey",
		RootID:       "root",
		Groups: map[string]metadata.Group{
			"root":    {ID: "root", VariableName: "income"},
			"cover":   {ID: "cover", ParentID: "root", VariableName: "cover", Title: "Cover"},
			"hh":      {ID: "hh", ParentID: "root", IsRoster: true, VariableName: "household", Title: "Household members"},
			"hh_more": {ID: "hh_more", ParentID: "hh", VariableName: "member_details"},
			"plots":   {ID: "plots", ParentID: "root", IsRoster: true, VariableName: "plots", Title: "Plots"},
		},
		Questions: []metadata.Question{
			{ID: "q0", ParentID: "cover", Kind: metadata.KindStaticText},
			{ID: "q1", ParentID: "cover", Kind: metadata.KindNumeric, Name: "age", Label: "Respondent age"},
			{ID: "q2", ParentID: "cover", Kind: metadata.KindText, Name: "name"},
			{ID: "q3", ParentID: "hh", Kind: metadata.KindText, Name: "member_name"},
			{ID: "q4", ParentID: "hh_more", Kind: metadata.KindNumeric, Name: "member_age"},
			{ID: "q5", ParentID: "plots", Kind: metadata.KindVariable, VariableType: metadata.VariableDouble, Name: "plot_area"},
			{ID: "q6", ParentID: "cover", Kind: metadata.KindDateTime, Name: "visit_date"},
			{ID: "q7", ParentID: "plots", Kind: metadata.KindMultiChoice, Name: "crops"},
			{ID: "q8", ParentID: "root", Kind: metadata.KindVariable, VariableType: metadata.VariableBool, Name: "is_urban"},
		},
	}
}

// IncomeBinding: привязка IncomeEntity к таблице экспорта.
func IncomeBinding() schema.Binding {
	return schema.Binding{
		Workspace:       "primary",
		QuestionnaireID: "income",
		Version:         "1",
		Schema:          IncomeSchema,
		Table:           IncomeTable,
	}
}

// IncomeRegistry: замороженный реестр с одной сущностью IncomeEntity.
func IncomeRegistry() *schema.Registry {
	b := schema.NewBuilder()
	syn, err := schema.Synthesize(IncomeEntity, IncomeDocument())
	if err != nil {
		panic(fmt.Sprintf("schematest: %v", err))
	}
	if err := b.Add(syn, IncomeBinding()); err != nil {
		panic(fmt.Sprintf("schematest: %v", err))
	}
	return b.Freeze()
}
