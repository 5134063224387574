package schema

import (
	"fmt"

	"surveygraph/internal/metadata"
)

type Issue struct {
	Type    string `json:"type"`
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Lint проверяет опубликованный реестр на внутренние противоречия.
// Любая находка означает ошибку синтеза, а не дефект метаданных.
func Lint(r *Registry) []Issue {
	var issues []Issue

	for _, e := range r.Entities() {
		if _, ok := r.Binding(e.Key); !ok {
			issues = append(issues, Issue{Type: e.Key, Code: "binding_missing", Message: "entity has no table binding"})
		}
		if f, ok := e.Field(InterviewIDField); !ok || f.ValueType != metadata.ValueInterviewID {
			issues = append(issues, Issue{Type: e.Key, Field: InterviewIDField, Code: "system_field_missing", Message: "entity has no interview identifier"})
		}
		issues = append(issues, lintFields(e)...)

		for _, rf := range e.RosterFields() {
			rt, ok := r.Type(rf.Roster)
			switch {
			case !ok:
				issues = append(issues, Issue{Type: e.Key, Field: rf.Name, Code: "roster_unresolved",
					Message: fmt.Sprintf("roster type %q is not registered", rf.Roster)})
			case !rt.Roster || rt.Owner != e.Key:
				issues = append(issues, Issue{Type: e.Key, Field: rf.Name, Code: "roster_foreign",
					Message: fmt.Sprintf("type %q is not a roster of this entity", rf.Roster)})
			default:
				if f, ok := rt.Field(RosterVectorField); !ok || f.ValueType != metadata.ValueRosterVector {
					issues = append(issues, Issue{Type: rt.Key, Field: RosterVectorField, Code: "system_field_missing", Message: "roster has no row address"})
				}
				issues = append(issues, lintFields(rt)...)
			}
		}
	}
	return issues
}

func lintFields(t *TypeDef) []Issue {
	var issues []Issue
	for _, f := range t.Fields {
		if !ValidIdentifier(f.Name) {
			issues = append(issues, Issue{Type: t.Key, Field: f.Name, Code: "ident_invalid", Message: "field name is not a valid identifier"})
		}
		switch f.Kind {
		case FieldScalar:
			if !metadata.Known(f.ValueType) {
				issues = append(issues, Issue{Type: t.Key, Field: f.Name, Code: "value_type_unknown",
					Message: fmt.Sprintf("value type %q is not in the tag set", f.ValueType)})
			}
		case FieldRoster:
			if t.Roster {
				issues = append(issues, Issue{Type: t.Key, Field: f.Name, Code: "roster_nested", Message: "rosters cannot contain rosters"})
			}
		}
	}
	return issues
}
