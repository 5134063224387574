package schema

import (
	"surveygraph/internal/metadata"
)

// Synthesized: тип сущности и её ростеры, ещё не зарегистрированные.
type Synthesized struct {
	Entity  *TypeDef
	Rosters []*TypeDef // в порядке первого появления
}

// Synthesize строит тип сущности по дереву анкеты.
//
// Вопросы обходятся в порядке документа, презентационные узлы пропускаются.
// Вопрос внутри ростера (на любой глубине вложенных групп) попадает в тип
// ближайшего ростера, который создаётся при первом обращении и сразу получает
// поле roster__vector. Поля-ростеры добавляются в сущность после всех
// скалярных полей, в порядке появления ростеров.
func Synthesize(entityName string, doc *metadata.Document) (*Synthesized, error) {
	if err := checkIdent("entity", entityName); err != nil {
		return nil, err
	}

	entity := newTypeDef(entityName, entityName)
	entity.Title = doc.Title
	if err := entity.add(Field{
		Name:        InterviewIDField,
		Kind:        FieldScalar,
		ValueType:   metadata.ValueInterviewID,
		Description: "Interview identifier",
		System:      true,
	}); err != nil {
		return nil, err
	}

	rosters := make(map[string]*TypeDef)
	var order []string

	for _, q := range doc.Questions {
		if metadata.IsPresentational(q.Kind) {
			continue
		}
		vt, err := metadata.ResolveValueType(q)
		if err != nil {
			return nil, err
		}
		if err := checkIdent("field", q.Name); err != nil {
			return nil, err
		}

		target := entity
		group, inRoster, err := doc.OwningRoster(q.ParentID)
		if err != nil {
			return nil, err
		}
		if inRoster {
			rt, ok := rosters[group.ID]
			if !ok {
				if err := checkIdent("roster", group.VariableName); err != nil {
					return nil, err
				}
				rt = newTypeDef(entityName+"_"+group.VariableName, group.VariableName)
				rt.Roster = true
				rt.Owner = entityName
				rt.Title = group.Title
				if err := rt.add(Field{
					Name:        RosterVectorField,
					Kind:        FieldScalar,
					ValueType:   metadata.ValueRosterVector,
					Description: "Roster row address",
					System:      true,
				}); err != nil {
					return nil, err
				}
				rosters[group.ID] = rt
				order = append(order, group.ID)
			}
			target = rt
		}

		if err := target.add(Field{
			Name:        q.Name,
			Kind:        FieldScalar,
			ValueType:   vt,
			Description: q.Label,
		}); err != nil {
			return nil, err
		}
	}

	out := &Synthesized{Entity: entity}
	for _, id := range order {
		rt := rosters[id]
		if err := entity.add(Field{
			Name:        rt.Name,
			Kind:        FieldRoster,
			Roster:      rt.Key,
			Description: rt.Title,
		}); err != nil {
			return nil, err
		}
		out.Rosters = append(out.Rosters, rt)
	}
	return out, nil
}
