package metadata

// Group описывает узел группировки вопросов анкеты. Группа-ростер задаёт
// повторяющуюся под-сущность.
type Group struct {
	ID           string
	ParentID     string // "" у корня анкеты
	IsRoster     bool
	VariableName string
	Title        string
}

// Question описывает узел с данными (вопрос или вычисляемая переменная).
// Для Kind == KindVariable конкретный тип берётся из VariableType.
type Question struct {
	ID           string
	ParentID     string
	Kind         string
	VariableType string
	Name         string
	Label        string
}

// Document хранит дерево групп/вопросов одной версии анкеты.
// Questions хранятся в порядке обхода, от него зависит порядок полей типов.
type Document struct {
	ID           string
	VariableName string
	Title        string
	RootID       string
	Groups       map[string]Group
	Questions    []Question
}

func (d *Document) Group(id string) (Group, bool) {
	g, ok := d.Groups[id]
	return g, ok
}

// OwningRoster возвращает ближайшего предка-ростера для узла с данным parent id.
// ok == false, если узел принадлежит самой сущности.
func (d *Document) OwningRoster(parentID string) (Group, bool, error) {
	seen := make(map[string]struct{})
	for id := parentID; id != ""; {
		if _, loop := seen[id]; loop {
			return Group{}, false, &UnknownGroupError{GroupID: id, Reason: "parent cycle"}
		}
		seen[id] = struct{}{}

		g, ok := d.Groups[id]
		if !ok {
			return Group{}, false, &UnknownGroupError{GroupID: id, Reason: "not in document"}
		}
		if g.IsRoster {
			return g, true, nil
		}
		id = g.ParentID
	}
	return Group{}, false, nil
}
