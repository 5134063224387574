package query

import (
	"fmt"
	"strings"
)

// FieldSelection: одно запрошенное поле. Sub != nil означает вложенную
// выборку (поле-ростер), Sub == nil означает скалярное поле.
type FieldSelection struct {
	Name string
	Sub  []string
}

// Selection: дерево выборки клиента для одной сущности. Ростеры плоские,
// поэтому глубина дерева не больше двух.
type Selection struct {
	Fields []FieldSelection
}

// Scalar добавляет скалярное поле.
func (s Selection) Scalar(names ...string) Selection {
	for _, n := range names {
		s.Fields = append(s.Fields, FieldSelection{Name: n})
	}
	return s
}

// Nested добавляет поле-ростер с полями его строк.
func (s Selection) Nested(name string, sub ...string) Selection {
	if sub == nil {
		sub = []string{}
	}
	s.Fields = append(s.Fields, FieldSelection{Name: name, Sub: sub})
	return s
}

// Normalize склеивает повторы (фрагменты GraphQL дают одно поле несколько раз).
// Порядок первого появления сохраняется, подвыборки объединяются.
func (s Selection) Normalize() Selection {
	var out Selection
	pos := make(map[string]int)
	for _, f := range s.Fields {
		i, seen := pos[f.Name]
		if !seen {
			pos[f.Name] = len(out.Fields)
			var sub []string
			if f.Sub != nil {
				sub = dedup(nil, f.Sub)
			}
			out.Fields = append(out.Fields, FieldSelection{Name: f.Name, Sub: sub})
			continue
		}
		prev := &out.Fields[i]
		if f.Sub != nil {
			prev.Sub = dedup(prev.Sub, f.Sub)
		}
	}
	return out
}

func dedup(dst, src []string) []string {
	for _, n := range src {
		found := false
		for _, d := range dst {
			if d == n {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, n)
		}
	}
	if dst == nil {
		dst = []string{}
	}
	return dst
}

// String: каноническая запись, используется как часть ключа кэша.
// Пример: age,household{member_name,member_age}
func (s Selection) String() string {
	var b strings.Builder
	for i, f := range s.Fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f.Name)
		if f.Sub != nil {
			b.WriteByte('{')
			b.WriteString(strings.Join(f.Sub, ","))
			b.WriteByte('}')
		}
	}
	return b.String()
}

// ParseFieldList разбирает плоский список для REST: "age,household.member_name".
func ParseFieldList(raw string) (Selection, error) {
	var sel Selection
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		segs := strings.Split(part, ".")
		switch {
		case len(segs) == 1:
			sel = sel.Scalar(part)
		case len(segs) == 2 && segs[0] != "" && segs[1] != "":
			sel = sel.Nested(segs[0], segs[1])
		default:
			return Selection{}, &SelectionShapeError{Field: part, Reason: fmt.Sprintf("expected <field> or <roster>.<field>, got %q", part)}
		}
	}
	if len(sel.Fields) == 0 {
		return Selection{}, ErrEmptySelection
	}
	return sel.Normalize(), nil
}
