package result

import (
	"bytes"
	"encoding/json"
	"time"

	"surveygraph/internal/schema"
)

// Object: экземпляр синтезированного типа. Содержит только те поля,
// которые пришли в строке (то есть запрошенные клиентом).
type Object struct {
	Type   *schema.TypeDef
	values map[string]any
}

func newObject(td *schema.TypeDef) *Object {
	return &Object{Type: td, values: make(map[string]any)}
}

// Get: значение поля. ok == false, если поле не выбиралось.
// Значение nil означает отсутствие данных.
func (o *Object) Get(name string) (any, bool) {
	v, ok := o.values[name]
	return v, ok
}

// Rows: для поля-ростера возвращает строки ростера.
func (o *Object) Rows(name string) []*Object {
	v, _ := o.values[name].([]*Object)
	return v
}

// Fields: присутствующие поля в порядке объявления типа.
func (o *Object) Fields() []string {
	out := make([]string, 0, len(o.values))
	for _, f := range o.Type.Fields {
		if _, ok := o.values[f.Name]; ok {
			out = append(out, f.Name)
		}
	}
	return out
}

// MarshalJSON пишет поля в порядке объявления типа.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range o.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(name)
		buf.Write(k)
		buf.WriteByte(':')

		v := o.values[name]
		if t, ok := v.(time.Time); ok {
			v = FormatDate(t)
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FormatDate: дата без времени -> 2006-01-02, иначе RFC3339.
func FormatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339Nano)
}
