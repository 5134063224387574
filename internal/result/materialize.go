package result

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"surveygraph/internal/metadata"
	"surveygraph/internal/schema"
)

// Materializer превращает JSON-строки из хранилища в объекты типов реестра.
type Materializer struct {
	reg *schema.Registry
}

func New(reg *schema.Registry) *Materializer {
	return &Materializer{reg: reg}
}

// Materialize: по объекту на строку, порядок строк сохраняется.
// Любая ошибка отменяет весь результат, частичных ответов нет.
func (m *Materializer) Materialize(entity string, rows [][]byte) ([]*Object, error) {
	td, ok := m.reg.Entity(entity)
	if !ok {
		return nil, &MaterializationError{Type: entity, Reason: "entity is not registered"}
	}
	out := make([]*Object, 0, len(rows))
	for i, raw := range rows {
		var values map[string]any
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&values); err != nil {
			return nil, &MaterializationError{Type: td.Key, Reason: fmt.Sprintf("row %d is not a JSON object", i), Err: err}
		}
		obj, err := m.build(td, values)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

func (m *Materializer) build(td *schema.TypeDef, values map[string]any) (*Object, error) {
	obj := newObject(td)
	for key, raw := range values {
		f, ok := td.Field(key)
		if !ok {
			return nil, &MaterializationError{Type: td.Key, Field: key, Reason: "key is not a field of the type"}
		}
		if f.Kind == schema.FieldRoster {
			rows, err := m.roster(td, f, raw)
			if err != nil {
				return nil, err
			}
			obj.values[key] = rows
			continue
		}
		v, err := coerce(f.ValueType, raw)
		if err != nil {
			return nil, &MaterializationError{Type: td.Key, Field: key, Reason: err.Error()}
		}
		obj.values[key] = v
	}
	return obj, nil
}

// ростер без строк (null или []) -> пустой список, не nil
func (m *Materializer) roster(owner *schema.TypeDef, f schema.Field, raw any) ([]*Object, error) {
	rt, ok := m.reg.Type(f.Roster)
	if !ok {
		return nil, &MaterializationError{Type: owner.Key, Field: f.Name, Reason: fmt.Sprintf("roster type %q is not registered", f.Roster)}
	}
	if raw == nil {
		return []*Object{}, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, &MaterializationError{Type: owner.Key, Field: f.Name, Reason: fmt.Sprintf("expected array, got %T", raw)}
	}
	out := make([]*Object, 0, len(items))
	for _, it := range items {
		values, ok := it.(map[string]any)
		if !ok {
			return nil, &MaterializationError{Type: rt.Key, Reason: fmt.Sprintf("expected object, got %T", it)}
		}
		obj, err := m.build(rt, values)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
}

func coerce(vt metadata.ValueType, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch vt {
	case metadata.ValueText, metadata.ValueVarString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", raw)
		}
		return s, nil

	case metadata.ValueNumeric, metadata.ValueSingleChoice, metadata.ValueVarLong:
		return toInt(raw)

	case metadata.ValueVarDouble:
		n, ok := raw.(json.Number)
		if !ok {
			return nil, fmt.Errorf("expected number, got %T", raw)
		}
		return n.Float64()

	case metadata.ValueVarBool:
		switch b := raw.(type) {
		case bool:
			return b, nil
		case json.Number: // SQLite хранит bool как 0/1
			i, err := toInt(b)
			if err != nil {
				return nil, err
			}
			return i.(int64) != 0, nil
		}
		return nil, fmt.Errorf("expected boolean, got %T", raw)

	case metadata.ValueDate, metadata.ValueVarDate:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected date string, got %T", raw)
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("unrecognised date %q", s)

	case metadata.ValueInterviewID:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected uuid string, got %T", raw)
		}
		return uuid.Parse(s)

	case metadata.ValueTextList:
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("expected array, got %T", raw)
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			s, ok := it.(string)
			if !ok {
				return nil, fmt.Errorf("expected string element, got %T", it)
			}
			out = append(out, s)
		}
		return out, nil

	case metadata.ValueMultiChoice, metadata.ValueRosterVector:
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("expected array, got %T", raw)
		}
		out := make([]int64, 0, len(items))
		for _, it := range items {
			v, err := toInt(it)
			if err != nil {
				return nil, err
			}
			out = append(out, v.(int64))
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown value type %q", vt)
}

// toInt принимает и целые вида 3.0 (json_agg по numeric-колонкам)
func toInt(raw any) (any, error) {
	n, ok := raw.(json.Number)
	if !ok {
		return nil, fmt.Errorf("expected integer, got %T", raw)
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= 1<<63 {
		return nil, fmt.Errorf("expected integer, got %s", n)
	}
	return int64(f), nil
}
