package query

import (
	"fmt"

	"surveygraph/internal/schema"
)

const (
	DefaultLimit = 10
	MaxLimit     = 1000
)

// Compiler превращает выборку клиента в Plan. Читает только замороженный
// реестр, поэтому безопасен для конкурентного использования.
type Compiler struct {
	reg      *schema.Registry
	maxLimit int
}

func NewCompiler(reg *schema.Registry, maxLimit int) *Compiler {
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	return &Compiler{reg: reg, maxLimit: maxLimit}
}

func (c *Compiler) Registry() *schema.Registry { return c.reg }

// Compile проверяет выборку по типу сущности и строит план.
// Лимит больше максимального урезается до максимума.
func (c *Compiler) Compile(entity string, sel Selection, limit int) (*Plan, error) {
	td, ok := c.reg.Entity(entity)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
	binding, ok := c.reg.Binding(entity)
	if !ok {
		return nil, fmt.Errorf("%w: %q has no table binding", ErrUnknownEntity, entity)
	}
	if limit < 0 {
		return nil, ErrNegativeLimit
	}
	if limit > c.maxLimit {
		limit = c.maxLimit
	}
	sel = sel.Normalize()
	if len(sel.Fields) == 0 {
		return nil, ErrEmptySelection
	}

	plan := &Plan{
		Entity: td.Key,
		Schema: binding.Schema,
		Table:  binding.Table,
		Key:    schema.InterviewIDField,
		Limit:  uint64(limit),
	}

	for _, fs := range sel.Fields {
		f, ok := td.Field(fs.Name)
		if !ok {
			return nil, &UnknownFieldError{Type: td.Key, Field: fs.Name}
		}

		if f.Kind == schema.FieldScalar {
			if fs.Sub != nil {
				return nil, &SelectionShapeError{Type: td.Key, Field: f.Name, Reason: "scalar field has no sub-selection"}
			}
			plan.Projections = append(plan.Projections, Projection{Key: f.Name, Column: f.Column(), ValueType: f.ValueType})
			continue
		}

		agg, err := c.aggregate(td, f, fs, binding)
		if err != nil {
			return nil, err
		}
		plan.Aggregates = append(plan.Aggregates, agg)
		plan.Projections = append(plan.Projections, Projection{Key: f.Name, Aggregate: agg.Field})
	}
	return plan, nil
}

func (c *Compiler) aggregate(owner *schema.TypeDef, f schema.Field, fs FieldSelection, b schema.Binding) (Aggregate, error) {
	if len(fs.Sub) == 0 {
		return Aggregate{}, &SelectionShapeError{Type: owner.Key, Field: f.Name, Reason: "roster field needs a sub-selection"}
	}
	rt, ok := c.reg.Type(f.Roster)
	if !ok {
		// реестр прошёл lint, сюда попасть нельзя
		return Aggregate{}, fmt.Errorf("roster type %q of %s.%s is not registered", f.Roster, owner.Key, f.Name)
	}
	agg := Aggregate{
		Field:  f.Name,
		Roster: rt.Key,
		Schema: b.Schema,
		Table:  b.RosterTable(rt.Name),
	}
	for _, name := range fs.Sub {
		rf, ok := rt.Field(name)
		if !ok {
			return Aggregate{}, &UnknownFieldError{Type: rt.Key, Field: name}
		}
		if rf.Kind != schema.FieldScalar {
			return Aggregate{}, &SelectionShapeError{Type: rt.Key, Field: name, Reason: "rosters are flat"}
		}
		agg.Columns = append(agg.Columns, Projection{Key: rf.Name, Column: rf.Column(), ValueType: rf.ValueType})
	}
	return agg, nil
}
