package schema

import (
	"sort"
)

// Builder собирает реестр на этапе bootstrap. Не потокобезопасен:
// bootstrap однопоточный и завершается до публикации реестра.
type Builder struct {
	types    map[string]*TypeDef
	entities []string
	bindings map[string]Binding
	frozen   bool
}

func NewBuilder() *Builder {
	return &Builder{
		types:    make(map[string]*TypeDef),
		bindings: make(map[string]Binding),
	}
}

// Add регистрирует ростеры, затем сущность и её binding.
// При конфликте имён реестр не меняется.
func (b *Builder) Add(s *Synthesized, binding Binding) error {
	if b.frozen {
		return ErrFrozen
	}
	if _, ok := b.types[s.Entity.Key]; ok {
		return &DuplicateEntityError{Name: s.Entity.Key}
	}
	for _, rt := range s.Rosters {
		if _, ok := b.types[rt.Key]; ok {
			return &DuplicateEntityError{Name: rt.Key}
		}
	}

	for _, rt := range s.Rosters {
		b.types[rt.Key] = rt
	}
	b.types[s.Entity.Key] = s.Entity
	binding.Entity = s.Entity.Key
	b.bindings[s.Entity.Key] = binding
	b.entities = append(b.entities, s.Entity.Key)
	return nil
}

// Freeze публикует снимок. После этого Builder больше не принимает типы.
func (b *Builder) Freeze() *Registry {
	b.frozen = true
	entities := make([]string, len(b.entities))
	copy(entities, b.entities)
	return &Registry{types: b.types, entities: entities, bindings: b.bindings}
}

// Registry: неизменяемый снимок типов и привязок к таблицам.
// Читается конкурентно без синхронизации.
type Registry struct {
	types    map[string]*TypeDef
	entities []string
	bindings map[string]Binding
}

// Type: любой тип (сущность или ростер) по ключу.
func (r *Registry) Type(key string) (*TypeDef, bool) {
	t, ok := r.types[key]
	return t, ok
}

// Entity: только корневые сущности.
func (r *Registry) Entity(name string) (*TypeDef, bool) {
	t, ok := r.types[name]
	if !ok || t.Roster {
		return nil, false
	}
	return t, true
}

// Entities в порядке регистрации.
func (r *Registry) Entities() []*TypeDef {
	out := make([]*TypeDef, 0, len(r.entities))
	for _, name := range r.entities {
		out = append(out, r.types[name])
	}
	return out
}

// EntityNames, отсортированные по имени.
func (r *Registry) EntityNames() []string {
	out := make([]string, len(r.entities))
	copy(out, r.entities)
	sort.Strings(out)
	return out
}

func (r *Registry) Binding(entity string) (Binding, bool) {
	b, ok := r.bindings[entity]
	return b, ok
}

func (r *Registry) Len() int { return len(r.entities) }
