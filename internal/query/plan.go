package query

import (
	"strings"

	"surveygraph/internal/metadata"
)

// Plan: двухуровневый план запроса, не зависящий от диалекта.
// Корневая проекция плюс по одной агрегации на каждый запрошенный ростер.
// Все идентификаторы в плане взяты из реестра и привязок к таблицам.
type Plan struct {
	Entity      string
	Schema      string
	Table       string
	Key         string // общий ключ интервью для join
	Projections []Projection
	Aggregates  []Aggregate
	Limit       uint64
}

// Projection: пара (ключ JSON, источник). Для ростера источник это
// агрегат с именем Aggregate, Column пустой.
type Projection struct {
	Key       string
	Column    string
	ValueType metadata.ValueType
	Aggregate string
}

// IsAggregate: проекция берётся из агрегата ростера.
func (p Projection) IsAggregate() bool { return p.Aggregate != "" }

// Aggregate: строки ростера, сгруппированные по ключу интервью и
// свёрнутые в JSON-массив объектов из Columns.
type Aggregate struct {
	Field   string // имя поля-ростера у сущности
	Roster  string // ключ типа ростера в реестре
	Schema  string
	Table   string
	Columns []Projection
}

// Relations: все таблицы, которые читает план, в порядке рендера.
// Два плана с одинаковой выборкой над разными привязками дают разные строки.
func (p *Plan) Relations() string {
	parts := make([]string, 0, 1+len(p.Aggregates))
	parts = append(parts, p.Schema+"."+p.Table)
	for _, a := range p.Aggregates {
		parts = append(parts, a.Schema+"."+a.Table)
	}
	return strings.Join(parts, ",")
}
