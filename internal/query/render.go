package query

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

// Dialect переводит Plan в текст SQL конкретного хранилища.
type Dialect interface {
	Name() string
	Render(p *Plan) (string, error)
}

const (
	entityAlias = "entity"
	dataColumn  = "data"
	ctePrefix   = "roster_"
)

// ==== Единственная граница экранирования ====

func ident(name string) string { return pq.QuoteIdentifier(name) }

func literal(s string) string { return pq.QuoteLiteral(s) }

func qualified(schemaName, table string) string {
	return ident(schemaName) + "." + ident(table)
}

func column(alias, col string) string {
	return ident(alias) + "." + ident(col)
}

func cteName(p Aggregate) string { return ctePrefix + p.Field }

// jsonDialect: имена функций и приведения, которыми отличаются диалекты.
type jsonDialect struct {
	name string
	// object строит JSON-объект из пар "'key', expr"
	object func(pairs []string) string
	// agg сворачивает объекты группы в массив
	agg string
	// emptyList: выражение для ростера без строк
	emptyList func(expr string) string
	// listColumn: чтение колонки со списком (roster__vector и т.п.)
	listColumn func(expr string) string
}

func (d jsonDialect) Name() string { return d.name }

func (d jsonDialect) pair(p Projection, expr string) string {
	if p.ValueType.IsList() && d.listColumn != nil {
		expr = d.listColumn(expr)
	}
	return literal(p.Key) + ", " + expr
}

// Render строит запрос:
//
//	WITH roster_<f> AS (SELECT key, agg(object(...)) AS <f> FROM <roster table> GROUP BY key), ...
//	SELECT object(...) AS data FROM <table> AS entity LEFT JOIN roster_<f> ON ... LIMIT n
//
// CTE и join есть только у запрошенных ростеров.
func (d jsonDialect) Render(p *Plan) (string, error) {
	if len(p.Projections) == 0 {
		return "", ErrEmptySelection
	}

	var ctes []string
	for _, a := range p.Aggregates {
		body, err := d.renderAggregate(p.Key, a)
		if err != nil {
			return "", err
		}
		ctes = append(ctes, ident(cteName(a))+" AS ("+body+")")
	}

	byField := make(map[string]Aggregate, len(p.Aggregates))
	for _, a := range p.Aggregates {
		byField[a.Field] = a
	}

	pairs := make([]string, 0, len(p.Projections))
	for _, pr := range p.Projections {
		if !pr.IsAggregate() {
			pairs = append(pairs, d.pair(pr, column(entityAlias, pr.Column)))
			continue
		}
		a, ok := byField[pr.Aggregate]
		if !ok {
			return "", fmt.Errorf("projection %q refers to unknown aggregate %q", pr.Key, pr.Aggregate)
		}
		pairs = append(pairs, literal(pr.Key)+", "+d.emptyList(column(cteName(a), a.Field)))
	}

	q := sq.Select(d.object(pairs) + " AS " + ident(dataColumn)).
		From(qualified(p.Schema, p.Table) + " AS " + ident(entityAlias))
	for _, a := range p.Aggregates {
		cte := cteName(a)
		q = q.LeftJoin(fmt.Sprintf("%s ON %s = %s", ident(cte), column(entityAlias, p.Key), column(cte, p.Key)))
	}
	q = q.Limit(p.Limit)
	if len(ctes) > 0 {
		q = q.Prefix("WITH " + strings.Join(ctes, ", "))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return "", err
	}
	if len(args) > 0 {
		return "", fmt.Errorf("unexpected statement arguments: %v", args)
	}
	return sql, nil
}

func (d jsonDialect) renderAggregate(key string, a Aggregate) (string, error) {
	if len(a.Columns) == 0 {
		return "", &SelectionShapeError{Field: a.Field, Reason: "roster field needs a sub-selection"}
	}
	pairs := make([]string, 0, len(a.Columns))
	for _, c := range a.Columns {
		pairs = append(pairs, d.pair(c, ident(c.Column)))
	}
	sql, _, err := sq.Select(ident(key), d.agg+"("+d.object(pairs)+") AS "+ident(a.Field)).
		From(qualified(a.Schema, a.Table)).
		GroupBy(ident(key)).
		ToSql()
	return sql, err
}
