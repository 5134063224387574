// Package graph строит GraphQL-схему из замороженного реестра: объектный
// тип на каждую сущность и ростер, корневое поле запроса на каждую сущность.
package graph

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql"

	"surveygraph/internal/metadata"
	"surveygraph/internal/query"
	"surveygraph/internal/result"
	"surveygraph/internal/schema"
)

// Runner выполняет выборку по сущности; реализуется engine.Engine.
type Runner interface {
	Query(ctx context.Context, entity string, sel query.Selection, limit int) ([]*result.Object, error)
}

// EntitiesField: служебное корневое поле со списком сущностей. Есть
// всегда, поэтому схема валидна и при пустом реестре.
const EntitiesField = "_entities"

type Schema struct {
	gql graphql.Schema
}

type builder struct {
	reg     *schema.Registry
	run     Runner
	objects map[string]*graphql.Object
}

// Build собирает схему. defaultLimit подставляется, если клиент не
// передал аргумент limit.
func Build(reg *schema.Registry, run Runner, defaultLimit int) (*Schema, error) {
	b := &builder{reg: reg, run: run, objects: make(map[string]*graphql.Object)}

	names := reg.EntityNames()
	fields := graphql.Fields{
		EntitiesField: &graphql.Field{
			Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String))),
			Description: "Names of the queryable entities.",
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return names, nil
			},
		},
	}
	for _, td := range reg.Entities() {
		obj, err := b.object(td)
		if err != nil {
			return nil, err
		}
		fields[td.Key] = &graphql.Field{
			Type:        graphql.NewList(obj),
			Description: td.Title,
			Args: graphql.FieldConfigArgument{
				"limit": &graphql.ArgumentConfig{
					Type:         graphql.Int,
					DefaultValue: defaultLimit,
					Description:  "Maximum number of records.",
				},
			},
			Resolve: b.resolveEntity(td.Key, defaultLimit),
		}
	}

	gql, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: fields}),
	})
	if err != nil {
		return nil, fmt.Errorf("build graphql schema: %w", err)
	}
	return &Schema{gql: gql}, nil
}

func (s *Schema) GraphQL() graphql.Schema { return s.gql }

func (b *builder) object(td *schema.TypeDef) (*graphql.Object, error) {
	if obj, ok := b.objects[td.Key]; ok {
		return obj, nil
	}
	fields := graphql.Fields{}
	for _, f := range td.Fields {
		var typ graphql.Output
		if f.Kind == schema.FieldRoster {
			rt, ok := b.reg.Type(f.Roster)
			if !ok {
				return nil, fmt.Errorf("%s.%s: roster type %q is not registered", td.Key, f.Name, f.Roster)
			}
			robj, err := b.object(rt)
			if err != nil {
				return nil, err
			}
			// поле необязательное, как и все; пустой ростер резолвится в []
			typ = graphql.NewList(robj)
		} else {
			st, err := outputType(f.ValueType)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", td.Key, f.Name, err)
			}
			typ = st
		}
		fields[f.Name] = &graphql.Field{
			Type:        typ,
			Description: f.Description,
			Resolve:     resolveField(f),
		}
	}
	obj := graphql.NewObject(graphql.ObjectConfig{
		Name:        td.Key,
		Description: td.Title,
		Fields:      fields,
	})
	b.objects[td.Key] = obj
	return obj, nil
}

func outputType(vt metadata.ValueType) (graphql.Output, error) {
	switch vt {
	case metadata.ValueText, metadata.ValueVarString:
		return graphql.String, nil
	case metadata.ValueTextList:
		return graphql.NewList(graphql.String), nil
	case metadata.ValueSingleChoice:
		return graphql.Int, nil
	case metadata.ValueNumeric, metadata.ValueVarLong:
		return Long, nil
	case metadata.ValueVarDouble:
		return graphql.Float, nil
	case metadata.ValueVarBool:
		return graphql.Boolean, nil
	case metadata.ValueDate, metadata.ValueVarDate:
		return Date, nil
	case metadata.ValueInterviewID:
		return UUID, nil
	case metadata.ValueMultiChoice, metadata.ValueRosterVector:
		return graphql.NewList(graphql.Int), nil
	}
	return nil, fmt.Errorf("unknown type: %s", vt)
}

func resolveField(f schema.Field) graphql.FieldResolveFn {
	name := f.Name
	if f.Kind == schema.FieldRoster {
		return func(p graphql.ResolveParams) (interface{}, error) {
			obj, ok := p.Source.(*result.Object)
			if !ok {
				return nil, nil
			}
			rows := obj.Rows(name)
			if rows == nil {
				rows = []*result.Object{}
			}
			return rows, nil
		}
	}
	return func(p graphql.ResolveParams) (interface{}, error) {
		obj, ok := p.Source.(*result.Object)
		if !ok {
			return nil, nil
		}
		v, _ := obj.Get(name)
		return v, nil
	}
}

func (b *builder) resolveEntity(entity string, defaultLimit int) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		limit := defaultLimit
		if v, ok := p.Args["limit"].(int); ok {
			limit = v
		}
		sel := SelectionFromAST(p.Info.FieldASTs, p.Info.Fragments)
		objs, err := b.run.Query(p.Context, entity, sel, limit)
		if err != nil {
			return nil, Classify(err)
		}
		return objs, nil
	}
}
