package graph

import (
	"errors"
	"fmt"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"

	"surveygraph/internal/query"
	"surveygraph/internal/schema"
)

const typenameField = "__typename"

// SelectionFromAST строит выборку по полям корневого запроса сущности.
// Фрагменты и inline-фрагменты раскрываются, __typename пропускается.
// Выборка из одного __typename превращается в выборку системного поля:
// SQL без колонок не строится.
func SelectionFromAST(fields []*ast.Field, fragments map[string]ast.Definition) query.Selection {
	var sel query.Selection
	for _, f := range fields {
		eachField(f.SelectionSet, fragments, map[string]bool{}, func(child *ast.Field) {
			name := child.Name.Value
			if name == typenameField {
				return
			}
			if child.SelectionSet == nil {
				sel = sel.Scalar(name)
				return
			}
			var sub []string
			eachField(child.SelectionSet, fragments, map[string]bool{}, func(leaf *ast.Field) {
				if leaf.Name.Value != typenameField {
					sub = append(sub, leaf.Name.Value)
				}
			})
			if len(sub) == 0 {
				sub = []string{schema.RosterVectorField}
			}
			sel = sel.Nested(name, sub...)
		})
	}
	if len(sel.Fields) == 0 {
		sel = sel.Scalar(schema.InterviewIDField)
	}
	return sel.Normalize()
}

func eachField(set *ast.SelectionSet, fragments map[string]ast.Definition, seen map[string]bool, fn func(*ast.Field)) {
	if set == nil {
		return
	}
	for _, s := range set.Selections {
		switch node := s.(type) {
		case *ast.Field:
			fn(node)
		case *ast.InlineFragment:
			eachField(node.SelectionSet, fragments, seen, fn)
		case *ast.FragmentSpread:
			name := node.Name.Value
			if seen[name] {
				continue
			}
			seen[name] = true
			if def, ok := fragments[name].(*ast.FragmentDefinition); ok {
				eachField(def.SelectionSet, fragments, seen, fn)
			}
		}
	}
}

// ParseSelection разбирает выборку в синтаксисе GraphQL без корневого
// поля: "{ age household { member_name } }". Нужна CLI-команде compile.
func ParseSelection(text string) (query.Selection, error) {
	doc, err := parser.Parse(parser.ParseParams{Source: text})
	if err != nil {
		return query.Selection{}, err
	}
	var op *ast.OperationDefinition
	fragments := make(map[string]ast.Definition)
	for _, def := range doc.Definitions {
		switch d := def.(type) {
		case *ast.OperationDefinition:
			if op != nil {
				return query.Selection{}, errors.New("selection must contain exactly one operation")
			}
			op = d
		case *ast.FragmentDefinition:
			fragments[d.Name.Value] = d
		default:
			return query.Selection{}, fmt.Errorf("unexpected definition %T in selection", def)
		}
	}
	if op == nil {
		return query.Selection{}, errors.New("selection has no operation")
	}
	root := &ast.Field{Name: &ast.Name{Value: "root"}, SelectionSet: op.SelectionSet}
	return SelectionFromAST([]*ast.Field{root}, fragments), nil
}
