package graph

import (
	"context"

	"github.com/graphql-go/graphql"
)

// Request: тело POST /graphql.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

// Execute выполняет документ. Ошибки возвращаются внутри Result,
// каждая с extensions.code.
func (s *Schema) Execute(ctx context.Context, req Request) *graphql.Result {
	res := graphql.Do(graphql.Params{
		Schema:         s.gql,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        ctx,
	})
	annotate(res.Errors)
	return res
}
