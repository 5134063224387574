package graph

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"surveygraph/internal/result"
)

// Date: дата без времени ("2024-03-01") или момент времени в RFC 3339.
var Date = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Date",
	Description: "Calendar date (YYYY-MM-DD) or an RFC 3339 timestamp when a time part is present.",
	Serialize: func(value interface{}) interface{} {
		switch v := value.(type) {
		case time.Time:
			return result.FormatDate(v)
		case *time.Time:
			if v == nil {
				return nil
			}
			return result.FormatDate(*v)
		case string:
			return v
		}
		return nil
	},
	ParseValue: func(value interface{}) interface{} {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		return parseDate(s)
	},
	ParseLiteral: func(valueAST ast.Value) interface{} {
		sv, ok := valueAST.(*ast.StringValue)
		if !ok {
			return nil
		}
		return parseDate(sv.Value)
	},
})

func parseDate(s string) interface{} {
	for _, layout := range []string{time.DateOnly, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return nil
}

// UUID: идентификатор интервью.
var UUID = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "UUID",
	Description: "RFC 4122 UUID in canonical textual form.",
	Serialize: func(value interface{}) interface{} {
		switch v := value.(type) {
		case uuid.UUID:
			return v.String()
		case string:
			return v
		}
		return nil
	},
	ParseValue: func(value interface{}) interface{} {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		return parseUUID(s)
	},
	ParseLiteral: func(valueAST ast.Value) interface{} {
		sv, ok := valueAST.(*ast.StringValue)
		if !ok {
			return nil
		}
		return parseUUID(sv.Value)
	},
})

func parseUUID(s string) interface{} {
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return id
}

// Long: 64-битное целое. Встроенный Int ограничен 32 битами, а числовые
// ответы анкет (доход, население) его превышают.
var Long = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Long",
	Description: "64-bit signed integer.",
	Serialize:   coerceLong,
	ParseValue:  coerceLong,
	ParseLiteral: func(valueAST ast.Value) interface{} {
		iv, ok := valueAST.(*ast.IntValue)
		if !ok {
			return nil
		}
		n, err := strconv.ParseInt(iv.Value, 10, 64)
		if err != nil {
			return nil
		}
		return n
	},
})

func coerceLong(value interface{}) interface{} {
	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v > math.MaxInt64 {
			return nil
		}
		return int64(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return nil
		}
		return n
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil
		}
		return n
	}
	return nil
}
