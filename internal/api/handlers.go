package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"surveygraph/internal/graph"
	"surveygraph/internal/query"
	"surveygraph/internal/schema"
)

// GET /api/entities/:entity?fields=age,household.member_name&limit=5
func ListHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		td, ok := resolveEntity(svc.registry(), c.Param("entity"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
			return
		}
		lp, err := parseListParams(c.Request.URL.Query(), svc.DefaultLimit)
		if err != nil {
			code := graph.Classify(err).Code
			if code == graph.CodeInternal {
				code = graph.CodeBadRequest
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": code})
			return
		}
		if len(lp.Selection.Fields) == 0 {
			lp.Selection = scalarSelection(td)
		}

		objs, err := svc.Engine.Query(c.Request.Context(), td.Key, lp.Selection, lp.Limit)
		if err != nil {
			writeError(c, svc.logger(), err)
			return
		}
		c.Header("X-Result-Count", strconv.Itoa(len(objs)))
		c.JSON(http.StatusOK, objs)
	}
}

func scalarSelection(td *schema.TypeDef) query.Selection {
	var sel query.Selection
	for _, f := range td.Fields {
		if f.Kind == schema.FieldScalar {
			sel = sel.Scalar(f.Name)
		}
	}
	return sel
}

// POST /graphql, GET /graphql?query=...
// Ошибки GraphQL отдаются с 200 в поле errors; 400 только для
// нечитаемого тела запроса.
func GraphQLHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req graph.Request
		if c.Request.Method == http.MethodGet {
			req.Query = c.Query("query")
			req.OperationName = c.Query("operationName")
		} else if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON", "details": err.Error()})
			return
		}
		if req.Query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
			return
		}
		c.JSON(http.StatusOK, svc.Graph.Execute(c.Request.Context(), req))
	}
}

// GET /healthz
func HealthHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		entities := svc.registry().Len()
		if svc.Store != nil {
			if err := svc.Store.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error(), "entities": entities})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "entities": entities})
	}
}
