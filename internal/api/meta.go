package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"surveygraph/internal/schema"
)

// ===== META HANDLERS =====

type metaEntityListItem struct {
	Entity    string `json:"entity"`
	Title     string `json:"title,omitempty"`
	Workspace string `json:"workspace"`
	Schema    string `json:"schema"`
	Table     string `json:"table"`
	Fields    int    `json:"fields"`
	Rosters   int    `json:"rosters"`
}

// GET /api/meta
func MetaListHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		reg := svc.registry()
		out := make([]metaEntityListItem, 0, reg.Len())
		for _, td := range reg.Entities() {
			b, _ := reg.Binding(td.Key)
			out = append(out, metaEntityListItem{
				Entity:    td.Key,
				Title:     td.Title,
				Workspace: b.Workspace,
				Schema:    b.Schema,
				Table:     b.Table,
				Fields:    len(td.Fields),
				Rosters:   len(td.RosterFields()),
			})
		}
		c.JSON(http.StatusOK, out)
	}
}

type metaField struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Type        string `json:"type,omitempty"`
	Roster      string `json:"roster,omitempty"`
	Description string `json:"description,omitempty"`
	System      bool   `json:"system,omitempty"`
}

type metaType struct {
	Name   string      `json:"name"`
	Title  string      `json:"title,omitempty"`
	Fields []metaField `json:"fields"`
}

type metaEntity struct {
	metaType
	Binding schema.Binding `json:"binding"`
	Rosters []metaType     `json:"rosters"`
}

// GET /api/meta/:entity
func MetaEntityHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		reg := svc.registry()
		td, ok := resolveEntity(reg, c.Param("entity"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
			return
		}
		b, _ := reg.Binding(td.Key)
		out := metaEntity{metaType: describe(td), Binding: b, Rosters: []metaType{}}
		for _, rf := range td.RosterFields() {
			if rt, ok := reg.Type(rf.Roster); ok {
				out.Rosters = append(out.Rosters, describe(rt))
			}
		}
		c.JSON(http.StatusOK, out)
	}
}

func describe(td *schema.TypeDef) metaType {
	fields := make([]metaField, 0, len(td.Fields))
	for _, f := range td.Fields {
		mf := metaField{
			Name:        f.Name,
			Kind:        f.Kind.String(),
			Description: f.Description,
			System:      f.System,
		}
		if f.Kind == schema.FieldRoster {
			mf.Roster = f.Roster
		} else {
			mf.Type = string(f.ValueType)
		}
		fields = append(fields, mf)
	}
	return metaType{Name: td.Key, Title: td.Title, Fields: fields}
}

// GET /api/meta/_bootstrap
func BootstrapReportHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if svc.Report == nil {
			c.JSON(http.StatusOK, gin.H{"summary": gin.H{}, "workspaces": []any{}, "entities": []any{}})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"summary":    svc.Report.Summary(),
			"workspaces": svc.Report.Workspaces,
			"entities":   svc.Report.Entities,
		})
	}
}
