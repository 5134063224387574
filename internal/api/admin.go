package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"surveygraph/internal/logging"
	"surveygraph/internal/schema"
)

// Реестр неизменяем после старта, поэтому админка только читает его
// и чистит кэш запросов. Новые анкеты подхватываются перезапуском.

// GET /api/admin/lint
func AdminLintHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		issues := schema.Lint(svc.registry())
		if issues == nil {
			issues = []schema.Issue{}
		}
		c.JSON(http.StatusOK, gin.H{"ok": len(issues) == 0, "issues": issues})
	}
}

// POST /api/admin/cache/clear
func AdminCacheClearHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if svc.Cache == nil {
			c.JSON(http.StatusOK, gin.H{"ok": true, "cache": "disabled"})
			return
		}
		if err := svc.Cache.Clear(c.Request.Context()); err != nil {
			logging.For(c.Request.Context(), svc.logger()).Error("statement cache clear failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cache clear failed", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
