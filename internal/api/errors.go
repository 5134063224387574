package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"surveygraph/internal/graph"
	"surveygraph/internal/logging"
	"surveygraph/internal/query"
)

// writeError: ошибки выборки -> 400, неизвестная сущность -> 404,
// ошибки хранилища и материализации -> 500.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	gerr := graph.Classify(err)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, query.ErrUnknownEntity):
		status = http.StatusNotFound
	case gerr.Code == graph.CodeUnknownField, gerr.Code == graph.CodeBadRequest:
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		logging.For(c.Request.Context(), log).Error("request failed",
			zap.String("path", c.Request.URL.Path), zap.String("code", gerr.Code), zap.Error(err))
	}
	body := gin.H{"error": err.Error(), "code": gerr.Code}
	if gerr.Kind != "" {
		body["kind"] = gerr.Kind
	}
	c.JSON(status, body)
}
