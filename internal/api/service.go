package api

import (
	"context"

	"go.uber.org/zap"

	"surveygraph/internal/cache"
	"surveygraph/internal/engine"
	"surveygraph/internal/graph"
	"surveygraph/internal/schema"
)

// Pinger: проверка доступности хранилища для /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service: всё, что нужно обработчикам. Собирается один раз после
// bootstrap и дальше только читается.
type Service struct {
	Engine       *engine.Engine
	Graph        *graph.Schema
	Report       *schema.Report
	Cache        cache.Cache
	Store        Pinger
	Log          *zap.Logger
	DefaultLimit int
}

func (s *Service) registry() *schema.Registry { return s.Engine.Registry() }

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
