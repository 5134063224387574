package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"surveygraph/internal/api"
	"surveygraph/internal/cache"
	"surveygraph/internal/config"
	"surveygraph/internal/engine"
	"surveygraph/internal/graph"
	"surveygraph/internal/query"
	"surveygraph/internal/store"
)

func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Bootstrap the schema and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *RootOptions) error {
	cfg, log, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := buildService(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", zap.Error(err))
		return err
	}
	defer cleanup()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	return api.RunServer(ctx, cfg.Addr(), svc, cfg.Server.ShutdownTimeout)
}

// buildService: хранилище, bootstrap, кэш, движок и GraphQL-схема.
// cleanup закрывает всё открытое.
func buildService(ctx context.Context, cfg *config.Config, log *zap.Logger) (*api.Service, func(), error) {
	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	reg, report, err := bootstrap(ctx, cfg, b, log, false)
	if err != nil {
		b.close()
		return nil, nil, err
	}

	c, err := cache.New(cfg.Cache.Driver, cfg.Cache.TTL, cfg.Cache.RedisAddr, cfg.Cache.RedisDB)
	if err != nil {
		b.close()
		return nil, nil, err
	}

	exec := store.NewExecutor(b.db, b.classify, log, cfg.Query.StatementTimeout)
	eng := engine.New(query.NewCompiler(reg, cfg.Query.MaxLimit), b.dialect, exec, c, log)
	gql, err := graph.Build(reg, eng, cfg.Query.DefaultLimit)
	if err != nil {
		closeAll(b, c)
		return nil, nil, err
	}

	svc := &api.Service{
		Engine:       eng,
		Graph:        gql,
		Report:       report,
		Cache:        c,
		Store:        exec,
		Log:          log,
		DefaultLimit: cfg.Query.DefaultLimit,
	}
	return svc, func() { closeAll(b, c) }, nil
}

func closeAll(b *backend, c cache.Cache) {
	if c != nil {
		_ = c.Close()
	}
	_ = b.close()
}
