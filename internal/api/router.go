// api/router.go
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(svc *Service) *gin.Engine {
	log := svc.logger()
	r := gin.New()
	r.Use(RequestID(), AccessLog(log), Recovery(log))

	r.GET("/healthz", HealthHandler(svc))
	r.POST("/graphql", GraphQLHandler(svc))
	r.GET("/graphql", GraphQLHandler(svc))

	apiGroup := r.Group("/api")
	{
		// статические маршруты раньше параметрических
		apiGroup.GET("/meta", MetaListHandler(svc))
		apiGroup.GET("/meta/_bootstrap", BootstrapReportHandler(svc))
		apiGroup.GET("/meta/:entity", MetaEntityHandler(svc))

		apiGroup.GET("/entities/:entity", ListHandler(svc))

		apiGroup.GET("/admin/lint", AdminLintHandler(svc))
		apiGroup.POST("/admin/cache/clear", AdminCacheClearHandler(svc))
	}
	return r
}

// RunServer обслуживает запросы до отмены ctx, затем даёт активным
// запросам shutdownTimeout на завершение.
func RunServer(ctx context.Context, addr string, svc *Service, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		svc.logger().Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	svc.logger().Info("http server shutting down", zap.Duration("timeout", shutdownTimeout))
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	return <-errCh
}
