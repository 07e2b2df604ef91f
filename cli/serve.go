package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github/itish2003/portfolio-rag/controller"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.Ingest.AutoSeedOrDefault() {
				autoSeed(ctx, a)
			}
			return serve(ctx, a, newRouter(a))
		},
	}
}

// autoSeed fills an empty collection. Failures are logged; the server still
// starts and answers with the no-information reply.
func autoSeed(ctx context.Context, a *app) {
	report, err := a.indexer.SeedIfEmpty(ctx, a.cfg.Ingest.DataFilePath(), a.cfg.Ingest.FallbackFilePath())
	if err != nil {
		a.logger.Error("auto-seed failed", zap.Error(err))
		return
	}
	if report.Chunks > 0 {
		a.logger.Info("auto-seed finished",
			zap.Int("documents", report.Documents),
			zap.Int("chunks", report.Chunks),
			zap.Int("skipped", report.Skipped))
	}
}

func newRouter(a *app) *gin.Engine {
	if !a.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), controller.CORS())

	ragController := controller.NewRAGController(a.rag, a.cfg.Server.MaxQuestionLength, a.logger)
	ragController.RegisterRoutes(router)
	return router
}

func serve(ctx context.Context, a *app, handler http.Handler) error {
	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	timeout := time.Duration(a.cfg.Server.TimeoutSecs) * time.Second
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting",
			zap.String("addr", addr),
			zap.String("collection", a.index.Name()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
