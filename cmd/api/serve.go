package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"school-assistant-backend/internal/ai"
	"school-assistant-backend/internal/analytics"
	"school-assistant-backend/internal/assistant"
	"school-assistant-backend/internal/dashboard"
	"school-assistant-backend/internal/db"
	"school-assistant-backend/internal/httpapi"
	"school-assistant-backend/internal/session"
	"school-assistant-backend/internal/tasks"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx := cmd.Context()

	database, err := db.Connect(ctx, cfg.ConnString())
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(ctx, database); err != nil {
		return err
	}
	logger.Info("Connected to PostgreSQL")

	rdb, err := session.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	invoker, err := newInvoker(ctx)
	if err != nil {
		return err
	}

	taskStore := tasks.NewStore(database)
	snapshots := dashboard.NewStore(database)
	sessions := session.NewManager(rdb, cfg.SessionTTL, cfg.SessionMaxHistory, logger)

	handler := httpapi.NewHandler(httpapi.Deps{
		DB:          database,
		JWTSecret:   []byte(cfg.JWTSecret),
		Invoker:     invoker,
		Assistant:   assistant.NewService(invoker, taskStore, snapshots, logger),
		Sessions:    sessions,
		Tasks:       taskStore,
		Snapshots:   snapshots,
		Events:      analytics.NewRecorder(database, logger),
		Limiter:     httpapi.NewLimiter(cfg.RateLimitPerMinute),
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	})
	server := httpapi.NewServer(cfg.HTTPAddr, handler)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server starting", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}

	logger.Info("API server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("API server forced to shutdown", zap.Error(err))
		return err
	}
	logger.Info("API server stopped")
	return nil
}

func newInvoker(ctx context.Context) (*ai.Invoker, error) {
	gen, err := ai.NewGeminiGenerator(ctx, cfg.GeminiKey)
	if err != nil {
		return nil, err
	}
	prompts, err := ai.LoadPrompts(cfg.PromptsPath)
	if err != nil {
		return nil, err
	}
	return ai.NewInvoker(gen, prompts, cfg.GeminiModel, cfg.AITimeout, logger), nil
}
