package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crmlite/contact-api/internal/config"
	"github.com/crmlite/contact-api/internal/handler"
	"github.com/crmlite/contact-api/internal/logging"
	"github.com/crmlite/contact-api/internal/middleware"
	"github.com/crmlite/contact-api/internal/recorder"
	"github.com/crmlite/contact-api/internal/repository"
	"github.com/crmlite/contact-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("contact-api", cfg.LogLevel, cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := repository.Migrate(context.Background(), db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	contactSvc := service.NewContactService(repository.NewContactRepository(db), recorder.NewSlog())
	contactHandler := handler.NewContactHandler(contactSvc)
	logHandler := handler.NewFrontendLogHandler(repository.NewFrontendLogRepository(db), cfg.LogBatchMax)
	healthHandler := handler.NewHealthHandler(db)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users", contactHandler.List)
	mux.HandleFunc("POST /api/users", contactHandler.Create)
	mux.HandleFunc("GET /api/users/active", contactHandler.ListActive)
	mux.HandleFunc("GET /api/users/{id}", contactHandler.GetByID)
	mux.HandleFunc("PUT /api/users/{id}", contactHandler.Update)
	mux.HandleFunc("PATCH /api/users/{id}", contactHandler.Update)
	mux.HandleFunc("DELETE /api/users/{id}", contactHandler.Delete)

	mux.HandleFunc("POST /api/logs/frontend", logHandler.Ingest)
	mux.HandleFunc("POST /api/logs/frontend/batch", logHandler.IngestBatch)
	mux.HandleFunc("GET /api/logs/frontend/stats", logHandler.Stats)

	mux.HandleFunc("GET /health/live", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)

	var root http.Handler = mux
	root = middleware.Recovery(root)
	root = middleware.Logging(root)
	root = middleware.Tracing(root)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
