package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/olivramos/beneficioops/internal/api"
	"github.com/olivramos/beneficioops/internal/config"
	"github.com/olivramos/beneficioops/internal/service"
	"github.com/olivramos/beneficioops/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Persistence collaborator is optional; without DB_SOURCE the store
	// runs purely in memory.
	var persister store.Persister
	if cfg.DBSource != "" {
		pg, err := store.NewPostgres(ctx, cfg.DBSource)
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		defer pg.Close()

		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal("schema setup failed", zap.Error(err))
		}
		persister = pg
	}

	benefits := store.NewMemory(persister, logger)
	if err := benefits.Load(ctx); err != nil {
		logger.Fatal("loading beneficios failed", zap.Error(err))
	}

	engine := service.NewTransferEngine(benefits)
	stats := service.NewStats(benefits)
	handler := api.NewHandler(benefits, engine, stats, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.NewRouter(handler, logger),
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
