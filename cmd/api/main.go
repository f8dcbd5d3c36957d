package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/reintausend/rfs/internal/config"
	"github.com/reintausend/rfs/internal/httpserver"
	"github.com/reintausend/rfs/internal/logger"
	"github.com/reintausend/rfs/internal/store"
	"github.com/reintausend/rfs/internal/tracking"
)

// main boots the service: config → logger → store → schema → HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting tracking API",
		zap.String("environment", cfg.Env),
		zap.String("store_driver", cfg.StoreDriver),
		zap.String("address", cfg.HTTPAddr))

	st, err := store.New(cfg.StoreDriver, cfg.DBURL)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}
	defer st.Close()

	// Ensure the choices table exists so a fresh database works out of the box.
	if err := st.EnsureSchema(context.Background()); err != nil {
		log.Fatal("Failed to initialize schema", zap.Error(err))
	}

	svc := tracking.NewService(st, log)
	router := httpserver.NewRouter(cfg, st, svc, log)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Graceful shutdown failed", zap.Error(err))
		}
	}()

	log.Info("API server listening", zap.String("address", cfg.HTTPAddr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("API server failed", zap.Error(err))
	}
	log.Info("API server stopped")
}
