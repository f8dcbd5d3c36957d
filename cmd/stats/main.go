// stats prints per-day row counts of the choices table as JSON.
//
//	STORE_DRIVER=postgres DB_URL=postgres://... go run ./cmd/stats
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/reintausend/rfs/internal/config"
	"github.com/reintausend/rfs/internal/logger"
	"github.com/reintausend/rfs/internal/store"
	"github.com/reintausend/rfs/internal/tracking"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	st, err := store.New(cfg.StoreDriver, cfg.DBURL)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema", zap.Error(err))
	}

	stats, err := tracking.NewService(st, log).DailyStats(ctx)
	if err != nil {
		log.Fatal("Failed to compute daily stats", zap.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stats); err != nil {
		log.Fatal("Failed to write stats", zap.Error(err))
	}
}
