package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"attendance-monitor/internal/app"
	"attendance-monitor/internal/config"
	"attendance-monitor/internal/store"
)

// migrate creates or updates the schema and the default admin, then exits.
func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	lg := app.Logger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	db, err := store.NewDB(cfg.DBDriver, cfg.DatabaseURL, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("db connect failed")
	}

	start := time.Now()
	if _, err := app.Prepare(ctx, cfg, db, lg); err != nil {
		_ = db.Close()
		lg.Error().Err(err).Msg("migration failed")
		os.Exit(1)
	}
	_ = db.Close()
	lg.Info().Dur("took", time.Since(start)).Msg("migration complete")
}
