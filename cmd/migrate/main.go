package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"billguard-backend/internal/shared/config"
	"billguard-backend/internal/shared/storage/db"
	"billguard-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	log := telemetry.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, database); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}
	log.Info().Msg("migrations applied")
}
