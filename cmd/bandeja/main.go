package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/RelicDragon/bandeja-sub007/app"
	"github.com/RelicDragon/bandeja-sub007/config"
	"github.com/RelicDragon/bandeja-sub007/pkg/observability"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	migrateOnStart := flag.Bool("migrate", false, "Apply database migrations before starting")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	obs := observability.Init(config.ToObsConfig(cfg))
	logger := obs.Logger
	logger.Info("Starting bandeja service")

	application, err := app.NewApp(ctx, cfg, obs)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	if *migrateOnStart {
		if err := app.MigrateAll(ctx, application.DB); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		if cfg.Queue.Enabled {
			if err := app.MigrateRiver(ctx, cfg.Postgres.DSN); err != nil {
				log.Fatalf("Failed to run river migrations: %v", err)
			}
		}
		logger.Info("Migrations applied")
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("Application stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Application stopped")
}
