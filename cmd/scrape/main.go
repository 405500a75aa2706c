package main

// Load captured scrape output into the plans table:
//   go run ./cmd/scrape

import (
	"context"
	"log"
	"os"

	"tariff-backend/internal/plans"
	"tariff-backend/internal/scrape"
	"tariff-backend/internal/shared/config"
	"tariff-backend/internal/shared/storage/db"
	"tariff-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Configure(cfg.Env)
	defer telemetry.Sync()

	ctx := context.Background()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultJobOptions()))
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		log.Printf("failed to run migrations: %v", err)
		os.Exit(1)
	}

	adapters, err := scrape.DiscoverFileAdapters(cfg.ScrapeDataDir)
	if err != nil {
		log.Printf("failed to discover scrape files in %s: %v", cfg.ScrapeDataDir, err)
		os.Exit(1)
	}
	if len(adapters) == 0 {
		log.Printf("no scrape files found in %s", cfg.ScrapeDataDir)
		return
	}

	runner := &scrape.Runner{Adapters: adapters, Repo: &plans.PGRepo{DB: sqlDB}}
	res, err := runner.Run(ctx)
	if err != nil {
		log.Printf("scrape run failed: %v", err)
		os.Exit(1)
	}

	log.Printf("scrape run complete: sources=%d inserted=%d failed=%v",
		res.Sources, res.Inserted, res.Failed)
}
