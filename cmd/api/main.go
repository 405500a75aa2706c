package main

import (
	"context"
	"fmt"
	"log"

	"tariff-backend/internal/analyses"
	"tariff-backend/internal/llm"
	"tariff-backend/internal/llm/openai"
	"tariff-backend/internal/plans"
	"tariff-backend/internal/server"
	"tariff-backend/internal/shared/config"
	"tariff-backend/internal/shared/storage/db"
	"tariff-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Configure(cfg.Env)
	defer telemetry.Sync()

	ctx := context.Background()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	llmClient, err := newLLMClient(cfg)
	if err != nil {
		log.Fatalf("init llm client: %v", err)
	}

	planRepo := &plans.PGRepo{DB: sqlDB}
	analysisRepo := &analyses.PGRepo{DB: sqlDB}

	cache := analyses.NewCacheLookup(analysisRepo, cfg.CacheFreshness)
	generator := analyses.NewGenerator(llmClient)
	svc := analyses.NewService(analysisRepo, cache, generator)

	engine := server.NewEngine(cfg,
		plans.NewHandler(planRepo, cfg.PlanLookback),
		analyses.NewHandler(svc, planRepo, cfg.PlanLookback),
	)

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func newLLMClient(cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "", "openai":
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}
