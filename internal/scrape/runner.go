package scrape

import (
	"context"
	"fmt"

	"tariff-backend/internal/plans"
	"tariff-backend/internal/shared/metrics"
	"tariff-backend/internal/shared/telemetry"
)

// Runner drives a scrape run: each adapter's raw records are normalized and
// bulk-inserted per source in a single transaction. A failing source never
// stops the rest of the run.
type Runner struct {
	Adapters []Adapter
	Repo     plans.Repo
}

// Result summarizes one scrape run.
type Result struct {
	Sources  int
	Inserted int
	Failed   []string
}

// Run executes all adapters sequentially and returns a per-run summary. The
// returned error is non-nil only when every source failed.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	res := Result{Sources: len(r.Adapters)}
	for _, adapter := range r.Adapters {
		source := adapter.Source()
		inserted, err := r.runSource(ctx, adapter)
		if err != nil {
			res.Failed = append(res.Failed, source)
			telemetry.Error("scrape.source_failed", map[string]any{
				"source": source,
				"error":  err.Error(),
			})
			continue
		}
		res.Inserted += inserted
		telemetry.Info("scrape.source_done", map[string]any{
			"source":   source,
			"inserted": inserted,
		})
	}
	if len(r.Adapters) > 0 && len(res.Failed) == len(r.Adapters) {
		return res, fmt.Errorf("all %d sources failed", len(r.Adapters))
	}
	return res, nil
}

func (r *Runner) runSource(ctx context.Context, adapter Adapter) (int, error) {
	raw, err := adapter.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	if len(raw) == 0 {
		return 0, nil
	}
	metrics.AddScrapeRecords(len(raw))

	normalized := plans.NormalizePlans(raw, adapter.Source())
	rows, err := r.Repo.InsertMany(ctx, normalized)
	if err != nil {
		return 0, fmt.Errorf("insert: %w", err)
	}
	return len(rows), nil
}
