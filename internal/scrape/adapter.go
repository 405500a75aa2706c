package scrape

import (
	"context"

	"tariff-backend/internal/plans"
)

// Adapter is the boundary to a site-specific scraper. Adapters own page
// fetching and DOM extraction; the pipeline only sees the raw records they
// emit, with no required shape.
type Adapter interface {
	// Source returns the brand label records from this adapter are stored
	// under.
	Source() string
	Fetch(ctx context.Context) ([]plans.RawPlanRecord, error)
}
