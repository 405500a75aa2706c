package plans

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a plan row does not exist.
var ErrNotFound = errors.New("not found")

// Repo defines persistence operations for plan rows. Rows are append-only:
// there is no update or upsert path.
type Repo interface {
	Insert(ctx context.Context, rec NormalizedPlanRecord) (PlanRow, error)
	// InsertMany persists all records in a single transaction, all-or-nothing.
	InsertMany(ctx context.Context, recs []NormalizedPlanRecord) ([]PlanRow, error)
	// List returns rows scraped at or after since, newest first, optionally
	// filtered by source brand (case-insensitive). Empty brand means all.
	List(ctx context.Context, since time.Time, brand string) ([]PlanRow, error)
}
