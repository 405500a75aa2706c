package analyses

import (
	"context"
	"time"
)

// Repo defines persistence operations for analyses. Rows are immutable once
// written.
type Repo interface {
	Insert(ctx context.Context, analysis Analysis) error
	GetByID(ctx context.Context, analysisID string) (Analysis, error)
	// FindCached returns the newest analysis created at or after since whose
	// comparison type, brand set and plan-id set all match exactly. The set
	// keys are the canonical forms produced by brandSetKey and planIDSetKey.
	FindCached(ctx context.Context, typ ComparisonType, brandsKey, planIDsKey string, since time.Time) (Analysis, error)
}
