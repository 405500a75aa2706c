package analyses

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo stores analyses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Analysis
	all  []Analysis
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Analysis)}
}

// Insert stores the analysis.
func (r *MemoryRepo) Insert(ctx context.Context, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[analysis.ID] = analysis
	r.all = append(r.all, analysis)
	return nil
}

// GetByID returns an analysis by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	analysis, ok := r.byID[analysisID]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return analysis, nil
}

// FindCached returns the newest fresh analysis matching the comparison
// identity exactly.
func (r *MemoryRepo) FindCached(ctx context.Context, typ ComparisonType, brandsKey, planIDsKey string, since time.Time) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var newest *Analysis
	for i := range r.all {
		candidate := &r.all[i]
		if candidate.Type != typ {
			continue
		}
		if candidate.CreatedAt.Before(since) {
			continue
		}
		if brandSetKey(candidate.Brands) != brandsKey || planIDSetKey(candidate.PlanIDs) != planIDsKey {
			continue
		}
		if newest == nil || candidate.CreatedAt.After(newest.CreatedAt) {
			newest = candidate
		}
	}
	if newest == nil {
		return Analysis{}, ErrNotFound
	}
	return *newest, nil
}

var _ Repo = (*MemoryRepo)(nil)
