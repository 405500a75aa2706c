package plans

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo stores plan rows in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	rows   []PlanRow
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{nextID: 1}
}

// Insert stores one record.
func (r *MemoryRepo) Insert(ctx context.Context, rec NormalizedPlanRecord) (PlanRow, error) {
	if err := ctx.Err(); err != nil {
		return PlanRow{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(rec), nil
}

// InsertMany stores all records atomically.
func (r *MemoryRepo) InsertMany(ctx context.Context, recs []NormalizedPlanRecord) ([]PlanRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PlanRow, 0, len(recs))
	for _, rec := range recs {
		out = append(out, r.insertLocked(rec))
	}
	return out, nil
}

// List returns rows scraped at or after since, newest first.
func (r *MemoryRepo) List(ctx context.Context, since time.Time, brand string) ([]PlanRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []PlanRow
	for _, row := range r.rows {
		if row.ScrapedAt.Before(since) {
			continue
		}
		if brand != "" && !strings.EqualFold(row.Source, brand) {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScrapedAt.Equal(out[j].ScrapedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].ScrapedAt.After(out[j].ScrapedAt)
	})
	return out, nil
}

func (r *MemoryRepo) insertLocked(rec NormalizedPlanRecord) PlanRow {
	row := PlanRow{
		ID:                   r.nextID,
		ScrapedAt:            time.Now().UTC(),
		NormalizedPlanRecord: rec,
	}
	r.nextID++
	r.rows = append(r.rows, row)
	return row
}

var _ Repo = (*MemoryRepo)(nil)
