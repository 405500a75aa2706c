package analyses

import (
	"context"
	"errors"
	"time"

	"tariff-backend/internal/shared/metrics"
	"tariff-backend/internal/shared/telemetry"
)

// DefaultCacheFreshness is the window within which an existing analysis is
// eligible as a cache hit.
const DefaultCacheFreshness = 24 * time.Hour

// CacheLookup finds reusable analyses for equivalent comparison requests.
// Caching is best-effort: any store error degrades to a miss so a broken
// cache can never block generation.
type CacheLookup struct {
	Repo      Repo
	Freshness time.Duration

	now func() time.Time
}

// NewCacheLookup constructs a CacheLookup with the given freshness window.
// A non-positive freshness falls back to the default.
func NewCacheLookup(repo Repo, freshness time.Duration) *CacheLookup {
	if freshness <= 0 {
		freshness = DefaultCacheFreshness
	}
	return &CacheLookup{
		Repo:      repo,
		Freshness: freshness,
		now:       time.Now,
	}
}

// Check returns the newest fresh analysis matching the comparison identity
// under unordered set equality, or false on a miss.
func (c *CacheLookup) Check(ctx context.Context, typ ComparisonType, brands []string, ids []int64) (Analysis, bool) {
	since := c.now().UTC().Add(-c.Freshness)
	analysis, err := c.Repo.FindCached(ctx, typ, brandSetKey(brands), planIDSetKey(ids), since)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			telemetry.Warn("analyses.cache.lookup_failed", map[string]any{
				"type":  string(typ),
				"error": err.Error(),
			})
		}
		metrics.IncCacheMiss()
		return Analysis{}, false
	}
	metrics.IncCacheHit()
	return analysis, true
}
