package analyses

import (
	"context"
	"errors"
	"testing"
	"time"
)

func seedAnalysis(t *testing.T, repo Repo, typ ComparisonType, brands []string, ids []int64, createdAt time.Time) Analysis {
	t.Helper()
	analysis := Analysis{
		ID:        "analysis-" + createdAt.Format("150405.000000000"),
		Type:      typ,
		Brands:    brands,
		PlanIDs:   ids,
		Payload:   validPayloadMap(typ),
		CreatedAt: createdAt,
	}
	if err := repo.Insert(context.Background(), analysis); err != nil {
		t.Fatalf("seed analysis: %v", err)
	}
	return analysis
}

func TestCacheLookupHitWithinFreshness(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Now().UTC()
	seeded := seedAnalysis(t, repo, CompareBrandVsMarket, []string{"giffgaff", "voxi"}, []int64{1, 2}, now.Add(-time.Hour))

	cache := NewCacheLookup(repo, 24*time.Hour)
	got, ok := cache.Check(context.Background(), CompareBrandVsMarket, []string{"giffgaff", "voxi"}, []int64{1, 2})
	if !ok {
		t.Fatalf("expected hit")
	}
	if got.ID != seeded.ID {
		t.Errorf("ID = %q, want %q", got.ID, seeded.ID)
	}
}

func TestCacheLookupOrderIndependent(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Now().UTC()
	seedAnalysis(t, repo, CompareBrandVsMarket, []string{"voxi", "giffgaff", "smarty"}, []int64{3, 1, 2}, now.Add(-time.Hour))

	cache := NewCacheLookup(repo, 24*time.Hour)
	if _, ok := cache.Check(context.Background(), CompareBrandVsMarket, []string{"smarty", "voxi", "giffgaff"}, []int64{2, 3, 1}); !ok {
		t.Fatalf("permuted request should hit")
	}
	if _, ok := cache.Check(context.Background(), CompareBrandVsMarket, []string{"GiffGaff", " voxi ", "smarty"}, []int64{1, 2, 3}); !ok {
		t.Fatalf("case and whitespace variations should hit")
	}
}

func TestCacheLookupRequiresExactSets(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Now().UTC()
	seedAnalysis(t, repo, CompareBrandVsMarket, []string{"giffgaff", "voxi"}, []int64{1, 2}, now.Add(-time.Hour))

	cache := NewCacheLookup(repo, 24*time.Hour)
	cases := []struct {
		name   string
		typ    ComparisonType
		brands []string
		ids    []int64
	}{
		{"extra brand", CompareBrandVsMarket, []string{"giffgaff", "voxi", "smarty"}, []int64{1, 2}},
		{"missing brand", CompareBrandVsMarket, []string{"giffgaff"}, []int64{1, 2}},
		{"different plan set", CompareBrandVsMarket, []string{"giffgaff", "voxi"}, []int64{1, 3}},
		{"plan superset", CompareBrandVsMarket, []string{"giffgaff", "voxi"}, []int64{1, 2, 3}},
		{"different type", CompareBrandPair, []string{"giffgaff", "voxi"}, []int64{1, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := cache.Check(context.Background(), tc.typ, tc.brands, tc.ids); ok {
				t.Fatalf("expected miss")
			}
		})
	}
}

func TestCacheLookupExpiredEntriesMiss(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Now().UTC()
	seedAnalysis(t, repo, CompareBrandVsMarket, []string{"giffgaff", "voxi"}, []int64{1, 2}, now.Add(-25*time.Hour))

	cache := NewCacheLookup(repo, 24*time.Hour)
	if _, ok := cache.Check(context.Background(), CompareBrandVsMarket, []string{"giffgaff", "voxi"}, []int64{1, 2}); ok {
		t.Fatalf("stale entry should miss")
	}
}

func TestCacheLookupPrefersNewestMatch(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Now().UTC()
	seedAnalysis(t, repo, CompareBrandVsMarket, []string{"giffgaff", "voxi"}, []int64{1, 2}, now.Add(-10*time.Hour))
	newest := seedAnalysis(t, repo, CompareBrandVsMarket, []string{"voxi", "giffgaff"}, []int64{2, 1}, now.Add(-time.Hour))

	cache := NewCacheLookup(repo, 24*time.Hour)
	got, ok := cache.Check(context.Background(), CompareBrandVsMarket, []string{"giffgaff", "voxi"}, []int64{1, 2})
	if !ok {
		t.Fatalf("expected hit")
	}
	if got.ID != newest.ID {
		t.Errorf("ID = %q, want newest %q", got.ID, newest.ID)
	}
}

type failingAnalysisRepo struct {
	Repo
}

func (f *failingAnalysisRepo) FindCached(ctx context.Context, typ ComparisonType, brandsKey, planIDsKey string, since time.Time) (Analysis, error) {
	return Analysis{}, errors.New("store down")
}

func TestCacheLookupStoreErrorDegradesToMiss(t *testing.T) {
	cache := NewCacheLookup(&failingAnalysisRepo{}, 24*time.Hour)
	if _, ok := cache.Check(context.Background(), CompareBrandVsMarket, []string{"giffgaff"}, []int64{1}); ok {
		t.Fatalf("store failure must degrade to a miss")
	}
}
