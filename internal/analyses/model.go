package analyses

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"tariff-backend/internal/plans"
)

// ComparisonType selects which analysis variant to generate.
type ComparisonType string

const (
	// CompareBrandVsMarket compares the distinguished brand against every
	// other brand in the selection.
	CompareBrandVsMarket ComparisonType = "brand_vs_market"
	// CompareBrandPair compares exactly two arbitrary brands.
	CompareBrandPair ComparisonType = "brand_pair"
)

// Valid reports whether the comparison type is a known variant.
func (t ComparisonType) Valid() bool {
	return t == CompareBrandVsMarket || t == CompareBrandPair
}

// Request is one comparison request: a type, the brands involved and the
// persisted plan rows to analyze.
type Request struct {
	Type   ComparisonType  `json:"type"`
	Brands []string        `json:"brands"`
	Plans  []plans.PlanRow `json:"plans"`
}

// Analysis is a generated, validated analysis row. Once written it is
// immutable; cache identity is the unordered equality of (type, brand set,
// plan-id set).
type Analysis struct {
	ID        string         `json:"id"`
	Type      ComparisonType `json:"type"`
	Brands    []string       `json:"brands"`
	PlanIDs   []int64        `json:"planIds"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Response is the uniform envelope returned to callers.
type Response struct {
	Cached     bool           `json:"cached"`
	AnalysisID string         `json:"analysisId"`
	CreatedAt  time.Time      `json:"createdAt"`
	Data       map[string]any `json:"data"`
	Issues     []Issue        `json:"issues,omitempty"`
}

// brandSetKey canonicalizes a brand list into an order-independent set key.
func brandSetKey(brands []string) string {
	seen := make(map[string]struct{}, len(brands))
	out := make([]string, 0, len(brands))
	for _, b := range brands {
		norm := strings.ToLower(strings.TrimSpace(b))
		if norm == "" {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
	}
	sort.Strings(out)
	return strings.Join(out, "|")
}

// planIDSetKey canonicalizes a plan-id list into an order-independent set key.
func planIDSetKey(ids []int64) string {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	parts := make([]string, len(out))
	for i, id := range out {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func planIDs(rows []plans.PlanRow) []int64 {
	out := make([]int64, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ID)
	}
	return out
}
