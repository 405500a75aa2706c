package analyses

import (
	"encoding/json"
	"fmt"
	"testing"

	"tariff-backend/internal/plans"
)

// validPayloadMap builds a payload that passes strict validation for the
// given comparison type.
func validPayloadMap(typ ComparisonType) map[string]any {
	sentiments := make([]any, 5)
	for i := range sentiments {
		sentiments[i] = map[string]any{
			"score":     float64(50 + i),
			"sentiment": "neutral",
			"rationale": "market movement",
		}
	}

	products := make([]any, 5)
	for i := range products {
		products[i] = map[string]any{
			"product_name":   fmt.Sprintf("Plan %d", i),
			"data_tier":      "mid",
			"roaming_tier":   "eu",
			"plan_breakdown": validPlanRecordMap(),
			"comparable_plans": []any{
				validPlanRecordMap(),
			},
			"sentiments": []any{"solid value"},
			"changes":    []any{},
			"price_suggestions": []any{
				map[string]any{"motivation": "undercut rival", "price": float64(12)},
			},
			"source": "giffgaff",
		}
	}

	productsField := "giffgaff_products"
	if typ == CompareBrandPair {
		productsField = "brand1_products"
	}

	return map[string]any{
		"analysis_timestamp": "2026-09-01T12:00:00Z",
		"currency":           "GBP",
		"market_sentiments":  sentiments,
		productsField:        products,
		"all_plans_considered": []any{
			map[string]any{
				"brand":                 "giffgaff",
				"contract":              "18 months",
				"data":                  "25GB",
				"roaming":               "eu",
				"competitiveness_score": float64(80),
				"source":                "giffgaff",
				"extras":                "",
				"speed":                 "5G",
				"notes":                 "",
			},
		},
	}
}

func validPlanRecordMap() map[string]any {
	return map[string]any{
		"brand":                 "giffgaff",
		"contract":              "18 months",
		"data":                  "25GB",
		"roaming":               "eu",
		"competitiveness_score": float64(80),
		"source":                "giffgaff",
		"price_per_month_GBP":   float64(13),
	}
}

func validPayloadJSON(t *testing.T, typ ComparisonType) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(validPayloadMap(typ))
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return raw
}

func planRowFixture(id int64, source, key string) plans.PlanRow {
	return plans.PlanRow{
		ID: id,
		NormalizedPlanRecord: plans.NormalizedPlanRecord{
			Source:        source,
			DataAllowance: "25GB",
			Price:         "£13.00",
			ContractTerm:  "18 months",
			PlanKey:       key,
		},
	}
}
