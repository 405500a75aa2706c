package analyses

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValidateStrictAcceptsValidPayload(t *testing.T) {
	for _, typ := range []ComparisonType{CompareBrandVsMarket, CompareBrandPair} {
		if err := ValidateStrict(validPayloadJSON(t, typ), typ); err != nil {
			t.Errorf("ValidateStrict(%s): %v", typ, err)
		}
	}
}

func TestValidateStrictFieldErrors(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(map[string]any)
		wantPath string
	}{
		{
			name:     "missing timestamp",
			mutate:   func(p map[string]any) { delete(p, "analysis_timestamp") },
			wantPath: "analysis_timestamp",
		},
		{
			name:     "missing currency",
			mutate:   func(p map[string]any) { delete(p, "currency") },
			wantPath: "currency",
		},
		{
			name:     "too few sentiments",
			mutate:   func(p map[string]any) { p["market_sentiments"] = []any{} },
			wantPath: "market_sentiments",
		},
		{
			name: "too many sentiments",
			mutate: func(p map[string]any) {
				list := make([]any, 11)
				for i := range list {
					list[i] = map[string]any{"score": float64(50), "sentiment": "s", "rationale": "r"}
				}
				p["market_sentiments"] = list
			},
			wantPath: "market_sentiments",
		},
		{
			name: "sentiment score out of range",
			mutate: func(p map[string]any) {
				p["market_sentiments"].([]any)[2].(map[string]any)["score"] = float64(101)
			},
			wantPath: "market_sentiments[2].score",
		},
		{
			name:     "too few products",
			mutate:   func(p map[string]any) { p["giffgaff_products"] = p["giffgaff_products"].([]any)[:2] },
			wantPath: "giffgaff_products",
		},
		{
			name: "product missing name",
			mutate: func(p map[string]any) {
				p["giffgaff_products"].([]any)[1].(map[string]any)["product_name"] = ""
			},
			wantPath: "giffgaff_products[1].product_name",
		},
		{
			name: "breakdown missing brand",
			mutate: func(p map[string]any) {
				product := p["giffgaff_products"].([]any)[0].(map[string]any)
				product["plan_breakdown"].(map[string]any)["brand"] = ""
			},
			wantPath: "giffgaff_products[0].plan_breakdown.brand",
		},
		{
			name: "breakdown price out of range",
			mutate: func(p map[string]any) {
				product := p["giffgaff_products"].([]any)[0].(map[string]any)
				product["plan_breakdown"].(map[string]any)["price_per_month_GBP"] = float64(1500)
			},
			wantPath: "giffgaff_products[0].plan_breakdown.price_per_month_GBP",
		},
		{
			name: "price suggestion negative",
			mutate: func(p map[string]any) {
				product := p["giffgaff_products"].([]any)[0].(map[string]any)
				product["price_suggestions"].([]any)[0].(map[string]any)["price"] = float64(-1)
			},
			wantPath: "giffgaff_products[0].price_suggestions[0].price",
		},
		{
			name:     "missing all plans",
			mutate:   func(p map[string]any) { delete(p, "all_plans_considered") },
			wantPath: "all_plans_considered",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := validPayloadMap(CompareBrandVsMarket)
			tc.mutate(payload)
			raw, err := json.Marshal(payload)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			err = ValidateStrict(raw, CompareBrandVsMarket)
			var fieldErr *FieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("expected *FieldError, got %v", err)
			}
			if fieldErr.Path != tc.wantPath {
				t.Errorf("Path = %q, want %q", fieldErr.Path, tc.wantPath)
			}
			if fieldErr.Expected == "" {
				t.Errorf("Expected not populated: %+v", fieldErr)
			}
		})
	}
}

func TestValidateStrictPriceOptional(t *testing.T) {
	payload := validPayloadMap(CompareBrandVsMarket)
	product := payload["giffgaff_products"].([]any)[0].(map[string]any)
	delete(product["plan_breakdown"].(map[string]any), "price_per_month_GBP")
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if err := ValidateStrict(raw, CompareBrandVsMarket); err != nil {
		t.Fatalf("price should be optional: %v", err)
	}
}

func TestValidateStrictTypeMismatch(t *testing.T) {
	payload := validPayloadMap(CompareBrandVsMarket)
	payload["market_sentiments"] = "not an array"
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	err = ValidateStrict(raw, CompareBrandVsMarket)
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected *FieldError, got %v", err)
	}
	if fieldErr.Path != "market_sentiments" {
		t.Errorf("Path = %q, want market_sentiments", fieldErr.Path)
	}
}

func TestValidateStrictRejectsUnparsableJSON(t *testing.T) {
	err := ValidateStrict(json.RawMessage("not json"), CompareBrandVsMarket)
	if err == nil {
		t.Fatalf("expected error")
	}
	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		t.Fatalf("unparsable input must not map to a field error: %+v", fieldErr)
	}
}
