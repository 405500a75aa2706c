package analyses

import (
	"encoding/json"
	"fmt"
	"strings"

	"tariff-backend/internal/shared/telemetry"
)

// Issue severities for the lenient validator.
const (
	SeverityWarn = "warn"
	SeverityInfo = "info"
)

// Issue is one non-fatal finding from lenient validation.
type Issue struct {
	Path     string `json:"path"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// ValidateLenient parses input (a JSON string, raw bytes, or an
// already-parsed map) and checks it against the schema for typ. Unparsable
// input is the only error condition: every structural finding is collected as
// an issue and the parsed object is always returned, after non-destructive
// repairs. Issues are accumulated per call, never in shared state.
func ValidateLenient(input any, typ ComparisonType) (map[string]any, []Issue, error) {
	payload, err := coercePayload(input)
	if err != nil {
		return nil, nil, err
	}

	v := &lenientValidator{}
	v.checkTopLevel(payload, typ)

	if len(v.issues) > 0 {
		telemetry.Warn("analyses.validate.issues", map[string]any{
			"type":  string(typ),
			"count": len(v.issues),
		})
	}
	return payload, v.issues, nil
}

func coercePayload(input any) (map[string]any, error) {
	switch val := input.(type) {
	case map[string]any:
		return val, nil
	case string:
		return parseJSONObject([]byte(val))
	case []byte:
		return parseJSONObject(val)
	case json.RawMessage:
		return parseJSONObject(val)
	default:
		return nil, fmt.Errorf("unsupported payload type %T", input)
	}
}

func parseJSONObject(raw []byte) (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	return payload, nil
}

type lenientValidator struct {
	issues []Issue
}

func (v *lenientValidator) warn(path, format string, args ...any) {
	v.issues = append(v.issues, Issue{Path: path, Severity: SeverityWarn, Message: fmt.Sprintf(format, args...)})
}

func (v *lenientValidator) info(path, format string, args ...any) {
	v.issues = append(v.issues, Issue{Path: path, Severity: SeverityInfo, Message: fmt.Sprintf(format, args...)})
}

func (v *lenientValidator) checkTopLevel(payload map[string]any, typ ComparisonType) {
	if s, ok := stringField(payload, "analysis_timestamp"); !ok || s == "" {
		v.warn("analysis_timestamp", "missing or empty")
	}
	if s, ok := stringField(payload, "currency"); !ok || s == "" {
		v.warn("currency", "missing or empty")
	} else if !strings.EqualFold(s, "GBP") {
		v.info("currency", "expected GBP, got %q", s)
	}

	v.checkSentiments(payload)

	productsField := "giffgaff_products"
	if typ == CompareBrandPair {
		productsField = "brand1_products"
	}
	v.checkProducts(payload, productsField)

	if plansRaw, ok := payload["all_plans_considered"]; !ok {
		v.warn("all_plans_considered", "missing")
	} else if plansList, ok := plansRaw.([]any); !ok {
		v.warn("all_plans_considered", "expected array, got %T", plansRaw)
	} else {
		for i, entry := range plansList {
			path := fmt.Sprintf("all_plans_considered[%d]", i)
			plan, ok := entry.(map[string]any)
			if !ok {
				v.warn(path, "expected object, got %T", entry)
				continue
			}
			v.checkPlanRecord(plan, path)
		}
	}
}

func (v *lenientValidator) checkSentiments(payload map[string]any) {
	raw, ok := payload["market_sentiments"]
	if !ok {
		v.warn("market_sentiments", "missing")
		return
	}
	list, ok := raw.([]any)
	if !ok {
		v.warn("market_sentiments", "expected array, got %T", raw)
		return
	}
	if len(list) < minSentiments || len(list) > maxSentiments {
		v.warn("market_sentiments", "expected %d-%d entries, got %d", minSentiments, maxSentiments, len(list))
	}
	for i, entry := range list {
		path := fmt.Sprintf("market_sentiments[%d]", i)
		sentiment, ok := entry.(map[string]any)
		if !ok {
			v.warn(path, "expected object, got %T", entry)
			continue
		}
		if score, ok := numberField(sentiment, "score"); !ok {
			v.warn(path+".score", "missing or non-numeric")
		} else if score < 0 || score > maxScore {
			v.warn(path+".score", "expected 0-100, got %v", score)
		}
		if s, ok := stringField(sentiment, "sentiment"); !ok || s == "" {
			v.warn(path+".sentiment", "missing or empty")
		}
		if s, ok := stringField(sentiment, "rationale"); !ok || s == "" {
			v.warn(path+".rationale", "missing or empty")
		}
	}
}

func (v *lenientValidator) checkProducts(payload map[string]any, field string) {
	raw, ok := payload[field]
	if !ok {
		v.warn(field, "missing")
		return
	}
	list, ok := raw.([]any)
	if !ok {
		v.warn(field, "expected array, got %T", raw)
		return
	}
	if len(list) < minProducts {
		v.warn(field, "expected at least %d entries, got %d", minProducts, len(list))
	}
	for i, entry := range list {
		path := fmt.Sprintf("%s[%d]", field, i)
		product, ok := entry.(map[string]any)
		if !ok {
			v.warn(path, "expected object, got %T", entry)
			continue
		}
		v.checkProduct(product, path)
	}
}

func (v *lenientValidator) checkProduct(product map[string]any, path string) {
	for _, field := range []string{"product_name", "data_tier", "roaming_tier", "source"} {
		if s, ok := stringField(product, field); !ok || s == "" {
			v.warn(path+"."+field, "missing or empty")
		}
	}

	parentSource, _ := stringField(product, "source")

	if breakdownRaw, ok := product["plan_breakdown"]; !ok {
		v.warn(path+".plan_breakdown", "missing")
	} else if breakdown, ok := breakdownRaw.(map[string]any); !ok {
		v.warn(path+".plan_breakdown", "expected object, got %T", breakdownRaw)
	} else {
		// Repair: a breakdown without a source inherits its parent's.
		if s, ok := stringField(breakdown, "source"); (!ok || s == "") && parentSource != "" {
			breakdown["source"] = parentSource
			v.info(path+".plan_breakdown.source", "copied from parent product")
		}
		v.checkPlanRecord(breakdown, path+".plan_breakdown")
	}

	if cmpRaw, ok := product["comparable_plans"]; !ok {
		v.info(path+".comparable_plans", "missing")
	} else if cmpList, ok := cmpRaw.([]any); !ok {
		v.warn(path+".comparable_plans", "expected array, got %T", cmpRaw)
	} else {
		for i, entry := range cmpList {
			cmpPath := fmt.Sprintf("%s.comparable_plans[%d]", path, i)
			plan, ok := entry.(map[string]any)
			if !ok {
				v.warn(cmpPath, "expected object, got %T", entry)
				continue
			}
			v.checkPlanRecord(plan, cmpPath)
		}
	}

	for _, field := range []string{"sentiments", "changes"} {
		if raw, ok := product[field]; ok {
			if _, isList := raw.([]any); !isList {
				v.warn(path+"."+field, "expected array, got %T", raw)
			}
		}
	}

	if psRaw, ok := product["price_suggestions"]; ok {
		psList, isList := psRaw.([]any)
		if !isList {
			v.warn(path+".price_suggestions", "expected array, got %T", psRaw)
			return
		}
		for i, entry := range psList {
			psPath := fmt.Sprintf("%s.price_suggestions[%d]", path, i)
			ps, ok := entry.(map[string]any)
			if !ok {
				v.warn(psPath, "expected object, got %T", entry)
				continue
			}
			if s, ok := stringField(ps, "motivation"); !ok || s == "" {
				v.warn(psPath+".motivation", "missing or empty")
			}
			if price, ok := numberField(ps, "price"); !ok {
				v.warn(psPath+".price", "missing or non-numeric")
			} else if price < 0 || price > maxPriceGBP {
				v.warn(psPath+".price", "expected 0-1000, got %v", price)
			}
		}
	}
}

func (v *lenientValidator) checkPlanRecord(plan map[string]any, path string) {
	for _, field := range []string{"brand", "contract", "data", "source"} {
		if s, ok := stringField(plan, field); !ok || s == "" {
			v.warn(path+"."+field, "missing or empty")
		}
	}
	if score, ok := numberField(plan, "competitiveness_score"); !ok {
		v.warn(path+".competitiveness_score", "missing or non-numeric")
	} else if score < 0 || score > maxScore {
		v.warn(path+".competitiveness_score", "expected 0-100, got %v", score)
	}
	// Optional in both validation modes; range-checked when present.
	if priceRaw, ok := plan["price_per_month_GBP"]; ok {
		if price, isNum := priceRaw.(float64); !isNum {
			v.warn(path+".price_per_month_GBP", "expected number, got %T", priceRaw)
		} else if price < 0 || price > maxPriceGBP {
			v.warn(path+".price_per_month_GBP", "expected 0-1000, got %v", price)
		}
	}
}

func stringField(m map[string]any, key string) (string, bool) {
	raw, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

func numberField(m map[string]any, key string) (float64, bool) {
	raw, ok := m[key]
	if !ok {
		return 0, false
	}
	n, ok := raw.(float64)
	return n, ok
}
