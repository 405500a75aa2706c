package analyses

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Bounds shared by both schema variants.
const (
	minSentiments = 5
	maxSentiments = 10
	minProducts   = 5
	maxScore      = 100
	maxPriceGBP   = 1000
)

// Payload is the typed view of an analysis payload. Both comparison variants
// share every shape except the products field: brand_vs_market names the
// distinguished brand explicitly, brand_pair names a generic first brand.
type Payload struct {
	AnalysisTimestamp  string           `json:"analysis_timestamp"`
	Currency           string           `json:"currency"`
	MarketSentiments   []SentimentEntry `json:"market_sentiments"`
	GiffgaffProducts   []ProductEntry   `json:"giffgaff_products,omitempty"`
	Brand1Products     []ProductEntry   `json:"brand1_products,omitempty"`
	AllPlansConsidered []DatasetPlan    `json:"all_plans_considered"`
}

// SentimentEntry is one market-sentiment observation.
type SentimentEntry struct {
	Score     float64 `json:"score"`
	Sentiment string  `json:"sentiment"`
	Rationale string  `json:"rationale"`
}

// ProductEntry is one per-product analysis.
type ProductEntry struct {
	ProductName      string            `json:"product_name"`
	DataTier         string            `json:"data_tier"`
	RoamingTier      string            `json:"roaming_tier"`
	PlanBreakdown    PlanRecord        `json:"plan_breakdown"`
	ComparablePlans  []PlanRecord      `json:"comparable_plans"`
	Sentiments       []string          `json:"sentiments"`
	Changes          []string          `json:"changes"`
	PriceSuggestions []PriceSuggestion `json:"price_suggestions"`
	Source           string            `json:"source"`
}

// PlanRecord is the nested plan shape shared by breakdowns and comparables.
type PlanRecord struct {
	Brand                string   `json:"brand"`
	Contract             string   `json:"contract"`
	Data                 string   `json:"data"`
	Roaming              string   `json:"roaming"`
	CompetitivenessScore float64  `json:"competitiveness_score"`
	Source               string   `json:"source"`
	PricePerMonthGBP     *float64 `json:"price_per_month_GBP,omitempty"`
}

// DatasetPlan is one row of the flat all-plans dataset: the nested plan shape
// plus extras, speed and notes.
type DatasetPlan struct {
	PlanRecord
	Extras string `json:"extras"`
	Speed  string `json:"speed"`
	Notes  string `json:"notes"`
}

// PriceSuggestion is one pricing recommendation.
type PriceSuggestion struct {
	Motivation string  `json:"motivation"`
	Price      float64 `json:"price"`
}

// ValidateStrict parses and validates raw against the schema for typ,
// returning a *FieldError on the first violation. Unlike the lenient path,
// any violation fails immediately.
func ValidateStrict(raw json.RawMessage, typ ComparisonType) error {
	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &FieldError{Path: typeErr.Field, Expected: typeErr.Type.String(), Actual: typeErr.Value}
		}
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	return payload.Validate(typ)
}

// Validate checks the payload against the schema for typ.
func (p *Payload) Validate(typ ComparisonType) error {
	if p.AnalysisTimestamp == "" {
		return &FieldError{Path: "analysis_timestamp", Expected: "non-empty string", Actual: p.AnalysisTimestamp}
	}
	if p.Currency == "" {
		return &FieldError{Path: "currency", Expected: "non-empty string", Actual: p.Currency}
	}
	if n := len(p.MarketSentiments); n < minSentiments || n > maxSentiments {
		return &FieldError{
			Path:     "market_sentiments",
			Expected: fmt.Sprintf("array of %d-%d entries", minSentiments, maxSentiments),
			Actual:   n,
		}
	}
	for i, s := range p.MarketSentiments {
		path := fmt.Sprintf("market_sentiments[%d]", i)
		if s.Score < 0 || s.Score > maxScore {
			return &FieldError{Path: path + ".score", Expected: "number 0-100", Actual: s.Score}
		}
		if s.Sentiment == "" {
			return &FieldError{Path: path + ".sentiment", Expected: "non-empty string", Actual: s.Sentiment}
		}
		if s.Rationale == "" {
			return &FieldError{Path: path + ".rationale", Expected: "non-empty string", Actual: s.Rationale}
		}
	}

	products, productsField := p.productsFor(typ)
	if len(products) < minProducts {
		return &FieldError{
			Path:     productsField,
			Expected: fmt.Sprintf("array of at least %d entries", minProducts),
			Actual:   len(products),
		}
	}
	for i, prod := range products {
		if err := prod.validate(fmt.Sprintf("%s[%d]", productsField, i)); err != nil {
			return err
		}
	}

	if p.AllPlansConsidered == nil {
		return &FieldError{Path: "all_plans_considered", Expected: "array", Actual: nil}
	}
	for i, plan := range p.AllPlansConsidered {
		if err := plan.PlanRecord.validate(fmt.Sprintf("all_plans_considered[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Payload) productsFor(typ ComparisonType) ([]ProductEntry, string) {
	if typ == CompareBrandPair {
		return p.Brand1Products, "brand1_products"
	}
	return p.GiffgaffProducts, "giffgaff_products"
}

func (e *ProductEntry) validate(path string) error {
	if e.ProductName == "" {
		return &FieldError{Path: path + ".product_name", Expected: "non-empty string", Actual: e.ProductName}
	}
	if e.DataTier == "" {
		return &FieldError{Path: path + ".data_tier", Expected: "non-empty string", Actual: e.DataTier}
	}
	if e.RoamingTier == "" {
		return &FieldError{Path: path + ".roaming_tier", Expected: "non-empty string", Actual: e.RoamingTier}
	}
	if err := e.PlanBreakdown.validate(path + ".plan_breakdown"); err != nil {
		return err
	}
	for i, cmp := range e.ComparablePlans {
		if err := cmp.validate(fmt.Sprintf("%s.comparable_plans[%d]", path, i)); err != nil {
			return err
		}
	}
	for i, ps := range e.PriceSuggestions {
		psPath := fmt.Sprintf("%s.price_suggestions[%d]", path, i)
		if ps.Motivation == "" {
			return &FieldError{Path: psPath + ".motivation", Expected: "non-empty string", Actual: ps.Motivation}
		}
		if ps.Price < 0 || ps.Price > maxPriceGBP {
			return &FieldError{Path: psPath + ".price", Expected: "number 0-1000", Actual: ps.Price}
		}
	}
	if e.Source == "" {
		return &FieldError{Path: path + ".source", Expected: "non-empty string", Actual: e.Source}
	}
	return nil
}

func (r *PlanRecord) validate(path string) error {
	if r.Brand == "" {
		return &FieldError{Path: path + ".brand", Expected: "non-empty string", Actual: r.Brand}
	}
	if r.Contract == "" {
		return &FieldError{Path: path + ".contract", Expected: "non-empty string", Actual: r.Contract}
	}
	if r.Data == "" {
		return &FieldError{Path: path + ".data", Expected: "non-empty string", Actual: r.Data}
	}
	if r.CompetitivenessScore < 0 || r.CompetitivenessScore > maxScore {
		return &FieldError{Path: path + ".competitiveness_score", Expected: "number 0-100", Actual: r.CompetitivenessScore}
	}
	if r.Source == "" {
		return &FieldError{Path: path + ".source", Expected: "non-empty string", Actual: r.Source}
	}
	// Price is optional in both validation modes; when present it must be in
	// range.
	if r.PricePerMonthGBP != nil && (*r.PricePerMonthGBP < 0 || *r.PricePerMonthGBP > maxPriceGBP) {
		return &FieldError{Path: path + ".price_per_month_GBP", Expected: "number 0-1000", Actual: *r.PricePerMonthGBP}
	}
	return nil
}
