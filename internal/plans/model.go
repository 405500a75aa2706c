package plans

import "time"

// RawPlanRecord is a source-provided record with no required shape. Scraping
// adapters produce these; the normalizer only ever reads them.
type RawPlanRecord map[string]any

// NormalizedPlanRecord is a raw record plus the four canonical fields. The raw
// map is preserved untouched so unrecognized source fields survive persistence.
type NormalizedPlanRecord struct {
	Source        string        `json:"source"`
	DataAllowance string        `json:"dataAllowance"`
	Price         string        `json:"price"`
	ContractTerm  string        `json:"contractTerm"`
	PlanKey       string        `json:"planKey"`
	NormFailed    bool          `json:"normalizationFailed,omitempty"`
	Raw           RawPlanRecord `json:"raw,omitempty"`
}

// Fields returns the record as a flat map: every original field, with the
// canonical fields overlaid on top.
func (r NormalizedPlanRecord) Fields() map[string]any {
	out := make(map[string]any, len(r.Raw)+5)
	for k, v := range r.Raw {
		out[k] = v
	}
	out["dataAllowance"] = r.DataAllowance
	out["price"] = r.Price
	out["contractTerm"] = r.ContractTerm
	out["planKey"] = r.PlanKey
	if r.NormFailed {
		out["normalizationFailed"] = true
	}
	return out
}

// PlanRow is a persisted normalized record. Rows are append-only: the same
// planKey recurs across scrape runs with distinct ids and timestamps.
type PlanRow struct {
	ID        int64     `json:"id"`
	ScrapedAt time.Time `json:"scrapedAt"`
	NormalizedPlanRecord
}
