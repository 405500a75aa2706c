package plans

import (
	"fmt"
	"strconv"
	"time"

	"tariff-backend/internal/shared/metrics"
	"tariff-backend/internal/shared/telemetry"
)

// Alias field names tolerated per logical field. Sources disagree on naming
// and drift between scrape runs.
var (
	dataAliases  = []string{"data", "data_allowance", "dataAllowance", "allowance", "data_gb"}
	priceAliases = []string{"price", "monthly_cost", "price_per_month", "cost", "monthlyPrice"}
	termAliases  = []string{"contract", "contract_term", "contractTerm", "contract_length", "term"}
)

// NormalizePlan converts one raw record into canonical form. It never returns
// an error: an internal panic yields a degraded record with every canonical
// field "Unknown", a timestamp-suffixed key and the failure flag set, so a bad
// record cannot stall the rest of a scrape run.
func NormalizePlan(raw RawPlanRecord, source string) (rec NormalizedPlanRecord) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("plans.normalize.failed", map[string]any{
				"source": source,
				"panic":  fmt.Sprint(r),
			})
			metrics.IncNormalizationFailed()
			rec = failedRecord(raw, source)
		}
	}()

	dataAllowance := NormalizeDataAllowance(extractAlias(raw, dataAliases))
	price := NormalizePrice(extractAlias(raw, priceAliases))
	contractTerm := NormalizeContractTerm(extractAlias(raw, termAliases))

	return NormalizedPlanRecord{
		Source:        source,
		DataAllowance: dataAllowance,
		Price:         price,
		ContractTerm:  contractTerm,
		PlanKey:       GeneratePlanKey(source, dataAllowance, contractTerm),
		Raw:           raw,
	}
}

// NormalizePlans maps NormalizePlan over records, preserving order and 1:1
// correspondence with the input.
func NormalizePlans(records []RawPlanRecord, source string) []NormalizedPlanRecord {
	out := make([]NormalizedPlanRecord, 0, len(records))
	for _, raw := range records {
		out = append(out, NormalizePlan(raw, source))
	}
	return out
}

func failedRecord(raw RawPlanRecord, source string) NormalizedPlanRecord {
	// Timestamp suffix keeps the key unique so failed rows never collide with
	// real plan history.
	key := fmt.Sprintf("%s-unknown-%d", titleCaseSource(source), time.Now().UnixNano())
	return NormalizedPlanRecord{
		Source:        source,
		DataAllowance: "Unknown",
		Price:         "Unknown",
		ContractTerm:  "Unknown",
		PlanKey:       key,
		NormFailed:    true,
		Raw:           raw,
	}
}

func extractAlias(raw RawPlanRecord, aliases []string) string {
	for _, alias := range aliases {
		val, ok := raw[alias]
		if !ok || val == nil {
			continue
		}
		if s := stringifyValue(val); s != "" {
			return s
		}
	}
	return ""
}

func stringifyValue(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		// JSON numbers decode as float64; render integers without a decimal.
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
