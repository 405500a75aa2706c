package analyses

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"tariff-backend/internal/plans"
)

var (
	//go:embed prompts/brand_vs_market.txt
	promptBrandVsMarket string
	//go:embed prompts/brand_pair.txt
	promptBrandPair string
)

// BuildPrompt formats the deterministic generation prompt: the type-specific
// template (with brand placeholders substituted for the pair variant)
// followed by the plan data grouped by brand. Brands are sorted
// alphabetically so identical selections always produce identical prompts.
func BuildPrompt(typ ComparisonType, brands []string, rows []plans.PlanRow) string {
	template := promptBrandVsMarket
	sorted := sortedBrands(brands)
	if typ == CompareBrandPair {
		template = promptBrandPair
		if len(sorted) > 0 {
			template = strings.ReplaceAll(template, "{{BRAND1}}", sorted[0])
		}
		if len(sorted) > 1 {
			template = strings.ReplaceAll(template, "{{BRAND2}}", sorted[1])
		}
	}

	var b strings.Builder
	b.WriteString(template)
	b.WriteString("\n")
	writePlanData(&b, sorted, rows)
	return b.String()
}

func sortedBrands(brands []string) []string {
	out := make([]string, 0, len(brands))
	for _, brand := range brands {
		if trimmed := strings.TrimSpace(brand); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

func writePlanData(b *strings.Builder, brands []string, rows []plans.PlanRow) {
	byBrand := make(map[string][]plans.PlanRow)
	for _, row := range rows {
		key := strings.ToLower(row.Source)
		byBrand[key] = append(byBrand[key], row)
	}

	for _, brand := range brands {
		b.WriteString("\n## ")
		b.WriteString(brand)
		b.WriteString("\n")
		brandRows := byBrand[strings.ToLower(brand)]
		if len(brandRows) == 0 {
			b.WriteString("(no plans on record)\n")
			continue
		}
		sort.Slice(brandRows, func(i, j int) bool {
			return brandRows[i].PlanKey < brandRows[j].PlanKey
		})
		for _, row := range brandRows {
			fmt.Fprintf(b, "- %s: data %s, price %s, contract %s\n",
				row.PlanKey, row.DataAllowance, row.Price, row.ContractTerm)
		}
	}
}
