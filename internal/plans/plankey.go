package plans

import "strings"

// GeneratePlanKey derives the stable identity key used for historical
// tracking: "<TitleCaseSource>-<allowance without spaces>-<term without
// spaces, lowercased>". Pure and deterministic.
func GeneratePlanKey(source, dataAllowance, contractTerm string) string {
	parts := []string{
		titleCaseSource(source),
		stripSpaces(dataAllowance),
		strings.ToLower(stripSpaces(contractTerm)),
	}
	return strings.Join(parts, "-")
}

func titleCaseSource(source string) string {
	s := strings.ToLower(strings.TrimSpace(source))
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
