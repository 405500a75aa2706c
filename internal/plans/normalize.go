package plans

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"tariff-backend/internal/shared/telemetry"
)

var (
	// bareIntRegexp matches a whole-string integer token.
	bareIntRegexp = regexp.MustCompile(`^\d+$`)
	// gbRegexp matches "25GB", "25 GB", "0.5G" and similar.
	gbRegexp = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*G(?:B)?$`)
	// mbRegexp matches "500MB" and "500 MB".
	mbRegexp = regexp.MustCompile(`(?i)^(\d+)\s*MB$`)
	// unlimitedRegexp matches any token mentioning unlimited data.
	unlimitedRegexp = regexp.MustCompile(`(?i)unlimited`)

	// poundRegexp captures the amount after a £ marker, tolerating "/month" suffixes.
	poundRegexp = regexp.MustCompile(`£\s*(\d+(?:\.\d+)?)`)
	// gbpRegexp matches "12 GBP", "12.50GBP" and similar.
	gbpRegexp = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*GBP\b`)
	// bareNumberRegexp matches a whole-string decimal with no currency marker.
	bareNumberRegexp = regexp.MustCompile(`^\d+(?:\.\d+)?$`)

	// monthsRegexp matches "12 months", "1 month", "12m", "12-month".
	monthsRegexp = regexp.MustCompile(`(?i)^(\d+)\s*(?:-\s*)?m(?:onth)?s?$`)
	// yearsRegexp matches "1 year", "2 years", "2yr".
	yearsRegexp = regexp.MustCompile(`(?i)^(\d+)\s*y(?:ea)?rs?$`)
	// paygRegexp matches "PAYG" and "pay as you go" spellings.
	paygRegexp = regexp.MustCompile(`(?i)^pay\s*as\s*you\s*go$|^payg$`)
)

// NormalizeDataAllowance converts a raw data-allowance token to canonical form:
// "Unlimited", "<int>MB" or "<number>GB". Bare integers are read as megabytes.
// Unrecognized tokens pass through trimmed; the function never fails.
func NormalizeDataAllowance(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return "Unknown"
	}
	if unlimitedRegexp.MatchString(token) {
		return "Unlimited"
	}
	if bareIntRegexp.MatchString(token) {
		mb, err := strconv.Atoi(token)
		if err == nil {
			return renderMegabytes(mb)
		}
	}
	if m := gbRegexp.FindStringSubmatch(token); m != nil {
		gb, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			if gb < 1 {
				return fmt.Sprintf("%dMB", int(math.Round(gb*1000)))
			}
			return renderGigabytes(gb)
		}
	}
	if m := mbRegexp.FindStringSubmatch(token); m != nil {
		return m[1] + "MB"
	}
	telemetry.Warn("plans.normalize.data_unrecognized", map[string]any{"raw": token})
	return token
}

// NormalizePrice converts a raw price token to "£<2dp>" or "Unknown". Bare
// integers of three or more digits are read as pence. Unrecognized tokens pass
// through trimmed; the function never fails.
func NormalizePrice(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" || strings.EqualFold(token, "unknown") {
		return "Unknown"
	}
	if bareIntRegexp.MatchString(token) && len(token) >= 3 {
		pence, err := strconv.Atoi(token)
		if err == nil {
			return renderPounds(float64(pence) / 100)
		}
	}
	if m := poundRegexp.FindStringSubmatch(token); m != nil {
		if amount, err := strconv.ParseFloat(m[1], 64); err == nil {
			return renderPounds(amount)
		}
	}
	if m := gbpRegexp.FindStringSubmatch(token); m != nil {
		if amount, err := strconv.ParseFloat(m[1], 64); err == nil {
			return renderPounds(amount)
		}
	}
	if bareNumberRegexp.MatchString(token) {
		if amount, err := strconv.ParseFloat(token, 64); err == nil {
			return renderPounds(amount)
		}
	}
	telemetry.Warn("plans.normalize.price_unrecognized", map[string]any{"raw": token})
	return token
}

// NormalizeContractTerm converts a raw contract-term token to "PAYG",
// "1 month" or "<n> months". Years are converted to months; a bare 0 means
// PAYG. Unrecognized tokens pass through trimmed; the function never fails.
func NormalizeContractTerm(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return "Unknown"
	}
	if paygRegexp.MatchString(token) {
		return "PAYG"
	}
	if m := monthsRegexp.FindStringSubmatch(token); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return renderMonths(n)
		}
	}
	if m := yearsRegexp.FindStringSubmatch(token); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return renderMonths(n * 12)
		}
	}
	if bareIntRegexp.MatchString(token) {
		n, err := strconv.Atoi(token)
		if err == nil {
			if n == 0 {
				return "PAYG"
			}
			return renderMonths(n)
		}
	}
	telemetry.Warn("plans.normalize.term_unrecognized", map[string]any{"raw": token})
	return token
}

func renderMegabytes(mb int) string {
	if mb >= 1000 {
		gb := float64(mb) / 1000
		if mb%1000 == 0 {
			return fmt.Sprintf("%dGB", mb/1000)
		}
		return fmt.Sprintf("%.1fGB", gb)
	}
	return fmt.Sprintf("%dMB", mb)
}

func renderGigabytes(gb float64) string {
	return strconv.FormatFloat(gb, 'f', -1, 64) + "GB"
}

func renderPounds(amount float64) string {
	return fmt.Sprintf("£%.2f", amount)
}

func renderMonths(n int) string {
	if n == 1 {
		return "1 month"
	}
	return fmt.Sprintf("%d months", n)
}
