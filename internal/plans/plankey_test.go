package plans

import "testing"

func TestGeneratePlanKey(t *testing.T) {
	cases := []struct {
		name          string
		source        string
		dataAllowance string
		contractTerm  string
		want          string
	}{
		{"canonical inputs", "giffgaff", "25GB", "18 months", "Giffgaff-25GB-18months"},
		{"uppercase source", "GIFFGAFF", "25GB", "18 months", "Giffgaff-25GB-18months"},
		{"unlimited payg", "voxi", "Unlimited", "PAYG", "Voxi-Unlimited-payg"},
		{"single month", "smarty", "500MB", "1 month", "Smarty-500MB-1month"},
		{"unknown fields", "lebara", "Unknown", "Unknown", "Lebara-Unknown-unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := GeneratePlanKey(tc.source, tc.dataAllowance, tc.contractTerm)
			if got != tc.want {
				t.Fatalf("GeneratePlanKey(%q, %q, %q) = %q, want %q",
					tc.source, tc.dataAllowance, tc.contractTerm, got, tc.want)
			}
		})
	}
}

func TestGeneratePlanKeyDeterministic(t *testing.T) {
	a := GeneratePlanKey("giffgaff", "25GB", "18 months")
	b := GeneratePlanKey("giffgaff", "25GB", "18 months")
	if a != b {
		t.Fatalf("same inputs produced different keys: %q vs %q", a, b)
	}
}
