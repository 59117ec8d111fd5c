package suggest

import "testing"

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name      string
		mk, model string
		want      string
	}{
		{"lowercases and trims", "Honeywell", " T6 ", "honeywell|t6"},
		{"already normalized", "rheem", "xe50", "rheem|xe50"},
		{"empty fields still join", "", "", "|"},
		{"internal spaces preserved", "GE Profile", "PFE28KYNFS", "ge profile|pfe28kynfs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeKey(tt.mk, tt.model); got != tt.want {
				t.Errorf("NormalizeKey(%q, %q) = %q, want %q", tt.mk, tt.model, got, tt.want)
			}
		})
	}
}

func TestNormalizeKey_CaseWhitespaceInsensitive(t *testing.T) {
	if NormalizeKey("Honeywell", " T6 ") != NormalizeKey("honeywell", "t6") {
		t.Error("keys differing only in case/whitespace must normalize identically")
	}
}
