package schedule

import "testing"

func TestNextDateISO(t *testing.T) {
	tests := []struct {
		name string
		from string
		freq float64
		want string
	}{
		{"one month", "2024-03-15", 1, "2024-04-15"},
		{"six months", "2024-01-10", 6, "2024-07-10"},
		{"year", "2024-05-01", 12, "2025-05-01"},
		{"clamp to leap february", "2024-01-31", 1, "2024-02-29"},
		{"clamp to non-leap february", "2023-01-31", 1, "2023-02-28"},
		{"clamp to 30-day month", "2024-03-31", 1, "2024-04-30"},
		{"no clamp needed on short source day", "2024-02-29", 1, "2024-03-29"},
		{"year boundary", "2024-11-30", 3, "2025-02-28"},
		{"quarter month rounds to 8 days", "2024-03-01", 0.25, "2024-03-09"},
		{"half month is 15 days", "2024-03-01", 0.5, "2024-03-16"},
		{"sub-month across month end", "2024-03-25", 0.5, "2024-04-09"},
		{"fractional above one truncates to whole months", "2024-01-15", 1.5, "2024-02-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextDateISO(tt.from, tt.freq)
			if err != nil {
				t.Fatalf("NextDateISO(%q, %v) error: %v", tt.from, tt.freq, err)
			}
			if got != tt.want {
				t.Errorf("NextDateISO(%q, %v) = %q, want %q", tt.from, tt.freq, got, tt.want)
			}
		})
	}
}

func TestNextDateISO_InvalidDate(t *testing.T) {
	if _, err := NextDateISO("31-01-2024", 1); err == nil {
		t.Error("expected error for non-ISO date")
	}
}
