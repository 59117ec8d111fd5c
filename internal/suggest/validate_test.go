package suggest

import (
	"encoding/json"
	"errors"
	"testing"
)

func mustParse(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("test fixture is not valid JSON: %v", err)
	}
	return v
}

const wellFormed = `{
	"consumable": "Air filter",
	"description": "Filters dust from intake air.",
	"frequencyMonths": 3,
	"products": [
		{"name": "Filtrete 16x25x1", "estimatedCost": 18.99, "searchTerm": "16x25x1 furnace filter"},
		{"name": "Honeywell FC100A", "estimatedCost": null, "searchTerm": "honeywell fc100a filter"}
	]
}`

func TestSanitize_WellFormed(t *testing.T) {
	got := Sanitize(mustParse(t, "["+wellFormed+"]"))
	if len(got) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(got))
	}
	s := got[0]
	if s.Consumable != "Air filter" || s.FrequencyMonths != 3 {
		t.Errorf("unexpected suggestion: %+v", s)
	}
	if len(s.Products) != 2 {
		t.Fatalf("got %d products, want 2", len(s.Products))
	}
	if s.Products[0].EstimatedCost == nil || *s.Products[0].EstimatedCost != 18.99 {
		t.Errorf("first product cost = %v, want 18.99", s.Products[0].EstimatedCost)
	}
	if s.Products[1].EstimatedCost != nil {
		t.Errorf("null estimatedCost should stay nil, got %v", *s.Products[1].EstimatedCost)
	}
}

func TestSanitize_DropsMalformedElements(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"missing frequencyMonths", `[` + wellFormed + `, {"consumable":"Belt","products":[{"name":"x","searchTerm":"y"}]}]`, 1},
		{"frequency as string", `[{"consumable":"Belt","frequencyMonths":"6","products":[{"name":"x","searchTerm":"y"}]}]`, 0},
		{"non-positive frequency", `[{"consumable":"Belt","frequencyMonths":0,"products":[{"name":"x","searchTerm":"y"}]}]`, 0},
		{"empty consumable", `[{"consumable":"","frequencyMonths":1,"products":[{"name":"x","searchTerm":"y"}]}]`, 0},
		{"products not an array", `[{"consumable":"Belt","frequencyMonths":1,"products":"x"}]`, 0},
		{"element not an object", `["belt", 42]`, 0},
		{"not an array at all", `{"consumable":"Belt"}`, 0},
		{"description defaults when absent", `[{"consumable":"Belt","frequencyMonths":6,"products":[{"name":"x","searchTerm":"y"}]}]`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(mustParse(t, tt.raw)); len(got) != tt.want {
				t.Errorf("got %d suggestions, want %d: %+v", len(got), tt.want, got)
			}
		})
	}
}

func TestSanitize_DropsSuggestionWithNoValidProducts(t *testing.T) {
	// The only product is missing searchTerm, so the whole suggestion goes.
	raw := `[{"consumable":"Water filter","frequencyMonths":6,"products":[{"name":"Some filter"}]}]`
	if got := Sanitize(mustParse(t, raw)); len(got) != 0 {
		t.Errorf("got %d suggestions, want 0", len(got))
	}
}

func TestSanitize_CoercesNonNumericCostToNull(t *testing.T) {
	raw := `[{"consumable":"Filter","frequencyMonths":3,"products":[{"name":"x","estimatedCost":"about $20","searchTerm":"y"}]}]`
	got := Sanitize(mustParse(t, raw))
	if len(got) != 1 || len(got[0].Products) != 1 {
		t.Fatalf("unexpected shape: %+v", got)
	}
	if got[0].Products[0].EstimatedCost != nil {
		t.Errorf("string estimatedCost should coerce to nil, got %v", *got[0].Products[0].EstimatedCost)
	}
}

func TestParseResponse_StripsCodeFences(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"bare json", `[` + wellFormed + `]`},
		{"fenced with language", "```json\n[" + wellFormed + "]\n```"},
		{"fenced without language", "```\n[" + wellFormed + "]\n```"},
		{"fenced with surrounding whitespace", "\n\n```json\n[" + wellFormed + "]\n```\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResponse(tt.text)
			if err != nil {
				t.Fatalf("ParseResponse error: %v", err)
			}
			if len(got) != 1 {
				t.Errorf("got %d suggestions, want 1", len(got))
			}
		})
	}
}

func TestParseResponse_InvalidJSON(t *testing.T) {
	_, err := ParseResponse("Sure! Here are some suggestions for your water heater:")
	if !errors.Is(err, ErrBadResponse) {
		t.Errorf("err = %v, want ErrBadResponse", err)
	}
}

func TestParseResponse_EmptyArrayIsValid(t *testing.T) {
	got, err := ParseResponse("[]")
	if err != nil {
		t.Fatalf("ParseResponse([]) error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil list", got)
	}
}
