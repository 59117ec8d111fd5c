package suggest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseResponse converts raw generator text into a vetted suggestion list.
// Surrounding markdown code fences are stripped before the JSON parse. A
// parse failure returns ErrBadResponse; a successful parse is sanitized
// field by field and never fails, worst case yielding an empty list.
func ParseResponse(text string) ([]Suggestion, error) {
	var parsed any
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return Sanitize(parsed), nil
}

// Sanitize turns an untrusted parsed JSON value into suggestions satisfying
// the engine's invariants. Anything malformed is dropped silently — the
// generator's output is inherently noisy and partial loss is expected:
//   - non-array input is treated as empty
//   - elements need a non-empty consumable, a positive frequencyMonths
//     number, and a products array
//   - products need non-empty name and searchTerm strings; estimatedCost is
//     kept only when numeric, otherwise null
//   - a suggestion left with zero valid products is dropped entirely
func Sanitize(v any) []Suggestion {
	arr, ok := v.([]any)
	if !ok {
		return []Suggestion{}
	}

	out := make([]Suggestion, 0, len(arr))
	for _, el := range arr {
		obj, ok := el.(map[string]any)
		if !ok {
			continue
		}
		consumable, ok := obj["consumable"].(string)
		if !ok || consumable == "" {
			continue
		}
		freq, ok := obj["frequencyMonths"].(float64)
		if !ok || freq <= 0 {
			continue
		}
		rawProducts, ok := obj["products"].([]any)
		if !ok {
			continue
		}

		products := sanitizeProducts(rawProducts)
		if len(products) == 0 {
			// A consumable with no purchasable option is not actionable.
			continue
		}

		description, _ := obj["description"].(string)
		out = append(out, Suggestion{
			Consumable:      consumable,
			Description:     description,
			FrequencyMonths: freq,
			Products:        products,
		})
	}
	return out
}

func sanitizeProducts(raw []any) []Product {
	products := make([]Product, 0, len(raw))
	for _, el := range raw {
		obj, ok := el.(map[string]any)
		if !ok {
			continue
		}
		name, ok := obj["name"].(string)
		if !ok || name == "" {
			continue
		}
		term, ok := obj["searchTerm"].(string)
		if !ok || term == "" {
			continue
		}
		var cost *float64
		if c, ok := obj["estimatedCost"].(float64); ok {
			cost = &c
		}
		products = append(products, Product{
			Name:          name,
			EstimatedCost: cost,
			SearchTerm:    term,
		})
	}
	return products
}

// stripCodeFences removes a surrounding markdown code fence (```json ... ```
// or plain ```) that generators habitually wrap JSON answers in.
func stripCodeFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
