// Package suggest implements the consumable-suggestion engine: a read-through
// cache over generated lists of replaceable parts for a given appliance
// make/model, plus the sanitizer that vets the generator's output.
package suggest

import "errors"

// Suggestion is one class of replaceable part for an appliance, with
// purchasable product options.
type Suggestion struct {
	Consumable      string    `json:"consumable"`
	Description     string    `json:"description"`
	FrequencyMonths float64   `json:"frequencyMonths"`
	Products        []Product `json:"products"`
}

// Product is a concrete purchasable option for a Suggestion.
type Product struct {
	Name          string   `json:"name"`
	EstimatedCost *float64 `json:"estimatedCost"`
	SearchTerm    string   `json:"searchTerm"`
}

// Pair identifies an appliance by make and model for batch lookups.
type Pair struct {
	Make  string `json:"make"`
	Model string `json:"model"`
}

var (
	// ErrNotConfigured means no generator credential is available; the
	// operator has to configure one before cache misses can be served.
	ErrNotConfigured = errors.New("suggestion generator not configured")

	// ErrUpstream means the generator call failed or returned a non-OK status.
	ErrUpstream = errors.New("suggestion generator request failed")

	// ErrBadResponse means the generator answered, but with text that is not
	// parseable as JSON. Kept distinct from ErrUpstream so "service is down"
	// and "service answered garbage" are distinguishable.
	ErrBadResponse = errors.New("invalid response format from suggestion generator")
)
