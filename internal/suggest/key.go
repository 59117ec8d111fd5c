package suggest

import "strings"

// keySep joins make and model in a cache key. Neither field is expected to
// contain it.
const keySep = "|"

// NormalizeKey returns the canonical cache key for an appliance: both fields
// trimmed, lower-cased, and joined with "|". Pure and total; an empty make or
// model still normalizes, but callers must treat such keys as not specific
// enough to cache.
func NormalizeKey(mk, model string) string {
	return normalizeField(mk) + keySep + normalizeField(model)
}

func normalizeField(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
