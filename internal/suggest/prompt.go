package suggest

import (
	"fmt"
	"strings"
)

const promptTemplate = `You are a home maintenance expert. List the replaceable consumable parts and supplies for the following appliance.

Appliance: %s
Category: %s
Make: %s
Model: %s

Respond with ONLY a valid JSON array, no prose and no markdown. Each element must have this exact shape:
{
  "consumable": "name of the replaceable part class",
  "description": "one sentence on what it does and when to replace it",
  "frequencyMonths": number of months between replacements (may be below 1 for sub-monthly),
  "products": [2-3 concrete purchasable options, each {"name": "...", "estimatedCost": number or null, "searchTerm": "short marketplace search phrase"}]
}

If the appliance has no replaceable consumables, respond with [].`

// BuildPrompt constructs the deterministic generation prompt for an
// appliance. Same inputs always produce the same prompt, so a re-issued
// request after a failure asks the generator the identical question.
func BuildPrompt(name, category, mk, model string) string {
	return fmt.Sprintf(promptTemplate,
		strings.TrimSpace(name),
		strings.TrimSpace(category),
		strings.TrimSpace(mk),
		strings.TrimSpace(model),
	)
}
