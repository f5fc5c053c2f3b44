package cost

import (
	"fmt"
	"strings"
)

// Rate holds per-1M-token pricing in USD.
type Rate struct {
	Input  float64 // USD per 1M input tokens
	Output float64 // USD per 1M output tokens
}

// DefaultRate is the Claude 3.5 Sonnet list price. Models without a table
// entry fall back to it so cost lines are never silently zero.
var DefaultRate = Rate{Input: 3.00, Output: 15.00}

// ModelRates maps model identifier prefixes to pricing. Keyed by prefix so
// dated releases (claude-3-5-sonnet-20240620) share their family's rate.
var ModelRates = map[string]Rate{
	"claude-3-5-sonnet": {Input: 3.00, Output: 15.00},
	"claude-3-5-haiku":  {Input: 0.80, Output: 4.00},
	"claude-3-opus":     {Input: 15.00, Output: 75.00},
	"claude-3-sonnet":   {Input: 3.00, Output: 15.00},
	"claude-3-haiku":    {Input: 0.25, Output: 1.25},
}

// RateFor returns the pricing for a model identifier. Longest matching
// prefix wins, so claude-3-5-sonnet is not shadowed by claude-3-sonnet.
func RateFor(model string) Rate {
	best := ""
	for prefix := range ModelRates {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return DefaultRate
	}
	return ModelRates[best]
}

// Calculate returns the estimated cost in USD for the given token counts.
func Calculate(model string, inputTokens, outputTokens int) float64 {
	rate := RateFor(model)
	inCost := float64(inputTokens) / 1_000_000 * rate.Input
	outCost := float64(outputTokens) / 1_000_000 * rate.Output
	return inCost + outCost
}

// FormatUSD formats a cost as a dollar string (e.g. "$0.0042"). Four decimal
// places because single turns routinely cost fractions of a cent.
func FormatUSD(cost float64) string {
	return fmt.Sprintf("$%.4f", cost)
}

// FormatRate returns a display string for a model's pricing (e.g. "$3.00/$15.00 per 1M tokens").
func FormatRate(model string) string {
	rate := RateFor(model)
	return fmt.Sprintf("$%.2f/$%.2f per 1M tokens", rate.Input, rate.Output)
}
