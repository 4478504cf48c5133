package output

import (
	"fmt"

	"github.com/dshills/prbot/internal/review"
)

// Rates are USD prices per million tokens.
type Rates struct {
	InputPerM  float64
	OutputPerM float64
}

// ModelInfo describes one known model and its price.
type ModelInfo struct {
	Provider string
	Model    string
	Rates    Rates
}

// Pricing lists the models prbot knows a price for, grouped by provider.
// Rates are the published standard-tier list prices for prompts up to 200k
// tokens.
var Pricing = []ModelInfo{
	{Provider: "gemini", Model: "gemini-2.5-flash", Rates: Rates{InputPerM: 0.30, OutputPerM: 2.50}},
	{Provider: "gemini", Model: "gemini-2.5-flash-lite", Rates: Rates{InputPerM: 0.10, OutputPerM: 0.40}},
	{Provider: "gemini", Model: "gemini-2.0-flash", Rates: Rates{InputPerM: 0.10, OutputPerM: 0.40}},
	{Provider: "gemini", Model: "gemini-2.0-flash-lite", Rates: Rates{InputPerM: 0.075, OutputPerM: 0.30}},
	{Provider: "gemini", Model: "gemini-3-flash-preview", Rates: Rates{InputPerM: 0.50, OutputPerM: 3.00}},
	{Provider: "gemini", Model: "gemini-2.5-pro", Rates: Rates{InputPerM: 1.25, OutputPerM: 10.00}},
	{Provider: "gemini", Model: "gemini-3-pro-preview", Rates: Rates{InputPerM: 2.00, OutputPerM: 12.00}},
	{Provider: "openai", Model: "gpt-4.1-mini", Rates: Rates{InputPerM: 0.40, OutputPerM: 1.60}},
	{Provider: "openai", Model: "gpt-4.1", Rates: Rates{InputPerM: 2.00, OutputPerM: 8.00}},
	{Provider: "openai", Model: "gpt-4o-mini", Rates: Rates{InputPerM: 0.15, OutputPerM: 0.60}},
	{Provider: "openai", Model: "o3-mini", Rates: Rates{InputPerM: 1.10, OutputPerM: 4.40}},
}

// LookupRates returns the rates for model.
func LookupRates(model string) (Rates, bool) {
	for _, m := range Pricing {
		if m.Model == model {
			return m.Rates, true
		}
	}
	return Rates{}, false
}

// Cost computes in/1e6*inRate + out/1e6*outRate.
func Cost(u review.Usage, r Rates) float64 {
	return float64(u.InputTokens)/1_000_000*r.InputPerM +
		float64(u.OutputTokens)/1_000_000*r.OutputPerM
}

// FormatCost renders a dollar amount with four decimal places.
func FormatCost(c float64) string {
	return fmt.Sprintf("$%.4f", c)
}

// groupDigits formats n with comma thousands separators.
func groupDigits(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
