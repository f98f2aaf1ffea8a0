// Package types - Quote types
package types

import "github.com/shopspring/decimal"

// Round2 rounds a monetary amount to 2 decimal places, half away from zero
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// CostBreakdown is one currency's priced quote, every field rounded to 2 dp
type CostBreakdown struct {
	BasePrice  decimal.Decimal `json:"base_price"`
	WeightCost decimal.Decimal `json:"weight_cost"`
	Total      decimal.Decimal `json:"total"`
}

// Equal compares two breakdowns by value
func (b CostBreakdown) Equal(o CostBreakdown) bool {
	return b.BasePrice.Equal(o.BasePrice) && b.WeightCost.Equal(o.WeightCost) && b.Total.Equal(o.Total)
}

// QuoteRequest is an ephemeral pricing query. Weight stays raw so the
// resolver owns its validation.
type QuoteRequest struct {
	Route     RouteKey
	Weight    string
	Currency  Currency
	Principal *Principal
}

// QuoteResult is the priced answer to a QuoteRequest
type QuoteResult struct {
	// Route is the rule key that matched
	Route RouteKey `json:"route"`

	// Weight is the parsed weight in kilograms
	Weight decimal.Decimal `json:"weight"`

	// Currency is the primary currency after fallback
	Currency Currency `json:"currency"`

	// Breakdown is the primary currency's costs
	Breakdown CostBreakdown `json:"breakdown"`

	// USD is always present
	USD CostBreakdown `json:"usd"`

	// NGN is nil when the rule has no naira pricing
	NGN *CostBreakdown `json:"ngn,omitempty"`
}

// Principal is the authenticated caller of the pricing endpoint
type Principal struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name,omitempty"`
}

// DisplayName is the name echoed back in quote responses
func (p *Principal) DisplayName() string {
	if p == nil || p.FullName == "" {
		return "Unknown User"
	}
	return p.FullName
}
