// Package types - Pricing types
package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Rate is a base price plus a per-kilogram price in one currency
type Rate struct {
	// Base is charged once per shipment
	Base decimal.Decimal `json:"base_price"`

	// PerKg is charged per kilogram of weight
	PerKg decimal.Decimal `json:"price_per_kg"`
}

// Cost prices weight against the rate: weight_cost = per_kg*weight,
// total = base + weight_cost. Components are rounded only on output.
func (r Rate) Cost(weight decimal.Decimal) CostBreakdown {
	weightCost := r.PerKg.Mul(weight)
	return CostBreakdown{
		BasePrice:  Round2(r.Base),
		WeightCost: Round2(weightCost),
		Total:      Round2(r.Base.Add(weightCost)),
	}
}

// PricingRule is one stored rate-table row
type PricingRule struct {
	// ID is the store identifier
	ID string `json:"id"`

	// Route is the exact-match lookup key
	Route RouteKey `json:"route"`

	// USD is always present
	USD Rate `json:"usd"`

	// NGN is nil unless both naira fields are set
	NGN *Rate `json:"ngn,omitempty"`

	// CreatedAt orders duplicate rows on legacy tables
	CreatedAt time.Time `json:"created_at"`
}

// RuleInput carries raw rule values as read from the store or an admin form.
// Nil pointers mean the column was NULL / absent.
type RuleInput struct {
	ID          string
	From        string
	To          string
	PackageType string
	BasePrice   *decimal.Decimal
	PricePerKg  *decimal.Decimal
	NairaBase   *decimal.Decimal
	NairaPerKg  *decimal.Decimal
	CreatedAt   time.Time
}

// NewPricingRule validates raw values and builds a rule.
// An absent USD base reads as zero; a partial naira pair means no NGN pricing.
func NewPricingRule(in RuleInput) (*PricingRule, error) {
	route := RouteKey{From: in.From, To: in.To, PackageType: in.PackageType}
	if missing := route.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("pricing rule missing %v", missing)
	}

	if in.PricePerKg == nil || !in.PricePerKg.IsPositive() {
		return nil, fmt.Errorf("pricing rule %s (%s): price_per_kg must be > 0", route, route.PackageType)
	}
	base := decimal.Zero
	if in.BasePrice != nil {
		base = *in.BasePrice
	}
	if base.IsNegative() {
		return nil, fmt.Errorf("pricing rule %s (%s): base_price must be >= 0", route, route.PackageType)
	}

	rule := &PricingRule{
		ID:        in.ID,
		Route:     route,
		USD:       Rate{Base: base, PerKg: *in.PricePerKg},
		CreatedAt: in.CreatedAt,
	}

	if in.NairaBase != nil && in.NairaPerKg != nil {
		if in.NairaBase.IsNegative() {
			return nil, fmt.Errorf("pricing rule %s (%s): naira_base_price must be >= 0", route, route.PackageType)
		}
		if !in.NairaPerKg.IsPositive() {
			return nil, fmt.Errorf("pricing rule %s (%s): naira_price_per_kg must be > 0", route, route.PackageType)
		}
		rule.NGN = &Rate{Base: *in.NairaBase, PerKg: *in.NairaPerKg}
	}

	return rule, nil
}

// HasNGN reports whether the rule prices in naira
func (r *PricingRule) HasNGN() bool {
	return r.NGN != nil
}

// RouteOptions is what the calculator offers in its dropdowns
type RouteOptions struct {
	Countries    []string `json:"countries"`
	PackageTypes []string `json:"package_types"`
}
