// Package types defines core domain types shared across all layers.
// This package contains NO store access - only type definitions and their
// constructor-level validation.
package types

import "strings"

// Currency represents a currency code
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyNGN Currency = "NGN"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// IsValid checks if the currency is one the rate table prices in
func (c Currency) IsValid() bool {
	switch c {
	case CurrencyUSD, CurrencyNGN:
		return true
	default:
		return false
	}
}

// ParseCurrency reads a requested currency. Matching is case-insensitive;
// empty or unknown codes resolve to USD.
func ParseCurrency(s string) Currency {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if c.IsValid() {
		return c
	}
	return CurrencyUSD
}

// RouteKey identifies one pricing rule. Matching is exact and case-sensitive.
type RouteKey struct {
	From        string `json:"from_country"`
	To          string `json:"to_country"`
	PackageType string `json:"package_type"`
}

// String returns "<from> → <to>", the form echoed to API callers
func (k RouteKey) String() string {
	return k.From + " → " + k.To
}

// Missing returns the names of empty key fields, in lookup order
func (k RouteKey) Missing() []string {
	var missing []string
	if k.From == "" {
		missing = append(missing, "origin")
	}
	if k.To == "" {
		missing = append(missing, "destination")
	}
	if k.PackageType == "" {
		missing = append(missing, "package_category")
	}
	return missing
}
