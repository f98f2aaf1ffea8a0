package types

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want Currency
	}{
		{"USD", CurrencyUSD},
		{"ngn", CurrencyNGN},
		{" NGN ", CurrencyNGN},
		{"", CurrencyUSD},
		{"EUR", CurrencyUSD},
	}
	for _, tt := range tests {
		if got := ParseCurrency(tt.in); got != tt.want {
			t.Errorf("ParseCurrency(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNewPricingRule(t *testing.T) {
	tests := []struct {
		name    string
		in      RuleInput
		wantErr bool
		wantNGN bool
	}{
		{
			name: "usd only",
			in:   RuleInput{From: "Nigeria", To: "Ghana", PackageType: "document", BasePrice: dec("15"), PricePerKg: dec("25")},
		},
		{
			name: "absent base reads as zero",
			in:   RuleInput{From: "Nigeria", To: "Ghana", PackageType: "document", PricePerKg: dec("25")},
		},
		{
			name:    "both naira fields",
			in:      RuleInput{From: "Nigeria", To: "Ghana", PackageType: "document", PricePerKg: dec("25"), NairaBase: dec("0"), NairaPerKg: dec("40000")},
			wantNGN: true,
		},
		{
			name: "partial naira pair is no naira pricing",
			in:   RuleInput{From: "Nigeria", To: "Ghana", PackageType: "document", PricePerKg: dec("25"), NairaPerKg: dec("40000")},
		},
		{
			name:    "zero per kg rejected",
			in:      RuleInput{From: "Nigeria", To: "Ghana", PackageType: "document", PricePerKg: dec("0")},
			wantErr: true,
		},
		{
			name:    "negative base rejected",
			in:      RuleInput{From: "Nigeria", To: "Ghana", PackageType: "document", BasePrice: dec("-1"), PricePerKg: dec("2")},
			wantErr: true,
		},
		{
			name:    "missing route field rejected",
			in:      RuleInput{From: "Nigeria", PackageType: "document", PricePerKg: dec("2")},
			wantErr: true,
		},
		{
			name:    "non-positive naira per kg rejected",
			in:      RuleInput{From: "Nigeria", To: "Ghana", PackageType: "document", PricePerKg: dec("2"), NairaBase: dec("1"), NairaPerKg: dec("0")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := NewPricingRule(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rule.HasNGN() != tt.wantNGN {
				t.Errorf("HasNGN() = %v, want %v", rule.HasNGN(), tt.wantNGN)
			}
			if rule.USD.Base.IsNegative() {
				t.Errorf("base should never be negative, got %s", rule.USD.Base)
			}
		})
	}
}

func TestRateCostRoundsHalfAwayFromZero(t *testing.T) {
	rate := Rate{Base: decimal.RequireFromString("0.005"), PerKg: decimal.RequireFromString("0.125")}

	got := rate.Cost(decimal.RequireFromString("1"))
	if got.WeightCost.String() != "0.13" {
		t.Errorf("weight cost: expected 0.13, got %s", got.WeightCost)
	}
	if got.BasePrice.String() != "0.01" {
		t.Errorf("base: expected 0.01, got %s", got.BasePrice)
	}
	// total rounds the exact sum 0.13, not the rounded parts 0.14
	if got.Total.String() != "0.13" {
		t.Errorf("total: expected 0.13, got %s", got.Total)
	}
}

func TestOrderTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderPending, OrderApproved, true},
		{OrderPending, OrderRejected, true},
		{OrderApproved, OrderShipped, true},
		{OrderShipped, OrderDelivered, true},
		{OrderPending, OrderShipped, false},
		{OrderRejected, OrderApproved, false},
		{OrderDelivered, OrderPending, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.ok {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.ok)
		}
	}
	if !OrderDelivered.IsTerminal() || !OrderRejected.IsTerminal() {
		t.Error("delivered and rejected should be terminal")
	}
}

func TestDisplayName(t *testing.T) {
	var nilPrincipal *Principal
	if nilPrincipal.DisplayName() != "Unknown User" {
		t.Error("nil principal should display as Unknown User")
	}
	if (&Principal{FullName: "Ada"}).DisplayName() != "Ada" {
		t.Error("expected full name")
	}
}
