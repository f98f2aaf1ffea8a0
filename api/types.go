// Package api - Response types
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"shipquote/core/stats"
	"shipquote/core/types"
)

// timestampLayout is ISO-8601 UTC with milliseconds
const timestampLayout = "2006-01-02T15:04:05.000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// money renders a rounded amount as a JSON number
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func optionalMoney(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	v := money(*d)
	return &v
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// CostJSON is one currency's breakdown on the wire
type CostJSON struct {
	BasePrice  float64 `json:"base_price"`
	WeightCost float64 `json:"weight_cost"`
	Total      float64 `json:"total"`
}

func newCostJSON(b types.CostBreakdown) CostJSON {
	return CostJSON{
		BasePrice:  money(b.BasePrice),
		WeightCost: money(b.WeightCost),
		Total:      money(b.Total),
	}
}

// CostsJSON carries both currencies. NGN is null without naira pricing.
type CostsJSON struct {
	USD CostJSON  `json:"usd"`
	NGN *CostJSON `json:"ngn"`
}

// QuoteResponse is the success body of GET /pricing
type QuoteResponse struct {
	Success           bool           `json:"success"`
	Cost              float64        `json:"cost"`
	Currency          types.Currency `json:"currency"`
	Breakdown         CostJSON       `json:"breakdown"`
	Costs             CostsJSON      `json:"costs"`
	Route             string         `json:"route"`
	Weight            float64        `json:"weight"`
	PackageType       string         `json:"package_type"`
	EstimatedDelivery string         `json:"estimated_delivery"`
	User              string         `json:"user"`
	Timestamp         string         `json:"timestamp"`
}

func newQuoteResponse(q *types.QuoteResult, user *types.Principal, delivery string, now time.Time) QuoteResponse {
	resp := QuoteResponse{
		Success:           true,
		Cost:              money(q.Breakdown.Total),
		Currency:          q.Currency,
		Breakdown:         newCostJSON(q.Breakdown),
		Costs:             CostsJSON{USD: newCostJSON(q.USD)},
		Route:             q.Route.String(),
		Weight:            q.Weight.InexactFloat64(),
		PackageType:       q.Route.PackageType,
		EstimatedDelivery: delivery,
		User:              user.DisplayName(),
		Timestamp:         formatTime(now),
	}
	if q.NGN != nil {
		ngn := newCostJSON(*q.NGN)
		resp.Costs.NGN = &ngn
	}
	return resp
}

// RuleJSON is a pricing rule on the wire
type RuleJSON struct {
	ID              string   `json:"id"`
	FromCountry     string   `json:"from_country"`
	ToCountry       string   `json:"to_country"`
	PackageType     string   `json:"package_type"`
	BasePrice       float64  `json:"base_price"`
	PricePerKg      float64  `json:"price_per_kg"`
	NairaBasePrice  *float64 `json:"naira_base_price"`
	NairaPricePerKg *float64 `json:"naira_price_per_kg"`
	CreatedAt       string   `json:"created_at"`
}

func newRuleJSON(r *types.PricingRule) RuleJSON {
	out := RuleJSON{
		ID:          r.ID,
		FromCountry: r.Route.From,
		ToCountry:   r.Route.To,
		PackageType: r.Route.PackageType,
		BasePrice:   r.USD.Base.InexactFloat64(),
		PricePerKg:  r.USD.PerKg.InexactFloat64(),
		CreatedAt:   formatTime(r.CreatedAt),
	}
	if r.NGN != nil {
		base, perKg := r.NGN.Base.InexactFloat64(), r.NGN.PerKg.InexactFloat64()
		out.NairaBasePrice, out.NairaPricePerKg = &base, &perKg
	}
	return out
}

// RuleRequest is the admin create/update body. Decimals accept numbers or strings.
type RuleRequest struct {
	FromCountry     string           `json:"from_country"`
	ToCountry       string           `json:"to_country"`
	PackageType     string           `json:"package_type"`
	BasePrice       *decimal.Decimal `json:"base_price"`
	PricePerKg      *decimal.Decimal `json:"price_per_kg"`
	NairaBasePrice  *decimal.Decimal `json:"naira_base_price"`
	NairaPricePerKg *decimal.Decimal `json:"naira_price_per_kg"`
}

func (r RuleRequest) input(id string) types.RuleInput {
	return types.RuleInput{
		ID:          id,
		From:        r.FromCountry,
		To:          r.ToCountry,
		PackageType: r.PackageType,
		BasePrice:   r.BasePrice,
		PricePerKg:  r.PricePerKg,
		NairaBase:   r.NairaBasePrice,
		NairaPerKg:  r.NairaPricePerKg,
	}
}

// ProfileJSON is a profile on the wire
type ProfileJSON struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	FullName    string `json:"full_name"`
	CompanyName string `json:"company_name"`
	Phone       string `json:"phone"`
	APIKey      string `json:"api_key,omitempty"`
	IsAdmin     bool   `json:"is_admin"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func newProfileJSON(p *types.Profile, withKey bool) ProfileJSON {
	out := ProfileJSON{
		ID:          p.ID,
		UserID:      p.UserID,
		FullName:    p.FullName,
		CompanyName: p.CompanyName,
		Phone:       p.Phone,
		IsAdmin:     p.IsAdmin,
		CreatedAt:   formatTime(p.CreatedAt),
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
	if withKey {
		out.APIKey = p.APIKey
	}
	return out
}

// OrderJSON is an order on the wire
type OrderJSON struct {
	ID            string   `json:"id"`
	UserID        string   `json:"user_id"`
	ShipFrom      string   `json:"ship_from"`
	ShipTo        string   `json:"ship_to"`
	Weight        float64  `json:"weight"`
	PackageType   string   `json:"package_type"`
	EstimatedCost float64  `json:"estimated_cost"`
	Currency      string   `json:"currency"`
	NairaCost     *float64 `json:"naira_cost"`
	FromAddress   string   `json:"from_address"`
	ToAddress     string   `json:"to_address"`
	Status        string   `json:"status"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

func newOrderJSON(o *types.Order) OrderJSON {
	return OrderJSON{
		ID:            o.ID,
		UserID:        o.UserID,
		ShipFrom:      o.ShipFrom,
		ShipTo:        o.ShipTo,
		Weight:        o.Weight.InexactFloat64(),
		PackageType:   o.PackageType,
		EstimatedCost: money(o.EstimatedCost),
		Currency:      o.Currency.String(),
		NairaCost:     optionalMoney(o.NairaCost),
		FromAddress:   o.FromAddress,
		ToAddress:     o.ToAddress,
		Status:        string(o.Status),
		CreatedAt:     formatTime(o.CreatedAt),
		UpdatedAt:     formatTime(o.UpdatedAt),
	}
}

func newOrderList(in []*types.Order) []OrderJSON {
	out := make([]OrderJSON, 0, len(in))
	for _, o := range in {
		out = append(out, newOrderJSON(o))
	}
	return out
}

// StatsResponse is the body of GET /admin-stats
type StatsResponse struct {
	Success   bool      `json:"success"`
	Stats     StatsJSON `json:"stats"`
	Timestamp string    `json:"timestamp"`
}

// StatsJSON groups the aggregated figures
type StatsJSON struct {
	Users   countJSON         `json:"users"`
	Orders  stats.OrderCounts `json:"orders"`
	Revenue revenueJSON       `json:"revenue"`
	Blog    stats.BlogCounts  `json:"blog"`
	Pricing countJSON         `json:"pricing"`
}

type countJSON struct {
	Total int `json:"total"`
}

type revenueJSON struct {
	Total     float64 `json:"total"`
	ThisMonth float64 `json:"thisMonth"`
}

func newStatsResponse(s stats.Summary, at time.Time) StatsResponse {
	return StatsResponse{
		Success: true,
		Stats: StatsJSON{
			Users:  countJSON{Total: s.Users},
			Orders: s.Orders,
			Revenue: revenueJSON{
				Total:     s.Revenue.Total.InexactFloat64(),
				ThisMonth: s.Revenue.ThisMonth.InexactFloat64(),
			},
			Blog:    s.Blog,
			Pricing: countJSON{Total: s.PricingRules},
		},
		Timestamp: formatTime(at),
	}
}
