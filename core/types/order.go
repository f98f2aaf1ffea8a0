// Package types - Profile and order types
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Profile is a user's account record
type Profile struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	FullName    string    `json:"full_name,omitempty"`
	CompanyName string    `json:"company_name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	APIKey      string    `json:"api_key"`
	IsAdmin     bool      `json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Principal returns the identity the pricing endpoint reports
func (p *Profile) Principal() *Principal {
	return &Principal{UserID: p.UserID, FullName: p.FullName}
}

// OrderStatus is the fixed vocabulary orders move through
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderApproved  OrderStatus = "approved"
	OrderRejected  OrderStatus = "rejected"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
)

// orderTransitions lists the only moves an admin may make
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:  {OrderApproved, OrderRejected},
	OrderApproved: {OrderShipped},
	OrderShipped:  {OrderDelivered},
}

// IsValid checks the status is in the vocabulary
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderApproved, OrderRejected, OrderShipped, OrderDelivered:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition exists
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether next directly follows s
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is a shipment request priced at creation time
type Order struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	ShipFrom      string           `json:"ship_from"`
	ShipTo        string           `json:"ship_to"`
	Weight        decimal.Decimal  `json:"weight"`
	PackageType   string           `json:"package_type"`
	EstimatedCost decimal.Decimal  `json:"estimated_cost"`
	Currency      Currency         `json:"currency"`
	NairaCost     *decimal.Decimal `json:"naira_cost,omitempty"`
	FromAddress   string           `json:"from_address,omitempty"`
	ToAddress     string           `json:"to_address,omitempty"`
	Status        OrderStatus      `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
