// Package orders manages shipment orders. Orders are priced by the rate
// resolver at creation time and then progressed by an admin through a
// fixed status vocabulary.
package orders

import (
	"context"

	"go.uber.org/zap"

	"shipquote/core/types"
	apperrors "shipquote/internal/errors"
)

// Store persists orders
type Store interface {
	CreateOrder(ctx context.Context, order *types.Order) (*types.Order, error)

	// GetOrder returns (nil, nil) when no order has id
	GetOrder(ctx context.Context, id string) (*types.Order, error)

	// ListOrdersByUser returns a user's orders, newest first
	ListOrdersByUser(ctx context.Context, userID string) ([]*types.Order, error)

	// ListOrders returns every order, newest first. An empty status means all.
	ListOrders(ctx context.Context, status types.OrderStatus) ([]*types.Order, error)

	// UpdateOrderStatus moves an order from one status to another. It returns
	// (nil, nil) if the order is no longer in the from status.
	UpdateOrderStatus(ctx context.Context, id string, from, to types.OrderStatus) (*types.Order, error)
}

// Quoter prices a request
type Quoter interface {
	Resolve(ctx context.Context, req types.QuoteRequest) (*types.QuoteResult, error)
}

// CreateRequest is what a user submits when placing an order
type CreateRequest struct {
	From        string `json:"ship_from"`
	To          string `json:"ship_to"`
	Weight      string `json:"weight"`
	PackageType string `json:"package_type"`
	Currency    string `json:"currency"`
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
}

// Service creates and progresses orders
type Service struct {
	store  Store
	quoter Quoter
	logger *zap.Logger
}

// NewService creates an order service
func NewService(store Store, quoter Quoter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, quoter: quoter, logger: logger.Named("orders")}
}

// Create prices req server-side and stores a pending order for userID
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*types.Order, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("Invalid token")
	}

	quote, err := s.quoter.Resolve(ctx, types.QuoteRequest{
		Route:    types.RouteKey{From: req.From, To: req.To, PackageType: req.PackageType},
		Weight:   req.Weight,
		Currency: types.ParseCurrency(req.Currency),
	})
	if err != nil {
		return nil, err
	}

	order := &types.Order{
		UserID:        userID,
		ShipFrom:      quote.Route.From,
		ShipTo:        quote.Route.To,
		Weight:        quote.Weight,
		PackageType:   quote.Route.PackageType,
		EstimatedCost: quote.Breakdown.Total,
		Currency:      quote.Currency,
		FromAddress:   req.FromAddress,
		ToAddress:     req.ToAddress,
		Status:        types.OrderPending,
	}
	if quote.NGN != nil {
		total := quote.NGN.Total
		order.NairaCost = &total
	}

	created, err := s.store.CreateOrder(ctx, order)
	if err != nil {
		return nil, apperrors.Internal("creating order failed", err)
	}

	s.logger.Info("order created",
		zap.String("order_id", created.ID),
		zap.String("user_id", userID),
		zap.String("estimated_cost", created.EstimatedCost.StringFixed(2)),
		zap.String("currency", created.Currency.String()))
	return created, nil
}

// ListForUser returns userID's orders, newest first
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*types.Order, error) {
	out, err := s.store.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("listing orders failed", err)
	}
	return out, nil
}

// ListAll returns every order, optionally filtered by status
func (s *Service) ListAll(ctx context.Context, status types.OrderStatus) ([]*types.Order, error) {
	if status != "" && !status.IsValid() {
		return nil, apperrors.InvalidInput("unknown order status " + string(status))
	}
	out, err := s.store.ListOrders(ctx, status)
	if err != nil {
		return nil, apperrors.Internal("listing orders failed", err)
	}
	return out, nil
}

// AdvanceStatus moves an order to next if the transition is allowed
func (s *Service) AdvanceStatus(ctx context.Context, id string, next types.OrderStatus) (*types.Order, error) {
	if !next.IsValid() {
		return nil, apperrors.InvalidInput("unknown order status " + string(next))
	}

	current, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("loading order failed", err)
	}
	if current == nil {
		return nil, apperrors.NotFound("order", id)
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, apperrors.Conflict("cannot move order from " + string(current.Status) + " to " + string(next)).
			WithContext("order_id", id)
	}

	updated, err := s.store.UpdateOrderStatus(ctx, id, current.Status, next)
	if err != nil {
		return nil, apperrors.Internal("updating order failed", err)
	}
	if updated == nil {
		// another admin moved it first
		return nil, apperrors.Conflict("order " + id + " changed concurrently").WithContext("order_id", id)
	}

	s.logger.Info("order status changed",
		zap.String("order_id", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next)))
	return updated, nil
}
