package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"shipquote/core/types"
)

const orderColumns = `id::text, user_id, ship_from, ship_to, weight::text, COALESCE(package_type, ''),
	estimated_cost::text, currency, naira_cost::text, COALESCE(from_address, ''),
	COALESCE(to_address, ''), COALESCE(status, 'pending'), created_at, updated_at`

// OrderStore reads and writes orders
type OrderStore struct {
	db *pgxpool.Pool
}

// NewOrderStore creates a store over db
func NewOrderStore(db *pgxpool.Pool) *OrderStore {
	return &OrderStore{db: db}
}

func scanOrder(row rowScanner) (*types.Order, error) {
	var o types.Order
	var weight, estimated, naira *string
	var currency, status string
	err := row.Scan(&o.ID, &o.UserID, &o.ShipFrom, &o.ShipTo, &weight, &o.PackageType,
		&estimated, &currency, &naira, &o.FromAddress, &o.ToAddress, &status,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	w, err := parseNumeric(weight)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("order %s has no weight", o.ID)
	}
	o.Weight = *w

	cost, err := parseNumeric(estimated)
	if err != nil {
		return nil, err
	}
	o.EstimatedCost = decimal.Zero
	if cost != nil {
		o.EstimatedCost = *cost
	}

	if o.NairaCost, err = parseNumeric(naira); err != nil {
		return nil, err
	}

	o.Currency = types.ParseCurrency(currency)
	o.Status = types.OrderStatus(status)
	return &o, nil
}

func (s *OrderStore) queryOrders(ctx context.Context, query string, args ...any) ([]*types.Order, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*types.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// CreateOrder inserts order and returns the stored row
func (s *OrderStore) CreateOrder(ctx context.Context, order *types.Order) (*types.Order, error) {
	naira := decimal.NullDecimal{}
	if order.NairaCost != nil {
		naira = decimal.NewNullDecimal(*order.NairaCost)
	}

	query := `
		INSERT INTO orders (user_id, ship_from, ship_to, weight, package_type,
			estimated_cost, currency, naira_cost, from_address, to_address, status)
		VALUES ($1, $2, $3, $4::numeric, $5, $6::numeric, $7, $8::numeric,
			NULLIF($9, ''), NULLIF($10, ''), $11)
		RETURNING ` + orderColumns

	return scanOrder(s.db.QueryRow(ctx, query,
		order.UserID, order.ShipFrom, order.ShipTo, order.Weight, order.PackageType,
		order.EstimatedCost, order.Currency.String(), naira,
		order.FromAddress, order.ToAddress, string(order.Status)))
}

// GetOrder returns the order with id, or nil
func (s *OrderStore) GetOrder(ctx context.Context, id string) (*types.Order, error) {
	o, err := scanOrder(s.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

// ListOrdersByUser returns userID's orders, newest first
func (s *OrderStore) ListOrdersByUser(ctx context.Context, userID string) ([]*types.Order, error) {
	return s.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListOrders returns every order, newest first, optionally filtered by status
func (s *OrderStore) ListOrders(ctx context.Context, status types.OrderStatus) ([]*types.Order, error) {
	if status == "" {
		return s.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	}
	return s.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE COALESCE(status, 'pending') = $1 ORDER BY created_at DESC`,
		string(status))
}

// UpdateOrderStatus moves the order only if it is still in from; otherwise it returns nil
func (s *OrderStore) UpdateOrderStatus(ctx context.Context, id string, from, to types.OrderStatus) (*types.Order, error) {
	query := `
		UPDATE orders SET status = $3, updated_at = NOW()
		WHERE id = $1 AND COALESCE(status, 'pending') = $2
		RETURNING ` + orderColumns

	o, err := scanOrder(s.db.QueryRow(ctx, query, id, string(from), string(to)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return o, err
}
