package orders

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"shipquote/core/pricing"
	"shipquote/core/types"
	apperrors "shipquote/internal/errors"
)

type ruleStore map[types.RouteKey]*types.PricingRule

func (s ruleStore) FindRule(_ context.Context, key types.RouteKey) (*types.PricingRule, error) {
	return s[key], nil
}

func (s ruleStore) ListRoutes(_ context.Context) ([]types.RouteKey, error) {
	return nil, nil
}

type orderStore struct {
	orders  map[string]*types.Order
	nextID  int
	failAll bool
}

func newOrderStore() *orderStore {
	return &orderStore{orders: make(map[string]*types.Order)}
}

func (s *orderStore) CreateOrder(_ context.Context, o *types.Order) (*types.Order, error) {
	if s.failAll {
		return nil, errors.New("db down")
	}
	s.nextID++
	cp := *o
	cp.ID = fmt.Sprintf("ord-%d", s.nextID)
	s.orders[cp.ID] = &cp
	return &cp, nil
}

func (s *orderStore) GetOrder(_ context.Context, id string) (*types.Order, error) {
	if s.failAll {
		return nil, errors.New("db down")
	}
	return s.orders[id], nil
}

func (s *orderStore) ListOrdersByUser(_ context.Context, userID string) ([]*types.Order, error) {
	var out []*types.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *orderStore) ListOrders(_ context.Context, status types.OrderStatus) ([]*types.Order, error) {
	var out []*types.Order
	for _, o := range s.orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *orderStore) UpdateOrderStatus(_ context.Context, id string, from, to types.OrderStatus) (*types.Order, error) {
	o := s.orders[id]
	if o == nil || o.Status != from {
		return nil, nil
	}
	o.Status = to
	return o, nil
}

func dec(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func newTestService(t *testing.T) (*Service, *orderStore) {
	t.Helper()
	usdOnly, err := types.NewPricingRule(types.RuleInput{
		From: "Nigeria", To: "Ghana", PackageType: "document",
		BasePrice: dec("15"), PricePerKg: dec("25"),
	})
	if err != nil {
		t.Fatal(err)
	}
	dual, err := types.NewPricingRule(types.RuleInput{
		From: "Nigeria", To: "UK", PackageType: "fashion",
		BasePrice: dec("20"), PricePerKg: dec("8.5"),
		NairaBase: dec("30000"), NairaPerKg: dec("12500"),
	})
	if err != nil {
		t.Fatal(err)
	}

	rules := ruleStore{usdOnly.Route: usdOnly, dual.Route: dual}
	store := newOrderStore()
	return NewService(store, pricing.NewResolver(rules, nil), nil), store
}

func TestCreatePricesServerSide(t *testing.T) {
	svc, _ := newTestService(t)

	order, err := svc.Create(context.Background(), "user-1", CreateRequest{
		From: "Nigeria", To: "UK", PackageType: "fashion", Weight: "2", Currency: "ngn",
		FromAddress: "Lagos", ToAddress: "London",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.Status != types.OrderPending {
		t.Errorf("expected pending, got %s", order.Status)
	}
	if order.Currency != types.CurrencyNGN {
		t.Errorf("expected NGN, got %s", order.Currency)
	}
	if order.EstimatedCost.StringFixed(2) != "55000.00" {
		t.Errorf("expected estimated cost 55000.00, got %s", order.EstimatedCost.StringFixed(2))
	}
	if order.NairaCost == nil || order.NairaCost.StringFixed(2) != "55000.00" {
		t.Errorf("expected naira cost 55000.00, got %v", order.NairaCost)
	}
}

func TestCreateFallsBackToUSD(t *testing.T) {
	svc, _ := newTestService(t)

	order, err := svc.Create(context.Background(), "user-1", CreateRequest{
		From: "Nigeria", To: "Ghana", PackageType: "document", Weight: "2", Currency: "NGN",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Currency != types.CurrencyUSD || order.EstimatedCost.StringFixed(2) != "65.00" {
		t.Errorf("expected USD 65.00, got %s %s", order.Currency, order.EstimatedCost.StringFixed(2))
	}
	if order.NairaCost != nil {
		t.Errorf("expected no naira cost, got %s", order.NairaCost)
	}
}

func TestCreatePropagatesQuoteErrors(t *testing.T) {
	svc, store := newTestService(t)

	tests := []struct {
		name string
		req  CreateRequest
		want apperrors.Type
	}{
		{"missing route", CreateRequest{To: "Ghana", PackageType: "document", Weight: "1"}, apperrors.TypeMissingParameters},
		{"bad weight", CreateRequest{From: "Nigeria", To: "Ghana", PackageType: "document", Weight: "0"}, apperrors.TypeInvalidWeight},
		{"no rule", CreateRequest{From: "Nigeria", To: "Kenya", PackageType: "document", Weight: "1"}, apperrors.TypeNoPricingRule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "user-1", tt.req)
			if !apperrors.IsType(err, tt.want) {
				t.Errorf("expected %s, got %v", tt.want, err)
			}
		})
	}
	if len(store.orders) != 0 {
		t.Errorf("failed quotes must not create orders, got %d", len(store.orders))
	}
}

func TestCreateStoreFailure(t *testing.T) {
	svc, store := newTestService(t)
	store.failAll = true

	_, err := svc.Create(context.Background(), "user-1", CreateRequest{
		From: "Nigeria", To: "Ghana", PackageType: "document", Weight: "1",
	})
	if !apperrors.IsType(err, apperrors.TypeInternal) {
		t.Errorf("expected Internal, got %v", err)
	}
}

func TestAdvanceStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, "user-1", CreateRequest{
		From: "Nigeria", To: "Ghana", PackageType: "document", Weight: "1",
	})
	if err != nil {
		t.Fatal(err)
	}

	steps := []struct {
		next types.OrderStatus
		want apperrors.Type
	}{
		{types.OrderShipped, apperrors.TypeConflict},
		{types.OrderApproved, ""},
		{types.OrderRejected, apperrors.TypeConflict},
		{types.OrderShipped, ""},
		{types.OrderDelivered, ""},
		{types.OrderPending, apperrors.TypeConflict},
		{"lost", apperrors.TypeInvalidInput},
	}
	for _, step := range steps {
		_, err := svc.AdvanceStatus(ctx, order.ID, step.next)
		if step.want == "" {
			if err != nil {
				t.Fatalf("move to %s: unexpected error %v", step.next, err)
			}
			continue
		}
		if !apperrors.IsType(err, step.want) {
			t.Fatalf("move to %s: expected %s, got %v", step.next, step.want, err)
		}
	}

	if _, err := svc.AdvanceStatus(ctx, "missing", types.OrderApproved); !apperrors.IsType(err, apperrors.TypeNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestListAllRejectsUnknownStatus(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.ListAll(context.Background(), "lost"); !apperrors.IsType(err, apperrors.TypeInvalidInput) {
		t.Errorf("expected InvalidInput, got %v", err)
	}
	if _, err := svc.ListAll(context.Background(), ""); err != nil {
		t.Errorf("empty status lists everything, got %v", err)
	}
}
