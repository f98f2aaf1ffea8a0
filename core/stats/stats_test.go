package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"shipquote/core/types"
	apperrors "shipquote/internal/errors"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAggregate(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	thisMonth := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2025, time.February, 28, 23, 59, 0, 0, time.UTC)
	lastYear := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	got := Aggregate(Facts{
		Users:        7,
		PricingRules: 3,
		Orders: []OrderFact{
			{Status: types.OrderPending, EstimatedCost: money("65.00"), CreatedAt: thisMonth},
			{Status: types.OrderApproved, EstimatedCost: money("10.10"), CreatedAt: lastMonth},
			{Status: types.OrderShipped, EstimatedCost: money("100"), CreatedAt: lastYear},
			{Status: types.OrderShipped, EstimatedCost: money("0.20"), CreatedAt: now},
			{Status: types.OrderDelivered, EstimatedCost: money("5"), CreatedAt: thisMonth},
			{Status: types.OrderRejected, EstimatedCost: money("1"), CreatedAt: lastMonth},
		},
		Posts: []BlogFact{{Published: true}, {Published: false}, {Published: true}},
	}, now)

	wantOrders := OrderCounts{Total: 6, Pending: 1, Approved: 1, Rejected: 1, InTransit: 2, Delivered: 1}
	if got.Orders != wantOrders {
		t.Errorf("orders: got %+v want %+v", got.Orders, wantOrders)
	}
	if !got.Revenue.Total.Equal(money("181.30")) {
		t.Errorf("revenue total: got %s", got.Revenue.Total)
	}
	if !got.Revenue.ThisMonth.Equal(money("70.20")) {
		t.Errorf("revenue this month: got %s", got.Revenue.ThisMonth)
	}
	if got.Blog != (BlogCounts{Total: 3, Published: 2, Drafts: 1}) {
		t.Errorf("blog: got %+v", got.Blog)
	}
	if got.Users != 7 || got.PricingRules != 3 {
		t.Errorf("counts: got users=%d pricing=%d", got.Users, got.PricingRules)
	}
}

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(Facts{}, time.Now())

	if got.Orders != (OrderCounts{}) || got.Blog != (BlogCounts{}) {
		t.Errorf("expected zero counts, got %+v", got)
	}
	if !got.Revenue.Total.IsZero() || !got.Revenue.ThisMonth.IsZero() {
		t.Errorf("expected zero revenue, got %+v", got.Revenue)
	}
}

func TestAggregateMonthIsUTC(t *testing.T) {
	lagos := time.FixedZone("WAT", 3600)
	now := time.Date(2025, time.April, 1, 0, 30, 0, 0, lagos) // still March 31 in UTC

	got := Aggregate(Facts{Orders: []OrderFact{
		{Status: types.OrderPending, EstimatedCost: money("9"), CreatedAt: time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC)},
	}}, now)

	if !got.Revenue.ThisMonth.Equal(money("9")) {
		t.Errorf("expected March order counted, got %s", got.Revenue.ThisMonth)
	}
}

type failingStore struct{ Store }

func (failingStore) CountProfiles(context.Context) (int, error) { return 0, errors.New("boom") }

func TestCollectStoreFailure(t *testing.T) {
	_, _, err := NewService(failingStore{}).Collect(context.Background())
	if !apperrors.IsType(err, apperrors.TypeInternal) {
		t.Errorf("expected Internal, got %v", err)
	}
}
