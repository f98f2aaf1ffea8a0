// Package stats aggregates backoffice statistics. Aggregation is pure; the
// Service only gathers the raw facts from a store.
package stats

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"shipquote/core/types"
	apperrors "shipquote/internal/errors"
)

// OrderFact is the slice of an order the statistics need
type OrderFact struct {
	Status        types.OrderStatus
	EstimatedCost decimal.Decimal
	CreatedAt     time.Time
}

// BlogFact is the slice of a blog post the statistics need
type BlogFact struct {
	Published bool
	CreatedAt time.Time
}

// Facts is everything Aggregate reads
type Facts struct {
	Users        int
	PricingRules int
	Orders       []OrderFact
	Posts        []BlogFact
}

// OrderCounts counts orders per status. InTransit counts shipped orders.
type OrderCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	InTransit int `json:"in-transit"`
	Delivered int `json:"delivered"`
}

// Revenue sums estimated costs across currencies
type Revenue struct {
	Total     decimal.Decimal
	ThisMonth decimal.Decimal
}

// BlogCounts counts posts by publication state
type BlogCounts struct {
	Total     int `json:"total"`
	Published int `json:"published"`
	Drafts    int `json:"drafts"`
}

// Summary is the aggregated result
type Summary struct {
	Users        int
	Orders       OrderCounts
	Revenue      Revenue
	Blog         BlogCounts
	PricingRules int
}

// Aggregate folds facts into a Summary. "This month" is now's UTC calendar month.
func Aggregate(f Facts, now time.Time) Summary {
	now = now.UTC()
	s := Summary{
		Users:        f.Users,
		PricingRules: f.PricingRules,
		Revenue:      Revenue{Total: decimal.Zero, ThisMonth: decimal.Zero},
	}

	s.Orders.Total = len(f.Orders)
	for _, o := range f.Orders {
		switch o.Status {
		case types.OrderPending:
			s.Orders.Pending++
		case types.OrderApproved:
			s.Orders.Approved++
		case types.OrderRejected:
			s.Orders.Rejected++
		case types.OrderShipped:
			s.Orders.InTransit++
		case types.OrderDelivered:
			s.Orders.Delivered++
		}

		s.Revenue.Total = s.Revenue.Total.Add(o.EstimatedCost)
		created := o.CreatedAt.UTC()
		if created.Year() == now.Year() && created.Month() == now.Month() {
			s.Revenue.ThisMonth = s.Revenue.ThisMonth.Add(o.EstimatedCost)
		}
	}

	s.Blog.Total = len(f.Posts)
	for _, p := range f.Posts {
		if p.Published {
			s.Blog.Published++
		} else {
			s.Blog.Drafts++
		}
	}

	return s
}

// Store reads the raw facts
type Store interface {
	CountProfiles(ctx context.Context) (int, error)
	CountRules(ctx context.Context) (int, error)
	OrderFacts(ctx context.Context) ([]OrderFact, error)
	BlogFacts(ctx context.Context) ([]BlogFact, error)
}

// Service collects facts and aggregates them
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a stats service
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Collect reads every fact and returns the summary together with the time it was taken
func (s *Service) Collect(ctx context.Context) (Summary, time.Time, error) {
	var (
		f   Facts
		err error
	)
	if f.Users, err = s.store.CountProfiles(ctx); err != nil {
		return Summary{}, time.Time{}, apperrors.Internal("counting profiles failed", err)
	}
	if f.PricingRules, err = s.store.CountRules(ctx); err != nil {
		return Summary{}, time.Time{}, apperrors.Internal("counting pricing rules failed", err)
	}
	if f.Orders, err = s.store.OrderFacts(ctx); err != nil {
		return Summary{}, time.Time{}, apperrors.Internal("reading orders failed", err)
	}
	if f.Posts, err = s.store.BlogFacts(ctx); err != nil {
		return Summary{}, time.Time{}, apperrors.Internal("reading blog posts failed", err)
	}

	now := s.now()
	return Aggregate(f, now), now, nil
}
