// Package pricing resolves shipping quotes from the rate table.
// Resolution is read-only: exact-match rule lookup plus decimal arithmetic.
// Nothing here caches; every call reads the store.
package pricing

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"shipquote/core/types"
	apperrors "shipquote/internal/errors"
	"shipquote/internal/logging"
)

// RuleStore reads pricing rules
type RuleStore interface {
	// FindRule returns the rule for an exact route key, or (nil, nil) when none exists
	FindRule(ctx context.Context, key types.RouteKey) (*types.PricingRule, error)

	// ListRoutes returns every stored route key
	ListRoutes(ctx context.Context) ([]types.RouteKey, error)
}

// Resolver prices quote requests against a RuleStore
type Resolver struct {
	store  RuleStore
	logger *zap.Logger
	tracer trace.Tracer
}

// NewResolver creates a resolver over store
func NewResolver(store RuleStore, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		store:  store,
		logger: logger.Named("pricing"),
		tracer: otel.Tracer("shipquote/core/pricing"),
	}
}

// Validate checks a request's route and weight, in that order, and returns the parsed weight
func Validate(route types.RouteKey, rawWeight string) (decimal.Decimal, error) {
	if missing := route.Missing(); len(missing) > 0 {
		return decimal.Zero, apperrors.MissingParameters(missing...)
	}
	return ParseWeight(rawWeight)
}

// Resolve validates req and prices it
func (r *Resolver) Resolve(ctx context.Context, req types.QuoteRequest) (*types.QuoteResult, error) {
	weight, err := Validate(req.Route, req.Weight)
	if err != nil {
		return nil, err
	}
	return r.Lookup(ctx, req.Route, weight, req.Currency)
}

// Lookup fetches the rule for an already validated route and weight and prices it
func (r *Resolver) Lookup(ctx context.Context, route types.RouteKey, weight decimal.Decimal, currency types.Currency) (*types.QuoteResult, error) {
	ctx, span := r.tracer.Start(ctx, "pricing.Lookup", trace.WithAttributes(
		attribute.String("route.from", route.From),
		attribute.String("route.to", route.To),
		attribute.String("route.package_type", route.PackageType),
		attribute.String("currency.requested", currency.String()),
	))
	defer span.End()

	rule, err := r.store.FindRule(ctx, route)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rule lookup failed")
		if _, ok := apperrors.As(err); ok {
			return nil, err
		}
		return nil, apperrors.Internal("pricing rule lookup failed", err)
	}
	if rule == nil {
		span.AddEvent("no pricing rule")
		r.logger.Info("no pricing rule for route", logging.Route(route.From, route.To, route.PackageType)...)
		return nil, apperrors.NoPricingRule(route.From, route.To, route.PackageType)
	}

	result := Quote(rule, weight, currency)
	span.SetAttributes(attribute.String("currency.resolved", result.Currency.String()))
	return result, nil
}

// Quote prices weight against rule. USD is always computed, NGN when the
// rule has naira pricing. The primary currency is NGN only when requested
// and available; every other case falls back to USD.
func Quote(rule *types.PricingRule, weight decimal.Decimal, currency types.Currency) *types.QuoteResult {
	result := &types.QuoteResult{
		Route:    rule.Route,
		Weight:   weight,
		Currency: types.CurrencyUSD,
		USD:      rule.USD.Cost(weight),
	}
	result.Breakdown = result.USD

	if rule.NGN != nil {
		ngn := rule.NGN.Cost(weight)
		result.NGN = &ngn
		if currency == types.CurrencyNGN {
			result.Currency = types.CurrencyNGN
			result.Breakdown = ngn
		}
	}

	return result
}
