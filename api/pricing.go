package api

import (
	"net/http"

	"go.uber.org/zap"

	"shipquote/core/auth"
	"shipquote/core/pricing"
	"shipquote/core/types"
	apperrors "shipquote/internal/errors"
	"shipquote/internal/logging"
	"shipquote/internal/metrics"
)

// Fixed public bodies of the pricing endpoint
const (
	msgMissingParams     = "Missing required parameters: from, to, weight, packageType"
	msgParamsExample     = "?from=Nigeria&to=Ghana&weight=2&packageType=document"
	msgInvalidWeight     = "Weight must be a positive number"
	msgMissingCredential = "Missing or invalid API key. Include as: Authorization: Bearer YOUR_API_KEY"
	msgInvalidCredential = "Invalid API key. Please check your API key and try again."
	msgNoPricingRule     = "No pricing rules yet"
	msgInternal          = "Internal server error. Please try again later."
)

type missingParamsBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Example string `json:"example"`
}

// credentialBody omits success on purpose: the missing-key answer has none
type credentialBody struct {
	Error string `json:"error"`
}

// handlePricing handles GET /pricing.
// Checks run params → weight → credential → rule; the first failure answers.
func (s *Server) handlePricing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	packageType := q.Get("packageType")
	if packageType == "" {
		packageType = q.Get("package_type")
	}
	route := types.RouteKey{From: q.Get("from"), To: q.Get("to"), PackageType: packageType}
	rawWeight := q.Get("weight")

	if missing := missingQuoteParams(route, rawWeight); len(missing) > 0 {
		s.writePricingError(w, r, apperrors.MissingParameters(missing...))
		return
	}

	weight, err := pricing.Validate(route, rawWeight)
	if err != nil {
		s.writePricingError(w, r, err)
		return
	}

	key, err := auth.ExtractBearer(r.Header.Get("Authorization"))
	if err != nil {
		s.writePricingError(w, r, err)
		return
	}
	principal, err := s.deps.Keys.Validate(ctx, key)
	if err != nil {
		s.writePricingError(w, r, err)
		return
	}

	result, err := s.deps.Resolver.Lookup(ctx, route, weight, types.ParseCurrency(q.Get("currency")))
	if err != nil {
		s.writePricingError(w, r, err)
		return
	}

	metrics.QuotesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.logger.Info("pricing request served",
		append(logging.Route(route.From, route.To, route.PackageType),
			zap.String("user_id", principal.UserID),
			zap.String("weight", weight.String()),
			zap.String("currency", result.Currency.String()),
			zap.String("cost", result.Breakdown.Total.StringFixed(2)))...)

	s.writeJSON(w, newQuoteResponse(result, principal, s.opts.Pricing.EstimatedDelivery, s.now()), http.StatusOK)
}

// missingQuoteParams names the absent query parameters. An empty weight
// counts as missing here, before any weight parsing.
func missingQuoteParams(route types.RouteKey, weight string) []string {
	var missing []string
	if route.From == "" {
		missing = append(missing, "from")
	}
	if route.To == "" {
		missing = append(missing, "to")
	}
	if weight == "" {
		missing = append(missing, "weight")
	}
	if route.PackageType == "" {
		missing = append(missing, "packageType")
	}
	return missing
}

// writePricingError maps a failure to the pricing endpoint's fixed bodies
func (s *Server) writePricingError(w http.ResponseWriter, r *http.Request, err error) {
	switch apperrors.TypeOf(err) {
	case apperrors.TypeMissingParameters:
		metrics.QuotesTotal.WithLabelValues(metrics.OutcomeBadRequest).Inc()
		s.writeJSON(w, missingParamsBody{Success: false, Error: msgMissingParams, Example: msgParamsExample}, http.StatusBadRequest)

	case apperrors.TypeInvalidWeight:
		metrics.QuotesTotal.WithLabelValues(metrics.OutcomeBadRequest).Inc()
		s.writeJSON(w, errorBody{Success: false, Error: msgInvalidWeight}, http.StatusBadRequest)

	case apperrors.TypeMissingCredential:
		metrics.QuotesTotal.WithLabelValues(metrics.OutcomeUnauthorized).Inc()
		s.writeJSON(w, credentialBody{Error: msgMissingCredential}, http.StatusUnauthorized)

	case apperrors.TypeInvalidCredential:
		metrics.QuotesTotal.WithLabelValues(metrics.OutcomeUnauthorized).Inc()
		s.logger.Info("api key validation failed", zap.String("request_id", requestID(r)))
		s.writeJSON(w, errorBody{Success: false, Error: msgInvalidCredential}, http.StatusUnauthorized)

	case apperrors.TypeNoPricingRule:
		metrics.QuotesTotal.WithLabelValues(metrics.OutcomeNoPricingRule).Inc()
		e, _ := apperrors.As(err)
		s.writeJSON(w, errorBody{Success: false, Error: msgNoPricingRule, Message: e.Message}, http.StatusNotFound)

	default:
		metrics.QuotesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		message := err.Error()
		if e, ok := apperrors.As(err); ok {
			message = e.Message
		}
		s.logger.Error("pricing request failed",
			zap.String("request_id", requestID(r)),
			zap.Error(err))
		s.writeJSON(w, errorBody{Success: false, Error: msgInternal, Message: message}, http.StatusInternalServerError)
	}
}

// handleOptions handles GET /pricing/options
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.deps.Resolver.Options(r.Context(), s.opts.Pricing.PredefinedPackageTypes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"success":       true,
		"countries":     opts.Countries,
		"package_types": opts.PackageTypes,
	}, http.StatusOK)
}
