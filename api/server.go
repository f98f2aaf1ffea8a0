// Package api - HTTP surface
// Handlers validate input, call the core services, and serialize results.
// No pricing arithmetic happens here.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"shipquote/core/auth"
	"shipquote/core/orders"
	"shipquote/core/pricing"
	"shipquote/core/stats"
	"shipquote/core/types"
	"shipquote/db/ingestion"
	"shipquote/internal/config"
)

const (
	maxJSONBody   = 1 << 20
	maxImportBody = 5 << 20
)

// ProfileStore is what the account and backoffice handlers need from profiles
type ProfileStore interface {
	GetByUserID(ctx context.Context, userID string) (*types.Profile, error)
	EnsureProfile(ctx context.Context, userID, apiKey string) (*types.Profile, error)
	ListProfiles(ctx context.Context) ([]*types.Profile, error)
	ListWithKeys(ctx context.Context) ([]*types.Profile, error)
	SetAPIKey(ctx context.Context, userID, key string) (*types.Profile, error)
	SetAdmin(ctx context.Context, userID string, admin bool) (*types.Profile, error)
}

// RuleAdmin is what the backoffice needs from the pricing table
type RuleAdmin interface {
	ListRules(ctx context.Context) ([]*types.PricingRule, error)
	UpsertRule(ctx context.Context, rule *types.PricingRule) (*types.PricingRule, error)
	UpdateRule(ctx context.Context, rule *types.PricingRule) (*types.PricingRule, error)
	DeleteRule(ctx context.Context, id string) (bool, error)
}

// Pinger reports database reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the services the server routes to
type Dependencies struct {
	Resolver *pricing.Resolver
	Keys     *auth.KeyValidator
	Sessions *auth.SessionVerifier
	Profiles ProfileStore
	Rules    RuleAdmin
	Orders   *orders.Service
	Stats    *stats.Service
	Importer *ingestion.Pipeline

	// DB is optional; when set /health pings it
	DB Pinger
}

// Options tune the server
type Options struct {
	Version        string
	Pricing        config.PricingConfig
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// Server is the API server
type Server struct {
	deps    Dependencies
	opts    Options
	router  chi.Router
	logger  *zap.Logger
	version string
	now     func() time.Time
}

// NewServer creates a server and registers its routes
func NewServer(deps Dependencies, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	s := &Server{
		deps:    deps,
		opts:    opts,
		router:  chi.NewRouter(),
		logger:  logger.Named("api"),
		version: opts.Version,
		now:     time.Now,
	}
	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:     []string{"authorization", "x-client-info", "apikey", "content-type"},
		AllowCredentials:   false,
		OptionsPassthrough: true,
		MaxAge:             300,
	}))
	r.Use(preflight)
	r.Use(metricsMiddleware)

	// Public API
	r.Get("/pricing", s.handlePricing)
	r.Get("/pricing-api", s.handlePricing)
	r.Get("/pricing/options", s.handleOptions)

	// Operational
	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Session-authenticated
	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)

		r.With(s.requireAdmin).Get("/admin-stats", s.handleAdminStats)

		r.Route("/me", func(r chi.Router) {
			r.Get("/", s.handleGetMe)
			r.Post("/api-key", s.handleRegenerateKey)
			r.Get("/orders", s.handleListMyOrders)
			r.Post("/orders", s.handleCreateOrder)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAdmin)

			r.Get("/users", s.handleListUsers)
			r.Put("/users/{userID}/admin", s.handleSetAdmin)
			r.Get("/api-keys", s.handleListAPIKeys)

			r.Get("/orders", s.handleListOrders)
			r.Put("/orders/{orderID}/status", s.handleUpdateOrderStatus)

			r.Route("/pricing", func(r chi.Router) {
				r.Get("/", s.handleListRules)
				r.Post("/", s.handleCreateRule)
				r.Get("/export", s.handleExportRules)
				r.Post("/import", s.handleImportRules)
				r.Put("/{ruleID}", s.handleUpdateRule)
				r.Delete("/{ruleID}", s.handleDeleteRule)
			})
		})
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "healthy", http.StatusOK
	if s.deps.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.DB.Ping(ctx); err != nil {
			s.logger.Warn("health check: database unreachable", zap.Error(err))
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}

	s.writeJSON(w, map[string]interface{}{
		"status":  status,
		"version": s.version,
		"time":    formatTime(s.now()),
	}, code)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version": s.version,
		"service": "shipquote",
	}, http.StatusOK)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
