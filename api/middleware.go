package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"shipquote/core/auth"
	"shipquote/core/types"
	"shipquote/internal/metrics"
)

type ctxKey int

const (
	sessionKey ctxKey = iota
	profileKey
)

// LoggerMiddleware logs HTTP requests
func LoggerMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", requestID(r)),
				zap.String("remote_addr", r.RemoteAddr))
		})
	}
}

// preflight answers every OPTIONS request with an empty 200
func preflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware records request counts and latency by route pattern
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

// authError is the body the session-protected routes answer auth failures with
type authError struct {
	Error string `json:"error"`
}

// requireSession verifies the bearer session token and stores the session in the context
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.ExtractBearer(r.Header.Get("Authorization"))
		if err != nil {
			s.writeJSON(w, authError{Error: "Missing authorization header"}, http.StatusUnauthorized)
			return
		}

		session, err := s.deps.Sessions.Verify(token)
		if err != nil {
			s.logger.Debug("session rejected", zap.Error(err))
			s.writeJSON(w, authError{Error: "Invalid token"}, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin admits only sessions whose profile is flagged admin
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := sessionFrom(r.Context())

		profile, err := s.deps.Profiles.GetByUserID(r.Context(), session.UserID)
		if err != nil {
			s.logger.Error("admin check failed", zap.String("user_id", session.UserID), zap.Error(err))
			s.writeJSON(w, errorBody{Error: "Internal server error", Message: "admin check failed"}, http.StatusInternalServerError)
			return
		}
		if profile == nil || !profile.IsAdmin {
			s.writeJSON(w, authError{Error: "Admin access required"}, http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), profileKey, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(ctx context.Context) *auth.Session {
	s, _ := ctx.Value(sessionKey).(*auth.Session)
	return s
}

func adminFrom(ctx context.Context) *types.Profile {
	p, _ := ctx.Value(profileKey).(*types.Profile)
	return p
}
