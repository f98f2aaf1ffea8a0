package api

import (
	"net/http"

	"go.uber.org/zap"

	"shipquote/core/auth"
	"shipquote/core/orders"
	apperrors "shipquote/internal/errors"
)

// handleGetMe handles GET /me. A first visit creates the profile.
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	profile, err := s.deps.Profiles.EnsureProfile(r.Context(), session.UserID, auth.GenerateAPIKey())
	if err != nil {
		s.writeError(w, r, apperrors.Internal("loading profile failed", err))
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"success": true,
		"profile": newProfileJSON(profile, true),
	}, http.StatusOK)
}

// handleRegenerateKey handles POST /me/api-key. The old key stops working at once.
func (s *Server) handleRegenerateKey(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	key := auth.GenerateAPIKey()

	profile, err := s.deps.Profiles.SetAPIKey(r.Context(), session.UserID, key)
	if err != nil {
		s.writeError(w, r, apperrors.Internal("regenerating api key failed", err))
		return
	}
	if profile == nil {
		s.writeError(w, r, apperrors.NotFound("profile", session.UserID))
		return
	}

	s.logger.Info("api key regenerated", zap.String("user_id", session.UserID))
	s.writeJSON(w, map[string]interface{}{
		"success": true,
		"api_key": profile.APIKey,
	}, http.StatusOK)
}

// handleListMyOrders handles GET /me/orders
func (s *Server) handleListMyOrders(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	list, err := s.deps.Orders.ListForUser(r.Context(), session.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"success": true,
		"orders":  newOrderList(list),
	}, http.StatusOK)
}

// handleCreateOrder handles POST /me/orders
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.CreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	order, err := s.deps.Orders.Create(r.Context(), sessionFrom(r.Context()).UserID, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"success": true,
		"order":   newOrderJSON(order),
	}, http.StatusCreated)
}
