package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"shipquote/core/types"
	"shipquote/db/ingestion"
	apperrors "shipquote/internal/errors"
)

// typed passes application errors through and wraps anything else as Internal
func typed(message string, err error) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.Internal(message, err)
}

// handleListUsers handles GET /admin/users
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.deps.Profiles.ListProfiles(r.Context())
	if err != nil {
		s.writeError(w, r, typed("listing users failed", err))
		return
	}

	out := make([]ProfileJSON, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, newProfileJSON(p, false))
	}
	s.writeJSON(w, map[string]interface{}{"success": true, "users": out}, http.StatusOK)
}

// handleSetAdmin handles PUT /admin/users/{userID}/admin
func (s *Server) handleSetAdmin(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var body struct {
		IsAdmin *bool `json:"is_admin"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.IsAdmin == nil {
		s.writeError(w, r, apperrors.InvalidInput("is_admin is required"))
		return
	}

	// requireAdmin guarantees the caller's profile
	caller := adminFrom(r.Context())
	if caller.UserID == userID && !*body.IsAdmin {
		s.writeError(w, r, apperrors.Forbidden("admins cannot revoke their own access"))
		return
	}

	profile, err := s.deps.Profiles.SetAdmin(r.Context(), userID, *body.IsAdmin)
	if err != nil {
		s.writeError(w, r, typed("updating user failed", err))
		return
	}
	if profile == nil {
		s.writeError(w, r, apperrors.NotFound("user", userID))
		return
	}

	s.logger.Info("admin flag changed",
		zap.String("user_id", userID),
		zap.Bool("is_admin", profile.IsAdmin),
		zap.String("by", caller.UserID))
	s.writeJSON(w, map[string]interface{}{"success": true, "user": newProfileJSON(profile, false)}, http.StatusOK)
}

// handleListAPIKeys handles GET /admin/api-keys
func (s *Server) handleListAPIKeys(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.deps.Profiles.ListWithKeys(r.Context())
	if err != nil {
		s.writeError(w, r, typed("listing api keys failed", err))
		return
	}

	out := make([]ProfileJSON, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, newProfileJSON(p, true))
	}
	s.writeJSON(w, map[string]interface{}{"success": true, "api_keys": out}, http.StatusOK)
}

// handleListOrders handles GET /admin/orders?status=
func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	status := types.OrderStatus(r.URL.Query().Get("status"))

	list, err := s.deps.Orders.ListAll(r.Context(), status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{"success": true, "orders": newOrderList(list)}, http.StatusOK)
}

// handleUpdateOrderStatus handles PUT /admin/orders/{orderID}/status
func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	order, err := s.deps.Orders.AdvanceStatus(r.Context(), chi.URLParam(r, "orderID"), types.OrderStatus(body.Status))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{"success": true, "order": newOrderJSON(order)}, http.StatusOK)
}

// handleListRules handles GET /admin/pricing
func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.deps.Rules.ListRules(r.Context())
	if err != nil {
		s.writeError(w, r, typed("listing pricing failed", err))
		return
	}

	out := make([]RuleJSON, 0, len(rules))
	for _, rule := range rules {
		out = append(out, newRuleJSON(rule))
	}
	s.writeJSON(w, map[string]interface{}{"success": true, "pricing": out}, http.StatusOK)
}

func (s *Server) decodeRule(w http.ResponseWriter, r *http.Request, id string) (*types.PricingRule, error) {
	var req RuleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return nil, err
	}
	rule, err := types.NewPricingRule(req.input(id))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.TypeInvalidInput, err.Error(), err)
	}
	return rule, nil
}

// handleCreateRule handles POST /admin/pricing. An existing route is overwritten.
func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	rule, err := s.decodeRule(w, r, "")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	saved, err := s.deps.Rules.UpsertRule(r.Context(), rule)
	if err != nil {
		s.writeError(w, r, typed("saving pricing rule failed", err))
		return
	}

	s.logger.Info("pricing rule saved",
		zap.String("rule_id", saved.ID),
		zap.String("route", saved.Route.String()),
		zap.String("package_type", saved.Route.PackageType))
	s.writeJSON(w, map[string]interface{}{"success": true, "rule": newRuleJSON(saved)}, http.StatusCreated)
}

// handleUpdateRule handles PUT /admin/pricing/{ruleID}
func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ruleID")
	rule, err := s.decodeRule(w, r, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	saved, err := s.deps.Rules.UpdateRule(r.Context(), rule)
	if err != nil {
		s.writeError(w, r, typed("updating pricing rule failed", err))
		return
	}
	if saved == nil {
		s.writeError(w, r, apperrors.NotFound("pricing rule", id))
		return
	}

	s.logger.Info("pricing rule updated", zap.String("rule_id", id))
	s.writeJSON(w, map[string]interface{}{"success": true, "rule": newRuleJSON(saved)}, http.StatusOK)
}

// handleDeleteRule handles DELETE /admin/pricing/{ruleID}
func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ruleID")

	deleted, err := s.deps.Rules.DeleteRule(r.Context(), id)
	if err != nil {
		s.writeError(w, r, typed("deleting pricing rule failed", err))
		return
	}
	if !deleted {
		s.writeError(w, r, apperrors.NotFound("pricing rule", id))
		return
	}

	s.logger.Info("pricing rule deleted", zap.String("rule_id", id))
	s.writeJSON(w, map[string]interface{}{"success": true}, http.StatusOK)
}

// handleExportRules handles GET /admin/pricing/export?format=csv|json
func (s *Server) handleExportRules(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		s.writeError(w, r, apperrors.InvalidInput("format must be csv or json"))
		return
	}

	rules, err := s.deps.Rules.ListRules(r.Context())
	if err != nil {
		s.writeError(w, r, typed("listing pricing failed", err))
		return
	}

	stamp := s.now().UTC().Format("20060102-150405")
	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=pricing-%s.json", stamp))
		err = ingestion.WriteJSON(w, ingestion.NewBackup(rules))
	default:
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=pricing-%s.csv", stamp))
		err = ingestion.WriteCSV(w, rules)
	}
	if err != nil {
		// headers are gone; all we can do is log
		s.logger.Warn("pricing export interrupted", zap.Error(err))
	}
}

// handleImportRules handles POST /admin/pricing/import?dry_run=true.
// The body is the CSV itself.
func (s *Server) handleImportRules(w http.ResponseWriter, r *http.Request) {
	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))
	body := http.MaxBytesReader(w, r.Body, maxImportBody)

	result, err := s.deps.Importer.Execute(r.Context(), body, ingestion.Config{
		BackupDir: s.opts.Pricing.BackupDir,
		DryRun:    dryRun,
	})
	if err != nil {
		e, ok := apperrors.As(err)
		if !ok {
			e = apperrors.Internal("pricing import failed", err)
		}
		if e.HTTPStatus() >= http.StatusInternalServerError {
			s.logger.Error("pricing import failed", zap.String("request_id", requestID(r)), zap.Error(err))
		}
		s.writeJSON(w, map[string]interface{}{
			"success": false,
			"error":   e.Message,
			"result":  result,
		}, e.HTTPStatus())
		return
	}

	s.logger.Info("pricing import finished",
		zap.String("by", sessionFrom(r.Context()).UserID),
		zap.String("summary", result.Summary()))
	s.writeJSON(w, map[string]interface{}{
		"success": true,
		"message": result.Summary(),
		"result":  result,
	}, http.StatusOK)
}
