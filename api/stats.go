package api

import (
	"net/http"

	"go.uber.org/zap"
)

// handleAdminStats handles GET /admin-stats
func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	summary, at, err := s.deps.Stats.Collect(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	session := sessionFrom(r.Context())
	s.logger.Info("admin stats requested", zap.String("user_id", session.UserID), zap.String("email", session.Email))
	s.writeJSON(w, newStatsResponse(summary, at), http.StatusOK)
}
