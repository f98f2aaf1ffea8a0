package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apperrors "shipquote/internal/errors"
)

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("writing response failed", zap.Error(err))
	}
}

// writeError renders err as {success:false, error} with the status of its type.
// Internal errors are logged here and nowhere else.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperrors.As(err)
	if !ok {
		e = apperrors.Internal("unexpected failure", err)
	}

	status := e.HTTPStatus()
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID(r)),
			zap.Error(err))
		s.writeJSON(w, errorBody{
			Success: false,
			Error:   "Internal server error",
			Message: e.Message,
		}, status)
		return
	}

	s.writeJSON(w, errorBody{Success: false, Error: e.Message}, status)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.Wrap(apperrors.TypeInvalidInput, "invalid JSON body", err)
	}
	return nil
}
