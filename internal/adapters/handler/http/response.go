package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vncsmyrnk/rollcall/internal/core/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Warn("failed to encode response")
	}
}

// writeError maps domain error classes to status codes. Unclassified errors
// are logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrBadRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrTransient):
		logger.WithError(err).WithField("path", r.URL.Path).Warn("store unavailable")
		http.Error(w, "service temporarily unavailable, retry later", http.StatusServiceUnavailable)
	default:
		logger.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
