package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/campushare/campushare/internal/lifecycle"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps a lifecycle rejection to its HTTP status, preserving the
// rule message so callers can tell which precondition failed. Anything
// without a kind is an internal error and is logged, not leaked.
func writeError(w http.ResponseWriter, err error) {
	switch lifecycle.KindOf(err) {
	case lifecycle.KindNotFound:
		jsonError(w, http.StatusNotFound, err.Error())
	case lifecycle.KindForbidden:
		jsonError(w, http.StatusForbidden, err.Error())
	case lifecycle.KindConflict:
		jsonError(w, http.StatusConflict, err.Error())
	case lifecycle.KindInvalidState, lifecycle.KindInvalidInput:
		jsonError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("internal error", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
