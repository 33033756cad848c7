package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matthewbaird/commonapply/internal/store"
)

// AuditInfo holds audit metadata extracted from request headers.
type AuditInfo struct {
	Actor  string
	Source string
}

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("writeJSON encode error", "error", err)
	}
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// storeErrorToHTTP maps store errors to appropriate HTTP responses.
func storeErrorToHTTP(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "VERSION_CONFLICT", err.Error())
	case errors.Is(err, store.ErrExists):
		writeError(w, http.StatusConflict, "ALREADY_EXISTS", err.Error())
	default:
		log.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// parseAuditContext extracts audit metadata from request headers. A missing
// actor is recorded as anonymous.
func parseAuditContext(r *http.Request) AuditInfo {
	info := AuditInfo{
		Actor:  r.Header.Get("X-Actor"),
		Source: r.Header.Get("X-Source"),
	}
	if info.Actor == "" {
		info.Actor = "anonymous"
	}
	if info.Source == "" {
		info.Source = "user"
	}
	return info
}

// parseLimit reads the limit query parameter, clamped to max.
func parseLimit(r *http.Request, def, max int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// expectedVersion reads an If-Match header carrying a form version.
func expectedVersion(r *http.Request) (int, bool, error) {
	raw := r.Header.Get("If-Match")
	if raw == "" {
		return 0, false, nil
	}
	if unq, err := strconv.Unquote(raw); err == nil {
		raw = unq
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}
