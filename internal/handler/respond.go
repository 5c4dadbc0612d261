package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"fsanano/catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	msgInvalidData  = "Invalid data"
	msgUserNotFound = "User not found"
	msgItemNotFound = "Item not found"
	msgInternal     = "Internal server error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail maps a service error onto the HTTP status and body the API promises.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var integrityErr *service.DataIntegrityError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, msgInvalidData)
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, msgUserNotFound)
	case errors.Is(err, service.ErrItemNotFound):
		writeError(w, http.StatusNotFound, msgItemNotFound)
	case errors.As(err, &integrityErr):
		h.log.Error("store consistency violation", "error", err, "request_id", middleware.GetReqID(r.Context()))
		writeError(w, http.StatusInternalServerError, integrityErr.Error())
	default:
		h.log.Error("request failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

// pathID parses the {id} route parameter. Ids that are not integers or do not fit
// the 32-bit id columns are treated as absent.
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return int(id), true
}

// parseInt accepts a JSON number or a numeric string within the 32-bit range of
// the id and quantity columns. A missing field yields 0.
func parseInt(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var n int32
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("not a 32-bit integer: %s", raw)
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// parseFloat accepts a JSON number or a numeric string. A missing field yields 0.
func parseFloat(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("not a number: %s", raw)
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0, err
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %s", raw)
	}
	return f, nil
}
