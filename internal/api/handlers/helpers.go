package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/matiasleandrokruk/groundedgrowth/internal/api/ctxkeys"
	"github.com/matiasleandrokruk/groundedgrowth/internal/domain/validation"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	maxBodyBytes     = 1 << 20
)

var errMissingUser = errors.New("user_id not found in context")

// pagination holds the parsed page/limit query values.
type pagination struct {
	Page  int
	Limit int
}

func (p pagination) Offset() int { return (p.Page - 1) * p.Limit }

// Meta describes one page of a list response.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ListResponse is the body of every paginated endpoint.
type ListResponse struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// parsePagination reads ?page and ?limit. Invalid values fall back to the
// defaults; limit is capped at maxPageLimit.
func parsePagination(r *http.Request) pagination {
	p := pagination{Page: 1, Limit: defaultPageLimit}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		p.Limit = min(v, maxPageLimit)
	}
	return p
}

func newListResponse(data any, p pagination, total int) ListResponse {
	pages := (total + p.Limit - 1) / p.Limit
	return ListResponse{Data: data, Meta: Meta{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}}
}

func getUserID(r *http.Request) (string, error) {
	id, ok := ctxkeys.String(r.Context(), ctxkeys.UserID)
	if !ok {
		return "", errMissingUser
	}
	return id, nil
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		http.Error(w, `{"error":"failed to encode error response"}`, http.StatusInternalServerError)
	}
}

// writeDomainError maps validation errors to 400 and notFound to 404; the
// rest become a 500 carrying fallback.
func writeDomainError(w http.ResponseWriter, err error, notFound error, notFoundMsg, fallback string) {
	if v, ok := validation.As(err); ok {
		writeError(w, http.StatusBadRequest, v.Message)
		return
	}
	if notFound != nil && errors.Is(err, notFound) {
		writeError(w, http.StatusNotFound, notFoundMsg)
		return
	}
	writeError(w, http.StatusInternalServerError, fallback)
}

// requireUser writes a 401 when the auth middleware did not run.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := getUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Usuario no autenticado")
		return "", false
	}
	return userID, true
}
