package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matiasleandrokruk/groundedgrowth/internal/domain/journal"
)

// JournalService is the subset of journal.Service the handlers use.
type JournalService interface {
	CreateEntry(ctx context.Context, userID, content string) (*journal.Entry, error)
	GetEntry(ctx context.Context, userID, id string) (*journal.Entry, error)
	ListEntries(ctx context.Context, userID string, in journal.ListInput) ([]*journal.Entry, int, error)
	UpdateEntry(ctx context.Context, userID, id, content string) (*journal.Entry, error)
	DeleteEntry(ctx context.Context, userID, id string) error
}

type JournalHandler struct {
	entries JournalService
}

func NewJournalHandler(entries JournalService) *JournalHandler {
	return &JournalHandler{entries: entries}
}

type EntryRequest struct {
	Content string `json:"content"`
}

const entryNotFound = "Entrada no encontrada"

// ListEntries handles GET /api/journal. Each entry carries its latest analysis.
func (h *JournalHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	p := parsePagination(r)
	items, total, err := h.entries.ListEntries(r.Context(), userID, journal.ListInput{Limit: p.Limit, Offset: p.Offset()})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error al obtener entradas")
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(items, p, total))
}

// CreateEntry handles POST /api/journal.
func (h *JournalHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req EntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	e, err := h.entries.CreateEntry(r.Context(), userID, req.Content)
	if err != nil {
		writeDomainError(w, err, nil, "", "Error al crear entrada")
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// GetEntry handles GET /api/journal/{id}. The entry carries every analysis.
func (h *JournalHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	e, err := h.entries.GetEntry(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, journal.ErrEntryNotFound, entryNotFound, "Error al obtener entrada")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// UpdateEntry handles PUT /api/journal/{id}.
func (h *JournalHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req EntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	e, err := h.entries.UpdateEntry(r.Context(), userID, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeDomainError(w, err, journal.ErrEntryNotFound, entryNotFound, "Error al actualizar entrada")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// DeleteEntry handles DELETE /api/journal/{id}.
func (h *JournalHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.entries.DeleteEntry(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err, journal.ErrEntryNotFound, entryNotFound, "Error al eliminar entrada")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
