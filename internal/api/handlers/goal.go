package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matiasleandrokruk/groundedgrowth/internal/domain/goal"
)

// GoalService is the subset of goal.Service the handlers use.
type GoalService interface {
	Create(ctx context.Context, userID string, in goal.CreateInput) (*goal.Goal, error)
	Get(ctx context.Context, userID, id string) (*goal.Goal, error)
	List(ctx context.Context, userID string, in goal.ListInput) ([]*goal.Goal, int, error)
	Update(ctx context.Context, userID, id string, in goal.UpdateInput) (*goal.Goal, error)
	Delete(ctx context.Context, userID, id string) error
}

type GoalHandler struct {
	goals GoalService
}

func NewGoalHandler(goals GoalService) *GoalHandler {
	return &GoalHandler{goals: goals}
}

type CreateGoalRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// UpdateGoalRequest changes only the fields present in the body.
type UpdateGoalRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

const goalNotFound = "Meta no encontrada"

// ListGoals handles GET /api/goals.
func (h *GoalHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	p := parsePagination(r)
	items, total, err := h.goals.List(r.Context(), userID, goal.ListInput{Limit: p.Limit, Offset: p.Offset()})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error al obtener metas")
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(items, p, total))
}

// CreateGoal handles POST /api/goals.
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req CreateGoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	g, err := h.goals.Create(r.Context(), userID, goal.CreateInput{Title: req.Title, Description: req.Description})
	if err != nil {
		writeDomainError(w, err, nil, "", "Error al crear meta")
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

// GetGoal handles GET /api/goals/{id}.
func (h *GoalHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	g, err := h.goals.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, goal.ErrNotFound, goalNotFound, "Error al obtener meta")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// UpdateGoal handles PUT /api/goals/{id}.
func (h *GoalHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req UpdateGoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	g, err := h.goals.Update(r.Context(), userID, chi.URLParam(r, "id"), goal.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeDomainError(w, err, goal.ErrNotFound, goalNotFound, "Error al actualizar meta")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// DeleteGoal handles DELETE /api/goals/{id}.
func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.goals.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err, goal.ErrNotFound, goalNotFound, "Error al eliminar meta")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
