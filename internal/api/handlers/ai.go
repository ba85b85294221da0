package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/matiasleandrokruk/groundedgrowth/internal/domain/analysis"
	domainaudit "github.com/matiasleandrokruk/groundedgrowth/internal/domain/audit"
	"github.com/matiasleandrokruk/groundedgrowth/internal/domain/journal"
)

// EntryAnalyzer runs and stores an analysis. *journal.AnalyzeService satisfies it.
type EntryAnalyzer interface {
	AnalyzeEntry(ctx context.Context, in journal.AnalyzeInput) (*journal.Analysis, error)
}

// AnalysisReader reads stored analyses. *journal.Service satisfies it.
type AnalysisReader interface {
	GetAnalysis(ctx context.Context, userID, id string) (*journal.Analysis, error)
	ListAnalyses(ctx context.Context, userID string, in journal.ListInput) ([]*journal.Analysis, int, error)
	ListAnalysesForEntry(ctx context.Context, userID, entryID string) ([]*journal.Analysis, error)
}

// ProviderPreference is the process-wide provider selection. *analysis.Preference satisfies it.
type ProviderPreference interface {
	Get() analysis.Provider
	Set(p analysis.Provider) error
}

// AuditLogger records provider changes. domainaudit.Service satisfies it.
type AuditLogger interface {
	LogWithDetails(
		ctx context.Context,
		actorID string,
		actorType domainaudit.ActorType,
		action string,
		entityType *string,
		entityID *string,
		details *domainaudit.EventDetails,
		outcome domainaudit.Outcome,
	) error
}

type AIHandler struct {
	analyzer EntryAnalyzer
	reader   AnalysisReader
	pref     ProviderPreference
	audit    AuditLogger
	logger   *zap.Logger
}

// NewAIHandler wires the AI endpoints. audit and logger may be nil.
func NewAIHandler(analyzer EntryAnalyzer, reader AnalysisReader, pref ProviderPreference, audit AuditLogger, logger *zap.Logger) *AIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIHandler{analyzer: analyzer, reader: reader, pref: pref, audit: audit, logger: logger}
}

type AnalyzeRequest struct {
	JournalEntryID string   `json:"journalEntryId"`
	GoalIDs        []string `json:"goalIds"`
	AIProvider     string   `json:"aiProvider"`
}

type ProviderRequest struct {
	Provider string `json:"provider"`
}

type ProviderResponse struct {
	Provider analysis.Provider `json:"provider"`
}

const (
	entryForAnalysisNotFound = "Entrada del diario no encontrada"
	analysisNotFound         = "Análisis no encontrado"
	invalidProviderMessage   = "Proveedor de IA inválido. Valores permitidos: gemini, openai, auto"
)

// Analyze handles POST /api/ai/analyze. Backend failures never surface here:
// the stored analysis names the provider that produced it, possibly local.
func (h *AIHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.JournalEntryID) == "" {
		writeError(w, http.StatusBadRequest, "ID de entrada del diario requerido")
		return
	}

	saved, err := h.analyzer.AnalyzeEntry(r.Context(), journal.AnalyzeInput{
		UserID:   userID,
		EntryID:  req.JournalEntryID,
		GoalIDs:  req.GoalIDs,
		Provider: overrideFrom(req.AIProvider),
	})
	if err != nil {
		if !errors.Is(err, journal.ErrEntryNotFound) {
			h.logger.Error("analyze failed", zap.String("entry_id", req.JournalEntryID), zap.Error(err))
		}
		writeDomainError(w, err, journal.ErrEntryNotFound, entryForAnalysisNotFound, "Error al analizar la entrada")
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// overrideFrom lowercases the requested provider. Values the orchestrator
// does not recognise defer to the stored preference.
func overrideFrom(raw string) analysis.Provider {
	return analysis.Provider(strings.ToLower(strings.TrimSpace(raw)))
}

// ListAnalyses handles GET /api/ai/analyses.
func (h *AIHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	p := parsePagination(r)
	items, total, err := h.reader.ListAnalyses(r.Context(), userID, journal.ListInput{Limit: p.Limit, Offset: p.Offset()})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error al obtener análisis")
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(items, p, total))
}

// GetAnalysis handles GET /api/ai/analyses/{id}.
func (h *AIHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	a, err := h.reader.GetAnalysis(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, journal.ErrAnalysisNotFound, analysisNotFound, "Error al obtener análisis")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// EntryAnalyses handles GET /api/ai/entry/{journalEntryId}.
func (h *AIHandler) EntryAnalyses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	items, err := h.reader.ListAnalysesForEntry(r.Context(), userID, chi.URLParam(r, "journalEntryId"))
	if err != nil {
		writeDomainError(w, err, journal.ErrEntryNotFound, entryForAnalysisNotFound, "Error al obtener análisis")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": items})
}

// GetProvider handles GET /api/ai/provider.
func (h *AIHandler) GetProvider(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ProviderResponse{Provider: h.pref.Get()})
}

// SetProvider handles POST /api/ai/provider. The preference is process-wide.
func (h *AIHandler) SetProvider(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req ProviderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	previous := h.pref.Get()
	if err := h.pref.Set(analysis.Provider(req.Provider)); err != nil {
		writeError(w, http.StatusBadRequest, invalidProviderMessage)
		return
	}
	current := h.pref.Get()

	h.logger.Info("ai provider changed",
		zap.String("user_id", userID),
		zap.String("from", previous.String()),
		zap.String("to", current.String()),
	)
	if h.audit != nil {
		entityType := "ai_provider"
		_ = h.audit.LogWithDetails(r.Context(), userID, domainaudit.ActorTypeUser, domainaudit.ActionProviderChange,
			&entityType, nil,
			&domainaudit.EventDetails{
				OldValue: previous.String(),
				NewValue: current.String(),
			},
			domainaudit.OutcomeSuccess)
	}

	writeJSON(w, http.StatusOK, ProviderResponse{Provider: current})
}
