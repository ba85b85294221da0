package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/matiasleandrokruk/groundedgrowth/internal/api/ctxkeys"
	domainaudit "github.com/matiasleandrokruk/groundedgrowth/internal/domain/audit"
)

// AuditLogger is the minimal contract used by Audit.
// domainaudit.Service satisfies this interface.
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

// Audit logs protected HTTP requests into audit_event.
// Expected order in router: Auth -> Audit -> handlers.
func Audit(logger AuditLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logger == nil {
				next.ServeHTTP(w, r)
				return
			}

			userID, ok := ctxkeys.String(r.Context(), ctxkeys.UserID)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(recorder, r)

			action, entityType, entityID := actionFromRequest(r.Method, r.URL.Path)
			_ = logger.LogWithDetails(
				r.Context(),
				userID,
				domainaudit.ActorTypeUser,
				action,
				entityType,
				entityID,
				&domainaudit.EventDetails{Metadata: map[string]any{
					"method":      r.Method,
					"path":        r.URL.Path,
					"status_code": recorder.statusCode,
					"duration_ms": time.Since(start).Milliseconds(),
				}},
				outcomeFromStatus(recorder.statusCode),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.statusCode = statusCode
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func outcomeFromStatus(statusCode int) domainaudit.Outcome {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return domainaudit.OutcomeSuccess
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return domainaudit.OutcomeDenied
	default:
		return domainaudit.OutcomeError
	}
}

// actionFromRequest maps a request under /api to an action name and the
// entity it touches.
//
//	GET  /api/goals            -> list_goal, goal
//	PUT  /api/journal/{id}     -> update_journal_entry, journal_entry, {id}
//	POST /api/ai/analyze       -> create_analysis, analysis
//	GET  /api/ai/entry/{id}    -> list_analysis, journal_entry, {id}
//	POST /api/ai/provider      -> update_ai_provider, ai_provider
func actionFromRequest(method, path string) (string, *string, *string) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 2 || segments[0] != "api" {
		return fallbackAction(method), nil, nil
	}
	rest := segments[1:]

	switch rest[0] {
	case "goals", "journal":
		entity := singularEntity(rest[0])
		if len(rest) == 1 {
			return actionForCollection(method, entity), strPtr(entity), nil
		}
		return actionForEntity(method, entity), strPtr(entity), strPtr(rest[1])
	case "ai":
		return aiAction(method, rest[1:])
	case "auth":
		if len(rest) > 1 {
			return strings.ToLower(method) + "_" + rest[1], strPtr("user"), nil
		}
	}
	return fallbackAction(method), nil, nil
}

func aiAction(method string, rest []string) (string, *string, *string) {
	if len(rest) == 0 {
		return fallbackAction(method), nil, nil
	}
	switch rest[0] {
	case "analyze":
		return "create_analysis", strPtr("analysis"), nil
	case "analyses":
		if len(rest) == 1 {
			return actionForCollection(method, "analysis"), strPtr("analysis"), nil
		}
		return actionForEntity(method, "analysis"), strPtr("analysis"), strPtr(rest[1])
	case "entry":
		if len(rest) > 1 {
			return "list_analysis", strPtr("journal_entry"), strPtr(rest[1])
		}
	case "provider":
		if method == http.MethodGet {
			return "get_ai_provider", strPtr("ai_provider"), nil
		}
		return "update_ai_provider", strPtr("ai_provider"), nil
	}
	return fallbackAction(method), nil, nil
}

func singularEntity(entity string) string {
	switch entity {
	case "goals":
		return "goal"
	case "journal":
		return "journal_entry"
	}
	return entity
}

func fallbackAction(method string) string {
	return strings.ToLower(method) + "_request"
}

func actionForCollection(method, entity string) string {
	switch method {
	case http.MethodPost:
		return "create_" + entity
	case http.MethodGet:
		return "list_" + entity
	}
	return strings.ToLower(method) + "_" + entity
}

func actionForEntity(method, entity string) string {
	switch method {
	case http.MethodGet:
		return "get_" + entity
	case http.MethodPut, http.MethodPatch:
		return "update_" + entity
	case http.MethodDelete:
		return "delete_" + entity
	case http.MethodPost:
		return "create_" + entity
	}
	return strings.ToLower(method) + "_" + entity
}

func strPtr(v string) *string {
	return &v
}
