package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matiasleandrokruk/groundedgrowth/internal/infra/sqlite"
	"github.com/matiasleandrokruk/groundedgrowth/pkg/uuid"
)

// Service provides audit logging capabilities.
// All operations are append-only; no updates or deletes are supported.
type Service struct {
	db  *sql.DB
	now func() time.Time
}

// NewService creates a new audit service
func NewService(db *sql.DB) *Service {
	return &Service{db: db, now: time.Now}
}

const eventColumns = `id, actor_id, actor_type, action, entity_type, entity_id, details, outcome, ip_address, user_agent, created_at`

// Log writes a new audit event. ID and CreatedAt are filled when empty.
func (s *Service) Log(ctx context.Context, event *Event) error {
	if event.ID == "" {
		event.ID = uuid.NewV7().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	details := normalizeJSON(event.Details, []byte("{}"))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_event (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, event.ID, event.ActorID, string(event.ActorType), event.Action,
		event.EntityType, event.EntityID, string(details), string(event.Outcome),
		event.IPAddress, event.UserAgent, sqlite.FormatTime(event.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// LogWithDetails is a helper for common case with structured details
func (s *Service) LogWithDetails(
	ctx context.Context,
	actorID string,
	actorType ActorType,
	action string,
	entityType *string,
	entityID *string,
	details *EventDetails,
	outcome Outcome,
) error {
	var detailsJSON json.RawMessage
	if details != nil {
		var err error
		detailsJSON, err = json.Marshal(details)
		if err != nil {
			return err
		}
	}

	return s.Log(ctx, &Event{
		ActorID:    actorID,
		ActorType:  actorType,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    detailsJSON,
		Outcome:    outcome,
	})
}

// GetByID retrieves a single audit event by ID
func (s *Service) GetByID(ctx context.Context, id string) (*Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM audit_event WHERE id = ?`, id)
	return scanEvent(row)
}

// ListByActor returns an actor's events newest first, with the total count.
func (s *Service) ListByActor(ctx context.Context, actorID string, limit, offset int) ([]*Event, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_event WHERE actor_id = ?`, actorID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit events: %w", err)
	}

	events, err := s.query(ctx, `
		SELECT `+eventColumns+` FROM audit_event
		WHERE actor_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, actorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ListByAction returns the most recent events for an action.
func (s *Service) ListByAction(ctx context.Context, action string, limit int) ([]*Event, error) {
	return s.query(ctx, `
		SELECT `+eventColumns+` FROM audit_event
		WHERE action = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, action, limit)
}

// ListByEntity retrieves audit events for a specific entity
func (s *Service) ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*Event, error) {
	return s.query(ctx, `
		SELECT `+eventColumns+` FROM audit_event
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, entityType, entityID, limit)
}

func (s *Service) query(ctx context.Context, q string, args ...any) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*Event, error) {
	var (
		e                               Event
		actorType, outcome, details, at string
		entityType, entityID, ip, ua    sql.NullString
	)
	if err := row.Scan(&e.ID, &e.ActorID, &actorType, &e.Action, &entityType, &entityID,
		&details, &outcome, &ip, &ua, &at); err != nil {
		return nil, err
	}
	e.ActorType = ActorType(actorType)
	e.Outcome = Outcome(outcome)
	e.Details = json.RawMessage(details)
	e.EntityType = nullablePtr(entityType)
	e.EntityID = nullablePtr(entityID)
	e.IPAddress = nullablePtr(ip)
	e.UserAgent = nullablePtr(ua)

	created, err := sqlite.ParseTime(at)
	if err != nil {
		return nil, fmt.Errorf("parse audit created_at: %w", err)
	}
	e.CreatedAt = created
	return &e, nil
}

func nullablePtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func normalizeJSON(raw json.RawMessage, fallback []byte) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(fallback)
	}
	return raw
}
