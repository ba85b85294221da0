// Package goal manages a user's personal goals.
package goal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matiasleandrokruk/groundedgrowth/internal/domain/validation"
	"github.com/matiasleandrokruk/groundedgrowth/internal/infra/sqlite"
	"github.com/matiasleandrokruk/groundedgrowth/pkg/uuid"
)

// ErrNotFound is returned when the goal does not exist or belongs to another user.
var ErrNotFound = errors.New("goal not found")

const (
	minTitleLength       = 2
	maxTitleLength       = 200
	maxDescriptionLength = 1000

	// DefaultAnalysisGoals bounds the goals sent with an analysis when the
	// caller picks none.
	DefaultAnalysisGoals = 5
)

type Goal struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateInput struct {
	Title       string
	Description *string
}

// UpdateInput changes only the non-nil fields.
type UpdateInput struct {
	Title       *string
	Description *string
	IsActive    *bool
}

type ListInput struct {
	Limit  int
	Offset int
}

type Service struct {
	db  *sql.DB
	now func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, now: time.Now}
}

const goalColumns = `id, user_id, title, description, is_active, created_at, updated_at`

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*Goal, error) {
	title := strings.TrimSpace(in.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	desc := trimOptional(in.Description)
	if err := validateDescription(desc); err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	g := &Goal{
		ID:          uuid.NewV7().String(),
		UserID:      userID,
		Title:       title,
		Description: desc,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goal (`+goalColumns+`)
		VALUES (?, ?, ?, ?, 1, ?, ?)
	`, g.ID, g.UserID, g.Title, g.Description, sqlite.FormatTime(now), sqlite.FormatTime(now))
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	return g, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*Goal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goal WHERE id = ? AND user_id = ?`, id, userID)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return g, err
}

// List returns the user's goals newest first, with the total count.
func (s *Service) List(ctx context.Context, userID string, in ListInput) ([]*Goal, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM goal WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count goals: %w", err)
	}
	goals, err := s.query(ctx, `
		SELECT `+goalColumns+` FROM goal
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, userID, in.Limit, in.Offset)
	if err != nil {
		return nil, 0, err
	}
	return goals, total, nil
}

// ActiveTitles returns the titles used to ground an analysis. With ids, only
// the user's active goals among them are returned; without, the first
// DefaultAnalysisGoals active goals.
func (s *Service) ActiveTitles(ctx context.Context, userID string, ids []string) ([]string, error) {
	var (
		goals []*Goal
		err   error
	)
	if len(ids) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
		args := make([]any, 0, len(ids)+1)
		args = append(args, userID)
		for _, id := range ids {
			args = append(args, id)
		}
		goals, err = s.query(ctx, `
			SELECT `+goalColumns+` FROM goal
			WHERE user_id = ? AND is_active = 1 AND id IN (`+placeholders+`)
			ORDER BY created_at, id
		`, args...)
	} else {
		goals, err = s.query(ctx, `
			SELECT `+goalColumns+` FROM goal
			WHERE user_id = ? AND is_active = 1
			ORDER BY created_at, id
			LIMIT ?
		`, userID, DefaultAnalysisGoals)
	}
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(goals))
	for _, g := range goals {
		titles = append(titles, g.Title)
	}
	return titles, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (*Goal, error) {
	g, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		g.Title = title
	}
	if in.Description != nil {
		desc := trimOptional(in.Description)
		if err := validateDescription(desc); err != nil {
			return nil, err
		}
		g.Description = desc
	}
	if in.IsActive != nil {
		g.IsActive = *in.IsActive
	}
	g.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)

	_, err = s.db.ExecContext(ctx, `
		UPDATE goal SET title = ?, description = ?, is_active = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, g.Title, g.Description, boolToInt(g.IsActive), sqlite.FormatTime(g.UpdatedAt), id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}
	return g, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM goal WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) query(ctx context.Context, q string, args ...any) ([]*Goal, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	goals := []*Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGoal(row scanner) (*Goal, error) {
	var (
		g                    Goal
		desc                 sql.NullString
		active               int
		createdAt, updatedAt string
	)
	if err := row.Scan(&g.ID, &g.UserID, &g.Title, &desc, &active, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		g.Description = &desc.String
	}
	g.IsActive = active == 1

	var err error
	if g.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse goal created_at: %w", err)
	}
	if g.UpdatedAt, err = sqlite.ParseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse goal updated_at: %w", err)
	}
	return &g, nil
}

func validateTitle(title string) error {
	n := len([]rune(title))
	if n < minTitleLength {
		return validation.New("El título debe tener al menos 2 caracteres")
	}
	if n > maxTitleLength {
		return validation.New("El título no puede exceder 200 caracteres")
	}
	return nil
}

func validateDescription(desc *string) error {
	if desc != nil && len([]rune(*desc)) > maxDescriptionLength {
		return validation.New("La descripción no puede exceder 1000 caracteres")
	}
	return nil
}

// trimOptional trims v; blank strings become nil.
func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
