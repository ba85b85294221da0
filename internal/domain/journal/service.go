// Package journal stores journal entries and the analyses generated for them.
package journal

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

var (
	ErrEntryNotFound    = errors.New("journal entry not found")
	ErrAnalysisNotFound = errors.New("analysis not found")
)

const (
	minContentLength = 10
	maxContentLength = 10000
)

// Entry is a journal entry. Analyses is newest first; list views carry at
// most the latest one.
type Entry struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Analyses  []*Analysis `json:"aiAnalyses"`
}

// Analysis is a stored analysis result.
type Analysis struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	JournalEntryID  string    `json:"journalEntryId"`
	AnalysisContent string    `json:"analysisContent"`
	AIProvider      string    `json:"aiProvider"`
	CreatedAt       time.Time `json:"createdAt"`
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

const (
	entryColumns    = `id, user_id, content, created_at, updated_at`
	analysisColumns = `id, user_id, journal_entry_id, analysis_content, ai_provider, created_at`
)

func (s *Service) CreateEntry(ctx context.Context, userID, content string) (*Entry, error) {
	content = strings.TrimSpace(content)
	if err := validateContent(content); err != nil {
		return nil, err
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	e := &Entry{ID: uuid.NewV7().String(), UserID: userID, Content: content, CreatedAt: now, UpdatedAt: now, Analyses: []*Analysis{}}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journal_entry (`+entryColumns+`) VALUES (?, ?, ?, ?, ?)
	`, e.ID, e.UserID, e.Content, sqlite.FormatTime(now), sqlite.FormatTime(now))
	if err != nil {
		return nil, fmt.Errorf("failed to create journal entry: %w", err)
	}
	return e, nil
}

// GetEntry returns the entry with every analysis, newest first.
func (s *Service) GetEntry(ctx context.Context, userID, id string) (*Entry, error) {
	e, err := s.entry(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	e.Analyses, err = s.queryAnalyses(ctx, `
		SELECT `+analysisColumns+` FROM ai_analysis
		WHERE journal_entry_id = ?
		ORDER BY created_at DESC, id DESC
	`, id)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListEntries returns one page of entries, newest first, each with its
// latest analysis.
func (s *Service) ListEntries(ctx context.Context, userID string, in ListInput) ([]*Entry, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal_entry WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count journal entries: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entryColumns+` FROM journal_entry
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, userID, in.Limit, in.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list journal entries: %w", err)
	}
	entries := []*Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// One connection may be all the pool has; the entry cursor is closed
	// before the per-entry lookups.
	for _, e := range entries {
		e.Analyses, err = s.queryAnalyses(ctx, `
			SELECT `+analysisColumns+` FROM ai_analysis
			WHERE journal_entry_id = ?
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		`, e.ID)
		if err != nil {
			return nil, 0, err
		}
	}
	return entries, total, nil
}

func (s *Service) UpdateEntry(ctx context.Context, userID, id, content string) (*Entry, error) {
	content = strings.TrimSpace(content)
	if err := validateContent(content); err != nil {
		return nil, err
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	res, err := s.db.ExecContext(ctx, `
		UPDATE journal_entry SET content = ?, updated_at = ? WHERE id = ? AND user_id = ?
	`, content, sqlite.FormatTime(now), id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update journal entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrEntryNotFound
	}
	return s.GetEntry(ctx, userID, id)
}

// DeleteEntry removes the entry; its analyses go with it.
func (s *Service) DeleteEntry(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM journal_entry WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// SaveAnalysis persists an analysis for an entry the user owns.
func (s *Service) SaveAnalysis(ctx context.Context, userID, entryID, content, provider string) (*Analysis, error) {
	a := &Analysis{
		ID:              uuid.NewV7().String(),
		UserID:          userID,
		JournalEntryID:  entryID,
		AnalysisContent: content,
		AIProvider:      provider,
		CreatedAt:       s.now().UTC().Truncate(time.Millisecond),
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO ai_analysis (`+analysisColumns+`)
		SELECT ?, ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM journal_entry WHERE id = ? AND user_id = ?)
	`, a.ID, a.UserID, a.JournalEntryID, a.AnalysisContent, a.AIProvider, sqlite.FormatTime(a.CreatedAt), entryID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrEntryNotFound
	}
	return a, nil
}

func (s *Service) GetAnalysis(ctx context.Context, userID, id string) (*Analysis, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+analysisColumns+` FROM ai_analysis WHERE id = ? AND user_id = ?`, id, userID)
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAnalysisNotFound
	}
	return a, err
}

// ListAnalyses returns the user's analyses newest first, with the total count.
func (s *Service) ListAnalyses(ctx context.Context, userID string, in ListInput) ([]*Analysis, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ai_analysis WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count analyses: %w", err)
	}
	items, err := s.queryAnalyses(ctx, `
		SELECT `+analysisColumns+` FROM ai_analysis
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, userID, in.Limit, in.Offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListAnalysesForEntry returns every analysis of an entry the user owns.
func (s *Service) ListAnalysesForEntry(ctx context.Context, userID, entryID string) ([]*Analysis, error) {
	if _, err := s.entry(ctx, userID, entryID); err != nil {
		return nil, err
	}
	return s.queryAnalyses(ctx, `
		SELECT `+analysisColumns+` FROM ai_analysis
		WHERE journal_entry_id = ?
		ORDER BY created_at DESC, id DESC
	`, entryID)
}

func (s *Service) entry(ctx context.Context, userID, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM journal_entry WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	return e, err
}

func (s *Service) queryAnalyses(ctx context.Context, q string, args ...any) ([]*Analysis, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	items := []*Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var e Entry
	var createdAt, updatedAt string
	if err := row.Scan(&e.ID, &e.UserID, &e.Content, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if e.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse entry created_at: %w", err)
	}
	if e.UpdatedAt, err = sqlite.ParseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse entry updated_at: %w", err)
	}
	e.Analyses = []*Analysis{}
	return &e, nil
}

func scanAnalysis(row scanner) (*Analysis, error) {
	var a Analysis
	var createdAt string
	if err := row.Scan(&a.ID, &a.UserID, &a.JournalEntryID, &a.AnalysisContent, &a.AIProvider, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if a.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse analysis created_at: %w", err)
	}
	return &a, nil
}

func validateContent(content string) error {
	n := len([]rune(content))
	if n < minContentLength {
		return validation.New("La entrada debe tener al menos 10 caracteres")
	}
	if n > maxContentLength {
		return validation.New("La entrada no puede exceder 10,000 caracteres")
	}
	return nil
}
