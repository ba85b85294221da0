package journal

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/matiasleandrokruk/groundedgrowth/internal/domain/analysis"
	domainaudit "github.com/matiasleandrokruk/groundedgrowth/internal/domain/audit"
)

// Analyzer produces an analysis for an entry; it never fails.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) analysis.Result
}

// GoalSource resolves the goal titles used to ground an analysis.
type GoalSource interface {
	ActiveTitles(ctx context.Context, userID string, ids []string) ([]string, error)
}

type auditLogger interface {
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

type AnalyzeInput struct {
	UserID   string
	EntryID  string
	GoalIDs  []string
	Provider analysis.Provider // zero value defers to the stored preference
}

// AnalyzeService loads an entry and its goals, runs the analysis and stores it.
type AnalyzeService struct {
	entries  *Service
	goals    GoalSource
	analyzer Analyzer
	audit    auditLogger
	logger   *zap.Logger
}

// NewAnalyzeService wires the use case. audit and logger may be nil.
func NewAnalyzeService(entries *Service, goals GoalSource, analyzer Analyzer, audit auditLogger, logger *zap.Logger) *AnalyzeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyzeService{entries: entries, goals: goals, analyzer: analyzer, audit: audit, logger: logger}
}

// AnalyzeEntry returns ErrEntryNotFound when the entry is not the user's.
// Backend trouble never fails the call; it shows up as a local provider.
func (s *AnalyzeService) AnalyzeEntry(ctx context.Context, in AnalyzeInput) (*Analysis, error) {
	entry, err := s.entries.entry(ctx, in.UserID, in.EntryID)
	if err != nil {
		return nil, err
	}

	goals, err := s.goals.ActiveTitles(ctx, in.UserID, in.GoalIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}

	s.logger.Info("analyzing journal entry",
		zap.String("user_id", in.UserID),
		zap.String("entry_id", entry.ID),
		zap.Int("goals", len(goals)),
		zap.String("override", in.Provider.String()),
	)

	res := s.analyzer.Analyze(ctx, analysis.Request{
		EntryText:        entry.Content,
		Goals:            goals,
		ProviderOverride: in.Provider,
	})

	saved, err := s.entries.SaveAnalysis(ctx, in.UserID, entry.ID, res.Content, res.ProviderUsed.String())
	if err != nil {
		s.logAudit(ctx, in, res.ProviderUsed, domainaudit.OutcomeError)
		return nil, err
	}

	s.logger.Info("analysis stored",
		zap.String("analysis_id", saved.ID),
		zap.String("provider_used", saved.AIProvider),
	)
	s.logAudit(ctx, in, res.ProviderUsed, domainaudit.OutcomeSuccess)
	return saved, nil
}

func (s *AnalyzeService) logAudit(ctx context.Context, in AnalyzeInput, used analysis.Provider, outcome domainaudit.Outcome) {
	if s.audit == nil {
		return
	}
	entityType := "journal_entry"
	entityID := in.EntryID
	_ = s.audit.LogWithDetails(ctx, in.UserID, domainaudit.ActorTypeUser, domainaudit.ActionAnalyze,
		&entityType, &entityID,
		&domainaudit.EventDetails{Metadata: map[string]any{
			"provider_used": used.String(),
			"override":      in.Provider.String(),
		}},
		outcome)
}
