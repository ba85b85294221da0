package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/matiasleandrokruk/groundedgrowth/internal/domain/analysis"
	"github.com/matiasleandrokruk/groundedgrowth/internal/infra/config"
	"github.com/matiasleandrokruk/groundedgrowth/internal/infra/llm"
	"github.com/matiasleandrokruk/groundedgrowth/internal/infra/logging"
	"github.com/matiasleandrokruk/groundedgrowth/internal/infra/sqlite"
	"github.com/matiasleandrokruk/groundedgrowth/internal/metrics"
)

// loadConfig reads the config and builds the process logger from it.
func loadConfig(opts *options) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// openDB opens the database, creating its directory, and applies pending
// migrations.
func openDB(ctx context.Context, path string, logger *zap.Logger) (*sql.DB, error) {
	if path != sqlite.MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sqlite.NewDB(path)
	if err != nil {
		return nil, err
	}
	applied, err := sqlite.MigrateUp(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if len(applied) > 0 {
		logger.Info("migrations applied", zap.Strings("migrations", applied))
	}
	return db, nil
}

// analysisStack is the orchestrator with its shared preference and metrics.
type analysisStack struct {
	orchestrator *analysis.Orchestrator
	preference   *analysis.Preference
	registry     *prometheus.Registry
}

// buildAnalysis wires vendor clients for every configured key. Backends
// without a key get a nil client and answer with their placeholder.
func buildAnalysis(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*analysisStack, error) {
	router, err := llm.NewRouterFromSettings(ctx, llm.Settings{
		OpenAI: llm.OpenAIConfig{
			APIKey:         cfg.OpenAI.APIKey,
			BaseURL:        cfg.OpenAI.BaseURL,
			Model:          cfg.OpenAI.Model,
			AlternateModel: cfg.OpenAI.AlternateModel,
		},
		Gemini: llm.GeminiConfig{
			APIKey:         cfg.Gemini.APIKey,
			Model:          cfg.Gemini.Model,
			AlternateModel: cfg.Gemini.AlternateModel,
		},
		Timeout: cfg.LLM.Timeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build llm clients: %w", err)
	}

	pref, err := analysis.NewPreference(analysis.Provider(cfg.AI.PreferredProvider))
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	observer := metrics.NewAnalysis(registry)

	adapter := func(p analysis.Provider, primary, alternate string) *analysis.Adapter {
		ac := analysis.AdapterConfig{
			Provider:       p,
			PrimaryModel:   primary,
			AlternateModel: alternate,
			MaxTokens:      cfg.LLM.MaxTokens,
			Temperature:    cfg.LLM.Temperature,
			Logger:         logger.Named(p.String()),
			Observer:       observer,
		}
		client, err := router.Route(p.String())
		switch {
		case err == nil:
			ac.Client = client
		case errors.Is(err, llm.ErrNotConfigured):
			logger.Warn("ai backend not configured, placeholder answers only", zap.String("provider", p.String()))
		}
		return analysis.NewAdapter(ac)
	}

	orch := analysis.NewOrchestrator(
		adapter(analysis.ProviderOpenAI, cfg.OpenAI.Model, cfg.OpenAI.AlternateModel),
		adapter(analysis.ProviderGemini, cfg.Gemini.Model, cfg.Gemini.AlternateModel),
		pref,
		analysis.WithLogger(logger.Named("orchestrator")),
		analysis.WithObserver(observer),
	)
	logger.Info("analysis ready",
		zap.Strings("configured", router.Configured()),
		zap.String("preferred_provider", pref.Get().String()),
	)
	return &analysisStack{orchestrator: orch, preference: pref, registry: registry}, nil
}
