// Package mcp exposes the analysis orchestrator as MCP tools over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/matiasleandrokruk/groundedgrowth/internal/domain/analysis"
)

// Analyzer runs one analysis. *analysis.Orchestrator satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) analysis.Result
}

// Preference is the process-wide provider selection.
type Preference interface {
	Get() analysis.Provider
	Set(p analysis.Provider) error
}

// Config configures the MCP server.
type Config struct {
	Name    string // default "groundedgrowth"
	Version string
	Logger  *zap.Logger
}

// Server wraps the SDK server and its tools.
type Server struct {
	mcp      *mcp.Server
	analyzer Analyzer
	pref     Preference
	logger   *zap.Logger
}

// NewServer registers the analysis tools.
func NewServer(cfg Config, analyzer Analyzer, pref Preference) (*Server, error) {
	if analyzer == nil {
		return nil, errors.New("analyzer is required")
	}
	if pref == nil {
		return nil, errors.New("preference is required")
	}
	if cfg.Name == "" {
		cfg.Name = "groundedgrowth"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	s := &Server{
		mcp:      mcp.NewServer(&mcp.Implementation{Name: cfg.Name, Version: cfg.Version}, nil),
		analyzer: analyzer,
		pref:     pref,
		logger:   cfg.Logger,
	}
	s.registerTools()
	return s, nil
}

// Run serves on stdio until the client disconnects or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio transport")
	return s.RunTransport(ctx, &mcp.StdioTransport{})
}

// RunTransport serves on an arbitrary transport.
func (s *Server) RunTransport(ctx context.Context, t mcp.Transport) error {
	if err := s.mcp.Run(ctx, t); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}
	return nil
}

type analyzeInput struct {
	EntryText string   `json:"entry_text" jsonschema:"journal entry to analyze"`
	Goals     []string `json:"goals,omitempty" jsonschema:"goal titles that ground the analysis"`
	Provider  string   `json:"provider,omitempty" jsonschema:"auto, openai or gemini; empty uses the stored preference"`
}

type analyzeOutput struct {
	AnalysisContent string `json:"analysis_content" jsonschema:"HTML analysis"`
	ProviderUsed    string `json:"provider_used" jsonschema:"openai, gemini or local"`
}

type providerInput struct {
	Provider string `json:"provider" jsonschema:"auto, openai or gemini"`
}

type providerOutput struct {
	Provider string `json:"provider" jsonschema:"current provider preference"`
}

type emptyInput struct{}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "analyze_journal_entry",
		Description: "Analyze a journal entry against the user's goals. Always returns an analysis; provider_used is local when no backend answered.",
	}, s.analyzeJournalEntry)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "set_ai_provider",
		Description: "Set the process-wide AI provider preference (auto, openai or gemini)",
	}, func(_ context.Context, _ *mcp.CallToolRequest, args providerInput) (*mcp.CallToolResult, providerOutput, error) {
		previous := s.pref.Get()
		if err := s.pref.Set(analysis.Provider(args.Provider)); err != nil {
			return nil, providerOutput{}, err
		}
		current := s.pref.Get()
		s.logger.Info("ai provider changed via mcp",
			zap.String("from", previous.String()),
			zap.String("to", current.String()),
		)
		return nil, providerOutput{Provider: current.String()}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_ai_provider",
		Description: "Return the current AI provider preference",
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, providerOutput, error) {
		return nil, providerOutput{Provider: s.pref.Get().String()}, nil
	})
}

func (s *Server) analyzeJournalEntry(ctx context.Context, _ *mcp.CallToolRequest, args analyzeInput) (*mcp.CallToolResult, analyzeOutput, error) {
	if strings.TrimSpace(args.EntryText) == "" {
		return nil, analyzeOutput{}, errors.New("entry_text is required")
	}

	res := s.analyzer.Analyze(ctx, analysis.Request{
		EntryText:        args.EntryText,
		Goals:            args.Goals,
		ProviderOverride: analysis.Provider(strings.ToLower(strings.TrimSpace(args.Provider))),
	})
	s.logger.Info("mcp analysis completed", zap.String("provider_used", res.ProviderUsed.String()))

	out := analyzeOutput{AnalysisContent: res.Content, ProviderUsed: res.ProviderUsed.String()}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: res.Content}},
	}, out, nil
}
