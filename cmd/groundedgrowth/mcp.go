package main

import (
	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/groundedgrowth/internal/mcp"
	"github.com/matiasleandrokruk/groundedgrowth/internal/version"
)

func newMCPCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the analysis tools over MCP stdio",
		Long: `Serve analyze_journal_entry, set_ai_provider and get_ai_provider to an
MCP client on stdin/stdout. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			stack, err := buildAnalysis(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			srv, err := mcp.NewServer(mcp.Config{Version: version.Version, Logger: logger.Named("mcp")},
				stack.orchestrator, stack.preference)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}
}
