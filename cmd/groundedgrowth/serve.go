package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matiasleandrokruk/groundedgrowth/internal/api"
	"github.com/matiasleandrokruk/groundedgrowth/internal/server"
	pkgauth "github.com/matiasleandrokruk/groundedgrowth/pkg/auth"
)

func newServeCmd(opts *options) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if port > 0 {
				cfg.Server.Port = port
			}

			tokens, err := pkgauth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry())
			if err != nil {
				return err
			}

			db, err := openDB(ctx, cfg.Database.Path, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			stack, err := buildAnalysis(ctx, cfg, logger)
			if err != nil {
				return err
			}

			router := api.NewRouter(api.Deps{
				DB:               db,
				Tokens:           tokens,
				Analyzer:         stack.orchestrator,
				Preference:       stack.preference,
				Logger:           logger,
				Gatherer:         stack.registry,
				AnalyzePerMinute: cfg.AI.RateLimitPerMin,
				AnalyzeBurst:     cfg.AI.RateBurst,
			})

			srvCfg := server.DefaultConfig()
			srvCfg.Host = cfg.Server.Host
			srvCfg.Port = cfg.Server.Port
			srv := server.NewServer(router, srvCfg, logger)

			logger.Info("starting groundedgrowth", zap.String("database", cfg.Database.Path))
			return srv.Run(ctx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "override server.port")
	return cmd
}
