package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/groundedgrowth/internal/infra/sqlite"
)

func newMigrateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}
			db, err := openDB(cmd.Context(), cfg.Database.Path, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			v, err := sqlite.MigrationVersion(cmd.Context(), db)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", v)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}
			db, err := sqlite.NewDB(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			migrations, err := sqlite.Status(cmd.Context(), db)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED") //nolint:errcheck
			for _, m := range migrations {
				fmt.Fprintf(w, "%d\t%s\t%t\n", m.Version, m.Name, m.Applied) //nolint:errcheck
			}
			return w.Flush()
		},
	})
	return cmd
}
