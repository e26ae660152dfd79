package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-polycontent/internal/runtimeconfig"
	"github.com/goliatone/go-polycontent/internal/storage"
)

// NewMigrateCommand applies the embedded SQL migrations for the configured
// dialect.
func NewMigrateCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Storage.Provider != runtimeconfig.ProviderBun {
				return fmt.Errorf("migrate requires the bun provider, got %q", cfg.Storage.Provider)
			}

			ctx := cmd.Context()
			db, err := storage.Open(ctx, storage.Options{Dialect: cfg.Storage.Dialect, DSN: cfg.Storage.DSN})
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := storage.Migrate(ctx, db, cfg.Storage.Dialect)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "No pending migrations")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(out, "Applied %s\n", name)
			}
			return nil
		},
	}
}
