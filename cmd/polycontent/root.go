package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-polycontent"
	"github.com/goliatone/go-polycontent/internal/runtimeconfig"
)

// cliOptions holds the persistent flags shared by every subcommand.
type cliOptions struct {
	configFile string
	provider   string
	dialect    string
	dsn        string
	verbose    bool
}

func NewRootCommand() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:   "polycontent",
		Short: "Versioned content with variant and locale overlays",
		Long: `polycontent stores schema validated content records, keeps an append
only version ledger for each record and resolves records through variant
and translation overlays.

Configuration is read from --config (YAML or JSON) and POLYCONTENT_*
environment variables. Storage flags override both.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (optional)")
	flags.StringVar(&opts.provider, "provider", "", "storage provider: memory or bun")
	flags.StringVar(&opts.dialect, "dialect", "", "database dialect: sqlite or postgres")
	flags.StringVar(&opts.dsn, "dsn", "", "database connection string")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	rootCmd.AddCommand(NewMigrateCommand(opts))
	rootCmd.AddCommand(NewDemoCommand(opts))
	rootCmd.AddCommand(NewCreateCommand(opts))
	rootCmd.AddCommand(NewUpdateCommand(opts))
	rootCmd.AddCommand(NewRollbackCommand(opts))
	rootCmd.AddCommand(NewVersionsCommand(opts))
	rootCmd.AddCommand(NewResolveCommand(opts))
	return rootCmd
}

// loadConfig reads the configuration and applies flag overrides. Events are
// delivered synchronously so short lived invocations do not lose them.
func (o *cliOptions) loadConfig() (runtimeconfig.Config, error) {
	cfg, err := runtimeconfig.Load(o.configFile)
	if err != nil {
		return cfg, err
	}
	if o.provider != "" {
		cfg.Storage.Provider = o.provider
	}
	if o.dialect != "" {
		cfg.Storage.Dialect = o.dialect
	}
	if o.dsn != "" {
		cfg.Storage.DSN = o.dsn
	}
	if o.verbose {
		cfg.Features.Logger = true
	}
	cfg.Events.Async = false
	return cfg, cfg.Validate()
}

func (o *cliOptions) openModule(ctx context.Context, extra ...polycontent.Option) (*polycontent.Module, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return polycontent.New(ctx, cfg, extra...)
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func parseData(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}
	data := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("invalid --data json: %w", err)
	}
	return data, nil
}
