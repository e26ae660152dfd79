package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-polycontent"
)

func NewVersionsCommand(opts *cliOptions) *cobra.Command {
	var entityType string

	cmd := &cobra.Command{
		Use:   "versions <entity-id>",
		Short: "List an entity's version ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			module, err := opts.openModule(ctx)
			if err != nil {
				return err
			}
			defer module.Close(ctx)

			entries, err := module.FindVersionsByEntity(ctx, polycontent.EntityType(entityType), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().StringVar(&entityType, "entity-type", string(polycontent.EntityContent), "entity type: content or variant")
	return cmd
}

// NewResolveCommand prints the layered view of a record.
func NewResolveCommand(opts *cliOptions) *cobra.Command {
	var dimension, locale string
	var detailed bool

	cmd := &cobra.Command{
		Use:   "resolve <content-id>",
		Short: "Resolve a record through its variant and translation overlays",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			module, err := opts.openModule(ctx)
			if err != nil {
				return err
			}
			defer module.Close(ctx)

			if detailed {
				res, err := module.ResolveDetailed(ctx, polycontent.ResolveRequest{
					ContentID: args[0],
					Dimension: dimension,
					Locale:    locale,
				})
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), res)
			}
			data, err := module.Resolve(ctx, args[0], dimension, locale)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().StringVar(&dimension, "dimension", "", "variant dimension")
	cmd.Flags().StringVar(&locale, "locale", "", "translation locale")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include overlays and per key provenance")
	return cmd
}
