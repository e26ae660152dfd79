package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-polycontent/internal/commands/contentcmd"
)

// NewCreateCommand creates a record through the create command handler.
func NewCreateCommand(opts *cliOptions) *cobra.Command {
	var contentTypeID, data string

	cmd := &cobra.Command{
		Use:   "create <content-id>",
		Short: "Create a content record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parseData(data)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			module, err := opts.openModule(ctx)
			if err != nil {
				return err
			}
			defer module.Close(ctx)

			err = module.Commands().Create.Execute(ctx, contentcmd.CreateContentCommand{
				ID:            args[0],
				ContentTypeID: contentTypeID,
				Data:          payload,
			})
			if err != nil {
				return err
			}
			record, err := module.FindContent(ctx, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), record)
		},
	}
	cmd.Flags().StringVar(&contentTypeID, "type", "", "content type id")
	cmd.Flags().StringVar(&data, "data", "", "record data as a JSON object")
	return cmd
}

func NewUpdateCommand(opts *cliOptions) *cobra.Command {
	var status, data string

	cmd := &cobra.Command{
		Use:   "update <content-id>",
		Short: "Replace a record's data and append a version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parseData(data)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			module, err := opts.openModule(ctx)
			if err != nil {
				return err
			}
			defer module.Close(ctx)

			err = module.Commands().Update.Execute(ctx, contentcmd.UpdateContentCommand{
				ID:     args[0],
				Status: status,
				Data:   payload,
			})
			if err != nil {
				return err
			}
			record, err := module.FindContent(ctx, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), record)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "draft or published; empty keeps the current status")
	cmd.Flags().StringVar(&data, "data", "", "record data as a JSON object")
	return cmd
}

func NewRollbackCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <content-id> <version-id>",
		Short: "Restore a record to a previous version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			module, err := opts.openModule(ctx)
			if err != nil {
				return err
			}
			defer module.Close(ctx)

			err = module.Commands().Rollback.Execute(ctx, contentcmd.RollbackContentCommand{ID: args[0], VersionID: args[1]})
			if err != nil {
				return err
			}
			record, err := module.FindContent(ctx, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), record)
		},
	}
}
