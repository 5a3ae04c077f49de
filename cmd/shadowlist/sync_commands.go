package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"shadowlist/internal/library"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Merge new remote items into shadow files",
		Long: "Ingest inserts items that exist remotely but not locally, each directly\n" +
			"after its remote predecessor. Existing local order and annotations are\n" +
			"left untouched.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runPlaylistAction(cmd, args, all, func(ctx context.Context, cmd *cobra.Command, entry *library.Entry) error {
				return entry.Reconciler.IngestNewRemote(ctx)
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Ingest every remote playlist")
	return cmd
}

func newResetCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "reset [file]",
		Short: "Rewrite shadow files to match remote order exactly",
		Long: "Reset discards local ordering and local-only items, rebuilding each item\n" +
			"from its remote fields. Comments survive by fingerprint.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runPlaylistAction(cmd, args, all, func(ctx context.Context, cmd *cobra.Command, entry *library.Entry) error {
				return entry.Reconciler.ResetToRemote(ctx)
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Reset every remote playlist")
	return cmd
}

func newPushCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "push [file]",
		Short: "Push local ordering to the remote playlists",
		Long: "Push moves each out-of-order remote item to the position the shadow file\n" +
			"dictates. Refused while the item sets diverge; a mid-batch failure leaves\n" +
			"the remote partially updated.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runPlaylistAction(cmd, args, all, func(ctx context.Context, cmd *cobra.Command, entry *library.Entry) error {
				if err := entry.Reconciler.PushOrderToRemote(ctx); err != nil {
					return fmt.Errorf("push %s: %w", entry.Shadow().Title, err)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Push every remote playlist")
	return cmd
}
