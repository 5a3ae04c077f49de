package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"shadowlist/internal/library"
	"shadowlist/internal/reconcile"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Report drift between shadow files and their remote playlists",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runPlaylistAction(cmd, args, all, analyzePlaylist)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Analyze every remote playlist")
	return cmd
}

func analyzePlaylist(ctx context.Context, cmd *cobra.Command, entry *library.Entry) error {
	r := entry.Reconciler
	out := cmd.OutOrStdout()
	title := entry.Shadow().Title

	extra, err := r.MissingFromRemote(ctx)
	if err != nil {
		return err
	}
	missing, err := r.MissingFromShadow(ctx)
	if err != nil {
		return err
	}

	var rows [][]string
	for _, it := range extra {
		rows = append(rows, []string{"local extra", it.Title, orDash(it.Channel), it.VideoID})
	}
	for _, it := range missing {
		rows = append(rows, []string{"missing locally", it.Title, orDash(it.Channel), it.VideoID})
	}

	ordered := true
	misplaced, err := r.OutOfOrder(ctx)
	switch {
	case errors.Is(err, reconcile.ErrInconsistent):
		ordered = false
	case err != nil:
		return err
	default:
		for _, it := range misplaced {
			rows = append(rows, []string{"out of order", it.Title, orDash(it.Channel), it.VideoID})
		}
	}

	if entry.Rebuilt {
		fmt.Fprintf(out, "%s: shadow was rebuilt from remote\n", title)
	}
	if len(rows) == 0 {
		fmt.Fprintf(out, "%s: in sync\n", title)
		return nil
	}

	fmt.Fprintln(out, title)
	fmt.Fprintln(out, renderTable([]string{"Status", "Title", "Channel", "Video"}, rows))
	if !ordered {
		fmt.Fprintln(out, "Item sets diverge; order was not checked. Run ingest or reset first.")
	}
	return nil
}

func orDash(channel *string) string {
	if channel == nil {
		return "-"
	}
	return *channel
}
