package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func newPlaylistsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "playlists",
		Short: "List your remote playlists and their shadow files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := cmd.Context()
			source, err := ctx.ensureSource(cmdCtx)
			if err != nil {
				return err
			}
			lib, closeLib, err := ctx.openLibrary(cmdCtx)
			if err != nil {
				return err
			}
			defer closeLib()

			playlists, err := source.MyPlaylists(cmdCtx)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(playlists))
			for _, pl := range playlists {
				_, statErr := os.Stat(lib.FriendlyPath(pl))
				rows = append(rows, []string{
					pl.Title,
					pl.ID,
					strconv.Itoa(pl.ItemCount),
					yesNo(statErr == nil),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Title", "ID", "Items", "Shadow"}, rows, 2))
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
