package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"shadowlist/internal/library"
)

// playlistAction is one reconciliation step applied to an opened playlist.
type playlistAction func(ctx context.Context, cmd *cobra.Command, entry *library.Entry) error

// runPlaylistAction resolves the target playlists and applies action to each,
// finalizing the full dump and video index afterwards. With all set it
// processes every remote playlist; otherwise one local shadow file is taken
// from args or picked interactively.
func (c *commandContext) runPlaylistAction(cmd *cobra.Command, args []string, all bool, action playlistAction) error {
	return c.withLock(func() error {
		ctx := cmd.Context()
		lib, closeLib, err := c.openLibrary(ctx)
		if err != nil {
			return err
		}
		defer closeLib()

		entries, err := c.resolveEntries(ctx, lib, all, args)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			if err := action(ctx, cmd, entry); err != nil {
				return err
			}
			if err := lib.Finalize(ctx, entry); err != nil {
				return err
			}
		}

		if all {
			logger, _ := c.ensureLogger()
			logger.Info("processed playlists", slog.Int("count", len(entries)))
		}
		return nil
	})
}

func (c *commandContext) resolveEntries(ctx context.Context, lib *library.Library, all bool, args []string) ([]*library.Entry, error) {
	if all {
		return lib.OpenAll(ctx)
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	} else {
		names, err := lib.ShadowFiles()
		if err != nil {
			return nil, err
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("no shadow files yet; run with --all to create them")
		}
		name, err = pickShadowFile(names)
		if err != nil {
			return nil, err
		}
	}

	entry, err := lib.OpenFile(ctx, name)
	if err != nil {
		return nil, err
	}
	return []*library.Entry{entry}, nil
}
