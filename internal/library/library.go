// Package library ties the shadow grammar, the remote source, and the text
// store together into the on-disk playlist library: one friendly shadow file
// per playlist under playlists/, plus an untruncated full dump per playlist
// under playlists/full/.
package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"shadowlist/internal/config"
	"shadowlist/internal/identity"
	"shadowlist/internal/reconcile"
	"shadowlist/internal/remote"
	"shadowlist/internal/shadow"
	"shadowlist/internal/store"
	"shadowlist/internal/videoindex"
)

// fetchConcurrency bounds how many playlists have their item snapshots
// fetched in parallel during a whole-library pass.
const fetchConcurrency = 4

// Entry is one opened playlist: a reconciler wired to its on-disk shadow
// file.
type Entry struct {
	Reconciler *reconcile.Reconciler
	// Path is the friendly shadow file backing this entry.
	Path string
	// Rebuilt is set when the on-disk shadow was discarded (malformed or
	// absent) and rebuilt from the remote snapshot. Annotations do not
	// survive a rebuild.
	Rebuilt bool
}

// Shadow returns the entry's in-memory shadow playlist.
func (e *Entry) Shadow() *shadow.Playlist { return e.Reconciler.Shadow() }

// Options configures a Library. Config and Source are required.
type Options struct {
	Config *config.Config
	Source remote.Source
	Store  store.TextStore
	// Index may be nil when the video index is disabled.
	Index  *videoindex.Index
	Logger *slog.Logger
}

// Library manages the shadow files of one library directory.
type Library struct {
	cfg    *config.Config
	source remote.Source
	store  store.TextStore
	index  *videoindex.Index
	logger *slog.Logger
}

// New constructs a Library.
func New(opts Options) *Library {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	st := opts.Store
	if st == nil {
		st = store.FS{}
	}
	return &Library{
		cfg:    opts.Config,
		source: opts.Source,
		store:  st,
		index:  opts.Index,
		logger: logger,
	}
}

// FriendlyPath returns the shadow file path for a remote playlist. The name
// carries the sanitized title for humans and the playlist fingerprint for
// stability across renames of the title's unsafe characters.
func (l *Library) FriendlyPath(pl *remote.Playlist) string {
	name := fmt.Sprintf("%s - %s.jsonl", sanitizeFilename(pl.Title), identity.Fingerprint(pl.ID))
	return filepath.Join(l.cfg.PlaylistsDir(), name)
}

func (l *Library) fullDumpPath(playlistID string) string {
	return filepath.Join(l.cfg.FullDumpDir(), playlistID+".jsonl")
}

// ShadowFiles lists the friendly shadow file names in the library, sorted.
// Full dumps under playlists/full/ are not included.
func (l *Library) ShadowFiles() ([]string, error) {
	entries, err := os.ReadDir(l.cfg.PlaylistsDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// OpenFile opens a shadow file by name within the playlists directory. A
// malformed file is discarded and rebuilt from the remote source, which
// loses its annotations; the returned entry reports this via Rebuilt.
func (l *Library) OpenFile(ctx context.Context, name string) (*Entry, error) {
	path := filepath.Join(l.cfg.PlaylistsDir(), name)
	text, err := l.store.Read(path)
	if err != nil {
		return nil, err
	}

	sh, perr := shadow.Parse(text)
	if perr == nil {
		return l.newEntry(sh, nil, path, false), nil
	}

	l.logger.Warn("shadow file is malformed, rebuilding from remote",
		slog.String("file", name),
		slog.String("error", perr.Error()))
	id, ok := salvagePlaylistID(text)
	if !ok {
		return nil, fmt.Errorf("rebuild %s: playlist id unrecoverable: %w", name, perr)
	}
	pl, err := l.source.Playlist(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("rebuild %s: %w", name, err)
	}
	return l.rebuild(ctx, pl, path)
}

// Open opens the shadow for a remote playlist, creating the file when it
// does not exist yet and rebuilding it when it is malformed.
func (l *Library) Open(ctx context.Context, pl *remote.Playlist) (*Entry, error) {
	path := l.FriendlyPath(pl)
	text, err := l.store.Read(path)
	switch {
	case errors.Is(err, store.ErrNotFound):
		l.logger.Info("creating shadow file",
			slog.String("playlist", pl.Title),
			slog.String("file", filepath.Base(path)))
		return l.rebuild(ctx, pl, path)
	case err != nil:
		return nil, err
	}

	sh, perr := shadow.Parse(text)
	if perr != nil {
		l.logger.Warn("shadow file is malformed, rebuilding from remote",
			slog.String("file", filepath.Base(path)),
			slog.String("error", perr.Error()))
		return l.rebuild(ctx, pl, path)
	}
	return l.newEntry(sh, pl, path, false), nil
}

// OpenAll fetches the account's playlists and opens a shadow for each. Item
// snapshots are fetched concurrently; entries come back in remote listing
// order.
func (l *Library) OpenAll(ctx context.Context) ([]*Entry, error) {
	playlists, err := l.source.MyPlaylists(ctx)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for _, pl := range playlists {
		pl := pl
		g.Go(func() error {
			if _, err := pl.Items(gctx, l.source); err != nil {
				return fmt.Errorf("fetch items of %q: %w", pl.Title, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, len(playlists))
	for _, pl := range playlists {
		entry, err := l.Open(ctx, pl)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Finalize writes the full dump and records the remote items in the video
// index. It only acts when the entry's remote snapshot has already been
// fetched, so a purely local inspection stays offline.
func (l *Library) Finalize(ctx context.Context, e *Entry) error {
	pl, items, ok := e.Reconciler.Snapshot()
	if !ok {
		return nil
	}

	if err := l.store.Write(l.fullDumpPath(pl.ID), fullDump(pl, items)); err != nil {
		return fmt.Errorf("write full dump: %w", err)
	}
	if l.index != nil {
		if err := l.index.Record(ctx, items); err != nil {
			return fmt.Errorf("record video index: %w", err)
		}
	}
	return nil
}

func (l *Library) rebuild(ctx context.Context, pl *remote.Playlist, path string) (*Entry, error) {
	items, err := pl.Items(ctx, l.source)
	if err != nil {
		return nil, fmt.Errorf("fetch items of %q: %w", pl.Title, err)
	}
	sh := shadow.FromRemote(pl, items)
	if err := l.store.Write(path, sh.Serialize()); err != nil {
		return nil, err
	}
	return l.newEntry(sh, pl, path, true), nil
}

func (l *Library) newEntry(sh *shadow.Playlist, pl *remote.Playlist, path string, rebuilt bool) *Entry {
	r := reconcile.New(reconcile.Options{
		Shadow: sh,
		Source: l.source,
		Remote: pl,
		Persist: func(p *shadow.Playlist) error {
			return l.store.Write(path, p.Serialize())
		},
		Logger: l.logger.With(slog.String("playlist", sh.Title)),
	})
	return &Entry{Reconciler: r, Path: path, Rebuilt: rebuilt}
}

// salvagePlaylistID digs the playlist id out of a shadow file that failed to
// parse. The id is the second non-blank, non-comment line when the file's
// head is intact.
func salvagePlaylistID(text string) (string, bool) {
	var data []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, shadow.CommentMarker) {
			continue
		}
		data = append(data, line)
		if len(data) == 2 {
			break
		}
	}
	if len(data) < 2 {
		return "", false
	}
	var id string
	if err := json.Unmarshal([]byte(data[1]), &id); err != nil || id == "" {
		return "", false
	}
	return id, true
}

func sanitizeFilename(title string) string {
	title = strings.TrimSpace(title)
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "",
		"?", "",
		"\"", "",
		"<", "",
		">", "",
		"|", "",
		"\x00", "",
	)
	title = replacer.Replace(title)
	title = strings.Trim(title, "-_. ")
	if title == "" {
		return "playlist"
	}
	return title
}
