// Package videoindex maintains the companion index: one SQLite file tracking
// the union of all videos ever observed across every reconciled playlist,
// keyed by video id and refreshed with the most recently seen title and
// channel. It is an enrichment cache, not required for per-playlist
// correctness, and is opened once per run and closed at the end.
package videoindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"shadowlist/internal/remote"
)

// ErrNotFound reports a video id absent from the index.
var ErrNotFound = errors.New("videoindex: video not found")

const schema = `
CREATE TABLE IF NOT EXISTS videos (
    video_id   TEXT PRIMARY KEY,
    title      TEXT NOT NULL,
    channel    TEXT,
    updated_at TEXT NOT NULL
);
`

// Video is one indexed record.
type Video struct {
	VideoID   string
	Title     string
	Channel   *string
	UpdatedAt time.Time
}

// Index is the SQLite-backed companion index.
type Index struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the index database.
func Open(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Index{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (x *Index) Close() error {
	if x == nil || x.db == nil {
		return nil
	}
	return x.db.Close()
}

// Record upserts every item's video, refreshing title and channel to the
// most recently observed values.
func (x *Index) Record(ctx context.Context, items []*remote.Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin index transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO videos (video_id, title, channel, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(video_id) DO UPDATE SET
            title = excluded.title,
            channel = excluded.channel,
            updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare index upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, it := range items {
		var channel any
		if it.Channel != nil {
			channel = *it.Channel
		}
		if _, err := stmt.ExecContext(ctx, it.VideoID, it.Title, channel, now); err != nil {
			return fmt.Errorf("upsert video %s: %w", it.VideoID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit index transaction: %w", err)
	}
	return nil
}

// Lookup returns the indexed record for a video id.
func (x *Index) Lookup(ctx context.Context, videoID string) (*Video, error) {
	row := x.db.QueryRowContext(ctx,
		`SELECT video_id, title, channel, updated_at FROM videos WHERE video_id = ?`, videoID)

	var v Video
	var channel sql.NullString
	var updated string
	if err := row.Scan(&v.VideoID, &v.Title, &channel, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, videoID)
		}
		return nil, fmt.Errorf("query video %s: %w", videoID, err)
	}
	if channel.Valid {
		v.Channel = &channel.String
	}
	ts, err := time.Parse(time.RFC3339Nano, updated)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at of %s: %w", videoID, err)
	}
	v.UpdatedAt = ts
	return &v, nil
}

// Count returns the number of indexed videos.
func (x *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := x.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count videos: %w", err)
	}
	return n, nil
}
