// Package remote defines the authoritative side of a playlist mirror: the
// item and playlist types a remote service reports, and the narrow Source
// contract the reconciler consumes. Implementations live in subpackages.
package remote

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound reports that a playlist id no longer resolves for the caller.
var ErrNotFound = errors.New("remote: playlist not found")

// RequestError reports a transport, auth, or API failure. The reconciler
// never retries these; they propagate to the caller immediately.
type RequestError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote: %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("remote: %s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Item is one entry of a remote playlist at fetch time. Items are constructed
// fresh on every fetch and never mutated.
type Item struct {
	// ID is the playlist-item identifier, unique within the playlist. It is
	// the input to the fingerprint join and distinct from VideoID: the same
	// video added twice yields two Items with different IDs.
	ID         string
	PlaylistID string
	Title      string
	// Channel is nil when the owning channel is unknown, which happens for
	// private and region-restricted videos.
	Channel  *string
	VideoID  string
	Position int
}

func (it *Item) String() string {
	return fmt.Sprintf("%s#%s", it.Title, it.VideoID)
}

// Thumbnail is one rendition of a playlist's cover image.
type Thumbnail struct {
	URL    string
	Width  int
	Height int
}

// Playlist is remote playlist metadata plus a lazily-fetched, cached item
// snapshot. Once fetched the snapshot is immutable for the lifetime of the
// instance, so a reconciliation pass always sees one consistent remote state.
type Playlist struct {
	ID           string
	Title        string
	Description  string
	ChannelID    string
	ChannelTitle string
	PublishedAt  time.Time
	ItemCount    int
	Thumbnails   map[string]Thumbnail

	fetched bool
	items   []*Item
}

// Items returns the playlist's items in remote order, fetching them through
// src on first call and serving the cached snapshot afterwards.
func (p *Playlist) Items(ctx context.Context, src Source) ([]*Item, error) {
	if !p.fetched {
		items, err := src.Items(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.items = items
		p.fetched = true
	}
	return p.items, nil
}

// Fetched reports whether the item snapshot has been populated.
func (p *Playlist) Fetched() bool { return p.fetched }

// CachedItems returns the item snapshot without fetching; ok is false when no
// snapshot has been taken yet.
func (p *Playlist) CachedItems() ([]*Item, bool) {
	return p.items, p.fetched
}

// Source is the remote collaborator contract. All calls block; pagination is
// internal to the implementation.
type Source interface {
	// MyPlaylists lists the caller's playlists, metadata only.
	MyPlaylists(ctx context.Context) ([]*Playlist, error)
	// Playlist resolves one playlist by id. Returns ErrNotFound when the id
	// is not visible to the caller.
	Playlist(ctx context.Context, id string) (*Playlist, error)
	// Items returns the full ordered item list for a playlist.
	Items(ctx context.Context, playlistID string) ([]*Item, error)
	// SetPosition moves one item to a new zero-based position. Updates are
	// atomic per item only; nothing is guaranteed across a batch of calls.
	SetPosition(ctx context.Context, item *Item, position int) error
}
