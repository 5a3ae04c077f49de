// Package shadow models the local, human-editable mirror of a remote
// playlist and its lossless, comment-preserving text form.
//
// A shadow file is line oriented: a JSON-string title line, optional
// playlist-level comment lines, a JSON-string id line, a JSON-number
// timestamp line, then one line per item holding a four-element JSON array
// [title, channel-or-null, video_id, fingerprint] with optional inline
// comment text after the array. Lines starting with "//" above an item are
// that item's leading comment block.
package shadow

import (
	"strings"
	"time"

	"shadowlist/internal/identity"
	"shadowlist/internal/remote"
	"shadowlist/internal/textwidth"
)

// CommentMarker starts a comment line or an inline comment.
const CommentMarker = "//"

// Display width limits for the stored title and channel columns.
const (
	MaxTitleWidth   = 40
	MaxChannelWidth = 20
)

// InlineComment is the trailing comment slot of an item. The slot has three
// states: unknown (the line was never parsed, so whether a comment existed is
// unknowable), confirmed absent, and present. Collapsing unknown and absent
// would break round-trip fidelity, so the distinction is kept explicit.
type InlineComment struct {
	known bool
	text  string
}

// UnknownInlineComment is the state of an item that was never parsed from a
// shadow file.
func UnknownInlineComment() InlineComment { return InlineComment{} }

// NoInlineComment records that the item's line was parsed and held no
// trailing comment.
func NoInlineComment() InlineComment { return InlineComment{known: true} }

// NewInlineComment records trailing comment text verbatim, including any
// whitespace before the marker.
func NewInlineComment(text string) InlineComment {
	return InlineComment{known: true, text: text}
}

// Known reports whether the slot has ever been observed.
func (c InlineComment) Known() bool { return c.known }

// Text returns the raw comment text; empty for unknown or absent comments.
func (c InlineComment) Text() string { return c.text }

// Item is one locally persisted playlist entry. Title and Channel hold the
// display form stored in the file (already width-limited); Fingerprint joins
// the item to its remote counterpart.
type Item struct {
	Title          string
	Channel        *string // nil when the owning channel is unknown
	VideoID        string
	Fingerprint    string
	LeadingComment []string
	Inline         InlineComment
}

// ItemFromRemote builds a shadow item from an authoritative remote item.
// Comments start unknown; title and channel are reduced to their display
// form, with the " - Topic" suffix auto-generated channels carry stripped.
func ItemFromRemote(it *remote.Item) *Item {
	var channel *string
	if it.Channel != nil {
		c := strings.TrimSuffix(*it.Channel, " - Topic")
		c = textwidth.Truncate(c, MaxChannelWidth)
		channel = &c
	}
	return &Item{
		Title:       textwidth.Truncate(it.Title, MaxTitleWidth),
		Channel:     channel,
		VideoID:     it.VideoID,
		Fingerprint: identity.Fingerprint(it.ID),
		Inline:      UnknownInlineComment(),
	}
}

// PreserveCommentsFrom carries the comment state of a previous incarnation of
// the same item onto this one. Used by reset, which rebuilds items from
// remote fields but must not lose local annotations.
func (it *Item) PreserveCommentsFrom(prev *Item) {
	it.LeadingComment = prev.LeadingComment
	it.Inline = prev.Inline
}

func (it *Item) String() string {
	return it.Title + "#" + it.VideoID
}

// Playlist is the shadow of one remote playlist. The item slice order is the
// authoritative local ordering.
type Playlist struct {
	Title           string
	PlaylistComment []string
	ID              string
	// Time is the epoch-seconds timestamp of the last full rewrite.
	Time  float64
	Items []*Item
}

// FromRemote builds a fresh shadow from a remote snapshot: remote order, no
// comments, timestamp now.
func FromRemote(pl *remote.Playlist, items []*remote.Item) *Playlist {
	shadowItems := make([]*Item, len(items))
	for i, it := range items {
		shadowItems[i] = ItemFromRemote(it)
	}
	return &Playlist{
		Title: pl.Title,
		ID:    pl.ID,
		Time:  float64(time.Now().UnixMilli()) / 1e3,
		Items: shadowItems,
	}
}

// InsertItem places item at position i, shifting later items down.
func (p *Playlist) InsertItem(i int, item *Item) {
	if i < 0 {
		i = 0
	}
	if i > len(p.Items) {
		i = len(p.Items)
	}
	p.Items = append(p.Items, nil)
	copy(p.Items[i+1:], p.Items[i:])
	p.Items[i] = item
}
