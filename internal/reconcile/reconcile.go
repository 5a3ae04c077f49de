// Package reconcile joins a shadow playlist with its remote counterpart by
// fingerprint and drives the state transitions that bring the two sides into
// agreement: ingest of new remote items, reset to remote order, and pushing
// local order back to the remote side.
//
// The remote side is always authoritative for set membership; the local side
// is authoritative for annotations. The fingerprint join table is derived
// state: any mutation of the shadow item sequence invalidates it and the next
// accessor rebuilds it.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"shadowlist/internal/identity"
	"shadowlist/internal/ordering"
	"shadowlist/internal/remote"
	"shadowlist/internal/shadow"
)

// ErrInconsistent blocks order-sensitive operations while the shadow and
// remote item sets diverge. Run ingest or reset first.
var ErrInconsistent = errors.New("reconcile: shadow and remote item sets diverge; ingest or reset first")

// Persister is called after every structural mutation of the shadow so the
// on-disk copy never trails the in-memory one.
type Persister func(*shadow.Playlist) error

// Options configures a Reconciler.
type Options struct {
	Shadow *shadow.Playlist
	Source remote.Source
	// Remote may carry already-known playlist metadata; when nil it is
	// resolved from the source by the shadow's playlist id on first use.
	Remote  *remote.Playlist
	Persist Persister
	Logger  *slog.Logger
}

// Reconciler reconciles one shadow playlist against one remote snapshot.
// Not safe for concurrent use.
type Reconciler struct {
	shadow   *shadow.Playlist
	source   remote.Source
	remotePl *remote.Playlist
	persist  Persister
	logger   *slog.Logger

	join *joinTable // nil while dirty
}

// New constructs a Reconciler. Options.Shadow and Options.Source are
// required.
func New(opts Options) *Reconciler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	persist := opts.Persist
	if persist == nil {
		persist = func(*shadow.Playlist) error { return nil }
	}
	return &Reconciler{
		shadow:   opts.Shadow,
		source:   opts.Source,
		remotePl: opts.Remote,
		persist:  persist,
		logger:   logger,
	}
}

// Shadow returns the reconciler's shadow playlist.
func (r *Reconciler) Shadow() *shadow.Playlist { return r.shadow }

// RemotePlaylist resolves and caches the remote playlist metadata.
func (r *Reconciler) RemotePlaylist(ctx context.Context) (*remote.Playlist, error) {
	if r.remotePl == nil {
		pl, err := r.source.Playlist(ctx, r.shadow.ID)
		if err != nil {
			return nil, err
		}
		r.remotePl = pl
	}
	return r.remotePl, nil
}

// RemoteItems returns the cached remote item snapshot, fetching it on first
// use. The snapshot stays fixed for the lifetime of the reconciler so one
// reconciliation pass sees one consistent remote state.
func (r *Reconciler) RemoteItems(ctx context.Context) ([]*remote.Item, error) {
	pl, err := r.RemotePlaylist(ctx)
	if err != nil {
		return nil, err
	}
	return pl.Items(ctx, r.source)
}

// Snapshot returns the cached remote playlist and item snapshot without
// fetching. ok is false when no snapshot has been taken yet.
func (r *Reconciler) Snapshot() (pl *remote.Playlist, items []*remote.Item, ok bool) {
	if r.remotePl == nil {
		return nil, nil, false
	}
	items, ok = r.remotePl.CachedItems()
	if !ok {
		return nil, nil, false
	}
	return r.remotePl, items, true
}

func (r *Reconciler) joinTable(ctx context.Context) (*joinTable, error) {
	if r.join == nil {
		items, err := r.RemoteItems(ctx)
		if err != nil {
			return nil, err
		}
		r.join = buildJoin(r.shadow.Items, items)
	}
	return r.join, nil
}

func (r *Reconciler) invalidate() { r.join = nil }

// MissingFromRemote returns shadow items whose fingerprint has no counterpart
// in the remote snapshot, in shadow order. These are local-only entries: the
// item was removed remotely or the user should delete the line.
func (r *Reconciler) MissingFromRemote(ctx context.Context) ([]*shadow.Item, error) {
	j, err := r.joinTable(ctx)
	if err != nil {
		return nil, err
	}
	var missing []*shadow.Item
	for _, it := range r.shadow.Items {
		if _, ok := j.remoteByFP[it.Fingerprint]; !ok {
			missing = append(missing, it)
		}
	}
	return missing, nil
}

// MissingFromShadow returns remote items with no local counterpart, in remote
// order. These are new items pending ingest.
func (r *Reconciler) MissingFromShadow(ctx context.Context) ([]*remote.Item, error) {
	j, err := r.joinTable(ctx)
	if err != nil {
		return nil, err
	}
	var missing []*remote.Item
	for _, it := range j.remoteOrder {
		if _, ok := j.shadowByFP[identity.Fingerprint(it.ID)]; !ok {
			missing = append(missing, it)
		}
	}
	return missing, nil
}

// IsConsistent reports whether the fingerprint join is a bijection: nothing
// missing on either side. Only then is "out of order" meaningful.
func (r *Reconciler) IsConsistent(ctx context.Context) (bool, error) {
	extra, err := r.MissingFromRemote(ctx)
	if err != nil {
		return false, err
	}
	missing, err := r.MissingFromShadow(ctx)
	if err != nil {
		return false, err
	}
	return len(extra) == 0 && len(missing) == 0, nil
}

// OutOfOrder returns the remote items whose shadow position disagrees with
// the position implied by remote order: walk the remote items in remote
// order, collect their shadow positions, and report the complement of the
// longest increasing subsequence of that position sequence. Fails with
// ErrInconsistent while the item sets diverge.
func (r *Reconciler) OutOfOrder(ctx context.Context) ([]*remote.Item, error) {
	ok, err := r.IsConsistent(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInconsistent
	}

	j, err := r.joinTable(ctx)
	if err != nil {
		return nil, err
	}

	positions := make([]int, len(j.remoteOrder))
	itemAtShadowPos := make(map[int]*remote.Item, len(j.remoteOrder))
	for i, it := range j.remoteOrder {
		pos, known := j.shadowPositionOf(it)
		if !known {
			// IsConsistent above guarantees every remote item joins.
			return nil, fmt.Errorf("reconcile: no shadow position for %s", it)
		}
		positions[i] = pos
		itemAtShadowPos[pos] = it
	}

	misplaced := ordering.OutOfOrderSublist(positions)
	items := make([]*remote.Item, len(misplaced))
	for i, pos := range misplaced {
		items[i] = itemAtShadowPos[pos]
	}
	return items, nil
}

// IngestNewRemote merges every remote-only item into the shadow without
// disturbing the relative order of items already present. Each candidate is
// inserted directly after the shadow position of its remote predecessor; the
// first remote item goes to shadow position 0. Candidates whose predecessor
// is not locally known yet are retried on the next pass, since earlier
// insertions may have provided the anchor. When a full pass places nothing,
// the first remaining candidate is appended at the end. Every insertion
// invalidates the join table and persists the shadow.
func (r *Reconciler) IngestNewRemote(ctx context.Context) error {
	for {
		missing, err := r.MissingFromShadow(ctx)
		if err != nil {
			return err
		}
		if len(missing) == 0 {
			return nil
		}

		inserted := false
		for _, candidate := range missing {
			j, err := r.joinTable(ctx)
			if err != nil {
				return err
			}
			fp := identity.Fingerprint(candidate.ID)
			remotePos := j.remotePos[fp]

			var at int
			if remotePos == 0 {
				at = 0
			} else {
				prev := j.remoteOrder[remotePos-1]
				prevPos, known := j.shadowPositionOf(prev)
				if !known {
					continue
				}
				at = prevPos + 1
			}

			r.shadow.InsertItem(at, shadow.ItemFromRemote(candidate))
			r.invalidate()
			r.logger.Info("ingested item",
				slog.String("title", candidate.Title),
				slog.Int("position", at))
			if err := r.persist(r.shadow); err != nil {
				return err
			}
			inserted = true
		}

		if !inserted {
			candidate := missing[0]
			r.shadow.InsertItem(len(r.shadow.Items), shadow.ItemFromRemote(candidate))
			r.invalidate()
			r.logger.Warn("no anchor found, appending at end",
				slog.String("title", candidate.Title))
			if err := r.persist(r.shadow); err != nil {
				return err
			}
		}
	}
}

// ResetToRemote rebuilds the shadow item sequence to match remote order and
// length exactly. Items are reconstructed from the authoritative remote
// fields, so stale titles and channels refresh; comments carry over by
// fingerprint; local-only items are pruned silently. Persists afterwards.
func (r *Reconciler) ResetToRemote(ctx context.Context) error {
	j, err := r.joinTable(ctx)
	if err != nil {
		return err
	}

	rebuilt := make([]*shadow.Item, len(j.remoteOrder))
	kept := 0
	for i, rit := range j.remoteOrder {
		fresh := shadow.ItemFromRemote(rit)
		if old, ok := j.shadowByFP[fresh.Fingerprint]; ok {
			fresh.PreserveCommentsFrom(old)
			kept++
		}
		rebuilt[i] = fresh
	}

	pruned := len(r.shadow.Items) - kept
	if pruned > 0 {
		r.logger.Info("reset pruned local-only items", slog.Int("count", pruned))
	}

	r.shadow.Items = rebuilt
	r.invalidate()
	return r.persist(r.shadow)
}

// PushOrderToRemote issues one position update per out-of-order item, moving
// it to its shadow-derived position. Updates are atomic per item only; a
// failure mid-batch leaves the remote partially updated and is propagated
// without rollback. Fails with ErrInconsistent while the item sets diverge.
func (r *Reconciler) PushOrderToRemote(ctx context.Context) error {
	misplaced, err := r.OutOfOrder(ctx)
	if err != nil {
		return err
	}

	j, err := r.joinTable(ctx)
	if err != nil {
		return err
	}
	for _, it := range misplaced {
		pos, known := j.shadowPositionOf(it)
		if !known {
			return fmt.Errorf("reconcile: no shadow position for %s", it)
		}
		r.logger.Info("pushing position",
			slog.String("title", it.Title),
			slog.Int("position", pos))
		if err := r.source.SetPosition(ctx, it, pos); err != nil {
			return fmt.Errorf("push position of %s: %w", it, err)
		}
	}
	return nil
}
