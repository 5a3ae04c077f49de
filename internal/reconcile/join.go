package reconcile

import (
	"shadowlist/internal/identity"
	"shadowlist/internal/remote"
	"shadowlist/internal/shadow"
)

// joinTable is the derived bidirectional fingerprint join between the shadow
// item sequence and one remote snapshot. It is rebuilt lazily after any
// structural mutation of the shadow; Reconciler holds nil while dirty.
type joinTable struct {
	shadowByFP  map[string]*shadow.Item
	remoteByFP  map[string]*remote.Item
	shadowPos   map[string]int // fingerprint -> shadow position
	remotePos   map[string]int // fingerprint -> remote position
	remoteOrder []*remote.Item // remote items in remote order
}

func buildJoin(shadowItems []*shadow.Item, remoteItems []*remote.Item) *joinTable {
	j := &joinTable{
		shadowByFP:  make(map[string]*shadow.Item, len(shadowItems)),
		remoteByFP:  make(map[string]*remote.Item, len(remoteItems)),
		shadowPos:   make(map[string]int, len(shadowItems)),
		remotePos:   make(map[string]int, len(remoteItems)),
		remoteOrder: remoteItems,
	}
	for i, it := range shadowItems {
		j.shadowByFP[it.Fingerprint] = it
		j.shadowPos[it.Fingerprint] = i
	}
	for i, it := range remoteItems {
		fp := identity.Fingerprint(it.ID)
		j.remoteByFP[fp] = it
		j.remotePos[fp] = i
	}
	return j
}

// shadowPositionOf returns the shadow position of a remote item, defined only
// when the fingerprint exists on both sides.
func (j *joinTable) shadowPositionOf(it *remote.Item) (int, bool) {
	pos, ok := j.shadowPos[identity.Fingerprint(it.ID)]
	return pos, ok
}
