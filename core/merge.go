package core

// Multi-device merge (spec.md §4.7) — the heart of the core. Merge is a
// pure function over plain snapshots so it can be unit-tested without any
// store, lock, or I/O in the loop; Store.Snapshot/Store.ApplyMerge are the
// only points where it touches live state, and ApplyMerge publishes the
// result atomically under the store's write lock (spec.md §5 "published
// atomically... readers never observe a partially merged state").

import "time"

// Snapshot is a plain-data copy of a Store's contents, suitable for
// merging, serialising to a remote provider, or unit testing.
type Snapshot struct {
	Meta                StoreMeta
	LegacyNametag       string
	Active              map[string]TxfToken
	Archived            map[string]TxfToken
	Forked              map[string]TxfToken
	Tombstones          []Tombstone
	Outbox              []OutboxEntry
	MintOutbox          []MintOutboxEntry
	Sent                []SentEntry
	Invalid             []InvalidEntry
	InvalidatedNametags []InvalidatedNametag
}

// Snapshot returns a deep-enough copy of the store for merging or export.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Meta:                s.meta,
		LegacyNametag:       s.legacyNametag,
		Active:              cloneTokenMap(s.active),
		Archived:            cloneTokenMap(s.archived),
		Forked:              cloneTokenMap(s.forked),
		Tombstones:          append([]Tombstone(nil), s.tombstones...),
		Outbox:              append([]OutboxEntry(nil), s.outbox...),
		MintOutbox:          append([]MintOutboxEntry(nil), s.mintOutbox...),
		Sent:                append([]SentEntry(nil), s.sent...),
		Invalid:             append([]InvalidEntry(nil), s.invalid...),
		InvalidatedNametags: append([]InvalidatedNametag(nil), s.invalidatedNametags...),
	}
}

// ApplyMerge atomically replaces the store's contents with merged, the
// single write spec.md §5/§4.8 require for publication.
func (s *Store) ApplyMerge(merged Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta = merged.Meta
	s.legacyNametag = merged.LegacyNametag
	s.active = cloneTokenMap(merged.Active)
	s.archived = cloneTokenMap(merged.Archived)
	s.forked = cloneTokenMap(merged.Forked)
	s.tombstones = append([]Tombstone(nil), merged.Tombstones...)
	s.outbox = append([]OutboxEntry(nil), merged.Outbox...)
	s.mintOutbox = append([]MintOutboxEntry(nil), merged.MintOutbox...)
	s.sent = append([]SentEntry(nil), merged.Sent...)
	s.invalid = append([]InvalidEntry(nil), merged.Invalid...)
	s.invalidatedNametags = append([]InvalidatedNametag(nil), merged.InvalidatedNametags...)
}

func cloneTokenMap(m map[string]TxfToken) map[string]TxfToken {
	out := make(map[string]TxfToken, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type tombstoneKey struct {
	tokenID   string
	stateHash string
}

// MergeResult reports the bookkeeping counters spec.md §4.7 defines.
type MergeResult struct {
	Merged    Snapshot
	Added     int
	Removed   int
	Conflicts int
}

// Merge implements spec.md §4.7 exactly: local is authoritative on any
// row present in both sides (step 3's "last-writer-wins within a row"),
// tombstones union by (tokenId, stateHash) keeping the greater timestamp,
// and any row tombstoned by either side is dropped from the result.
func Merge(local, remote Snapshot, now time.Time) MergeResult {
	baseMeta := local.Meta
	if remote.Meta.Version > local.Meta.Version {
		baseMeta = remote.Meta
	}
	mergedVersion := local.Meta.Version
	if remote.Meta.Version > mergedVersion {
		mergedVersion = remote.Meta.Version
	}
	mergedMeta := baseMeta
	mergedMeta.Version = mergedVersion + 1

	tombstones := mergeTombstones(local.Tombstones, remote.Tombstones)
	tombstoned := make(map[tombstoneKey]bool, len(tombstones))
	for _, t := range tombstones {
		tombstoned[tombstoneKey{t.TokenID, t.StateHash}] = true
	}

	mergedActive := make(map[string]TxfToken)
	added, removed, conflicts := 0, 0, 0

	allIDs := make(map[string]bool)
	for id := range local.Active {
		allIDs[id] = true
	}
	for id := range remote.Active {
		allIDs[id] = true
	}

	for id := range allIDs {
		localTok, inLocal := local.Active[id]
		remoteTok, inRemote := remote.Active[id]

		var row TxfToken
		switch {
		case inLocal && inRemote:
			row = localTok
		case inLocal:
			row = localTok
		default:
			row = remoteTok
		}

		if tombstoned[tombstoneKey{id, GetCurrentStateHash(row)}] {
			if inLocal {
				removed++
			}
			continue
		}

		switch {
		case inLocal && inRemote:
			mergedActive[id] = localTok
			conflicts++
		case inLocal:
			mergedActive[id] = localTok
		default:
			mergedActive[id] = remoteTok
			added++
		}
	}

	outbox := mergeByKey(local.Outbox, remote.Outbox, func(e OutboxEntry) string { return e.ID })
	sent := mergeByKey(local.Sent, remote.Sent, func(e SentEntry) string { return e.TokenID })
	mintOutbox := mergeByKey(local.MintOutbox, remote.MintOutbox, func(e MintOutboxEntry) string { return e.ID })
	invalid := mergeByKey(local.Invalid, remote.Invalid, func(e InvalidEntry) string { return e.TokenID })
	invalidatedNametags := mergeByKey(local.InvalidatedNametags, remote.InvalidatedNametags, func(e InvalidatedNametag) string { return e.Name })

	merged := Snapshot{
		Meta:                mergedMeta,
		LegacyNametag:       local.LegacyNametag,
		Active:              mergedActive,
		Archived:            unionArchived(local.Archived, remote.Archived),
		Forked:              unionArchived(local.Forked, remote.Forked),
		Tombstones:          tombstones,
		Outbox:              outbox,
		MintOutbox:          mintOutbox,
		Sent:                sent,
		Invalid:             invalid,
		InvalidatedNametags: invalidatedNametags,
	}
	_ = now // mergedMeta.updatedAt is not part of StoreMeta's tracked fields today

	return MergeResult{Merged: merged, Added: added, Removed: removed, Conflicts: conflicts}
}

// mergeTombstones unions two tombstone lists keyed by (tokenId,
// stateHash), keeping the entry with the greater timestamp on overlap.
func mergeTombstones(local, remote []Tombstone) []Tombstone {
	byKey := make(map[tombstoneKey]Tombstone)
	apply := func(list []Tombstone) {
		for _, t := range list {
			key := tombstoneKey{t.TokenID, t.StateHash}
			existing, ok := byKey[key]
			if !ok || t.Timestamp > existing.Timestamp {
				byKey[key] = t
			}
		}
	}
	apply(local)
	apply(remote)
	out := make([]Tombstone, 0, len(byKey))
	for _, t := range byKey {
		out = append(out, t)
	}
	return out
}

// mergeByKey unions two category lists by a caller-supplied key function,
// local-wins on key collision (spec.md §4.7 step 6).
func mergeByKey[T any](local, remote []T, key func(T) string) []T {
	byKey := make(map[string]T)
	order := make([]string, 0, len(local)+len(remote))
	for _, e := range remote {
		k := key(e)
		if _, ok := byKey[k]; !ok {
			order = append(order, k)
		}
		byKey[k] = e
	}
	for _, e := range local {
		k := key(e)
		if _, ok := byKey[k]; !ok {
			order = append(order, k)
		}
		byKey[k] = e // local wins
	}
	out := make([]T, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}

// unionArchived merges archived/forked tables by key, local-wins, since
// both are treated as append-mostly historical records (spec.md §4.7
// step 8).
func unionArchived(local, remote map[string]TxfToken) map[string]TxfToken {
	out := make(map[string]TxfToken, len(local)+len(remote))
	for k, v := range remote {
		out[k] = v
	}
	for k, v := range local {
		out[k] = v
	}
	return out
}
