package sync

import (
	stdcontext "context"
	"crypto/sha256"
	"sync"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"golang.org/x/sync/singleflight"

	"github.com/sphere-wallet/wallet/core"
)

// DefaultDebounce is the write-behind flush delay spec.md §4.8 names.
const DefaultDebounce = 250 * time.Millisecond

// Stats summarises one remote's sync activity, a supplement beyond the
// distilled spec giving callers visibility into the engine without
// reaching into its internals.
type Stats struct {
	State          State
	LastAdded      int
	LastRemoved    int
	LastConflicts  int
	LastSyncAt     time.Time
	ConsecutiveErrors int
}

// Engine drives one remote's state machine, coalescing concurrent sync()
// calls via singleflight.Group (golang.org/x/sync, already used elsewhere
// in the retrieval pack for request de-duplication) and buffering local
// writes behind a debounce timer.
type Engine struct {
	mu    sync.Mutex
	state State

	store  *core.Store
	remote core.RemoteTokenStorageProvider
	events *core.EventEmitter

	debounce   time.Duration
	dirty      bool
	flushTimer *time.Timer

	group   singleflight.Group
	lastCID cid.Cid
	stats   Stats
}

// NewEngine constructs an Engine in the DISCONNECTED state.
func NewEngine(store *core.Store, remote core.RemoteTokenStorageProvider, events *core.EventEmitter) *Engine {
	if events == nil {
		events = &core.EventEmitter{}
	}
	return &Engine{
		state:    StateDisconnected,
		store:    store,
		remote:   remote,
		events:   events,
		debounce: DefaultDebounce,
	}
}

// SetDebounce overrides the write-behind delay; must be called before the
// first MarkDirty to take effect on the first flush.
func (e *Engine) SetDebounce(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.debounce = d
}

// State returns the engine's current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Stats returns a snapshot of the engine's last-sync bookkeeping.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.stats
	s.State = e.state
	return s
}

func (e *Engine) transition(event string) error {
	next, ok := e.state.next(event)
	if !ok {
		return core.NewError(core.ErrIntegrityViolation, "illegal sync transition "+event+" from "+string(e.state))
	}
	prev := e.state
	e.state = next
	if prev != next {
		e.events.Emit(core.Event{Kind: core.EventConnectionChanged, Data: next})
	}
	return nil
}

// Connect moves DISCONNECTED/ERROR -> IDLE and initializes the remote.
func (e *Engine) Connect(ctx stdcontext.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.remote.Initialize(ctx); err != nil {
		return core.WrapError(core.ErrProviderUnavailable, "initialize remote", err)
	}
	return e.transition("connect")
}

// LoadLocal moves IDLE -> READY once the local snapshot is available.
func (e *Engine) LoadLocal(ctx stdcontext.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transition("load_local")
}

// Shutdown tears the engine down from any state (spec.md §4.8 "any ->
// shutdown -> DISCONNECTED").
func (e *Engine) Shutdown(ctx stdcontext.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.flushTimer != nil {
		e.flushTimer.Stop()
	}
	err := e.remote.Shutdown(ctx)
	e.state = StateDisconnected
	if err != nil {
		return core.WrapError(core.ErrProviderUnavailable, "shutdown remote", err)
	}
	return nil
}

// MarkDirty flags the store as having unflushed local writes and
// (re)arms the debounce timer (spec.md §4.8 "write-behind buffering").
func (e *Engine) MarkDirty(ctx stdcontext.Context) {
	e.mu.Lock()
	e.dirty = true
	if e.flushTimer != nil {
		e.flushTimer.Stop()
	}
	debounce := e.debounce
	e.flushTimer = time.AfterFunc(debounce, func() {
		_, _ = e.Sync(ctx, DefaultSyncTimeout)
	})
	e.mu.Unlock()
}

// DefaultSyncTimeout bounds an implicit debounce-triggered sync.
const DefaultSyncTimeout = 30 * time.Second

// Sync requests a merge against the remote, coalescing concurrent callers
// onto a single in-flight attempt (spec.md §4.8 "at-most-one sync per
// remote in flight"). timeout bounds the whole operation; on expiry the
// local store is untouched.
func (e *Engine) Sync(ctx stdcontext.Context, timeout time.Duration) (core.SyncResult, error) {
	ctx, cancel := stdcontext.WithTimeout(ctx, timeout)
	defer cancel()

	v, err, _ := e.group.Do("sync", func() (any, error) {
		return e.doSync(ctx)
	})
	if err != nil {
		return core.SyncResult{}, err
	}
	return v.(core.SyncResult), nil
}

func (e *Engine) doSync(ctx stdcontext.Context) (core.SyncResult, error) {
	e.mu.Lock()
	if err := e.transition("sync"); err != nil {
		e.mu.Unlock()
		return core.SyncResult{}, err
	}
	e.dirty = false
	e.mu.Unlock()

	local := e.store.Snapshot()
	result, err := e.remote.Sync(ctx, local)
	if err == nil {
		err = ctx.Err()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		_ = e.transition("failure")
		e.stats.ConsecutiveErrors++
		return core.SyncResult{}, core.WrapError(core.ErrProviderUnavailable, "remote sync failed", err)
	}

	e.store.ApplyMerge(result.Merged)
	if c, cerr := snapshotCID(result.Merged); cerr == nil {
		e.lastCID = c
	}
	_ = e.transition("success")
	e.stats = Stats{
		State:             e.state,
		LastAdded:         result.Added,
		LastRemoved:       result.Removed,
		LastConflicts:     result.Conflicts,
		LastSyncAt:        now(),
		ConsecutiveErrors: 0,
	}
	return result, nil
}

// now is split out so tests can stub the clock if ever needed; today it
// is just time.Now.
func now() time.Time { return time.Now() }

// snapshotCID content-addresses a merged snapshot's metadata for
// diagnostics; the result is kept on the engine only and is not written
// into the store's _meta.lastCid. The remote provider, not
// this engine, is the authority on content-addressing the full payload
// (spec.md §6.4 "provider is responsible for content-addressing").
func snapshotCID(snap core.Snapshot) (cid.Cid, error) {
	sum := sha256.Sum256([]byte(snap.Meta.Address + snap.Meta.IPNSName))
	mh, err := multihash.Encode(sum[:], multihash.SHA2_256)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}
