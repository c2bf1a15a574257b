package sync

import (
	"context"
	"testing"
	"time"

	"github.com/sphere-wallet/wallet/core"
)

// fakeRemote is a minimal core.RemoteTokenStorageProvider used to drive the
// engine's state machine without a real network store.
type fakeRemote struct {
	syncFn func(ctx context.Context, local core.Snapshot) (core.SyncResult, error)
	calls  int
}

func (f *fakeRemote) Initialize(ctx context.Context) error { return nil }
func (f *fakeRemote) Shutdown(ctx context.Context) error   { return nil }
func (f *fakeRemote) Load(ctx context.Context, cid string) (core.Snapshot, error) {
	return core.Snapshot{}, nil
}
func (f *fakeRemote) Save(ctx context.Context, data core.Snapshot) (string, error) {
	return "", nil
}
func (f *fakeRemote) Sync(ctx context.Context, local core.Snapshot) (core.SyncResult, error) {
	f.calls++
	return f.syncFn(ctx, local)
}
func (f *fakeRemote) Clear(ctx context.Context) error { return nil }

func newReadyEngine(t *testing.T, remote *fakeRemote) *Engine {
	t.Helper()
	store := core.NewStore("addr1", "ipns1")
	e := NewEngine(store, remote, nil)
	ctx := context.Background()
	if err := e.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := e.LoadLocal(ctx); err != nil {
		t.Fatalf("LoadLocal: %v", err)
	}
	if e.State() != StateReady {
		t.Fatalf("expected READY after connect+load_local, got %s", e.State())
	}
	return e
}

func TestEngineStateMachineHappyPath(t *testing.T) {
	remote := &fakeRemote{
		syncFn: func(ctx context.Context, local core.Snapshot) (core.SyncResult, error) {
			return core.SyncResult{Merged: core.Snapshot{Meta: core.StoreMeta{Version: 1}}, Added: 2}, nil
		},
	}
	e := newReadyEngine(t, remote)

	result, err := e.Sync(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.Added != 2 {
		t.Fatalf("expected Added=2, got %d", result.Added)
	}
	if e.State() != StateReady {
		t.Fatalf("expected READY after a successful sync, got %s", e.State())
	}
	if e.Stats().LastAdded != 2 {
		t.Fatalf("expected Stats().LastAdded=2, got %d", e.Stats().LastAdded)
	}
}

func TestEngineFailureMovesToError(t *testing.T) {
	remote := &fakeRemote{
		syncFn: func(ctx context.Context, local core.Snapshot) (core.SyncResult, error) {
			return core.SyncResult{}, context.DeadlineExceeded
		},
	}
	e := newReadyEngine(t, remote)

	if _, err := e.Sync(context.Background(), time.Second); err == nil {
		t.Fatal("expected Sync to fail when the remote provider errors")
	}
	if e.State() != StateError {
		t.Fatalf("expected ERROR after a failed sync, got %s", e.State())
	}
	if e.Stats().ConsecutiveErrors != 1 {
		t.Fatalf("expected ConsecutiveErrors=1, got %d", e.Stats().ConsecutiveErrors)
	}
}

func TestEngineCoalescesConcurrentSyncs(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	remote := &fakeRemote{
		syncFn: func(ctx context.Context, local core.Snapshot) (core.SyncResult, error) {
			close(started)
			<-release
			return core.SyncResult{Merged: core.Snapshot{Meta: core.StoreMeta{Version: 1}}, Added: 1}, nil
		},
	}
	e := newReadyEngine(t, remote)

	done := make(chan struct{}, 2)
	go func() {
		_, _ = e.Sync(context.Background(), 5*time.Second)
		done <- struct{}{}
	}()
	<-started
	go func() {
		_, _ = e.Sync(context.Background(), 5*time.Second)
		done <- struct{}{}
	}()
	close(release)
	<-done
	<-done

	if remote.calls != 1 {
		t.Fatalf("expected the second concurrent Sync to coalesce onto the first, got %d remote calls", remote.calls)
	}
}

func TestEngineShutdownFromAnyState(t *testing.T) {
	remote := &fakeRemote{syncFn: func(ctx context.Context, local core.Snapshot) (core.SyncResult, error) {
		return core.SyncResult{}, nil
	}}
	store := core.NewStore("addr1", "ipns1")
	e := NewEngine(store, remote, nil)
	if err := e.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown from DISCONNECTED: %v", err)
	}
	if e.State() != StateDisconnected {
		t.Fatalf("expected DISCONNECTED after shutdown, got %s", e.State())
	}
}

func TestEngineMarkDirtyTriggersDebouncedSync(t *testing.T) {
	synced := make(chan struct{}, 1)
	remote := &fakeRemote{
		syncFn: func(ctx context.Context, local core.Snapshot) (core.SyncResult, error) {
			synced <- struct{}{}
			return core.SyncResult{Merged: core.Snapshot{Meta: core.StoreMeta{Version: 1}}}, nil
		},
	}
	e := newReadyEngine(t, remote)
	e.SetDebounce(10 * time.Millisecond)
	e.MarkDirty(context.Background())

	select {
	case <-synced:
	case <-time.After(time.Second):
		t.Fatal("expected MarkDirty to trigger a debounced flush")
	}
}
