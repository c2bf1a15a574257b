package core

// Collaborator contracts consumed by the core (spec.md §6.4). The core
// only ever holds these as interfaces — it never constructs a concrete
// local-storage, remote-store, transport, or oracle implementation itself,
// matching the teacher's own pattern of depending on interfaces for the
// ledger/ledger-adjacent collaborators in core/wallet_management.go.

import (
	"context"
	"sync"
)

// LocalStorageProvider persists string-keyed string values for one
// identity context. Implementations must support switching the identity
// context so that keys are namespaced per-address.
type LocalStorageProvider interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsConnected() bool

	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error

	// SetIdentityContext re-namespaces subsequent operations under addressID.
	SetIdentityContext(addressID string) error
}

// SyncResult is the outcome of a RemoteTokenStorageProvider.Sync call.
type SyncResult struct {
	Merged    Snapshot
	Added     int
	Removed   int
	Conflicts int
}

// RemoteTokenStorageProvider content-addresses and discovers a snapshot on
// a network store; the core treats its returned handle (cid) opaquely.
type RemoteTokenStorageProvider interface {
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
	Load(ctx context.Context, cid string) (Snapshot, error)
	Save(ctx context.Context, data Snapshot) (cid string, err error)
	Sync(ctx context.Context, localSnapshot Snapshot) (SyncResult, error)
	Clear(ctx context.Context) error
}

// TokenTransferMessage is an opaque envelope handed to/from the transport.
type TokenTransferMessage struct {
	Payload []byte
}

// TransportProvider delivers transfer bundles and (optionally) nametag
// registry operations; out of scope for the core itself (spec.md §1) but
// consumed through this interface.
type TransportProvider interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsConnected() bool

	SendMessage(ctx context.Context, to string, payload []byte) error
	OnMessage(handler func(from string, payload []byte))

	SendTokenTransfer(ctx context.Context, to string, msg TokenTransferMessage) error
	OnTokenTransfer(handler func(from string, msg TokenTransferMessage))

	RegisterNametag(ctx context.Context, name, addressID string) error
	ResolveNametag(ctx context.Context, name string) (addressID string, err error)
	RecoverNametag(ctx context.Context, pubkey []byte) (name string, err error)

	GetRelays() []string
	GetConnectedRelays() []string
}

// OracleProvider submits commitments and waits for inclusion proofs; the
// core never validates the proof content it returns (spec.md §1 Non-goals).
type OracleProvider interface {
	Initialize(ctx context.Context) error
	SubmitCommitment(ctx context.Context, commitmentJSON string) (requestID string, err error)
	WaitForProof(ctx context.Context, requestID string) (InclusionProof, error)
	ValidateToken(ctx context.Context, txf TxfToken) (bool, error)
}

// EventKind enumerates the observer events the core emits (spec.md §6.4).
type EventKind string

const (
	EventIdentityChanged   EventKind = "identity:changed"
	EventConnectionChanged EventKind = "connection:changed"
	EventNametagRegistered EventKind = "nametag:registered"
	EventNametagRecovered  EventKind = "nametag:recovered"
)

// Event is a single observer notification.
type Event struct {
	Kind EventKind
	Data any
}

// Observer receives emitted events.
type Observer func(Event)

// EventEmitter is a minimal single-registry pub/sub, used by the identity
// controller and sync engine to notify external callers. Event emission
// happens synchronously and only after the triggering state change is
// already visible (spec.md §5 "Event emission... happens after the state
// change is visible").
type EventEmitter struct {
	mu        sync.Mutex
	observers []Observer
}

// Subscribe registers an observer and returns an unsubscribe function.
func (e *EventEmitter) Subscribe(obs Observer) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, obs)
	idx := len(e.observers) - 1
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if idx < len(e.observers) {
			e.observers[idx] = nil
		}
	}
}

// Emit synchronously notifies every live observer.
func (e *EventEmitter) Emit(evt Event) {
	e.mu.Lock()
	obs := append([]Observer(nil), e.observers...)
	e.mu.Unlock()
	for _, o := range obs {
		if o != nil {
			o(evt)
		}
	}
}
