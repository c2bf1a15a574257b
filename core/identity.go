package core

// Identity controller (C9, spec.md §4.9). Grounded on the teacher's
// process-wide singleton pattern in core/idwallet_registration.go
// (InitIDRegistry / sync.Once), generalised here to support the
// clear()-then-reinit lifecycle spec.md §5 "Singletons" requires: a plain
// mutex-guarded package variable rather than sync.Once, since sync.Once
// cannot be rearmed after Clear().

import (
	"context"
	"regexp"
	"sync"
)

var nametagRe = regexp.MustCompile(nametagPattern)

// PaymentModule is the external payment collaborator re-initialised on
// every address switch and consulted when registering a nametag (spec.md
// §1 Non-goals: payment is out of scope for the core itself).
type PaymentModule interface {
	Reinitialize(ctx context.Context, id Identity) error
	HasNametagToken(ctx context.Context, name string) (bool, error)
	MintNametagToken(ctx context.Context, name string) error
}

// MessagingModule is the external messaging collaborator re-initialised
// on every address switch.
type MessagingModule interface {
	Reinitialize(ctx context.Context, id Identity) error
}

// IdentityConfig wires the collaborators and key material an
// IdentityController needs.
type IdentityConfig struct {
	Root          MasterKey
	BasePath      string // default DefaultBasePath
	AddressPrefix string // default DefaultAddressPrefix
	TokenType     [32]byte
	LocalStorage  LocalStorageProvider
	Transport     TransportProvider
	Payment       PaymentModule
	Messaging     MessagingModule
	Events        *EventEmitter
}

// IdentityController owns the single active identity for the wallet
// (spec.md §4.9, §5 Singletons).
type IdentityController struct {
	mu sync.RWMutex

	root          MasterKey
	basePath      string
	addressPrefix string
	tokenType     [32]byte
	currentIndex  uint32
	identity      Identity

	// addressMap maps a DIRECT:// address to its nametag indices, index 0
	// being primary (spec.md §3.1 "Nametag map").
	addressMap map[string]map[int]string

	localStorage LocalStorageProvider
	transport    TransportProvider
	payment      PaymentModule
	messaging    MessagingModule
	events       *EventEmitter
}

var (
	controllerMu sync.Mutex
	controller   *IdentityController
)

// ExistsIdentityController reports whether a controller is currently
// initialised.
func ExistsIdentityController() bool {
	controllerMu.Lock()
	defer controllerMu.Unlock()
	return controller != nil
}

// CurrentIdentityController returns the active controller, or nil.
func CurrentIdentityController() *IdentityController {
	controllerMu.Lock()
	defer controllerMu.Unlock()
	return controller
}

// InitIdentityController creates the singleton controller at index 0.
// Idempotent: if a controller already exists, it is returned unchanged
// (spec.md §5 "initialisation is idempotent only when exists() has
// returned true").
func InitIdentityController(ctx context.Context, cfg IdentityConfig) (*IdentityController, error) {
	controllerMu.Lock()
	defer controllerMu.Unlock()
	if controller != nil {
		return controller, nil
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = DefaultBasePath
	}
	prefix := cfg.AddressPrefix
	if prefix == "" {
		prefix = DefaultAddressPrefix
	}
	events := cfg.Events
	if events == nil {
		events = &EventEmitter{}
	}
	c := &IdentityController{
		root:          cfg.Root,
		basePath:      basePath,
		addressPrefix: prefix,
		tokenType:     cfg.TokenType,
		addressMap:    make(map[string]map[int]string),
		localStorage:  cfg.LocalStorage,
		transport:     cfg.Transport,
		payment:       cfg.Payment,
		messaging:     cfg.Messaging,
		events:        events,
	}
	if err := c.switchAddress(ctx, 0); err != nil {
		return nil, err
	}
	controller = c
	return c, nil
}

// ClearIdentityController tears down the singleton. Callers are
// responsible for wiping storage afterwards (spec.md §5 "clear() tears
// down the singleton before wiping storage").
func ClearIdentityController() {
	controllerMu.Lock()
	defer controllerMu.Unlock()
	controller = nil
}

// Identity returns a copy of the controller's current identity.
func (c *IdentityController) Identity() Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

// SwitchAddress re-derives the identity at index i on the receiving
// chain, rebinds collaborators, and re-initialises dependent modules
// (spec.md §4.9).
func (c *IdentityController) SwitchAddress(ctx context.Context, i uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.switchAddress(ctx, i)
}

func (c *IdentityController) switchAddress(ctx context.Context, i uint32) error {
	path := c.basePath + "/0/" + uitoa(i)
	derived, err := DeriveAtPath(c.root, path)
	if err != nil {
		return err
	}
	pub, err := GetPublicKey(derived.PrivateKey, true)
	if err != nil {
		return err
	}
	l1Address, err := publicKeyToAddress(pub, c.addressPrefix)
	if err != nil {
		return err
	}
	direct := directAddress(c.tokenType, pub)
	ipns := ipnsName(pub)

	nametag := ""
	if tags, ok := c.addressMap[direct]; ok {
		nametag = tags[0]
	}

	identity := Identity{
		PrivateKey:    derived.PrivateKey,
		ChainPubkey:   pub,
		L1Address:     l1Address,
		DirectAddress: direct,
		IPNSName:      ipns,
		Nametag:       nametag,
	}

	if c.localStorage != nil {
		if err := c.localStorage.SetIdentityContext(direct); err != nil {
			return WrapError(ErrProviderUnavailable, "rebind local storage identity context", err)
		}
		_ = c.localStorage.Set(ctx, "_currentAddressIndex", uitoa(i))
	}

	c.currentIndex = i
	c.identity = identity

	if c.payment != nil {
		if err := c.payment.Reinitialize(ctx, identity); err != nil {
			return WrapError(ErrProviderUnavailable, "reinitialise payment module", err)
		}
	}
	if c.messaging != nil {
		if err := c.messaging.Reinitialize(ctx, identity); err != nil {
			return WrapError(ErrProviderUnavailable, "reinitialise messaging module", err)
		}
	}

	if c.events != nil {
		c.events.Emit(Event{Kind: EventIdentityChanged, Data: identity})
	}
	return nil
}

// RegisterNametag validates and publishes name as the primary nametag for
// the current address (spec.md §4.9).
func (c *IdentityController) RegisterNametag(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !nametagRe.MatchString(name) {
		return NewError(ErrInvalidNametag, "nametag does not match "+nametagPattern)
	}
	direct := c.identity.DirectAddress
	if tags, ok := c.addressMap[direct]; ok {
		if _, hasPrimary := tags[0]; hasPrimary {
			return NewError(ErrNametagTaken, "current address already has a primary nametag")
		}
	}
	if c.transport != nil {
		if err := c.transport.RegisterNametag(ctx, name, direct); err != nil {
			return WrapError(ErrProviderUnavailable, "publish nametag", err)
		}
	}
	if c.addressMap[direct] == nil {
		c.addressMap[direct] = make(map[int]string)
	}
	c.addressMap[direct][0] = name
	c.identity.Nametag = name

	if c.payment != nil {
		has, err := c.payment.HasNametagToken(ctx, name)
		if err == nil && !has {
			_ = c.payment.MintNametagToken(ctx, name)
		}
	}

	if c.events != nil {
		c.events.Emit(Event{Kind: EventNametagRegistered, Data: name})
	}
	return nil
}

// RecoverNametag asks the external registry for the nametag bound to this
// identity's public key and records it at the next free index.
func (c *IdentityController) RecoverNametag(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.transport == nil {
		return "", NewError(ErrProviderUnavailable, "no transport configured")
	}
	name, err := c.transport.RecoverNametag(ctx, c.identity.ChainPubkey)
	if err != nil {
		return "", WrapError(ErrProviderUnavailable, "recover nametag", err)
	}

	direct := c.identity.DirectAddress
	if c.addressMap[direct] == nil {
		c.addressMap[direct] = make(map[int]string)
	}
	idx := nextFreeIndex(c.addressMap[direct])
	c.addressMap[direct][idx] = name
	if idx == 0 {
		c.identity.Nametag = name
	}

	if err := c.transport.RegisterNametag(ctx, name, direct); err != nil {
		return "", WrapError(ErrProviderUnavailable, "republish recovered nametag", err)
	}

	if c.events != nil {
		c.events.Emit(Event{Kind: EventNametagRecovered, Data: name})
	}
	return name, nil
}

// GetNametag returns the primary nametag for addressID, or the current
// identity's primary nametag when addressID is empty.
func (c *IdentityController) GetNametag(addressID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if addressID == "" {
		addressID = c.identity.DirectAddress
	}
	tags, ok := c.addressMap[addressID]
	if !ok {
		return "", false
	}
	name, ok := tags[0]
	return name, ok
}

func nextFreeIndex(tags map[int]string) int {
	for i := 0; ; i++ {
		if _, ok := tags[i]; !ok {
			return i
		}
	}
}

func uitoa(i uint32) string {
	if i == 0 {
		return "0"
	}
	var buf [10]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[pos:])
}
