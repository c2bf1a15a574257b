package core

// Store is the in-memory token-inventory container (spec.md §3.2, §4.3/4.4).
// It is the single owner of all TXF data; per §5's "confine core state to
// one task/actor ... via message passing or an equivalent lock", every
// public method takes the store's mutex rather than relying on a caller's
// own serialisation, since Go (unlike the source wallet's host runtime) is
// natively multi-threaded.

import (
	"regexp"
	"sync"
	"time"
)

var tokenIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

// Store holds one wallet's token inventory plus its reserved category
// tables (spec.md §3.2).
type Store struct {
	mu sync.RWMutex

	meta                StoreMeta
	legacyNametag       string
	active              map[string]TxfToken // tokenId -> token
	archived            map[string]TxfToken // tokenId -> token
	forked              map[string]TxfToken // "tokenId_stateHash" -> token
	tombstones          []Tombstone
	outbox              []OutboxEntry
	mintOutbox          []MintOutboxEntry
	sent                []SentEntry
	invalid             []InvalidEntry
	invalidatedNametags []InvalidatedNametag
}

// NewStore returns an empty store stamped with the given address/ipnsName,
// version 0, and the current format version.
func NewStore(address, ipnsName string) *Store {
	return &Store{
		meta: StoreMeta{
			Version:       0,
			Address:       address,
			IPNSName:      ipnsName,
			FormatVersion: StoreFormatVersion,
		},
		active:   make(map[string]TxfToken),
		archived: make(map[string]TxfToken),
		forked:   make(map[string]TxfToken),
	}
}

func forkedKey(tokenID, stateHash string) string {
	return tokenID + "_" + stateHash
}

// IsTokenKey reports whether a raw container key names an active token
// row: starts with "_", is not a reserved key, and carries no other
// special prefix (spec.md §3.2).
func IsTokenKey(key string) bool {
	if len(key) == 0 || key[0] != '_' {
		return false
	}
	if isReservedKey(key) {
		return false
	}
	return tokenIDPattern.MatchString(key[1:])
}

func isReservedKey(key string) bool {
	switch key {
	case "_meta", "_nametag", "_tombstones", "_outbox", "_mintOutbox",
		"_sent", "_invalid", "_invalidatedNametags":
		return true
	}
	return false
}

// IsArchivedKey reports whether key names an archived token row.
func IsArchivedKey(key string) bool {
	return len(key) > len("archived-") && key[:len("archived-")] == "archived-"
}

// IsForkedKey reports whether key names a forked token row.
func IsForkedKey(key string) bool {
	return len(key) > len("_forked_") && key[:len("_forked_")] == "_forked_"
}

// Put validates, normalises, and stores token under its tokenId, bumping
// _meta.version (spec.md §4.4).
func (s *Store) Put(token TxfToken) error {
	if err := validateHexDiscipline(token); err != nil {
		return err
	}
	normalized, err := Normalize(token)
	if err != nil {
		return err
	}
	id := normalized.Genesis.Data.TokenID
	if !tokenIDPattern.MatchString(id) {
		return NewError(ErrIntegrityViolation, "token id is not 64 hex characters: "+id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[id] = normalized
	s.meta.Version++
	return nil
}

// Archive moves the active token tokenID into the archived table.
func (s *Store) Archive(tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.active[tokenID]
	if !ok {
		return NewError(ErrWalletMissing, "no active token "+tokenID)
	}
	delete(s.active, tokenID)
	s.archived[tokenID] = tok
	s.meta.Version++
	return nil
}

// Fork writes a forked snapshot of txf under (tokenID, stateHash).
func (s *Store) Fork(tokenID, stateHash string, txf TxfToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forked[forkedKey(tokenID, stateHash)] = txf
	s.meta.Version++
	return nil
}

// Tombstone appends a (tokenID, stateHash, now) tombstone and removes the
// active row for tokenID iff its current state hash equals stateHash
// (spec.md §4.4).
func (s *Store) Tombstone(tokenID, stateHash string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tombstones = append(s.tombstones, Tombstone{
		TokenID:   tokenID,
		StateHash: stateHash,
		Timestamp: now.UnixMilli(),
	})
	if tok, ok := s.active[tokenID]; ok && GetCurrentStateHash(tok) == stateHash {
		delete(s.active, tokenID)
	}
	s.meta.Version++
}

// GetActive returns every active token, in no particular order.
func (s *Store) GetActive() []TxfToken {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TxfToken, 0, len(s.active))
	for _, t := range s.active {
		out = append(out, t)
	}
	return out
}

// GetArchived returns every archived token.
func (s *Store) GetArchived() []TxfToken {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TxfToken, 0, len(s.archived))
	for _, t := range s.archived {
		out = append(out, t)
	}
	return out
}

// GetForked returns every forked token snapshot.
func (s *Store) GetForked() []TxfToken {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TxfToken, 0, len(s.forked))
	for _, t := range s.forked {
		out = append(out, t)
	}
	return out
}

// ToDisplay projects the active token tokenID into its display form.
func (s *Store) ToDisplay(tokenID string) (Token, error) {
	s.mu.RLock()
	tok, ok := s.active[tokenID]
	s.mu.RUnlock()
	if !ok {
		return Token{}, NewError(ErrWalletMissing, "no active token "+tokenID)
	}
	return TxfToToken(tokenID, tok), nil
}

// Meta returns a copy of the current store metadata.
func (s *Store) Meta() StoreMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta
}

func validateHexDiscipline(token TxfToken) error {
	fields := []string{
		token.Genesis.Data.TokenID,
		token.Genesis.Data.TokenType,
		token.Genesis.Data.Salt,
	}
	for _, f := range fields {
		if f == "" {
			continue
		}
		if len(f)%2 != 0 || !isHexString(f) {
			return NewError(ErrIntegrityViolation, "field is not even-length hex: "+f)
		}
	}
	for _, c := range token.Genesis.Data.CoinData {
		if !isValidCoinAmount(c.Amount) {
			return NewError(ErrIntegrityViolation, "coin amount out of [0, 2^128) range: "+c.Amount)
		}
	}
	return nil
}
