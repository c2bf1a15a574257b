package core

// Typed representation of the TXF (Token eXchange Format) on-disk token
// shape (spec.md §3.1, §4.3). All byte-bearing fields are canonical
// lower-case hex strings once normalised by TxfCodec (§4.5).

// CoinAmount is a decimal string holding a base-10 integer in [0, 2^128),
// kept as a string to avoid silent truncation of values that may exceed
// a native int64 (spec.md §3.3 invariant 5).
type CoinAmount = string

// CoinEntry is one [coinId, amount] pair from genesis.data.coinData.
type CoinEntry struct {
	CoinID string     `json:"coinId"`
	Amount CoinAmount `json:"amount"`
}

// GenesisData is the immutable birth record of a token.
type GenesisData struct {
	TokenID            string      `json:"tokenId"`
	TokenType          string      `json:"tokenType"`
	CoinData           []CoinEntry `json:"coinData"`
	TokenData          any         `json:"tokenData,omitempty"`
	Salt               string      `json:"salt"`
	Recipient          string      `json:"recipient"`
	RecipientDataHash  string      `json:"recipientDataHash,omitempty"`
	Reason             string      `json:"reason,omitempty"`
}

// Authenticator carries an opaque signature over a state hash; the core
// never validates it cryptographically (spec.md §1 Non-goals).
type Authenticator struct {
	Algorithm string `json:"algorithm"`
	PublicKey string `json:"publicKey"`
	Signature string `json:"signature"`
	StateHash string `json:"stateHash"`
}

// MerkleTreePath is an opaque inclusion-proof path.
type MerkleTreePath struct {
	Root  string   `json:"root"`
	Steps []string `json:"steps"`
}

// InclusionProof is kept opaque: the core carries it, never verifies it.
type InclusionProof struct {
	Authenticator      Authenticator  `json:"authenticator"`
	MerkleTreePath     MerkleTreePath `json:"merkleTreePath"`
	TransactionHash    string         `json:"transactionHash"`
	UnicityCertificate string         `json:"unicityCertificate"`
}

// Genesis wraps the immutable genesis data with its inclusion proof.
type Genesis struct {
	Data           GenesisData     `json:"data"`
	InclusionProof *InclusionProof `json:"inclusionProof"`
}

// TokenState is the current predicate-guarded state of a token.
type TokenState struct {
	Data      any    `json:"data"`
	Predicate string `json:"predicate"`
}

// TxfTransaction is one link in a token's append-only history chain.
// InclusionProof == nil means "uncommitted" (pending aggregator signature).
type TxfTransaction struct {
	PreviousStateHash string          `json:"previousStateHash"`
	NewStateHash      string          `json:"newStateHash,omitempty"`
	Predicate         string          `json:"predicate"`
	InclusionProof    *InclusionProof `json:"inclusionProof"`
	Data              any             `json:"data,omitempty"`
}

// Integrity carries optional structural checksums recorded at write time.
type Integrity struct {
	GenesisDataJSONHash string `json:"genesisDataJSONHash"`
	CurrentStateHash    string `json:"currentStateHash,omitempty"`
}

// TxfToken is the canonical on-disk token representation (spec.md §3.1).
type TxfToken struct {
	Version      string           `json:"version"`
	Genesis      Genesis          `json:"genesis"`
	State        TokenState       `json:"state"`
	Transactions []TxfTransaction `json:"transactions"`
	Nametags     []string         `json:"nametags,omitempty"`
	Integrity    *Integrity       `json:"_integrity,omitempty"`
}

// TxfVersion is the only version this core understands.
const TxfVersion = "2.0"

// TokenStatus is the UI-facing lifecycle state of a display Token.
type TokenStatus string

const (
	StatusPending   TokenStatus = "pending"
	StatusConfirmed TokenStatus = "confirmed"
)

// Token is the display projection of a TxfToken (spec.md §3.1).
type Token struct {
	ID        string      `json:"id"`
	CoinID    string      `json:"coinId"`
	Symbol    string      `json:"symbol"`
	Name      string      `json:"name"`
	Decimals  int         `json:"decimals"`
	Amount    string      `json:"amount"`
	Status    TokenStatus `json:"status"`
	CreatedAt int64       `json:"createdAt"`
	UpdatedAt int64       `json:"updatedAt"`
	SDKData   TxfToken    `json:"sdkData"`
}

// Tombstone marks a (tokenId, stateHash) pair as retired forever.
type Tombstone struct {
	TokenID   string `json:"tokenId"`
	StateHash string `json:"stateHash"`
	Timestamp int64  `json:"timestamp"`
}

// OutboxStatus enumerates the lifecycle of a pending outgoing transfer.
type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "pending"
	OutboxSubmitted OutboxStatus = "submitted"
	OutboxConfirmed OutboxStatus = "confirmed"
	OutboxDelivered OutboxStatus = "delivered"
	OutboxFailed    OutboxStatus = "failed"
)

// OutboxEntry is a pending outgoing transfer (spec.md §3.1).
type OutboxEntry struct {
	ID               string       `json:"id"`
	Status           OutboxStatus `json:"status"`
	SourceTokenID    string       `json:"sourceTokenId"`
	Salt             string       `json:"salt"`
	CommitmentJSON   string       `json:"commitmentJson"`
	RecipientPubkey  string       `json:"recipientPubkey"`
	RecipientNametag string       `json:"recipientNametag,omitempty"`
	Amount           string       `json:"amount"`
	CreatedAt        int64        `json:"createdAt"`
	UpdatedAt        int64        `json:"updatedAt"`
	Error            string       `json:"error,omitempty"`
	RetryCount       int          `json:"retryCount,omitempty"`
}

// MintOutboxType enumerates the kinds of pending mint.
type MintOutboxType string

const (
	MintSplit  MintOutboxType = "split"
	MintFaucet MintOutboxType = "faucet"
	MintOther  MintOutboxType = "other"
)

// MintOutboxEntry is a pending mint request (spec.md §3.1).
type MintOutboxEntry struct {
	ID           string         `json:"id"`
	Status       OutboxStatus   `json:"status"`
	Type         MintOutboxType `json:"type"`
	Salt         string         `json:"salt"`
	RequestIDHex string         `json:"requestIdHex"`
	MintDataJSON string         `json:"mintDataJson"`
	CreatedAt    int64          `json:"createdAt"`
	UpdatedAt    int64          `json:"updatedAt"`
	Error        string         `json:"error,omitempty"`
}

// SentEntry records a token handed off to a recipient.
type SentEntry struct {
	TokenID   string `json:"tokenId"`
	Recipient string `json:"recipient"`
	TxHash    string `json:"txHash"`
	SentAt    int64  `json:"sentAt"`
}

// InvalidEntry records a token quarantined as invalid (double-spend, fork,
// or stale state, spec.md §1).
type InvalidEntry struct {
	TokenID    string `json:"tokenId"`
	Reason     string `json:"reason"`
	DetectedAt int64  `json:"detectedAt"`
}

// InvalidatedNametag records a nametag withdrawn by the registry.
type InvalidatedNametag struct {
	Name         string `json:"name"`
	InvalidatedAt int64 `json:"invalidatedAt"`
}

// StoreMeta is the `_meta` reserved record (spec.md §3.1).
type StoreMeta struct {
	Version       int    `json:"version"`
	Address       string `json:"address"`
	IPNSName      string `json:"ipnsName"`
	FormatVersion string `json:"formatVersion"`
	LastCID       string `json:"lastCid,omitempty"`
	DeviceID      string `json:"deviceId,omitempty"`
}

// StoreFormatVersion is the only container format version this core reads
// and writes.
const StoreFormatVersion = "2.0"
