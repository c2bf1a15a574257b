package core

// Identity entities (spec.md §3.1).

// DerivedAddress is one derivation-path leaf: a private key, its
// compressed public key, bech32 address, full path, and index.
type DerivedAddress struct {
	PrivateKey [32]byte
	PublicKey  []byte // 33B compressed
	Address    string // bech32
	Path       string
	Index      uint32
}

// Identity is the active wallet identity: the key material at the
// current address index plus its network-facing handles.
type Identity struct {
	PrivateKey    [32]byte
	ChainPubkey   []byte // 33B compressed
	L1Address     string // bech32
	DirectAddress string // "DIRECT://<hex>"
	IPNSName      string
	Nametag       string // primary nametag, empty if none registered
}

// nametagPattern is the validation regex for registerNametag (spec.md §4.9).
const nametagPattern = `^[A-Za-z0-9_-]{3,20}$`
