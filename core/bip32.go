package core

// BIP-32 hierarchical-deterministic derivation over secp256k1.
//
// Unlike the teacher's ed25519/SLIP-0010 wallet (which only supports
// hardened children), secp256k1 supports non-hardened derivation too, so
// the child formula below branches on the index the way the BIP-32
// standard does. Key arithmetic is delegated to
// github.com/decred/dcrd/dcrec/secp256k1/v4, the same curve package the
// teacher already carries as an indirect dependency.

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"strconv"
	"strings"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// HardenedOffset is the index at and above which BIP-32 children are
// "hardened" (derived from the parent private key rather than its public
// key alone).
const HardenedOffset uint32 = 0x80000000

// masterHMACKey is the fixed BIP-32 master-key derivation key.
const masterHMACKey = "Bitcoin seed"

// DefaultBasePath is the default account-level derivation path (spec.md
// §4.1): m/44'/0'/0'. Receiving chain = 0, change chain = 1.
const DefaultBasePath = "m/44'/0'/0'"

// MasterKey is the root of a derivation tree: a 32-byte private key and a
// 32-byte chain code, produced either from a BIP-39 seed or supplied
// directly (spec.md §3.1 seed material option (b)).
type MasterKey struct {
	PrivateKey [32]byte
	ChainCode  [32]byte
}

// MasterFromSeed performs the standard BIP-32 "Bitcoin seed" HMAC-SHA512
// split: left half becomes the private key, right half the chain code.
// Fails if the resulting private key is zero or >= the curve order.
func MasterFromSeed(seed []byte) (MasterKey, error) {
	if len(seed) < 16 || len(seed) > 64 {
		return MasterKey{}, NewError(ErrInvalidKeyMaterial, "seed must be 16-64 bytes")
	}
	sum := hmacSHA512([]byte(masterHMACKey), seed)
	return newMasterKey(sum[:32], sum[32:])
}

// NewMasterKey validates and wraps an explicit (privateKey, chainCode)
// pair, the "32-byte master private key with optional chain code" seed
// material option. When chainCode is nil a zero chain code is used; the
// resulting wallet still derives deterministically but is not compatible
// with other BIP-32 implementations (this mirrors legacy wallets that
// store a bare private key with no derivation tree, §4.6 "wif_hmac" mode).
func NewMasterKey(privateKey, chainCode []byte) (MasterKey, error) {
	return newMasterKey(privateKey, chainCode)
}

func newMasterKey(privateKey, chainCode []byte) (MasterKey, error) {
	if len(privateKey) != 32 {
		return MasterKey{}, NewError(ErrInvalidKeyMaterial, "private key must be 32 bytes")
	}
	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(privateKey); overflow || scalar.IsZero() {
		return MasterKey{}, NewError(ErrInvalidKeyMaterial, "private key out of range")
	}
	var mk MasterKey
	copy(mk.PrivateKey[:], privateKey)
	if len(chainCode) == 0 {
		// zero chain code: deterministic but non-standard, see NewMasterKey doc.
	} else if len(chainCode) != 32 {
		return MasterKey{}, NewError(ErrInvalidKeyMaterial, "chain code must be 32 bytes")
	} else {
		copy(mk.ChainCode[:], chainCode)
	}
	return mk, nil
}

// hmacSHA512 is a small helper kept close to the teacher's own
// hmacSHA512 in core/wallet.go, generalised to any key/data pair.
func hmacSHA512(key, data []byte) []byte {
	h := hmac.New(sha512.New, key)
	h.Write(data)
	return h.Sum(nil)
}

// deriveChild computes the BIP-32 child of (parentKey, parentChain) at the
// given index, branching on hardened vs non-hardened per the standard.
func deriveChild(parentKey, parentChain [32]byte, index uint32) (MasterKey, error) {
	var parentScalar secp256k1.ModNScalar
	if overflow := parentScalar.SetByteSlice(parentKey[:]); overflow {
		return MasterKey{}, NewError(ErrInvalidKeyMaterial, "parent key out of range")
	}

	data := make([]byte, 0, 37)
	if index >= HardenedOffset {
		data = append(data, 0x00)
		data = append(data, parentKey[:]...)
	} else {
		parentPriv := secp256k1.NewPrivateKey(&parentScalar)
		data = append(data, parentPriv.PubKey().SerializeCompressed()...)
	}
	idxBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(idxBuf, index)
	data = append(data, idxBuf...)

	sum := hmacSHA512(parentChain[:], data)
	il, ir := sum[:32], sum[32:]

	var ilScalar secp256k1.ModNScalar
	if overflow := ilScalar.SetByteSlice(il); overflow {
		return MasterKey{}, NewError(ErrInvalidKeyMaterial, "derived IL out of range")
	}
	childScalar := ilScalar.Add(&parentScalar)
	if childScalar.IsZero() {
		return MasterKey{}, NewError(ErrInvalidKeyMaterial, "derived child key is zero")
	}

	var mk MasterKey
	childBytes := childScalar.Bytes()
	copy(mk.PrivateKey[:], childBytes[:])
	copy(mk.ChainCode[:], ir)
	return mk, nil
}

// DerivationPathSegment is one "a" or "a'" component of a parsed path.
type DerivationPathSegment struct {
	Index    uint32
	Hardened bool
}

// ParsePath parses a path of the shape "m/(a|a')(/b|/b')*". Both "'" and
// "h" are accepted as hardened markers (case-insensitive), and the "m/"
// root is matched case-insensitively (spec.md §4.1 derivation tie-breaks).
func ParsePath(path string) ([]DerivationPathSegment, error) {
	trimmed := strings.TrimSpace(path)
	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "m") {
		return nil, NewError(ErrUnknownPath, "path must start with m")
	}
	rest := trimmed[1:]
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		return nil, nil
	}
	parts := strings.Split(rest, "/")
	segments := make([]DerivationPathSegment, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			return nil, NewError(ErrUnknownPath, "empty path segment")
		}
		seg, err := parseSegment(p)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func parseSegment(p string) (DerivationPathSegment, error) {
	hardened := false
	numeric := p
	last := p[len(p)-1]
	switch last {
	case '\'', 'h', 'H':
		hardened = true
		numeric = p[:len(p)-1]
	}
	n, err := strconv.ParseUint(numeric, 10, 32)
	if err != nil {
		return DerivationPathSegment{}, WrapError(ErrUnknownPath, "invalid segment "+p, err)
	}
	if n >= uint64(HardenedOffset) {
		return DerivationPathSegment{}, NewError(ErrUnknownPath, "segment index too large: "+p)
	}
	idx := uint32(n)
	if hardened {
		idx += HardenedOffset
	}
	return DerivationPathSegment{Index: idx, Hardened: hardened}, nil
}

// DeriveAtPath walks root through every segment of path, failing
// deterministically (no partial state, spec.md §3.3 invariant 7) the
// instant any step fails.
func DeriveAtPath(root MasterKey, path string) (MasterKey, error) {
	segments, err := ParsePath(path)
	if err != nil {
		return MasterKey{}, err
	}
	cur := root
	for _, seg := range segments {
		cur, err = deriveChild(cur.PrivateKey, cur.ChainCode, seg.Index)
		if err != nil {
			return MasterKey{}, err
		}
	}
	return cur, nil
}

// GetPublicKey returns the secp256k1 public key for a private key, in
// compressed (33-byte) or uncompressed (65-byte) form.
func GetPublicKey(privateKey [32]byte, compressed bool) ([]byte, error) {
	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(privateKey[:]); overflow || scalar.IsZero() {
		return nil, NewError(ErrInvalidKeyMaterial, "private key out of range")
	}
	priv := secp256k1.NewPrivateKey(&scalar)
	pub := priv.PubKey()
	if compressed {
		return pub.SerializeCompressed(), nil
	}
	return pub.SerializeUncompressed(), nil
}
