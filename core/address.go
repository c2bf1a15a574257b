package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

// DefaultAddressPrefix is the bech32 human-readable part used when none is
// configured explicitly (spec.md §3.1).
const DefaultAddressPrefix = "alpha"

// Address is a 20-byte hash160 (ripemd160(sha256(pubkey))) account
// identifier, mirroring the teacher's core.Address shape but encoded as
// bech32 rather than raw hex for display.
type Address [20]byte

// Hex returns the 0x-prefixed hex form, useful for logs and internal keys.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// Short returns a truncated hex form (first 4 + last 4 hex chars).
func (a Address) Short() string {
	full := hex.EncodeToString(a[:])
	if len(full) <= 8 {
		return full
	}
	return fmt.Sprintf("%s..%s", full[:4], full[len(full)-4:])
}

// Bech32 encodes the address as a witness-v0 bech32 string under prefix.
func (a Address) Bech32(prefix string) (string, error) {
	if prefix == "" {
		prefix = DefaultAddressPrefix
	}
	converted, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		return "", WrapError(ErrInvalidKeyMaterial, "convert address bits", err)
	}
	data := append([]byte{0}, converted...)
	encoded, err := bech32.Encode(prefix, data)
	if err != nil {
		return "", WrapError(ErrInvalidKeyMaterial, "bech32 encode address", err)
	}
	return encoded, nil
}

// DecodeBech32Address parses a witness-v0 bech32 address back into its
// 20-byte hash160 payload, verifying the human-readable prefix matches.
func DecodeBech32Address(addr, wantPrefix string) (Address, error) {
	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return Address{}, WrapError(ErrInvalidKeyMaterial, "bech32 decode", err)
	}
	if wantPrefix != "" && hrp != wantPrefix {
		return Address{}, NewError(ErrInvalidKeyMaterial, "address prefix mismatch: "+hrp)
	}
	if len(data) < 1 {
		return Address{}, NewError(ErrInvalidKeyMaterial, "empty bech32 payload")
	}
	payload, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return Address{}, WrapError(ErrInvalidKeyMaterial, "convert address bits", err)
	}
	if len(payload) != 20 {
		return Address{}, NewError(ErrInvalidKeyMaterial, "unexpected hash160 length")
	}
	var out Address
	copy(out[:], payload)
	return out, nil
}

// pubKeyToAddress hashes a compressed public key into a 20-byte account
// address using the standard hash160 = ripemd160(sha256(pub)) scheme.
func pubKeyToAddress(pub []byte) Address {
	var out Address
	copy(out[:], btcutil.Hash160(pub))
	return out
}

// publicKeyToAddress hashes pub to a hash160 and bech32-encodes it under
// prefix in one step (spec.md §4.1 "publicKeyToAddress(pk, prefix)").
func publicKeyToAddress(pub []byte, prefix string) (string, error) {
	return pubKeyToAddress(pub).Bech32(prefix)
}

// directAddress derives the opaque "DIRECT://<hex>" identifier described in
// spec.md §3.1: the network's predicate-reference hashing applied to
// (tokenType, publicKey, SHA-256), stringified. The core treats the
// predicate-reference algorithm itself as an external primitive and only
// reproduces its SHA-256(tokenType || publicKey) input shape here.
func directAddress(tokenType [32]byte, pub []byte) string {
	h := sha256.New()
	h.Write(tokenType[:])
	h.Write(pub)
	return "DIRECT://" + hex.EncodeToString(h.Sum(nil))
}

// ipnsName derives the opaque content-store pointer name described in the
// GLOSSARY: "12D3KooW" + sha256(publicKey)[0..40 hex chars].
func ipnsName(pub []byte) string {
	sum := sha256.Sum256(pub)
	return "12D3KooW" + hex.EncodeToString(sum[:])[:40]
}
