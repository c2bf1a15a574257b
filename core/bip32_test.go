package core

import (
	"strings"
	"testing"
)

func TestMasterFromSeedRejectsBadLength(t *testing.T) {
	if _, err := MasterFromSeed(make([]byte, 8)); err == nil {
		t.Fatal("expected error for too-short seed")
	}
	if _, err := MasterFromSeed(make([]byte, 65)); err == nil {
		t.Fatal("expected error for too-long seed")
	}
}

func TestMasterFromSeedDeterministic(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}
	m1, err := MasterFromSeed(seed)
	if err != nil {
		t.Fatalf("MasterFromSeed failed: %v", err)
	}
	m2, err := MasterFromSeed(seed)
	if err != nil {
		t.Fatalf("MasterFromSeed failed: %v", err)
	}
	if m1.PrivateKey != m2.PrivateKey || m1.ChainCode != m2.ChainCode {
		t.Fatal("MasterFromSeed is not deterministic for identical seeds")
	}
}

func TestParsePathHardenedMarkers(t *testing.T) {
	segs, err := ParsePath("m/44'/0'/0'/0/5")
	if err != nil {
		t.Fatalf("ParsePath failed: %v", err)
	}
	if len(segs) != 5 {
		t.Fatalf("got %d segments, want 5", len(segs))
	}
	if !segs[0].Hardened || segs[0].Index != 44+HardenedOffset {
		t.Fatalf("segment 0 = %+v, want hardened 44", segs[0])
	}
	if segs[4].Hardened || segs[4].Index != 5 {
		t.Fatalf("segment 4 = %+v, want non-hardened 5", segs[4])
	}

	segsH, err := ParsePath("m/44h/0H")
	if err != nil {
		t.Fatalf("ParsePath with h marker failed: %v", err)
	}
	if !segsH[0].Hardened || !segsH[1].Hardened {
		t.Fatal("'h'/'H' markers must be treated as hardened")
	}
}

func TestParsePathRejectsBadRoot(t *testing.T) {
	if _, err := ParsePath("x/0"); err == nil {
		t.Fatal("expected error for path not rooted at m")
	}
}

func TestDeriveAtPathDeterministicAndDistinctFromParent(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i * 3)
	}
	root, err := MasterFromSeed(seed)
	if err != nil {
		t.Fatalf("MasterFromSeed failed: %v", err)
	}

	child1, err := DeriveAtPath(root, "m/44'/0'/0'/0/0")
	if err != nil {
		t.Fatalf("DeriveAtPath failed: %v", err)
	}
	child2, err := DeriveAtPath(root, "m/44'/0'/0'/0/0")
	if err != nil {
		t.Fatalf("DeriveAtPath failed: %v", err)
	}
	if child1.PrivateKey != child2.PrivateKey {
		t.Fatal("DeriveAtPath is not deterministic for the same path")
	}
	if child1.PrivateKey == root.PrivateKey {
		t.Fatal("derived child key must differ from the root key")
	}

	sibling, err := DeriveAtPath(root, "m/44'/0'/0'/0/1")
	if err != nil {
		t.Fatalf("DeriveAtPath failed: %v", err)
	}
	if sibling.PrivateKey == child1.PrivateKey {
		t.Fatal("distinct indices must derive distinct keys")
	}
}

func TestGetPublicKeyCompressedAndUncompressed(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	root, err := MasterFromSeed(seed)
	if err != nil {
		t.Fatalf("MasterFromSeed failed: %v", err)
	}
	compressed, err := GetPublicKey(root.PrivateKey, true)
	if err != nil {
		t.Fatalf("GetPublicKey(compressed) failed: %v", err)
	}
	if len(compressed) != 33 {
		t.Fatalf("compressed pubkey length = %d, want 33", len(compressed))
	}
	uncompressed, err := GetPublicKey(root.PrivateKey, false)
	if err != nil {
		t.Fatalf("GetPublicKey(uncompressed) failed: %v", err)
	}
	if len(uncompressed) != 65 {
		t.Fatalf("uncompressed pubkey length = %d, want 65", len(uncompressed))
	}
}

func TestGetPublicKeyRejectsZeroKey(t *testing.T) {
	var zero [32]byte
	if _, err := GetPublicKey(zero, true); err == nil {
		t.Fatal("expected error for zero private key")
	}
}

// TestDeriveAtPathS1AddressHasAlphaPrefix pins spec.md §8 S1: deriving
// m/44'/0'/0'/0/0 from the official BIP-39 vector's seed must yield an
// address beginning with "alpha1".
func TestDeriveAtPathS1AddressHasAlphaPrefix(t *testing.T) {
	mnemonic := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	seed, err := MnemonicToSeed(mnemonic, "TREZOR")
	if err != nil {
		t.Fatalf("MnemonicToSeed failed: %v", err)
	}
	root, err := MasterFromSeed(seed)
	if err != nil {
		t.Fatalf("MasterFromSeed failed: %v", err)
	}
	leaf, err := DeriveAtPath(root, "m/44'/0'/0'/0/0")
	if err != nil {
		t.Fatalf("DeriveAtPath failed: %v", err)
	}
	pub, err := GetPublicKey(leaf.PrivateKey, true)
	if err != nil {
		t.Fatalf("GetPublicKey failed: %v", err)
	}
	addr, err := publicKeyToAddress(pub, DefaultAddressPrefix)
	if err != nil {
		t.Fatalf("publicKeyToAddress failed: %v", err)
	}
	if !strings.HasPrefix(addr, "alpha1") {
		t.Fatalf("address = %q, want alpha1 prefix", addr)
	}
}
