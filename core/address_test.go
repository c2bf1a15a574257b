package core

import (
	"strings"
	"testing"
)

func TestAddressBech32RoundTrip(t *testing.T) {
	var a Address
	for i := range a {
		a[i] = byte(i)
	}
	encoded, err := a.Bech32("alpha")
	if err != nil {
		t.Fatalf("Bech32 encode failed: %v", err)
	}
	if !strings.HasPrefix(encoded, "alpha1") {
		t.Fatalf("encoded address %q does not carry the alpha prefix", encoded)
	}
	decoded, err := DecodeBech32Address(encoded, "alpha")
	if err != nil {
		t.Fatalf("DecodeBech32Address failed: %v", err)
	}
	if decoded != a {
		t.Fatalf("round trip mismatch: got %x want %x", decoded, a)
	}
}

func TestDecodeBech32AddressRejectsWrongPrefix(t *testing.T) {
	var a Address
	encoded, err := a.Bech32("alpha")
	if err != nil {
		t.Fatalf("Bech32 encode failed: %v", err)
	}
	if _, err := DecodeBech32Address(encoded, "beta"); err == nil {
		t.Fatal("expected error decoding an address under the wrong prefix")
	}
}

func TestAddressHexAndShort(t *testing.T) {
	var a Address
	for i := range a {
		a[i] = 0xAB
	}
	if got := a.Hex(); got != "0x"+strings.Repeat("ab", 20) {
		t.Fatalf("Hex() = %q", got)
	}
	short := a.Short()
	if !strings.Contains(short, "..") {
		t.Fatalf("Short() = %q, expected a truncated form", short)
	}
}

func TestPublicKeyToAddressProducesBech32(t *testing.T) {
	pub := make([]byte, 33)
	pub[0] = 0x02
	for i := 1; i < 33; i++ {
		pub[i] = byte(i)
	}
	addr, err := publicKeyToAddress(pub, "alpha")
	if err != nil {
		t.Fatalf("publicKeyToAddress failed: %v", err)
	}
	if !strings.HasPrefix(addr, "alpha1") {
		t.Fatalf("address %q missing alpha prefix", addr)
	}
}

func TestDirectAddressDeterministic(t *testing.T) {
	var tokenType [32]byte
	pub := []byte{1, 2, 3}
	a1 := directAddress(tokenType, pub)
	a2 := directAddress(tokenType, pub)
	if a1 != a2 {
		t.Fatal("directAddress must be deterministic for identical inputs")
	}
	if !strings.HasPrefix(a1, "DIRECT://") {
		t.Fatalf("directAddress = %q, want DIRECT:// prefix", a1)
	}
}

func TestIPNSNameFormat(t *testing.T) {
	pub := []byte{9, 9, 9}
	name := ipnsName(pub)
	if !strings.HasPrefix(name, "12D3KooW") {
		t.Fatalf("ipnsName = %q, want 12D3KooW prefix", name)
	}
	if len(name) != len("12D3KooW")+40 {
		t.Fatalf("ipnsName length = %d, want %d", len(name), len("12D3KooW")+40)
	}
}
