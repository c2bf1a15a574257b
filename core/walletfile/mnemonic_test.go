package walletfile

import (
	"testing"

	"github.com/sphere-wallet/wallet/core"
)

func validMnemonic(t *testing.T) string {
	t.Helper()
	m, err := core.GenerateMnemonic(128)
	if err != nil {
		t.Fatalf("GenerateMnemonic failed: %v", err)
	}
	return m
}

func TestParseMnemonicTextAcceptsValidPhrase(t *testing.T) {
	m := validMnemonic(t)
	got, err := ParseMnemonicText(" " + m + "\n")
	if err != nil {
		t.Fatalf("ParseMnemonicText failed: %v", err)
	}
	if got != m {
		t.Fatalf("ParseMnemonicText = %q, want %q", got, m)
	}
}

func TestParseMnemonicTextRejectsWrongWordCount(t *testing.T) {
	if _, err := ParseMnemonicText("just a few words here"); err == nil {
		t.Fatal("expected error for a phrase with neither 12 nor 24 words")
	}
}

func TestParseMnemonicTextRejectsBadChecksum(t *testing.T) {
	bogus := ""
	for i := 0; i < 12; i++ {
		bogus += "abandon "
	}
	if _, err := ParseMnemonicText(bogus); err == nil {
		t.Fatal("expected error for a phrase failing the BIP-39 checksum")
	}
}

func TestParseMnemonicTextRejectsNonAlphaWords(t *testing.T) {
	bad := "abandon2 abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	if _, err := ParseMnemonicText(bad); err == nil {
		t.Fatal("expected error for a word containing a digit")
	}
}
