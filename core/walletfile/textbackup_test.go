package walletfile

import (
	"crypto/aes"
	"crypto/cipher"
	crand "crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"io"
	"strings"
	"testing"

	"golang.org/x/crypto/pbkdf2"

	"github.com/sphere-wallet/wallet/core"
)

func TestLooksLikeTextBackupRequiresMarkerAndKeyLine(t *testing.T) {
	if LooksLikeTextBackup("just some text") {
		t.Fatal("content without the marker must not be recognized")
	}
	if !LooksLikeTextBackup(UnicityWalletDetailsMarker + "\nMASTER PRIVATE KEY: aa") {
		t.Fatal("content with marker and key line must be recognized")
	}
}

func TestParseTextBackupPlainMasterKey(t *testing.T) {
	keyHex := strings.Repeat("ab", 32)
	content := UnicityWalletDetailsMarker + "\nMASTER PRIVATE KEY: " + keyHex + "\n"
	wallet, err := ParseTextBackup(content, "")
	if err != nil {
		t.Fatalf("ParseTextBackup failed: %v", err)
	}
	want, _ := hex.DecodeString(keyHex)
	if hex.EncodeToString(wallet.MasterKey[:]) != hex.EncodeToString(want) {
		t.Fatalf("master key mismatch: got %x want %x", wallet.MasterKey, want)
	}
	if wallet.DerivationMode != DerivationWifHMAC {
		t.Fatalf("derivation mode = %q, want %q (no chain code present)", wallet.DerivationMode, DerivationWifHMAC)
	}
}

func TestParseTextBackupWithChainCodeDefaultsDescriptorPath(t *testing.T) {
	keyHex := strings.Repeat("ab", 32)
	chainHex := strings.Repeat("cd", 32)
	content := UnicityWalletDetailsMarker + "\nMASTER PRIVATE KEY: " + keyHex + "\nMASTER CHAIN CODE: " + chainHex + "\n"
	wallet, err := ParseTextBackup(content, "")
	if err != nil {
		t.Fatalf("ParseTextBackup failed: %v", err)
	}
	if !wallet.HasChainCode {
		t.Fatal("expected HasChainCode to be true")
	}
	if wallet.DerivationMode != DerivationBIP32 {
		t.Fatalf("derivation mode = %q, want %q", wallet.DerivationMode, DerivationBIP32)
	}
	if wallet.DescriptorPath != DefaultTxtDescriptorPath {
		t.Fatalf("descriptor path = %q, want default %q", wallet.DescriptorPath, DefaultTxtDescriptorPath)
	}
}

func TestParseTextBackupEncryptedRequiresPassword(t *testing.T) {
	content := UnicityWalletDetailsMarker + "\nENCRYPTED MASTER KEY: aGVsbG8=\n"
	if _, err := ParseTextBackup(content, ""); err == nil {
		t.Fatal("expected ErrNeedsPassword when no password is supplied")
	} else if kind, ok := core.KindOf(err); !ok || kind != core.ErrNeedsPassword {
		t.Fatalf("got error kind %v, want ErrNeedsPassword", kind)
	}
}

func TestParseTextBackupEncryptedRoundTrip(t *testing.T) {
	plaintext := make([]byte, 32)
	for i := range plaintext {
		plaintext[i] = byte(i)
	}
	blob, err := encryptLegacyForTest(plaintext, "mypassword")
	if err != nil {
		t.Fatalf("encryptLegacyForTest failed: %v", err)
	}
	content := UnicityWalletDetailsMarker + "\nENCRYPTED MASTER KEY: " + blob + "\n"
	wallet, err := ParseTextBackup(content, "mypassword")
	if err != nil {
		t.Fatalf("ParseTextBackup failed: %v", err)
	}
	if hex.EncodeToString(wallet.MasterKey[:]) != hex.EncodeToString(plaintext) {
		t.Fatalf("decrypted master key mismatch")
	}
}

func TestParseTextBackupEncryptedWrongPassword(t *testing.T) {
	plaintext := make([]byte, 32)
	for i := range plaintext {
		plaintext[i] = byte(i + 1)
	}
	blob, err := encryptLegacyForTest(plaintext, "mypassword")
	if err != nil {
		t.Fatalf("encryptLegacyForTest failed: %v", err)
	}
	content := UnicityWalletDetailsMarker + "\nENCRYPTED MASTER KEY: " + blob + "\n"
	wallet, err := ParseTextBackup(content, "wrongpassword")
	if err == nil && hex.EncodeToString(wallet.MasterKey[:]) == hex.EncodeToString(plaintext) {
		t.Fatal("wrong password must not recover the original master key")
	}
}

func TestParseTextBackupMissingMarkerFails(t *testing.T) {
	if _, err := ParseTextBackup("no marker here", ""); err == nil {
		t.Fatal("expected error for content missing the UNICITY WALLET DETAILS marker")
	}
}

// encryptLegacyForTest mirrors core.DecryptLegacyTxt's scheme (PBKDF2-HMAC-SHA1
// over the fixed legacy salt, AES-256-CBC with an iv(16)||ciphertext layout),
// duplicated here since the core package only exports the decrypt direction
// for this legacy format (spec.md §6.3: "the core does not write .dat files",
// and by extension never re-encrypts legacy .txt backups either).
func encryptLegacyForTest(plaintext []byte, password string) (string, error) {
	key := pbkdf2.Key([]byte(password), []byte(core.LegacyTxtSalt), core.LegacyTxtIterations, 32, sha1.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(crand.Reader, iv); err != nil {
		return "", err
	}
	padLen := aes.BlockSize - len(plaintext)%aes.BlockSize
	padded := append(append([]byte(nil), plaintext...), bytesRepeat(byte(padLen), padLen)...)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)
	return base64.StdEncoding.EncodeToString(append(iv, ct...)), nil
}

func bytesRepeat(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}
