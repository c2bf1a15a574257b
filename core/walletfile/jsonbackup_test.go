package walletfile

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sphere-wallet/wallet/core"
)

func TestLooksLikeJSONBackupRequiresVersionAndType(t *testing.T) {
	if LooksLikeJSONBackup([]byte(`{"version":"1.0","type":"sphere-wallet"}`)) != true {
		t.Fatal("matching version/type must be recognized")
	}
	if LooksLikeJSONBackup([]byte(`{"version":"2.0","type":"sphere-wallet"}`)) {
		t.Fatal("mismatched version must not be recognized")
	}
	if LooksLikeJSONBackup([]byte("not json")) {
		t.Fatal("non-JSON content must not be recognized")
	}
}

func TestParseJSONBackupPlainMnemonic(t *testing.T) {
	backup := JSONBackup{
		Version:  JSONBackupVersion,
		Type:     JSONBackupType,
		Mnemonic: "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about",
		Source:   "mnemonic",
	}
	raw, err := json.Marshal(backup)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	_, mnemonic, err := ParseJSONBackup(raw, "")
	if err != nil {
		t.Fatalf("ParseJSONBackup failed: %v", err)
	}
	if mnemonic != backup.Mnemonic {
		t.Fatalf("mnemonic = %q, want %q", mnemonic, backup.Mnemonic)
	}
}

func TestParseJSONBackupPlainMasterKeyWithChainCode(t *testing.T) {
	keyHex := "ab1234cd" + strings.Repeat("00", 28)
	chainHex := "cd1234ab" + strings.Repeat("00", 28)
	backup := JSONBackup{
		Version: JSONBackupVersion,
		Type:    JSONBackupType,
		Wallet: JSONWalletSection{
			MasterPrivateKey: keyHex,
			ChainCode:        chainHex,
		},
	}
	raw, _ := json.Marshal(backup)
	wallet, mnemonic, err := ParseJSONBackup(raw, "")
	if err != nil {
		t.Fatalf("ParseJSONBackup failed: %v", err)
	}
	if mnemonic != "" {
		t.Fatalf("expected no mnemonic, got %q", mnemonic)
	}
	if !wallet.HasChainCode || wallet.DerivationMode != DerivationBIP32 {
		t.Fatalf("expected bip32 derivation mode with chain code, got %+v", wallet)
	}
}

func TestParseJSONBackupEncryptedRequiresPassword(t *testing.T) {
	backup := JSONBackup{
		Version:   JSONBackupVersion,
		Type:      JSONBackupType,
		Mnemonic:  `{"ciphertext":"aa","iv":"bb","salt":"cc","algorithm":"aes-256-cbc","kdf":"pbkdf2","iterations":100000}`,
		Encrypted: true,
	}
	raw, _ := json.Marshal(backup)
	if _, _, err := ParseJSONBackup(raw, ""); err == nil {
		t.Fatal("expected ErrNeedsPassword for an encrypted backup with no password")
	} else if kind, ok := core.KindOf(err); !ok || kind != core.ErrNeedsPassword {
		t.Fatalf("got error kind %v, want ErrNeedsPassword", kind)
	}
}

func TestParseJSONBackupEncryptedMnemonicRoundTrip(t *testing.T) {
	plaintext := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	env, err := core.EncryptStructured([]byte(plaintext), "secret", 0)
	if err != nil {
		t.Fatalf("EncryptStructured: %v", err)
	}
	envJSON, _ := json.Marshal(env)
	backup := JSONBackup{
		Version:   JSONBackupVersion,
		Type:      JSONBackupType,
		Mnemonic:  string(envJSON),
		Encrypted: true,
	}
	raw, _ := json.Marshal(backup)
	_, mnemonic, err := ParseJSONBackup(raw, "secret")
	if err != nil {
		t.Fatalf("ParseJSONBackup failed: %v", err)
	}
	if mnemonic != plaintext {
		t.Fatalf("mnemonic = %q, want %q", mnemonic, plaintext)
	}
}

func TestParseJSONBackupRejectsWrongVersion(t *testing.T) {
	raw := []byte(`{"version":"0.9","type":"sphere-wallet"}`)
	if _, _, err := ParseJSONBackup(raw, ""); err == nil {
		t.Fatal("expected error for mismatched backup version")
	}
}

func TestParseJSONBackupRequiresMnemonicOrMasterKey(t *testing.T) {
	raw := []byte(`{"version":"1.0","type":"sphere-wallet"}`)
	if _, _, err := ParseJSONBackup(raw, ""); err == nil {
		t.Fatal("expected error when neither mnemonic nor master key is present")
	}
}
