package walletfile

import (
	"encoding/hex"
	"encoding/json"

	"github.com/sphere-wallet/wallet/core"
)

// JSONBackupVersion and JSONBackupType are the only values this codec
// accepts for the "version"/"type" fields (spec.md §6.1).
const (
	JSONBackupVersion = "1.0"
	JSONBackupType    = "sphere-wallet"
)

// JSONAddressEntry is one entry of wallet.addresses.
type JSONAddressEntry struct {
	Address   string `json:"address"`
	PublicKey string `json:"publicKey"`
	Path      string `json:"path"`
	Index     uint32 `json:"index"`
}

// JSONWalletSection is the "wallet" object of the JSON backup.
type JSONWalletSection struct {
	MasterPrivateKey string             `json:"masterPrivateKey,omitempty"`
	ChainCode        string             `json:"chainCode,omitempty"`
	Addresses        []JSONAddressEntry `json:"addresses"`
	IsBIP32          bool               `json:"isBIP32"`
	DescriptorPath   string             `json:"descriptorPath"`
}

// JSONBackup is the raw decoded shape of a "sphere-wallet" v1.0 JSON
// backup file (spec.md §6.1).
type JSONBackup struct {
	Version        string            `json:"version"`
	Type           string            `json:"type"`
	CreatedAt      string            `json:"createdAt"`
	Wallet         JSONWalletSection `json:"wallet"`
	Mnemonic       string            `json:"mnemonic,omitempty"`
	Encrypted      bool              `json:"encrypted"`
	Source         string            `json:"source"`
	DerivationMode string            `json:"derivationMode"`
}

// LooksLikeJSONBackup reports whether content parses as JSON carrying the
// expected version/type discriminators (spec.md §4.6 detection).
func LooksLikeJSONBackup(content []byte) bool {
	var probe struct {
		Version string `json:"version"`
		Type    string `json:"type"`
	}
	if err := json.Unmarshal(content, &probe); err != nil {
		return false
	}
	return probe.Version == JSONBackupVersion && probe.Type == JSONBackupType
}

// ParseJSONBackup decodes content into a JSONBackup and, if encrypted,
// decrypts the mnemonic or master-private-key field using the structured
// envelope (spec.md §4.2). Mnemonic takes precedence over master key when
// both are present (spec.md §6.1 "Import preference").
func ParseJSONBackup(content []byte, password string) (LegacyWallet, string, error) {
	var backup JSONBackup
	if err := json.Unmarshal(content, &backup); err != nil {
		return LegacyWallet{}, "", core.WrapError(core.ErrUnknownFileFormat, "decode JSON backup", err)
	}
	if backup.Version != JSONBackupVersion || backup.Type != JSONBackupType {
		return LegacyWallet{}, "", core.NewError(core.ErrUnknownFileFormat, "unrecognised JSON backup version/type")
	}

	if backup.Mnemonic != "" {
		mnemonic := backup.Mnemonic
		if backup.Encrypted {
			if password == "" {
				return LegacyWallet{}, "", core.NewError(core.ErrNeedsPassword, "encrypted JSON backup requires a password")
			}
			plain, err := decryptJSONField(mnemonic, password)
			if err != nil {
				return LegacyWallet{}, "", err
			}
			mnemonic = string(plain)
		}
		return LegacyWallet{}, mnemonic, nil
	}

	if backup.Wallet.MasterPrivateKey == "" {
		return LegacyWallet{}, "", core.NewError(core.ErrUnknownFileFormat, "JSON backup has neither mnemonic nor master key")
	}
	keyMaterial := backup.Wallet.MasterPrivateKey
	if backup.Encrypted {
		if password == "" {
			return LegacyWallet{}, "", core.NewError(core.ErrNeedsPassword, "encrypted JSON backup requires a password")
		}
		plain, err := decryptJSONField(keyMaterial, password)
		if err != nil {
			return LegacyWallet{}, "", err
		}
		keyMaterial = string(plain)
	}

	masterKey, err := decodeHexKey(keyMaterial)
	if err != nil {
		return LegacyWallet{}, "", err
	}
	wallet := LegacyWallet{MasterKey: masterKey, DescriptorPath: backup.Wallet.DescriptorPath}
	if backup.Wallet.ChainCode != "" {
		cc, err := decodeHexKey(backup.Wallet.ChainCode)
		if err != nil {
			return LegacyWallet{}, "", err
		}
		wallet.ChainCode = cc
		wallet.HasChainCode = true
		wallet.DerivationMode = DerivationBIP32
	} else {
		wallet.DerivationMode = DerivationWifHMAC
	}
	return wallet, "", nil
}

// decryptJSONField parses a structured-envelope JSON string (spec.md
// §4.2/§6.1: "structured envelopes serialised as JSON strings") and
// decrypts it.
func decryptJSONField(serializedEnvelope, password string) ([]byte, error) {
	var env core.EncryptedEnvelope
	if err := json.Unmarshal([]byte(serializedEnvelope), &env); err != nil {
		return nil, core.WrapError(core.ErrDecryptionFailed, "decode encrypted field envelope", err)
	}
	return core.DecryptStructured(env, password)
}

func decodeHexKey(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, core.WrapError(core.ErrInvalidKeyMaterial, "decode hex key", err)
	}
	if len(b) != 32 {
		return out, core.NewError(core.ErrInvalidKeyMaterial, "key material is not 32 bytes")
	}
	copy(out[:], b)
	return out, nil
}
