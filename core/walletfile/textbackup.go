package walletfile

import (
	"encoding/hex"
	"strings"

	"github.com/sphere-wallet/wallet/core"
)

// UnicityWalletDetailsMarker is the banner the ".txt" backup format must
// contain for DetectLegacyFileType to recognise it (spec.md §4.6).
const UnicityWalletDetailsMarker = "UNICITY WALLET DETAILS"

// DefaultTxtDescriptorPath is used when a ".txt" backup carries a chain
// code but no explicit "DESCRIPTOR PATH" line (spec.md §4.6).
const DefaultTxtDescriptorPath = "84'/1'/0'"

// LegacyWallet is the result of parsing a ".txt" or ".dat" legacy backup:
// a master key with an optional chain code and descriptor path.
type LegacyWallet struct {
	MasterKey      [32]byte
	ChainCode      [32]byte
	HasChainCode   bool
	DescriptorPath string
	DerivationMode string // "bip32" or "wif_hmac"
}

const (
	DerivationBIP32   = "bip32"
	DerivationWifHMAC = "wif_hmac"
)

// LooksLikeTextBackup reports whether content sniffs as a ".txt" backup:
// it contains the UNICITY WALLET DETAILS marker and at least one of the
// two key lines (spec.md §4.6 detection rule).
func LooksLikeTextBackup(content string) bool {
	if !strings.Contains(content, UnicityWalletDetailsMarker) {
		return false
	}
	return strings.Contains(content, "MASTER PRIVATE KEY") || strings.Contains(content, "ENCRYPTED MASTER KEY")
}

// ParseTextBackup parses a UNICITY WALLET DETAILS ".txt" backup. password
// is required only when the file carries an "ENCRYPTED MASTER KEY" line;
// an empty password in that case returns ErrNeedsPassword.
func ParseTextBackup(content, password string) (LegacyWallet, error) {
	if !LooksLikeTextBackup(content) {
		return LegacyWallet{}, core.NewError(core.ErrUnknownFileFormat, "missing UNICITY WALLET DETAILS marker")
	}

	var (
		privateKeyHex    string
		encryptedKeyB64  string
		chainCodeHex     string
		descriptorPath   string
	)

	for _, line := range strings.Split(content, "\n") {
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		switch {
		case strings.HasPrefix(key, "MASTER PRIVATE KEY"):
			privateKeyHex = value
		case strings.HasPrefix(key, "ENCRYPTED MASTER KEY"):
			encryptedKeyB64 = value
		case strings.HasPrefix(key, "MASTER CHAIN CODE"):
			chainCodeHex = value
		case strings.HasPrefix(key, "DESCRIPTOR PATH"):
			descriptorPath = value
		}
	}

	var masterKeyBytes []byte
	switch {
	case privateKeyHex != "":
		b, err := hex.DecodeString(privateKeyHex)
		if err != nil {
			return LegacyWallet{}, core.WrapError(core.ErrInvalidKeyMaterial, "decode master private key", err)
		}
		masterKeyBytes = b
	case encryptedKeyB64 != "":
		if password == "" {
			return LegacyWallet{}, core.NewError(core.ErrNeedsPassword, "encrypted .txt backup requires a password")
		}
		pt, err := core.DecryptLegacyTxt(encryptedKeyB64, password)
		if err != nil {
			return LegacyWallet{}, err
		}
		masterKeyBytes = pt
	default:
		return LegacyWallet{}, core.NewError(core.ErrUnknownFileFormat, "no master key line found")
	}
	if len(masterKeyBytes) != 32 {
		return LegacyWallet{}, core.NewError(core.ErrInvalidKeyMaterial, "master key is not 32 bytes")
	}

	var wallet LegacyWallet
	copy(wallet.MasterKey[:], masterKeyBytes)

	if chainCodeHex != "" {
		cc, err := hex.DecodeString(chainCodeHex)
		if err != nil {
			return LegacyWallet{}, core.WrapError(core.ErrInvalidKeyMaterial, "decode chain code", err)
		}
		if len(cc) != 32 {
			return LegacyWallet{}, core.NewError(core.ErrInvalidKeyMaterial, "chain code is not 32 bytes")
		}
		copy(wallet.ChainCode[:], cc)
		wallet.HasChainCode = true
		wallet.DerivationMode = DerivationBIP32
		wallet.DescriptorPath = descriptorPath
		if wallet.DescriptorPath == "" {
			wallet.DescriptorPath = DefaultTxtDescriptorPath
		}
	} else {
		wallet.DerivationMode = DerivationWifHMAC
		wallet.DescriptorPath = descriptorPath
	}

	return wallet, nil
}
