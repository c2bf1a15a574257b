// Package walletfile implements the wallet-file codec (spec.md §4.6): the
// boundary formats a wallet can be imported from — a bare mnemonic, the
// legacy ".txt"/".dat" backups, and the JSON backup (§6.1). Grounded on
// the teacher's core/wallet.go WalletFromMnemonic entry point, generalised
// into a small format-per-file codec the way the teacher splits
// token-standard logic into core/Tokens/*.
package walletfile

import (
	"regexp"
	"strings"

	"github.com/sphere-wallet/wallet/core"
)

var mnemonicWordPattern = regexp.MustCompile(`^[a-z]+$`)

// ParseMnemonicText lower-cases content, splits on whitespace, and accepts
// exactly 12 or 24 lower-case-alpha tokens that also pass the BIP-39
// checksum (spec.md §4.6 "Mnemonic text").
func ParseMnemonicText(content string) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(content))
	words := strings.Fields(lower)
	if len(words) != 12 && len(words) != 24 {
		return "", core.NewError(core.ErrInvalidMnemonic, "mnemonic must have 12 or 24 words")
	}
	for _, w := range words {
		if !mnemonicWordPattern.MatchString(w) {
			return "", core.NewError(core.ErrInvalidMnemonic, "word is not lower-case alphabetic: "+w)
		}
	}
	mnemonic := strings.Join(words, " ")
	if !core.ValidateMnemonic(mnemonic) {
		return "", core.NewError(core.ErrInvalidMnemonic, "mnemonic failed BIP39 checksum")
	}
	return mnemonic, nil
}
