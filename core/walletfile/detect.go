package walletfile

import (
	"path/filepath"
	"strings"

	"github.com/sphere-wallet/wallet/core"
)

// FileType enumerates the wallet-file codec formats spec.md §4.6 names.
type FileType string

const (
	FileTypeMnemonicText FileType = "mnemonic"
	FileTypeTextBackup   FileType = "txt-backup"
	FileTypeDatBackup    FileType = "dat-backup"
	FileTypeJSONBackup   FileType = "json-backup"
	FileTypeUnknown      FileType = "unknown"
)

// DetectLegacyFileType classifies a wallet file by filename suffix first,
// falling back to a content sniff (spec.md §4.6: "detection by filename
// suffix first, content sniff second"). header need only contain the
// first handful of bytes of the file; content, when available, is the
// full text for the text-based formats.
func DetectLegacyFileType(name string, header []byte, content string) (FileType, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".dat":
		return FileTypeDatBackup, nil
	case ".json":
		return FileTypeJSONBackup, nil
	case ".txt":
		return FileTypeTextBackup, nil
	}

	if LooksLikeDatBackup(header) {
		return FileTypeDatBackup, nil
	}
	if LooksLikeJSONBackup([]byte(content)) {
		return FileTypeJSONBackup, nil
	}
	if LooksLikeTextBackup(content) {
		return FileTypeTextBackup, nil
	}
	if looksLikeMnemonicText(content) {
		return FileTypeMnemonicText, nil
	}
	return FileTypeUnknown, core.NewError(core.ErrUnknownFileFormat, "could not classify wallet file")
}

// looksLikeMnemonicText is a light pre-check before ParseMnemonicText is
// attempted: every whitespace-separated token must be lower-case-alpha
// once lower-cased, and there must be 12 or 24 of them.
func looksLikeMnemonicText(content string) bool {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(content)))
	if len(words) != 12 && len(words) != 24 {
		return false
	}
	for _, w := range words {
		if !mnemonicWordPattern.MatchString(w) {
			return false
		}
	}
	return true
}
