package core

import (
	crand "crypto/rand"

	bip39 "github.com/tyler-smith/go-bip39"
)

// GenerateMnemonic produces a fresh BIP-39 mnemonic of the requested
// entropy strength (128 => 12 words, 256 => 24 words), sourced from a
// cryptographically secure RNG.
func GenerateMnemonic(entropyBits int) (string, error) {
	if entropyBits != 128 && entropyBits != 256 {
		return "", NewError(ErrInvalidMnemonic, "entropy bits must be 128 or 256")
	}
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", WrapError(ErrInvalidMnemonic, "generate entropy", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", WrapError(ErrInvalidMnemonic, "build mnemonic", err)
	}
	return mnemonic, nil
}

// ValidateMnemonic verifies wordlist membership and the BIP-39 checksum for
// a 12- or 24-word phrase.
func ValidateMnemonic(mnemonic string) bool {
	if !wordCountValid(mnemonic) {
		return false
	}
	return bip39.IsMnemonicValid(mnemonic)
}

func wordCountValid(mnemonic string) bool {
	n := 0
	inWord := false
	for _, r := range mnemonic {
		isSpace := r == ' ' || r == '\t' || r == '\n'
		if !isSpace && !inWord {
			n++
			inWord = true
		} else if isSpace {
			inWord = false
		}
	}
	return n == 12 || n == 24
}

// MnemonicToSeed derives the 64-byte BIP-39 seed via PBKDF2-HMAC-SHA512,
// 2048 iterations, salt = "mnemonic"+passphrase.
func MnemonicToSeed(mnemonic, passphrase string) ([]byte, error) {
	if !ValidateMnemonic(mnemonic) {
		return nil, NewError(ErrInvalidMnemonic, "invalid mnemonic checksum or word count")
	}
	return bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
}

// MnemonicToEntropy recovers the original entropy bytes from a valid
// mnemonic; round-trips exactly with EntropyToMnemonic.
func MnemonicToEntropy(mnemonic string) ([]byte, error) {
	entropy, err := bip39.EntropyFromMnemonic(mnemonic)
	if err != nil {
		return nil, WrapError(ErrInvalidMnemonic, "recover entropy", err)
	}
	return entropy, nil
}

// EntropyToMnemonic is the inverse of MnemonicToEntropy.
func EntropyToMnemonic(entropy []byte) (string, error) {
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", WrapError(ErrInvalidMnemonic, "entropy to mnemonic", err)
	}
	return mnemonic, nil
}

// RandomMnemonicEntropy returns bits/8 cryptographically-secure random
// bytes, independent of any mnemonic encoding.
func RandomMnemonicEntropy(bits int) ([]byte, error) {
	if bits%32 != 0 {
		return nil, NewError(ErrInvalidMnemonic, "entropy bits must be multiple of 32")
	}
	b := make([]byte, bits/8)
	if _, err := crand.Read(b); err != nil {
		return nil, WrapError(ErrInvalidMnemonic, "read random entropy", err)
	}
	return b, nil
}

// Wipe zeroes a byte slice in place. Best-effort: the garbage collector may
// already have copied the backing array elsewhere.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
