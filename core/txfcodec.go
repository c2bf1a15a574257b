package core

// TXF codec: normalises externally-sourced token JSON into the canonical
// lower-case-hex shape (spec.md §4.5) and projects a TxfToken into the
// display Token used by callers.

import (
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
)

// NFTTokenTypeHash is the single hard-coded token-type hash the display
// projection recognises as an NFT (spec.md §4.4 "recognises one
// hard-coded NFT type hash"). The source wallet does not document the
// value beyond "one hard-coded hash"; this module picks a stable sentinel
// and records the choice as an Open Question resolution in DESIGN.md.
const NFTTokenTypeHash = "4e46545f544f4b454e5f545950455f484153485f504c414345484f4c444552"

// DefaultDecimals and DefaultSymbol are applied to every token type other
// than NFTTokenTypeHash (spec.md §4.4).
const (
	DefaultDecimals = 8
	DefaultSymbol   = "UCT"
	nftSymbol       = "NFT"
)

var normalizedHexFields = [][]string{
	{"genesis", "data", "tokenId"},
	{"genesis", "data", "tokenType"},
	{"genesis", "data", "salt"},
	{"genesis", "inclusionProof", "authenticator", "publicKey"},
	{"genesis", "inclusionProof", "authenticator", "signature"},
}

// Normalize deep-clones sdkTokenJSON (a JSON-decoded map, or any value
// that marshals to one) and rewrites every recognised byte-encoding field
// in place into canonical lower-case hex, returning the typed TxfToken.
// The source value is never mutated. Idempotent: Normalize(Normalize(t))
// equals Normalize(t) because already-hex strings pass through unchanged
// (spec.md §8 property 3).
func Normalize(sdkTokenJSON any) (TxfToken, error) {
	data, err := json.Marshal(sdkTokenJSON)
	if err != nil {
		return TxfToken{}, WrapError(ErrIntegrityViolation, "marshal input token", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return TxfToken{}, WrapError(ErrIntegrityViolation, "unmarshal input token", err)
	}

	for _, path := range normalizedHexFields {
		normalizeFieldAt(raw, path)
	}
	if txs, ok := raw["transactions"].([]any); ok {
		for _, tx := range txs {
			txMap, ok := tx.(map[string]any)
			if !ok {
				continue
			}
			normalizeFieldAt(txMap, []string{"inclusionProof", "authenticator", "publicKey"})
			normalizeFieldAt(txMap, []string{"inclusionProof", "authenticator", "signature"})
		}
	}

	out, err := json.Marshal(raw)
	if err != nil {
		return TxfToken{}, WrapError(ErrIntegrityViolation, "remarshal normalised token", err)
	}
	var txf TxfToken
	if err := json.Unmarshal(out, &txf); err != nil {
		return TxfToken{}, WrapError(ErrIntegrityViolation, "decode normalised token", err)
	}
	return txf, nil
}

// normalizeFieldAt walks path into m and, if the leaf value decodes under
// one of the three recognised byte encodings, rewrites it in place as a
// lower-case hex string. Missing intermediate keys (e.g. no
// inclusionProof on an uncommitted genesis) are left untouched.
func normalizeFieldAt(m map[string]any, path []string) {
	cur := m
	for i, key := range path {
		last := i == len(path)-1
		v, ok := cur[key]
		if !ok || v == nil {
			return
		}
		if last {
			if hexStr, ok := canonicalizeByteEncoding(v); ok {
				cur[key] = hexStr
			}
			return
		}
		next, ok := v.(map[string]any)
		if !ok {
			return
		}
		cur = next
	}
}

// canonicalizeByteEncoding recognises the three byte-encoding shapes
// spec.md §4.5 enumerates: a hex string (passed through lower-cased), a
// {bytes: [...]} object, or a {type: "Buffer", data: [...]} object.
func canonicalizeByteEncoding(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		if isHexString(val) {
			return toLowerHex(val), true
		}
		return "", false
	case map[string]any:
		if raw, ok := val["bytes"]; ok {
			if b, ok := decodeByteArray(raw); ok {
				return hex.EncodeToString(b), true
			}
		}
		if t, ok := val["type"].(string); ok && t == "Buffer" {
			if raw, ok := val["data"]; ok {
				if b, ok := decodeByteArray(raw); ok {
					return hex.EncodeToString(b), true
				}
			}
		}
	}
	return "", false
}

func decodeByteArray(raw any) ([]byte, bool) {
	arr, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	out := make([]byte, 0, len(arr))
	for _, elem := range arr {
		switch n := elem.(type) {
		case float64:
			out = append(out, byte(int(n)))
		case json.Number:
			i, err := strconv.Atoi(n.String())
			if err != nil {
				return nil, false
			}
			out = append(out, byte(i))
		default:
			return nil, false
		}
	}
	return out, true
}

func isHexString(s string) bool {
	if len(s)%2 != 0 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func toLowerHex(s string) string {
	b, err := hex.DecodeString(s)
	if err != nil {
		return s
	}
	return hex.EncodeToString(b)
}

// TokenToTxf parses displayToken.SDKData, re-normalises it, and fills in
// any missing version/transactions/integrity defaults. Returns an error
// (per spec.md §4.5, conceptually "nil") on any structural failure.
func TokenToTxf(displayToken Token) (*TxfToken, error) {
	txf, err := Normalize(displayToken.SDKData)
	if err != nil {
		return nil, err
	}
	if txf.Version == "" {
		txf.Version = TxfVersion
	}
	if txf.Transactions == nil {
		txf.Transactions = []TxfTransaction{}
	}
	if txf.Integrity == nil {
		txf.Integrity = &Integrity{GenesisDataJSONHash: zeroHash64}
	} else if txf.Integrity.GenesisDataJSONHash == "" {
		txf.Integrity.GenesisDataJSONHash = zeroHash64
	}
	return &txf, nil
}

var zeroHash64 = strings.Repeat("0", 64)

// GetCurrentStateHash resolves the current state hash of txf by consulting,
// in order: the last transaction's newStateHash, the last transaction's
// authenticator.stateHash, _integrity.currentStateHash, and finally the
// genesis authenticator.stateHash (spec.md §4.5).
func GetCurrentStateHash(txf TxfToken) string {
	if n := len(txf.Transactions); n > 0 {
		last := txf.Transactions[n-1]
		if last.NewStateHash != "" {
			return last.NewStateHash
		}
		if last.InclusionProof != nil && last.InclusionProof.Authenticator.StateHash != "" {
			return last.InclusionProof.Authenticator.StateHash
		}
	}
	if txf.Integrity != nil && txf.Integrity.CurrentStateHash != "" {
		return txf.Integrity.CurrentStateHash
	}
	if txf.Genesis.InclusionProof != nil {
		return txf.Genesis.InclusionProof.Authenticator.StateHash
	}
	return ""
}

// HasUncommittedTransactions reports whether the last transaction has no
// inclusion proof yet (awaiting aggregator signature).
func HasUncommittedTransactions(txf TxfToken) bool {
	n := len(txf.Transactions)
	return n > 0 && txf.Transactions[n-1].InclusionProof == nil
}

// CountCommittedTransactions counts transactions whose inclusion proof is
// present (non-nil).
func CountCommittedTransactions(txf TxfToken) int {
	n := 0
	for _, tx := range txf.Transactions {
		if tx.InclusionProof != nil {
			n++
		}
	}
	return n
}

// HasMissingNewStateHash reports whether any committed transaction lacks
// a newStateHash, a structural inconsistency callers may want to flag.
func HasMissingNewStateHash(txf TxfToken) bool {
	for _, tx := range txf.Transactions {
		if tx.InclusionProof != nil && tx.NewStateHash == "" {
			return true
		}
	}
	return false
}

// statusOf derives the display status from the last transaction's proof,
// falling back to the genesis proof when there are no transactions yet.
func statusOf(txf TxfToken) TokenStatus {
	if len(txf.Transactions) == 0 {
		if txf.Genesis.InclusionProof == nil {
			return StatusPending
		}
		return StatusConfirmed
	}
	if HasUncommittedTransactions(txf) {
		return StatusPending
	}
	return StatusConfirmed
}

// amountOf sums every coinData entry's decimal-string amount using
// arbitrary-precision integer arithmetic (spec.md §3.3 invariant 5 allows
// values up to 2^128).
func amountOf(txf TxfToken) string {
	return sumDecimalStrings(coinAmounts(txf.Genesis.Data.CoinData))
}

func coinAmounts(entries []CoinEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Amount)
	}
	return out
}

// canonicalCoinID picks the first coin with a nonzero amount, else the
// first coin, else empty (spec.md §4.4).
func canonicalCoinID(entries []CoinEntry) string {
	if len(entries) == 0 {
		return ""
	}
	for _, e := range entries {
		if !isZeroDecimal(e.Amount) {
			return e.CoinID
		}
	}
	return entries[0].CoinID
}

func symbolAndDecimalsFor(tokenType string) (symbol string, decimals int, name string) {
	if tokenType == NFTTokenTypeHash {
		return nftSymbol, 0, "Non-Fungible Token"
	}
	return DefaultSymbol, DefaultDecimals, "Unicity Coin Token"
}

// TxfToToken projects a TxfToken into its display form (spec.md §4.5).
func TxfToToken(id string, txf TxfToken) Token {
	symbol, decimals, name := symbolAndDecimalsFor(txf.Genesis.Data.TokenType)
	return Token{
		ID:       id,
		CoinID:   canonicalCoinID(txf.Genesis.Data.CoinData),
		Symbol:   symbol,
		Name:     name,
		Decimals: decimals,
		Amount:   amountOf(txf),
		Status:   statusOf(txf),
		SDKData:  txf,
	}
}
