package core

// Base-10 decimal-string arithmetic for coin amounts, which range up to
// 2^128 (spec.md §3.3 invariant 5) and so cannot be safely held in a
// native int64. No third-party bignum library appears anywhere in the
// retrieval pack, so this leans on math/big directly; see DESIGN.md.

import "math/big"

// maxCoinAmount is the exclusive upper bound spec.md §3.3 invariant 5 sets
// on a coin amount: 2^128.
var maxCoinAmount = new(big.Int).Lsh(big.NewInt(1), 128)

// isZeroDecimal reports whether s parses to zero. A malformed string is
// treated as zero rather than erroring, since Store.Put already rejects
// malformed amount strings (validateHexDiscipline via isValidCoinAmount)
// before a stored token reaches the display projection.
func isZeroDecimal(s string) bool {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return true
	}
	return n.Sign() == 0
}

// isValidCoinAmount reports whether s is a base-10 integer in [0, 2^128),
// per spec.md §3.3 invariant 5.
func isValidCoinAmount(s string) bool {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return false
	}
	return n.Sign() >= 0 && n.Cmp(maxCoinAmount) < 0
}

// sumDecimalStrings adds every decimal string in amounts, returning "0"
// for an empty slice.
func sumDecimalStrings(amounts []string) string {
	total := new(big.Int)
	for _, a := range amounts {
		n, ok := new(big.Int).SetString(a, 10)
		if !ok {
			continue
		}
		total.Add(total, n)
	}
	return total.String()
}
