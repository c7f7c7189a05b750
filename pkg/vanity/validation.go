package vanity

import "strings"

// base58Alphabet excludes 0 (zero), O (uppercase o), I (uppercase i) and l
// (lowercase L), the four characters Base58 drops to avoid visual ambiguity.
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// IsValidBase58 reports whether s contains only Base58 alphabet characters.
// The CLI validates -T/--tron-suffix patterns with InvalidBase58Chars instead,
// so it can name the offending characters.
func IsValidBase58(s string) bool {
	for _, c := range s {
		if !strings.ContainsRune(base58Alphabet, c) {
			return false
		}
	}
	return true
}

// InvalidBase58Chars returns every character of s outside the Base58
// alphabet, for building a helpful CLI error message.
func InvalidBase58Chars(s string) []rune {
	var invalid []rune
	for _, c := range s {
		if !strings.ContainsRune(base58Alphabet, c) {
			invalid = append(invalid, c)
		}
	}
	return invalid
}
