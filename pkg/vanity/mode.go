// Package vanity implements the scoring-mode descriptor, seed-key parsing
// and TRON address derivation used by the dispatcher. It has no GPU
// dependency of its own: Mode is a plain value object consumed by both the
// cgo OpenCL backend and the pure-Go reference backend.
package vanity

import (
	"errors"
	"fmt"
	"strings"
)

// Target selects which transform kernel runs between point_add and keccak.
type Target int

const (
	// Address scores the plain TRON address (no transform kernel).
	Address Target = iota
	// Contract scores the address a CREATE-style contract deployment would
	// receive, via the profanity_transform_contract kernel.
	Contract
)

// ErrUnknownTarget is returned by TransformKernel/TransformName for a Target
// value outside the closed enum above.
var ErrUnknownTarget = errors.New("vanity: unknown target")

// ErrBadHexChar is returned by Leading for a non-hex-digit argument.
var ErrBadHexChar = errors.New("vanity: bad hex value")

// Mode is an immutable scoring-predicate descriptor. Factory functions below
// are the only way to construct one; the zero value is never meaningful on
// its own (it has an empty Kernel).
type Mode struct {
	Name   string
	Kernel string
	Target Target
	Data1  [20]byte
	Data2  [20]byte
}

// TransformKernel returns the host-visible identifier of the transform
// kernel to run before keccak, or "" when Target is Address.
func (m Mode) TransformKernel() (string, error) {
	switch m.Target {
	case Address:
		return "", nil
	case Contract:
		return "profanity_transform_contract", nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownTarget, m.Target)
	}
}

// TransformName returns a human label for the target, mirrored in status
// output.
func (m Mode) TransformName() (string, error) {
	switch m.Target {
	case Address:
		return "Address", nil
	case Contract:
		return "Contract", nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownTarget, m.Target)
	}
}

// Benchmark scores every candidate identically; used to measure raw
// throughput without biasing the search toward any predicate.
func Benchmark() Mode {
	return Mode{Name: "benchmark", Kernel: "profanity_score_benchmark"}
}

// Zeros scores the count of leading zero hex nibbles; an alias for
// Range(0, 0).
func Zeros() Mode {
	m := Range(0, 0)
	m.Name = "zeros"
	return m
}

// hexValueNoException returns the nibble value of c, or (0, false) when c is
// not a hex digit. Mirrors the original profanity2 helper of the same name:
// callers that want wildcard-on-unknown behavior (Matching) use the bool to
// zero the mask instead of failing.
func hexValueNoException(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// hexValue is the throwing counterpart of hexValueNoException, used by
// Leading where an invalid character is a caller error rather than a
// wildcard.
func hexValue(c byte) (byte, error) {
	v, ok := hexValueNoException(c)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrBadHexChar, c)
	}
	return v, nil
}

// Matching builds a mode that scores an address against a partial hex
// pattern. strHex may be shorter than 40 characters; unspecified nibble
// positions are wildcards. Unknown characters are silently treated as
// wildcards (hexValueNoException), not errors — this is a deliberate
// departure from Leading's strictness, matching the predicate's original
// semantics.
func Matching(strHex string) Mode {
	m := Mode{Name: "matching", Kernel: "profanity_score_matching"}

	index := 0
	for i := 0; i < len(strHex) && index < len(m.Data1); i += 2 {
		hi, hiOK := hexValueNoException(strHex[i])
		var lo byte
		var loOK bool
		if i+1 < len(strHex) {
			lo, loOK = hexValueNoException(strHex[i+1])
		}

		var valHi, valLo, maskHi, maskLo byte
		if hiOK {
			valHi = hi << 4
			maskHi = 0xF << 4
		}
		if loOK {
			valLo = lo
			maskLo = 0xF
		}

		m.Data1[index] = maskHi | maskLo
		m.Data2[index] = valHi | valLo
		index++
	}

	return m
}

// Leading scores consecutive leading nibbles equal to charLeading. Returns
// ErrBadHexChar if charLeading is not a hex digit.
func Leading(charLeading byte) (Mode, error) {
	v, err := hexValue(charLeading)
	if err != nil {
		return Mode{}, err
	}
	m := Mode{Name: "leading", Kernel: "profanity_score_leading"}
	m.Data1[0] = v
	return m, nil
}

// Range scores consecutive leading nibbles whose value lies in [min, max].
// min == max is legal (scores nibbles equal to that single value).
func Range(min, max byte) Mode {
	m := Mode{Name: "range", Kernel: "profanity_score_range"}
	m.Data1[0] = min
	m.Data2[0] = max
	return m
}

// LeadingRange uses the same operand encoding as Range but invokes a
// distinct kernel.
func LeadingRange(min, max byte) Mode {
	m := Mode{Name: "leadingrange", Kernel: "profanity_score_leadingrange"}
	m.Data1[0] = min
	m.Data2[0] = max
	return m
}

// ZeroBytes scores addresses with many all-zero bytes; operands unused.
func ZeroBytes() Mode {
	return Mode{Name: "zeroBytes", Kernel: "profanity_score_zerobytes"}
}

// Mirror scores addresses whose hex nibble sequence is a palindrome around
// its midpoint; operands unused.
func Mirror() Mode {
	return Mode{Name: "mirror", Kernel: "profanity_score_mirror"}
}

// Doubles scores addresses made of repeated nibble pairs; operands unused.
func Doubles() Mode {
	return Mode{Name: "doubles", Kernel: "profanity_score_doubles"}
}

// Letters scores addresses whose leading nibbles are all letters (a-f);
// operands unused (own kernel, unlike the original's range(10,15) alias).
func Letters() Mode {
	return Mode{Name: "letters", Kernel: "profanity_score_letters"}
}

// Numbers scores addresses whose leading nibbles are all digits (0-9);
// operands unused (own kernel, unlike the original's range(0,9) alias).
func Numbers() Mode {
	return Mode{Name: "numbers", Kernel: "profanity_score_numbers"}
}

// TronRepeat scores TRON addresses by their longest run of repeated
// trailing characters ("豹子号" in the original tool). Operands unused.
func TronRepeat() Mode {
	return Mode{Name: "tron-repeat", Kernel: "profanity_score_tron_repeat"}
}

// TronSequential scores TRON addresses by their longest monotonic trailing
// run ("顺子号"). Operands unused.
func TronSequential() Mode {
	return Mode{Name: "tron-sequential", Kernel: "profanity_score_tron_sequential"}
}

// TronLucky scores TRON addresses against a fixed set of "lucky number"
// shapes ("谐音靓号"). Operands unused.
func TronLucky() Mode {
	return Mode{Name: "tron-lucky", Kernel: "profanity_score_tron_lucky"}
}

// TronSuffix parses spec as comma-separated suffix patterns (X = wildcard)
// and packs them into Data1, NUL-separated, with Data2[0] = total bytes
// written (including separators) and Data2[1] = pattern count.
//
// Packing rules: leading commas and empty patterns are skipped; characters
// are stored as raw ASCII, not decoded from hex. A pattern that does not fit
// whole in the remaining Data1 capacity (len(pattern)+1 separator byte) is
// discarded in full rather than truncated — this redesigns the original
// tool's signed/unsigned boundary bug at dataPos==19 (see DESIGN.md) — and
// parsing continues with the next pattern.
func TronSuffix(spec string) Mode {
	m := Mode{Name: "tron-suffix", Kernel: "profanity_score_tron_suffix"}

	const capacity = len(m.Data1)
	dataPos := 0
	patternCount := 0

	for _, pattern := range strings.Split(spec, ",") {
		if pattern == "" {
			continue
		}
		if dataPos+len(pattern)+1 > capacity {
			// Whole pattern discarded: no partial writes.
			continue
		}
		copy(m.Data1[dataPos:], pattern)
		dataPos += len(pattern)
		m.Data1[dataPos] = 0 // separator
		dataPos++
		patternCount++
	}

	m.Data2[0] = byte(dataPos)
	m.Data2[1] = byte(patternCount)
	return m
}
