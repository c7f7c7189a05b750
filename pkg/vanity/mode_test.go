package vanity

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerosIsRangeZeroZero(t *testing.T) {
	z := Zeros()
	r := Range(0, 0)
	assert.Equal(t, r.Kernel, z.Kernel)
	assert.Equal(t, r.Data1, z.Data1)
	assert.Equal(t, r.Data2, z.Data2)
	assert.Equal(t, "zeros", z.Name)
}

func TestRangeFiveFiveIsLegal(t *testing.T) {
	m := Range(5, 5)
	assert.Equal(t, byte(5), m.Data1[0])
	assert.Equal(t, byte(5), m.Data2[0])
}

func TestLeadingRejectsBadHex(t *testing.T) {
	_, err := Leading('G')
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadHexChar))
}

func TestLeadingAcceptsHexDigit(t *testing.T) {
	m, err := Leading('a')
	require.NoError(t, err)
	assert.Equal(t, byte(0xa), m.Data1[0])
}

func TestMatchingEmptyStringIsAllWildcard(t *testing.T) {
	m := Matching("")
	assert.Equal(t, [20]byte{}, m.Data1)
	assert.Equal(t, [20]byte{}, m.Data2)
}

func TestMatchingPackingInvariant(t *testing.T) {
	// Every specified hex nibble must produce mask=0xF and the matching
	// value nibble; every unspecified or invalid nibble must produce a
	// zero mask.
	cases := []string{"a", "ab", "abc", "a1b2c3", "zz", "a1zz", strings.Repeat("f", 40)}
	for _, s := range cases {
		m := Matching(s)
		for p := 0; p < len(s) && p/2 < len(m.Data1); p++ {
			byteIdx := p / 2
			highNibble := p%2 == 0
			var maskNibble, valNibble byte
			if highNibble {
				maskNibble = m.Data1[byteIdx] >> 4
				valNibble = m.Data2[byteIdx] >> 4
			} else {
				maskNibble = m.Data1[byteIdx] & 0xF
				valNibble = m.Data2[byteIdx] & 0xF
			}

			v, ok := hexValueNoException(s[p])
			if ok {
				assert.Equal(t, byte(0xF), maskNibble, "case %q pos %d", s, p)
				assert.Equal(t, v, valNibble, "case %q pos %d", s, p)
			} else {
				assert.Equal(t, byte(0), maskNibble, "case %q pos %d", s, p)
			}
		}
	}
}

func TestTronSuffixEmpty(t *testing.T) {
	m := TronSuffix("")
	assert.Equal(t, byte(0), m.Data2[0])
	assert.Equal(t, byte(0), m.Data2[1])
}

func TestTronSuffixPacksPatternsInOrder(t *testing.T) {
	m := TronSuffix("aaa,bb,ccccc")
	assert.Equal(t, byte(3), m.Data2[1])

	parts := strings.Split(string(m.Data1[:m.Data2[0]]), "\x00")
	// trailing empty string after final separator
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	assert.Equal(t, []string{"aaa", "bb", "ccccc"}, parts)

	wantLen := len("aaa") + 1 + len("bb") + 1 + len("ccccc") + 1
	assert.Equal(t, byte(wantLen), m.Data2[0])
}

func TestTronSuffixSkipsLeadingCommasAndEmptyPatterns(t *testing.T) {
	m := TronSuffix(",,aaa,,bb,")
	assert.Equal(t, byte(2), m.Data2[1])
}

func TestTronSuffixDiscardsOversizedPatternWhole(t *testing.T) {
	// 22 'a's cannot fit in the 20-byte buffer even alone (needs 23 bytes
	// with separator); the redesigned packer discards it entirely rather
	// than truncating.
	m := TronSuffix(strings.Repeat("a", 22))
	assert.LessOrEqual(t, int(m.Data2[0]), 20)
	assert.Equal(t, byte(0), m.Data2[0])
	assert.Equal(t, byte(0), m.Data2[1])
}

func TestTronSuffixContinuesAfterDiscardingOversizedPattern(t *testing.T) {
	m := TronSuffix(strings.Repeat("a", 22) + ",bb")
	assert.Equal(t, byte(1), m.Data2[1])
	assert.Equal(t, "bb\x00", string(m.Data1[:m.Data2[0]]))
}

func TestTransformKernelAndName(t *testing.T) {
	addr := Mode{Target: Address}
	k, err := addr.TransformKernel()
	require.NoError(t, err)
	assert.Equal(t, "", k)
	n, err := addr.TransformName()
	require.NoError(t, err)
	assert.Equal(t, "Address", n)

	contract := Mode{Target: Contract}
	k, err = contract.TransformKernel()
	require.NoError(t, err)
	assert.Equal(t, "profanity_transform_contract", k)
	n, err = contract.TransformName()
	require.NoError(t, err)
	assert.Equal(t, "Contract", n)

	bad := Mode{Target: Target(99)}
	_, err = bad.TransformKernel()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTarget))
	_, err = bad.TransformName()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTarget))
}

func TestLettersAndNumbersAreParameterless(t *testing.T) {
	l := Letters()
	assert.Equal(t, [20]byte{}, l.Data1)
	assert.Equal(t, [20]byte{}, l.Data2)
	assert.Equal(t, "profanity_score_letters", l.Kernel)

	n := Numbers()
	assert.Equal(t, [20]byte{}, n.Data1)
	assert.Equal(t, [20]byte{}, n.Data2)
	assert.Equal(t, "profanity_score_numbers", n.Kernel)
}
