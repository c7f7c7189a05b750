package vanity

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trongrind/trongrind/pkg/clstatus"
)

func TestParseSeedPublicKeyRejectsBadLength(t *testing.T) {
	_, err := ParseSeedPublicKey("deadbeef")
	require.Error(t, err)
	assert.True(t, errors.Is(err, clstatus.ErrBadSeedKey))
}

func TestGenerateAndRoundtripSeedKey(t *testing.T) {
	seed, err := GenerateSeedKey()
	require.NoError(t, err)
	require.NotNil(t, seed.Priv)

	hexKey := seed.PublicKeyHex()
	assert.Len(t, hexKey, 128)

	parsed, err := ParseSeedPublicKey(hexKey)
	require.NoError(t, err)
	assert.True(t, seed.Pub.IsEqual(parsed.Pub))

	privHex, ok := seed.PrivateKeyHex()
	require.True(t, ok)
	assert.Len(t, privHex, 64)
}

func TestParsedSeedKeyHasNoPrivateScalar(t *testing.T) {
	seed, err := GenerateSeedKey()
	require.NoError(t, err)
	parsed, err := ParseSeedPublicKey(seed.PublicKeyHex())
	require.NoError(t, err)
	_, ok := parsed.PrivateKeyHex()
	assert.False(t, ok)
}

func TestParseSeedPublicKeyRejectsOffCurvePoint(t *testing.T) {
	// 128 hex chars but not a point on secp256k1.
	bad := strings.Repeat("ab", 64)
	_, err := ParseSeedPublicKey(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, clstatus.ErrBadSeedKey))
}
