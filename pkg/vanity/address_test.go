package vanity

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

func TestDeriveAddressStartsWithT(t *testing.T) {
	seed, err := GenerateSeedKey()
	require.NoError(t, err)

	addr := DeriveAddress(seed.Pub.SerializeUncompressed())
	assert.Len(t, addr, 34)
	assert.Equal(t, byte('T'), addr[0])
}

func TestDeriveAddressAgreesWithReferenceCodec(t *testing.T) {
	seed, err := GenerateSeedKey()
	require.NoError(t, err)

	pubBytes := seed.Pub.SerializeUncompressed()
	got := DeriveAddress(pubBytes)

	hash := crypto.Keccak256(pubBytes[1:])
	want := CheckEncodeReference(hash[len(hash)-20:])
	assert.Equal(t, got, want)
}

func TestKeccak256AgreesWithIndependentImplementation(t *testing.T) {
	seed, err := GenerateSeedKey()
	require.NoError(t, err)

	pubBytes := seed.Pub.SerializeUncompressed()[1:]

	want := crypto.Keccak256(pubBytes)

	h := sha3.NewLegacyKeccak256()
	h.Write(pubBytes)
	got := h.Sum(nil)

	assert.Equal(t, want, got, "go-ethereum's Keccak256 must agree with golang.org/x/crypto/sha3's legacy Keccak")
}

func TestIsValidBase58(t *testing.T) {
	assert.True(t, IsValidBase58("TAbCdEfGh123"))
	assert.False(t, IsValidBase58("T0OIl"))
	assert.Equal(t, []rune{'0', 'O', 'I', 'l'}, InvalidBase58Chars("T0OIl"))
}
