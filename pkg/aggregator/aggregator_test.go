package aggregator

import (
	"strings"
	"sync"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trongrind/trongrind/pkg/vanity"
)

func TestBestScoreRejectsNonImprovingSwap(t *testing.T) {
	b := NewBestScore(5)
	assert.False(t, b.CompareAndSwap(5))
	assert.False(t, b.CompareAndSwap(3))
	assert.True(t, b.CompareAndSwap(6))
	assert.Equal(t, uint32(6), b.Load())
}

func TestSubmitRejectsScoreNotBeatingBest(t *testing.T) {
	a := New(NewBestScore(10), nil)
	_, ok := a.Submit(Candidate{Score: 10})
	assert.False(t, ok)
	_, ok = a.Submit(Candidate{Score: 9})
	assert.False(t, ok)
}

func TestSubmitAcceptsStrictlyBetterScoreOnce(t *testing.T) {
	a := New(NewBestScore(0), nil)
	hit, ok := a.Submit(Candidate{Score: 5})
	require.True(t, ok)
	assert.Equal(t, uint32(5), hit.Score)
	assert.True(t, hit.OffsetOnly)

	_, ok = a.Submit(Candidate{Score: 5})
	assert.False(t, ok, "equal score must not re-accept")
}

func TestSubmitDerivesPrivateKeyWhenSeedScalarKnown(t *testing.T) {
	seed, err := vanity.GenerateSeedKey()
	require.NoError(t, err)

	a := New(NewBestScore(0), seed)
	hit, ok := a.Submit(Candidate{Score: 1, Offset: *uint256.NewInt(42)})
	require.True(t, ok)
	assert.False(t, hit.OffsetOnly)
	assert.True(t, strings.HasPrefix(hit.PrivateKeyHex, "0x"))
	assert.Len(t, hit.PrivateKeyHex, 66)
}

func TestSubmitWithoutPrivateSeedReturnsOffsetOnly(t *testing.T) {
	seed, err := vanity.GenerateSeedKey()
	require.NoError(t, err)
	parsed, err := vanity.ParseSeedPublicKey(seed.PublicKeyHex())
	require.NoError(t, err)

	a := New(NewBestScore(0), parsed)
	hit, ok := a.Submit(Candidate{Score: 1, Offset: *uint256.NewInt(7)})
	require.True(t, ok)
	assert.True(t, hit.OffsetOnly)
	assert.True(t, strings.HasPrefix(hit.PrivateKeyHex, "0x"))
}

func TestConcurrentSubmitOnlyOneWinnerPerScore(t *testing.T) {
	a := New(NewBestScore(0), nil)
	const n = 64
	var wg sync.WaitGroup
	results := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, ok := a.Submit(Candidate{Score: 1})
			results[i] = ok
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, ok := range results {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
}
