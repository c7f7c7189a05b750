package simbackend

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trongrind/trongrind/pkg/vanity"
)

func TestBenchmarkModeScoresEveryCandidateEqually(t *testing.T) {
	seed, err := vanity.GenerateSeedKey()
	require.NoError(t, err)

	b := New(vanity.Benchmark(), seed.Pub, 32)
	require.NoError(t, b.EnqueueRound(context.Background(), 0, *uint256.NewInt(0), 0))

	results, err := b.CollectResults(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, results, 32)
	for _, r := range results {
		assert.Equal(t, uint32(1), r.Score)
	}
}

func TestBestScoreFeedbackSuppressesNonImprovingResults(t *testing.T) {
	seed, err := vanity.GenerateSeedKey()
	require.NoError(t, err)

	b := New(vanity.Benchmark(), seed.Pub, 32)
	require.NoError(t, b.EnqueueRound(context.Background(), 0, *uint256.NewInt(0), 1))

	results, err := b.CollectResults(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, results, "benchmark mode never scores above 1, so bestScore=1 suppresses everything")
}

func TestZeroBytesModeRewardsLeadingZeroes(t *testing.T) {
	seed, err := vanity.GenerateSeedKey()
	require.NoError(t, err)

	b := New(vanity.ZeroBytes(), seed.Pub, 512)
	require.NoError(t, b.EnqueueRound(context.Background(), 0, *uint256.NewInt(0), 0))
	results, err := b.CollectResults(context.Background(), 0)
	require.NoError(t, err)

	for _, r := range results {
		for _, bVal := range r.Address[:r.Score] {
			assert.Equal(t, byte(0), bVal)
		}
	}
}

func TestShutdownClearsResults(t *testing.T) {
	seed, err := vanity.GenerateSeedKey()
	require.NoError(t, err)
	b := New(vanity.Benchmark(), seed.Pub, 4)
	require.NoError(t, b.EnqueueRound(context.Background(), 0, *uint256.NewInt(0), 0))
	require.NoError(t, b.Shutdown())

	results, err := b.CollectResults(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestEnqueueRoundRespectsCancellation(t *testing.T) {
	seed, err := vanity.GenerateSeedKey()
	require.NoError(t, err)
	b := New(vanity.Benchmark(), seed.Pub, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = b.EnqueueRound(ctx, 0, *uint256.NewInt(0), 0)
	assert.ErrorIs(t, err, context.Canceled)
}
