package device

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trongrind/trongrind/pkg/aggregator"
)

// fakeBackend emits one fixed result per round and stops producing new
// rounds once roundLimit is reached, so tests can drive RunRoundDriver to a
// deterministic cancellation point.
type fakeBackend struct {
	mu         sync.Mutex
	workMax    uint64
	roundLimit uint64
	enqueued   []uint64
	shutdown   bool
}

func (f *fakeBackend) EnqueueRound(ctx context.Context, round uint64, baseOffset uint256.Int, bestScore uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued = append(f.enqueued, round)
	return nil
}

func (f *fakeBackend) CollectResults(ctx context.Context, round uint64) ([]RawResult, error) {
	if round >= f.roundLimit {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return []RawResult{{WorkItem: 3, Score: uint32(round) + 1, Address: [20]byte{byte(round)}}}, nil
}

func (f *fakeBackend) Shutdown() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdown = true
	return nil
}

func TestRunRoundDriverPublishesCandidatesWithCorrectOffset(t *testing.T) {
	backend := &fakeBackend{workMax: 100, roundLimit: 3}
	dc := NewContext(Identity{Name: "fake0"}, backend, 100)
	best := aggregator.NewBestScore(0)
	out := make(chan aggregator.Candidate, 16)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- RunRoundDriver(ctx, dc, *uint256.NewInt(1000), best, out) }()

	var got []aggregator.Candidate
	for i := 0; i < 3; i++ {
		select {
		case c := <-out:
			got = append(got, c)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for candidate")
		}
	}
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("RunRoundDriver did not return after cancel")
	}

	require.True(t, backend.shutdown)
	require.Len(t, got, 3)
	for i, c := range got {
		wantOffset := new(uint256.Int).Add(uint256.NewInt(1000), new(uint256.Int).Add(uint256.NewInt(uint64(i)*100), uint256.NewInt(3)))
		assert.True(t, wantOffset.Eq(&c.Offset), "round %d offset mismatch: got %s want %s", i, c.Offset.Hex(), wantOffset.Hex())
		assert.Equal(t, uint32(i)+1, c.Score)
	}
}
