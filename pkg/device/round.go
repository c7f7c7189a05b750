package device

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/trongrind/trongrind/pkg/aggregator"
)

// RunRoundDriver pumps rounds through dc.Backend for one device, publishing
// every result as an aggregator.Candidate on out. It keeps at most two
// rounds in flight at once: round N+1 is enqueued before round N's results
// are read back, so the backend never sits idle waiting on the host. The
// current best score is re-read before every enqueue so a round started
// late in the search still benefits from another device's recent win.
//
// ctx is polled between rounds only, matching the pipeline's suspension
// points. When that poll sees cancellation, the driver calls CollectResults
// once more for the
// one outstanding round, passing the cancelled ctx, and publishes those
// results only if that call succeeds (the cl backend waits for the round to
// complete and then reports ctx.Err(); simbackend reports ctx.Err() at
// once, so neither publishes). It then shuts the backend down and returns
// ctx.Err().
func RunRoundDriver(ctx context.Context, dc *Context, deviceBase uint256.Int, best *aggregator.BestScore, out chan<- aggregator.Candidate) (err error) {
	defer func() {
		if shutErr := dc.Backend.Shutdown(); err == nil {
			err = shutErr
		}
	}()

	round := uint64(0)
	if err := dc.Backend.EnqueueRound(ctx, round, roundOffset(deviceBase, dc.WorkMax, round), best.Load()); err != nil {
		return err
	}

	for {
		next := round + 1
		if err := dc.Backend.EnqueueRound(ctx, next, roundOffset(deviceBase, dc.WorkMax, next), best.Load()); err != nil {
			return err
		}

		results, err := dc.Backend.CollectResults(ctx, round)
		if err != nil {
			return err
		}
		publish(out, dc, deviceBase, round, results)
		round = next

		select {
		case <-ctx.Done():
			if drained, cErr := dc.Backend.CollectResults(ctx, round); cErr == nil {
				publish(out, dc, deviceBase, round, drained)
			}
			return ctx.Err()
		default:
		}
	}
}

// roundOffset computes deviceBase + round*workMax, the private-key offset
// the round's work-item 0 starts at.
func roundOffset(deviceBase uint256.Int, workMax uint64, round uint64) uint256.Int {
	delta := new(uint256.Int).Mul(uint256.NewInt(round), uint256.NewInt(workMax))
	sum := new(uint256.Int).Add(&deviceBase, delta)
	return *sum
}

func publish(out chan<- aggregator.Candidate, dc *Context, deviceBase uint256.Int, round uint64, results []RawResult) {
	base := roundOffset(deviceBase, dc.WorkMax, round)
	for _, r := range results {
		offset := new(uint256.Int).Add(&base, uint256.NewInt(uint64(r.WorkItem)))
		out <- aggregator.Candidate{
			Score:      r.Score,
			Address:    r.Address,
			Offset:     *offset,
			DeviceName: dc.Identity.Name,
			Round:      round,
		}
	}
}
