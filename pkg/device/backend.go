// Package device drives a single GPU (or reference backend) through the
// pipelined round protocol: enqueue a round of work at a base offset,
// collect its scored results, repeat. The orchestration in this package has
// no cgo dependency of its own; actual kernel execution lives behind the
// Backend interface so it can be swapped for a pure-Go implementation in
// tests (pkg/device/simbackend) or the real OpenCL implementation
// (pkg/device/cl, built only with the opencl tag).
package device

import (
	"context"

	"github.com/holiman/uint256"
)

// RawResult is one scored candidate as read back from a round's result
// buffer, before the round driver turns it into an aggregator.Candidate.
type RawResult struct {
	// WorkItem is the work-item index within the round that produced this
	// result; combined with the round's base offset it identifies the
	// exact private-key offset.
	WorkItem uint32
	// Score is the scoring kernel's output for this candidate.
	Score uint32
	// Address is the derived 20-byte TRON address payload (no 0x41 prefix,
	// no checksum).
	Address [20]byte
}

// Backend executes rounds of work on one device. EnqueueRound and
// CollectResults are always called in pairs from RunRoundDriver's pipeline,
// but a Backend may have up to two rounds outstanding at once: round N+1 can
// be enqueued before round N's results are collected.
type Backend interface {
	// EnqueueRound starts scoring WorkMax candidates rooted at baseOffset,
	// tagged with round for later collection. bestScore lets the backend
	// skip emitting results no better than the best seen so far.
	EnqueueRound(ctx context.Context, round uint64, baseOffset uint256.Int, bestScore uint32) error
	// CollectResults blocks until round's results are ready and returns
	// them. It is an error to collect a round that was never enqueued.
	CollectResults(ctx context.Context, round uint64) ([]RawResult, error)
	// Shutdown releases the per-device resources held by the backend
	// (command queue, kernels, device buffers). Safe to call once after the
	// last round.
	Shutdown() error
}

// Identity names a device for logging and for the CLI's device list. The
// kernel binary cache is keyed separately, by clcache.DeviceIdentity.
type Identity struct {
	// Name is a short human-readable label ("NVIDIA GeForce RTX 4090").
	Name string
	// Index is the device's position in the enumerated device list.
	Index int
	// Cached records whether a kernel binary cache file existed for this
	// device when it was enumerated. The program is loaded from the cache
	// only when every selected device has one; otherwise all are compiled
	// from source.
	Cached bool
}

// Context binds a Backend to the device Identity it runs on, and holds the
// per-device work-size parameters the round driver needs to compute each
// round's base offset.
type Context struct {
	Identity Identity
	Backend  Backend
	// WorkMax is the number of candidates scored per round on this device.
	WorkMax uint64
}

// NewContext constructs a Context for a single device. The caller is
// responsible for calling Backend.Shutdown once the device's round driver
// goroutine has exited.
func NewContext(identity Identity, backend Backend, workMax uint64) *Context {
	return &Context{Identity: identity, Backend: backend, WorkMax: workMax}
}
