// Package dispatcher owns startup and the run loop: device enumeration,
// kernel program build-or-load, one round driver per device, and the
// shared aggregator merging their results into a single hit stream. It has
// no cgo dependency of its own — DeviceEnumerator and ProgramBuilder are
// satisfied by the opencl-tagged pkg/device/cl package in production and by
// a simbackend-based fake in tests.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/trongrind/trongrind/pkg/aggregator"
	"github.com/trongrind/trongrind/pkg/clcache"
	"github.com/trongrind/trongrind/pkg/clstatus"
	"github.com/trongrind/trongrind/pkg/device"
	"github.com/trongrind/trongrind/pkg/vanity"
)

// Config carries every CLI-surfaced parameter of the search (spec.md §6).
type Config struct {
	SeedKey *vanity.SeedKey
	Mode    vanity.Mode
	Skip    []int
	NoCache bool

	WorkLocal       uint64
	WorkMax         uint64
	InverseSize     int
	InverseMultiple int
}

// EffectiveWorkMax returns WorkMax if set, else InverseSize *
// InverseMultiple, the default spec.md §6 documents for `-W`.
func (c Config) EffectiveWorkMax() uint64 {
	if c.WorkMax != 0 {
		return c.WorkMax
	}
	return uint64(c.InverseSize) * uint64(c.InverseMultiple)
}

// DeviceInfo is the host-visible identity of one enumerated device, before
// any backend has been attached to it.
type DeviceInfo struct {
	Name     string
	Identity clcache.DeviceIdentity
	// Cached reports whether Enumerate found a kernel cache file for this
	// device, for the `[cached]` CLI annotation.
	Cached bool
}

// DeviceEnumerator lists the available devices, applying skip.
type DeviceEnumerator interface {
	Enumerate(skip map[int]bool) ([]DeviceInfo, error)
}

// ProgramBuilder loads or compiles the shared GPU program and returns one
// ready-to-run Backend per device, in the same order Enumerate returned
// them.
type ProgramBuilder interface {
	Build(devices []DeviceInfo, mode vanity.Mode, seed *vanity.SeedKey, cfg Config) ([]device.Backend, error)
}

// Dispatcher owns one device.Context per selected device and the shared
// best-score aggregator, for the duration of one search run.
type Dispatcher struct {
	cfg      Config
	contexts []*device.Context

	mu  sync.Mutex
	err error
}

// New enumerates devices, builds (or loads) the program, and binds one
// device.Context per selected device — spec.md §4.6 steps 1-5.
func New(cfg Config, enum DeviceEnumerator, builder ProgramBuilder) (*Dispatcher, error) {
	skip := make(map[int]bool, len(cfg.Skip))
	for _, i := range cfg.Skip {
		skip[i] = true
	}

	infos, err := enum.Enumerate(skip)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, clstatus.ErrNoDevices
	}

	backends, err := builder.Build(infos, cfg.Mode, cfg.SeedKey, cfg)
	if err != nil {
		return nil, err
	}
	if len(backends) != len(infos) {
		return nil, fmt.Errorf("dispatcher: builder returned %d backends for %d devices", len(backends), len(infos))
	}

	workMax := cfg.EffectiveWorkMax()
	contexts := make([]*device.Context, len(infos))
	for i, info := range infos {
		identity := device.Identity{Name: info.Name, Index: i, Cached: info.Cached}
		contexts[i] = device.NewContext(identity, backends[i], workMax)
		log.Info("device attached", "index", i, "name", info.Name, "cached", info.Cached)
	}

	return &Dispatcher{cfg: cfg, contexts: contexts}, nil
}

// Devices returns the identity of every device this dispatcher will drive,
// in enumeration order, for the CLI's device-list printout.
func (d *Dispatcher) Devices() []device.Identity {
	out := make([]device.Identity, len(d.contexts))
	for i, dc := range d.contexts {
		out[i] = dc.Identity
	}
	return out
}

// Run starts one round-driver goroutine per device plus the aggregator and
// returns the hit stream. The returned channel closes once every device's
// round driver has exited — either because ctx was cancelled by the caller,
// or because a device-local error (spec.md §7) made this Run cancel every
// other device itself. Callers must check Err after the channel closes to
// distinguish a clean shutdown from a degraded one; no partial-success mode
// exists.
func (d *Dispatcher) Run(ctx context.Context) (<-chan aggregator.Hit, error) {
	best := aggregator.NewBestScore(0)
	agg := aggregator.New(best, d.cfg.SeedKey)

	ctx, cancel := context.WithCancel(ctx)

	candidates := make(chan aggregator.Candidate, 256)
	hits := make(chan aggregator.Hit)

	var wg sync.WaitGroup
	for i, dc := range d.contexts {
		wg.Add(1)
		go func(i int, dc *device.Context) {
			defer wg.Done()
			base := deviceBaseOffset(i)
			if err := device.RunRoundDriver(ctx, dc, base, best, candidates); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("round driver exited with error, cancelling remaining devices", "device", dc.Identity.Name, "err", err)
				d.setErr(fmt.Errorf("device %s: %w", dc.Identity.Name, err))
				cancel()
			}
		}(i, dc)
	}

	go func() {
		wg.Wait()
		cancel()
		close(candidates)
	}()

	go func() {
		defer close(hits)
		for c := range candidates {
			if hit, ok := agg.Submit(c); ok {
				hits <- hit
			}
		}
	}()

	return hits, nil
}

// Err returns the first device-local error that made Run cancel the rest of
// the devices, or nil if every device stopped cleanly (caller cancellation
// or exhaustion). Safe to call once the hit channel Run returned is closed.
func (d *Dispatcher) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

func (d *Dispatcher) setErr(err error) {
	d.mu.Lock()
	if d.err == nil {
		d.err = err
	}
	d.mu.Unlock()
}

// deviceBaseOffset gives device i a disjoint slice of the offset space by
// shifting its index into the high bits, far enough that no realistic
// round count from another device ever overlaps it.
func deviceBaseOffset(i int) uint256.Int {
	shifted := new(uint256.Int).Lsh(uint256.NewInt(uint64(i)), 160)
	return *shifted
}
