package dispatcher_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/trongrind/trongrind/pkg/clcache"
	"github.com/trongrind/trongrind/pkg/device"
	"github.com/trongrind/trongrind/pkg/device/simbackend"
	"github.com/trongrind/trongrind/pkg/dispatcher"
	"github.com/trongrind/trongrind/pkg/vanity"
)

// fakeEnumerator stands in for pkg/device/cl's Enumerator in tests: it
// reports a fixed set of devices without touching any GPU API.
type fakeEnumerator struct {
	names []string
}

func (f *fakeEnumerator) Enumerate(skip map[int]bool) ([]dispatcher.DeviceInfo, error) {
	var out []dispatcher.DeviceInfo
	for i, name := range f.names {
		if skip[i] {
			continue
		}
		out = append(out, dispatcher.DeviceInfo{
			Name:     name,
			Identity: clcache.DeviceIdentity{FallbackHandle: name},
		})
	}
	return out, nil
}

// fakeBuilder stands in for pkg/device/cl's Builder: instead of compiling
// anything, it hands back one simbackend.Backend per device.
type fakeBuilder struct{}

func (fakeBuilder) Build(devices []dispatcher.DeviceInfo, mode vanity.Mode, seed *vanity.SeedKey, cfg dispatcher.Config) ([]device.Backend, error) {
	backends := make([]device.Backend, len(devices))
	for i := range devices {
		backends[i] = simbackend.New(mode, seed.Pub, uint32(cfg.EffectiveWorkMax()))
	}
	return backends, nil
}

// failingBackend fails its very first EnqueueRound with a non-cancellation
// error, simulating a device-local fault (a GPU driver reset, a kernel
// build mismatch surfacing mid-run, and so on).
type failingBackend struct{}

func (failingBackend) EnqueueRound(ctx context.Context, round uint64, baseOffset uint256.Int, bestScore uint32) error {
	return errors.New("device/cl: simulated device fault")
}

func (failingBackend) CollectResults(ctx context.Context, round uint64) ([]device.RawResult, error) {
	return nil, nil
}

func (failingBackend) Shutdown() error { return nil }

// faultyBuilder hands back one healthy simbackend.Backend and one
// failingBackend, so tests can exercise the cancel-the-rest-on-error path.
type faultyBuilder struct{}

func (faultyBuilder) Build(devices []dispatcher.DeviceInfo, mode vanity.Mode, seed *vanity.SeedKey, cfg dispatcher.Config) ([]device.Backend, error) {
	backends := make([]device.Backend, len(devices))
	for i := range devices {
		if i == 0 {
			backends[i] = failingBackend{}
			continue
		}
		backends[i] = simbackend.New(mode, seed.Pub, uint32(cfg.EffectiveWorkMax()))
	}
	return backends, nil
}

func testSeed(t *testing.T) *vanity.SeedKey {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return &vanity.SeedKey{Pub: priv.PubKey(), Priv: priv}
}

func TestNewSkipsRequestedDeviceIndices(t *testing.T) {
	enum := &fakeEnumerator{names: []string{"device-0", "device-1", "device-2"}}
	cfg := dispatcher.Config{
		SeedKey:         testSeed(t),
		Mode:            vanity.Benchmark(),
		Skip:            []int{1},
		WorkMax:         16,
		InverseSize:     16,
		InverseMultiple: 1,
	}

	d, err := dispatcher.New(cfg, enum, fakeBuilder{})
	require.NoError(t, err)
	require.NotNil(t, d)

	devices := d.Devices()
	require.Len(t, devices, 2)
	require.Equal(t, "device-0", devices[0].Name)
	require.Equal(t, "device-2", devices[1].Name)
}

func TestNewFailsWhenNoDevicesFound(t *testing.T) {
	enum := &fakeEnumerator{}
	cfg := dispatcher.Config{SeedKey: testSeed(t), Mode: vanity.Benchmark(), WorkMax: 16}

	_, err := dispatcher.New(cfg, enum, fakeBuilder{})
	require.Error(t, err)
}

func TestRunProducesHitsAcrossDevicesAndStopsOnCancel(t *testing.T) {
	enum := &fakeEnumerator{names: []string{"device-0", "device-1"}}
	cfg := dispatcher.Config{
		SeedKey:         testSeed(t),
		Mode:            vanity.Benchmark(),
		WorkMax:         32,
		InverseSize:     32,
		InverseMultiple: 1,
	}

	d, err := dispatcher.New(cfg, enum, fakeBuilder{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	hits, err := d.Run(ctx)
	require.NoError(t, err)

	select {
	case hit, ok := <-hits:
		require.True(t, ok)
		require.GreaterOrEqual(t, hit.Score, uint32(1))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first hit")
	}

	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-hits:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("hit channel never closed after cancel")
		}
	}
}

func TestRunCancelsRemainingDevicesAndReportsErrOnDeviceFault(t *testing.T) {
	enum := &fakeEnumerator{names: []string{"device-0", "device-1"}}
	cfg := dispatcher.Config{
		SeedKey:         testSeed(t),
		Mode:            vanity.Benchmark(),
		WorkMax:         32,
		InverseSize:     32,
		InverseMultiple: 1,
	}

	d, err := dispatcher.New(cfg, enum, faultyBuilder{})
	require.NoError(t, err)

	hits, err := d.Run(context.Background())
	require.NoError(t, err)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-hits:
			if !ok {
				require.Error(t, d.Err(), "Run must report the device fault once the hit channel closes")
				return
			}
		case <-deadline:
			t.Fatal("hit channel never closed after device fault")
		}
	}
}
