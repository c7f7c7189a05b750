//go:build opencl

package cl

/*
#ifdef __APPLE__
#include <OpenCL/opencl.h>
#else
#include <CL/cl.h>
#endif
*/
import "C"

import (
	"fmt"
	"sync"

	"github.com/trongrind/trongrind/pkg/clcache"
	"github.com/trongrind/trongrind/pkg/clstatus"
	"github.com/trongrind/trongrind/pkg/device"
	"github.com/trongrind/trongrind/pkg/dispatcher"
	"github.com/trongrind/trongrind/pkg/vanity"
)

// Enumerator adapts Enumerate to dispatcher.DeviceEnumerator, caching each
// Device alongside its DeviceInfo so Builder doesn't need to re-enumerate.
type Enumerator struct {
	mu          sync.Mutex
	cache       *clcache.Cache
	inverseSize int
	devices     []Device
}

// NewEnumerator builds a DeviceEnumerator that consults cache (may be nil)
// only to fill DeviceInfo.Cached for the CLI's `[cached]` annotation, keyed
// by inverseSize the same way BuildProgram keys its own existence check.
// BuildProgram re-checks existence itself before deciding how to load.
func NewEnumerator(cache *clcache.Cache, inverseSize int) *Enumerator {
	return &Enumerator{cache: cache, inverseSize: inverseSize}
}

func (e *Enumerator) Enumerate(skip map[int]bool) ([]dispatcher.DeviceInfo, error) {
	devices, err := Enumerate(skip)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.devices = devices
	e.mu.Unlock()

	out := make([]dispatcher.DeviceInfo, len(devices))
	for i, d := range devices {
		cached := e.cache != nil && e.cache.Exists(d.Identity, e.inverseSize)
		out[i] = dispatcher.DeviceInfo{Name: d.Name, Identity: d.Identity, Cached: cached}
	}
	return out, nil
}

// Builder adapts BuildProgram + NewBackend to dispatcher.ProgramBuilder. It
// owns the shared cl_context every device's command queue is created
// against, per spec.md §4.6 step 2 ("the shared GPU context").
type Builder struct {
	enumerator  *Enumerator
	cache       *clcache.Cache
	source      []byte
	inverseSize int
	maxScore    int
	noCache     bool
}

// NewBuilder constructs a ProgramBuilder bound to enumerator — Build reads
// back the Device handles (including the cgo cl_device_id) the enumerator's
// last Enumerate call discovered, since dispatcher.DeviceInfo itself carries
// no cgo type.
func NewBuilder(enumerator *Enumerator, cache *clcache.Cache, source []byte, inverseSize, maxScore int, noCache bool) *Builder {
	return &Builder{enumerator: enumerator, cache: cache, source: source, inverseSize: inverseSize, maxScore: maxScore, noCache: noCache}
}

func (b *Builder) Build(infos []dispatcher.DeviceInfo, mode vanity.Mode, seed *vanity.SeedKey, cfg dispatcher.Config) ([]device.Backend, error) {
	b.enumerator.mu.Lock()
	devices := b.enumerator.devices
	b.enumerator.mu.Unlock()
	if len(devices) != len(infos) {
		return nil, fmt.Errorf("device/cl: builder sees %d devices, enumerator reported %d", len(devices), len(infos))
	}

	ids := deviceIDs(devices)
	var ret C.cl_int
	clCtx := C.clCreateContext(nil, C.cl_uint(len(ids)), &ids[0], nil, nil, &ret)
	if ret != C.CL_SUCCESS {
		return nil, clstatus.WrapGPU("clCreateContext", int32(ret))
	}

	program, err := BuildProgram(clCtx, devices, b.source, b.cache, b.inverseSize, b.maxScore, b.noCache)
	if err != nil {
		return nil, err
	}

	workMax := cfg.EffectiveWorkMax()
	backends := make([]device.Backend, len(devices))
	for i, d := range devices {
		queue := C.clCreateCommandQueue(clCtx, d.ID, 0, &ret)
		if ret != C.CL_SUCCESS {
			return nil, clstatus.WrapGPU("clCreateCommandQueue", int32(ret))
		}

		backend, err := NewBackend(clCtx, queue, program, d.ID, mode, seed, workMax, cfg.WorkLocal)
		if err != nil {
			return nil, err
		}
		backends[i] = backend
	}

	return backends, nil
}
