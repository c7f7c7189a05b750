//go:build opencl

// Package cl is the cgo OpenCL backend: the real device.Backend
// implementation that binds the six-kernel round pipeline (init, inverse,
// point_add, transform, keccak, score) to actual GPU hardware. It mirrors
// the teacher's existing cgo generators (pkg/generator/ethereum/gpu.go):
// same CFLAGS/LDFLAGS shape, same query-size-then-allocate style for
// vendor-API outputs, generalized from one device and one kernel to N
// devices and the mode-selected scoring kernel.
package cl

/*
#cgo CFLAGS: -I${SRCDIR}/../../../deps/opencl-headers
#cgo windows LDFLAGS: -L${SRCDIR}/../../../deps/lib -lOpenCL
#cgo linux LDFLAGS: -lOpenCL
#cgo darwin LDFLAGS: -framework OpenCL

#ifdef __APPLE__
#include <OpenCL/opencl.h>
#else
#include <CL/cl.h>
#endif

#include <stdlib.h>
#include <string.h>
*/
import "C"

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/trongrind/trongrind/pkg/clstatus"
	"github.com/trongrind/trongrind/pkg/device"
	"github.com/trongrind/trongrind/pkg/vanity"
)

// maxResultsPerRound bounds the results buffer every device allocates, the
// same fixed capacity spec.md §7 describes for the overflow condition.
const maxResultsPerRound = 64

// kernelResult is the wire-equivalent of device.RawResult as written by the
// score kernel: work-item index, score, 20-byte address.
type kernelResult struct {
	workItem uint32
	score    uint32
	address  [20]byte
}

// Backend drives one OpenCL device through the round pipeline. It holds the
// kernel objects for the fixed pipeline stages plus the mode-selected score
// kernel, and the device-side buffers the pipeline reads and writes.
type Backend struct {
	deviceID C.cl_device_id
	clCtx    C.cl_context
	queue    C.cl_command_queue
	program  C.cl_program

	kernelInit      C.cl_kernel
	kernelInverse   C.cl_kernel
	kernelPointAdd  C.cl_kernel
	kernelTransform C.cl_kernel // nil when mode.Target == vanity.Address
	kernelKeccak    C.cl_kernel
	kernelScore     C.cl_kernel

	bufResults C.cl_mem
	bufCount   C.cl_mem
	bufBest    C.cl_mem
	bufSeedPub C.cl_mem
	bufData1   C.cl_mem
	bufData2   C.cl_mem

	workMax   uint64
	workLocal uint64

	mu      sync.Mutex
	pending map[uint64]C.cl_event
}

// NewBackend creates kernel objects for mode's pipeline from an already
// built program and allocates the device-side results buffer. seedPub and
// mode's data1/data2 are uploaded once; they do not change between rounds.
// workLocal of 0 lets the driver pick its own local work group size.
func NewBackend(clCtx C.cl_context, queue C.cl_command_queue, program C.cl_program, deviceID C.cl_device_id, mode vanity.Mode, seedPub *vanity.SeedKey, workMax, workLocal uint64) (*Backend, error) {
	b := &Backend{
		clCtx:     clCtx,
		queue:     queue,
		program:   program,
		deviceID:  deviceID,
		workMax:   workMax,
		workLocal: workLocal,
		pending:   make(map[uint64]C.cl_event),
	}

	var err error
	if b.kernelInit, err = createKernel(program, "profanity_init"); err != nil {
		return nil, err
	}
	if b.kernelInverse, err = createKernel(program, "profanity_inverse"); err != nil {
		return nil, err
	}
	if b.kernelPointAdd, err = createKernel(program, "profanity_point_add"); err != nil {
		return nil, err
	}
	if transformName, terr := mode.TransformKernel(); terr != nil {
		return nil, terr
	} else if transformName != "" {
		if b.kernelTransform, err = createKernel(program, transformName); err != nil {
			return nil, err
		}
	}
	if b.kernelKeccak, err = createKernel(program, "profanity_keccak"); err != nil {
		return nil, err
	}
	if b.kernelScore, err = createKernel(program, mode.Kernel); err != nil {
		return nil, err
	}

	var ret C.cl_int
	resultStride := C.size_t(unsafe.Sizeof(kernelResult{}))
	b.bufResults = C.clCreateBuffer(clCtx, C.CL_MEM_WRITE_ONLY, resultStride*C.size_t(maxResultsPerRound), nil, &ret)
	if ret != C.CL_SUCCESS {
		return nil, clstatus.WrapGPU("clCreateBuffer(results)", int32(ret))
	}
	b.bufCount = C.clCreateBuffer(clCtx, C.CL_MEM_READ_WRITE, 4, nil, &ret)
	if ret != C.CL_SUCCESS {
		return nil, clstatus.WrapGPU("clCreateBuffer(count)", int32(ret))
	}
	b.bufBest = C.clCreateBuffer(clCtx, C.CL_MEM_READ_ONLY, 4, nil, &ret)
	if ret != C.CL_SUCCESS {
		return nil, clstatus.WrapGPU("clCreateBuffer(best)", int32(ret))
	}

	seedBytes := seedPub.Pub.SerializeUncompressed()[1:]
	b.bufSeedPub = C.clCreateBuffer(clCtx, C.CL_MEM_READ_ONLY|C.CL_MEM_COPY_HOST_PTR, C.size_t(len(seedBytes)), unsafe.Pointer(&seedBytes[0]), &ret)
	if ret != C.CL_SUCCESS {
		return nil, clstatus.WrapGPU("clCreateBuffer(seedPub)", int32(ret))
	}
	b.bufData1 = C.clCreateBuffer(clCtx, C.CL_MEM_READ_ONLY|C.CL_MEM_COPY_HOST_PTR, C.size_t(len(mode.Data1)), unsafe.Pointer(&mode.Data1[0]), &ret)
	if ret != C.CL_SUCCESS {
		return nil, clstatus.WrapGPU("clCreateBuffer(data1)", int32(ret))
	}
	b.bufData2 = C.clCreateBuffer(clCtx, C.CL_MEM_READ_ONLY|C.CL_MEM_COPY_HOST_PTR, C.size_t(len(mode.Data2)), unsafe.Pointer(&mode.Data2[0]), &ret)
	if ret != C.CL_SUCCESS {
		return nil, clstatus.WrapGPU("clCreateBuffer(data2)", int32(ret))
	}

	if ret = C.clSetKernelArg(b.kernelInit, 1, C.size_t(unsafe.Sizeof(b.bufSeedPub)), unsafe.Pointer(&b.bufSeedPub)); ret != C.CL_SUCCESS {
		return nil, clstatus.WrapGPU("clSetKernelArg(init, seedPub)", int32(ret))
	}
	scoreArgs := []C.cl_mem{b.bufResults, b.bufCount, b.bufBest, b.bufData1, b.bufData2}
	for i, arg := range scoreArgs {
		if ret = C.clSetKernelArg(b.kernelScore, C.cl_uint(i), C.size_t(unsafe.Sizeof(arg)), unsafe.Pointer(&scoreArgs[i])); ret != C.CL_SUCCESS {
			return nil, clstatus.WrapGPU(fmt.Sprintf("clSetKernelArg(score, %d)", i), int32(ret))
		}
	}

	return b, nil
}

func createKernel(program C.cl_program, name string) (C.cl_kernel, error) {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	var ret C.cl_int
	kernel := C.clCreateKernel(program, cName, &ret)
	if ret != C.CL_SUCCESS {
		return nil, clstatus.WrapGPU(fmt.Sprintf("clCreateKernel(%s)", name), int32(ret))
	}
	return kernel, nil
}

// EnqueueRound schedules the fixed kernel chain for one round on this
// device's in-order queue: init, inverse, point_add, transform (if any),
// keccak, score. Every stage is queued without blocking; only
// CollectResults waits on completion, which is what lets the round driver
// keep two rounds in flight.
func (b *Backend) EnqueueRound(ctx context.Context, round uint64, baseOffset uint256.Int, bestScore uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	zero := uint32(0)
	var ret C.cl_int
	ret = C.clEnqueueWriteBuffer(b.queue, b.bufCount, C.CL_FALSE, 0, 4, unsafe.Pointer(&zero), 0, nil, nil)
	if ret != C.CL_SUCCESS {
		return clstatus.WrapGPU("clEnqueueWriteBuffer(count)", int32(ret))
	}
	ret = C.clEnqueueWriteBuffer(b.queue, b.bufBest, C.CL_FALSE, 0, 4, unsafe.Pointer(&bestScore), 0, nil, nil)
	if ret != C.CL_SUCCESS {
		return clstatus.WrapGPU("clEnqueueWriteBuffer(best)", int32(ret))
	}

	offsetBytes := baseOffset.Bytes32()
	ret = C.clSetKernelArg(b.kernelInit, 0, 32, unsafe.Pointer(&offsetBytes[0]))
	if ret != C.CL_SUCCESS {
		return clstatus.WrapGPU("clSetKernelArg(init, offset)", int32(ret))
	}

	var localPtr *C.size_t
	local := C.size_t(b.workLocal)
	if b.workLocal > 0 {
		localPtr = &local
	}

	for _, kernel := range []C.cl_kernel{b.kernelInit, b.kernelInverse, b.kernelPointAdd, b.kernelTransform, b.kernelKeccak, b.kernelScore} {
		if kernel == nil {
			continue
		}
		global := C.size_t(b.workMax)
		ret = C.clEnqueueNDRangeKernel(b.queue, kernel, 1, nil, &global, localPtr, 0, nil, nil)
		if ret != C.CL_SUCCESS {
			return clstatus.WrapGPU("clEnqueueNDRangeKernel", int32(ret))
		}
	}

	var event C.cl_event
	ret = C.clEnqueueMarkerWithWaitList(b.queue, 0, nil, &event)
	if ret != C.CL_SUCCESS {
		return clstatus.WrapGPU("clEnqueueMarkerWithWaitList", int32(ret))
	}

	b.mu.Lock()
	b.pending[round] = event
	b.mu.Unlock()
	return nil
}

// CollectResults blocks on the round's completion event, reads back the
// result count and buffer, and translates them into device.RawResult
// values. A count exceeding the buffer's capacity is logged here as a
// non-fatal overflow (spec.md §7) and only what fits is returned.
func (b *Backend) CollectResults(ctx context.Context, round uint64) ([]device.RawResult, error) {
	b.mu.Lock()
	event, ok := b.pending[round]
	delete(b.pending, round)
	b.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("device/cl: round %d was never enqueued", round)
	}

	if ret := C.clWaitForEvents(1, &event); ret != C.CL_SUCCESS {
		return nil, clstatus.WrapGPU("clWaitForEvents", int32(ret))
	}
	C.clReleaseEvent(event)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var count uint32
	ret := C.clEnqueueReadBuffer(b.queue, b.bufCount, C.CL_TRUE, 0, 4, unsafe.Pointer(&count), 0, nil, nil)
	if ret != C.CL_SUCCESS {
		return nil, clstatus.WrapGPU("clEnqueueReadBuffer(count)", int32(ret))
	}
	if count > maxResultsPerRound {
		log.Warn("result buffer overflow, excess results dropped", "round", round, "count", count, "capacity", maxResultsPerRound)
		count = maxResultsPerRound
	}
	if count == 0 {
		return nil, nil
	}

	raw := make([]kernelResult, count)
	stride := C.size_t(unsafe.Sizeof(kernelResult{}))
	ret = C.clEnqueueReadBuffer(b.queue, b.bufResults, C.CL_TRUE, 0, stride*C.size_t(count), unsafe.Pointer(&raw[0]), 0, nil, nil)
	if ret != C.CL_SUCCESS {
		return nil, clstatus.WrapGPU("clEnqueueReadBuffer(results)", int32(ret))
	}

	out := make([]device.RawResult, count)
	for i, r := range raw {
		out[i] = device.RawResult{WorkItem: r.workItem, Score: r.score, Address: r.address}
	}
	return out, nil
}

// Shutdown drains the queue and releases every per-device resource this
// backend holds, in the order spec.md §9's open question demands: queue drain and
// release, then kernels, then buffers. The program and context outlive this
// call — they are shared across every device and are not released here.
func (b *Backend) Shutdown() error {
	C.clFinish(b.queue)
	C.clReleaseCommandQueue(b.queue)

	for _, k := range []C.cl_kernel{b.kernelInit, b.kernelInverse, b.kernelPointAdd, b.kernelTransform, b.kernelKeccak, b.kernelScore} {
		if k != nil {
			C.clReleaseKernel(k)
		}
	}
	for _, m := range []C.cl_mem{b.bufResults, b.bufCount, b.bufBest, b.bufSeedPub, b.bufData1, b.bufData2} {
		if m != nil {
			C.clReleaseMemObject(m)
		}
	}
	return nil
}
