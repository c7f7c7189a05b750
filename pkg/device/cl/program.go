//go:build opencl

package cl

/*
#ifdef __APPLE__
#include <OpenCL/opencl.h>
#else
#include <CL/cl.h>
#endif
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/ethereum/go-ethereum/log"

	"github.com/trongrind/trongrind/pkg/clcache"
	"github.com/trongrind/trongrind/pkg/clstatus"
)

// BuildOptions renders the "-D PROFANITY_INVERSE_SIZE=<n> -D
// PROFANITY_MAX_SCORE=<m>" string spec.md §4.6 step 4 specifies.
func BuildOptions(inverseSize, maxScore int) string {
	return fmt.Sprintf("-D PROFANITY_INVERSE_SIZE=%d -D PROFANITY_MAX_SCORE=%d", inverseSize, maxScore)
}

// BuildProgram implements spec.md §4.6 steps 2-4: it loads cached binaries
// for every device when clcache.LoadPolicy says they are all present,
// compiles from source otherwise, and — on a successful source build —
// writes each device's compiled binary back to the cache unless noCache is
// set.
func BuildProgram(clCtx C.cl_context, devices []Device, source []byte, cache *clcache.Cache, inverseSize, maxScore int, noCache bool) (C.cl_program, error) {
	exists := make([]bool, len(devices))
	for i, d := range devices {
		exists[i] = cache != nil && !noCache && cache.Exists(d.Identity, inverseSize)
	}

	options := BuildOptions(inverseSize, maxScore)
	if clcache.LoadPolicy(exists) {
		program, err := buildFromBinaries(clCtx, devices, cache, inverseSize)
		if err == nil {
			for i := range devices {
				log.Info("loaded kernel binary from cache", "device", devices[i].Name, "index", i)
			}
			return program, nil
		}
		log.Warn("kernel cache load failed, falling back to source build", "err", err)
	}

	program, err := buildFromSource(clCtx, devices, source, options)
	if err != nil {
		return nil, err
	}

	if cache != nil && !noCache {
		if err := persistBinaries(program, devices, cache, inverseSize); err != nil {
			log.Warn("writing kernel binary cache failed", "err", err)
		}
	}
	return program, nil
}

func buildFromSource(clCtx C.cl_context, devices []Device, source []byte, options string) (C.cl_program, error) {
	cSrc := C.CString(string(source))
	defer C.free(unsafe.Pointer(cSrc))
	length := C.size_t(len(source))

	var ret C.cl_int
	program := C.clCreateProgramWithSource(clCtx, 1, &cSrc, &length, &ret)
	if ret != C.CL_SUCCESS {
		return nil, clstatus.WrapGPU("clCreateProgramWithSource", int32(ret))
	}

	ids := deviceIDs(devices)
	cOptions := C.CString(options)
	defer C.free(unsafe.Pointer(cOptions))

	ret = C.clBuildProgram(program, C.cl_uint(len(ids)), &ids[0], cOptions, nil, nil)
	if ret != C.CL_SUCCESS {
		return nil, buildFailureError(program, ids)
	}
	return program, nil
}

func buildFromBinaries(clCtx C.cl_context, devices []Device, cache *clcache.Cache, inverseSize int) (C.cl_program, error) {
	ids := deviceIDs(devices)
	binaries := make([][]byte, len(devices))
	sizes := make([]C.size_t, len(devices))
	ptrs := make([]*C.uchar, len(devices))

	for i, d := range devices {
		data, err := cache.Load(d.Identity, inverseSize)
		if err != nil {
			return nil, err
		}
		binaries[i] = data
		sizes[i] = C.size_t(len(data))
		if len(data) > 0 {
			ptrs[i] = (*C.uchar)(unsafe.Pointer(&data[0]))
		}
	}

	status := make([]C.cl_int, len(devices))
	var ret C.cl_int
	program := C.clCreateProgramWithBinary(clCtx, C.cl_uint(len(ids)), &ids[0], &sizes[0], &ptrs[0], &status[0], &ret)
	if ret != C.CL_SUCCESS {
		return nil, clstatus.WrapGPU("clCreateProgramWithBinary", int32(ret))
	}

	ret = C.clBuildProgram(program, C.cl_uint(len(ids)), &ids[0], nil, nil, nil)
	if ret != C.CL_SUCCESS {
		return nil, buildFailureError(program, ids)
	}
	return program, nil
}

func persistBinaries(program C.cl_program, devices []Device, cache *clcache.Cache, inverseSize int) error {
	sizes := make([]C.size_t, len(devices))
	if ret := C.clGetProgramInfo(program, C.CL_PROGRAM_BINARY_SIZES, C.size_t(unsafe.Sizeof(sizes[0]))*C.size_t(len(sizes)), unsafe.Pointer(&sizes[0]), nil); ret != C.CL_SUCCESS {
		return clstatus.WrapGPU("clGetProgramInfo(sizes)", int32(ret))
	}

	buffers := make([][]byte, len(devices))
	ptrs := make([]*C.uchar, len(devices))
	for i := range devices {
		buffers[i] = make([]byte, sizes[i])
		if sizes[i] > 0 {
			ptrs[i] = (*C.uchar)(unsafe.Pointer(&buffers[i][0]))
		}
	}
	if ret := C.clGetProgramInfo(program, C.CL_PROGRAM_BINARIES, C.size_t(unsafe.Sizeof(ptrs[0]))*C.size_t(len(ptrs)), unsafe.Pointer(&ptrs[0]), nil); ret != C.CL_SUCCESS {
		return clstatus.WrapGPU("clGetProgramInfo(binaries)", int32(ret))
	}

	for i, d := range devices {
		if err := cache.Store(d.Identity, inverseSize, buffers[i]); err != nil {
			return err
		}
	}
	return nil
}

func deviceIDs(devices []Device) []C.cl_device_id {
	ids := make([]C.cl_device_id, len(devices))
	for i, d := range devices {
		ids[i] = d.ID
	}
	return ids
}

func buildFailureError(program C.cl_program, ids []C.cl_device_id) error {
	var logSize C.size_t
	C.clGetProgramBuildInfo(program, ids[0], C.CL_PROGRAM_BUILD_LOG, 0, nil, &logSize)
	buildLog := make([]byte, logSize)
	if logSize > 0 {
		C.clGetProgramBuildInfo(program, ids[0], C.CL_PROGRAM_BUILD_LOG, logSize, unsafe.Pointer(&buildLog[0]), nil)
	}
	return fmt.Errorf("%w: build failed: %s", clstatus.ErrGPU, string(buildLog))
}
