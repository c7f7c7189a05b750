// Package clstatus translates OpenCL integer status codes into
// human-readable text and defines the sentinel errors shared across the
// dispatcher, device and cache packages (spec §7's error taxonomy).
package clstatus

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per category in the error taxonomy. Use errors.Is to
// classify an error returned from the core packages.
var (
	// ErrBadSeedKey covers malformed hex, wrong-length public keys, or a
	// seed point that is not on the curve (configuration error).
	ErrBadSeedKey = errors.New("configuration: bad seed public key")
	// ErrNoDevices is returned when device enumeration (after applying
	// --skip) yields an empty device list (configuration error).
	ErrNoDevices = errors.New("configuration: no GPU devices selected")
	// ErrGPU wraps any OpenCL context/program/kernel/launch failure (GPU
	// error); the wrapped error carries the translated status text.
	ErrGPU = errors.New("gpu error")
	// ErrCacheLoad marks a cache load failure that the caller should treat
	// as non-fatal and fall back to source compilation.
	ErrCacheLoad = errors.New("kernel cache: load failed")
	// ErrResultBufferOverflow marks a non-fatal condition where a round's
	// score kernel wrote more results than the results buffer holds.
	ErrResultBufferOverflow = errors.New("round: result buffer overflow")
)

// statusNames holds the common OpenCL status codes this dispatcher expects
// to see in practice. Anything else falls back to a numeric message.
var statusNames = map[int32]string{
	0:   "CL_SUCCESS",
	-1:  "CL_DEVICE_NOT_FOUND",
	-2:  "CL_DEVICE_NOT_AVAILABLE",
	-3:  "CL_COMPILER_NOT_AVAILABLE",
	-4:  "CL_MEM_OBJECT_ALLOCATION_FAILURE",
	-5:  "CL_OUT_OF_RESOURCES",
	-6:  "CL_OUT_OF_HOST_MEMORY",
	-7:  "CL_PROFILING_INFO_NOT_AVAILABLE",
	-8:  "CL_MEM_COPY_OVERLAP",
	-9:  "CL_IMAGE_FORMAT_MISMATCH",
	-10: "CL_IMAGE_FORMAT_NOT_SUPPORTED",
	-11: "CL_BUILD_PROGRAM_FAILURE",
	-12: "CL_MAP_FAILURE",
	-30: "CL_INVALID_VALUE",
	-31: "CL_INVALID_DEVICE_TYPE",
	-32: "CL_INVALID_PLATFORM",
	-33: "CL_INVALID_DEVICE",
	-34: "CL_INVALID_CONTEXT",
	-35: "CL_INVALID_QUEUE_PROPERTIES",
	-36: "CL_INVALID_COMMAND_QUEUE",
	-38: "CL_INVALID_MEM_OBJECT",
	-40: "CL_INVALID_IMAGE_SIZE",
	-44: "CL_INVALID_PROGRAM",
	-45: "CL_INVALID_PROGRAM_EXECUTABLE",
	-46: "CL_INVALID_KERNEL_NAME",
	-47: "CL_INVALID_KERNEL_DEFINITION",
	-48: "CL_INVALID_KERNEL",
	-49: "CL_INVALID_ARG_INDEX",
	-50: "CL_INVALID_ARG_VALUE",
	-51: "CL_INVALID_ARG_SIZE",
	-52: "CL_INVALID_KERNEL_ARGS",
	-53: "CL_INVALID_WORK_DIMENSION",
	-54: "CL_INVALID_WORK_GROUP_SIZE",
	-55: "CL_INVALID_WORK_ITEM_SIZE",
	-56: "CL_INVALID_GLOBAL_OFFSET",
	-63: "CL_INVALID_GLOBAL_WORK_SIZE",
}

// Describe returns the human-readable name for an OpenCL status code, or a
// fallback string for codes not in the table.
func Describe(code int32) string {
	if name, ok := statusNames[code]; ok {
		return name
	}
	return fmt.Sprintf("unknown OpenCL status %d", code)
}

// WrapGPU wraps an OpenCL status code as an ErrGPU-classified error carrying
// the translated status text and the calling operation's name.
func WrapGPU(op string, code int32) error {
	return fmt.Errorf("%w: %s: %s", ErrGPU, op, Describe(code))
}
