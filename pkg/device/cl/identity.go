//go:build opencl

package cl

/*
#ifdef __APPLE__
#include <OpenCL/opencl.h>
#else
#include <CL/cl.h>
#endif

// cl_ext.h's vendor extension tokens aren't always present in a vendor's cl.h,
// so they're defined defensively the way profanity2's own source does.
#ifndef CL_DEVICE_TOPOLOGY_AMD
#define CL_DEVICE_TOPOLOGY_AMD 0x4037
#endif
#ifndef CL_DEVICE_TOPOLOGY_TYPE_PCIE_AMD
#define CL_DEVICE_TOPOLOGY_TYPE_PCIE_AMD 1
#endif
#ifndef CL_DEVICE_PCI_BUS_ID_NV
#define CL_DEVICE_PCI_BUS_ID_NV 0x4008
#endif
#ifndef CL_DEVICE_PCI_SLOT_ID_NV
#define CL_DEVICE_PCI_SLOT_ID_NV 0x4009
#endif

typedef union {
	struct { cl_uint type; cl_uint data[5]; } raw;
	struct { cl_uint type; cl_char unused[17]; cl_char bus; cl_char device; cl_char function; } pcie;
} cl_device_topology_amd;
*/
import "C"

import (
	"unsafe"

	"github.com/trongrind/trongrind/pkg/clcache"
)

// identify derives a clcache.DeviceIdentity from a device's PCIe topology,
// the way spec.md §9's design note asks: AMD's topology extension first,
// NVIDIA's bus/slot properties second, and a stable opaque handle as the
// fallback when a device exposes neither.
func identify(deviceID C.cl_device_id, index int) clcache.DeviceIdentity {
	if topo, ok := amdTopology(deviceID); ok {
		return clcache.DeviceIdentity{Vendor: "amd", HasTopology: true, Bus: topo.bus, Slot: topo.slot, Function: topo.function}
	}
	if bus, slot, ok := nvidiaBusSlot(deviceID); ok {
		return clcache.DeviceIdentity{Vendor: "nvidia", HasTopology: true, Bus: bus, Slot: slot}
	}
	return clcache.DeviceIdentity{HasTopology: false, FallbackHandle: fallbackHandle(deviceID, index)}
}

type pcieAddress struct {
	bus, slot, function uint32
}

func amdTopology(deviceID C.cl_device_id) (pcieAddress, bool) {
	var topo C.cl_device_topology_amd
	ret := C.clGetDeviceInfo(deviceID, C.CL_DEVICE_TOPOLOGY_AMD, C.size_t(unsafe.Sizeof(topo)), unsafe.Pointer(&topo), nil)
	if ret != C.CL_SUCCESS || topo.raw.type != C.CL_DEVICE_TOPOLOGY_TYPE_PCIE_AMD {
		return pcieAddress{}, false
	}
	return pcieAddress{
		bus:      uint32(byte(topo.pcie.bus)),
		slot:     uint32(byte(topo.pcie.device)),
		function: uint32(byte(topo.pcie.function)),
	}, true
}

func nvidiaBusSlot(deviceID C.cl_device_id) (bus, slot uint32, ok bool) {
	var busID, slotID C.cl_uint
	if ret := C.clGetDeviceInfo(deviceID, C.CL_DEVICE_PCI_BUS_ID_NV, C.size_t(unsafe.Sizeof(busID)), unsafe.Pointer(&busID), nil); ret != C.CL_SUCCESS {
		return 0, 0, false
	}
	if ret := C.clGetDeviceInfo(deviceID, C.CL_DEVICE_PCI_SLOT_ID_NV, C.size_t(unsafe.Sizeof(slotID)), unsafe.Pointer(&slotID), nil); ret != C.CL_SUCCESS {
		return 0, 0, false
	}
	return uint32(busID), uint32(slotID), true
}

// fallbackHandle degrades to the device's name plus its enumeration index,
// stable across runs on the same machine but opaque otherwise.
func fallbackHandle(deviceID C.cl_device_id, index int) string {
	name, _ := deviceInfoString(deviceID, C.CL_DEVICE_NAME)
	return name + "#" + itoa(index)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}
