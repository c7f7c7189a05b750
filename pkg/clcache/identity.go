// Package clcache implements the per-device compiled-kernel binary cache:
// filename derivation, the load-all-or-compile-all policy, and flock-guarded
// file I/O. It has no cgo dependency; the opencl-tagged device package
// derives a DeviceIdentity from real PCIe topology and hands it in as a
// plain value, keeping the cache logic itself portable and testable.
package clcache

import "fmt"

// DeviceIdentity is the PCIe-topology-derived unique identifier a cache
// filename is keyed on, alongside inverse size (spec.md §4.5).
type DeviceIdentity struct {
	Vendor string
	// Bus, Slot, Function come from AMD's topology extension, or Bus/Slot
	// alone from NVIDIA's bus/slot device properties.
	Bus, Slot, Function uint32
	// HasTopology reports whether Bus/Slot/Function were populated from a
	// vendor extension. When false, FallbackHandle is used instead.
	HasTopology bool
	// FallbackHandle is a stable but opaque string used when neither
	// vendor's PCIe extension is available.
	FallbackHandle string
}

// UniqueID renders the device identity as the single integer (or opaque
// string) the original cache filename embeds.
func (d DeviceIdentity) UniqueID() string {
	if !d.HasTopology {
		return d.FallbackHandle
	}
	if d.Vendor == "amd" {
		return fmt.Sprintf("%d", (d.Bus<<16)|(d.Slot<<8)|d.Function)
	}
	return fmt.Sprintf("%d", (d.Bus<<16)|d.Slot)
}

// CacheFilename returns "cache-opencl.<inverseSize>.<uniqueID>", the
// filename spec.md §4.5 specifies. Changing inverseSize implicitly
// invalidates any prior cache entry because it changes the filename.
func CacheFilename(id DeviceIdentity, inverseSize int) string {
	return fmt.Sprintf("cache-opencl.%d.%s", inverseSize, id.UniqueID())
}
