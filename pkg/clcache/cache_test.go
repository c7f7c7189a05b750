package clcache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trongrind/trongrind/pkg/clstatus"
)

func TestCacheFilenameFormat(t *testing.T) {
	id := DeviceIdentity{Vendor: "amd", HasTopology: true, Bus: 1, Slot: 2, Function: 3}
	name := CacheFilename(id, 255)
	assert.Equal(t, "cache-opencl.255.66051", name) // (1<<16)|(2<<8)|3
}

func TestCacheFilenameChangesWithInverseSize(t *testing.T) {
	id := DeviceIdentity{HasTopology: false, FallbackHandle: "dev0"}
	assert.NotEqual(t, CacheFilename(id, 255), CacheFilename(id, 127))
}

func TestNvidiaUniqueIDOmitsFunction(t *testing.T) {
	id := DeviceIdentity{Vendor: "nvidia", HasTopology: true, Bus: 1, Slot: 2, Function: 9}
	assert.Equal(t, "65538", id.UniqueID()) // (1<<16)|2, function ignored
}

func TestLoadPolicy(t *testing.T) {
	assert.False(t, LoadPolicy(nil))
	assert.False(t, LoadPolicy([]bool{true, false}))
	assert.True(t, LoadPolicy([]bool{true, true}))
}

func TestStoreThenLoadRoundtrips(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	id := DeviceIdentity{HasTopology: false, FallbackHandle: "dev0"}

	require.NoError(t, c.Store(id, 255, []byte{1, 2, 3, 4}))
	assert.True(t, c.Exists(id, 255))

	data, err := c.Load(id, 255)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, data)
}

func TestLoadMissingFileIsClassifiedAsCacheLoadError(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	id := DeviceIdentity{HasTopology: false, FallbackHandle: "dev0"}

	_, err := c.Load(id, 255)
	require.Error(t, err)
	assert.True(t, errors.Is(err, clstatus.ErrCacheLoad))
	assert.False(t, c.Exists(id, 255))
}
