package clcache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"

	"github.com/trongrind/trongrind/pkg/clstatus"
)

// Cache reads and writes compiled kernel binaries under a single directory,
// one file per device per inverse size. Every file access is guarded by an
// advisory flock so two concurrent trongrind processes sharing a cache
// directory cannot interleave a partial write with a read.
type Cache struct {
	dir string
}

// New returns a Cache rooted at dir. dir is not created here; Store creates
// it lazily on first write.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Load reads the cached binary for id at inverseSize. Any failure, a missing
// file included, is wrapped in clstatus.ErrCacheLoad, which the OpenCL
// program builder treats as non-fatal and falls back to compiling from
// source.
func (c *Cache) Load(id DeviceIdentity, inverseSize int) ([]byte, error) {
	path := filepath.Join(c.dir, CacheFilename(id, inverseSize))

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", clstatus.ErrCacheLoad, err)
	}
	defer f.Close()

	unlock, err := lockShared(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", clstatus.ErrCacheLoad, err)
	}
	defer unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", clstatus.ErrCacheLoad, err)
	}
	return data, nil
}

// Exists reports whether a cache file is present for id at inverseSize,
// without taking a lock or reading its contents.
func (c *Cache) Exists(id DeviceIdentity, inverseSize int) bool {
	path := filepath.Join(c.dir, CacheFilename(id, inverseSize))
	_, err := os.Stat(path)
	return err == nil
}

// Store writes binary to the cache file for id at inverseSize, replacing
// any prior contents. Called after a successful source build, once per
// device, unless the caller passed --no-cache.
func (c *Cache) Store(id DeviceIdentity, inverseSize int, binary []byte) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("kernel cache: creating %s: %w", c.dir, err)
	}

	path := filepath.Join(c.dir, CacheFilename(id, inverseSize))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("kernel cache: opening %s: %w", path, err)
	}
	defer f.Close()

	unlock, err := lockExclusive(f)
	if err != nil {
		return fmt.Errorf("kernel cache: locking %s: %w", path, err)
	}
	defer unlock()

	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("kernel cache: truncating %s: %w", path, err)
	}

	if _, err := f.Write(binary); err != nil {
		return fmt.Errorf("kernel cache: writing %s: %w", path, err)
	}

	log.Info("wrote kernel binary to cache", "device", id.UniqueID(), "inverseSize", inverseSize, "bytes", len(binary))
	return nil
}
