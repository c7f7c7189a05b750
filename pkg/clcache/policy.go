package clcache

// LoadPolicy implements spec.md §4.5's load-all-or-compile-all rule: if
// every selected device already has a cache file, the dispatcher loads all
// of them as binaries in one program-creation call; if even one is
// missing, every device is compiled from source instead. It is a pure
// function over already-probed existence so it is trivially testable
// without touching a filesystem.
func LoadPolicy(cacheFileExists []bool) bool {
	if len(cacheFileExists) == 0 {
		return false
	}
	for _, ok := range cacheFileExists {
		if !ok {
			return false
		}
	}
	return true
}
