//go:build opencl

package main

import (
	"github.com/trongrind/trongrind/pkg/clcache"
	"github.com/trongrind/trongrind/pkg/device/cl"
	"github.com/trongrind/trongrind/pkg/dispatcher"
)

// maxScore is passed to the kernel build as PROFANITY_MAX_SCORE: the largest
// score any predicate over a 40-nibble address can produce. It does not size
// the results buffer.
const maxScore = 40

func newBackendFactory(cache *clcache.Cache, cfg dispatcher.Config) (dispatcher.DeviceEnumerator, dispatcher.ProgramBuilder, error) {
	source, err := cl.Source()
	if err != nil {
		return nil, nil, err
	}

	enumerator := cl.NewEnumerator(cache, cfg.InverseSize)
	builder := cl.NewBuilder(enumerator, cache, source, cfg.InverseSize, maxScore, cfg.NoCache)
	return enumerator, builder, nil
}
