//go:build !opencl

package main

import (
	"fmt"

	"github.com/trongrind/trongrind/pkg/clcache"
	"github.com/trongrind/trongrind/pkg/dispatcher"
)

func newBackendFactory(cache *clcache.Cache, cfg dispatcher.Config) (dispatcher.DeviceEnumerator, dispatcher.ProgramBuilder, error) {
	return nil, nil, fmt.Errorf("GPU support not compiled. Build with: go build -tags opencl")
}
