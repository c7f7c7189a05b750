//go:build opencl

package cl

import "embed"

//go:embed kernels/trongrind.cl
var kernelSource embed.FS

// Source returns the embedded kernel source BuildProgram compiles when no
// cached binary is available, the way pkg/generator/ethereum/gpu.go embeds
// and exposes its own kernel file.
func Source() ([]byte, error) {
	return kernelSource.ReadFile("kernels/trongrind.cl")
}
