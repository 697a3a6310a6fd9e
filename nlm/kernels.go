package nlm

import (
	_ "embed"
	"fmt"

	u "github.com/moratsam/opencl-temporal-denoise/util"
)

//go:embed nlm.cl
var Source string

// Program entry points.
const (
	KernelZero        = "Zero"
	KernelSingleFrame = "NLMSingleFrameFourPixel"
	KernelMultiFrame  = "NLMMultiFrameFourPixel"
	KernelFinalise    = "NLMFinalise"
)

const (
	local_x    int = 8
	local_y    int = 32
	local_flat int = 256 // Work-group size of the 1D Zero kernel.
)

// BuildOptions returns the compiler options Source is built with.
func BuildOptions() string {
	return fmt.Sprintf("-DTAPS=%d -DHALF_TAPS=%d -cl-fast-relaxed-math", gaussian_taps, gaussian_taps/2)
}

// intermediateSize returns the element dimensions of the accumulation
// buffers of a width x height plane. They cover the whole 2D domain.
func intermediateSize(width, height int) (int, int) {
	return u.ByPowerOf2(width, 5) >> 2, u.ByPowerOf2(height, 5)
}
