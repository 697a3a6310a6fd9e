package util

// ByPowerOf2 rounds x up to the next multiple of 2^p. Zero is treated as one.
func ByPowerOf2(x, p int) int {
	if x == 0 {
		x = 1
	}
	if p > 30 {
		p = 30
	}
	if p < 0 {
		p = 0
	}
	return ((x + (1 << p) - 1) >> p) << p
}

// FixBlockFault widens lengths that some drivers mishandle for 2D images.
// The rounding granularity grows with the magnitude of the length.
func FixBlockFault(length int) int {
	rescale := 0
	for i := 3; i < 17; i++ {
		if length>>i != 0 {
			rescale = i - 2
		}
	}
	return ByPowerOf2(length, rescale)
}

// FrameDimensions converts a plane of width x height 8-bit pixels into the
// element dimensions of an RGBA8 surface holding it, four pixels per element.
// width_pow2 and height_pow2 request extra power-of-two rounding.
func FrameDimensions(width, height, width_pow2, height_pow2 int) (int, int) {
	if width_pow2 < 2 {
		width_pow2 = 2
	}
	elem_count := ByPowerOf2(width, 2) >> 2
	elem_width := ByPowerOf2(elem_count, width_pow2-2)
	elem_height := ByPowerOf2(height, height_pow2)
	return FixBlockFault(elem_width), FixBlockFault(elem_height)
}

// Elements returns the number of 4-pixel elements covering cols pixels.
func Elements(cols int) int {
	return ByPowerOf2(cols, 2) >> 2
}
