package nlm

import (
	"encoding/binary"
	"math"
)

const gaussian_taps = 7

// Gaussian returns the 7x7 patch weighting table for sigma, row-major and
// normalised to sum to one.
func Gaussian(sigma float32) []float32 {
	two_sigma_squared := 2 * float64(sigma) * float64(sigma)
	table := make([]float32, gaussian_taps*gaussian_taps)
	var sum float64
	for y := -3; y <= 3; y++ {
		for x := -3; x <= 3; x++ {
			w := math.Exp(-float64(x*x+y*y)/two_sigma_squared) / (math.Pi * two_sigma_squared)
			table[gaussian_taps*(y+3)+x+3] = float32(w)
			sum += w
		}
	}
	for i := range table {
		table[i] = float32(float64(table[i]) / sum)
	}
	return table
}

// float32Bytes encodes values in the little-endian layout device buffers use.
func float32Bytes(values []float32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return out
}
