// Package hostkernels implements the entry points of the NLM program in Go
// so the vanilla device can run it. The arithmetic follows the program text
// pixel for pixel: every work-item filters the four pixels of one element.
package hostkernels

import (
	"math"

	"github.com/moratsam/opencl-temporal-denoise/pu/vanilla"
)

const (
	taps      = 7
	half_taps = taps / 2
)

// All returns the host kernels by entry point name.
func All() map[string]vanilla.HostKernel {
	return map[string]vanilla.HostKernel{
		"Zero":                    {Arity: 1, Run: zero},
		"NLMSingleFrameFourPixel": {Arity: 8, Run: singleFrame},
		"NLMMultiFrameFourPixel":  {Arity: 12, Run: multiFrame},
		"NLMFinalise":             {Arity: 5, Run: finalise},
	}
}

func zero(args vanilla.Args, gid [3]int) {
	buffer := args.Floats(0)
	for k := 0; k < 4; k++ {
		if i := gid[0]*4 + k; i < len(buffer) {
			buffer[i] = 0
		}
	}
}

type patches struct {
	width    int
	height   int
	gaussian []float32
	linear   bool
}

func (p patches) decode(v float32) float32 {
	if p.linear {
		return float32(math.Pow(float64(v), 2.2))
	}
	return v
}

// distance is the Gaussian weighted squared difference between the patch
// around (ax, ay) in a and the patch around (bx, by) in b.
func (p patches) distance(a *vanilla.Surface, ax, ay int, b *vanilla.Surface, bx, by int) float32 {
	var d float32
	for py := -half_taps; py <= half_taps; py++ {
		for px := -half_taps; px <= half_taps; px++ {
			diff := p.decode(a.At(ax+px, ay+py, p.width, p.height)) -
				p.decode(b.At(bx+px, by+py, p.width, p.height))
			d += p.gaussian[(py+half_taps)*taps+px+half_taps] * diff * diff
		}
	}
	return d
}

// weigh accumulates the candidates around (x, y) in sample against the patch
// of target. With identity set the centre candidate is skipped and the
// target pixel gets the largest weight seen instead.
func (p patches) weigh(target, sample *vanilla.Surface, x, y int, h float32, expand int, identity bool) (float32, float32) {
	var sum, sum_w, max_w float32
	for sy := -half_taps; sy <= half_taps; sy++ {
		for sx := -half_taps; sx <= half_taps; sx++ {
			if identity && sx == 0 && sy == 0 {
				continue
			}
			cx, cy := x+sx*expand, y+sy*expand
			w := float32(math.Exp(float64(-p.distance(target, x, y, sample, cx, cy) / h)))
			sum += w * sample.At(cx, cy, p.width, p.height)
			sum_w += w
			if w > max_w {
				max_w = w
			}
		}
	}
	if identity {
		sum += max_w * target.At(x, y, p.width, p.height)
		sum_w += max_w
	}
	return sum, sum_w
}

// Args: src, width, height, h, sample_expand, gaussian, dest, linear.
func singleFrame(args vanilla.Args, gid [3]int) {
	src := args.Surface(0)
	p := patches{width: args.Int(1), height: args.Int(2), gaussian: args.Floats(5), linear: args.Int(7) != 0}
	h, expand := args.Float(3), args.Int(4)
	dest := args.Surface(6)

	y := gid[1]
	for k := 0; k < 4; k++ {
		x := gid[0]*4 + k
		if x >= p.width || y >= p.height {
			return
		}
		sum, sum_w := p.weigh(src, src, x, y, h, expand, true)
		out := src.At(x, y, p.width, p.height)
		if sum_w > 0 {
			out = sum / sum_w
		}
		dest.Set(x, y, out)
	}
}

// Args: target, sample, sample_equals_target, width, height, h,
// sample_expand, gaussian, intermediate_width, averages, weights, linear.
func multiFrame(args vanilla.Args, gid [3]int) {
	target, sample := args.Surface(0), args.Surface(1)
	identity := args.Int(2) != 0
	p := patches{width: args.Int(3), height: args.Int(4), gaussian: args.Floats(7), linear: args.Int(11) != 0}
	h, expand := args.Float(5), args.Int(6)
	intermediate_width := args.Int(8)
	averages, weights := args.Floats(9), args.Floats(10)

	y := gid[1]
	for k := 0; k < 4; k++ {
		x := gid[0]*4 + k
		if x >= p.width || y >= p.height {
			return
		}
		sum, sum_w := p.weigh(target, sample, x, y, h, expand, identity)
		i := ((y*intermediate_width)+gid[0])*4 + k
		averages[i] += sum
		weights[i] += sum_w
	}
}

// Args: target, averages, weights, intermediate_width, dest.
func finalise(args vanilla.Args, gid [3]int) {
	target := args.Surface(0)
	averages, weights := args.Floats(1), args.Floats(2)
	intermediate_width := args.Int(3)
	dest := args.Surface(4)

	y := gid[1]
	for k := 0; k < 4; k++ {
		x := gid[0]*4 + k
		if x >= dest.Width || y >= dest.Height {
			return
		}
		i := ((y*intermediate_width)+gid[0])*4 + k
		out := target.At(x, y, target.Width, target.Height)
		if weights[i] > 0 {
			out = averages[i] / weights[i]
		}
		dest.Set(x, y, out)
	}
}
