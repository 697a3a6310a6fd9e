package hostkernels

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/moratsam/opencl-temporal-denoise/pu"
	"github.com/moratsam/opencl-temporal-denoise/pu/vanilla"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const source = `
__kernel void Zero(__global float4 *buffer) {}
__kernel void NLMSingleFrameFourPixel(read_only image2d_t src) {}
__kernel void NLMMultiFrameFourPixel(read_only image2d_t target) {}
__kernel void NLMFinalise(read_only image2d_t target) {}
`

type bench struct {
	t       *testing.T
	dev     *vanilla.Device
	q       pu.Queue
	program pu.Program
}

func newBench(t *testing.T) *bench {
	dev := vanilla.NewDevice(vanilla.WithKernels(All()), vanilla.WithComputeUnits(2))
	q, err := dev.CreateQueue()
	require.NoError(t, err)
	program, err := dev.BuildProgram(source, "")
	require.NoError(t, err)
	return &bench{t: t, dev: dev, q: q, program: program}
}

func (b *bench) close() {
	require.NoError(b.t, b.q.Release())
}

func (b *bench) kernel(name string, args ...interface{}) pu.Kernel {
	k, err := b.program.CreateKernel(name)
	require.NoError(b.t, err)
	for i, a := range args {
		require.NoError(b.t, k.SetArg(i, a))
	}
	return k
}

func (b *bench) run(k pu.Kernel, global, local []int) {
	_, err := b.q.EnqueueKernel(k, global, local, nil)
	require.NoError(b.t, err)
	require.NoError(b.t, b.q.Finish())
}

func (b *bench) surface(width, height int, value byte) pu.Memory {
	mem, err := b.dev.AllocateSurface((width+3)/4, height)
	require.NoError(b.t, err)
	data := make([]byte, width*height)
	for i := range data {
		data[i] = value
	}
	_, err = b.q.EnqueueWriteSurface(mem, true, width, height, width, data, nil)
	require.NoError(b.t, err)
	return mem
}

func (b *bench) read(mem pu.Memory, width, height int) []byte {
	data := make([]byte, width*height)
	_, err := b.q.EnqueueReadSurface(mem, true, width, height, width, data, nil)
	require.NoError(b.t, err)
	return data
}

func (b *bench) floats(values []float32) pu.Memory {
	mem, err := b.dev.AllocateBuffer(4 * len(values))
	require.NoError(b.t, err)
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[4*i:], math.Float32bits(v))
	}
	_, err = b.q.EnqueueWriteBuffer(mem, true, 0, data, nil)
	require.NoError(b.t, err)
	return mem
}

func (b *bench) readFloats(mem pu.Memory) []float32 {
	data := make([]byte, mem.Size())
	_, err := b.q.EnqueueReadBuffer(mem, true, 0, data, nil)
	require.NoError(b.t, err)
	values := make([]float32, len(data)/4)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return values
}

// flat is a 7x7 weight table favouring no tap.
func flat() []float32 {
	table := make([]float32, taps*taps)
	for i := range table {
		table[i] = 1.0 / float32(len(table))
	}
	return table
}

func TestZero(t *testing.T) {
	b := newBench(t)
	defer b.close()

	values := make([]float32, 64)
	for i := range values {
		values[i] = float32(i) + 0.5
	}
	buffer := b.floats(values)
	b.run(b.kernel("Zero", buffer), []int{16}, []int{8})
	require.Equal(t, make([]float32, 64), b.readFloats(buffer))
}

func TestSingleFrameUniform(t *testing.T) {
	b := newBench(t)
	defer b.close()

	for _, linear := range []int32{0, 1} {
		src := b.surface(10, 3, 77)
		dest := b.surface(10, 3, 0)
		k := b.kernel("NLMSingleFrameFourPixel", src, int32(10), int32(3), float32(0.05), int32(2), b.floats(flat()), dest, linear)
		b.run(k, []int{8, 32}, []int{8, 32})

		for _, v := range b.read(dest, 10, 3) {
			require.Equal(t, byte(77), v)
		}
	}
}

func TestMultiFrameAccumulates(t *testing.T) {
	b := newBench(t)
	defer b.close()

	const width, height, intermediate_width = 8, 2, 8
	target := b.surface(width, height, 51)
	sample := b.surface(width, height, 51)
	averages := b.floats(make([]float32, intermediate_width*32*4))
	weights := b.floats(make([]float32, intermediate_width*32*4))
	gaussian := b.floats(flat())

	for _, identity := range []int32{1, 0} {
		k := b.kernel("NLMMultiFrameFourPixel", target, sample, identity, int32(width), int32(height),
			float32(0.1), int32(1), gaussian, int32(intermediate_width), averages, weights, int32(0))
		b.run(k, []int{8, 32}, []int{8, 32})
	}

	// Identical frames weigh every candidate 1: the identity pass gives the
	// centre the largest weight, the other pass weighs it like the rest.
	a, w := b.readFloats(averages), b.readFloats(weights)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := ((y*intermediate_width)+x/4)*4 + x%4
			require.InDelta(t, 98, w[i], 1e-3, "x %d y %d", x, y)
			require.InDelta(t, 98*0.2, a[i], 1e-3, "x %d y %d", x, y)
		}
	}
	require.Zero(t, w[((2*intermediate_width)+0)*4], "rows below the plane stay untouched")
}

func TestFinalise(t *testing.T) {
	b := newBench(t)
	defer b.close()

	const intermediate_width = 2
	target := b.surface(8, 1, 200)
	dest := b.surface(8, 1, 0)
	averages := make([]float32, intermediate_width*4)
	weights := make([]float32, intermediate_width*4)
	for i := 0; i < 4; i++ {
		averages[i] = 0.2 * float32(i+1)
		weights[i] = float32(i + 1)
	}
	k := b.kernel("NLMFinalise", target, b.floats(averages), b.floats(weights), int32(intermediate_width), dest)
	b.run(k, []int{2, 1}, []int{2, 1})

	// Zero weight keeps the target pixel.
	require.Equal(t, []byte{51, 51, 51, 51, 200, 200, 200, 200}, b.read(dest, 8, 1))
}
