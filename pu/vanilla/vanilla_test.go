package vanilla

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/moratsam/opencl-temporal-denoise/pu"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const invert_source = `
__kernel void Invert(__read_only image2d_t src, __write_only image2d_t dst, int width, int height) {}
`

// invert writes 1-v for every pixel of a width x height plane.
var invert = HostKernel{
	Arity: 4,
	Run: func(args Args, gid [3]int) {
		src, dst := args.Surface(0), args.Surface(1)
		w, h := args.Int(2), args.Int(3)
		x, y := gid[0], gid[1]
		if x >= w || y >= h {
			return
		}
		dst.Set(x, y, 1-src.At(x, y, w, h))
	},
}

func newTestDevice(opts ...Option) *Device {
	opts = append([]Option{WithKernels(map[string]HostKernel{"Invert": invert}), WithComputeUnits(4)}, opts...)
	return NewDevice(opts...)
}

func plane(cols, rows, pitch int) []byte {
	data := make([]byte, pitch*rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			data[y*pitch+x] = byte(x*7 + y*3)
		}
	}
	return data
}

func TestSurfaceRoundTrip(t *testing.T) {
	dev := newTestDevice()
	q, err := dev.CreateQueue()
	require.NoError(t, err)
	defer q.Release()

	mem, err := dev.AllocateSurface(3, 4)
	require.NoError(t, err)
	defer mem.Release()

	src := plane(10, 4, 16)
	_, err = q.EnqueueWriteSurface(mem, true, 10, 4, 16, src, nil)
	require.NoError(t, err)

	dst := make([]byte, 12*4)
	_, err = q.EnqueueReadSurface(mem, true, 10, 4, 12, dst, nil)
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		require.Equal(t, src[y*16:y*16+10], dst[y*12:y*12+10])
		require.Equal(t, []byte{0, 0}, dst[y*12+10:y*12+12])
	}
}

func TestKernelWaitsOnAntecedents(t *testing.T) {
	dev := newTestDevice()
	q, err := dev.CreateQueue()
	require.NoError(t, err)
	defer q.Release()

	in, err := dev.AllocateSurface(4, 8)
	require.NoError(t, err)
	out, err := dev.AllocateSurface(4, 8)
	require.NoError(t, err)

	prog, err := dev.BuildProgram(invert_source, "")
	require.NoError(t, err)
	k, err := prog.CreateKernel("Invert")
	require.NoError(t, err)
	require.NoError(t, k.SetArg(0, in))
	require.NoError(t, k.SetArg(1, out))
	require.NoError(t, k.SetArg(2, int32(13)))
	require.NoError(t, k.SetArg(3, int32(8)))

	src := plane(13, 8, 13)
	copied, err := q.EnqueueWriteSurface(in, false, 13, 8, 13, src, nil)
	require.NoError(t, err)
	ran, err := q.EnqueueKernel(k, []int{16, 8}, []int{4, 4}, []pu.Event{copied})
	require.NoError(t, err)

	dst := make([]byte, 13*8)
	read, err := q.EnqueueReadSurface(out, false, 13, 8, 13, dst, []pu.Event{ran})
	require.NoError(t, err)
	require.NoError(t, dev.WaitAll([]pu.Event{read}))

	for i := range src {
		require.Equal(t, 255-src[i], dst[i])
	}
	require.NoError(t, q.Finish())
	require.NoError(t, in.Release())
	require.NoError(t, out.Release())
	require.Zero(t, dev.Allocated())
}

func TestFailedAntecedentFailsDependants(t *testing.T) {
	dev := newTestDevice()
	q, err := dev.CreateQueue()
	require.NoError(t, err)

	in, err := dev.AllocateSurface(1, 1)
	require.NoError(t, err)
	out, err := dev.AllocateSurface(1, 1)
	require.NoError(t, err)
	prog, err := dev.BuildProgram(invert_source, "")
	require.NoError(t, err)
	k, err := prog.CreateKernel("Invert")
	require.NoError(t, err)
	require.NoError(t, k.SetArg(0, in))
	require.NoError(t, k.SetArg(1, out))
	require.NoError(t, k.SetArg(2, int32(4)))
	// Height argument reaches past the surface, so the work-item panics.
	require.NoError(t, k.SetArg(3, int32(2)))

	ran, err := q.EnqueueKernel(k, []int{4, 2}, []int{4, 2}, nil)
	require.NoError(t, err)
	dst := make([]byte, 4)
	read, err := q.EnqueueReadSurface(out, false, 4, 1, 4, dst, []pu.Event{ran})
	require.NoError(t, err)

	err = dev.WaitAll([]pu.Event{read})
	require.Error(t, err)
	require.True(t, u.IsKind(err, u.DispatchFailure))
	require.Error(t, q.Release())
}

func TestBuildProgram(t *testing.T) {
	dev := newTestDevice()

	tests := map[string]struct {
		source  string
		wantLog string
	}{
		"no entries":      {source: "int x;", wantLog: "no __kernel entry points"},
		"missing kernel":  {source: invert_source + "__kernel void Blur(int a) {}", wantLog: "Blur"},
		"all implemented": {source: invert_source},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			prog, err := dev.BuildProgram(test.source, "-DRADIUS=3")
			if test.wantLog == "" {
				require.NoError(t, err)
				require.NotNil(t, prog)
				return
			}
			var build_err *u.BuildError
			require.ErrorAs(t, err, &build_err)
			require.Contains(t, build_err.Log, test.wantLog)
		})
	}
}

func TestKernelArguments(t *testing.T) {
	dev := newTestDevice()
	q, err := dev.CreateQueue()
	require.NoError(t, err)
	defer q.Release()

	prog, err := dev.BuildProgram(invert_source, "")
	require.NoError(t, err)
	_, err = prog.CreateKernel("Blur")
	require.True(t, u.IsKind(err, u.InvalidParameter))

	k, err := prog.CreateKernel("Invert")
	require.NoError(t, err)
	require.Error(t, k.SetArg(4, int32(1)))
	require.Error(t, k.SetArg(2, 1.5))
	require.NoError(t, k.SetArg(2, int32(1)))

	_, err = q.EnqueueKernel(k, []int{4}, []int{4}, nil)
	require.True(t, u.IsKind(err, u.DispatchFailure), "unset args must fail the dispatch")

	mem, err := dev.AllocateSurface(1, 1)
	require.NoError(t, err)
	require.NoError(t, k.SetArg(0, mem))
	require.NoError(t, k.SetArg(1, mem))
	require.NoError(t, k.SetArg(3, int32(1)))
	_, err = q.EnqueueKernel(k, []int{6}, []int{4}, nil)
	require.True(t, u.IsKind(err, u.DispatchFailure), "global size must be a multiple of the local size")

	require.NoError(t, mem.Release())
	_, err = q.EnqueueKernel(k, []int{4}, []int{4}, nil)
	require.True(t, u.IsKind(err, u.DispatchFailure), "released arguments must fail the dispatch")
	require.Error(t, mem.Release())
}

func TestMemoryLimit(t *testing.T) {
	dev := newTestDevice(WithMemoryLimit(64))

	buf, err := dev.AllocateBuffer(48)
	require.NoError(t, err)
	_, err = dev.AllocateSurface(2, 3)
	require.True(t, u.IsKind(err, u.AllocationFailure))

	require.NoError(t, buf.Release())
	surf, err := dev.AllocateSurface(2, 2)
	require.NoError(t, err)
	require.Equal(t, 16, surf.Size())
	require.NoError(t, surf.Release())
}

func TestTransferValidation(t *testing.T) {
	dev := newTestDevice()
	q, err := dev.CreateQueue()
	require.NoError(t, err)
	defer q.Release()

	surf, err := dev.AllocateSurface(2, 2)
	require.NoError(t, err)
	buf, err := dev.AllocateBuffer(16)
	require.NoError(t, err)

	tests := map[string]func() error{
		"region wider than surface": func() error {
			_, err := q.EnqueueWriteSurface(surf, true, 9, 2, 9, make([]byte, 18), nil)
			return err
		},
		"pitch shorter than row": func() error {
			_, err := q.EnqueueWriteSurface(surf, true, 8, 2, 4, make([]byte, 16), nil)
			return err
		},
		"host buffer too small": func() error {
			_, err := q.EnqueueReadSurface(surf, true, 8, 2, 8, make([]byte, 10), nil)
			return err
		},
		"buffer used as surface": func() error {
			_, err := q.EnqueueWriteSurface(buf, true, 4, 1, 4, make([]byte, 4), nil)
			return err
		},
		"buffer overrun": func() error {
			_, err := q.EnqueueWriteBuffer(buf, true, 8, make([]byte, 12), nil)
			return err
		},
	}
	for name, transfer := range tests {
		t.Run(name, func(t *testing.T) {
			require.True(t, u.IsKind(transfer(), u.TransferFailure))
		})
	}
}
