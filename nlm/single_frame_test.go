package nlm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moratsam/opencl-temporal-denoise/frame"
	"github.com/moratsam/opencl-temporal-denoise/logger"
	"github.com/moratsam/opencl-temporal-denoise/pu"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

func TestSingleFrame(t *testing.T) {
	ctx, gaussian := newCompiledContext(t)
	defer ctx.Close()
	q := &recordingQueue{Queue: ctx.Queue()}

	params := Params{H: 0.02, SampleExpand: 1}
	s, err := NewSingleFrame(ctx, q, gaussian, params, 12, 5, logger.NewNoopLogger())
	require.NoError(t, err)
	defer s.Close()

	src := uniformSource(frame.Mono, 12, 5, 2, 200, 0)
	for n := 0; n < 2; n++ {
		q.reset()
		dst := frame.NewPlane(12, 5, 16)
		require.NoError(t, s.CopyIn(src.frames[n].Planes[0]))
		require.NoError(t, s.Execute())
		ev, err := s.CopyOut(dst.Data, dst.Pitch)
		require.NoError(t, err)
		require.NoError(t, ctx.WaitAll([]pu.Event{ev}))

		require.Len(t, q.writes, 1)
		require.Len(t, q.dispatches, 1)
		require.Equal(t, KernelSingleFrame, q.dispatches[0].name)
		require.Equal(t, []pu.Event{q.writes[0]}, q.dispatches[0].wait)
		for y := 0; y < dst.Height; y++ {
			for _, v := range dst.Row(y) {
				require.Equal(t, byte(200), v)
			}
		}
	}
	require.NoError(t, ctx.Finish())
}

func TestSingleFrameOrdering(t *testing.T) {
	ctx, gaussian := newCompiledContext(t)
	defer ctx.Close()
	s, err := NewSingleFrame(ctx, ctx.Queue(), gaussian, Params{H: 1, SampleExpand: 3, Linear: true}, 8, 4, logger.NewNoopLogger())
	require.NoError(t, err)

	require.True(t, u.IsKind(s.Execute(), u.InvalidParameter))
	_, err = s.CopyOut(make([]byte, 32), 8)
	require.True(t, u.IsKind(err, u.InvalidParameter))
	require.True(t, u.IsKind(s.CopyIn(frame.NewPlane(4, 4, 4)), u.InvalidParameter))
	require.NoError(t, s.Err())

	// The bound destination disappears under the task.
	require.NoError(t, ctx.Pool().Release(s.dest))
	require.NoError(t, s.CopyIn(frame.NewPlane(8, 4, 8)))
	err = s.Execute()
	require.True(t, u.IsKind(err, u.DispatchFailure))
	require.Equal(t, err, s.Err())
	require.True(t, u.IsKind(s.CopyIn(frame.NewPlane(8, 4, 8)), u.DispatchFailure))
	_, err = s.CopyOut(make([]byte, 32), 8)
	require.True(t, u.IsKind(err, u.DispatchFailure))

	require.NoError(t, ctx.Finish())
	require.NoError(t, s.Close())
	require.Equal(t, 1, ctx.Pool().Len())
}
