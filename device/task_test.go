package device

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/xerrors"

	"github.com/moratsam/opencl-temporal-denoise/internal/mocks"
	"github.com/moratsam/opencl-temporal-denoise/pu"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

func newMockTask(t *testing.T) (*Task, *mocks.MockKernel, *mocks.MockQueue, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	kernel := mocks.NewMockKernel(ctrl)
	kernel.EXPECT().Name().Return("NLMFinalise").AnyTimes()
	return newTask(kernel), kernel, mocks.NewMockQueue(ctrl), ctrl
}

func TestBindAutoCounter(t *testing.T) {
	task, kernel, _, ctrl := newMockTask(t)
	mem := mocks.NewMockMemory(ctrl)

	gomock.InOrder(
		kernel.EXPECT().SetArg(0, mem).Return(nil),
		kernel.EXPECT().SetArg(1, int32(640)).Return(nil),
		kernel.EXPECT().SetArg(2, float32(0.5)).Return(nil),
		kernel.EXPECT().SetArg(3, int32(1)).Return(nil),
		kernel.EXPECT().SetArg(1, int32(320)).Return(nil),
	)
	require.NoError(t, task.BindArgs(mem, 640, float32(0.5), true))
	require.NoError(t, task.BindAt(1, 320))
	require.True(t, task.Valid())
}

func TestStickyInvalidity(t *testing.T) {
	task, kernel, q, _ := newMockTask(t)

	kernel.EXPECT().SetArg(0, int32(1)).Return(nil)
	kernel.EXPECT().SetArg(1, gomock.Any()).Return(xerrors.New("invalid arg size"))
	task.SetDomain(1, []int{8}, []int{64}, []int{1})

	require.NoError(t, task.Bind(1))
	err := task.Bind("not a kernel argument")
	require.True(t, u.IsKind(err, u.ArgumentBindingFailure))
	require.False(t, task.Valid())

	// The kernel sees no further SetArg calls and the queue no dispatch.
	for i := 0; i < 3; i++ {
		require.True(t, u.IsKind(task.BindAt(0, 2), u.ArgumentBindingFailure))
		require.True(t, u.IsKind(task.Bind(float32(1)), u.ArgumentBindingFailure))

		ev, err := task.Dispatch(q)
		require.Nil(t, ev)
		require.True(t, u.IsKind(err, u.ArgumentBindingFailure))
		ev, err = task.DispatchAfterAll(q, []pu.Event{nil})
		require.Nil(t, ev)
		require.True(t, u.IsKind(err, u.ArgumentBindingFailure))
	}
	require.ErrorIs(t, err, task.Err())
}

func TestDispatchRejectsBadDomain(t *testing.T) {
	task, _, q, _ := newMockTask(t)

	ev, err := task.Dispatch(q)
	require.Nil(t, ev)
	require.True(t, u.IsKind(err, u.InvalidParameter), "no domain set")

	task.SetDomain(4, []int{1, 1, 1}, []int{1, 1, 1}, []int{1, 1, 1})
	ev, err = task.Dispatch(q)
	require.Nil(t, ev)
	require.True(t, u.IsKind(err, u.InvalidParameter))
}

func TestDispatchVariants(t *testing.T) {
	task, kernel, q, ctrl := newMockTask(t)
	copied, target, done := mocks.NewMockEvent(ctrl), mocks.NewMockEvent(ctrl), mocks.NewMockEvent(ctrl)

	task.SetDomain(2, []int{8, 32}, []int{100, 50}, []int{1, 1})
	global, local := []int{104, 64}, []int{8, 32}

	gomock.InOrder(
		q.EXPECT().EnqueueKernel(kernel, global, local, gomock.Nil()).Return(done, nil),
		q.EXPECT().EnqueueKernel(kernel, global, local, []pu.Event{copied}).Return(done, nil),
		q.EXPECT().EnqueueKernel(kernel, global, local, gomock.Nil()).Return(done, nil),
		q.EXPECT().EnqueueKernel(kernel, global, local, []pu.Event{copied, target}).Return(done, nil),
		q.EXPECT().EnqueueKernel(kernel, global, local, []pu.Event{target}).Return(nil, xerrors.New("out of host memory")),
	)

	ev, err := task.Dispatch(q)
	require.NoError(t, err)
	require.Equal(t, pu.Event(done), ev)

	_, err = task.DispatchAfter(q, copied)
	require.NoError(t, err)

	// A "none" antecedent is no antecedent.
	_, err = task.DispatchAfter(q, nil)
	require.NoError(t, err)

	_, err = task.DispatchAfterAll(q, []pu.Event{copied, target, copied, nil})
	require.NoError(t, err)

	ev, err = task.DispatchAfterAll(q, []pu.Event{target, target})
	require.Nil(t, ev)
	require.True(t, u.IsKind(err, u.DispatchFailure))
	require.True(t, task.Valid(), "dispatch failures do not invalidate bindings")
}
