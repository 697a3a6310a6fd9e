package nlm

import (
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/moratsam/opencl-temporal-denoise/device"
	"github.com/moratsam/opencl-temporal-denoise/frame"
	"github.com/moratsam/opencl-temporal-denoise/logger"
	"github.com/moratsam/opencl-temporal-denoise/pu"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

// SingleFrame filters a plane using only the frame itself. Its task is bound
// once at construction, so a frame is a copy in, one dispatch and a copy out.
type SingleFrame struct {
	pool   *device.Pool
	q      pu.Queue
	log    logger.Logger
	width  int
	height int

	src    device.Handle
	dest   device.Handle
	filter *device.Task

	copied pu.Event
	done   pu.Event
	events []pu.Event
	err    error
	closed bool
}

func NewSingleFrame(ctx *device.Context, q pu.Queue, gaussian device.Handle, params Params, width, height int, log logger.Logger) (*SingleFrame, error) {
	if err := params.validate(width, height); err != nil {
		return nil, u.WrapErr("new single-frame pipeline", err)
	}
	s := &SingleFrame{pool: ctx.Pool(), q: q, log: log, width: width, height: height}
	if err := s.setup(ctx, gaussian, params); err != nil {
		_ = s.Close()
		return nil, u.WrapErr("new single-frame pipeline", err)
	}
	log.Debug("single-frame pipeline ready", zap.Int("width", width), zap.Int("height", height))
	return s, nil
}

func (s *SingleFrame) setup(ctx *device.Context, gaussian device.Handle, params Params) error {
	gaussian_mem, err := s.pool.Memory(gaussian)
	if err != nil {
		return err
	}
	var src_mem, dest_mem pu.Memory
	if s.src, src_mem, err = allocateSurface(s.pool, s.width, s.height); err != nil {
		return err
	}
	if s.dest, dest_mem, err = allocateSurface(s.pool, s.width, s.height); err != nil {
		return err
	}
	if s.filter, err = ctx.NewTaskInstance(KernelSingleFrame); err != nil {
		return err
	}
	s.filter.SetDomain(2, []int{local_x, local_y}, []int{s.width, s.height}, []int{4, 1})
	return s.filter.BindArgs(src_mem, s.width, s.height, params.H, params.SampleExpand,
		gaussian_mem, dest_mem, params.Linear)
}

// CopyIn enqueues the copy of the source plane. plane must stay untouched
// until the frame was copied out.
func (s *SingleFrame) CopyIn(plane frame.Plane) error {
	if s.err != nil {
		return s.err
	}
	if s.closed {
		return u.Errorf(u.InvalidResourceState, "copy in", "pipeline closed")
	}
	if plane.Width != s.width || plane.Height != s.height {
		return u.Errorf(u.InvalidParameter, "copy in", "plane is %dx%d, pipeline is %dx%d",
			plane.Width, plane.Height, s.width, s.height)
	}
	s.releaseEvents()
	ev, err := s.pool.CopyInAsync(s.q, s.src, plane.Data, s.height, s.width, plane.Pitch)
	if err != nil {
		return s.fail(u.WrapErr("copy in", err))
	}
	s.events = append(s.events, ev)
	s.copied = ev
	return nil
}

func (s *SingleFrame) Execute() error {
	if s.err != nil {
		return s.err
	}
	if s.copied == nil {
		return u.Errorf(u.InvalidParameter, "execute", "frame not copied in")
	}
	ev, err := s.filter.DispatchAfter(s.q, s.copied)
	if err != nil {
		return s.fail(u.WrapErr("execute", err))
	}
	s.events = append(s.events, ev)
	s.copied = nil
	s.done = ev
	return nil
}

// CopyOut enqueues the read of the filtered plane into dst after the
// dispatch. The event stays valid until the next CopyIn.
func (s *SingleFrame) CopyOut(dst []byte, pitch int) (pu.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.done == nil {
		return nil, u.Errorf(u.InvalidParameter, "copy out", "frame not executed")
	}
	ev, err := s.pool.CopyOutAsync(s.q, s.dest, s.height, s.width, pitch, dst, s.done)
	if err != nil {
		if u.IsKind(err, u.InvalidParameter) {
			return nil, u.WrapErr("copy out", err)
		}
		return nil, s.fail(u.WrapErr("copy out", err))
	}
	s.events = append(s.events, ev)
	s.done = nil
	return ev, nil
}

func (s *SingleFrame) Err() error {
	return s.err
}

func (s *SingleFrame) fail(err error) error {
	s.err = err
	s.log.Error("single-frame pipeline disabled", zap.Error(err))
	return err
}

func (s *SingleFrame) releaseEvents() {
	for _, ev := range s.events {
		ev.Release()
	}
	s.events = nil
	s.copied = nil
	s.done = nil
}

func (s *SingleFrame) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.releaseEvents()

	var result *multierror.Error
	if s.filter != nil {
		if err := s.filter.Release(); err != nil {
			result = multierror.Append(result, u.WrapErr("release task "+s.filter.Name(), err))
		}
	}
	for _, h := range []device.Handle{s.src, s.dest} {
		if err := s.pool.Release(h); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
