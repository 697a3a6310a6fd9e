package nlm

import (
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/moratsam/opencl-temporal-denoise/device"
	"github.com/moratsam/opencl-temporal-denoise/logger"
	"github.com/moratsam/opencl-temporal-denoise/pu"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

type stage int

const (
	stageIdle stage = iota
	stageRequested
	stageCopied
	stageExecuted
)

// MultiFrame filters one plane against every frame within Radius of it.
// The frames live in a ring of 2*Radius+1 device surfaces and a frame is
// copied to the device only when its slot does not hold it yet.
//
// Per output frame call Request, resolve the returned set, then CopyIn,
// Execute and CopyOut in that order. After the first device failure every
// call returns that failure.
type MultiFrame struct {
	ctx    *device.Context
	pool   *device.Pool
	q      pu.Queue
	log    logger.Logger
	params Params
	width  int
	height int

	slots    []*slot
	averages device.Handle
	weights  device.Handle
	dest     device.Handle

	zero_averages *device.Task
	zero_weights  *device.Task
	sample        *device.Task
	finalise      *device.Task

	stage    stage
	frame    int
	requests *FrameRequestSet
	wanted   []int
	done     pu.Event
	events   []pu.Event // Released when the next frame is requested.
	err      error
	closed   bool
}

// NewMultiFrame allocates the ring, the accumulators and the destination of
// a width x height plane on ctx and binds the tasks that filter it. The
// program text must be compiled on ctx and gaussian must hold the patch
// weights. Commands are enqueued on q.
func NewMultiFrame(ctx *device.Context, q pu.Queue, gaussian device.Handle, params Params, width, height int, log logger.Logger) (*MultiFrame, error) {
	if err := params.validate(width, height); err != nil {
		return nil, u.WrapErr("new multi-frame pipeline", err)
	}
	if params.Radius < 1 {
		return nil, u.Errorf(u.InvalidParameter, "new multi-frame pipeline", "radius %d", params.Radius)
	}

	m := &MultiFrame{
		ctx:    ctx,
		pool:   ctx.Pool(),
		q:      q,
		log:    log,
		params: params,
		width:  width,
		height: height,
		wanted: make([]int, 2*params.Radius+1),
	}
	if err := m.setup(gaussian); err != nil {
		_ = m.Close()
		return nil, u.WrapErr("new multi-frame pipeline", err)
	}
	log.Debug("multi-frame pipeline ready",
		zap.Int("width", width), zap.Int("height", height),
		zap.Int("radius", params.Radius), zap.Int("slots", len(m.slots)))
	return m, nil
}

func (m *MultiFrame) setup(gaussian device.Handle) error {
	gaussian_mem, err := m.pool.Memory(gaussian)
	if err != nil {
		return err
	}

	// Ring.
	for i := 0; i < 2*m.params.Radius+1; i++ {
		h, mem, err := allocateSurface(m.pool, m.width, m.height)
		if err != nil {
			return err
		}
		m.slots = append(m.slots, newSlot(i, h, mem))
	}
	var dest_mem pu.Memory
	if m.dest, dest_mem, err = allocateSurface(m.pool, m.width, m.height); err != nil {
		return err
	}

	// Accumulators.
	iw, ih := intermediateSize(m.width, m.height)
	var averages_mem, weights_mem pu.Memory
	if m.averages, averages_mem, err = allocateBuffer(m.pool, iw*ih*4*4); err != nil {
		return err
	}
	if m.weights, weights_mem, err = allocateBuffer(m.pool, iw*ih*4*4); err != nil {
		return err
	}

	// Tasks.
	if m.zero_averages, err = m.ctx.NewTaskInstance(KernelZero); err != nil {
		return err
	}
	if m.zero_weights, err = m.ctx.NewTaskInstance(KernelZero); err != nil {
		return err
	}
	if m.sample, err = m.ctx.NewTaskInstance(KernelMultiFrame); err != nil {
		return err
	}
	if m.finalise, err = m.ctx.NewTaskInstance(KernelFinalise); err != nil {
		return err
	}

	for _, zero := range []struct {
		task *device.Task
		mem  pu.Memory
	}{{m.zero_averages, averages_mem}, {m.zero_weights, weights_mem}} {
		if err := zero.task.Bind(zero.mem); err != nil {
			return err
		}
		zero.task.SetDomain(1, []int{local_flat}, []int{iw * ih * 4}, []int{4})
	}

	// The target, the sample and the identity flag are bound per frame.
	m.sample.SetDomain(2, []int{local_x, local_y}, []int{m.width, m.height}, []int{4, 1})
	if err := m.sample.BindArgs(m.slots[0].mem, m.slots[0].mem, true,
		m.width, m.height, m.params.H, m.params.SampleExpand,
		gaussian_mem, iw, averages_mem, weights_mem, m.params.Linear); err != nil {
		return err
	}

	m.finalise.SetDomain(2, []int{local_x, local_y}, []int{m.width, m.height}, []int{4, 1})
	return m.finalise.BindArgs(m.slots[0].mem, averages_mem, weights_mem, iw, dest_mem)
}

// Request starts output frame n and returns the source frames that must be
// supplied before CopyIn. Events of the previous frame are released.
func (m *MultiFrame) Request(n int) (*FrameRequestSet, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.closed {
		return nil, u.Errorf(u.InvalidResourceState, "request frames", "pipeline closed")
	}
	m.releaseEvents()

	set := NewFrameRequestSet()
	for i, s := range m.slots {
		m.wanted[i] = slotFrame(n, i, m.params.Radius)
		if s.copyRequired(m.wanted[i]) {
			set.Request(m.wanted[i])
		}
	}
	m.frame = n
	m.requests = set
	m.stage = stageRequested
	return set, nil
}

// CopyIn enqueues the copies of every requested frame into its slot. Every
// entry of set must be resolved.
func (m *MultiFrame) CopyIn(set *FrameRequestSet) error {
	if m.err != nil {
		return m.err
	}
	if m.stage != stageRequested || set != m.requests {
		return u.Errorf(u.InvalidParameter, "copy in", "no frame requested with this set")
	}
	if err := set.Complete(); err != nil {
		return u.WrapErr("copy in", err)
	}
	for _, n := range set.Requested() {
		plane, _ := set.Retrieve(n)
		if plane.Width != m.width || plane.Height != m.height {
			return u.Errorf(u.InvalidParameter, "copy in", "frame %d is %dx%d, pipeline is %dx%d",
				n, plane.Width, plane.Height, m.width, m.height)
		}
	}

	for i, s := range m.slots {
		s.pending = nil
		if s.copyRequired(m.wanted[i]) {
			plane, err := set.Retrieve(m.wanted[i])
			if err != nil {
				return m.fail(u.WrapErr("copy in", err))
			}
			ev, err := m.pool.CopyInAsync(m.q, s.surface, plane.Data, m.height, m.width, plane.Pitch)
			if err != nil {
				return m.fail(u.WrapErr("copy in", err))
			}
			m.events = append(m.events, ev)
			s.pending = ev
			s.frame = m.wanted[i]
			slotCopiesCounter.Inc()
		} else {
			slotHitsCounter.Inc()
		}
		s.uses++
	}
	m.stage = stageCopied
	return nil
}

// Execute zeroes the accumulators, dispatches one sample pass per slot and
// the finalise pass after all of them.
func (m *MultiFrame) Execute() error {
	if m.err != nil {
		return m.err
	}
	if m.stage != stageCopied {
		return u.Errorf(u.InvalidParameter, "execute", "frames not copied in")
	}

	// Step 1: zero the accumulators.
	zeroed := make([]pu.Event, 0, 2)
	for _, zero := range []*device.Task{m.zero_averages, m.zero_weights} {
		ev, err := zero.Dispatch(m.q)
		if err != nil {
			return m.fail(u.WrapErr("execute", err))
		}
		zeroed = append(zeroed, ev)
	}
	m.events = append(m.events, zeroed...)
	if err := m.ctx.WaitAll(zeroed); err != nil {
		return m.fail(u.NewError(u.DispatchFailure, "zero accumulators", err))
	}

	// Step 2: accumulate every sample frame against the target.
	target := m.slots[targetSlot(m.frame, m.params.Radius)]
	if err := m.sample.BindAt(0, target.mem); err != nil {
		return m.fail(u.WrapErr("execute", err))
	}
	samples := make([]pu.Event, 0, len(m.slots))
	for _, s := range m.slots {
		if err := m.sample.BindAt(1, s.mem); err != nil {
			return m.fail(u.WrapErr("execute", err))
		}
		if err := m.sample.BindAt(2, s == target); err != nil {
			return m.fail(u.WrapErr("execute", err))
		}
		ev, err := m.dispatchSample(s, target)
		if err != nil {
			return m.fail(u.WrapErr("execute", err))
		}
		samples = append(samples, ev)
	}
	m.events = append(m.events, samples...)

	// Step 3: finalise once every sample pass completed.
	if err := m.finalise.BindAt(0, target.mem); err != nil {
		return m.fail(u.WrapErr("execute", err))
	}
	done, err := m.finalise.DispatchAfterAll(m.q, samples)
	if err != nil {
		return m.fail(u.WrapErr("execute", err))
	}
	m.events = append(m.events, done)
	m.done = done
	m.stage = stageExecuted
	return nil
}

// dispatchSample waits only for the copies the pass reads.
func (m *MultiFrame) dispatchSample(s, target *slot) (pu.Event, error) {
	switch {
	case s.pending == nil && target.pending == nil:
		return m.sample.Dispatch(m.q)
	case s.pending == nil:
		return m.sample.DispatchAfter(m.q, target.pending)
	case target.pending == nil || s == target:
		return m.sample.DispatchAfter(m.q, s.pending)
	default:
		return m.sample.DispatchAfterAll(m.q, []pu.Event{s.pending, target.pending})
	}
}

// CopyOut enqueues the read of the filtered plane into dst, rows pitch bytes
// apart, after the finalise pass. The caller waits on the returned event
// before touching dst. The event stays valid until the next Request.
func (m *MultiFrame) CopyOut(dst []byte, pitch int) (pu.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.stage != stageExecuted {
		return nil, u.Errorf(u.InvalidParameter, "copy out", "frame not executed")
	}
	ev, err := m.pool.CopyOutAsync(m.q, m.dest, m.height, m.width, pitch, dst, m.done)
	if err != nil {
		if u.IsKind(err, u.InvalidParameter) {
			return nil, u.WrapErr("copy out", err)
		}
		return nil, m.fail(u.WrapErr("copy out", err))
	}
	m.events = append(m.events, ev)
	m.stage = stageIdle
	m.log.Debug("frame enqueued", zap.Int("frame", m.frame), zap.Int("copies", m.requests.Len()))
	return ev, nil
}

// Err returns the failure that disabled the pipeline, if any.
func (m *MultiFrame) Err() error {
	return m.err
}

func (m *MultiFrame) fail(err error) error {
	m.err = err
	m.log.Error("multi-frame pipeline disabled", zap.Int("frame", m.frame), zap.Error(err))
	return err
}

func (m *MultiFrame) releaseEvents() {
	for _, ev := range m.events {
		ev.Release()
	}
	m.events = nil
	m.done = nil
	for _, s := range m.slots {
		s.pending = nil
	}
}

// Close releases the events, tasks and device resources of the pipeline.
// Commands it enqueued must have completed.
func (m *MultiFrame) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.releaseEvents()

	var result *multierror.Error
	for _, t := range []*device.Task{m.zero_averages, m.zero_weights, m.sample, m.finalise} {
		if t == nil {
			continue
		}
		if err := t.Release(); err != nil {
			result = multierror.Append(result, u.WrapErr("release task "+t.Name(), err))
		}
	}
	handles := []device.Handle{m.averages, m.weights, m.dest}
	for _, s := range m.slots {
		handles = append(handles, s.surface)
	}
	for _, h := range handles {
		if err := m.pool.Release(h); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func allocateSurface(pool *device.Pool, width, height int) (device.Handle, pu.Memory, error) {
	h, err := pool.AllocateSurface(width, height)
	if err != nil {
		return 0, nil, err
	}
	mem, err := pool.Memory(h)
	return h, mem, err
}

func allocateBuffer(pool *device.Pool, bytes int) (device.Handle, pu.Memory, error) {
	h, err := pool.AllocateBuffer(bytes)
	if err != nil {
		return 0, nil, err
	}
	mem, err := pool.Memory(h)
	return h, mem, err
}
