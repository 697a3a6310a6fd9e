package device

import (
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/moratsam/opencl-temporal-denoise/logger"
	"github.com/moratsam/opencl-temporal-denoise/pu"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

// Pool is the registry of device resources by handle. A new handle is one
// above the largest registered handle, so a released handle comes back only
// once every larger handle is gone.
type Pool struct {
	device pu.Device
	log    logger.Logger

	mu        sync.Mutex
	resources map[Handle]*Resource
}

func NewPool(device pu.Device, log logger.Logger) *Pool {
	return &Pool{
		device:    device,
		log:       log,
		resources: make(map[Handle]*Resource),
	}
}

func (p *Pool) AllocateBuffer(bytes int) (Handle, error) {
	if bytes <= 0 {
		return 0, u.Errorf(u.InvalidParameter, "allocate buffer", "size %d", bytes)
	}
	mem, err := p.device.AllocateBuffer(bytes)
	if err != nil {
		return 0, u.NewError(u.AllocationFailure, "allocate buffer", err)
	}
	h := p.register(&Resource{kind: FlatBuffer, mem: mem, size: bytes, valid: true})
	p.log.Debug("allocated buffer", zap.Int("handle", int(h)), zap.Int("bytes", bytes))
	return h, nil
}

// AllocateSurface reserves a width x height 8-bit plane. The surface is
// padded to whole RGBA8 elements and to the block sizes drivers handle.
func (p *Pool) AllocateSurface(width, height int) (Handle, error) {
	if width <= 0 || height <= 0 {
		return 0, u.Errorf(u.InvalidParameter, "allocate surface", "dimensions %dx%d", width, height)
	}
	elem_width, elem_height := u.FrameDimensions(width, height, 2, 0)
	mem, err := p.device.AllocateSurface(elem_width, elem_height)
	if err != nil {
		return 0, u.NewError(u.AllocationFailure, "allocate surface", err)
	}
	h := p.register(&Resource{
		kind:        ImageSurface,
		mem:         mem,
		width:       width,
		height:      height,
		elem_width:  elem_width,
		elem_height: elem_height,
		valid:       true,
	})
	p.log.Debug("allocated surface", zap.Int("handle", int(h)),
		zap.Int("width", width), zap.Int("height", height),
		zap.Int("elem_width", elem_width), zap.Int("elem_height", elem_height))
	return h, nil
}

func (p *Pool) register(r *Resource) Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	h := Handle(1)
	for existing := range p.resources {
		if existing >= h {
			h = existing + 1
		}
	}
	r.handle = h
	p.resources[h] = r
	resourcesGauge.Inc()
	return h
}

// Get returns the valid resource registered under h.
func (p *Pool) Get(h Handle) (*Resource, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.resources[h]
	if !ok || !r.valid {
		return nil, u.Errorf(u.InvalidResourceState, "get resource", "handle %d not allocated", h)
	}
	return r, nil
}

// Memory returns the backend memory of h for binding to a task.
func (p *Pool) Memory(h Handle) (pu.Memory, error) {
	r, err := p.Get(h)
	if err != nil {
		return nil, err
	}
	return r.mem, nil
}

func (p *Pool) Handles() []Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	handles := make([]Handle, 0, len(p.resources))
	for h := range p.resources {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	return handles
}

func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.resources)
}

// CopyIn writes rows x cols bytes of host data, rows pitch bytes apart, and
// blocks until the transfer completed.
func (p *Pool) CopyIn(q pu.Queue, h Handle, data []byte, rows, cols, pitch int) error {
	_, err := p.copyIn(q, h, true, data, rows, cols, pitch)
	return err
}

// CopyInAsync enqueues the write and returns its completion event. data must
// stay untouched until the event completed.
func (p *Pool) CopyInAsync(q pu.Queue, h Handle, data []byte, rows, cols, pitch int) (pu.Event, error) {
	return p.copyIn(q, h, false, data, rows, cols, pitch)
}

func (p *Pool) CopyOut(q pu.Queue, h Handle, rows, cols, pitch int, data []byte) error {
	_, err := p.copyOut(q, h, true, rows, cols, pitch, data, nil)
	return err
}

// CopyOutAsync enqueues a read that starts only after every antecedent completed.
func (p *Pool) CopyOutAsync(q pu.Queue, h Handle, rows, cols, pitch int, data []byte, after ...pu.Event) (pu.Event, error) {
	return p.copyOut(q, h, false, rows, cols, pitch, data, after)
}

// WriteBuffer uploads data to the start of a flat buffer and waits for it.
func (p *Pool) WriteBuffer(q pu.Queue, h Handle, data []byte) error {
	return p.CopyIn(q, h, data, 1, len(data), len(data))
}

func (p *Pool) ReadBuffer(q pu.Queue, h Handle, data []byte) error {
	return p.CopyOut(q, h, 1, len(data), len(data), data)
}

func (p *Pool) copyIn(q pu.Queue, h Handle, blocking bool, data []byte, rows, cols, pitch int) (pu.Event, error) {
	r, err := p.Get(h)
	if err != nil {
		return nil, u.WrapErr("copy in", err)
	}
	if err := r.checkRegion(rows, cols, pitch, len(data)); err != nil {
		return nil, u.WrapErr("copy in", err)
	}

	var ev pu.Event
	if r.kind == ImageSurface {
		ev, err = q.EnqueueWriteSurface(r.mem, blocking, cols, rows, pitch, data, nil)
	} else {
		ev, err = q.EnqueueWriteBuffer(r.mem, blocking, 0, data[:rows*cols], nil)
	}
	if err != nil {
		return nil, u.NewError(u.TransferFailure, "copy in", err)
	}
	transfersCounter.WithLabelValues("in").Inc()
	return ev, nil
}

func (p *Pool) copyOut(q pu.Queue, h Handle, blocking bool, rows, cols, pitch int, data []byte, after []pu.Event) (pu.Event, error) {
	r, err := p.Get(h)
	if err != nil {
		return nil, u.WrapErr("copy out", err)
	}
	if err := r.checkRegion(rows, cols, pitch, len(data)); err != nil {
		return nil, u.WrapErr("copy out", err)
	}

	wait := waitList(after)
	var ev pu.Event
	if r.kind == ImageSurface {
		ev, err = q.EnqueueReadSurface(r.mem, blocking, cols, rows, pitch, data, wait)
	} else {
		ev, err = q.EnqueueReadBuffer(r.mem, blocking, 0, data[:rows*cols], wait)
	}
	if err != nil {
		return nil, u.NewError(u.TransferFailure, "copy out", err)
	}
	transfersCounter.WithLabelValues("out").Inc()
	return ev, nil
}

// Release invalidates and frees h. Releasing an unknown or already released
// handle does nothing.
func (p *Pool) Release(h Handle) error {
	p.mu.Lock()
	r, ok := p.resources[h]
	if ok {
		delete(p.resources, h)
		resourcesGauge.Dec()
	}
	p.mu.Unlock()
	if !ok {
		return nil
	}
	p.log.Debug("released resource", zap.Int("handle", int(h)), zap.Stringer("kind", r.kind))
	return r.release()
}

// ReleaseAll frees every registered resource and reports all failures.
func (p *Pool) ReleaseAll() error {
	var result *multierror.Error
	for _, h := range p.Handles() {
		if err := p.Release(h); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// waitList drops "none" events and duplicates.
func waitList(events []pu.Event) []pu.Event {
	if len(events) == 0 {
		return nil
	}
	list := make([]pu.Event, 0, len(events))
	for _, ev := range events {
		if ev == nil || containsEvent(list, ev) {
			continue
		}
		list = append(list, ev)
	}
	if len(list) == 0 {
		return nil
	}
	return list
}

func containsEvent(list []pu.Event, ev pu.Event) bool {
	for _, e := range list {
		if e == ev {
			return true
		}
	}
	return false
}
