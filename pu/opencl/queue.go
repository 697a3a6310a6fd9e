//go:build opencl

package opencl

import (
	"sync"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
	"golang.org/x/xerrors"

	"github.com/moratsam/opencl-temporal-denoise/pu"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

type event struct {
	ev   *cl.Event
	keep []byte // Host memory the command reads or writes, held until release.
	once sync.Once
}

var _ pu.Event = (*event)(nil)

func (e *event) Release() {
	e.once.Do(func() {
		e.ev.Release()
		e.keep = nil
	})
}

func newEvent(ev *cl.Event, keep []byte) pu.Event {
	if ev == nil {
		return nil
	}
	return &event{ev: ev, keep: keep}
}

func toEvents(events []pu.Event) ([]*cl.Event, error) {
	evs := make([]*cl.Event, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		ev, ok := e.(*event)
		if !ok {
			return nil, xerrors.Errorf("event %T does not belong to the OpenCL device", e)
		}
		evs = append(evs, ev.ev)
	}
	return evs, nil
}

type queue struct {
	q *cl.CommandQueue
}

var _ pu.Queue = (*queue)(nil)

func (q *queue) EnqueueWriteBuffer(mem pu.Memory, blocking bool, offset int, data []byte, wait []pu.Event) (pu.Event, error) {
	m, evs, err := q.checkBuffer(mem, offset, len(data), wait)
	if err != nil {
		return nil, u.NewError(u.TransferFailure, "write buffer", err)
	}
	ev, err := q.q.EnqueueWriteBuffer(m.mem, blocking, offset, len(data), unsafe.Pointer(&data[0]), evs)
	if err != nil {
		return nil, u.NewError(u.TransferFailure, "enqueue write buffer", err)
	}
	return newEvent(ev, data), nil
}

func (q *queue) EnqueueReadBuffer(mem pu.Memory, blocking bool, offset int, data []byte, wait []pu.Event) (pu.Event, error) {
	m, evs, err := q.checkBuffer(mem, offset, len(data), wait)
	if err != nil {
		return nil, u.NewError(u.TransferFailure, "read buffer", err)
	}
	ev, err := q.q.EnqueueReadBuffer(m.mem, blocking, offset, len(data), unsafe.Pointer(&data[0]), evs)
	if err != nil {
		return nil, u.NewError(u.TransferFailure, "enqueue read buffer", err)
	}
	return newEvent(ev, data), nil
}

// Image transfers move whole elements, so the region is cols rounded up to
// a multiple of four pixels. Host memory that cannot hold the rounded region
// goes through a staging copy.
func region(cols, rows int) [3]int {
	return [3]int{u.ByPowerOf2(cols, 2) >> 2, rows, 1}
}

func needsStaging(cols, rows, pitch, size int) bool {
	row_bytes := u.ByPowerOf2(cols, 2)
	return pitch < row_bytes || (rows-1)*pitch+row_bytes > size
}

func (q *queue) EnqueueWriteSurface(mem pu.Memory, blocking bool, cols, rows, pitch int, data []byte, wait []pu.Event) (pu.Event, error) {
	m, evs, err := q.checkSurface(mem, cols, rows, pitch, len(data), wait)
	if err != nil {
		return nil, u.NewError(u.TransferFailure, "write surface", err)
	}
	if needsStaging(cols, rows, pitch, len(data)) {
		staged_pitch := u.ByPowerOf2(cols, 2)
		staged := make([]byte, staged_pitch*rows)
		copyRows(staged, staged_pitch, data, pitch, cols, rows)
		data, pitch = staged, staged_pitch
	}
	ev, err := q.q.EnqueueWriteImage(m.mem, blocking, [3]int{}, region(cols, rows), pitch, 0, data, evs)
	if err != nil {
		return nil, u.NewError(u.TransferFailure, "enqueue write image", err)
	}
	return newEvent(ev, data), nil
}

// EnqueueReadSurface completes a staged read before returning, and then
// returns a nil event.
func (q *queue) EnqueueReadSurface(mem pu.Memory, blocking bool, cols, rows, pitch int, data []byte, wait []pu.Event) (pu.Event, error) {
	m, evs, err := q.checkSurface(mem, cols, rows, pitch, len(data), wait)
	if err != nil {
		return nil, u.NewError(u.TransferFailure, "read surface", err)
	}
	if !needsStaging(cols, rows, pitch, len(data)) {
		ev, err := q.q.EnqueueReadImage(m.mem, blocking, [3]int{}, region(cols, rows), pitch, 0, data, evs)
		if err != nil {
			return nil, u.NewError(u.TransferFailure, "enqueue read image", err)
		}
		return newEvent(ev, data), nil
	}

	staged_pitch := u.ByPowerOf2(cols, 2)
	staged := make([]byte, staged_pitch*rows)
	ev, err := q.q.EnqueueReadImage(m.mem, true, [3]int{}, region(cols, rows), staged_pitch, 0, staged, evs)
	if err != nil {
		return nil, u.NewError(u.TransferFailure, "enqueue read image", err)
	}
	if ev != nil {
		ev.Release()
	}
	copyRows(data, pitch, staged, staged_pitch, cols, rows)
	return nil, nil
}

func (q *queue) EnqueueKernel(k pu.Kernel, global, local []int, wait []pu.Event) (pu.Event, error) {
	kern, ok := k.(*kernel)
	if !ok {
		return nil, u.Errorf(u.DispatchFailure, "enqueue kernel", "kernel %T does not belong to the OpenCL device", k)
	}
	evs, err := toEvents(wait)
	if err != nil {
		return nil, u.NewError(u.InvalidParameter, "enqueue kernel "+kern.name, err)
	}
	ev, err := q.q.EnqueueNDRangeKernel(kern.k, nil, global, local, evs)
	if err != nil {
		return nil, u.NewError(u.DispatchFailure, "enqueue kernel "+kern.name, err)
	}
	return newEvent(ev, nil), nil
}

func (q *queue) Finish() error {
	if err := q.q.Finish(); err != nil {
		return u.NewError(u.DispatchFailure, "finish queue", err)
	}
	return nil
}

func (q *queue) Release() error {
	err := q.Finish()
	q.q.Release()
	return err
}

func (q *queue) checkBuffer(mem pu.Memory, offset, size int, wait []pu.Event) (*memory, []*cl.Event, error) {
	m, err := toMemory(mem)
	if err != nil {
		return nil, nil, err
	}
	if m.surface {
		return nil, nil, xerrors.New("memory object is a surface, not a buffer")
	}
	if size == 0 || offset < 0 || offset+size > m.size {
		return nil, nil, xerrors.Errorf("range [%d, %d) outside buffer of %d bytes", offset, offset+size, m.size)
	}
	evs, err := toEvents(wait)
	return m, evs, err
}

func (q *queue) checkSurface(mem pu.Memory, cols, rows, pitch, size int, wait []pu.Event) (*memory, []*cl.Event, error) {
	m, err := toMemory(mem)
	if err != nil {
		return nil, nil, err
	}
	if !m.surface {
		return nil, nil, xerrors.New("memory object is a buffer, not a surface")
	}
	if cols <= 0 || rows <= 0 {
		return nil, nil, xerrors.Errorf("empty region %dx%d", cols, rows)
	}
	if r := region(cols, rows); r[0] > m.width || r[1] > m.height {
		return nil, nil, xerrors.Errorf("region %dx%d outside surface of %dx%d elements", r[0], r[1], m.width, m.height)
	}
	if pitch < cols || (rows-1)*pitch+cols > size {
		return nil, nil, xerrors.Errorf("host memory of %d bytes with pitch %d cannot hold %dx%d pixels", size, pitch, cols, rows)
	}
	evs, err := toEvents(wait)
	return m, evs, err
}

func copyRows(dst []byte, dst_pitch int, src []byte, src_pitch int, cols, rows int) {
	for y := 0; y < rows; y++ {
		copy(dst[y*dst_pitch:y*dst_pitch+cols], src[y*src_pitch:y*src_pitch+cols])
	}
}
