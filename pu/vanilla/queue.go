package vanilla

import (
	"sync"

	"golang.org/x/xerrors"

	"github.com/moratsam/opencl-temporal-denoise/pu"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

type event struct {
	done chan struct{}
	err  error
}

var _ pu.Event = (*event)(nil)

// Release is a no-op, completed events are reclaimed by the garbage collector.
func (e *event) Release() {}

func (e *event) wait() error {
	<-e.done
	return e.err
}

func toEvents(events []pu.Event) ([]*event, error) {
	evs := make([]*event, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		ev, ok := e.(*event)
		if !ok {
			return nil, xerrors.Errorf("event %T does not belong to the vanilla device", e)
		}
		evs = append(evs, ev)
	}
	return evs, nil
}

type queue struct {
	dev *Device

	mu       sync.Mutex
	pending  []*event
	released bool
}

var _ pu.Queue = (*queue)(nil)

// enqueue starts cmd once every event in wait completed. A failed antecedent
// fails the command without running it.
func (q *queue) enqueue(op string, blocking bool, wait []pu.Event, cmd func() error) (pu.Event, error) {
	waits, err := toEvents(wait)
	if err != nil {
		return nil, u.NewError(u.InvalidParameter, op, err)
	}

	q.mu.Lock()
	if q.released {
		q.mu.Unlock()
		return nil, u.Errorf(u.InvalidResourceState, op, "queue released")
	}
	ev := &event{done: make(chan struct{})}
	q.pending = append(q.pending, ev)
	q.mu.Unlock()

	go func() {
		defer close(ev.done)
		for _, w := range waits {
			if err := w.wait(); err != nil {
				ev.err = u.WrapErr(op+": antecedent failed", err)
				return
			}
		}
		ev.err = cmd()
	}()

	if blocking {
		if err := ev.wait(); err != nil {
			return nil, err
		}
	}
	return ev, nil
}

func (q *queue) EnqueueWriteBuffer(mem pu.Memory, blocking bool, offset int, data []byte, wait []pu.Event) (pu.Event, error) {
	m, err := q.checkBuffer(mem, offset, len(data))
	if err != nil {
		return nil, u.NewError(u.TransferFailure, "write buffer", err)
	}
	return q.enqueue("write buffer", blocking, wait, func() error {
		copy(m.data[offset:], data)
		return nil
	})
}

func (q *queue) EnqueueReadBuffer(mem pu.Memory, blocking bool, offset int, data []byte, wait []pu.Event) (pu.Event, error) {
	m, err := q.checkBuffer(mem, offset, len(data))
	if err != nil {
		return nil, u.NewError(u.TransferFailure, "read buffer", err)
	}
	return q.enqueue("read buffer", blocking, wait, func() error {
		copy(data, m.data[offset:offset+len(data)])
		return nil
	})
}

func (q *queue) EnqueueWriteSurface(mem pu.Memory, blocking bool, cols, rows, pitch int, data []byte, wait []pu.Event) (pu.Event, error) {
	m, err := q.checkSurface(mem, cols, rows, pitch, len(data))
	if err != nil {
		return nil, u.NewError(u.TransferFailure, "write surface", err)
	}
	return q.enqueue("write surface", blocking, wait, func() error {
		copyRows(m.data, m.pitch, data, pitch, cols, rows)
		return nil
	})
}

func (q *queue) EnqueueReadSurface(mem pu.Memory, blocking bool, cols, rows, pitch int, data []byte, wait []pu.Event) (pu.Event, error) {
	m, err := q.checkSurface(mem, cols, rows, pitch, len(data))
	if err != nil {
		return nil, u.NewError(u.TransferFailure, "read surface", err)
	}
	return q.enqueue("read surface", blocking, wait, func() error {
		copyRows(data, pitch, m.data, m.pitch, cols, rows)
		return nil
	})
}

func (q *queue) EnqueueKernel(k pu.Kernel, global, local []int, wait []pu.Event) (pu.Event, error) {
	kern, ok := k.(*kernel)
	if !ok {
		return nil, u.Errorf(u.DispatchFailure, "enqueue kernel", "kernel %T does not belong to the vanilla device", k)
	}
	if err := checkRange(global, local); err != nil {
		return nil, u.NewError(u.DispatchFailure, "enqueue kernel "+kern.name, err)
	}
	args, err := kern.snapshot()
	if err != nil {
		return nil, u.NewError(u.DispatchFailure, "enqueue kernel "+kern.name, err)
	}
	g := append([]int(nil), global...)
	l := append([]int(nil), local...)
	return q.enqueue("kernel "+kern.name, false, wait, func() error {
		return q.dev.run(kern, args, g, l)
	})
}

// Finish blocks until every command enqueued so far completed and returns
// the first failure among them.
func (q *queue) Finish() error {
	q.mu.Lock()
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()

	var first error
	for _, ev := range pending {
		if err := ev.wait(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (q *queue) Release() error {
	err := q.Finish()
	q.mu.Lock()
	q.released = true
	q.mu.Unlock()
	return err
}

func (q *queue) checkBuffer(mem pu.Memory, offset, size int) (*memory, error) {
	m, err := toMemory(mem)
	if err != nil {
		return nil, err
	}
	if m.surface {
		return nil, xerrors.New("memory object is a surface, not a buffer")
	}
	if offset < 0 || offset+size > len(m.data) {
		return nil, xerrors.Errorf("range [%d, %d) outside buffer of %d bytes", offset, offset+size, len(m.data))
	}
	return m, nil
}

func (q *queue) checkSurface(mem pu.Memory, cols, rows, pitch, size int) (*memory, error) {
	m, err := toMemory(mem)
	if err != nil {
		return nil, err
	}
	if !m.surface {
		return nil, xerrors.New("memory object is a buffer, not a surface")
	}
	if cols <= 0 || rows <= 0 {
		return nil, xerrors.Errorf("empty region %dx%d", cols, rows)
	}
	if cols > m.width*4 || rows > m.height {
		return nil, xerrors.Errorf("region %dx%d exceeds surface of %dx%d pixels", cols, rows, m.width*4, m.height)
	}
	if pitch < cols {
		return nil, xerrors.Errorf("pitch %d shorter than row of %d", pitch, cols)
	}
	if size < (rows-1)*pitch+cols {
		return nil, xerrors.Errorf("host buffer of %d bytes too small for %d rows at pitch %d", size, rows, pitch)
	}
	return m, nil
}
