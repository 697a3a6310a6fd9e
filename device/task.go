package device

import (
	"fmt"

	"github.com/moratsam/opencl-temporal-denoise/pu"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

// Task is one compiled entry point with bound arguments and an execution
// domain. The first failed binding makes the task permanently invalid, so
// callers check Valid (or the dispatch error) instead of every Bind.
//
// A Task is not safe for concurrent binding. Pipelines mint their own with
// Context.NewTaskInstance.
type Task struct {
	name   string
	kernel pu.Kernel
	next   int
	err    error
	domain Domain
}

func newTask(kernel pu.Kernel) *Task {
	return &Task{name: kernel.Name(), kernel: kernel}
}

func (t *Task) Name() string {
	return t.name
}

func (t *Task) Valid() bool {
	return t.err == nil
}

// Err returns the binding failure that invalidated the task, if any.
func (t *Task) Err() error {
	return t.err
}

// BindAt sets the argument at index. Go ints and bools are passed as int32.
func (t *Task) BindAt(index int, value interface{}) error {
	if t.err != nil {
		return t.err
	}
	switch v := value.(type) {
	case int:
		value = int32(v)
	case bool:
		if v {
			value = int32(1)
		} else {
			value = int32(0)
		}
	}
	if err := t.kernel.SetArg(index, value); err != nil {
		t.err = u.NewError(u.ArgumentBindingFailure, fmt.Sprintf("bind %s arg %d", t.name, index), err)
		return t.err
	}
	return nil
}

// Bind sets the next argument in declaration order.
func (t *Task) Bind(value interface{}) error {
	index := t.next
	t.next++
	return t.BindAt(index, value)
}

// BindArgs binds values in order, continuing the Bind counter.
func (t *Task) BindArgs(values ...interface{}) error {
	for _, v := range values {
		if err := t.Bind(v); err != nil {
			return err
		}
	}
	return nil
}

func (t *Task) SetDomain(dims int, local, items, item_width []int) {
	t.domain = NewDomain(dims, local, items, item_width)
}

func (t *Task) Domain() Domain {
	return t.domain
}

func (t *Task) Dispatch(q pu.Queue) (pu.Event, error) {
	return t.DispatchAfterAll(q, nil)
}

func (t *Task) DispatchAfter(q pu.Queue, antecedent pu.Event) (pu.Event, error) {
	return t.DispatchAfterAll(q, []pu.Event{antecedent})
}

// DispatchAfterAll enqueues the task to start once every antecedent
// completed. On failure no work is enqueued and the event is nil.
func (t *Task) DispatchAfterAll(q pu.Queue, antecedents []pu.Event) (pu.Event, error) {
	if t.err != nil {
		dispatchFailureCounter.Inc()
		return nil, u.WrapErr("dispatch "+t.name, t.err)
	}
	global, err := t.domain.Global()
	if err != nil {
		dispatchFailureCounter.Inc()
		return nil, u.WrapErr("dispatch "+t.name, err)
	}
	ev, err := q.EnqueueKernel(t.kernel, global, t.domain.LocalSize(), waitList(antecedents))
	if err != nil {
		dispatchFailureCounter.Inc()
		return nil, u.NewError(u.DispatchFailure, "dispatch "+t.name, err)
	}
	dispatchCounter.Inc()
	return ev, nil
}

func (t *Task) Release() error {
	return t.kernel.Release()
}
