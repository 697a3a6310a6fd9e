// Package device is the accelerator engine: a registry of device resources,
// compiled tasks with their execution domains, and the context that owns
// both together with a command queue.
package device

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/xerrors"

	"github.com/moratsam/opencl-temporal-denoise/logger"
	"github.com/moratsam/opencl-temporal-denoise/pu"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

type compiled struct {
	program pu.Program
	err     error
}

// Context owns one command queue, one Pool and the compiled programs of a
// device. Create one per device and pass it to every pipeline using it.
type Context struct {
	device pu.Device
	queue  pu.Queue
	pool   *Pool
	log    logger.Logger

	mu       sync.Mutex
	programs map[uint64]*compiled
	order    []uint64 // Successful builds, in compile order.
	shared   map[string]*Task
	closed   bool
}

func NewContext(device pu.Device, log logger.Logger) (*Context, error) {
	queue, err := device.CreateQueue()
	if err != nil {
		return nil, u.WrapErr("create command queue", err)
	}
	log = log.Named("device")
	return &Context{
		device:   device,
		queue:    queue,
		pool:     NewPool(device, log),
		log:      log,
		programs: make(map[uint64]*compiled),
		shared:   make(map[string]*Task),
	}, nil
}

func (c *Context) Device() pu.Device { return c.device }
func (c *Context) Queue() pu.Queue   { return c.queue }
func (c *Context) Pool() *Pool       { return c.pool }

func programKey(source, options string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(options)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(source)
	return d.Sum64()
}

// Compile builds source with options unless it was built before. A failed
// build is remembered: compiling the same program again returns the same
// *util.BuildError without another build.
func (c *Context) Compile(source, options string) error {
	key := programKey(source, options)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return u.Errorf(u.InvalidResourceState, "compile", "context closed")
	}
	if prev, ok := c.programs[key]; ok {
		return prev.err
	}

	program, err := c.device.BuildProgram(source, options)
	if err != nil {
		var build_err *u.BuildError
		if !xerrors.As(err, &build_err) {
			build_err = &u.BuildError{Log: err.Error()}
		}
		c.programs[key] = &compiled{err: build_err}
		c.log.Error("program build failed", zap.String("options", options), zap.String("log", build_err.Log))
		return build_err
	}
	c.programs[key] = &compiled{program: program}
	c.order = append(c.order, key)
	c.log.Debug("program built", zap.Uint64("key", key), zap.String("options", options))
	return nil
}

// NewTaskInstance returns a Task of its own for entry, looked up in the
// compiled programs in compile order.
func (c *Context) NewTaskInstance(entry string) (*Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.newTask(entry)
}

func (c *Context) newTask(entry string) (*Task, error) {
	if c.closed {
		return nil, u.Errorf(u.InvalidResourceState, "new task "+entry, "context closed")
	}
	var result *multierror.Error
	for _, key := range c.order {
		kernel, err := c.programs[key].program.CreateKernel(entry)
		if err == nil {
			return newTask(kernel), nil
		}
		result = multierror.Append(result, err)
	}
	if result == nil {
		return nil, u.Errorf(u.CompileOrBuildFailure, "new task "+entry, "no program compiled")
	}
	return nil, u.NewError(u.CompileOrBuildFailure, "new task "+entry, result)
}

// Task returns the shared task for entry. Its arguments are visible to every
// caller, so it is only for callers that bind and dispatch without
// interleaving with others.
func (c *Context) Task(entry string) (*Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.shared[entry]; ok {
		return t, nil
	}
	t, err := c.newTask(entry)
	if err != nil {
		return nil, err
	}
	c.shared[entry] = t
	return t, nil
}

// NewQueue creates another command queue on the device. The caller owns it.
func (c *Context) NewQueue() (pu.Queue, error) {
	q, err := c.device.CreateQueue()
	if err != nil {
		return nil, u.WrapErr("create command queue", err)
	}
	return q, nil
}

// WaitAll blocks until every event completed. Nil events are skipped.
func (c *Context) WaitAll(events []pu.Event) error {
	wait := waitList(events)
	if len(wait) == 0 {
		return nil
	}
	if err := c.device.WaitAll(wait); err != nil {
		return u.WrapErr("wait for events", err)
	}
	return nil
}

// Finish blocks until the context queue drained.
func (c *Context) Finish() error {
	if err := c.queue.Finish(); err != nil {
		return u.WrapErr("finish queue", err)
	}
	return nil
}

// Close drains the queue and releases tasks, resources, programs and the queue.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	var result *multierror.Error
	if err := c.queue.Finish(); err != nil {
		result = multierror.Append(result, u.WrapErr("finish queue", err))
	}
	for name, t := range c.shared {
		if err := t.Release(); err != nil {
			result = multierror.Append(result, u.WrapErr("release task "+name, err))
		}
	}
	if err := c.pool.ReleaseAll(); err != nil {
		result = multierror.Append(result, err)
	}
	for _, key := range c.order {
		if err := c.programs[key].program.Release(); err != nil {
			result = multierror.Append(result, u.WrapErr("release program", err))
		}
	}
	if err := c.queue.Release(); err != nil {
		result = multierror.Append(result, u.WrapErr("release queue", err))
	}
	return result.ErrorOrNil()
}
