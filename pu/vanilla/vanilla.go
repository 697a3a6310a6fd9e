// Package vanilla simulates an accelerator on the host CPU.
//
// Commands enqueued on a queue run asynchronously and start only once every
// event in their wait list has completed, so commands without a declared
// dependency may run in any order. Transfers run concurrently; kernels take
// the device compute lock and spread their work-groups over the compute units.
package vanilla

import (
	"runtime"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/xerrors"

	"github.com/moratsam/opencl-temporal-denoise/logger"
	"github.com/moratsam/opencl-temporal-denoise/pu"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

type Device struct {
	name          string
	compute_units int
	memory_limit  int
	kernels       map[string]HostKernel
	log           logger.Logger

	compute sync.Mutex // Held by a running kernel.

	mu        sync.Mutex
	allocated int
	released  bool
}

var _ pu.Device = (*Device)(nil)

type Option func(*Device)

// WithKernels registers host implementations of program entry points by name.
func WithKernels(kernels map[string]HostKernel) Option {
	return func(d *Device) {
		for name, k := range kernels {
			d.kernels[name] = k
		}
	}
}

func WithComputeUnits(n int) Option {
	return func(d *Device) {
		if n > 0 {
			d.compute_units = n
		}
	}
}

// WithMemoryLimit caps the bytes the device hands out. Zero means unlimited.
func WithMemoryLimit(bytes int) Option {
	return func(d *Device) {
		d.memory_limit = bytes
	}
}

func WithLogger(log logger.Logger) Option {
	return func(d *Device) {
		d.log = log
	}
}

func NewDevice(opts ...Option) *Device {
	d := &Device{
		name:          "vanilla",
		compute_units: runtime.NumCPU(),
		kernels:       make(map[string]HostKernel),
		log:           logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log.Info("using device",
		zap.String("name", d.name),
		zap.Int("compute_units", d.compute_units),
		zap.Int("host_kernels", len(d.kernels)),
	)
	return d
}

func (d *Device) Name() string {
	return d.name
}

func (d *Device) Describe() []pu.Property {
	d.mu.Lock()
	defer d.mu.Unlock()
	return []pu.Property{
		{Name: "name", Value: d.name},
		{Name: "type", Value: "host"},
		{Name: "max compute units", Value: d.compute_units},
		{Name: "memory limit", Value: d.memory_limit},
		{Name: "allocated", Value: d.allocated},
		{Name: "host kernels", Value: len(d.kernels)},
	}
}

func (d *Device) CreateQueue() (pu.Queue, error) {
	if err := d.checkReleased(); err != nil {
		return nil, u.WrapErr("create queue", err)
	}
	return &queue{dev: d}, nil
}

func (d *Device) AllocateBuffer(size int) (pu.Memory, error) {
	if size <= 0 {
		return nil, u.Errorf(u.InvalidParameter, "allocate buffer", "size %d", size)
	}
	if err := d.reserve(size); err != nil {
		return nil, u.NewError(u.AllocationFailure, "allocate buffer", err)
	}
	return &memory{dev: d, data: make([]byte, size)}, nil
}

func (d *Device) AllocateSurface(elem_width, elem_height int) (pu.Memory, error) {
	if elem_width <= 0 || elem_height <= 0 {
		return nil, u.Errorf(u.InvalidParameter, "allocate surface", "dimensions %dx%d", elem_width, elem_height)
	}
	pitch := elem_width * 4
	if err := d.reserve(pitch * elem_height); err != nil {
		return nil, u.NewError(u.AllocationFailure, "allocate surface", err)
	}
	return &memory{
		dev:     d,
		surface: true,
		data:    make([]byte, pitch*elem_height),
		width:   elem_width,
		height:  elem_height,
		pitch:   pitch,
	}, nil
}

func (d *Device) WaitAll(events []pu.Event) error {
	evs, err := toEvents(events)
	if err != nil {
		return u.WrapErr("wait all", err)
	}
	var first error
	for _, ev := range evs {
		if err := ev.wait(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (d *Device) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return xerrors.New("device already released")
	}
	d.released = true
	return nil
}

// Allocated reports the bytes currently held by live allocations.
func (d *Device) Allocated() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.allocated
}

func (d *Device) reserve(size int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return xerrors.New("device released")
	}
	if d.memory_limit > 0 && d.allocated+size > d.memory_limit {
		return xerrors.Errorf("out of device memory: %d of %d bytes in use, %d requested", d.allocated, d.memory_limit, size)
	}
	d.allocated += size
	return nil
}

func (d *Device) free(size int) {
	d.mu.Lock()
	d.allocated -= size
	d.mu.Unlock()
}

func (d *Device) checkReleased() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return xerrors.New("device released")
	}
	return nil
}
