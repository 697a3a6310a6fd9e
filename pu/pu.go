//go:generate mockgen -source pu.go -destination ../internal/mocks/mock_pu.go -package mocks

// Package pu defines the processing unit contract the denoise engine runs on.
// Any backend offering these primitives is substitutable.
package pu

// Event marks a pending asynchronous command. A nil Event means the
// preceding step already completed or was skipped.
type Event interface {
	Release()
}

// Memory is a device-resident allocation, either a flat buffer or an RGBA8 surface.
type Memory interface {
	Size() int
	Release() error
}

type Kernel interface {
	Name() string
	// SetArg binds a pu.Memory, int32, uint32 or float32 to a parameter index.
	SetArg(index int, value interface{}) error
	Release() error
}

type Program interface {
	CreateKernel(name string) (Kernel, error)
	Release() error
}

type Queue interface {
	EnqueueWriteBuffer(mem Memory, blocking bool, offset int, data []byte, wait []Event) (Event, error)
	EnqueueReadBuffer(mem Memory, blocking bool, offset int, data []byte, wait []Event) (Event, error)

	// Surface transfers cover a cols x rows pixel region. pitch is the host row
	// stride in bytes.
	EnqueueWriteSurface(mem Memory, blocking bool, cols, rows, pitch int, data []byte, wait []Event) (Event, error)
	EnqueueReadSurface(mem Memory, blocking bool, cols, rows, pitch int, data []byte, wait []Event) (Event, error)

	EnqueueKernel(kernel Kernel, global, local []int, wait []Event) (Event, error)
	Finish() error
	Release() error
}

type Device interface {
	Name() string
	CreateQueue() (Queue, error)
	AllocateBuffer(size int) (Memory, error)
	// AllocateSurface takes the surface size in 4-pixel elements.
	AllocateSurface(elem_width, elem_height int) (Memory, error)
	// BuildProgram returns a *util.BuildError carrying the log when compilation fails.
	BuildProgram(source, options string) (Program, error)
	WaitAll(events []Event) error
	Release() error
}

type Property struct {
	Name  string
	Value interface{}
}

// Describer is implemented by devices that can report their properties.
type Describer interface {
	Describe() []Property
}
