//go:build opencl

package opencl

import (
	"sync"

	"github.com/jgillich/go-opencl/cl"
	"golang.org/x/xerrors"

	"github.com/moratsam/opencl-temporal-denoise/pu"
)

type memory struct {
	mem     *cl.MemObject
	size    int
	surface bool

	// Surface size in RGBA8 elements.
	width  int
	height int

	once sync.Once
}

var _ pu.Memory = (*memory)(nil)

func (m *memory) Size() int {
	return m.size
}

func (m *memory) Release() error {
	released := false
	m.once.Do(func() {
		m.mem.Release()
		released = true
	})
	if !released {
		return xerrors.New("memory object already released")
	}
	return nil
}

func toMemory(mem pu.Memory) (*memory, error) {
	m, ok := mem.(*memory)
	if !ok {
		return nil, xerrors.Errorf("memory object %T does not belong to the OpenCL device", mem)
	}
	return m, nil
}

type program struct {
	p *cl.Program
}

var _ pu.Program = (*program)(nil)

func (p *program) CreateKernel(name string) (pu.Kernel, error) {
	k, err := p.p.CreateKernel(name)
	if err != nil {
		return nil, xerrors.Errorf("create kernel %s: %w", name, err)
	}
	return &kernel{name: name, k: k}, nil
}

func (p *program) Release() error {
	p.p.Release()
	return nil
}

type kernel struct {
	name string
	k    *cl.Kernel
}

var _ pu.Kernel = (*kernel)(nil)

func (k *kernel) Name() string {
	return k.name
}

func (k *kernel) SetArg(index int, value interface{}) error {
	switch v := value.(type) {
	case pu.Memory:
		m, err := toMemory(v)
		if err != nil {
			return err
		}
		return k.k.SetArg(index, m.mem)
	case int32, uint32, float32:
		return k.k.SetArg(index, v)
	default:
		return xerrors.Errorf("unsupported argument type %T", value)
	}
}

func (k *kernel) Release() error {
	k.k.Release()
	return nil
}
