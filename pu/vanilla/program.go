package vanilla

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"github.com/moratsam/opencl-temporal-denoise/pu"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

// HostKernel is the Go implementation of one program entry point. Run is
// invoked once per work-item with its global id.
type HostKernel struct {
	Arity int
	Run   func(args Args, gid [3]int)
}

var entry_pattern = regexp.MustCompile(`__kernel\s+void\s+(\w+)\s*\(`)

type program struct {
	dev     *Device
	entries map[string]HostKernel
}

var _ pu.Program = (*program)(nil)

// BuildProgram resolves every __kernel entry point of source against the
// registered host kernels. Options are accepted and ignored.
func (d *Device) BuildProgram(source, options string) (pu.Program, error) {
	if err := d.checkReleased(); err != nil {
		return nil, u.WrapErr("build program", err)
	}
	matches := entry_pattern.FindAllStringSubmatch(source, -1)
	if len(matches) == 0 {
		return nil, &u.BuildError{Log: "no __kernel entry points in program source"}
	}

	entries := make(map[string]HostKernel, len(matches))
	var missing []string
	for _, m := range matches {
		name := m[1]
		k, ok := d.kernels[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		entries[name] = k
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &u.BuildError{Log: fmt.Sprintf("no host implementation for kernels: %s", strings.Join(missing, ", "))}
	}
	d.log.Debug("built program", zap.Int("entries", len(entries)), zap.String("options", options))
	return &program{dev: d, entries: entries}, nil
}

func (p *program) CreateKernel(name string) (pu.Kernel, error) {
	k, ok := p.entries[name]
	if !ok {
		return nil, u.Errorf(u.InvalidParameter, "create kernel", "no kernel named %q in program", name)
	}
	return &kernel{name: name, host: k, args: make([]interface{}, k.Arity)}, nil
}

func (p *program) Release() error {
	return nil
}

type kernel struct {
	name string
	host HostKernel

	mu   sync.Mutex
	args []interface{}
}

var _ pu.Kernel = (*kernel)(nil)

func (k *kernel) Name() string {
	return k.name
}

func (k *kernel) SetArg(index int, value interface{}) error {
	if index < 0 || index >= k.host.Arity {
		return xerrors.Errorf("kernel %s: arg index %d out of range [0, %d)", k.name, index, k.host.Arity)
	}
	var v interface{}
	switch a := value.(type) {
	case pu.Memory:
		m, err := toMemory(a)
		if err != nil {
			return u.WrapErr(fmt.Sprintf("kernel %s: arg %d", k.name, index), err)
		}
		v = m
	case int32, uint32, float32:
		v = a
	default:
		return xerrors.Errorf("kernel %s: arg %d has unsupported type %T", k.name, index, value)
	}
	k.mu.Lock()
	k.args[index] = v
	k.mu.Unlock()
	return nil
}

func (k *kernel) Release() error {
	return nil
}

func (k *kernel) snapshot() (Args, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	args := make(Args, len(k.args))
	for i, a := range k.args {
		if a == nil {
			return nil, xerrors.Errorf("arg %d not set", i)
		}
		if m, ok := a.(*memory); ok && !m.live() {
			return nil, xerrors.Errorf("arg %d bound to a released memory object", i)
		}
		args[i] = a
	}
	return args, nil
}

func checkRange(global, local []int) error {
	if len(global) == 0 || len(global) > 3 {
		return xerrors.Errorf("work dimensions %d outside [1, 3]", len(global))
	}
	if len(local) != len(global) {
		return xerrors.Errorf("local size has %d dimensions, global size %d", len(local), len(global))
	}
	for i := range global {
		if local[i] <= 0 || global[i] <= 0 {
			return xerrors.Errorf("dimension %d: global %d, local %d", i, global[i], local[i])
		}
		if global[i]%local[i] != 0 {
			return xerrors.Errorf("dimension %d: global size %d is not a multiple of local size %d", i, global[i], local[i])
		}
	}
	return nil
}

// run executes every work-group of the range. Work-groups are spread over
// the compute units; a panicking work-item fails the kernel.
func (d *Device) run(k *kernel, args Args, global, local []int) error {
	d.compute.Lock()
	defer d.compute.Unlock()

	var groups, sizes [3]int
	for i := 0; i < 3; i++ {
		groups[i], sizes[i] = 1, 1
		if i < len(global) {
			groups[i] = global[i] / local[i]
			sizes[i] = local[i]
		}
	}

	g := new(errgroup.Group)
	g.SetLimit(d.compute_units)
	for gz := 0; gz < groups[2]; gz++ {
		for gy := 0; gy < groups[1]; gy++ {
			for gx := 0; gx < groups[0]; gx++ {
				base := [3]int{gx * sizes[0], gy * sizes[1], gz * sizes[2]}
				g.Go(func() (err error) {
					defer func() {
						if r := recover(); r != nil {
							err = xerrors.Errorf("kernel %s: work-group %v: %v", k.name, base, r)
						}
					}()
					for lz := 0; lz < sizes[2]; lz++ {
						for ly := 0; ly < sizes[1]; ly++ {
							for lx := 0; lx < sizes[0]; lx++ {
								k.host.Run(args, [3]int{base[0] + lx, base[1] + ly, base[2] + lz})
							}
						}
					}
					return nil
				})
			}
		}
	}
	if err := g.Wait(); err != nil {
		return u.NewError(u.DispatchFailure, "run kernel", err)
	}
	return nil
}
