package vanilla

import (
	"math"
	"sync"
	"unsafe"

	"golang.org/x/xerrors"

	"github.com/moratsam/opencl-temporal-denoise/pu"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

type memory struct {
	dev     *Device
	surface bool
	data    []byte

	// Surface layout, in RGBA8 elements. pitch is in bytes.
	width  int
	height int
	pitch  int

	mu       sync.Mutex
	released bool
}

var _ pu.Memory = (*memory)(nil)

func (m *memory) Size() int {
	return len(m.data)
}

func (m *memory) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return xerrors.New("memory object already released")
	}
	m.released = true
	m.dev.free(len(m.data))
	return nil
}

func (m *memory) live() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.released
}

func toMemory(mem pu.Memory) (*memory, error) {
	m, ok := mem.(*memory)
	if !ok {
		return nil, xerrors.Errorf("memory object %T does not belong to the vanilla device", mem)
	}
	if !m.live() {
		return nil, xerrors.New("memory object released")
	}
	return m, nil
}

// Surface is the kernel view of an RGBA8 surface. Each byte holds one 8-bit
// pixel, so pixel x of a row is byte x of that row.
type Surface struct {
	Width  int // Pixels, including padding.
	Height int
	Pitch  int
	Data   []byte
}

func (m *memory) view() *Surface {
	return &Surface{Width: m.width * 4, Height: m.height, Pitch: m.pitch, Data: m.data}
}

// At reads the pixel at (x, y) normalised to [0, 1]. Coordinates are
// clamped to the w x h region.
func (s *Surface) At(x, y, w, h int) float32 {
	if x < 0 {
		x = 0
	} else if x >= w {
		x = w - 1
	}
	if y < 0 {
		y = 0
	} else if y >= h {
		y = h - 1
	}
	return float32(s.Data[y*s.Pitch+x]) / 255
}

func (s *Surface) Set(x, y int, v float32) {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return
	}
	s.Data[y*s.Pitch+x] = byte(math.Round(float64(clamp01(v) * 255)))
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Args is the argument list a host kernel sees, captured at enqueue time.
type Args []interface{}

func (a Args) Surface(i int) *Surface {
	return a[i].(*memory).view()
}

func (a Args) Floats(i int) []float32 {
	m := a[i].(*memory)
	if len(m.data) < 4 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&m.data[0])), len(m.data)/4)
}

func (a Args) Int(i int) int {
	switch v := a[i].(type) {
	case int32:
		return int(v)
	case uint32:
		return int(v)
	}
	panic(u.Errorf(u.ArgumentBindingFailure, "read arg", "arg %d is %T, not an integer", i, a[i]))
}

func (a Args) Float(i int) float32 {
	return a[i].(float32)
}

func copyRows(dst []byte, dst_pitch int, src []byte, src_pitch int, cols, rows int) {
	for y := 0; y < rows; y++ {
		copy(dst[y*dst_pitch:y*dst_pitch+cols], src[y*src_pitch:y*src_pitch+cols])
	}
}
