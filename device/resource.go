package device

import (
	"fmt"

	"github.com/moratsam/opencl-temporal-denoise/pu"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

// Handle identifies a Resource within its Pool. Handles start at 1.
type Handle int

type Kind int

const (
	FlatBuffer Kind = iota + 1
	ImageSurface
)

func (k Kind) String() string {
	switch k {
	case FlatBuffer:
		return "flat buffer"
	case ImageSurface:
		return "image surface"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Resource is a device allocation owned by exactly one Pool.
type Resource struct {
	handle Handle
	kind   Kind
	mem    pu.Memory

	size int // FlatBuffer bytes.

	// ImageSurface logical size in pixels, and padded size in 4-pixel elements.
	width       int
	height      int
	elem_width  int
	elem_height int

	valid bool
}

func (r *Resource) Handle() Handle { return r.handle }
func (r *Resource) Kind() Kind     { return r.kind }
func (r *Resource) Valid() bool    { return r.valid }

// Size is the byte size of the allocation, padding included.
func (r *Resource) Size() int {
	if r.kind == FlatBuffer {
		return r.size
	}
	return r.elem_width * 4 * r.elem_height
}

// Dimensions returns the logical width and height of a surface.
func (r *Resource) Dimensions() (int, int) {
	return r.width, r.height
}

// Padded returns the allocated width in pixels and height of a surface.
func (r *Resource) Padded() (int, int) {
	return r.elem_width * 4, r.elem_height
}

// release frees the backend memory exactly once.
func (r *Resource) release() error {
	if !r.valid {
		return nil
	}
	r.valid = false
	mem := r.mem
	r.mem = nil
	if err := mem.Release(); err != nil {
		return u.WrapErr(fmt.Sprintf("release %s %d", r.kind, r.handle), err)
	}
	return nil
}

// checkRegion validates a host transfer of rows x cols bytes at pitch
// against the resource and the host slice length.
func (r *Resource) checkRegion(rows, cols, pitch, host_len int) error {
	if rows <= 0 || cols <= 0 {
		return u.Errorf(u.InvalidParameter, "check region", "empty region %dx%d", cols, rows)
	}
	if pitch < cols {
		return u.Errorf(u.InvalidParameter, "check region", "pitch %d shorter than row of %d bytes", pitch, cols)
	}
	if host_len < (rows-1)*pitch+cols {
		return u.Errorf(u.InvalidParameter, "check region", "host buffer of %d bytes holds fewer than %d rows at pitch %d", host_len, rows, pitch)
	}
	switch r.kind {
	case ImageSurface:
		if cols > r.elem_width*4 || rows > r.elem_height {
			return u.Errorf(u.InvalidParameter, "check region", "region %dx%d exceeds surface %d", cols, rows, r.handle)
		}
	case FlatBuffer:
		if rows > 1 && pitch != cols {
			return u.Errorf(u.InvalidParameter, "check region", "flat buffer %d needs packed rows, pitch %d != %d", r.handle, pitch, cols)
		}
		if rows*cols > r.size {
			return u.Errorf(u.InvalidParameter, "check region", "%d bytes exceed buffer %d of %d", rows*cols, r.handle, r.size)
		}
	}
	return nil
}
