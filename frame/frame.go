// Package frame holds planar 8-bit video frames as they travel between the
// readers, the denoise filter and the writers.
package frame

import (
	"golang.org/x/xerrors"
)

type Format int

const (
	Mono Format = iota + 1
	YUV420
	YUV422
	YUV444
)

func (f Format) String() string {
	switch f {
	case Mono:
		return "mono"
	case YUV420:
		return "420"
	case YUV422:
		return "422"
	case YUV444:
		return "444"
	default:
		return "unknown"
	}
}

func (f Format) Planes() int {
	if f == Mono {
		return 1
	}
	return 3
}

// ChromaSize returns the dimensions of the U and V planes of a width x height frame.
func (f Format) ChromaSize(width, height int) (int, int) {
	switch f {
	case YUV420:
		return (width + 1) / 2, (height + 1) / 2
	case YUV422:
		return (width + 1) / 2, height
	case YUV444:
		return width, height
	default:
		return 0, 0
	}
}

// PlaneSize returns the dimensions of plane i.
func (f Format) PlaneSize(i, width, height int) (int, int) {
	if i == 0 {
		return width, height
	}
	return f.ChromaSize(width, height)
}

// Plane is one row-major 8-bit plane. Rows are Pitch bytes apart.
type Plane struct {
	Data   []byte
	Width  int
	Height int
	Pitch  int
}

func NewPlane(width, height, pitch int) Plane {
	if pitch < width {
		pitch = width
	}
	return Plane{Data: make([]byte, pitch*height), Width: width, Height: height, Pitch: pitch}
}

func (p Plane) Row(y int) []byte {
	return p.Data[y*p.Pitch : y*p.Pitch+p.Width]
}

// CopyFrom copies src row by row. Both planes must have the same dimensions.
func (p Plane) CopyFrom(src Plane) error {
	if p.Width != src.Width || p.Height != src.Height {
		return xerrors.Errorf("copy %dx%d plane into %dx%d", src.Width, src.Height, p.Width, p.Height)
	}
	for y := 0; y < p.Height; y++ {
		copy(p.Row(y), src.Row(y))
	}
	return nil
}

type Frame struct {
	Index  int
	Format Format
	Width  int
	Height int
	Planes []Plane
}

// New allocates a frame whose plane pitches are rounded up to align bytes.
func New(format Format, width, height, align int) *Frame {
	f := &Frame{Format: format, Width: width, Height: height}
	for i := 0; i < format.Planes(); i++ {
		w, h := format.PlaneSize(i, width, height)
		f.Planes = append(f.Planes, NewPlane(w, h, alignUp(w, align)))
	}
	return f
}

func alignUp(x, align int) int {
	if align <= 1 {
		return x
	}
	return (x + align - 1) / align * align
}

// Source hands out frames by index. Indexes outside the clip are clamped
// to its first or last frame. Returned frames are read-only.
type Source interface {
	Frame(n int) (*Frame, error)
	Count() int
}

// Clamp limits n to [0, count-1].
func Clamp(n, count int) int {
	if n < 0 {
		return 0
	}
	if n >= count {
		return count - 1
	}
	return n
}
