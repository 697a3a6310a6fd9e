package nlm

import (
	"math"

	"github.com/moratsam/opencl-temporal-denoise/device"
	"github.com/moratsam/opencl-temporal-denoise/pu"
)

// warm_up_uses is the number of copy-in steps during which a slot copies
// its frame even when it already holds it. Skipping those copies changes
// the output of the first frames.
const warm_up_uses = 3

// slot is one surface of the temporal ring.
type slot struct {
	id      int
	surface device.Handle
	mem     pu.Memory
	frame   int      // Cached frame index.
	pending pu.Event // Copy-in of the current frame, nil when the frame was already resident.
	uses    int
}

func newSlot(id int, surface device.Handle, mem pu.Memory) *slot {
	return &slot{id: id, surface: surface, mem: mem, frame: math.MinInt}
}

// copyRequired reports whether the slot must copy frame n in.
func (s *slot) copyRequired(n int) bool {
	return s.uses < warm_up_uses || s.frame != n
}

// slotFrame returns the source frame the slot with id i holds while frame n
// is filtered with the given radius. Each slot holds every frame congruent to
// its id modulo 2*radius+1, so frame n sits in slot (n+radius) mod N.
func slotFrame(n, i, radius int) int {
	size := 2*radius + 1
	offset := i - radius
	return n - mod(n-offset+radius, size) + radius
}

func targetSlot(n, radius int) int {
	return mod(n+radius, 2*radius+1)
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
