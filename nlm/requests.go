package nlm

import (
	"sort"

	"github.com/moratsam/opencl-temporal-denoise/frame"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

// FrameRequestSet lists the source frames a pipeline needs copied to the
// device for one output frame. The pipeline requests indexes, the frame
// source resolves each with its host plane before the copy-in step.
type FrameRequestSet struct {
	entries map[int]*frame.Plane
}

func NewFrameRequestSet() *FrameRequestSet {
	return &FrameRequestSet{entries: make(map[int]*frame.Plane)}
}

// Request adds an unresolved entry for frame n. Requesting twice is harmless.
func (s *FrameRequestSet) Request(n int) {
	if _, ok := s.entries[n]; !ok {
		s.entries[n] = nil
	}
}

// Next returns the lowest unresolved frame index.
func (s *FrameRequestSet) Next() (int, bool) {
	for _, n := range s.Requested() {
		if s.entries[n] == nil {
			return n, true
		}
	}
	return 0, false
}

// Wants reports whether frame n is requested and still unresolved.
func (s *FrameRequestSet) Wants(n int) bool {
	p, ok := s.entries[n]
	return ok && p == nil
}

func (s *FrameRequestSet) Supply(n int, plane frame.Plane) error {
	if _, ok := s.entries[n]; !ok {
		return u.Errorf(u.InvalidParameter, "supply frame", "frame %d was not requested", n)
	}
	if plane.Data == nil {
		return u.Errorf(u.InvalidParameter, "supply frame", "frame %d supplied without pixels", n)
	}
	s.entries[n] = &plane
	return nil
}

// Retrieve returns the plane supplied for frame n. Retrieving an unresolved
// or unknown entry is an error.
func (s *FrameRequestSet) Retrieve(n int) (frame.Plane, error) {
	p, ok := s.entries[n]
	if !ok {
		return frame.Plane{}, u.Errorf(u.InvalidParameter, "retrieve frame", "frame %d was not requested", n)
	}
	if p == nil {
		return frame.Plane{}, u.Errorf(u.InvalidParameter, "retrieve frame", "frame %d unresolved", n)
	}
	return *p, nil
}

// Requested returns the requested frame indexes in ascending order.
func (s *FrameRequestSet) Requested() []int {
	indexes := make([]int, 0, len(s.entries))
	for n := range s.entries {
		indexes = append(indexes, n)
	}
	sort.Ints(indexes)
	return indexes
}

func (s *FrameRequestSet) Len() int {
	return len(s.entries)
}

// Complete fails while any entry is unresolved.
func (s *FrameRequestSet) Complete() error {
	if n, ok := s.Next(); ok {
		return u.Errorf(u.InvalidParameter, "consume frame requests", "frame %d unresolved", n)
	}
	return nil
}
