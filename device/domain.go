package device

import (
	"math"

	u "github.com/moratsam/opencl-temporal-denoise/util"
)

// Domain is the index space a task runs over. Items counts scalars (pixels,
// floats) per dimension, ItemWidth the scalars one work-item handles, Local
// the work-group size.
type Domain struct {
	Dims      int
	Local     [3]int
	Items     [3]int
	ItemWidth [3]int
}

func NewDomain(dims int, local, items, item_width []int) Domain {
	d := Domain{Dims: dims}
	for i := 0; i < 3; i++ {
		d.Local[i], d.Items[i], d.ItemWidth[i] = 1, 1, 1
		if i < len(local) {
			d.Local[i] = local[i]
		}
		if i < len(items) {
			d.Items[i] = items[i]
		}
		if i < len(item_width) {
			d.ItemWidth[i] = item_width[i]
		}
	}
	return d
}

func (d Domain) validate() error {
	if d.Dims < 1 || d.Dims > 3 {
		return u.Errorf(u.InvalidParameter, "execution domain", "dimension count %d outside [1, 3]", d.Dims)
	}
	for i := 0; i < d.Dims; i++ {
		if d.Local[i] <= 0 || d.Items[i] <= 0 || d.ItemWidth[i] <= 0 {
			return u.Errorf(u.InvalidParameter, "execution domain",
				"dimension %d: local %d, items %d, item width %d", i, d.Local[i], d.Items[i], d.ItemWidth[i])
		}
	}
	return nil
}

// Global returns the global work size, a multiple of the local size in
// every dimension:
//
//	global[i] = ceil(items[i] / item_width[i] / local[i]) * local[i]
func (d Domain) Global() ([]int, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	global := make([]int, d.Dims)
	for i := range global {
		per_item := float64(d.Items[i]) / float64(d.ItemWidth[i])
		groups := int(math.Ceil(per_item / float64(d.Local[i])))
		global[i] = groups * d.Local[i]
	}
	return global, nil
}

func (d Domain) LocalSize() []int {
	if d.Dims < 1 || d.Dims > 3 {
		return nil
	}
	return append([]int(nil), d.Local[:d.Dims]...)
}
