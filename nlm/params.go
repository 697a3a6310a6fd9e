package nlm

import (
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

// Params are the already-sanitized filter parameters of one channel group.
type Params struct {
	H            float32 // Filter strength as the kernels use it; 0 passes the plane through.
	Radius       int     // Temporal radius; 0 selects the single-frame pipeline.
	SampleExpand int     // Spacing of the candidate patches around a pixel.
	Linear       bool    // Compare patches in linear light.
}

// Enabled reports whether the plane is filtered at all.
func (p Params) Enabled() bool {
	return p.H > 0
}

func (p Params) validate(width, height int) error {
	switch {
	case width <= 0 || height <= 0:
		return u.Errorf(u.InvalidParameter, "validate params", "plane %dx%d", width, height)
	case p.H <= 0:
		return u.Errorf(u.InvalidParameter, "validate params", "strength %g", p.H)
	case p.Radius < 0:
		return u.Errorf(u.InvalidParameter, "validate params", "radius %d", p.Radius)
	case p.SampleExpand < 1:
		return u.Errorf(u.InvalidParameter, "validate params", "sample expand %d", p.SampleExpand)
	}
	return nil
}
