package nlm

import (
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/moratsam/opencl-temporal-denoise/device"
	"github.com/moratsam/opencl-temporal-denoise/frame"
	"github.com/moratsam/opencl-temporal-denoise/logger"
	"github.com/moratsam/opencl-temporal-denoise/pu"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

// Settings configure a Filter. Luma applies to the Y plane, Chroma to U and
// V. Chroma planes are always compared in gamma space.
type Settings struct {
	Luma   Params
	Chroma Params
	Sigma  float32

	// Fallback copies a plane unfiltered once its pipeline failed instead of
	// failing the frame.
	Fallback bool
}

type fetchFunc func(n int) (frame.Plane, error)

var plane_names = [...]string{"y", "u", "v"}

// planeFilter is a pipeline bound to one plane of the clip.
type planeFilter interface {
	filterPlane(n int, fetch fetchFunc, dst frame.Plane) (pu.Event, error)
	Err() error
	Close() error
}

func (m *MultiFrame) filterPlane(n int, fetch fetchFunc, dst frame.Plane) (pu.Event, error) {
	set, err := m.Request(n)
	if err != nil {
		return nil, err
	}
	for _, i := range set.Requested() {
		plane, err := fetch(i)
		if err != nil {
			return nil, err
		}
		if err := set.Supply(i, plane); err != nil {
			return nil, err
		}
	}
	if err := m.CopyIn(set); err != nil {
		return nil, err
	}
	if err := m.Execute(); err != nil {
		return nil, err
	}
	return m.CopyOut(dst.Data, dst.Pitch)
}

func (s *SingleFrame) filterPlane(n int, fetch fetchFunc, dst frame.Plane) (pu.Event, error) {
	plane, err := fetch(n)
	if err != nil {
		return nil, err
	}
	if err := s.CopyIn(plane); err != nil {
		return nil, err
	}
	if err := s.Execute(); err != nil {
		return nil, err
	}
	return s.CopyOut(dst.Data, dst.Pitch)
}

// Filter denoises whole frames, one pipeline per plane, on a queue of its own.
type Filter struct {
	ctx      *device.Context
	q        pu.Queue
	log      logger.Logger
	settings Settings
	format   frame.Format
	width    int
	height   int

	gaussian device.Handle
	planes   []planeFilter // nil for planes passed through.
	disabled []bool
}

// NewFilter compiles the program on ctx and sets up a pipeline for every
// plane of a width x height clip whose strength is not zero.
func NewFilter(ctx *device.Context, settings Settings, format frame.Format, width, height int, log logger.Logger) (*Filter, error) {
	if width <= 0 || height <= 0 {
		return nil, u.Errorf(u.InvalidParameter, "new filter", "frame %dx%d", width, height)
	}
	if format < frame.Mono || format > frame.YUV444 {
		return nil, u.Errorf(u.InvalidParameter, "new filter", "format %d", format)
	}
	q, err := ctx.NewQueue()
	if err != nil {
		return nil, u.WrapErr("new filter", err)
	}
	f := &Filter{
		ctx:      ctx,
		q:        q,
		log:      log.Named("nlm"),
		settings: settings,
		format:   format,
		width:    width,
		height:   height,
		planes:   make([]planeFilter, format.Planes()),
		disabled: make([]bool, format.Planes()),
	}
	if err := f.setup(); err != nil {
		_ = f.Close()
		return nil, u.WrapErr("new filter", err)
	}
	return f, nil
}

func (f *Filter) params(plane int) Params {
	if plane == 0 {
		return f.settings.Luma
	}
	p := f.settings.Chroma
	p.Linear = false
	return p
}

func (f *Filter) setup() error {
	enabled := false
	for i := range f.planes {
		enabled = enabled || f.params(i).Enabled()
	}
	if !enabled {
		f.log.Info("every plane passes through")
		return nil
	}

	if err := f.prepare(); err != nil {
		if !f.settings.Fallback {
			return err
		}
		f.log.Warn("filter unavailable, passing every plane through", zap.Error(err))
		for i := range f.disabled {
			f.disabled[i] = true
		}
		return nil
	}

	for i := range f.planes {
		params := f.params(i)
		if !params.Enabled() {
			continue
		}
		width, height := f.format.PlaneSize(i, f.width, f.height)
		plane_log := f.log.Named(plane_names[i])
		var (
			p   planeFilter
			err error
		)
		if params.Radius == 0 {
			p, err = NewSingleFrame(f.ctx, f.q, f.gaussian, params, width, height, plane_log)
		} else {
			p, err = NewMultiFrame(f.ctx, f.q, f.gaussian, params, width, height, plane_log)
		}
		if err != nil {
			if !f.settings.Fallback {
				return err
			}
			f.log.Warn("plane pipeline unavailable, passing plane through", zap.Int("plane", i), zap.Error(err))
			f.disabled[i] = true
			continue
		}
		f.planes[i] = p
		f.log.Info("plane filter ready",
			zap.Int("plane", i), zap.Int("width", width), zap.Int("height", height),
			zap.Float32("h", params.H), zap.Int("radius", params.Radius),
			zap.Int("sample_expand", params.SampleExpand), zap.Bool("linear", params.Linear))
	}
	return nil
}

// prepare builds the program and uploads the patch weights.
func (f *Filter) prepare() error {
	if err := f.ctx.Compile(Source, BuildOptions()); err != nil {
		return err
	}
	table := float32Bytes(Gaussian(f.settings.Sigma))
	h, err := f.ctx.Pool().AllocateBuffer(len(table))
	if err != nil {
		return err
	}
	f.gaussian = h
	return f.ctx.Pool().WriteBuffer(f.q, h, table)
}

// Process writes the filtered frame n of src into dst. It returns once dst
// is fully written. A plane whose pipeline fails is disabled for the rest of
// the clip: with Fallback it is copied unfiltered, otherwise Process fails.
func (f *Filter) Process(n int, src frame.Source, dst *frame.Frame) error {
	if dst.Format != f.format || dst.Width != f.width || dst.Height != f.height {
		return u.Errorf(u.InvalidParameter, "process frame", "destination %s %dx%d, filter %s %dx%d",
			dst.Format, dst.Width, dst.Height, f.format, f.width, f.height)
	}
	dst.Index = n

	// Frames are fetched once and shared by every plane.
	fetched := make(map[int]*frame.Frame)
	fetch := func(plane int) fetchFunc {
		return func(i int) (frame.Plane, error) {
			fr, ok := fetched[i]
			if !ok {
				var err error
				if fr, err = src.Frame(i); err != nil {
					return frame.Plane{}, u.WrapErr("fetch frame", err)
				}
				fetched[i] = fr
			}
			if plane >= len(fr.Planes) {
				return frame.Plane{}, u.Errorf(u.InvalidParameter, "fetch frame", "frame %d has no plane %d", i, plane)
			}
			return fr.Planes[plane], nil
		}
	}

	var result *multierror.Error
	pending := make(map[int]pu.Event)
	for i, p := range f.planes {
		if f.disabled[i] && !f.settings.Fallback {
			result = multierror.Append(result, u.Errorf(u.InvalidResourceState, "filter plane", "plane %d disabled", i))
			continue
		}
		if p == nil || f.disabled[i] {
			reason := "strength"
			if f.disabled[i] {
				reason = "fallback"
			}
			if err := f.passThrough(i, n, fetch(i), dst); err != nil {
				result = multierror.Append(result, err)
			}
			passThroughCounter.WithLabelValues(reason).Inc()
			continue
		}
		ev, err := p.filterPlane(n, fetch(i), dst.Planes[i])
		if err != nil {
			if p.Err() == nil {
				result = multierror.Append(result, u.WrapErr("filter plane", err))
				continue
			}
			if err := f.planeFailed(i, n, err, fetch(i), dst); err != nil {
				result = multierror.Append(result, err)
			}
			continue
		}
		pending[i] = ev
	}

	// Join.
	failed := false
	for i := range f.planes {
		ev, ok := pending[i]
		if !ok {
			continue
		}
		if err := f.ctx.WaitAll([]pu.Event{ev}); err != nil {
			failed = true
			if err := f.planeFailed(i, n, err, fetch(i), dst); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}
	if err := f.q.Finish(); err != nil && !failed {
		result = multierror.Append(result, u.WrapErr("finish frame", err))
	}
	if err := result.ErrorOrNil(); err != nil {
		return u.WrapErr("process frame", err)
	}
	framesCounter.Inc()
	return nil
}

// planeFailed disables plane i. With Fallback the plane of frame n is copied
// through and no error is returned.
func (f *Filter) planeFailed(i, n int, cause error, fetch fetchFunc, dst *frame.Frame) error {
	f.disabled[i] = true
	if !f.settings.Fallback {
		return u.WrapErr("filter plane", cause)
	}
	f.log.Warn("plane filter failed, passing plane through", zap.Int("plane", i), zap.Int("frame", n), zap.Error(cause))
	passThroughCounter.WithLabelValues("fallback").Inc()
	return f.passThrough(i, n, fetch, dst)
}

func (f *Filter) passThrough(i, n int, fetch fetchFunc, dst *frame.Frame) error {
	plane, err := fetch(n)
	if err != nil {
		return err
	}
	if err := dst.Planes[i].CopyFrom(plane); err != nil {
		return u.NewError(u.InvalidParameter, "pass plane through", err)
	}
	return nil
}

// Disabled reports whether plane i was disabled by a failure.
func (f *Filter) Disabled(i int) bool {
	return f.disabled[i]
}

// Close drains the filter queue and releases its pipelines and resources.
func (f *Filter) Close() error {
	var result *multierror.Error
	if err := f.q.Finish(); err != nil {
		result = multierror.Append(result, u.WrapErr("finish queue", err))
	}
	for _, p := range f.planes {
		if p == nil {
			continue
		}
		if err := p.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := f.ctx.Pool().Release(f.gaussian); err != nil {
		result = multierror.Append(result, err)
	}
	if err := f.q.Release(); err != nil {
		result = multierror.Append(result, u.WrapErr("release queue", err))
	}
	return result.ErrorOrNil()
}
