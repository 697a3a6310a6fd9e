//go:build opencl

// Package opencl runs the engine on an OpenCL device. Surfaces are 2D
// images of CL_RGBA / CL_UNORM_INT8 elements, four 8-bit pixels per element.
package opencl

import (
	"strings"

	"github.com/jgillich/go-opencl/cl"
	"go.uber.org/zap"
	"golang.org/x/xerrors"

	"github.com/moratsam/opencl-temporal-denoise/logger"
	"github.com/moratsam/opencl-temporal-denoise/pu"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

type Device struct {
	device  *cl.Device
	context *cl.Context
	log     logger.Logger
}

var _ pu.Device = (*Device)(nil)

func deviceType(name string) (cl.DeviceType, error) {
	switch strings.ToLower(name) {
	case "gpu":
		return cl.DeviceTypeGPU, nil
	case "cpu":
		return cl.DeviceTypeCPU, nil
	case "all", "":
		return cl.DeviceTypeAll, nil
	default:
		return 0, xerrors.Errorf("unknown device type %q", name)
	}
}

// devices returns the devices of the given type on every platform.
func devices(device_type string) ([]*cl.Device, error) {
	t, err := deviceType(device_type)
	if err != nil {
		return nil, err
	}
	platforms, err := cl.GetPlatforms()
	if err != nil {
		return nil, u.WrapErr("get platforms", err)
	}
	var found []*cl.Device
	for _, p := range platforms {
		devs, err := p.GetDevices(t)
		if err == cl.ErrDeviceNotFound {
			continue
		}
		if err != nil {
			return nil, u.WrapErr("get devices of "+p.Name(), err)
		}
		found = append(found, devs...)
	}
	return found, nil
}

// NewDevice opens the first device of the given type (gpu, cpu or all).
func NewDevice(device_type string, log logger.Logger) (*Device, error) {
	devs, err := devices(device_type)
	if err != nil {
		return nil, u.NewError(u.AllocationFailure, "new device", err)
	}
	if len(devs) == 0 {
		return nil, u.Errorf(u.AllocationFailure, "new device", "no %s OpenCL devices", device_type)
	}
	device := devs[0]

	context, err := cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, u.NewError(u.AllocationFailure, "create context", err)
	}
	d := &Device{device: device, context: context, log: log}
	log.Info("using device",
		zap.String("name", device.Name()),
		zap.String("vendor", device.Vendor()),
		zap.String("type", device.Type().String()),
		zap.String("openclc_version", device.OpenCLCVersion()),
		zap.Int("compute_units", device.MaxComputeUnits()),
	)
	return d, nil
}

// ListDevices describes every device of the given type.
func ListDevices(device_type string) ([][]pu.Property, error) {
	devs, err := devices(device_type)
	if err != nil {
		return nil, err
	}
	out := make([][]pu.Property, 0, len(devs))
	for _, dev := range devs {
		out = append(out, describe(dev))
	}
	return out, nil
}

func describe(dev *cl.Device) []pu.Property {
	return []pu.Property{
		{Name: "name", Value: dev.Name()},
		{Name: "vendor", Value: dev.Vendor()},
		{Name: "type", Value: dev.Type().String()},
		{Name: "version", Value: dev.Version()},
		{Name: "driver version", Value: dev.DriverVersion()},
		{Name: "openclc version", Value: dev.OpenCLCVersion()},
		{Name: "max compute units", Value: dev.MaxComputeUnits()},
		{Name: "max work group size", Value: dev.MaxWorkGroupSize()},
		{Name: "global memory", Value: dev.GlobalMemSize()},
		{Name: "image support", Value: dev.ImageSupport()},
		{Name: "image2d max", Value: []int{dev.Image2DMaxWidth(), dev.Image2DMaxHeight()}},
	}
}

func (d *Device) Name() string {
	return d.device.Name()
}

func (d *Device) Describe() []pu.Property {
	return describe(d.device)
}

func (d *Device) CreateQueue() (pu.Queue, error) {
	q, err := d.context.CreateCommandQueue(d.device, 0)
	if err != nil {
		return nil, u.NewError(u.AllocationFailure, "create command queue", err)
	}
	return &queue{q: q}, nil
}

func (d *Device) AllocateBuffer(size int) (pu.Memory, error) {
	if size <= 0 {
		return nil, u.Errorf(u.InvalidParameter, "allocate buffer", "size %d", size)
	}
	mem, err := d.context.CreateEmptyBuffer(cl.MemReadWrite, size)
	if err != nil {
		return nil, u.NewError(u.AllocationFailure, "allocate buffer", err)
	}
	return &memory{mem: mem, size: size}, nil
}

func (d *Device) AllocateSurface(elem_width, elem_height int) (pu.Memory, error) {
	if elem_width <= 0 || elem_height <= 0 {
		return nil, u.Errorf(u.InvalidParameter, "allocate surface", "dimensions %dx%d", elem_width, elem_height)
	}
	mem, err := d.context.CreateImageSimple(cl.MemReadWrite, elem_width, elem_height,
		cl.ChannelOrderRGBA, cl.ChannelDataTypeUNormInt8, nil)
	if err != nil {
		return nil, u.NewError(u.AllocationFailure, "allocate surface", err)
	}
	return &memory{
		mem:     mem,
		size:    elem_width * elem_height * 4,
		surface: true,
		width:   elem_width,
		height:  elem_height,
	}, nil
}

func (d *Device) BuildProgram(source, options string) (pu.Program, error) {
	prog, err := d.context.CreateProgramWithSource([]string{source})
	if err != nil {
		return nil, u.NewError(u.CompileOrBuildFailure, "create program", err)
	}
	if err := prog.BuildProgram([]*cl.Device{d.device}, options); err != nil {
		prog.Release()
		if build_err, ok := err.(cl.BuildError); ok {
			return nil, &u.BuildError{Log: string(build_err)}
		}
		return nil, &u.BuildError{Log: err.Error()}
	}
	d.log.Debug("built program", zap.String("options", options))
	return &program{p: prog}, nil
}

func (d *Device) WaitAll(events []pu.Event) error {
	evs, err := toEvents(events)
	if err != nil {
		return u.WrapErr("wait all", err)
	}
	if len(evs) == 0 {
		return nil
	}
	if err := cl.WaitForEvents(evs); err != nil {
		return u.NewError(u.DispatchFailure, "wait for events", err)
	}
	return nil
}

func (d *Device) Release() error {
	d.context.Release()
	return nil
}
