package cmd

import (
	"golang.org/x/xerrors"

	"github.com/moratsam/opencl-temporal-denoise/config"
	"github.com/moratsam/opencl-temporal-denoise/logger"
	"github.com/moratsam/opencl-temporal-denoise/nlm/hostkernels"
	"github.com/moratsam/opencl-temporal-denoise/pu"
	"github.com/moratsam/opencl-temporal-denoise/pu/vanilla"
)

// newDevice opens the processor selected by cfg.
func newDevice(cfg config.DeviceConfig, log logger.Logger) (pu.Device, error) {
	switch cfg.Proc {
	case "vanilla":
		return newVanillaDevice(cfg, log), nil
	case "opencl":
		return newOpenCLDevice(cfg.Type, log)
	default:
		return nil, xerrors.Errorf("wrong processor selection %q", cfg.Proc)
	}
}

func newVanillaDevice(cfg config.DeviceConfig, log logger.Logger) *vanilla.Device {
	return vanilla.NewDevice(
		vanilla.WithKernels(hostkernels.All()),
		vanilla.WithComputeUnits(cfg.ComputeUnits),
		vanilla.WithLogger(log),
	)
}

// listDevices describes the devices the processor selected by cfg can open.
func listDevices(cfg config.DeviceConfig) ([][]pu.Property, error) {
	switch cfg.Proc {
	case "vanilla":
		return [][]pu.Property{newVanillaDevice(cfg, logger.NewNoopLogger()).Describe()}, nil
	case "opencl":
		return listOpenCLDevices(cfg.Type)
	default:
		return nil, xerrors.Errorf("wrong processor selection %q", cfg.Proc)
	}
}
