//go:build opencl

package cmd

import (
	"github.com/moratsam/opencl-temporal-denoise/logger"
	"github.com/moratsam/opencl-temporal-denoise/pu"
	"github.com/moratsam/opencl-temporal-denoise/pu/opencl"
)

func newOpenCLDevice(device_type string, log logger.Logger) (pu.Device, error) {
	dev, err := opencl.NewDevice(device_type, log)
	if err != nil {
		return nil, err
	}
	return dev, nil
}

func listOpenCLDevices(device_type string) ([][]pu.Property, error) {
	return opencl.ListDevices(device_type)
}
