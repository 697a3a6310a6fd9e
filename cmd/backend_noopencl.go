//go:build !opencl

package cmd

import (
	"golang.org/x/xerrors"

	"github.com/moratsam/opencl-temporal-denoise/logger"
	"github.com/moratsam/opencl-temporal-denoise/pu"
)

var errNoOpenCL = xerrors.New("tdn was built without OpenCL support, rebuild with -tags opencl")

func newOpenCLDevice(_ string, _ logger.Logger) (pu.Device, error) {
	return nil, errNoOpenCL
}

func listOpenCLDevices(_ string) ([][]pu.Property, error) {
	return nil, errNoOpenCL
}
