//go:build !opencl

package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moratsam/opencl-temporal-denoise/config"
	"github.com/moratsam/opencl-temporal-denoise/logger"
)

func TestOpenCLUnavailable(t *testing.T) {
	cfg := config.DefaultConfig().Device
	cfg.Proc = "opencl"
	_, err := newDevice(cfg, logger.NewNoopLogger())
	require.ErrorIs(t, err, errNoOpenCL)
	_, err = listDevices(cfg)
	require.ErrorIs(t, err, errNoOpenCL)
}
