package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Verify())
	require.Empty(t, cfg.Sanitize())

	settings := cfg.Settings()
	require.InDelta(t, 0.0001, settings.Luma.H, 1e-9)
	require.InDelta(t, 0.0001, settings.Chroma.H, 1e-9)
	require.Zero(t, settings.Luma.Radius)
	require.Equal(t, 2, settings.Luma.SampleExpand)
	require.Equal(t, float32(1), settings.Sigma)
	require.False(t, settings.Fallback)
}

func TestVerify(t *testing.T) {
	tests := map[string]struct {
		mutate  func(*Config)
		wantErr string
	}{
		"log format": {
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "log.format",
		},
		"log level": {
			mutate:  func(c *Config) { c.Log.Level = "trace" },
			wantErr: "log.level",
		},
		"proc": {
			mutate:  func(c *Config) { c.Device.Proc = "cuda" },
			wantErr: "device.proc",
		},
		"device type": {
			mutate:  func(c *Config) { c.Device.Type = "fpga" },
			wantErr: "device.type",
		},
		"compute units": {
			mutate:  func(c *Config) { c.Device.ComputeUnits = -1 },
			wantErr: "device.compute_units",
		},
		"opencl cpu": {
			mutate: func(c *Config) { c.Device.Proc, c.Device.Type = "opencl", "cpu" },
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			test.mutate(cfg)
			err := cfg.Verify()
			if test.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, test.wantErr)
		})
	}
}

func TestSanitize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrengthY = -3
	cfg.StrengthUV = 2.5
	cfg.RadiusY = 100
	cfg.RadiusUV = -1
	cfg.Sigma = 0
	cfg.SampleExpand = 20

	adjusted := cfg.Sanitize()
	require.ElementsMatch(t, []string{"strength_y", "radius_y", "radius_uv", "sigma", "sample_expand"}, adjusted)
	require.Zero(t, cfg.StrengthY)
	require.Equal(t, 2.5, cfg.StrengthUV)
	require.Equal(t, 64, cfg.RadiusY)
	require.Zero(t, cfg.RadiusUV)
	require.Equal(t, 0.1, cfg.Sigma)
	require.Equal(t, 14, cfg.SampleExpand)

	cfg.SampleExpand = 0
	require.Equal(t, []string{"sample_expand"}, cfg.Sanitize())
	require.Equal(t, 1, cfg.SampleExpand)
	require.Empty(t, cfg.Sanitize())
}

func TestSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrengthY = 0
	cfg.StrengthUV = 5
	cfg.RadiusUV = 2
	cfg.Linear = true
	cfg.Fallback = true

	settings := cfg.Settings()
	require.False(t, settings.Luma.Enabled())
	require.True(t, settings.Luma.Linear)
	require.True(t, settings.Chroma.Enabled())
	require.False(t, settings.Chroma.Linear)
	require.Equal(t, 2, settings.Chroma.Radius)
	require.InDelta(t, 0.0005, settings.Chroma.H, 1e-9)
	require.True(t, settings.Fallback)
}
