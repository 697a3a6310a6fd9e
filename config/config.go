// Package config holds the tdn configuration as read by viper from flags,
// TDN_ environment variables and an optional config file.
package config

import (
	"golang.org/x/xerrors"

	"github.com/moratsam/opencl-temporal-denoise/nlm"
)

const (
	max_radius        = 64
	min_sigma         = 0.1
	max_sample_expand = 14

	// Strengths are given on a user friendly scale.
	strength_scale = 10000
)

type LogConfig struct {
	Format string `mapstructure:"format"` // text or json
	Level  string `mapstructure:"level"`  // none, debug, info, warn, error, panic or fatal
}

type DeviceConfig struct {
	Proc         string `mapstructure:"proc"`          // vanilla or opencl
	Type         string `mapstructure:"type"`          // OpenCL device type: gpu, cpu or all
	ComputeUnits int    `mapstructure:"compute_units"` // Vanilla work-group parallelism, 0 for one per CPU.
}

// Config is the complete tdn configuration. The filter keys live at the top
// level.
type Config struct {
	StrengthY    float64 `mapstructure:"strength_y"`
	StrengthUV   float64 `mapstructure:"strength_uv"`
	RadiusY      int     `mapstructure:"radius_y"`
	RadiusUV     int     `mapstructure:"radius_uv"`
	Sigma        float64 `mapstructure:"sigma"`
	SampleExpand int     `mapstructure:"sample_expand"`
	Linear       bool    `mapstructure:"linear"`
	Fallback     bool    `mapstructure:"fallback"`

	Device      DeviceConfig `mapstructure:"device"`
	Log         LogConfig    `mapstructure:"log"`
	MetricsAddr string       `mapstructure:"metrics_addr"`
}

func DefaultConfig() *Config {
	return &Config{
		StrengthY:    1.0,
		StrengthUV:   1.0,
		Sigma:        1.0,
		SampleExpand: 2,
		Device: DeviceConfig{
			Proc: "vanilla",
			Type: "gpu",
		},
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
	}
}

// Verify rejects settings that cannot be repaired by Sanitize.
func (cfg *Config) Verify() error {
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return xerrors.New("config 'log.format' must be one of ['text', 'json']")
	}
	switch cfg.Log.Level {
	case "none", "debug", "info", "warn", "error", "panic", "fatal":
	default:
		return xerrors.New("config 'log.level' must be one of ['none', 'debug', 'info', 'warn', 'error', 'panic', 'fatal']")
	}
	if cfg.Device.Proc != "vanilla" && cfg.Device.Proc != "opencl" {
		return xerrors.New("config 'device.proc' must be one of ['vanilla', 'opencl']")
	}
	switch cfg.Device.Type {
	case "gpu", "cpu", "all":
	default:
		return xerrors.New("config 'device.type' must be one of ['gpu', 'cpu', 'all']")
	}
	if cfg.Device.ComputeUnits < 0 {
		return xerrors.Errorf("config 'device.compute_units' (%d) cannot be negative", cfg.Device.ComputeUnits)
	}
	return nil
}

// Sanitize clamps the filter parameters into their supported ranges and
// returns the keys it had to adjust.
func (cfg *Config) Sanitize() []string {
	var adjusted []string
	clamp := func(key string, v *int, lo, hi int) {
		switch {
		case *v < lo:
			*v = lo
		case *v > hi:
			*v = hi
		default:
			return
		}
		adjusted = append(adjusted, key)
	}

	if cfg.StrengthY < 0 {
		cfg.StrengthY = 0
		adjusted = append(adjusted, "strength_y")
	}
	if cfg.StrengthUV < 0 {
		cfg.StrengthUV = 0
		adjusted = append(adjusted, "strength_uv")
	}
	clamp("radius_y", &cfg.RadiusY, 0, max_radius)
	clamp("radius_uv", &cfg.RadiusUV, 0, max_radius)
	if cfg.Sigma < min_sigma {
		cfg.Sigma = min_sigma
		adjusted = append(adjusted, "sigma")
	}
	clamp("sample_expand", &cfg.SampleExpand, 1, max_sample_expand)
	return adjusted
}

// Settings converts the filter keys to the engine's settings. Chroma is
// never compared in linear light.
func (cfg *Config) Settings() nlm.Settings {
	return nlm.Settings{
		Luma: nlm.Params{
			H:            float32(cfg.StrengthY / strength_scale),
			Radius:       cfg.RadiusY,
			SampleExpand: cfg.SampleExpand,
			Linear:       cfg.Linear,
		},
		Chroma: nlm.Params{
			H:            float32(cfg.StrengthUV / strength_scale),
			Radius:       cfg.RadiusUV,
			SampleExpand: cfg.SampleExpand,
		},
		Sigma:    float32(cfg.Sigma),
		Fallback: cfg.Fallback,
	}
}
