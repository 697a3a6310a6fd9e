package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/moratsam/opencl-temporal-denoise/config"
	"github.com/moratsam/opencl-temporal-denoise/device"
	"github.com/moratsam/opencl-temporal-denoise/io"
	"github.com/moratsam/opencl-temporal-denoise/logger"
	"github.com/moratsam/opencl-temporal-denoise/nlm"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

const (
	input_flag  = "input"
	output_flag = "output"
	frames_flag = "frames"
)

func newDenoiseCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "denoise",
		Short: "Denoise a clip",
		Long: `Denoise a YUV4MPEG2 clip (.y4m) or an image sequence (a directory or a glob).
The output is a .y4m file or a numbered PNG pattern such as out%05d.png.`,
		RunE: runDenoise,
	}
	bindDenoiseFlags(command)
	return command
}

func bindDenoiseFlags(command *cobra.Command) {
	defaults := config.DefaultConfig()
	flags := command.Flags()

	flags.StringP(input_flag, "i", "", "input clip")
	flags.StringP(output_flag, "o", "", "output clip")
	flags.Int(frames_flag, 0, "filter only the first N frames, 0 for all")
	_ = command.MarkFlagRequired(input_flag)
	_ = command.MarkFlagRequired(output_flag)

	flags.Float64("strength-y", defaults.StrengthY, "luma filter strength, 0 passes luma through")
	MustBindPFlag("strength_y", flags.Lookup("strength-y"))

	flags.Float64("strength-uv", defaults.StrengthUV, "chroma filter strength, 0 passes chroma through")
	MustBindPFlag("strength_uv", flags.Lookup("strength-uv"))

	flags.Int("radius-y", defaults.RadiusY, "luma temporal radius (0..64), 0 filters each frame on its own")
	MustBindPFlag("radius_y", flags.Lookup("radius-y"))

	flags.Int("radius-uv", defaults.RadiusUV, "chroma temporal radius (0..64), 0 filters each frame on its own")
	MustBindPFlag("radius_uv", flags.Lookup("radius-uv"))

	flags.Float64("sigma", defaults.Sigma, "standard deviation of the gaussian patch weights (>= 0.1)")
	MustBindPFlag("sigma", flags.Lookup("sigma"))

	flags.Int("sample-expand", defaults.SampleExpand, "spacing of the candidate patches (1..14)")
	MustBindPFlag("sample_expand", flags.Lookup("sample-expand"))

	flags.Bool("linear", defaults.Linear, "compare luma patches in linear light")
	MustBindPFlag("linear", flags.Lookup("linear"))

	flags.Bool("fallback", defaults.Fallback, "pass a plane through unfiltered once its device pipeline failed")
	MustBindPFlag("fallback", flags.Lookup("fallback"))

	flags.String("metrics-addr", defaults.MetricsAddr, "the host:port address to serve prometheus metrics on, empty to disable")
	MustBindPFlag("metrics_addr", flags.Lookup("metrics-addr"))
}

func runDenoise(command *cobra.Command, _ []string) error {
	cfg, err := ReadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	if adjusted := cfg.Sanitize(); len(adjusted) > 0 {
		log.Warn("filter settings clamped to their supported range", zap.Strings("keys", adjusted))
	}

	ctx, stop := signal.NotifyContext(command.Context(), os.Interrupt)
	defer stop()

	if cfg.MetricsAddr != "" {
		shutdown := serveMetrics(cfg.MetricsAddr, log)
		defer shutdown()
	}

	flags := command.Flags()
	input, _ := flags.GetString(input_flag)
	output, _ := flags.GetString(output_flag)
	limit, _ := flags.GetInt(frames_flag)
	return denoise(ctx, cfg, input, output, limit, log)
}

// denoise filters the clip at input into output.
func denoise(ctx context.Context, cfg *config.Config, input, output string, limit int, log logger.Logger) (err error) {
	// Step 1: open the clip and the writer.
	clip, err := io.OpenClip(input)
	if err != nil {
		return u.WrapErr("open input", err)
	}
	defer func() {
		if cerr := clip.Close(); cerr != nil {
			err = multierror.Append(err, u.WrapErr("close input", cerr)).ErrorOrNil()
		}
	}()
	w, err := io.CreateWriter(output, clip)
	if err != nil {
		return u.WrapErr("create output", err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil {
			err = multierror.Append(err, u.WrapErr("close output", cerr)).ErrorOrNil()
		}
	}()

	// Step 2: set up the device and the filter.
	dev, err := newDevice(cfg.Device, log.Named("device"))
	if err != nil {
		return u.WrapErr("open device", err)
	}
	dctx, err := device.NewContext(dev, log)
	if err != nil {
		_ = dev.Release()
		return u.WrapErr("new device context", err)
	}
	defer func() {
		if cerr := dctx.Close(); cerr != nil {
			err = multierror.Append(err, u.WrapErr("close device context", cerr)).ErrorOrNil()
		}
		if cerr := dev.Release(); cerr != nil {
			err = multierror.Append(err, u.WrapErr("release device", cerr)).ErrorOrNil()
		}
	}()
	filter, err := nlm.NewFilter(dctx, cfg.Settings(), clip.Format(), clip.Width(), clip.Height(), log)
	if err != nil {
		return u.WrapErr("new filter", err)
	}
	defer func() {
		if cerr := filter.Close(); cerr != nil {
			err = multierror.Append(err, u.WrapErr("close filter", cerr)).ErrorOrNil()
		}
	}()

	// Step 3: stream.
	count := clip.Count()
	if limit > 0 && limit < count {
		count = limit
	}
	log.Info("denoising",
		zap.String("input", input), zap.String("output", output),
		zap.Stringer("format", clip.Format()), zap.Int("width", clip.Width()), zap.Int("height", clip.Height()),
		zap.Int("frames", count), zap.String("proc", cfg.Device.Proc))
	start := time.Now()
	written, err := stream(ctx, clip, count, filter, w, log)
	log.Info("done", zap.Int("frames", written), zap.Duration("elapsed", time.Since(start)))
	return err
}

// serveMetrics serves the prometheus registry until the returned func is called.
func serveMetrics(addr string, log logger.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
