package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/xerrors"

	"github.com/moratsam/opencl-temporal-denoise/config"
	"github.com/moratsam/opencl-temporal-denoise/frame"
	"github.com/moratsam/opencl-temporal-denoise/io"
	"github.com/moratsam/opencl-temporal-denoise/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memoryClip serves mono frames whose pixels all hold 10 times the index.
type memoryClip struct {
	count int
}

func (c *memoryClip) Frame(n int) (*frame.Frame, error) {
	n = frame.Clamp(n, c.count)
	f := frame.New(frame.Mono, 8, 4, 1)
	f.Index = n
	for i := range f.Planes[0].Data {
		f.Planes[0].Data[i] = byte(10 * n)
	}
	return f, nil
}

func (c *memoryClip) Count() int           { return c.count }
func (c *memoryClip) Format() frame.Format { return frame.Mono }
func (c *memoryClip) Width() int           { return 8 }
func (c *memoryClip) Height() int          { return 4 }
func (c *memoryClip) Close() error         { return nil }

// copyFilter copies the source frame and adds one to every pixel.
type copyFilter struct {
	fail int // Frame index to fail on, -1 for none.
}

func (f *copyFilter) Process(n int, src frame.Source, dst *frame.Frame) error {
	if n == f.fail {
		return xerrors.Errorf("frame %d failed", n)
	}
	in, err := src.Frame(n)
	if err != nil {
		return err
	}
	dst.Index = n
	for y := 0; y < dst.Height; y++ {
		row := dst.Planes[0].Row(y)
		for x, v := range in.Planes[0].Row(y) {
			row[x] = v + 1
		}
	}
	return nil
}

type recordingWriter struct {
	mu     sync.Mutex
	frames []int
	values []byte
}

func (w *recordingWriter) WriteFrame(f *frame.Frame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frames = append(w.frames, f.Index)
	w.values = append(w.values, f.Planes[0].Row(f.Height - 1)[f.Width-1])
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestStream(t *testing.T) {
	w := &recordingWriter{}
	written, err := stream(context.Background(), &memoryClip{count: 6}, 5, &copyFilter{fail: -1}, w, logger.NewNoopLogger())
	require.NoError(t, err)
	require.Equal(t, 5, written)
	require.Equal(t, []int{0, 1, 2, 3, 4}, w.frames)
	require.Equal(t, []byte{1, 11, 21, 31, 41}, w.values)
}

func TestStreamFailure(t *testing.T) {
	w := &recordingWriter{}
	written, err := stream(context.Background(), &memoryClip{count: 6}, 6, &copyFilter{fail: 2}, w, logger.NewNoopLogger())
	require.ErrorContains(t, err, "frame 2 failed")
	require.LessOrEqual(t, written, 2)
	for i, n := range w.frames {
		require.Equal(t, i, n)
	}
}

func TestStreamCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := &recordingWriter{}
	written, err := stream(ctx, &memoryClip{count: 6}, 6, &copyFilter{fail: -1}, w, logger.NewNoopLogger())
	require.Error(t, err)
	require.Zero(t, written)
}

func writeY4M(t *testing.T, path string, format frame.Format, width, height, count int) {
	f, err := io.CreateFile(path)
	require.NoError(t, err)
	w, err := io.NewY4MWriter(f, io.Y4MHeader{Width: width, Height: height, Format: format, Rate: "25:1"})
	require.NoError(t, err)
	for n := 0; n < count; n++ {
		fr := frame.New(format, width, height, 1)
		fr.Index = n
		for i, p := range fr.Planes {
			for j := range p.Data {
				p.Data[j] = byte(60 + 40*i + n)
			}
		}
		require.NoError(t, w.WriteFrame(fr))
	}
	require.NoError(t, w.Close())
}

func TestDenoise(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "in.y4m"), filepath.Join(dir, "out.y4m")
	writeY4M(t, in, frame.YUV420, 16, 8, 4)

	cfg := config.DefaultConfig()
	cfg.RadiusY = 1
	cfg.Device.ComputeUnits = 2
	require.NoError(t, denoise(context.Background(), cfg, in, out, 3, logger.NewNoopLogger()))

	r, err := io.OpenY4M(out)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, 3, r.Count())
	require.Equal(t, frame.YUV420, r.Format())
	require.Equal(t, "25:1", r.Header().Rate)
	for n := 0; n < 3; n++ {
		f, err := r.Frame(n)
		require.NoError(t, err)
		for i, p := range f.Planes {
			for _, v := range p.Data {
				require.Equal(t, byte(60+40*i+n), v, "frame %d plane %d", n, i)
			}
		}
	}
}

func TestDenoiseRejects(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.y4m")
	writeY4M(t, in, frame.Mono, 8, 4, 1)
	log := logger.NewNoopLogger()

	err := denoise(context.Background(), config.DefaultConfig(), filepath.Join(dir, "missing.y4m"), filepath.Join(dir, "out.y4m"), 0, log)
	require.Error(t, err)

	err = denoise(context.Background(), config.DefaultConfig(), in, filepath.Join(dir, "out.avi"), 0, log)
	require.Error(t, err)

	cfg := config.DefaultConfig()
	cfg.Device.Proc = "cuda"
	err = denoise(context.Background(), cfg, in, filepath.Join(dir, "out.y4m"), 0, log)
	require.ErrorContains(t, err, "wrong processor selection")
}

func TestReadConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	path := filepath.Join(t.TempDir(), "tdn.yaml")
	content := "strength_y: 3.5\nradius_uv: 2\nlinear: true\ndevice:\n  compute_units: 3\nlog:\n  level: none\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	root := NewRootCommand()
	require.NoError(t, root.PersistentFlags().Set(config_flag, path))
	require.NoError(t, root.PersistentFlags().Set("log-format", "json"))

	cfg, err := ReadConfig()
	require.NoError(t, err)
	require.Equal(t, 3.5, cfg.StrengthY)
	require.Equal(t, 1.0, cfg.StrengthUV)
	require.Equal(t, 2, cfg.RadiusUV)
	require.True(t, cfg.Linear)
	require.Equal(t, 3, cfg.Device.ComputeUnits)
	require.Equal(t, "vanilla", cfg.Device.Proc)
	require.Equal(t, "none", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
}

func TestReadConfigRejects(t *testing.T) {
	t.Cleanup(viper.Reset)
	root := NewRootCommand()
	require.NoError(t, root.PersistentFlags().Set("log-format", "xml"))
	_, err := ReadConfig()
	require.ErrorContains(t, err, "log.format")

	require.NoError(t, root.PersistentFlags().Set("log-format", "text"))
	require.NoError(t, root.PersistentFlags().Set(config_flag, filepath.Join(t.TempDir(), "missing.yaml")))
	_, err = ReadConfig()
	require.Error(t, err)
}

func TestDevicesCommand(t *testing.T) {
	t.Cleanup(viper.Reset)
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"devices", "--proc", "vanilla", "--compute-units", "3", "--log-level", "none"})
	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), "device 0")
	require.Contains(t, out.String(), "vanilla")
	require.Regexp(t, `max compute units\s+3`, out.String())
}
