package io

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/xerrors"

	"github.com/moratsam/opencl-temporal-denoise/frame"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

// ImageSequence is a clip with one image file per frame. The geometry and
// format come from the first image: grayscale images give mono frames,
// Y'CbCr images (JPEG) keep their subsampling and anything else is
// converted to 4:4:4.
type ImageSequence struct {
	files  []string
	format frame.Format
	width  int
	height int
}

var _ Clip = (*ImageSequence)(nil)

func OpenImageSequence(files []string) (*ImageSequence, error) {
	if len(files) == 0 {
		return nil, xerrors.New("empty image sequence")
	}
	img, err := decodeImage(files[0])
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &ImageSequence{
		files:  files,
		format: imageFormat(img),
		width:  b.Dx(),
		height: b.Dy(),
	}, nil
}

func imageFormat(img image.Image) frame.Format {
	switch m := img.(type) {
	case *image.Gray:
		return frame.Mono
	case *image.YCbCr:
		if format, ok := subsampledFormat(m.SubsampleRatio); ok {
			return format
		}
	}
	return frame.YUV444
}

func subsampledFormat(ratio image.YCbCrSubsampleRatio) (frame.Format, bool) {
	switch ratio {
	case image.YCbCrSubsampleRatio420:
		return frame.YUV420, true
	case image.YCbCrSubsampleRatio422:
		return frame.YUV422, true
	case image.YCbCrSubsampleRatio444:
		return frame.YUV444, true
	}
	return 0, false
}

func decodeImage(path string) (image.Image, error) {
	f, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, u.WrapErr("decode "+path, err)
	}
	return img, nil
}

func (s *ImageSequence) Format() frame.Format { return s.format }
func (s *ImageSequence) Width() int           { return s.width }
func (s *ImageSequence) Height() int          { return s.height }
func (s *ImageSequence) Count() int           { return len(s.files) }
func (s *ImageSequence) Close() error         { return nil }

// Frame decodes image n, clamped to the sequence.
func (s *ImageSequence) Frame(n int) (*frame.Frame, error) {
	n = frame.Clamp(n, len(s.files))
	img, err := decodeImage(s.files[n])
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() != s.width || b.Dy() != s.height {
		return nil, xerrors.Errorf("%s is %dx%d, sequence is %dx%d", s.files[n], b.Dx(), b.Dy(), s.width, s.height)
	}

	f := frame.New(s.format, s.width, s.height, 1)
	f.Index = n
	switch m := img.(type) {
	case *image.Gray:
		if s.format == frame.Mono {
			copyPlane(f.Planes[0], m.Pix, m.Stride)
			return f, nil
		}
	case *image.YCbCr:
		if format, ok := subsampledFormat(m.SubsampleRatio); ok && format == s.format {
			copyPlane(f.Planes[0], m.Y, m.YStride)
			copyPlane(f.Planes[1], m.Cb, m.CStride)
			copyPlane(f.Planes[2], m.Cr, m.CStride)
			return f, nil
		}
	}
	if s.format != frame.YUV444 && s.format != frame.Mono {
		return nil, xerrors.Errorf("%s does not match the %s sequence format", s.files[n], s.format)
	}
	convert(f, img)
	return f, nil
}

func copyPlane(p frame.Plane, pix []byte, stride int) {
	for y := 0; y < p.Height; y++ {
		copy(p.Row(y), pix[y*stride:y*stride+p.Width])
	}
}

// convert fills a mono or 4:4:4 frame from any image.
func convert(f *frame.Frame, img image.Image) {
	rgba := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := rgba.RGBAAt(x, y)
			if f.Format == frame.Mono {
				f.Planes[0].Row(y)[x] = color.GrayModel.Convert(c).(color.Gray).Y
				continue
			}
			yy, cb, cr := color.RGBToYCbCr(c.R, c.G, c.B)
			f.Planes[0].Row(y)[x] = yy
			f.Planes[1].Row(y)[x] = cb
			f.Planes[2].Row(y)[x] = cr
		}
	}
}

// PNGSequenceWriter writes every frame to its own PNG file named by a
// printf pattern of the frame index.
type PNGSequenceWriter struct {
	pattern string
	encoder png.Encoder
}

var _ FrameWriter = (*PNGSequenceWriter)(nil)

func NewPNGSequenceWriter(pattern string) *PNGSequenceWriter {
	return &PNGSequenceWriter{pattern: pattern, encoder: png.Encoder{CompressionLevel: png.BestSpeed}}
}

func (w *PNGSequenceWriter) WriteFrame(f *frame.Frame) error {
	img, err := frameImage(f)
	if err != nil {
		return err
	}
	path := fmt.Sprintf(w.pattern, f.Index)
	out, err := os.Create(path)
	if err != nil {
		return u.WrapErr("create "+path, err)
	}
	if err := w.encoder.Encode(out, img); err != nil {
		_ = out.Close()
		return u.WrapErr("encode "+path, err)
	}
	return out.Close()
}

func (w *PNGSequenceWriter) Close() error {
	return nil
}

// frameImage wraps the planes of f in an image without copying.
func frameImage(f *frame.Frame) (image.Image, error) {
	rect := image.Rect(0, 0, f.Width, f.Height)
	if f.Format == frame.Mono {
		return &image.Gray{Pix: f.Planes[0].Data, Stride: f.Planes[0].Pitch, Rect: rect}, nil
	}
	var ratio image.YCbCrSubsampleRatio
	switch f.Format {
	case frame.YUV420:
		ratio = image.YCbCrSubsampleRatio420
	case frame.YUV422:
		ratio = image.YCbCrSubsampleRatio422
	case frame.YUV444:
		ratio = image.YCbCrSubsampleRatio444
	default:
		return nil, xerrors.Errorf("frame %d: unsupported format %s", f.Index, f.Format)
	}
	if f.Planes[1].Pitch != f.Planes[2].Pitch {
		return nil, xerrors.Errorf("frame %d: chroma planes differ in pitch", f.Index)
	}
	return &image.YCbCr{
		Y:              f.Planes[0].Data,
		Cb:             f.Planes[1].Data,
		Cr:             f.Planes[2].Data,
		YStride:        f.Planes[0].Pitch,
		CStride:        f.Planes[1].Pitch,
		SubsampleRatio: ratio,
		Rect:           rect,
	}, nil
}
