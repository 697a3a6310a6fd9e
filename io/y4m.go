package io

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/xerrors"

	"github.com/moratsam/opencl-temporal-denoise/frame"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

const (
	y4m_magic       = "YUV4MPEG2"
	y4m_frame_magic = "FRAME"
)

// Y4MHeader holds the stream parameters of a YUV4MPEG2 file. Rate, Aspect
// and Interlace are carried through verbatim.
type Y4MHeader struct {
	Width     int
	Height    int
	Format    frame.Format
	Colour    string // The C parameter as written, empty for the default.
	Rate      string
	Aspect    string
	Interlace string
	Extra     []string // X parameters.
}

var y4m_colours = map[string]frame.Format{
	"420jpeg":  frame.YUV420,
	"420paldv": frame.YUV420,
	"420mpeg2": frame.YUV420,
	"420":      frame.YUV420,
	"422":      frame.YUV422,
	"444":      frame.YUV444,
	"mono":     frame.Mono,
}

// ParseY4MHeader parses the stream header line, without its newline.
func ParseY4MHeader(line string) (Y4MHeader, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != y4m_magic {
		return Y4MHeader{}, xerrors.Errorf("not a YUV4MPEG2 stream")
	}
	h := Y4MHeader{Format: frame.YUV420}
	for _, field := range fields[1:] {
		value := field[1:]
		var err error
		switch field[0] {
		case 'W':
			h.Width, err = strconv.Atoi(value)
		case 'H':
			h.Height, err = strconv.Atoi(value)
		case 'C':
			format, ok := y4m_colours[value]
			if !ok {
				return Y4MHeader{}, xerrors.Errorf("unsupported colour space %q", value)
			}
			h.Format, h.Colour = format, value
		case 'F':
			h.Rate = value
		case 'A':
			h.Aspect = value
		case 'I':
			h.Interlace = value
		case 'X':
			h.Extra = append(h.Extra, value)
		default:
			return Y4MHeader{}, xerrors.Errorf("unknown header parameter %q", field)
		}
		if err != nil {
			return Y4MHeader{}, u.WrapErr("parse header parameter "+field, err)
		}
	}
	if h.Width <= 0 || h.Height <= 0 {
		return Y4MHeader{}, xerrors.Errorf("invalid dimensions %dx%d", h.Width, h.Height)
	}
	return h, nil
}

func (h Y4MHeader) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s W%d H%d", y4m_magic, h.Width, h.Height)
	if h.Rate != "" {
		b.WriteString(" F" + h.Rate)
	}
	if h.Interlace != "" {
		b.WriteString(" I" + h.Interlace)
	}
	if h.Aspect != "" {
		b.WriteString(" A" + h.Aspect)
	}
	colour := h.Colour
	if colour == "" {
		colour = defaultColour(h.Format)
	}
	b.WriteString(" C" + colour)
	for _, x := range h.Extra {
		b.WriteString(" X" + x)
	}
	return b.String()
}

func defaultColour(format frame.Format) string {
	switch format {
	case frame.Mono:
		return "mono"
	case frame.YUV422:
		return "422"
	case frame.YUV444:
		return "444"
	default:
		return "420jpeg"
	}
}

// frameBytes returns the payload size of one frame.
func (h Y4MHeader) frameBytes() int {
	size := 0
	for i := 0; i < h.Format.Planes(); i++ {
		w, hh := h.Format.PlaneSize(i, h.Width, h.Height)
		size += w * hh
	}
	return size
}

// Y4MReader gives random access to the frames of a YUV4MPEG2 file. Frame
// offsets are indexed at open. A truncated trailing frame is ignored.
type Y4MReader struct {
	f       *os.File
	header  Y4MHeader
	offsets []int64
}

var _ Clip = (*Y4MReader)(nil)

func OpenY4M(path string) (*Y4MReader, error) {
	size, err := FileSize(path)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, xerrors.Errorf("open %s: empty stream", path)
	}
	f, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	r := &Y4MReader{f: f}
	if err := r.index(); err != nil {
		_ = f.Close()
		return nil, u.WrapErr("open "+path, err)
	}
	return r, nil
}

func (r *Y4MReader) index() error {
	br := bufio.NewReader(r.f)
	line, err := br.ReadString('\n')
	if err != nil {
		return u.WrapErr("read stream header", err)
	}
	if r.header, err = ParseY4MHeader(strings.TrimSuffix(line, "\n")); err != nil {
		return err
	}

	offset := int64(len(line))
	size := r.header.frameBytes()
	for {
		line, err := br.ReadString('\n')
		if err == io.EOF {
			break
		}
		if err != nil {
			return u.WrapErr("read frame header", err)
		}
		if !strings.HasPrefix(line, y4m_frame_magic) {
			return xerrors.Errorf("frame %d: bad frame header at offset %d", len(r.offsets), offset)
		}
		offset += int64(len(line))
		skipped, err := br.Discard(size)
		if skipped < size {
			break
		}
		if err != nil {
			return u.WrapErr("skip frame", err)
		}
		r.offsets = append(r.offsets, offset)
		offset += int64(size)
	}
	if len(r.offsets) == 0 {
		return xerrors.New("stream holds no frames")
	}
	return nil
}

func (r *Y4MReader) Header() Y4MHeader    { return r.header }
func (r *Y4MReader) Format() frame.Format { return r.header.Format }
func (r *Y4MReader) Width() int           { return r.header.Width }
func (r *Y4MReader) Height() int          { return r.header.Height }
func (r *Y4MReader) Count() int           { return len(r.offsets) }

// Frame reads frame n, clamped to the clip, into a new frame.
func (r *Y4MReader) Frame(n int) (*frame.Frame, error) {
	n = frame.Clamp(n, len(r.offsets))
	f := frame.New(r.header.Format, r.header.Width, r.header.Height, 1)
	f.Index = n
	offset := r.offsets[n]
	for i := range f.Planes {
		if err := ReadAt(r.f, offset, f.Planes[i].Data); err != nil {
			return nil, u.WrapErr(fmt.Sprintf("read frame %d plane %d", n, i), err)
		}
		offset += int64(len(f.Planes[i].Data))
	}
	return f, nil
}

func (r *Y4MReader) Close() error {
	return r.f.Close()
}

// Y4MWriter writes frames to a YUV4MPEG2 stream.
type Y4MWriter struct {
	w      *bufio.Writer
	closer io.Closer
	header Y4MHeader
}

var _ FrameWriter = (*Y4MWriter)(nil)

// NewY4MWriter writes the stream header to w. Close closes w when it is an
// io.Closer.
func NewY4MWriter(w io.Writer, header Y4MHeader) (*Y4MWriter, error) {
	if header.Width <= 0 || header.Height <= 0 {
		return nil, xerrors.Errorf("invalid dimensions %dx%d", header.Width, header.Height)
	}
	y := &Y4MWriter{w: bufio.NewWriter(w), header: header}
	if c, ok := w.(io.Closer); ok {
		y.closer = c
	}
	if err := WriteTo(y.w, []byte(header.String()+"\n")); err != nil {
		return nil, u.WrapErr("write stream header", err)
	}
	return y, nil
}

func (y *Y4MWriter) WriteFrame(f *frame.Frame) error {
	if f.Format != y.header.Format || f.Width != y.header.Width || f.Height != y.header.Height {
		return xerrors.Errorf("frame %d is %s %dx%d, stream is %s %dx%d", f.Index,
			f.Format, f.Width, f.Height, y.header.Format, y.header.Width, y.header.Height)
	}
	if err := WriteTo(y.w, []byte(y4m_frame_magic+"\n")); err != nil {
		return u.WrapErr("write frame header", err)
	}
	for _, p := range f.Planes {
		for row := 0; row < p.Height; row++ {
			if err := WriteTo(y.w, p.Row(row)); err != nil {
				return u.WrapErr(fmt.Sprintf("write frame %d", f.Index), err)
			}
		}
	}
	return nil
}

func (y *Y4MWriter) Close() error {
	if err := y.w.Flush(); err != nil {
		return u.WrapErr("flush stream", err)
	}
	if y.closer != nil {
		return y.closer.Close()
	}
	return nil
}
