package cmd

import (
	"context"
	"sync"

	"github.com/moratsam/etherscan/pipeline"
	"go.uber.org/zap"

	"github.com/moratsam/opencl-temporal-denoise/frame"
	"github.com/moratsam/opencl-temporal-denoise/io"
	"github.com/moratsam/opencl-temporal-denoise/logger"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

// Output rows are padded to this many bytes.
const frame_align = 64

// frameFilter writes the filtered frame n of src into dst.
type frameFilter interface {
	Process(n int, src frame.Source, dst *frame.Frame) error
}

var payloadPool = sync.Pool{New: func() interface{} { return new(framePayload) }}

type framePayload struct {
	n    int          // Index of the frame to filter.
	dst  *frame.Frame // Filtered output, nil until the denoise stage ran.
	pool *sync.Pool   // Where dst goes back once written.
}

func (p *framePayload) Clone() pipeline.Payload {
	c := payloadPool.Get().(*framePayload)
	c.n = p.n
	c.pool = p.pool
	return c
}

func (p *framePayload) MarkAsProcessed() {
	if p.dst != nil && p.pool != nil {
		p.pool.Put(p.dst)
	}
	p.dst = nil
	p.pool = nil
	payloadPool.Put(p)
}

// Source of the stream: the frame indexes [0, count).
type indexSource struct {
	next   int
	count  int
	frames *sync.Pool
}

func (s *indexSource) Error() error { return nil }

func (s *indexSource) Next(ctx context.Context) bool {
	return s.next < s.count && ctx.Err() == nil
}

func (s *indexSource) Payload() pipeline.Payload {
	p := payloadPool.Get().(*framePayload)
	p.n = s.next
	p.pool = s.frames
	s.next++
	return p
}

// The denoise stage filters one frame at a time, in order. The temporal
// filter keeps state from frame to frame, so it must run in a FIFO stage.
type denoiser struct {
	filter frameFilter
	clip   frame.Source
}

func (d *denoiser) Process(_ context.Context, payload pipeline.Payload) (pipeline.Payload, error) {
	p := payload.(*framePayload)
	dst := p.pool.Get().(*frame.Frame)
	if err := d.filter.Process(p.n, d.clip, dst); err != nil {
		p.pool.Put(dst)
		return nil, u.WrapErr("denoise frame", err)
	}
	p.dst = dst
	return p, nil
}

// Sink of the stream.
type writerSink struct {
	w       io.FrameWriter
	log     logger.Logger
	written int
}

func (s *writerSink) Consume(_ context.Context, payload pipeline.Payload) error {
	p := payload.(*framePayload)
	if err := s.w.WriteFrame(p.dst); err != nil {
		return u.WrapErr("write frame", err)
	}
	s.written++
	s.log.Debug("wrote frame", zap.Int("frame", p.n))
	return nil
}

// stream filters frames [0, count) of clip and writes them to w in order. It
// returns the number of frames written.
func stream(ctx context.Context, clip io.Clip, count int, filter frameFilter, w io.FrameWriter, log logger.Logger) (int, error) {
	frames := &sync.Pool{New: func() interface{} {
		return frame.New(clip.Format(), clip.Width(), clip.Height(), frame_align)
	}}
	source := &indexSource{count: count, frames: frames}
	sink := &writerSink{w: w, log: log}

	pip := pipeline.New(pipeline.FIFO(&denoiser{filter: filter, clip: clip}))
	if err := pip.Process(ctx, source, sink); err != nil {
		return sink.written, u.WrapErr("stream frames", err)
	}
	if err := ctx.Err(); err != nil {
		return sink.written, u.WrapErr("stream frames", err)
	}
	return sink.written, nil
}
