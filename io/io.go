// Package io reads and writes clips: YUV4MPEG2 streams and image sequences.
package io

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/xerrors"

	"github.com/moratsam/opencl-temporal-denoise/frame"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

// Clip is a random-access frame source with fixed geometry.
type Clip interface {
	frame.Source
	Format() frame.Format
	Width() int
	Height() int
	Close() error
}

// FrameWriter consumes filtered frames in order.
type FrameWriter interface {
	WriteFrame(f *frame.Frame) error
	Close() error
}

// OpenClip opens a .y4m file, or an image sequence when path is a glob
// pattern or names a directory.
func OpenClip(path string) (Clip, error) {
	if strings.EqualFold(filepath.Ext(path), ".y4m") {
		return OpenY4M(path)
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, "*")
	}
	files, err := Glob(path)
	if err != nil {
		return nil, err
	}
	return OpenImageSequence(files)
}

// CreateWriter creates a .y4m file, or a PNG sequence when path holds a
// printf verb for the frame number.
func CreateWriter(path string, clip Clip) (FrameWriter, error) {
	if strings.EqualFold(filepath.Ext(path), ".y4m") {
		header := Y4MHeader{Width: clip.Width(), Height: clip.Height(), Format: clip.Format()}
		if y, ok := clip.(*Y4MReader); ok {
			header = y.Header()
		}
		f, err := CreateFile(path)
		if err != nil {
			return nil, err
		}
		w, err := NewY4MWriter(f, header)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		return w, nil
	}
	if strings.Contains(path, "%") {
		return NewPNGSequenceWriter(path), nil
	}
	return nil, xerrors.Errorf("output %q is neither a .y4m file nor a numbered image pattern", path)
}

func CreateFile(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, u.WrapErr("create file", err)
	}
	return f, nil
}

func OpenFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, u.WrapErr("open file", err)
	}
	return f, nil
}

func FileSize(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, u.WrapErr("get stat", err)
	}
	return fi.Size(), nil
}

// Glob returns the files matching pattern in lexical order.
func Glob(pattern string) ([]string, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, u.WrapErr("glob "+pattern, err)
	}
	if len(files) == 0 {
		return nil, xerrors.Errorf("no files match %q", pattern)
	}
	sort.Strings(files)
	return files, nil
}

// ReadAt fills chunk from offset off of f. A short read is an error.
func ReadAt(f io.ReaderAt, off int64, chunk []byte) error {
	count, err := f.ReadAt(chunk, off)
	if count == len(chunk) {
		return nil
	}
	if err == nil || err == io.EOF {
		return xerrors.Errorf("read %d bytes at offset %d: got %d", len(chunk), off, count)
	}
	return u.WrapErr("read", err)
}

func WriteTo(w io.Writer, chunk []byte) error {
	if _, err := w.Write(chunk); err != nil {
		return u.WrapErr("write", err)
	}
	return nil
}
