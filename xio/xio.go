// Package xio opens and creates files, compressing or decompressing based on
// the file name suffix: ".gz" uses parallel gzip, ".zst" uses zstd, anything
// else is passed through.
package xio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
	"github.com/woskit/woskit/atomicfile"
)

// CompressionSuffixes lists the file suffixes with transparent compression.
var CompressionSuffixes = []string{".gz", ".zst"}

// TrimCompressionSuffix removes a known compression suffix from filename.
func TrimCompressionSuffix(filename string) string {
	for _, s := range CompressionSuffixes {
		if strings.HasSuffix(filename, s) {
			return strings.TrimSuffix(filename, s)
		}
	}
	return filename
}

type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens a file and returns a reader, detecting if the file is
// compressed. Closing the reader closes the underlying file.
func Open(filename string) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(filename, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readCloser{Reader: zr, closers: []func() error{zr.Close, f.Close}}, nil
	case strings.HasSuffix(filename, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readCloser{Reader: zr, closers: []func() error{
			func() error { zr.Close(); return nil },
			f.Close,
		}}, nil
	default:
		return f, nil
	}
}

// ReadAll reads a whole, possibly compressed, file.
func ReadAll(filename string) ([]byte, error) {
	r, err := Open(filename)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Writer writes to a temporary file, compressing according to the target
// suffix. The file appears at its final path only after a successful Close.
type Writer struct {
	f  *atomicfile.File
	bw *bufio.Writer
	zw io.WriteCloser
	w  io.Writer
}

// Create prepares an atomic, possibly compressed, file at filename.
func Create(filename string) (*Writer, error) {
	f, err := atomicfile.New(filename)
	if err != nil {
		return nil, err
	}
	w := &Writer{f: f, bw: bufio.NewWriter(f)}
	switch {
	case strings.HasSuffix(filename, ".gz"):
		w.zw = gzip.NewWriter(w.bw)
	case strings.HasSuffix(filename, ".zst"):
		zw, err := zstd.NewWriter(w.bw)
		if err != nil {
			_ = f.Abort()
			return nil, err
		}
		w.zw = zw
	}
	if w.zw != nil {
		w.w = w.zw
	} else {
		w.w = w.bw
	}
	return w, nil
}

// Write writes p to the compressed or plain stream.
func (w *Writer) Write(p []byte) (int, error) {
	return w.w.Write(p)
}

// Close flushes all buffered data and moves the file into place. Any error
// leaves the destination untouched.
func (w *Writer) Close() error {
	if w.zw != nil {
		if err := w.zw.Close(); err != nil {
			_ = w.f.Abort()
			return fmt.Errorf("xio: compress %s: %w", w.f.Path(), err)
		}
	}
	if err := w.bw.Flush(); err != nil {
		_ = w.f.Abort()
		return fmt.Errorf("xio: flush %s: %w", w.f.Path(), err)
	}
	return w.f.Close()
}

// Abort discards everything written so far.
func (w *Writer) Abort() error {
	if w.zw != nil {
		_ = w.zw.Close()
	}
	return w.f.Abort()
}

// WriteFile writes data to filename through Create.
func WriteFile(filename string, data []byte) error {
	w, err := Create(filename)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Abort()
		return err
	}
	return w.Close()
}
