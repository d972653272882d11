// Package fileio opens input and output streams for the streamcsv command,
// transparently handling gzip compression and the "-" stdin/stdout convention.
package fileio

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/xerrors"
)

// Stdio is the path value that selects stdin or stdout instead of a file.
const Stdio = "-"

func isGzipPath(path string) bool {
	return strings.HasSuffix(path, ".gz") || strings.HasSuffix(path, ".gzip")
}

// nopCloser wraps stdio streams so callers can Close unconditionally.
type nopCloser struct {
	io.Reader
}

func (nopCloser) Close() error { return nil }

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// layeredReadCloser closes the gzip layer before the file beneath it.
type layeredReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (l *layeredReadCloser) Close() error {
	var first error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type layeredWriteCloser struct {
	io.Writer
	closers []io.Closer
}

func (l *layeredWriteCloser) Close() error {
	var first error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenReader opens path for sequential reading, decompressing when the name
// carries a gzip suffix. Path "-" reads from stdin.
func OpenReader(path string) (io.ReadCloser, error) {
	if path == Stdio {
		return nopCloser{os.Stdin}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("open %s: %w", path, err)
	}
	if !isGzipPath(path) {
		return f, nil
	}

	zr, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, xerrors.Errorf("gzip reader for %s: %w", path, err)
	}
	return &layeredReadCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
}

// CreateWriter creates (truncating) path for sequential writing, compressing
// when the name carries a gzip suffix. Path "-" writes to stdout.
func CreateWriter(path string) (io.WriteCloser, error) {
	if path == Stdio {
		return nopWriteCloser{os.Stdout}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, xerrors.Errorf("create %s: %w", path, err)
	}
	if !isGzipPath(path) {
		return f, nil
	}

	zw := gzip.NewWriter(f)
	return &layeredWriteCloser{Writer: zw, closers: []io.Closer{zw, f}}, nil
}
