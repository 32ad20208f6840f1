// Package fileio opens reference and variant inputs.
package fileio

import (
	"bufio"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"strings"
)

var gzipMagic = []byte{0x1f, 0x8b}

// gzipFile reads the decompressed stream and releases both layers on Close.
type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g gzipFile) Close() error {
	return errors.Join(g.Reader.Close(), g.f.Close())
}

// Open returns a reader for path, with "-" meaning stdin. Input is
// decompressed when it starts with the gzip magic or is named *.gz.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(f)
	head, _ := br.Peek(len(gzipMagic))
	if string(head) != string(gzipMagic) && !strings.HasSuffix(path, ".gz") {
		return struct {
			io.Reader
			io.Closer
		}{br, f}, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return gzipFile{Reader: zr, f: f}, nil
}

// IsRegular reports whether path is a regular file, so it can be read twice.
func IsRegular(path string) bool {
	if path == "-" {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
