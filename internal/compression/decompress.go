// Package compression opens data files that may be gzip, xz or bzip2 compressed.
package compression

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// Kind identifies a compression format.
type Kind string

const (
	None  Kind = "none"
	Gzip  Kind = "gzip"
	Xz    Kind = "xz"
	Bzip2 Kind = "bzip2"
)

// DefaultMaxBytes caps how much decompressed data a reader will produce.
const DefaultMaxBytes = 100 * 1024 * 1024

var magic = []struct {
	kind  Kind
	bytes []byte
}{
	{Gzip, []byte{0x1f, 0x8b}},
	{Xz, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}},
	{Bzip2, []byte{'B', 'Z', 'h'}},
}

// KindFromName guesses the compression from a file extension.
func KindFromName(name string) Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz", ".tgz":
		return Gzip
	case ".xz", ".txz":
		return Xz
	case ".bz2", ".tbz2":
		return Bzip2
	default:
		return None
	}
}

// TrimExt removes a compression extension, so "data.tsv.xz" becomes "data.tsv".
func TrimExt(name string) string {
	if KindFromName(name) == None {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Detect reports the compression of the stream behind br from its magic bytes
// without consuming them.
func Detect(br *bufio.Reader) Kind {
	head, _ := br.Peek(6)
	for _, m := range magic {
		if bytes.HasPrefix(head, m.bytes) {
			return m.kind
		}
	}
	return None
}

// NewReader returns a reader producing the decompressed content of r. The
// format is taken from the magic bytes, so a misnamed file still works.
// At most maxBytes are produced; a value <= 0 uses DefaultMaxBytes.
func NewReader(r io.Reader, maxBytes int64) (io.Reader, Kind, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	br := bufio.NewReader(r)
	kind := Detect(br)

	var dr io.Reader
	switch kind {
	case Gzip:
		gzr, err := gzip.NewReader(br)
		if err != nil {
			return nil, kind, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		dr = gzr
	case Xz:
		xzr, err := xz.NewReader(br)
		if err != nil {
			return nil, kind, fmt.Errorf("failed to create xz reader: %w", err)
		}
		dr = xzr
	case Bzip2:
		dr = bzip2.NewReader(br)
	default:
		dr = br
	}

	return NewLimitedReader(dr, maxBytes), kind, nil
}

type fileReader struct {
	io.Reader
	f *os.File
}

func (fr *fileReader) Close() error {
	return fr.f.Close()
}

// Open opens path and returns its decompressed content.
func Open(path string, maxBytes int64) (io.ReadCloser, Kind, error) {
	f, err := os.Open(path) // #nosec G304 - user-supplied data file
	if err != nil {
		return nil, None, fmt.Errorf("failed to open %s: %w", path, err)
	}
	r, kind, err := NewReader(f, maxBytes)
	if err != nil {
		_ = f.Close()
		return nil, kind, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &fileReader{Reader: r, f: f}, kind, nil
}

// ErrSizeLimit is returned once a LimitedReader has produced its limit.
var ErrSizeLimit = fmt.Errorf("decompression size limit exceeded")

// LimitedReader wraps an io.Reader and limits the total bytes that can be read.
// This prevents decompression bomb attacks.
type LimitedReader struct {
	R         io.Reader
	Remaining int64
}

// Read implements io.Reader with size limits.
func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.Remaining <= 0 {
		// Only an error if there was more to read.
		var one [1]byte
		if n, err := io.ReadFull(l.R, one[:]); n == 0 {
			return 0, err
		}
		return 0, ErrSizeLimit
	}
	if int64(len(p)) > l.Remaining {
		p = p[:l.Remaining]
	}
	n, err := l.R.Read(p)
	l.Remaining -= int64(n)
	return n, err
}

// NewLimitedReader creates a new LimitedReader with the specified size limit.
func NewLimitedReader(r io.Reader, maxBytes int64) *LimitedReader {
	return &LimitedReader{
		R:         r,
		Remaining: maxBytes,
	}
}
