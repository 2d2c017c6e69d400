package stream

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the container wrapping an NBT byte stream.
type Compression uint8

const (
	// CompressionNone is a bare NBT stream.
	CompressionNone Compression = iota

	// CompressionGzip is the usual wrapping of level.dat and player files.
	CompressionGzip

	// CompressionZlib is the wrapping used for region file chunks.
	CompressionZlib

	// CompressionZstd is a zstd frame.
	CompressionZstd

	// CompressionLZ4 is an LZ4 frame (not raw LZ4 blocks).
	CompressionLZ4
)

// String returns the lowercase name of the compression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZlib:
		return "zlib"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

// ParseCompression parses a compression name. Matching is
// case-insensitive; "" and "raw" are accepted for none.
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(name) {
	case "none", "raw", "":
		return CompressionNone, nil
	case "gzip", "gz":
		return CompressionGzip, nil
	case "zlib":
		return CompressionZlib, nil
	case "zstd", "zst":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

// Magic prefixes used by DetectCompression.
var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// DetectCompression guesses the compression of a stream from its first
// bytes. Four bytes are enough for every supported format. Anything not
// recognized is reported as CompressionNone.
func DetectCompression(prefix []byte) Compression {
	switch {
	case hasPrefix(prefix, gzipMagic):
		return CompressionGzip
	case hasPrefix(prefix, zstdMagic):
		return CompressionZstd
	case hasPrefix(prefix, lz4Magic):
		return CompressionLZ4
	case isZlibHeader(prefix):
		return CompressionZlib
	}
	return CompressionNone
}

func hasPrefix(b, magic []byte) bool {
	if len(b) < len(magic) {
		return false
	}
	for i, m := range magic {
		if b[i] != m {
			return false
		}
	}
	return true
}

// isZlibHeader checks the RFC 1950 header: deflate method, window of at
// most 32 KiB, no preset dictionary and a valid FCHECK.
func isZlibHeader(b []byte) bool {
	if len(b) < 2 {
		return false
	}
	cmf, flg := b[0], b[1]
	if cmf&0x0f != 8 || cmf>>4 > 7 || flg&0x20 != 0 {
		return false
	}
	return (uint16(cmf)<<8|uint16(flg))%31 == 0
}

// newDecompressor wraps r in the decompressor for c. The returned closer
// releases the decompressor only; it never closes r.
func newDecompressor(c Compression, r io.Reader) (io.Reader, io.Closer, error) {
	switch c {
	case CompressionNone:
		return r, nil, nil
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, zr, nil
	case CompressionZlib:
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("zlib: %w", err)
		}
		return zr, zr, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, nil, fmt.Errorf("zstd: %w", err)
		}
		rc := zr.IOReadCloser()
		return rc, rc, nil
	case CompressionLZ4:
		return lz4.NewReader(r), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported compression: %s", c)
	}
}

// newCompressor wraps w in the compressor for c at the given level. Level 0
// selects each format's default. Closing the result flushes the compressed
// trailer but does not close w.
func newCompressor(c Compression, w io.Writer, level int) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionGzip:
		if level == 0 {
			level = gzip.DefaultCompression
		}
		zw, err := gzip.NewWriterLevel(w, level)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return zw, nil
	case CompressionZlib:
		if level == 0 {
			level = zlib.DefaultCompression
		}
		zw, err := zlib.NewWriterLevel(w, level)
		if err != nil {
			return nil, fmt.Errorf("zlib: %w", err)
		}
		return zw, nil
	case CompressionZstd:
		opts := []zstd.EOption{zstd.WithEncoderConcurrency(1)}
		if level != 0 {
			opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		}
		zw, err := zstd.NewWriter(w, opts...)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return zw, nil
	case CompressionLZ4:
		zw := lz4.NewWriter(w)
		if level != 0 {
			if level < 1 || level > 9 {
				return nil, fmt.Errorf("lz4: level %d out of range 1..9", level)
			}
			// Level1 is 1<<9 and each level doubles.
			if err := zw.Apply(lz4.CompressionLevelOption(lz4.CompressionLevel(1 << (8 + level)))); err != nil {
				return nil, fmt.Errorf("lz4: %w", err)
			}
		}
		return zw, nil
	default:
		return nil, fmt.Errorf("unsupported compression: %s", c)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
