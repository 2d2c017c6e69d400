package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/Neumenon/nbt/nbt"
)

// ErrClosed is returned when writing to a closed Writer.
var ErrClosed = errors.New("stream: writer closed")

// Writer writes NBT roots through an optional compressor.
type Writer struct {
	comp   Compression
	zw     io.WriteCloser
	buf    *bufio.Writer
	enc    *nbt.Encoder
	closed bool

	sortKeys bool
	level    int
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithSortedKeys writes compound entries in sorted key order, making equal
// trees produce identical bytes.
func WithSortedKeys() WriterOption {
	return func(w *Writer) {
		w.sortKeys = true
	}
}

// WithLevel sets the compression level in the format's own scale
// (gzip/zlib 1-9, zstd 1-22, lz4 1-9). 0 selects the default.
func WithLevel(level int) WriterOption {
	return func(w *Writer) {
		w.level = level
	}
}

// NewWriter creates a writer that compresses with c. Close must be called
// to flush the compressed trailer.
func NewWriter(w io.Writer, c Compression, opts ...WriterOption) (*Writer, error) {
	writer := &Writer{comp: c}
	for _, opt := range opts {
		opt(writer)
	}

	zw, err := newCompressor(c, w, writer.level)
	if err != nil {
		return nil, err
	}
	writer.zw = zw
	writer.buf = bufio.NewWriterSize(zw, 32*1024)

	var encOpts []nbt.EncoderOption
	if writer.sortKeys {
		encOpts = append(encOpts, nbt.WithSortedKeys())
	}
	writer.enc = nbt.NewEncoder(writer.buf, encOpts...)
	return writer, nil
}

// Compression returns the compression in use.
func (w *Writer) Compression() Compression {
	return w.comp
}

// WriteRoot encodes one root.
func (w *Writer) WriteRoot(nt nbt.NamedTag) error {
	if w.closed {
		return ErrClosed
	}
	return w.enc.Encode(nt)
}

// Written returns the uncompressed bytes encoded so far.
func (w *Writer) Written() int64 {
	return w.enc.Written()
}

// Close flushes buffered data and finishes the compressed stream. The
// underlying writer is not closed. Close is idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	flushErr := w.buf.Flush()
	closeErr := w.zw.Close()
	if flushErr != nil {
		return fmt.Errorf("flush: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", w.comp, closeErr)
	}
	return nil
}
