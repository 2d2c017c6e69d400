package stream

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"

	"github.com/Neumenon/nbt/nbt"
)

// Reader reads a sequence of NBT roots from a possibly compressed stream.
type Reader struct {
	src    *bufio.Reader
	closer io.Closer
	dec    *nbt.Decoder
	comp   Compression
	logger *slog.Logger
	roots  int

	forced   bool
	maxDepth int
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithCompression skips detection and reads the stream as c.
func WithCompression(c Compression) ReaderOption {
	return func(r *Reader) {
		r.comp = c
		r.forced = true
	}
}

// WithMaxDepth sets the decoder nesting limit (default: nbt.DefaultMaxDepth).
func WithMaxDepth(n int) ReaderOption {
	return func(r *Reader) {
		r.maxDepth = n
	}
}

// WithLogger sets a logger for debug events. The default discards them.
func WithLogger(logger *slog.Logger) ReaderOption {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReader opens a root stream over r. Unless WithCompression is given,
// the compression is detected from the first bytes. Empty input is valid
// and yields io.EOF from the first Next.
func NewReader(r io.Reader, opts ...ReaderOption) (*Reader, error) {
	reader := &Reader{
		src:    bufio.NewReader(r),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(reader)
	}

	if !reader.forced {
		prefix, err := reader.src.Peek(4)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("detect compression: %w", err)
		}
		if len(prefix) == 0 {
			reader.logger.Debug("empty NBT stream")
			reader.dec = nbt.NewDecoder(reader.src)
			return reader, nil
		}
		reader.comp = DetectCompression(prefix)
	}

	body, closer, err := newDecompressor(reader.comp, reader.src)
	if err != nil {
		return nil, err
	}
	reader.closer = closer

	var decOpts []nbt.DecoderOption
	if reader.maxDepth > 0 {
		decOpts = append(decOpts, nbt.WithMaxDepth(reader.maxDepth))
	}
	reader.dec = nbt.NewDecoder(body, decOpts...)

	reader.logger.Debug("opened NBT stream",
		"compression", reader.comp.String(),
		"detected", !reader.forced,
	)
	return reader, nil
}

// Compression returns the compression in use.
func (r *Reader) Compression() Compression {
	return r.comp
}

// Next reads the next root. It returns io.EOF when the stream ends cleanly
// between roots.
func (r *Reader) Next() (nbt.NamedTag, error) {
	nt, err := r.dec.Decode()
	if err != nil {
		if err == io.EOF {
			r.logger.Debug("end of NBT stream", "roots", r.roots, "bytes", r.dec.Offset())
			return nbt.NamedTag{}, io.EOF
		}
		return nbt.NamedTag{}, err
	}
	r.roots++
	r.logger.Debug("read root",
		"name", nt.Name,
		"kind", nt.Tag.Title(),
		"offset", r.dec.Offset(),
	)
	return nt, nil
}

// ReadAll reads roots until EOF. The roots read before an error are
// returned with it.
func (r *Reader) ReadAll() ([]nbt.NamedTag, error) {
	var roots []nbt.NamedTag
	for {
		nt, err := r.Next()
		if err == io.EOF {
			return roots, nil
		}
		if err != nil {
			return roots, err
		}
		roots = append(roots, nt)
	}
}

// Close releases the decompressor. The underlying reader is not closed.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}
