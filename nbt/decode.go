package nbt

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// maxPrealloc caps the capacity reserved up front from a length prefix.
// Larger payloads grow as bytes actually arrive.
const maxPrealloc = 1 << 16

const maxInt = int(^uint(0) >> 1)

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithMaxDepth sets the nesting limit (default DefaultMaxDepth).
func WithMaxDepth(n int) DecoderOption {
	return func(d *Decoder) {
		d.maxDepth = n
	}
}

// Decoder reads big-endian NBT from an io.Reader.
//
// The decoder never reads past the end of the value it is decoding, so
// several roots may be read back to back from one stream.
type Decoder struct {
	r        io.Reader
	buf      [8]byte
	scratch  []byte
	n        int64
	maxDepth int
	path     pathStack
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader, opts ...DecoderOption) *Decoder {
	d := &Decoder{r: r, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int64 {
	return d.n
}

// Decode reads one root. It returns io.EOF, unwrapped, when the stream ends
// cleanly before the first byte of a root.
func (d *Decoder) Decode() (NamedTag, error) {
	d.path.reset()
	n, err := io.ReadFull(d.r, d.buf[:1])
	d.n += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return NamedTag{}, io.EOF
		}
		return NamedTag{}, d.fail(err)
	}
	b := d.buf[0]
	id := TagIDFromByte(b)
	switch {
	case id == TagEnd:
		return NamedTag{}, d.failAt(d.n-1, ErrUnexpectedEnd)
	case !id.IsValid():
		return NamedTag{}, d.fail(&UnsupportedTagError{ID: b, Offset: d.n - 1})
	}
	name, err := d.readString()
	if err != nil {
		return NamedTag{}, err
	}
	t, err := descriptors[id].read(d, 0)
	if err != nil {
		return NamedTag{}, err
	}
	return NamedTag{Name: name, Tag: t}, nil
}

// DecodePayload reads a bare payload of the given kind.
func (d *Decoder) DecodePayload(id TagID) (*Tag, error) {
	d.path.reset()
	if id == TagEnd {
		return nil, d.fail(ErrUnexpectedEnd)
	}
	desc, ok := lookup(id)
	if !ok {
		return nil, d.fail(&UnsupportedTagError{ID: byte(id), Offset: -1})
	}
	return desc.read(d, 0)
}

func (d *Decoder) fail(err error) error {
	return d.failAt(d.n, err)
}

func (d *Decoder) failAt(off int64, err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{Offset: off, Path: d.path.String(), Err: err}
}

// ============================================================
// Primitives
// ============================================================

// readFull fills p. Running out of input is reported as ErrTruncated; any
// other reader error is passed through.
func (d *Decoder) readFull(p []byte) error {
	n, err := io.ReadFull(d.r, p)
	d.n += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return d.fail(fmt.Errorf("%w: %w", ErrTruncated, io.ErrUnexpectedEOF))
		}
		return d.fail(err)
	}
	return nil
}

func (d *Decoder) readU8() (uint8, error) {
	if err := d.readFull(d.buf[:1]); err != nil {
		return 0, err
	}
	return d.buf[0], nil
}

func (d *Decoder) readU16() (uint16, error) {
	if err := d.readFull(d.buf[:2]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(d.buf[:2]), nil
}

func (d *Decoder) readU32() (uint32, error) {
	if err := d.readFull(d.buf[:4]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(d.buf[:4]), nil
}

func (d *Decoder) readU64() (uint64, error) {
	if err := d.readFull(d.buf[:8]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(d.buf[:8]), nil
}

func (d *Decoder) readCount() (int, error) {
	v, err := d.readU32()
	if err != nil {
		return 0, err
	}
	if uint64(v) > uint64(maxInt) {
		return 0, d.fail(fmt.Errorf("%w: %d", ErrArrayTooLong, v))
	}
	return int(v), nil
}

func (d *Decoder) readString() (string, error) {
	n, err := d.readU16()
	if err != nil {
		return "", err
	}
	start := d.n
	p := make([]byte, n)
	if err := d.readFull(p); err != nil {
		return "", err
	}
	if !utf8.Valid(p) {
		return "", d.failAt(start, ErrInvalidUTF8)
	}
	return string(p), nil
}

func (d *Decoder) chunk(n int) []byte {
	if cap(d.scratch) < n {
		d.scratch = make([]byte, n)
	}
	return d.scratch[:n]
}

// readTagID reads a kind byte and rejects ids outside 0..12.
func (d *Decoder) readTagID() (TagID, error) {
	b, err := d.readU8()
	if err != nil {
		return TagEnd, err
	}
	id := TagIDFromByte(b)
	if id == TagUnsupported {
		return id, d.fail(&UnsupportedTagError{ID: b, Offset: d.n - 1})
	}
	return id, nil
}

// ============================================================
// Per-kind readers (wired through the descriptor table)
// ============================================================

func readByte(d *Decoder, _ int) (*Tag, error) {
	v, err := d.readU8()
	if err != nil {
		return nil, err
	}
	return Byte(int8(v)), nil
}

func readShort(d *Decoder, _ int) (*Tag, error) {
	v, err := d.readU16()
	if err != nil {
		return nil, err
	}
	return Short(int16(v)), nil
}

func readInt(d *Decoder, _ int) (*Tag, error) {
	v, err := d.readU32()
	if err != nil {
		return nil, err
	}
	return Int(int32(v)), nil
}

func readLong(d *Decoder, _ int) (*Tag, error) {
	v, err := d.readU64()
	if err != nil {
		return nil, err
	}
	return Long(int64(v)), nil
}

func readFloat(d *Decoder, _ int) (*Tag, error) {
	v, err := d.readU32()
	if err != nil {
		return nil, err
	}
	return Float(math.Float32frombits(v)), nil
}

func readDouble(d *Decoder, _ int) (*Tag, error) {
	v, err := d.readU64()
	if err != nil {
		return nil, err
	}
	return Double(math.Float64frombits(v)), nil
}

func readStringTag(d *Decoder, _ int) (*Tag, error) {
	s, err := d.readString()
	if err != nil {
		return nil, err
	}
	return String(s), nil
}

func readByteArray(d *Decoder, _ int) (*Tag, error) {
	count, err := d.readCount()
	if err != nil {
		return nil, err
	}
	out := make([]int8, 0, min(count, maxPrealloc))
	for remaining := count; remaining > 0; {
		n := min(remaining, chunkSize)
		buf := d.chunk(n)
		if err := d.readFull(buf); err != nil {
			return nil, err
		}
		for _, b := range buf {
			out = append(out, int8(b))
		}
		remaining -= n
	}
	return ByteArray(out), nil
}

func readIntArray(d *Decoder, _ int) (*Tag, error) {
	count, err := d.readCount()
	if err != nil {
		return nil, err
	}
	out := make([]int32, 0, min(count, maxPrealloc))
	for remaining := count; remaining > 0; {
		n := min(remaining, chunkSize/4)
		buf := d.chunk(n * 4)
		if err := d.readFull(buf); err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			out = append(out, int32(binary.BigEndian.Uint32(buf[i*4:])))
		}
		remaining -= n
	}
	return IntArray(out), nil
}

func readLongArray(d *Decoder, _ int) (*Tag, error) {
	count, err := d.readCount()
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, min(count, maxPrealloc))
	for remaining := count; remaining > 0; {
		n := min(remaining, chunkSize/8)
		buf := d.chunk(n * 8)
		if err := d.readFull(buf); err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			out = append(out, int64(binary.BigEndian.Uint64(buf[i*8:])))
		}
		remaining -= n
	}
	return LongArray(out), nil
}

func readList(d *Decoder, depth int) (*Tag, error) {
	if depth >= d.maxDepth {
		return nil, d.fail(ErrMaxDepth)
	}
	id, err := d.readTagID()
	if err != nil {
		return nil, err
	}
	count, err := d.readCount()
	if err != nil {
		return nil, err
	}
	if id == TagEnd {
		if count != 0 {
			return nil, d.failAt(d.n-5, fmt.Errorf("%w: End list declares %d elements", ErrMalformedList, count))
		}
		return List(EmptyList()), nil
	}
	desc := &descriptors[id]
	items := make([]*Tag, 0, min(count, maxPrealloc))
	d.path.pushIndex(0)
	defer d.path.pop()
	for i := 0; i < count; i++ {
		d.path.setIndex(i)
		item, err := desc.read(d, depth+1)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return List(&ListTag{elem: id, items: items}), nil
}

// readCompound reads entries until the End byte. A repeated name keeps its
// first position and takes the later value.
func readCompound(d *Decoder, depth int) (*Tag, error) {
	if depth >= d.maxDepth {
		return nil, d.fail(ErrMaxDepth)
	}
	c := NewCompound()
	for {
		id, err := d.readTagID()
		if err != nil {
			return nil, err
		}
		if id == TagEnd {
			return CompoundTag(c), nil
		}
		name, err := d.readString()
		if err != nil {
			return nil, err
		}
		d.path.pushName(name)
		t, err := descriptors[id].read(d, depth+1)
		d.path.pop()
		if err != nil {
			return nil, err
		}
		c.Set(name, t)
	}
}

// ============================================================
// Convenience
// ============================================================

// Unmarshal decodes exactly one root from data. Bytes left over after the
// root are an error.
func Unmarshal(data []byte, opts ...DecoderOption) (NamedTag, error) {
	r := bytes.NewReader(data)
	d := NewDecoder(r, opts...)
	nt, err := d.Decode()
	if err != nil {
		if err == io.EOF {
			return NamedTag{}, &DecodeError{Offset: 0, Err: fmt.Errorf("%w: %w", ErrTruncated, io.ErrUnexpectedEOF)}
		}
		return NamedTag{}, err
	}
	if r.Len() > 0 {
		return NamedTag{}, &DecodeError{Offset: d.n, Err: fmt.Errorf("%w: %d bytes", ErrTrailingData, r.Len())}
	}
	return nt, nil
}
