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

// DefaultMaxDepth is the default limit on nested lists and compounds for
// encoding, decoding and parsing.
const DefaultMaxDepth = 512

// MaxStringLength is the longest string, in UTF-8 bytes, the u16 length
// prefix can describe.
const MaxStringLength = math.MaxUint16

// chunkSize bounds the scratch buffer used for array payloads.
const chunkSize = 4096

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithSortedKeys writes compound entries in byte-wise key order instead of
// insertion order. The output is then a canonical function of the tree.
func WithSortedKeys() EncoderOption {
	return func(e *Encoder) {
		e.sortKeys = true
	}
}

// WithEncodeMaxDepth sets the nesting limit (default DefaultMaxDepth).
func WithEncodeMaxDepth(n int) EncoderOption {
	return func(e *Encoder) {
		e.maxDepth = n
	}
}

// Encoder writes NBT in big-endian binary form to an io.Writer.
//
// Writes go straight to the underlying writer; wrap it in a bufio.Writer
// for many small payloads.
type Encoder struct {
	w        io.Writer
	buf      [8]byte
	scratch  []byte
	n        int64
	sortKeys bool
	maxDepth int
	path     pathStack
}

// NewEncoder creates an encoder writing to w.
func NewEncoder(w io.Writer, opts ...EncoderOption) *Encoder {
	e := &Encoder{w: w, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Written returns the number of bytes written so far.
func (e *Encoder) Written() int64 {
	return e.n
}

// Encode writes a root: tag id byte, name, payload.
func (e *Encoder) Encode(nt NamedTag) error {
	e.path.reset()
	if nt.Tag == nil {
		return e.fail(ErrNilTag)
	}
	if !nt.Tag.id.IsValid() {
		return e.fail(&UnsupportedTagError{ID: byte(nt.Tag.id), Offset: -1})
	}
	if err := e.writeU8(byte(nt.Tag.id)); err != nil {
		return err
	}
	if err := e.writeString(nt.Name); err != nil {
		return err
	}
	return e.writePayload(nt.Tag, 0)
}

// EncodePayload writes only the payload of t, without id or name.
func (e *Encoder) EncodePayload(t *Tag) error {
	e.path.reset()
	return e.writePayload(t, 0)
}

func (e *Encoder) writePayload(t *Tag, depth int) error {
	if t == nil {
		return e.fail(ErrNilTag)
	}
	d, ok := lookup(t.id)
	if !ok {
		return e.fail(&UnsupportedTagError{ID: byte(t.id), Offset: -1})
	}
	return d.write(e, t, depth)
}

// fail wraps err with the current path. It is called where an error
// originates, so every error is wrapped exactly once.
func (e *Encoder) fail(err error) error {
	var ee *EncodeError
	if errors.As(err, &ee) {
		return err
	}
	return &EncodeError{Path: e.path.String(), Err: err}
}

// ============================================================
// Primitives
// ============================================================

func (e *Encoder) write(p []byte) error {
	n, err := e.w.Write(p)
	e.n += int64(n)
	if err != nil {
		return e.fail(err)
	}
	return nil
}

func (e *Encoder) writeU8(v uint8) error {
	e.buf[0] = v
	return e.write(e.buf[:1])
}

func (e *Encoder) writeU16(v uint16) error {
	binary.BigEndian.PutUint16(e.buf[:2], v)
	return e.write(e.buf[:2])
}

func (e *Encoder) writeU32(v uint32) error {
	binary.BigEndian.PutUint32(e.buf[:4], v)
	return e.write(e.buf[:4])
}

func (e *Encoder) writeU64(v uint64) error {
	binary.BigEndian.PutUint64(e.buf[:8], v)
	return e.write(e.buf[:8])
}

func (e *Encoder) writeCount(n int) error {
	if uint64(n) > math.MaxUint32 {
		return e.fail(fmt.Errorf("%w: %d", ErrArrayTooLong, n))
	}
	return e.writeU32(uint32(n))
}

// writeString writes a u16 byte length followed by the UTF-8 bytes.
func (e *Encoder) writeString(s string) error {
	if len(s) > MaxStringLength {
		return e.fail(fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(s)))
	}
	if !utf8.ValidString(s) {
		return e.fail(ErrInvalidUTF8)
	}
	if err := e.writeU16(uint16(len(s))); err != nil {
		return err
	}
	n, err := io.WriteString(e.w, s)
	e.n += int64(n)
	if err != nil {
		return e.fail(err)
	}
	return nil
}

func (e *Encoder) chunk(n int) []byte {
	if cap(e.scratch) < n {
		e.scratch = make([]byte, n)
	}
	return e.scratch[:n]
}

// ============================================================
// Per-kind writers (wired through the descriptor table)
// ============================================================

func writeByte(e *Encoder, t *Tag, _ int) error {
	return e.writeU8(uint8(int8(t.num)))
}

func writeShort(e *Encoder, t *Tag, _ int) error {
	return e.writeU16(uint16(int16(t.num)))
}

func writeInt(e *Encoder, t *Tag, _ int) error {
	return e.writeU32(uint32(int32(t.num)))
}

func writeLong(e *Encoder, t *Tag, _ int) error {
	return e.writeU64(uint64(t.num))
}

func writeFloat(e *Encoder, t *Tag, _ int) error {
	return e.writeU32(math.Float32bits(float32(t.flt)))
}

func writeDouble(e *Encoder, t *Tag, _ int) error {
	return e.writeU64(math.Float64bits(t.flt))
}

func writeStringTag(e *Encoder, t *Tag, _ int) error {
	return e.writeString(t.str)
}

// writeByteArray copies the payload through the scratch buffer in chunks.
func writeByteArray(e *Encoder, t *Tag, _ int) error {
	if err := e.writeCount(len(t.bytes)); err != nil {
		return err
	}
	for rest := t.bytes; len(rest) > 0; {
		n := min(len(rest), chunkSize)
		buf := e.chunk(n)
		for i, b := range rest[:n] {
			buf[i] = byte(b)
		}
		if err := e.write(buf); err != nil {
			return err
		}
		rest = rest[n:]
	}
	return nil
}

func writeIntArray(e *Encoder, t *Tag, _ int) error {
	if err := e.writeCount(len(t.ints)); err != nil {
		return err
	}
	for rest := t.ints; len(rest) > 0; {
		n := min(len(rest), chunkSize/4)
		buf := e.chunk(n * 4)
		for i, v := range rest[:n] {
			binary.BigEndian.PutUint32(buf[i*4:], uint32(v))
		}
		if err := e.write(buf); err != nil {
			return err
		}
		rest = rest[n:]
	}
	return nil
}

func writeLongArray(e *Encoder, t *Tag, _ int) error {
	if err := e.writeCount(len(t.longs)); err != nil {
		return err
	}
	for rest := t.longs; len(rest) > 0; {
		n := min(len(rest), chunkSize/8)
		buf := e.chunk(n * 8)
		for i, v := range rest[:n] {
			binary.BigEndian.PutUint64(buf[i*8:], uint64(v))
		}
		if err := e.write(buf); err != nil {
			return err
		}
		rest = rest[n:]
	}
	return nil
}

// writeList writes the element kind, the count and the bare element
// payloads. The Empty list is kind End with count 0.
func writeList(e *Encoder, t *Tag, depth int) error {
	if depth >= e.maxDepth {
		return e.fail(ErrMaxDepth)
	}
	l := t.list
	if l.elem == TagEnd && len(l.items) > 0 {
		return e.fail(fmt.Errorf("%w: End list with %d elements", ErrMalformedList, len(l.items)))
	}
	if err := e.writeU8(byte(l.elem)); err != nil {
		return err
	}
	if err := e.writeCount(len(l.items)); err != nil {
		return err
	}
	if l.elem == TagEnd {
		return nil
	}
	d, ok := lookup(l.elem)
	if !ok {
		return e.fail(&UnsupportedTagError{ID: byte(l.elem), Offset: -1})
	}
	e.path.pushIndex(0)
	defer e.path.pop()
	for i, item := range l.items {
		e.path.setIndex(i)
		if item == nil {
			return e.fail(ErrNilTag)
		}
		if item.id != l.elem {
			return e.fail(fmt.Errorf("%w: %s element in %s list", ErrHeterogeneousList, item.id, l.elem))
		}
		if err := d.write(e, item, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// writeCompound writes each entry as (id, name, payload) and then the End
// byte.
func writeCompound(e *Encoder, t *Tag, depth int) error {
	if depth >= e.maxDepth {
		return e.fail(ErrMaxDepth)
	}
	entries := t.compound.entries
	if e.sortKeys {
		entries = t.compound.sortedEntries()
	}
	for _, entry := range entries {
		e.path.pushName(entry.Name)
		if entry.Tag == nil {
			err := e.fail(ErrNilTag)
			e.path.pop()
			return err
		}
		if err := e.writeU8(byte(entry.Tag.id)); err != nil {
			e.path.pop()
			return err
		}
		if err := e.writeString(entry.Name); err != nil {
			e.path.pop()
			return err
		}
		if err := e.writePayload(entry.Tag, depth+1); err != nil {
			e.path.pop()
			return err
		}
		e.path.pop()
	}
	return e.writeU8(byte(TagEnd))
}

// ============================================================
// Convenience
// ============================================================

// Marshal encodes a root to bytes using insertion key order.
func Marshal(nt NamedTag) ([]byte, error) {
	return marshal(nt)
}

// MarshalCanonical encodes a root with compound keys sorted, so equal trees
// always produce identical bytes.
func MarshalCanonical(nt NamedTag) ([]byte, error) {
	return marshal(nt, WithSortedKeys())
}

func marshal(nt NamedTag, opts ...EncoderOption) ([]byte, error) {
	var buf bytes.Buffer
	if nt.Tag != nil && nt.Tag.id.IsValid() {
		buf.Grow(NamedSize(nt))
	}
	if err := NewEncoder(&buf, opts...).Encode(nt); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
