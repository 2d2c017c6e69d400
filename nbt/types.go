package nbt

import (
	"fmt"
	"math"
)

// TagID is the one-byte wire discriminant of a tag.
type TagID uint8

const (
	TagEnd TagID = iota // structural terminator, never a data tag
	TagByte
	TagShort
	TagInt
	TagLong
	TagFloat
	TagDouble
	TagByteArray
	TagString
	TagList
	TagCompound
	TagIntArray
	TagLongArray
)

// TagUnsupported stands in for any wire byte outside 0..12.
const TagUnsupported TagID = 0xFF

// TagIDFromByte maps a wire byte to its TagID. Bytes outside 0..12 map to
// TagUnsupported.
func TagIDFromByte(b byte) TagID {
	if b <= byte(TagLongArray) {
		return TagID(b)
	}
	return TagUnsupported
}

// IsValid reports whether id names one of the 12 data tags.
func (id TagID) IsValid() bool {
	return id >= TagByte && id <= TagLongArray
}

// Title returns the PascalCase title of the tag kind, e.g. "Byte".
func (id TagID) Title() string {
	if id <= TagLongArray {
		return descriptors[id].title
	}
	return "Unsupported"
}

// Name returns the tag kind in TAG_Title form, e.g. "TAG_Byte".
func (id TagID) Name() string {
	return "TAG_" + id.Title()
}

// String returns the title.
func (id TagID) String() string {
	return id.Title()
}

// Width returns the fixed payload width in bytes for scalar numeric kinds and
// 0 for everything else.
func (id TagID) Width() int {
	if id <= TagLongArray {
		return descriptors[id].width
	}
	return 0
}

// isNumeric reports whether id is one of the six scalar numeric kinds.
func (id TagID) isNumeric() bool {
	return id >= TagByte && id <= TagDouble
}

// Tag is one node of an NBT tree.
//
// The zero value is not a valid tag; use the constructors.
type Tag struct {
	id TagID

	// Scalar payloads (only one valid based on id)
	num int64   // Byte, Short, Int, Long
	flt float64 // Float, Double
	str string

	// Array payloads
	bytes []int8
	ints  []int32
	longs []int64

	// Containers
	list     *ListTag
	compound *Compound
}

// NamedTag is a (name, tag) pair, the root of a serialized stream.
type NamedTag struct {
	Name string
	Tag  *Tag
}

// Named creates a named root.
func Named(name string, t *Tag) NamedTag {
	return NamedTag{Name: name, Tag: t}
}

// Root creates a root with an empty name.
func Root(t *Tag) NamedTag {
	return NamedTag{Tag: t}
}

// ============================================================
// Constructors
// ============================================================

// Byte creates a Byte tag.
func Byte(v int8) *Tag {
	return &Tag{id: TagByte, num: int64(v)}
}

// Short creates a Short tag.
func Short(v int16) *Tag {
	return &Tag{id: TagShort, num: int64(v)}
}

// Int creates an Int tag.
func Int(v int32) *Tag {
	return &Tag{id: TagInt, num: int64(v)}
}

// Long creates a Long tag.
func Long(v int64) *Tag {
	return &Tag{id: TagLong, num: v}
}

// Float creates a Float tag.
func Float(v float32) *Tag {
	return &Tag{id: TagFloat, flt: float64(v)}
}

// Double creates a Double tag.
func Double(v float64) *Tag {
	return &Tag{id: TagDouble, flt: v}
}

// ByteArray creates a ByteArray tag. The slice is not copied.
func ByteArray(v []int8) *Tag {
	return &Tag{id: TagByteArray, bytes: v}
}

// Bytes creates a ByteArray tag from unsigned bytes.
func Bytes(v []byte) *Tag {
	out := make([]int8, len(v))
	for i, b := range v {
		out[i] = int8(b)
	}
	return &Tag{id: TagByteArray, bytes: out}
}

// String creates a String tag.
func String(v string) *Tag {
	return &Tag{id: TagString, str: v}
}

// List creates a List tag. A nil list is treated as the Empty list.
func List(l *ListTag) *Tag {
	if l == nil {
		l = EmptyList()
	}
	return &Tag{id: TagList, list: l}
}

// CompoundTag creates a Compound tag. A nil compound is treated as empty.
func CompoundTag(c *Compound) *Tag {
	if c == nil {
		c = NewCompound()
	}
	return &Tag{id: TagCompound, compound: c}
}

// IntArray creates an IntArray tag. The slice is not copied.
func IntArray(v []int32) *Tag {
	return &Tag{id: TagIntArray, ints: v}
}

// LongArray creates a LongArray tag. The slice is not copied.
func LongArray(v []int64) *Tag {
	return &Tag{id: TagLongArray, longs: v}
}

// Bool creates a Byte tag holding 1 for true and 0 for false.
func Bool(v bool) *Tag {
	if v {
		return Byte(1)
	}
	return Byte(0)
}

// Number is the set of Go numeric types accepted by the converting
// constructors.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// ByteOf creates a Byte tag from any number. Values that do not fit in an
// int8 yield Byte(0). Fractions truncate toward zero.
func ByteOf[T Number](v T) *Tag {
	i, ok := toInt64(v)
	if !ok || i < math.MinInt8 || i > math.MaxInt8 {
		return Byte(0)
	}
	return Byte(int8(i))
}

// ShortOf creates a Short tag, yielding Short(0) when v does not fit.
func ShortOf[T Number](v T) *Tag {
	i, ok := toInt64(v)
	if !ok || i < math.MinInt16 || i > math.MaxInt16 {
		return Short(0)
	}
	return Short(int16(i))
}

// IntOf creates an Int tag, yielding Int(0) when v does not fit.
func IntOf[T Number](v T) *Tag {
	i, ok := toInt64(v)
	if !ok || i < math.MinInt32 || i > math.MaxInt32 {
		return Int(0)
	}
	return Int(int32(i))
}

// LongOf creates a Long tag, yielding Long(0) when v does not fit.
func LongOf[T Number](v T) *Tag {
	i, ok := toInt64(v)
	if !ok {
		return Long(0)
	}
	return Long(i)
}

// FloatOf creates a Float tag. A finite value outside the float32 range
// yields NaN.
func FloatOf[T Number](v T) *Tag {
	f := float64(v)
	if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
		return Float(float32(math.NaN()))
	}
	return Float(float32(f))
}

// DoubleOf creates a Double tag.
func DoubleOf[T Number](v T) *Tag {
	return Double(float64(v))
}

// toInt64 returns v as an int64 when it is a number inside the int64 range.
func toInt64[T Number](v T) (int64, bool) {
	half, negOne := 0.5, int64(-1)
	switch {
	case T(half) != 0: // floating point
		f := float64(v)
		if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	case T(negOne) < 0: // signed integer
		return int64(v), true
	default:
		u := uint64(v)
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
}

// ============================================================
// Accessors
// ============================================================

// ID returns the tag kind. A nil tag reports TagEnd.
func (t *Tag) ID() TagID {
	if t == nil {
		return TagEnd
	}
	return t.id
}

// Title returns the PascalCase title of the tag kind.
func (t *Tag) Title() string {
	return t.ID().Title()
}

// Name returns the tag kind in TAG_Title form.
func (t *Tag) Name() string {
	return t.ID().Name()
}

func (t *Tag) expect(id TagID) error {
	if t.ID() != id {
		return &TypeMismatchError{Want: id, Got: t.ID()}
	}
	return nil
}

// AsByte returns the Byte payload.
func (t *Tag) AsByte() (int8, error) {
	if err := t.expect(TagByte); err != nil {
		return 0, err
	}
	return int8(t.num), nil
}

// AsShort returns the Short payload.
func (t *Tag) AsShort() (int16, error) {
	if err := t.expect(TagShort); err != nil {
		return 0, err
	}
	return int16(t.num), nil
}

// AsInt returns the Int payload.
func (t *Tag) AsInt() (int32, error) {
	if err := t.expect(TagInt); err != nil {
		return 0, err
	}
	return int32(t.num), nil
}

// AsLong returns the Long payload.
func (t *Tag) AsLong() (int64, error) {
	if err := t.expect(TagLong); err != nil {
		return 0, err
	}
	return t.num, nil
}

// AsFloat returns the Float payload.
func (t *Tag) AsFloat() (float32, error) {
	if err := t.expect(TagFloat); err != nil {
		return 0, err
	}
	return float32(t.flt), nil
}

// AsDouble returns the Double payload.
func (t *Tag) AsDouble() (float64, error) {
	if err := t.expect(TagDouble); err != nil {
		return 0, err
	}
	return t.flt, nil
}

// AsByteArray returns the ByteArray payload. The slice is shared.
func (t *Tag) AsByteArray() ([]int8, error) {
	if err := t.expect(TagByteArray); err != nil {
		return nil, err
	}
	return t.bytes, nil
}

// AsString returns the String payload.
func (t *Tag) AsString() (string, error) {
	if err := t.expect(TagString); err != nil {
		return "", err
	}
	return t.str, nil
}

// AsList returns the List payload.
func (t *Tag) AsList() (*ListTag, error) {
	if err := t.expect(TagList); err != nil {
		return nil, err
	}
	return t.list, nil
}

// AsCompound returns the Compound payload.
func (t *Tag) AsCompound() (*Compound, error) {
	if err := t.expect(TagCompound); err != nil {
		return nil, err
	}
	return t.compound, nil
}

// AsIntArray returns the IntArray payload. The slice is shared.
func (t *Tag) AsIntArray() ([]int32, error) {
	if err := t.expect(TagIntArray); err != nil {
		return nil, err
	}
	return t.ints, nil
}

// AsLongArray returns the LongArray payload. The slice is shared.
func (t *Tag) AsLongArray() ([]int64, error) {
	if err := t.expect(TagLongArray); err != nil {
		return nil, err
	}
	return t.longs, nil
}

// AsBool interprets a numeric tag as a boolean: zero is false, anything else
// is true. Non-numeric kinds return a *TypeMismatchError.
func (t *Tag) AsBool() (bool, error) {
	switch t.ID() {
	case TagByte, TagShort, TagInt, TagLong:
		return t.num != 0, nil
	case TagFloat, TagDouble:
		return t.flt != 0, nil
	default:
		return false, &TypeMismatchError{Want: TagByte, Got: t.ID(), Numeric: true}
	}
}

// String returns the SNBT form of the tag.
func (t *Tag) String() string {
	return Emit(t)
}

// GoString returns a debug representation.
func (t *Tag) GoString() string {
	return fmt.Sprintf("nbt.Tag{%s %s}", t.ID().Title(), Emit(t))
}
