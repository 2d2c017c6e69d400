package nbt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
)

// ============================================================
// Go value bridge
// ============================================================
//
// ToAny and FromAny convert between tags and plain Go values. Typed Go
// numbers keep their width (int16 <-> Short and so on). Values coming from
// JSON or CBOR carry no width, so they are inferred instead: integers that
// fit in an int32 become Int, other integers Long, other numbers Double.

// ToAny converts t to plain Go values: int8, int16, int32, int64, float32,
// float64, string, []int8, []int32, []int64, []any and map[string]any.
func ToAny(t *Tag) any {
	return toAny(t, false)
}

func toAny(t *Tag, byteString bool) any {
	if t == nil {
		return nil
	}
	switch t.id {
	case TagByte:
		return int8(t.num)
	case TagShort:
		return int16(t.num)
	case TagInt:
		return int32(t.num)
	case TagLong:
		return t.num
	case TagFloat:
		return float32(t.flt)
	case TagDouble:
		return t.flt
	case TagString:
		return t.str
	case TagByteArray:
		if byteString {
			out := make([]byte, len(t.bytes))
			for i, b := range t.bytes {
				out[i] = byte(b)
			}
			return out
		}
		return t.bytes
	case TagIntArray:
		return t.ints
	case TagLongArray:
		return t.longs
	case TagList:
		out := make([]any, len(t.list.items))
		for i, item := range t.list.items {
			out[i] = toAny(item, byteString)
		}
		return out
	case TagCompound:
		out := make(map[string]any, t.compound.Len())
		for _, e := range t.compound.entries {
			out[e.Name] = toAny(e.Tag, byteString)
		}
		return out
	}
	return nil
}

// FromAny converts a Go value to a tag. Supported inputs are *Tag, bool,
// every integer and float type, json.Number, string, []byte, []int8,
// []int32, []int64, []string, []any and map[string]any. Map keys are added
// in sorted order.
func FromAny(v any) (*Tag, error) {
	return fromAny(v, false)
}

func fromAny(v any, infer bool) (*Tag, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("nbt: cannot convert nil")
	case *Tag:
		if val == nil {
			return nil, ErrNilTag
		}
		return val, nil
	case bool:
		return Bool(val), nil

	case int8:
		if infer {
			return inferInt(int64(val)), nil
		}
		return Byte(val), nil
	case int16:
		if infer {
			return inferInt(int64(val)), nil
		}
		return Short(val), nil
	case int32:
		if infer {
			return inferInt(int64(val)), nil
		}
		return Int(val), nil
	case int64:
		if infer {
			return inferInt(val), nil
		}
		return Long(val), nil
	case int:
		return inferInt(int64(val)), nil
	case uint8:
		return inferInt(int64(val)), nil
	case uint16:
		return inferInt(int64(val)), nil
	case uint32:
		return inferInt(int64(val)), nil
	case uint:
		return inferUint(uint64(val))
	case uint64:
		return inferUint(val)

	case float32:
		if infer {
			return Double(float64(val)), nil
		}
		return Float(val), nil
	case float64:
		return Double(val), nil
	case json.Number:
		return inferNumber(val)

	case string:
		return String(val), nil
	case []byte:
		return Bytes(val), nil
	case []int8:
		return ByteArray(val), nil
	case []int32:
		return IntArray(val), nil
	case []int64:
		return LongArray(val), nil

	case []string:
		l := &ListTag{elem: TagString, items: make([]*Tag, len(val))}
		if len(val) == 0 {
			return List(EmptyList()), nil
		}
		for i, s := range val {
			l.items[i] = String(s)
		}
		return List(l), nil

	case []any:
		items := make([]*Tag, 0, len(val))
		for i, elem := range val {
			t, err := fromAny(elem, infer)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			items = append(items, t)
		}
		if infer {
			items = unifyNumbers(items)
		}
		l, err := NewList(items...)
		if err != nil {
			return nil, err
		}
		return List(l), nil

	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		c := NewCompound()
		for _, k := range keys {
			t, err := fromAny(val[k], infer)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			c.Set(k, t)
		}
		return CompoundTag(c), nil

	default:
		return nil, fmt.Errorf("nbt: unsupported Go type %T", v)
	}
}

func inferInt(v int64) *Tag {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return Int(int32(v))
	}
	return Long(v)
}

func inferUint(v uint64) (*Tag, error) {
	if v > math.MaxInt64 {
		return nil, fmt.Errorf("nbt: %d overflows Long", v)
	}
	return inferInt(int64(v)), nil
}

func inferNumber(n json.Number) (*Tag, error) {
	if i, err := n.Int64(); err == nil {
		return inferInt(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("nbt: invalid number %q: %w", n, err)
	}
	return Double(f), nil
}

// unifyNumbers widens inferred numeric elements to one kind so a list such
// as [1, 3000000000, 2.5] stays homogeneous: Int widens to Long, and any
// Double makes every element a Double.
func unifyNumbers(items []*Tag) []*Tag {
	widest := TagEnd
	for _, t := range items {
		switch t.id {
		case TagInt:
			if widest == TagEnd {
				widest = TagInt
			}
		case TagLong:
			if widest != TagDouble {
				widest = TagLong
			}
		case TagDouble:
			widest = TagDouble
		default:
			return items
		}
	}
	for i, t := range items {
		if t.id == widest {
			continue
		}
		switch widest {
		case TagLong:
			items[i] = Long(t.num)
		case TagDouble:
			items[i] = Double(float64(t.num))
		}
	}
	return items
}

// ============================================================
// JSON
// ============================================================

// ToJSON converts t to JSON. Widths and the list/array distinction are not
// preserved; NaN and infinite floats are an error.
func ToJSON(t *Tag) ([]byte, error) {
	return json.Marshal(ToAny(t))
}

// ToJSONIndent is like ToJSON with indented output.
func ToJSONIndent(t *Tag, indent string) ([]byte, error) {
	return json.MarshalIndent(ToAny(t), "", indent)
}

// FromJSON converts JSON to a tag, inferring numeric kinds. Booleans become
// Byte 0/1 and null is rejected.
func FromJSON(data []byte) (*Tag, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("JSON parse error: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("JSON parse error: %w", ErrTrailingData)
	}
	return fromAny(v, true)
}
