package nbt

import (
	"math"
	"slices"
)

// Equal reports whether a and b are the same tree. Compounds compare as
// dictionaries, ignoring key order. Floats compare by bit pattern, so a NaN
// equals itself and 0 differs from -0.
func Equal(a, b *Tag) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.id != b.id {
		return false
	}

	switch a.id {
	case TagByte, TagShort, TagInt, TagLong:
		return a.num == b.num
	case TagFloat:
		return math.Float32bits(float32(a.flt)) == math.Float32bits(float32(b.flt))
	case TagDouble:
		return math.Float64bits(a.flt) == math.Float64bits(b.flt)
	case TagString:
		return a.str == b.str
	case TagByteArray:
		return slices.Equal(a.bytes, b.bytes)
	case TagIntArray:
		return slices.Equal(a.ints, b.ints)
	case TagLongArray:
		return slices.Equal(a.longs, b.longs)
	case TagList:
		return equalList(a.list, b.list)
	case TagCompound:
		return equalCompound(a.compound, b.compound)
	}
	return false
}

func equalList(a, b *ListTag) bool {
	if a.ElemID() != b.ElemID() || a.Len() != b.Len() {
		return false
	}
	for i := range a.items {
		if !Equal(a.items[i], b.items[i]) {
			return false
		}
	}
	return true
}

func equalCompound(a, b *Compound) bool {
	if a.Len() != b.Len() {
		return false
	}
	for _, e := range a.entries {
		other, ok := b.Get(e.Name)
		if !ok || !Equal(e.Tag, other) {
			return false
		}
	}
	return true
}

// Equal reports whether t and other are the same tree.
func (t *Tag) Equal(other *Tag) bool {
	return Equal(t, other)
}

// Clone returns a deep copy of t.
func (t *Tag) Clone() *Tag {
	if t == nil {
		return nil
	}
	out := *t
	switch t.id {
	case TagByteArray:
		out.bytes = slices.Clone(t.bytes)
	case TagIntArray:
		out.ints = slices.Clone(t.ints)
	case TagLongArray:
		out.longs = slices.Clone(t.longs)
	case TagList:
		l := &ListTag{elem: t.list.elem, items: make([]*Tag, len(t.list.items))}
		for i, item := range t.list.items {
			l.items[i] = item.Clone()
		}
		out.list = l
	case TagCompound:
		c := NewCompound()
		for _, e := range t.compound.entries {
			c.Set(e.Name, e.Tag.Clone())
		}
		out.compound = c
	}
	return &out
}
