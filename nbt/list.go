package nbt

import "fmt"

// ListTag is a homogeneous sequence of tags sharing one element kind.
//
// The Empty list has element kind TagEnd and no elements. A list with a
// real element kind may also hold zero elements; that is what a wire header
// such as (Byte, 0) decodes to, and it is distinct from Empty.
type ListTag struct {
	elem  TagID
	items []*Tag
}

// EmptyList returns a new Empty list.
func EmptyList() *ListTag {
	return &ListTag{elem: TagEnd}
}

// NewList creates a list whose element kind is taken from the first item.
// With no items it returns the Empty list. A later item of a different kind
// fails with ErrHeterogeneousList.
func NewList(items ...*Tag) (*ListTag, error) {
	if len(items) == 0 {
		return EmptyList(), nil
	}
	return NewTypedList(items[0].ID(), items...)
}

// NewTypedList creates a list with a declared element kind. elem must be a
// data kind, or TagEnd with no items.
func NewTypedList(elem TagID, items ...*Tag) (*ListTag, error) {
	if elem == TagEnd {
		if len(items) > 0 {
			return nil, fmt.Errorf("%w: End list with %d elements", ErrMalformedList, len(items))
		}
		return EmptyList(), nil
	}
	if !elem.IsValid() {
		return nil, &UnsupportedTagError{ID: byte(elem), Offset: -1}
	}
	l := &ListTag{elem: elem, items: make([]*Tag, 0, len(items))}
	for _, item := range items {
		if err := l.Append(item); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// MustList is like NewList but panics on error.
func MustList(items ...*Tag) *ListTag {
	l, err := NewList(items...)
	if err != nil {
		panic(err)
	}
	return l
}

// ElemID returns the element kind; TagEnd for the Empty list.
func (l *ListTag) ElemID() TagID {
	if l == nil {
		return TagEnd
	}
	return l.elem
}

// IsEmpty reports whether l is the Empty list.
func (l *ListTag) IsEmpty() bool {
	return l.ElemID() == TagEnd
}

// Len returns the number of elements.
func (l *ListTag) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// At returns element i.
func (l *ListTag) At(i int) *Tag {
	return l.items[i]
}

// Items returns a copy of the elements.
func (l *ListTag) Items() []*Tag {
	if l == nil {
		return nil
	}
	out := make([]*Tag, len(l.items))
	copy(out, l.items)
	return out
}

// Append adds t to the list. Appending to the Empty list fixes its element
// kind to t's kind.
func (l *ListTag) Append(t *Tag) error {
	if t == nil {
		return ErrNilTag
	}
	if !t.ID().IsValid() {
		return &UnsupportedTagError{ID: byte(t.ID()), Offset: -1}
	}
	if l.elem == TagEnd {
		l.elem = t.ID()
	}
	if t.ID() != l.elem {
		return fmt.Errorf("%w: %s element in %s list", ErrHeterogeneousList, t.ID(), l.elem)
	}
	l.items = append(l.items, t)
	return nil
}
