package nbt

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated reports a stream that ended inside a fixed-width or
	// length-prefixed value.
	ErrTruncated = errors.New("nbt: truncated stream")

	// ErrInvalidUTF8 reports String bytes that are not valid UTF-8.
	ErrInvalidUTF8 = errors.New("nbt: string is not valid UTF-8")

	// ErrStringTooLong reports a string whose UTF-8 encoding exceeds the
	// 65535-byte limit of the u16 length prefix.
	ErrStringTooLong = errors.New("nbt: string exceeds 65535 bytes")

	// ErrArrayTooLong reports an array or list that cannot be described by
	// a u32 element count.
	ErrArrayTooLong = errors.New("nbt: too many elements")

	// ErrUnexpectedEnd reports an End tag where a data tag is required,
	// for example as the kind of a root.
	ErrUnexpectedEnd = errors.New("nbt: unexpected End tag")

	// ErrMalformedList reports a list header with kind End and a nonzero
	// element count.
	ErrMalformedList = errors.New("nbt: malformed list")

	// ErrMaxDepth reports nesting deeper than the configured limit.
	ErrMaxDepth = errors.New("nbt: maximum nesting depth exceeded")

	// ErrHeterogeneousList reports a list element whose kind differs from
	// the list's element kind.
	ErrHeterogeneousList = errors.New("nbt: heterogeneous list")

	// ErrTrailingData reports bytes left over after a complete root.
	ErrTrailingData = errors.New("nbt: trailing data after root")

	// ErrNilTag reports a nil *Tag where a value is required.
	ErrNilTag = errors.New("nbt: nil tag")
)

// UnsupportedTagError reports a tag id byte outside 0..12.
type UnsupportedTagError struct {
	ID     byte
	Offset int64 // -1 when not read from a stream
}

func (e *UnsupportedTagError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("nbt: unsupported tag id 0x%02x at offset %d", e.ID, e.Offset)
	}
	return fmt.Sprintf("nbt: unsupported tag id 0x%02x", e.ID)
}

// TypeMismatchError is returned by accessors called on the wrong kind.
type TypeMismatchError struct {
	Want    TagID
	Got     TagID
	Numeric bool // any numeric kind was acceptable
}

func (e *TypeMismatchError) Error() string {
	if e.Numeric {
		return fmt.Sprintf("nbt: expected numeric tag, got %s", e.Got)
	}
	return fmt.Sprintf("nbt: expected %s, got %s", e.Want, e.Got)
}

// DecodeError wraps a binary decoding failure with the byte offset and the
// path of the value being read.
type DecodeError struct {
	Offset int64
	Path   string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("nbt: decode at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("nbt: decode %s at offset %d: %v", e.Path, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError wraps a binary encoding failure with the path of the value
// being written.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("nbt: encode: %v", e.Err)
	}
	return fmt.Sprintf("nbt: encode %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
