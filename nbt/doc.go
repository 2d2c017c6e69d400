// Package nbt implements NBT (Named Binary Tag), the tree-structured binary
// format used by Minecraft, together with its textual form SNBT.
//
// # Data Model
//
// A Tag is one of twelve data kinds:
//
//	Byte, Short, Int, Long        signed 8/16/32/64-bit integers
//	Float, Double                 IEEE-754 binary32/binary64
//	ByteArray, IntArray, LongArray
//	String                        UTF-8, at most 65535 bytes
//	List                          homogeneous sequence of bare payloads
//	Compound                      string-keyed dictionary of tags
//
// TagEnd (0) is a structural terminator, never a value. A List of kind End
// with zero elements is the Empty list.
//
// # Binary Form
//
// All multi-byte values are big-endian. A root is a tag id byte, a name
// (u16 length + bytes) and a payload:
//
//	0a 0000 | 01 0001 'x' 05 | 00      Compound "" { x: 5b }
//
// Encoder and Decoder stream over io.Writer and io.Reader; Marshal and
// Unmarshal work on byte slices. Size predicts the encoded length without
// encoding.
//
// # SNBT Syntax
//
//	Byte:       5b, true, false
//	Short:      5s
//	Int:        5
//	Long:       5L
//	Float:      1.5f, 3f
//	Double:     1.5, 1.5d, 3d
//	String:     bare-word or "quoted" or 'quoted'
//	List:       [1, 2, 3]
//	Compound:   {name: "Steve", pos: [0.5, 64.0, -3.5]}
//	Arrays:     [B; 1b, 2b]  [I; 1, 2]  [L; 1L, 2L]
//
// Suffixes are case-insensitive. A trailing comma is allowed before a
// closing bracket or brace.
//
// # Example
//
//	t, err := nbt.Parse(`{name: Steve, health: 20s}`)
//	if err != nil {
//	    return err
//	}
//	data, err := nbt.Marshal(nbt.Named("player", t))
//
// Parse errors are *TokenizeError for text no token rule accepts and
// *ParseError for grammar violations. Binary errors are *DecodeError and
// *EncodeError, wrapping sentinels such as ErrTruncated.
package nbt
