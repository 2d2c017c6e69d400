package nbt

import (
	"bytes"
	"testing"
)

// ---------------------------------------------------------------------------
// FuzzLexer: the lexer never panics and always ends in EOF or an error.
// ---------------------------------------------------------------------------

func FuzzLexer(f *testing.F) {
	seeds := []string{
		`, : { } [ ]`,
		`[B;`, `[I;`, `[L;`, `[b;`, `[B ;`,
		`0`, `-0`, `42`, `5b`, `5s`, `5L`, `1.5f`, `1.5d`, `3f`, `4D`,
		`007`, `1e5`, `.5`, `5.`, `1bb`, `-`, `+`,
		`true`, `false`, `True`, `truex`, `true-x`,
		`hello`, `minecraft:stone`, `a.b-c_d+e`,
		`"quoted"`, `'single'`, `"esc\"aped"`, `"\n\t\0\q"`, `"unterminated`, `"dangling\`,
		`"ünïcødé"`, `é`, "\xff", "\"\xff\"",
		``, `   `, "\t\n\r　",
		`{a:1b,b:[1,2],c:[B;1b]}`,
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, data string) {
		l := NewLexer(data)
		for i := 0; i < len(data)+2; i++ {
			tok, err := l.Next()
			if err != nil || tok.Type == TokenEOF {
				return
			}
		}
		t.Fatalf("lexer did not terminate on %q", data)
	})
}

// ---------------------------------------------------------------------------
// FuzzParse: any accepted text emits back to text that parses to an equal
// tree, in both compact and pretty form.
// ---------------------------------------------------------------------------

func FuzzParse(f *testing.F) {
	seeds := []string{
		`{byte1:0b,short:69s,int:420,long:69420L,float:3.14f,double:5.1,bytearray:[B;true,false,5b],list:[4b,3b,2b],compound:{test:"hi"}}`,
		`[]`, `{}`, `[B;]`, `[I; 1, 2,]`, `[L; 1, 2L]`,
		`[[1], [], [a]]`, `[{}, {x: 1}]`,
		`{"key with space": 'v', dup: 1, dup: 2}`,
		`[1, "two"]`, `128b`, `{1: 2}`, `[,]`,
		`"a\\b\"c"`, `true`,
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, data string) {
		tag, err := ParseWithOptions(data, ParseOptions{MaxDepth: 64})
		if err != nil {
			return
		}
		for _, opts := range []EmitOptions{DefaultEmitOptions(), PrettyEmitOptions()} {
			text := EmitWithOptions(tag, opts)
			back, err := ParseWithOptions(text, ParseOptions{MaxDepth: 64})
			if err != nil {
				t.Fatalf("re-parse of %q (from %q): %v", text, data, err)
			}
			if !Equal(back, tag) {
				t.Fatalf("round trip changed %q: %s vs %s", data, Emit(tag), Emit(back))
			}
		}
	})
}

// ---------------------------------------------------------------------------
// FuzzDecode: the decoder rejects arbitrary bytes without panicking, and any
// accepted tree re-encodes to bytes that decode to an equal tree.
// ---------------------------------------------------------------------------

func FuzzDecode(f *testing.F) {
	seeds := [][]byte{
		{},
		{0x0a, 0x00, 0x00, 0x00},
		{0x01, 0x00, 0x01, 'x', 0x05},
		{0x09, 0x00, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01},
		{0x09, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		{0x07, 0x00, 0x00, 0x7f, 0xff, 0xff, 0xff},
		{0x0a, 0x00, 0x00, 0x0a, 0x00, 0x01, 'a', 0x00, 0x00},
		{0x0d, 0x00, 0x00},
		{0x08, 0x00, 0x00, 0x00, 0x02, 0xff, 0xfe},
	}
	if data, err := Marshal(Named("root", MustParse(`{a: [L; 1, 2], b: [[1], []], c: "text"}`))); err == nil {
		seeds = append(seeds, data)
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		nt, err := Unmarshal(data, WithMaxDepth(64))
		if err != nil {
			return
		}
		out, err := Marshal(nt)
		if err != nil {
			t.Fatalf("decoded tree does not re-encode: %v", err)
		}
		if n := NamedSize(nt); n != len(out) {
			t.Fatalf("NamedSize = %d, encoded %d bytes", n, len(out))
		}
		back, err := Unmarshal(out, WithMaxDepth(64))
		if err != nil {
			t.Fatalf("re-decode: %v", err)
		}
		if back.Name != nt.Name || !Equal(back.Tag, nt.Tag) {
			t.Fatalf("round trip changed the tree: %s vs %s", Emit(nt.Tag), Emit(back.Tag))
		}
		if again, _ := Marshal(back); !bytes.Equal(again, out) {
			t.Fatalf("encoding is not stable: %x vs %x", out, again)
		}
	})
}
