package nbt

import (
	"errors"
	"strings"
	"testing"
)

// ============================================================
// Parser Tests
// ============================================================

func TestParse_Scalars(t *testing.T) {
	tests := []struct {
		input string
		want  *Tag
	}{
		{"0b", Byte(0)},
		{"-128b", Byte(-128)},
		{"true", Byte(1)},
		{"false", Byte(0)},
		{"69s", Short(69)},
		{"420", Int(420)},
		{"-2147483648", Int(-2147483648)},
		{"69420L", Long(69420)},
		{"3.14f", Float(3.14)},
		{"3f", Float(3)},
		{"5.1", Double(5.1)},
		{"4d", Double(4)},
		{"4.5D", Double(4.5)},
		{"hello", String("hello")},
		{"minecraft:stone", nil},
		{`"quoted text"`, String("quoted text")},
		{`'single'`, String("single")},
		{"4xyz", String("4xyz")},
		{"007", String("007")},
		{"  42  ", Int(42)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.want == nil {
				if err == nil {
					t.Fatalf("expected an error, got %s", Emit(got))
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if !Equal(got, tt.want) {
				t.Errorf("got %s (%s), want %s (%s)", Emit(got), got.Title(), Emit(tt.want), tt.want.Title())
			}
		})
	}
}

func TestParse_LiteralScenario(t *testing.T) {
	input := `{byte1:0b,short:69s,int:420,long:69420L,float:3.14f,double:5.1,bytearray:[B;true,false,5b],list:[4b,3b,2b],compound:{test:"hi"}}`
	got, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := CompoundTag(NewCompound(
		Entry{"byte1", Byte(0)},
		Entry{"short", Short(69)},
		Entry{"int", Int(420)},
		Entry{"long", Long(69420)},
		Entry{"float", Float(3.14)},
		Entry{"double", Double(5.1)},
		Entry{"bytearray", ByteArray([]int8{1, 0, 5})},
		Entry{"list", List(MustList(Byte(4), Byte(3), Byte(2)))},
		Entry{"compound", CompoundTag(NewCompound(Entry{"test", String("hi")}))},
	))
	if !Equal(got, want) {
		t.Errorf("got  %s\nwant %s", Emit(got), Emit(want))
	}

	c, _ := got.AsCompound()
	keys := c.Keys()
	if keys[0] != "byte1" || keys[len(keys)-1] != "compound" {
		t.Errorf("source order not kept: %v", keys)
	}
}

func TestParse_Multiline(t *testing.T) {
	input := `
	{
		byte2 : -10b,
		byte3 : 127b,
		float : 3f,
		double2 : 4.5d,
		intarray : [I; 3, 5, 1],
		longarray : [L; 3l, 4L, 5],
		lists : [
			["one", "two", 'three', 'four\nnewline'],
		],
		compound : {
			"test" : "The quick brown fox jumps over the lazy dog.",
			nested : { nested : { leaf : "This is a secret." } },
		},
	}
	`
	got, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	c, _ := got.AsCompound()

	longs, _ := c.Get("longarray")
	if v, err := longs.AsLongArray(); err != nil || len(v) != 3 || v[2] != 5 {
		t.Errorf("longarray = %v, %v", v, err)
	}

	lists, _ := c.Get("lists")
	outer, _ := lists.AsList()
	if outer.ElemID() != TagList || outer.Len() != 1 {
		t.Fatalf("lists = %s", Emit(lists))
	}
	inner, _ := outer.At(0).AsList()
	if s, _ := inner.At(3).AsString(); s != "four\nnewline" {
		t.Errorf("escaped string = %q", s)
	}
}

func TestParse_Lists(t *testing.T) {
	tests := []struct {
		input string
		kind  TagID
		n     int
	}{
		{"[]", TagEnd, 0},
		{"[1]", TagInt, 1},
		{"[1, 2, 3,]", TagInt, 3},
		{"[true, 1b, false]", TagByte, 3},
		{"[a, 'b', \"c\"]", TagString, 3},
		{"[[], [1], [a]]", TagList, 3},
		{"[{}, {x: 1}]", TagCompound, 2},
		{"[[B; 1b], [B;]]", TagByteArray, 2},
		{"[1.5, 2d]", TagDouble, 2},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			l, err := got.AsList()
			if err != nil {
				t.Fatal(err)
			}
			if l.ElemID() != tt.kind || l.Len() != tt.n {
				t.Errorf("got %s list of %d, want %s list of %d", l.ElemID(), l.Len(), tt.kind, tt.n)
			}
		})
	}
}

func TestParse_Arrays(t *testing.T) {
	got := MustParse("[B; true, false, 5b, -1B]")
	if v, _ := got.AsByteArray(); len(v) != 4 || v[0] != 1 || v[1] != 0 || v[3] != -1 {
		t.Errorf("byte array = %v", v)
	}

	got = MustParse("[I; 3, 5, 1,]")
	if v, _ := got.AsIntArray(); len(v) != 3 || v[0] != 3 {
		t.Errorf("int array = %v", v)
	}

	got = MustParse("[L; 3l, 4L, 5]")
	if v, _ := got.AsLongArray(); len(v) != 3 || v[1] != 4 {
		t.Errorf("long array = %v", v)
	}

	got = MustParse("[I;]")
	if v, err := got.AsIntArray(); err != nil || len(v) != 0 {
		t.Errorf("empty int array = %v, %v", v, err)
	}
}

func TestParse_Compounds(t *testing.T) {
	got := MustParse(`{"quoted key": 1, 'single': 2, bare.key-1: 3, dup: 1, dup: 2}`)
	c, _ := got.AsCompound()
	if c.Len() != 4 {
		t.Fatalf("keys = %v", c.Keys())
	}
	for _, k := range []string{"quoted key", "single", "bare.key-1"} {
		if !c.Has(k) {
			t.Errorf("missing key %q", k)
		}
	}
	if v, _ := c.Get("dup"); !Equal(v, Int(2)) {
		t.Errorf("duplicate key keeps last value, got %v", v)
	}

	if empty := MustParse("{}"); !Equal(empty, CompoundTag(nil)) {
		t.Errorf("{} = %s", Emit(empty))
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"heterogeneous list", `[1, "two"]`},
		{"heterogeneous numbers", `[1, 2L]`},
		{"list kind mismatch", `[[1], {}]`},
		{"lone comma list", `[,]`},
		{"double comma", `[1,,2]`},
		{"unclosed list", `[1, 2`},
		{"unclosed compound", `{a: 1`},
		{"missing colon", `{a 1}`},
		{"numeric key", `{1: 2}`},
		{"boolean key", `{true: 2}`},
		{"missing value", `{a:}`},
		{"trailing tokens", `1 2`},
		{"stray close", `]`},
		{"byte overflow", `128b`},
		{"short overflow", `32768s`},
		{"int overflow", `2147483648`},
		{"long overflow", `9223372036854775808L`},
		{"byte array wrong element", `[B; 1]`},
		{"int array long element", `[I; 1L]`},
		{"int array byte element", `[I; 1b]`},
		{"long array short element", `[L; 1s]`},
		{"array of strings", `[B; a]`},
		{"array missing comma", `[I; 1 2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			var te *TokenizeError
			if errors.As(err, &te) {
				t.Error("grammar errors must not be reported as TokenizeError")
			}
		})
	}
}

func TestParse_HeterogeneousListError(t *testing.T) {
	_, err := Parse(`[1, "two"]`)
	if !errors.Is(err, ErrHeterogeneousList) {
		t.Errorf("expected ErrHeterogeneousList, got %v", err)
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		if pe.Token.Type != TokenString || pe.Token.Value != "two" || pe.Pos.Column != 5 {
			t.Errorf("offending token = %v at %s", pe.Token, pe.Pos)
		}
	}
}

func TestParse_TokenizeErrorIsSeparate(t *testing.T) {
	_, err := Parse(`{a: 1; b: 2}`)
	var te *TokenizeError
	if !errors.As(err, &te) {
		t.Fatalf("expected TokenizeError, got %v", err)
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		t.Error("lexing errors must not be reported as ParseError")
	}
}

func TestParse_EmptyInputIsTokenizeError(t *testing.T) {
	for _, input := range []string{``, `   `, "\n\t\r\n"} {
		_, err := Parse(input)
		var te *TokenizeError
		if !errors.As(err, &te) {
			t.Errorf("Parse(%q) = %v, want TokenizeError", input, err)
		}
	}
}

func TestParse_MaxDepth(t *testing.T) {
	deep := strings.Repeat("[", 20) + strings.Repeat("]", 20)
	if _, err := ParseWithOptions(deep, ParseOptions{MaxDepth: 10}); !errors.Is(err, ErrMaxDepth) {
		t.Errorf("expected ErrMaxDepth, got %v", err)
	}
	if _, err := ParseWithOptions(deep, ParseOptions{MaxDepth: 20}); err != nil {
		t.Errorf("depth 20 should fit a limit of 20: %v", err)
	}

	hostile := strings.Repeat("{a:", DefaultMaxDepth+1) + "1" + strings.Repeat("}", DefaultMaxDepth+1)
	if _, err := Parse(hostile); !errors.Is(err, ErrMaxDepth) {
		t.Errorf("default limit: expected ErrMaxDepth, got %v", err)
	}
}

func TestMustParse_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse should panic on invalid input")
		}
	}()
	MustParse("{")
}
