package nbt

import (
	"math"
	"strconv"
	"strings"
)

// EmitOptions configures the SNBT emitter.
type EmitOptions struct {
	// Pretty puts each compound entry and list element on its own line
	Pretty bool

	// Indent string for pretty mode (default: "  ")
	Indent string

	// SortKeys sorts compound keys for canonical output
	SortKeys bool
}

// DefaultEmitOptions returns compact, insertion-ordered output.
func DefaultEmitOptions() EmitOptions {
	return EmitOptions{Indent: "  "}
}

// PrettyEmitOptions returns indented output.
func PrettyEmitOptions() EmitOptions {
	return EmitOptions{Pretty: true, Indent: "  "}
}

// Emit converts a Tag to compact SNBT. Parsing the result yields a tag
// equal to t, except for NaN and infinite floats and zero-length lists with
// a declared kind, which have no text form.
func Emit(t *Tag) string {
	return EmitWithOptions(t, DefaultEmitOptions())
}

// EmitNamed renders a root as `name: value`, the form used in dumps.
func EmitNamed(nt NamedTag, opts EmitOptions) string {
	e := &emitter{opts: opts}
	e.emitKey(nt.Name)
	e.sb.WriteString(": ")
	e.emit(nt.Tag, 0)
	return e.sb.String()
}

// EmitWithOptions converts a Tag with custom options.
func EmitWithOptions(t *Tag, opts EmitOptions) string {
	e := &emitter{opts: opts}
	e.emit(t, 0)
	return e.sb.String()
}

type emitter struct {
	sb   strings.Builder
	opts EmitOptions
}

func (e *emitter) emit(t *Tag, depth int) {
	if t == nil {
		e.sb.WriteString("<nil>")
		return
	}

	switch t.id {
	case TagByte:
		e.sb.WriteString(strconv.FormatInt(t.num, 10))
		e.sb.WriteByte('b')

	case TagShort:
		e.sb.WriteString(strconv.FormatInt(t.num, 10))
		e.sb.WriteByte('s')

	case TagInt:
		e.sb.WriteString(strconv.FormatInt(t.num, 10))

	case TagLong:
		e.sb.WriteString(strconv.FormatInt(t.num, 10))
		e.sb.WriteByte('L')

	case TagFloat:
		e.sb.WriteString(formatFloat(t.flt, 32))
		e.sb.WriteByte('f')

	case TagDouble:
		s := formatFloat(t.flt, 64)
		e.sb.WriteString(s)
		if !strings.Contains(s, ".") {
			e.sb.WriteByte('d')
		}

	case TagString:
		e.emitString(t.str)

	case TagByteArray:
		e.sb.WriteString("[B;")
		for i, v := range t.bytes {
			e.arraySep(i)
			e.sb.WriteString(strconv.FormatInt(int64(v), 10))
			e.sb.WriteByte('b')
		}
		e.sb.WriteByte(']')

	case TagIntArray:
		e.sb.WriteString("[I;")
		for i, v := range t.ints {
			e.arraySep(i)
			e.sb.WriteString(strconv.FormatInt(int64(v), 10))
		}
		e.sb.WriteByte(']')

	case TagLongArray:
		e.sb.WriteString("[L;")
		for i, v := range t.longs {
			e.arraySep(i)
			e.sb.WriteString(strconv.FormatInt(v, 10))
			e.sb.WriteByte('L')
		}
		e.sb.WriteByte(']')

	case TagList:
		e.emitList(t.list, depth)

	case TagCompound:
		e.emitCompound(t.compound, depth)

	default:
		e.sb.WriteString("<unsupported>")
	}
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}

func (e *emitter) arraySep(i int) {
	if i > 0 {
		e.sb.WriteByte(',')
	}
	if e.opts.Pretty {
		e.sb.WriteByte(' ')
	}
}

func (e *emitter) emitList(l *ListTag, depth int) {
	if l.Len() == 0 {
		e.sb.WriteString("[]")
		return
	}

	e.sb.WriteByte('[')
	for i, item := range l.items {
		if i > 0 {
			e.sb.WriteByte(',')
		}
		if e.opts.Pretty {
			e.sb.WriteByte('\n')
			e.writeIndent(depth + 1)
		}
		e.emit(item, depth+1)
	}
	if e.opts.Pretty {
		e.sb.WriteByte('\n')
		e.writeIndent(depth)
	}
	e.sb.WriteByte(']')
}

func (e *emitter) emitCompound(c *Compound, depth int) {
	if c.Len() == 0 {
		e.sb.WriteString("{}")
		return
	}

	entries := c.entries
	if e.opts.SortKeys {
		entries = c.sortedEntries()
	}

	e.sb.WriteByte('{')
	for i, entry := range entries {
		if i > 0 {
			e.sb.WriteByte(',')
		}
		if e.opts.Pretty {
			e.sb.WriteByte('\n')
			e.writeIndent(depth + 1)
		}
		e.emitKey(entry.Name)
		e.sb.WriteByte(':')
		if e.opts.Pretty {
			e.sb.WriteByte(' ')
		}
		e.emit(entry.Tag, depth+1)
	}
	if e.opts.Pretty {
		e.sb.WriteByte('\n')
		e.writeIndent(depth)
	}
	e.sb.WriteByte('}')
}

func (e *emitter) emitKey(s string) {
	e.emitString(s)
}

// emitString writes s bare when it lexes back as a single identifier,
// otherwise double-quoted.
func (e *emitter) emitString(s string) {
	if isBareString(s) {
		e.sb.WriteString(s)
		return
	}
	e.sb.WriteString(quoteString(s))
}

func (e *emitter) writeIndent(depth int) {
	indent := e.opts.Indent
	if indent == "" {
		indent = "  "
	}
	for i := 0; i < depth; i++ {
		e.sb.WriteString(indent)
	}
}

// isBareString reports whether s can be written without quotes: it must lex
// as exactly one identifier token with the same text. Numbers, booleans and
// anything containing other characters fail.
func isBareString(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	l := NewLexer(s)
	tok, err := l.Next()
	if err != nil || tok.Type != TokenIdent || tok.Value != s {
		return false
	}
	next, err := l.Next()
	return err == nil && next.Type == TokenEOF
}

// quoteString double-quotes s using the escapes the lexer understands.
func quoteString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case 0:
			sb.WriteString(`\0`)
		default:
			sb.WriteByte(ch)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
