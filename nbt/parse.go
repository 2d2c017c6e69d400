package nbt

import (
	"fmt"
	"strconv"
)

// ParseError represents an SNBT grammar error at a token. Lexing failures
// are reported separately as *TokenizeError.
type ParseError struct {
	Message string
	Token   Token
	Pos     Position
	Err     error // underlying sentinel, if any
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("nbt: parse: %s at %s", e.Message, e.Pos)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseOptions configures the parser behavior.
type ParseOptions struct {
	MaxDepth int // nesting limit; 0 means DefaultMaxDepth
}

// Parser parses SNBT tokens into a Tag.
type Parser struct {
	stream   *TokenStream
	maxDepth int
}

// Parse parses SNBT text into a Tag. The whole input must be one value.
func Parse(input string) (*Tag, error) {
	return ParseWithOptions(input, ParseOptions{})
}

// ParseWithOptions parses with full options.
func ParseWithOptions(input string, opts ParseOptions) (*Tag, error) {
	tokens, err := NewLexer(input).Tokenize()
	if err != nil {
		return nil, err
	}
	if len(tokens) == 1 {
		return nil, &TokenizeError{Message: "no tokens in input", Pos: tokens[0].Pos}
	}
	return ParseTokens(tokens, opts)
}

// ParseTokens parses an already tokenized input.
func ParseTokens(tokens []Token, opts ParseOptions) (*Tag, error) {
	p := &Parser{
		stream:   NewTokenStream(tokens),
		maxDepth: opts.MaxDepth,
	}
	if p.maxDepth <= 0 {
		p.maxDepth = DefaultMaxDepth
	}

	t, err := p.parseTag(0)
	if err != nil {
		return nil, err
	}
	if tok := p.stream.Peek(); tok.Type != TokenEOF {
		return nil, p.errorf(tok, "unexpected %s after value", tok)
	}
	return t, nil
}

// MustParse is like Parse but panics on error.
func MustParse(input string) *Tag {
	t, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return t
}

// parseTag parses any value.
func (p *Parser) parseTag(depth int) (*Tag, error) {
	tok := p.stream.Peek()

	switch tok.Type {
	case TokenLBrace:
		return p.parseCompound(depth)

	case TokenLBracket:
		return p.parseList(depth)

	case TokenArrayStart:
		return p.parseArray()

	case TokenBool:
		p.stream.Advance()
		return Bool(tok.Value == "true"), nil

	case TokenInteger:
		p.stream.Advance()
		return p.parseInteger(tok)

	case TokenDecimal:
		p.stream.Advance()
		return p.parseDecimal(tok)

	case TokenIdent, TokenString:
		p.stream.Advance()
		return String(tok.Value), nil

	case TokenEOF:
		return nil, p.errorf(tok, "unexpected end of input")

	default:
		return nil, p.errorf(tok, "expected a value, found %s", tok)
	}
}

// parseInteger converts an integer token for the kind its suffix selects.
func (p *Parser) parseInteger(tok Token) (*Tag, error) {
	bits := 8 * tok.Kind.Width()
	v, err := strconv.ParseInt(tok.Value, 10, bits)
	if err != nil {
		return nil, p.errorf(tok, "%s out of range for %s", tok.Value, tok.Kind)
	}
	switch tok.Kind {
	case TagByte:
		return Byte(int8(v)), nil
	case TagShort:
		return Short(int16(v)), nil
	case TagInt:
		return Int(int32(v)), nil
	default:
		return Long(v), nil
	}
}

func (p *Parser) parseDecimal(tok Token) (*Tag, error) {
	if tok.Kind == TagFloat {
		v, err := strconv.ParseFloat(tok.Value, 32)
		if err != nil {
			return nil, p.errorf(tok, "%s out of range for %s", tok.Value, tok.Kind)
		}
		return Float(float32(v)), nil
	}
	v, err := strconv.ParseFloat(tok.Value, 64)
	if err != nil {
		return nil, p.errorf(tok, "%s out of range for %s", tok.Value, tok.Kind)
	}
	return Double(v), nil
}

// parseList parses [e, e, ...]. The first element fixes the element kind.
func (p *Parser) parseList(depth int) (*Tag, error) {
	open := p.stream.Advance() // consume [
	if depth >= p.maxDepth {
		return nil, p.wrap(open, ErrMaxDepth)
	}

	if p.stream.Match(TokenRBracket) {
		return List(EmptyList()), nil
	}

	first, err := p.parseTag(depth + 1)
	if err != nil {
		return nil, err
	}
	l := &ListTag{elem: first.id, items: []*Tag{first}}

	for {
		if p.stream.Match(TokenRBracket) {
			return List(l), nil
		}
		if tok := p.stream.Peek(); !p.stream.Match(TokenComma) {
			return nil, p.errorf(tok, "expected ',' or ']' in list, found %s", tok)
		}
		if p.stream.Match(TokenRBracket) {
			return List(l), nil
		}

		tok := p.stream.Peek()
		item, err := p.parseTag(depth + 1)
		if err != nil {
			return nil, err
		}
		if item.id != l.elem {
			return nil, &ParseError{
				Message: fmt.Sprintf("%s element in %s list", item.id, l.elem),
				Token:   tok,
				Pos:     tok.Pos,
				Err:     ErrHeterogeneousList,
			}
		}
		l.items = append(l.items, item)
	}
}

// parseCompound parses { key: value, ... }. Keys are identifiers or quoted
// strings; a repeated key keeps its first position and takes the last value.
func (p *Parser) parseCompound(depth int) (*Tag, error) {
	open := p.stream.Advance() // consume {
	if depth >= p.maxDepth {
		return nil, p.wrap(open, ErrMaxDepth)
	}

	c := NewCompound()
	if p.stream.Match(TokenRBrace) {
		return CompoundTag(c), nil
	}

	for {
		key := p.stream.Advance()
		if key.Type != TokenIdent && key.Type != TokenString {
			return nil, p.errorf(key, "expected compound key, found %s", key)
		}
		if tok := p.stream.Peek(); !p.stream.Match(TokenColon) {
			return nil, p.errorf(tok, "expected ':' after key %q, found %s", key.Value, tok)
		}
		v, err := p.parseTag(depth + 1)
		if err != nil {
			return nil, err
		}
		c.Set(key.Value, v)

		if p.stream.Match(TokenRBrace) {
			return CompoundTag(c), nil
		}
		if tok := p.stream.Peek(); !p.stream.Match(TokenComma) {
			return nil, p.errorf(tok, "expected ',' or '}' in compound, found %s", tok)
		}
		if p.stream.Match(TokenRBrace) {
			return CompoundTag(c), nil
		}
	}
}

// parseArray parses [B; ...], [I; ...] or [L; ...].
func (p *Parser) parseArray() (*Tag, error) {
	start := p.stream.Advance() // consume [X;

	var (
		bytes []int8
		ints  []int32
		longs []int64
	)
	for !p.stream.Match(TokenRBracket) {
		tok := p.stream.Advance()
		switch start.Kind {
		case TagByte:
			v, err := p.byteElem(tok)
			if err != nil {
				return nil, err
			}
			bytes = append(bytes, v)
		case TagInt:
			if tok.Type != TokenInteger || tok.Kind != TagInt {
				return nil, p.errorf(tok, "expected Int element in [I; array, found %s", tok)
			}
			v, err := strconv.ParseInt(tok.Value, 10, 32)
			if err != nil {
				return nil, p.errorf(tok, "%s out of range for Int", tok.Value)
			}
			ints = append(ints, int32(v))
		default:
			if tok.Type != TokenInteger || (tok.Kind != TagLong && tok.Kind != TagInt) {
				return nil, p.errorf(tok, "expected Long element in [L; array, found %s", tok)
			}
			v, err := strconv.ParseInt(tok.Value, 10, 64)
			if err != nil {
				return nil, p.errorf(tok, "%s out of range for Long", tok.Value)
			}
			longs = append(longs, v)
		}

		if p.stream.Match(TokenRBracket) {
			break
		}
		if next := p.stream.Peek(); !p.stream.Match(TokenComma) {
			return nil, p.errorf(next, "expected ',' or ']' in array, found %s", next)
		}
	}

	switch start.Kind {
	case TagByte:
		return ByteArray(nonNil(bytes)), nil
	case TagInt:
		return IntArray(nonNil(ints)), nil
	default:
		return LongArray(nonNil(longs)), nil
	}
}

// byteElem accepts a b-suffixed integer or a boolean.
func (p *Parser) byteElem(tok Token) (int8, error) {
	switch {
	case tok.Type == TokenBool:
		if tok.Value == "true" {
			return 1, nil
		}
		return 0, nil
	case tok.Type == TokenInteger && tok.Kind == TagByte:
		v, err := strconv.ParseInt(tok.Value, 10, 8)
		if err != nil {
			return 0, p.errorf(tok, "%s out of range for Byte", tok.Value)
		}
		return int8(v), nil
	default:
		return 0, p.errorf(tok, "expected Byte element in [B; array, found %s", tok)
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (p *Parser) errorf(tok Token, format string, args ...any) *ParseError {
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		Token:   tok,
		Pos:     tok.Pos,
	}
}

func (p *Parser) wrap(tok Token, err error) *ParseError {
	return &ParseError{Message: err.Error(), Token: tok, Pos: tok.Pos, Err: err}
}
