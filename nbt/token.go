package nbt

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType represents the type of an SNBT lexer token.
type TokenType uint8

const (
	TokenEOF TokenType = iota

	// Structural
	TokenComma      // ,
	TokenColon      // :
	TokenArrayStart // [B; [I; [L;
	TokenLBracket   // [
	TokenRBracket   // ]
	TokenLBrace     // {
	TokenRBrace     // }

	// Literals
	TokenBool    // true, false
	TokenInteger // 5b, -3s, 42, 7L
	TokenDecimal // 1.5, 3f, 4.5d
	TokenIdent   // bare text: [A-Za-z0-9+-._]+
	TokenString  // "quoted" or 'quoted'
)

// String returns the token type name.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenComma:
		return ","
	case TokenColon:
		return ":"
	case TokenArrayStart:
		return "ARRAY"
	case TokenLBracket:
		return "["
	case TokenRBracket:
		return "]"
	case TokenLBrace:
		return "{"
	case TokenRBrace:
		return "}"
	case TokenBool:
		return "BOOL"
	case TokenInteger:
		return "INTEGER"
	case TokenDecimal:
		return "DECIMAL"
	case TokenIdent:
		return "IDENT"
	case TokenString:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// Position is a location in SNBT source. Line and Column are 1-based;
// Column counts runes. Offset is the byte offset.
type Position struct {
	Line   int
	Column int
	Offset int
}

// String returns position as "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexer token.
//
// For TokenInteger and TokenDecimal, Value holds the digits without the
// suffix and Kind the tag kind the suffix selects. For TokenArrayStart, Kind
// is the element kind (TagByte, TagInt or TagLong). For TokenString, Value
// is the unescaped text.
type Token struct {
	Type  TokenType
	Value string
	Kind  TagID
	Pos   Position
}

// String returns a debug representation of the token.
func (t Token) String() string {
	switch t.Type {
	case TokenInteger, TokenDecimal:
		return fmt.Sprintf("%s(%s %s)", t.Type, t.Value, t.Kind)
	case TokenArrayStart:
		return fmt.Sprintf("%s(%s)", t.Type, t.Kind)
	}
	if t.Value == "" {
		return t.Type.String()
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Value)
}

// TokenizeError reports SNBT text that no token rule accepts.
type TokenizeError struct {
	Message string
	Pos     Position
}

func (e *TokenizeError) Error() string {
	return fmt.Sprintf("nbt: tokenize: %s at %s", e.Message, e.Pos)
}

// Lexer tokenizes SNBT text.
type Lexer struct {
	input string
	pos   int // Current position in input
	line  int // Current line number (1-based)
	col   int // Current column number (1-based)
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input: input,
		line:  1,
		col:   1,
	}
}

// Tokenize returns all tokens from the input, ending with a TokenEOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

// Tokenize is a shorthand for NewLexer(input).Tokenize().
func Tokenize(input string) ([]Token, error) {
	return NewLexer(input).Tokenize()
}

// Next returns the next token. Token rules are tried in a fixed order and
// the first that matches wins.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()

	startPos := l.currentPos()
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: startPos}, nil
	}

	switch l.input[l.pos] {
	case ',':
		l.advanceTo(l.pos + 1)
		return Token{Type: TokenComma, Value: ",", Pos: startPos}, nil
	case ':':
		l.advanceTo(l.pos + 1)
		return Token{Type: TokenColon, Value: ":", Pos: startPos}, nil
	case '[':
		if kind, end, ok := l.matchArrayStart(); ok {
			tok := Token{Type: TokenArrayStart, Value: l.input[l.pos:end], Kind: kind, Pos: startPos}
			l.advanceTo(end)
			return tok, nil
		}
		l.advanceTo(l.pos + 1)
		return Token{Type: TokenLBracket, Value: "[", Pos: startPos}, nil
	case ']':
		l.advanceTo(l.pos + 1)
		return Token{Type: TokenRBracket, Value: "]", Pos: startPos}, nil
	case '{':
		l.advanceTo(l.pos + 1)
		return Token{Type: TokenLBrace, Value: "{", Pos: startPos}, nil
	case '}':
		l.advanceTo(l.pos + 1)
		return Token{Type: TokenRBrace, Value: "}", Pos: startPos}, nil
	}

	if value, end, ok := l.matchBool(); ok {
		l.advanceTo(end)
		return Token{Type: TokenBool, Value: value, Pos: startPos}, nil
	}

	if digits, kind, end, ok := l.matchInteger(); ok {
		l.advanceTo(end)
		return Token{Type: TokenInteger, Value: digits, Kind: kind, Pos: startPos}, nil
	}

	if digits, kind, end, ok := l.matchDecimal(); ok {
		l.advanceTo(end)
		return Token{Type: TokenDecimal, Value: digits, Kind: kind, Pos: startPos}, nil
	}

	if end := l.identRun(l.pos); end > l.pos {
		value := l.input[l.pos:end]
		l.advanceTo(end)
		return Token{Type: TokenIdent, Value: value, Pos: startPos}, nil
	}

	if ch := l.input[l.pos]; ch == '"' || ch == '\'' {
		return l.scanString(ch)
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return Token{}, &TokenizeError{Message: fmt.Sprintf("unexpected character %q", r), Pos: startPos}
}

// matchArrayStart matches '[' followed directly by a one-letter identifier
// run (b, i or l in either case) and ';'.
func (l *Lexer) matchArrayStart() (TagID, int, bool) {
	i := l.pos + 1
	end := l.identRun(i)
	if end-i != 1 || end >= len(l.input) || l.input[end] != ';' {
		return TagEnd, 0, false
	}
	switch l.input[i] {
	case 'b', 'B':
		return TagByte, end + 1, true
	case 'i', 'I':
		return TagInt, end + 1, true
	case 'l', 'L':
		return TagLong, end + 1, true
	}
	return TagEnd, 0, false
}

// matchBool matches when the C-style identifier at the cursor is exactly
// "true" or "false".
func (l *Lexer) matchBool() (string, int, bool) {
	i := l.pos
	if i >= len(l.input) || !isWordStart(l.input[i]) {
		return "", 0, false
	}
	end := i + 1
	for end < len(l.input) && isWordContinue(l.input[end]) {
		end++
	}
	switch word := l.input[i:end]; word {
	case "true", "false":
		return word, end, true
	}
	return "", 0, false
}

// matchInteger matches an optional '-', an integer without leading zeros,
// an optional b/s/l suffix and a terminator.
func (l *Lexer) matchInteger() (string, TagID, int, bool) {
	i := l.pos
	if i < len(l.input) && l.input[i] == '-' {
		i++
	}
	end, ok := l.intDigits(i)
	if !ok {
		return "", TagEnd, 0, false
	}
	digits := l.input[l.pos:end]

	kind := TagInt
	if letter, next, ok := l.suffix(end, "bsl"); ok {
		switch letter {
		case 'b':
			kind = TagByte
		case 's':
			kind = TagShort
		case 'l':
			kind = TagLong
		}
		end = next
	}
	if !l.terminated(end) {
		return "", TagEnd, 0, false
	}
	return digits, kind, end, true
}

// matchDecimal matches either int.digits with an optional d/f suffix, or an
// integer that is directly followed by a d/f suffix. Unsuffixed decimals are
// Doubles.
func (l *Lexer) matchDecimal() (string, TagID, int, bool) {
	i := l.pos
	if i < len(l.input) && l.input[i] == '-' {
		i++
	}
	intEnd, ok := l.intDigits(i)
	if !ok {
		return "", TagEnd, 0, false
	}

	numEnd := intEnd
	switch {
	case intEnd+1 < len(l.input) && l.input[intEnd] == '.' && isDigit(l.input[intEnd+1]):
		numEnd = intEnd + 1
		for numEnd < len(l.input) && isDigit(l.input[numEnd]) {
			numEnd++
		}
	default:
		if _, _, ok := l.suffix(intEnd, "df"); !ok {
			return "", TagEnd, 0, false
		}
	}
	digits := l.input[l.pos:numEnd]

	kind, end := TagDouble, numEnd
	if letter, next, ok := l.suffix(numEnd, "df"); ok {
		if letter == 'f' {
			kind = TagFloat
		}
		end = next
	}
	if !l.terminated(end) {
		return "", TagEnd, 0, false
	}
	return digits, kind, end, true
}

// intDigits matches "0" or [1-9][0-9]* at i.
func (l *Lexer) intDigits(i int) (int, bool) {
	if i >= len(l.input) || !isDigit(l.input[i]) {
		return 0, false
	}
	if l.input[i] == '0' {
		return i + 1, true
	}
	end := i + 1
	for end < len(l.input) && isDigit(l.input[end]) {
		end++
	}
	return end, true
}

// suffix matches when the identifier run at i is exactly one letter from
// letters, ignoring case. It returns the lower-case letter.
func (l *Lexer) suffix(i int, letters string) (byte, int, bool) {
	end := l.identRun(i)
	if end-i != 1 {
		return 0, 0, false
	}
	letter := toLower(l.input[i])
	if strings.IndexByte(letters, letter) < 0 {
		return 0, 0, false
	}
	return letter, end, true
}

// terminated reports whether a number may end at i: end of input, or a
// character that is neither alphanumeric nor one of _+-.
func (l *Lexer) terminated(i int) bool {
	if i >= len(l.input) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(l.input[i:])
	if unicode.IsLetter(r) || unicode.IsNumber(r) {
		return false
	}
	return !strings.ContainsRune("_+-.", r)
}

// identRun returns the end of the run of identifier characters at i.
func (l *Lexer) identRun(i int) int {
	for i < len(l.input) && isIdentChar(l.input[i]) {
		i++
	}
	return i
}

// scanString scans a quoted string delimited by quote.
func (l *Lexer) scanString(quote byte) (Token, error) {
	startPos := l.currentPos()
	l.advance() // consume opening quote

	var sb strings.Builder
	for {
		if l.pos >= len(l.input) {
			return Token{}, &TokenizeError{Message: "unterminated string", Pos: startPos}
		}

		ch := l.input[l.pos]
		if ch == quote {
			l.advance() // consume closing quote
			break
		}

		if ch == '\\' {
			l.advance()
			if l.pos >= len(l.input) {
				return Token{}, &TokenizeError{Message: "unterminated escape", Pos: l.currentPos()}
			}
			r, size := utf8.DecodeRuneInString(l.input[l.pos:])
			l.advanceTo(l.pos + size)
			switch r {
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '0':
				sb.WriteByte(0)
			default:
				sb.WriteRune(r)
			}
			continue
		}

		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if r == utf8.RuneError && size == 1 {
			return Token{}, &TokenizeError{Message: "invalid UTF-8 in string", Pos: l.currentPos()}
		}
		sb.WriteString(l.input[l.pos : l.pos+size])
		l.advanceTo(l.pos + size)
	}

	return Token{Type: TokenString, Value: sb.String(), Pos: startPos}, nil
}

// skipWhitespace skips Unicode whitespace.
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.advanceTo(l.pos + size)
	}
}

// Helper methods

func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}
	_, size := utf8.DecodeRuneInString(l.input[l.pos:])
	if l.input[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos += size
}

func (l *Lexer) advanceTo(end int) {
	for l.pos < end {
		l.advance()
	}
}

func (l *Lexer) currentPos() Position {
	return Position{Line: l.line, Column: l.col, Offset: l.pos}
}

// Character classification

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentChar(ch byte) bool {
	return isAlpha(ch) || isDigit(ch) || ch == '_' || ch == '-' || ch == '+' || ch == '.'
}

func isWordStart(ch byte) bool {
	return isAlpha(ch) || ch == '_'
}

func isWordContinue(ch byte) bool {
	return isWordStart(ch) || isDigit(ch)
}

func toLower(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + ('a' - 'A')
	}
	return ch
}

// TokenStream provides a stream interface over tokens.
type TokenStream struct {
	tokens []Token
	pos    int
}

// NewTokenStream creates a token stream from tokens.
func NewTokenStream(tokens []Token) *TokenStream {
	return &TokenStream{tokens: tokens}
}

// Peek returns the current token without advancing.
func (ts *TokenStream) Peek() Token {
	if ts.pos >= len(ts.tokens) {
		return Token{Type: TokenEOF}
	}
	return ts.tokens[ts.pos]
}

// Advance moves to the next token and returns the current one.
func (ts *TokenStream) Advance() Token {
	tok := ts.Peek()
	if ts.pos < len(ts.tokens) {
		ts.pos++
	}
	return tok
}

// Match returns true and advances if the current token matches.
func (ts *TokenStream) Match(typ TokenType) bool {
	if ts.Peek().Type == typ {
		ts.Advance()
		return true
	}
	return false
}

// AtEnd returns true if at end of stream.
func (ts *TokenStream) AtEnd() bool {
	return ts.Peek().Type == TokenEOF
}
