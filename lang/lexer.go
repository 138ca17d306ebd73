package lang

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const eof = -1

type Lexer struct {
	input  string
	offset int
	line   int
	col    int
	ch     rune
	diags  []Diagnostic
}

func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.read()
	return l
}

// Tokenize scans the whole input. It never fails: problems are reported as
// diagnostics and the token stream always ends with EOF.
func Tokenize(source string) ([]Token, []Diagnostic) {
	l := NewLexer(source)
	tokens := make([]Token, 0, len(source)/3+1)
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			break
		}
	}
	return tokens, l.Diagnostics()
}

// Diagnostics returns the non-fatal problems found so far.
func (l *Lexer) Diagnostics() []Diagnostic {
	return l.diags
}

func (l *Lexer) read() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	l.col++
	if l.offset >= len(l.input) {
		l.ch = eof
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.offset:])
	l.ch = r
	l.offset += w
}

func (l *Lexer) peek() rune {
	if l.offset >= len(l.input) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])
	return r
}

func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	pos := Position{Line: l.line, Column: l.col}

	switch {
	case l.ch == eof:
		return Token{Type: EOF, Pos: pos, EndColumn: pos.Column}
	case l.ch == '/' && l.peek() == '/':
		return l.token(COMMENT, l.readComment(), pos)
	case l.ch == '"' || l.ch == '\'':
		return l.token(STRING, l.readString(pos), pos)
	case isDigit(l.ch):
		// Digits win over identifiers so a leading digit never starts a name.
		return l.token(NUMBER, l.readNumber(pos), pos)
	case isLetter(l.ch):
		lit := l.readIdentifier()
		return l.token(lookupIdent(lit), lit, pos)
	}

	lit := string(l.ch)
	typ, ok := punctuation[l.ch]
	if !ok {
		typ = ILLEGAL
		l.diag(LexIllegalChar, pos, fmt.Sprintf("unexpected character %q", l.ch))
	}
	l.read()
	return l.token(typ, lit, pos)
}

func (l *Lexer) token(typ TokenType, lit string, pos Position) Token {
	end := l.col
	if l.line != pos.Line {
		end = pos.Column + utf8.RuneCountInString(lit)
	}
	return Token{Type: typ, Literal: lit, Pos: pos, EndColumn: end}
}

func (l *Lexer) diag(kind DiagKind, pos Position, msg string) {
	l.diags = append(l.diags, Diagnostic{Kind: kind, Message: msg, Pos: pos})
}

func (l *Lexer) skipWhitespace() {
	for l.ch != eof && unicode.IsSpace(l.ch) {
		l.read()
	}
}

func (l *Lexer) readComment() string {
	l.read()
	l.read()
	var b strings.Builder
	for l.ch != '\n' && l.ch != eof {
		b.WriteRune(l.ch)
		l.read()
	}
	return strings.TrimRight(b.String(), "\r")
}

func (l *Lexer) readIdentifier() string {
	var b strings.Builder
	for isLetter(l.ch) || isDigit(l.ch) {
		b.WriteRune(l.ch)
		l.read()
	}
	return b.String()
}

// readNumber consumes a permissive alphanumeric run. A dot only joins the run
// when a digit follows it, which keeps `0..10` and `1.to_string()` apart. A
// sign joins it only as a decimal exponent sign, as in `1.5e-3`.
func (l *Lexer) readNumber(pos Position) string {
	var b strings.Builder
	for {
		if isLetter(l.ch) || isDigit(l.ch) {
			b.WriteRune(l.ch)
			l.read()
			continue
		}
		if l.ch == '.' && isDigit(l.peek()) {
			b.WriteRune(l.ch)
			l.read()
			continue
		}
		if (l.ch == '-' || l.ch == '+') && isDigit(l.peek()) && exponentOpen(b.String()) {
			b.WriteRune(l.ch)
			l.read()
			continue
		}
		break
	}
	lit := b.String()
	if _, ok := numberValue(lit); !ok {
		l.diag(LexMalformedNumber, pos, fmt.Sprintf("malformed number %q", lit))
	}
	return lit
}

func (l *Lexer) readString(pos Position) string {
	quote := l.ch
	l.read()
	var b strings.Builder
	for l.ch != quote && l.ch != eof {
		b.WriteRune(l.ch)
		l.read()
	}
	if l.ch == quote {
		l.read()
	} else {
		l.diag(LexUnterminatedString, pos, "unterminated string literal")
	}
	return b.String()
}

// exponentOpen reports whether run is a decimal literal ending in an
// exponent marker that still lacks its digits.
func exponentOpen(run string) bool {
	if !strings.HasSuffix(run, "e") && !strings.HasSuffix(run, "E") {
		return false
	}
	mantissa := run[:len(run)-1]
	if mantissa == "" {
		return false
	}
	for _, ch := range mantissa {
		if !isDigit(ch) && ch != '_' && ch != '.' {
			return false
		}
	}
	return true
}

func isLetter(ch rune) bool {
	return ch == '_' || (ch != eof && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

var numberSuffixes = []string{
	"i128", "u128", "isize", "usize",
	"i64", "u64", "i32", "u32", "i16", "u16", "f32", "f64",
	"i8", "u8",
}

// NormalizeNumber turns a numeric literal into a spelling the target accepts:
// width suffixes are dropped and octal literals are rewritten in decimal.
// Malformed literals are returned unchanged.
func NormalizeNumber(lit string) string {
	s, ok := numberValue(lit)
	if !ok {
		return lit
	}
	if strings.HasPrefix(s, "0o") || strings.HasPrefix(s, "0O") {
		if v, err := strconv.ParseUint(strings.ReplaceAll(s[2:], "_", ""), 8, 64); err == nil {
			return strconv.FormatUint(v, 10)
		}
	}
	return s
}

// numberValue strips a type suffix and reports whether the rest is a valid
// integer (decimal, 0x, 0o or 0b) or decimal float.
func numberValue(lit string) (string, bool) {
	s := lit
	hex := strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")
	for _, suffix := range numberSuffixes {
		if hex && suffix[0] == 'f' {
			continue
		}
		if len(s) > len(suffix) && strings.HasSuffix(s, suffix) {
			s = strings.TrimSuffix(s, suffix)
			break
		}
	}
	s = strings.TrimRight(s, "_")
	digits := strings.ReplaceAll(s, "_", "")
	if digits == "" {
		return lit, false
	}
	if len(digits) > 2 && digits[0] == '0' && strings.ContainsRune("xXoObB", rune(digits[1])) {
		if _, err := strconv.ParseUint(digits, 0, 64); err == nil {
			return s, true
		}
		return lit, false
	}
	if _, err := strconv.ParseUint(digits, 10, 64); err == nil {
		return s, true
	}
	if strings.ContainsAny(digits, "xXoObBpP") {
		return lit, false
	}
	if _, err := strconv.ParseFloat(digits, 64); err == nil {
		return s, true
	}
	return lit, false
}
