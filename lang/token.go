package lang

type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF
	IDENT
	KEYWORD
	NUMBER
	STRING
	COMMENT

	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	LT
	GT
	SEMICOLON
	COLON
	COMMA
	DOT
	EQ
	AMPERSAND
	PIPE
	CARET
	BANG
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	QUESTION
	HASH
)

var tokenNames = [...]string{
	ILLEGAL:   "Illegal",
	EOF:       "EOF",
	IDENT:     "Identifier",
	KEYWORD:   "Keyword",
	NUMBER:    "Number",
	STRING:    "String",
	COMMENT:   "Comment",
	LPAREN:    "'('",
	RPAREN:    "')'",
	LBRACE:    "'{'",
	RBRACE:    "'}'",
	LBRACKET:  "'['",
	RBRACKET:  "']'",
	LT:        "'<'",
	GT:        "'>'",
	SEMICOLON: "';'",
	COLON:     "':'",
	COMMA:     "','",
	DOT:       "'.'",
	EQ:        "'='",
	AMPERSAND: "'&'",
	PIPE:      "'|'",
	CARET:     "'^'",
	BANG:      "'!'",
	PLUS:      "'+'",
	MINUS:     "'-'",
	STAR:      "'*'",
	SLASH:     "'/'",
	PERCENT:   "'%'",
	QUESTION:  "'?'",
	HASH:      "'#'",
}

func (t TokenType) String() string {
	if int(t) >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return "Unknown"
}

// Token is a single lexeme. Pos is the first column; EndColumn is one past the last.
type Token struct {
	Type      TokenType
	Literal   string
	Pos       Position
	EndColumn int
}

var punctuation = map[rune]TokenType{
	'(': LPAREN,
	')': RPAREN,
	'{': LBRACE,
	'}': RBRACE,
	'[': LBRACKET,
	']': RBRACKET,
	'<': LT,
	'>': GT,
	';': SEMICOLON,
	':': COLON,
	',': COMMA,
	'.': DOT,
	'=': EQ,
	'&': AMPERSAND,
	'|': PIPE,
	'^': CARET,
	'!': BANG,
	'+': PLUS,
	'-': MINUS,
	'*': STAR,
	'/': SLASH,
	'%': PERCENT,
	'?': QUESTION,
	'#': HASH,
}

var keywordList = []string{"let", "mut", "fn", "return", "if", "else", "enum", "match", "struct", "impl", "for", "where"}

var keywords = func() map[string]bool {
	m := make(map[string]bool, len(keywordList))
	for _, kw := range keywordList {
		m[kw] = true
	}
	return m
}()

// Keywords lists the reserved words in a stable order.
func Keywords() []string {
	out := make([]string, len(keywordList))
	copy(out, keywordList)
	return out
}

func lookupIdent(ident string) TokenType {
	if keywords[ident] {
		return KEYWORD
	}
	return IDENT
}
