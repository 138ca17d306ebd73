package lang

// Parse tokenizes and parses source. Lexer diagnostics are returned even when
// parsing fails; on failure the program is nil.
func Parse(source string) (*Program, []Diagnostic, error) {
	tokens, diags := Tokenize(source)
	prog, err := ParseTokens(tokens)
	return prog, diags, err
}

// ParseTokens builds a Program from a token stream. The first syntax error
// aborts the parse; no partial program is returned.
func ParseTokens(tokens []Token) (*Program, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != EOF {
		end := Token{Type: EOF, Pos: Position{Line: 1, Column: 1}}
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1]
			end.Pos = Position{Line: last.Pos.Line, Column: last.EndColumn}
		}
		end.EndColumn = end.Pos.Column
		tokens = append(tokens[:len(tokens):len(tokens)], end)
	}

	p := &parser{tokens: tokens}
	prog := p.parseProgram()
	if p.err != nil {
		return nil, p.err
	}
	return prog, nil
}

type parser struct {
	tokens []Token
	pos    int
	err    error
}

func (p *parser) parseProgram() *Program {
	prog := &Program{}
	for !p.failed() {
		if c := p.comment(); c != nil {
			prog.Stmts = append(prog.Stmts, c)
			continue
		}
		if p.isAtEnd() {
			break
		}
		if p.match(SEMICOLON) {
			continue
		}
		start := p.pos
		if stmt := p.parseStmt(true); stmt != nil {
			prog.Stmts = append(prog.Stmts, stmt)
		}
		p.ensureProgress(start, "program")
	}
	return prog
}

func (p *parser) parseChunk() *Chunk {
	open := p.expect(LBRACE)
	chunk := &Chunk{pos: open.Pos}
	for !p.failed() {
		if c := p.comment(); c != nil {
			chunk.Stmts = append(chunk.Stmts, c)
			continue
		}
		if p.check(RBRACE) || p.isAtEnd() {
			break
		}
		if p.match(SEMICOLON) {
			continue
		}
		start := p.pos
		if stmt := p.parseStmt(false); stmt != nil {
			chunk.Stmts = append(chunk.Stmts, stmt)
		}
		p.ensureProgress(start, "block")
	}
	p.expect(RBRACE)
	return chunk
}

func (p *parser) ensureProgress(start int, context string) {
	if !p.failed() && p.pos == start {
		p.err = &ProgressError{Pos: p.peek().Pos, Context: context}
	}
}

// comment consumes a comment token sitting directly under the cursor.
func (p *parser) comment() *CommentStmt {
	if p.pos >= len(p.tokens) || p.tokens[p.pos].Type != COMMENT {
		return nil
	}
	tok := p.tokens[p.pos]
	p.pos++
	return &CommentStmt{Text: tok.Literal, pos: tok.Pos}
}

func (p *parser) parseStmt(topLevel bool) Stmt {
	tok := p.peek()
	if tok.Type == IDENT && tok.Literal == "pub" {
		if next := p.peekN(1); next.Type == KEYWORD && (next.Literal == "fn" || next.Literal == "enum") {
			p.advance()
			tok = p.peek()
		}
	}

	if tok.Type == KEYWORD {
		switch tok.Literal {
		case "let":
			return p.parseLet()
		case "if":
			return p.parseIf()
		case "return":
			return p.parseReturn(true)
		case "enum":
			return p.parseEnum()
		case "fn":
			return p.parseFunc()
		}
	}
	if tok.Type == IDENT && p.assignAt(1) {
		return p.parseReassign(true)
	}
	return p.parseExprStmt(topLevel)
}

func (p *parser) parseLet() *LetStmt {
	kw := p.advance()
	mutable := p.matchKeyword("mut")
	name := p.expect(IDENT)
	local := &VarDef{Name: name.Literal, pos: name.Pos}
	if p.match(COLON) {
		local.Type = p.parseType()
	}
	p.expect(EQ)
	value := p.parseExpression()
	p.expect(SEMICOLON)
	return &LetStmt{
		Locals:  []*VarDef{local},
		Values:  []Expr{value},
		Mutable: mutable,
		pos:     kw.Pos,
	}
}

func (p *parser) parseReassign(terminated bool) *AssignStmt {
	name := p.advance()
	p.expect(EQ)
	value := p.parseExpression()
	if terminated {
		p.expect(SEMICOLON)
	}
	return &AssignStmt{
		Target: &VarDef{Name: name.Literal, pos: name.Pos},
		Value:  value,
		pos:    name.Pos,
	}
}

func (p *parser) parseIf() *IfStmt {
	kw := p.advance()
	cond := p.parseExpression()
	stmt := &IfStmt{Cond: cond, pos: kw.Pos}
	stmt.Then = p.parseChunk()
	if p.checkKeyword("else") {
		if next := p.peekN(1); next.Type == KEYWORD && next.Literal == "if" {
			p.advance()
			stmt.ElseIf = p.parseIf()
		} else {
			p.advance()
			stmt.Else = p.parseChunk()
		}
	}
	return stmt
}

func (p *parser) parseReturn(terminated bool) *ReturnStmt {
	kw := p.advance()
	stmt := &ReturnStmt{pos: kw.Pos}
	if !p.check(SEMICOLON) && !p.check(RBRACE) && !p.check(COMMA) && !p.isAtEnd() {
		stmt.Values = append(stmt.Values, p.parseExpression())
	}
	if terminated && !p.match(SEMICOLON) && !p.check(RBRACE) && !p.isAtEnd() {
		p.expect(SEMICOLON)
	}
	return stmt
}

func (p *parser) parseEnum() *EnumDecl {
	p.advance()
	name := p.expect(IDENT)
	decl := &EnumDecl{Name: name.Literal, pos: name.Pos}
	p.expect(LBRACE)
	for !p.check(RBRACE) && !p.failed() {
		member := p.expect(IDENT)
		decl.Members = append(decl.Members, &IdentExpr{Name: member.Literal, pos: member.Pos})
		if !p.match(COMMA) {
			break
		}
	}
	p.expect(RBRACE)
	return decl
}

func (p *parser) parseFunc() *FuncDecl {
	kw := p.advance()
	name := p.expect(IDENT)
	def := &FuncDef{Name: name.Literal, pos: name.Pos}
	if p.check(LT) {
		p.parseGenericParams()
	}
	p.expect(LPAREN)
	for !p.check(RPAREN) && !p.failed() {
		def.Params = append(def.Params, p.parseParam(true))
		if !p.match(COMMA) {
			break
		}
	}
	p.expect(RPAREN)
	if p.matchArrow() {
		def.ReturnType = p.parseType()
	}
	body := p.parseChunk()
	return &FuncDecl{Def: def, Body: body, pos: kw.Pos}
}

// parseParam reads `name: T`, `mut name: T`, `self`, `&self` or `&mut self`.
func (p *parser) parseParam(typed bool) *VarDef {
	p.match(AMPERSAND)
	p.matchKeyword("mut")
	name := p.expect(IDENT)
	param := &VarDef{Name: name.Literal, pos: name.Pos}
	if p.match(COLON) {
		param.Type = p.parseType()
	} else if typed && name.Literal != "self" {
		p.expect(COLON)
	}
	return param
}

// parseGenericParams consumes `<T, U: Bound + Other>`. The target has no use
// for the parameters, so they are dropped.
func (p *parser) parseGenericParams() {
	p.expect(LT)
	for !p.check(GT) && !p.failed() {
		p.expect(IDENT)
		if p.match(COLON) {
			p.parseType()
			for p.match(PLUS) {
				p.parseType()
			}
		}
		if !p.match(COMMA) {
			break
		}
	}
	p.expect(GT)
}

// parseType always reads `<...>` as generic arguments, one '>' token per
// closing bracket, so nested generics need no special casing.
func (p *parser) parseType() *TypeDef {
	for p.match(AMPERSAND) {
		p.matchKeyword("mut")
	}
	if p.check(LPAREN) {
		open := p.advance()
		args := []*TypeDef{}
		for !p.check(RPAREN) && !p.failed() {
			args = append(args, p.parseType())
			if !p.match(COMMA) {
				break
			}
		}
		p.expect(RPAREN)
		return TupleType(args, open.Pos)
	}

	nameTok := p.expect(IDENT)
	name := &IdentExpr{Name: nameTok.Literal, pos: nameTok.Pos}
	for p.matchPathSep() {
		seg := p.expect(IDENT)
		name.Name += "::" + seg.Literal
	}
	var args []*TypeDef
	if p.check(LT) {
		args = p.parseTypeArgs()
	}
	return NamedType(name, args)
}

func (p *parser) parseTypeArgs() []*TypeDef {
	p.expect(LT)
	args := []*TypeDef{}
	for !p.check(GT) && !p.failed() {
		args = append(args, p.parseType())
		if !p.match(COMMA) {
			break
		}
	}
	p.expect(GT)
	return args
}

func (p *parser) parseExprStmt(topLevel bool) Stmt {
	expr := p.parseExpression()
	if p.failed() {
		return nil
	}
	if p.match(SEMICOLON) {
		return &ExprStmt{Expr: expr, pos: expr.Pos()}
	}
	if !topLevel && p.check(RBRACE) {
		return &ReturnStmt{Implicit: true, Values: []Expr{expr}, pos: expr.Pos()}
	}
	if _, ok := expr.(*MatchExpr); ok || (topLevel && p.isAtEnd()) {
		return &ExprStmt{Expr: expr, pos: expr.Pos()}
	}
	p.expect(SEMICOLON)
	return nil
}

func (p *parser) parseExpression() Expr {
	return p.parseRange()
}

func (p *parser) parseRange() Expr {
	expr := p.parseLogicalOr()
	for p.doubled(DOT) {
		op := p.advance()
		p.advance()
		right := p.parseLogicalOr()
		expr = &BinaryExpr{Left: expr, Op: "..", Right: right, pos: op.Pos}
	}
	return expr
}

func (p *parser) parseLogicalOr() Expr {
	expr := p.parseLogicalAnd()
	for p.doubled(PIPE) {
		op := p.advance()
		p.advance()
		right := p.parseLogicalAnd()
		expr = &BinaryExpr{Left: expr, Op: "||", Right: right, pos: op.Pos}
	}
	return expr
}

func (p *parser) parseLogicalAnd() Expr {
	expr := p.parseEquality()
	for p.doubled(AMPERSAND) {
		op := p.advance()
		p.advance()
		right := p.parseEquality()
		expr = &BinaryExpr{Left: expr, Op: "&&", Right: right, pos: op.Pos}
	}
	return expr
}

// parseEquality also covers the relational operators, which share the
// equality level. A single '<' or '>' here is always a comparison.
func (p *parser) parseEquality() Expr {
	expr := p.parseBitOr()
	for {
		op, width := p.comparisonOp()
		if width == 0 {
			return expr
		}
		tok := p.advance()
		if width == 2 {
			p.advance()
		}
		right := p.parseBitOr()
		expr = &BinaryExpr{Left: expr, Op: op, Right: right, pos: tok.Pos}
	}
}

func (p *parser) comparisonOp() (string, int) {
	if p.failed() {
		return "", 0
	}
	first := p.peek().Type
	second := p.peekN(1).Type
	joined := p.joined(0)
	switch first {
	case EQ:
		if joined && second == EQ {
			return "==", 2
		}
	case BANG:
		if joined && second == EQ {
			return "!=", 2
		}
	case LT, GT:
		if joined && second == EQ {
			return p.peek().Literal + "=", 2
		}
		if joined && second == first {
			return "", 0
		}
		return p.peek().Literal, 1
	}
	return "", 0
}

func (p *parser) parseBitOr() Expr {
	expr := p.parseBitXor()
	for p.check(PIPE) && !p.doubled(PIPE) {
		op := p.advance()
		right := p.parseBitXor()
		expr = &BinaryExpr{Left: expr, Op: "|", Right: right, pos: op.Pos}
	}
	return expr
}

func (p *parser) parseBitXor() Expr {
	expr := p.parseBitAnd()
	for p.check(CARET) {
		op := p.advance()
		right := p.parseBitAnd()
		expr = &BinaryExpr{Left: expr, Op: "^", Right: right, pos: op.Pos}
	}
	return expr
}

func (p *parser) parseBitAnd() Expr {
	expr := p.parseShift()
	for p.check(AMPERSAND) && !p.doubled(AMPERSAND) {
		op := p.advance()
		right := p.parseShift()
		expr = &BinaryExpr{Left: expr, Op: "&", Right: right, pos: op.Pos}
	}
	return expr
}

func (p *parser) parseShift() Expr {
	expr := p.parseAdditive()
	for p.doubled(LT) || p.doubled(GT) {
		op := p.advance()
		p.advance()
		right := p.parseAdditive()
		expr = &BinaryExpr{Left: expr, Op: op.Literal + op.Literal, Right: right, pos: op.Pos}
	}
	return expr
}

func (p *parser) parseAdditive() Expr {
	expr := p.parseMultiplicative()
	for p.check(PLUS) || p.check(MINUS) {
		op := p.advance()
		right := p.parseMultiplicative()
		expr = &BinaryExpr{Left: expr, Op: op.Literal, Right: right, pos: op.Pos}
	}
	return expr
}

func (p *parser) parseMultiplicative() Expr {
	expr := p.parseUnary()
	for p.check(STAR) || p.check(SLASH) || p.check(PERCENT) {
		op := p.advance()
		right := p.parseUnary()
		expr = &BinaryExpr{Left: expr, Op: op.Literal, Right: right, pos: op.Pos}
	}
	return expr
}

func (p *parser) parseUnary() Expr {
	if p.check(MINUS) || p.check(AMPERSAND) || p.check(STAR) || p.check(PLUS) || p.check(BANG) {
		op := p.advance()
		if op.Type == AMPERSAND {
			p.matchKeyword("mut")
		}
		operand := p.parseUnary()
		return &UnaryExpr{Op: op.Literal, Operand: operand, pos: op.Pos}
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() Expr {
	expr := p.parsePrimary()
	for !p.failed() {
		switch {
		case p.check(DOT) && !p.doubled(DOT):
			p.advance()
			prop := p.expect(IDENT)
			expr = &MemberExpr{Object: expr, Property: prop.Literal, pos: prop.Pos}
		case p.check(LBRACKET):
			open := p.advance()
			index := p.parseExpression()
			p.expect(RBRACKET)
			expr = &IndexExpr{Object: expr, Index: index, pos: open.Pos}
		case p.check(LPAREN):
			open := p.peek()
			args := p.parseArgs()
			expr = &CallExpr{Callee: expr, Args: args, pos: open.Pos}
		case p.matchPathSep():
			if p.check(LT) {
				// turbofish: `Vec::<u8>::new()`
				p.parseTypeArgs()
				continue
			}
			prop := p.expect(IDENT)
			expr = &PathExpr{Object: expr, Property: prop.Literal, pos: prop.Pos}
		case p.check(BANG) && isMacroName(expr) && (p.peekN(1).Type == LPAREN || p.peekN(1).Type == LBRACKET):
			p.advance()
			if p.check(LBRACKET) {
				arr := p.parseArray()
				expr = &CallExpr{Callee: expr, Args: []Expr{arr}, pos: arr.Pos()}
			}
		default:
			return expr
		}
	}
	return expr
}

// isMacroName reports whether a trailing '!' after expr marks a macro call.
func isMacroName(expr Expr) bool {
	switch expr.(type) {
	case *IdentExpr, *PathExpr:
		return true
	}
	return false
}

func (p *parser) parseArgs() []Expr {
	p.expect(LPAREN)
	args := []Expr{}
	for !p.check(RPAREN) && !p.failed() {
		args = append(args, p.parseExpression())
		if !p.match(COMMA) {
			break
		}
	}
	p.expect(RPAREN)
	return args
}

func (p *parser) parsePrimary() Expr {
	tok := p.peek()
	switch tok.Type {
	case NUMBER:
		p.advance()
		return &NumberExpr{Value: tok.Literal, pos: tok.Pos}
	case STRING:
		p.advance()
		return &StringExpr{Value: tok.Literal, pos: tok.Pos}
	case IDENT:
		if tok.Literal == "move" && p.peekN(1).Type == PIPE {
			p.advance()
			return p.parseClosure()
		}
		p.advance()
		return &IdentExpr{Name: tok.Literal, pos: tok.Pos}
	case LPAREN:
		p.advance()
		inner := p.parseExpression()
		p.expect(RPAREN)
		return &GroupExpr{Inner: inner, pos: tok.Pos}
	case LBRACKET:
		return p.parseArray()
	case PIPE:
		return p.parseClosure()
	case KEYWORD:
		if tok.Literal == "match" {
			return p.parseMatch()
		}
	}
	p.fail("expression")
	return &UnknownExpr{pos: tok.Pos}
}

func (p *parser) parseArray() *ArrayExpr {
	open := p.expect(LBRACKET)
	arr := &ArrayExpr{Elements: []Expr{}, pos: open.Pos}
	for !p.check(RBRACKET) && !p.failed() {
		arr.Elements = append(arr.Elements, p.parseExpression())
		if !p.match(COMMA) {
			break
		}
	}
	p.expect(RBRACKET)
	return arr
}

func (p *parser) parseMatch() *MatchExpr {
	kw := p.advance()
	scrutinee := p.parseExpression()
	m := &MatchExpr{Scrutinee: scrutinee, pos: kw.Pos}
	p.expect(LBRACE)
	for !p.check(RBRACE) && !p.failed() {
		start := p.pos
		pattern := p.parseExpression()
		p.expectFatArrow()
		body := p.parseArmBody()
		m.Cases = append(m.Cases, &MatchCase{Pattern: pattern, Body: body})
		p.match(COMMA)
		p.ensureProgress(start, "match arm")
	}
	p.expect(RBRACE)
	return m
}

// parseArmBody reads a brace chunk or a single statement. A bare expression
// becomes the arm's implicit return value.
func (p *parser) parseArmBody() *Chunk {
	if p.check(LBRACE) {
		return p.parseChunk()
	}
	tok := p.peek()
	chunk := &Chunk{pos: tok.Pos}
	switch {
	case tok.Type == KEYWORD && tok.Literal == "return":
		chunk.Stmts = []Stmt{p.parseReturn(false)}
	case tok.Type == IDENT && p.assignAt(1):
		chunk.Stmts = []Stmt{p.parseReassign(false)}
	default:
		expr := p.parseExpression()
		chunk.Stmts = []Stmt{&ReturnStmt{Implicit: true, Values: []Expr{expr}, pos: expr.Pos()}}
	}
	return chunk
}

func (p *parser) parseClosure() *ClosureExpr {
	open := p.expect(PIPE)
	closure := &ClosureExpr{Params: []*VarDef{}, pos: open.Pos}
	for !p.check(PIPE) && !p.failed() {
		closure.Params = append(closure.Params, p.parseParam(false))
		if !p.match(COMMA) {
			break
		}
	}
	p.expect(PIPE)

	if p.check(LBRACE) {
		closure.Body = p.parseChunk()
		return closure
	}
	expr := p.parseExpression()
	closure.Body = &Chunk{
		Stmts: []Stmt{&ReturnStmt{Implicit: true, Values: []Expr{expr}, pos: expr.Pos()}},
		pos:   expr.Pos(),
	}
	return closure
}

func (p *parser) expectFatArrow() {
	if p.check(EQ) && p.joinedWith(0, GT) {
		p.advance()
		p.advance()
		return
	}
	p.fail("'=>'")
}

func (p *parser) matchArrow() bool {
	if p.arrowAhead() {
		p.advance()
		p.advance()
		return true
	}
	return false
}

func (p *parser) arrowAhead() bool {
	return p.check(MINUS) && p.joinedWith(0, GT)
}

func (p *parser) matchPathSep() bool {
	if p.doubled(COLON) {
		p.advance()
		p.advance()
		return true
	}
	return false
}

// assignAt reports whether the n-th token ahead is a lone '=' rather than
// the start of `==` or `=>`.
func (p *parser) assignAt(n int) bool {
	if p.peekN(n).Type != EQ {
		return false
	}
	if p.joined(n) {
		next := p.peekN(n + 1).Type
		return next != EQ && next != GT
	}
	return true
}

// doubled reports whether the current token is t immediately followed by
// another t, e.g. the two halves of `&&`.
func (p *parser) doubled(t TokenType) bool {
	return p.check(t) && p.joinedWith(0, t)
}

func (p *parser) joinedWith(n int, next TokenType) bool {
	return p.peekN(n+1).Type == next && p.joined(n)
}

// joined reports whether the n-th and (n+1)-th tokens ahead touch, with no
// whitespace between them.
func (p *parser) joined(n int) bool {
	a, b := p.peekN(n), p.peekN(n+1)
	if a.Type == EOF || b.Type == EOF {
		return false
	}
	return a.Pos.Line == b.Pos.Line && a.EndColumn == b.Pos.Column
}

// index returns the raw position of the n-th significant (non-comment) token
// ahead of the cursor. It never moves past the trailing EOF.
func (p *parser) index(n int) int {
	i := p.pos
	last := len(p.tokens) - 1
	for {
		for i < last && p.tokens[i].Type == COMMENT {
			i++
		}
		if n == 0 || i >= last {
			return i
		}
		i++
		n--
	}
}

func (p *parser) peek() Token {
	return p.tokens[p.index(0)]
}

func (p *parser) peekN(n int) Token {
	return p.tokens[p.index(n)]
}

func (p *parser) advance() Token {
	i := p.index(0)
	tok := p.tokens[i]
	if tok.Type != EOF {
		i++
	}
	p.pos = i
	return tok
}

func (p *parser) check(t TokenType) bool {
	if p.failed() {
		return false
	}
	return p.peek().Type == t
}

func (p *parser) checkKeyword(kw string) bool {
	tok := p.peek()
	return !p.failed() && tok.Type == KEYWORD && tok.Literal == kw
}

func (p *parser) match(t TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) matchKeyword(kw string) bool {
	if p.checkKeyword(kw) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(t TokenType) Token {
	if p.check(t) {
		return p.advance()
	}
	p.fail(t.String())
	return Token{Type: t, Pos: p.peek().Pos}
}

// fail records the first syntax error; later calls are ignored so the
// parser can unwind without cascading errors.
func (p *parser) fail(expected string) {
	if p.err != nil {
		return
	}
	tok := p.peek()
	p.err = &SyntaxError{
		Pos:      tok.Pos,
		Expected: expected,
		Actual:   tok.Type,
		Literal:  tok.Literal,
	}
}

func (p *parser) failed() bool {
	return p.err != nil
}

func (p *parser) isAtEnd() bool {
	return p.peek().Type == EOF
}
