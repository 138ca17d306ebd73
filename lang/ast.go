package lang

import "fmt"

// Position tracks a 1-based line and column inside the source file.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

type DiagKind int

const (
	LexIllegalChar DiagKind = iota
	LexMalformedNumber
	LexUnterminatedString
)

// Diagnostic captures a non-fatal lexer issue tied to a source position.
type Diagnostic struct {
	Kind    DiagKind
	Message string
	Pos     Position
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Pos, d.Message)
}

// Program is the root node for a source file.
type Program struct {
	Stmts []Stmt
}

// Chunk is a brace-delimited statement list.
type Chunk struct {
	Stmts []Stmt
	pos   Position
}

func (c *Chunk) Pos() Position { return c.pos }

// TypeDef is either a named type with generic arguments or a tuple type.
// Build one with NamedType or TupleType; the two shapes never mix.
type TypeDef struct {
	Name        *IdentExpr
	GenericArgs []*TypeDef
	TupleArgs   []*TypeDef
	pos         Position
}

func NamedType(name *IdentExpr, args []*TypeDef) *TypeDef {
	return &TypeDef{Name: name, GenericArgs: args, pos: name.pos}
}

func TupleType(args []*TypeDef, pos Position) *TypeDef {
	if args == nil {
		args = []*TypeDef{}
	}
	return &TypeDef{TupleArgs: args, pos: pos}
}

func (t *TypeDef) IsTuple() bool { return t.Name == nil }
func (t *TypeDef) Pos() Position { return t.pos }

type VarDef struct {
	Name string
	Type *TypeDef
	pos  Position
}

func (v *VarDef) Pos() Position { return v.pos }

type FuncDef struct {
	Name       string
	Params     []*VarDef
	ReturnType *TypeDef
	pos        Position
}

func (f *FuncDef) Pos() Position { return f.pos }

type Stmt interface {
	stmtNode()
	Pos() Position
}

// LetStmt declares new locals: `let [mut] name[: T] = value;`.
type LetStmt struct {
	Locals  []*VarDef
	Values  []Expr
	Mutable bool
	pos     Position
}

func (s *LetStmt) stmtNode()     {}
func (s *LetStmt) Pos() Position { return s.pos }

// AssignStmt rebinds an existing local: `name = value;`.
type AssignStmt struct {
	Target *VarDef
	Value  Expr
	pos    Position
}

func (s *AssignStmt) stmtNode()     {}
func (s *AssignStmt) Pos() Position { return s.pos }

type IfStmt struct {
	Cond   Expr
	Then   *Chunk
	ElseIf *IfStmt
	Else   *Chunk
	pos    Position
}

func (s *IfStmt) stmtNode()     {}
func (s *IfStmt) Pos() Position { return s.pos }

// ReturnStmt is Implicit when it came from a trailing expression without `;`.
type ReturnStmt struct {
	Implicit bool
	Values   []Expr
	pos      Position
}

func (s *ReturnStmt) stmtNode()     {}
func (s *ReturnStmt) Pos() Position { return s.pos }

type ExprStmt struct {
	Expr Expr
	pos  Position
}

func (s *ExprStmt) stmtNode()     {}
func (s *ExprStmt) Pos() Position { return s.pos }

type FuncDecl struct {
	Def  *FuncDef
	Body *Chunk
	pos  Position
}

func (s *FuncDecl) stmtNode()     {}
func (s *FuncDecl) Pos() Position { return s.pos }

type EnumDecl struct {
	Name    string
	Members []*IdentExpr
	pos     Position
}

func (s *EnumDecl) stmtNode()     {}
func (s *EnumDecl) Pos() Position { return s.pos }

// CommentStmt is a line comment standing where a statement could start.
type CommentStmt struct {
	Text string
	pos  Position
}

func (s *CommentStmt) stmtNode()     {}
func (s *CommentStmt) Pos() Position { return s.pos }

type Expr interface {
	exprNode()
	Pos() Position
}

type NumberExpr struct {
	Value string
	pos   Position
}

func (e *NumberExpr) exprNode()     {}
func (e *NumberExpr) Pos() Position { return e.pos }

type StringExpr struct {
	Value string
	pos   Position
}

func (e *StringExpr) exprNode()     {}
func (e *StringExpr) Pos() Position { return e.pos }

type IdentExpr struct {
	Name string
	pos  Position
}

func (e *IdentExpr) exprNode()     {}
func (e *IdentExpr) Pos() Position { return e.pos }

// BinaryExpr holds the operator spelling, including assembled compound
// operators such as "&&", "<<" and "..".
type BinaryExpr struct {
	Left  Expr
	Op    string
	Right Expr
	pos   Position
}

func (e *BinaryExpr) exprNode()     {}
func (e *BinaryExpr) Pos() Position { return e.pos }

type UnaryExpr struct {
	Op      string
	Operand Expr
	pos     Position
}

func (e *UnaryExpr) exprNode()     {}
func (e *UnaryExpr) Pos() Position { return e.pos }

type GroupExpr struct {
	Inner Expr
	pos   Position
}

func (e *GroupExpr) exprNode()     {}
func (e *GroupExpr) Pos() Position { return e.pos }

type CallExpr struct {
	Callee Expr
	Args   []Expr
	pos    Position
}

func (e *CallExpr) exprNode()     {}
func (e *CallExpr) Pos() Position { return e.pos }

type ArrayExpr struct {
	Elements []Expr
	pos      Position
}

func (e *ArrayExpr) exprNode()     {}
func (e *ArrayExpr) Pos() Position { return e.pos }

type MatchCase struct {
	Pattern Expr
	Body    *Chunk
}

// IsWildcard reports whether the arm is the catch-all `_`.
func (c *MatchCase) IsWildcard() bool {
	id, ok := c.Pattern.(*IdentExpr)
	return ok && id.Name == "_"
}

type MatchExpr struct {
	Scrutinee Expr
	Cases     []*MatchCase
	pos       Position
}

func (e *MatchExpr) exprNode()     {}
func (e *MatchExpr) Pos() Position { return e.pos }

// MemberExpr is dot access: `object.property`.
type MemberExpr struct {
	Object   Expr
	Property string
	pos      Position
}

func (e *MemberExpr) exprNode()     {}
func (e *MemberExpr) Pos() Position { return e.pos }

// IndexExpr is bracket access: `object[index]`.
type IndexExpr struct {
	Object Expr
	Index  Expr
	pos    Position
}

func (e *IndexExpr) exprNode()     {}
func (e *IndexExpr) Pos() Position { return e.pos }

// PathExpr is double-colon access: `object::property`.
type PathExpr struct {
	Object   Expr
	Property string
	pos      Position
}

func (e *PathExpr) exprNode()     {}
func (e *PathExpr) Pos() Position { return e.pos }

type ClosureExpr struct {
	Params []*VarDef
	Body   *Chunk
	pos    Position
}

func (e *ClosureExpr) exprNode()     {}
func (e *ClosureExpr) Pos() Position { return e.pos }

// UnknownExpr stands in for an expression that failed to parse.
type UnknownExpr struct {
	pos Position
}

func (e *UnknownExpr) exprNode()     {}
func (e *UnknownExpr) Pos() Position { return e.pos }
