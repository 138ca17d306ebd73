// Package luau models the subset of Luau that rsluau emits and renders it
// back to source text.
package luau

import "rsluau/lang"

type Program struct {
	Stmts []Stmt
}

// TypeDef is a named type with generic arguments, or a tuple type when Name
// is empty.
type TypeDef struct {
	Name        string
	GenericArgs []*TypeDef
	TupleArgs   []*TypeDef
}

func (t *TypeDef) IsTuple() bool { return t.Name == "" }

type VarDef struct {
	Name string
	Type *TypeDef
}

type FuncDef struct {
	Name       string
	Params     []*VarDef
	ReturnType *TypeDef
}

type Stmt interface {
	stmtNode()
}

type LocalStmt struct {
	Locals []*VarDef
	Values []Expr
}

type AssignStmt struct {
	Targets []Expr
	Values  []Expr
}

// IfStmt chains through ElseIf; a nil Else means no else branch.
type IfStmt struct {
	Cond   Expr
	Body   []Stmt
	ElseIf *IfStmt
	Else   []Stmt
}

type ReturnStmt struct {
	Values []Expr
}

type ExprStmt struct {
	Expr Expr
}

// FuncDecl renders as `function` or, when Local is set, `local function`.
type FuncDecl struct {
	Def   *FuncDef
	Body  []Stmt
	Local bool
}

type CommentStmt struct {
	Text string
}

func (*LocalStmt) stmtNode()   {}
func (*AssignStmt) stmtNode()  {}
func (*IfStmt) stmtNode()      {}
func (*ReturnStmt) stmtNode()  {}
func (*ExprStmt) stmtNode()    {}
func (*FuncDecl) stmtNode()    {}
func (*CommentStmt) stmtNode() {}

type Expr interface {
	exprNode()
}

type NilExpr struct{}

type NumberExpr struct {
	Value string
}

type StringExpr struct {
	Value string
}

type IdentExpr struct {
	Name string
}

// BinaryExpr keeps the source spelling of Op; the writer maps "!=" to "~=".
type BinaryExpr struct {
	Left  Expr
	Op    string
	Right Expr
}

// UnaryExpr remembers where it came from so later passes can report on it.
type UnaryExpr struct {
	Op      string
	Operand Expr
	Origin  lang.Position
}

type GroupExpr struct {
	Inner Expr
}

type CallExpr struct {
	Callee Expr
	Args   []Expr
}

// NameCallExpr is a native method call: `receiver:method(args)`.
type NameCallExpr struct {
	Receiver Expr
	Method   string
	Args     []Expr
}

type ClosureExpr struct {
	Params []*VarDef
	Body   []Stmt
}

type MemberExpr struct {
	Object   Expr
	Property string
}

type IndexExpr struct {
	Object Expr
	Index  Expr
}

// Field is a table entry. An empty Name makes it a positional list entry.
type Field struct {
	Name  string
	Value Expr
}

type TableExpr struct {
	Fields []*Field
}

// IsList reports whether every field is positional.
func (t *TableExpr) IsList() bool {
	for _, f := range t.Fields {
		if f.Name != "" {
			return false
		}
	}
	return true
}

type UnknownExpr struct {
	Origin lang.Position
}

func (*NilExpr) exprNode()      {}
func (*NumberExpr) exprNode()   {}
func (*StringExpr) exprNode()   {}
func (*IdentExpr) exprNode()    {}
func (*BinaryExpr) exprNode()   {}
func (*UnaryExpr) exprNode()    {}
func (*GroupExpr) exprNode()    {}
func (*CallExpr) exprNode()     {}
func (*NameCallExpr) exprNode() {}
func (*ClosureExpr) exprNode()  {}
func (*MemberExpr) exprNode()   {}
func (*IndexExpr) exprNode()    {}
func (*TableExpr) exprNode()    {}
func (*UnknownExpr) exprNode()  {}
