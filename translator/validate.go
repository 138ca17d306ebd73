package translator

import "rsluau/luau"

// validate walks the lowered tree and rejects constructs Luau cannot
// express. Borrows and dereferences are kept through lowering so they can
// be reported here with their source position.
func validate(prog *luau.Program) error {
	v := &validator{}
	v.block(prog.Stmts)
	return v.err
}

type validator struct {
	err error
}

func (v *validator) block(stmts []luau.Stmt) {
	for _, stmt := range stmts {
		if v.err != nil {
			return
		}
		v.stmt(stmt)
	}
}

func (v *validator) stmt(stmt luau.Stmt) {
	switch s := stmt.(type) {
	case *luau.LocalStmt:
		v.exprs(s.Values)
	case *luau.AssignStmt:
		v.exprs(s.Targets)
		v.exprs(s.Values)
	case *luau.IfStmt:
		for ; s != nil; s = s.ElseIf {
			v.expr(s.Cond)
			v.block(s.Body)
			v.block(s.Else)
		}
	case *luau.ReturnStmt:
		v.exprs(s.Values)
	case *luau.ExprStmt:
		v.expr(s.Expr)
	case *luau.FuncDecl:
		v.block(s.Body)
	}
}

func (v *validator) exprs(exprs []luau.Expr) {
	for _, e := range exprs {
		v.expr(e)
	}
}

func (v *validator) expr(expr luau.Expr) {
	if v.err != nil {
		return
	}
	switch e := expr.(type) {
	case *luau.UnaryExpr:
		if e.Op == "&" || e.Op == "*" {
			v.err = &SemanticError{Pos: e.Origin, Message: "cannot reference or dereference values"}
			return
		}
		v.expr(e.Operand)
	case *luau.BinaryExpr:
		v.expr(e.Left)
		v.expr(e.Right)
	case *luau.GroupExpr:
		v.expr(e.Inner)
	case *luau.CallExpr:
		v.expr(e.Callee)
		v.exprs(e.Args)
	case *luau.NameCallExpr:
		v.expr(e.Receiver)
		v.exprs(e.Args)
	case *luau.MemberExpr:
		v.expr(e.Object)
	case *luau.IndexExpr:
		v.expr(e.Object)
		v.expr(e.Index)
	case *luau.ClosureExpr:
		v.block(e.Body)
	case *luau.TableExpr:
		for _, f := range e.Fields {
			v.expr(f.Value)
		}
	case *luau.UnknownExpr:
		v.err = &SemanticError{Pos: e.Origin, Message: "cannot translate expression"}
	}
}
