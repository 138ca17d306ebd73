package translator

import (
	"fmt"
	"strings"

	"rsluau/bindings"
	"rsluau/lang"
	"rsluau/luau"
)

// blockKind says what happens to the trailing value of a block.
type blockKind int

const (
	scopeTop  blockKind = iota // program level
	scopeStmt                  // nested block whose tail value is discarded
	scopeTail                  // function, closure or match arm: the tail value is returned
)

const matchLocal = "__match"

type translator struct {
	cfg      Config
	bindings *bindings.Table
	err      error
}

func (t *translator) fail(pos lang.Position, format string, args ...interface{}) {
	if t.err == nil {
		t.err = &SemanticError{Pos: pos, Message: fmt.Sprintf(format, args...)}
	}
}

func (t *translator) lowerBlock(stmts []lang.Stmt, kind blockKind) []luau.Stmt {
	out := make([]luau.Stmt, 0, len(stmts))
	for i, stmt := range stmts {
		if t.err != nil {
			break
		}
		if s := t.lowerStmt(stmt, kind, i == len(stmts)-1); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (t *translator) lowerStmt(stmt lang.Stmt, kind blockKind, last bool) luau.Stmt {
	switch s := stmt.(type) {
	case *lang.LetStmt:
		return &luau.LocalStmt{Locals: t.lowerVars(s.Locals), Values: t.lowerExprs(s.Values)}
	case *lang.AssignStmt:
		return &luau.AssignStmt{
			Targets: []luau.Expr{&luau.IdentExpr{Name: safeName(s.Target.Name)}},
			Values:  []luau.Expr{t.lowerExpr(s.Value)},
		}
	case *lang.IfStmt:
		branch := scopeStmt
		if kind == scopeTail && last {
			branch = scopeTail
		}
		return t.lowerIf(s, branch)
	case *lang.ReturnStmt:
		if s.Implicit && !(kind == scopeTail && last) {
			// A tail value nobody receives is evaluated for its effects only.
			return t.discard(s.Values[0])
		}
		return &luau.ReturnStmt{Values: t.lowerExprs(s.Values)}
	case *lang.ExprStmt:
		return t.discard(s.Expr)
	case *lang.FuncDecl:
		return &luau.FuncDecl{
			Def:   t.lowerFuncDef(s.Def),
			Body:  t.lowerBlock(s.Body.Stmts, scopeTail),
			Local: kind != scopeTop,
		}
	case *lang.EnumDecl:
		return t.lowerEnum(s, kind == scopeTop)
	case *lang.CommentStmt:
		return &luau.CommentStmt{Text: s.Text}
	}
	t.fail(stmt.Pos(), "unsupported statement %T", stmt)
	return nil
}

func (t *translator) lowerIf(s *lang.IfStmt, kind blockKind) *luau.IfStmt {
	out := &luau.IfStmt{
		Cond: t.lowerExpr(s.Cond),
		Body: t.lowerBlock(s.Then.Stmts, kind),
	}
	switch {
	case s.ElseIf != nil:
		out.ElseIf = t.lowerIf(s.ElseIf, kind)
	case s.Else != nil:
		out.Else = t.lowerBlock(s.Else.Stmts, kind)
	}
	return out
}

// lowerEnum binds the enum name to a table of member indices. Top-level
// enums are global so functions declared earlier can see them.
func (t *translator) lowerEnum(s *lang.EnumDecl, global bool) luau.Stmt {
	table := &luau.TableExpr{Fields: make([]*luau.Field, 0, len(s.Members))}
	for i, m := range s.Members {
		table.Fields = append(table.Fields, &luau.Field{
			Name:  safeName(m.Name),
			Value: &luau.NumberExpr{Value: fmt.Sprint(i)},
		})
	}
	name := safeName(s.Name)
	if global {
		return &luau.AssignStmt{Targets: []luau.Expr{&luau.IdentExpr{Name: name}}, Values: []luau.Expr{table}}
	}
	return &luau.LocalStmt{Locals: []*luau.VarDef{{Name: name}}, Values: []luau.Expr{table}}
}

// discard turns a value into a statement. Luau only accepts calls as
// expression statements, so anything else is assigned to `_`.
func (t *translator) discard(e lang.Expr) luau.Stmt {
	v := t.lowerExpr(e)
	switch v.(type) {
	case *luau.CallExpr, *luau.NameCallExpr:
		return &luau.ExprStmt{Expr: v}
	}
	return &luau.LocalStmt{Locals: []*luau.VarDef{{Name: "_"}}, Values: []luau.Expr{v}}
}

func (t *translator) lowerFuncDef(def *lang.FuncDef) *luau.FuncDef {
	out := &luau.FuncDef{Name: safeName(def.Name), Params: t.lowerVars(def.Params)}
	if def.ReturnType != nil {
		out.ReturnType = t.lowerType(def.ReturnType)
	}
	return out
}

func (t *translator) lowerVars(vars []*lang.VarDef) []*luau.VarDef {
	out := make([]*luau.VarDef, len(vars))
	for i, v := range vars {
		out[i] = &luau.VarDef{Name: safeName(v.Name)}
		if v.Type != nil {
			out[i].Type = t.lowerType(v.Type)
		}
	}
	return out
}

func (t *translator) lowerType(td *lang.TypeDef) *luau.TypeDef {
	if td.IsTuple() {
		return &luau.TypeDef{TupleArgs: t.lowerTypes(td.TupleArgs)}
	}
	name := td.Name.Name
	if mapped, ok := t.bindings.Type(name); ok && t.cfg.UseLuauBindings {
		name = mapped
	}
	out := &luau.TypeDef{Name: strings.ReplaceAll(name, "::", ".")}
	if len(td.GenericArgs) > 0 {
		out.GenericArgs = t.lowerTypes(td.GenericArgs)
	}
	return out
}

func (t *translator) lowerTypes(types []*lang.TypeDef) []*luau.TypeDef {
	out := make([]*luau.TypeDef, len(types))
	for i, td := range types {
		out[i] = t.lowerType(td)
	}
	return out
}

func (t *translator) lowerExprs(exprs []lang.Expr) []luau.Expr {
	out := make([]luau.Expr, len(exprs))
	for i, e := range exprs {
		out[i] = t.lowerExpr(e)
	}
	return out
}

func (t *translator) lowerExpr(expr lang.Expr) luau.Expr {
	switch e := expr.(type) {
	case *lang.NumberExpr:
		return &luau.NumberExpr{Value: lang.NormalizeNumber(e.Value)}
	case *lang.StringExpr:
		return &luau.StringExpr{Value: e.Value}
	case *lang.IdentExpr:
		return &luau.IdentExpr{Name: safeName(e.Name)}
	case *lang.BinaryExpr:
		return t.lowerBinary(e)
	case *lang.UnaryExpr:
		if e.Op == "+" {
			return t.lowerExpr(e.Operand)
		}
		return &luau.UnaryExpr{Op: e.Op, Operand: t.lowerExpr(e.Operand), Origin: e.Pos()}
	case *lang.GroupExpr:
		return &luau.GroupExpr{Inner: t.lowerExpr(e.Inner)}
	case *lang.CallExpr:
		return t.lowerCall(e)
	case *lang.ArrayExpr:
		table := &luau.TableExpr{Fields: make([]*luau.Field, len(e.Elements))}
		for i, el := range e.Elements {
			table.Fields[i] = &luau.Field{Value: t.lowerExpr(el)}
		}
		return table
	case *lang.MatchExpr:
		return t.lowerMatch(e)
	case *lang.MemberExpr:
		return member(t.lowerExpr(e.Object), e.Property)
	case *lang.PathExpr:
		return member(t.lowerExpr(e.Object), e.Property)
	case *lang.IndexExpr:
		return &luau.IndexExpr{Object: t.lowerExpr(e.Object), Index: t.lowerExpr(e.Index)}
	case *lang.ClosureExpr:
		return &luau.ClosureExpr{
			Params: t.lowerVars(e.Params),
			Body:   t.lowerBlock(e.Body.Stmts, scopeTail),
		}
	}
	t.fail(expr.Pos(), "cannot translate expression")
	return &luau.UnknownExpr{Origin: expr.Pos()}
}

func (t *translator) lowerBinary(e *lang.BinaryExpr) luau.Expr {
	left := t.lowerExpr(e.Left)
	right := t.lowerExpr(e.Right)
	switch e.Op {
	case "&&":
		return &luau.BinaryExpr{Left: left, Op: "and", Right: right}
	case "||":
		return &luau.BinaryExpr{Left: left, Op: "or", Right: right}
	}
	if fn, ok := t.bindings.Operator(e.Op); ok {
		return &luau.CallExpr{Callee: qualified(fn), Args: []luau.Expr{left, right}}
	}
	return &luau.BinaryExpr{Left: left, Op: e.Op, Right: right}
}

func (t *translator) lowerCall(e *lang.CallExpr) luau.Expr {
	if t.cfg.UseLuauBindings {
		switch callee := e.Callee.(type) {
		case *lang.IdentExpr:
			if callee.Name == bindings.NameCall {
				return t.lowerNameCall(e)
			}
			if fn, ok := t.bindings.Func(callee.Name); ok {
				return &luau.CallExpr{Callee: qualified(fn), Args: t.lowerExprs(e.Args)}
			}
		case *lang.MemberExpr:
			if recv, ok := callee.Object.(*lang.StringExpr); ok {
				if fn, ok := t.bindings.StringMethod(callee.Property); ok {
					args := append([]luau.Expr{&luau.StringExpr{Value: recv.Value}}, t.lowerExprs(e.Args)...)
					return &luau.CallExpr{Callee: qualified(fn), Args: args}
				}
			}
		}
	}
	return &luau.CallExpr{Callee: t.lowerExpr(e.Callee), Args: t.lowerExprs(e.Args)}
}

// lowerNameCall rewrites __namecall(recv, "method", args...) into
// recv:method(args...).
func (t *translator) lowerNameCall(e *lang.CallExpr) luau.Expr {
	if len(e.Args) < 2 {
		t.fail(e.Pos(), "%s needs a receiver and a method name", bindings.NameCall)
		return &luau.UnknownExpr{Origin: e.Pos()}
	}
	var method string
	switch m := e.Args[1].(type) {
	case *lang.StringExpr:
		method = m.Value
	case *lang.IdentExpr:
		method = m.Name
	default:
		t.fail(m.Pos(), "%s method name must be a string or an identifier", bindings.NameCall)
		return &luau.UnknownExpr{Origin: e.Pos()}
	}
	return &luau.NameCallExpr{
		Receiver: t.lowerExpr(e.Args[0]),
		Method:   method,
		Args:     t.lowerExprs(e.Args[2:]),
	}
}

// lowerMatch builds an immediately invoked closure holding an if/elseif
// chain over the arms. The wildcard arm becomes the final else and any arm
// after it is unreachable.
func (t *translator) lowerMatch(m *lang.MatchExpr) luau.Expr {
	var body []luau.Stmt
	subject := func() luau.Expr { return t.lowerExpr(m.Scrutinee) }
	if !isTrivial(m.Scrutinee) {
		body = append(body, &luau.LocalStmt{
			Locals: []*luau.VarDef{{Name: matchLocal}},
			Values: []luau.Expr{t.lowerExpr(m.Scrutinee)},
		})
		subject = func() luau.Expr { return &luau.IdentExpr{Name: matchLocal} }
	}

	var head, tail *luau.IfStmt
	for _, c := range m.Cases {
		arm := t.lowerBlock(c.Body.Stmts, scopeTail)
		if c.IsWildcard() {
			if tail == nil {
				body = append(body, arm...)
			} else {
				tail.Else = arm
			}
			break
		}
		branch := &luau.IfStmt{Cond: t.patternCond(subject, c.Pattern), Body: arm}
		if tail == nil {
			head = branch
		} else {
			tail.ElseIf = branch
		}
		tail = branch
	}
	if head != nil {
		body = append(body, head)
	}
	return &luau.CallExpr{Callee: &luau.ClosureExpr{Params: []*luau.VarDef{}, Body: body}, Args: []luau.Expr{}}
}

// patternCond compares the scrutinee against one pattern. Alternatives
// (`a | b`) become `or` chains and `lo..hi` a half-open bounds check.
func (t *translator) patternCond(subject func() luau.Expr, pattern lang.Expr) luau.Expr {
	if bin, ok := pattern.(*lang.BinaryExpr); ok {
		switch bin.Op {
		case "|":
			return &luau.BinaryExpr{
				Left:  t.patternCond(subject, bin.Left),
				Op:    "or",
				Right: t.patternCond(subject, bin.Right),
			}
		case "..":
			return &luau.BinaryExpr{
				Left:  &luau.BinaryExpr{Left: subject(), Op: ">=", Right: t.lowerExpr(bin.Left)},
				Op:    "and",
				Right: &luau.BinaryExpr{Left: subject(), Op: "<", Right: t.lowerExpr(bin.Right)},
			}
		}
	}
	return &luau.BinaryExpr{Left: subject(), Op: "==", Right: t.lowerExpr(pattern)}
}

func isTrivial(e lang.Expr) bool {
	switch e.(type) {
	case *lang.IdentExpr, *lang.NumberExpr, *lang.StringExpr:
		return true
	}
	return false
}

// qualified turns a dotted binding name such as "bit32.band" into a member
// access chain.
func qualified(name string) luau.Expr {
	parts := strings.Split(name, ".")
	var expr luau.Expr = &luau.IdentExpr{Name: parts[0]}
	for _, p := range parts[1:] {
		expr = &luau.MemberExpr{Object: expr, Property: p}
	}
	return expr
}

// member builds `object.name`, falling back to `object["name"]` when the
// name is reserved in Luau.
func member(object luau.Expr, name string) luau.Expr {
	if luauKeywords[name] {
		return &luau.IndexExpr{Object: object, Index: &luau.StringExpr{Value: name}}
	}
	return &luau.MemberExpr{Object: object, Property: name}
}

var luauKeywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "for": true, "function": true, "if": true, "in": true,
	"local": true, "nil": true, "not": true, "or": true, "repeat": true,
	"return": true, "then": true, "until": true, "while": true,
}

// safeName renames identifiers that collide with Luau keywords.
func safeName(name string) string {
	if luauKeywords[name] {
		return name + "_"
	}
	return name
}
