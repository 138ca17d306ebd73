package luau

import "strings"

// Write renders a program as Luau source. Output depends only on the tree,
// so equal trees always produce identical text.
func Write(prog *Program) string {
	var sb strings.Builder
	writeBlock(&sb, prog.Stmts, 0)
	return sb.String()
}

func writeBlock(sb *strings.Builder, stmts []Stmt, indent int) {
	for i, stmt := range stmts {
		writeStmt(sb, stmt, indent)
		if _, ok := stmt.(*FuncDecl); ok && indent == 0 && i < len(stmts)-1 {
			sb.WriteString("\n")
		}
	}
}

func writeStmt(sb *strings.Builder, stmt Stmt, indent int) {
	sb.WriteString(ifIndent(indent))
	switch s := stmt.(type) {
	case *LocalStmt:
		sb.WriteString("local ")
		for i, v := range s.Locals {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeVar(sb, v)
		}
		if len(s.Values) > 0 {
			sb.WriteString(" = ")
			sb.WriteString(exprList(s.Values, indent))
		}
		sb.WriteString(";\n")
	case *AssignStmt:
		sb.WriteString(exprList(s.Targets, indent))
		sb.WriteString(" = ")
		sb.WriteString(exprList(s.Values, indent))
		sb.WriteString(";\n")
	case *ExprStmt:
		sb.WriteString(exprToString(s.Expr, indent))
		sb.WriteString(";\n")
	case *ReturnStmt:
		sb.WriteString("return")
		if len(s.Values) > 0 {
			sb.WriteString(" ")
			sb.WriteString(exprList(s.Values, indent))
		}
		sb.WriteString(";\n")
	case *IfStmt:
		writeIf(sb, s, indent)
	case *FuncDecl:
		if s.Local {
			sb.WriteString("local ")
		}
		sb.WriteString("function ")
		sb.WriteString(s.Def.Name)
		writeSignature(sb, s.Def)
		sb.WriteString("\n")
		writeBlock(sb, s.Body, indent+1)
		sb.WriteString(ifIndent(indent))
		sb.WriteString("end;\n")
	case *CommentStmt:
		sb.WriteString("--")
		// "--[" would open a block comment.
		if strings.HasPrefix(s.Text, "[") {
			sb.WriteString(" ")
		}
		sb.WriteString(s.Text)
		sb.WriteString("\n")
	}
}

func writeIf(sb *strings.Builder, s *IfStmt, indent int) {
	sb.WriteString("if ")
	for {
		sb.WriteString(exprToString(s.Cond, indent))
		sb.WriteString(" then\n")
		writeBlock(sb, s.Body, indent+1)
		if s.ElseIf == nil {
			break
		}
		s = s.ElseIf
		sb.WriteString(ifIndent(indent))
		sb.WriteString("elseif ")
	}
	if s.Else != nil {
		sb.WriteString(ifIndent(indent))
		sb.WriteString("else\n")
		writeBlock(sb, s.Else, indent+1)
	}
	sb.WriteString(ifIndent(indent))
	sb.WriteString("end\n")
}

func writeSignature(sb *strings.Builder, def *FuncDef) {
	sb.WriteString("(")
	for i, p := range def.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeVar(sb, p)
	}
	sb.WriteString(")")
	if def.ReturnType != nil {
		sb.WriteString(": ")
		sb.WriteString(TypeString(def.ReturnType))
	}
}

func writeVar(sb *strings.Builder, v *VarDef) {
	sb.WriteString(v.Name)
	if v.Type != nil {
		sb.WriteString(": ")
		sb.WriteString(TypeString(v.Type))
	}
}

// TypeString renders a type annotation: `Name<A, B>` or `(A, B)`.
func TypeString(t *TypeDef) string {
	if t.IsTuple() {
		return "(" + typeList(t.TupleArgs) + ")"
	}
	if len(t.GenericArgs) == 0 {
		return t.Name
	}
	return t.Name + "<" + typeList(t.GenericArgs) + ">"
}

func typeList(types []*TypeDef) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = TypeString(t)
	}
	return strings.Join(parts, ", ")
}

func exprList(exprs []Expr, indent int) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = exprToString(e, indent)
	}
	return strings.Join(parts, ", ")
}

func exprToString(expr Expr, indent int) string {
	switch e := expr.(type) {
	case *NilExpr:
		return "nil"
	case *NumberExpr:
		return e.Value
	case *StringExpr:
		return quote(e.Value)
	case *IdentExpr:
		return e.Name
	case *BinaryExpr:
		return exprToString(e.Left, indent) + " " + binaryOp(e.Op) + " " + exprToString(e.Right, indent)
	case *UnaryExpr:
		if e.Op == "!" {
			return "not " + exprToString(e.Operand, indent)
		}
		operand := exprToString(e.Operand, indent)
		if e.Op == "-" && strings.HasPrefix(operand, "-") {
			// "--" starts a comment.
			operand = "(" + operand + ")"
		}
		return e.Op + operand
	case *GroupExpr:
		return "(" + exprToString(e.Inner, indent) + ")"
	case *CallExpr:
		return prefix(e.Callee, indent) + "(" + exprList(e.Args, indent) + ")"
	case *NameCallExpr:
		return prefix(e.Receiver, indent) + ":" + e.Method + "(" + exprList(e.Args, indent) + ")"
	case *MemberExpr:
		return prefix(e.Object, indent) + "." + e.Property
	case *IndexExpr:
		return prefix(e.Object, indent) + "[" + exprToString(e.Index, indent) + "]"
	case *ClosureExpr:
		var sb strings.Builder
		sb.WriteString("function")
		writeSignature(&sb, &FuncDef{Params: e.Params})
		sb.WriteString("\n")
		writeBlock(&sb, e.Body, indent+1)
		sb.WriteString(ifIndent(indent))
		sb.WriteString("end")
		return sb.String()
	case *TableExpr:
		return tableToString(e, indent)
	case *UnknownExpr:
		return "--[[ unknown ]] nil"
	}
	return ""
}

// prefix renders an expression in a position that requires a prefix
// expression (callee, receiver, indexed object), parenthesizing anything
// else.
func prefix(expr Expr, indent int) string {
	switch expr.(type) {
	case *IdentExpr, *MemberExpr, *IndexExpr, *CallExpr, *NameCallExpr, *GroupExpr:
		return exprToString(expr, indent)
	}
	return "(" + exprToString(expr, indent) + ")"
}

func tableToString(t *TableExpr, indent int) string {
	if len(t.Fields) == 0 {
		return "{}"
	}
	if t.IsList() {
		values := make([]Expr, len(t.Fields))
		for i, f := range t.Fields {
			values[i] = f.Value
		}
		return "{" + exprList(values, indent) + "}"
	}
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, f := range t.Fields {
		sb.WriteString(ifIndent(indent + 1))
		if f.Name != "" {
			sb.WriteString(f.Name)
			sb.WriteString(" = ")
		}
		sb.WriteString(exprToString(f.Value, indent+1))
		sb.WriteString(",\n")
	}
	sb.WriteString(ifIndent(indent))
	sb.WriteString("}")
	return sb.String()
}

func binaryOp(op string) string {
	switch op {
	case "!=":
		return "~="
	case "&&":
		return "and"
	case "||":
		return "or"
	}
	return op
}

// quote picks double quotes unless the text contains one. Raw newlines are
// escaped since Luau quoted strings cannot span lines.
func quote(s string) string {
	s = strings.ReplaceAll(s, "\r", `\r`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func ifIndent(n int) string {
	return strings.Repeat("    ", n)
}
