package translator

import (
	"fmt"

	"rsluau/bindings"
	"rsluau/lang"
	"rsluau/luau"
)

// Config switches optional lowering behavior. The JSON keys match the
// configuration file read by the CLI.
type Config struct {
	UseRobloxBindings bool `json:"useRobloxBindings"`
	FoldConstants     bool `json:"foldConstants"`
	UseLuauBindings   bool `json:"useLuauBindings"`
	UseMainFuncExport bool `json:"useMainFuncExport"`
}

// DefaultConfig enables binding substitution and nothing else.
func DefaultConfig() Config {
	return Config{UseLuauBindings: true}
}

// SemanticError is a fatal lowering error. Pos is zero for errors that
// concern the whole program, such as a missing main function.
type SemanticError struct {
	Pos     lang.Position
	Message string
}

func (e *SemanticError) Error() string {
	if e.Pos.Line == 0 {
		return "semantic error: " + e.Message
	}
	return fmt.Sprintf("semantic error at %s: %s", e.Pos, e.Message)
}

// Translate lowers a parsed program into a Luau tree. A nil table means
// bindings.Default(). The first error aborts the translation and no
// partial tree is returned.
func Translate(prog *lang.Program, cfg Config, b *bindings.Table) (*luau.Program, error) {
	if b == nil {
		b = bindings.Default()
	}
	tr := &translator{cfg: cfg, bindings: b}
	out := &luau.Program{Stmts: tr.lowerBlock(prog.Stmts, scopeTop)}
	if tr.err != nil {
		return nil, tr.err
	}
	if cfg.UseMainFuncExport {
		if !hasMain(prog) {
			return nil, &SemanticError{Message: "main export is enabled but no top-level fn main is declared"}
		}
		out.Stmts = append(out.Stmts, &luau.ExprStmt{Expr: &luau.CallExpr{Callee: &luau.IdentExpr{Name: "main"}, Args: []luau.Expr{}}})
	}
	if err := validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

func hasMain(prog *lang.Program) bool {
	for _, stmt := range prog.Stmts {
		if fn, ok := stmt.(*lang.FuncDecl); ok && fn.Def.Name == "main" {
			return true
		}
	}
	return false
}

// Result is the output of Compile. Diagnostics holds the non-fatal lexer
// findings and is filled in even when compilation fails.
type Result struct {
	Luau        string
	Diagnostics []lang.Diagnostic
}

// Compile runs the whole pipeline with the default binding table:
// tokenize, parse, lower, write. On error the returned Result carries the
// diagnostics but no Luau text.
func Compile(source string, cfg Config) (*Result, error) {
	tokens, diags := lang.Tokenize(source)
	res := &Result{Diagnostics: diags}
	prog, err := lang.ParseTokens(tokens)
	if err != nil {
		return res, err
	}
	out, err := Translate(prog, cfg, bindings.Default())
	if err != nil {
		return res, err
	}
	res.Luau = luau.Write(out)
	return res, nil
}
