package lang

import "fmt"

// SyntaxError reports an unexpected token. It is fatal for the compilation unit.
// Expected names a token kind (TokenType.String) or a grammar element such
// as "expression".
type SyntaxError struct {
	Pos      Position
	Expected string
	Actual   TokenType
	Literal  string
}

func (e *SyntaxError) Error() string {
	got := e.Actual.String()
	if e.Literal != "" && (e.Actual == IDENT || e.Actual == KEYWORD || e.Actual == NUMBER || e.Actual == STRING || e.Actual == ILLEGAL) {
		got = fmt.Sprintf("%s %q", got, e.Literal)
	}
	return fmt.Sprintf("syntax error at %s: expected %s, got %s", e.Pos, e.Expected, got)
}

// ProgressError means a parse loop made an iteration without consuming input.
// It points at a grammar defect rather than at bad source.
type ProgressError struct {
	Pos     Position
	Context string
}

func (e *ProgressError) Error() string {
	return fmt.Sprintf("internal error at %s: parser did not advance while parsing %s", e.Pos, e.Context)
}
