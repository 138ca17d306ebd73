package lsp

import (
	"errors"

	"rsluau/lang"
	"rsluau/translator"
)

const (
	SeverityError   = 1
	SeverityWarning = 2
)

const diagnosticSource = "rsluau"

type Diagnostic struct {
	Range    Range  `json:"range"`
	Severity int    `json:"severity,omitempty"`
	Source   string `json:"source,omitempty"`
	Message  string `json:"message"`
}

// diagnosticsFrom reports lexer findings as warnings and the fatal
// compilation error, if any, as an error.
func diagnosticsFrom(text string, diags []lang.Diagnostic, fatal error) []Diagnostic {
	out := make([]Diagnostic, 0, len(diags)+1)
	for _, d := range diags {
		out = append(out, newDiagnostic(text, d.Pos, SeverityWarning, d.Message))
	}
	if fatal != nil {
		out = append(out, newDiagnostic(text, errorPosition(fatal), SeverityError, fatal.Error()))
	}
	return out
}

func newDiagnostic(text string, pos lang.Position, severity int, msg string) Diagnostic {
	start := Position{Line: max0(pos.Line - 1), Character: utf16Column(text, pos.Line, pos.Column)}
	end := Position{Line: start.Line, Character: start.Character + 1}
	return Diagnostic{
		Range:    Range{Start: start, End: end},
		Severity: severity,
		Source:   diagnosticSource,
		Message:  msg,
	}
}

// errorPosition digs the source position out of a compilation error.
// Errors without one are pinned to the start of the file.
func errorPosition(err error) lang.Position {
	var syntaxErr *lang.SyntaxError
	var progressErr *lang.ProgressError
	var semanticErr *translator.SemanticError
	switch {
	case errors.As(err, &syntaxErr):
		return syntaxErr.Pos
	case errors.As(err, &progressErr):
		return progressErr.Pos
	case errors.As(err, &semanticErr):
		return semanticErr.Pos
	}
	return lang.Position{}
}
