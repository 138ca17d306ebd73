package lsp

import (
	"strings"
	"unicode/utf16"
)

// Position is zero-based; Character counts UTF-16 code units as LSP requires.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type TextDocumentContentChangeEvent struct {
	Range *Range `json:"range,omitempty"`
	Text  string `json:"text"`
}

// Document is the server's copy of an open .rs file.
type Document struct {
	URI     string
	Text    string
	Version int
}

type Workspace struct {
	docs map[string]*Document
}

func NewWorkspace() *Workspace {
	return &Workspace{docs: map[string]*Document{}}
}

func (w *Workspace) Open(doc Document) {
	d := doc
	w.docs[doc.URI] = &d
}

// Update applies changes in order and returns the new text. Changes for a
// document that was never opened start from empty text.
func (w *Workspace) Update(uri string, version int, changes []TextDocumentContentChangeEvent) string {
	doc, ok := w.docs[uri]
	if !ok {
		doc = &Document{URI: uri}
		w.docs[uri] = doc
	}
	for _, change := range changes {
		doc.Text = applyChange(doc.Text, change)
	}
	doc.Version = version
	return doc.Text
}

func (w *Workspace) Get(uri string) (*Document, bool) {
	doc, ok := w.docs[uri]
	return doc, ok
}

func (w *Workspace) Close(uri string) {
	delete(w.docs, uri)
}

func applyChange(text string, change TextDocumentContentChangeEvent) string {
	if change.Range == nil {
		return change.Text
	}
	start := offsetAtPosition(text, change.Range.Start)
	end := offsetAtPosition(text, change.Range.End)
	if end < start {
		return text
	}
	return text[:start] + change.Text + text[end:]
}

// offsetAtPosition converts an LSP position into a byte offset within text.
// Positions past the end of a line clamp to the line end; positions past the
// last line clamp to len(text).
func offsetAtPosition(text string, pos Position) int {
	line, units := 0, 0
	for i, r := range text {
		if line == pos.Line {
			if units >= pos.Character || r == '\n' {
				return i
			}
			units += utf16Len(r)
			continue
		}
		if r == '\n' {
			line++
		}
	}
	return len(text)
}

// utf16Column converts a 1-based rune column on a 1-based line into a
// zero-based UTF-16 character offset.
func utf16Column(text string, line, column int) int {
	lines := strings.SplitN(text, "\n", line+1)
	if line < 1 || line > len(lines) {
		return max0(column - 1)
	}
	units := 0
	for i, r := range []rune(lines[line-1]) {
		if i >= column-1 {
			break
		}
		units += utf16Len(r)
	}
	return units
}

func utf16Len(r rune) int {
	if n := len(utf16.Encode([]rune{r})); n > 0 {
		return n
	}
	return 1
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
