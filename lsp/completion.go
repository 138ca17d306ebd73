package lsp

import (
	"rsluau/bindings"
	"rsluau/lang"
)

type CompletionItem struct {
	Label            string `json:"label"`
	Kind             int    `json:"kind,omitempty"`
	Detail           string `json:"detail,omitempty"`
	InsertText       string `json:"insertText,omitempty"`
	InsertTextFormat int    `json:"insertTextFormat,omitempty"`
}

const (
	CompletionItemKindFunction = 3
	CompletionItemKindKeyword  = 14
	InsertTextFormatPlain      = 1
)

// defaultCompletions offers the source keywords followed by every call that
// has a Luau binding, annotated with what it becomes.
func defaultCompletions(b *bindings.Table) []CompletionItem {
	var out []CompletionItem
	for _, kw := range lang.Keywords() {
		out = append(out, CompletionItem{Label: kw, Kind: CompletionItemKindKeyword, Detail: "keyword"})
	}
	for _, name := range b.Sources() {
		item := CompletionItem{Label: name, Kind: CompletionItemKindFunction, InsertTextFormat: InsertTextFormatPlain}
		if target, ok := b.Func(name); ok {
			item.Detail = "luau: " + target
			item.InsertText = name + "!"
		} else {
			item.Detail = "native method call"
		}
		out = append(out, item)
	}
	return out
}
