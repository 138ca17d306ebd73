package bindings

import (
	"sort"
	"testing"
)

func TestDefaultLookups(t *testing.T) {
	b := Default()
	tests := []struct {
		name   string
		lookup func(string) (string, bool)
		key    string
		want   string
	}{
		{"func println", b.Func, "println", "print"},
		{"func panic", b.Func, "panic", "error"},
		{"func vec", b.Func, "vec", "table.clone"},
		{"string to_string", b.StringMethod, "to_string", "tostring"},
		{"string len", b.StringMethod, "len", "string.len"},
		{"string repeat", b.StringMethod, "repeat", "string.rep"},
		{"type i32", b.Type, "i32", "number"},
		{"type usize", b.Type, "usize", "number"},
		{"type String", b.Type, "String", "string"},
		{"type bool", b.Type, "bool", "boolean"},
		{"op &", b.Operator, "&", BitAnd},
		{"op >>", b.Operator, ">>", RightShift},
		{"op ..", b.Operator, "..", Range},
	}
	for _, tt := range tests {
		got, ok := tt.lookup(tt.key)
		if !ok || got != tt.want {
			t.Errorf("%s: got %q (found=%v), want %q", tt.name, got, ok, tt.want)
		}
	}
}

func TestMissingEntries(t *testing.T) {
	b := Default()
	if _, ok := b.Func("my_function"); ok {
		t.Error("unknown function should not be bound")
	}
	if _, ok := b.StringMethod("chars"); ok {
		t.Error("unknown string method should not be bound")
	}
	if _, ok := b.Type("MyStruct"); ok {
		t.Error("user types should pass through unmapped")
	}
	for _, op := range []string{"&&", "||", "+", "=="} {
		if _, ok := b.Operator(op); ok {
			t.Errorf("operator %q has a native spelling and should not be bound", op)
		}
	}
}

func TestSources(t *testing.T) {
	got := Default().Sources()
	if !sort.StringsAreSorted(got) {
		t.Fatalf("Sources not sorted: %v", got)
	}
	seen := map[string]bool{}
	for _, name := range got {
		if seen[name] {
			t.Fatalf("duplicate source %q", name)
		}
		seen[name] = true
	}
	for _, want := range []string{NameCall, "println", "assert", "todo"} {
		if !seen[want] {
			t.Errorf("Sources missing %q", want)
		}
	}
}

func TestTablesAreIndependent(t *testing.T) {
	a, b := Default(), Default()
	a.funcs["println"] = "warn"
	if got, _ := b.Func("println"); got != "print" {
		t.Fatalf("tables share state: got %q", got)
	}
}
