// Package bindings holds the static lookup data that maps source-dialect
// calls, string methods and type names onto target primitives.
//
// A Table is immutable once built: its maps are unexported and only read
// through lookup methods, so one table can serve any number of concurrent
// translations.
package bindings

import "sort"

// Primitive names for operators that have no infix spelling in the target.
const (
	BitAnd     = "bit32.band"
	BitOr      = "bit32.bor"
	BitXor     = "bit32.bxor"
	LeftShift  = "bit32.lshift"
	RightShift = "bit32.rshift"
	Range      = "range"

	// NameCall is the sentinel callee that requests native method dispatch:
	// __namecall(recv, "method", args...) becomes recv:method(args...).
	NameCall = "__namecall"
)

type Table struct {
	funcs         map[string]string
	stringMethods map[string]string
	types         map[string]string
	operators     map[string]string
}

// Default returns the Luau binding table.
func Default() *Table {
	return &Table{
		funcs: map[string]string{
			"println":     "print",
			"print":       "print",
			"panic":       "error",
			"unreachable": "error",
			"todo":        "error",
			"assert":      "assert",
			"vec":         "table.clone",
		},
		stringMethods: map[string]string{
			"to_string":    "tostring",
			"to_owned":     "tostring",
			"len":          "string.len",
			"to_uppercase": "string.upper",
			"to_lowercase": "string.lower",
			"repeat":       "string.rep",
		},
		types: map[string]string{
			"i8":     "number",
			"i16":    "number",
			"i32":    "number",
			"i64":    "number",
			"i128":   "number",
			"isize":  "number",
			"u8":     "number",
			"u16":    "number",
			"u32":    "number",
			"u64":    "number",
			"u128":   "number",
			"usize":  "number",
			"f32":    "number",
			"f64":    "number",
			"String": "string",
			"str":    "string",
			"char":   "string",
			"bool":   "boolean",
		},
		operators: map[string]string{
			"&":  BitAnd,
			"|":  BitOr,
			"^":  BitXor,
			"<<": LeftShift,
			">>": RightShift,
			"..": Range,
		},
	}
}

// Func returns the target primitive replacing a whole call to name.
func (t *Table) Func(name string) (string, bool) {
	v, ok := t.funcs[name]
	return v, ok
}

// StringMethod returns the free function replacing `"literal".method(...)`.
// The receiver becomes its first argument.
func (t *Table) StringMethod(method string) (string, bool) {
	v, ok := t.stringMethods[method]
	return v, ok
}

// Type maps a primitive source type name to its target spelling.
func (t *Table) Type(name string) (string, bool) {
	v, ok := t.types[name]
	return v, ok
}

// Operator returns the primitive call that implements a binary operator
// the target cannot express infix (bitwise operators and ranges).
func (t *Table) Operator(op string) (string, bool) {
	v, ok := t.operators[op]
	return v, ok
}

// Sources lists the source-side call names the table rewrites, including
// the namecall sentinel, sorted.
func (t *Table) Sources() []string {
	out := make([]string, 0, len(t.funcs)+1)
	out = append(out, NameCall)
	for name := range t.funcs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
