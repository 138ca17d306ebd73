package translator

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"rsluau/lang"
	"rsluau/luau"
)

func compileWith(t *testing.T, source string, cfg Config) string {
	t.Helper()
	res, err := Compile(source, cfg)
	if err != nil {
		t.Fatalf("compile %q: %v", source, err)
	}
	return res.Luau
}

func compile(t *testing.T, source string) string {
	t.Helper()
	return compileWith(t, source, DefaultConfig())
}

func expectLuau(t *testing.T, source, want string) {
	t.Helper()
	if got := compile(t, source); got != want {
		t.Errorf("compile %q:\n got:\n%s\nwant:\n%s", source, got, want)
	}
}

func semanticError(t *testing.T, source string, cfg Config) *SemanticError {
	t.Helper()
	res, err := Compile(source, cfg)
	if err == nil {
		t.Fatalf("compile %q: expected an error, got:\n%s", source, res.Luau)
	}
	if res.Luau != "" {
		t.Fatalf("compile %q: no output may be produced on error", source)
	}
	var semErr *SemanticError
	if !errors.As(err, &semErr) {
		t.Fatalf("compile %q: expected *SemanticError, got %T: %v", source, err, err)
	}
	return semErr
}

func TestSimpleStatements(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"let a = 1;", "local a = 1;\n"},
		{"let mut a: i32 = 1;", "local a: number = 1;\n"},
		{"let s: &str = \"x\";", "local s: string = \"x\";\n"},
		{"let n = 10u8;", "local n = 10;\n"},
		{"let n = 0o17;", "local n = 15;\n"},
		{"let a = +1;", "local a = 1;\n"},
		{"let g = (a + b) * c;", "local g = (a + b) * c;\n"},
		{"let ok = a != b && !c || d;", "local ok = a ~= b and not c or d;\n"},
		{"let c = a & b;", "local c = bit32.band(a, b);\n"},
		{"let c = a | b ^ d;", "local c = bit32.bor(a, bit32.bxor(b, d));\n"},
		{"let s = 1 << 4 >> 2;", "local s = bit32.rshift(bit32.lshift(1, 4), 2);\n"},
		{"let r = 0..10;", "local r = range(0, 10);\n"},
		{"let c = Color::Red;", "local c = Color.Red;\n"},
		{"let t = [1, 2, 3];", "local t = {1, 2, 3};\n"},
		{"let v = t[0].x;", "local v = t[0].x;\n"},
		{"let end = x.end;", "local end_ = x[\"end\"];\n"},
		{"a = a + 1;", "a = a + 1;\n"},
		{"// hi\nlet a = 1;", "-- hi\nlocal a = 1;\n"},
		{"//[[ block\nlet a = 1;", "-- [[ block\nlocal a = 1;\n"},
		{"let a = - -b;", "local a = -(-b);\n"},
		{"let a = -(-b);", "local a = -(-b);\n"},
		{"let a = 1 - -1;", "local a = 1 - -1;\n"},
		{"let f = 1.5e-3;", "local f = 1.5e-3;\n"},
	}
	for _, tt := range tests {
		expectLuau(t, tt.source, tt.want)
	}
}

func TestBitwiseLowersToCall(t *testing.T) {
	prog, _, err := lang.Parse("let c = a & b;")
	if err != nil {
		t.Fatal(err)
	}
	out, err := Translate(prog, DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	local, ok := out.Stmts[0].(*luau.LocalStmt)
	if !ok {
		t.Fatalf("expected *luau.LocalStmt, got %T", out.Stmts[0])
	}
	call, ok := local.Values[0].(*luau.CallExpr)
	if !ok {
		t.Fatalf("expected *luau.CallExpr, got %T", local.Values[0])
	}
	callee, ok := call.Callee.(*luau.MemberExpr)
	if !ok || callee.Property != "band" {
		t.Fatalf("callee: got %#v", call.Callee)
	}
	if obj, ok := callee.Object.(*luau.IdentExpr); !ok || obj.Name != "bit32" {
		t.Fatalf("callee object: got %#v", callee.Object)
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 arguments, got %d", len(call.Args))
	}
	for i, want := range []string{"a", "b"} {
		if id, ok := call.Args[i].(*luau.IdentExpr); !ok || id.Name != want {
			t.Errorf("argument %d: got %#v, want %s", i, call.Args[i], want)
		}
	}
}

func TestBindings(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`println!("hi");`, "print(\"hi\");\n"},
		{`panic!("boom");`, "error(\"boom\");\n"},
		{`let v = vec![1, 2];`, "local v = table.clone({1, 2});\n"},
		{`let n = "abc".len();`, "local n = string.len(\"abc\");\n"},
		{`let s = "ab".repeat(3);`, "local s = string.rep(\"ab\", 3);\n"},
		{`let s = name.to_string();`, "local s = name.to_string();\n"},
		{`__namecall(part, "Destroy");`, "part:Destroy();\n"},
		{`__namecall(part, SetAttribute, "k", 1);`, "part:SetAttribute(\"k\", 1);\n"},
		{`my_func(1);`, "my_func(1);\n"},
	}
	for _, tt := range tests {
		expectLuau(t, tt.source, tt.want)
	}
}

func TestBindingsDisabled(t *testing.T) {
	cfg := Config{}
	tests := []struct {
		source string
		want   string
	}{
		{`println!("hi");`, "println(\"hi\");\n"},
		{`let n = "abc".len();`, "local n = (\"abc\").len();\n"},
		{`let a: i32 = 1;`, "local a: i32 = 1;\n"},
		{`__namecall(part, "Destroy");`, "__namecall(part, \"Destroy\");\n"},
	}
	for _, tt := range tests {
		if got := compileWith(t, tt.source, cfg); got != tt.want {
			t.Errorf("compile %q:\n got  %q\n want %q", tt.source, got, tt.want)
		}
	}
	// Operators do not depend on the flag.
	if got := compileWith(t, "let c = a & b;", cfg); got != "local c = bit32.band(a, b);\n" {
		t.Errorf("bitwise lowering without bindings: got %q", got)
	}
}

func TestNameCallNeedsReceiverAndMethod(t *testing.T) {
	err := semanticError(t, "__namecall(part);", DefaultConfig())
	if !strings.Contains(err.Message, "receiver and a method name") {
		t.Errorf("message: %s", err.Message)
	}
	err = semanticError(t, "__namecall(part, 1 + 2);", DefaultConfig())
	if !strings.Contains(err.Message, "string or an identifier") {
		t.Errorf("message: %s", err.Message)
	}
}

func TestMatchLowering(t *testing.T) {
	expectLuau(t, "let r = match x { 1 => a, _ => b };", `local r = (function()
    if x == 1 then
        return a;
    else
        return b;
    end
end)();
`)
}

func TestMatchPatternsAndHoisting(t *testing.T) {
	source := `let r = match f(x) {
    1 | 2 => "low",
    3..10 => "mid",
    _ => "high",
    99 => "never",
};`
	expectLuau(t, source, `local r = (function()
    local __match = f(x);
    if __match == 1 or __match == 2 then
        return "low";
    elseif __match >= 3 and __match < 10 then
        return "mid";
    else
        return "high";
    end
end)();
`)
}

func TestMatchWithoutWildcard(t *testing.T) {
	expectLuau(t, "match n { 1 => { go(); } 2 => stop(), }", `(function()
    if n == 1 then
        go();
    elseif n == 2 then
        return stop();
    end
end)();
`)
}

func TestMatchOnlyWildcard(t *testing.T) {
	expectLuau(t, "let r = match n { _ => 0 };", `local r = (function()
    return 0;
end)();
`)
}

func TestEnumLowering(t *testing.T) {
	expectLuau(t, "enum Color { Red, Green, Blue }", `Color = {
    Red = 0,
    Green = 1,
    Blue = 2,
};
`)
	expectLuau(t, "fn f() { enum E { A } }", `function f()
    local E = {
        A = 0,
    };
end;
`)
}

func TestFunctionLowering(t *testing.T) {
	expectLuau(t, "fn add(a: i32, b: i32) -> i32 { a + b }", `function add(a: number, b: number): number
    return a + b;
end;
`)
	expectLuau(t, "fn outer() { fn inner() {} inner(); }", `function outer()
    local function inner()
    end;
    inner();
end;
`)
}

func TestTailValues(t *testing.T) {
	expectLuau(t, "fn f(x: i32) -> i32 { if x > 0 { 1 } else { 2 } }", `function f(x: number): number
    if x > 0 then
        return 1;
    else
        return 2;
    end
end;
`)
	expectLuau(t, "fn main() { if x { foo() } bar(); }", `function main()
    if x then
        foo();
    end
    bar();
end;
`)
	expectLuau(t, "fn main() { x; }", `function main()
    local _ = x;
end;
`)
}

func TestClosureLowering(t *testing.T) {
	expectLuau(t, "let f = |x| x + 1;", `local f = function(x)
    return x + 1;
end;
`)
	expectLuau(t, "let g = move |a: i32, b| { a * b };", `local g = function(a: number, b)
    return a * b;
end;
`)
}

func TestBorrowAndDerefRejected(t *testing.T) {
	sources := []string{
		"let a = &b;",
		"let a = &mut b;",
		"let a = *b;",
		"foo(bar(1, *p));",
		"let t = [1, &a];",
		"fn f() { let x = |y| &y; }",
		"let r = match x { 1 => *a, _ => 0 };",
		"if x { let y = -(*z); }",
		"fn main() { return t[&i]; }",
	}
	for _, src := range sources {
		err := semanticError(t, src, DefaultConfig())
		if err.Message != "cannot reference or dereference values" {
			t.Errorf("%q: message %q", src, err.Message)
		}
		if err.Pos.Line == 0 {
			t.Errorf("%q: error should carry a source position", src)
		}
	}
}

func TestBitwiseAndIsNotABorrow(t *testing.T) {
	expectLuau(t, "let a = b & c && d;", "local a = bit32.band(b, c) and d;\n")
}

func TestMainExport(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseMainFuncExport = true
	got := compileWith(t, "fn main() { println!(\"x\"); }", cfg)
	want := `function main()
    print("x");
end;

main();
`
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}

	err := semanticError(t, "fn helper() {}", cfg)
	if err.Pos != (lang.Position{}) || !strings.Contains(err.Error(), "main") {
		t.Errorf("missing main error: %v", err)
	}
	semanticError(t, "fn outer() { fn main() {} }", cfg)
}

func TestReservedFlagsAreInert(t *testing.T) {
	source := "enum E { A } fn main() { let x = E::A & 1; println!(x); }"
	base := compile(t, source)
	cfg := DefaultConfig()
	cfg.UseRobloxBindings = true
	cfg.FoldConstants = true
	if got := compileWith(t, source, cfg); got != base {
		t.Errorf("reserved flags changed output:\n%s\nvs\n%s", got, base)
	}
}

func TestSyntaxErrorsPropagate(t *testing.T) {
	res, err := Compile("let a 1;", DefaultConfig())
	var syntaxErr *lang.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected *lang.SyntaxError, got %T: %v", err, err)
	}
	if syntaxErr.Pos.Line != 1 || syntaxErr.Pos.Column != 7 {
		t.Errorf("position: got %v", syntaxErr.Pos)
	}
	if res == nil || res.Luau != "" {
		t.Errorf("a failed compile should return diagnostics only")
	}
}

func TestDiagnosticsAreReturned(t *testing.T) {
	res, err := Compile("let a = 12abc;", DefaultConfig())
	if err != nil {
		t.Fatalf("malformed numbers are not fatal: %v", err)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Kind != lang.LexMalformedNumber {
		t.Fatalf("diagnostics: %v", res.Diagnostics)
	}
}

func TestTranslateDoesNotReturnPartialTree(t *testing.T) {
	prog, _, err := lang.Parse("let a = 1; let b = &a;")
	if err != nil {
		t.Fatal(err)
	}
	out, err := Translate(prog, DefaultConfig(), nil)
	if err == nil || out != nil {
		t.Fatalf("expected nil tree and an error, got %v, %v", out, err)
	}
}

const sample = `// sample program
enum Shape { Circle, Square }

fn area(kind: i32, size: f64) -> f64 {
    match kind {
        Shape::Circle => 3.14 * size * size,
        Shape::Square => size * size,
        _ => 0.0,
    }
}

fn main() {
    let mut total = 0;
    total = total + area(Shape::Circle, 2.0);
    if total > 10 && total != 12 {
        println!("big", total);
    } else if total < 0 {
        panic!("negative");
    } else {
        println!("small");
    }
    let flags = 0xF0 & 0x3C | 1 << 2;
    println!(flags);
}
`

func TestDeterministicOutput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseMainFuncExport = true
	first := compileWith(t, sample, cfg)
	for i := 0; i < 5; i++ {
		if got := compileWith(t, sample, cfg); got != first {
			t.Fatalf("run %d differs:\n%s\nvs\n%s", i, got, first)
		}
	}
}

func TestConcurrentCompiles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseMainFuncExport = true
	want := compileWith(t, sample, cfg)

	var wg sync.WaitGroup
	results := make([]string, 16)
	errs := make([]error, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := Compile(sample, cfg)
			errs[i] = err
			if err == nil {
				results[i] = res.Luau
			}
		}(i)
	}
	wg.Wait()
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("goroutine %d: %v", i, errs[i])
		}
		if results[i] != want {
			t.Fatalf("goroutine %d produced different output", i)
		}
	}
}

func TestExamplePrograms(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "examples", "*", "main.rs"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Skip("no example programs found")
	}
	cfg := DefaultConfig()
	cfg.UseMainFuncExport = true
	for _, path := range paths {
		t.Run(filepath.Base(filepath.Dir(path)), func(t *testing.T) {
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			out := compileWith(t, string(data), cfg)
			if !strings.HasSuffix(out, "\nmain();\n") {
				t.Errorf("expected trailing main() call, got:\n%s", out)
			}
		})
	}
}
