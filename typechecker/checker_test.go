package typechecker

import (
	"testing"

	"github.com/pint-lang/pint/ast"
	"github.com/pint-lang/pint/lexer"
	"github.com/pint-lang/pint/parser"
	"github.com/pint-lang/pint/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkSource(t *testing.T, src string) (*ast.File, *ErrorLogger) {
	t.Helper()
	p := parser.New(lexer.New("test", src))
	file := p.ParseFile()
	require.Empty(t, p.Errors(), "parse errors")

	log := &ErrorLogger{}
	globals := NewGlobals()
	AddBuiltins(globals)
	New(globals, log).CheckFile(file)
	return file, log
}

func messages(log *ErrorLogger) []string {
	var msgs []string
	for _, err := range log.Errors() {
		msgs = append(msgs, err.Msg)
	}
	return msgs
}

func requireClean(t *testing.T, src string) *ast.File {
	t.Helper()
	file, log := checkSource(t, src)
	require.Empty(t, messages(log))
	return file
}

func requireOneError(t *testing.T, src, contains string) {
	t.Helper()
	_, log := checkSource(t, src)
	msgs := messages(log)
	require.Len(t, msgs, 1, "errors: %v", msgs)
	assert.Contains(t, msgs[0], contains)
}

func funcBody(t *testing.T, file *ast.File, name string) *ast.BlockExpr {
	t.Helper()
	for _, def := range file.Defs {
		if fd, ok := def.(*ast.FuncDef); ok && fd.Name == name {
			return fd.Body
		}
	}
	t.Fatalf("no function %s", name)
	return nil
}

func TestRefinedInitializer(t *testing.T) {
	requireClean(t, `let i: int when it >= 0 := 0;`)
	requireOneError(t, `let j: int when it >= 0 := -1;`, "cannot initialize 'j'")
	requireOneError(t, `let s: string := 1;`, "cannot initialize 's' of type 'string' with a value of type 'int'")
}

func TestNarrowingByGuard(t *testing.T) {
	src := `
let pos(x: int when it > 0) -> int { x }
let f(n: int) -> int { if n > 0 then pos(n) else 0 }
`
	file := requireClean(t, src)
	assert.Equal(t, types.Int, funcBody(t, file, "f").Type())

	ifExpr := funcBody(t, file, "f").Stats[0].(*ast.IfExpr)
	guarded := ifExpr.Cond.(*ast.BinaryExpr).Left.(*ast.VarExpr)
	assert.Equal(t, types.Int, guarded.Typ)
	narrowed := ifExpr.Then.(*ast.CallExpr).Args[0].(*ast.VarExpr)
	assert.Equal(t, "int when 0 < it", narrowed.Typ.String())

	requireOneError(t, `
let pos(x: int when it > 0) -> int { x }
let f(n: int) -> int { pos(n) }
`, "function 'pos' expected an argument of type 'int when 0 < it', got 'int'")
}

func TestNarrowingOnlyInThenBranch(t *testing.T) {
	requireOneError(t, `
let pos(x: int when it > 0) -> int { x }
let f(n: int) -> int { if n > 0 then 0 else pos(n) }
`, "function 'pos' expected an argument")
}

func TestIndexAgainstConstantBoundFails(t *testing.T) {
	requireOneError(t, `
let get(arr: int[], i: int when it >= 0 and it < 10) -> int { arr[i] }
`, "only int when it >= 0 and it < |arr| can be used as an index")
}

func TestIndexWithRefinedParameter(t *testing.T) {
	file := requireClean(t, `
let get(arr: int[], i: int when it >= 0 and it < |arr|) -> int { arr[i] }
`)
	assert.Equal(t, types.Int, funcBody(t, file, "get").Type())
}

func TestIndexNarrowedByGuard(t *testing.T) {
	requireClean(t, `
let get(arr: int[], i: int) -> int {
  if i >= 0 and i < |arr| then arr[i] else 0
}
`)
}

func TestIndexWithLiteralIsRejected(t *testing.T) {
	requireOneError(t, `let first(arr: int[]) -> int { arr[0] }`, "can be used as an index")
}

func TestAssignmentInvalidatesNarrowing(t *testing.T) {
	requireOneError(t, `
let f(n: int) -> int {
  let arr: int[] := [1, 2, 3];
  if n >= 0 and n < |arr| then {
    n := 5;
    arr[n]
  } else 0
}
`, "can be used as an index")
}

func TestShadowingInvalidatesNarrowing(t *testing.T) {
	requireOneError(t, `
let pos(x: int when it > 0) -> int { x }
let f(n: int) -> int {
  if n > 0 then {
    let n: int := 0;
    pos(n)
  } else 0
}
`, "function 'pos' expected an argument")
}

func TestLoopForgetsWhatItsBodyChanges(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"loop", `
let f(arr: int[], i: int) -> int {
  if i >= 0 and i < |arr| then { loop { printi(arr[i]); i :+= 1; } } else 0
}
`},
		{"while", `
let f(arr: int[], i: int, n: int) -> int {
  if i >= 0 and i < |arr| then { while n > 0 loop { printi(arr[i]); i :+= 1; n :-= 1; }; 0 } else 0
}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireOneError(t, tt.src, "can be used as an index")
		})
	}

	// facts the body leaves alone survive, and a while guard holds again on
	// every pass
	requireClean(t, `
let f(arr: int[], i: int) -> int {
  if i >= 0 and i < |arr| then { loop { printi(arr[i]); } } else 0
}
let g(arr: int[]) -> unit {
  let i: int := 0;
  while i >= 0 and i < |arr| loop { printi(arr[i]); i :+= 1; }
}
`)
}

func TestAssignmentWeakensCapturingTypes(t *testing.T) {
	requireOneError(t, `
let get(arr: int[], i: int when it >= 0 and it < |arr|) -> int { arr := []; arr[i] }
`, "can be used as an index")
	requireOneError(t, `
let get(arr: int[], i: int when it >= 0 and it < |arr|) -> int {
  if true then { arr := []; };
  arr[i]
}
`, "can be used as an index")
}

func TestShadowingWeakensCapturingTypes(t *testing.T) {
	requireOneError(t, `
let get(arr: int[], i: int when it >= 0 and it < |arr|) -> int { let arr: int[] := []; arr[i] }
`, "can be used as an index")

	// the outer arr is back once the block ends
	requireClean(t, `
let get(arr: int[], i: int when it >= 0 and it < |arr|) -> int { { let arr: int[] := []; }; arr[i] }
`)
}

func TestGlobalsCapturedByGlobals(t *testing.T) {
	const globals = `
let limit: int := 3;
let k: int when it <= limit := limit;
`
	requireClean(t, globals)
	requireOneError(t, globals+`let f() -> unit { limit := 0; }`,
		"cannot assign to 'limit', the type of 'k' depends on it")
	requireOneError(t, globals+`let f(limit: int) -> unit {}`,
		"'limit' hides the global that the type of 'k' depends on")
	requireOneError(t, globals+`let f() -> unit { let limit: int := 0; }`,
		"'limit' hides the global")
}

func TestCallsForgetGlobals(t *testing.T) {
	const shrink = `
let size: int := 3;
let shrink() -> unit { size := 0; }
`
	requireClean(t, shrink+`let f(k: int when it <= size) -> unit { printi(k); let j: int when it <= size := k; }`)
	requireOneError(t, shrink+`let f(k: int when it <= size) -> unit { shrink(); let j: int when it <= size := k; }`,
		"cannot initialize 'j'")
	requireOneError(t, shrink+`let f(k: int when it <= size) -> unit { loop { let j: int when it <= size := k; shrink(); } }`,
		"cannot initialize 'j'")
}

func TestSingleUnifyError(t *testing.T) {
	requireOneError(t, `let f(c: bool) -> int { if c then 1 else "x" }`,
		"failed to unify types 'int' and 'string'")
}

func TestLabeledLoops(t *testing.T) {
	file := requireClean(t, `
let f() -> int {
  outer: loop {
    inner: loop {
      break@outer 1;
    }
  }
}
`)
	assert.Equal(t, types.Int, funcBody(t, file, "f").Type())

	// an unlabeled break leaves the innermost loop
	file = requireClean(t, `
let f() -> int {
  outer: loop {
    inner: loop {
      break "s";
    };
    break@outer 1;
  }
}
`)
	outer := funcBody(t, file, "f").Stats[0].(*ast.LoopExpr)
	inner := outer.Body.(*ast.BlockExpr).Stats[0].(*ast.ExprStat).Expr.(*ast.LoopExpr)
	assert.Equal(t, "inner", inner.Label)
	assert.Equal(t, types.String, inner.Typ)
	assert.Equal(t, types.Int, outer.Typ)
}

func TestLabeledBlock(t *testing.T) {
	file := requireClean(t, `let f(c: bool) -> int { b: { if c then break@b 1; 2 } }`)
	assert.Equal(t, types.Int, funcBody(t, file, "f").Type())

	requireOneError(t, `let f() -> int { b: { break 1; } }`, "cannot anonymously break to a labeled block")
	requireOneError(t, `let f() -> int { b: { loop { continue@b; } } }`, "cannot continue the labeled block 'b'")
}

func TestJumpErrors(t *testing.T) {
	tests := []struct {
		src      string
		contains string
	}{
		{`let f() -> unit { break; }`, "cannot break here"},
		{`let f() -> unit { loop { continue 1; } }`, "continue cannot carry a value"},
		{`let f() -> unit { loop { break@nope; } }`, "no such label as 'nope'"},
		{`let f() -> int { return "x"; }`, "tried to return 'string' from a function returning 'int'"},
		{`let f() -> unit { l: loop { return@l; } }`, "return cannot target a label"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			requireOneError(t, tt.src, tt.contains)
		})
	}
}

func TestWhileLoop(t *testing.T) {
	file := requireClean(t, `
let count(arr: int[]) -> unit {
  let i: int := 0;
  while i < |arr| loop {
    i :+= 1;
  }
}
`)
	assert.Equal(t, types.Unit, funcBody(t, file, "count").Type())
	requireOneError(t, `let f() -> unit { while 1 loop {} }`, "while conditions must be booleans")
}

func TestGlobals(t *testing.T) {
	requireOneError(t, "let x: int := 1;\nlet x: int := 2;", "duplicate global 'x'")
	requireOneError(t, "let int: int := 1;", "'int' is a reserved type name")
	requireOneError(t, "let f() -> int { 1 }\nlet f() -> int { 2 }", "duplicate global 'f'")

	// functions may be used before their definition
	requireClean(t, "let f() -> int { g() }\nlet g() -> int { 1 }")
}

func TestBuiltins(t *testing.T) {
	requireClean(t, `let main() -> unit { prints("hello"); printi(readi()); printb(true); }`)
	requireOneError(t, `let main() -> unit { printi("x"); }`,
		"function 'printi' expected an argument of type 'int', got 'string'")
	requireOneError(t, `let main() -> unit { printi(); }`, "function 'printi' expected 1 arguments, got 0")
	requireOneError(t, `let main() -> unit { nope(); }`, "no such function as 'nope'")
}

func TestOperators(t *testing.T) {
	tests := []struct {
		src      string
		contains string
	}{
		{`let x: int := -true;`, "unary arithmetic operators only apply to integers"},
		{`let x: bool := not 1;`, "the unary not operator only applies to booleans"},
		{`let x: int := |true|;`, "the magnitude operator only applies to integers, strings and arrays"},
		{`let x: bool := 1 and true;`, "binary logical operators only apply to booleans"},
		{`let x: bool := 1 = "a";`, "binary equality operators only apply to similar types"},
		{`let x: bool := true < false;`, "binary comparison operators only apply to integers or strings"},
		{`let x: int := "a" + 1;`, "binary arithmetic operators only apply to integers"},
		{`let x: int := y;`, "no such variable as 'y'"},
		{`let f() -> unit { 1 := 2; }`, "only variables or elements of an array can be assigned to"},
		{`let f(s: string) -> unit { s :+= 1; }`, "compound assignment operators only apply to integers"},
		{`let f(n: int when it > 0) -> unit { n :-= 1; }`, "of refined type"},
		{`let f(n: int) -> unit { n := "x"; }`, "cannot assign a value of type 'string' to 'n' of type 'int'"},
		{`let f() -> int { it }`, "'it' can only be used in a type condition"},
		{`let x: int when 1 := 1;`, "type conditions must be booleans"},
		{`let x: nope := 1;`, "no such type as 'nope'"},
		{`let x: int[] := [1, ...2];`, "only arrays can be spread"},
		{`let x: int := 1[0];`, "only arrays can be indexed"},
		{`let f() -> unit { if 1 then {}; }`, "if conditions must be booleans"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			requireOneError(t, tt.src, tt.contains)
		})
	}
}

func TestWellTypedExpressions(t *testing.T) {
	requireClean(t, `
let s: int := |"abc"| + |[1, 2]| + |-3|;
let b: bool := "a" < "b" and not (1 = 2) or 1 not < 2;
let a: int[] := [1, ...[2, 3], 4];
let e: int[] := [];
let f(x: int when it > 0) -> bool { x = 1 }
let g() -> unit { if true then {} }
`)
}

func TestSlices(t *testing.T) {
	file := requireClean(t, `
let all(arr: int[]) -> int[] { arr[...] }
let tail(arr: int[], k: int when it >= 0 and it <= |arr|) -> int[] { arr[k...] }
`)
	assert.Equal(t, types.Array{Elem: types.Int}, funcBody(t, file, "all").Type())

	requireOneError(t, `let f(arr: int[]) -> int[] { arr[0...] }`, "can start a slice")
	requireOneError(t, `let f(s: string) -> string { s[...] }`, "only arrays can be sliced")
}

func TestErrorDoesNotCascade(t *testing.T) {
	_, log := checkSource(t, `let f() -> int { let x: int := y + 1; x * 2 + missing() }`)
	assert.Equal(t, []string{"no such variable as 'y'", "no such function as 'missing'"}, messages(log))
}

func TestCheckExpr(t *testing.T) {
	globals := NewGlobals()
	AddBuiltins(globals)
	log := &ErrorLogger{}
	c := New(globals, log)

	p := parser.New(lexer.New("repl", "readi() + 1"))
	e := p.ParseExpr()
	require.Empty(t, p.Errors())
	assert.Equal(t, types.Int, c.CheckExpr(e))

	p = parser.New(lexer.New("repl", "return 1"))
	e = p.ParseExpr()
	require.Empty(t, p.Errors())
	assert.Equal(t, types.Error, c.CheckExpr(e))
	require.Len(t, log.Errors(), 1)
	assert.Equal(t, "repl:1:1: cannot return here", log.Errors()[0].Error())
}

func TestDeclareExtern(t *testing.T) {
	globals := NewGlobals()
	log := &ErrorLogger{}
	c := New(globals, log)

	ret, errs := parser.ParseType("pint.yaml", "int when it >= 0")
	require.Empty(t, errs)
	param, errs := parser.ParseType("pint.yaml", "int[]")
	require.Empty(t, errs)
	c.DeclareExtern("size", []*ast.Param{{Name: "xs", Type: param}}, ret)
	require.False(t, log.HasErrors())

	ft, ok := globals.Func("size")
	require.True(t, ok)
	assert.Equal(t, "(xs: int[]) -> int when 0 <= it", ft.String())
}
