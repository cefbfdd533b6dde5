package typechecker

import (
	"bytes"
	"testing"

	"github.com/pint-lang/pint/token"
	"github.com/pint-lang/pint/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTok = token.Token{Type: token.IDENT, Literal: "x", FileName: "test", Line: 1, Column: 1}

func TestGlobalsNamespace(t *testing.T) {
	g := NewGlobals()
	require.NoError(t, g.AddVar("x", types.Int))
	require.EqualError(t, g.AddVar("x", types.Bool), "duplicate global 'x'")
	require.EqualError(t, g.AddFunc("x", &FuncType{Return: types.Unit}), "duplicate global 'x'")
	require.EqualError(t, g.AddVar("string", types.Int), "'string' is a reserved type name")

	got, ok := g.Var("x")
	require.True(t, ok)
	assert.Equal(t, types.Type(types.Int), got)
	_, ok = g.Func("x")
	assert.False(t, ok)
}

func TestBuiltinSignatures(t *testing.T) {
	g := NewGlobals()
	AddBuiltins(g)
	AddBuiltins(g)

	want := map[string]string{
		"prints": "(s: string) -> unit",
		"printi": "(i: int) -> unit",
		"printb": "(b: bool) -> unit",
		"reads":  "() -> string",
		"readi":  "() -> int",
	}
	for name, sig := range want {
		ft, ok := g.Func(name)
		require.True(t, ok, name)
		assert.Equal(t, sig, ft.String())
	}
}

func TestErrorLogger(t *testing.T) {
	log := &ErrorLogger{}
	assert.False(t, log.HasErrors())

	var buf bytes.Buffer
	assert.False(t, log.Dump(&buf))
	assert.Empty(t, buf.String())

	assert.Equal(t, types.Type(types.Error), log.Errorf(testTok, "no such variable as '%s'", "x"))
	log.Add(&token.CompileError{Token: testTok, Msg: "from the parser"})
	assert.True(t, log.HasErrors())

	assert.True(t, log.Dump(&buf))
	assert.Equal(t, "test:1:1: no such variable as 'x'\ntest:1:1: from the parser\n", buf.String())
}

func TestCapturedBy(t *testing.T) {
	g := NewGlobals()
	require.NoError(t, g.AddVar("data", types.Array{Elem: types.Int}))
	require.NoError(t, g.AddVar("idx", refinedOver("data")))

	by, ok := g.CapturedBy("data")
	require.True(t, ok)
	assert.Equal(t, "idx", by)
	_, ok = g.CapturedBy("idx")
	assert.False(t, ok)
}
