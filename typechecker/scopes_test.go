package typechecker

import (
	"testing"

	"github.com/pint-lang/pint/types"
	"github.com/pint-lang/pint/types/cond"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeGetStopsAtFunc(t *testing.T) {
	var s VarScopeStack
	s.Push(BlockScope)
	s.Put("outer", types.Int)
	s.Push(FuncScope)
	s.Put("param", types.Bool)
	s.Push(BlockScope)
	s.Put("local", types.String)

	for name, want := range map[string]types.Type{"param": types.Bool, "local": types.String} {
		got, ok := s.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got)
	}
	_, ok := s.Get("outer")
	assert.False(t, ok, "lookups do not leave the function")
}

func TestScopeShadowing(t *testing.T) {
	var s VarScopeStack
	s.Push(FuncScope)
	s.Put("x", types.Int)
	s.Push(BlockScope)
	s.PutAll(map[string]types.Type{"x": types.String})

	got, _ := s.Get("x")
	assert.Equal(t, types.String, got)
	s.Pop()
	got, _ = s.Get("x")
	assert.Equal(t, types.Int, got)
}

func TestScopeUnderflow(t *testing.T) {
	var s VarScopeStack
	assert.PanicsWithValue(t, ErrStackUnderflow, func() { s.Pop() })
	assert.PanicsWithValue(t, ErrStackUnderflow, func() { s.Put("x", types.Int) })
}

// refinedOver is int when it < |name|.
func refinedOver(name string) types.Type {
	b := cond.NewBuilder()
	return types.Refine(types.Int, cond.Lt(b.It(), cond.Abs(b.Var(name))), b.Finish())
}

func TestInvalidate(t *testing.T) {
	var s VarScopeStack
	s.Push(FuncScope)
	s.Put("arr", types.Array{Elem: types.Int})
	s.Put("i", types.Int)
	s.Push(NarrowScope)
	s.Put("i", refinedOver("arr"))
	s.Put("j", refinedOver("other"))
	s.Push(BlockScope)

	s.Invalidate("arr")

	got, _ := s.Get("i")
	assert.Equal(t, types.Int, got, "a narrowing that captures arr is dropped")
	got, _ = s.Get("j")
	assert.Equal(t, "int when it < |other|", got.String())
}

func TestInvalidateStopsAtDeclaration(t *testing.T) {
	var s VarScopeStack
	s.Push(FuncScope)
	s.Put("n", types.Int)
	s.Push(NarrowScope)
	s.Put("n", refinedOver("xs"))
	s.Push(BlockScope)
	s.Put("n", types.String)
	s.Push(NarrowScope)
	s.Put("m", types.Bool)

	s.Invalidate("n")

	// the inner n is a different variable, so the outer narrowing survives
	s.Pop()
	s.Pop()
	got, _ := s.Get("n")
	assert.Equal(t, "int when it < |xs|", got.String())
}

func TestInvalidateWeakensDeclaredTypes(t *testing.T) {
	var s VarScopeStack
	s.Push(FuncScope)
	s.Put("arr", types.Array{Elem: types.Int})
	s.Put("i", refinedOver("arr"))
	s.Put("j", refinedOver("other"))
	s.Push(BlockScope)

	s.Invalidate("arr")
	s.Pop()

	got, _ := s.Get("i")
	assert.Equal(t, types.Int, got, "the weakening outlives the block")
	got, _ = s.Get("j")
	assert.Equal(t, "int when it < |other|", got.String())
}

func TestShadowLastsForTheFrame(t *testing.T) {
	var s VarScopeStack
	s.Push(FuncScope)
	s.Put("arr", types.Array{Elem: types.Int})
	s.Put("i", refinedOver("arr"))
	s.Push(BlockScope)

	s.Shadow("arr")
	s.Put("arr", types.Array{Elem: types.Int})
	got, _ := s.Get("i")
	assert.Equal(t, types.Int, got)

	s.Pop()
	got, _ = s.Get("i")
	assert.Equal(t, "int when it < |arr|", got.String())
}

func TestDeclared(t *testing.T) {
	var s VarScopeStack
	s.Push(FuncScope)
	s.Put("x", types.Int)
	s.Push(NarrowScope)
	s.Put("g", refinedOver("x"))

	assert.True(t, s.Declared("x"))
	assert.False(t, s.Declared("g"), "a narrowed global is not a local")
	assert.False(t, s.Declared("missing"))
}
