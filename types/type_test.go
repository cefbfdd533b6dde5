package types

import (
	"fmt"
	"testing"

	"github.com/pint-lang/pint/types/cond"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	msgs []string
}

func (l *recordingLogger) Errorf(format string, args ...any) Type {
	l.msgs = append(l.msgs, fmt.Sprintf(format, args...))
	return Error
}

// nonNegative is int when it >= 0.
func nonNegative() Type {
	b := cond.NewBuilder()
	return Refine(Int, cond.Gte(b.It(), cond.Int(0)), b.Finish())
}

// inBounds is int when it >= 0 and it < |arr|.
func inBounds(arr string) Type {
	b := cond.NewBuilder()
	it := b.It()
	pred := cond.And{Left: cond.Gte(it, cond.Int(0)), Right: cond.Lt(it, cond.Abs(b.Var(arr)))}
	return Refine(Int, pred, b.Finish())
}

// below is int when it >= 0 and it < n.
func below(n int64) Type {
	b := cond.NewBuilder()
	it := b.It()
	pred := cond.And{Left: cond.Gte(it, cond.Int(0)), Right: cond.Lt(it, cond.Int(n))}
	return Refine(Int, pred, b.Finish())
}

func TestPrimitiveCanBe(t *testing.T) {
	prims := []Type{String, Int, Bool, Unit}
	for _, a := range prims {
		for _, b := range prims {
			assert.Equal(t, a == b, CanBe(a, b), "%s can be %s", a, b)
		}
		assert.False(t, CanBe(a, Never))
		assert.False(t, CanBe(a, nonNegative()), "an unrefined type cannot be a refinement")
	}
}

func TestNeverAndError(t *testing.T) {
	all := []Type{String, Int, Bool, Unit, Error, Never, Array{Elem: Int}, nonNegative()}
	for _, other := range all {
		assert.True(t, CanBe(Never, other), "never can be %s", other)
		assert.False(t, CanBe(Error, other), "error cannot be %s", other)
	}
}

func TestArrayCanBe(t *testing.T) {
	assert.True(t, CanBe(Array{Elem: Int}, Array{Elem: Int}))
	assert.False(t, CanBe(Array{Elem: Int}, Array{Elem: String}))
	assert.False(t, CanBe(Array{Elem: Int}, Int))
	for _, elem := range []Type{Int, String, Array{Elem: Bool}, nonNegative()} {
		assert.True(t, CanBe(Array{Elem: Never}, Array{Elem: elem}), "never[] can be %s[]", elem)
	}
	assert.False(t, CanBe(Array{Elem: nonNegative()}, Array{Elem: Int}), "arrays are invariant")
}

func TestRefinedCanBe(t *testing.T) {
	assert.True(t, CanBe(nonNegative(), Int), "a refinement can be forgotten")
	assert.False(t, CanBe(nonNegative(), String))
	assert.True(t, CanBe(nonNegative(), Never))
	assert.True(t, CanBe(nonNegative(), nonNegative()))
	assert.True(t, CanBe(inBounds("arr"), inBounds("arr")))
	assert.False(t, CanBe(inBounds("arr"), inBounds("brr")))
	assert.False(t, CanBe(below(10), inBounds("arr")), "10 is not |arr|")
	assert.False(t, CanBe(nonNegative(), below(10)))

	// a stronger fact satisfies a weaker one with the same bindings
	b := cond.NewBuilder()
	it := b.It()
	positive := Refine(Int, cond.Gt(it, cond.Int(0)), b.Finish())
	b2 := cond.NewBuilder()
	notZero := Refine(Int, cond.Neq(cond.Int(0), b2.It()), b2.Finish())
	assert.True(t, CanBe(positive, notZero))
	assert.False(t, CanBe(notZero, positive))
}

func TestUnify(t *testing.T) {
	log := &recordingLogger{}
	require.Equal(t, Int, Unify(Int, Int, log))
	require.Equal(t, Int, Unify(Never, Int, log))
	require.Equal(t, String, Unify(String, Never, log))
	require.Equal(t, Error, Unify(Error, Int, log))
	require.Equal(t, Error, Unify(Never, Error, log))
	require.Equal(t, Type(Array{Elem: Int}), Unify(Array{Elem: Never}, Array{Elem: Int}, log))
	require.Equal(t, Int, Unify(nonNegative(), Int, log))
	require.Equal(t, Int, Unify(nonNegative(), below(3), log))
	require.Empty(t, log.msgs)

	require.Equal(t, Error, Unify(Int, String, log))
	require.Equal(t, Error, Unify(Array{Elem: Int}, Array{Elem: Bool}, log))
	require.Len(t, log.msgs, 2)
	require.Equal(t, "failed to unify types 'int' and 'string'", log.msgs[0])
}

func TestAsArray(t *testing.T) {
	arr, ok := AsArray(Never)
	require.True(t, ok)
	require.Equal(t, Type(Never), arr.Elem)

	_, ok = AsArray(Error)
	require.False(t, ok)
	_, ok = AsArray(Int)
	require.False(t, ok)

	b := cond.NewBuilder()
	refined := Refine(Array{Elem: String}, cond.Lt(cond.Int(0), cond.Abs(b.It())), b.Finish())
	arr, ok = AsArray(refined)
	require.True(t, ok)
	require.Equal(t, Type(String), arr.Elem)
}

func TestJoinCondition(t *testing.T) {
	b := cond.NewBuilder()
	it := b.It()
	first := JoinCondition(Int, cond.Gte(it, cond.Int(0)), b.Finish())
	require.Equal(t, "int when 0 <= it", first.String())

	b = cond.NewBuilder()
	it = b.It()
	second := JoinCondition(first, cond.Lt(it, cond.Abs(b.Var("arr"))), b.Finish())
	require.Equal(t, "int when 0 <= it and it < |arr|", second.String())
	require.True(t, CanBe(second, first))
	require.True(t, CanBe(second, inBounds("arr")))
	require.False(t, CanBe(first, second))

	require.Equal(t, Type(Error), JoinCondition(Error, cond.Bool(true), cond.Empty()))
}

func TestString(t *testing.T) {
	require.Equal(t, "int[][]", Array{Elem: Array{Elem: Int}}.String())
	require.Equal(t, "(int when 0 <= it)[]", Array{Elem: nonNegative()}.String())
	require.Equal(t, "never", Never.String())
	require.Equal(t, "error", Error.String())
}

func TestLookupPrimitive(t *testing.T) {
	p, ok := LookupPrimitive("bool")
	require.True(t, ok)
	require.Equal(t, Bool, p)
	_, ok = LookupPrimitive("float")
	require.False(t, ok)
	require.True(t, IsReservedTypeName("string"))
	require.False(t, IsReservedTypeName("it"))
}
