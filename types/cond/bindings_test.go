package cond

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderReusesInputs(t *testing.T) {
	b := NewBuilder()
	x := b.Var("x")
	it := b.It()
	require.Equal(t, x, b.Var("x"))
	require.Equal(t, it, b.It())
	require.NotEqual(t, x, it)
	require.NotEqual(t, x, b.Var("y"))

	bindings := b.Finish()
	name, ok := bindings.Var(x)
	require.True(t, ok)
	require.Equal(t, "x", name)
	got, ok := bindings.It()
	require.True(t, ok)
	require.Equal(t, it, got)
	require.True(t, bindings.Mentions("y"))
	require.Equal(t, "{it: $1, x: $0, y: $2}", bindings.String())

	// finishing resets the builder but keeps numbering fresh
	next := b.Finish()
	_, ok = next.It()
	require.False(t, ok)
	require.Equal(t, 0, next.Names().Size())
	require.NotEqual(t, x, b.Var("x"))
}

// Equal only compares the shape of the bindings. Two bindings capturing the
// same names are equal even when the names sit on different inputs.
func TestBindingsEqualityIsLoose(t *testing.T) {
	ab := NewBuilder()
	ab.It()
	ab.Var("a")
	ab.Var("b")
	first := ab.Finish()

	ba := NewBuilder()
	ba.It()
	ba.Var("b")
	ba.Var("a")
	second := ba.Finish()

	ina, _ := first.Input("a")
	inb, _ := second.Input("a")
	require.NotEqual(t, ina, inb)
	assert.True(t, first.Equal(second))
	assert.True(t, second.Equal(first))

	noIt := NewBuilder()
	noIt.Var("a")
	noIt.Var("b")
	assert.False(t, first.Equal(noIt.Finish()))

	other := NewBuilder()
	other.It()
	other.Var("a")
	other.Var("c")
	assert.False(t, first.Equal(other.Finish()))

	assert.True(t, Empty().Equal(Empty()))
}

func TestMerge(t *testing.T) {
	lb := NewBuilder()
	lit := lb.It()
	lx := lb.Var("x")
	left := lb.Finish()
	lcond := Lt(lit, lx)

	rb := NewBuilder()
	ry := rb.Var("y")
	rx := rb.Var("x")
	rit := rb.It()
	right := rb.Finish()
	rcond := Lt(Add(rx, ry), rit)

	m := left.Merge(right)
	it, ok := m.Bindings.It()
	require.True(t, ok)
	require.Equal(t, it, m.This[lit])
	require.Equal(t, it, m.Other[rit])
	require.Equal(t, m.This[lx], m.Other[rx], "shared names share an input")
	require.NotEqual(t, m.This[lx], m.Other[ry])
	require.Equal(t, 2, m.Bindings.Names().Size())

	joined := And{Left: MapInputs(lcond, m.This), Right: MapInputs(rcond, m.Other)}
	require.Equal(t, "it < x and x + y < it", m.Bindings.Format(joined))
}

func TestMergeWithItselfIsIdempotent(t *testing.T) {
	b := NewBuilder()
	it := b.It()
	c := And{Left: Lte(Int(0), it), Right: Lt(it, Abs(b.Var("arr")))}
	bindings := b.Finish()

	m := bindings.Merge(bindings)
	viaThis := MapInputs(c, m.This)
	viaOther := MapInputs(c, m.Other)
	require.True(t, Equal(viaThis, viaOther))
	require.True(t, m.Bindings.Equal(bindings))
	require.Equal(t, bindings.Format(c), m.Bindings.Format(viaThis))
}

func TestMapInputsKeepsUnmapped(t *testing.T) {
	in := inputs(3)
	c := Eq(in[0], in[1])
	mapped := MapInputs(c, map[Input]Input{in[0]: in[2]})
	require.True(t, Equal(Eq(in[2], in[1]), mapped))
	require.False(t, Equal(c, mapped))
}
