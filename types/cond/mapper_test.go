package cond

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchOrBind(t *testing.T) {
	in := inputs(2)
	m := NewMapper()

	require.True(t, m.MatchOrBind(Int(1), in[0]))
	require.True(t, m.MatchOrBind(Int(1), in[0]), "rebinding the same pair is a match")
	require.False(t, m.MatchOrBind(Int(1), in[1]), "subtree already claimed")
	require.False(t, m.MatchOrBind(Int(2), in[0]), "input already bound")

	require.Equal(t, map[Input]Condition{in[0]: Int(1)}, m.Targets())
}

func TestHypotheticallyCommitsOnlyOnSuccess(t *testing.T) {
	in := inputs(3)
	m := NewMapper()
	require.True(t, m.MatchOrBind(Int(1), in[0]))

	ok := m.Hypothetically(func(h *Mapper) bool {
		require.True(t, h.MatchOrBind(Int(2), in[1]))
		return false
	})
	require.False(t, ok)
	require.NotContains(t, m.Targets(), in[1], "failed attempt must not leak bindings")

	ok = m.Hypothetically(func(h *Mapper) bool {
		return h.MatchOrBind(Int(3), in[2])
	})
	require.True(t, ok)
	require.Contains(t, m.Targets(), in[2])
	require.Len(t, m.Targets(), 2)
}
