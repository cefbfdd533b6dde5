package cond

import "maps"

// Mapper records which subtree of the source condition each input of the
// target condition stands for. The mapping is injective: a source subtree is
// claimed by at most one input and an input binds at most one subtree.
type Mapper struct {
	sources map[string]Input    // source subtree, keyed by its rendering
	targets map[Input]Condition // the inverse, keyed by target input
}

func NewMapper() *Mapper {
	return &Mapper{
		sources: make(map[string]Input),
		targets: make(map[Input]Condition),
	}
}

// MatchOrBind binds target to source unless either is already bound to
// something else.
func (m *Mapper) MatchOrBind(source Condition, target Input) bool {
	key := source.String()
	if in, ok := m.sources[key]; ok {
		return in == target
	}
	if _, ok := m.targets[target]; ok {
		return false
	}
	m.sources[key] = target
	m.targets[target] = source
	return true
}

// Hypothetically runs try against a scratch copy of m and keeps its bindings
// only if it succeeds.
func (m *Mapper) Hypothetically(try func(*Mapper) bool) bool {
	scratch := &Mapper{
		sources: maps.Clone(m.sources),
		targets: maps.Clone(m.targets),
	}
	if !try(scratch) {
		return false
	}
	m.sources = scratch.sources
	m.targets = scratch.targets
	return true
}

// Targets returns a copy of the bindings, keyed by target input.
func (m *Mapper) Targets() map[Input]Condition {
	return maps.Clone(m.targets)
}
