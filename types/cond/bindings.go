package cond

import (
	"maps"
	"slices"
	"strings"

	"github.com/hashicorp/go-set/v3"
)

// Bindings tell what each input of a condition stands for: the refined
// value itself ("it") or a variable captured from the surrounding scope.
// Bindings are immutable once built.
type Bindings struct {
	inputToVar map[Input]string
	varToInput map[string]Input
	it         Input
	hasIt      bool
}

// Empty returns bindings without "it" or variables.
func Empty() *Bindings {
	return NewBuilder().Finish()
}

func (b *Bindings) It() (Input, bool) {
	return b.it, b.hasIt
}

// Var returns the variable bound to in.
func (b *Bindings) Var(in Input) (string, bool) {
	name, ok := b.inputToVar[in]
	return name, ok
}

// Input returns the input bound to the variable name.
func (b *Bindings) Input(name string) (Input, bool) {
	in, ok := b.varToInput[name]
	return in, ok
}

// Names returns the set of captured variable names.
func (b *Bindings) Names() *set.Set[string] {
	names := set.New[string](len(b.varToInput))
	for name := range b.varToInput {
		names.Insert(name)
	}
	return names
}

// Mentions reports whether the variable name is captured.
func (b *Bindings) Mentions(name string) bool {
	_, ok := b.varToInput[name]
	return ok
}

// Equal compares the shape of two bindings: both bind "it" or neither does,
// and they capture the same set of names. Which input a name is bound to is
// not compared.
func (b *Bindings) Equal(other *Bindings) bool {
	if b.hasIt != other.hasIt {
		return false
	}
	names, otherNames := b.Names(), other.Names()
	if names.Size() != otherNames.Size() {
		return false
	}
	for name := range names.Items() {
		if !otherNames.Contains(name) {
			return false
		}
	}
	return true
}

// Name renders in as "it", its variable name, or its raw form when unbound.
func (b *Bindings) Name(in Input) string {
	if b.hasIt && in == b.it {
		return "it"
	}
	if name, ok := b.inputToVar[in]; ok {
		return name
	}
	return in.String()
}

// Format renders c with its inputs named through b.
func (b *Bindings) Format(c Condition) string {
	return format(c, b.Name)
}

func (b *Bindings) String() string {
	parts := []string{}
	if b.hasIt {
		parts = append(parts, "it: "+b.it.String())
	}
	for _, in := range b.varInputs() {
		parts = append(parts, b.inputToVar[in]+": "+in.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// varInputs returns the inputs bound to variables, ordered by id.
func (b *Bindings) varInputs() []Input {
	inputs := slices.Collect(maps.Keys(b.inputToVar))
	slices.SortFunc(inputs, func(x, y Input) int { return x.id - y.id })
	return inputs
}

// Merge is the result of merging two bindings: the merged bindings and the
// substitutions that move conditions built against each side onto them.
type Merge struct {
	Bindings *Bindings
	This     map[Input]Input
	Other    map[Input]Input
}

// Merge renumbers b and other onto fresh bindings. "it" on either side maps
// to the merged "it" and a name captured on both sides maps to one input.
func (b *Bindings) Merge(other *Bindings) Merge {
	nb := NewBuilder()
	m := Merge{This: map[Input]Input{}, Other: map[Input]Input{}}
	if it, ok := b.It(); ok {
		m.This[it] = nb.It()
	}
	if it, ok := other.It(); ok {
		m.Other[it] = nb.It()
	}
	for _, in := range b.varInputs() {
		m.This[in] = nb.Var(b.inputToVar[in])
	}
	for _, in := range other.varInputs() {
		m.Other[in] = nb.Var(other.inputToVar[in])
	}
	m.Bindings = nb.Finish()
	return m
}

// Builder creates bindings while a condition is being built. Each builder
// numbers its inputs from zero.
type Builder struct {
	gen        Generator
	inputToVar map[Input]string
	varToInput map[string]Input
	it         Input
	hasIt      bool
}

func NewBuilder() *Builder {
	return &Builder{
		inputToVar: make(map[Input]string),
		varToInput: make(map[string]Input),
	}
}

// Var returns the input bound to name, binding a fresh one on first use.
func (b *Builder) Var(name string) Input {
	if in, ok := b.varToInput[name]; ok {
		return in
	}
	in := b.gen.Next()
	b.varToInput[name] = in
	b.inputToVar[in] = name
	return in
}

// It returns the input standing for "it", binding a fresh one on first use.
func (b *Builder) It() Input {
	if !b.hasIt {
		b.it = b.gen.Next()
		b.hasIt = true
	}
	return b.it
}

// Finish returns the bindings built so far and resets the builder. Input ids
// keep increasing across resets.
func (b *Builder) Finish() *Bindings {
	res := &Bindings{
		inputToVar: b.inputToVar,
		varToInput: b.varToInput,
		it:         b.it,
		hasIt:      b.hasIt,
	}
	b.inputToVar = make(map[Input]string)
	b.varToInput = make(map[string]Input)
	b.it = Input{}
	b.hasIt = false
	return res
}
