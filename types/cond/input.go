package cond

import "strconv"

// Input is a placeholder inside a condition. Bindings say whether it stands
// for "it" or for a captured variable.
type Input struct {
	id int
}

func (in Input) String() string {
	return "$" + strconv.Itoa(in.id)
}

// Generator hands out inputs with increasing ids. The zero value is ready
// to use.
type Generator struct {
	next int
}

func (g *Generator) Next() Input {
	in := Input{id: g.next}
	g.next++
	return in
}
