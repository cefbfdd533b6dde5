package typechecker

import "github.com/pint-lang/pint/types"

var builtins = map[string]*FuncType{
	"prints": {Params: []Param{{Name: "s", Type: types.String}}, Return: types.Unit},
	"printi": {Params: []Param{{Name: "i", Type: types.Int}}, Return: types.Unit},
	"printb": {Params: []Param{{Name: "b", Type: types.Bool}}, Return: types.Unit},
	"reads":  {Params: []Param{}, Return: types.String},
	"readi":  {Params: []Param{}, Return: types.Int},
}

// AddBuiltins declares the runtime's input and output functions.
func AddBuiltins(g *Globals) {
	for name, ft := range builtins {
		// the registry is fresh or already holds them
		_ = g.AddFunc(name, ft)
	}
}
