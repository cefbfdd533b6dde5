package typechecker

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/pint-lang/pint/types"
)

type Param struct {
	Name string
	Type types.Type
}

type FuncType struct {
	Params []Param
	Return types.Type
}

func (ft *FuncType) String() string {
	params := make([]string, len(ft.Params))
	for i, p := range ft.Params {
		params[i] = p.Name + ": " + p.Type.String()
	}
	return "(" + strings.Join(params, ", ") + ") -> " + ft.Return.String()
}

// Globals holds the top-level functions and variables. Both share one
// namespace.
type Globals struct {
	vars  map[string]types.Type
	funcs map[string]*FuncType
}

func NewGlobals() *Globals {
	return &Globals{
		vars:  make(map[string]types.Type),
		funcs: make(map[string]*FuncType),
	}
}

func (g *Globals) checkName(name string) error {
	if types.IsReservedTypeName(name) {
		return fmt.Errorf("'%s' is a reserved type name", name)
	}
	_, isVar := g.vars[name]
	_, isFunc := g.funcs[name]
	if isVar || isFunc {
		return fmt.Errorf("duplicate global '%s'", name)
	}
	return nil
}

func (g *Globals) AddVar(name string, t types.Type) error {
	if err := g.checkName(name); err != nil {
		return err
	}
	g.vars[name] = t
	return nil
}

func (g *Globals) AddFunc(name string, ft *FuncType) error {
	if err := g.checkName(name); err != nil {
		return err
	}
	g.funcs[name] = ft
	return nil
}

func (g *Globals) Var(name string) (types.Type, bool) {
	t, ok := g.vars[name]
	return t, ok
}

// Vars returns the global variables by name. The map must not be modified.
func (g *Globals) Vars() map[string]types.Type { return g.vars }

// CapturedBy returns a global variable whose refined type captures name.
func (g *Globals) CapturedBy(name string) (string, bool) {
	for _, v := range slices.Sorted(maps.Keys(g.vars)) {
		if v != name && mentions(g.vars[v], name) {
			return v, true
		}
	}
	return "", false
}

func (g *Globals) Func(name string) (*FuncType, bool) {
	ft, ok := g.funcs[name]
	return ft, ok
}
