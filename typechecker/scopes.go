package typechecker

import (
	"maps"

	"github.com/pint-lang/pint/types"
)

type ScopeKind int

const (
	FuncScope ScopeKind = iota
	BlockScope
	// NarrowScope holds the refined types a guard gives its branch.
	NarrowScope
)

type Scope[T any] struct {
	Elems     map[string]T
	ScopeKind ScopeKind
}

func NewScope[T any](sk ScopeKind) Scope[T] {
	return Scope[T]{
		Elems:     make(map[string]T),
		ScopeKind: sk,
	}
}

func PushScope[T any](scopes *[]Scope[T], sk ScopeKind) {
	*scopes = append(*scopes, NewScope[T](sk))
}

func PopScope[T any](scopes *[]Scope[T]) {
	if len(*scopes) == 0 {
		panic(ErrStackUnderflow)
	}
	*scopes = (*scopes)[:len(*scopes)-1]
}

// Put writes to the innermost frame.
func Put[T any](scopes []Scope[T], name string, elem T) {
	if len(scopes) == 0 {
		panic(ErrStackUnderflow)
	}
	scopes[len(scopes)-1].Elems[name] = elem
}

func PutBulk[T any](scopes []Scope[T], elems map[string]T) {
	if len(scopes) == 0 {
		panic(ErrStackUnderflow)
	}
	maps.Copy(scopes[len(scopes)-1].Elems, elems)
}

func Get[T any](scopes []Scope[T], name string) (T, bool) {
	// Search from innermost scope outward
	// if in func we only search until func scope
	for i := len(scopes) - 1; i >= 0; i-- {
		if e, ok := scopes[i].Elems[name]; ok {
			return e, true
		}
		if scopes[i].ScopeKind == FuncScope {
			break
		}
	}

	var zero T
	return zero, false
}

// VarScopeStack maps local variable names to their types. Globals live in
// Globals, outside the stack.
type VarScopeStack struct {
	scopes []Scope[types.Type]
}

func (s *VarScopeStack) Push(sk ScopeKind) { PushScope(&s.scopes, sk) }

func (s *VarScopeStack) Pop() { PopScope(&s.scopes) }

func (s *VarScopeStack) Put(name string, t types.Type) { Put(s.scopes, name, t) }

func (s *VarScopeStack) PutAll(vars map[string]types.Type) { PutBulk(s.scopes, vars) }

func (s *VarScopeStack) Get(name string) (types.Type, bool) { return Get(s.scopes, name) }

// Declared reports whether name is a local variable, as opposed to a global
// or a name that is only narrowed.
func (s *VarScopeStack) Declared(name string) bool {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if _, ok := s.scopes[i].Elems[name]; ok && s.scopes[i].ScopeKind != NarrowScope {
			return true
		}
		if s.scopes[i].ScopeKind == FuncScope {
			break
		}
	}
	return false
}

// mentions reports whether t is a refinement that captures name.
func mentions(t types.Type, name string) bool {
	r, ok := t.(*types.Refined)
	return ok && r.Bindings.Mentions(name)
}

// Invalidate forgets what is known about the old value of name after an
// assignment to it. Narrowed types of name, and narrowed types that capture
// it, are dropped. Declared refinements that capture it are weakened to
// their base type in place, since they no longer hold for the rest of the
// function. The walk stops at the frame declaring name: variables further
// out capture another variable of the same name.
func (s *VarScopeStack) Invalidate(name string) {
	// variables whose visible type has been looked at
	seen := make(map[string]bool)
	for i := len(s.scopes) - 1; i >= 0; i-- {
		scope := s.scopes[i]
		if scope.ScopeKind == NarrowScope {
			maps.DeleteFunc(scope.Elems, func(v string, t types.Type) bool {
				return !seen[v] && (v == name || mentions(t, name))
			})
		} else {
			for v, t := range scope.Elems {
				if !seen[v] && mentions(t, name) {
					scope.Elems[v] = types.Unrefined(t)
				}
			}
		}
		for v := range scope.Elems {
			seen[v] = true
		}
		if _, declared := scope.Elems[name]; (declared && scope.ScopeKind != NarrowScope) || scope.ScopeKind == FuncScope {
			return
		}
	}
}

// Shadow prepares the innermost frame for a new variable called name: every
// visible variable whose type captures the old one is put there with its
// base type. They get their refinements back when the frame is popped.
func (s *VarScopeStack) Shadow(name string) {
	if len(s.scopes) == 0 {
		return
	}
	weakened := make(map[string]types.Type)
	seen := make(map[string]bool)
	for i := len(s.scopes) - 1; i >= 0; i-- {
		for v, t := range s.scopes[i].Elems {
			if seen[v] {
				continue
			}
			seen[v] = true
			if v != name && mentions(t, name) {
				weakened[v] = types.Unrefined(t)
			}
		}
		if s.scopes[i].ScopeKind == FuncScope {
			break
		}
	}
	s.PutAll(weakened)
}
