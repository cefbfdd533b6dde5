// Package types is the type model of the checker: primitive, array and
// refinement types and the compatibility rules between them.
package types

import (
	"fmt"

	"github.com/pint-lang/pint/types/cond"
)

type Kind int

const (
	PrimitiveKind Kind = iota
	ErrorKind
	NeverKind
	ArrayKind
	RefinedKind
)

// Type is the interface for all types in our language. The set of
// implementations is closed: Primitive, Inferred, Array and *Refined.
type Type interface {
	String() string
	Kind() Kind
}

// Logger receives the type errors found while combining types and returns
// the type that replaces the failed combination.
type Logger interface {
	Errorf(format string, args ...any) Type
}

type Primitive int

const (
	String Primitive = iota
	Int
	Bool
	Unit
)

var primitiveNames = [...]string{String: "string", Int: "int", Bool: "bool", Unit: "unit"}

func (p Primitive) String() string { return primitiveNames[p] }

func (p Primitive) Kind() Kind { return PrimitiveKind }

// Inferred types never appear in source. Error marks a subtree that already
// produced a diagnostic; Never is the type of expressions that do not
// produce a value, such as jumps and loops without a break.
type Inferred int

const (
	Error Inferred = iota
	Never
)

func (i Inferred) String() string {
	if i == Error {
		return "error"
	}
	return "never"
}

func (i Inferred) Kind() Kind {
	if i == Error {
		return ErrorKind
	}
	return NeverKind
}

// Array element types are invariant.
type Array struct {
	Elem Type
}

func (a Array) String() string {
	if a.Elem.Kind() == RefinedKind {
		return "(" + a.Elem.String() + ")[]"
	}
	return a.Elem.String() + "[]"
}

func (a Array) Kind() Kind { return ArrayKind }

// Refined is Base restricted to the values for which Predicate holds. The
// inputs of Predicate are named by Bindings.
type Refined struct {
	Base      Type
	Predicate cond.Condition
	Bindings  *cond.Bindings
}

func (r *Refined) String() string {
	return r.Base.String() + " when " + r.Bindings.Format(r.Predicate)
}

func (r *Refined) Kind() Kind { return RefinedKind }

// Refine restricts base by pred. Error cannot be refined and is returned
// unchanged.
func Refine(base Type, pred cond.Condition, bindings *cond.Bindings) Type {
	if base == Error {
		return Error
	}
	return &Refined{Base: base, Predicate: pred, Bindings: bindings}
}

// Equal reports structural equality.
func Equal(a, b Type) bool {
	switch a := a.(type) {
	case Primitive, Inferred:
		return a == b
	case Array:
		b, ok := b.(Array)
		return ok && Equal(a.Elem, b.Elem)
	case *Refined:
		b, ok := b.(*Refined)
		return ok && (a == b || Equal(a.Base, b.Base) &&
			cond.Equal(a.Predicate, b.Predicate) && a.Bindings.Equal(b.Bindings))
	}
	panic(fmt.Sprintf("unknown type %T", a))
}

// CanBe reports whether a value of type t can be used where other is
// required.
func CanBe(t, other Type) bool {
	switch t := t.(type) {
	case Primitive:
		return other == Type(t)
	case Inferred:
		return t == Never
	case Array:
		o, ok := other.(Array)
		return ok && (Equal(t.Elem, o.Elem) || t.Elem == Never)
	case *Refined:
		// the bindings are compatible when every input of the required
		// predicate lands on the known input of the same name
		if o, ok := other.(*Refined); ok && Equal(t.Base, o.Base) &&
			cond.Implies(t.Predicate, t.Bindings, o.Predicate, o.Bindings) {
			return true
		}
		return CanBe(t.Base, other) || other == Never
	}
	panic(fmt.Sprintf("unknown type %T", t))
}

// EitherCanBe is CanBe in either direction.
func EitherCanBe(a, b Type) bool {
	return CanBe(a, b) || CanBe(b, a)
}

// Unify returns the type both a and b can be used as, reporting through log
// when there is none. Refinements that differ are dropped.
func Unify(a, b Type, log Logger) Type {
	switch {
	case Equal(a, b):
		return a
	case a == Never:
		return b
	case b == Never:
		return a
	case a == Error || b == Error:
		return Error
	}
	if a.Kind() == RefinedKind || b.Kind() == RefinedKind {
		return Unify(Unrefined(a), Unrefined(b), log)
	}
	if aa, ok := a.(Array); ok {
		if ba, ok := b.(Array); ok {
			elem := Unify(aa.Elem, ba.Elem, log)
			if elem == Error {
				return Error
			}
			return Array{Elem: elem}
		}
	}
	return log.Errorf("failed to unify types '%s' and '%s'", a, b)
}

// AsArray views t as an array. Never is an array of never.
func AsArray(t Type) (Array, bool) {
	switch t := t.(type) {
	case Array:
		return t, true
	case Inferred:
		if t == Never {
			return Array{Elem: Never}, true
		}
	case *Refined:
		return AsArray(t.Base)
	}
	return Array{}, false
}

// Unrefined strips the refinement from t.
func Unrefined(t Type) Type {
	if r, ok := t.(*Refined); ok {
		return r.Base
	}
	return t
}

// JoinCondition adds pred to what is known about t. When t is already
// refined the two predicates are moved onto merged bindings and joined with
// and.
func JoinCondition(t Type, pred cond.Condition, bindings *cond.Bindings) Type {
	r, ok := t.(*Refined)
	if !ok {
		return Refine(t, pred, bindings)
	}
	m := r.Bindings.Merge(bindings)
	joined := cond.And{
		Left:  cond.MapInputs(r.Predicate, m.This),
		Right: cond.MapInputs(pred, m.Other),
	}
	return &Refined{Base: r.Base, Predicate: joined, Bindings: m.Bindings}
}
