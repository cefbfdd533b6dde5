// Package cond implements the predicate language of refinement types and the
// structural satisfaction check between two predicates.
package cond

import (
	"fmt"
	"strconv"
	"strings"
)

// Condition is a node of a refinement predicate. Conditions are immutable
// and the set of implementations is closed to this package.
type Condition interface {
	fmt.Stringer
	// satisfiedBy reports whether source implies the receiver, recording
	// input bindings in m and handing them to k.
	satisfiedBy(source Condition, m *Mapper, k cont) bool
	mapInputs(mapping map[Input]Input) Condition
}

// UnitValue is the Value of the unit Constant.
type UnitValue struct{}

// Constant is a literal. Value is a string, int64, bool or UnitValue.
type Constant struct {
	Value any
}

func Str(s string) Constant { return Constant{Value: s} }
func Int(i int64) Constant { return Constant{Value: i} }
func Bool(b bool) Constant { return Constant{Value: b} }
func UnitConst() Constant { return Constant{Value: UnitValue{}} }

func (c Constant) String() string {
	switch v := c.Value.(type) {
	case string:
		return strconv.Quote(v)
	case int64:
		if v < 0 {
			return "(" + strconv.FormatInt(v, 10) + ")"
		}
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case UnitValue:
		return "unit"
	}
	panic(fmt.Sprintf("unsupported constant value %T", c.Value))
}

type UnaryKind int

const (
	NegOp UnaryKind = iota
	NotOp
	AbsOp
)

type Unary struct {
	Op      UnaryKind
	Operand Condition
}

func Neg(c Condition) Unary { return Unary{Op: NegOp, Operand: c} }
func Abs(c Condition) Unary { return Unary{Op: AbsOp, Operand: c} }

// Not negates c. Comparisons are folded into their dual and a double
// negation cancels out.
func Not(c Condition) Condition {
	switch c := c.(type) {
	case Cmp:
		switch c.Op {
		case EqOp:
			return Neq(c.Left, c.Right)
		case NeqOp:
			return Eq(c.Left, c.Right)
		case LtOp:
			return Lte(c.Right, c.Left)
		case LteOp:
			return Lt(c.Right, c.Left)
		}
	case Unary:
		if c.Op == NotOp {
			return c.Operand
		}
	}
	return Unary{Op: NotOp, Operand: c}
}

func (u Unary) String() string { return format(u, Input.String) }

type BinaryKind int

const (
	AddOp BinaryKind = iota
	SubOp
	MulOp
	DivOp
)

var binarySymbols = [...]string{AddOp: "+", SubOp: "-", MulOp: "*", DivOp: "/"}

// symmetric reports whether the operands may be swapped.
func (k BinaryKind) symmetric() bool {
	return k == AddOp || k == MulOp
}

type Binary struct {
	Op          BinaryKind
	Left, Right Condition
}

func Add(l, r Condition) Binary { return Binary{Op: AddOp, Left: l, Right: r} }
func Sub(l, r Condition) Binary { return Binary{Op: SubOp, Left: l, Right: r} }
func Mul(l, r Condition) Binary { return Binary{Op: MulOp, Left: l, Right: r} }
func Div(l, r Condition) Binary { return Binary{Op: DivOp, Left: l, Right: r} }

func (b Binary) String() string { return format(b, Input.String) }

// CmpKind is the normalised comparison. Greater-than forms and the negated
// forms are rewritten onto these four by the constructors below.
type CmpKind int

const (
	EqOp CmpKind = iota
	NeqOp
	LtOp
	LteOp
)

var cmpSymbols = [...]string{EqOp: "=", NeqOp: "not =", LtOp: "<", LteOp: "<="}

func (k CmpKind) symmetric() bool {
	return k == EqOp || k == NeqOp
}

// impliedBy reports whether a known comparison of kind source between the
// same operands implies a comparison of kind k.
func (k CmpKind) impliedBy(source CmpKind) bool {
	switch k {
	case EqOp:
		return source == EqOp
	case NeqOp:
		return source == NeqOp || source == LtOp
	case LtOp:
		return source == LtOp
	case LteOp:
		return source == LteOp || source == LtOp || source == EqOp
	}
	return false
}

type Cmp struct {
	Op          CmpKind
	Left, Right Condition
}

func Eq(l, r Condition) Cmp { return Cmp{Op: EqOp, Left: l, Right: r} }
func Neq(l, r Condition) Cmp { return Cmp{Op: NeqOp, Left: l, Right: r} }
func Lt(l, r Condition) Cmp { return Cmp{Op: LtOp, Left: l, Right: r} }
func Lte(l, r Condition) Cmp { return Cmp{Op: LteOp, Left: l, Right: r} }
func Gt(l, r Condition) Cmp { return Lt(r, l) }
func Gte(l, r Condition) Cmp { return Lte(r, l) }

// not <, not <=, not > and not >=
func Nlt(l, r Condition) Cmp { return Lte(r, l) }
func Nlte(l, r Condition) Cmp { return Lt(r, l) }
func Ngt(l, r Condition) Cmp { return Lte(l, r) }
func Ngte(l, r Condition) Cmp { return Lt(l, r) }

func (c Cmp) String() string { return format(c, Input.String) }

type And struct {
	Left, Right Condition
}

func (a And) String() string { return format(a, Input.String) }

type Or struct {
	Left, Right Condition
}

func (o Or) String() string { return format(o, Input.String) }

type ArrayItem struct {
	Cond   Condition
	Spread bool
}

// Array is an array literal whose items may be spread arrays.
type Array struct {
	Items []ArrayItem
}

func (a Array) String() string { return format(a, Input.String) }

// Error stands for a part of an expression that could not be represented.
// It is only satisfied by itself.
type Error struct{}

func (Error) String() string { return "error" }

// AndAll folds conds with And. It returns nil for an empty slice.
func AndAll(conds ...Condition) Condition {
	var res Condition
	for _, c := range conds {
		if res == nil {
			res = c
			continue
		}
		res = And{Left: res, Right: c}
	}
	return res
}

// Equal reports whether a and b are the same tree.
func Equal(a, b Condition) bool {
	switch a := a.(type) {
	case Constant:
		b, ok := b.(Constant)
		return ok && a == b
	case Input:
		b, ok := b.(Input)
		return ok && a == b
	case Error:
		_, ok := b.(Error)
		return ok
	case Unary:
		b, ok := b.(Unary)
		return ok && a.Op == b.Op && Equal(a.Operand, b.Operand)
	case Binary:
		b, ok := b.(Binary)
		return ok && a.Op == b.Op && Equal(a.Left, b.Left) && Equal(a.Right, b.Right)
	case Cmp:
		b, ok := b.(Cmp)
		return ok && a.Op == b.Op && Equal(a.Left, b.Left) && Equal(a.Right, b.Right)
	case And:
		b, ok := b.(And)
		return ok && Equal(a.Left, b.Left) && Equal(a.Right, b.Right)
	case Or:
		b, ok := b.(Or)
		return ok && Equal(a.Left, b.Left) && Equal(a.Right, b.Right)
	case Array:
		b, ok := b.(Array)
		if !ok || len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if a.Items[i].Spread != b.Items[i].Spread || !Equal(a.Items[i].Cond, b.Items[i].Cond) {
				return false
			}
		}
		return true
	}
	panic(fmt.Sprintf("unknown condition %T", a))
}

// MapInputs rewrites every input of c through mapping. Inputs missing from
// mapping are kept.
func MapInputs(c Condition, mapping map[Input]Input) Condition {
	return c.mapInputs(mapping)
}

func (c Constant) mapInputs(map[Input]Input) Condition { return c }
func (e Error) mapInputs(map[Input]Input) Condition { return e }

func (in Input) mapInputs(mapping map[Input]Input) Condition {
	if to, ok := mapping[in]; ok {
		return to
	}
	return in
}

func (u Unary) mapInputs(mapping map[Input]Input) Condition {
	return Unary{Op: u.Op, Operand: u.Operand.mapInputs(mapping)}
}

func (b Binary) mapInputs(mapping map[Input]Input) Condition {
	return Binary{Op: b.Op, Left: b.Left.mapInputs(mapping), Right: b.Right.mapInputs(mapping)}
}

func (c Cmp) mapInputs(mapping map[Input]Input) Condition {
	return Cmp{Op: c.Op, Left: c.Left.mapInputs(mapping), Right: c.Right.mapInputs(mapping)}
}

func (a And) mapInputs(mapping map[Input]Input) Condition {
	return And{Left: a.Left.mapInputs(mapping), Right: a.Right.mapInputs(mapping)}
}

func (o Or) mapInputs(mapping map[Input]Input) Condition {
	return Or{Left: o.Left.mapInputs(mapping), Right: o.Right.mapInputs(mapping)}
}

func (a Array) mapInputs(mapping map[Input]Input) Condition {
	items := make([]ArrayItem, len(a.Items))
	for i, item := range a.Items {
		items[i] = ArrayItem{Cond: item.Cond.mapInputs(mapping), Spread: item.Spread}
	}
	return Array{Items: items}
}

// ContainsError reports whether an Error node occurs anywhere in c.
func ContainsError(c Condition) bool {
	switch c := c.(type) {
	case Error:
		return true
	case Unary:
		return ContainsError(c.Operand)
	case Binary:
		return ContainsError(c.Left) || ContainsError(c.Right)
	case Cmp:
		return ContainsError(c.Left) || ContainsError(c.Right)
	case And:
		return ContainsError(c.Left) || ContainsError(c.Right)
	case Or:
		return ContainsError(c.Left) || ContainsError(c.Right)
	case Array:
		for _, item := range c.Items {
			if ContainsError(item.Cond) {
				return true
			}
		}
	}
	return false
}

const (
	precOr = iota + 1
	precAnd
	precCmp
	precSum
	precProduct
	precUnary
	precAtom
)

func precOf(c Condition) int {
	switch c := c.(type) {
	case Or:
		return precOr
	case And:
		return precAnd
	case Cmp:
		return precCmp
	case Binary:
		if c.Op == AddOp || c.Op == SubOp {
			return precSum
		}
		return precProduct
	case Unary:
		if c.Op == AbsOp {
			return precAtom
		}
		return precUnary
	}
	return precAtom
}

// format renders c in source syntax, naming inputs with name. Left operands
// are parenthesised below their parent's precedence and right operands at or
// below it, so distinct trees never render the same.
func format(c Condition, name func(Input) string) string {
	var sb strings.Builder
	write(&sb, c, name)
	return sb.String()
}

func write(sb *strings.Builder, c Condition, name func(Input) string) {
	switch c := c.(type) {
	case Constant, Error:
		sb.WriteString(c.String())
	case Input:
		sb.WriteString(name(c))
	case Unary:
		switch c.Op {
		case NegOp:
			sb.WriteString("-")
			writeOperand(sb, c.Operand, precUnary, name)
		case NotOp:
			sb.WriteString("not ")
			writeOperand(sb, c.Operand, precUnary, name)
		case AbsOp:
			sb.WriteString("|")
			write(sb, c.Operand, name)
			sb.WriteString("|")
		}
	case Binary:
		writeInfix(sb, c.Left, binarySymbols[c.Op], c.Right, precOf(c), name)
	case Cmp:
		writeInfix(sb, c.Left, cmpSymbols[c.Op], c.Right, precCmp, name)
	case And:
		writeInfix(sb, c.Left, "and", c.Right, precAnd, name)
	case Or:
		writeInfix(sb, c.Left, "or", c.Right, precOr, name)
	case Array:
		sb.WriteString("[")
		for i, item := range c.Items {
			if i > 0 {
				sb.WriteString(", ")
			}
			if item.Spread {
				sb.WriteString("...")
			}
			write(sb, item.Cond, name)
		}
		sb.WriteString("]")
	default:
		panic(fmt.Sprintf("unknown condition %T", c))
	}
}

func writeInfix(sb *strings.Builder, left Condition, op string, right Condition, prec int, name func(Input) string) {
	writeOperand(sb, left, prec, name)
	sb.WriteString(" " + op + " ")
	writeOperand(sb, right, prec+1, name)
}

func writeOperand(sb *strings.Builder, c Condition, min int, name func(Input) string) {
	if precOf(c) < min {
		sb.WriteString("(")
		write(sb, c, name)
		sb.WriteString(")")
		return
	}
	write(sb, c, name)
}
