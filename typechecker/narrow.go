package typechecker

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hashicorp/go-set/v3"
	"github.com/pint-lang/pint/ast"
	"github.com/pint-lang/pint/types"
	"github.com/pint-lang/pint/types/cond"
)

// FindVariables returns the names of the variables expr reads. A name
// defined by a let inside one of expr's blocks is not reported for uses
// after the let within that block.
func FindVariables(expr ast.Expr) *set.Set[string] {
	f := newVariableFinder()
	f.expr(expr)
	return f.found
}

// loopEffects returns the variables that parts assign to and the functions
// they call. Assignments to variables defined inside parts are left out.
func loopEffects(parts ...ast.Expr) (assigned, called *set.Set[string]) {
	f := newVariableFinder()
	for _, e := range parts {
		f.expr(e)
	}
	return f.assigned, f.called
}

func newVariableFinder() *variableFinder {
	return &variableFinder{
		found:    set.New[string](0),
		assigned: set.New[string](0),
		called:   set.New[string](0),
	}
}

type variableFinder struct {
	found    *set.Set[string]
	assigned *set.Set[string]
	called   *set.Set[string]
	// one set of locally defined names per enclosing block
	excluded []*set.Set[string]
}

func (f *variableFinder) isExcluded(name string) bool {
	for _, names := range f.excluded {
		if names.Contains(name) {
			return true
		}
	}
	return false
}

func (f *variableFinder) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.VarDef:
		f.expr(s.Value)
		f.excluded[len(f.excluded)-1].Insert(s.Name)
	case *ast.ExprStat:
		f.expr(s.Expr)
	case *ast.NopStat:
	case ast.Expr:
		f.expr(s)
	default:
		panic(fmt.Sprintf("unknown statement %T", s))
	}
}

func (f *variableFinder) expr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.VarExpr:
		if !f.isExcluded(e.Name) {
			f.found.Insert(e.Name)
		}
	case *ast.UnaryExpr:
		f.expr(e.Operand)
	case *ast.BinaryExpr:
		if target, ok := e.Left.(*ast.VarExpr); ok && e.Op.IsAssign() && !f.isExcluded(target.Name) {
			f.assigned.Insert(target.Name)
		}
		f.expr(e.Left)
		f.expr(e.Right)
	case *ast.BlockExpr:
		f.excluded = append(f.excluded, set.New[string](0))
		for _, s := range e.Stats {
			f.stmt(s)
		}
		f.excluded = f.excluded[:len(f.excluded)-1]
	case *ast.CallExpr:
		f.called.Insert(e.Func)
		for _, arg := range e.Args {
			f.expr(arg)
		}
	case *ast.IndexExpr:
		f.expr(e.Indexee)
		f.expr(e.Index)
	case *ast.SliceExpr:
		f.expr(e.Slicee)
		f.optional(e.From)
		f.optional(e.To)
	case *ast.IfExpr:
		f.expr(e.Cond)
		f.expr(e.Then)
		f.optional(e.Else)
	case *ast.LoopExpr:
		f.expr(e.Body)
	case *ast.WhileExpr:
		f.expr(e.Cond)
		f.expr(e.Body)
	case *ast.JumpExpr:
		f.optional(e.Value)
	case *ast.ArrayLiteral:
		for _, item := range e.Items {
			f.expr(item.Value)
		}
	case *ast.ItExpr, *ast.StringLiteral, *ast.IntLiteral, *ast.BoolLiteral, *ast.UnitLiteral:
	default:
		panic(fmt.Sprintf("unknown expression %T", e))
	}
}

func (f *variableFinder) optional(e ast.Expr) {
	if e != nil {
		f.expr(e)
	}
}

// BuildCondition turns expr into a condition. Uses of the variable target
// and of it become b's "it" input, other variables become named inputs.
// Expressions that have no symbolic form, like calls and blocks, are an
// error and the result is cond.Error.
func BuildCondition(expr ast.Expr, target string, b *cond.Builder) (cond.Condition, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return cond.Int(e.Value), nil
	case *ast.StringLiteral:
		return cond.Str(e.Value), nil
	case *ast.BoolLiteral:
		return cond.Bool(e.Value), nil
	case *ast.UnitLiteral:
		return cond.UnitConst(), nil
	case *ast.ItExpr:
		return b.It(), nil
	case *ast.VarExpr:
		if target != "" && e.Name == target {
			return b.It(), nil
		}
		return b.Var(e.Name), nil
	case *ast.UnaryExpr:
		return buildUnary(e, target, b)
	case *ast.BinaryExpr:
		return buildBinary(e, target, b)
	case *ast.ArrayLiteral:
		items := make([]cond.ArrayItem, len(e.Items))
		for i, item := range e.Items {
			c, err := BuildCondition(item.Value, target, b)
			if err != nil {
				return cond.Error{}, err
			}
			items[i] = cond.ArrayItem{Cond: c, Spread: item.Spread}
		}
		return cond.Array{Items: items}, nil
	}
	return cond.Error{}, fmt.Errorf("%s cannot be used in a condition", describeExpr(expr))
}

func buildUnary(e *ast.UnaryExpr, target string, b *cond.Builder) (cond.Condition, error) {
	if lit, ok := e.Operand.(*ast.IntLiteral); ok && e.Op == ast.Neg {
		return cond.Int(-lit.Value), nil
	}
	operand, err := BuildCondition(e.Operand, target, b)
	if err != nil {
		return cond.Error{}, err
	}
	switch e.Op {
	case ast.Plus:
		return operand, nil
	case ast.Neg:
		return cond.Neg(operand), nil
	case ast.Not:
		return cond.Not(operand), nil
	case ast.Abs:
		return cond.Abs(operand), nil
	}
	panic(fmt.Sprintf("unknown unary operator %d", e.Op))
}

var cmpBuilders = map[ast.BinaryOp]func(l, r cond.Condition) cond.Cmp{
	ast.Eq:  cond.Eq,
	ast.Neq: cond.Neq,
	ast.Lt:  cond.Lt,
	ast.Nlt: cond.Nlt,
	ast.Le:  cond.Lte,
	ast.Nle: cond.Nlte,
	ast.Gt:  cond.Gt,
	ast.Ngt: cond.Ngt,
	ast.Ge:  cond.Gte,
	ast.Nge: cond.Ngte,
}

var arithBuilders = map[ast.BinaryOp]func(l, r cond.Condition) cond.Binary{
	ast.Add: cond.Add,
	ast.Sub: cond.Sub,
	ast.Mul: cond.Mul,
	ast.Div: cond.Div,
}

func buildBinary(e *ast.BinaryExpr, target string, b *cond.Builder) (cond.Condition, error) {
	if e.Op.IsAssign() {
		return cond.Error{}, errors.New("assignments cannot be used in a condition")
	}
	left, err := BuildCondition(e.Left, target, b)
	if err != nil {
		return cond.Error{}, err
	}
	right, err := BuildCondition(e.Right, target, b)
	if err != nil {
		return cond.Error{}, err
	}
	switch e.Op {
	case ast.And:
		return cond.And{Left: left, Right: right}, nil
	case ast.Or:
		return cond.Or{Left: left, Right: right}, nil
	}
	if build, ok := cmpBuilders[e.Op]; ok {
		return build(left, right), nil
	}
	if build, ok := arithBuilders[e.Op]; ok {
		return build(left, right), nil
	}
	panic(fmt.Sprintf("unknown binary operator %s", e.Op))
}

func describeExpr(e ast.Expr) string {
	switch e.(type) {
	case *ast.BlockExpr:
		return "blocks"
	case *ast.CallExpr:
		return "function calls"
	case *ast.IndexExpr:
		return "index expressions"
	case *ast.SliceExpr:
		return "slice expressions"
	case *ast.IfExpr:
		return "if expressions"
	case *ast.LoopExpr:
		return "loops"
	case *ast.WhileExpr:
		return "while loops"
	case *ast.JumpExpr:
		return "jumps"
	}
	return fmt.Sprintf("%T", e)
}

// conjuncts splits e on its top-level ands.
func conjuncts(e ast.Expr) []ast.Expr {
	if be, ok := e.(*ast.BinaryExpr); ok && be.Op == ast.And {
		return append(conjuncts(be.Left), conjuncts(be.Right)...)
	}
	return []ast.Expr{e}
}

// narrow refines the variables guard mentions with what guard tells about
// them and puts the results in the innermost scope, which the caller pushed
// as a NarrowScope for the guarded code. Conjuncts that cannot be expressed
// as conditions are skipped.
func (c *Checker) narrow(guard ast.Expr) {
	parts := conjuncts(guard)
	mentions := make([]*set.Set[string], len(parts))
	for i, part := range parts {
		mentions[i] = FindVariables(part)
	}

	for _, name := range slices.Sorted(FindVariables(guard).Items()) {
		t, ok := c.lookupVar(name)
		if !ok || t == types.Error {
			continue
		}
		narrowed, changed := t, false
		for i, part := range parts {
			if !mentions[i].Contains(name) {
				continue
			}
			b := cond.NewBuilder()
			pred, err := BuildCondition(part, name, b)
			if err != nil {
				continue
			}
			narrowed, changed = types.JoinCondition(narrowed, pred, b.Finish()), true
		}
		if changed {
			c.vars.Put(name, narrowed)
		}
	}
}
