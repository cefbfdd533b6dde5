// Package typechecker assigns a type to every node of a parsed file and
// reports the places where types do not fit. Refinement types are checked
// statically: a guard narrows the variables it mentions, and indexing needs
// an index that is provably in bounds.
package typechecker

import (
	"fmt"
	"maps"
	"slices"

	"github.com/pint-lang/pint/ast"
	"github.com/pint-lang/pint/token"
	"github.com/pint-lang/pint/types"
	"github.com/pint-lang/pint/types/cond"
)

type Checker struct {
	log     *ErrorLogger
	globals *Globals
	vars    VarScopeStack
	jumps   JumpScopeStack
	sigs    map[*ast.FuncDef]*FuncType
	defined map[string]bool // functions written in Pint, which may assign globals

	fn *FuncType  // the function being checked, nil at the top level
	it types.Type // the type of it inside a type condition, nil elsewhere
}

func New(globals *Globals, log *ErrorLogger) *Checker {
	return &Checker{
		log:     log,
		globals: globals,
		sigs:    make(map[*ast.FuncDef]*FuncType),
		defined: make(map[string]bool),
	}
}

func (c *Checker) Globals() *Globals { return c.globals }

func (c *Checker) Log() *ErrorLogger { return c.log }

// CheckFile declares every definition of f and then checks them, so
// definitions may refer to functions defined further down.
func (c *Checker) CheckFile(f *ast.File) {
	for _, def := range f.Defs {
		c.declare(def)
	}
	for _, def := range f.Defs {
		c.checkDef(def)
	}
}

// CheckExpr types a top-level expression.
func (c *Checker) CheckExpr(e ast.Expr) types.Type {
	return c.checkExpr(e)
}

// DeclareExtern adds a function implemented outside Pint.
func (c *Checker) DeclareExtern(name string, params []*ast.Param, ret ast.TypeExpr) {
	ft := c.signature(params, ret)
	if err := c.globals.AddFunc(name, ft); err != nil {
		c.log.Errorf(ret.Tok(), "%v", err)
	}
}

func (c *Checker) declare(def ast.Def) {
	switch d := def.(type) {
	case *ast.FuncDef:
		ft := c.signature(d.Params, d.Return)
		c.sigs[d] = ft
		c.defined[d.Name] = true
		if err := c.globals.AddFunc(d.Name, ft); err != nil {
			c.log.Errorf(d.Token, "%v", err)
		}
	case *ast.VarDef:
		t := c.evalType(d.Decl)
		if err := c.globals.AddVar(d.Name, t); err != nil {
			c.log.Errorf(d.Token, "%v", err)
		}
	default:
		panic(fmt.Sprintf("unknown definition %T", def))
	}
}

// signature evaluates parameter types in order with the earlier parameters
// in scope, so a refinement can mention them.
func (c *Checker) signature(params []*ast.Param, ret ast.TypeExpr) *FuncType {
	ft := &FuncType{Params: make([]Param, 0, len(params))}
	c.vars.Push(FuncScope)
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if seen[p.Name] {
			c.log.Errorf(p.Token, "duplicate parameter '%s'", p.Name)
		}
		seen[p.Name] = true
		t := c.evalType(p.Type)
		ft.Params = append(ft.Params, Param{Name: p.Name, Type: t})
		c.vars.Put(p.Name, t)
	}
	ft.Return = c.evalType(ret)
	c.vars.Pop()
	return ft
}

func (c *Checker) checkDef(def ast.Def) {
	switch d := def.(type) {
	case *ast.FuncDef:
		ft := c.sigs[d]
		c.fn = ft
		c.vars.Push(FuncScope)
		for i, p := range ft.Params {
			c.shadow(d.Params[i].Token, p.Name)
			c.vars.Put(p.Name, p.Type)
		}
		body := c.checkExpr(d.Body)
		if body != types.Error && ft.Return != types.Error && !c.assignable(d.Body, ft.Return) {
			c.log.Errorf(d.Body.Token, "tried to return '%s' from function '%s' returning '%s'", body, d.Name, ft.Return)
		}
		c.vars.Pop()
		c.fn = nil
	case *ast.VarDef:
		d.Typ = c.checkInit(d, d.Decl.Type())
	default:
		panic(fmt.Sprintf("unknown definition %T", def))
	}
}

func (c *Checker) checkInit(vd *ast.VarDef, declared types.Type) types.Type {
	value := c.checkExpr(vd.Value)
	if value == types.Error || declared == types.Error {
		return types.Error
	}
	if !c.assignable(vd.Value, declared) {
		return c.log.Errorf(vd.Value.Tok(), "cannot initialize '%s' of type '%s' with a value of type '%s'", vd.Name, declared, value)
	}
	return types.Unit
}

// assignable reports whether the value of e may be stored where required is
// expected. Besides CanBe, a refined requirement may be met by what is known
// about the value itself: 0 is an int when it >= 0.
func (c *Checker) assignable(e ast.Expr, required types.Type) bool {
	t := e.Type()
	if types.CanBe(t, required) {
		return true
	}
	if required.Kind() != types.RefinedKind || t == types.Error {
		return false
	}
	b := cond.NewBuilder()
	value, err := BuildCondition(e, "", b)
	if err != nil {
		return false
	}
	fact := cond.Eq(b.It(), value)
	return types.CanBe(types.JoinCondition(t, fact, b.Finish()), required)
}

func (c *Checker) lookupVar(name string) (types.Type, bool) {
	if t, ok := c.vars.Get(name); ok {
		return t, true
	}
	return c.globals.Var(name)
}

func (c *Checker) checkStmt(s ast.Stmt) types.Type {
	switch s := s.(type) {
	case *ast.VarDef:
		declared := c.evalType(s.Decl)
		s.Typ = c.checkInit(s, declared)
		c.shadow(s.Token, s.Name)
		c.vars.Put(s.Name, declared)
		return s.Typ
	case *ast.NopStat:
		s.Typ = types.Unit
		return s.Typ
	case *ast.ExprStat:
		s.Typ = types.Unit
		if t := c.checkExpr(s.Expr); t == types.Error || t == types.Never {
			s.Typ = t
		}
		return s.Typ
	case ast.Expr:
		return c.checkExpr(s)
	}
	panic(fmt.Sprintf("unknown statement %T", s))
}

func (c *Checker) checkExpr(e ast.Expr) types.Type {
	switch e := e.(type) {
	case *ast.UnaryExpr:
		e.Typ = c.checkUnary(e)
		return e.Typ
	case *ast.BinaryExpr:
		e.Typ = c.checkBinary(e)
		return e.Typ
	case *ast.BlockExpr:
		e.Typ = c.checkBlock(e)
		return e.Typ
	case *ast.VarExpr:
		e.Typ = c.checkVar(e)
		return e.Typ
	case *ast.CallExpr:
		e.Typ = c.checkCall(e)
		return e.Typ
	case *ast.IndexExpr:
		e.Typ = c.checkIndex(e)
		return e.Typ
	case *ast.SliceExpr:
		e.Typ = c.checkSlice(e)
		return e.Typ
	case *ast.ItExpr:
		e.Typ = c.it
		if e.Typ == nil {
			e.Typ = c.log.Errorf(e.Token, "'it' can only be used in a type condition")
		}
		return e.Typ
	case *ast.IfExpr:
		e.Typ = c.checkIf(e)
		return e.Typ
	case *ast.LoopExpr:
		e.Typ = c.checkLoop(e)
		return e.Typ
	case *ast.WhileExpr:
		e.Typ = c.checkWhile(e)
		return e.Typ
	case *ast.JumpExpr:
		e.Typ = c.checkJump(e)
		return e.Typ
	case *ast.ArrayLiteral:
		e.Typ = c.checkArrayLiteral(e)
		return e.Typ
	case *ast.StringLiteral:
		e.Typ = types.String
		return e.Typ
	case *ast.IntLiteral:
		e.Typ = types.Int
		return e.Typ
	case *ast.BoolLiteral:
		e.Typ = types.Bool
		return e.Typ
	case *ast.UnitLiteral:
		e.Typ = types.Unit
		return e.Typ
	}
	panic(fmt.Sprintf("unknown expression %T", e))
}

func (c *Checker) checkUnary(e *ast.UnaryExpr) types.Type {
	operand := c.checkExpr(e.Operand)
	if operand == types.Error {
		return types.Error
	}
	switch e.Op {
	case ast.Plus, ast.Neg:
		if types.CanBe(operand, types.Int) {
			return types.Int
		}
		return c.log.Errorf(e.Token, "unary arithmetic operators only apply to integers, got '%s'", operand)
	case ast.Not:
		if types.CanBe(operand, types.Bool) {
			return types.Bool
		}
		return c.log.Errorf(e.Token, "the unary not operator only applies to booleans, got '%s'", operand)
	case ast.Abs:
		if _, isArray := types.AsArray(operand); isArray || types.CanBe(operand, types.Int) || types.CanBe(operand, types.String) {
			return types.Int
		}
		return c.log.Errorf(e.Token, "the magnitude operator only applies to integers, strings and arrays, got '%s'", operand)
	}
	panic(fmt.Sprintf("unknown unary operator %d", e.Op))
}

func (c *Checker) checkBinary(e *ast.BinaryExpr) types.Type {
	if e.Op.IsAssign() {
		return c.checkAssign(e)
	}
	left := c.checkExpr(e.Left)
	right := c.checkExpr(e.Right)
	if left == types.Error || right == types.Error {
		return types.Error
	}
	bothCanBe := func(t types.Type) bool { return types.CanBe(left, t) && types.CanBe(right, t) }

	switch {
	case e.Op == ast.And || e.Op == ast.Or:
		if bothCanBe(types.Bool) {
			return types.Bool
		}
		return c.log.Errorf(e.Token, "binary logical operators only apply to booleans, got '%s' and '%s'", left, right)
	case e.Op == ast.Eq || e.Op == ast.Neq:
		if types.EitherCanBe(types.Unrefined(left), types.Unrefined(right)) {
			return types.Bool
		}
		return c.log.Errorf(e.Token, "binary equality operators only apply to similar types, got '%s' and '%s'", left, right)
	case e.Op.IsComparison():
		if bothCanBe(types.Int) || bothCanBe(types.String) {
			return types.Bool
		}
		return c.log.Errorf(e.Token, "binary comparison operators only apply to integers or strings, got '%s' and '%s'", left, right)
	case e.Op.IsArithmetic():
		if bothCanBe(types.Int) {
			return types.Int
		}
		return c.log.Errorf(e.Token, "binary arithmetic operators only apply to integers, got '%s' and '%s'", left, right)
	}
	panic(fmt.Sprintf("unknown binary operator %s", e.Op))
}

// checkAssign checks the value before the target, so the value still sees
// narrowed types while the target is checked against its declared type.
func (c *Checker) checkAssign(e *ast.BinaryExpr) types.Type {
	right := c.checkExpr(e.Right)
	target, isVar := e.Left.(*ast.VarExpr)
	if isVar {
		c.vars.Invalidate(target.Name)
	}
	left := c.checkExpr(e.Left)
	if left == types.Error || right == types.Error {
		return types.Error
	}
	if _, isIndex := e.Left.(*ast.IndexExpr); !isVar && !isIndex {
		return c.log.Errorf(e.Token, "only variables or elements of an array can be assigned to")
	}
	if isVar && !c.vars.Declared(target.Name) {
		if by, captured := c.globals.CapturedBy(target.Name); captured {
			return c.log.Errorf(e.Token, "cannot assign to '%s', the type of '%s' depends on it", target.Name, by)
		}
	}

	if e.Op == ast.Assign {
		if !c.assignable(e.Right, left) {
			return c.log.Errorf(e.Token, "cannot assign a value of type '%s' to '%s' of type '%s'", right, e.Left, left)
		}
		return types.Unit
	}
	if !types.CanBe(left, types.Int) || !types.CanBe(right, types.Int) {
		return c.log.Errorf(e.Token, "compound assignment operators only apply to integers, got '%s' and '%s'", left, right)
	}
	if left.Kind() == types.RefinedKind {
		return c.log.Errorf(e.Token, "cannot apply %s to '%s' of refined type '%s'", e.Op, e.Left, left)
	}
	return types.Unit
}

func (c *Checker) checkBlock(b *ast.BlockExpr) types.Type {
	c.vars.Push(BlockScope)
	if b.Label != "" {
		c.jumps.PushLabeledOnly(b.Label, types.Never)
	}

	var last types.Type = types.Unit
	hasError := false
	for _, s := range b.Stats {
		last = c.checkStmt(s)
		hasError = hasError || last == types.Error
	}

	if b.Label != "" {
		scope := c.jumps.Pop()
		if !hasError {
			last = scope.UnifyType(last, c.log.At(b.Token))
		}
	}
	c.vars.Pop()
	if hasError {
		return types.Error
	}
	return last
}

func (c *Checker) checkVar(e *ast.VarExpr) types.Type {
	if t, ok := c.lookupVar(e.Name); ok {
		return t
	}
	return c.log.Errorf(e.Token, "no such variable as '%s'", e.Name)
}

func (c *Checker) checkCall(e *ast.CallExpr) types.Type {
	args := make([]types.Type, len(e.Args))
	for i, arg := range e.Args {
		args[i] = c.checkExpr(arg)
	}
	ft, ok := c.globals.Func(e.Func)
	if !ok {
		return c.log.Errorf(e.Token, "no such function as '%s'", e.Func)
	}
	if c.defined[e.Func] {
		c.forgetGlobals()
	}
	if len(ft.Params) != len(args) {
		return c.log.Errorf(e.Token, "function '%s' expected %d arguments, got %d", e.Func, len(ft.Params), len(args))
	}
	hasError := false
	for i, arg := range e.Args {
		param := ft.Params[i]
		if args[i] == types.Error || param.Type == types.Error {
			hasError = true
			continue
		}
		if !c.assignable(arg, param.Type) {
			hasError = true
			c.log.Errorf(arg.Tok(), "function '%s' expected an argument of type '%s', got '%s'", e.Func, param.Type, args[i])
		}
	}
	if hasError {
		return types.Error
	}
	return ft.Return
}

func (c *Checker) checkIf(e *ast.IfExpr) types.Type {
	condition := c.checkExpr(e.Cond)
	isBool := types.CanBe(condition, types.Bool)

	c.vars.Push(NarrowScope)
	if isBool {
		c.narrow(e.Cond)
	}
	then := c.checkExpr(e.Then)
	c.vars.Pop()

	var els types.Type = types.Unit
	if e.Else != nil {
		els = c.checkExpr(e.Else)
	}

	if condition == types.Error || then == types.Error || els == types.Error {
		return types.Error
	}
	if !isBool {
		return c.log.Errorf(e.Cond.Tok(), "if conditions must be booleans, got '%s'", condition)
	}
	if e.Else == nil {
		return types.Unit
	}
	return types.Unify(then, els, c.log.At(e.Token))
}

// shadow makes room for a local variable called name. A global whose type
// captures a global of that name could not be checked while it is hidden.
func (c *Checker) shadow(tok token.Token, name string) {
	if !c.vars.Declared(name) {
		if by, captured := c.globals.CapturedBy(name); captured && !c.vars.Declared(by) {
			c.log.Errorf(tok, "'%s' hides the global that the type of '%s' depends on", name, by)
		}
	}
	c.vars.Shadow(name)
}

// forgetGlobals drops the facts about global variables, which a call may
// have assigned.
func (c *Checker) forgetGlobals() {
	for _, name := range slices.Sorted(maps.Keys(c.globals.Vars())) {
		if !c.vars.Declared(name) {
			c.vars.Invalidate(name)
		}
	}
}

// forgetLoopEffects drops the facts that the parts of a loop may break
// before the next iteration starts.
func (c *Checker) forgetLoopEffects(parts ...ast.Expr) {
	assigned, called := loopEffects(parts...)
	for _, name := range slices.Sorted(assigned.Items()) {
		c.vars.Invalidate(name)
	}
	for name := range called.Items() {
		if c.defined[name] {
			c.forgetGlobals()
			break
		}
	}
}

func (c *Checker) checkLoop(e *ast.LoopExpr) types.Type {
	c.jumps.PushLoop(e.Label, types.Never)
	c.forgetLoopEffects(e.Body)
	body := c.checkExpr(e.Body)
	t := c.jumps.Pop().Type
	if body == types.Error {
		return types.Error
	}
	return t
}

func (c *Checker) checkWhile(e *ast.WhileExpr) types.Type {
	c.jumps.PushLoop(e.Label, types.Unit)
	// the guard is tested again after every pass through the body
	c.forgetLoopEffects(e.Cond, e.Body)
	condition := c.checkExpr(e.Cond)
	isBool := types.CanBe(condition, types.Bool)
	if condition != types.Error && !isBool {
		c.log.Errorf(e.Cond.Tok(), "while conditions must be booleans, got '%s'", condition)
	}

	c.vars.Push(NarrowScope)
	if isBool {
		c.narrow(e.Cond)
	}
	body := c.checkExpr(e.Body)
	c.vars.Pop()

	t := c.jumps.Pop().Type
	if !isBool || body == types.Error {
		return types.Error
	}
	return t
}

func (c *Checker) checkJump(e *ast.JumpExpr) types.Type {
	var value types.Type = types.Unit
	if e.Value != nil {
		value = c.checkExpr(e.Value)
	}
	t := types.Type(types.Never)
	if value == types.Error {
		t = types.Error
	}

	switch e.Kind {
	case ast.Return:
		switch {
		case e.Label != "":
			return c.log.Errorf(e.Token, "return cannot target a label")
		case c.fn == nil:
			return c.log.Errorf(e.Token, "cannot return here")
		case value == types.Error || c.fn.Return == types.Error:
			return types.Error
		}
		if (e.Value == nil && !types.CanBe(types.Unit, c.fn.Return)) ||
			(e.Value != nil && !c.assignable(e.Value, c.fn.Return)) {
			return c.log.Errorf(e.Token, "tried to return '%s' from a function returning '%s'", value, c.fn.Return)
		}
		return t
	case ast.Break:
		scope := c.jumpTarget(e)
		if scope == nil {
			return types.Error
		}
		if scope.UnifyType(value, c.log.At(e.Token)) == types.Error {
			return types.Error
		}
		return t
	case ast.Continue:
		if e.Value != nil {
			return c.log.Errorf(e.Token, "continue cannot carry a value")
		}
		scope := c.jumpTarget(e)
		if scope == nil {
			return types.Error
		}
		if scope.Target == LabeledOnly {
			return c.log.Errorf(e.Token, "cannot continue the labeled block '%s'", scope.Label)
		}
		return t
	}
	panic(fmt.Sprintf("unknown jump kind %d", e.Kind))
}

// jumpTarget resolves the scope a break or continue leaves through. It logs
// and returns nil when there is none.
func (c *Checker) jumpTarget(e *ast.JumpExpr) *JumpScope {
	if e.Label != "" {
		if scope := c.jumps.FindLabeled(e.Label); scope != nil {
			return scope
		}
		c.log.Errorf(e.Token, "no such label as '%s'", e.Label)
		return nil
	}
	scope, err := c.jumps.PeekAnon()
	switch err {
	case nil:
		return scope
	case ErrLabeledOnly:
		c.log.Errorf(e.Token, "cannot anonymously %s to a labeled block", e.Kind)
	default:
		c.log.Errorf(e.Token, "cannot %s here: %v", e.Kind, err)
	}
	return nil
}

// checkArrayLiteral unifies the item types starting from never. Refinements
// of the items are dropped.
func (c *Checker) checkArrayLiteral(e *ast.ArrayLiteral) types.Type {
	var elem types.Type = types.Never
	for _, item := range e.Items {
		t := c.checkExpr(item.Value)
		if t != types.Error && item.Spread {
			arr, ok := types.AsArray(t)
			if !ok {
				t = c.log.Errorf(item.Value.Tok(), "only arrays can be spread, got '%s'", t)
			} else {
				t = arr.Elem
			}
		}
		elem = types.Unify(elem, types.Unrefined(t), c.log.At(item.Value.Tok()))
	}
	if elem == types.Error {
		return types.Error
	}
	return types.Array{Elem: elem}
}
