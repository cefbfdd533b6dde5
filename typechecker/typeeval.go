package typechecker

import (
	"errors"
	"fmt"

	"github.com/pint-lang/pint/ast"
	"github.com/pint-lang/pint/types"
	"github.com/pint-lang/pint/types/cond"
)

// evalType turns a written type into a types.Type and records it on the
// node.
func (c *Checker) evalType(te ast.TypeExpr) types.Type {
	switch t := te.(type) {
	case *ast.NamedType:
		if p, ok := types.LookupPrimitive(t.Name); ok {
			t.Typ = p
		} else {
			t.Typ = c.log.Errorf(t.Token, "no such type as '%s'", t.Name)
		}
		return t.Typ
	case *ast.ArrayType:
		t.Typ = types.Error
		if elem := c.evalType(t.Elem); elem != types.Error {
			t.Typ = types.Array{Elem: elem}
		}
		return t.Typ
	case *ast.ConditionType:
		t.Typ = c.evalCondition(t)
		return t.Typ
	}
	panic(fmt.Sprintf("unknown type expression %T", te))
}

func (c *Checker) evalCondition(t *ast.ConditionType) types.Type {
	base := c.evalType(t.Base)
	saved := c.it
	c.it = base
	condition := c.checkExpr(t.Cond)
	c.it = saved

	switch {
	case base == types.Error || condition == types.Error:
		return types.Error
	case !types.CanBe(condition, types.Bool):
		return c.log.Errorf(t.Cond.Tok(), "type conditions must be booleans, got '%s'", condition)
	}
	b := cond.NewBuilder()
	pred, err := BuildCondition(t.Cond, "", b)
	if err == nil && cond.ContainsError(pred) {
		err = errors.New("the condition has no symbolic form")
	}
	if err != nil {
		return c.log.Errorf(t.Cond.Tok(), "invalid type condition: %v", err)
	}
	return types.JoinCondition(base, pred, b.Finish())
}
