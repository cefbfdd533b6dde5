package typechecker

import (
	"github.com/pint-lang/pint/ast"
	"github.com/pint-lang/pint/token"
	"github.com/pint-lang/pint/types"
	"github.com/pint-lang/pint/types/cond"
)

// boundType is the int refinement "it >= lower and it < |seq|", or with <=
// when inclusive. The condition is built from a synthetic guard, the same
// way narrowing builds one from source. ok is false when lower or seq has
// no symbolic form.
func boundType(tok token.Token, lower, seq ast.Expr, inclusive bool) (t types.Type, ok bool) {
	it := &ast.ItExpr{Token: tok}
	upper := ast.Lt
	if inclusive {
		upper = ast.Le
	}
	guard := &ast.BinaryExpr{
		Token: tok,
		Op:    ast.And,
		Left:  &ast.BinaryExpr{Token: tok, Op: ast.Ge, Left: it, Right: lower},
		Right: &ast.BinaryExpr{
			Token: tok,
			Op:    upper,
			Left:  it,
			Right: &ast.UnaryExpr{Token: tok, Op: ast.Abs, Operand: seq},
		},
	}
	b := cond.NewBuilder()
	pred, err := BuildCondition(guard, "", b)
	if err != nil {
		return nil, false
	}
	return types.Refine(types.Int, pred, b.Finish()), true
}

// inBounds reports whether value is statically known to meet the bound.
func (c *Checker) inBounds(value ast.Expr, tok token.Token, lower, seq ast.Expr, inclusive bool) bool {
	required, ok := boundType(tok, lower, seq, inclusive)
	return ok && c.assignable(value, required)
}

func zero(tok token.Token) ast.Expr {
	return &ast.IntLiteral{Token: tok, Value: 0, Typ: types.Int}
}

func (c *Checker) checkIndex(e *ast.IndexExpr) types.Type {
	indexee := c.checkExpr(e.Indexee)
	index := c.checkExpr(e.Index)
	if indexee == types.Error || index == types.Error {
		return types.Error
	}
	arr, ok := types.AsArray(indexee)
	if !ok {
		return c.log.Errorf(e.Token, "only arrays can be indexed, got '%s'", indexee)
	}
	if !types.CanBe(index, types.Int) {
		return c.log.Errorf(e.Index.Tok(), "only integers can be used as indices, got '%s'", index)
	}
	if !c.inBounds(e.Index, e.Token, zero(e.Token), e.Indexee, false) {
		return c.log.Errorf(e.Index.Tok(), "only int when it >= 0 and it < |%s| can be used as an index, got '%s'", e.Indexee, index)
	}
	return arr.Elem
}

// checkSlice requires 0 <= from <= |slicee| and from <= to <= |slicee|, with
// a missing from counting as 0.
func (c *Checker) checkSlice(e *ast.SliceExpr) types.Type {
	slicee := c.checkExpr(e.Slicee)
	var from, to types.Type = types.Int, types.Int
	if e.From != nil {
		from = c.checkExpr(e.From)
	}
	if e.To != nil {
		to = c.checkExpr(e.To)
	}
	if slicee == types.Error || from == types.Error || to == types.Error {
		return types.Error
	}
	arr, ok := types.AsArray(slicee)
	if !ok {
		return c.log.Errorf(e.Token, "only arrays can be sliced, got '%s'", slicee)
	}

	res := types.Type(arr)
	lower := zero(e.Token)
	if e.From != nil {
		switch {
		case !types.CanBe(from, types.Int):
			res = c.log.Errorf(e.From.Tok(), "only integers can be used as slice bounds, got '%s'", from)
		case !c.inBounds(e.From, e.Token, lower, e.Slicee, true):
			res = c.log.Errorf(e.From.Tok(), "only int when it >= 0 and it <= |%s| can start a slice, got '%s'", e.Slicee, from)
		}
		lower = e.From
	}
	if e.To != nil {
		switch {
		case !types.CanBe(to, types.Int):
			res = c.log.Errorf(e.To.Tok(), "only integers can be used as slice bounds, got '%s'", to)
		case !c.inBounds(e.To, e.Token, lower, e.Slicee, true):
			res = c.log.Errorf(e.To.Tok(), "only int when it >= %s and it <= |%s| can end a slice, got '%s'", lower, e.Slicee, to)
		}
	}
	return res
}
