package ast

import (
	"strconv"
	"strings"

	"github.com/pint-lang/pint/token"
	"github.com/pint-lang/pint/types"
)

// The base Node interface
type Node interface {
	Tok() token.Token
	String() string
}

// Statements appear in blocks. Every expression is a statement; the last
// statement of a block, when it is a bare expression, is the block's value.
type Stmt interface {
	Node
	// Type is filled in by the checker and is nil before.
	Type() types.Type
	stmtNode()
}

// All expression nodes implement this
type Expr interface {
	Stmt
	exprNode()
}

// Definitions appear at the top level of a file.
type Def interface {
	Node
	DefName() string
	defNode()
}

// TypeExpr is a type as written in source.
type TypeExpr interface {
	Node
	Type() types.Type
	typeNode()
}

type File struct {
	Defs []Def
}

func (f *File) Tok() token.Token {
	if len(f.Defs) > 0 {
		return f.Defs[0].Tok()
	}
	return token.Token{Type: token.EOF}
}

func (f *File) String() string {
	parts := make([]string, len(f.Defs))
	for i, d := range f.Defs {
		parts[i] = d.String()
	}
	return strings.Join(parts, "\n")
}

// Definitions

type Param struct {
	Token token.Token // the name
	Name  string
	Type  TypeExpr
}

func (p *Param) Tok() token.Token { return p.Token }
func (p *Param) String() string   { return p.Name + ": " + p.Type.String() }

type FuncDef struct {
	Token  token.Token // the let token
	Name   string
	Params []*Param
	Return TypeExpr
	Body   *BlockExpr
}

func (fd *FuncDef) defNode()         {}
func (fd *FuncDef) DefName() string  { return fd.Name }
func (fd *FuncDef) Tok() token.Token { return fd.Token }
func (fd *FuncDef) String() string {
	params := make([]string, len(fd.Params))
	for i, p := range fd.Params {
		params[i] = p.String()
	}
	return "let " + fd.Name + "(" + strings.Join(params, ", ") + ") -> " + fd.Return.String() + " " + fd.Body.String()
}

// VarDef is both a global definition and a block statement.
type VarDef struct {
	Token token.Token // the let token
	Name  string
	Decl  TypeExpr
	Value Expr
	Typ   types.Type
}

func (vd *VarDef) defNode()         {}
func (vd *VarDef) stmtNode()        {}
func (vd *VarDef) DefName() string  { return vd.Name }
func (vd *VarDef) Tok() token.Token { return vd.Token }
func (vd *VarDef) Type() types.Type { return vd.Typ }
func (vd *VarDef) String() string {
	return "let " + vd.Name + ": " + vd.Decl.String() + " := " + vd.Value.String() + ";"
}

// Statements

type NopStat struct {
	Token token.Token // the ; token
	Typ   types.Type
}

func (ns *NopStat) stmtNode()        {}
func (ns *NopStat) Tok() token.Token { return ns.Token }
func (ns *NopStat) Type() types.Type { return ns.Typ }
func (ns *NopStat) String() string   { return ";" }

// ExprStat is an expression followed by a semicolon.
type ExprStat struct {
	Expr Expr
	Typ  types.Type
}

func (es *ExprStat) stmtNode()        {}
func (es *ExprStat) Tok() token.Token { return es.Expr.Tok() }
func (es *ExprStat) Type() types.Type { return es.Typ }
func (es *ExprStat) String() string   { return es.Expr.String() + ";" }

// Types

// NamedType is one of the primitive types: int, string, bool or unit.
type NamedType struct {
	Token token.Token
	Name  string
	Typ   types.Type
}

func (nt *NamedType) typeNode()        {}
func (nt *NamedType) Tok() token.Token { return nt.Token }
func (nt *NamedType) Type() types.Type { return nt.Typ }
func (nt *NamedType) String() string   { return nt.Name }

type ArrayType struct {
	Token token.Token // the [ token
	Elem  TypeExpr
	Typ   types.Type
}

func (at *ArrayType) typeNode()        {}
func (at *ArrayType) Tok() token.Token { return at.Token }
func (at *ArrayType) Type() types.Type { return at.Typ }
func (at *ArrayType) String() string {
	if _, ok := at.Elem.(*ConditionType); ok {
		return "(" + at.Elem.String() + ")[]"
	}
	return at.Elem.String() + "[]"
}

// ConditionType is a refinement: Base values for which Cond holds, with it
// standing for the value.
type ConditionType struct {
	Token token.Token // the when token
	Base  TypeExpr
	Cond  Expr
	Typ   types.Type
}

func (ct *ConditionType) typeNode()        {}
func (ct *ConditionType) Tok() token.Token { return ct.Token }
func (ct *ConditionType) Type() types.Type { return ct.Typ }
func (ct *ConditionType) String() string {
	return ct.Base.String() + " when " + ct.Cond.String()
}

// Expressions

type UnaryOp int

const (
	Plus UnaryOp = iota
	Neg
	Not
	Abs
)

var unaryOps = [...]string{Plus: "+", Neg: "-", Not: "not ", Abs: "|"}

func (op UnaryOp) String() string { return unaryOps[op] }

type UnaryExpr struct {
	Token   token.Token
	Op      UnaryOp
	Operand Expr
	Typ     types.Type
}

func (ue *UnaryExpr) stmtNode()        {}
func (ue *UnaryExpr) exprNode()        {}
func (ue *UnaryExpr) Tok() token.Token { return ue.Token }
func (ue *UnaryExpr) Type() types.Type { return ue.Typ }
func (ue *UnaryExpr) String() string {
	if ue.Op == Abs {
		return "|" + ue.Operand.String() + "|"
	}
	return "(" + ue.Op.String() + ue.Operand.String() + ")"
}

type BinaryOp int

const (
	Assign BinaryOp = iota
	AddAssign
	SubAssign
	MulAssign
	DivAssign
	Or
	And
	Eq
	Neq
	Lt
	Nlt
	Le
	Nle
	Gt
	Ngt
	Ge
	Nge
	Add
	Sub
	Mul
	Div
)

var binaryOps = [...]string{
	Assign:    ":=",
	AddAssign: ":+=",
	SubAssign: ":-=",
	MulAssign: ":*=",
	DivAssign: ":/=",
	Or:        "or",
	And:       "and",
	Eq:        "=",
	Neq:       "not =",
	Lt:        "<",
	Nlt:       "not <",
	Le:        "<=",
	Nle:       "not <=",
	Gt:        ">",
	Ngt:       "not >",
	Ge:        ">=",
	Nge:       "not >=",
	Add:       "+",
	Sub:       "-",
	Mul:       "*",
	Div:       "/",
}

func (op BinaryOp) String() string { return binaryOps[op] }

func (op BinaryOp) IsAssign() bool { return op <= DivAssign }

func (op BinaryOp) IsComparison() bool { return Eq <= op && op <= Nge }

func (op BinaryOp) IsArithmetic() bool { return Add <= op && op <= Div }

type BinaryExpr struct {
	Token       token.Token // the operator token
	Op          BinaryOp
	Left, Right Expr
	Typ         types.Type
}

func (be *BinaryExpr) stmtNode()        {}
func (be *BinaryExpr) exprNode()        {}
func (be *BinaryExpr) Tok() token.Token { return be.Token }
func (be *BinaryExpr) Type() types.Type { return be.Typ }
func (be *BinaryExpr) String() string {
	return "(" + be.Left.String() + " " + be.Op.String() + " " + be.Right.String() + ")"
}

type BlockExpr struct {
	Token token.Token // the { token
	Label string      // empty when unlabeled
	Stats []Stmt
	Typ   types.Type
}

func (b *BlockExpr) stmtNode()        {}
func (b *BlockExpr) exprNode()        {}
func (b *BlockExpr) Tok() token.Token { return b.Token }
func (b *BlockExpr) Type() types.Type { return b.Typ }
func (b *BlockExpr) String() string {
	var out strings.Builder
	writeLabel(&out, b.Label)
	if len(b.Stats) == 0 {
		out.WriteString("{}")
		return out.String()
	}
	out.WriteString("{ ")
	for i, s := range b.Stats {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(s.String())
	}
	out.WriteString(" }")
	return out.String()
}

type VarExpr struct {
	Token token.Token
	Name  string
	Typ   types.Type
}

func (v *VarExpr) stmtNode()        {}
func (v *VarExpr) exprNode()        {}
func (v *VarExpr) Tok() token.Token { return v.Token }
func (v *VarExpr) Type() types.Type { return v.Typ }
func (v *VarExpr) String() string   { return v.Name }

type CallExpr struct {
	Token token.Token // the function name
	Func  string
	Args  []Expr
	Typ   types.Type
}

func (c *CallExpr) stmtNode()        {}
func (c *CallExpr) exprNode()        {}
func (c *CallExpr) Tok() token.Token { return c.Token }
func (c *CallExpr) Type() types.Type { return c.Typ }
func (c *CallExpr) String() string   { return c.Func + "(" + joinExprs(c.Args) + ")" }

type IndexExpr struct {
	Token   token.Token // the [ token
	Indexee Expr
	Index   Expr
	Typ     types.Type
}

func (ie *IndexExpr) stmtNode()        {}
func (ie *IndexExpr) exprNode()        {}
func (ie *IndexExpr) Tok() token.Token { return ie.Token }
func (ie *IndexExpr) Type() types.Type { return ie.Typ }
func (ie *IndexExpr) String() string {
	return ie.Indexee.String() + "[" + ie.Index.String() + "]"
}

// SliceExpr takes elements From up to but excluding To. Either bound may be
// nil.
type SliceExpr struct {
	Token    token.Token // the [ token
	Slicee   Expr
	From, To Expr
	Typ      types.Type
}

func (se *SliceExpr) stmtNode()        {}
func (se *SliceExpr) exprNode()        {}
func (se *SliceExpr) Tok() token.Token { return se.Token }
func (se *SliceExpr) Type() types.Type { return se.Typ }
func (se *SliceExpr) String() string {
	var out strings.Builder
	out.WriteString(se.Slicee.String() + "[")
	if se.From != nil {
		out.WriteString(se.From.String())
	}
	out.WriteString("...")
	if se.To != nil {
		out.WriteString(se.To.String())
	}
	out.WriteString("]")
	return out.String()
}

// ItExpr is the refined value inside a type condition.
type ItExpr struct {
	Token token.Token
	Typ   types.Type
}

func (it *ItExpr) stmtNode()        {}
func (it *ItExpr) exprNode()        {}
func (it *ItExpr) Tok() token.Token { return it.Token }
func (it *ItExpr) Type() types.Type { return it.Typ }
func (it *ItExpr) String() string   { return "it" }

type IfExpr struct {
	Token token.Token // the if token
	Cond  Expr
	Then  Expr
	Else  Expr // nil without an else branch
	Typ   types.Type
}

func (ie *IfExpr) stmtNode()        {}
func (ie *IfExpr) exprNode()        {}
func (ie *IfExpr) Tok() token.Token { return ie.Token }
func (ie *IfExpr) Type() types.Type { return ie.Typ }
func (ie *IfExpr) String() string {
	s := "if " + ie.Cond.String() + " then " + ie.Then.String()
	if ie.Else != nil {
		s += " else " + ie.Else.String()
	}
	return s
}

type LoopExpr struct {
	Token token.Token // the loop token
	Label string
	Body  Expr
	Typ   types.Type
}

func (le *LoopExpr) stmtNode()        {}
func (le *LoopExpr) exprNode()        {}
func (le *LoopExpr) Tok() token.Token { return le.Token }
func (le *LoopExpr) Type() types.Type { return le.Typ }
func (le *LoopExpr) String() string {
	var out strings.Builder
	writeLabel(&out, le.Label)
	out.WriteString("loop " + le.Body.String())
	return out.String()
}

type WhileExpr struct {
	Token token.Token // the while token
	Label string
	Cond  Expr
	Body  Expr
	Typ   types.Type
}

func (we *WhileExpr) stmtNode()        {}
func (we *WhileExpr) exprNode()        {}
func (we *WhileExpr) Tok() token.Token { return we.Token }
func (we *WhileExpr) Type() types.Type { return we.Typ }
func (we *WhileExpr) String() string {
	var out strings.Builder
	writeLabel(&out, we.Label)
	out.WriteString("while " + we.Cond.String() + " loop " + we.Body.String())
	return out.String()
}

type JumpKind int

const (
	Return JumpKind = iota
	Break
	Continue
)

var jumpKinds = [...]string{Return: "return", Break: "break", Continue: "continue"}

func (k JumpKind) String() string { return jumpKinds[k] }

type JumpExpr struct {
	Token token.Token
	Kind  JumpKind
	Label string // empty when anonymous
	Value Expr   // nil without a value
	Typ   types.Type
}

func (je *JumpExpr) stmtNode()        {}
func (je *JumpExpr) exprNode()        {}
func (je *JumpExpr) Tok() token.Token { return je.Token }
func (je *JumpExpr) Type() types.Type { return je.Typ }
func (je *JumpExpr) String() string {
	s := je.Kind.String()
	if je.Label != "" {
		s += "@" + je.Label
	}
	if je.Value != nil {
		s += " " + je.Value.String()
	}
	return s
}

type ArrayItem struct {
	Value  Expr
	Spread bool
}

type ArrayLiteral struct {
	Token token.Token // the [ token
	Items []ArrayItem
	Typ   types.Type
}

func (al *ArrayLiteral) stmtNode()        {}
func (al *ArrayLiteral) exprNode()        {}
func (al *ArrayLiteral) Tok() token.Token { return al.Token }
func (al *ArrayLiteral) Type() types.Type { return al.Typ }
func (al *ArrayLiteral) String() string {
	items := make([]string, len(al.Items))
	for i, item := range al.Items {
		items[i] = item.Value.String()
		if item.Spread {
			items[i] = "..." + items[i]
		}
	}
	return "[" + strings.Join(items, ", ") + "]"
}

type StringLiteral struct {
	Token token.Token
	Value string
	Typ   types.Type
}

func (sl *StringLiteral) stmtNode()        {}
func (sl *StringLiteral) exprNode()        {}
func (sl *StringLiteral) Tok() token.Token { return sl.Token }
func (sl *StringLiteral) Type() types.Type { return sl.Typ }
func (sl *StringLiteral) String() string   { return strconv.Quote(sl.Value) }

type IntLiteral struct {
	Token token.Token
	Value int64
	Typ   types.Type
}

func (il *IntLiteral) stmtNode()        {}
func (il *IntLiteral) exprNode()        {}
func (il *IntLiteral) Tok() token.Token { return il.Token }
func (il *IntLiteral) Type() types.Type { return il.Typ }
func (il *IntLiteral) String() string   { return strconv.FormatInt(il.Value, 10) }

type BoolLiteral struct {
	Token token.Token
	Value bool
	Typ   types.Type
}

func (bl *BoolLiteral) stmtNode()        {}
func (bl *BoolLiteral) exprNode()        {}
func (bl *BoolLiteral) Tok() token.Token { return bl.Token }
func (bl *BoolLiteral) Type() types.Type { return bl.Typ }
func (bl *BoolLiteral) String() string   { return strconv.FormatBool(bl.Value) }

type UnitLiteral struct {
	Token token.Token
	Typ   types.Type
}

func (ul *UnitLiteral) stmtNode()        {}
func (ul *UnitLiteral) exprNode()        {}
func (ul *UnitLiteral) Tok() token.Token { return ul.Token }
func (ul *UnitLiteral) Type() types.Type { return ul.Typ }
func (ul *UnitLiteral) String() string   { return "unit" }

func writeLabel(out *strings.Builder, label string) {
	if label != "" {
		out.WriteString(label + ": ")
	}
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
