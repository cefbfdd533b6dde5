package parser

import (
	"fmt"
	"strconv"

	"github.com/pint-lang/pint/ast"
	"github.com/pint-lang/pint/lexer"
	"github.com/pint-lang/pint/token"
)

const (
	_ int = iota
	LOWEST
	ASSIGN  // := :+= ...
	OR      // or
	AND     // and
	COMPARE // = < <= > >= and their not forms
	SUM     // + -
	PRODUCT // * /
	PREFIX  // -X +X
	POSTFIX // X[i] X[a...b]
)

var precedences = map[token.TokenType]int{
	token.DEFINE:     ASSIGN,
	token.ADD_ASSIGN: ASSIGN,
	token.SUB_ASSIGN: ASSIGN,
	token.MUL_ASSIGN: ASSIGN,
	token.QUO_ASSIGN: ASSIGN,
	token.OR:         OR,
	token.AND:        AND,
	token.EQL:        COMPARE,
	token.LSS:        COMPARE,
	token.GTR:        COMPARE,
	token.LEQ:        COMPARE,
	token.GEQ:        COMPARE,
	token.NOT:        COMPARE,
	token.ADD:        SUM,
	token.SUB:        SUM,
	token.MUL:        PRODUCT,
	token.QUO:        PRODUCT,
	token.LBRACK:     POSTFIX,
}

var binaryOps = map[token.TokenType]ast.BinaryOp{
	token.DEFINE:     ast.Assign,
	token.ADD_ASSIGN: ast.AddAssign,
	token.SUB_ASSIGN: ast.SubAssign,
	token.MUL_ASSIGN: ast.MulAssign,
	token.QUO_ASSIGN: ast.DivAssign,
	token.OR:         ast.Or,
	token.AND:        ast.And,
	token.EQL:        ast.Eq,
	token.LSS:        ast.Lt,
	token.GTR:        ast.Gt,
	token.LEQ:        ast.Le,
	token.GEQ:        ast.Ge,
	token.ADD:        ast.Add,
	token.SUB:        ast.Sub,
	token.MUL:        ast.Mul,
	token.QUO:        ast.Div,
}

// negated maps a comparison to the operator written with a not in front.
var negated = map[ast.BinaryOp]ast.BinaryOp{
	ast.Eq: ast.Neq,
	ast.Lt: ast.Nlt,
	ast.Le: ast.Nle,
	ast.Gt: ast.Ngt,
	ast.Ge: ast.Nge,
}

var jumpKinds = map[token.TokenType]ast.JumpKind{
	token.RETURN:   ast.Return,
	token.BREAK:    ast.Break,
	token.CONTINUE: ast.Continue,
}

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

type Parser struct {
	l      *lexer.Lexer
	errors []*token.CompileError

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBoolLiteral)
	p.registerPrefix(token.FALSE, p.parseBoolLiteral)
	p.registerPrefix(token.UNIT, p.parseUnitLiteral)
	p.registerPrefix(token.IT, p.parseIt)
	p.registerPrefix(token.ADD, p.parsePrefixExpr)
	p.registerPrefix(token.SUB, p.parsePrefixExpr)
	p.registerPrefix(token.NOT, p.parsePrefixExpr)
	p.registerPrefix(token.PIPE, p.parseAbs)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpr)
	p.registerPrefix(token.LBRACK, p.parseArrayLiteral)
	p.registerPrefix(token.LBRACE, func() ast.Expr { return p.parseBlockExpr("") })
	p.registerPrefix(token.IF, p.parseIfExpr)
	p.registerPrefix(token.LOOP, func() ast.Expr { return p.parseLoopExpr("") })
	p.registerPrefix(token.WHILE, func() ast.Expr { return p.parseWhileExpr("") })
	p.registerPrefix(token.RETURN, p.parseJumpExpr)
	p.registerPrefix(token.BREAK, p.parseJumpExpr)
	p.registerPrefix(token.CONTINUE, p.parseJumpExpr)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for tt := range binaryOps {
		p.registerInfix(tt, p.parseBinaryExpr)
	}
	p.registerInfix(token.NOT, p.parseNegatedComparison)
	p.registerInfix(token.LBRACK, p.parseIndexOrSlice)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// ParseType parses a standalone type such as "int[] when |it| > 0".
func ParseType(fileName, input string) (ast.TypeExpr, []*token.CompileError) {
	p := New(lexer.New(fileName, input))
	t := p.parseType()
	if t != nil && !p.peekTokenIs(token.EOF) {
		p.errorf(p.peekToken, "unexpected %s after type", describe(p.peekToken))
	}
	return t, p.errors
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) Errors() []*token.CompileError {
	return p.errors
}

func (p *Parser) errorf(tok token.Token, format string, args ...any) {
	p.errors = append(p.errors, &token.CompileError{Token: tok, Msg: fmt.Sprintf(format, args...)})
}

func (p *Parser) peekError(t token.TokenType) {
	p.errorf(p.peekToken, "expected next token to be %s, got %s instead", t, describe(p.peekToken))
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	if tok.Type == token.ILLEGAL {
		p.errorf(tok, "illegal token %q", tok.Literal)
		return
	}
	p.errorf(tok, "expected an expression, got %s", describe(tok))
}

func describe(tok token.Token) string {
	switch {
	case tok.Type == token.EOF:
		return "end of input"
	case tok.Type.IsLiteral():
		return fmt.Sprintf("%s %q", tok.Type, tok.Literal)
	}
	return fmt.Sprintf("'%s'", tok.Type)
}

// ParseFile parses definitions until the end of input. After a bad
// definition the parser resumes at the next let.
func (p *Parser) ParseFile() *ast.File {
	file := &ast.File{}
	for !p.curTokenIs(token.EOF) {
		def := p.parseDef()
		if def == nil {
			p.skipTo(token.LET)
			continue
		}
		file.Defs = append(file.Defs, def)
		p.nextToken()
	}
	return file
}

// ParseExpr parses a single expression that spans the whole input. A
// trailing semicolon is allowed.
func (p *Parser) ParseExpr() ast.Expr {
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	if !p.expectPeek(token.EOF) {
		return nil
	}
	return expr
}

func (p *Parser) skipTo(t token.TokenType) {
	p.nextToken()
	for !p.curTokenIs(t) && !p.curTokenIs(token.EOF) {
		p.nextToken()
	}
}

func (p *Parser) parseDef() ast.Def {
	if !p.curTokenIs(token.LET) {
		p.errorf(p.curToken, "expected a definition, got %s", describe(p.curToken))
		return nil
	}
	letTok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	if !p.peekTokenIs(token.LPAREN) {
		if vd := p.finishVarDef(letTok); vd != nil {
			return vd
		}
		return nil
	}
	if fd := p.finishFuncDef(letTok); fd != nil {
		return fd
	}
	return nil
}

// finishFuncDef starts on the function name and ends on the closing brace
// of the body.
func (p *Parser) finishFuncDef(letTok token.Token) *ast.FuncDef {
	fd := &ast.FuncDef{Token: letTok, Name: p.curToken.Literal}
	p.nextToken()
	if fd.Params = p.parseParams(); fd.Params == nil {
		return nil
	}
	if !p.expectPeek(token.ARROW) {
		return nil
	}
	p.nextToken()
	if fd.Return = p.parseType(); fd.Return == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	if fd.Body = p.parseBlock(""); fd.Body == nil {
		return nil
	}
	return fd
}

// parseParams starts on ( and ends on ). It returns nil on error and an
// empty slice for an empty list.
func (p *Parser) parseParams() []*ast.Param {
	params := []*ast.Param{}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params
	}
	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		param := &ast.Param{Token: p.curToken, Name: p.curToken.Literal}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		if param.Type = p.parseType(); param.Type == nil {
			return nil
		}
		params = append(params, param)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return params
}

// parseVarDef starts on let and ends on the closing semicolon.
func (p *Parser) parseVarDef() *ast.VarDef {
	letTok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	return p.finishVarDef(letTok)
}

// finishVarDef starts on the variable name.
func (p *Parser) finishVarDef(letTok token.Token) *ast.VarDef {
	vd := &ast.VarDef{Token: letTok, Name: p.curToken.Literal}
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	if vd.Decl = p.parseType(); vd.Decl == nil {
		return nil
	}
	if !p.expectPeek(token.DEFINE) {
		return nil
	}
	p.nextToken()
	if vd.Value = p.parseExpression(LOWEST); vd.Value == nil {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return vd
}

func (p *Parser) parseType() ast.TypeExpr {
	var t ast.TypeExpr
	switch p.curToken.Type {
	case token.IDENT:
		t = &ast.NamedType{Token: p.curToken, Name: p.curToken.Literal}
	case token.UNIT:
		t = &ast.NamedType{Token: p.curToken, Name: "unit"}
	case token.LPAREN:
		p.nextToken()
		if t = p.parseType(); t == nil {
			return nil
		}
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
	default:
		p.errorf(p.curToken, "expected a type, got %s", describe(p.curToken))
		return nil
	}

	for {
		switch {
		case p.peekTokenIs(token.LBRACK):
			p.nextToken()
			tok := p.curToken
			if !p.expectPeek(token.RBRACK) {
				return nil
			}
			t = &ast.ArrayType{Token: tok, Elem: t}
		case p.peekTokenIs(token.WHEN):
			p.nextToken()
			tok := p.curToken
			p.nextToken()
			// stop before := so a variable definition keeps its initialiser
			c := p.parseExpression(ASSIGN)
			if c == nil {
				return nil
			}
			t = &ast.ConditionType{Token: tok, Base: t, Cond: c}
		default:
			return t
		}
	}
}

// Block contents

// parseBlock starts on { and ends on }.
func (p *Parser) parseBlock(label string) *ast.BlockExpr {
	block := &ast.BlockExpr{Token: p.curToken, Label: label}
	p.nextToken()
	for {
		switch p.curToken.Type {
		case token.RBRACE:
			return block
		case token.EOF:
			p.errorf(p.curToken, "expected '}' to close the block opened at %s", block.Token.Pos())
			return nil
		}
		stmt := p.parseStatement()
		if stmt == nil {
			p.skipStatement()
			continue
		}
		block.Stats = append(block.Stats, stmt)
		p.nextToken()
	}
}

// skipStatement moves past the next semicolon, stopping early at a closing
// brace.
func (p *Parser) skipStatement() {
	for !p.curTokenIs(token.SEMICOLON) && !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		p.nextToken()
	}
	if p.curTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.curToken.Type {
	case token.SEMICOLON:
		return &ast.NopStat{Token: p.curToken}
	case token.LET:
		vd := p.parseVarDef()
		if vd == nil {
			return nil
		}
		return vd
	}

	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	switch {
	case p.peekTokenIs(token.SEMICOLON):
		p.nextToken()
		return &ast.ExprStat{Expr: expr}
	case p.peekTokenIs(token.RBRACE):
		return expr
	}
	p.errorf(p.peekToken, "expected ';' or '}' after expression, got %s", describe(p.peekToken))
	p.nextToken()
	return nil
}

// Expressions

func (p *Parser) parseExpression(precedence int) ast.Expr {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	left := prefix()

	for left != nil && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}

	return left
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) parseIdentifier() ast.Expr {
	tok := p.curToken
	switch {
	case p.peekTokenIs(token.LPAREN):
		p.nextToken()
		args := p.parseExprList(token.RPAREN)
		if args == nil {
			return nil
		}
		return &ast.CallExpr{Token: tok, Func: tok.Literal, Args: args}
	case p.peekTokenIs(token.COLON):
		p.nextToken()
		p.nextToken()
		return p.parseLabeled(tok.Literal)
	}
	return &ast.VarExpr{Token: tok, Name: tok.Literal}
}

func (p *Parser) parseLabeled(label string) ast.Expr {
	switch p.curToken.Type {
	case token.LBRACE:
		return p.parseBlockExpr(label)
	case token.LOOP:
		return p.parseLoopExpr(label)
	case token.WHILE:
		return p.parseWhileExpr(label)
	}
	p.errorf(p.curToken, "expected a block, loop or while after label '%s', got %s", label, describe(p.curToken))
	return nil
}

// parseExprList starts on the opening delimiter and ends on end.
func (p *Parser) parseExprList(end token.TokenType) []ast.Expr {
	list := []ast.Expr{}
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	for {
		p.nextToken()
		e := p.parseExpression(LOWEST)
		if e == nil {
			return nil
		}
		list = append(list, e)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseIntLiteral() ast.Expr {
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.errorf(p.curToken, "could not parse %q as integer", p.curToken.Literal)
		return nil
	}
	return &ast.IntLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Expr {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolLiteral() ast.Expr {
	return &ast.BoolLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseUnitLiteral() ast.Expr {
	return &ast.UnitLiteral{Token: p.curToken}
}

func (p *Parser) parseIt() ast.Expr {
	return &ast.ItExpr{Token: p.curToken}
}

func (p *Parser) parsePrefixExpr() ast.Expr {
	expr := &ast.UnaryExpr{Token: p.curToken}
	precedence := PREFIX
	switch p.curToken.Type {
	case token.ADD:
		expr.Op = ast.Plus
	case token.SUB:
		expr.Op = ast.Neg
	case token.NOT:
		// not a = b negates the comparison
		expr.Op = ast.Not
		precedence = AND
	}
	p.nextToken()
	if expr.Operand = p.parseExpression(precedence); expr.Operand == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseAbs() ast.Expr {
	expr := &ast.UnaryExpr{Token: p.curToken, Op: ast.Abs}
	p.nextToken()
	if expr.Operand = p.parseExpression(LOWEST); expr.Operand == nil {
		return nil
	}
	if !p.expectPeek(token.PIPE) {
		return nil
	}
	return expr
}

func (p *Parser) parseGroupedExpr() ast.Expr {
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return exp
}

func (p *Parser) parseArrayLiteral() ast.Expr {
	lit := &ast.ArrayLiteral{Token: p.curToken, Items: []ast.ArrayItem{}}
	if p.peekTokenIs(token.RBRACK) {
		p.nextToken()
		return lit
	}
	for {
		p.nextToken()
		spread := p.curTokenIs(token.ELLIPSIS)
		if spread {
			p.nextToken()
		}
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		lit.Items = append(lit.Items, ast.ArrayItem{Value: value, Spread: spread})
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.RBRACK) {
		return nil
	}
	return lit
}

func (p *Parser) parseBlockExpr(label string) ast.Expr {
	if b := p.parseBlock(label); b != nil {
		return b
	}
	return nil
}

func (p *Parser) parseIfExpr() ast.Expr {
	expr := &ast.IfExpr{Token: p.curToken}
	p.nextToken()
	if expr.Cond = p.parseExpression(LOWEST); expr.Cond == nil {
		return nil
	}
	if !p.expectPeek(token.THEN) {
		return nil
	}
	p.nextToken()
	if expr.Then = p.parseExpression(LOWEST); expr.Then == nil {
		return nil
	}
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		p.nextToken()
		if expr.Else = p.parseExpression(LOWEST); expr.Else == nil {
			return nil
		}
	}
	return expr
}

func (p *Parser) parseLoopExpr(label string) ast.Expr {
	expr := &ast.LoopExpr{Token: p.curToken, Label: label}
	p.nextToken()
	if expr.Body = p.parseExpression(LOWEST); expr.Body == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseWhileExpr(label string) ast.Expr {
	expr := &ast.WhileExpr{Token: p.curToken, Label: label}
	p.nextToken()
	if expr.Cond = p.parseExpression(LOWEST); expr.Cond == nil {
		return nil
	}
	if !p.expectPeek(token.LOOP) {
		return nil
	}
	p.nextToken()
	if expr.Body = p.parseExpression(LOWEST); expr.Body == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseJumpExpr() ast.Expr {
	expr := &ast.JumpExpr{Token: p.curToken, Kind: jumpKinds[p.curToken.Type]}
	if p.peekTokenIs(token.AT) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		expr.Label = p.curToken.Literal
	}
	// a value follows when the next token can start an expression
	if _, ok := p.prefixParseFns[p.peekToken.Type]; ok {
		p.nextToken()
		if expr.Value = p.parseExpression(LOWEST); expr.Value == nil {
			return nil
		}
	}
	return expr
}

func (p *Parser) parseBinaryExpr(left ast.Expr) ast.Expr {
	expr := &ast.BinaryExpr{Token: p.curToken, Op: binaryOps[p.curToken.Type], Left: left}
	precedence := p.curPrecedence()
	if expr.Op.IsAssign() {
		// assignments are right associative
		precedence--
	}
	p.nextToken()
	if expr.Right = p.parseExpression(precedence); expr.Right == nil {
		return nil
	}
	return expr
}

// parseNegatedComparison handles a not < b and friends.
func (p *Parser) parseNegatedComparison(left ast.Expr) ast.Expr {
	if !p.peekToken.Type.IsComparison() {
		p.errorf(p.peekToken, "expected a comparison after 'not', got %s", describe(p.peekToken))
		return nil
	}
	p.nextToken()
	expr := &ast.BinaryExpr{Token: p.curToken, Op: negated[binaryOps[p.curToken.Type]], Left: left}
	p.nextToken()
	if expr.Right = p.parseExpression(COMPARE); expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseIndexOrSlice(left ast.Expr) ast.Expr {
	tok := p.curToken
	if p.peekTokenIs(token.ELLIPSIS) {
		p.nextToken()
		return p.finishSlice(tok, left, nil)
	}
	p.nextToken()
	index := p.parseExpression(LOWEST)
	if index == nil {
		return nil
	}
	if p.peekTokenIs(token.ELLIPSIS) {
		p.nextToken()
		return p.finishSlice(tok, left, index)
	}
	if !p.expectPeek(token.RBRACK) {
		return nil
	}
	return &ast.IndexExpr{Token: tok, Indexee: left, Index: index}
}

// finishSlice starts on the ellipsis.
func (p *Parser) finishSlice(tok token.Token, slicee, from ast.Expr) ast.Expr {
	expr := &ast.SliceExpr{Token: tok, Slicee: slicee, From: from}
	if p.peekTokenIs(token.RBRACK) {
		p.nextToken()
		return expr
	}
	p.nextToken()
	if expr.To = p.parseExpression(LOWEST); expr.To == nil {
		return nil
	}
	if !p.expectPeek(token.RBRACK) {
		return nil
	}
	return expr
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}
