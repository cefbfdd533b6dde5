package token

import (
	"fmt"
	"strconv"
)

type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF
	COMMENT

	literal_beg
	// Identifiers + literals
	IDENT  // add, foobar, x, y, ...
	INT    // 1343456
	STRING // "abc"
	literal_end

	operator_beg
	// Operators and delimiters
	DEFINE     // :=
	ADD_ASSIGN // :+=
	SUB_ASSIGN // :-=
	MUL_ASSIGN // :*=
	QUO_ASSIGN // :/=

	ADD // +
	SUB // -
	MUL // *
	QUO // /

	PIPE     // |
	ARROW    // ->
	ELLIPSIS // ...
	AT       // @

	LPAREN    // (
	LBRACK    // [
	LBRACE    // {
	COMMA     // ,
	COLON     // :
	SEMICOLON // ;

	RPAREN // )
	RBRACK // ]
	RBRACE // }
	operator_end

	comparison_beg
	EQL // =
	LSS // <
	GTR // >
	LEQ // <=
	GEQ // >=
	comparison_end

	keyword_beg
	LET
	IF
	THEN
	ELSE
	LOOP
	WHILE
	RETURN
	BREAK
	CONTINUE
	AND
	OR
	NOT
	TRUE
	FALSE
	UNIT
	IT
	WHEN
	keyword_end
)

var tokens = [...]string{
	ILLEGAL: "ILLEGAL",

	EOF:     "EOF",
	COMMENT: "COMMENT",

	IDENT:  "IDENT",
	INT:    "INT",
	STRING: "STRING",

	DEFINE:     ":=",
	ADD_ASSIGN: ":+=",
	SUB_ASSIGN: ":-=",
	MUL_ASSIGN: ":*=",
	QUO_ASSIGN: ":/=",

	ADD: "+",
	SUB: "-",
	MUL: "*",
	QUO: "/",

	PIPE:     "|",
	ARROW:    "->",
	ELLIPSIS: "...",
	AT:       "@",

	LPAREN:    "(",
	LBRACK:    "[",
	LBRACE:    "{",
	COMMA:     ",",
	COLON:     ":",
	SEMICOLON: ";",

	RPAREN: ")",
	RBRACK: "]",
	RBRACE: "}",

	EQL: "=",
	LSS: "<",
	GTR: ">",
	LEQ: "<=",
	GEQ: ">=",

	LET:      "let",
	IF:       "if",
	THEN:     "then",
	ELSE:     "else",
	LOOP:     "loop",
	WHILE:    "while",
	RETURN:   "return",
	BREAK:    "break",
	CONTINUE: "continue",
	AND:      "and",
	OR:       "or",
	NOT:      "not",
	TRUE:     "true",
	FALSE:    "false",
	UNIT:     "unit",
	IT:       "it",
	WHEN:     "when",
}

func (tok TokenType) String() string {
	s := ""
	if 0 <= tok && tok < TokenType(len(tokens)) {
		s = tokens[tok]
	}
	if s == "" {
		s = "token(" + strconv.Itoa(int(tok)) + ")"
	}
	return s
}

var keywords map[string]TokenType

func init() {
	keywords = make(map[string]TokenType, keyword_end-(keyword_beg+1))
	for i := keyword_beg + 1; i < keyword_end; i++ {
		keywords[tokens[i]] = i
	}
}

// LookupIdent maps an identifier to its keyword token type, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

func (tok TokenType) IsLiteral() bool { return literal_beg < tok && tok < literal_end }

func (tok TokenType) IsComparison() bool { return comparison_beg < tok && tok < comparison_end }

func (tok TokenType) IsKeyword() bool { return keyword_beg < tok && tok < keyword_end }

type Token struct {
	Type     TokenType
	Literal  string
	FileName string
	Line     int // 1-based
	Column   int // 1-based, counted in runes
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q", t.Type, t.Literal)
}

// Pos renders the position of the token as file:line:col.
func (t Token) Pos() string {
	if t.FileName == "" {
		return fmt.Sprintf("%d:%d", t.Line, t.Column)
	}
	return fmt.Sprintf("%s:%d:%d", t.FileName, t.Line, t.Column)
}

// CompileError is a diagnostic attached to the token it was found at.
type CompileError struct {
	Token Token
	Msg   string
}

func (ce *CompileError) Error() string {
	return ce.Token.Pos() + ": " + ce.Msg
}
