package lexer

import (
	"strings"
	"unicode"

	"github.com/pint-lang/pint/token"
)

type Lexer struct {
	FileName     string
	input        []rune
	position     int  // current position in input (points to current rune)
	readPosition int  // current reading position in input (after current rune)
	curr         rune // current rune under examination
	line         int
	column       int
}

func New(fileName, input string) *Lexer {
	l := &Lexer{FileName: fileName, input: []rune(input), line: 1}
	l.readRune()
	return l
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	line, col := l.line, l.column
	tok := l.scan()
	tok.FileName = l.FileName
	tok.Line = line
	tok.Column = col
	return tok
}

func (l *Lexer) scan() token.Token {
	switch l.curr {
	case 0:
		return token.Token{Type: token.EOF}
	case ':':
		switch {
		case l.peekRune() == '=':
			return l.readOperator(token.DEFINE, 2)
		case l.peekRuneN(2) == '=' && strings.ContainsRune("+-*/", l.peekRune()):
			return l.readOperator(compoundAssign[l.peekRune()], 3)
		}
		return l.readOperator(token.COLON, 1)
	case '-':
		if l.peekRune() == '>' {
			return l.readOperator(token.ARROW, 2)
		}
		return l.readOperator(token.SUB, 1)
	case '.':
		if l.peekRune() == '.' && l.peekRuneN(2) == '.' {
			return l.readOperator(token.ELLIPSIS, 3)
		}
		return l.readOperator(token.ILLEGAL, 1)
	case '<':
		if l.peekRune() == '=' {
			return l.readOperator(token.LEQ, 2)
		}
		return l.readOperator(token.LSS, 1)
	case '>':
		if l.peekRune() == '=' {
			return l.readOperator(token.GEQ, 2)
		}
		return l.readOperator(token.GTR, 1)
	case '"':
		return l.readString()
	}

	if t, ok := singles[l.curr]; ok {
		return l.readOperator(t, 1)
	}
	if isLetter(l.curr) {
		literal := l.readIdentifier()
		return token.Token{Type: token.LookupIdent(literal), Literal: literal}
	}
	if isDigit(l.curr) {
		return token.Token{Type: token.INT, Literal: l.readNumber()}
	}
	return l.readOperator(token.ILLEGAL, 1)
}

var singles = map[rune]token.TokenType{
	'+': token.ADD,
	'*': token.MUL,
	'/': token.QUO,
	'=': token.EQL,
	'|': token.PIPE,
	'@': token.AT,
	'(': token.LPAREN,
	')': token.RPAREN,
	'[': token.LBRACK,
	']': token.RBRACK,
	'{': token.LBRACE,
	'}': token.RBRACE,
	',': token.COMMA,
	';': token.SEMICOLON,
}

var compoundAssign = map[rune]token.TokenType{
	'+': token.ADD_ASSIGN,
	'-': token.SUB_ASSIGN,
	'*': token.MUL_ASSIGN,
	'/': token.QUO_ASSIGN,
}

func (l *Lexer) readOperator(t token.TokenType, n int) token.Token {
	start := l.position
	for range n {
		l.readRune()
	}
	return token.Token{Type: t, Literal: string(l.input[start:l.position])}
}

// readString consumes a double quoted literal. The token literal holds the
// unescaped contents; an unterminated string is ILLEGAL.
func (l *Lexer) readString() token.Token {
	var sb strings.Builder
	l.readRune() // opening quote
	for l.curr != '"' {
		switch l.curr {
		case 0, '\n':
			return token.Token{Type: token.ILLEGAL, Literal: "\"" + sb.String()}
		case '\\':
			l.readRune()
			switch l.curr {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '"', '\\':
				sb.WriteRune(l.curr)
			default:
				return token.Token{Type: token.ILLEGAL, Literal: "\\" + string(l.curr)}
			}
		default:
			sb.WriteRune(l.curr)
		}
		l.readRune()
	}
	l.readRune() // closing quote
	return token.Token{Type: token.STRING, Literal: sb.String()}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.curr == ' ' || l.curr == '\t' || l.curr == '\n' || l.curr == '\r':
			l.readRune()
		case l.curr == '#':
			for l.curr != '\n' && l.curr != 0 {
				l.readRune()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readRune() {
	if l.curr == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.curr = 0
	} else {
		l.curr = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekRune() rune {
	return l.peekRuneN(1)
}

func (l *Lexer) peekRuneN(n int) rune {
	if pos := l.position + n; pos < len(l.input) {
		return l.input[pos]
	}
	return 0
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.curr) || isDigit(l.curr) {
		l.readRune()
	}
	return string(l.input[position:l.position])
}

func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.curr) {
		l.readRune()
	}
	return string(l.input[position:l.position])
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
