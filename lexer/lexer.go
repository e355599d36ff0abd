package lexer

import (
	"strings"

	"github.com/pyc-lang/pyc/token"
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

	line, column := l.line, l.column
	tok := l.scan()
	tok.FileName = l.FileName
	tok.Line = line
	tok.Column = column
	return tok
}

func (l *Lexer) scan() token.Token {
	var tok token.Token

	switch l.curr {
	case '=':
		tok = l.either('=', token.EQL, token.ASSIGN)
	case '!':
		if l.peekRune() != '=' {
			tok = newToken(token.ILLEGAL, l.curr)
			break
		}
		tok = l.either('=', token.NEQ, token.ILLEGAL)
	case '<':
		tok = l.either('=', token.LEQ, token.LSS)
	case '>':
		tok = l.either('=', token.GEQ, token.GTR)
	case '-':
		tok = l.either('>', token.ARROW, token.SUB)
	case '/':
		tok = l.either('/', token.INTQUO, token.QUO)
	case '+':
		tok = newToken(token.ADD, l.curr)
	case '*':
		tok = newToken(token.MUL, l.curr)
	case '%':
		tok = newToken(token.REM, l.curr)
	case ',':
		tok = newToken(token.COMMA, l.curr)
	case ':':
		tok = newToken(token.COLON, l.curr)
	case ';':
		tok = newToken(token.SEMI, l.curr)
	case '(':
		tok = newToken(token.LPAREN, l.curr)
	case ')':
		tok = newToken(token.RPAREN, l.curr)
	case '[':
		tok = newToken(token.LBRACK, l.curr)
	case ']':
		tok = newToken(token.RBRACK, l.curr)
	case '{':
		tok = newToken(token.LBRACE, l.curr)
	case '}':
		tok = newToken(token.RBRACE, l.curr)
	case '"':
		return l.readString()
	case 0:
		tok.Literal = ""
		tok.Type = token.EOF
		return tok
	default:
		if IsLetter(l.curr) {
			tok.Literal = l.readIdentifier()
			tok.Type = token.LookupIdent(tok.Literal)
			return tok
		} else if IsDigit(l.curr) {
			tok.Type = token.INT
			tok.Literal = l.readNumber()
			return tok
		}
		tok = newToken(token.ILLEGAL, l.curr)
	}

	l.readRune()
	return tok
}

// either returns the two-rune token when the next rune is next, and the
// single-rune token otherwise. It leaves l.curr on the last rune consumed.
func (l *Lexer) either(next rune, two, one token.TokenType) token.Token {
	if l.peekRune() == next {
		first := l.curr
		l.readRune()
		return token.Token{Type: two, Literal: string(first) + string(l.curr)}
	}
	return newToken(one, l.curr)
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch l.curr {
		case ' ', '\t', '\n', '\r':
			l.readRune()
		case '#':
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
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for IsLetterOrDigit(l.curr) {
		l.readRune()
	}
	return string(l.input[position:l.position])
}

func (l *Lexer) readNumber() string {
	position := l.position
	for IsDigit(l.curr) {
		l.readRune()
	}
	return string(l.input[position:l.position])
}

// readString consumes a double quoted literal and decodes its escapes.
// An unterminated literal yields an ILLEGAL token holding what was read.
func (l *Lexer) readString() token.Token {
	var sb strings.Builder
	l.readRune() // opening quote
	for l.curr != '"' {
		switch l.curr {
		case 0, '\n':
			return token.Token{Type: token.ILLEGAL, Literal: `"` + sb.String()}
		case '\\':
			l.readRune()
			switch l.curr {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '\\', '"':
				sb.WriteRune(l.curr)
			default:
				return token.Token{Type: token.ILLEGAL, Literal: `\` + string(l.curr)}
			}
		default:
			sb.WriteRune(l.curr)
		}
		l.readRune()
	}
	l.readRune() // closing quote
	return token.Token{Type: token.STRING, Literal: sb.String()}
}

func IsLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func IsDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func IsLetterOrDigit(ch rune) bool {
	return IsLetter(ch) || IsDigit(ch)
}

func newToken(tokenType token.TokenType, curr rune) token.Token {
	return token.Token{Type: tokenType, Literal: string(curr)}
}
