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
	ASSIGN // =

	ADD    // +
	SUB    // -
	MUL    // *
	QUO    // /
	INTQUO // //
	REM    // %

	ARROW // ->

	LPAREN // (
	LBRACK // [
	LBRACE // {
	COMMA  // ,
	COLON  // :
	SEMI   // ;

	RPAREN // )
	RBRACK // ]
	RBRACE // }
	operator_end

	comparison_beg
	EQL // ==
	LSS // <
	GTR // >

	NEQ // !=
	LEQ // <=
	GEQ // >=
	comparison_end

	keyword_beg
	DEF
	INT_T
	BOOL_T
	STR_T
	LIST_T
	TRUE
	FALSE
	AND
	OR
	NOT
	IF
	ELIF
	ELSE
	WHILE
	RETURN
	keyword_end
)

var tokens = [...]string{
	ILLEGAL: "ILLEGAL",

	EOF:     "EOF",
	COMMENT: "COMMENT",

	IDENT:  "IDENT",
	INT:    "INT",
	STRING: "STRING",

	ASSIGN: "=",

	ADD:    "+",
	SUB:    "-",
	MUL:    "*",
	QUO:    "/",
	INTQUO: "//",
	REM:    "%",

	ARROW: "->",

	LPAREN: "(",
	LBRACK: "[",
	LBRACE: "{",
	COMMA:  ",",
	COLON:  ":",
	SEMI:   ";",

	RPAREN: ")",
	RBRACK: "]",
	RBRACE: "}",

	EQL: "==",
	LSS: "<",
	GTR: ">",

	NEQ: "!=",
	LEQ: "<=",
	GEQ: ">=",

	DEF:    "def",
	INT_T:  "int",
	BOOL_T: "bool",
	STR_T:  "str",
	LIST_T: "list",
	TRUE:   "True",
	FALSE:  "False",
	AND:    "and",
	OR:     "or",
	NOT:    "not",
	IF:     "if",
	ELIF:   "elif",
	ELSE:   "else",
	WHILE:  "while",
	RETURN: "return",
}

var keywords = func() map[string]TokenType {
	m := make(map[string]TokenType, keyword_end-keyword_beg)
	for i := keyword_beg + 1; i < keyword_end; i++ {
		m[tokens[i]] = i
	}
	return m
}()

// LookupIdent maps a scanned word to its keyword token, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

type Token struct {
	FileName string
	Type     TokenType
	Literal  string
	Line     int
	Column   int
}

func (t Token) IsComparison() bool {
	return comparison_beg < t.Type && comparison_end > t.Type
}

// IsTypeName reports whether the token names one of the source types.
func (t Token) IsTypeName() bool {
	switch t.Type {
	case INT_T, BOOL_T, STR_T, LIST_T:
		return true
	}
	return false
}

func (t Token) String() string {
	return t.Type.String()
}

func (tokenType TokenType) String() string {
	s := ""
	if 0 <= tokenType && tokenType < TokenType(len(tokens)) {
		s = tokens[tokenType]
	}

	if s == "" {
		s = "token(" + strconv.Itoa(int(tokenType)) + ")"
	}

	return s
}

// CompileError is a diagnostic anchored at the token where it was detected.
type CompileError struct {
	Token Token
	Msg   string
}

func (ce *CompileError) Error() string {
	return fmt.Sprintf("%s:%d:%d:%s", ce.Token.FileName, ce.Token.Line, ce.Token.Column, ce.Msg)
}
