package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/pyc-lang/pyc/token"
	"github.com/pyc-lang/pyc/types"
)

// The base Node interface
type Node interface {
	Tok() token.Token
	String() string
}

// All statement nodes implement this
type Statement interface {
	Node
	statementNode()
}

// All expression nodes implement this
type Expression interface {
	Node
	expressionNode()
}

// Branch is the optional tail of an if chain: *ElifBlock or *ElseBlock.
type Branch interface {
	Node
	branchNode()
}

// Operator names. ConcatLists and ConcatStrings never come out of the
// parser; the checker rewrites "+" to them once the operand types are known.
const (
	OpAdd    = "+"
	OpSub    = "-"
	OpMul    = "*"
	OpQuo    = "/"
	OpIntQuo = "//"
	OpRem    = "%"
	OpLss    = "<"
	OpLeq    = "<="
	OpGtr    = ">"
	OpGeq    = ">="
	OpEql    = "=="
	OpNeq    = "!="
	OpAnd    = "and"
	OpOr     = "or"
	OpNot    = "not"

	OpConcatLists   = "concat_lists"
	OpConcatStrings = "concat_strings"
)

// Slice bounds the parser fills in when a slice omits them.
const (
	SliceDefaultStart = 0
	SliceDefaultEnd   = 2147483647
	SliceDefaultStep  = 1
)

type Program struct {
	Statements []Statement
}

func (p *Program) Tok() token.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].Tok()
	}
	return token.Token{
		Type:    token.EOF,
		Literal: "",
	}
}

func (p *Program) String() string {
	var out bytes.Buffer

	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}

	return out.String()
}

func printVec(a []Expression) string {
	parts := make([]string, len(a))
	for i, e := range a {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// Statements

type Block struct {
	Token      token.Token // the { token
	Statements []Statement
}

func (b *Block) statementNode()   {}
func (b *Block) Tok() token.Token { return b.Token }
func (b *Block) String() string {
	var out bytes.Buffer

	out.WriteString("{ ")
	for _, s := range b.Statements {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	out.WriteString("}")

	return out.String()
}

type Param struct {
	Token token.Token // the parameter name
	Name  string
	Type  *TypeRef
}

func (p *Param) Tok() token.Token { return p.Token }
func (p *Param) String() string   { return p.Name + ": " + p.Type.String() }

type FuncDecl struct {
	Token   token.Token // the def token
	Name    string
	Params  []*Param
	RetType *TypeRef
	Body    *Block
	// Returns holds every return statement of the body in source order.
	Returns []*ReturnStatement
}

func (fd *FuncDecl) statementNode()   {}
func (fd *FuncDecl) Tok() token.Token { return fd.Token }
func (fd *FuncDecl) String() string {
	params := make([]string, len(fd.Params))
	for i, p := range fd.Params {
		params[i] = p.String()
	}
	return "def " + fd.Name + "(" + strings.Join(params, ", ") + ") -> " +
		fd.RetType.String() + ": " + fd.Body.String()
}

type DeclStatement struct {
	Token token.Token // the variable name
	Name  string
	Type  *TypeRef
}

func (ds *DeclStatement) statementNode()   {}
func (ds *DeclStatement) Tok() token.Token { return ds.Token }
func (ds *DeclStatement) String() string   { return ds.Name + ": " + ds.Type.String() + ";" }

type AssignStatement struct {
	Token token.Token // the variable name
	Name  string
	Value Expression
}

func (as *AssignStatement) statementNode()   {}
func (as *AssignStatement) Tok() token.Token { return as.Token }
func (as *AssignStatement) String() string   { return as.Name + " = " + as.Value.String() + ";" }

type IfStatement struct {
	Token     token.Token // the if token
	Condition Expression
	Body      *Block
	Else      Branch // nil, *ElifBlock or *ElseBlock
}

func (is *IfStatement) statementNode()   {}
func (is *IfStatement) Tok() token.Token { return is.Token }
func (is *IfStatement) String() string {
	return "if " + is.Condition.String() + ": " + is.Body.String() + branchString(is.Else)
}

type ElifBlock struct {
	Token     token.Token // the elif token
	Condition Expression
	Body      *Block
	Else      Branch
}

func (eb *ElifBlock) branchNode()      {}
func (eb *ElifBlock) Tok() token.Token { return eb.Token }
func (eb *ElifBlock) String() string {
	return "elif " + eb.Condition.String() + ": " + eb.Body.String() + branchString(eb.Else)
}

type ElseBlock struct {
	Token token.Token // the else token
	Body  *Block
}

func (eb *ElseBlock) branchNode()      {}
func (eb *ElseBlock) Tok() token.Token { return eb.Token }
func (eb *ElseBlock) String() string   { return "else: " + eb.Body.String() }

func branchString(b Branch) string {
	if b == nil {
		return ""
	}
	return " " + b.String()
}

type WhileStatement struct {
	Token     token.Token // the while token
	Condition Expression
	Body      *Block
}

func (ws *WhileStatement) statementNode()   {}
func (ws *WhileStatement) Tok() token.Token { return ws.Token }
func (ws *WhileStatement) String() string {
	return "while " + ws.Condition.String() + ": " + ws.Body.String()
}

type ReturnStatement struct {
	Token token.Token // the return token
	Value Expression
}

func (rs *ReturnStatement) statementNode()   {}
func (rs *ReturnStatement) Tok() token.Token { return rs.Token }
func (rs *ReturnStatement) String() string   { return "return " + rs.Value.String() + ";" }

type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()   {}
func (es *ExpressionStatement) Tok() token.Token { return es.Token }
func (es *ExpressionStatement) String() string   { return es.Expression.String() + ";" }

// Expressions

// Constant is a literal or a name reference. Value holds the decoded
// literal text: digits for Int, "True"/"False" for Bool, the characters
// for Str and the name for ID.
type Constant struct {
	Token token.Token
	Type  types.Kind
	Value string
}

func (c *Constant) expressionNode()  {}
func (c *Constant) Tok() token.Token { return c.Token }
func (c *Constant) String() string {
	if c.Type == types.Str {
		return strconv.Quote(c.Value)
	}
	return c.Value
}

type PrefixExpression struct {
	Token    token.Token // The prefix token, e.g. not
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()  {}
func (pe *PrefixExpression) Tok() token.Token { return pe.Token }
func (pe *PrefixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(pe.Operator)
	if pe.Operator == OpNot {
		out.WriteString(" ")
	}
	out.WriteString(pe.Right.String())
	out.WriteString(")")

	return out.String()
}

type InfixExpression struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()  {}
func (ie *InfixExpression) Tok() token.Token { return ie.Token }
func (ie *InfixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString(" " + ie.Operator + " ")
	out.WriteString(ie.Right.String())
	out.WriteString(")")

	return out.String()
}

type CallExpression struct {
	Token     token.Token // The function name
	Function  string
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()  {}
func (ce *CallExpression) Tok() token.Token { return ce.Token }
func (ce *CallExpression) String() string {
	return ce.Function + "(" + printVec(ce.Arguments) + ")"
}

type ListLiteral struct {
	Token    token.Token // the [ token
	Elements []Expression
}

func (ll *ListLiteral) expressionNode()  {}
func (ll *ListLiteral) Tok() token.Token { return ll.Token }
func (ll *ListLiteral) String() string   { return "[" + printVec(ll.Elements) + "]" }

// IndexExpression is written elem(left[index]); the element type is
// trusted, not inferred.
type IndexExpression struct {
	Token token.Token // the element type token
	Elem  *TypeRef
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()  {}
func (ie *IndexExpression) Tok() token.Token { return ie.Token }
func (ie *IndexExpression) String() string {
	return ie.Elem.String() + "(" + ie.Left.String() + "[" + ie.Index.String() + "])"
}

type SliceExpression struct {
	Token token.Token // the [ token
	Left  Expression
	Start Expression
	End   Expression
	Step  Expression
}

func (se *SliceExpression) expressionNode()  {}
func (se *SliceExpression) Tok() token.Token { return se.Token }
func (se *SliceExpression) String() string {
	return se.Left.String() + "[" + se.Start.String() + ":" + se.End.String() + ":" + se.Step.String() + "]"
}

type TypeRef struct {
	Token token.Token
	Kind  types.Kind
}

func (tr *TypeRef) Tok() token.Token { return tr.Token }
func (tr *TypeRef) String() string   { return tr.Kind.String() }
