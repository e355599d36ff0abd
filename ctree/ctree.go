// Package ctree is the lowered tree: a closed set of C-level nodes with no
// lists, strings or booleans of their own, plus the emitter that renders
// them as C source text.
package ctree

// Type is a C type spelling.
type Type string

const (
	Int       Type = "int"
	Short     Type = "short"
	Char      Type = "char"
	Void      Type = "void"
	ListPtr   Type = "struct List *"
	StringPtr Type = "String *"
	ArgVector Type = "char**"
)

// Expr is one of *Ident, *IntLit, *CharLit, *Cast, *Binary, *Unary, *Call.
type Expr interface {
	exprNode()
}

// Stmt is one of *VarDecl, *Assign, *If, *While, *Return, *ExprStmt.
type Stmt interface {
	stmtNode()
}

// Branch is the tail of an *If: *ElseIf or *Else.
type Branch interface {
	branchNode()
}

type Ident struct {
	Name string
}

// IntLit is an integer literal in decimal.
type IntLit struct {
	Value string
}

// CharLit is one byte of a string literal.
type CharLit struct {
	Value byte
}

type Cast struct {
	Type Type
	X    Expr
}

type Binary struct {
	Op    string
	Left  Expr
	Right Expr
}

type Unary struct {
	Op string
	X  Expr
}

type Call struct {
	Func string
	Args []Expr
}

func (*Ident) exprNode()   {}
func (*IntLit) exprNode()  {}
func (*CharLit) exprNode() {}
func (*Cast) exprNode()    {}
func (*Binary) exprNode()  {}
func (*Unary) exprNode()   {}
func (*Call) exprNode()    {}

type VarDecl struct {
	Name string
	Type Type
}

type Assign struct {
	Name  string
	Value Expr
}

type If struct {
	Cond Expr
	Body []Stmt
	Else Branch // nil, *ElseIf or *Else
}

type ElseIf struct {
	Cond Expr
	Body []Stmt
	Else Branch
}

type Else struct {
	Body []Stmt
}

type While struct {
	Cond Expr
	Body []Stmt
}

type Return struct {
	Value Expr
}

type ExprStmt struct {
	X Expr
}

func (*VarDecl) stmtNode()  {}
func (*Assign) stmtNode()   {}
func (*If) stmtNode()       {}
func (*While) stmtNode()    {}
func (*Return) stmtNode()   {}
func (*ExprStmt) stmtNode() {}

func (*ElseIf) branchNode() {}
func (*Else) branchNode()   {}

type Param struct {
	Name string
	Type Type
}

type Func struct {
	Name   string
	Params []*Param
	Ret    Type
	Body   []Stmt
}

// Program is one compiled unit: globals first, then functions in order.
type Program struct {
	Globals []*VarDecl
	Funcs   []*Func
}

// Ref is a bare reference to name.
func Ref(name string) *Ident { return &Ident{Name: name} }

func CallOf(fn string, args ...Expr) *Call {
	if args == nil {
		args = []Expr{}
	}
	return &Call{Func: fn, Args: args}
}
