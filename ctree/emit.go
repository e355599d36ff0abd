package ctree

import (
	"fmt"
	"strings"
)

// Code renders the unit as C source. The output depends only on the tree.
func (p *Program) Code() string {
	var b strings.Builder
	for _, h := range Headers {
		fmt.Fprintf(&b, "#include %q\n", h)
	}
	for _, g := range p.Globals {
		b.WriteString(StmtCode(g))
		b.WriteString(";\n")
	}
	for _, f := range p.Funcs {
		b.WriteString(f.Code())
	}
	return b.String()
}

func (f *Func) Code() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = string(p.Type) + " " + p.Name
	}
	return fmt.Sprintf("%s %s(%s) {\n%s\n}\n", f.Ret, f.Name, strings.Join(params, ", "), BlockCode(f.Body))
}

// BlockCode renders statements one per line, each terminated by ';'.
func BlockCode(stmts []Stmt) string {
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = StmtCode(s) + ";"
	}
	return strings.Join(lines, "\n")
}

func StmtCode(s Stmt) string {
	switch s := s.(type) {
	case *VarDecl:
		return string(s.Type) + " " + s.Name
	case *Assign:
		return s.Name + " = " + ExprCode(s.Value)
	case *If:
		return "if (" + ExprCode(s.Cond) + ") {\n" + BlockCode(s.Body) + "\n}" + branchCode(s.Else)
	case *While:
		return "while (" + ExprCode(s.Cond) + ") {\n" + BlockCode(s.Body) + "\n}"
	case *Return:
		return "return " + ExprCode(s.Value)
	case *ExprStmt:
		return ExprCode(s.X)
	default:
		panic(fmt.Sprintf("ctree: unknown statement %T", s))
	}
}

func branchCode(b Branch) string {
	switch b := b.(type) {
	case nil:
		return ""
	case *ElseIf:
		return "else if (" + ExprCode(b.Cond) + ") {\n" + BlockCode(b.Body) + "\n}" + branchCode(b.Else)
	case *Else:
		return "else {\n" + BlockCode(b.Body) + "\n}"
	default:
		panic(fmt.Sprintf("ctree: unknown branch %T", b))
	}
}

func ExprCode(e Expr) string {
	switch e := e.(type) {
	case *Ident:
		return e.Name
	case *IntLit:
		return e.Value
	case *CharLit:
		return charCode(e.Value)
	case *Cast:
		return "(" + string(e.Type) + ") (" + ExprCode(e.X) + ")"
	case *Binary:
		return "(" + ExprCode(e.Left) + " " + e.Op + " " + ExprCode(e.Right) + ")"
	case *Unary:
		return e.Op + " " + ExprCode(e.X)
	case *Call:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = ExprCode(a)
		}
		return e.Func + "(" + strings.Join(args, ", ") + ")"
	default:
		panic(fmt.Sprintf("ctree: unknown expression %T", e))
	}
}

var charEscapes = map[byte]string{
	'\'': `\'`,
	'\\': `\\`,
	'\n': `\n`,
	'\t': `\t`,
	'\r': `\r`,
	0:    `\0`,
}

// charCode renders c as a C character constant; bytes outside printable
// ASCII are written as octal escapes.
func charCode(c byte) string {
	if esc, ok := charEscapes[c]; ok {
		return "'" + esc + "'"
	}
	if c >= 0x20 && c < 0x7f {
		return "'" + string(rune(c)) + "'"
	}
	return fmt.Sprintf(`'\%03o'`, c)
}
