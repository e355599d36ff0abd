package compiler

import (
	"github.com/pyc-lang/pyc/ast"
	"github.com/pyc-lang/pyc/ctree"
	"github.com/pyc-lang/pyc/lexer"
	"github.com/pyc-lang/pyc/parser"
)

// Compiler runs one unit through check, lowering and emission. A Compiler
// owns its symbol table and name counter, so independent units can be
// compiled concurrently with separate Compilers.
type Compiler struct {
	Program *ast.Program
	Checker *Checker
	Lowerer *Lowerer
}

func NewCompiler(prog *ast.Program) *Compiler {
	return &Compiler{
		Program: prog,
		Checker: NewChecker(),
		Lowerer: NewLowerer(),
	}
}

// Lower checks the program and returns its lowered tree. Nothing is
// lowered when checking fails.
func (c *Compiler) Lower() (*ctree.Program, error) {
	if err := c.Checker.CheckProgram(c.Program); err != nil {
		return nil, err
	}
	return c.Lowerer.LowerProgram(c.Program), nil
}

// Compile returns the C text of the unit.
func (c *Compiler) Compile() (string, error) {
	lowered, err := c.Lower()
	if err != nil {
		return "", err
	}
	return lowered.Code(), nil
}

// Compile checks, lowers and emits prog.
func Compile(prog *ast.Program) (string, error) {
	return NewCompiler(prog).Compile()
}

// Parse runs the front end over src. The errors are the parser's
// diagnostics, in source order.
func Parse(fileName, src string) (*ast.Program, []error) {
	p := parser.New(lexer.New(fileName, src))
	prog := p.ParseProgram()
	if len(p.Errors()) == 0 {
		return prog, nil
	}
	errs := make([]error, len(p.Errors()))
	for i, e := range p.Errors() {
		errs[i] = e
	}
	return nil, errs
}

// CompileSource parses and compiles one source file. It returns either the
// C text or every syntax error, or the single check error.
func CompileSource(fileName, src string) (string, []error) {
	prog, errs := Parse(fileName, src)
	if errs != nil {
		return "", errs
	}
	code, err := Compile(prog)
	if err != nil {
		return "", []error{err}
	}
	return code, nil
}
