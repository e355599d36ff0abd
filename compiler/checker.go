package compiler

import (
	"fmt"

	"github.com/pyc-lang/pyc/ast"
	"github.com/pyc-lang/pyc/types"
)

// Checker validates scoping and typing of a program. It rewrites "+" on
// lists and strings to the concatenation operators in place and stops at
// the first violation.
type Checker struct {
	Symbols *SymbolTable
	// kinds of the return statements seen while walking function bodies
	retKinds map[*ast.ReturnStatement]types.Kind
}

func NewChecker() *Checker {
	return &Checker{
		Symbols:  NewSymbolTable(),
		retKinds: make(map[*ast.ReturnStatement]types.Kind),
	}
}

// Check type checks prog with a fresh symbol table.
func Check(prog *ast.Program) error {
	return NewChecker().CheckProgram(prog)
}

// CheckProgram checks the top level statements in order. The top level is
// the root scope of the symbol table.
func (c *Checker) CheckProgram(prog *ast.Program) error {
	return c.checkStatements(prog.Statements)
}

func (c *Checker) checkStatements(stmts []ast.Statement) error {
	for _, s := range stmts {
		if err := c.checkStatement(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.FuncDecl:
		return c.checkFuncDecl(s)
	case *ast.DeclStatement:
		return c.Symbols.DeclareVariable(s.Token, s.Name, s.Type.Kind)
	case *ast.AssignStatement:
		return c.checkAssign(s)
	case *ast.IfStatement:
		if err := c.checkCondition(s.Condition, "If"); err != nil {
			return err
		}
		if err := c.checkStatements(s.Body.Statements); err != nil {
			return err
		}
		return c.checkBranch(s.Else)
	case *ast.WhileStatement:
		if err := c.checkCondition(s.Condition, "While"); err != nil {
			return err
		}
		return c.checkStatements(s.Body.Statements)
	case *ast.ReturnStatement:
		kind, err := c.checkExpression(s.Value)
		if err != nil {
			return err
		}
		c.retKinds[s] = kind
		return nil
	case *ast.ExpressionStatement:
		_, err := c.checkExpression(s.Expression)
		return err
	case *ast.Block:
		return c.checkStatements(s.Statements)
	default:
		panic(fmt.Sprintf("Cannot check statement type %T", s))
	}
}

// checkFuncDecl checks the body in a scope of its own and only then
// registers the function, so a function cannot call itself.
func (c *Checker) checkFuncDecl(fd *ast.FuncDecl) error {
	c.Symbols.PushScope()
	for _, p := range fd.Params {
		if err := c.Symbols.DeclareVariable(p.Token, p.Name, p.Type.Kind); err != nil {
			c.Symbols.PopScope()
			return err
		}
	}
	if err := c.checkStatements(fd.Body.Statements); err != nil {
		c.Symbols.PopScope()
		return err
	}
	for _, ret := range fd.Returns {
		kind, ok := c.retKinds[ret]
		if !ok {
			panic(fmt.Sprintf("return at %d:%d of %q was never checked", ret.Token.Line, ret.Token.Column, fd.Name))
		}
		if !types.Equal(kind, fd.RetType.Kind) {
			c.Symbols.PopScope()
			return newCheckError(TypeMismatch, ret.Token, "Mismatch of return type within function %q", fd.Name)
		}
	}
	c.Symbols.PopScope()

	return c.Symbols.DeclareFunction(fd.Token, sigOf(fd))
}

func (c *Checker) checkAssign(as *ast.AssignStatement) error {
	varKind, err := c.Symbols.LookupVariable(as.Token, as.Name)
	if err != nil {
		return err
	}
	exprKind, err := c.checkExpression(as.Value)
	if err != nil {
		return err
	}
	if !types.Equal(varKind, exprKind) {
		return newCheckError(TypeMismatch, as.Token,
			"Variable %q has the type %s but is being assigned the type %s", as.Name, varKind, exprKind)
	}
	return nil
}

func (c *Checker) checkCondition(cond ast.Expression, what string) error {
	kind, err := c.checkExpression(cond)
	if err != nil {
		return err
	}
	if !types.Equal(kind, types.Bool) && !types.Equal(kind, types.Int) {
		return newCheckError(InvalidCondition, cond.Tok(),
			"%s statement requires boolean or integer as its condition", what)
	}
	return nil
}

func (c *Checker) checkBranch(b ast.Branch) error {
	switch b := b.(type) {
	case nil:
		return nil
	case *ast.ElifBlock:
		if err := c.checkCondition(b.Condition, "Elif"); err != nil {
			return err
		}
		if err := c.checkStatements(b.Body.Statements); err != nil {
			return err
		}
		return c.checkBranch(b.Else)
	case *ast.ElseBlock:
		return c.checkStatements(b.Body.Statements)
	default:
		panic(fmt.Sprintf("Cannot check branch type %T", b))
	}
}

func (c *Checker) checkExpression(expr ast.Expression) (types.Kind, error) {
	switch e := expr.(type) {
	case *ast.Constant:
		if e.Type == types.ID {
			return c.Symbols.LookupVariable(e.Token, e.Value)
		}
		return e.Type, nil
	case *ast.PrefixExpression:
		return c.checkPrefix(e)
	case *ast.InfixExpression:
		return c.checkInfix(e)
	case *ast.CallExpression:
		return c.checkCall(e)
	case *ast.ListLiteral:
		for _, el := range e.Elements {
			if _, err := c.checkExpression(el); err != nil {
				return types.Invalid, err
			}
		}
		return types.List, nil
	case *ast.IndexExpression:
		return c.checkIndex(e)
	case *ast.SliceExpression:
		return c.checkSlice(e)
	default:
		panic(fmt.Sprintf("Cannot check expression type %T", e))
	}
}

func (c *Checker) checkPrefix(pe *ast.PrefixExpression) (types.Kind, error) {
	kind, err := c.checkExpression(pe.Right)
	if err != nil {
		return types.Invalid, err
	}
	switch {
	case pe.Operator == ast.OpNot && types.Equal(kind, types.Bool):
		return types.Bool, nil
	case pe.Operator == ast.OpSub && types.Equal(kind, types.Int):
		return types.Int, nil
	}
	return types.Invalid, newCheckError(InvalidOperation, pe.Token,
		"Operation %s cannot be applied to %s", pe.Operator, kind)
}

func (c *Checker) checkInfix(ie *ast.InfixExpression) (types.Kind, error) {
	left, err := c.checkExpression(ie.Left)
	if err != nil {
		return types.Invalid, err
	}
	right, err := c.checkExpression(ie.Right)
	if err != nil {
		return types.Invalid, err
	}
	if !types.Equal(left, right) {
		return types.Invalid, newCheckError(TypeMismatch, ie.Token, "Left and right expressions are of different type")
	}

	switch ie.Operator {
	case ast.OpAdd, ast.OpConcatLists, ast.OpConcatStrings:
		switch {
		case types.Equal(left, types.List):
			ie.Operator = ast.OpConcatLists
			return types.List, nil
		case types.Equal(left, types.Str):
			ie.Operator = ast.OpConcatStrings
			return types.Str, nil
		case types.Equal(left, types.Int):
			ie.Operator = ast.OpAdd
			return types.Int, nil
		}
	case ast.OpSub, ast.OpMul, ast.OpQuo, ast.OpRem:
		if types.Equal(left, types.Int) {
			return types.Int, nil
		}
	case ast.OpLss, ast.OpLeq, ast.OpGtr, ast.OpGeq:
		if types.Equal(left, types.Int) {
			return types.Bool, nil
		}
	case ast.OpEql:
		return types.Bool, nil
	case ast.OpAnd, ast.OpOr:
		if types.Equal(left, types.Bool) {
			return types.Bool, nil
		}
	}
	return types.Invalid, newCheckError(InvalidOperation, ie.Token,
		"Cannot apply operation %s to types %s, %s", ie.Operator, left, right)
}

func (c *Checker) checkCall(ce *ast.CallExpression) (types.Kind, error) {
	sig, err := c.Symbols.LookupFunction(ce.Token, ce.Function)
	if err != nil {
		return types.Invalid, err
	}
	if len(sig.Params) != len(ce.Arguments) {
		return types.Invalid, newCheckError(ArityMismatch, ce.Token,
			"Argument length mismatch with function %q: want %d, got %d", ce.Function, len(sig.Params), len(ce.Arguments))
	}
	for i, arg := range ce.Arguments {
		kind, err := c.checkExpression(arg)
		if err != nil {
			return types.Invalid, err
		}
		if !types.Equal(kind, sig.Params[i]) {
			return types.Invalid, newCheckError(TypeMismatch, arg.Tok(),
				"Argument type mismatch with function parameter %d of %q: want %s, got %s", i+1, ce.Function, sig.Params[i], kind)
		}
	}
	return sig.Ret, nil
}

func (c *Checker) checkIndex(ie *ast.IndexExpression) (types.Kind, error) {
	container, err := c.checkExpression(ie.Left)
	if err != nil {
		return types.Invalid, err
	}
	index, err := c.checkExpression(ie.Index)
	if err != nil {
		return types.Invalid, err
	}
	if !types.Iterable(container) {
		return types.Invalid, newCheckError(InvalidOperation, ie.Token, "Indexed expression must be iterable, got %s", container)
	}
	if !types.Equal(index, types.Int) {
		return types.Invalid, newCheckError(TypeMismatch, ie.Index.Tok(), "List index must be an int, got %s", index)
	}
	return ie.Elem.Kind, nil
}

func (c *Checker) checkSlice(se *ast.SliceExpression) (types.Kind, error) {
	for _, bound := range []ast.Expression{se.Start, se.End, se.Step} {
		kind, err := c.checkExpression(bound)
		if err != nil {
			return types.Invalid, err
		}
		if !types.Equal(kind, types.Int) {
			return types.Invalid, newCheckError(TypeMismatch, bound.Tok(), "Slice index must be an int, got %s", kind)
		}
	}
	container, err := c.checkExpression(se.Left)
	if err != nil {
		return types.Invalid, err
	}
	if !types.Iterable(container) {
		return types.Invalid, newCheckError(InvalidOperation, se.Token, "Slicing requires an iterable type, got %s", container)
	}
	return container, nil
}
