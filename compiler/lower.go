package compiler

import (
	"fmt"
	"strconv"

	"github.com/pyc-lang/pyc/ast"
	"github.com/pyc-lang/pyc/ctree"
	"github.com/pyc-lang/pyc/types"
)

// MainFunc is the function top level statements are collected into.
const MainFunc = "main"

// Lowerer turns a checked program into a C-level tree. List and string
// literals become references to generated names whose declaration and
// initialization are hoisted in front of the statement that uses them.
//
// A Lowerer numbers generated names from zero, so lowering the same
// program with a new Lowerer always yields the same tree.
//
// Blocks share the scope of the function or top level they appear in, so
// a declaration inside a block is lifted out of it: to the globals at the
// top level, to the start of the body inside a function.
type Lowerer struct {
	next int
	// depth counts the blocks being lowered; lifted collects their declarations
	depth  int
	lifted []*ctree.VarDecl
}

func NewLowerer() *Lowerer {
	return &Lowerer{}
}

// Lower lowers prog with a fresh name counter. prog must have passed Check.
func Lower(prog *ast.Program) *ctree.Program {
	return NewLowerer().LowerProgram(prog)
}

func (lw *Lowerer) fresh(what string) string {
	name := types.GeneratedPrefix + what + "_" + strconv.Itoa(lw.next)
	lw.next++
	return name
}

// LowerProgram maps top level declarations to globals and functions and
// collects everything else, in order, into main, which comes last.
func (lw *Lowerer) LowerProgram(prog *ast.Program) *ctree.Program {
	out := &ctree.Program{
		Globals: []*ctree.VarDecl{},
		Funcs:   []*ctree.Func{},
	}
	mainBody := []ctree.Stmt{}

	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.DeclStatement:
			out.Globals = append(out.Globals, &ctree.VarDecl{Name: s.Name, Type: cType(s.Type.Kind)})
		case *ast.FuncDecl:
			out.Funcs = append(out.Funcs, lw.lowerFunc(s))
		default:
			mainBody = append(mainBody, lw.lowerStatements([]ast.Statement{s})...)
			out.Globals = append(out.Globals, lw.takeLifted()...)
		}
	}

	out.Funcs = append(out.Funcs, &ctree.Func{
		Name: MainFunc,
		Params: []*ctree.Param{
			{Name: "argc", Type: ctree.Int},
			{Name: "argv", Type: ctree.ArgVector},
		},
		Ret:  ctree.Void,
		Body: mainBody,
	})
	return out
}

func (lw *Lowerer) lowerFunc(fd *ast.FuncDecl) *ctree.Func {
	params := make([]*ctree.Param, len(fd.Params))
	for i, p := range fd.Params {
		params[i] = &ctree.Param{Name: p.Name, Type: cType(p.Type.Kind)}
	}
	stmts := lw.lowerStatements(fd.Body.Statements)
	body := []ctree.Stmt{}
	for _, d := range lw.takeLifted() {
		body = append(body, d)
	}
	return &ctree.Func{
		Name:   fd.Name,
		Params: params,
		Ret:    cType(fd.RetType.Kind),
		Body:   append(body, stmts...),
	}
}

func (lw *Lowerer) takeLifted() []*ctree.VarDecl {
	lifted := lw.lifted
	lw.lifted = nil
	return lifted
}

// lowerBlock lowers the statements of a nested block.
func (lw *Lowerer) lowerBlock(stmts []ast.Statement) []ctree.Stmt {
	lw.depth++
	defer func() { lw.depth-- }()
	return lw.lowerStatements(stmts)
}

// lowerStatements lowers each statement on its own and places the
// statements it hoisted directly before it. A bare block is spliced in
// place.
func (lw *Lowerer) lowerStatements(stmts []ast.Statement) []ctree.Stmt {
	out := []ctree.Stmt{}
	for _, s := range stmts {
		if b, ok := s.(*ast.Block); ok {
			out = append(out, lw.lowerBlock(b.Statements)...)
			continue
		}
		hoisted, lowered := lw.lowerStatement(s)
		out = append(out, hoisted...)
		if lowered != nil {
			out = append(out, lowered)
		}
	}
	return out
}

func (lw *Lowerer) lowerStatement(stmt ast.Statement) ([]ctree.Stmt, ctree.Stmt) {
	switch s := stmt.(type) {
	case *ast.DeclStatement:
		decl := &ctree.VarDecl{Name: s.Name, Type: cType(s.Type.Kind)}
		if lw.depth > 0 {
			lw.lifted = append(lw.lifted, decl)
			return nil, nil
		}
		return nil, decl
	case *ast.AssignStatement:
		val, hoisted := lw.lowerExpr(s.Value)
		return hoisted, &ctree.Assign{Name: s.Name, Value: val}
	case *ast.IfStatement:
		cond, hoisted := lw.lowerExpr(s.Condition)
		body := lw.lowerBlock(s.Body.Statements)
		branch, more := lw.lowerBranch(s.Else)
		return append(hoisted, more...), &ctree.If{Cond: cond, Body: body, Else: branch}
	case *ast.WhileStatement:
		cond, hoisted := lw.lowerExpr(s.Condition)
		return hoisted, &ctree.While{Cond: cond, Body: lw.lowerBlock(s.Body.Statements)}
	case *ast.ReturnStatement:
		val, hoisted := lw.lowerExpr(s.Value)
		return hoisted, &ctree.Return{Value: val}
	case *ast.ExpressionStatement:
		x, hoisted := lw.lowerExpr(s.Expression)
		return hoisted, &ctree.ExprStmt{X: x}
	default:
		panic(fmt.Sprintf("Cannot lower statement type %T", s))
	}
}

// lowerBranch lowers an elif/else tail. Literals in elif conditions are
// hoisted in front of the whole if statement.
func (lw *Lowerer) lowerBranch(b ast.Branch) (ctree.Branch, []ctree.Stmt) {
	switch b := b.(type) {
	case nil:
		return nil, nil
	case *ast.ElifBlock:
		cond, hoisted := lw.lowerExpr(b.Condition)
		body := lw.lowerBlock(b.Body.Statements)
		branch, more := lw.lowerBranch(b.Else)
		return &ctree.ElseIf{Cond: cond, Body: body, Else: branch}, append(hoisted, more...)
	case *ast.ElseBlock:
		return &ctree.Else{Body: lw.lowerBlock(b.Body.Statements)}, nil
	default:
		panic(fmt.Sprintf("Cannot lower branch type %T", b))
	}
}

// lowerExpr returns the lowered expression and the statements that must
// run before it, innermost literals first.
func (lw *Lowerer) lowerExpr(expr ast.Expression) (ctree.Expr, []ctree.Stmt) {
	switch e := expr.(type) {
	case *ast.Constant:
		return lw.lowerConstant(e)
	case *ast.PrefixExpression:
		x, hoisted := lw.lowerExpr(e.Right)
		if e.Operator == ast.OpNot {
			return &ctree.Cast{Type: ctree.Short, X: &ctree.Unary{Op: "!", X: x}}, hoisted
		}
		return &ctree.Unary{Op: e.Operator, X: x}, hoisted
	case *ast.InfixExpression:
		return lw.lowerInfix(e)
	case *ast.CallExpression:
		args, hoisted := lw.lowerExprs(e.Arguments)
		return ctree.CallOf(e.Function, args...), hoisted
	case *ast.ListLiteral:
		return lw.lowerList(e)
	case *ast.IndexExpression:
		args, hoisted := lw.lowerExprs([]ast.Expression{e.Left, e.Index})
		return ctree.CallOf(accessor(e.Elem.Kind), args...), hoisted
	case *ast.SliceExpression:
		args, hoisted := lw.lowerExprs([]ast.Expression{e.Left, e.Start, e.End, e.Step})
		return ctree.CallOf(ctree.Slice, args...), hoisted
	default:
		panic(fmt.Sprintf("Cannot lower expression type %T", e))
	}
}

func (lw *Lowerer) lowerExprs(exprs []ast.Expression) ([]ctree.Expr, []ctree.Stmt) {
	out := make([]ctree.Expr, len(exprs))
	var hoisted []ctree.Stmt
	for i, e := range exprs {
		x, h := lw.lowerExpr(e)
		out[i] = x
		hoisted = append(hoisted, h...)
	}
	return out, hoisted
}

func (lw *Lowerer) lowerConstant(c *ast.Constant) (ctree.Expr, []ctree.Stmt) {
	switch c.Type {
	case types.ID:
		return ctree.Ref(c.Value), nil
	case types.Int:
		return &ctree.Cast{Type: ctree.Int, X: &ctree.IntLit{Value: c.Value}}, nil
	case types.Bool:
		v := "0"
		if c.Value == "True" {
			v = "1"
		}
		return &ctree.Cast{Type: ctree.Short, X: &ctree.IntLit{Value: v}}, nil
	case types.Str:
		return lw.lowerString(c.Value)
	default:
		panic(fmt.Sprintf("Cannot lower constant of type %s", c.Type))
	}
}

// lowerString allocates an empty string under a fresh name and inserts
// the literal's bytes one at a time.
func (lw *Lowerer) lowerString(s string) (ctree.Expr, []ctree.Stmt) {
	name := lw.fresh("str")
	hoisted := []ctree.Stmt{
		&ctree.VarDecl{Name: name, Type: ctree.StringPtr},
		&ctree.Assign{Name: name, Value: ctree.CallOf(ctree.NewString)},
	}
	for i := 0; i < len(s); i++ {
		insert := ctree.CallOf(ctree.StringInsert, ctree.Ref(name), &ctree.CharLit{Value: s[i]})
		hoisted = append(hoisted, &ctree.ExprStmt{X: insert})
	}
	return ctree.Ref(name), hoisted
}

// lowerList lowers the elements first, so a nested literal is fully built
// before the list holding it.
func (lw *Lowerer) lowerList(ll *ast.ListLiteral) (ctree.Expr, []ctree.Stmt) {
	elems, hoisted := lw.lowerExprs(ll.Elements)
	name := lw.fresh("list")
	hoisted = append(hoisted,
		&ctree.VarDecl{Name: name, Type: ctree.ListPtr},
		&ctree.Assign{Name: name, Value: ctree.CallOf(ctree.NewList)},
	)
	for _, el := range elems {
		hoisted = append(hoisted, &ctree.ExprStmt{X: ctree.CallOf(ctree.Push, ctree.Ref(name), el)})
	}
	return ctree.Ref(name), hoisted
}

func (lw *Lowerer) lowerInfix(ie *ast.InfixExpression) (ctree.Expr, []ctree.Stmt) {
	args, hoisted := lw.lowerExprs([]ast.Expression{ie.Left, ie.Right})
	left, right := args[0], args[1]
	switch ie.Operator {
	case ast.OpAnd:
		return &ctree.Cast{Type: ctree.Short, X: &ctree.Binary{Op: "&&", Left: left, Right: right}}, hoisted
	case ast.OpOr:
		return &ctree.Cast{Type: ctree.Short, X: &ctree.Binary{Op: "||", Left: left, Right: right}}, hoisted
	case ast.OpConcatLists:
		return ctree.CallOf(ctree.ConcatLists, left, right), hoisted
	case ast.OpConcatStrings:
		return ctree.CallOf(ctree.ConcatStrings, left, right), hoisted
	}
	return &ctree.Binary{Op: ie.Operator, Left: left, Right: right}, hoisted
}

func accessor(elem types.Kind) string {
	switch elem {
	case types.Int:
		return ctree.GetInt
	case types.List:
		return ctree.GetList
	case types.Bool:
		return ctree.GetShort
	case types.Str:
		return ctree.GetString
	}
	panic(fmt.Sprintf("no runtime accessor for element type %s", elem))
}

// cType is the C storage type of a source type.
func cType(k types.Kind) ctree.Type {
	switch k {
	case types.Int:
		return ctree.Int
	case types.Bool:
		return ctree.Short
	case types.List:
		return ctree.ListPtr
	case types.Str:
		return ctree.StringPtr
	}
	panic(fmt.Sprintf("unknown type in cType: %s", k))
}
