package compiler

import (
	"github.com/pyc-lang/pyc/ast"
	"github.com/pyc-lang/pyc/token"
	"github.com/pyc-lang/pyc/types"
)

// FuncSig is what callers see of a function: its parameter and return kinds.
type FuncSig struct {
	Name   string
	Params []types.Kind
	Ret    types.Kind
	Decl   *ast.FuncDecl // nil for builtins
}

func sigOf(fd *ast.FuncDecl) *FuncSig {
	params := make([]types.Kind, len(fd.Params))
	for i, p := range fd.Params {
		params[i] = p.Type.Kind
	}
	return &FuncSig{Name: fd.Name, Params: params, Ret: fd.RetType.Kind, Decl: fd}
}

// SymbolTable is a stack of variable scopes plus one flat function table.
// It lives for a single check of a single unit.
type SymbolTable struct {
	Scopes []Scope[types.Kind]
	Funcs  map[string]*FuncSig
}

func NewSymbolTable() *SymbolTable {
	st := &SymbolTable{
		Scopes: []Scope[types.Kind]{NewScope[types.Kind]()},
		Funcs:  make(map[string]*FuncSig, len(Builtins)),
	}
	for name, sig := range Builtins {
		st.Funcs[name] = sig
	}
	return st
}

func (st *SymbolTable) PushScope() {
	PushScope(&st.Scopes)
}

// PopScope panics when only the root scope is left.
func (st *SymbolTable) PopScope() {
	PopScope(&st.Scopes)
}

func (st *SymbolTable) Depth() int {
	return len(st.Scopes)
}

// DeclareVariable binds name in the innermost scope. Shadowing an outer
// binding is allowed; rebinding within the same scope is not.
func (st *SymbolTable) DeclareVariable(tok token.Token, name string, kind types.Kind) error {
	if Local(st.Scopes, name) {
		return newCheckError(Redeclaration, tok, "Redeclaring variable named %q", name)
	}
	Put(st.Scopes, name, kind)
	return nil
}

func (st *SymbolTable) LookupVariable(tok token.Token, name string) (types.Kind, error) {
	kind, ok := Get(st.Scopes, name)
	if !ok {
		return types.Invalid, newCheckError(UndefinedReference, tok, "Referencing undefined variable %q", name)
	}
	return kind, nil
}

func (st *SymbolTable) DeclareFunction(tok token.Token, sig *FuncSig) error {
	if _, ok := st.Funcs[sig.Name]; ok {
		return newCheckError(Redeclaration, tok, "Redeclaring function named %q", sig.Name)
	}
	st.Funcs[sig.Name] = sig
	return nil
}

func (st *SymbolTable) LookupFunction(tok token.Token, name string) (*FuncSig, error) {
	sig, ok := st.Funcs[name]
	if !ok {
		return nil, newCheckError(UndefinedReference, tok, "Referencing undefined function %q", name)
	}
	return sig, nil
}
