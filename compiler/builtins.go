package compiler

import "github.com/pyc-lang/pyc/types"

// Builtin function names
const Print = "print"

// Builtins seeds every new symbol table. print takes any single value.
var Builtins = map[string]*FuncSig{
	Print: {Name: Print, Params: []types.Kind{types.Any}, Ret: types.Bool},
}
