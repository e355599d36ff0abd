package compiler

import (
	"testing"

	"github.com/pyc-lang/pyc/ast"
	"github.com/pyc-lang/pyc/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, errs := Parse("test.pyc", src)
	require.Empty(t, errs, "parser errors for input: %s", src)
	return prog
}

func TestCheckAccepts(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"int assignment", "x: int; x = 5;"},
		{"list assignment", "a: list; a = [1, 2, 3];"},
		{"function", "def f(x: int) -> int { return x + 1; }"},
		{"call after declaration", "def f(x: int) -> int { return x; } y: int; y = f(2);"},
		{"print anything", `print(1); print("s"); print([1]); print(True);`},
		{"print result is bool", "b: bool; b = print(1);"},
		{"int condition", "x: int; if x: { x = 1; } while x: { x = x - 1; }"},
		{"bool condition", "if True: { print(1); } elif False: { print(2); } else: { print(3); }"},
		{"heterogeneous list", `l: list; l = [1, "a", [True]];`},
		{"index trusts annotation", "l: list; s: str; s = str(l[0]);"},
		{"index into string", `s: str; b: bool; b = bool(s[1]);`},
		{"slice keeps type", `s: str; s = s[1:2]; l: list; l = l[::2];`},
		// == only needs equal operand types, any type will do
		{"eq on lists", `b: bool; b = [1] == [2];`},
		{"eq on strings", `b: bool; b = "a" == "b";`},
		{"eq on bools", `b: bool; b = True == False;`},
		{"comparison", "b: bool; b = 1 < 2 and 3 >= 2;"},
		{"not and negate", "b: bool; b = not True; x: int; x = -5 % 2;"},
		{"globals visible in functions", "g: int; def f() -> int { return g; }"},
		{"shadow global param", "x: str; def f(x: int) -> int { return x; }"},
		{"all returns match", "def f(a: int) -> bool { if a: { return True; } return False; }"},
		{"no scope per block", "if 1: { y: int; } y = 2;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, Check(mustParse(t, tt.src)))
		})
	}
}

func TestCheckRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind ErrorKind
		msg  string
	}{
		{"redeclare variable", "x: int; x: str;", Redeclaration, `Redeclaring variable named "x"`},
		{"redeclare param", "def f(a: int, a: int) -> int { return a; }", Redeclaration, `"a"`},
		{"redeclare function", "def f() -> int { return 1; } def f() -> int { return 2; }", Redeclaration, `Redeclaring function named "f"`},
		{"redeclare builtin", "def print(a: int) -> bool { return True; }", Redeclaration, `"print"`},
		{"undefined variable", "x = 1;", UndefinedReference, `Referencing undefined variable "x"`},
		{"undefined in expression", "print(y);", UndefinedReference, `"y"`},
		{"undefined function", "f(1);", UndefinedReference, `Referencing undefined function "f"`},
		{"no recursion", "def f(n: int) -> int { return f(n); }", UndefinedReference, `"f"`},
		{"local gone after function", "def f(a: int) -> int { return a; } print(a);", UndefinedReference, `"a"`},
		{"arity", "def f(x: int) -> int { return x; } f(1, 2);", ArityMismatch, "Argument length mismatch"},
		{"print arity", "print();", ArityMismatch, "Argument length mismatch"},
		{"argument type", `def f(x: int) -> int { return x; } f("s");`, TypeMismatch, "Argument type mismatch"},
		{"assignment type", `x: int; x = "ab" + "cd";`, TypeMismatch, `Variable "x" has the type int but is being assigned the type str`},
		{"return type", `def f() -> int { return "s"; }`, TypeMismatch, `Mismatch of return type within function "f"`},
		{"nested return type", `def f(a: int) -> int { while a: { return True; } return 1; }`, TypeMismatch, "Mismatch of return type"},
		{"operand types differ", `x: int; x = 1 + "a";`, TypeMismatch, "Left and right expressions are of different type"},
		{"eq operand types differ", `b: bool; b = 1 == "one";`, TypeMismatch, "Left and right expressions are of different type"},
		{"and on ints", "y: bool; y = 1 and 2;", InvalidOperation, "Cannot apply operation and to types int, int"},
		{"minus on lists", "l: list; l = l - l;", InvalidOperation, "Cannot apply operation - to types list, list"},
		{"less on strings", `b: bool; b = "a" < "b";`, InvalidOperation, "Cannot apply operation <"},
		{"not equal unsupported", "b: bool; b = 1 != 2;", InvalidOperation, "Cannot apply operation !="},
		{"int division unsupported", "x: int; x = 4 // 2;", InvalidOperation, "Cannot apply operation //"},
		{"not on int", "b: bool; b = not 1;", InvalidOperation, "Operation not cannot be applied to int"},
		{"negate bool", "x: int; x = -True;", InvalidOperation, "Operation - cannot be applied to bool"},
		{"if on list", "if [1]: { print(1); }", InvalidCondition, "If statement requires boolean or integer"},
		{"elif on str", `if 1: { print(1); } elif "s": { print(2); }`, InvalidCondition, "Elif statement requires"},
		{"while on str", `while "s": { print(1); }`, InvalidCondition, "While statement requires"},
		{"index non iterable", "x: int; x = int(x[0]);", InvalidOperation, "Indexed expression must be iterable"},
		{"index not int", `l: list; x: int; x = int(l["a"]);`, TypeMismatch, "List index must be an int"},
		{"slice bound", "l: list; l = l[True:];", TypeMismatch, "Slice index must be an int"},
		{"slice non iterable", "x: int; x = x[1:];", InvalidOperation, "Slicing requires an iterable type"},
		{"element error in list", "l: list; l = [1, nope];", UndefinedReference, `"nope"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(mustParse(t, tt.src))
			require.Error(t, err)
			assert.True(t, IsKind(err, tt.kind), "want %s, got %v", tt.kind, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestCheckStopsAtFirstError(t *testing.T) {
	err := Check(mustParse(t, "x = 1;\ny: int; y: int;"))
	require.True(t, IsKind(err, UndefinedReference), "got %v", err)

	var ce *CheckError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 1, ce.Token.Line)
	assert.Equal(t, "test.pyc", ce.Token.FileName)
}

func TestCheckRewritesConcatenation(t *testing.T) {
	prog := mustParse(t, `l: list; s: str; x: int;
l = [1] + [2];
s = "a" + "b";
x = 1 + 2;`)
	require.NoError(t, Check(prog))

	ops := []string{}
	for _, stmt := range prog.Statements {
		if as, ok := stmt.(*ast.AssignStatement); ok {
			ops = append(ops, as.Value.(*ast.InfixExpression).Operator)
		}
	}
	assert.Equal(t, []string{ast.OpConcatLists, ast.OpConcatStrings, ast.OpAdd}, ops)
}

func TestCheckTwiceIsStable(t *testing.T) {
	prog := mustParse(t, "def f(l: list) -> list { return l + l; }")
	require.NoError(t, Check(prog))
	require.NoError(t, Check(prog))
	ret := prog.Statements[0].(*ast.FuncDecl).Returns[0]
	assert.Equal(t, ast.OpConcatLists, ret.Value.(*ast.InfixExpression).Operator)
}

func TestCheckRegistersFunctionAfterBody(t *testing.T) {
	c := NewChecker()
	require.NoError(t, c.CheckProgram(mustParse(t, "def f(a: int, b: str) -> list { return [a, b]; }")))
	sig, err := c.Symbols.LookupFunction(tok, "f")
	require.NoError(t, err)
	assert.Equal(t, []types.Kind{types.Int, types.Str}, sig.Params)
	assert.Equal(t, types.List, sig.Ret)
	assert.Equal(t, 1, c.Symbols.Depth(), "function scope must be popped")
}

func TestCheckPopsScopeOnError(t *testing.T) {
	c := NewChecker()
	require.Error(t, c.CheckProgram(mustParse(t, "def f(a: int) -> int { return nope; }")))
	assert.Equal(t, 1, c.Symbols.Depth())
}
