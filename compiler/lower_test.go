package compiler

import (
	"strings"
	"testing"

	"github.com/pyc-lang/pyc/ast"
	"github.com/pyc-lang/pyc/ctree"
	"github.com/pyc-lang/pyc/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLower(t *testing.T, src string) *ctree.Program {
	t.Helper()
	prog := mustParse(t, src)
	require.NoError(t, Check(prog))
	return Lower(prog)
}

func mainBody(t *testing.T, p *ctree.Program) []ctree.Stmt {
	t.Helper()
	require.NotEmpty(t, p.Funcs)
	main := p.Funcs[len(p.Funcs)-1]
	require.Equal(t, MainFunc, main.Name)
	return main.Body
}

func lines(stmts []ctree.Stmt) []string {
	out := make([]string, len(stmts))
	for i, s := range stmts {
		out[i] = ctree.StmtCode(s)
	}
	return out
}

func TestLowerIntAssignment(t *testing.T) {
	p := mustLower(t, "x: int; x = 5;")
	require.Equal(t, []*ctree.VarDecl{{Name: "x", Type: ctree.Int}}, p.Globals)
	assert.Equal(t, []string{"x = (int) (5)"}, lines(mainBody(t, p)))
}

func TestLowerListLiteral(t *testing.T) {
	p := mustLower(t, "a: list; a = [1, 2, 3];")
	require.Equal(t, []*ctree.VarDecl{{Name: "a", Type: ctree.ListPtr}}, p.Globals)
	assert.Equal(t, []string{
		"struct List * __list_0",
		"__list_0 = new_list()",
		"push(__list_0, (int) (1))",
		"push(__list_0, (int) (2))",
		"push(__list_0, (int) (3))",
		"a = __list_0",
	}, lines(mainBody(t, p)))
}

func TestLowerFunction(t *testing.T) {
	p := mustLower(t, "def f(x: int) -> int { return x + 1; }")
	require.Len(t, p.Funcs, 2)
	f := p.Funcs[0]
	assert.Equal(t, "f", f.Name)
	assert.Equal(t, []*ctree.Param{{Name: "x", Type: ctree.Int}}, f.Params)
	assert.Equal(t, ctree.Int, f.Ret)
	assert.Equal(t, []string{"return (x + (int) (1))"}, lines(f.Body))
	assert.Empty(t, mainBody(t, p))
}

func TestLowerMainSignature(t *testing.T) {
	p := mustLower(t, "")
	require.Len(t, p.Funcs, 1)
	main := p.Funcs[0]
	assert.Equal(t, ctree.Void, main.Ret)
	assert.Equal(t, []*ctree.Param{
		{Name: "argc", Type: ctree.Int},
		{Name: "argv", Type: ctree.ArgVector},
	}, main.Params)
}

func TestLowerString(t *testing.T) {
	p := mustLower(t, `s: str; s = "a'\\";`)
	assert.Equal(t, []string{
		"String * __str_0",
		"__str_0 = new_string()",
		"stringInsert(__str_0, 'a')",
		`stringInsert(__str_0, '\'')`,
		`stringInsert(__str_0, '\\')`,
		"s = __str_0",
	}, lines(mainBody(t, p)))
}

func TestLowerEmptyLiterals(t *testing.T) {
	p := mustLower(t, `l: list; l = []; s: str; s = "";`)
	assert.Equal(t, []string{
		"struct List * __list_0",
		"__list_0 = new_list()",
		"l = __list_0",
		"String * __str_1",
		"__str_1 = new_string()",
		"s = __str_1",
	}, lines(mainBody(t, p)))
}

func TestLowerNestedLiteralsInnerFirst(t *testing.T) {
	p := mustLower(t, `l: list; l = [[1], "b"];`)
	assert.Equal(t, []string{
		"struct List * __list_0",
		"__list_0 = new_list()",
		"push(__list_0, (int) (1))",
		"String * __str_1",
		"__str_1 = new_string()",
		"stringInsert(__str_1, 'b')",
		"struct List * __list_2",
		"__list_2 = new_list()",
		"push(__list_2, __list_0)",
		"push(__list_2, __str_1)",
		"l = __list_2",
	}, lines(mainBody(t, p)))
}

func TestLowerOperators(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"bool true", "b: bool; b = True;", "b = (short) (1)"},
		{"bool false", "b: bool; b = False;", "b = (short) (0)"},
		{"and", "b: bool; b = b and True;", "b = (short) ((b && (short) (1)))"},
		{"or", "b: bool; b = b or b;", "b = (short) ((b || b))"},
		{"not", "b: bool; b = not b;", "b = (short) (! b)"},
		{"negate", "x: int; x = -x;", "x = - x"},
		{"arith", "x: int; x = x * 2 % 3;", "x = ((x * (int) (2)) % (int) (3))"},
		{"compare", "b: bool; b = 1 <= 2;", "b = ((int) (1) <= (int) (2))"},
		{"eq", "b: bool; b = b == b;", "b = (b == b)"},
		{"concat lists", "l: list; l = l + l;", "l = concat_lists(l, l)"},
		{"concat strings", "s: str; s = s + s;", "s = concat_strings(s, s)"},
		{"index int", "l: list; x: int; x = int(l[0]);", "x = getInt(l, (int) (0))"},
		{"index list", "l: list; l = list(l[0]);", "l = getList(l, (int) (0))"},
		{"index bool", "l: list; b: bool; b = bool(l[0]);", "b = getShort(l, (int) (0))"},
		{"index str", "s: str; s = str(s[0]);", "s = getString(s, (int) (0))"},
		{"slice defaults", "l: list; l = l[:];", "l = slice(l, (int) (0), (int) (2147483647), (int) (1))"},
		{"slice", "s: str; x: int; s = s[x:x:2];", "s = slice(s, x, x, (int) (2))"},
		{"call", "def f(a: int, b: bool) -> int { return a; } x: int; x = f(1, True);", "x = f((int) (1), (short) (1))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := lines(mainBody(t, mustLower(t, tt.src)))
			require.NotEmpty(t, body)
			assert.Equal(t, tt.want, body[len(body)-1])
		})
	}
}

func TestLowerHoistsBeforeControlFlow(t *testing.T) {
	p := mustLower(t, `
l: list;
if l == [1]: {
    l = [2];
} elif l == [3]: {
    print("x");
} else: {
    print(l);
}
while l == []: { l = [4]; }
`)
	body := mainBody(t, p)
	got := lines(body)
	require.Len(t, got, 10)
	// the literals of the if and elif conditions come first
	assert.Equal(t, []string{
		"struct List * __list_0",
		"__list_0 = new_list()",
		"push(__list_0, (int) (1))",
		"struct List * __list_2",
		"__list_2 = new_list()",
		"push(__list_2, (int) (3))",
	}, got[:6])

	ifStmt, ok := body[6].(*ctree.If)
	require.True(t, ok)
	assert.Equal(t, []string{
		"struct List * __list_1",
		"__list_1 = new_list()",
		"push(__list_1, (int) (2))",
		"l = __list_1",
	}, lines(ifStmt.Body))
	elif := ifStmt.Else.(*ctree.ElseIf)
	assert.Equal(t, "print(__str_3)", lines(elif.Body)[len(elif.Body)-1])
	assert.IsType(t, &ctree.Else{}, elif.Else)

	assert.Equal(t, []string{"struct List * __list_4", "__list_4 = new_list()"}, got[7:9])
	while, ok := body[9].(*ctree.While)
	require.True(t, ok)
	assert.Equal(t, "(l == __list_4)", ctree.ExprCode(while.Cond))
	assert.Equal(t, "l = __list_5", lines(while.Body)[3])
}

// Every generated name is declared exactly once and before any other use,
// and never leaks into another statement's prefix.
func TestLowerHoistingPrecedesUse(t *testing.T) {
	src := `
a: list; s: str; b: bool;
a = [1, [2, 3], "xy"] + [a];
s = "p" + "q";
b = print([s, "r"]);
def f(x: list) -> list { return x + [x, ["z"]]; }
a = f([]);
`
	p := mustLower(t, src)
	for _, fn := range p.Funcs {
		declared := map[string]bool{}
		for _, line := range lines(fn.Body) {
			if strings.HasPrefix(line, "struct List * ") || strings.HasPrefix(line, "String * ") {
				name := line[strings.LastIndex(line, " ")+1:]
				require.False(t, declared[name], "%s declared twice", name)
				declared[name] = true
				continue
			}
			for _, word := range strings.FieldsFunc(line, func(r rune) bool {
				return !(r == '_' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
			}) {
				if strings.HasPrefix(word, types.GeneratedPrefix) {
					require.True(t, declared[word], "%s used before declaration in %q", word, line)
				}
			}
		}
	}
}

func TestLowerFreshNamesUnique(t *testing.T) {
	p := mustLower(t, `
def f() -> list { return [1]; }
def g() -> str { return "a"; }
l: list; l = [2];
`)
	seen := map[string]bool{}
	for _, fn := range p.Funcs {
		for _, s := range fn.Body {
			if d, ok := s.(*ctree.VarDecl); ok {
				require.False(t, seen[d.Name], "duplicate %s", d.Name)
				seen[d.Name] = true
			}
		}
	}
	assert.Equal(t, map[string]bool{"__list_0": true, "__str_1": true, "__list_2": true}, seen)
}

func TestLowerDeterministic(t *testing.T) {
	src := `l: list; l = [1, "two", [3]]; def f(s: str) -> str { return s + "!"; }`
	prog := mustParse(t, src)
	require.NoError(t, Check(prog))
	first := Lower(prog).Code()
	second := Lower(prog).Code()
	assert.Equal(t, first, second)

	again := mustLower(t, src).Code()
	assert.Equal(t, first, again)
}

func TestLowerLocalDeclaration(t *testing.T) {
	p := mustLower(t, "def f() -> int { y: int; y = 1; return y; }")
	assert.Equal(t, []string{"int y", "y = (int) (1)", "return y"}, lines(p.Funcs[0].Body))
	assert.Empty(t, p.Globals)
}

func TestLowerUnknownAccessorPanics(t *testing.T) {
	ie := &ast.IndexExpression{
		Elem:  &ast.TypeRef{Kind: types.Any},
		Left:  &ast.Constant{Type: types.ID, Value: "l"},
		Index: &ast.Constant{Type: types.Int, Value: "0"},
	}
	require.Panics(t, func() { NewLowerer().lowerExpr(ie) })
}

func TestLowerLiftsBlockDeclarationsToGlobals(t *testing.T) {
	p := mustLower(t, `
if 1: { y: int; y = 1; } elif 0: { w: list; } else: { v: str; }
while 0: { u: bool; }
def f() -> int { return y; }
`)
	assert.Equal(t, []*ctree.VarDecl{
		{Name: "y", Type: ctree.Int},
		{Name: "w", Type: ctree.ListPtr},
		{Name: "v", Type: ctree.StringPtr},
		{Name: "u", Type: ctree.Short},
	}, p.Globals)

	body := mainBody(t, p)
	require.Len(t, body, 2)
	ifStmt := body[0].(*ctree.If)
	assert.Equal(t, []string{"y = (int) (1)"}, lines(ifStmt.Body))
	assert.Empty(t, ifStmt.Else.(*ctree.ElseIf).Body)
	assert.Empty(t, body[1].(*ctree.While).Body)
}

func TestLowerLiftsBlockDeclarationsInFunction(t *testing.T) {
	p := mustLower(t, "def f(a: int) -> int { if a: { b: int; b = a; } while a: { c: str; } return b; }")
	assert.Empty(t, p.Globals)
	got := lines(p.Funcs[0].Body)
	require.Len(t, got, 5)
	assert.Equal(t, []string{"int b", "String * c"}, got[:2])
	assert.Equal(t, "return b", got[4])
}

func TestLowerBareBlockIsSpliced(t *testing.T) {
	assert.Empty(t, mainBody(t, Lower(&ast.Program{Statements: []ast.Statement{&ast.Block{}}})))

	prog := &ast.Program{Statements: []ast.Statement{
		&ast.Block{Statements: []ast.Statement{
			&ast.DeclStatement{Name: "b", Type: &ast.TypeRef{Kind: types.Bool}},
			&ast.AssignStatement{Name: "b", Value: &ast.Constant{Type: types.Bool, Value: "True"}},
		}},
	}}
	require.NoError(t, Check(prog))
	p := Lower(prog)
	assert.Equal(t, []*ctree.VarDecl{{Name: "b", Type: ctree.Short}}, p.Globals)
	assert.Equal(t, []string{"b = (short) (1)"}, lines(mainBody(t, p)))
}
