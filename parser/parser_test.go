package parser

import (
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ztrue/tracerr"

	"github.com/pontaoski/van/ast"
	"github.com/pontaoski/van/errors"
	"github.com/pontaoski/van/lexer"
	"github.com/pontaoski/van/types"
)

var ignorePositions = cmpopts.IgnoreTypes(types.Position{})

func parse(t *testing.T, src string) []ast.Statement {
	t.Helper()

	tokens, err := lexer.Lex(src, "stdin")
	require.NoError(t, err)
	stmts, err := ParseTokens(tokens)
	require.NoError(t, err)
	return stmts
}

func parseErr(t *testing.T, src string) errors.Response {
	t.Helper()

	tokens, err := lexer.Lex(src, "stdin")
	require.NoError(t, err)
	_, err = ParseTokens(tokens)
	require.Error(t, err)

	var resp errors.Response
	require.True(t, stderrors.As(tracerr.Unwrap(err), &resp), "got %T", err)
	return resp
}

func assertAST(t *testing.T, want, got interface{}) {
	t.Helper()

	if diff := cmp.Diff(want, got, ignorePositions); diff != "" {
		t.Errorf("ast mismatch (-want +got):\n%s", diff)
	}
}

func id(name string) ast.Identifier {
	return ast.Identifier{Name: name}
}

func bin(left ast.Expression, op types.Operator, right ast.Expression) ast.BinaryOp {
	return ast.BinaryOp{Left: left, Op: op, Right: right}
}

func TestDefinitions(t *testing.T) {
	got := parse(t, "a: i32 = 10\nmut b: char = '\\n'\nc := r\"hey\"\n")
	want := []ast.Statement{
		ast.Definition{Type: ast.IdentType{Name: "i32"}, Name: id("a"), Right: ast.Number(10)},
		ast.Definition{Type: ast.MutType{Inner: ast.IdentType{Name: "char"}}, Name: id("b"), Right: ast.Char('\n')},
		ast.Definition{Name: id("c"), Right: ast.Str("hey")},
	}
	assertAST(t, want, got)
}

func TestMutWithoutType(t *testing.T) {
	got := parse(t, "mut x := 1")
	assertAST(t, []ast.Statement{
		ast.Definition{Type: ast.MutType{}, Name: id("x"), Right: ast.Number(1)},
	}, got)
}

func TestDeclarationWithoutValue(t *testing.T) {
	got := parse(t, "x: [i32; 3]\ny: fun i32, str -> bool")
	assertAST(t, []ast.Statement{
		ast.Definition{Type: ast.ArrayType{Elem: ast.IdentType{Name: "i32"}, Len: ast.Number(3)}, Name: id("x")},
		ast.Definition{Type: ast.FunType{
			Params: []ast.Type{ast.IdentType{Name: "i32"}, ast.IdentType{Name: "str"}},
			Return: ast.IdentType{Name: "bool"},
		}, Name: id("y")},
	}, got)
}

func TestArrays(t *testing.T) {
	got := parse(t, "mut d := [1, 1, 2,]")
	assertAST(t, []ast.Statement{
		ast.Definition{Type: ast.MutType{}, Name: id("d"), Right: ast.Array{Elements: []ast.Expression{
			ast.Number(1), ast.Number(1), ast.Number(2),
		}}},
	}, got)

	resp := parseErr(t, "mut d := [1 1 2]")
	assert.Contains(t, resp.Error(), "something's wrong in this array")

	resp = parseErr(t, "d := [1]")
	assert.Contains(t, resp.Error(), "expected an array literal")
}

func TestPrecedence(t *testing.T) {
	cases := []struct {
		src  string
		want ast.Expression
	}{
		{"1 + 2 * 3", bin(ast.Number(1), types.Add, bin(ast.Number(2), types.Mul, ast.Number(3)))},
		{"1 * 2 + 3", bin(bin(ast.Number(1), types.Mul, ast.Number(2)), types.Add, ast.Number(3))},
		{"1 - 2 - 3", bin(bin(ast.Number(1), types.Sub, ast.Number(2)), types.Sub, ast.Number(3))},
		{"1 == 2 + 3 * 4", bin(ast.Number(1), types.Equal, bin(ast.Number(2), types.Add, bin(ast.Number(3), types.Mul, ast.Number(4))))},
		{"1 * 2 + 3 * 4 - 5", bin(
			bin(bin(ast.Number(1), types.Mul, ast.Number(2)), types.Add, bin(ast.Number(3), types.Mul, ast.Number(4))),
			types.Sub, ast.Number(5))},
		{"(1 + 2) * 3", bin(bin(ast.Number(1), types.Add, ast.Number(2)), types.Mul, ast.Number(3))},
		{"-1 + !a", bin(ast.Unary{Op: ast.Negate, Expr: ast.Number(1)}, types.Add, ast.Unary{Op: ast.Not, Expr: id("a")})},
		{`"a" ++ "b" |> f`, bin(bin(ast.Str("a"), types.Concat, ast.Str("b")), types.PipeRight, id("f"))},
	}

	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			got := parse(t, "x := "+c.src)
			require.Len(t, got, 1)
			def, ok := got[0].(ast.Definition)
			require.True(t, ok)
			assertAST(t, c.want, def.Right)
		})
	}
}

func TestCalls(t *testing.T) {
	cases := []struct {
		src  string
		want ast.Expression
	}{
		{`print "a" 1`, ast.Call{Callee: id("print"), Args: []ast.Expression{ast.Str("a"), ast.Number(1)}}},
		{`f x y`, ast.Call{Callee: id("f"), Args: []ast.Expression{id("x"), id("y")}}},
		{`f (g x) y`, ast.Call{Callee: id("f"), Args: []ast.Expression{
			ast.Call{Callee: id("g"), Args: []ast.Expression{id("x")}}, id("y"),
		}}},
		{`f x + 1`, bin(ast.Call{Callee: id("f"), Args: []ast.Expression{id("x")}}, types.Add, ast.Number(1))},
		{`(f x + 1)`, ast.Call{Callee: id("f"), Args: []ast.Expression{bin(id("x"), types.Add, ast.Number(1))}}},
		{`f [1,]`, ast.Call{Callee: id("f"), Args: []ast.Expression{ast.Array{Elements: []ast.Expression{ast.Number(1)}}}}},
		{`f [0]`, ast.Index{ID: id("f"), Index: ast.Number(0)}},
		{`a.b[1]`, ast.Index{ID: ast.Index{ID: id("a"), Index: id("b")}, Index: ast.Number(1)}},
		{`p.show 1`, ast.Call{Callee: ast.Index{ID: id("p"), Index: id("show")}, Args: []ast.Expression{ast.Number(1)}}},
		{`f`, id("f")},
	}

	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			got := parse(t, c.src)
			require.Len(t, got, 1)
			assertAST(t, ast.ExpressionStatement{Expr: c.want}, got[0])
		})
	}
}

func TestFib(t *testing.T) {
	got := parse(t, "fun fib n: i32 -> i128 { match n { | 0 -> 0 | 1 -> 1 | n -> fib (n - 1) + fib (n - 2) } }")

	call := func(arg ast.Expression) ast.Call {
		return ast.Call{Callee: id("fib"), Args: []ast.Expression{arg}}
	}
	want := []ast.Statement{
		ast.Fun{
			Name:   id("fib"),
			Params: []ast.TypeDefinition{{Name: "n", Type: ast.IdentType{Name: "i32"}}},
			Return: ast.IdentType{Name: "i128"},
			Body: []ast.Statement{
				ast.MatchPattern{Matching: id("n"), Arms: []ast.MatchArm{
					{Param: ast.Number(0), Body: ast.Number(0)},
					{Param: ast.Number(1), Body: ast.Number(1)},
					{Param: id("n"), Body: bin(
						call(bin(id("n"), types.Sub, ast.Number(1))),
						types.Add,
						call(bin(id("n"), types.Sub, ast.Number(2))),
					)},
				}},
			},
		},
	}
	assertAST(t, want, got)
}

func TestFunctionMatch(t *testing.T) {
	got := parse(t, `
function even? -> bool {
	| 0 -> true
	| n -> odd? (n - 1)
}
`)
	require.Len(t, got, 1)
	fm, ok := got[0].(ast.FunctionMatch)
	require.True(t, ok)
	assertAST(t, id("even?"), fm.Name)
	assertAST(t, ast.IdentType{Name: "bool"}, fm.Return)
	assert.Len(t, fm.Arms, 2)
}

func TestIfChains(t *testing.T) {
	got := parse(t, `
if a {
	x = 1
} elif b {
	x = 2
} else {
	x = 3
}
unless c { y = 1 }
`)
	want := []ast.Statement{
		ast.If{
			Condition: id("a"),
			Body:      []ast.Statement{ast.Assignment{Left: id("x"), Right: ast.Number(1)}},
			Elses: []ast.ElseClause{
				{Condition: id("b"), Body: []ast.Statement{ast.Assignment{Left: id("x"), Right: ast.Number(2)}}},
				{Body: []ast.Statement{ast.Assignment{Left: id("x"), Right: ast.Number(3)}}},
			},
		},
		ast.Unless{Base: ast.If{
			Condition: id("c"),
			Body:      []ast.Statement{ast.Assignment{Left: id("y"), Right: ast.Number(1)}},
		}},
	}
	assertAST(t, want, got)
}

func TestDoubleElse(t *testing.T) {
	for _, tail := range []string{"else { 3 }", "elif c { 3 }", "else {"} {
		resp := parseErr(t, "if a { 1 } else { 2 } "+tail)
		group, ok := resp.(errors.Group)
		require.True(t, ok, "got %T", resp)
		require.Len(t, group, 2)
		assert.IsType(t, errors.Error{}, group[0])
		assert.IsType(t, errors.Note{}, group[1])
		assert.Contains(t, group[0].Error(), "following previous \"else\"")
	}
}

func TestStructs(t *testing.T) {
	got := parse(t, `
struct Point { x: number y: number }
p := new Point { x = 1 y = 2 }
anon := struct { name: str, age: number }
`)
	fields := []ast.TypeDefinition{
		{Name: "x", Type: ast.IdentType{Name: "number"}},
		{Name: "y", Type: ast.IdentType{Name: "number"}},
	}
	want := []ast.Statement{
		ast.Struct{Name: "Point", Fields: fields},
		ast.Definition{Name: id("p"), Right: ast.Initialization{ID: id("Point"), Values: []ast.Assignment{
			{Left: id("x"), Right: ast.Number(1)},
			{Left: id("y"), Right: ast.Number(2)},
		}}},
		ast.Definition{Name: id("anon"), Right: ast.StructExpr{Fields: []ast.TypeDefinition{
			{Name: "name", Type: ast.IdentType{Name: "str"}},
			{Name: "age", Type: ast.IdentType{Name: "number"}},
		}}},
	}
	assertAST(t, want, got)
}

func TestInterfaces(t *testing.T) {
	got := parse(t, `
interface Show {
	show: fun self -> str
}
implement Point as Show {
	fun show self -> str { "point" }
}
`)
	want := []ast.Statement{
		ast.Interface{Name: "Show", Methods: []ast.TypeDefinition{
			{Name: "show", Type: ast.FunType{Params: []ast.Type{ast.IdentType{Name: "self"}}, Return: ast.IdentType{Name: "str"}}},
		}},
		ast.Implementation{Structure: "Point", Interface: "Show", Body: []ast.Statement{
			ast.Fun{
				Name:   id("show"),
				Params: []ast.TypeDefinition{{Name: "self"}},
				Return: ast.IdentType{Name: "str"},
				Body:   []ast.Statement{ast.ExpressionStatement{Expr: ast.Str("point")}},
			},
		}},
	}
	assertAST(t, want, got)

	resp := parseErr(t, "interface Bad { size: number }")
	assert.Contains(t, resp.Error(), "invalid function definition")
}

func TestImports(t *testing.T) {
	got := parse(t, "import std.io\nimport fmt expose ...\nimport math expose (sin, cos)\n")
	want := []ast.Statement{
		ast.Import{From: ast.Index{ID: id("std"), Index: id("io")}},
		ast.Import{From: id("fmt"), Expose: ast.Expose{Mode: ast.ExposeEverything}},
		ast.Import{From: id("math"), Expose: ast.Expose{Mode: ast.ExposeSpecifically, Names: []string{"sin", "cos"}}},
	}
	assertAST(t, want, got)
}

func TestLoopsAndReturns(t *testing.T) {
	got := parse(t, `
fun count n: i32 {
	mut i := 0
	while i < n {
		i = i + 1
	}
	return
}
extern puts: fun str
`)
	require.Len(t, got, 2)
	fun := got[0].(ast.Fun)
	require.Len(t, fun.Body, 3)
	assert.IsType(t, ast.While{}, fun.Body[1])
	assertAST(t, ast.Return{}, fun.Body[2])

	assertAST(t, ast.ExternStatement{Statement: ast.Definition{
		Type: ast.FunType{Params: []ast.Type{ast.IdentType{Name: "str"}}},
		Name: id("puts"),
	}}, got[1])

}

func TestExternStatements(t *testing.T) {
	allowed := []string{
		"extern puts: fun str",
		"extern x := 1",
		"extern import libc.stdio",
		"extern return 1",
		"extern while true { }",
	}
	for _, src := range allowed {
		got := parse(t, src)
		require.Len(t, got, 1, src)
		assert.IsType(t, ast.ExternStatement{}, got[0], src)
	}

	forbidden := []struct {
		src     string
		keyword string
	}{
		{"extern fun f x: i32 { x }", "fun"},
		{"extern function f { | 0 -> 1 }", "function"},
		{"extern interface I { m: fun i32 }", "interface"},
		{"extern implement Point { }", "implement"},
		{"extern if true { 1 }", "if"},
		{"extern unless true { 1 }", "unless"},
		{"extern match x { | 0 -> 1 }", "match"},
		{"extern extern x := 1", "extern"},
	}
	for _, tc := range forbidden {
		t.Run(tc.keyword, func(t *testing.T) {
			resp := parseErr(t, tc.src)
			assert.Contains(t, resp.Error(), "bad external statement: \""+tc.keyword+"\"")
		})
	}

	resp := parseErr(t, "extern\nx := 1")
	assert.Contains(t, resp.Error(), "expected a statement after extern")
}

func TestStatementsNeedNewlines(t *testing.T) {
	resp := parseErr(t, "a := 1 b := 2")
	assert.Contains(t, resp.Error(), "expected newline")

	assert.Len(t, parse(t, "a := 1; b := 2"), 2)
	assert.Len(t, parse(t, "\n\n  # comment\na := 1\n\n"), 1)
}

func TestUnclosedDelimiters(t *testing.T) {
	resp := parseErr(t, "f := fun x: i32 { x")
	assert.Contains(t, resp.Error(), `unclosed "{"`)

	resp = parseErr(t, "x := (1 + 2")
	assert.Contains(t, resp.Error(), `unclosed "("`)
}

func TestEmptyInput(t *testing.T) {
	assert.Empty(t, parse(t, ""))
	assert.Empty(t, parse(t, "   \n\t\n"))
}
