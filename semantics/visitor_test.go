package semantics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontaoski/van/ast"
	"github.com/pontaoski/van/errors"
	"github.com/pontaoski/van/lexer"
	"github.com/pontaoski/van/parser"
)

func parse(t *testing.T, src string) []ast.Statement {
	t.Helper()

	tokens, err := lexer.Lex(src, "stdin")
	require.NoError(t, err)
	stmts, err := parser.ParseTokens(tokens)
	require.NoError(t, err)
	return stmts
}

func check(t *testing.T, src string) (*Visitor, error) {
	t.Helper()

	v := New()
	return v, v.Visit(parse(t, src))
}

func checkOK(t *testing.T, src string) *Visitor {
	t.Helper()

	v, err := check(t, src)
	require.NoError(t, err)
	return v
}

func checkFails(t *testing.T, src, message string) {
	t.Helper()

	_, err := check(t, src)
	require.Error(t, err)
	resp, ok := err.(errors.Response)
	require.True(t, ok, "got %T", err)
	assert.Contains(t, resp.Error(), message)
}

func global(t *testing.T, v *Visitor, name string) string {
	t.Helper()

	typ, ok := v.Globals()[name]
	require.True(t, ok, "%s is not bound", name)
	return ast.TypeString(typ)
}

func TestLiteralsAndBoundNames(t *testing.T) {
	v := checkOK(t, `
a := 1
b := "two"
c := true
d := 'x'
e := a
`)
	assert.Equal(t, "number", global(t, v, "a"))
	assert.Equal(t, "string", global(t, v, "b"))
	assert.Equal(t, "bool", global(t, v, "c"))
	assert.Equal(t, "char", global(t, v, "d"))
	assert.Equal(t, "number", global(t, v, "e"))
}

func TestDefinitions(t *testing.T) {
	v := checkOK(t, "a: i32 = 10\nmut b: char = '\\n'\nc := r\"hey\"\nmut d := [1, 1, 2,]")
	assert.Equal(t, "i32", global(t, v, "a"))
	assert.Equal(t, "mut char", global(t, v, "b"))
	assert.Equal(t, "string", global(t, v, "c"))
	assert.Equal(t, "mut [number; 3]", global(t, v, "d"))

	checkFails(t, `a: i32 = "ten"`, "mismatched types, expected: i32, found: string")
	checkFails(t, `a: nubmer = 1`, `undefined type: nubmer (did you mean "number"?)`)
	checkFails(t, `a := a`, "unexpected use of: a")
}

func TestUseBeforeDeclaration(t *testing.T) {
	checkFails(t, "b := a\na := 1", "unexpected use of: a")
	checkFails(t, "fun f { x := 1 }\ny := x", "unexpected use of: x")
	checkFails(t, "count := 1\ny := cuont", `did you mean "count"?`)
}

func TestReassignment(t *testing.T) {
	checkOK(t, "mut x := 1\nx = 2")
	checkOK(t, "mut x: number = 1\nx = x + 1")

	checkFails(t, "x := 1\nx = 2", "reassignment of immutable: x")
	checkFails(t, "mut x := 1\nx = \"two\"", "mismatched types, expected: mut number, found: string")
	checkFails(t, "x = 2", "unexpected use of: x")
	checkFails(t, "mut x := 1\ny := x\ny = 2", "reassignment of immutable: y")
}

func TestOperators(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "number"},
		{"-1", "number"},
		{"!true", "bool"},
		{"1 < 2", "bool"},
		{`"a" == "b"`, "bool"},
		{`"a" ++ 1`, "string"},
		{`1 ++ "a"`, "string"},
		{`"a" ++ true`, "string"},
		{"true ^ false", "bool"},
		{"1 |> fun n: number { n > 0 }", "bool"},
		{"fun n: number { n * 2 } <| 3", "number"},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			v := checkOK(t, "x := "+c.src)
			assert.Equal(t, c.want, global(t, v, "x"))
		})
	}

	failures := []struct {
		src     string
		message string
	}{
		{`1 + "a"`, "mismatched operands of +: number and string"},
		{`1 ++ 2`, "mismatched operands of ++"},
		{`-"a"`, "invalid operand of -"},
		{`!1`, "invalid operand of !"},
		{`1 |> 2`, "|> needs a function"},
		{`"a" |> fun n: number { n }`, "mismatched types, expected: number, found: string"},
	}
	for _, c := range failures {
		t.Run(c.src, func(t *testing.T) {
			checkFails(t, "x := "+c.src, c.message)
		})
	}

	checkFails(t, "y := if true { 1 }\nx := y == 1", "mismatched operands of ==")
}

func TestFib(t *testing.T) {
	v := checkOK(t, "fun fib n: i32 -> i128 { match n { | 0 -> 0 | 1 -> 1 | n -> fib (n - 1) + fib (n - 2) } }")
	assert.Equal(t, "fun i32 -> i128", global(t, v, "fib"))

	v = checkOK(t, "fun fact n: number { match n { | 0 -> 1 | n -> n * fact (n - 1) } }")
	assert.Equal(t, "fun number -> number", global(t, v, "fact"))

	checkFails(t, "fun bad n: number -> string { n }", "mismatching return types of fun bad: expected string, found number")
}

func TestFunctions(t *testing.T) {
	v := checkOK(t, `
fun add a: number b: number -> number { a + b }
fun greet name: str { print ("hi " ++ name) }
sum := add 1 2
twice := fun f: fun number -> number x: number { f (f x) }
`)
	assert.Equal(t, "fun number number -> number", global(t, v, "add"))
	assert.Equal(t, "fun str -> nil", global(t, v, "greet"))
	assert.Equal(t, "number", global(t, v, "sum"))
	assert.Equal(t, "fun fun number -> number number -> number", global(t, v, "twice"))

	checkFails(t, "fun f x: number { x }\ny := f \"a\"", "mismatched argument 1: expected number, found string")
	checkFails(t, "fun f x: number { x }\ny := f 1 2", "wrong number of arguments: expected 1, found 2")
	checkFails(t, "x := 1\ny := x 2", "cannot call a value of type number")
	checkFails(t, "fun f x: number { x }\nfun f y: number { y }", "name already in use: f")
	checkFails(t, "fun f self -> number { 1 }", "parameter self needs a type")
}

func TestBlockTypes(t *testing.T) {
	v := checkOK(t, `
fun sign n: number -> number {
	if n < 0 {
		return -1
	}
	return 1
}
fun early n: number {
	return n
	n + 1
}
`)
	assert.Equal(t, "fun number -> number", global(t, v, "sign"))
	assert.Equal(t, "fun number -> number", global(t, v, "early"))

	checkFails(t, "fun f n: number {\n\treturn n\n\t\"x\"\n}", "mismatching return types of block: number and string")
}

func TestFunctionMatch(t *testing.T) {
	v := checkOK(t, `
function describe {
	| 0 -> "zero"
	| n -> "many"
}
d := describe 3
`)
	assert.Equal(t, "fun number -> string", global(t, v, "describe"))
	assert.Equal(t, "string", global(t, v, "d"))

	checkFails(t, "function f {\n| 0 -> 1\n| 1 -> \"x\"\n}", "mismatching arms of match: number and string")
	checkFails(t, "function f {\n| 0 -> 1\n| \"a\" -> 2\n}", "mismatched pattern: expected number, found string")
	checkFails(t, "function f -> bool {\n| 0 -> 1\n}", "mismatching return types of function f")
}

func TestMatch(t *testing.T) {
	v := checkOK(t, `
n := 3
x := match n { | 0 -> "none" | m -> "some" }
`)
	assert.Equal(t, "string", global(t, v, "x"))

	checkFails(t, `x := match 1 { | "a" -> 1 }`, "mismatched pattern")
	checkFails(t, `x := match 1 { | 0 -> 1 | n -> true }`, "mismatching arms of match")
}

func TestLiteralOperandsAreLocated(t *testing.T) {
	cases := []struct {
		name    string
		src     string
		message string
		line    int
	}{
		{"if", "x := 1\nif 1 { 2 }", "if condition must be bool", 2},
		{"elif", "x := 1\ny := if true { 1 } elif 2 { 3 }", "elif condition must be bool", 2},
		{"while", "mut i := 0\nwhile 1 { i = 1 }", "while condition must be bool", 2},
		{"field", "struct Point { x: number }\np := new Point { x = \"a\" }", `mismatched type of field "x"`, 2},
		{"pattern", "n := 1\ny := match n { | \"a\" -> 1 }", "mismatched pattern", 2},
		{"argument", "fun f x: number { x }\ny := f \"a\"", "mismatched argument 1", 2},
		{"element", "x := 1\na := [1, \"b\",]", "mismatched array element 2", 2},
		{"index", "x := 1\na := [1, 2,]\nb := a[\"c\"]", "index must be a number", 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := check(t, tc.src)
			require.Error(t, err)
			e, ok := err.(errors.Error)
			require.True(t, ok, "got %T", err)
			assert.Contains(t, e.Message, tc.message)
			require.NotNil(t, e.Location)
			assert.Equal(t, tc.line, e.Location.Position.Line)
		})
	}
}

func TestConditions(t *testing.T) {
	v := checkOK(t, `
x := if true { 1 } else { 2 }
y := if false { 1 }
z := unless false { "a" } elif true { "b" } else { "c" }
mut i := 0
while i < 10 {
	i = i + 1
}
`)
	assert.Equal(t, "number", global(t, v, "x"))
	assert.Equal(t, "nil", global(t, v, "y"))
	assert.Equal(t, "string", global(t, v, "z"))

	checkFails(t, "if 1 { 2 }", "if condition must be bool, found number")
	checkFails(t, "unless \"a\" { 2 }", "if condition must be bool")
	checkFails(t, "while 1 { 2 }", "while condition must be bool")
	checkFails(t, "if true { 1 } elif 2 { 3 }", "elif condition must be bool")
	checkFails(t, "x := if true { 1 } else { \"a\" }", "mismatching branches of if: number and string")
}

func TestBlockScopes(t *testing.T) {
	checkFails(t, "if true { x := 1 }\ny := x", "unexpected use of: x")
	checkFails(t, "while false { x := 1 }\ny := x", "unexpected use of: x")
	checkOK(t, "x := 1\nif true { y := x }")
}

func TestArraysAndIndexing(t *testing.T) {
	v := checkOK(t, `
xs := [1, 2, 3,]
first := xs[0]
i := 1
second := xs[i]
c := "abc"[0]
n := len xs
`)
	assert.Equal(t, "[number; 3]", global(t, v, "xs"))
	assert.Equal(t, "number", global(t, v, "first"))
	assert.Equal(t, "number", global(t, v, "second"))
	assert.Equal(t, "char", global(t, v, "c"))
	assert.Equal(t, "number", global(t, v, "n"))

	checkFails(t, `xs := [1, "a",]`, "mismatched array element 2: expected number, found string")
	checkFails(t, "xs := [1,]\ny := xs[\"a\"]", "index must be a number, found string")
	checkFails(t, "x := 1\ny := x[0]", "cannot index into a value of type number")

	checkOK(t, "mut xs := [1, 2,]\nxs[0] = 3")
	checkFails(t, "xs := [1, 2,]\nxs[0] = 3", "reassignment of immutable: xs")
}

func TestStructs(t *testing.T) {
	v := checkOK(t, `
struct Point { x: number y: number }
p := new Point { x = 1 y = 2 }
px := p.x
`)
	assert.Equal(t, "Point", global(t, v, "p"))
	assert.Equal(t, "number", global(t, v, "px"))

	checkFails(t, "struct Point { x: number y: number }\np := new Point { x = \"a\" y = 2 }", `mismatched type of field "x": expected number, found string`)
	checkFails(t, "struct Point { x: number y: number }\np := new Point { x = 1 z = 2 }", `unknown field "z" of Point`)
	checkFails(t, "struct Point { x: number y: number }\np := new Point { x = 1 }", `missing field "y" in initialization of Point`)
	checkFails(t, "struct Point { x: number y: number }\np := new Point { x = 1 x = 2 y = 3 }", `field "x" given twice`)
	checkFails(t, "struct Point { x: number }\np := new Point { x = 1 }\nq := p.z", `unknown field "z" of Point`)
	checkFails(t, "x := 1\np := new x { a = 1 }", "cannot initialize number: not a struct")
	checkFails(t, "struct P { x: number }\nstruct P { y: number }", "type P already declared")
	checkFails(t, "struct P { x: nmber }", "undefined type: nmber")
}

func TestFieldAssignment(t *testing.T) {
	v, err := check(t, `
struct Point { x: number }
mut p := new Point { x = 1 }
p.x = 2
`)
	require.NoError(t, err)
	require.Len(t, v.Warnings(), 1)
	assert.Equal(t, "potential unsafe assignment", v.Warnings()[0].Message)

	checkFails(t, "struct Point { x: number }\nmut p := new Point { x = 1 }\np.x = \"a\"", "mismatched types, expected: number, found: string")
	checkFails(t, "struct Point { x: number }\np := new Point { x = 1 }\np.x = 2", "reassignment of immutable: p")
	checkFails(t, "struct Point { x: number }\nmut p := new Point { x = 1 }\np.y = 2", `unknown field "y" of Point`)
}

func TestImplementations(t *testing.T) {
	v := checkOK(t, `
struct Point { x: number y: number }
interface Show {
	show: fun self -> str
}
implement Point as Show {
	fun show self -> str { "(" ++ to_string self.x ++ ")" }
	fun norm self -> number { self.x * self.x + self.y * self.y }
	fun scale self k: number -> number { self.x * k }
	fun both self -> number { self.scale 2 }
}
p := new Point { x = 3 y = 4 }
n := p.norm
s := p.scale 2
`)
	assert.Equal(t, "fun -> number", global(t, v, "n"))
	assert.Equal(t, "number", global(t, v, "s"))

	checkFails(t, `
struct Point { x: number }
interface Show {
	show: fun self -> str
}
implement Point as Show {
	fun display self -> str { "p" }
}
`, "Point does not implement Show")

	checkFails(t, `
struct Point { x: number }
interface Show {
	show: fun self -> str
}
implement Point as Show {
	fun show self -> number { 1 }
}
`, "method show does not match interface Show")

	checkFails(t, "struct Point { x: number }\nimplement Point as Nope {\n\tfun f self -> number { 1 }\n}", "unknown interface Nope")
	checkFails(t, "implement Pont {\n\tfun f self -> number { 1 }\n}", "cannot implement Pont: not a struct")
}

func TestWarnings(t *testing.T) {
	v := checkOK(t, `
struct Point { x: number }
fun Point.make n: number -> number { n }
`)
	require.Len(t, v.Warnings(), 1)
	assert.Equal(t, "potential unsafe function", v.Warnings()[0].Message)
}

func TestImportsAndExterns(t *testing.T) {
	v := checkOK(t, `
import std.io
import math expose (sin, cos)
extern puts: fun str -> number
s := sin 1
r := puts "x"
extern printf "%d" 1
`)
	assert.Equal(t, "undefined", global(t, v, "io"))
	assert.Equal(t, "undefined", global(t, v, "s"))
	assert.Equal(t, "number", global(t, v, "r"))

	checkFails(t, "extern printf \"%d\" nope", "unexpected use of: nope")
}

func TestBuiltins(t *testing.T) {
	v := checkOK(t, "print \"hello\"\ns := to_string 3")
	assert.Equal(t, "string", global(t, v, "s"))

	checkFails(t, "print 3", "mismatched argument 1: expected string, found number")
}
