package semantics

import (
	"github.com/pontaoski/van/ast"
	"github.com/pontaoski/van/invariant"
)

var (
	Number = ast.NumberType{}
	Str    = ast.StrType{}
	Bool   = ast.BoolType{}
	Char   = ast.CharType{}
	Nil    = ast.NilType{}
)

// numericNames all collapse to Number: the checker does not track widths.
var numericNames = []string{
	"number", "int", "uint",
	"i8", "i16", "i32", "i64", "i128",
	"u8", "u16", "u32", "u64", "u128",
	"f16", "f32", "f64", "f128", "float",
}

func addBuiltinAliases(t *TypeTab) {
	for _, name := range numericNames {
		t.SetAlias(name, Number)
	}
	t.SetAlias("string", Str)
	t.SetAlias("str", Str)
	t.SetAlias("bool", Bool)
	t.SetAlias("boolean", Bool)
	t.SetAlias("char", Char)
	t.SetAlias("nil", Nil)
}

// addBuiltins binds the functions every program can call.
func addBuiltins(s *SymTab, t *TypeTab) {
	funcs := []func() (string, ast.Type){
		addPrint,
		addLen,
		addToString,
	}
	for _, fn := range funcs {
		name, typ := fn()
		s.AddName(name)
		t.Grow()
		invariant.ExpectNoError(t.SetType(t.Size()-1, 0, typ), "binding builtin "+name)
	}
}

func addPrint() (string, ast.Type) {
	return "print", ast.FunType{Params: []ast.Type{Str}, Return: Nil}
}

func addLen() (string, ast.Type) {
	return "len", ast.FunType{Params: []ast.Type{ast.ArrayType{Elem: ast.UndefinedType{}}}, Return: Number}
}

func addToString() (string, ast.Type) {
	return "to_string", ast.FunType{Params: []ast.Type{ast.UndefinedType{}}, Return: Str}
}
