// Package ast defines the syntax tree produced by the parser.
//
// Expression, Statement and Type are closed sum types; their marker methods are
// generated from sum.adt by the tool module.
package ast

//go:generate sh -c "cd ../tool && go run . ../ast/sum.adt ../ast/sum_gen.go ast"

import "github.com/pontaoski/van/types"

type Block []Statement

type Number float64

type Bool bool

type Str string

type Char rune

type Identifier struct {
	Name string
	Pos  types.Position
}

type BinaryOp struct {
	Left  Expression
	Op    types.Operator
	Right Expression
	Pos   types.Position
}

type UnaryOperator int

const (
	Negate UnaryOperator = iota
	Not
)

func (u UnaryOperator) String() string {
	if u == Not {
		return "!"
	}
	return "-"
}

type Unary struct {
	Op   UnaryOperator
	Expr Expression
	Pos  types.Position
}

type MatchArm struct {
	Param Expression
	Body  Expression
	Pos   types.Position
}

type MatchPattern struct {
	Matching Expression
	Arms     []MatchArm
	Pos      types.Position
}

type Call struct {
	Callee Expression
	Args   []Expression
	Pos    types.Position
}

// Index is both a[i] and a.field; the field form has an Identifier index.
type Index struct {
	ID    Expression
	Index Expression
	Pos   types.Position
}

type Array struct {
	Elements []Expression
	Pos      types.Position
}

// ElseClause is an elif when Condition is set, a final else otherwise.
type ElseClause struct {
	Condition Expression
	Body      []Statement
	Pos       types.Position
}

type If struct {
	Condition Expression
	Body      []Statement
	Elses     []ElseClause
	Pos       types.Position
}

// Unless has the shape of If. Condition is kept as written; the branch runs when
// it is false.
type Unless struct {
	Base If
}

type TypeDefinition struct {
	Name string
	Type Type
	Pos  types.Position
}

type StructExpr struct {
	Fields []TypeDefinition
	Pos    types.Position
}

type Initialization struct {
	ID     Expression
	Values []Assignment
	Pos    types.Position
}

// FunctionMatch is a single-parameter function defined by match arms.
// Name is nil for the anonymous form.
type FunctionMatch struct {
	Name   Expression
	Return Type
	Arms   []MatchArm
	Pos    types.Position
}

// Fun is a function; Name is nil for a function literal.
type Fun struct {
	Name   Expression
	Params []TypeDefinition
	Return Type
	Body   []Statement
	Pos    types.Position
}

type Extern struct {
	Expr Expression
	Pos  types.Position
}

// EOF is the sentinel an expression parse yields when input is exhausted.
type EOF struct{}

type ExpressionStatement struct {
	Expr Expression
}

type Definition struct {
	Type  Type
	Name  Expression
	Right Expression
	Pos   types.Position
}

type Assignment struct {
	Left  Expression
	Right Expression
	Pos   types.Position
}

type Struct struct {
	Name   string
	Fields []TypeDefinition
	Pos    types.Position
}

type Interface struct {
	Name    string
	Methods []TypeDefinition
	Pos     types.Position
}

// Implementation binds methods (Fun or FunctionMatch statements) to Structure,
// optionally claiming Interface.
type Implementation struct {
	Structure string
	Interface string
	Body      []Statement
	Pos       types.Position
}

type Return struct {
	Value Expression
	Pos   types.Position
}

type ExposeMode int

const (
	ExposeNothing ExposeMode = iota
	ExposeEverything
	ExposeSpecifically
)

type Expose struct {
	Mode  ExposeMode
	Names []string
}

type Import struct {
	From   Expression
	Expose Expose
	Pos    types.Position
}

type ExternStatement struct {
	Statement Statement
	Pos       types.Position
}

type While struct {
	Condition Expression
	Body      []Statement
	Pos       types.Position
}

// PosOf returns the position recorded on e, if it has one.
func PosOf(e Expression) (types.Position, bool) {
	switch v := e.(type) {
	case Identifier:
		return v.Pos, true
	case BinaryOp:
		return v.Pos, true
	case Unary:
		return v.Pos, true
	case MatchPattern:
		return v.Pos, true
	case Call:
		return v.Pos, true
	case Index:
		return v.Pos, true
	case Array:
		return v.Pos, true
	case If:
		return v.Pos, true
	case Unless:
		return v.Base.Pos, true
	case StructExpr:
		return v.Pos, true
	case Initialization:
		return v.Pos, true
	case FunctionMatch:
		return v.Pos, true
	case Fun:
		return v.Pos, true
	case Extern:
		return v.Pos, true
	}
	return types.Position{}, false
}
