package parser

import (
	"github.com/pontaoski/van/ast"
	"github.com/pontaoski/van/types"
)

// statement parses one statement and its terminator, or returns nil when the
// region is exhausted.
func (p *Parser) statement() ast.Statement {
	p.skipWhitespaceEOL()
	if p.traveler.AtEnd() {
		return nil
	}

	stmt := p.statementBody()
	p.endStatement()
	return stmt
}

func (p *Parser) statementBody() ast.Statement {
	tok := p.current()
	switch tok.Kind {
	case types.IDENT:
		return p.identStatement()
	case types.KEYWORD:
		switch tok.Keyword {
		case types.MUT:
			return p.mutDefinition()
		case types.FUN:
			return p.function(true)
		case types.FUNCTION:
			return p.functionMatch(true)
		case types.STRUCT:
			return p.structure()
		case types.IF:
			return p.ifPattern()
		case types.UNLESS:
			return ast.Unless{Base: p.ifPattern()}
		case types.MATCH:
			return p.matchPattern()
		case types.WHILE:
			return p.whileLoop()
		case types.INTERFACE:
			return p.iface()
		case types.IMPLEMENT:
			return p.implementation()
		case types.IMPORT:
			return p.importStatement()
		case types.EXTERN:
			return p.externStatement()
		case types.RETURN:
			return p.returnStatement()
		}
	}

	return ast.ExpressionStatement{Expr: p.required("a statement")}
}

// identStatement decides between a definition, an assignment and an
// expression once it has seen what follows the leading name.
func (p *Parser) identStatement() ast.Statement {
	m := p.traveler.Mark()
	tok := p.current()
	p.traveler.Next()
	target := p.tryIndex(ast.Identifier{Name: tok.Content, Pos: tok.Pos()})
	p.skipWhitespace()

	switch next := p.current(); {
	case next.Is(":"):
		return p.definition(target, tok.Pos())
	case next.Is("="):
		p.traveler.Next()
		p.skipWhitespace()
		return ast.Assignment{Left: target, Right: p.required("a value"), Pos: next.Pos()}
	}

	m.Restore()
	return ast.ExpressionStatement{Expr: p.required("a statement")}
}

// definition parses ": [type] [= value]" after name.
func (p *Parser) definition(name ast.Expression, pos types.Position) ast.Definition {
	p.consume(":")
	p.skipWhitespace()

	def := ast.Definition{Name: name, Pos: pos}
	if !p.current().Is("=") {
		def.Type = p.parseType()
		p.skipWhitespace()
	}
	if p.current().Is("=") {
		p.traveler.Next()
		p.skipWhitespaceEOL()
		def.Right = p.required("a value")
	}
	return def
}

// mutDefinition wraps the declared type in MutType. Without a declared type
// the inner type is left for the checker to infer.
func (p *Parser) mutDefinition() ast.Definition {
	p.traveler.Next()
	p.skipWhitespace()

	tok := p.current()
	p.expect(types.IDENT)
	p.traveler.Next()
	target := p.tryIndex(ast.Identifier{Name: tok.Content, Pos: tok.Pos()})
	p.skipWhitespace()

	def := p.definition(target, tok.Pos())
	def.Type = ast.MutType{Inner: def.Type}
	return def
}

func (p *Parser) structure() ast.Struct {
	tok := p.current()
	p.traveler.Next()
	p.skipWhitespace()

	name := p.expect(types.IDENT)
	p.traveler.Next()
	p.skipWhitespaceEOL()

	return ast.Struct{Name: name, Fields: p.fields(), Pos: tok.Pos()}
}

// fields parses a braced list of "name: type" entries, optionally separated
// by commas.
func (p *Parser) fields() []ast.TypeDefinition {
	p.expectContent("{")

	var out []ast.TypeDefinition
	p.within("{", "}", func() bool {
		p.skipWhitespaceEOL()
		if p.traveler.AtEnd() {
			return false
		}
		out = append(out, p.typeDefinition())
		p.skipWhitespace()
		if p.current().Is(",") {
			p.traveler.Next()
		}
		return true
	})
	return out
}

func (p *Parser) whileLoop() ast.While {
	tok := p.current()
	p.traveler.Next()
	p.skipWhitespaceEOL()

	cond := p.required("a condition")
	return ast.While{Condition: cond, Body: p.block(), Pos: tok.Pos()}
}

func (p *Parser) iface() ast.Interface {
	tok := p.current()
	p.traveler.Next()
	p.skipWhitespace()

	name := p.expect(types.IDENT)
	p.traveler.Next()
	p.skipWhitespaceEOL()
	p.expectContent("{")

	var methods []ast.TypeDefinition
	p.within("{", "}", func() bool {
		p.skipWhitespaceEOL()
		if p.traveler.AtEnd() {
			return false
		}
		start := p.current()
		def := p.typeDefinition()
		if _, ok := def.Type.(ast.FunType); !ok {
			p.fail(start, "invalid function definition: %s is not a function type", ast.TypeString(def.Type))
		}
		methods = append(methods, def)
		return true
	})

	return ast.Interface{Name: name, Methods: methods, Pos: tok.Pos()}
}

func (p *Parser) implementation() ast.Implementation {
	tok := p.current()
	p.traveler.Next()
	p.skipWhitespace()

	out := ast.Implementation{Structure: p.expect(types.IDENT), Pos: tok.Pos()}
	p.traveler.Next()
	p.skipWhitespace()

	if p.current().IsKeyword(types.AS) {
		p.traveler.Next()
		p.skipWhitespace()
		out.Interface = p.expect(types.IDENT)
		p.traveler.Next()
	}

	p.skipWhitespaceEOL()
	p.expectContent("{")
	p.within("{", "}", func() bool {
		p.skipWhitespaceEOL()
		if p.traveler.AtEnd() {
			return false
		}
		switch method := p.current(); {
		case method.IsKeyword(types.FUN):
			out.Body = append(out.Body, p.function(true))
		case method.IsKeyword(types.FUNCTION):
			out.Body = append(out.Body, p.functionMatch(true))
		default:
			p.fail(method, "expected a method definition, found %s", describe(method))
		}
		p.endStatement()
		return true
	})

	return out
}

func (p *Parser) importStatement() ast.Import {
	tok := p.current()
	p.traveler.Next()
	p.skipWhitespace()

	from := p.current()
	p.expect(types.IDENT)
	p.traveler.Next()
	out := ast.Import{
		From: p.tryIndex(ast.Identifier{Name: from.Content, Pos: from.Pos()}),
		Pos:  tok.Pos(),
	}

	m := p.traveler.Mark()
	p.skipWhitespace()
	if !p.current().IsKeyword(types.EXPOSE) {
		m.Restore()
		return out
	}
	p.traveler.Next()
	p.skipWhitespace()

	switch what := p.current(); {
	case what.IsOperator(types.Ellipsis):
		p.traveler.Next()
		out.Expose = ast.Expose{Mode: ast.ExposeEverything}
	case what.Is("("):
		out.Expose = ast.Expose{Mode: ast.ExposeSpecifically}
		p.within("(", ")", func() bool {
			p.skipWhitespaceEOL()
			if p.traveler.AtEnd() {
				return false
			}
			out.Expose.Names = append(out.Expose.Names, p.expect(types.IDENT))
			p.traveler.Next()
			p.skipWhitespace()
			if p.current().Is(",") {
				p.traveler.Next()
			}
			return true
		})
	default:
		p.fail(what, "expected \"...\" or a list of names after expose, found %s", describe(what))
	}
	return out
}

// externStatement wraps a declaration whose value lives outside van.
func (p *Parser) externStatement() ast.ExternStatement {
	tok := p.current()
	p.traveler.Next()
	p.skipWhitespace()

	switch inner := p.current(); {
	case inner.IsKeyword(types.EXTERN), inner.IsKeyword(types.FUN), inner.IsKeyword(types.FUNCTION),
		inner.IsKeyword(types.INTERFACE), inner.IsKeyword(types.IMPLEMENT), inner.IsKeyword(types.IF),
		inner.IsKeyword(types.UNLESS), inner.IsKeyword(types.MATCH):
		p.fail(inner, "bad external statement: %q", inner.Content)
	case inner.Kind == types.EOF, inner.Kind == types.EOL:
		p.fail(inner, "expected a statement after extern, found %s", describe(inner))
	}

	return ast.ExternStatement{Statement: p.statementBody(), Pos: tok.Pos()}
}

func (p *Parser) returnStatement() ast.Return {
	tok := p.current()
	p.traveler.Next()

	m := p.traveler.Mark()
	p.skipWhitespace()
	if next := p.current(); next.Kind == types.EOF || next.Kind == types.EOL || next.Is(";") {
		m.Restore()
		return ast.Return{Pos: tok.Pos()}
	}
	return ast.Return{Value: p.required("a return value"), Pos: tok.Pos()}
}
