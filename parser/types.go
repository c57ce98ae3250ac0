package parser

import (
	"github.com/pontaoski/van/ast"
	"github.com/pontaoski/van/types"
)

// parseType reads type syntax:
//
//	name | mut T | [T] | [T; n] | (T) | fun T1, T2 -> R
func (p *Parser) parseType() ast.Type {
	tok := p.current()
	switch {
	case tok.IsKeyword(types.MUT):
		p.traveler.Next()
		p.skipWhitespace()
		return ast.MutType{Inner: p.parseType()}
	case tok.IsKeyword(types.FUN):
		return p.funType()
	case tok.Is("["):
		var out ast.ArrayType
		p.within("[", "]", func() bool {
			p.skipWhitespaceEOL()
			out.Elem = p.parseType()
			p.skipWhitespaceEOL()
			if p.current().Is(";") {
				p.traveler.Next()
				p.skipWhitespaceEOL()
				out.Len = p.required("an array length")
			}
			return false
		})
		return out
	case tok.Is("("):
		var inner ast.Type
		p.within("(", ")", func() bool {
			p.skipWhitespaceEOL()
			inner = p.parseType()
			return false
		})
		return inner
	case tok.Kind == types.IDENT:
		p.traveler.Next()
		return ast.IdentType{Name: tok.Content}
	}

	p.fail(tok, "expected a type, found %s", describe(tok))
	return nil
}

// startsType reports whether tok can begin a parameter type of a function
// type. A name followed by ":" begins the next declaration instead.
func (p *Parser) startsType(tok types.Token) bool {
	switch {
	case tok.IsKeyword(types.MUT), tok.IsKeyword(types.FUN), tok.Is("["), tok.Is("("):
		return true
	case tok.Kind == types.IDENT:
		return !p.peekPast().Is(":")
	}
	return false
}

// funType reads "fun" followed by parameter types, separated by optional
// commas, and an optional "-> R".
func (p *Parser) funType() ast.FunType {
	p.traveler.Next()
	p.skipWhitespace()

	var out ast.FunType
	for p.startsType(p.current()) {
		out.Params = append(out.Params, p.parseType())
		p.skipWhitespace()
		if p.current().Is(",") {
			p.traveler.Next()
			p.skipWhitespace()
		}
	}

	if p.current().IsOperator(types.Arrow) {
		p.traveler.Next()
		p.skipWhitespace()
		out.Return = p.parseType()
	}
	return out
}

// typeDefinition reads "name: type".
func (p *Parser) typeDefinition() ast.TypeDefinition {
	p.skipWhitespaceEOL()
	tok := p.current()
	p.expect(types.IDENT)
	p.traveler.Next()
	p.skipWhitespace()
	p.consume(":")
	p.skipWhitespace()

	return ast.TypeDefinition{Name: tok.Content, Type: p.parseType(), Pos: tok.Pos()}
}

// name reads the name of a named function: an identifier, possibly dotted.
func (p *Parser) name() ast.Expression {
	tok := p.current()
	p.expect(types.IDENT)
	p.traveler.Next()
	return p.tryIndex(ast.Identifier{Name: tok.Content, Pos: tok.Pos()})
}

// function parses "fun [name] params [-> R] { body }". A bare self parameter
// takes its type from the enclosing implement block.
func (p *Parser) function(named bool) ast.Fun {
	tok := p.current()
	p.traveler.Next()
	p.skipWhitespace()

	out := ast.Fun{Pos: tok.Pos()}
	if named {
		out.Name = p.name()
	}

	for {
		p.skipWhitespaceEOL()
		cur := p.current()
		switch {
		case cur.Is("{"):
			out.Body = p.statements("{", "}")
			return out
		case cur.IsOperator(types.Arrow):
			p.traveler.Next()
			p.skipWhitespaceEOL()
			out.Return = p.parseType()
		case cur.Kind == types.IDENT && cur.Content == "self" && !p.peekPast().Is(":"):
			p.traveler.Next()
			out.Params = append(out.Params, ast.TypeDefinition{Name: "self", Pos: cur.Pos()})
		case cur.Kind == types.IDENT:
			out.Params = append(out.Params, p.typeDefinition())
			p.skipWhitespace()
			if p.current().Is(",") {
				p.traveler.Next()
			}
		default:
			p.fail(cur, "expected a parameter, \"->\" or a function body, found %s", describe(cur))
		}
	}
}

// functionMatch parses "function [name] [-> R] { | pattern -> body ... }".
func (p *Parser) functionMatch(named bool) ast.FunctionMatch {
	tok := p.current()
	p.traveler.Next()
	p.skipWhitespace()

	out := ast.FunctionMatch{Pos: tok.Pos()}
	if named {
		out.Name = p.name()
	}

	p.skipWhitespaceEOL()
	if p.current().IsOperator(types.Arrow) {
		p.traveler.Next()
		p.skipWhitespaceEOL()
		out.Return = p.parseType()
		p.skipWhitespaceEOL()
	}

	p.expectContent("{")
	out.Arms = p.arms()
	return out
}
