package parser

import (
	"strconv"

	"github.com/pontaoski/van/ast"
	"github.com/pontaoski/van/errors"
	"github.com/pontaoski/van/invariant"
	"github.com/pontaoski/van/types"
)

// expression parses an atom and, if a binary operator follows on the same
// line, the whole operator chain.
func (p *Parser) expression() ast.Expression {
	first := p.atom()
	if _, ok := first.(ast.EOF); ok {
		return first
	}

	m := p.traveler.Mark()
	p.skipWhitespace()
	if tok := p.current(); tok.Kind == types.OPERATOR && tok.Operator.IsBinary() {
		return p.operation(first)
	}
	m.Restore()
	return first
}

// required parses an expression, failing at end of input.
func (p *Parser) required(what string) ast.Expression {
	tok := p.current()
	expr := p.expression()
	if _, ok := expr.(ast.EOF); ok {
		p.fail(tok, "expected %s, found %s", what, describe(tok))
	}
	return expr
}

// operation reduces an operator chain with a shunting-yard: an incoming
// operator first reduces everything on the stack that binds at least as
// tightly, so equal levels associate to the left.
func (p *Parser) operation(first ast.Expression) ast.Expression {
	exprs := []ast.Expression{first}
	var ops []types.Token

	reduce := func() {
		op := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		left, right := exprs[len(exprs)-2], exprs[len(exprs)-1]
		exprs = append(exprs[:len(exprs)-2], ast.BinaryOp{
			Left:  left,
			Op:    op.Operator,
			Right: right,
			Pos:   op.Pos(),
		})
	}

	for {
		m := p.traveler.Mark()
		p.skipWhitespace()
		tok := p.current()
		if tok.Kind != types.OPERATOR || !tok.Operator.IsBinary() {
			m.Restore()
			break
		}

		level, _ := tok.Operator.Precedence()
		for len(ops) > 0 {
			top, _ := ops[len(ops)-1].Operator.Precedence()
			if top > level {
				break
			}
			reduce()
		}
		ops = append(ops, tok)

		p.traveler.Next()
		p.skipWhitespaceEOL()
		operand := p.atom()
		if _, ok := operand.(ast.EOF); ok {
			p.fail(p.current(), "expected an operand after %q", tok.Content)
		}
		exprs = append(exprs, operand)
	}

	for len(ops) > 0 {
		reduce()
	}
	invariant.Invariant(len(exprs) == 1, "operator chain reduced to %d expressions", len(exprs))
	return exprs[0]
}

func (p *Parser) atom() ast.Expression {
	p.skipWhitespace()
	if p.traveler.AtEnd() {
		return ast.EOF{}
	}

	tok := p.current()
	switch tok.Kind {
	case types.INT:
		p.traveler.Next()
		n, err := strconv.ParseFloat(tok.Content, 64)
		invariant.ExpectNoError(err, "lexer produced an unparsable number")
		return ast.Number(n)
	case types.BOOL:
		p.traveler.Next()
		return ast.Bool(tok.Content == "true")
	case types.STR:
		p.traveler.Next()
		return p.tryIndex(ast.Str(tok.Content))
	case types.CHAR:
		p.traveler.Next()
		return ast.Char([]rune(tok.Content)[0])
	case types.IDENT:
		p.traveler.Next()
		return p.postfix(ast.Identifier{Name: tok.Content, Pos: tok.Pos()})
	case types.KEYWORD:
		return p.keywordExpression(tok)
	case types.SYMBOL:
		return p.symbolExpression(tok)
	case types.OPERATOR:
		if tok.IsOperator(types.Sub) {
			p.traveler.Next()
			return ast.Unary{Op: ast.Negate, Expr: p.operand(tok), Pos: tok.Pos()}
		}
	}

	p.unexpected(tok)
	return nil
}

// operand parses the atom a prefix operator applies to.
func (p *Parser) operand(op types.Token) ast.Expression {
	expr := p.atom()
	if _, ok := expr.(ast.EOF); ok {
		p.fail(op, "expected an operand after %q", op.Content)
	}
	return expr
}

func (p *Parser) keywordExpression(tok types.Token) ast.Expression {
	switch tok.Keyword {
	case types.MATCH:
		return p.matchPattern()
	case types.IF:
		return p.ifPattern()
	case types.UNLESS:
		return ast.Unless{Base: p.ifPattern()}
	case types.NEW:
		return p.initialization()
	case types.STRUCT:
		p.traveler.Next()
		p.skipWhitespaceEOL()
		return ast.StructExpr{Fields: p.fields(), Pos: tok.Pos()}
	case types.FUN:
		return p.function(false)
	case types.FUNCTION:
		return p.functionMatch(false)
	case types.EXTERN:
		p.traveler.Next()
		p.skipWhitespace()
		name := p.current()
		p.expect(types.IDENT)
		p.traveler.Next()
		inner := p.postfix(ast.Identifier{Name: name.Content, Pos: name.Pos()})
		return ast.Extern{Expr: inner, Pos: tok.Pos()}
	}

	p.fail(tok, "bad keyword: %q", tok.Content)
	return nil
}

func (p *Parser) symbolExpression(tok types.Token) ast.Expression {
	switch tok.Content {
	case "(":
		var exprs []ast.Expression
		p.within("(", ")", p.collect(&exprs))
		if len(exprs) != 1 {
			p.fail(tok, "expected one expression in parentheses, found %d", len(exprs))
		}
		return p.postfix(exprs[0])
	case "[":
		elems, ok, err := p.tryList()
		if err != nil {
			panic(err)
		}
		if !ok {
			p.fail(tok, "expected an array literal")
		}
		return p.postfix(ast.Array{Elements: elems, Pos: tok.Pos()})
	case "{":
		return p.postfix(ast.Block(p.statements("{", "}")))
	case "!":
		p.traveler.Next()
		return ast.Unary{Op: ast.Not, Expr: p.operand(tok), Pos: tok.Pos()}
	}

	p.fail(tok, "bad symbol: %q", tok.Content)
	return nil
}

// collect returns a region item that appends one expression per call.
func (p *Parser) collect(into *[]ast.Expression) func() bool {
	return func() bool {
		p.skipWhitespaceEOL()
		if p.traveler.AtEnd() {
			return false
		}
		*into = append(*into, p.expression())
		return true
	}
}

// postfix applies field access, indexing and call application to e.
func (p *Parser) postfix(e ast.Expression) ast.Expression {
	e = p.tryIndex(e)
	if p.inArgs {
		return e
	}
	return p.tryCall(e)
}

// tryIndex consumes any number of directly attached .name and [expr]
// suffixes.
func (p *Parser) tryIndex(e ast.Expression) ast.Expression {
	for {
		tok := p.current()
		switch {
		case tok.Is("."):
			p.traveler.Next()
			p.skipWhitespace()
			name := p.current()
			p.expect(types.IDENT)
			p.traveler.Next()
			e = ast.Index{ID: e, Index: ast.Identifier{Name: name.Content, Pos: name.Pos()}, Pos: tok.Pos()}
		case tok.Is("["):
			var index ast.Expression
			p.within("[", "]", func() bool {
				index = p.required("an index")
				return false
			})
			e = ast.Index{ID: e, Index: index, Pos: tok.Pos()}
		default:
			return e
		}
	}
}

// startsArgument reports whether tok, seen after callee, begins an argument
// list. A bracket only does so when whitespace separates it from the callee.
func startsArgument(tok types.Token, spaced bool) bool {
	switch tok.Kind {
	case types.INT, types.IDENT, types.BOOL, types.STR, types.CHAR:
		return true
	case types.SYMBOL:
		return spaced && (tok.Is("(") || tok.Is("["))
	}
	return false
}

// tryCall treats callee as a function applied to the tokens that follow it.
// The arguments end at the first token at nesting depth zero that cannot
// belong to them; inside parentheses only a handful of tokens stop them.
func (p *Parser) tryCall(callee ast.Expression) ast.Expression {
	m := p.traveler.Mark()
	p.skipWhitespace()
	tok := p.current()
	if !startsArgument(tok, m.Moved()) {
		m.Restore()
		return callee
	}

	if tok.Is("[") {
		trial := p.traveler.Mark()
		_, isArray, err := p.tryList()
		trial.Restore()
		if err != nil || !isArray {
			// f [i] indexes f
			m.Commit()
			return p.tryCall(p.tryIndex(callee))
		}
	}

	greedy := p.inside == "("
	start := p.traveler.Top()
	depth := 0

scan:
	for !p.traveler.AtEnd() {
		tok := p.current()
		if depth == 0 {
			switch {
			case tok.Kind == types.EOL, tok.Kind == types.KEYWORD:
				break scan
			case tok.Is(","), tok.Is("|"), tok.Is("{"), tok.Is("="), tok.Is(":"), tok.Is(";"):
				break scan
			case tok.Is("]"), tok.Is(")"), tok.Is("}"):
				break scan
			case tok.IsOperator(types.Arrow):
				break scan
			case tok.Kind == types.OPERATOR && !greedy:
				break scan
			}
		}
		switch {
		case tok.Is("("), tok.Is("["), tok.Is("{"):
			depth++
		case tok.Is(")"), tok.Is("]"), tok.Is("}"):
			depth--
		}
		p.traveler.Next()
	}
	end := p.traveler.Top()

	// don't let trailing whitespace count as an argument list
	for end > start {
		last, _ := p.traveler.Get(end - 1)
		if last.Kind != types.WHITESPACE {
			break
		}
		end--
	}
	if end == start {
		m.Restore()
		return callee
	}
	m.Commit()

	var args []ast.Expression
	p.region(start, end, end, "", true, func() {
		for p.collect(&args)() {
		}
	})

	pos, _ := ast.PosOf(callee)
	return ast.Call{Callee: callee, Args: args, Pos: pos}
}

// tryList parses the bracketed region under the cursor as an array literal.
// isArray is false, with the cursor untouched, when the region holds a single
// expression without a trailing comma: that is an index, not an array.
func (p *Parser) tryList() (elems []ast.Expression, isArray bool, err errors.Response) {
	m := p.traveler.Mark()

	err = p.attempt(func() {
		isArray = true
		p.within("[", "]", func() bool {
			p.skipWhitespaceEOL()
			if p.traveler.AtEnd() {
				return false
			}
			elems = append(elems, p.expression())

			p.skipWhitespace()
			tok := p.current()
			if tok.Is(",") {
				p.traveler.Next()
				return true
			}

			p.skipWhitespaceEOL()
			if len(elems) == 1 && p.traveler.AtEnd() {
				isArray = false
				return false
			}
			p.fail(tok, "something's wrong in this array: expected \",\" after each element, found %s", describe(tok))
			return false
		})
	})

	if err != nil || !isArray {
		m.Restore()
		return nil, false, err
	}
	return elems, true, nil
}

func (p *Parser) initialization() ast.Expression {
	tok := p.current()
	p.traveler.Next()
	p.skipWhitespace()

	name := p.current()
	p.expect(types.IDENT)
	p.traveler.Next()
	id := p.tryIndex(ast.Identifier{Name: name.Content, Pos: name.Pos()})

	p.skipWhitespaceEOL()
	p.expectContent("{")

	var values []ast.Assignment
	p.within("{", "}", func() bool {
		p.skipWhitespaceEOL()
		if p.traveler.AtEnd() {
			return false
		}
		field := p.current()
		p.expect(types.IDENT)
		p.traveler.Next()
		p.skipWhitespace()
		p.consume("=")
		p.skipWhitespace()
		values = append(values, ast.Assignment{
			Left:  ast.Identifier{Name: field.Content, Pos: field.Pos()},
			Right: p.required("a field value"),
			Pos:   field.Pos(),
		})
		p.skipWhitespace()
		if p.current().Is(",") {
			p.traveler.Next()
		}
		return true
	})

	return ast.Initialization{ID: id, Values: values, Pos: tok.Pos()}
}

func (p *Parser) matchPattern() ast.MatchPattern {
	tok := p.current()
	p.traveler.Next()
	p.skipWhitespaceEOL()

	matching := p.required("a value to match")
	p.skipWhitespaceEOL()
	p.expectContent("{")

	return ast.MatchPattern{Matching: matching, Arms: p.arms(), Pos: tok.Pos()}
}

// arms parses a braced list of "| pattern -> body" arms.
func (p *Parser) arms() []ast.MatchArm {
	var arms []ast.MatchArm
	p.within("{", "}", func() bool {
		p.skipWhitespaceEOL()
		if p.traveler.AtEnd() {
			return false
		}
		bar := p.current()
		if !bar.Is("|") {
			p.fail(bar, "expected a match arm, found %s", describe(bar))
		}
		p.traveler.Next()
		p.skipWhitespaceEOL()
		param := p.required("a pattern")

		p.skipWhitespaceEOL()
		if arrow := p.current(); !arrow.IsOperator(types.Arrow) {
			p.fail(arrow, "expected \"->\" after pattern, found %s", describe(arrow))
		}
		p.traveler.Next()
		p.skipWhitespaceEOL()

		arms = append(arms, ast.MatchArm{Param: param, Body: p.required("an arm body"), Pos: bar.Pos()})
		return true
	})
	return arms
}

// ifPattern parses if/unless with its elif and else clauses.
func (p *Parser) ifPattern() ast.If {
	tok := p.current()
	p.traveler.Next()
	p.skipWhitespaceEOL()

	cond := p.required("a condition")
	out := ast.If{Condition: cond, Body: p.block(), Pos: tok.Pos()}

	var elseAt *types.Token
	for {
		m := p.traveler.Mark()
		p.skipWhitespaceEOL()
		clause := p.current()
		if !clause.IsKeyword(types.ELIF) && !clause.IsKeyword(types.ELSE) {
			m.Restore()
			return out
		}

		if elseAt != nil {
			panic(errors.Group{
				errors.Errorf(errors.At(clause), "irrelevant %q following previous \"else\"", clause.Content),
				errors.Notef(errors.At(*elseAt), "all cases are already covered at this point"),
			})
		}

		p.traveler.Next()
		p.skipWhitespaceEOL()
		if clause.IsKeyword(types.ELSE) {
			elseAt = &clause
			out.Elses = append(out.Elses, ast.ElseClause{Body: p.block(), Pos: clause.Pos()})
			continue
		}
		c := p.required("a condition")
		out.Elses = append(out.Elses, ast.ElseClause{Condition: c, Body: p.block(), Pos: clause.Pos()})
	}
}
