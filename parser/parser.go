// Package parser turns a token stream into van statements.
//
// Productions report failures by panicking with an errors.Response; Parse
// recovers them at the top and hands them back as ordinary errors.
package parser

import (
	"github.com/coreos/pkg/capnslog"
	"github.com/ztrue/tracerr"

	"github.com/pontaoski/van/ast"
	"github.com/pontaoski/van/errors"
	"github.com/pontaoski/van/types"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/van", "parser")

type Parser struct {
	traveler *Traveler

	// inside is the opening delimiter of the innermost region being parsed.
	// Call arguments inside "(" run to the end of the region.
	inside string

	// inArgs is set while parsing the arguments of a call: an identifier
	// there is an argument, not the head of another call.
	inArgs bool
}

func New(t *Traveler) *Parser {
	return &Parser{traveler: t}
}

// ParseTokens parses a whole token stream.
func ParseTokens(tokens []types.Token) ([]ast.Statement, error) {
	return New(NewTraveler(tokens)).Parse()
}

// Parse reads statements until the traveler is exhausted.
func (p *Parser) Parse() (stmts []ast.Statement, err error) {
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(errors.Response)
			if ok {
				err = tracerr.Wrap(rerr)
			} else {
				panic(r)
			}
		}
	}()

	for {
		stmt := p.statement()
		if stmt == nil {
			return
		}
		stmts = append(stmts, stmt)
	}
}

// attempt runs fn, turning a parse failure into a returned error. The cursor
// is left wherever fn stopped.
func (p *Parser) attempt(fn func()) (err errors.Response) {
	inside, inArgs := p.inside, p.inArgs
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(errors.Response)
			if !ok {
				panic(r)
			}
			p.inside, p.inArgs = inside, inArgs
			err = rerr
		}
	}()

	fn()
	return nil
}

func (p *Parser) current() types.Token {
	return p.traveler.Current()
}

func (p *Parser) fail(tok types.Token, format string, args ...interface{}) {
	panic(errors.Errorf(errors.At(tok), format, args...))
}

func (p *Parser) unexpected(tok types.Token) {
	p.fail(tok, "unexpected %s", describe(tok))
}

func (p *Parser) expect(kind types.TokenKind) string {
	content, err := p.traveler.Expect(kind)
	if err != nil {
		panic(err)
	}
	return content
}

func (p *Parser) expectContent(s string) {
	if err := p.traveler.ExpectContent(s); err != nil {
		panic(err)
	}
}

// consume expects s and steps past it.
func (p *Parser) consume(s string) types.Token {
	tok := p.current()
	p.expectContent(s)
	p.traveler.Next()
	return tok
}

func (p *Parser) skipWhitespace() {
	for p.current().Kind == types.WHITESPACE {
		p.traveler.Next()
	}
}

func (p *Parser) skipWhitespaceEOL() {
	for {
		kind := p.current().Kind
		if kind != types.WHITESPACE && kind != types.EOL {
			return
		}
		p.traveler.Next()
	}
}

// peekPast reports the first token after the current one that is not
// whitespace, without moving.
func (p *Parser) peekPast() types.Token {
	m := p.traveler.Mark()
	defer m.Restore()

	p.traveler.Next()
	p.skipWhitespace()
	return p.current()
}

// endStatement requires a statement to be followed by a newline, a semicolon
// or the end of its region.
func (p *Parser) endStatement() {
	p.skipWhitespace()
	tok := p.current()
	switch {
	case tok.Kind == types.EOF:
	case tok.Kind == types.EOL, tok.Is(";"):
		p.traveler.Next()
	default:
		p.fail(tok, "expected newline, found %s", describe(tok))
	}
}

// closing finds the token matching the open delimiter under the cursor.
// Only delimiters of the same kind are counted.
func (p *Parser) closing(open, close string) int {
	start := p.current()
	p.expectContent(open)

	depth := 0
	for i := p.traveler.Top(); ; i++ {
		tok, ok := p.traveler.Get(i)
		if !ok {
			p.fail(start, "unclosed %q", open)
		}
		switch {
		case tok.Is(open):
			depth++
		case tok.Is(close):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
}

// region parses [start, end) as a sub-stream, then resumes at resume.
func (p *Parser) region(start, end, resume int, inside string, inArgs bool, fn func()) {
	outerInside, outerArgs := p.inside, p.inArgs
	p.inside, p.inArgs = inside, inArgs
	plog.Tracef("entering %q region [%d, %d)", inside, start, end)

	p.traveler.fenced(start, end, resume, func() {
		fn()
		p.skipWhitespaceEOL()
		if !p.traveler.AtEnd() {
			p.unexpected(p.current())
		}
	})

	p.inside, p.inArgs = outerInside, outerArgs
}

// within parses the region between the open delimiter under the cursor and
// its partner, calling item until it reports there is nothing left.
func (p *Parser) within(open, close string, item func() bool) {
	end := p.closing(open, close)
	start := p.traveler.Top() + 1
	p.region(start, end, end+1, open, false, func() {
		for item() {
		}
	})
}

func (p *Parser) statements(open, close string) []ast.Statement {
	var out []ast.Statement
	p.within(open, close, func() bool {
		stmt := p.statement()
		if stmt == nil {
			return false
		}
		out = append(out, stmt)
		return true
	})
	return out
}

func (p *Parser) block() []ast.Statement {
	p.skipWhitespaceEOL()
	tok := p.current()
	if !tok.Is("{") {
		p.fail(tok, "expected \"{\", found %s", describe(tok))
	}
	return p.statements("{", "}")
}
