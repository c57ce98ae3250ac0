package parser

import (
	"strconv"

	"github.com/pontaoski/van/errors"
	"github.com/pontaoski/van/invariant"
	"github.com/pontaoski/van/types"
)

// Traveler is a rewindable cursor over one materialized token buffer.
//
// The fence is an exclusive upper bound: at or past it the traveler behaves as
// if the input had ended. Parsing a delimited region narrows the fence instead
// of copying the region's tokens.
type Traveler struct {
	tokens []types.Token
	top    int
	fence  int
}

func NewTraveler(tokens []types.Token) *Traveler {
	return &Traveler{
		tokens: tokens,
		fence:  len(tokens),
	}
}

// Current is the token at the cursor, or an EOF token at the fence.
func (t *Traveler) Current() types.Token {
	if t.top >= t.fence {
		return t.eof()
	}
	return t.tokens[t.top]
}

func (t *Traveler) CurrentContent() string {
	return t.Current().Content
}

func (t *Traveler) eof() types.Token {
	var pos types.Position
	switch {
	case t.fence < len(t.tokens):
		pos = t.tokens[t.fence].Location.From
	case len(t.tokens) > 0:
		pos = t.tokens[len(t.tokens)-1].Location.To
	}
	return types.Token{Kind: types.EOF, Location: types.SingleCharSpan(pos)}
}

// Next moves the cursor forward, stopping at the fence.
func (t *Traveler) Next() {
	if t.top < t.fence {
		t.top++
	}
}

func (t *Traveler) Prev() {
	if t.top > 0 {
		t.top--
	}
}

// Remaining counts the tokens between the cursor and the fence.
func (t *Traveler) Remaining() int {
	if t.top >= t.fence {
		return 0
	}
	return t.fence - t.top
}

func (t *Traveler) AtEnd() bool {
	return t.Remaining() == 0
}

// Get returns the token at absolute index i if it lies before the fence.
func (t *Traveler) Get(i int) (types.Token, bool) {
	if i < 0 || i >= t.fence {
		return types.Token{}, false
	}
	return t.tokens[i], true
}

func (t *Traveler) Top() int {
	return t.top
}

func (t *Traveler) Fence() int {
	return t.fence
}

// Expect returns the current token's content if it is of the given kind.
func (t *Traveler) Expect(kind types.TokenKind) (string, error) {
	tok := t.Current()
	if tok.Kind != kind {
		return "", errors.Errorf(errors.At(tok), "expected %s, found %s", kind, describe(tok))
	}
	return tok.Content, nil
}

// ExpectContent fails unless the current token is spelled s.
func (t *Traveler) ExpectContent(s string) error {
	tok := t.Current()
	if tok.Kind == types.EOF || tok.Content != s {
		return errors.Errorf(errors.At(tok), "expected %q, found %s", s, describe(tok))
	}
	return nil
}

// fenced runs fn with the traveler restricted to [start, end), then puts the old
// fence back and leaves the cursor at resume.
func (t *Traveler) fenced(start, end, resume int, fn func()) {
	invariant.Precondition(start <= end && end <= t.fence, "region [%d, %d) escapes fence %d", start, end, t.fence)

	outer := t.fence
	t.top, t.fence = start, end
	defer func() {
		t.fence = outer
		t.top = resume
	}()

	fn()
}

// Mark is a checkpoint. Restore rewinds the traveler to it unless Commit was
// called first, so `defer m.Restore()` undoes every path that does not commit.
type Mark struct {
	t         *Traveler
	top       int
	committed bool
}

func (t *Traveler) Mark() *Mark {
	return &Mark{t: t, top: t.top}
}

func (m *Mark) Restore() {
	if !m.committed {
		m.t.top = m.top
	}
}

func (m *Mark) Commit() {
	m.committed = true
}

// Moved reports whether the cursor has left the checkpoint.
func (m *Mark) Moved() bool {
	return m.t.top != m.top
}

func describe(tok types.Token) string {
	switch tok.Kind {
	case types.EOF:
		return "end of input"
	case types.EOL:
		return "newline"
	case types.WHITESPACE:
		return "whitespace"
	}
	return strconv.Quote(tok.Content)
}
