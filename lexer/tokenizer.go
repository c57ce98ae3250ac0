package lexer

import "github.com/pontaoski/van/types"

// Tokenizer is a cursor over source characters with line and column tracking.
// Copying a Tokenizer by value is cheap: the copy shares the backing runes and
// owns its own cursor, which is how matchers try a token without committing.
type Tokenizer struct {
	data []rune
	idx  int
	pos  types.Position
	last types.Position
}

func NewTokenizer(data []rune, filename string) *Tokenizer {
	start := types.Position{Line: 1, Column: 1, Filename: filename}
	return &Tokenizer{
		data: data,
		pos:  start,
		last: start,
	}
}

// Next consumes and returns the current character.
func (t *Tokenizer) Next() (rune, bool) {
	if t.End() {
		return 0, false
	}

	r := t.data[t.idx]
	t.idx++
	t.last = t.pos

	if r == '\n' {
		t.pos.Line++
		t.pos.Column = 1
	} else {
		t.pos.Column++
	}

	return r, true
}

func (t *Tokenizer) Peek() (rune, bool) {
	return t.PeekN(0)
}

// PeekN looks k characters past the cursor without consuming anything.
func (t *Tokenizer) PeekN(k int) (rune, bool) {
	if t.idx+k >= len(t.data) || t.idx+k < 0 {
		return 0, false
	}
	return t.data[t.idx+k], true
}

func (t *Tokenizer) Advance() {
	t.Next()
}

func (t *Tokenizer) AdvanceN(k int) {
	for i := 0; i < k; i++ {
		t.Next()
	}
}

func (t *Tokenizer) End() bool {
	return t.idx >= len(t.data)
}

// Position is where the next character will be read from.
func (t *Tokenizer) Position() types.Position {
	return t.pos
}

// LastPosition is the position of the most recently consumed character.
func (t *Tokenizer) LastPosition() types.Position {
	return t.last
}

// HasPrefix reports whether the unread input starts with s.
func (t *Tokenizer) HasPrefix(s string) bool {
	i := 0
	for _, r := range s {
		c, ok := t.PeekN(i)
		if !ok || c != r {
			return false
		}
		i++
	}
	return true
}
