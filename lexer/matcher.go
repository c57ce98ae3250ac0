package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pontaoski/van/errors"
	"github.com/pontaoski/van/types"
)

// Matcher recognises one class of token at the tokenizer's cursor.
// The Lexer hands every matcher a throwaway copy of the tokenizer, so a matcher
// that gives up halfway needs no rollback of its own.
type Matcher interface {
	Match(t *Tokenizer) (types.Token, bool)
}

func token(kind types.TokenKind, from types.Position, t *Tokenizer, content string) types.Token {
	return types.Token{
		Kind:     kind,
		Location: types.Span{From: from, To: t.LastPosition()},
		Content:  content,
	}
}

type NumberMatcher struct{}

func (NumberMatcher) Match(t *Tokenizer) (types.Token, bool) {
	from := t.Position()

	var b strings.Builder
	for {
		r, ok := t.Peek()
		if !ok || !unicode.IsDigit(r) {
			break
		}
		b.WriteRune(r)
		t.Advance()
	}

	if b.Len() == 0 {
		return types.Token{}, false
	}

	if dot, ok := t.Peek(); ok && dot == '.' {
		if digit, ok := t.PeekN(1); ok && unicode.IsDigit(digit) {
			b.WriteRune(dot)
			t.Advance()
			for {
				r, ok := t.Peek()
				if !ok || !unicode.IsDigit(r) {
					break
				}
				b.WriteRune(r)
				t.Advance()
			}
		}
	}

	return token(types.INT, from, t, b.String()), true
}

// StringMatcher handles "..." strings, '.' chars and r"..." raw strings.
type StringMatcher struct{}

func (StringMatcher) Match(t *Tokenizer) (types.Token, bool) {
	from := t.Position()

	first, ok := t.Peek()
	if !ok {
		return types.Token{}, false
	}

	raw := false
	var delimiter rune
	switch first {
	case '"', '\'':
		delimiter = first
	case 'r':
		if next, ok := t.PeekN(1); ok && next == '"' {
			raw = true
			delimiter = '"'
			t.Advance()
		} else {
			return types.Token{}, false
		}
	default:
		return types.Token{}, false
	}
	t.Advance()

	var b strings.Builder
	closed := false
	for !t.End() {
		r, _ := t.Next()
		if r == delimiter {
			closed = true
			break
		}
		if raw || r != '\\' {
			b.WriteRune(r)
			continue
		}

		escaped, ok := t.Next()
		if !ok {
			break
		}
		switch escaped {
		case '\\', '\'', '"':
			b.WriteRune(escaped)
		case 'n':
			b.WriteRune('\n')
		case 'r':
			b.WriteRune('\r')
		case 't':
			b.WriteRune('\t')
		default:
			panic(errors.InvalidEscape{
				Char:     escaped,
				Location: types.SingleCharSpan(t.LastPosition()),
			})
		}
	}

	if !closed {
		panic(errors.UnterminatedLiteral{
			Delimiter: delimiter,
			Location:  types.Span{From: from, To: t.LastPosition()},
		})
	}

	content := b.String()
	if delimiter == '\'' {
		if utf8.RuneCountInString(content) != 1 {
			panic(errors.InvalidCharLiteral{
				Content:  content,
				Location: types.Span{From: from, To: t.LastPosition()},
			})
		}
		return token(types.CHAR, from, t, content), true
	}

	return token(types.STR, from, t, content), true
}

func identStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func identPart(r rune) bool {
	return identStart(r) || unicode.IsDigit(r) || r == '?'
}

type IdentifierMatcher struct{}

func (IdentifierMatcher) Match(t *Tokenizer) (types.Token, bool) {
	from := t.Position()

	r, ok := t.Peek()
	if !ok || !identStart(r) {
		return types.Token{}, false
	}

	var b strings.Builder
	for {
		r, ok := t.Peek()
		if !ok || !identPart(r) {
			break
		}
		b.WriteRune(r)
		t.Advance()
	}

	return token(types.IDENT, from, t, b.String()), true
}

// WhitespaceMatcher folds a run of blanks and # comments into one token. The run is
// an EOL token when it crosses a line break.
type WhitespaceMatcher struct{}

func (WhitespaceMatcher) Match(t *Tokenizer) (types.Token, bool) {
	from := t.Position()

	found := false
	newline := false
	for {
		r, ok := t.Peek()
		if !ok {
			break
		}

		if r == '#' {
			for {
				c, ok := t.Peek()
				if !ok || c == '\n' {
					break
				}
				t.Advance()
			}
			found = true
			continue
		}

		if !unicode.IsSpace(r) {
			break
		}

		if r == '\n' {
			newline = true
		}
		found = true
		t.Advance()
	}

	if !found {
		return types.Token{}, false
	}

	if newline {
		return token(types.EOL, from, t, "\n"), true
	}
	return token(types.WHITESPACE, from, t, ""), true
}

type ConstantCharMatcher struct {
	Kind      types.TokenKind
	Constants []rune
}

func (m ConstantCharMatcher) Match(t *Tokenizer) (types.Token, bool) {
	from := t.Position()

	r, ok := t.Peek()
	if !ok {
		return types.Token{}, false
	}

	for _, c := range m.Constants {
		if r == c {
			t.Advance()
			return token(m.Kind, from, t, string(c)), true
		}
	}

	return types.Token{}, false
}

// ConstantStringMatcher takes the first constant the input starts with, so longer
// spellings must be listed before their prefixes.
type ConstantStringMatcher struct {
	Kind      types.TokenKind
	Constants []string
}

func (m ConstantStringMatcher) Match(t *Tokenizer) (types.Token, bool) {
	from := t.Position()

	for _, c := range m.Constants {
		if t.HasPrefix(c) {
			t.AdvanceN(utf8.RuneCountInString(c))
			tok := token(m.Kind, from, t, c)
			if m.Kind == types.OPERATOR {
				tok.Operator = types.LookupOperator(c)
			}
			return tok, true
		}
	}

	return types.Token{}, false
}

// KeyMatcher is a ConstantStringMatcher that refuses a match running into an
// identifier, so "mut" is not found at the start of "mutable".
type KeyMatcher struct {
	Kind      types.TokenKind
	Constants []string
}

func (m KeyMatcher) Match(t *Tokenizer) (types.Token, bool) {
	from := t.Position()

	for _, c := range m.Constants {
		if !t.HasPrefix(c) {
			continue
		}

		n := utf8.RuneCountInString(c)
		if next, ok := t.PeekN(n); ok && identPart(next) {
			continue
		}

		t.AdvanceN(n)
		tok := token(m.Kind, from, t, c)
		if m.Kind == types.KEYWORD {
			tok.Keyword = types.LookupKeyword(c)
		}
		return tok, true
	}

	return types.Token{}, false
}
