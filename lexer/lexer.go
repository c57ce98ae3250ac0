package lexer

import (
	"fmt"
	"strings"

	"github.com/coreos/pkg/capnslog"
	"github.com/ztrue/tracerr"

	"github.com/pontaoski/van/errors"
	"github.com/pontaoski/van/types"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/van", "lexer")

// Lexer turns source characters into tokens, trying its matchers in order and
// taking the first that succeeds. It is a finite, non-restartable sequence.
type Lexer struct {
	tokenizer *Tokenizer
	matchers  []Matcher
	done      bool
}

// New returns a lexer over data with the van matcher set.
func New(data []rune, filename string) *Lexer {
	l := NewLexer(NewTokenizer(data, filename))

	l.AddMatcher(NumberMatcher{})
	l.AddMatcher(StringMatcher{})
	l.AddMatcher(KeyMatcher{Kind: types.BOOL, Constants: []string{"true", "false"}})
	l.AddMatcher(KeyMatcher{Kind: types.KEYWORD, Constants: types.Keywords()})
	l.AddMatcher(IdentifierMatcher{})
	l.AddMatcher(WhitespaceMatcher{})
	l.AddMatcher(ConstantStringMatcher{Kind: types.OPERATOR, Constants: types.OperatorSpellings()})
	l.AddMatcher(ConstantCharMatcher{Kind: types.SYMBOL, Constants: []rune{
		'(', ')', '[', ']', '{', '}', ',', ':', ';', '!', '|', '=', '.',
	}})

	return l
}

// NewLexer returns a lexer with no matchers.
func NewLexer(t *Tokenizer) *Lexer {
	return &Lexer{tokenizer: t}
}

func (l *Lexer) AddMatcher(m Matcher) {
	l.matchers = append(l.matchers, m)
}

func (l *Lexer) Matchers() []Matcher {
	return l.matchers
}

func (l *Lexer) matchToken() types.Token {
	if l.tokenizer.End() {
		return types.Token{
			Kind:     types.EOF,
			Location: types.SingleCharSpan(l.tokenizer.Position()),
		}
	}

	for _, m := range l.matchers {
		trial := *l.tokenizer
		if tok, ok := m.Match(&trial); ok {
			*l.tokenizer = trial
			return tok
		}
	}

	r, _ := l.tokenizer.Peek()
	panic(errors.UnexpectedCharacter{
		Char:     r,
		Location: types.SingleCharSpan(l.tokenizer.Position()),
	})
}

// Next returns the next token. ok is false once the input is exhausted; the EOF
// token itself is never returned.
func (l *Lexer) Next() (tok types.Token, ok bool) {
	if l.done {
		return types.Token{}, false
	}

	tok = l.matchToken()
	if tok.Kind == types.EOF {
		l.done = true
		return types.Token{}, false
	}

	return tok, true
}

// End is the position just past the last character.
func (l *Lexer) End() types.Position {
	return l.tokenizer.Position()
}

// Collect drains l. Lexer errors are fatal inside the matchers; this is the one
// place they are turned back into an error value.
func Collect(l *Lexer) (tokens []types.Token, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch rerr := r.(type) {
			case errors.InvalidEscape, errors.InvalidCharLiteral, errors.UnterminatedLiteral, errors.UnexpectedCharacter:
				tokens = nil
				err = tracerr.Wrap(rerr.(error))
			default:
				panic(r)
			}
		}
	}()

	for {
		tok, ok := l.Next()
		if !ok {
			break
		}
		tokens = append(tokens, tok)
	}

	plog.Debugf("lexed %d tokens", len(tokens))
	return tokens, nil
}

// Lex is New followed by Collect.
func Lex(source, filename string) ([]types.Token, error) {
	return Collect(New([]rune(source), filename))
}

// Describe renders tokens one per line for debugging output.
func Describe(tokens []types.Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		fmt.Fprintln(&b, tok)
	}
	return b.String()
}
