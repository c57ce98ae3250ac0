package errors

import (
	"fmt"

	"github.com/pontaoski/van/types"
)

type InvalidEscape struct {
	Char     rune
	Location types.Span
}

func (e InvalidEscape) Error() string {
	return fmt.Sprintf("invalid character escape: %q. %s", e.Char, e.Location)
}

type InvalidCharLiteral struct {
	Content  string
	Location types.Span
}

func (e InvalidCharLiteral) Error() string {
	return fmt.Sprintf("invalid char literal: %q must hold exactly one character. %s", e.Content, e.Location)
}

type UnterminatedLiteral struct {
	Delimiter rune
	Location  types.Span
}

func (e UnterminatedLiteral) Error() string {
	return fmt.Sprintf("unterminated literal, expected closing %q. %s", e.Delimiter, e.Location)
}

type UnexpectedCharacter struct {
	Char     rune
	Location types.Span
}

func (e UnexpectedCharacter) Error() string {
	return fmt.Sprintf("unexpected character %q. %s", e.Char, e.Location)
}
