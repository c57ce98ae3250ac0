package types

import (
	"fmt"
)

type Position struct {
	Line     int
	Column   int
	Filename string
}

type Span struct {
	From Position
	To   Position
}

func (p Position) String() string {
	if p.Filename == "" {
		p.Filename = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%d:%d", s.From, s.To.Line, s.To.Column)
}

// Len is the number of columns covered by a single-line span.
// Multi-line spans report the length of the first line only.
func (s Span) Len() int {
	if s.To.Line != s.From.Line || s.To.Column < s.From.Column {
		return 1
	}
	return s.To.Column - s.From.Column + 1
}

func SingleCharSpan(p Position) Span {
	return Span{p, p}
}
