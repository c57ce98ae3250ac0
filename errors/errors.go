// Package errors holds the diagnostics produced by the van front-end.
//
// Parse and type errors are Response values returned through ordinary error returns.
// Lexer errors are separate typed errors: the lexer treats them as fatal.
package errors

import (
	"fmt"
	"strings"

	"github.com/pontaoski/van/types"
)

// Location points at Span columns starting at Position.
type Location struct {
	Position types.Position
	Span     int
}

func (l *Location) String() string {
	return l.Position.String()
}

// At locates the whole of tok.
func At(tok types.Token) *Location {
	return &Location{Position: tok.Location.From, Span: tok.Location.Len()}
}

func Locate(pos types.Position, span int) *Location {
	if span < 1 {
		span = 1
	}
	return &Location{Position: pos, Span: span}
}

// Response is a diagnostic: an Error, a Note, or a Group of them.
type Response interface {
	error
	is_Response()
}

type Error struct {
	Location *Location
	Message  string
}

func (e Error) is_Response() {}

func (e Error) Error() string {
	if e.Location == nil {
		return "error: " + e.Message
	}
	return fmt.Sprintf("%s: error: %s", e.Location, e.Message)
}

type Note struct {
	Location *Location
	Message  string
}

func (n Note) is_Response() {}

func (n Note) Error() string {
	if n.Location == nil {
		return "note: " + n.Message
	}
	return fmt.Sprintf("%s: note: %s", n.Location, n.Message)
}

type Group []Response

func (g Group) is_Response() {}

func (g Group) Error() string {
	parts := make([]string, len(g))
	for i, r := range g {
		parts[i] = r.Error()
	}
	return strings.Join(parts, "\n")
}

// Errorf builds an Error at loc, which may be nil.
func Errorf(loc *Location, format string, args ...interface{}) Error {
	return Error{Location: loc, Message: fmt.Sprintf(format, args...)}
}

func Notef(loc *Location, format string, args ...interface{}) Note {
	return Note{Location: loc, Message: fmt.Sprintf(format, args...)}
}

// Messages flattens r into its messages, outermost first.
func Messages(r Response) []string {
	switch v := r.(type) {
	case Error:
		return []string{v.Message}
	case Note:
		return []string{v.Message}
	case Group:
		var out []string
		for _, inner := range v {
			out = append(out, Messages(inner)...)
		}
		return out
	}
	return nil
}

// Warning is a non-fatal diagnostic; it never aborts a pass.
type Warning struct {
	Location *Location
	Message  string
}

func (w Warning) String() string {
	if w.Location == nil {
		return "warning: " + w.Message
	}
	return fmt.Sprintf("%s: warning: %s", w.Location, w.Message)
}
