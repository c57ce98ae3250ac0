package errors

import (
	"fmt"
	"strings"
)

// Render formats r for a terminal, quoting the offending source line from lines
// (the source split on newlines) with a caret underline.
func Render(r Response, lines []string) string {
	var b strings.Builder
	render(&b, r, lines)
	return b.String()
}

func render(b *strings.Builder, r Response, lines []string) {
	switch v := r.(type) {
	case Group:
		for _, inner := range v {
			render(b, inner, lines)
		}
	case Error:
		renderOne(b, "error", v.Location, v.Message, lines)
	case Note:
		renderOne(b, "note", v.Location, v.Message, lines)
	}
}

func renderOne(b *strings.Builder, label string, loc *Location, message string, lines []string) {
	fmt.Fprintf(b, "%s: %s\n", label, message)
	if loc == nil {
		return
	}

	idx := loc.Position.Line - 1
	if idx < 0 || idx >= len(lines) {
		return
	}

	prefix := fmt.Sprintf("%5d |", loc.Position.Line)
	fmt.Fprintf(b, "      |\n%s %s\n", prefix, lines[idx])

	col := loc.Position.Column
	if col < 1 {
		col = 1
	}
	fmt.Fprintf(b, "      |%s%s\n", strings.Repeat(" ", col), strings.Repeat("^", loc.Span))
}
