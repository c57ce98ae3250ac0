// Package driver runs the front-end pipeline: lex, parse, check.
package driver

import (
	stderrors "errors"

	"github.com/coreos/pkg/capnslog"
	"github.com/ztrue/tracerr"

	"github.com/pontaoski/van/ast"
	"github.com/pontaoski/van/errors"
	"github.com/pontaoski/van/lexer"
	"github.com/pontaoski/van/parser"
	"github.com/pontaoski/van/reader"
	"github.com/pontaoski/van/semantics"
	"github.com/pontaoski/van/types"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/van", "driver")

// Stage names the pass an error came from.
type Stage int

const (
	Lexing Stage = iota
	Parsing
	Checking
)

func (s Stage) String() string {
	return [...]string{"lexing", "parsing", "checking"}[s]
}

// Failure is a pipeline error tied to the source it came from.
type Failure struct {
	Stage  Stage
	Source *reader.Source
	Err    error
}

func (f *Failure) Error() string {
	return f.Source.Filename + ": " + f.Stage.String() + ": " + tracerr.Unwrap(f.Err).Error()
}

func (f *Failure) Unwrap() error {
	return tracerr.Unwrap(f.Err)
}

// Render formats the failure for a terminal. Diagnostics are quoted against
// the source; anything else is printed as is.
func (f *Failure) Render() string {
	var resp errors.Response
	if stderrors.As(tracerr.Unwrap(f.Err), &resp) {
		return f.Source.Filename + ":\n" + errors.Render(resp, f.Source.Lines)
	}
	return f.Error() + "\n"
}

// Result holds what each pass produced.
type Result struct {
	Source  *reader.Source
	Tokens  []types.Token
	Program []ast.Statement
	Visitor *semantics.Visitor
}

func fail(stage Stage, src *reader.Source, err error) error {
	return tracerr.Wrap(&Failure{Stage: stage, Source: src, Err: err})
}

// Lex tokenizes src.
func Lex(src *reader.Source) ([]types.Token, error) {
	tokens, err := lexer.Collect(lexer.New(src.Text, src.Filename))
	if err != nil {
		return nil, fail(Lexing, src, err)
	}
	return tokens, nil
}

// Parse lexes and parses src.
func Parse(src *reader.Source) (*Result, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}

	stmts, err := parser.ParseTokens(tokens)
	if err != nil {
		return nil, fail(Parsing, src, err)
	}
	plog.Debugf("%s: parsed %d statements", src.Filename, len(stmts))

	return &Result{Source: src, Tokens: tokens, Program: stmts}, nil
}

// Check runs every pass over src with a fresh global scope.
func Check(src *reader.Source) (*Result, error) {
	return CheckWith(semantics.New(), src)
}

// CheckWith runs every pass over src, checking into v. Reusing a visitor
// across sources lets later files see earlier globals.
func CheckWith(v *semantics.Visitor, src *reader.Source) (*Result, error) {
	res, err := Parse(src)
	if err != nil {
		return nil, err
	}

	res.Visitor = v
	if err := v.Visit(res.Program); err != nil {
		return res, fail(Checking, src, err)
	}
	plog.Debugf("%s: checked, %d warnings", src.Filename, len(v.Warnings()))
	return res, nil
}

// AsFailure extracts the Failure carried by err, if any.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	ok := stderrors.As(tracerr.Unwrap(err), &f)
	return f, ok
}
