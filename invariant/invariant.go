// Package invariant provides contract assertions for van.
//
// All functions panic on violation. A violation is a defect in the compiler, never a
// problem with the program being compiled, so the panic value is deliberately not an
// error: recover sites that convert error panics into diagnostics re-panic it.
package invariant

import (
	"fmt"
	"runtime"
)

// Violation is the panic value raised by this package.
type Violation struct {
	Kind    string
	Message string
	Caller  string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s VIOLATION: %s (at %s)", v.Kind, v.Message, v.Caller)
}

// Precondition checks an input contract at function entry.
func Precondition(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("PRECONDITION", format, args...)
	}
}

// Invariant checks internal consistency during execution.
func Invariant(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("INVARIANT", format, args...)
	}
}

// ExpectNoError panics if err is not nil.
func ExpectNoError(err error, msg string) {
	if err != nil {
		fail("INVARIANT", "%s: unexpected error: %v", msg, err)
	}
}

// Unreachable marks a path the caller has proven impossible.
func Unreachable(format string, args ...interface{}) {
	fail("UNREACHABLE", format, args...)
}

func fail(kind, format string, args ...interface{}) {
	caller := "unknown"
	if _, file, line, ok := runtime.Caller(2); ok {
		caller = fmt.Sprintf("%s:%d", file, line)
	}
	panic(Violation{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Caller:  caller,
	})
}
