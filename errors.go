// errors.go: error kinds and user-facing rendering.
//
// Two layers:
//
//  1. Language-level evaluation errors (the kinds the phase subsystem emits:
//     usage, state, contract, reaction). These travel as panics carrying an
//     evalErr and are recovered either by a `try { } catch e { }` in the
//     script or at the public Eval boundary, where they become a
//     *RuntimeError. None of them are fatal to the host process.
//
//  2. Stage errors (*LexError, *ParseError, *RuntimeError) with 1-based
//     coordinates, rendered as caret snippets by WrapErrorWithSource.
package lattice

import (
	"fmt"
	"strings"
)

// ErrKind classifies a language-level evaluation error.
type ErrKind int

const (
	ErrGeneric  ErrKind = iota
	ErrUsage            // non-identifier where one is required; undefined binding
	ErrState            // operation forbidden by the current phase/pressure/gate
	ErrContract         // freeze/anneal validator failure
	ErrReaction         // observer callback failure (post-commit)
	ErrDispatch         // no overload matches the argument's phase
)

// evalErr is the internal panic signal for language-level errors. It is
// recovered by try/catch and by the Eval* boundary; it never escapes the
// package as a panic.
type evalErr struct {
	kind ErrKind
	msg  string
	line int
	col  int
}

func fail(msg string)         { panic(evalErr{kind: ErrGeneric, msg: msg}) }
func failUsage(msg string)    { panic(evalErr{kind: ErrUsage, msg: msg}) }
func failState(msg string)    { panic(evalErr{kind: ErrState, msg: msg}) }
func failContract(msg string) { panic(evalErr{kind: ErrContract, msg: msg}) }
func failReaction(msg string) { panic(evalErr{kind: ErrReaction, msg: msg}) }
func failDispatch(msg string) { panic(evalErr{kind: ErrDispatch, msg: msg}) }

// LexError is produced by the scanner. Line is 1-based, Col 0-based.
type LexError struct {
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("LEXICAL ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// ParseError is produced by the parser. Line is 1-based, Col 0-based.
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// RuntimeError is an execution-time failure surfaced by the Eval* methods.
// Line/Col are 1-based (0 when unknown).
type RuntimeError struct {
	Kind ErrKind
	Line int
	Col  int
	Msg  string
}

func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("RUNTIME ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("RUNTIME ERROR: %s", e.Msg)
}

// WrapErrorWithSource augments lex/parse/runtime errors with a caret-annotated
// snippet of the source. Other errors pass through unchanged.
func WrapErrorWithSource(err error, src string) error {
	return WrapErrorWithName(err, "", src)
}

func WrapErrorWithName(err error, srcName, src string) error {
	switch e := err.(type) {
	case *LexError:
		return fmt.Errorf("%s", prettySnippet(src, "LEXICAL ERROR", srcName, e.Line, e.Col+1, e.Msg))
	case *ParseError:
		return fmt.Errorf("%s", prettySnippet(src, "PARSE ERROR", srcName, e.Line, e.Col+1, e.Msg))
	case *RuntimeError:
		if e.Line <= 0 {
			return err
		}
		return fmt.Errorf("%s", prettySnippet(src, "RUNTIME ERROR", srcName, e.Line, e.Col, e.Msg))
	default:
		return err
	}
}

// prettySnippet builds a Python-like snippet with a header and a caret,
// showing up to one line of context on each side. Coordinates are 1-based
// and clamped to the source bounds.
func prettySnippet(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
