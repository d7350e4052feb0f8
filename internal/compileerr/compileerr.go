// Package compileerr defines the compiler's error taxonomy — one
// type per pipeline stage, each carrying the source position it
// failed at, per spec.md §7 ("fail fast, no partial output"; the
// compiler always stops at the first hard error rather than
// collecting a diagnostic list). Grounded on the teacher's
// ParsingError/backtrackingError split (errors.go): a small, stage-
// tagged error type with Line/Col embedded, wrapped with %w so
// errors.As keeps working up the call stack the way
// query_analysis.go relies on for its own wrapped query errors.
package compileerr

import "fmt"

// Stage identifies which pipeline phase raised an error.
type Stage int

const (
	Lex Stage = iota
	Parse
	Sema
	Emit
	Compile
)

func (s Stage) String() string {
	switch s {
	case Lex:
		return "lex"
	case Parse:
		return "parse"
	case Sema:
		return "sema"
	case Emit:
		return "emit"
	case Compile:
		return "compile"
	default:
		return "unknown"
	}
}

// LexError reports a fatal lexical failure.
type LexError struct {
	Line, Col int
	Message   string
	Cause     error
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error: %s @ %d:%d", e.Message, e.Line, e.Col)
}
func (e *LexError) Unwrap() error { return e.Cause }
func (e *LexError) Stage() Stage  { return Lex }

// ParseError reports a fatal syntax failure.
type ParseError struct {
	Line, Col int
	Message   string
	Cause     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s @ %d:%d", e.Message, e.Line, e.Col)
}
func (e *ParseError) Unwrap() error { return e.Cause }
func (e *ParseError) Stage() Stage  { return Parse }

// SemaError reports a failure during semantic analysis: an undeclared
// name, a type mismatch the lattice can't reconcile, or any other
// violation one of the analyzer's subpasses rejects.
type SemaError struct {
	Line, Col int
	Message   string
	Cause     error
}

func (e *SemaError) Error() string {
	return fmt.Sprintf("sema error: %s @ %d:%d", e.Message, e.Line, e.Col)
}
func (e *SemaError) Unwrap() error { return e.Cause }
func (e *SemaError) Stage() Stage  { return Sema }

// EmitError reports a failure to lower a construct the semantic
// analyzer accepted — e.g. a representation choice the emitter has no
// recipe for.
type EmitError struct {
	Line, Col int
	Message   string
	Cause     error
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("emit error: %s @ %d:%d", e.Message, e.Line, e.Col)
}
func (e *EmitError) Unwrap() error { return e.Cause }
func (e *EmitError) Stage() Stage  { return Emit }

// CompileError is the top-level error Compile returns, wrapping
// whichever stage error actually failed so callers can branch on
// Stage() without caring which concrete stage type produced it.
type CompileError struct {
	Wrapped error
}

func (e *CompileError) Error() string { return e.Wrapped.Error() }
func (e *CompileError) Unwrap() error { return e.Wrapped }

// Stage reports which pipeline phase ultimately failed, consulting
// the wrapped stage error via a small local interface rather than a
// type switch, so new stage error types don't need a CompileError
// change.
func (e *CompileError) Stage() Stage {
	if s, ok := e.Wrapped.(interface{ Stage() Stage }); ok {
		return s.Stage()
	}
	return Compile
}

func Wrap(err error) *CompileError {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*CompileError); ok {
		return ce
	}
	return &CompileError{Wrapped: err}
}
