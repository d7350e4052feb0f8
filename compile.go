// Package vexc compiles Vex source to a single, self-contained Go
// source file: lexer, parser, semantic analyzer, and emitter wired
// into one pipeline — parse then lower, stopping at the first hard
// error rather than collecting a diagnostic list.
package vexc

import (
	"github.com/vexlang/vexc/internal/compileerr"
	"github.com/vexlang/vexc/internal/config"
	"github.com/vexlang/vexc/internal/emit"
	"github.com/vexlang/vexc/internal/lexer"
	"github.com/vexlang/vexc/internal/parser"
	"github.com/vexlang/vexc/internal/sema"
)

// Compile lowers Vex source to formatted Go source text, or a
// *compileerr.CompileError identifying which stage failed. A nil cfg
// compiles with every default setting (config.New()).
func Compile(source []byte, cfg *config.Config) (string, error) {
	if cfg == nil {
		cfg = config.New()
	}

	toks, err := lexer.TokenizeWithTabWidth(source, cfg.GetInt("lexer.tab_width"))
	if err != nil {
		if lexErr, ok := err.(*lexer.Error); ok {
			return "", compileerr.Wrap(&compileerr.LexError{Line: lexErr.Line, Col: lexErr.Col, Message: lexErr.Message, Cause: err})
		}
		return "", compileerr.Wrap(&compileerr.LexError{Message: err.Error(), Cause: err})
	}

	mod, err := parser.Parse(toks)
	if err != nil {
		if parseErr, ok := err.(*parser.Error); ok {
			return "", compileerr.Wrap(&compileerr.ParseError{Line: parseErr.Line, Col: parseErr.Col, Message: parseErr.Message, Cause: err})
		}
		return "", compileerr.Wrap(&compileerr.ParseError{Message: err.Error(), Cause: err})
	}

	res, err := sema.Analyze(mod)
	if err != nil {
		return "", compileerr.Wrap(&compileerr.SemaError{Message: err.Error(), Cause: err})
	}

	out, err := emit.Emit(mod, res, cfg)
	if err != nil {
		// emit.Emit already returns a *compileerr.CompileError wrapping
		// an *compileerr.EmitError (see internal/emit/emitter.go), so
		// Wrap here is a no-op except on the path through
		// golang.org/x/tools/imports, which also returns that shape.
		return "", compileerr.Wrap(err)
	}
	return out, nil
}
