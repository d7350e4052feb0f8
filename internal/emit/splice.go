package emit

import (
	_ "embed"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"strings"
)

// runtimeSource is a copy of internal/runtime/runtime.go, co-located
// here so go:embed can reach it — embed patterns can't cross into a
// sibling package directory, only the current one or its
// subdirectories.
//
//go:embed runtime_source.go.txt
var runtimeSource string

// spliceRuntimeSource inlines the fixed ABI's declarations directly
// into the generated file when emit.remove_runtime_lib is set,
// stripping the package clause and import block the same way the
// teacher's cleanGoModule does, so the emitted program has no
// dependency on this module at all.
func spliceRuntimeSource() string {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "runtime_source.go.txt", runtimeSource, parser.ParseComments)
	if err != nil {
		panic("emit: embedded runtime source failed to parse: " + err.Error())
	}

	var out strings.Builder
	for _, decl := range file.Decls {
		if gd, ok := decl.(*ast.GenDecl); ok && gd.Tok == token.IMPORT {
			continue
		}
		if err := printer.Fprint(&out, fset, decl); err != nil {
			panic("emit: embedded runtime source failed to print: " + err.Error())
		}
		out.WriteString("\n\n")
	}
	return out.String()
}
