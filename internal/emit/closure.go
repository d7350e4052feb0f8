package emit

import (
	"fmt"
	"strings"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/types"
)

// emitClosureDef emits a stray module-level closure — closures aren't
// normally declared at module scope, but sema doesn't forbid it, so
// this shares emitClosureStruct with the nested case, just with no
// binding statement to emit afterward.
func (e *Emitter) emitClosureDef(n *ast.FunctionDef) error {
	_, err := e.emitClosureStruct(n)
	return err
}

// emitClosureBinding lowers a nested FunctionDef sema flagged as a
// closure: a module-level XClosure struct capturing its free variables
// by value, plus a binding at the definition site constructing one
// from the current values of those variables. Calls to the bound name
// are dispatched through its Call method by emitCall.
func (e *Emitter) emitClosureBinding(n *ast.FunctionDef) error {
	structName, err := e.emitClosureStruct(n)
	if err != nil {
		return err
	}
	free := e.res.FreeVars[n]
	fields := make([]string, len(free))
	for i, name := range free {
		fields[i] = fmt.Sprintf("%s: %s", renameIdent(name), e.scope.rename(name))
	}
	id := e.scope.rename(n.Name)
	e.scope.declared[id] = true
	e.writei(fmt.Sprintf("%s := &%s{%s}", id, structName, strings.Join(fields, ", ")))
	return nil
}

// emitClosureStruct builds and registers the XClosure struct and its
// Call method. Each FunctionDef is visited once by the statement
// walker, so each closure gets exactly one struct declaration however
// many times its binding site actually runs.
func (e *Emitter) emitClosureStruct(n *ast.FunctionDef) (string, error) {
	structName := closureStructName(n.Name)
	free := e.res.FreeVars[n]
	fieldTypes := e.res.FreeVarTypes[n]

	var b strings.Builder
	fmt.Fprintf(&b, "type %s struct {\n", structName)
	for _, name := range free {
		fmt.Fprintf(&b, "\t%s %s\n", renameIdent(name), goType(fieldTypes[name]))
	}
	b.WriteString("}\n")

	params, ret, err := e.funcSignature(n)
	if err != nil {
		return "", err
	}

	body, err := e.withBuffer(func() error {
		e.pushScope()
		for _, name := range free {
			e.scope.renames[name] = "c." + renameIdent(name)
		}
		for _, arg := range n.Args {
			e.scope.declared[renameIdent(arg.Name)] = true
		}
		for _, s := range n.Body {
			if err := s.Accept(e); err != nil {
				return err
			}
		}
		e.popScope()
		return nil
	})
	if err != nil {
		return "", err
	}

	fmt.Fprintf(&b, "func (c *%s) Call(%s)%s {\n%s}\n", structName, params, ret, body)
	e.closureDecls = append(e.closureDecls, b.String())
	return structName, nil
}

// closureCallType reports the closure struct name a Name expression's
// statically inferred ClosureKind type resolves to, used by emitCall
// to dispatch `f(args)` to `f.Call(args)` when f is a captured or
// locally bound closure value rather than a plain function.
func closureCallType(t *types.Type) (string, bool) {
	if t == nil || t.Kind != types.ClosureKind {
		return "", false
	}
	return closureStructName(t.Name), true
}
