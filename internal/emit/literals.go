package emit

import (
	"fmt"
	"strings"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/types"
)

func (e *Emitter) emitListLiteral(n *ast.List) (string, error) {
	t := e.exprType(n)
	if e.res != nil && e.res.ArrayEligible[n] && t != nil && t.Kind == types.ArrayKind {
		parts := make([]string, len(n.Elts))
		for i, elt := range n.Elts {
			expr, err := e.emitExpr(elt)
			if err != nil {
				return "", err
			}
			parts[i] = expr
		}
		return fmt.Sprintf("%s{%s}", goType(t), strings.Join(parts, ", ")), nil
	}
	tmp := e.tmpName()
	e.writei(fmt.Sprintf("%s := %sListCreate(__global_allocator)", tmp, e.rtPrefix))
	elemType := types.Unknown()
	if t != nil {
		elemType = t.Elem
	}
	for _, elt := range n.Elts {
		expr, err := e.emitExpr(elt)
		if err != nil {
			return "", err
		}
		e.writei(fmt.Sprintf("%sListAppend(%s, __global_allocator, %s)", e.rtPrefix, tmp, e.boxExpr(expr, elemType)))
	}
	return tmp, nil
}

func (e *Emitter) emitTupleLiteral(n *ast.Tuple) (string, error) {
	t := e.exprType(n)
	parts := make([]string, len(n.Elts))
	for i, elt := range n.Elts {
		expr, err := e.emitExpr(elt)
		if err != nil {
			return "", err
		}
		parts[i] = fmt.Sprintf("F%d: %s", i, expr)
	}
	return fmt.Sprintf("%s{%s}", goType(t), strings.Join(parts, ", ")), nil
}

// emitSetLiteral lowers a set literal onto the same List{T}
// representation a dynamic container otherwise gets — this core's
// NativeType lattice (spec.md §4.3) has no distinct Set kind, so
// set-ness is purely a source-level hint the emitter doesn't need a
// separate backing store for.
func (e *Emitter) emitSetLiteral(n *ast.Set) (string, error) {
	return e.emitListLiteral(&ast.List{Elts: n.Elts})
}

func (e *Emitter) emitDictLiteral(n *ast.Dict) (string, error) {
	t := e.exprType(n)
	keyType, valType := types.Unknown(), types.Unknown()
	if t != nil {
		keyType, valType = t.Key, t.Value
	}
	tmp := e.tmpName()
	e.writei(fmt.Sprintf("%s := %sDictCreate(__global_allocator)", tmp, e.rtPrefix))
	for i, k := range n.Keys {
		if k == nil {
			continue // **expr dict-spread: Non-goal, nothing to splice from here.
		}
		kExpr, err := e.emitExpr(k)
		if err != nil {
			return "", err
		}
		vExpr, err := e.emitExpr(n.Values[i])
		if err != nil {
			return "", err
		}
		e.writei(fmt.Sprintf("%sDictSet(%s, __global_allocator, %s, %s)", e.rtPrefix, tmp,
			e.boxExpr(kExpr, keyType), e.boxExpr(vExpr, valType)))
	}
	return tmp, nil
}

// emitFString lowers an f-string into an allocator-threaded Concat
// call over its literal/expression parts, per spec.md §4.4's
// "F-string emission" recipe: each expression part formats with the
// verb its inferred type implies, honoring an explicit format spec or
// conversion character when present.
func (e *Emitter) emitFString(n *ast.FString) (string, error) {
	parts := make([]string, 0, len(n.Parts))
	for _, p := range n.Parts {
		if p.Expr == nil {
			parts = append(parts, escapeGoString(p.Literal))
			continue
		}
		expr, err := e.emitExpr(p.Expr)
		if err != nil {
			return "", err
		}
		if p.Conv == 's' || p.Conv == 'r' {
			expr = fmt.Sprintf("%sFormatAny(%s)", e.rtPrefix, e.boxExpr(expr, e.exprType(p.Expr)))
			parts = append(parts, expr)
			continue
		}
		spec := p.Spec
		verb := formatSpecFor(e.exprType(p.Expr))
		if spec != "" {
			verb = "%" + spec
		}
		parts = append(parts, fmt.Sprintf("fmt.Sprintf(%s, %s)", escapeGoString(verb), expr))
	}
	tmp := e.tmpName()
	e.writei(fmt.Sprintf("%s := %sConcat(__global_allocator, []string{%s})", tmp, e.rtPrefix, strings.Join(parts, ", ")))
	return tmp, nil
}

func (e *Emitter) emitLambda(n *ast.Lambda) (string, error) {
	params := make([]string, len(n.Args))
	for i, arg := range n.Args {
		params[i] = fmt.Sprintf("%s %s", renameIdent(arg.Name), goType(resolveArgType(arg)))
	}
	body, err := e.withBuffer(func() error {
		e.pushScope()
		for _, arg := range n.Args {
			e.scope.declared[renameIdent(arg.Name)] = true
		}
		expr, err := e.emitExpr(n.Body)
		if err != nil {
			return err
		}
		e.writei("return " + expr)
		e.popScope()
		return nil
	})
	if err != nil {
		return "", err
	}
	ret := ""
	if t := e.exprType(n.Body); t != nil && !t.IsUnknown() {
		ret = " " + goType(t)
	}
	return fmt.Sprintf("func(%s)%s {\n%s}", strings.Join(params, ", "), ret, body), nil
}
