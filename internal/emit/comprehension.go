package emit

import (
	"fmt"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/types"
)

// emitListComp lowers a list/generator comprehension to an
// immediately-invoked function building the result with an explicit
// loop nest, one per Comprehension clause, each optionally guarded by
// its `if` filters.
func (e *Emitter) emitListComp(n *ast.ListComp) (string, error) {
	elemType := types.Unknown()
	if t := e.exprType(n); t != nil && t.Kind == types.ListKind {
		elemType = t.Elem
	}
	body, err := e.withBuffer(func() error {
		e.pushScope()
		tmp := "__result"
		e.writei(fmt.Sprintf("%s := %sListCreate(__global_allocator)", tmp, e.rtPrefix))
		if err := e.emitComprehensionNest(n.Generators, 0, func() error {
			elt, err := e.emitExpr(n.Elt)
			if err != nil {
				return err
			}
			e.writei(fmt.Sprintf("%sListAppend(%s, __global_allocator, %s)", e.rtPrefix, tmp, e.boxExpr(elt, elemType)))
			return nil
		}); err != nil {
			return err
		}
		e.writei("return " + tmp)
		e.popScope()
		return nil
	})
	if err != nil {
		return "", err
	}
	tmp := e.tmpName()
	e.writei(fmt.Sprintf("%s := func() %s {\n%s}()", tmp, runtimeType("List", true), body))
	return tmp, nil
}

func (e *Emitter) emitDictComp(n *ast.DictComp) (string, error) {
	keyType, valType := types.Unknown(), types.Unknown()
	if t := e.exprType(n); t != nil && t.Kind == types.DictKind {
		keyType, valType = t.Key, t.Value
	}
	body, err := e.withBuffer(func() error {
		e.pushScope()
		tmp := "__result"
		e.writei(fmt.Sprintf("%s := %sDictCreate(__global_allocator)", tmp, e.rtPrefix))
		if err := e.emitComprehensionNest(n.Generators, 0, func() error {
			k, err := e.emitExpr(n.Key)
			if err != nil {
				return err
			}
			v, err := e.emitExpr(n.Value)
			if err != nil {
				return err
			}
			e.writei(fmt.Sprintf("%sDictSet(%s, __global_allocator, %s, %s)", e.rtPrefix, tmp, e.boxExpr(k, keyType), e.boxExpr(v, valType)))
			return nil
		}); err != nil {
			return err
		}
		e.writei("return " + tmp)
		e.popScope()
		return nil
	})
	if err != nil {
		return "", err
	}
	tmp := e.tmpName()
	e.writei(fmt.Sprintf("%s := func() %s {\n%s}()", tmp, runtimeType("Dict", true), body))
	return tmp, nil
}

// emitComprehensionNest recursively opens one Go for-loop per
// Comprehension clause (with its `if` filters as guarding
// continue-statements), invoking body once fully nested.
func (e *Emitter) emitComprehensionNest(gens []ast.Comprehension, i int, body func() error) error {
	if i == len(gens) {
		return body()
	}
	gen := gens[i]
	iterExpr, err := e.emitExpr(gen.Iter)
	if err != nil {
		return err
	}
	iterType := e.exprType(gen.Iter)
	elemVar := e.tmpName()
	e.writei(fmt.Sprintf("for _, %s := range %s {", elemVar, rangeSource(e, iterExpr, iterType)))
	e.indent++
	if name, ok := gen.Target.(*ast.Name); ok {
		id := e.scope.rename(name.ID)
		e.scope.declared[id] = true
		bound := elemVar
		if iterType != nil && iterType.Kind == types.StringKind {
			bound = "string(" + elemVar + ")"
		} else {
			bound = e.unboxExpr(elemVar, elementRepr(iterType))
		}
		e.writei(fmt.Sprintf("%s := %s", id, bound))
	}
	for _, ifExpr := range gen.Ifs {
		cond, err := e.emitExpr(ifExpr)
		if err != nil {
			return err
		}
		e.writei(fmt.Sprintf("if !(%s) { continue }", cond))
	}
	if err := e.emitComprehensionNest(gens, i+1, body); err != nil {
		return err
	}
	e.indent--
	e.writei("}")
	return nil
}

// rangeSource returns the Go expression a `range` clause iterates:
// List{T}'s Elems field directly (an Array{T,N} is already a plain Go
// array and ranges natively); Dict{K,V} has no exported field to range
// over at all, so it goes through DictKeys, matching for-loop lowering.
func rangeSource(e *Emitter, expr string, t *types.Type) string {
	if t == nil {
		return expr
	}
	switch t.Kind {
	case types.ListKind:
		return expr + ".Elems"
	case types.DictKind:
		return fmt.Sprintf("%sDictKeys(%s)", e.rtPrefix, expr)
	default:
		return expr
	}
}

func elementRepr(t *types.Type) *types.Type {
	if t == nil {
		return types.Unknown()
	}
	switch t.Kind {
	case types.ArrayKind, types.ListKind:
		return t.Elem
	case types.DictKind:
		return t.Key
	default:
		return types.Unknown()
	}
}
