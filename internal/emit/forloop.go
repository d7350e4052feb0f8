package emit

import (
	"fmt"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/types"
)

// emitForLoop lowers a `for target in iter:` statement. range(...) over
// integers becomes a native counting loop; List/Array/Dict/String
// iterables become a Go `range`, with Dict iterating its keys (Python's
// `for k in d` semantics) and List/Array unboxing each element before
// binding it to target.
func (e *Emitter) emitForLoop(n *ast.For) error {
	if call, ok := n.Iter.(*ast.Call); ok {
		if name, ok := call.Func.(*ast.Name); ok && name.ID == "range" {
			return e.emitRangeLoop(n, call)
		}
	}

	iterExpr, err := e.emitExpr(n.Iter)
	if err != nil {
		return err
	}
	iterType := e.exprType(n.Iter)

	source := iterExpr
	elemT := types.Unknown()
	switch {
	case iterType != nil && iterType.Kind == types.ListKind:
		source = iterExpr + ".Elems"
		elemT = iterType.Elem
	case iterType != nil && iterType.Kind == types.ArrayKind:
		elemT = iterType.Elem
	case iterType != nil && iterType.Kind == types.DictKind:
		source = fmt.Sprintf("%sDictKeys(%s)", e.rtPrefix, iterExpr)
		elemT = iterType.Key
	case iterType != nil && iterType.Kind == types.StringKind:
		source = iterExpr
		elemT = types.String()
	}

	rawVar := e.tmpName()
	e.writei(fmt.Sprintf("for _, %s := range %s {", rawVar, source))
	e.indent++
	e.pushScope()

	bound := rawVar
	switch {
	case iterType != nil && iterType.Kind == types.StringKind:
		bound = "string(" + rawVar + ")"
	case iterType != nil && (iterType.Kind == types.ListKind || iterType.Kind == types.DictKind):
		// List elements and Dict keys are always boxed *DynObject.
		bound = e.unboxExpr(rawVar, elemT)
	}
	if err := e.bindForTarget(n.Target, bound); err != nil {
		return err
	}

	for _, s := range n.Body {
		if err := s.Accept(e); err != nil {
			return err
		}
	}
	e.popScope()
	e.indent--
	e.writei("}")
	return nil
}

// emitRangeLoop lowers `for x in range(a, b, c)` to a native counting
// for-loop rather than materializing a list — range() is special-
// cased at emission time.
func (e *Emitter) emitRangeLoop(n *ast.For, call *ast.Call) error {
	name, ok := n.Target.(*ast.Name)
	if !ok {
		return fmt.Errorf("emit: range() loop target must be a single name")
	}
	start, stop, step := "int64(0)", "", "int64(1)"
	switch len(call.Args) {
	case 1:
		s, err := e.emitExpr(call.Args[0])
		if err != nil {
			return err
		}
		stop = s
	case 2:
		a, err := e.emitExpr(call.Args[0])
		if err != nil {
			return err
		}
		b, err := e.emitExpr(call.Args[1])
		if err != nil {
			return err
		}
		start, stop = a, b
	case 3:
		a, err := e.emitExpr(call.Args[0])
		if err != nil {
			return err
		}
		b, err := e.emitExpr(call.Args[1])
		if err != nil {
			return err
		}
		c, err := e.emitExpr(call.Args[2])
		if err != nil {
			return err
		}
		start, stop, step = a, b, c
	default:
		return fmt.Errorf("emit: range() takes 1 to 3 arguments")
	}

	e.pushScope()
	id := e.scope.rename(name.ID)
	e.scope.declared[id] = true
	cmp, advance := "<", "+="
	if isNegativeLiteral(step) {
		cmp, advance = ">", "+="
	}
	// start/stop/step are already int64-typed Go expressions (each came
	// either from the int64(0)/int64(1) defaults above or from emitExpr,
	// which types every int constant and variable as int64) — no extra
	// conversion needed here.
	e.writei(fmt.Sprintf("for %s := %s; %s %s %s; %s %s %s {", id, start, id, cmp, stop, id, advance, step))
	e.indent++
	for _, s := range n.Body {
		if err := s.Accept(e); err != nil {
			return err
		}
	}
	e.indent--
	e.writei("}")
	e.popScope()
	return nil
}

func isNegativeLiteral(s string) bool {
	return len(s) > 0 && s[0] == '-'
}

// bindForTarget binds a for-loop's target, which is either a single
// name or a tuple-unpack over a Tuple{...} element.
func (e *Emitter) bindForTarget(target ast.Node, bound string) error {
	if name, ok := target.(*ast.Name); ok {
		id := e.scope.rename(name.ID)
		e.scope.declared[id] = true
		e.writei(fmt.Sprintf("%s := %s", id, bound))
		return nil
	}
	tuple, ok := target.(*ast.Tuple)
	if !ok {
		return fmt.Errorf("emit: unsupported for-loop target")
	}
	tmp := e.tmpName()
	e.writei(fmt.Sprintf("%s := %s", tmp, bound))
	for i, elt := range tuple.Elts {
		name, ok := elt.(*ast.Name)
		if !ok {
			return fmt.Errorf("emit: nested tuple-unpack targets are not supported")
		}
		id := e.scope.rename(name.ID)
		e.scope.declared[id] = true
		// Tuple struct fields (tupleStructType) are already natively
		// typed, unlike List/Dict elements — no unboxExpr here.
		e.writei(fmt.Sprintf("%s := %s.F%d", id, tmp, i))
	}
	return nil
}
