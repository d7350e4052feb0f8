package emit

import (
	"fmt"
	"strings"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/types"
)

// emitBlock runs stmts in a freshly pushed nested scope and returns
// the block's text; closing the scope adds no deferred frees.
func (e *Emitter) emitBlock(stmts []ast.Node) (string, error) {
	return e.withBuffer(func() error {
		e.pushScope()
		for _, s := range stmts {
			if err := s.Accept(e); err != nil {
				return err
			}
		}
		e.popScope()
		return nil
	})
}

func (e *Emitter) VisitAssign(n *ast.Assign) error {
	valExpr, err := e.emitExpr(n.Value)
	if err != nil {
		return err
	}

	if lst, ok := n.Value.(*ast.List); ok && len(n.Targets) == 1 {
		if name, ok := n.Targets[0].(*ast.Name); ok {
			if e.res != nil && e.res.ArrayEligible[lst] {
				id := e.scope.rename(name.ID)
				op := e.declOrAssign(id)
				e.writei(fmt.Sprintf("%s %s %s", id, op, valExpr))
				return nil
			}
		}
	}

	if len(n.Targets) == 1 {
		if tup, ok := n.Targets[0].(*ast.Tuple); ok {
			return e.emitTupleUnpack(tup, valExpr)
		}
		return e.emitSingleAssign(n.Targets[0], valExpr)
	}
	// Chained assignment (`a = b = value`): bind each target to a
	// shared temporary so the value expression is evaluated once.
	tmp := e.tmpName()
	e.writei(fmt.Sprintf("%s := %s", tmp, valExpr))
	for _, tgt := range n.Targets {
		if err := e.emitSingleAssign(tgt, tmp); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) emitSingleAssign(target ast.Node, valExpr string) error {
	switch t := target.(type) {
	case *ast.Name:
		id := e.scope.rename(t.ID)
		op := e.declOrAssign(id)
		e.writei(fmt.Sprintf("%s %s %s", id, op, valExpr))
		return nil
	case *ast.Attribute:
		recv, err := e.emitExpr(t.Value)
		if err != nil {
			return err
		}
		e.writei(fmt.Sprintf("%s.%s = %s", recv, renameIdent(t.Attr), valExpr))
		return nil
	case *ast.Subscript:
		return e.emitSubscriptAssign(t, valExpr)
	case *ast.Starred:
		return e.emitSingleAssign(t.Value, valExpr)
	default:
		return fmt.Errorf("unsupported assignment target %s", target.String())
	}
}

func (e *Emitter) emitSubscriptAssign(t *ast.Subscript, valExpr string) error {
	recv, err := e.emitExpr(t.Value)
	if err != nil {
		return err
	}
	recvType := e.exprType(t.Value)
	idx, ok := t.Slice.(*ast.Index)
	if !ok {
		return fmt.Errorf("slice assignment is not supported")
	}
	keyExpr, err := e.emitExpr(idx.Value)
	if err != nil {
		return err
	}
	if recvType != nil && recvType.Kind == types.DictKind {
		e.writei(fmt.Sprintf("%sDictSet(%s, __global_allocator, %s, %s)", e.rtPrefix, recv, e.boxExpr(keyExpr, e.exprType(idx.Value)), e.boxExpr(valExpr, recvType.Value)))
		return nil
	}
	if recvType != nil && recvType.Kind == types.ArrayKind {
		e.writei(fmt.Sprintf("%s[%s] = %s", recv, keyExpr, valExpr))
		return nil
	}
	// List{T}: no in-place index-set helper in the fixed ABI beyond
	// append/pop, so a direct index assignment reaches into Elems.
	e.writei(fmt.Sprintf("%s.Elems[%s] = %s", recv, keyExpr, e.boxExpr(valExpr, elemTypeOf(recvType))))
	return nil
}

func elemTypeOf(t *types.Type) *types.Type {
	if t == nil {
		return types.Unknown()
	}
	return t.Elem
}

func (e *Emitter) emitTupleUnpack(tup *ast.Tuple, valExpr string) error {
	tmp := e.tmpName()
	e.writei(fmt.Sprintf("%s := %s", tmp, valExpr))
	for i, elt := range tup.Elts {
		field := fmt.Sprintf("%s.F%d", tmp, i)
		if err := e.emitSingleAssign(elt, field); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) VisitAnnAssign(n *ast.AnnAssign) error {
	if n.Value == nil {
		id := e.scope.rename(n.Target.(*ast.Name).ID)
		e.scope.declared[id] = true
		e.writei(fmt.Sprintf("var %s %s", id, goType(e.exprType(n.Target))))
		return nil
	}
	valExpr, err := e.emitExpr(n.Value)
	if err != nil {
		return err
	}
	return e.emitSingleAssign(n.Target, valExpr)
}

func (e *Emitter) VisitAugAssign(n *ast.AugAssign) error {
	name, ok := n.Target.(*ast.Name)
	if !ok {
		return fmt.Errorf("augmented assignment to non-name target")
	}
	valExpr, err := e.emitExpr(n.Value)
	if err != nil {
		return err
	}
	id := e.scope.rename(name.ID)
	switch n.Op {
	case "//":
		e.writei(fmt.Sprintf("%s = %sFloorDiv(%s, %s)", id, e.rtPrefix, id, valExpr))
	case "%":
		e.writei(fmt.Sprintf("%s = %sFloorMod(%s, %s)", id, e.rtPrefix, id, valExpr))
	default:
		e.writei(fmt.Sprintf("%s %s= %s", id, n.Op, valExpr))
	}
	return nil
}

func (e *Emitter) VisitExprStmt(n *ast.ExprStmt) error {
	expr, err := e.emitExpr(n.Value)
	if err != nil {
		return err
	}
	e.writei(expr)
	return nil
}

func (e *Emitter) VisitReturn(n *ast.Return) error {
	if n.Value == nil {
		e.writei("return")
		return nil
	}
	expr, err := e.emitExpr(n.Value)
	if err != nil {
		return err
	}
	e.writei("return " + expr)
	return nil
}

func (e *Emitter) VisitIf(n *ast.If) error {
	cond, err := e.emitExpr(n.Cond)
	if err != nil {
		return err
	}
	body, err := e.emitBlock(n.Body)
	if err != nil {
		return err
	}
	e.writei(fmt.Sprintf("if %s {", cond))
	e.write(body)
	if len(n.Else) > 0 {
		elseBody, err := e.emitBlock(n.Else)
		if err != nil {
			return err
		}
		e.writei("} else {")
		e.write(elseBody)
	}
	e.writei("}")
	return nil
}

func (e *Emitter) VisitWhile(n *ast.While) error {
	cond, err := e.emitExpr(n.Cond)
	if err != nil {
		return err
	}
	body, err := e.emitBlock(n.Body)
	if err != nil {
		return err
	}
	e.writei(fmt.Sprintf("for %s {", cond))
	e.write(body)
	e.writei("}")
	return nil
}

func (e *Emitter) VisitFor(n *ast.For) error {
	return e.emitForLoop(n)
}

func (e *Emitter) VisitFunctionDef(n *ast.FunctionDef) error {
	// A nested (non-top-level) FunctionDef is either a closure, whose
	// struct+call method was already generated as a module-level decl
	// by emitClosureDef, or a plain nested helper, emitted inline as a
	// Go closure literal bound with :=.
	if e.res != nil && e.res.Closures[n] {
		return e.emitClosureBinding(n)
	}
	params, ret, err := e.funcSignature(n)
	if err != nil {
		return err
	}
	body, err := e.funcBodyText(n)
	if err != nil {
		return err
	}
	id := e.scope.rename(n.Name)
	e.scope.declared[id] = true
	e.writei(fmt.Sprintf("%s := func(%s)%s {", id, params, ret))
	e.write(body)
	e.writei("}")
	return nil
}

func (e *Emitter) VisitClassDef(n *ast.ClassDef) error {
	// Class defs are hoisted to module level by Emit; a ClassDef
	// encountered here (nested in a function) isn't part of this
	// language's surface (spec.md §6.1 has no nested-class form).
	return fmt.Errorf("nested class definitions are not supported")
}

func (e *Emitter) VisitTryStmt(n *ast.TryStmt) error {
	return e.emitTryStmt(n)
}

func (e *Emitter) VisitAssert(n *ast.Assert) error {
	cond, err := e.emitExpr(n.Cond)
	if err != nil {
		return err
	}
	msg := `""`
	if n.Msg != nil {
		m, err := e.emitExpr(n.Msg)
		if err != nil {
			return err
		}
		msg = m
	}
	e.writei(fmt.Sprintf("if !(%s) {", cond))
	e.indent++
	e.writei(fmt.Sprintf("panic(%sNewRuntimeError(%sErrValue, %s))", e.rtPrefix, e.rtPrefix, msg))
	e.indent--
	e.writei("}")
	return nil
}

// VisitDel drops del's target's reference count when its
// representation is a *DynObject (the Unknown-typed boxing case);
// List/Dict/class-instance representations aren't *DynObject, so Go's
// GC reclaims them without a Decref call.
func (e *Emitter) VisitDel(n *ast.Del) error {
	for _, t := range n.Targets {
		if name, ok := t.(*ast.Name); ok {
			id := e.scope.rename(name.ID)
			t := e.exprType(name)
			if t != nil && t.IsUnknown() {
				e.writei(fmt.Sprintf("%sDecref(%s, __global_allocator)", e.rtPrefix, id))
			}
		}
	}
	return nil
}

func (e *Emitter) VisitRaise(n *ast.Raise) error {
	if n.Exc == nil {
		e.writei("panic(recover())")
		return nil
	}
	exc, err := e.emitExpr(n.Exc)
	if err != nil {
		return err
	}
	e.writei("panic(" + exc + ")")
	return nil
}

func (e *Emitter) VisitWith(n *ast.With) error {
	ctx, err := e.emitExpr(n.Ctx)
	if err != nil {
		return err
	}
	if n.As != nil {
		if err := e.emitSingleAssign(n.As, ctx); err != nil {
			return err
		}
	} else {
		e.writei(ctx)
	}
	body, err := e.emitBlock(n.Body)
	if err != nil {
		return err
	}
	e.writei("{")
	e.write(body)
	e.writei("}")
	return nil
}

func (e *Emitter) VisitPass(n *ast.Pass) error         { return nil }
func (e *Emitter) VisitBreak(n *ast.Break) error       { e.writei("break"); return nil }
func (e *Emitter) VisitContinue(n *ast.Continue) error { e.writei("continue"); return nil }
func (e *Emitter) VisitGlobal(n *ast.Global) error      { return nil }
func (e *Emitter) VisitImportStmt(n *ast.ImportStmt) error { return nil }
func (e *Emitter) VisitImportFrom(n *ast.ImportFrom) error { return nil }

// ---- function/class top-level emission ----

func (e *Emitter) funcSignature(n *ast.FunctionDef) (string, string, error) {
	parts := make([]string, 0, len(n.Args))
	for _, arg := range n.Args {
		at := resolveArgType(arg)
		parts = append(parts, fmt.Sprintf("%s %s", renameIdent(arg.Name), goType(at)))
	}
	ret := ""
	if n.Returns != "" {
		ret = " " + goType(resolveReturnType(n.Returns))
	}
	return strings.Join(parts, ", "), ret, nil
}

func resolveArgType(arg ast.Arg) *types.Type {
	switch arg.Annotation {
	case "":
		return types.Unknown()
	case "int":
		return types.Int()
	case "float":
		return types.Float()
	case "bool":
		return types.Bool()
	case "str":
		return types.String()
	default:
		return types.ClassInstance(arg.Annotation)
	}
}

func resolveReturnType(ann string) *types.Type { return resolveArgType(ast.Arg{Annotation: ann}) }

func (e *Emitter) funcBodyText(n *ast.FunctionDef) (string, error) {
	return e.withBuffer(func() error {
		e.pushScope()
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
}

func (e *Emitter) emitTopLevelFunc(n *ast.FunctionDef) error {
	if e.res != nil && e.res.Closures[n] {
		// Module-level closures (closures aren't normally top-level,
		// but a stray one is still lowered via the same struct recipe).
		return e.emitClosureDef(n)
	}
	params, ret, err := e.funcSignature(n)
	if err != nil {
		return err
	}
	body, err := e.funcBodyText(n)
	if err != nil {
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "func %s(%s)%s {\n", renameIdent(n.Name), params, ret)
	b.WriteString(body)
	b.WriteString("}\n")
	e.classDecls = append(e.classDecls, b.String())
	return nil
}
