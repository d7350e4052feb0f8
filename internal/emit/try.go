package emit

import (
	"fmt"

	"github.com/vexlang/vexc/internal/ast"
)

// emitTryStmt lowers a try/except/else/finally block to nested Go
// closures: the try body runs inside an inner func whose deferred
// recover dispatches to the first except clause whose ExcType matches
// the panicking *runtime.RuntimeError's Kind (or the first bare
// except), re-panicking if none match; finally runs via an outer
// defer so it fires whether or not an exception was caught; else runs
// only when nothing was caught.
func (e *Emitter) emitTryStmt(n *ast.TryStmt) error {
	tryBody, err := e.emitBlock(n.Body)
	if err != nil {
		return err
	}
	dispatch, err := e.emitExceptDispatch(n.Handlers)
	if err != nil {
		return err
	}
	var elseBody, finallyBody string
	if len(n.Else) > 0 {
		elseBody, err = e.emitBlock(n.Else)
		if err != nil {
			return err
		}
	}
	if len(n.Finally) > 0 {
		finallyBody, err = e.emitBlock(n.Finally)
		if err != nil {
			return err
		}
	}

	caught := e.tmpName()
	e.writei(fmt.Sprintf("%s := false", caught))
	e.writei("func() {")
	e.indent++
	if len(n.Finally) > 0 {
		e.writei("defer func() {")
		e.indent++
		e.write(finallyBody)
		e.indent--
		e.writei("}()")
	}
	e.writei("func() {")
	e.indent++
	e.writei("defer func() {")
	e.indent++
	e.writei("r := recover()")
	e.writei("if r == nil { return }")
	e.writei(fmt.Sprintf("%s = true", caught))
	e.write(dispatch)
	e.indent--
	e.writei("}()")
	e.write(tryBody)
	e.indent--
	e.writei("}()")
	if len(n.Else) > 0 {
		e.writei(fmt.Sprintf("if !%s {", caught))
		e.indent++
		e.write(elseBody)
		e.indent--
		e.writei("}")
	}
	e.indent--
	e.writei("}()")
	return nil
}

// emitExceptDispatch builds the body of a try statement's recover
// handler: a sequence of "if !handled && <kind matches>" blocks, one
// per except clause in source order, falling through to a re-panic if
// none claimed the error.
func (e *Emitter) emitExceptDispatch(handlers []ast.ExceptHandler) (string, error) {
	return e.withBuffer(func() error {
		e.writei(fmt.Sprintf("rerr, ok := r.(%s)", runtimeType("RuntimeError", true)))
		e.writei("if !ok { panic(r) }")
		handled := e.tmpName()
		e.writei(fmt.Sprintf("%s := false", handled))
		for _, h := range handlers {
			cond := "true"
			if h.ExcType != "" {
				cond = fmt.Sprintf("rerr.Kind.String() == %q", h.ExcType)
			}
			e.writei(fmt.Sprintf("if !%s && %s {", handled, cond))
			e.indent++
			e.writei(fmt.Sprintf("%s = true", handled))
			e.pushScope()
			if h.Name != "" {
				id := e.scope.rename(h.Name)
				e.scope.declared[id] = true
				e.writei(fmt.Sprintf("%s := rerr", id))
			}
			for _, s := range h.Body {
				if err := s.Accept(e); err != nil {
					return err
				}
			}
			e.popScope()
			e.indent--
			e.writei("}")
		}
		e.writei(fmt.Sprintf("if !%s { panic(r) }", handled))
		return nil
	})
}
