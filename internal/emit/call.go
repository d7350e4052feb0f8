package emit

import (
	"fmt"
	"strings"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/types"
)

func (e *Emitter) emitCall(n *ast.Call) (string, error) {
	if name, ok := n.Func.(*ast.Name); ok {
		switch name.ID {
		case "print":
			return e.emitPrint(n)
		case "len":
			return e.emitLen(n)
		case "str", "int", "float", "bool":
			return e.emitCast(name.ID, n)
		case "sorted":
			return e.emitSorted(n, false)
		case "reversed":
			return e.emitSorted(n, true)
		}
		if ci, ok := e.res.Classes.Get(name.ID); ok {
			return e.emitClassInstantiation(ci, n)
		}
		args, err := e.emitArgs(n.Args)
		if err != nil {
			return "", err
		}
		id := e.scope.rename(name.ID)
		if _, ok := closureCallType(e.exprType(name)); ok {
			return fmt.Sprintf("%s.Call(%s)", id, strings.Join(args, ", ")), nil
		}
		return fmt.Sprintf("%s(%s)", id, strings.Join(args, ", ")), nil
	}
	if attr, ok := n.Func.(*ast.Attribute); ok {
		return e.emitMethodCall(attr, n)
	}
	callee, err := e.emitExpr(n.Func)
	if err != nil {
		return "", err
	}
	args, err := e.emitArgs(n.Args)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s)", callee, strings.Join(args, ", ")), nil
}

func (e *Emitter) emitArgs(nodes []ast.Node) ([]string, error) {
	out := make([]string, 0, len(nodes))
	for _, a := range nodes {
		// Keyword args (`f(x=1)`) are encoded as single-target Assign
		// nodes; emitted Go call sites are positional, so only the
		// value is needed here, same convention inferExpr uses.
		if assign, ok := a.(*ast.Assign); ok {
			expr, err := e.emitExpr(assign.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, expr)
			continue
		}
		expr, err := e.emitExpr(a)
		if err != nil {
			return nil, err
		}
		out = append(out, expr)
	}
	return out, nil
}

// emitPrint lowers print(...) per spec.md §4.4's recipe: join
// arguments with a space, formatting each per its inferred type, then
// print the joined line in one call.
func (e *Emitter) emitPrint(n *ast.Call) (string, error) {
	if len(n.Args) == 0 {
		return fmt.Sprintf("%sPrintValue(\"\")", e.rtPrefix), nil
	}
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		if _, ok := a.(*ast.Starred); ok {
			return "", fmt.Errorf("emit: print(*args) is not supported")
		}
		expr, err := e.emitExpr(a)
		if err != nil {
			return "", err
		}
		t := e.exprType(a)
		if t != nil && t.Kind == types.BoolKind {
			parts[i] = fmt.Sprintf("map[bool]string{true: \"True\", false: \"False\"}[%s]", expr)
			continue
		}
		parts[i] = fmt.Sprintf("%sFormatAny(%s)", e.rtPrefix, e.boxExpr(expr, t))
	}
	return fmt.Sprintf("%sPrintValue(strings.Join([]string{%s}, \" \"))", e.rtPrefix, strings.Join(parts, ", ")), nil
}

func (e *Emitter) emitLen(n *ast.Call) (string, error) {
	if len(n.Args) != 1 {
		return "", fmt.Errorf("emit: len() takes exactly one argument")
	}
	expr, err := e.emitExpr(n.Args[0])
	if err != nil {
		return "", err
	}
	t := e.exprType(n.Args[0])
	if t == nil {
		return "", fmt.Errorf("emit: cannot determine len() argument type")
	}
	switch t.Kind {
	case types.StringKind:
		return fmt.Sprintf("int64(len(%s))", expr), nil
	case types.ArrayKind:
		return fmt.Sprintf("int64(len(%s))", expr), nil
	case types.ListKind:
		return fmt.Sprintf("int64(%sListLen(%s))", e.rtPrefix, expr), nil
	case types.DictKind:
		return fmt.Sprintf("int64(%sDictLen(%s))", e.rtPrefix, expr), nil
	default:
		return fmt.Sprintf("int64(len(%s))", expr), nil
	}
}

func (e *Emitter) emitCast(kind string, n *ast.Call) (string, error) {
	if len(n.Args) != 1 {
		return "", fmt.Errorf("emit: %s() takes exactly one argument", kind)
	}
	expr, err := e.emitExpr(n.Args[0])
	if err != nil {
		return "", err
	}
	srcType := e.exprType(n.Args[0])
	switch kind {
	case "str":
		if srcType != nil && srcType.Kind == types.StringKind {
			return expr, nil
		}
		return fmt.Sprintf("%sFormatAny(%s)", e.rtPrefix, e.boxExpr(expr, srcType)), nil
	case "int":
		if srcType != nil && srcType.Kind == types.StringKind {
			return fmt.Sprintf("%sParseInt(%s)", e.rtPrefix, expr), nil
		}
		return fmt.Sprintf("int64(%s)", expr), nil
	case "float":
		if srcType != nil && srcType.Kind == types.StringKind {
			return fmt.Sprintf("%sParseFloat(%s)", e.rtPrefix, expr), nil
		}
		return fmt.Sprintf("float64(%s)", expr), nil
	case "bool":
		return fmt.Sprintf("%sTruthy(%s)", e.rtPrefix, e.boxExpr(expr, srcType)), nil
	default:
		return "", fmt.Errorf("emit: unsupported cast %q", kind)
	}
}

// emitSorted lowers sorted()/reversed() into a single ListSorted/
// ListReversed call bound to a temporary. The result is a fresh list;
// no free is emitted for it at the enclosing scope's close.
func (e *Emitter) emitSorted(n *ast.Call, reverse bool) (string, error) {
	if len(n.Args) != 1 {
		return "", fmt.Errorf("emit: sorted()/reversed() take exactly one argument")
	}
	src, err := e.emitExpr(n.Args[0])
	if err != nil {
		return "", err
	}
	tmp := e.tmpName()
	fn := "ListSorted"
	if reverse {
		fn = "ListReversed"
	}
	// The result is a fresh *runtime.List, not a *DynObject — nothing
	// to Decref; Go's GC reclaims it like any other value.
	e.writei(fmt.Sprintf("%s := %s%s(%s, __global_allocator)", tmp, e.rtPrefix, fn, src))
	return tmp, nil
}

func (e *Emitter) emitSubscript(n *ast.Subscript) (string, error) {
	recv, err := e.emitExpr(n.Value)
	if err != nil {
		return "", err
	}
	recvType := e.exprType(n.Value)
	if slice, ok := n.Slice.(*ast.Slice); ok {
		return e.emitSliceExpr(recv, recvType, slice)
	}
	idx := n.Slice.(*ast.Index)
	keyExpr, err := e.emitExpr(idx.Value)
	if err != nil {
		return "", err
	}
	if recvType == nil {
		return fmt.Sprintf("%s[%s]", recv, keyExpr), nil
	}
	switch recvType.Kind {
	case types.ArrayKind:
		return fmt.Sprintf("%s[%s]", recv, keyExpr), nil
	case types.DictKind:
		tmp := e.tmpName()
		e.writei(fmt.Sprintf("%s, err := %sDictGet(%s, %s)", tmp, e.rtPrefix, recv, e.boxExpr(keyExpr, e.exprType(idx.Value))))
		e.writei("if err != nil { panic(err) }")
		return e.unboxExpr(tmp, recvType.Value), nil
	case types.ListKind:
		tmp := e.tmpName()
		e.writei(fmt.Sprintf("%s, err := %sListGet(%s, int(%s))", tmp, e.rtPrefix, recv, keyExpr))
		e.writei("if err != nil { panic(err) }")
		return e.unboxExpr(tmp, recvType.Elem), nil
	case types.StringKind:
		return fmt.Sprintf("string([]rune(%s)[%s])", recv, keyExpr), nil
	default:
		return fmt.Sprintf("%s[%s]", recv, keyExpr), nil
	}
}

func (e *Emitter) emitSliceExpr(recv string, recvType *types.Type, slice *ast.Slice) (string, error) {
	lo, err := e.sliceBound(slice.Lower, "0")
	if err != nil {
		return "", err
	}
	hi, err := e.sliceBound(slice.Upper, "-1")
	if err != nil {
		return "", err
	}
	step, err := e.sliceBound(slice.Step, "1")
	if err != nil {
		return "", err
	}
	if recvType != nil && recvType.Kind == types.StringKind {
		if slice.Step != nil {
			return "", fmt.Errorf("emit: stepped string slicing is not supported")
		}
		return fmt.Sprintf("%s[%s:%s]", recv, lo, hi), nil
	}
	tmp := e.tmpName()
	e.writei(fmt.Sprintf("%s := %sListSlice(%s, int(%s), int(%s), int(%s))", tmp, e.rtPrefix, recv, lo, hi, step))
	return tmp, nil
}

func (e *Emitter) sliceBound(n ast.Node, def string) (string, error) {
	if n == nil {
		return def, nil
	}
	return e.emitExpr(n)
}

func (e *Emitter) emitAttribute(n *ast.Attribute) (string, error) {
	recv, err := e.emitExpr(n.Value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s.%s", recv, renameIdent(n.Attr)), nil
}
