package emit

import (
	"fmt"
	"strings"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/types"
)

// emitMethodCall lowers a `receiver.method(args)` call. List/dict
// mutating and accessor methods go through the fixed runtime ABI
// (spec.md §4.4's "List methods" recipe — parenthesizing the receiver
// only matters for a literal Go expression the printer would otherwise
// misparse, which a named temporary here sidesteps entirely); anything
// else is a plain Go method call on a class instance.
func (e *Emitter) emitMethodCall(attr *ast.Attribute, call *ast.Call) (string, error) {
	recv, err := e.emitExpr(attr.Value)
	if err != nil {
		return "", err
	}
	recvType := e.exprType(attr.Value)
	if recvType != nil && recvType.Kind == types.ListKind {
		return e.emitListMethod(recv, recvType, attr.Attr, call)
	}
	if recvType != nil && recvType.Kind == types.DictKind {
		return e.emitDictMethod(recv, recvType, attr.Attr, call)
	}
	if recvType != nil && recvType.Kind == types.StringKind {
		return e.emitStringMethod(recv, attr.Attr, call)
	}
	args, err := e.emitArgs(call.Args)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s.%s(%s)", recv, renameIdent(attr.Attr), strings.Join(args, ", ")), nil
}

func (e *Emitter) emitListMethod(recv string, recvType *types.Type, method string, call *ast.Call) (string, error) {
	switch method {
	case "append":
		arg, err := e.emitExpr(call.Args[0])
		if err != nil {
			return "", err
		}
		e.writei(fmt.Sprintf("%sListAppend(%s, __global_allocator, %s)", e.rtPrefix, recv, e.boxExpr(arg, recvType.Elem)))
		return "", nil
	case "pop":
		tmp := e.tmpName()
		e.writei(fmt.Sprintf("%s, err := %sListPop(%s, __global_allocator)", tmp, e.rtPrefix, recv))
		e.writei("if err != nil { panic(err) }")
		return e.unboxExpr(tmp, recvType.Elem), nil
	case "extend":
		arg, err := e.emitExpr(call.Args[0])
		if err != nil {
			return "", err
		}
		itemTmp := e.tmpName()
		e.writei(fmt.Sprintf("for _, %s := range %s.Elems {", itemTmp, arg))
		e.indent++
		e.writei(fmt.Sprintf("%sListAppend(%s, __global_allocator, %s)", e.rtPrefix, recv, itemTmp))
		e.indent--
		e.writei("}")
		return "", nil
	case "insert", "remove", "clear", "sort", "reverse":
		return "", fmt.Errorf("emit: list method %q has no ABI recipe yet", method)
	default:
		return "", fmt.Errorf("emit: unsupported list method %q", method)
	}
}

func (e *Emitter) emitDictMethod(recv string, recvType *types.Type, method string, call *ast.Call) (string, error) {
	switch method {
	case "get":
		keyExpr, err := e.emitExpr(call.Args[0])
		if err != nil {
			return "", err
		}
		tmp := e.tmpName()
		e.writei(fmt.Sprintf("%s, _ := %sDictGet(%s, %s)", tmp, e.rtPrefix, recv, e.boxExpr(keyExpr, recvType.Key)))
		return e.unboxExpr(tmp, recvType.Value), nil
	case "pop":
		keyExpr, err := e.emitExpr(call.Args[0])
		if err != nil {
			return "", err
		}
		tmp := e.tmpName()
		e.writei(fmt.Sprintf("%s, err := %sDictPop(%s, %s)", tmp, e.rtPrefix, recv, e.boxExpr(keyExpr, recvType.Key)))
		e.writei("if err != nil { panic(err) }")
		return e.unboxExpr(tmp, recvType.Value), nil
	case "keys":
		return fmt.Sprintf("%sDictKeys(%s)", e.rtPrefix, recv), nil
	case "values":
		return fmt.Sprintf("%sDictValues(%s)", e.rtPrefix, recv), nil
	case "update", "popitem", "clear", "setdefault":
		return "", fmt.Errorf("emit: dict method %q has no ABI recipe yet", method)
	default:
		return "", fmt.Errorf("emit: unsupported dict method %q", method)
	}
}

func (e *Emitter) emitStringMethod(recv, method string, call *ast.Call) (string, error) {
	args, err := e.emitArgs(call.Args)
	if err != nil {
		return "", err
	}
	joined := strings.Join(args, ", ")
	switch method {
	case "upper":
		return fmt.Sprintf("strings.ToUpper(%s)", recv), nil
	case "lower":
		return fmt.Sprintf("strings.ToLower(%s)", recv), nil
	case "strip":
		return fmt.Sprintf("strings.TrimSpace(%s)", recv), nil
	case "split":
		if len(args) == 0 {
			return fmt.Sprintf("strings.Fields(%s)", recv), nil
		}
		return fmt.Sprintf("strings.Split(%s, %s)", recv, joined), nil
	case "join":
		return fmt.Sprintf("strings.Join(%s, %s)", joined, recv), nil
	case "replace":
		return fmt.Sprintf("strings.ReplaceAll(%s, %s)", recv, joined), nil
	case "startswith":
		return fmt.Sprintf("strings.HasPrefix(%s, %s)", recv, joined), nil
	case "endswith":
		return fmt.Sprintf("strings.HasSuffix(%s, %s)", recv, joined), nil
	case "format":
		return "", fmt.Errorf("emit: str.format() has no ABI recipe yet — use an f-string instead")
	default:
		return "", fmt.Errorf("emit: unsupported string method %q", method)
	}
}

// emitClassInstantiation lowers `ClassName(args)` to a direct struct
// literal when the constructor does nothing beyond assigning
// parameters to same-named fields, or a struct literal plus a
// post-construction initialization block otherwise (spec.md §4.4's
// "Class instantiation" recipe).
func (e *Emitter) emitClassInstantiation(ci *types.ClassInfo, call *ast.Call) (string, error) {
	args, err := e.emitArgs(call.Args)
	if err != nil {
		return "", err
	}
	ctor := e.findInit(ci.Name)
	if ctor == nil || len(ctor.Args) == 0 {
		return fmt.Sprintf("&%s{}", ci.Name), nil
	}
	params := ctor.Args[1:] // drop `self`
	tmp := e.tmpName()
	e.writei(fmt.Sprintf("%s := &%s{}", tmp, ci.Name))
	if e.isTrivialInit(ctor, ci) {
		for i, p := range params {
			if i < len(args) {
				e.writei(fmt.Sprintf("%s.%s = %s", tmp, renameIdent(p.Name), args[i]))
			}
		}
		return tmp, nil
	}
	saved := e.scope
	e.scope = newEmitScope(saved)
	e.scope.renames["self"] = tmp
	for i, p := range params {
		if i < len(args) {
			e.scope.renames[p.Name] = args[i]
		}
	}
	for _, s := range ctor.Body {
		if isSelfFieldAssign(s) {
			continue
		}
		if err := s.Accept(e); err != nil {
			e.scope = saved
			return "", err
		}
	}
	e.scope = saved
	return tmp, nil
}

func (e *Emitter) findInit(className string) *ast.FunctionDef {
	return e.classInits[className]
}

// isTrivialInit reports whether __init__'s body is exactly
// `self.field = param` assignments in some order, letting
// instantiation skip a post-construction block entirely.
func (e *Emitter) isTrivialInit(ctor *ast.FunctionDef, ci *types.ClassInfo) bool {
	for _, s := range ctor.Body {
		if !isSelfFieldAssign(s) {
			return false
		}
	}
	return true
}

func isSelfFieldAssign(s ast.Node) bool {
	assign, ok := s.(*ast.Assign)
	if !ok || len(assign.Targets) != 1 {
		return false
	}
	attr, ok := assign.Targets[0].(*ast.Attribute)
	if !ok {
		return false
	}
	name, ok := attr.Value.(*ast.Name)
	if !ok || name.ID != "self" {
		return false
	}
	_, valueIsName := assign.Value.(*ast.Name)
	return valueIsName
}
