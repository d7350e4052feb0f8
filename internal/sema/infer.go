package sema

import (
	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/types"
)

// builtinReturnTypes covers the handful of builtins whose return type
// is fixed regardless of argument shape (spec.md §4.3's inference
// table). Builtins not listed here infer to Unknown.
var builtinReturnTypes = map[string]*types.Type{
	"len":   types.Int(),
	"str":   types.String(),
	"int":   types.Int(),
	"float": types.Float(),
	"bool":  types.Bool(),
}

// mutatingListMethods are attribute names that mutate their receiver
// in place when called — spec.md §4.3's conservative mutation pass
// marks the receiving name as mutated on sight of any of these,
// regardless of what the call actually does with its arguments.
var mutatingListMethods = map[string]bool{
	"append": true, "extend": true, "insert": true, "pop": true,
	"remove": true, "clear": true, "sort": true, "reverse": true,
}

var mutatingDictMethods = map[string]bool{
	"update": true, "pop": true, "popitem": true, "clear": true, "setdefault": true,
}

// inferExpr computes n's NativeType bottom-up, recording it in
// a.exprTypes and folding it into a.folded when every subexpression is
// a compile-time constant. It is a plain function rather than a
// Visitor method since Visitor's VisitX(*X) error signature has no way
// to return the inferred type to its caller.
func (a *Analyzer) inferExpr(n ast.Node) (*types.Type, error) {
	if n == nil {
		return types.Unknown(), nil
	}
	t, err := a.inferExprUncached(n)
	if err != nil {
		return nil, err
	}
	a.exprTypes[n] = t
	return t, nil
}

func (a *Analyzer) inferExprUncached(n ast.Node) (*types.Type, error) {
	switch e := n.(type) {
	case *ast.Constant:
		return a.inferConstant(e), nil

	case *ast.Name:
		if t, ok := a.scope.lookup(e.ID); ok {
			return t, nil
		}
		return types.Unknown(), nil

	case *ast.NamedExpr:
		v, err := a.inferExpr(e.Value)
		if err != nil {
			return nil, err
		}
		a.bindTarget(e.Target, v)
		return v, nil

	case *ast.BinOp:
		return a.inferBinOp(e)

	case *ast.BoolOp:
		for _, v := range e.Values {
			if _, err := a.inferExpr(v); err != nil {
				return nil, err
			}
		}
		return types.Bool(), nil

	case *ast.UnaryOp:
		operand, err := a.inferExpr(e.Operand)
		if err != nil {
			return nil, err
		}
		if e.Op == "not" {
			return types.Bool(), nil
		}
		if cv, ok := a.folded[e.Operand]; ok {
			if folded, ok := foldUnary(e.Op, cv); ok {
				a.folded[e] = folded
			}
		}
		return operand, nil

	case *ast.Compare:
		if _, err := a.inferExpr(e.Left); err != nil {
			return nil, err
		}
		for _, c := range e.Comparators {
			if _, err := a.inferExpr(c); err != nil {
				return nil, err
			}
		}
		return types.Bool(), nil

	case *ast.Call:
		return a.inferCall(e)

	case *ast.Subscript:
		valType, err := a.inferExpr(e.Value)
		if err != nil {
			return nil, err
		}
		if _, err := a.inferExpr(e.Slice); err != nil {
			return nil, err
		}
		if _, ok := e.Slice.(*ast.Slice); ok {
			return valType, nil
		}
		return elementType(valType), nil

	case *ast.Attribute:
		valType, err := a.inferExpr(e.Value)
		if err != nil {
			return nil, err
		}
		if valType != nil && valType.Kind == types.ClassInstanceKind {
			if ci, ok := a.classes.Get(valType.Name); ok {
				return ci.FieldType(e.Attr), nil
			}
		}
		return types.Unknown(), nil

	case *ast.List:
		elem := types.Unknown()
		for _, el := range e.Elts {
			t, err := a.inferExpr(el)
			if err != nil {
				return nil, err
			}
			elem = types.Widen(elem, t)
		}
		return types.List(elem), nil

	case *ast.Tuple:
		elems := make([]*types.Type, len(e.Elts))
		for i, el := range e.Elts {
			t, err := a.inferExpr(el)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return types.Tuple(elems...), nil

	case *ast.Set:
		elem := types.Unknown()
		for _, el := range e.Elts {
			t, err := a.inferExpr(el)
			if err != nil {
				return nil, err
			}
			elem = types.Widen(elem, t)
		}
		return types.List(elem), nil

	case *ast.Dict:
		key, val := types.Unknown(), types.Unknown()
		for i := range e.Keys {
			if e.Keys[i] != nil {
				kt, err := a.inferExpr(e.Keys[i])
				if err != nil {
					return nil, err
				}
				key = types.Widen(key, kt)
			}
			vt, err := a.inferExpr(e.Values[i])
			if err != nil {
				return nil, err
			}
			val = types.Widen(val, vt)
		}
		return types.Dict(key, val), nil

	case *ast.FString:
		for _, part := range e.Parts {
			if part.Expr != nil {
				if _, err := a.inferExpr(part.Expr); err != nil {
					return nil, err
				}
			}
		}
		return types.String(), nil

	case *ast.Starred:
		return a.inferExpr(e.Value)

	case *ast.Slice:
		for _, sub := range []ast.Node{e.Lower, e.Upper, e.Step} {
			if sub != nil {
				if _, err := a.inferExpr(sub); err != nil {
					return nil, err
				}
			}
		}
		return types.Unknown(), nil

	case *ast.Index:
		return a.inferExpr(e.Value)

	case *ast.Lambda:
		child := newScope(a.scope, nil)
		for _, arg := range e.Args {
			child.vars[arg.Name] = types.Unknown()
		}
		saved := a.scope
		a.scope = child
		ret, err := a.inferExpr(e.Body)
		a.scope = saved
		if err != nil {
			return nil, err
		}
		params := make([]*types.Type, len(e.Args))
		for i := range e.Args {
			params[i] = types.Unknown()
		}
		return types.Function(params, ret), nil

	case *ast.ListComp:
		elt, err := a.inferComprehension(e.Generators, e.Elt)
		if err != nil {
			return nil, err
		}
		return types.List(elt), nil

	case *ast.GenExp:
		elt, err := a.inferComprehension(e.Generators, e.Elt)
		if err != nil {
			return nil, err
		}
		return types.List(elt), nil

	case *ast.DictComp:
		child := newScope(a.scope, nil)
		saved := a.scope
		a.scope = child
		for _, gen := range e.Generators {
			iterType, err := a.inferExpr(gen.Iter)
			if err != nil {
				a.scope = saved
				return nil, err
			}
			a.bindTarget(gen.Target, elementType(iterType))
			for _, cond := range gen.Ifs {
				if _, err := a.inferExpr(cond); err != nil {
					a.scope = saved
					return nil, err
				}
			}
		}
		kt, err := a.inferExpr(e.Key)
		if err != nil {
			a.scope = saved
			return nil, err
		}
		vt, err := a.inferExpr(e.Value)
		a.scope = saved
		if err != nil {
			return nil, err
		}
		return types.Dict(kt, vt), nil

	case *ast.AwaitExpr:
		return a.inferExpr(e.Value)

	case *ast.Assign:
		// A keyword call argument (`f(x=1)`), encoded as a single-
		// target Assign per the parser's call-argument convention —
		// there is no dedicated Keyword node. Its type is its value's.
		return a.inferExpr(e.Value)

	default:
		return types.Unknown(), nil
	}
}

func (a *Analyzer) inferComprehension(gens []ast.Comprehension, elt ast.Node) (*types.Type, error) {
	child := newScope(a.scope, nil)
	saved := a.scope
	a.scope = child
	defer func() { a.scope = saved }()

	for _, gen := range gens {
		iterType, err := a.inferExpr(gen.Iter)
		if err != nil {
			return nil, err
		}
		a.bindTarget(gen.Target, elementType(iterType))
		for _, cond := range gen.Ifs {
			if _, err := a.inferExpr(cond); err != nil {
				return nil, err
			}
		}
	}
	return a.inferExpr(elt)
}

// foldUnary folds `-x`/`+x`/`~x` over an already-folded operand.
// UnaryOp spans "**" spread too (ast.UnaryOp("**", v) per the call-
// argument encoding), which is never foldable and falls through.
func foldUnary(op string, v types.ComptimeValue) (types.ComptimeValue, bool) {
	if !v.IsFoldable() {
		return types.ComptimeValue{}, false
	}
	switch op {
	case "-":
		if v.Kind == types.CVInt {
			return types.CInt(-v.IntVal), true
		}
		if v.Kind == types.CVFloat {
			return types.CFloat(-v.FltVal), true
		}
	case "+":
		if v.Kind == types.CVInt || v.Kind == types.CVFloat {
			return v, true
		}
	case "~":
		if v.Kind == types.CVInt {
			return types.CInt(^v.IntVal), true
		}
	}
	return types.ComptimeValue{}, false
}

func (a *Analyzer) inferConstant(c *ast.Constant) *types.Type {
	switch c.Kind {
	case ast.ConstInt:
		a.folded[c] = types.CInt(c.IntVal)
		return types.Int()
	case ast.ConstFloat:
		a.folded[c] = types.CFloat(c.FltVal)
		return types.Float()
	case ast.ConstBool:
		a.folded[c] = types.CBool(c.BolVal)
		return types.Bool()
	case ast.ConstString:
		a.folded[c] = types.CString(c.StrVal)
		return types.String()
	default:
		a.folded[c] = types.CNone()
		return types.None()
	}
}

func (a *Analyzer) inferBinOp(e *ast.BinOp) (*types.Type, error) {
	lt, err := a.inferExpr(e.Left)
	if err != nil {
		return nil, err
	}
	rt, err := a.inferExpr(e.Right)
	if err != nil {
		return nil, err
	}
	if lv, ok := a.folded[e.Left]; ok {
		if rv, ok := a.folded[e.Right]; ok {
			if folded, ok := types.FoldBinOp(e.Op, lv, rv); ok {
				a.folded[e] = folded
			}
		}
	}
	switch e.Op {
	case "<", "<=", ">", ">=", "==", "!=":
		return types.Bool(), nil
	}
	return types.Widen(lt, rt), nil
}

func (a *Analyzer) inferCall(e *ast.Call) (*types.Type, error) {
	for _, arg := range e.Args {
		at, err := a.inferExpr(arg)
		if err != nil {
			return nil, err
		}
		// Any list-typed argument is conservatively marked mutated:
		// the callee might append/clear/reassign through it and this
		// pass does not look inside the callee to check (spec.md
		// §4.3's inter-procedural aliasing is resolved conservatively;
		// see DESIGN.md).
		if assignTarget, ok := arg.(*ast.Name); ok && at != nil && at.Kind == types.ListKind {
			a.markMutated(assignTarget.ID)
		}
	}

	switch fn := e.Func.(type) {
	case *ast.Name:
		if t, ok := builtinReturnTypes[fn.ID]; ok {
			return t, nil
		}
		if ci, ok := a.classes.Get(fn.ID); ok {
			return types.ClassInstance(ci.Name), nil
		}
		if cur, ok := a.scope.lookup(fn.ID); ok && cur != nil && cur.Kind == types.FunctionKind {
			return cur.Ret, nil
		}
		return types.Unknown(), nil

	case *ast.Attribute:
		recv, err := a.inferExpr(fn.Value)
		if err != nil {
			return nil, err
		}
		if name, ok := fn.Value.(*ast.Name); ok {
			if (recv != nil && recv.Kind == types.ListKind && mutatingListMethods[fn.Attr]) ||
				(recv != nil && recv.Kind == types.DictKind && mutatingDictMethods[fn.Attr]) {
				a.markMutated(name.ID)
			}
		}
		return a.inferMethodCall(recv, fn.Attr), nil

	default:
		if _, err := a.inferExpr(e.Func); err != nil {
			return nil, err
		}
		return types.Unknown(), nil
	}
}

// inferMethodCall covers built-in container/string method return
// types the emitter's representation table needs pinned down ahead of
// time (spec.md §4.4).
func (a *Analyzer) inferMethodCall(recv *types.Type, method string) *types.Type {
	if recv == nil {
		return types.Unknown()
	}
	switch recv.Kind {
	case types.ListKind:
		switch method {
		case "pop":
			return recv.Elem
		case "count", "index":
			return types.Int()
		case "copy":
			return recv
		}
	case types.StringKind:
		switch method {
		case "upper", "lower", "strip", "replace", "join", "format":
			return types.String()
		case "split":
			return types.List(types.String())
		case "find", "count":
			return types.Int()
		}
	case types.DictKind:
		switch method {
		case "get":
			return recv.Value
		case "keys":
			return types.List(recv.Key)
		case "values":
			return types.List(recv.Value)
		case "items":
			return types.List(types.Tuple(recv.Key, recv.Value))
		case "pop":
			return recv.Value
		}
	}
	return types.Unknown()
}
