package emit

import (
	"fmt"
	"strings"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/types"
)

// emitExpr lowers an expression node to a single Go expression string.
// A plain type-switch function rather than a Visitor method, for the
// same reason internal/sema's inferExpr is: VisitX(*X) error can't
// hand a value back to its caller.
func (e *Emitter) emitExpr(n ast.Node) (string, error) {
	if v, ok := e.folded(n); ok {
		if lit, ok := literalFor(v); ok {
			return lit, nil
		}
	}
	switch x := n.(type) {
	case *ast.Constant:
		return e.emitConstant(x)
	case *ast.Name:
		return e.scope.rename(x.ID), nil
	case *ast.NamedExpr:
		return e.emitNamedExpr(x)
	case *ast.BinOp:
		return e.emitBinOp(x)
	case *ast.BoolOp:
		return e.emitBoolOp(x)
	case *ast.UnaryOp:
		return e.emitUnaryOp(x)
	case *ast.Compare:
		return e.emitCompare(x)
	case *ast.Call:
		return e.emitCall(x)
	case *ast.Subscript:
		return e.emitSubscript(x)
	case *ast.Attribute:
		return e.emitAttribute(x)
	case *ast.List:
		return e.emitListLiteral(x)
	case *ast.Tuple:
		return e.emitTupleLiteral(x)
	case *ast.Set:
		return e.emitSetLiteral(x)
	case *ast.Dict:
		return e.emitDictLiteral(x)
	case *ast.FString:
		return e.emitFString(x)
	case *ast.Starred:
		inner, err := e.emitExpr(x.Value)
		if err != nil {
			return "", err
		}
		return "..." + inner, nil
	case *ast.Lambda:
		return e.emitLambda(x)
	case *ast.ListComp:
		return e.emitListComp(x)
	case *ast.GenExp:
		return e.emitListComp(&ast.ListComp{Elt: x.Elt, Generators: x.Generators})
	case *ast.DictComp:
		return e.emitDictComp(x)
	case *ast.AwaitExpr:
		return e.emitExpr(x.Value)
	case *ast.Assign:
		// Keyword call argument (`f(x=1)`), per internal/sema's own
		// inferExpr convention — only the value matters to emission;
		// the callee-side binding is positional in emitted Go.
		return e.emitExpr(x.Value)
	default:
		return "", fmt.Errorf("emit: unsupported expression %s", n.String())
	}
}

func literalFor(v types.ComptimeValue) (string, bool) {
	switch v.Kind {
	case types.CVInt:
		return fmt.Sprintf("int64(%d)", v.IntVal), true
	case types.CVFloat:
		return fmt.Sprintf("%g", v.FltVal), true
	case types.CVBool:
		if v.BolVal {
			return "true", true
		}
		return "false", true
	case types.CVString:
		return escapeGoString(v.StrVal), true
	case types.CVNone:
		return "nil", true
	default:
		return "", false
	}
}

func (e *Emitter) emitConstant(n *ast.Constant) (string, error) {
	switch n.Kind {
	case ast.ConstInt:
		return fmt.Sprintf("int64(%d)", n.IntVal), nil
	case ast.ConstFloat:
		return fmt.Sprintf("%g", n.FltVal), nil
	case ast.ConstBool:
		if n.BolVal {
			return "true", nil
		}
		return "false", nil
	case ast.ConstString:
		return escapeGoString(n.StrVal), nil
	case ast.ConstNone:
		return "nil", nil
	default:
		return "", fmt.Errorf("emit: unknown constant kind")
	}
}

// emitNamedExpr lowers a walrus assignment (`x := value` in Python
// syntax). Go has no assignment expression outside `if`/`for`/`switch`
// init-statements, so a NamedExpr used in a general expression
// position is lowered to an immediately-invoked function that performs
// the bind and yields the value — the same IIFE shape comprehensions
// use.
func (e *Emitter) emitNamedExpr(n *ast.NamedExpr) (string, error) {
	valExpr, err := e.emitExpr(n.Value)
	if err != nil {
		return "", err
	}
	name, ok := n.Target.(*ast.Name)
	if !ok {
		return "", fmt.Errorf("emit: named expression target must be a name")
	}
	id := e.scope.rename(name.ID)
	t := goType(e.exprType(n))
	return fmt.Sprintf("func() %s { %s = %s; return %s }()", t, id, valExpr, id), nil
}

func (e *Emitter) emitBinOp(n *ast.BinOp) (string, error) {
	l, err := e.emitExpr(n.Left)
	if err != nil {
		return "", err
	}
	r, err := e.emitExpr(n.Right)
	if err != nil {
		return "", err
	}
	lt := e.exprType(n.Left)
	if n.Op == "+" && lt != nil && lt.Kind == types.StringKind {
		return e.emitConcat(n)
	}
	switch n.Op {
	case "//":
		return fmt.Sprintf("%sFloorDiv(%s, %s)", e.rtPrefix, l, r), nil
	case "%":
		if lt != nil && lt.Kind == types.FloatKind {
			return fmt.Sprintf("math.Mod(%s, %s)", l, r), nil
		}
		return fmt.Sprintf("%sFloorMod(%s, %s)", e.rtPrefix, l, r), nil
	case "**":
		return fmt.Sprintf("math.Pow(%s, %s)", l, r), nil
	}
	return fmt.Sprintf("(%s %s %s)", l, n.Op, r), nil
}

// emitConcat flattens a left-associative chain of string `+` into a
// single Concat call, per spec.md §4.4's "String concatenation"
// recipe, bound to a temporary. No free is emitted for the result.
func (e *Emitter) emitConcat(n *ast.BinOp) (string, error) {
	parts, err := e.flattenConcat(n)
	if err != nil {
		return "", err
	}
	// Concat's result is a plain Go string, not a *DynObject — nothing
	// to Decref; Go's GC reclaims it like any other value.
	tmp := e.tmpName()
	e.writei(fmt.Sprintf("%s := %sConcat(__global_allocator, []string{%s})", tmp, e.rtPrefix, strings.Join(parts, ", ")))
	return tmp, nil
}

func (e *Emitter) flattenConcat(n ast.Node) ([]string, error) {
	if bo, ok := n.(*ast.BinOp); ok && bo.Op == "+" {
		lt := e.exprType(bo.Left)
		if lt != nil && lt.Kind == types.StringKind {
			left, err := e.flattenConcat(bo.Left)
			if err != nil {
				return nil, err
			}
			right, err := e.flattenConcat(bo.Right)
			if err != nil {
				return nil, err
			}
			return append(left, right...), nil
		}
	}
	expr, err := e.emitExpr(n)
	if err != nil {
		return nil, err
	}
	return []string{expr}, nil
}

func (e *Emitter) emitBoolOp(n *ast.BoolOp) (string, error) {
	op := "&&"
	if n.Op == "or" {
		op = "||"
	}
	parts := make([]string, len(n.Values))
	for i, v := range n.Values {
		expr, err := e.emitExpr(v)
		if err != nil {
			return "", err
		}
		parts[i] = expr
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")", nil
}

func (e *Emitter) emitUnaryOp(n *ast.UnaryOp) (string, error) {
	operand, err := e.emitExpr(n.Operand)
	if err != nil {
		return "", err
	}
	switch n.Op {
	case "not":
		return "!(" + operand + ")", nil
	case "-", "+", "~":
		return n.Op + operand, nil
	default:
		return "", fmt.Errorf("emit: unsupported unary operator %q", n.Op)
	}
}

func (e *Emitter) emitCompare(n *ast.Compare) (string, error) {
	left, err := e.emitExpr(n.Left)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(n.Ops))
	prevType := e.exprType(n.Left)
	prev := left
	for i, op := range n.Ops {
		right, err := e.emitExpr(n.Comparators[i])
		if err != nil {
			return "", err
		}
		rightType := e.exprType(n.Comparators[i])
		cmp, err := e.compareOp(op, prev, right, prevType, rightType)
		if err != nil {
			return "", err
		}
		parts = append(parts, cmp)
		prev, prevType = right, rightType
	}
	return "(" + strings.Join(parts, " && ") + ")", nil
}

func (e *Emitter) compareOp(op, l, r string, lt, rt *types.Type) (string, error) {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return fmt.Sprintf("(%s %s %s)", l, op, r), nil
	case "in":
		return e.membershipTest(l, r, lt, rt, false)
	case "not in":
		return e.membershipTest(l, r, lt, rt, true)
	case "is":
		return fmt.Sprintf("(%s == %s)", l, r), nil
	case "is not":
		return fmt.Sprintf("(%s != %s)", l, r), nil
	default:
		return "", fmt.Errorf("emit: unsupported comparison operator %q", op)
	}
}

func (e *Emitter) membershipTest(l, r string, lt, rt *types.Type, negate bool) (string, error) {
	var expr string
	if rt != nil && rt.Kind == types.DictKind {
		expr = fmt.Sprintf("%sDictHas(%s, %s)", e.rtPrefix, r, e.boxExpr(l, lt))
	} else {
		expr = fmt.Sprintf("%sListContains(%s, %s)", e.rtPrefix, r, e.boxExpr(l, lt))
	}
	if negate {
		return "!" + expr, nil
	}
	return expr, nil
}

// boxExpr wraps a scalar Go value into a *runtime.DynObject for
// passing into a container whose element type is Unknown; for already
// known, non-boxed representations it's the identity.
func (e *Emitter) boxExpr(expr string, t *types.Type) string {
	if t == nil || t.IsUnknown() {
		return expr
	}
	switch t.Kind {
	case types.IntKind:
		return fmt.Sprintf("%sNewDynInt(%s)", e.rtPrefix, expr)
	case types.FloatKind:
		return fmt.Sprintf("%sNewDynFloat(%s)", e.rtPrefix, expr)
	case types.BoolKind:
		return fmt.Sprintf("%sNewDynBool(%s)", e.rtPrefix, expr)
	case types.StringKind:
		return fmt.Sprintf("%sNewDynString(%s)", e.rtPrefix, expr)
	default:
		return expr
	}
}

// unboxExpr is boxExpr's inverse: given a *DynObject-typed expression
// and the element's statically-known type, emit the typed accessor.
func (e *Emitter) unboxExpr(expr string, t *types.Type) string {
	if t == nil || t.IsUnknown() {
		return expr
	}
	switch t.Kind {
	case types.IntKind:
		return expr + ".IntVal"
	case types.FloatKind:
		return expr + ".FloatVal"
	case types.BoolKind:
		return expr + ".BoolVal"
	case types.StringKind:
		return expr + ".StringVal"
	default:
		return expr
	}
}
