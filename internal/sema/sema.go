// Package sema implements the semantic analyzer's ordered subpasses
// from spec.md §4.3: variable-lifetime, type inference, mutation
// analysis, compile-time evaluation, and closure/closure-factory
// detection. All five run in a single traversal rather than five
// separate ones, since each needs the scope state the others build —
// grounded on the teacher's query_analysis.go, which likewise folds
// several related checks into one pass over a `Query[K,V]`-shaped
// accumulator instead of re-walking the tree per concern.
package sema

import (
	"sort"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/types"
)

// Result is everything the emitter consults once analysis completes.
type Result struct {
	ExprTypes        map[ast.Node]*types.Type
	Folded           map[ast.Node]types.ComptimeValue
	Classes          *types.Registry
	Closures         map[*ast.FunctionDef]bool
	ClosureFactories map[*ast.FunctionDef]bool
	// FreeVars lists, in sorted order, the enclosing-scope names a
	// closure-flagged FunctionDef reads but never binds itself — the
	// capture set the emitter's closure-struct recipe (spec.md §4.4)
	// turns into struct fields.
	FreeVars map[*ast.FunctionDef][]string
	// FreeVarTypes holds each closure-flagged FunctionDef's capture set
	// with its statically inferred type, resolved from the declaring
	// scope at the point the closure body finished walking — the
	// emitter's closure-struct recipe (spec.md §4.4) uses this to type
	// each capture field precisely instead of falling back to Unknown.
	FreeVarTypes map[*ast.FunctionDef]map[string]*types.Type
	// ArrayEligible maps each list literal bound by a single-name
	// assignment to true when that name was never observed to be
	// mutated (via a mutating method call, re-binding through a call
	// argument, or element assignment), false otherwise — the emitter's
	// representation-choice table (spec.md §4.4) uses this to decide
	// Array{T,N} over a growable List{T}.
	ArrayEligible map[*ast.List]bool
}

type listBinding struct {
	name string
	node *ast.List
}

// Analyzer carries the mutable state threaded through the single
// traversal. It implements ast.Visitor, embedding BaseVisitor so only
// the node kinds that matter to semantic analysis need overriding.
type Analyzer struct {
	ast.BaseVisitor

	scope        *scope
	classes      *types.Registry
	currentClass *types.ClassInfo

	exprTypes map[ast.Node]*types.Type
	folded    map[ast.Node]types.ComptimeValue
	mutated   map[string]bool

	closures         map[*ast.FunctionDef]bool
	closureFactories map[*ast.FunctionDef]bool
	freeVars         map[*ast.FunctionDef][]string
	freeVarTypes     map[*ast.FunctionDef]map[string]*types.Type
	listBindings     []listBinding
}

// Analyze runs the full semantic pass over a parsed module.
func Analyze(mod *ast.Module) (*Result, error) {
	a := &Analyzer{
		scope:            newScope(nil, nil),
		classes:          types.NewRegistry(),
		exprTypes:        map[ast.Node]*types.Type{},
		folded:           map[ast.Node]types.ComptimeValue{},
		mutated:          map[string]bool{},
		closures:         map[*ast.FunctionDef]bool{},
		closureFactories: map[*ast.FunctionDef]bool{},
		freeVars:         map[*ast.FunctionDef][]string{},
		freeVarTypes:     map[*ast.FunctionDef]map[string]*types.Type{},
	}
	if err := a.visitStmts(mod.Body); err != nil {
		return nil, err
	}
	arrayEligible := map[*ast.List]bool{}
	for _, lb := range a.listBindings {
		arrayEligible[lb.node] = !a.mutated[lb.name]
	}
	return &Result{
		ExprTypes:        a.exprTypes,
		Folded:           a.folded,
		Classes:          a.classes,
		Closures:         a.closures,
		ClosureFactories: a.closureFactories,
		FreeVars:         a.freeVars,
		FreeVarTypes:     a.freeVarTypes,
		ArrayEligible:    arrayEligible,
	}, nil
}

func (a *Analyzer) markMutated(name string) { a.mutated[name] = true }

func (a *Analyzer) visitStmts(stmts []ast.Node) error {
	for _, s := range stmts {
		if err := s.Accept(a); err != nil {
			return err
		}
	}
	return nil
}

// ---- statement visitors ----

func (a *Analyzer) VisitAssign(n *ast.Assign) error {
	valType, err := a.inferExpr(n.Value)
	if err != nil {
		return err
	}
	for _, tgt := range n.Targets {
		a.bindTarget(tgt, valType)
	}
	if lst, ok := n.Value.(*ast.List); ok {
		if len(n.Targets) == 1 {
			if name, ok := n.Targets[0].(*ast.Name); ok {
				a.listBindings = append(a.listBindings, listBinding{name: name.ID, node: lst})
			}
		}
	}
	return nil
}

func (a *Analyzer) VisitAnnAssign(n *ast.AnnAssign) error {
	declared := resolveAnnotation(n.Annotation)
	t := declared
	if n.Value != nil {
		valType, err := a.inferExpr(n.Value)
		if err != nil {
			return err
		}
		if declared.IsUnknown() {
			t = valType
		}
	}
	a.bindTarget(n.Target, t)
	return nil
}

func (a *Analyzer) VisitAugAssign(n *ast.AugAssign) error {
	rhs, err := a.inferExpr(n.Value)
	if err != nil {
		return err
	}
	if name, ok := n.Target.(*ast.Name); ok {
		cur, _ := a.scope.lookup(name.ID)
		a.scope.declare(name.ID, types.Widen(cur, rhs))
		a.markMutated(name.ID)
	}
	return nil
}

func (a *Analyzer) VisitExprStmt(n *ast.ExprStmt) error {
	_, err := a.inferExpr(n.Value)
	return err
}

func (a *Analyzer) VisitReturn(n *ast.Return) error {
	if n.Value == nil {
		return nil
	}
	_, err := a.inferExpr(n.Value)
	if err != nil {
		return err
	}
	if name, ok := n.Value.(*ast.Name); ok {
		if fn, ok := a.scope.lookupLocalDef(name.ID); ok && a.closures[fn] {
			if a.scope.funcDef != nil {
				a.closureFactories[a.scope.funcDef] = true
			}
		}
	}
	return nil
}

func (a *Analyzer) VisitIf(n *ast.If) error {
	if _, err := a.inferExpr(n.Cond); err != nil {
		return err
	}
	if err := a.visitStmts(n.Body); err != nil {
		return err
	}
	return a.visitStmts(n.Else)
}

func (a *Analyzer) VisitWhile(n *ast.While) error {
	if _, err := a.inferExpr(n.Cond); err != nil {
		return err
	}
	return a.visitStmts(n.Body)
}

func (a *Analyzer) VisitFor(n *ast.For) error {
	iterType, err := a.inferExpr(n.Iter)
	if err != nil {
		return err
	}
	a.bindTarget(n.Target, elementType(iterType))
	return a.visitStmts(n.Body)
}

func (a *Analyzer) VisitWith(n *ast.With) error {
	if _, err := a.inferExpr(n.Ctx); err != nil {
		return err
	}
	if n.As != nil {
		a.bindTarget(n.As, types.Unknown())
	}
	return a.visitStmts(n.Body)
}

func (a *Analyzer) VisitTryStmt(n *ast.TryStmt) error {
	if err := a.visitStmts(n.Body); err != nil {
		return err
	}
	for _, h := range n.Handlers {
		if h.Name != "" {
			a.scope.declare(h.Name, types.Unknown())
		}
		if err := a.visitStmts(h.Body); err != nil {
			return err
		}
	}
	if err := a.visitStmts(n.Else); err != nil {
		return err
	}
	return a.visitStmts(n.Finally)
}

func (a *Analyzer) VisitAssert(n *ast.Assert) error {
	if _, err := a.inferExpr(n.Cond); err != nil {
		return err
	}
	if n.Msg != nil {
		_, err := a.inferExpr(n.Msg)
		return err
	}
	return nil
}

func (a *Analyzer) VisitDel(n *ast.Del) error {
	for _, t := range n.Targets {
		if name, ok := t.(*ast.Name); ok {
			a.markMutated(name.ID)
		}
	}
	return nil
}

func (a *Analyzer) VisitRaise(n *ast.Raise) error {
	if n.Exc == nil {
		return nil
	}
	_, err := a.inferExpr(n.Exc)
	return err
}

func (a *Analyzer) VisitFunctionDef(n *ast.FunctionDef) error {
	child := newScope(a.scope, n)
	for _, arg := range n.Args {
		child.vars[arg.Name] = resolveAnnotation(arg.Annotation)
	}
	a.scope.localDefs[n.Name] = n

	saved := a.scope
	a.scope = child
	if err := a.visitStmts(n.Body); err != nil {
		a.scope = saved
		return err
	}
	a.scope = saved

	if len(child.free) > 0 {
		a.closures[n] = true
		names := make([]string, 0, len(child.free))
		types_ := map[string]*types.Type{}
		for name := range child.free {
			names = append(names, name)
			if t, ok := saved.lookup(name); ok {
				types_[name] = t
			}
		}
		sort.Strings(names)
		a.freeVars[n] = names
		a.freeVarTypes[n] = types_
	}
	return nil
}

func (a *Analyzer) VisitClassDef(n *ast.ClassDef) error {
	ci := a.classes.GetOrCreate(n.Name)
	savedClass := a.currentClass
	a.currentClass = ci

	child := newScope(a.scope, nil)
	saved := a.scope
	a.scope = child
	err := a.visitStmts(n.Body)
	a.scope = saved
	a.currentClass = savedClass
	return err
}

func (a *Analyzer) VisitGlobal(n *ast.Global) error { return nil }
func (a *Analyzer) VisitPass(n *ast.Pass) error     { return nil }
func (a *Analyzer) VisitBreak(n *ast.Break) error   { return nil }
func (a *Analyzer) VisitContinue(n *ast.Continue) error { return nil }
func (a *Analyzer) VisitImportStmt(n *ast.ImportStmt) error { return nil }
func (a *Analyzer) VisitImportFrom(n *ast.ImportFrom) error { return nil }

// bindTarget declares (or mutates) whatever an assignment/for/with
// target refers to: a plain name, a tuple-unpack (spec.md §4.2), a
// `self.field` attribute (recorded on the enclosing ClassInfo), or a
// subscript (container-element mutation).
func (a *Analyzer) bindTarget(target ast.Node, valType *types.Type) {
	switch t := target.(type) {
	case *ast.Name:
		a.scope.declare(t.ID, valType)
	case *ast.Starred:
		a.bindTarget(t.Value, valType)
	case *ast.Tuple:
		var elemTypes []*types.Type
		if valType != nil && valType.Kind == types.TupleKind && len(valType.Elems) == len(t.Elts) {
			elemTypes = valType.Elems
		}
		for i, e := range t.Elts {
			et := types.Unknown()
			if elemTypes != nil {
				et = elemTypes[i]
			}
			a.bindTarget(e, et)
		}
	case *ast.Attribute:
		if name, ok := t.Value.(*ast.Name); ok && name.ID == "self" && a.currentClass != nil {
			a.currentClass.Declare(t.Attr, valType)
			return
		}
		if name, ok := t.Value.(*ast.Name); ok {
			a.markMutated(name.ID)
		}
	case *ast.Subscript:
		if name, ok := t.Value.(*ast.Name); ok {
			a.markMutated(name.ID)
		}
	}
}

// resolveAnnotation maps a parsed type-annotation string to a
// NativeType. Unrecognized names are treated as class names.
func resolveAnnotation(ann string) *types.Type {
	switch ann {
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
	case "None":
		return types.None()
	case "list", "List":
		return types.List(types.Unknown())
	case "dict", "Dict":
		return types.Dict(types.Unknown(), types.Unknown())
	default:
		return types.ClassInstance(ann)
	}
}

// elementType reports the type a for-loop target receives when
// iterating over t.
func elementType(t *types.Type) *types.Type {
	if t == nil {
		return types.Unknown()
	}
	switch t.Kind {
	case types.ArrayKind, types.ListKind:
		return t.Elem
	case types.DictKind:
		return t.Key
	case types.StringKind:
		return types.String()
	default:
		return types.Unknown()
	}
}
