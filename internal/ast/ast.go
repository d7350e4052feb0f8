// Package ast defines the Vex abstract syntax tree: a tagged-sum tree
// where each node owns its children, following spec.md §3.2. The
// per-kind struct + Accept(Visitor) shape is grounded on the teacher's
// grammar AST (clarete-langlang/go/grammar_ast.go), generalized from
// its fixed PEG node set to the exhaustive statement/expression set
// spec.md §3.2 requires.
package ast

import "fmt"

// Node is implemented by every AST node kind. Equal compares
// structure only (node kind and children), ignoring source position,
// so that two parses of differently-formatted-but-equivalent source
// can be asserted equal (spec.md §8 property 7).
type Node interface {
	Line() int
	Col() int
	Accept(Visitor) error
	Equal(Node) bool
	String() string
}

type pos struct {
	line, col int
}

func (p pos) Line() int { return p.line }
func (p pos) Col() int  { return p.col }

func at(line, col int) pos { return pos{line: line, col: col} }

// ConstKind discriminates the value carried by a Constant node.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstBool
	ConstString
	ConstNone
)

// Arg is a single function/lambda parameter: (name, type_annotation?, default?).
type Arg struct {
	Name       string
	Annotation string // "" if absent
	Default    Node   // nil if absent
	IsStar     bool   // *args
	IsDoubleStar bool // **kwargs
}

// Comprehension is one `for target in iter if ...` clause of a
// comprehension or generator expression.
type Comprehension struct {
	Target Node
	Iter   Node
	Ifs    []Node
}

// ---- Module & statements ----

type Module struct {
	pos
	Body []Node
}

func (n *Module) Accept(v Visitor) error { return v.VisitModule(n) }
func (n *Module) String() string         { return "Module" }
func (n *Module) Equal(o Node) bool {
	other, ok := o.(*Module)
	return ok && equalSlices(n.Body, other.Body)
}

type Assign struct {
	pos
	Targets []Node
	Value   Node
}

func (n *Assign) Accept(v Visitor) error { return v.VisitAssign(n) }
func (n *Assign) String() string         { return "Assign" }
func (n *Assign) Equal(o Node) bool {
	other, ok := o.(*Assign)
	return ok && equalSlices(n.Targets, other.Targets) && equalNode(n.Value, other.Value)
}

type AnnAssign struct {
	pos
	Target     Node
	Annotation string
	Value      Node // nil if absent
}

func (n *AnnAssign) Accept(v Visitor) error { return v.VisitAnnAssign(n) }
func (n *AnnAssign) String() string         { return "AnnAssign" }
func (n *AnnAssign) Equal(o Node) bool {
	other, ok := o.(*AnnAssign)
	return ok && equalNode(n.Target, other.Target) && n.Annotation == other.Annotation && equalNode(n.Value, other.Value)
}

type AugAssign struct {
	pos
	Target Node
	Op     string
	Value  Node
}

func (n *AugAssign) Accept(v Visitor) error { return v.VisitAugAssign(n) }
func (n *AugAssign) String() string         { return "AugAssign(" + n.Op + ")" }
func (n *AugAssign) Equal(o Node) bool {
	other, ok := o.(*AugAssign)
	return ok && equalNode(n.Target, other.Target) && n.Op == other.Op && equalNode(n.Value, other.Value)
}

type ExprStmt struct {
	pos
	Value Node
}

func (n *ExprStmt) Accept(v Visitor) error { return v.VisitExprStmt(n) }
func (n *ExprStmt) String() string         { return "ExprStmt" }
func (n *ExprStmt) Equal(o Node) bool {
	other, ok := o.(*ExprStmt)
	return ok && equalNode(n.Value, other.Value)
}

type Return struct {
	pos
	Value Node // nil if bare return
}

func (n *Return) Accept(v Visitor) error { return v.VisitReturn(n) }
func (n *Return) String() string         { return "Return" }
func (n *Return) Equal(o Node) bool {
	other, ok := o.(*Return)
	return ok && equalNode(n.Value, other.Value)
}

type If struct {
	pos
	Cond Node
	Body []Node
	Else []Node
}

func (n *If) Accept(v Visitor) error { return v.VisitIf(n) }
func (n *If) String() string         { return "If" }
func (n *If) Equal(o Node) bool {
	other, ok := o.(*If)
	return ok && equalNode(n.Cond, other.Cond) && equalSlices(n.Body, other.Body) && equalSlices(n.Else, other.Else)
}

type While struct {
	pos
	Cond Node
	Body []Node
}

func (n *While) Accept(v Visitor) error { return v.VisitWhile(n) }
func (n *While) String() string         { return "While" }
func (n *While) Equal(o Node) bool {
	other, ok := o.(*While)
	return ok && equalNode(n.Cond, other.Cond) && equalSlices(n.Body, other.Body)
}

type For struct {
	pos
	Target Node
	Iter   Node
	Body   []Node
}

func (n *For) Accept(v Visitor) error { return v.VisitFor(n) }
func (n *For) String() string         { return "For" }
func (n *For) Equal(o Node) bool {
	other, ok := o.(*For)
	return ok && equalNode(n.Target, other.Target) && equalNode(n.Iter, other.Iter) && equalSlices(n.Body, other.Body)
}

type FunctionDef struct {
	pos
	Name     string
	Args     []Arg
	Returns  string // return type annotation, "" if absent
	Body     []Node
	IsAsync  bool
}

func (n *FunctionDef) Accept(v Visitor) error { return v.VisitFunctionDef(n) }
func (n *FunctionDef) String() string         { return "FunctionDef(" + n.Name + ")" }
func (n *FunctionDef) Equal(o Node) bool {
	other, ok := o.(*FunctionDef)
	if !ok || n.Name != other.Name || n.IsAsync != other.IsAsync || len(n.Args) != len(other.Args) {
		return false
	}
	for i := range n.Args {
		if n.Args[i].Name != other.Args[i].Name {
			return false
		}
	}
	return equalSlices(n.Body, other.Body)
}

type ClassDef struct {
	pos
	Name  string
	Bases []string
	Body  []Node
}

func (n *ClassDef) Accept(v Visitor) error { return v.VisitClassDef(n) }
func (n *ClassDef) String() string         { return "ClassDef(" + n.Name + ")" }
func (n *ClassDef) Equal(o Node) bool {
	other, ok := o.(*ClassDef)
	return ok && n.Name == other.Name && equalSlices(n.Body, other.Body)
}

type Lambda struct {
	pos
	Args []Arg
	Body Node
}

func (n *Lambda) Accept(v Visitor) error { return v.VisitLambda(n) }
func (n *Lambda) String() string         { return "Lambda" }
func (n *Lambda) Equal(o Node) bool {
	other, ok := o.(*Lambda)
	return ok && len(n.Args) == len(other.Args) && equalNode(n.Body, other.Body)
}

type ListComp struct {
	pos
	Elt        Node
	Generators []Comprehension
}

func (n *ListComp) Accept(v Visitor) error { return v.VisitListComp(n) }
func (n *ListComp) String() string         { return "ListComp" }
func (n *ListComp) Equal(o Node) bool {
	other, ok := o.(*ListComp)
	return ok && equalNode(n.Elt, other.Elt) && equalGenerators(n.Generators, other.Generators)
}

type DictComp struct {
	pos
	Key, Value Node
	Generators []Comprehension
}

func (n *DictComp) Accept(v Visitor) error { return v.VisitDictComp(n) }
func (n *DictComp) String() string         { return "DictComp" }
func (n *DictComp) Equal(o Node) bool {
	other, ok := o.(*DictComp)
	return ok && equalNode(n.Key, other.Key) && equalNode(n.Value, other.Value) && equalGenerators(n.Generators, other.Generators)
}

type GenExp struct {
	pos
	Elt        Node
	Generators []Comprehension
}

func (n *GenExp) Accept(v Visitor) error { return v.VisitGenExp(n) }
func (n *GenExp) String() string         { return "GenExp" }
func (n *GenExp) Equal(o Node) bool {
	other, ok := o.(*GenExp)
	return ok && equalNode(n.Elt, other.Elt) && equalGenerators(n.Generators, other.Generators)
}

type ExceptHandler struct {
	ExcType string // "" if bare except
	Name    string // "" if no `as name`
	Body    []Node
}

type TryStmt struct {
	pos
	Body     []Node
	Handlers []ExceptHandler
	Else     []Node
	Finally  []Node
}

func (n *TryStmt) Accept(v Visitor) error { return v.VisitTryStmt(n) }
func (n *TryStmt) String() string         { return "TryStmt" }
func (n *TryStmt) Equal(o Node) bool {
	other, ok := o.(*TryStmt)
	if !ok || len(n.Handlers) != len(other.Handlers) {
		return false
	}
	for i := range n.Handlers {
		if n.Handlers[i].ExcType != other.Handlers[i].ExcType {
			return false
		}
		if !equalSlices(n.Handlers[i].Body, other.Handlers[i].Body) {
			return false
		}
	}
	return equalSlices(n.Body, other.Body) && equalSlices(n.Else, other.Else) && equalSlices(n.Finally, other.Finally)
}

type ImportStmt struct {
	pos
	Module string
	Asname string
}

func (n *ImportStmt) Accept(v Visitor) error { return v.VisitImportStmt(n) }
func (n *ImportStmt) String() string         { return "ImportStmt(" + n.Module + ")" }
func (n *ImportStmt) Equal(o Node) bool {
	other, ok := o.(*ImportStmt)
	return ok && n.Module == other.Module && n.Asname == other.Asname
}

type ImportFrom struct {
	pos
	Module  string
	Names   []string
	Asnames []string
}

func (n *ImportFrom) Accept(v Visitor) error { return v.VisitImportFrom(n) }
func (n *ImportFrom) String() string         { return "ImportFrom(" + n.Module + ")" }
func (n *ImportFrom) Equal(o Node) bool {
	other, ok := o.(*ImportFrom)
	return ok && n.Module == other.Module && equalStrs(n.Names, other.Names)
}

type Pass struct{ pos }

func (n *Pass) Accept(v Visitor) error { return v.VisitPass(n) }
func (n *Pass) String() string         { return "Pass" }
func (n *Pass) Equal(o Node) bool      { _, ok := o.(*Pass); return ok }

type Break struct{ pos }

func (n *Break) Accept(v Visitor) error { return v.VisitBreak(n) }
func (n *Break) String() string         { return "Break" }
func (n *Break) Equal(o Node) bool      { _, ok := o.(*Break); return ok }

type Continue struct{ pos }

func (n *Continue) Accept(v Visitor) error { return v.VisitContinue(n) }
func (n *Continue) String() string         { return "Continue" }
func (n *Continue) Equal(o Node) bool      { _, ok := o.(*Continue); return ok }

type Assert struct {
	pos
	Cond Node
	Msg  Node // nil if absent
}

func (n *Assert) Accept(v Visitor) error { return v.VisitAssert(n) }
func (n *Assert) String() string         { return "Assert" }
func (n *Assert) Equal(o Node) bool {
	other, ok := o.(*Assert)
	return ok && equalNode(n.Cond, other.Cond) && equalNode(n.Msg, other.Msg)
}

type Global struct {
	pos
	Names []string
}

func (n *Global) Accept(v Visitor) error { return v.VisitGlobal(n) }
func (n *Global) String() string         { return "Global" }
func (n *Global) Equal(o Node) bool {
	other, ok := o.(*Global)
	return ok && equalStrs(n.Names, other.Names)
}

type Del struct {
	pos
	Targets []Node
}

func (n *Del) Accept(v Visitor) error { return v.VisitDel(n) }
func (n *Del) String() string         { return "Del" }
func (n *Del) Equal(o Node) bool {
	other, ok := o.(*Del)
	return ok && equalSlices(n.Targets, other.Targets)
}

type Raise struct {
	pos
	Exc Node // nil for bare raise
}

func (n *Raise) Accept(v Visitor) error { return v.VisitRaise(n) }
func (n *Raise) String() string         { return "Raise" }
func (n *Raise) Equal(o Node) bool {
	other, ok := o.(*Raise)
	return ok && equalNode(n.Exc, other.Exc)
}

type With struct {
	pos
	Ctx  Node
	As   Node // nil if no `as`
	Body []Node
}

func (n *With) Accept(v Visitor) error { return v.VisitWith(n) }
func (n *With) String() string         { return "With" }
func (n *With) Equal(o Node) bool {
	other, ok := o.(*With)
	return ok && equalNode(n.Ctx, other.Ctx) && equalSlices(n.Body, other.Body)
}

// ---- Expressions ----

type AwaitExpr struct {
	pos
	Value Node
}

func (n *AwaitExpr) Accept(v Visitor) error { return v.VisitAwaitExpr(n) }
func (n *AwaitExpr) String() string         { return "AwaitExpr" }
func (n *AwaitExpr) Equal(o Node) bool {
	other, ok := o.(*AwaitExpr)
	return ok && equalNode(n.Value, other.Value)
}

type NamedExpr struct {
	pos
	Target Node
	Value  Node
}

func (n *NamedExpr) Accept(v Visitor) error { return v.VisitNamedExpr(n) }
func (n *NamedExpr) String() string         { return "NamedExpr" }
func (n *NamedExpr) Equal(o Node) bool {
	other, ok := o.(*NamedExpr)
	return ok && equalNode(n.Target, other.Target) && equalNode(n.Value, other.Value)
}

type BinOp struct {
	pos
	Left  Node
	Op    string
	Right Node
}

func (n *BinOp) Accept(v Visitor) error { return v.VisitBinOp(n) }
func (n *BinOp) String() string         { return "BinOp(" + n.Op + ")" }
func (n *BinOp) Equal(o Node) bool {
	other, ok := o.(*BinOp)
	return ok && n.Op == other.Op && equalNode(n.Left, other.Left) && equalNode(n.Right, other.Right)
}

type BoolOp struct {
	pos
	Op     string // "and" | "or"
	Values []Node
}

func (n *BoolOp) Accept(v Visitor) error { return v.VisitBoolOp(n) }
func (n *BoolOp) String() string         { return "BoolOp(" + n.Op + ")" }
func (n *BoolOp) Equal(o Node) bool {
	other, ok := o.(*BoolOp)
	return ok && n.Op == other.Op && equalSlices(n.Values, other.Values)
}

type UnaryOp struct {
	pos
	Op      string
	Operand Node
}

func (n *UnaryOp) Accept(v Visitor) error { return v.VisitUnaryOp(n) }
func (n *UnaryOp) String() string         { return "UnaryOp(" + n.Op + ")" }
func (n *UnaryOp) Equal(o Node) bool {
	other, ok := o.(*UnaryOp)
	return ok && n.Op == other.Op && equalNode(n.Operand, other.Operand)
}

type Compare struct {
	pos
	Left        Node
	Ops         []string
	Comparators []Node
}

func (n *Compare) Accept(v Visitor) error { return v.VisitCompare(n) }
func (n *Compare) String() string         { return "Compare" }
func (n *Compare) Equal(o Node) bool {
	other, ok := o.(*Compare)
	return ok && equalNode(n.Left, other.Left) && equalStrs(n.Ops, other.Ops) && equalSlices(n.Comparators, other.Comparators)
}

type Call struct {
	pos
	Func Node
	Args []Node
}

func (n *Call) Accept(v Visitor) error { return v.VisitCall(n) }
func (n *Call) String() string         { return "Call" }
func (n *Call) Equal(o Node) bool {
	other, ok := o.(*Call)
	return ok && equalNode(n.Func, other.Func) && equalSlices(n.Args, other.Args)
}

type Subscript struct {
	pos
	Value Node
	Slice Node
}

func (n *Subscript) Accept(v Visitor) error { return v.VisitSubscript(n) }
func (n *Subscript) String() string         { return "Subscript" }
func (n *Subscript) Equal(o Node) bool {
	other, ok := o.(*Subscript)
	return ok && equalNode(n.Value, other.Value) && equalNode(n.Slice, other.Slice)
}

type Attribute struct {
	pos
	Value Node
	Attr  string
}

func (n *Attribute) Accept(v Visitor) error { return v.VisitAttribute(n) }
func (n *Attribute) String() string         { return "Attribute(" + n.Attr + ")" }
func (n *Attribute) Equal(o Node) bool {
	other, ok := o.(*Attribute)
	return ok && n.Attr == other.Attr && equalNode(n.Value, other.Value)
}

type Name struct {
	pos
	ID string
}

func (n *Name) Accept(v Visitor) error { return v.VisitName(n) }
func (n *Name) String() string         { return "Name(" + n.ID + ")" }
func (n *Name) Equal(o Node) bool {
	other, ok := o.(*Name)
	return ok && n.ID == other.ID
}

type Constant struct {
	pos
	Kind   ConstKind
	IntVal int64
	FltVal float64
	BolVal bool
	StrVal string
}

func (n *Constant) Accept(v Visitor) error { return v.VisitConstant(n) }
func (n *Constant) String() string         { return fmt.Sprintf("Constant(%v)", n.rawValue()) }
func (n *Constant) rawValue() any {
	switch n.Kind {
	case ConstInt:
		return n.IntVal
	case ConstFloat:
		return n.FltVal
	case ConstBool:
		return n.BolVal
	case ConstString:
		return n.StrVal
	default:
		return nil
	}
}
func (n *Constant) Equal(o Node) bool {
	other, ok := o.(*Constant)
	return ok && n.Kind == other.Kind && n.IntVal == other.IntVal && n.FltVal == other.FltVal &&
		n.BolVal == other.BolVal && n.StrVal == other.StrVal
}

type List struct {
	pos
	Elts []Node
}

func (n *List) Accept(v Visitor) error { return v.VisitList(n) }
func (n *List) String() string         { return "List" }
func (n *List) Equal(o Node) bool {
	other, ok := o.(*List)
	return ok && equalSlices(n.Elts, other.Elts)
}

type Tuple struct {
	pos
	Elts []Node
}

func (n *Tuple) Accept(v Visitor) error { return v.VisitTuple(n) }
func (n *Tuple) String() string         { return "Tuple" }
func (n *Tuple) Equal(o Node) bool {
	other, ok := o.(*Tuple)
	return ok && equalSlices(n.Elts, other.Elts)
}

type Set struct {
	pos
	Elts []Node
}

func (n *Set) Accept(v Visitor) error { return v.VisitSet(n) }
func (n *Set) String() string         { return "Set" }
func (n *Set) Equal(o Node) bool {
	other, ok := o.(*Set)
	return ok && equalSlices(n.Elts, other.Elts)
}

// Dict represents both literal dicts and dict-unpacking (`**expr`
// contributes a nil key per spec.md §4.2).
type Dict struct {
	pos
	Keys   []Node // entries may be nil for `**expr` unpacking
	Values []Node
}

func (n *Dict) Accept(v Visitor) error { return v.VisitDict(n) }
func (n *Dict) String() string         { return "Dict" }
func (n *Dict) Equal(o Node) bool {
	other, ok := o.(*Dict)
	if !ok || len(n.Keys) != len(other.Keys) {
		return false
	}
	for i := range n.Keys {
		if !equalNode(n.Keys[i], other.Keys[i]) {
			return false
		}
	}
	return equalSlices(n.Values, other.Values)
}

type FString struct {
	pos
	Parts []FStringPart
}

// FStringPart mirrors token.FStringPart but carries a parsed
// expression AST node instead of raw expression text once the parser
// has recursively parsed each `{...}` chunk.
type FStringPart struct {
	Literal string
	Expr    Node // nil for literal parts
	Spec    string
	Conv    rune
}

func (n *FString) Accept(v Visitor) error { return v.VisitFString(n) }
func (n *FString) String() string         { return "FString" }
func (n *FString) Equal(o Node) bool {
	other, ok := o.(*FString)
	if !ok || len(n.Parts) != len(other.Parts) {
		return false
	}
	for i := range n.Parts {
		if n.Parts[i].Literal != other.Parts[i].Literal || n.Parts[i].Spec != other.Parts[i].Spec || n.Parts[i].Conv != other.Parts[i].Conv {
			return false
		}
		if !equalNode(n.Parts[i].Expr, other.Parts[i].Expr) {
			return false
		}
	}
	return true
}

type Starred struct {
	pos
	Value Node
}

func (n *Starred) Accept(v Visitor) error { return v.VisitStarred(n) }
func (n *Starred) String() string         { return "Starred" }
func (n *Starred) Equal(o Node) bool {
	other, ok := o.(*Starred)
	return ok && equalNode(n.Value, other.Value)
}

type Slice struct {
	pos
	Lower, Upper, Step Node // each nil if omitted
}

func (n *Slice) Accept(v Visitor) error { return v.VisitSlice(n) }
func (n *Slice) String() string         { return "Slice" }
func (n *Slice) Equal(o Node) bool {
	other, ok := o.(*Slice)
	return ok && equalNode(n.Lower, other.Lower) && equalNode(n.Upper, other.Upper) && equalNode(n.Step, other.Step)
}

type Index struct {
	pos
	Value Node
}

func (n *Index) Accept(v Visitor) error { return v.VisitIndex(n) }
func (n *Index) String() string         { return "Index" }
func (n *Index) Equal(o Node) bool {
	other, ok := o.(*Index)
	return ok && equalNode(n.Value, other.Value)
}

// ---- equality helpers ----

func equalNode(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

func equalSlices(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalNode(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalStrs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalGenerators(a, b []Comprehension) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalNode(a[i].Target, b[i].Target) || !equalNode(a[i].Iter, b[i].Iter) {
			return false
		}
		if !equalSlices(a[i].Ifs, b[i].Ifs) {
			return false
		}
	}
	return true
}
