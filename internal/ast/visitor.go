package ast

// Visitor is implemented by every tree walker over the AST (semantic
// analyzer subpasses, the emitter, the debug printer). Grounded on the
// teacher's AstNodeVisitor (grammar_ast_visitor.go), generalized from
// the PEG node set to spec.md §3.2's exhaustive statement/expression
// set.
type Visitor interface {
	VisitModule(*Module) error
	VisitAssign(*Assign) error
	VisitAnnAssign(*AnnAssign) error
	VisitAugAssign(*AugAssign) error
	VisitExprStmt(*ExprStmt) error
	VisitReturn(*Return) error
	VisitIf(*If) error
	VisitWhile(*While) error
	VisitFor(*For) error
	VisitFunctionDef(*FunctionDef) error
	VisitClassDef(*ClassDef) error
	VisitLambda(*Lambda) error
	VisitListComp(*ListComp) error
	VisitDictComp(*DictComp) error
	VisitGenExp(*GenExp) error
	VisitTryStmt(*TryStmt) error
	VisitImportStmt(*ImportStmt) error
	VisitImportFrom(*ImportFrom) error
	VisitPass(*Pass) error
	VisitBreak(*Break) error
	VisitContinue(*Continue) error
	VisitAssert(*Assert) error
	VisitGlobal(*Global) error
	VisitDel(*Del) error
	VisitRaise(*Raise) error
	VisitWith(*With) error
	VisitAwaitExpr(*AwaitExpr) error
	VisitNamedExpr(*NamedExpr) error
	VisitBinOp(*BinOp) error
	VisitBoolOp(*BoolOp) error
	VisitUnaryOp(*UnaryOp) error
	VisitCompare(*Compare) error
	VisitCall(*Call) error
	VisitSubscript(*Subscript) error
	VisitAttribute(*Attribute) error
	VisitName(*Name) error
	VisitConstant(*Constant) error
	VisitList(*List) error
	VisitTuple(*Tuple) error
	VisitSet(*Set) error
	VisitDict(*Dict) error
	VisitFString(*FString) error
	VisitStarred(*Starred) error
	VisitSlice(*Slice) error
	VisitIndex(*Index) error
}

// BaseVisitor implements every Visitor method as a no-op, so concrete
// visitors that only care about a handful of node kinds can embed it
// instead of implementing the entire interface. Grounded on the same
// "embed a no-op struct" approach the teacher's query/analysis passes
// use to keep each pass focused.
type BaseVisitor struct{}

func (BaseVisitor) VisitModule(*Module) error             { return nil }
func (BaseVisitor) VisitAssign(*Assign) error             { return nil }
func (BaseVisitor) VisitAnnAssign(*AnnAssign) error       { return nil }
func (BaseVisitor) VisitAugAssign(*AugAssign) error       { return nil }
func (BaseVisitor) VisitExprStmt(*ExprStmt) error         { return nil }
func (BaseVisitor) VisitReturn(*Return) error             { return nil }
func (BaseVisitor) VisitIf(*If) error                     { return nil }
func (BaseVisitor) VisitWhile(*While) error               { return nil }
func (BaseVisitor) VisitFor(*For) error                   { return nil }
func (BaseVisitor) VisitFunctionDef(*FunctionDef) error   { return nil }
func (BaseVisitor) VisitClassDef(*ClassDef) error         { return nil }
func (BaseVisitor) VisitLambda(*Lambda) error             { return nil }
func (BaseVisitor) VisitListComp(*ListComp) error         { return nil }
func (BaseVisitor) VisitDictComp(*DictComp) error         { return nil }
func (BaseVisitor) VisitGenExp(*GenExp) error             { return nil }
func (BaseVisitor) VisitTryStmt(*TryStmt) error           { return nil }
func (BaseVisitor) VisitImportStmt(*ImportStmt) error     { return nil }
func (BaseVisitor) VisitImportFrom(*ImportFrom) error     { return nil }
func (BaseVisitor) VisitPass(*Pass) error                 { return nil }
func (BaseVisitor) VisitBreak(*Break) error               { return nil }
func (BaseVisitor) VisitContinue(*Continue) error         { return nil }
func (BaseVisitor) VisitAssert(*Assert) error             { return nil }
func (BaseVisitor) VisitGlobal(*Global) error             { return nil }
func (BaseVisitor) VisitDel(*Del) error                   { return nil }
func (BaseVisitor) VisitRaise(*Raise) error               { return nil }
func (BaseVisitor) VisitWith(*With) error                 { return nil }
func (BaseVisitor) VisitAwaitExpr(*AwaitExpr) error       { return nil }
func (BaseVisitor) VisitNamedExpr(*NamedExpr) error       { return nil }
func (BaseVisitor) VisitBinOp(*BinOp) error               { return nil }
func (BaseVisitor) VisitBoolOp(*BoolOp) error             { return nil }
func (BaseVisitor) VisitUnaryOp(*UnaryOp) error           { return nil }
func (BaseVisitor) VisitCompare(*Compare) error           { return nil }
func (BaseVisitor) VisitCall(*Call) error                 { return nil }
func (BaseVisitor) VisitSubscript(*Subscript) error       { return nil }
func (BaseVisitor) VisitAttribute(*Attribute) error       { return nil }
func (BaseVisitor) VisitName(*Name) error                 { return nil }
func (BaseVisitor) VisitConstant(*Constant) error         { return nil }
func (BaseVisitor) VisitList(*List) error                 { return nil }
func (BaseVisitor) VisitTuple(*Tuple) error               { return nil }
func (BaseVisitor) VisitSet(*Set) error                   { return nil }
func (BaseVisitor) VisitDict(*Dict) error                 { return nil }
func (BaseVisitor) VisitFString(*FString) error           { return nil }
func (BaseVisitor) VisitStarred(*Starred) error           { return nil }
func (BaseVisitor) VisitSlice(*Slice) error               { return nil }
func (BaseVisitor) VisitIndex(*Index) error               { return nil }
