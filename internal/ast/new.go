package ast

// Constructor functions for every node kind, mirroring the teacher's
// NewXNode(...) idiom (grammar_ast.go) so the parser never reaches
// into a node's unexported position fields directly.

func NewModule(body []Node) *Module { return &Module{Body: body} }

func NewAssign(targets []Node, value Node, line, col int) *Assign {
	return &Assign{pos: at(line, col), Targets: targets, Value: value}
}

func NewAnnAssign(target Node, annotation string, value Node, line, col int) *AnnAssign {
	return &AnnAssign{pos: at(line, col), Target: target, Annotation: annotation, Value: value}
}

func NewAugAssign(target Node, op string, value Node, line, col int) *AugAssign {
	return &AugAssign{pos: at(line, col), Target: target, Op: op, Value: value}
}

func NewExprStmt(value Node, line, col int) *ExprStmt {
	return &ExprStmt{pos: at(line, col), Value: value}
}

func NewReturn(value Node, line, col int) *Return {
	return &Return{pos: at(line, col), Value: value}
}

func NewIf(cond Node, body, elseBody []Node, line, col int) *If {
	return &If{pos: at(line, col), Cond: cond, Body: body, Else: elseBody}
}

func NewWhile(cond Node, body []Node, line, col int) *While {
	return &While{pos: at(line, col), Cond: cond, Body: body}
}

func NewFor(target, iter Node, body []Node, line, col int) *For {
	return &For{pos: at(line, col), Target: target, Iter: iter, Body: body}
}

func NewFunctionDef(name string, args []Arg, returns string, body []Node, isAsync bool, line, col int) *FunctionDef {
	return &FunctionDef{pos: at(line, col), Name: name, Args: args, Returns: returns, Body: body, IsAsync: isAsync}
}

func NewClassDef(name string, bases []string, body []Node, line, col int) *ClassDef {
	return &ClassDef{pos: at(line, col), Name: name, Bases: bases, Body: body}
}

func NewLambda(args []Arg, body Node, line, col int) *Lambda {
	return &Lambda{pos: at(line, col), Args: args, Body: body}
}

func NewListComp(elt Node, gens []Comprehension, line, col int) *ListComp {
	return &ListComp{pos: at(line, col), Elt: elt, Generators: gens}
}

func NewDictComp(key, value Node, gens []Comprehension, line, col int) *DictComp {
	return &DictComp{pos: at(line, col), Key: key, Value: value, Generators: gens}
}

func NewGenExp(elt Node, gens []Comprehension, line, col int) *GenExp {
	return &GenExp{pos: at(line, col), Elt: elt, Generators: gens}
}

func NewTryStmt(body []Node, handlers []ExceptHandler, elseBody, finally []Node, line, col int) *TryStmt {
	return &TryStmt{pos: at(line, col), Body: body, Handlers: handlers, Else: elseBody, Finally: finally}
}

func NewImportStmt(module, asname string, line, col int) *ImportStmt {
	return &ImportStmt{pos: at(line, col), Module: module, Asname: asname}
}

func NewImportFrom(module string, names, asnames []string, line, col int) *ImportFrom {
	return &ImportFrom{pos: at(line, col), Module: module, Names: names, Asnames: asnames}
}

func NewPass(line, col int) *Pass         { return &Pass{pos: at(line, col)} }
func NewBreak(line, col int) *Break       { return &Break{pos: at(line, col)} }
func NewContinue(line, col int) *Continue { return &Continue{pos: at(line, col)} }

func NewAssert(cond, msg Node, line, col int) *Assert {
	return &Assert{pos: at(line, col), Cond: cond, Msg: msg}
}

func NewGlobal(names []string, line, col int) *Global {
	return &Global{pos: at(line, col), Names: names}
}

func NewDel(targets []Node, line, col int) *Del {
	return &Del{pos: at(line, col), Targets: targets}
}

func NewRaise(exc Node, line, col int) *Raise {
	return &Raise{pos: at(line, col), Exc: exc}
}

func NewWith(ctx, as Node, body []Node, line, col int) *With {
	return &With{pos: at(line, col), Ctx: ctx, As: as, Body: body}
}

func NewAwaitExpr(value Node, line, col int) *AwaitExpr {
	return &AwaitExpr{pos: at(line, col), Value: value}
}

func NewNamedExpr(target, value Node, line, col int) *NamedExpr {
	return &NamedExpr{pos: at(line, col), Target: target, Value: value}
}

func NewBinOp(left Node, op string, right Node, line, col int) *BinOp {
	return &BinOp{pos: at(line, col), Left: left, Op: op, Right: right}
}

func NewBoolOp(op string, values []Node, line, col int) *BoolOp {
	return &BoolOp{pos: at(line, col), Op: op, Values: values}
}

func NewUnaryOp(op string, operand Node, line, col int) *UnaryOp {
	return &UnaryOp{pos: at(line, col), Op: op, Operand: operand}
}

func NewCompare(left Node, ops []string, comparators []Node, line, col int) *Compare {
	return &Compare{pos: at(line, col), Left: left, Ops: ops, Comparators: comparators}
}

func NewCall(fn Node, args []Node, line, col int) *Call {
	return &Call{pos: at(line, col), Func: fn, Args: args}
}

func NewSubscript(value, slice Node, line, col int) *Subscript {
	return &Subscript{pos: at(line, col), Value: value, Slice: slice}
}

func NewAttribute(value Node, attr string, line, col int) *Attribute {
	return &Attribute{pos: at(line, col), Value: value, Attr: attr}
}

func NewName(id string, line, col int) *Name {
	return &Name{pos: at(line, col), ID: id}
}

func NewConstantInt(v int64, line, col int) *Constant {
	return &Constant{pos: at(line, col), Kind: ConstInt, IntVal: v}
}

func NewConstantFloat(v float64, line, col int) *Constant {
	return &Constant{pos: at(line, col), Kind: ConstFloat, FltVal: v}
}

func NewConstantBool(v bool, line, col int) *Constant {
	return &Constant{pos: at(line, col), Kind: ConstBool, BolVal: v}
}

func NewConstantString(v string, line, col int) *Constant {
	return &Constant{pos: at(line, col), Kind: ConstString, StrVal: v}
}

func NewConstantNone(line, col int) *Constant {
	return &Constant{pos: at(line, col), Kind: ConstNone}
}

func NewList(elts []Node, line, col int) *List {
	return &List{pos: at(line, col), Elts: elts}
}

func NewTuple(elts []Node, line, col int) *Tuple {
	return &Tuple{pos: at(line, col), Elts: elts}
}

func NewSet(elts []Node, line, col int) *Set {
	return &Set{pos: at(line, col), Elts: elts}
}

func NewDict(keys, values []Node, line, col int) *Dict {
	return &Dict{pos: at(line, col), Keys: keys, Values: values}
}

func NewFString(parts []FStringPart, line, col int) *FString {
	return &FString{pos: at(line, col), Parts: parts}
}

func NewStarred(value Node, line, col int) *Starred {
	return &Starred{pos: at(line, col), Value: value}
}

func NewSlice(lower, upper, step Node, line, col int) *Slice {
	return &Slice{pos: at(line, col), Lower: lower, Upper: upper, Step: step}
}

func NewIndex(value Node, line, col int) *Index {
	return &Index{pos: at(line, col), Value: value}
}
