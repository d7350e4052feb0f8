package ast

import "strings"

// Print renders node as an indented S-expression, used by tests to
// assert AST shape without comparing unexported fields directly.
// Grounded on the teacher's PrettyString/treePrinter discipline
// (grammar_ast_printer.go, tree_printer.go), simplified to plain text
// since this core has no terminal-theming concern to carry forward.
func Print(n Node) string {
	var b strings.Builder
	printNode(&b, n, 0)
	return b.String()
}

func printNode(b *strings.Builder, n Node, depth int) {
	indent := strings.Repeat("  ", depth)
	if n == nil {
		b.WriteString(indent + "<nil>\n")
		return
	}
	b.WriteString(indent + n.String() + "\n")
	for _, c := range children(n) {
		printNode(b, c, depth+1)
	}
}

// children returns the direct Node children of n in source order, for
// printing purposes only — it does not need to be exhaustive over
// every scalar field (names, ops), only over sub-nodes.
func children(n Node) []Node {
	switch v := n.(type) {
	case *Module:
		return v.Body
	case *Assign:
		out := append([]Node{}, v.Targets...)
		return append(out, v.Value)
	case *AnnAssign:
		if v.Value != nil {
			return []Node{v.Target, v.Value}
		}
		return []Node{v.Target}
	case *AugAssign:
		return []Node{v.Target, v.Value}
	case *ExprStmt:
		return []Node{v.Value}
	case *Return:
		if v.Value != nil {
			return []Node{v.Value}
		}
		return nil
	case *If:
		out := []Node{v.Cond}
		out = append(out, v.Body...)
		out = append(out, v.Else...)
		return out
	case *While:
		return append([]Node{v.Cond}, v.Body...)
	case *For:
		out := []Node{v.Target, v.Iter}
		return append(out, v.Body...)
	case *FunctionDef:
		return v.Body
	case *ClassDef:
		return v.Body
	case *Lambda:
		return []Node{v.Body}
	case *ListComp:
		return append([]Node{v.Elt}, genChildren(v.Generators)...)
	case *DictComp:
		out := []Node{v.Key, v.Value}
		return append(out, genChildren(v.Generators)...)
	case *GenExp:
		return append([]Node{v.Elt}, genChildren(v.Generators)...)
	case *TryStmt:
		out := append([]Node{}, v.Body...)
		for _, h := range v.Handlers {
			out = append(out, h.Body...)
		}
		out = append(out, v.Else...)
		out = append(out, v.Finally...)
		return out
	case *Assert:
		if v.Msg != nil {
			return []Node{v.Cond, v.Msg}
		}
		return []Node{v.Cond}
	case *Del:
		return v.Targets
	case *Raise:
		if v.Exc != nil {
			return []Node{v.Exc}
		}
		return nil
	case *With:
		out := []Node{v.Ctx}
		return append(out, v.Body...)
	case *AwaitExpr:
		return []Node{v.Value}
	case *NamedExpr:
		return []Node{v.Target, v.Value}
	case *BinOp:
		return []Node{v.Left, v.Right}
	case *BoolOp:
		return v.Values
	case *UnaryOp:
		return []Node{v.Operand}
	case *Compare:
		return append([]Node{v.Left}, v.Comparators...)
	case *Call:
		return append([]Node{v.Func}, v.Args...)
	case *Subscript:
		return []Node{v.Value, v.Slice}
	case *Attribute:
		return []Node{v.Value}
	case *List:
		return v.Elts
	case *Tuple:
		return v.Elts
	case *Set:
		return v.Elts
	case *Dict:
		out := []Node{}
		for i := range v.Keys {
			if v.Keys[i] != nil {
				out = append(out, v.Keys[i])
			}
			out = append(out, v.Values[i])
		}
		return out
	case *FString:
		out := []Node{}
		for _, p := range v.Parts {
			if p.Expr != nil {
				out = append(out, p.Expr)
			}
		}
		return out
	case *Starred:
		return []Node{v.Value}
	case *Slice:
		out := []Node{}
		for _, c := range []Node{v.Lower, v.Upper, v.Step} {
			if c != nil {
				out = append(out, c)
			}
		}
		return out
	case *Index:
		return []Node{v.Value}
	default:
		return nil
	}
}

func genChildren(gens []Comprehension) []Node {
	var out []Node
	for _, g := range gens {
		out = append(out, g.Target, g.Iter)
		out = append(out, g.Ifs...)
	}
	return out
}
