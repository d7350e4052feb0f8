package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/lexer"
)

func parseSrc(t *testing.T, src string) *ast.Module {
	t.Helper()
	toks, err := lexer.Tokenize([]byte(src))
	require.NoError(t, err)
	mod, err := Parse(toks)
	require.NoError(t, err)
	return mod
}

func TestParseSimpleAssign(t *testing.T) {
	mod := parseSrc(t, "x = 1 + 2\n")
	require.Len(t, mod.Body, 1)
	assign, ok := mod.Body[0].(*ast.Assign)
	require.True(t, ok)
	require.Len(t, assign.Targets, 1)
	assert.Equal(t, "Name(x)", assign.Targets[0].String())
	bin, ok := assign.Value.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
}

func TestParseChainedAssign(t *testing.T) {
	mod := parseSrc(t, "a = b = 1\n")
	assign, ok := mod.Body[0].(*ast.Assign)
	require.True(t, ok)
	require.Len(t, assign.Targets, 2)
	assert.Equal(t, "Name(a)", assign.Targets[0].String())
	assert.Equal(t, "Name(b)", assign.Targets[1].String())
}

func TestParsePrecedence(t *testing.T) {
	for _, test := range []struct {
		Name       string
		Src        string
		ExpectsAdd bool // true if root op is '+'
	}{
		{"implicit", "a + b * c", true},
		{"explicit-mul-inner", "a + (b * c)", true},
		{"explicit-add-inner", "(a + b) * c", false},
	} {
		t.Run(test.Name, func(t *testing.T) {
			mod := parseSrc(t, test.Src+"\n")
			stmt, ok := mod.Body[0].(*ast.ExprStmt)
			require.True(t, ok)
			bin, ok := stmt.Value.(*ast.BinOp)
			require.True(t, ok)
			if test.ExpectsAdd {
				assert.Equal(t, "+", bin.Op)
			} else {
				assert.Equal(t, "*", bin.Op)
			}
		})
	}
	// "a + b * c" and "a + (b * c)" must parse to structurally equal trees.
	implicit := parseSrc(t, "a + b * c\n")
	explicit := parseSrc(t, "a + (b * c)\n")
	assert.True(t, implicit.Equal(explicit))
	// "(a + b) * c" must NOT equal the implicit-precedence parse.
	grouped := parseSrc(t, "(a + b) * c\n")
	assert.False(t, implicit.Equal(grouped))
}

func TestParsePowerRightAssociativeAndUnary(t *testing.T) {
	mod := parseSrc(t, "2 ** 3 ** 2\n")
	stmt := mod.Body[0].(*ast.ExprStmt)
	bin := stmt.Value.(*ast.BinOp)
	assert.Equal(t, "**", bin.Op)
	assert.Equal(t, "Constant(2)", bin.Left.String())
	inner, ok := bin.Right.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, "**", inner.Op)

	mod2 := parseSrc(t, "-2 ** 2\n")
	stmt2 := mod2.Body[0].(*ast.ExprStmt)
	unary, ok := stmt2.Value.(*ast.UnaryOp)
	require.True(t, ok, "unary minus must bind looser than **")
	assert.Equal(t, "-", unary.Op)
	_, ok = unary.Operand.(*ast.BinOp)
	assert.True(t, ok)
}

func TestParseComparisonChain(t *testing.T) {
	mod := parseSrc(t, "1 < x < 10\n")
	stmt := mod.Body[0].(*ast.ExprStmt)
	cmp, ok := stmt.Value.(*ast.Compare)
	require.True(t, ok)
	assert.Equal(t, []string{"<", "<"}, cmp.Ops)
}

func TestParseBoolOpFlattening(t *testing.T) {
	mod := parseSrc(t, "a and b and c\n")
	stmt := mod.Body[0].(*ast.ExprStmt)
	op, ok := stmt.Value.(*ast.BoolOp)
	require.True(t, ok)
	assert.Equal(t, "and", op.Op)
	assert.Len(t, op.Values, 3)
}

func TestParseIfElifElse(t *testing.T) {
	src := "if x:\n    a = 1\nelif y:\n    a = 2\nelse:\n    a = 3\n"
	mod := parseSrc(t, src)
	top, ok := mod.Body[0].(*ast.If)
	require.True(t, ok)
	require.Len(t, top.Else, 1)
	elif, ok := top.Else[0].(*ast.If)
	require.True(t, ok)
	require.Len(t, elif.Else, 1)
}

func TestParseSingleLineSuite(t *testing.T) {
	src := "for k, v in d.items(): print(k, v)\n"
	mod := parseSrc(t, src)
	forStmt, ok := mod.Body[0].(*ast.For)
	require.True(t, ok)
	tup, ok := forStmt.Target.(*ast.Tuple)
	require.True(t, ok)
	require.Len(t, tup.Elts, 2)
	require.Len(t, forStmt.Body, 1)
}

func TestParseFunctionDefWithDefaultsAndAnnotations(t *testing.T) {
	src := "def add(x: int, y: int = 1) -> int:\n    return x + y\n"
	mod := parseSrc(t, src)
	fn, ok := mod.Body[0].(*ast.FunctionDef)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	assert.Equal(t, "int", fn.Returns)
	require.Len(t, fn.Args, 2)
	assert.Equal(t, "int", fn.Args[0].Annotation)
	require.NotNil(t, fn.Args[1].Default)
}

func TestParseClassDef(t *testing.T) {
	src := "class Point:\n    def __init__(self, x, y):\n        self.x = x\n        self.y = y\n"
	mod := parseSrc(t, src)
	cls, ok := mod.Body[0].(*ast.ClassDef)
	require.True(t, ok)
	assert.Equal(t, "Point", cls.Name)
	require.Len(t, cls.Body, 1)
}

func TestParseListDictSetAndComprehensions(t *testing.T) {
	mod := parseSrc(t, "xs = [i * 2 for i in range(3) if i > 0]\n")
	assign := mod.Body[0].(*ast.Assign)
	comp, ok := assign.Value.(*ast.ListComp)
	require.True(t, ok)
	require.Len(t, comp.Generators, 1)
	require.Len(t, comp.Generators[0].Ifs, 1)

	mod2 := parseSrc(t, "d = {k: v for k, v in pairs}\n")
	assign2 := mod2.Body[0].(*ast.Assign)
	_, ok = assign2.Value.(*ast.DictComp)
	assert.True(t, ok)

	mod3 := parseSrc(t, "s = {1, 2, 3}\n")
	assign3 := mod3.Body[0].(*ast.Assign)
	set, ok := assign3.Value.(*ast.Set)
	require.True(t, ok)
	assert.Len(t, set.Elts, 3)

	mod4 := parseSrc(t, "d2 = {}\n")
	assign4 := mod4.Body[0].(*ast.Assign)
	dict, ok := assign4.Value.(*ast.Dict)
	require.True(t, ok)
	assert.Len(t, dict.Keys, 0)
}

func TestParseSlicing(t *testing.T) {
	mod := parseSrc(t, "y = xs[1:-1:2]\n")
	assign := mod.Body[0].(*ast.Assign)
	sub, ok := assign.Value.(*ast.Subscript)
	require.True(t, ok)
	sl, ok := sub.Slice.(*ast.Slice)
	require.True(t, ok)
	require.NotNil(t, sl.Lower)
	require.NotNil(t, sl.Upper)
	require.NotNil(t, sl.Step)

	mod2 := parseSrc(t, "z = xs[0]\n")
	assign2 := mod2.Body[0].(*ast.Assign)
	sub2 := assign2.Value.(*ast.Subscript)
	_, ok = sub2.Slice.(*ast.Index)
	assert.True(t, ok)
}

func TestParseFString(t *testing.T) {
	mod := parseSrc(t, `s = f"a={x!r} b={y:.2f}"` + "\n")
	assign := mod.Body[0].(*ast.Assign)
	fs, ok := assign.Value.(*ast.FString)
	require.True(t, ok)
	require.Len(t, fs.Parts, 4)
	assert.Equal(t, "a=", fs.Parts[0].Literal)
	require.NotNil(t, fs.Parts[1].Expr)
	assert.Equal(t, "Name(x)", fs.Parts[1].Expr.String())
	assert.Equal(t, 'r', fs.Parts[1].Conv)
	assert.Equal(t, ".2f", fs.Parts[3].Spec)
}

func TestParseTryExceptFinally(t *testing.T) {
	src := "try:\n    risky()\nexcept ValueError as e:\n    handle(e)\nfinally:\n    cleanup()\n"
	mod := parseSrc(t, src)
	try, ok := mod.Body[0].(*ast.TryStmt)
	require.True(t, ok)
	require.Len(t, try.Handlers, 1)
	assert.Equal(t, "ValueError", try.Handlers[0].ExcType)
	assert.Equal(t, "e", try.Handlers[0].Name)
	require.Len(t, try.Finally, 1)
}

func TestParseLambdaAndWalrus(t *testing.T) {
	mod := parseSrc(t, "f = lambda x, y=1: x + y\n")
	assign := mod.Body[0].(*ast.Assign)
	lam, ok := assign.Value.(*ast.Lambda)
	require.True(t, ok)
	require.Len(t, lam.Args, 2)

	mod2 := parseSrc(t, "if (n := compute()):\n    use(n)\n")
	ifStmt := mod2.Body[0].(*ast.If)
	_, ok = ifStmt.Cond.(*ast.NamedExpr)
	assert.True(t, ok)
}

func TestParseTupleUnpackAssign(t *testing.T) {
	mod := parseSrc(t, "a, b = 1, 2\n")
	assign := mod.Body[0].(*ast.Assign)
	tgt, ok := assign.Targets[0].(*ast.Tuple)
	require.True(t, ok)
	assert.Len(t, tgt.Elts, 2)
	val, ok := assign.Value.(*ast.Tuple)
	require.True(t, ok)
	assert.Len(t, val.Elts, 2)
}

func TestParseCallWithStarArgsAndKeyword(t *testing.T) {
	mod := parseSrc(t, "f(1, *rest, key=2, **extra)\n")
	stmt := mod.Body[0].(*ast.ExprStmt)
	call, ok := stmt.Value.(*ast.Call)
	require.True(t, ok)
	require.Len(t, call.Args, 4)
	_, ok = call.Args[1].(*ast.Starred)
	assert.True(t, ok)
	kw, ok := call.Args[2].(*ast.Assign)
	require.True(t, ok)
	assert.Equal(t, "Name(key)", kw.Targets[0].String())
	_, ok = call.Args[3].(*ast.UnaryOp)
	assert.True(t, ok)
}

func TestParseAugAssignAndAnnAssign(t *testing.T) {
	mod := parseSrc(t, "total += 1\n")
	aug, ok := mod.Body[0].(*ast.AugAssign)
	require.True(t, ok)
	assert.Equal(t, "+=", aug.Op)

	mod2 := parseSrc(t, "count: int = 0\n")
	ann, ok := mod2.Body[0].(*ast.AnnAssign)
	require.True(t, ok)
	assert.Equal(t, "int", ann.Annotation)
}

func TestParseWithStatement(t *testing.T) {
	mod := parseSrc(t, "with open(path) as f:\n    read(f)\n")
	with, ok := mod.Body[0].(*ast.With)
	require.True(t, ok)
	require.NotNil(t, with.As)
	assert.Equal(t, "Name(f)", with.As.String())
}

func TestParseImportForms(t *testing.T) {
	mod := parseSrc(t, "import os.path as osp\nfrom collections import OrderedDict, defaultdict\n")
	imp, ok := mod.Body[0].(*ast.ImportStmt)
	require.True(t, ok)
	assert.Equal(t, "os.path", imp.Module)
	assert.Equal(t, "osp", imp.Asname)

	from, ok := mod.Body[1].(*ast.ImportFrom)
	require.True(t, ok)
	assert.Equal(t, "collections", from.Module)
	assert.Equal(t, []string{"OrderedDict", "defaultdict"}, from.Names)
}

func TestParseUnexpectedTokenIsError(t *testing.T) {
	toks, err := lexer.Tokenize([]byte("x = )\n"))
	require.NoError(t, err)
	_, err = Parse(toks)
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
}
