package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/lexer"
	"github.com/vexlang/vexc/internal/parser"
	"github.com/vexlang/vexc/internal/types"
)

func analyzeSrc(t *testing.T, src string) (*ast.Module, *Result) {
	t.Helper()
	toks, err := lexer.Tokenize([]byte(src))
	require.NoError(t, err)
	mod, err := parser.Parse(toks)
	require.NoError(t, err)
	res, err := Analyze(mod)
	require.NoError(t, err)
	return mod, res
}

func TestInferSimpleAssignType(t *testing.T) {
	mod, res := analyzeSrc(t, "x = 1\ny = x + 2.5\n")
	assign := mod.Body[1].(*ast.Assign)
	got := res.ExprTypes[assign.Value]
	assert.True(t, types.Equal(types.Float(), got), "got %s", got)
}

func TestConstantFoldingArithmetic(t *testing.T) {
	mod, res := analyzeSrc(t, "x = 2 + 3 * 4\n")
	assign := mod.Body[0].(*ast.Assign)
	folded, ok := res.Folded[assign.Value]
	require.True(t, ok)
	assert.Equal(t, int64(14), folded.IntVal)
}

func TestConstantFoldingStopsAtRuntimeValue(t *testing.T) {
	mod, res := analyzeSrc(t, "def f(n):\n    return n + 1\n")
	fn := mod.Body[0].(*ast.FunctionDef)
	ret := fn.Body[0].(*ast.Return)
	_, ok := res.Folded[ret.Value]
	assert.False(t, ok)
}

func TestClosureDetection(t *testing.T) {
	mod, res := analyzeSrc(t, `
def make_adder(n):
    def adder(x):
        return x + n
    return adder
`)
	outer := mod.Body[0].(*ast.FunctionDef)
	inner := outer.Body[0].(*ast.FunctionDef)
	assert.True(t, res.Closures[inner], "adder should be detected as a closure")
	assert.True(t, res.ClosureFactories[outer], "make_adder should be detected as a closure factory")
	assert.Equal(t, []string{"n"}, res.FreeVars[inner])
}

func TestNonClosureFunctionNotFlagged(t *testing.T) {
	mod, res := analyzeSrc(t, `
def add(a, b):
    return a + b
`)
	fn := mod.Body[0].(*ast.FunctionDef)
	assert.False(t, res.Closures[fn])
}

func TestMutationAnalysisDetectsAppend(t *testing.T) {
	mod, res := analyzeSrc(t, "xs = [1, 2, 3]\nxs.append(4)\n")
	assign := mod.Body[0].(*ast.Assign)
	lit := assign.Value.(*ast.List)
	assert.False(t, res.ArrayEligible[lit], "a list that is appended to must not be array-eligible")
}

func TestMutationAnalysisAllowsUntouchedList(t *testing.T) {
	mod, res := analyzeSrc(t, "xs = [1, 2, 3]\ny = xs[0]\n")
	assign := mod.Body[0].(*ast.Assign)
	lit := assign.Value.(*ast.List)
	assert.True(t, res.ArrayEligible[lit])
}

func TestMutationAnalysisConservativeOnCallArgument(t *testing.T) {
	mod, res := analyzeSrc(t, `
def consume(xs):
    pass

ys = [1, 2, 3]
consume(ys)
`)
	assign := mod.Body[1].(*ast.Assign)
	lit := assign.Value.(*ast.List)
	assert.False(t, res.ArrayEligible[lit], "passing a list into a call must conservatively mark it mutated")
}

func TestClassFieldTypeInference(t *testing.T) {
	_, res := analyzeSrc(t, `
class Point:
    def __init__(self, x, y):
        self.x = x
        self.y = y + 1
`)
	ci, ok := res.Classes.Get("Point")
	require.True(t, ok)
	assert.Contains(t, ci.Fields, "x")
	assert.Contains(t, ci.Fields, "y")
}

func TestForLoopElementType(t *testing.T) {
	mod, res := analyzeSrc(t, "xs = [1, 2, 3]\nfor x in xs:\n    y = x + 1\n")
	forStmt := mod.Body[1].(*ast.For)
	inner := forStmt.Body[0].(*ast.Assign)
	got := res.ExprTypes[inner.Value]
	assert.True(t, types.Equal(types.Int(), got), "got %s", got)
}
