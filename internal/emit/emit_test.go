package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexlang/vexc/internal/config"
	"github.com/vexlang/vexc/internal/lexer"
	"github.com/vexlang/vexc/internal/parser"
	"github.com/vexlang/vexc/internal/sema"
)

// compileSrc runs the lexer/parser/sema/emit pipeline directly (rather
// than through the vexc package, to avoid an import cycle) and returns
// the generated Go source, failing the test on any stage error.
func compileSrc(t *testing.T, src string) string {
	t.Helper()
	toks, err := lexer.Tokenize([]byte(src))
	require.NoError(t, err)
	mod, err := parser.Parse(toks)
	require.NoError(t, err)
	res, err := sema.Analyze(mod)
	require.NoError(t, err)
	out, err := Emit(mod, res, config.New())
	require.NoError(t, err)
	return out
}

func TestEmitSimpleFunctionAndCall(t *testing.T) {
	out := compileSrc(t, "def add(a: int, b: int) -> int:\n    return a + b\n\nprint(add(1, 2))\n")
	assert.Contains(t, out, "func add(a int64, b int64) int64")
	assert.Contains(t, out, "return (a + b)")
	assert.Contains(t, out, "func main()")
}

func TestEmitIfWhileLoop(t *testing.T) {
	out := compileSrc(t, "n = 0\nwhile n < 3:\n    if n == 1:\n        n = n + 1\n    n = n + 1\n")
	assert.Contains(t, out, "for n < int64(3) {")
	assert.Contains(t, out, "if n == int64(1) {")
}

func TestEmitRangeLoop(t *testing.T) {
	out := compileSrc(t, "total = 0\nfor i in range(10):\n    total = total + i\n")
	assert.Contains(t, out, "for i := int64(0); i < int64(10); i += int64(1)")
}

func TestEmitRangeLoopAcceptsVariableBound(t *testing.T) {
	out := compileSrc(t, "n = 5\ntotal = 0\nfor i in range(n):\n    total = total + i\n")
	assert.Contains(t, out, "for i := int64(0); i < n; i += int64(1)")
}

func TestEmitListLiteralAndAppend(t *testing.T) {
	out := compileSrc(t, "xs = [1, 2, 3]\nxs.append(4)\n")
	assert.Contains(t, out, "ListCreate(__global_allocator)")
	assert.Contains(t, out, "ListAppend(")
}

func TestEmitClassWithTrivialInit(t *testing.T) {
	out := compileSrc(t, "class Point:\n    def __init__(self, x: int, y: int):\n        self.x = x\n        self.y = y\n\np = Point(1, 2)\n")
	assert.Contains(t, out, "type Point struct")
	assert.Contains(t, out, "&Point{}")
}

func TestEmitStringConcatUsesRuntimeConcat(t *testing.T) {
	out := compileSrc(t, "a = \"x\"\nb = \"y\"\nc = a + b\n")
	assert.Contains(t, out, "Concat(__global_allocator,")
}

func TestEmitFloorDivAndMod(t *testing.T) {
	out := compileSrc(t, "a = 7\nb = 2\nc = a // b\nd = a % b\n")
	assert.Contains(t, out, "FloorDiv(")
	assert.Contains(t, out, "FloorMod(")
}

func TestEmitTryExceptBindsErrorAndDispatchesByKind(t *testing.T) {
	out := compileSrc(t, "try:\n    x = 1\nexcept ValueError as e:\n    x = 0\n")
	assert.Contains(t, out, "recover()")
	assert.Contains(t, out, `rerr.Kind.String() == "ValueError"`)
}

func TestEmitRemoveRuntimeLibSplicesSource(t *testing.T) {
	toks, err := lexer.Tokenize([]byte("x = 1\nprint(x)\n"))
	require.NoError(t, err)
	mod, err := parser.Parse(toks)
	require.NoError(t, err)
	res, err := sema.Analyze(mod)
	require.NoError(t, err)

	cfg := config.New()
	cfg.SetBool("emit.remove_runtime_lib", true)
	out, err := Emit(mod, res, cfg)
	require.NoError(t, err)

	assert.NotContains(t, out, `"github.com/vexlang/vexc/internal/runtime"`)
	assert.Contains(t, out, "func PrintValue(")
}

func TestEmitPackageNameIsConfigurable(t *testing.T) {
	toks, err := lexer.Tokenize([]byte("x = 1\n"))
	require.NoError(t, err)
	mod, err := parser.Parse(toks)
	require.NoError(t, err)
	res, err := sema.Analyze(mod)
	require.NoError(t, err)

	cfg := config.New()
	cfg.SetString("emit.package_name", "vexgen")
	out, err := Emit(mod, res, cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "package vexgen")
}
