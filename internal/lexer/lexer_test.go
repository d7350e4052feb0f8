package lexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexlang/vexc/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeSimpleAssign(t *testing.T) {
	toks, err := Tokenize([]byte("x = 1 + 2\n"))
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.Ident, token.Eq, token.Int, token.Plus, token.Int, token.Newline, token.Eof,
	}, kinds(toks))
}

func TestTokenizeEmptyInput(t *testing.T) {
	toks, err := Tokenize(nil)
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{token.Eof}, kinds(toks))
}

func TestTokenizeIndentDedentBalanced(t *testing.T) {
	src := "if x:\n    y = 1\n"
	toks, err := Tokenize([]byte(src))
	require.NoError(t, err)

	indents, dedents := 0, 0
	for _, tk := range toks {
		switch tk.Kind {
		case token.Indent:
			indents++
		case token.Dedent:
			dedents++
		}
	}
	assert.Equal(t, indents, dedents)
	assert.Equal(t, token.Eof, toks[len(toks)-1].Kind)
}

func TestTokenizeSingleIndentThenEOF(t *testing.T) {
	toks, err := Tokenize([]byte("if x:\n    pass"))
	require.NoError(t, err)
	last := toks[len(toks)-2:]
	assert.Equal(t, token.Dedent, last[0].Kind)
	assert.Equal(t, token.Eof, last[1].Kind)
}

func TestTokenizeBracketSuppressesNewline(t *testing.T) {
	src := "xs = [\n1,\n2,\n]\n"
	toks, err := Tokenize([]byte(src))
	require.NoError(t, err)

	newlines := 0
	for _, tk := range toks {
		if tk.Kind == token.Newline {
			newlines++
		}
	}
	assert.Equal(t, 1, newlines)
}

func TestTokenizeLineContinuation(t *testing.T) {
	src := "x = 1 + \\\n    2\n"
	toks, err := Tokenize([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.Ident, token.Eq, token.Int, token.Plus, token.Int, token.Newline, token.Eof,
	}, kinds(toks))
}

func TestTokenizeKeywords(t *testing.T) {
	src := "def class if elif else for while return import from as in not and or True False None async await try except finally raise lambda global with is del assert break continue pass"
	toks, err := Tokenize([]byte(src))
	require.NoError(t, err)
	want := []token.Kind{
		token.Def, token.Class, token.If, token.Elif, token.Else, token.For, token.While,
		token.Return, token.Import, token.From, token.As, token.In, token.Not, token.And,
		token.Or, token.True, token.False, token.None, token.Async, token.Await, token.Try,
		token.Except, token.Finally, token.Raise, token.Lambda, token.Global, token.With,
		token.Is, token.Del, token.Assert, token.Break, token.Continue, token.Pass,
		token.Newline, token.Eof,
	}
	assert.Equal(t, want, kinds(toks))
}

func TestTokenizeNumbers(t *testing.T) {
	for _, test := range []struct {
		Name string
		Src  string
		Kind token.Kind
	}{
		{"decimal", "123", token.Int},
		{"hex", "0x1F", token.Int},
		{"octal", "0o17", token.Int},
		{"binary", "0b101", token.Int},
		{"float", "3.14", token.Float},
		{"scientific", "1e10", token.Float},
		{"negative-exponent", "1.5e-3", token.Float},
		{"complex", "2j", token.Complex},
	} {
		t.Run(test.Name, func(t *testing.T) {
			toks, err := Tokenize([]byte(test.Src))
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(toks), 1)
			assert.Equal(t, test.Kind, toks[0].Kind)
			assert.Equal(t, test.Src, toks[0].Lexeme)
		})
	}
}

func TestTokenizeStringPrefixes(t *testing.T) {
	for _, test := range []struct {
		Name string
		Src  string
		Kind token.Kind
	}{
		{"plain", `"hi"`, token.String},
		{"raw", `r"hi\n"`, token.RawString},
		{"byte", `b"hi"`, token.ByteString},
		{"fstring", `f"hi {x}"`, token.FString},
		{"raw-byte", `rb"hi\n"`, token.ByteString},
		{"raw-fstring", `fr"hi {x}"`, token.FString},
	} {
		t.Run(test.Name, func(t *testing.T) {
			toks, err := Tokenize([]byte(test.Src))
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(toks), 1)
			assert.Equal(t, test.Kind, toks[0].Kind)
		})
	}
}

func TestTokenizeTripleQuoted(t *testing.T) {
	src := "\"\"\"line one\nline two\"\"\"\n"
	toks, err := Tokenize([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, token.String, toks[0].Kind)
	assert.True(t, strings.Contains(toks[0].Lexeme, "\n"))
}

func TestTokenizeFStringLiteralOnly(t *testing.T) {
	toks, err := Tokenize([]byte(`f"just text"`))
	require.NoError(t, err)
	require.Len(t, toks[0].FParts, 1)
	assert.Equal(t, token.FLiteral, toks[0].FParts[0].Kind)
	assert.Equal(t, "just text", toks[0].FParts[0].Text)
}

func TestTokenizeFStringParts(t *testing.T) {
	toks, err := Tokenize([]byte(`f"a={x!r} b={y:.2f} lit{{braces}}"`))
	require.NoError(t, err)
	parts := toks[0].FParts
	require.Len(t, parts, 5)
	assert.Equal(t, token.FLiteral, parts[0].Kind)
	assert.Equal(t, "a=", parts[0].Text)
	assert.Equal(t, token.FExprWithConv, parts[1].Kind)
	assert.Equal(t, "x", parts[1].Expr)
	assert.Equal(t, 'r', parts[1].Conv)
	assert.Equal(t, token.FLiteral, parts[2].Kind)
	assert.Equal(t, token.FExprWithSpec, parts[3].Kind)
	assert.Equal(t, "y", parts[3].Expr)
	assert.Equal(t, ".2f", parts[3].Spec)
	assert.Equal(t, token.FLiteral, parts[4].Kind)
	assert.Equal(t, " lit{braces}", parts[4].Text)
}

func TestTokenizeWalrus(t *testing.T) {
	toks, err := Tokenize([]byte("(n := 10)"))
	require.NoError(t, err)
	assert.Contains(t, kinds(toks), token.Walrus)
}

func TestTokenizeUnexpectedCharacter(t *testing.T) {
	_, err := Tokenize([]byte("x = $"))
	require.Error(t, err)
	var lexErr *Error
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, 1, lexErr.Line)
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, err := Tokenize([]byte(`x = "abc`))
	require.Error(t, err)
}

func TestTokenizeListCompLooksLikeList(t *testing.T) {
	toks, err := Tokenize([]byte("[x for x in xs]"))
	require.NoError(t, err)
	assert.Contains(t, kinds(toks), token.For)
}
