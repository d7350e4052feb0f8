package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWidenLadder(t *testing.T) {
	for _, test := range []struct {
		Name string
		A, B *Type
		Want *Type
	}{
		{"int-int", Int(), Int(), Int()},
		{"int-float", Int(), Float(), Float()},
		{"float-string", Float(), String(), String()},
		{"int-string", Int(), String(), String()},
		{"unknown-both", Unknown(), Unknown(), Unknown()},
		{"unknown-one-side-keeps-known", Unknown(), Int(), Int()},
		{"known-one-side-unknown", String(), Unknown(), String()},
	} {
		t.Run(test.Name, func(t *testing.T) {
			got := Widen(test.A, test.B)
			assert.True(t, Equal(test.Want, got), "Widen(%s,%s) = %s, want %s", test.A, test.B, got, test.Want)
		})
	}
}

func TestWidenDisagreeingShapesIsUnknown(t *testing.T) {
	got := Widen(List(Int()), Dict(String(), Int()))
	assert.True(t, got.IsUnknown())
}

func TestContainerEquality(t *testing.T) {
	a := Array(Int(), 3)
	b := Array(Int(), 3)
	c := Array(Int(), 4)
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
}

func TestClassInfoFieldWidening(t *testing.T) {
	ci := NewClassInfo("Point")
	ci.Declare("x", Int())
	ci.Declare("x", Float())
	assert.True(t, Equal(Float(), ci.FieldType("x")))
	assert.Equal(t, []string{"x"}, ci.Fields)
}

func TestFoldBinOpIntArithmetic(t *testing.T) {
	v, ok := FoldBinOp("+", CInt(2), CInt(3))
	assert.True(t, ok)
	assert.Equal(t, CInt(5), v)

	_, ok = FoldBinOp("/", CInt(1), CInt(0))
	assert.False(t, ok)
}

func TestFoldBinOpFloorDivNegative(t *testing.T) {
	v, ok := FoldBinOp("//", CInt(-7), CInt(2))
	assert.True(t, ok)
	assert.Equal(t, CInt(-4), v)
}

func TestFoldBinOpStringConcat(t *testing.T) {
	v, ok := FoldBinOp("+", CString("a"), CString("b"))
	assert.True(t, ok)
	assert.Equal(t, CString("ab"), v)
}

func TestFoldBinOpUnfoldableOperand(t *testing.T) {
	_, ok := FoldBinOp("+", CUnknown(), CInt(1))
	assert.False(t, ok)
}
