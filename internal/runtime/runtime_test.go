package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAppendAndGet(t *testing.T) {
	l := ListCreate(GlobalAllocator)
	ListAppend(l, GlobalAllocator, NewDynInt(1))
	ListAppend(l, GlobalAllocator, NewDynInt(2))
	assert.Equal(t, 2, ListLen(l))

	v, err := ListGet(l, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.IntVal)

	v, err = ListGet(l, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.IntVal)
}

func TestListGetOutOfRange(t *testing.T) {
	l := ListCreate(GlobalAllocator)
	_, err := ListGet(l, 0)
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	assert.Equal(t, ErrIndex, rerr.Kind)
}

func TestListSliceNegativeIndices(t *testing.T) {
	l := ListCreate(GlobalAllocator)
	for i := 0; i < 5; i++ {
		ListAppend(l, GlobalAllocator, NewDynInt(int64(i)))
	}
	sliced := ListSlice(l, -3, -1, 1)
	require.Equal(t, 2, ListLen(sliced))
	v0, _ := ListGet(sliced, 0)
	v1, _ := ListGet(sliced, 1)
	assert.Equal(t, int64(2), v0.IntVal)
	assert.Equal(t, int64(3), v1.IntVal)
}

func TestListSliceReverseStep(t *testing.T) {
	l := ListCreate(GlobalAllocator)
	for i := 0; i < 4; i++ {
		ListAppend(l, GlobalAllocator, NewDynInt(int64(i)))
	}
	sliced := ListSlice(l, 3, -5, -1)
	require.Equal(t, 4, ListLen(sliced))
	v0, _ := ListGet(sliced, 0)
	assert.Equal(t, int64(3), v0.IntVal)
}

func TestDictSetGetPop(t *testing.T) {
	d := DictCreate(GlobalAllocator)
	DictSet(d, GlobalAllocator, NewDynString("a"), NewDynInt(1))
	v, err := DictGet(d, NewDynString("a"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.IntVal)

	_, err = DictPop(d, NewDynString("a"))
	require.NoError(t, err)
	assert.Equal(t, 0, DictLen(d))
}

func TestDictGetMissingKeyIsKeyError(t *testing.T) {
	d := DictCreate(GlobalAllocator)
	_, err := DictGet(d, NewDynString("missing"))
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	assert.Equal(t, ErrKey, rerr.Kind)
}

func TestDictKeysPreservesInsertionOrder(t *testing.T) {
	d := DictCreate(GlobalAllocator)
	DictSet(d, GlobalAllocator, NewDynString("z"), NewDynInt(1))
	DictSet(d, GlobalAllocator, NewDynString("a"), NewDynInt(2))
	keys := DictKeys(d)
	require.Len(t, keys, 2)
	assert.Equal(t, "z", keys[0].StringVal)
	assert.Equal(t, "a", keys[1].StringVal)
}

func TestIncrefDecrefFreesContainerAtZero(t *testing.T) {
	inner := NewDynInt(7)
	l := &List{Elems: []*DynObject{inner}}
	obj := &DynObject{Kind: ObjList, ListVal: l, RefCount: 1}
	Incref(obj)
	assert.Equal(t, 2, obj.RefCount)
	Decref(obj, GlobalAllocator)
	assert.Equal(t, 1, obj.RefCount)
	Decref(obj, GlobalAllocator)
	assert.Equal(t, 0, obj.RefCount)
	assert.Equal(t, 0, inner.RefCount)
}

func TestConcatFlattensParts(t *testing.T) {
	got := Concat(GlobalAllocator, []string{"a", "b", "c"})
	assert.Equal(t, "abc", got)
}

func TestFormatAnyScalars(t *testing.T) {
	assert.Equal(t, "True", FormatAny(true))
	assert.Equal(t, "False", FormatAny(false))
	assert.Equal(t, "None", FormatAny(nil))
	assert.Equal(t, "3", FormatAny(int64(3)))
}

func TestFormatDynObjectList(t *testing.T) {
	l := ListCreate(GlobalAllocator)
	ListAppend(l, GlobalAllocator, NewDynInt(1))
	ListAppend(l, GlobalAllocator, NewDynInt(2))
	obj := &DynObject{Kind: ObjList, ListVal: l}
	assert.Equal(t, "[1, 2]", FormatAny(obj))
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "ZeroDivisionError", ErrZeroDivision.String())
	assert.Equal(t, "IndexError", ErrIndex.String())
}

func TestFloorDivNegativeOperands(t *testing.T) {
	assert.Equal(t, int64(-4), FloorDiv(-7, 2))
	assert.Equal(t, int64(3), FloorDiv(7, 2))
}

func TestFloorModNegativeOperands(t *testing.T) {
	assert.Equal(t, int64(1), FloorMod(-7, 2))
	assert.Equal(t, int64(1), FloorMod(7, 2))
}

func TestListContains(t *testing.T) {
	l := ListCreate(GlobalAllocator)
	ListAppend(l, GlobalAllocator, NewDynInt(1))
	ListAppend(l, GlobalAllocator, NewDynInt(2))
	assert.True(t, ListContains(l, NewDynInt(2)))
	assert.False(t, ListContains(l, NewDynInt(3)))
}

func TestDictHas(t *testing.T) {
	d := DictCreate(GlobalAllocator)
	DictSet(d, GlobalAllocator, NewDynString("a"), NewDynInt(1))
	assert.True(t, DictHas(d, NewDynString("a")))
	assert.False(t, DictHas(d, NewDynString("b")))
}

func TestListSortedDoesNotMutateOriginal(t *testing.T) {
	l := ListCreate(GlobalAllocator)
	ListAppend(l, GlobalAllocator, NewDynInt(3))
	ListAppend(l, GlobalAllocator, NewDynInt(1))
	ListAppend(l, GlobalAllocator, NewDynInt(2))
	sorted := ListSorted(l, GlobalAllocator)
	v0, _ := ListGet(sorted, 0)
	v1, _ := ListGet(sorted, 1)
	v2, _ := ListGet(sorted, 2)
	assert.Equal(t, []int64{1, 2, 3}, []int64{v0.IntVal, v1.IntVal, v2.IntVal})
	orig0, _ := ListGet(l, 0)
	assert.Equal(t, int64(3), orig0.IntVal)
}

func TestListReversed(t *testing.T) {
	l := ListCreate(GlobalAllocator)
	ListAppend(l, GlobalAllocator, NewDynInt(1))
	ListAppend(l, GlobalAllocator, NewDynInt(2))
	reversed := ListReversed(l, GlobalAllocator)
	v0, _ := ListGet(reversed, 0)
	assert.Equal(t, int64(2), v0.IntVal)
}

func TestParseIntAndFloat(t *testing.T) {
	assert.Equal(t, int64(42), ParseInt("42"))
	assert.Equal(t, 3.5, ParseFloat("3.5"))
}

func TestParseIntPanicsOnInvalidInput(t *testing.T) {
	assert.Panics(t, func() { ParseInt("not-a-number") })
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(int64(0)))
	assert.True(t, Truthy(int64(1)))
	assert.False(t, Truthy(""))
	assert.True(t, Truthy("x"))
	assert.False(t, Truthy(nil))
}
