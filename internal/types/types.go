// Package types implements the NativeType lattice the semantic
// analyzer infers over and the emitter picks Go representations from,
// per spec.md §4.3/§4.4. Grounded on the teacher's Query[K,V] typed-
// result idiom (query_analysis.go) for the shape of a small,
// comparable value type threaded through multiple passes — here
// specialized from a generic cache key to the fixed native-type
// lattice.
package types

import "strings"

// Kind discriminates a Type's variant.
type Kind int

const (
	UnknownKind Kind = iota
	IntKind
	FloatKind
	BoolKind
	StringKind
	NoneKind
	ArrayKind
	ListKind
	DictKind
	TupleKind
	ClosureKind
	FunctionKind
	ClassInstanceKind
)

func (k Kind) String() string {
	switch k {
	case UnknownKind:
		return "Unknown"
	case IntKind:
		return "Int"
	case FloatKind:
		return "Float"
	case BoolKind:
		return "Bool"
	case StringKind:
		return "String"
	case NoneKind:
		return "None"
	case ArrayKind:
		return "Array"
	case ListKind:
		return "List"
	case DictKind:
		return "Dict"
	case TupleKind:
		return "Tuple"
	case ClosureKind:
		return "Closure"
	case FunctionKind:
		return "Function"
	case ClassInstanceKind:
		return "ClassInstance"
	}
	return "Invalid"
}

// Type is a single node of the NativeType lattice. Only the fields
// relevant to Kind are populated; the rest are zero.
type Type struct {
	Kind Kind

	Elem   *Type // Array/List element type
	Length int   // Array length; -1 if unknown (spec.md §4.4's Array{T,N})

	Key   *Type // Dict key type
	Value *Type // Dict value type

	Elems []*Type // Tuple member types

	Params []*Type // Function/Closure parameter types
	Ret    *Type   // Function/Closure return type
	Name   string  // Closure struct name, or ClassInstance class name
}

func Unknown() *Type { return &Type{Kind: UnknownKind} }
func Int() *Type     { return &Type{Kind: IntKind} }
func Float() *Type   { return &Type{Kind: FloatKind} }
func Bool() *Type    { return &Type{Kind: BoolKind} }
func String() *Type  { return &Type{Kind: StringKind} }
func None() *Type    { return &Type{Kind: NoneKind} }

func Array(elem *Type, length int) *Type {
	return &Type{Kind: ArrayKind, Elem: elem, Length: length}
}

func List(elem *Type) *Type { return &Type{Kind: ListKind, Elem: elem} }

func Dict(key, value *Type) *Type { return &Type{Kind: DictKind, Key: key, Value: value} }

func Tuple(elems ...*Type) *Type { return &Type{Kind: TupleKind, Elems: elems} }

func Closure(name string, params []*Type, ret *Type) *Type {
	return &Type{Kind: ClosureKind, Name: name, Params: params, Ret: ret}
}

func Function(params []*Type, ret *Type) *Type {
	return &Type{Kind: FunctionKind, Params: params, Ret: ret}
}

func ClassInstance(name string) *Type {
	return &Type{Kind: ClassInstanceKind, Name: name}
}

func (t *Type) IsUnknown() bool { return t == nil || t.Kind == UnknownKind }

func (t *Type) IsNumeric() bool {
	return t != nil && (t.Kind == IntKind || t.Kind == FloatKind)
}

func (t *Type) IsContainer() bool {
	return t != nil && (t.Kind == ArrayKind || t.Kind == ListKind || t.Kind == DictKind || t.Kind == TupleKind)
}

func (t *Type) String() string {
	if t == nil {
		return "Unknown"
	}
	switch t.Kind {
	case ArrayKind:
		return "Array{" + t.Elem.String() + "," + itoa(t.Length) + "}"
	case ListKind:
		return "List{" + t.Elem.String() + "}"
	case DictKind:
		return "Dict{" + t.Key.String() + "," + t.Value.String() + "}"
	case TupleKind:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = e.String()
		}
		return "Tuple{" + strings.Join(parts, ",") + "}"
	case ClosureKind:
		return "Closure{" + t.Name + "}"
	case FunctionKind:
		parts := make([]string, len(t.Params))
		for i, e := range t.Params {
			parts[i] = e.String()
		}
		return "Function{(" + strings.Join(parts, ",") + ")->" + t.Ret.String() + "}"
	case ClassInstanceKind:
		return "ClassInstance{" + t.Name + "}"
	default:
		return t.Kind.String()
	}
}

func itoa(n int) string {
	if n < 0 {
		return "?"
	}
	digits := "0123456789"
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{digits[n%10]}, b...)
		n /= 10
	}
	return string(b)
}

// Equal reports structural equality, recursing into element/key/
// value/param types.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ArrayKind:
		return a.Length == b.Length && Equal(a.Elem, b.Elem)
	case ListKind:
		return Equal(a.Elem, b.Elem)
	case DictKind:
		return Equal(a.Key, b.Key) && Equal(a.Value, b.Value)
	case TupleKind:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !Equal(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case ClosureKind, FunctionKind:
		if len(a.Params) != len(b.Params) || !Equal(a.Ret, b.Ret) {
			return false
		}
		for i := range a.Params {
			if !Equal(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return a.Name == b.Name
	case ClassInstanceKind:
		return a.Name == b.Name
	default:
		return true
	}
}

// rank orders the numeric/string widening ladder from spec.md §4.3:
// Int ≤ Float ≤ String. Anything else ranks below Int (no widening
// path between e.g. containers).
func rank(k Kind) int {
	switch k {
	case IntKind:
		return 1
	case FloatKind:
		return 2
	case StringKind:
		return 3
	default:
		return 0
	}
}

// Widen computes the join of two inferred types along the
// Int ≤ Float ≤ String ladder. Unknown is the lattice's top element,
// but per spec.md §4.3 it is only contagious when BOTH operands are
// already Unknown — widening a known type against one Unknown branch
// keeps the known type, since at least one branch pins the value's
// shape.
func Widen(a, b *Type) *Type {
	if a.IsUnknown() && b.IsUnknown() {
		return Unknown()
	}
	if a.IsUnknown() {
		return b
	}
	if b.IsUnknown() {
		return a
	}
	if Equal(a, b) {
		return a
	}
	ra, rb := rank(a.Kind), rank(b.Kind)
	if ra == 0 || rb == 0 {
		// At least one side is off the numeric/string ladder and they
		// aren't structurally equal — the two branches disagree on
		// shape entirely, which the lattice resolves to Unknown.
		return Unknown()
	}
	if ra >= rb {
		return a
	}
	return b
}
