// Package runtime is the fixed ABI emitted Vex programs link against
// (spec.md §4.5): container constructors, the allocator-threaded
// concat helper, reference counting for dynamic objects, and value
// formatting. It is a real, importable Go package — not template text —
// so `go:embed` (internal/emit's runtime splicer) captures valid,
// type-checked Go rather than a string that only looks like it.
//
// Every exported name here is one the emitter's generated call sites
// reference by the exact spelling spec.md §4.5 lists.
package runtime

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Allocator is the process-wide allocator handle threaded through
// every emitted function body under the canonical name
// __global_allocator (spec.md §4.4 "Allocator threading"). Go's
// runtime already manages memory, so Allocator carries no pool state
// of its own; its only job is to be the single value every
// allocating call receives, keeping the emitted call shape identical
// to what a manual-memory target would require.
type Allocator struct{}

// GlobalAllocator is the one Allocator instance an emitted program's
// generated main threads through every call site.
var GlobalAllocator = &Allocator{}

// ErrorKind enumerates the runtime error kinds spec.md §4.5 fixes.
type ErrorKind int

const (
	ErrNone ErrorKind = iota
	ErrIndex
	ErrKey
	ErrValue
	ErrType
	ErrZeroDivision
)

func (k ErrorKind) String() string {
	switch k {
	case ErrIndex:
		return "IndexError"
	case ErrKey:
		return "KeyError"
	case ErrValue:
		return "ValueError"
	case ErrType:
		return "TypeError"
	case ErrZeroDivision:
		return "ZeroDivisionError"
	default:
		return "NoError"
	}
}

// RuntimeError wraps an ErrorKind with a message, the Go value an
// emitted program's generated error-handling code inspects with a type
// assertion on the recovered panic value.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
}

func (e *RuntimeError) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

func NewRuntimeError(kind ErrorKind, message string) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: message}
}

// ---- dynamic tagged object (the Unknown representation) ----

// ObjectKind tags the concrete payload a DynObject currently holds.
type ObjectKind int

const (
	ObjNone ObjectKind = iota
	ObjInt
	ObjFloat
	ObjBool
	ObjString
	ObjList
	ObjDict
	ObjTuple
)

// DynObject is the runtime representation of a value whose static
// type resolved to Unknown (spec.md §3.3): a reference-counted,
// runtime-tagged cell. incref/decref below are the only operations
// that touch RefCount; every other emitted access goes through the
// typed accessors.
type DynObject struct {
	Kind     ObjectKind
	RefCount int

	IntVal    int64
	FloatVal  float64
	BoolVal   bool
	StringVal string
	ListVal   *List
	DictVal   *Dict
	TupleVal  []*DynObject
}

func NewDynInt(v int64) *DynObject    { return &DynObject{Kind: ObjInt, IntVal: v, RefCount: 1} }
func NewDynFloat(v float64) *DynObject { return &DynObject{Kind: ObjFloat, FloatVal: v, RefCount: 1} }
func NewDynBool(v bool) *DynObject    { return &DynObject{Kind: ObjBool, BoolVal: v, RefCount: 1} }
func NewDynString(v string) *DynObject {
	return &DynObject{Kind: ObjString, StringVal: v, RefCount: 1}
}
func NewDynNone() *DynObject { return &DynObject{Kind: ObjNone, RefCount: 1} }

// incref records a new owner of obj. Called at every aliasing site —
// list append, dict insert, function-argument pass where ownership is
// shared (spec.md §4.4 "Reference counting").
func incref(obj *DynObject) {
	if obj != nil {
		obj.RefCount++
	}
}

// Incref is incref's exported spelling for generated call sites.
func Incref(obj *DynObject) { incref(obj) }

// Decref drops obj's reference count, freeing its container payloads
// once it reaches zero. Owned-by-single-parent relations (a literal's
// sole reference) never call this per spec.md §4.4 — only values that
// were increfed on sharing are decreffed on removal, scope exit, or
// replacement.
func Decref(obj *DynObject, alloc *Allocator) {
	if obj == nil {
		return
	}
	obj.RefCount--
	if obj.RefCount > 0 {
		return
	}
	switch obj.Kind {
	case ObjList:
		for _, e := range obj.ListVal.Elems {
			Decref(e, alloc)
		}
	case ObjDict:
		for _, e := range obj.DictVal.entries {
			Decref(e.value, alloc)
		}
	case ObjTuple:
		for _, e := range obj.TupleVal {
			Decref(e, alloc)
		}
	}
}

// ---- List{T} ----

// List is the dynamic growable container spec.md §4.4's representation
// table assigns to List{T}.
type List struct {
	Elems []*DynObject
}

func ListCreate(alloc *Allocator) *List { return &List{} }

func ListAppend(l *List, alloc *Allocator, elem *DynObject) {
	incref(elem)
	l.Elems = append(l.Elems, elem)
}

func ListPop(l *List, alloc *Allocator) (*DynObject, error) {
	if len(l.Elems) == 0 {
		return nil, NewRuntimeError(ErrIndex, "pop from empty list")
	}
	last := l.Elems[len(l.Elems)-1]
	l.Elems = l.Elems[:len(l.Elems)-1]
	return last, nil
}

func ListGet(l *List, index int) (*DynObject, error) {
	idx := index
	if idx < 0 {
		idx += len(l.Elems)
	}
	if idx < 0 || idx >= len(l.Elems) {
		return nil, NewRuntimeError(ErrIndex, "list index out of range")
	}
	return l.Elems[idx], nil
}

// ListSlice implements Python-style negative-index and step slicing
// (spec.md §9's negative-index Open Question). A negative stop counts
// from the end as in Python, so a reverse slice through index 0 needs a
// stop of -len(l)-1 or lower.
func ListSlice(l *List, start, stop, step int) *List {
	n := len(l.Elems)
	if step == 0 {
		step = 1
	}
	lo, hi := normalizeSliceBound(start, n, step), normalizeSliceBound(stop, n, step)
	out := &List{}
	if step > 0 {
		for i := lo; i < hi && i < n; i += step {
			if i >= 0 {
				out.Elems = append(out.Elems, l.Elems[i])
			}
		}
	} else {
		for i := lo; i > hi && i >= 0; i += step {
			if i < n {
				out.Elems = append(out.Elems, l.Elems[i])
			}
		}
	}
	return out
}

func normalizeSliceBound(v, n, step int) int {
	if v < 0 {
		v += n
	}
	if step > 0 {
		if v < 0 {
			v = 0
		}
		if v > n {
			v = n
		}
	} else {
		if v < -1 {
			v = -1
		}
		if v >= n {
			v = n - 1
		}
	}
	return v
}

func ListLen(l *List) int { return len(l.Elems) }

// ---- Dict{K,V} ----

type dictEntry struct {
	key   *DynObject
	value *DynObject
}

// Dict is the hash map spec.md §4.4 assigns to Dict{K,V}. Keys are
// compared by formatted text rather than Go's native map equality
// since DynObject is not itself comparable (it carries a RefCount and
// container payloads); this mirrors the dynamic tagged-value lookup a
// real Python dict performs at runtime.
type Dict struct {
	entries map[string]dictEntry
	order   []string
}

func DictCreate(alloc *Allocator) *Dict {
	return &Dict{entries: map[string]dictEntry{}}
}

func dictKeyOf(k *DynObject) string { return FormatAny(k) }

func DictSet(d *Dict, alloc *Allocator, key, value *DynObject) {
	k := dictKeyOf(key)
	if _, exists := d.entries[k]; !exists {
		d.order = append(d.order, k)
	}
	incref(key)
	incref(value)
	d.entries[k] = dictEntry{key: key, value: value}
}

func DictGet(d *Dict, key *DynObject) (*DynObject, error) {
	if e, ok := d.entries[dictKeyOf(key)]; ok {
		return e.value, nil
	}
	return nil, NewRuntimeError(ErrKey, dictKeyOf(key))
}

func DictPop(d *Dict, key *DynObject) (*DynObject, error) {
	k := dictKeyOf(key)
	e, ok := d.entries[k]
	if !ok {
		return nil, NewRuntimeError(ErrKey, k)
	}
	delete(d.entries, k)
	for i, ok := range d.order {
		if ok == k {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return e.value, nil
}

func DictLen(d *Dict) int { return len(d.entries) }

func DictKeys(d *Dict) []*DynObject {
	out := make([]*DynObject, 0, len(d.order))
	for _, k := range d.order {
		out = append(out, d.entries[k].key)
	}
	return out
}

// DictHas reports whether key is present, backing emitted `in`/`not
// in` membership tests against a Dict{K,V} receiver.
func DictHas(d *Dict, key *DynObject) bool {
	_, ok := d.entries[dictKeyOf(key)]
	return ok
}

// ListContains reports whether elem appears in l by formatted value,
// backing emitted `in`/`not in` tests against a List{T} receiver.
func ListContains(l *List, elem *DynObject) bool {
	target := dictKeyOf(elem)
	for _, e := range l.Elems {
		if dictKeyOf(e) == target {
			return true
		}
	}
	return false
}

func DictValues(d *Dict) []*DynObject {
	out := make([]*DynObject, 0, len(d.order))
	for _, k := range d.order {
		out = append(out, d.entries[k].value)
	}
	return out
}

// ---- concat: allocator-threaded string concatenation ----

// Concat flattens a left-associative `+` chain into one call, per
// spec.md §4.4's "String concatenation" recipe. The allocator
// parameter exists to match every other allocating call's shape; Go's
// strings.Builder does the actual work.
func Concat(alloc *Allocator, parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p)
	}
	return b.String()
}

// ListSorted and ListReversed return a fresh copy of l in sorted (by
// formatted value) or reverse order, for the emitter's sorted()/
// reversed() recipe (spec.md §4.4); both results are owned by the
// caller like any other allocating call.
func ListSorted(l *List, alloc *Allocator) *List {
	out := &List{Elems: append([]*DynObject(nil), l.Elems...)}
	sort.Slice(out.Elems, func(i, j int) bool {
		return lessDyn(out.Elems[i], out.Elems[j])
	})
	for _, e := range out.Elems {
		incref(e)
	}
	return out
}

func ListReversed(l *List, alloc *Allocator) *List {
	n := len(l.Elems)
	out := &List{Elems: make([]*DynObject, n)}
	for i, e := range l.Elems {
		out.Elems[n-1-i] = e
		incref(e)
	}
	return out
}

func lessDyn(a, b *DynObject) bool {
	switch a.Kind {
	case ObjInt:
		return a.IntVal < b.IntVal
	case ObjFloat:
		return a.FloatVal < b.FloatVal
	case ObjString:
		return a.StringVal < b.StringVal
	default:
		return FormatAny(a) < FormatAny(b)
	}
}

// ParseInt and ParseFloat back the emitter's int()/float() casts from
// a string operand; a parse failure surfaces as the fixed ABI's
// ValueError kind rather than Go's own strconv error shape.
func ParseInt(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		panic(NewRuntimeError(ErrValue, fmt.Sprintf("invalid literal for int(): %q", s)))
	}
	return v
}

func ParseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		panic(NewRuntimeError(ErrValue, fmt.Sprintf("invalid literal for float(): %q", s)))
	}
	return v
}

// Truthy implements Python's truthiness test for the emitter's bool()
// cast and any dynamically-typed condition: zero/empty/None are
// false, everything else is true.
func Truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case int64:
		return x != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	case *DynObject:
		return truthyDynObject(x)
	case nil:
		return false
	default:
		return true
	}
}

func truthyDynObject(o *DynObject) bool {
	if o == nil {
		return false
	}
	switch o.Kind {
	case ObjNone:
		return false
	case ObjInt:
		return o.IntVal != 0
	case ObjFloat:
		return o.FloatVal != 0
	case ObjBool:
		return o.BoolVal
	case ObjString:
		return o.StringVal != ""
	case ObjList:
		return len(o.ListVal.Elems) > 0
	case ObjDict:
		return len(o.DictVal.order) > 0
	case ObjTuple:
		return len(o.TupleVal) > 0
	default:
		return true
	}
}

// ---- Python-style floor arithmetic ----

// FloorDiv and FloorMod give emitted `//`/`%` the floor-toward-
// negative-infinity semantics Python int division has, which diverge
// from Go's truncating `/`/`%` for mixed-sign operands — the same
// rule internal/types.FoldBinOp applies at compile time for operands
// that fold to constants.
func FloorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func FloorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && ((a < 0) != (b < 0)) {
		m += b
	}
	return m
}

// ---- formatting ----

// FormatAny formats a scalar value into its Python-style text form,
// per spec.md §4.5's formatAny.
func FormatAny(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int64:
		return fmt.Sprintf("%d", x)
	case int:
		return fmt.Sprintf("%d", x)
	case float64:
		return fmt.Sprintf("%g", x)
	case string:
		return x
	case *DynObject:
		return formatDynObject(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func formatDynObject(o *DynObject) string {
	if o == nil {
		return "None"
	}
	switch o.Kind {
	case ObjNone:
		return "None"
	case ObjInt:
		return FormatAny(o.IntVal)
	case ObjFloat:
		return FormatAny(o.FloatVal)
	case ObjBool:
		return FormatAny(o.BoolVal)
	case ObjString:
		return o.StringVal
	case ObjList:
		parts := make([]string, len(o.ListVal.Elems))
		for i, e := range o.ListVal.Elems {
			parts[i] = PrintPyObject(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case ObjDict:
		parts := make([]string, 0, len(o.DictVal.order))
		for _, k := range o.DictVal.order {
			e := o.DictVal.entries[k]
			parts = append(parts, PrintPyObject(e.key)+": "+PrintPyObject(e.value))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case ObjTuple:
		parts := make([]string, len(o.TupleVal))
		for i, e := range o.TupleVal {
			parts[i] = PrintPyObject(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return ""
	}
}

// PrintPyObject formats a dynamic value the way it would appear
// nested inside a container's repr (strings get no special quoting in
// this subset — spec.md never specifies repr-vs-str divergence, so
// FormatAny's rules apply uniformly).
func PrintPyObject(o *DynObject) string { return formatDynObject(o) }

// PrintValue is the top-level `print()` entry point for a single
// already-formatted argument; print's own recipe (spec.md §4.4) joins
// multiple arguments with a space before calling this once per line.
func PrintValue(s string) { fmt.Println(s) }
