package ir

import (
	"fmt"
	"strings"
	"sync"
)

// BasicValueType enumerates the primitive scalar kinds the core understands.
type BasicValueType byte

const (
	BasicValueNone BasicValueType = iota
	BasicValueInt1
	BasicValueInt8
	BasicValueInt16
	BasicValueInt32
	BasicValueInt64
	BasicValueFloat16
	BasicValueFloat32
	BasicValueFloat64
)

// String implements fmt.Stringer.
func (bv BasicValueType) String() string {
	switch bv {
	case BasicValueInt1:
		return "i1"
	case BasicValueInt8:
		return "i8"
	case BasicValueInt16:
		return "i16"
	case BasicValueInt32:
		return "i32"
	case BasicValueInt64:
		return "i64"
	case BasicValueFloat16:
		return "f16"
	case BasicValueFloat32:
		return "f32"
	case BasicValueFloat64:
		return "f64"
	default:
		return "none"
	}
}

// IsFloat reports whether bv is one of the IEEE-754 kinds.
func (bv BasicValueType) IsFloat() bool {
	switch bv {
	case BasicValueFloat16, BasicValueFloat32, BasicValueFloat64:
		return true
	default:
		return false
	}
}

// IsInteger reports whether bv is an integral kind (including Int1).
func (bv BasicValueType) IsInteger() bool {
	return bv != BasicValueNone && !bv.IsFloat()
}

// BitWidth returns the bit width of bv, or 0 for BasicValueNone.
func (bv BasicValueType) BitWidth() int {
	switch bv {
	case BasicValueInt1:
		return 1
	case BasicValueInt8:
		return 8
	case BasicValueInt16, BasicValueFloat16:
		return 16
	case BasicValueInt32, BasicValueFloat32:
		return 32
	case BasicValueInt64, BasicValueFloat64:
		return 64
	default:
		return 0
	}
}

// AddressSpace names a memory region carried by pointer/view types.
type AddressSpace byte

const (
	AddressSpaceGeneric AddressSpace = iota
	AddressSpaceGlobal
	AddressSpaceShared
	AddressSpaceLocal
	AddressSpaceConstant
)

// String implements fmt.Stringer.
func (a AddressSpace) String() string {
	switch a {
	case AddressSpaceGlobal:
		return "global"
	case AddressSpaceShared:
		return "shared"
	case AddressSpaceLocal:
		return "local"
	case AddressSpaceConstant:
		return "constant"
	default:
		return "generic"
	}
}

// TypeKind is the discriminator of a TypeNode's variant.
type TypeKind byte

const (
	TypeKindVoid TypeKind = iota + 1
	TypeKindPrimitive
	TypeKindString
	TypeKindPointer
	TypeKindView
	TypeKindArray
	TypeKindStructure
	TypeKindFunction
	TypeKindPadding
)

// Field is one element of a Structure TypeNode's flat field list.
type Field struct {
	Type   *TypeNode
	Offset int
}

// TypeNode is an interned, structurally-immutable type. Two calls to
// TypeContext.Intern with structurally equal inputs return the identical
// *TypeNode: pointer identity after interning.
type TypeNode struct {
	Kind TypeKind

	// Primitive / Padding
	BV BasicValueType

	// Pointer / View / Array element
	Elem  *TypeNode
	Space AddressSpace

	// Array
	Rank   int
	Length int // -1 when unknown/unbounded

	// Structure
	Fields []Field

	// Function
	Params []*TypeNode
	Ret    *TypeNode
}

// String implements fmt.Stringer.
func (t *TypeNode) String() string {
	switch t.Kind {
	case TypeKindVoid:
		return "void"
	case TypeKindPrimitive:
		return t.BV.String()
	case TypeKindString:
		return "string"
	case TypeKindPointer:
		return fmt.Sprintf("*%s<%s>", t.Elem, t.Space)
	case TypeKindView:
		return fmt.Sprintf("view<%s,%s>", t.Elem, t.Space)
	case TypeKindArray:
		if t.Length >= 0 {
			return fmt.Sprintf("array<%s,rank=%d,len=%d>", t.Elem, t.Rank, t.Length)
		}
		return fmt.Sprintf("array<%s,rank=%d>", t.Elem, t.Rank)
	case TypeKindStructure:
		fs := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			fs[i] = f.Type.String()
		}
		return fmt.Sprintf("struct{%s}", strings.Join(fs, ","))
	case TypeKindFunction:
		ps := make([]string, len(t.Params))
		for i, p := range t.Params {
			ps[i] = p.String()
		}
		return fmt.Sprintf("fn(%s)->%s", strings.Join(ps, ","), t.Ret)
	case TypeKindPadding:
		return fmt.Sprintf("padding<%s>", t.BV)
	default:
		return "invalid"
	}
}

// IsPointer reports whether t is a Pointer TypeNode.
func (t *TypeNode) IsPointer() bool { return t.Kind == TypeKindPointer }

// IsView reports whether t is a View TypeNode.
func (t *TypeNode) IsView() bool { return t.Kind == TypeKindView }

// IsStructure reports whether t is a Structure TypeNode.
func (t *TypeNode) IsStructure() bool { return t.Kind == TypeKindStructure }

// IsPrimitive reports whether t is a Primitive TypeNode.
func (t *TypeNode) IsPrimitive() bool { return t.Kind == TypeKindPrimitive }

// structuralKey is the hashable representation used by the per-kind interner
// map; it flattens a TypeNode's structural content (including address
// space) so structurally-equal constructions collide in the map.
type structuralKey string

func keyOf(t *TypeNode) structuralKey {
	var sb strings.Builder
	writeKey(&sb, t)
	return structuralKey(sb.String())
}

func writeKey(sb *strings.Builder, t *TypeNode) {
	if t == nil {
		sb.WriteString("<nil>")
		return
	}
	fmt.Fprintf(sb, "%d|%d|%d|%d|%d|", t.Kind, t.BV, t.Space, t.Rank, t.Length)
	writeKey(sb, t.Elem)
	sb.WriteByte('[')
	for _, f := range t.Fields {
		fmt.Fprintf(sb, "%d:", f.Offset)
		writeKey(sb, f.Type)
		sb.WriteByte(',')
	}
	sb.WriteByte(']')
	sb.WriteByte('(')
	for _, p := range t.Params {
		writeKey(sb, p)
		sb.WriteByte(',')
	}
	sb.WriteByte(')')
	writeKey(sb, t.Ret)
}

// TypeContext interns every TypeNode for the life of a compilation Context.
// It permits concurrent reads across method builders compiling distinct
// methods; interning is guarded by a single coarse RWMutex, which is plenty
// for the interning rate a type table like this actually sees.
type TypeContext struct {
	mu sync.RWMutex

	primitives [9]*TypeNode // indexed by BasicValueType
	voidType   *TypeNode
	stringType *TypeNode
	byKey      map[structuralKey]*TypeNode

	sizeCache  map[*TypeNode]int
	alignCache map[*TypeNode]int
}

// NewTypeContext creates an empty TypeContext with the fixed primitive table
// pre-populated: a fixed table maps BasicValueType to PrimitiveType.
func NewTypeContext() *TypeContext {
	tc := &TypeContext{
		byKey:      make(map[structuralKey]*TypeNode),
		sizeCache:  make(map[*TypeNode]int),
		alignCache: make(map[*TypeNode]int),
	}
	for bv := BasicValueInt1; bv <= BasicValueFloat64; bv++ {
		tc.primitives[bv] = &TypeNode{Kind: TypeKindPrimitive, BV: bv}
	}
	tc.voidType = &TypeNode{Kind: TypeKindVoid}
	tc.stringType = &TypeNode{Kind: TypeKindString}
	return tc
}

// Void returns the canonical Void type.
func (tc *TypeContext) Void() *TypeNode { return tc.voidType }

// StringType returns the canonical String type.
func (tc *TypeContext) StringType() *TypeNode { return tc.stringType }

// Primitive returns the canonical PrimitiveType for bv.
func (tc *TypeContext) Primitive(bv BasicValueType) *TypeNode {
	if bv == BasicValueNone || int(bv) >= len(tc.primitives) {
		panic(newError(ArgumentOutOfRange, NoLocation, "Primitive", "bv"))
	}
	return tc.primitives[bv]
}

// internStructural looks up or inserts a structurally-keyed TypeNode.
func (tc *TypeContext) internStructural(t *TypeNode) *TypeNode {
	k := keyOf(t)
	tc.mu.RLock()
	if existing, ok := tc.byKey[k]; ok {
		tc.mu.RUnlock()
		return existing
	}
	tc.mu.RUnlock()

	tc.mu.Lock()
	defer tc.mu.Unlock()
	if existing, ok := tc.byKey[k]; ok {
		return existing
	}
	tc.byKey[k] = t
	return t
}

// Pointer interns a Pointer(elem, space) TypeNode.
func (tc *TypeContext) Pointer(elem *TypeNode, space AddressSpace) *TypeNode {
	return tc.internStructural(&TypeNode{Kind: TypeKindPointer, Elem: elem, Space: space})
}

// View interns a View(elem, space) TypeNode.
func (tc *TypeContext) View(elem *TypeNode, space AddressSpace) *TypeNode {
	return tc.internStructural(&TypeNode{Kind: TypeKindView, Elem: elem, Space: space})
}

// Array interns an Array(elem, rank, length?) TypeNode. length < 0 means
// unknown/unbounded.
func (tc *TypeContext) Array(elem *TypeNode, rank, length int) *TypeNode {
	return tc.internStructural(&TypeNode{Kind: TypeKindArray, Elem: elem, Rank: rank, Length: length})
}

// Structure interns a Structure(fields) TypeNode. Offsets are computed by
// the caller (typically via StructLayout) and carried in Field.Offset so
// that structural equality also captures layout, per §4.1's padding note.
func (tc *TypeContext) Structure(fields []Field) *TypeNode {
	cp := make([]Field, len(fields))
	copy(cp, fields)
	return tc.internStructural(&TypeNode{Kind: TypeKindStructure, Fields: cp})
}

// Function interns a Function(params, ret) TypeNode.
func (tc *TypeContext) Function(params []*TypeNode, ret *TypeNode) *TypeNode {
	cp := make([]*TypeNode, len(params))
	copy(cp, params)
	return tc.internStructural(&TypeNode{Kind: TypeKindFunction, Params: cp, Ret: ret})
}

// Padding interns a Padding(bv) TypeNode used to represent unnamed bytes in
// a decomposed structure so a later pass can recover the original layout.
func (tc *TypeContext) Padding(bv BasicValueType) *TypeNode {
	return tc.internStructural(&TypeNode{Kind: TypeKindPadding, BV: bv})
}

// SizeOf returns the size in bytes of t, honoring natural alignment and
// struct padding rules. Results are memoized per node since repeated
// field-access paths in object lowering would otherwise walk the same
// structure repeatedly.
func (tc *TypeContext) SizeOf(t *TypeNode) int {
	tc.mu.RLock()
	if s, ok := tc.sizeCache[t]; ok {
		tc.mu.RUnlock()
		return s
	}
	tc.mu.RUnlock()

	var s int
	switch t.Kind {
	case TypeKindVoid:
		s = 0
	case TypeKindPrimitive, TypeKindPadding:
		s = (t.BV.BitWidth() + 7) / 8
	case TypeKindString, TypeKindPointer, TypeKindView:
		s = 8
	case TypeKindArray:
		if t.Length >= 0 {
			s = tc.SizeOf(t.Elem) * t.Length
		}
	case TypeKindStructure:
		for _, f := range t.Fields {
			end := f.Offset + tc.SizeOf(f.Type)
			if end > s {
				s = end
			}
		}
		if a := tc.AlignOf(t); a > 0 {
			s = (s + a - 1) / a * a
		}
	case TypeKindFunction:
		s = 8 // function pointer width
	}

	tc.mu.Lock()
	tc.sizeCache[t] = s
	tc.mu.Unlock()
	return s
}

// AlignOf returns the natural alignment of t in bytes.
func (tc *TypeContext) AlignOf(t *TypeNode) int {
	tc.mu.RLock()
	if a, ok := tc.alignCache[t]; ok {
		tc.mu.RUnlock()
		return a
	}
	tc.mu.RUnlock()

	var a int
	switch t.Kind {
	case TypeKindPrimitive, TypeKindPadding:
		a = (t.BV.BitWidth() + 7) / 8
		if a == 0 {
			a = 1
		}
	case TypeKindString, TypeKindPointer, TypeKindView, TypeKindFunction:
		a = 8
	case TypeKindArray:
		a = tc.AlignOf(t.Elem)
	case TypeKindStructure:
		for _, f := range t.Fields {
			if fa := tc.AlignOf(f.Type); fa > a {
				a = fa
			}
		}
		if a == 0 {
			a = 1
		}
	default:
		a = 1
	}

	tc.mu.Lock()
	tc.alignCache[t] = a
	tc.mu.Unlock()
	return a
}

// StructLayout computes byte offsets for fieldTypes under natural alignment
// rules, inserting explicit Padding TypeNodes wherever the natural offset
// leaves a gap, then interns the resulting Structure. This is the mechanism
// by which createObjectValue's structure decomposition (§4.4) recovers
// original byte layout.
func (tc *TypeContext) StructLayout(fieldTypes []*TypeNode) *TypeNode {
	var fields []Field
	offset := 0
	for _, ft := range fieldTypes {
		align := tc.AlignOf(ft)
		if align > 0 && offset%align != 0 {
			padLen := align - offset%align
			fields = append(fields, Field{Type: tc.paddingOfSize(padLen), Offset: offset})
			offset += padLen
		}
		fields = append(fields, Field{Type: ft, Offset: offset})
		offset += tc.SizeOf(ft)
	}
	return tc.Structure(fields)
}

func (tc *TypeContext) paddingOfSize(n int) *TypeNode {
	return tc.Padding(paddingKindForSize(n))
}

// FieldSpan is a contiguous range (index, span) over a structure's flat
// field list, denoting a scalar (span==1) or bulk (span>1) field access.
type FieldSpan struct {
	Index int
	Span  int
}

// Contains reports whether other lies entirely within s.
func (s FieldSpan) Contains(other FieldSpan) bool {
	return other.Index >= s.Index && other.Index+other.Span <= s.Index+s.Span
}

// Overlaps reports whether s and other share at least one index without one
// necessarily containing the other.
func (s FieldSpan) Overlaps(other FieldSpan) bool {
	return s.Index < other.Index+other.Span && other.Index < s.Index+s.Span
}

// Narrow returns the span of sub expressed relative to s's own start, i.e.
// the field span used to re-address sub once already inside s. Panics
// (Assertion) if sub is not contained in s.
func (s FieldSpan) Narrow(sub FieldSpan) FieldSpan {
	if !s.Contains(sub) {
		panic(newError(Assertion, NoLocation, "FieldSpan.Narrow", "sub not contained in s"))
	}
	return FieldSpan{Index: sub.Index - s.Index, Span: sub.Span}
}

// IsScalar reports whether the span covers exactly one field.
func (s FieldSpan) IsScalar() bool { return s.Span == 1 }
