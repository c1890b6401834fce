package ir

// LoadElementAddress computes the address of element idx within pointer p,
// folding identity for idx==0.
func (b *IRBuilder) LoadElementAddress(p, idx ValueRef, loc Location) ValueRef {
	pv := b.resolve(p)
	if !pv.typ.IsPointer() {
		panic(errTypeMismatch(loc, "LoadElementAddress", "operand is not a pointer"))
	}
	if raw, _, ok := b.asPrimitiveConst(idx); ok && raw == 0 {
		return p
	}
	v := b.newValue(KindLoadElementAddress, pv.typ, loc)
	v.operands = []ValueRef{p, idx}
	return b.emit(v)
}

// LoadFieldAddress computes the address of span within pointer p, folding
// identity when the element is non-structure and span is scalar, and
// composing nested LoadFieldAddress chains by offsetting span (relative to
// the inner field type) by the outer span's index.
func (b *IRBuilder) LoadFieldAddress(p ValueRef, span FieldSpan, fieldType *TypeNode, loc Location) ValueRef {
	pv := b.resolve(p)
	if !pv.typ.IsPointer() {
		panic(errTypeMismatch(loc, "LoadFieldAddress", "operand is not a pointer"))
	}
	if !pv.typ.Elem.IsStructure() && span.Span < 2 {
		return p
	}
	if pv.kind == KindLoadFieldAddress {
		outer := pv.span
		return b.LoadFieldAddress(pv.operands[0], FieldSpan{Index: outer.Index + span.Index, Span: span.Span}, fieldType, loc)
	}
	target := b.ctx.Types.Pointer(fieldType, pv.typ.Space)
	v := b.newValue(KindLoadFieldAddress, target, loc)
	v.span = span
	v.operands = []ValueRef{p}
	return b.emit(v)
}

// AlignmentOffset expands to the closed-form
// `base := ptr & (a-1); offset := a - base; base==0 ? 0 : offset` using the
// builder's own arithmetic factories.
func (b *IRBuilder) AlignmentOffset(ptr ValueRef, alignment uint64, loc Location) ValueRef {
	asInt := b.PointerAsInt(ptr, BasicValueInt64, loc)
	aMinus1 := b.CreatePrimitive(BasicValueInt64, alignment-1, loc)
	base := b.Binary(ArithAnd, asInt, aMinus1, 0, loc)
	aConst := b.CreatePrimitive(BasicValueInt64, alignment, loc)
	offset := b.Binary(ArithSub, aConst, base, 0, loc)
	zero := b.CreatePrimitive(BasicValueInt64, 0, loc)
	isZero := b.Compare(base, zero, CmpEqual, 0, loc)
	return b.Predicate(isZero, zero, offset, loc)
}

// CreateArrayValue builds a NewArray of arrayType with the given
// per-dimension lengths. Under ArrayModeRejectStatic any length that is not
// a Primitive constant fails NotSupported; no other property of the array
// (static or not, mutable or not) is inspected.
func (b *IRBuilder) CreateArrayValue(arrayType *TypeNode, lengths []ValueRef, mode ArrayMode, loc Location) ValueRef {
	if mode == ArrayModeRejectStatic {
		for _, l := range lengths {
			lv := b.resolve(l)
			if lv.kind != KindPrimitive {
				panic(errNotSupported(loc, "CreateArrayValue", "NotSupportedLoadFromStaticArray"))
			}
		}
	}
	v := b.newValue(KindNewArray, arrayType, loc)
	v.fields = append([]ValueRef(nil), lengths...)
	return b.emit(v)
}

// GetArrayLength returns a's total element count, or its length along
// dimension d when dim is non-negative.
func (b *IRBuilder) GetArrayLength(a ValueRef, dim int, loc Location) ValueRef {
	av := b.resolve(a)
	if !av.typ.IsPointer() && av.kind != KindNewArray {
		panic(errTypeMismatch(loc, "GetArrayLength", "operand is not an array"))
	}
	if dim >= 0 && av.kind == KindNewArray && dim < len(av.fields) {
		return av.fields[dim]
	}
	g := b.newValue(KindGetArrayLength, b.ctx.Types.Primitive(BasicValueInt32), loc)
	g.raw64 = uint64(dim)
	g.operands = []ValueRef{a}
	return b.emit(g)
}

// LoadArrayElementAddress forms the address of element idx (one per
// dimension) within array a.
func (b *IRBuilder) LoadArrayElementAddress(a ValueRef, idx []ValueRef, loc Location) ValueRef {
	av := b.resolve(a)
	v := b.newValue(KindLoadElementAddress, b.ctx.Types.Pointer(av.typ.Elem, av.typ.Space), loc)
	v.operands = append([]ValueRef{a}, idx...)
	return b.emit(v)
}

// CreateView constructs a view over pointer p spanning length elements of
// elem; it always constructs a new NewView value.
func (b *IRBuilder) CreateView(p, length ValueRef, elem *TypeNode, loc Location) ValueRef {
	pv := b.resolve(p)
	viewType := b.ctx.Types.View(elem, pv.typ.Space)
	v := b.newValue(KindNewView, viewType, loc)
	v.operands = []ValueRef{p, length}
	return b.emit(v)
}

// GetViewLength returns a view's element count.
func (b *IRBuilder) GetViewLength(view ValueRef, loc Location) ValueRef {
	vv := b.resolve(view)
	if !vv.typ.IsView() {
		panic(errTypeMismatch(loc, "GetViewLength", "operand is not a view"))
	}
	g := b.newValue(KindGetViewLength, b.ctx.Types.Primitive(BasicValueInt32), loc)
	g.operands = []ValueRef{view}
	return b.emit(g)
}

// AlignViewTo realigns view to the given alignment, folding identity when
// alignment is statically known to already be satisfied is left to a later
// pass; here it always constructs.
func (b *IRBuilder) AlignViewTo(view ValueRef, alignment uint64, loc Location) ValueRef {
	vv := b.resolve(view)
	v := b.newValue(KindAlignViewTo, vv.typ, loc)
	v.raw64 = alignment
	v.operands = []ValueRef{view}
	return b.emit(v)
}
