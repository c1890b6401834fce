package ir

// PointerCast rewrites v (a pointer) to target element type/space T,
// folding:
//   - identity if v's element type already matches T and space;
//   - collapse a nested PointerCast(PointerCast(x, _), T) to PointerCast(x, T);
//   - when v is loadFieldAddress(base, span) at field 0 and T is base's
//     parent type, rewrite as an address-space cast of base instead.
func (b *IRBuilder) PointerCast(v ValueRef, elem *TypeNode, space AddressSpace, loc Location) ValueRef {
	src := b.resolve(v)
	if !src.typ.IsPointer() {
		panic(errTypeMismatch(loc, "PointerCast", "operand is not a pointer"))
	}
	target := b.ctx.Types.Pointer(elem, space)
	if src.typ == target {
		return v
	}
	if src.kind == KindCast && src.castOp == CastPointerCast {
		return b.PointerCast(src.operands[0], elem, space, loc)
	}
	if src.kind == KindLoadFieldAddress && src.span.Index == 0 {
		if parent := src.operands[0]; b.resolve(parent).typ.Elem == elem {
			return b.AddressSpaceCast(parent, space, loc)
		}
	}
	c := b.newValue(KindCast, target, loc)
	c.castOp = CastPointerCast
	c.operands = []ValueRef{v}
	return b.emit(c)
}

// AddressSpaceCast rewrites the address space of pointer/view v, folding
// identity and collapsing a chain of address-space casts to one.
func (b *IRBuilder) AddressSpaceCast(v ValueRef, space AddressSpace, loc Location) ValueRef {
	src := b.resolve(v)
	var target *TypeNode
	switch {
	case src.typ.IsPointer():
		target = b.ctx.Types.Pointer(src.typ.Elem, space)
	case src.typ.IsView():
		target = b.ctx.Types.View(src.typ.Elem, space)
	default:
		panic(errTypeMismatch(loc, "AddressSpaceCast", "operand is not a pointer or view"))
	}
	if src.typ == target {
		return v
	}
	if src.kind == KindCast && src.castOp == CastAddressSpaceCast {
		inner := src.operands[0]
		c := b.newValue(KindCast, target, loc)
		c.castOp = CastAddressSpaceCast
		c.operands = []ValueRef{inner}
		return b.emit(c)
	}
	c := b.newValue(KindCast, target, loc)
	c.castOp = CastAddressSpaceCast
	c.operands = []ValueRef{v}
	return b.emit(c)
}

// ViewCast rewrites the element type of view v, folding identity.
func (b *IRBuilder) ViewCast(v ValueRef, elem *TypeNode, loc Location) ValueRef {
	src := b.resolve(v)
	if !src.typ.IsView() {
		panic(errTypeMismatch(loc, "ViewCast", "operand is not a view"))
	}
	target := b.ctx.Types.View(elem, src.typ.Space)
	if src.typ == target {
		return v
	}
	c := b.newValue(KindCast, target, loc)
	c.castOp = CastViewCast
	c.operands = []ValueRef{v}
	return b.emit(c)
}

// IntAsPointer reinterprets integer v as a pointer to elem in space.
func (b *IRBuilder) IntAsPointer(v ValueRef, elem *TypeNode, space AddressSpace, loc Location) ValueRef {
	src := b.resolve(v)
	if !src.typ.IsPrimitive() || !src.typ.BV.IsInteger() {
		panic(errTypeMismatch(loc, "IntAsPointer", "operand is not an integer"))
	}
	target := b.ctx.Types.Pointer(elem, space)
	c := b.newValue(KindCast, target, loc)
	c.castOp = CastIntAsPointer
	c.operands = []ValueRef{v}
	return b.emit(c)
}

// PointerAsInt reinterprets pointer/view v as an integer of kind bv.
func (b *IRBuilder) PointerAsInt(v ValueRef, bv BasicValueType, loc Location) ValueRef {
	src := b.resolve(v)
	if !src.typ.IsPointer() && !src.typ.IsView() {
		panic(errTypeMismatch(loc, "PointerAsInt", "operand is not a pointer or view"))
	}
	if !bv.IsInteger() {
		panic(errTypeMismatch(loc, "PointerAsInt", "target is not an integer kind"))
	}
	c := b.newValue(KindCast, b.ctx.Types.Primitive(bv), loc)
	c.castOp = CastPointerAsInt
	c.operands = []ValueRef{v}
	return b.emit(c)
}

// FloatAsInt reinterprets the bits of a float constant/value as an integer
// of matching width: a constant operand is evaluated via bit
// reinterpretation directly; otherwise a fresh cast of matching width.
func (b *IRBuilder) FloatAsInt(v ValueRef, loc Location) ValueRef {
	src := b.resolve(v)
	if !src.typ.IsPrimitive() || !src.typ.BV.IsFloat() {
		panic(errTypeMismatch(loc, "FloatAsInt", "operand is not a float"))
	}
	target := matchingWidthInt(src.typ.BV)
	if raw, bv, ok := b.asPrimitiveConst(v); ok {
		_ = bv
		return b.CreatePrimitive(target, raw, loc)
	}
	c := b.newValue(KindCast, b.ctx.Types.Primitive(target), loc)
	c.castOp = CastFloatAsInt
	c.operands = []ValueRef{v}
	return b.emit(c)
}

// IntAsFloat reinterprets the bits of an integer constant/value as a float
// of matching width.
func (b *IRBuilder) IntAsFloat(v ValueRef, loc Location) ValueRef {
	src := b.resolve(v)
	if !src.typ.IsPrimitive() || !src.typ.BV.IsInteger() {
		panic(errTypeMismatch(loc, "IntAsFloat", "operand is not an integer"))
	}
	target := matchingWidthFloat(src.typ.BV)
	if raw, _, ok := b.asPrimitiveConst(v); ok {
		return b.CreatePrimitive(target, raw, loc)
	}
	c := b.newValue(KindCast, b.ctx.Types.Primitive(target), loc)
	c.castOp = CastIntAsFloat
	c.operands = []ValueRef{v}
	return b.emit(c)
}

func matchingWidthInt(bv BasicValueType) BasicValueType {
	switch bv {
	case BasicValueFloat16:
		return BasicValueInt16
	case BasicValueFloat32:
		return BasicValueInt32
	default:
		return BasicValueInt64
	}
}

func matchingWidthFloat(bv BasicValueType) BasicValueType {
	switch bv {
	case BasicValueInt16:
		return BasicValueFloat16
	case BasicValueInt32:
		return BasicValueFloat32
	default:
		return BasicValueFloat64
	}
}
